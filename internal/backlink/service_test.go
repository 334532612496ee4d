package backlink

import (
	"testing"

	"loom/internal/links"
)

// The extraction half of a rebuild is pure; the store half is covered by
// the store integration tests. These tests pin the slug set a rebuild
// would try to resolve.

func TestRebuildExtractsLinkedSlugs(t *testing.T) {
	content := `Building on [[first-post]] and [earlier work](/posts/second-post),
this extends [[first-post|the original argument]].`

	extracted := links.ExtractInternal(content)
	if len(extracted) != 2 {
		t.Fatalf("extracted: got %d links, want 2 (dedup by slug)", len(extracted))
	}
	if extracted[0].Slug != "first-post" {
		t.Errorf("first slug: got %q, want %q", extracted[0].Slug, "first-post")
	}
	if extracted[1].Slug != "second-post" {
		t.Errorf("second slug: got %q, want %q", extracted[1].Slug, "second-post")
	}
}

func TestRebuildNoLinks(t *testing.T) {
	extracted := links.ExtractInternal("No internal links here, just [external](https://example.com).")
	if len(extracted) != 0 {
		t.Errorf("extracted: got %d links, want 0", len(extracted))
	}
}

package links

import (
	"strings"
	"testing"
)

func TestExtractInternalWiki(t *testing.T) {
	got := ExtractInternal("Check out [[advanced-topic]] for more.")
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d: %+v", len(got), got)
	}
	if got[0].Slug != "advanced-topic" {
		t.Errorf("slug = %q, want %q", got[0].Slug, "advanced-topic")
	}
	if got[0].DisplayText != "" {
		t.Errorf("display text = %q, want empty", got[0].DisplayText)
	}
}

func TestExtractInternalWikiDisplayText(t *testing.T) {
	got := ExtractInternal("See [[deep-dive|the deep dive]] here.")
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got))
	}
	if got[0].Slug != "deep-dive" || got[0].DisplayText != "the deep dive" {
		t.Errorf("got %+v", got[0])
	}
}

func TestExtractInternalMarkdown(t *testing.T) {
	got := ExtractInternal("Read [my older post](/posts/older-post) first.")
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got))
	}
	if got[0].Slug != "older-post" || got[0].DisplayText != "my older post" {
		t.Errorf("got %+v", got[0])
	}
}

func TestExtractInternalIgnoresExternalLinks(t *testing.T) {
	got := ExtractInternal("See [example](https://example.com) and [about](/about).")
	if len(got) != 0 {
		t.Errorf("expected no links, got %+v", got)
	}
}

func TestExtractInternalDedup(t *testing.T) {
	// Same slug twice: the first occurrence wins, including its display text.
	got := ExtractInternal("First [[foo]] then [[foo|Bar]].")
	if len(got) != 1 {
		t.Fatalf("expected 1 link after dedup, got %d: %+v", len(got), got)
	}
	if got[0].DisplayText != "" {
		t.Errorf("first occurrence should win, got display text %q", got[0].DisplayText)
	}

	// Dedup also applies across syntaxes; wiki links are scanned first.
	got = ExtractInternal("Md [link](/posts/foo) before wiki [[foo|Wiki]].")
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got))
	}
	if got[0].DisplayText != "Wiki" {
		t.Errorf("wiki occurrence should win across syntaxes, got %+v", got[0])
	}
}

func TestExtractInternalOrder(t *testing.T) {
	got := ExtractInternal("[[alpha]] then [[beta]] then [gamma](/posts/gamma)")
	want := []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("expected %d links, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Slug != w {
			t.Errorf("link %d slug = %q, want %q", i, got[i].Slug, w)
		}
	}
}

func TestExtractInternalInvalidSlugCharset(t *testing.T) {
	// Uppercase and underscores are outside the wiki slug charset.
	got := ExtractInternal("Bad [[Not-Valid]] and [[under_score]] links.")
	if len(got) != 0 {
		t.Errorf("expected no links, got %+v", got)
	}
}

func TestExtractContextEllipsis(t *testing.T) {
	prefix := strings.Repeat("a", 80)
	suffix := strings.Repeat("b", 80)
	got := ExtractInternal(prefix + " [[mid]] " + suffix)
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got))
	}
	ctx := got[0].Context
	if !strings.HasPrefix(ctx, "...") || !strings.HasSuffix(ctx, "...") {
		t.Errorf("context should be ellipsized on both sides: %q", ctx)
	}
	if !strings.Contains(ctx, "[[mid]]") {
		t.Errorf("context should contain the match: %q", ctx)
	}
}

func TestExtractContextAtBoundaries(t *testing.T) {
	got := ExtractInternal("[[start]] and some trailing words")
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got))
	}
	if strings.HasPrefix(got[0].Context, "...") {
		t.Errorf("context at content start should not be prefix-ellipsized: %q", got[0].Context)
	}
}

func TestExtractContextCollapsesNewlines(t *testing.T) {
	got := ExtractInternal("line one\nlink [[target]] here\nline three")
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got))
	}
	if strings.Contains(got[0].Context, "\n") {
		t.Errorf("context should collapse newlines: %q", got[0].Context)
	}
}

func TestExtractInternalEmptyContent(t *testing.T) {
	if got := ExtractInternal(""); len(got) != 0 {
		t.Errorf("expected no links for empty content, got %+v", got)
	}
}

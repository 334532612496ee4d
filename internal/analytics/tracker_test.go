package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"loom/internal/store"
)

// fakeStore captures flushed deltas in memory.
type fakeStore struct {
	ids     map[string]uuid.UUID
	upserts []upsert
}

type upsert struct {
	postID uuid.UUID
	day    time.Time
	delta  store.StatsDelta
}

func (f *fakeStore) ResolvePostID(slug string) (uuid.UUID, bool, error) {
	id, ok := f.ids[slug]
	return id, ok, nil
}

func (f *fakeStore) UpsertDaily(postID uuid.UUID, day time.Time, delta store.StatsDelta) error {
	f.upserts = append(f.upserts, upsert{postID: postID, day: day, delta: delta})
	return nil
}

func newTestTracker(t *testing.T, slugs ...string) (*Tracker, *fakeStore) {
	t.Helper()
	fs := &fakeStore{ids: make(map[string]uuid.UUID)}
	for _, s := range slugs {
		fs.ids[s] = uuid.New()
	}
	tr := NewTracker(fs)
	tr.now = func() time.Time {
		return time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC)
	}
	return tr, fs
}

func TestTrackerAggregatesPerPostDay(t *testing.T) {
	tr, fs := newTestTracker(t, "my-post")

	tr.Track(Event{PostSlug: "my-post", SessionID: "s1", TimeOnPage: 60, ScrollDepth: 1})
	tr.Track(Event{PostSlug: "my-post", SessionID: "s2", TimeOnPage: 30, ScrollDepth: 0.4})
	// Same session again: read time accrues, views and visitors don't.
	tr.Track(Event{PostSlug: "my-post", SessionID: "s1", TimeOnPage: 10, ScrollDepth: 0.2})

	tr.Flush()

	if len(fs.upserts) != 1 {
		t.Fatalf("upserts: got %d, want 1", len(fs.upserts))
	}
	u := fs.upserts[0]
	if u.postID != fs.ids["my-post"] {
		t.Errorf("post id: got %s", u.postID)
	}
	if got := u.day; got != time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("day: got %v, want the UTC day", got)
	}
	if u.delta.Views != 2 {
		t.Errorf("views: got %d, want 2 (one per session)", u.delta.Views)
	}
	if u.delta.UniqueVisitors != 2 {
		t.Errorf("unique visitors: got %d, want 2", u.delta.UniqueVisitors)
	}
	if u.delta.TotalReadTime != 100 {
		t.Errorf("total read time: got %d, want 100", u.delta.TotalReadTime)
	}
	if u.delta.CompletionRate != 1.0 {
		t.Errorf("completion rate: got %v, want 1.0 (deepest read)", u.delta.CompletionRate)
	}
	// A full read reaches every bucket, 0.4 reaches p25, 0.2 reaches none.
	sd := u.delta.ScrollDepth
	if sd.P25 != 2 || sd.P50 != 1 || sd.P75 != 1 || sd.P100 != 1 {
		t.Errorf("scroll depth: got %+v", sd)
	}
}

func TestTrackerCountsOneViewPerSession(t *testing.T) {
	tr, fs := newTestTracker(t, "my-post")

	tr.Track(Event{PostSlug: "my-post", SessionID: "s1", TimeOnPage: 30, ScrollDepth: 0.5})
	tr.Track(Event{PostSlug: "my-post", SessionID: "s1", TimeOnPage: 45, ScrollDepth: 0.9})
	tr.Flush()

	if len(fs.upserts) != 1 {
		t.Fatalf("upserts: got %d, want 1", len(fs.upserts))
	}
	u := fs.upserts[0]
	if u.delta.Views != 1 {
		t.Errorf("views: got %d, want 1 for repeat events from one session", u.delta.Views)
	}
	if u.delta.UniqueVisitors != 1 {
		t.Errorf("unique visitors: got %d, want 1", u.delta.UniqueVisitors)
	}
	if u.delta.TotalReadTime != 75 {
		t.Errorf("total read time: got %d, want 75", u.delta.TotalReadTime)
	}
}

func TestTrackerFlushClearsBuffer(t *testing.T) {
	tr, fs := newTestTracker(t, "my-post")

	tr.Track(Event{PostSlug: "my-post", SessionID: "s1", TimeOnPage: 5, ScrollDepth: 0.1})
	tr.Flush()
	tr.Flush()

	if len(fs.upserts) != 1 {
		t.Errorf("upserts: got %d, want 1 (second flush had nothing)", len(fs.upserts))
	}
}

func TestTrackerDropsUnresolvableSlugs(t *testing.T) {
	tr, fs := newTestTracker(t) // no known slugs

	tr.Track(Event{PostSlug: "deleted-post", SessionID: "s1"})
	tr.Flush()

	if len(fs.upserts) != 0 {
		t.Errorf("upserts: got %d, want 0", len(fs.upserts))
	}
}

func TestTrackerIgnoresEmptySlug(t *testing.T) {
	tr, fs := newTestTracker(t, "my-post")

	tr.Track(Event{SessionID: "s1", TimeOnPage: 5})
	tr.Flush()

	if len(fs.upserts) != 0 {
		t.Errorf("upserts: got %d, want 0", len(fs.upserts))
	}
}

func TestTrackerClampsScrollDepth(t *testing.T) {
	tr, fs := newTestTracker(t, "my-post")

	tr.Track(Event{PostSlug: "my-post", SessionID: "s1", ScrollDepth: 2.5})
	tr.Flush()

	u := fs.upserts[0]
	if u.delta.CompletionRate != 1.0 {
		t.Errorf("completion rate: got %v, want clamped 1.0", u.delta.CompletionRate)
	}
	if u.delta.ScrollDepth.P100 != 1 {
		t.Errorf("p100: got %d, want 1", u.delta.ScrollDepth.P100)
	}
}

func TestTrackerSeparatesPosts(t *testing.T) {
	tr, fs := newTestTracker(t, "post-a", "post-b")

	tr.Track(Event{PostSlug: "post-a", SessionID: "s1"})
	tr.Track(Event{PostSlug: "post-b", SessionID: "s1"})
	tr.Flush()

	if len(fs.upserts) != 2 {
		t.Fatalf("upserts: got %d, want 2", len(fs.upserts))
	}
}

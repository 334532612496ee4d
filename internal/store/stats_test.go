package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"loom/internal/models"
)

func TestStatsStoreUpsertMerges(t *testing.T) {
	db := testDB(t)
	s := NewStatsStore(db)

	slug := "test-stats-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	post := makePost(t, db, slug, "Tracked")
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	err := s.Upsert(post.ID, day, StatsDelta{
		Views: 3, UniqueVisitors: 2, TotalReadTime: 120, CompletionRate: 0.5,
		ScrollDepth: models.ScrollDepthBuckets{P25: 3, P50: 2, P75: 1},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Second flush for the same day merges in: counters add, the
	// completion rate keeps the running max.
	err = s.Upsert(post.ID, day, StatsDelta{
		Views: 2, UniqueVisitors: 1, TotalReadTime: 60, CompletionRate: 0.25,
		ScrollDepth: models.ScrollDepthBuckets{P25: 2, P100: 1},
	})
	if err != nil {
		t.Fatalf("Upsert (merge): %v", err)
	}

	stats, err := s.ListByPostSince(post.ID, day)
	if err != nil {
		t.Fatalf("ListByPostSince: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats rows: got %d, want 1", len(stats))
	}

	rs := stats[0]
	if rs.Views != 5 {
		t.Errorf("views: got %d, want 5", rs.Views)
	}
	if rs.UniqueVisitors != 3 {
		t.Errorf("unique_visitors: got %d, want 3", rs.UniqueVisitors)
	}
	if rs.TotalReadTime != 180 {
		t.Errorf("total_read_time: got %d, want 180", rs.TotalReadTime)
	}
	if rs.CompletionRate != 0.5 {
		t.Errorf("completion_rate: got %v, want 0.5 (running max)", rs.CompletionRate)
	}
	if rs.ScrollDepth.P25 != 5 || rs.ScrollDepth.P50 != 2 || rs.ScrollDepth.P75 != 1 || rs.ScrollDepth.P100 != 1 {
		t.Errorf("scroll depth: got %+v", rs.ScrollDepth)
	}
}

func TestStatsStoreListByPostSince(t *testing.T) {
	db := testDB(t)
	s := NewStatsStore(db)

	slug := "test-stats-range-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	post := makePost(t, db, slug, "Ranged")
	old := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	s.Upsert(post.ID, old, StatsDelta{Views: 1})
	s.Upsert(post.ID, recent, StatsDelta{Views: 2})

	stats, err := s.ListByPostSince(post.ID, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListByPostSince: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats rows: got %d, want 1 (cutoff excludes old)", len(stats))
	}
	if stats[0].Views != 2 {
		t.Errorf("views: got %d, want 2", stats[0].Views)
	}
}

func TestStatsStoreTopPostsSince(t *testing.T) {
	db := testDB(t)
	s := NewStatsStore(db)

	hotSlug := "test-stats-hot-" + uuid.NewString()[:8]
	coldSlug := "test-stats-cold-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanPosts(t, db, hotSlug, coldSlug) })

	hot := makePost(t, db, hotSlug, "Hot")
	cold := makePost(t, db, coldSlug, "Cold")
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	s.Upsert(hot.ID, day, StatsDelta{Views: 50})
	s.Upsert(cold.ID, day, StatsDelta{Views: 1})

	top, err := s.TopPostsSince(day, 100)
	if err != nil {
		t.Fatalf("TopPostsSince: %v", err)
	}

	var hotRank, coldRank = -1, -1
	for i, tp := range top {
		switch tp.PostID {
		case hot.ID:
			hotRank = i
		case cold.ID:
			coldRank = i
		}
	}
	if hotRank == -1 || coldRank == -1 {
		t.Fatal("expected both posts ranked")
	}
	if hotRank > coldRank {
		t.Errorf("expected hot post ranked above cold: hot=%d cold=%d", hotRank, coldRank)
	}

	totals, err := s.TotalsSince(day)
	if err != nil {
		t.Fatalf("TotalsSince: %v", err)
	}
	if totals.Views < 51 {
		t.Errorf("total views: got %d, want >= 51", totals.Views)
	}
}

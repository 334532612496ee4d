// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package analytics collects privacy-light reading signals. Events are
// aggregated in memory per post and day — no per-event rows, no IPs, no
// cookies beyond an opaque session id — and flushed to daily counters on
// an interval. A crash loses at most one flush window.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"loom/internal/store"
)

// Event is one reading signal from a client.
type Event struct {
	PostSlug    string  `json:"postSlug"`
	SessionID   string  `json:"sessionId"`
	TimeOnPage  int     `json:"timeOnPage"`  // seconds spent reading
	ScrollDepth float64 `json:"scrollDepth"` // deepest scroll, fraction 0-1
}

// Store is the persistence boundary of the tracker.
type Store interface {
	ResolvePostID(slug string) (uuid.UUID, bool, error)
	UpsertDaily(postID uuid.UUID, day time.Time, delta store.StatsDelta) error
}

// bufKey buckets events per post and UTC day.
type bufKey struct {
	slug string
	day  time.Time
}

// entry is the in-memory aggregate for one key.
type entry struct {
	views          int
	sessions       map[string]bool
	totalReadTime  int
	completionRate float64
	scroll         [4]int // reached 25/50/75/100 percent
}

// Tracker buffers events and flushes aggregates.
type Tracker struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	buffer map[bufKey]*entry
}

// NewTracker creates a tracker.
func NewTracker(s Store) *Tracker {
	return &Tracker{
		store:  s,
		now:    time.Now,
		buffer: make(map[bufKey]*entry),
	}
}

// Track records an event. Cheap and non-blocking aside from the buffer
// lock; it never touches the database.
func (t *Tracker) Track(e Event) {
	if e.PostSlug == "" {
		return
	}
	day := t.now().UTC().Truncate(24 * time.Hour)

	t.mu.Lock()
	defer t.mu.Unlock()

	key := bufKey{slug: e.PostSlug, day: day}
	agg := t.buffer[key]
	if agg == nil {
		agg = &entry{sessions: make(map[string]bool)}
		t.buffer[key] = agg
	}

	// A view counts once per session per post per day; repeat events from
	// the same session only accrue read time and scroll depth.
	if !agg.sessions[e.SessionID] {
		agg.sessions[e.SessionID] = true
		agg.views++
	}
	agg.totalReadTime += e.TimeOnPage

	depth := e.ScrollDepth
	if depth > 1 {
		depth = 1
	}
	if depth < 0 {
		depth = 0
	}
	if depth > agg.completionRate {
		agg.completionRate = depth
	}
	for i, threshold := range [4]float64{0.25, 0.5, 0.75, 1} {
		if depth >= threshold {
			agg.scroll[i]++
		}
	}
}

// Flush persists and clears the buffer. Events for slugs that no longer
// resolve are dropped. Failed upserts are logged and their window lost;
// the next window starts clean.
func (t *Tracker) Flush() {
	t.mu.Lock()
	buffered := t.buffer
	t.buffer = make(map[bufKey]*entry)
	t.mu.Unlock()

	for key, agg := range buffered {
		postID, ok, err := t.store.ResolvePostID(key.slug)
		if err != nil {
			slog.Error("analytics flush: resolve failed", "slug", key.slug, "error", err)
			continue
		}
		if !ok {
			continue
		}

		delta := store.StatsDelta{
			Views:          agg.views,
			UniqueVisitors: len(agg.sessions),
			TotalReadTime:  agg.totalReadTime,
			CompletionRate: agg.completionRate,
		}
		delta.ScrollDepth.P25 = agg.scroll[0]
		delta.ScrollDepth.P50 = agg.scroll[1]
		delta.ScrollDepth.P75 = agg.scroll[2]
		delta.ScrollDepth.P100 = agg.scroll[3]

		if err := t.store.UpsertDaily(postID, key.day, delta); err != nil {
			slog.Error("analytics flush: upsert failed", "slug", key.slug, "error", err)
		}
	}
}

// Run flushes on the given interval until the context is cancelled, then
// performs a final flush so shutdown loses nothing.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Flush()
		case <-ctx.Done():
			t.Flush()
			return
		}
	}
}

// DBStore adapts the SQL stores to the tracker's Store interface.
type DBStore struct {
	posts *store.PostStore
	stats *store.StatsStore
}

// NewDBStore creates the production Store.
func NewDBStore(posts *store.PostStore, stats *store.StatsStore) *DBStore {
	return &DBStore{posts: posts, stats: stats}
}

func (d *DBStore) ResolvePostID(slug string) (uuid.UUID, bool, error) {
	return d.posts.IDBySlug(slug)
}

func (d *DBStore) UpsertDaily(postID uuid.UUID, day time.Time, delta store.StatsDelta) error {
	return d.stats.Upsert(postID, day, delta)
}

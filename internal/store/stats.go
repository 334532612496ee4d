// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loom/internal/models"
)

// StatsStore provides access to per-post daily reading stats.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore creates a new StatsStore backed by the given database.
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// StatsDelta is one flush's worth of aggregated events for a post/day.
// Counters add onto the stored row; CompletionRate keeps the running
// maximum.
type StatsDelta struct {
	Views          int
	UniqueVisitors int
	TotalReadTime  int
	CompletionRate float64
	ScrollDepth    models.ScrollDepthBuckets
}

// Upsert merges a delta into the (post, day) row, creating it if absent.
// Counters are additive; completion_rate takes the greater of the stored
// and incoming values.
func (s *StatsStore) Upsert(postID uuid.UUID, day time.Time, d StatsDelta) error {
	_, err := s.db.Exec(`
		INSERT INTO reading_stats
			(post_id, date, views, unique_visitors, total_read_time, completion_rate, p25, p50, p75, p100)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (post_id, date) DO UPDATE SET
			views = reading_stats.views + EXCLUDED.views,
			unique_visitors = reading_stats.unique_visitors + EXCLUDED.unique_visitors,
			total_read_time = reading_stats.total_read_time + EXCLUDED.total_read_time,
			completion_rate = GREATEST(reading_stats.completion_rate, EXCLUDED.completion_rate),
			p25 = reading_stats.p25 + EXCLUDED.p25,
			p50 = reading_stats.p50 + EXCLUDED.p50,
			p75 = reading_stats.p75 + EXCLUDED.p75,
			p100 = reading_stats.p100 + EXCLUDED.p100
	`, postID, day, d.Views, d.UniqueVisitors, d.TotalReadTime, d.CompletionRate,
		d.ScrollDepth.P25, d.ScrollDepth.P50, d.ScrollDepth.P75, d.ScrollDepth.P100)
	if err != nil {
		return fmt.Errorf("upsert reading stats: %w", err)
	}
	return nil
}

// ListByPostSince returns a post's daily rows on or after the cutoff,
// newest day first.
func (s *StatsStore) ListByPostSince(postID uuid.UUID, since time.Time) ([]models.ReadingStats, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, date, views, unique_visitors, total_read_time, completion_rate, p25, p50, p75, p100
		FROM reading_stats
		WHERE post_id = $1 AND date >= $2
		ORDER BY date DESC
	`, postID, since)
	if err != nil {
		return nil, fmt.Errorf("list reading stats: %w", err)
	}
	defer rows.Close()

	var stats []models.ReadingStats
	for rows.Next() {
		var rs models.ReadingStats
		err := rows.Scan(&rs.ID, &rs.PostID, &rs.Date, &rs.Views, &rs.UniqueVisitors,
			&rs.TotalReadTime, &rs.CompletionRate,
			&rs.ScrollDepth.P25, &rs.ScrollDepth.P50, &rs.ScrollDepth.P75, &rs.ScrollDepth.P100)
		if err != nil {
			return nil, fmt.Errorf("scan reading stats: %w", err)
		}
		stats = append(stats, rs)
	}
	return stats, rows.Err()
}

// Totals aggregates stats across every post since the cutoff.
type Totals struct {
	Views          int
	UniqueVisitors int
	TotalReadTime  int
}

// TotalsSince sums views, visitors, and read time across all posts on or
// after the cutoff.
func (s *StatsStore) TotalsSince(since time.Time) (Totals, error) {
	var t Totals
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(views), 0), COALESCE(SUM(unique_visitors), 0), COALESCE(SUM(total_read_time), 0)
		FROM reading_stats
		WHERE date >= $1
	`, since).Scan(&t.Views, &t.UniqueVisitors, &t.TotalReadTime)
	if err != nil {
		return Totals{}, fmt.Errorf("stats totals: %w", err)
	}
	return t, nil
}

// TopPost is a post ranked by views over a window.
type TopPost struct {
	PostID uuid.UUID
	Title  string
	Slug   string
	Views  int
}

// TopPostsSince returns the most-viewed posts on or after the cutoff.
func (s *StatsStore) TopPostsSince(since time.Time, limit int) ([]TopPost, error) {
	rows, err := s.db.Query(`
		SELECT rs.post_id, p.title, p.slug, SUM(rs.views) AS views
		FROM reading_stats rs
		JOIN posts p ON p.id = rs.post_id
		WHERE rs.date >= $1
		GROUP BY rs.post_id, p.title, p.slug
		ORDER BY views DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top posts: %w", err)
	}
	defer rows.Close()

	var top []TopPost
	for rows.Next() {
		var tp TopPost
		if err := rows.Scan(&tp.PostID, &tp.Title, &tp.Slug, &tp.Views); err != nil {
			return nil, fmt.Errorf("scan top post: %w", err)
		}
		top = append(top, tp)
	}
	return top, rows.Err()
}

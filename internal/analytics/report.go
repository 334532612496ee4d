// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package analytics

import (
	"time"

	"github.com/google/uuid"

	"loom/internal/models"
	"loom/internal/store"
)

// Reporter answers analytics queries from the daily counters.
type Reporter struct {
	stats *store.StatsStore
	now   func() time.Time
}

// NewReporter creates a reporter.
func NewReporter(stats *store.StatsStore) *Reporter {
	return &Reporter{stats: stats, now: time.Now}
}

// PostReport is the analytics summary for one post.
type PostReport struct {
	Days           int                  `json:"days"`
	TotalViews     int                  `json:"totalViews"`
	UniqueVisitors int                  `json:"uniqueVisitors"`
	TotalReadTime  int                  `json:"totalReadTime"`
	AvgReadTime    float64              `json:"avgReadTime"`
	CompletionRate float64              `json:"completionRate"`
	Daily          []models.ReadingStats `json:"daily"`
}

// PostStats summarizes a post's reading activity over the last N days.
func (r *Reporter) PostStats(postID uuid.UUID, days int) (*PostReport, error) {
	if days < 1 {
		days = 30
	}
	since := r.now().UTC().AddDate(0, 0, -days)

	daily, err := r.stats.ListByPostSince(postID, since)
	if err != nil {
		return nil, err
	}
	if daily == nil {
		daily = []models.ReadingStats{}
	}

	report := &PostReport{Days: days, Daily: daily}
	for _, d := range daily {
		report.TotalViews += d.Views
		report.UniqueVisitors += d.UniqueVisitors
		report.TotalReadTime += d.TotalReadTime
		if d.CompletionRate > report.CompletionRate {
			report.CompletionRate = d.CompletionRate
		}
	}
	if report.TotalViews > 0 {
		report.AvgReadTime = float64(report.TotalReadTime) / float64(report.TotalViews)
	}
	return report, nil
}

// SiteReport is the site-wide analytics summary.
type SiteReport struct {
	Days           int             `json:"days"`
	TotalViews     int             `json:"totalViews"`
	UniqueVisitors int             `json:"uniqueVisitors"`
	TotalReadTime  int             `json:"totalReadTime"`
	TopPosts       []store.TopPost `json:"topPosts"`
}

// SiteStats summarizes all reading activity over the last N days,
// including the ten most-viewed posts.
func (r *Reporter) SiteStats(days int) (*SiteReport, error) {
	if days < 1 {
		days = 30
	}
	since := r.now().UTC().AddDate(0, 0, -days)

	totals, err := r.stats.TotalsSince(since)
	if err != nil {
		return nil, err
	}
	top, err := r.stats.TopPostsSince(since, 10)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []store.TopPost{}
	}

	return &SiteReport{
		Days:           days,
		TotalViews:     totals.Views,
		UniqueVisitors: totals.UniqueVisitors,
		TotalReadTime:  totals.TotalReadTime,
		TopPosts:       top,
	}, nil
}

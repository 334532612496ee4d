// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ScrollDepthBuckets counts tracking events that crossed each scroll-depth
// threshold.
type ScrollDepthBuckets struct {
	P25  int `json:"p25"`
	P50  int `json:"p50"`
	P75  int `json:"p75"`
	P100 int `json:"p100"`
}

// ReadingStats is a per-post, per-day aggregate of reading activity.
// Counters are additive across flushes; CompletionRate is the maximum
// scroll depth observed on any event that day.
type ReadingStats struct {
	ID             uuid.UUID          `json:"id"`
	PostID         uuid.UUID          `json:"postId"`
	Date           time.Time          `json:"date"`
	Views          int                `json:"views"`
	UniqueVisitors int                `json:"uniqueVisitors"`
	TotalReadTime  int                `json:"totalReadTime"`
	CompletionRate float64            `json:"completionRate"`
	ScrollDepth    ScrollDepthBuckets `json:"scrollDepthBuckets"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the domain types shared by the stores, services,
// and handlers: posts with version history, ideas and their graph, explicit
// references between posts, thought threads, and reading statistics.
package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// PostMetadata holds SEO fields set at publish time.
type PostMetadata struct {
	SEOTitle       string `json:"seoTitle,omitempty"`
	SEODescription string `json:"seoDescription,omitempty"`
	OGImage        string `json:"ogImage,omitempty"`
	CanonicalURL   string `json:"canonicalUrl,omitempty"`
}

// Post is a markdown article. The slug is fixed at creation and never
// changes on later title edits, so inbound links stay valid. WordCount and
// ReadingTime are recomputed whenever Content changes.
type Post struct {
	ID             uuid.UUID    `json:"id"`
	Slug           string       `json:"slug"`
	Title          string       `json:"title"`
	Subtitle       string       `json:"subtitle,omitempty"`
	Content        string       `json:"content,omitempty"`
	Excerpt        string       `json:"excerpt,omitempty"`
	Status         PostStatus   `json:"status"`
	PublishedAt    *time.Time   `json:"publishedAt,omitempty"`
	CurrentVersion int          `json:"currentVersion"`
	WordCount      int          `json:"wordCount"`
	ReadingTime    int          `json:"readingTime"`
	Ideas          []IdeaRef    `json:"ideas,omitempty"`
	Metadata       PostMetadata `json:"metadata"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// PostVersion is an immutable snapshot of a post's title and content as it
// existed before an update. It carries the pre-update version number;
// (PostID, Version) is unique.
type PostVersion struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"postId"`
	Version    int       `json:"version"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	ChangeNote string    `json:"changeNote,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Idea is a named topic attached to posts. PostCount is a denormalized
// count of published posts carrying the idea, recomputed after every
// mutation that could change it.
//
// RelatedIdeas is a directed relation: an idea stores only its outgoing
// references. Reverse lookups require a scan of the relation table.
type Idea struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	PostCount    int       `json:"postCount"`
	RelatedIdeas []IdeaRef `json:"relatedIdeas,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IdeaRef is a lightweight idea reference embedded in posts and related
// idea lists.
type IdeaRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

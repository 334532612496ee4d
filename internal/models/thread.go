// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ThreadStatus represents the narrative state of a thought thread.
type ThreadStatus string

const (
	ThreadStatusActive    ThreadStatus = "active"
	ThreadStatusConcluded ThreadStatus = "concluded"
	ThreadStatusPaused    ThreadStatus = "paused"
)

// NodeStatus describes the role a post plays within a thread.
type NodeStatus string

const (
	NodeStatusFoundational NodeStatus = "foundational"
	NodeStatusActive       NodeStatus = "active"
	NodeStatusSuperseded   NodeStatus = "superseded"
	NodeStatusTangent      NodeStatus = "tangent"
)

// Visibility controls whether a thread appears on the public site.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ThoughtThread is a curated, ordered and possibly branching sequence of
// posts. Nodes are keyed by Order within the thread.
type ThoughtThread struct {
	ID          uuid.UUID    `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      ThreadStatus `json:"status"`
	Visibility  Visibility   `json:"visibility"`
	Nodes       []ThreadNode `json:"nodes,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ThreadNode places a post in a thread. Order is assigned as max+1 on
// append and never reused after removal, so gaps are normal. BranchFrom,
// when set, names the Order of the node this one branches off; nil marks a
// trunk node. The value is not validated against existing orders and may
// dangle after a removal.
type ThreadNode struct {
	PostID     uuid.UUID  `json:"postId"`
	Order      int        `json:"order"`
	Status     NodeStatus `json:"status"`
	Annotation string     `json:"annotation"`
	BranchFrom *int       `json:"branchFrom"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferenceType distinguishes links written by the author (explicit) from
// links derived by analysis (implicit).
type ReferenceType string

const (
	ReferenceTypeExplicit ReferenceType = "explicit"
	ReferenceTypeImplicit ReferenceType = "implicit"
)

// Reference is a directed edge recorded when one post's content links to
// another. (SourcePostID, TargetPostID) is unique; the full outgoing edge
// set of a post is regenerated whenever its content changes.
type Reference struct {
	ID           uuid.UUID     `json:"id"`
	SourcePostID uuid.UUID     `json:"sourcePostId"`
	TargetPostID uuid.UUID     `json:"targetPostId"`
	Type         ReferenceType `json:"type"`
	Context      string        `json:"context,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

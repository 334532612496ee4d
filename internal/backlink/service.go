// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backlink maintains the reference graph between posts. A post's
// outgoing references are derived entirely from its content: every rebuild
// extracts the internal links, resolves them against published posts, and
// swaps the stored edge set wholesale. Links to drafts or unknown slugs
// are dropped silently and picked up by a later rebuild once the target
// publishes.
package backlink

import (
	"fmt"

	"github.com/google/uuid"

	"loom/internal/links"
	"loom/internal/models"
	"loom/internal/store"
)

// Service rebuilds and queries post references.
type Service struct {
	posts *store.PostStore
	refs  *store.ReferenceStore
}

// NewService creates a backlink service.
func NewService(posts *store.PostStore, refs *store.ReferenceStore) *Service {
	return &Service{posts: posts, refs: refs}
}

// Rebuild recomputes the outgoing references of a post from its content.
// Self-links are ignored.
func (s *Service) Rebuild(postID uuid.UUID, content string) error {
	extracted := links.ExtractInternal(content)

	slugs := make([]string, 0, len(extracted))
	for _, l := range extracted {
		slugs = append(slugs, l.Slug)
	}
	resolved, err := s.posts.PublishedIDsBySlugs(slugs)
	if err != nil {
		return fmt.Errorf("rebuild references: %w", err)
	}

	var refs []models.Reference
	for _, l := range extracted {
		targetID, ok := resolved[l.Slug]
		if !ok || targetID == postID {
			continue
		}
		refs = append(refs, models.Reference{
			SourcePostID: postID,
			TargetPostID: targetID,
			Type:         models.ReferenceTypeExplicit,
			Context:      l.Context,
		})
	}

	if err := s.refs.ReplaceForSource(postID, refs); err != nil {
		return fmt.Errorf("rebuild references: %w", err)
	}
	return nil
}

// Backlinks returns the posts linking to the given post.
func (s *Service) Backlinks(postID uuid.UUID) ([]store.LinkedPost, error) {
	return s.refs.ListByTarget(postID)
}

// Outbound returns the posts the given post links to.
func (s *Service) Outbound(postID uuid.UUID) ([]store.LinkedPost, error) {
	return s.refs.ListBySource(postID)
}

// DeleteForPost drops every edge touching the post, in both directions.
func (s *Service) DeleteForPost(postID uuid.UUID) error {
	return s.refs.DeleteForPost(postID)
}

// RebuildResult summarizes a full-graph rebuild.
type RebuildResult struct {
	Processed  int `json:"processed"`
	References int `json:"references"`
}

// RebuildAll recomputes references for every published post. Used after
// bulk imports or to repair drift from posts unpublished since their
// links were extracted.
func (s *Service) RebuildAll() (RebuildResult, error) {
	contents, err := s.posts.ListPublishedContent()
	if err != nil {
		return RebuildResult{}, fmt.Errorf("rebuild all references: %w", err)
	}

	var result RebuildResult
	for _, pc := range contents {
		if err := s.Rebuild(pc.ID, pc.Content); err != nil {
			return result, err
		}
		count, err := s.refs.CountBySource(pc.ID)
		if err != nil {
			return result, err
		}
		result.Processed++
		result.References += count
	}
	return result, nil
}

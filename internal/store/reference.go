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

// ReferenceStore provides access to the directed reference (backlink)
// edges between posts.
type ReferenceStore struct {
	db *sql.DB
}

// NewReferenceStore creates a new ReferenceStore backed by the given
// database.
func NewReferenceStore(db *sql.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

// ReplaceForSource atomically swaps the full outgoing edge set of a post:
// every existing reference from sourceID is deleted and the given ones
// inserted, in one transaction. Concurrent replacements for different
// source posts touch disjoint rows and cannot interfere.
func (s *ReferenceStore) ReplaceForSource(sourceID uuid.UUID, refs []models.Reference) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace references: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_references WHERE source_post_id = $1`, sourceID); err != nil {
		return fmt.Errorf("clear references: %w", err)
	}
	for _, ref := range refs {
		_, err := tx.Exec(`
			INSERT INTO post_references (source_post_id, target_post_id, type, context)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (source_post_id, target_post_id) DO NOTHING
		`, sourceID, ref.TargetPostID, ref.Type, ref.Context)
		if err != nil {
			return fmt.Errorf("insert reference: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteForPost removes every reference where the post is source or
// target. Used by the post deletion cascade.
func (s *ReferenceStore) DeleteForPost(postID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM post_references WHERE source_post_id = $1 OR target_post_id = $1
	`, postID)
	if err != nil {
		return fmt.Errorf("delete references for post: %w", err)
	}
	return nil
}

// CountBySource returns the number of outgoing references from a post.
func (s *ReferenceStore) CountBySource(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM post_references WHERE source_post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return count, nil
}

// LinkedPost is one end of a reference joined with the post it points at.
type LinkedPost struct {
	Title     string
	Slug      string
	Excerpt   string
	Context   string
	Type      models.ReferenceType
	CreatedAt time.Time
}

// ListByTarget returns the posts referencing the given post (its
// backlinks), newest reference first.
func (s *ReferenceStore) ListByTarget(targetID uuid.UUID) ([]LinkedPost, error) {
	return s.listLinked(`
		SELECT p.title, p.slug, p.excerpt, r.context, r.type, r.created_at
		FROM post_references r
		JOIN posts p ON p.id = r.source_post_id
		WHERE r.target_post_id = $1
		ORDER BY r.created_at DESC
	`, targetID)
}

// ListBySource returns the posts the given post references (its outbound
// links), newest reference first.
func (s *ReferenceStore) ListBySource(sourceID uuid.UUID) ([]LinkedPost, error) {
	return s.listLinked(`
		SELECT p.title, p.slug, p.excerpt, r.context, r.type, r.created_at
		FROM post_references r
		JOIN posts p ON p.id = r.target_post_id
		WHERE r.source_post_id = $1
		ORDER BY r.created_at DESC
	`, sourceID)
}

func (s *ReferenceStore) listLinked(query string, postID uuid.UUID) ([]LinkedPost, error) {
	rows, err := s.db.Query(query, postID)
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer rows.Close()

	var linked []LinkedPost
	for rows.Next() {
		var lp LinkedPost
		if err := rows.Scan(&lp.Title, &lp.Slug, &lp.Excerpt, &lp.Context, &lp.Type, &lp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		linked = append(linked, lp)
	}
	return linked, rows.Err()
}

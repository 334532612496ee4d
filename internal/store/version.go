// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"loom/internal/apperr"
	"loom/internal/models"
)

// VersionStore provides access to immutable post version snapshots.
type VersionStore struct {
	db *sql.DB
}

// NewVersionStore creates a new VersionStore backed by the given database.
func NewVersionStore(db *sql.DB) *VersionStore {
	return &VersionStore{db: db}
}

// Create inserts a version snapshot. The (post_id, version) pair is
// unique; a duplicate insert returns a Conflict error, which guards
// against two writers snapshotting the same version concurrently.
func (s *VersionStore) Create(v *models.PostVersion) (*models.PostVersion, error) {
	row := s.db.QueryRow(`
		INSERT INTO post_versions (post_id, version, title, content, change_note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, post_id, version, title, content, change_note, created_at
	`, v.PostID, v.Version, v.Title, v.Content, v.ChangeNote)

	var created models.PostVersion
	err := row.Scan(&created.ID, &created.PostID, &created.Version,
		&created.Title, &created.Content, &created.ChangeNote, &created.CreatedAt)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("version %d already exists for this post", v.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("create post version: %w", err)
	}
	return &created, nil
}

// ListByPost returns all versions of a post, newest version first,
// without content.
func (s *VersionStore) ListByPost(postID uuid.UUID) ([]models.PostVersion, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, version, title, change_note, created_at
		FROM post_versions
		WHERE post_id = $1
		ORDER BY version DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post versions: %w", err)
	}
	defer rows.Close()

	var versions []models.PostVersion
	for rows.Next() {
		var v models.PostVersion
		if err := rows.Scan(&v.ID, &v.PostID, &v.Version, &v.Title, &v.ChangeNote, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// FindByPostAndVersion returns a single version snapshot with its content.
// Returns nil if not found.
func (s *VersionStore) FindByPostAndVersion(postID uuid.UUID, version int) (*models.PostVersion, error) {
	var v models.PostVersion
	err := s.db.QueryRow(`
		SELECT id, post_id, version, title, content, change_note, created_at
		FROM post_versions
		WHERE post_id = $1 AND version = $2
	`, postID, version).Scan(&v.ID, &v.PostID, &v.Version, &v.Title, &v.Content, &v.ChangeNote, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post version: %w", err)
	}
	return &v, nil
}

// DeleteByPost removes every version of a post.
func (s *VersionStore) DeleteByPost(postID uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM post_versions WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete post versions: %w", err)
	}
	return nil
}

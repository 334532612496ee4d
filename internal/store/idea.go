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

// ideaColumns lists all columns for ideas SELECTs.
const ideaColumns = `id, name, slug, description, post_count, created_at, updated_at`

// IdeaStore provides access to ideas, their directed relations, and the
// aggregations behind the idea graph.
type IdeaStore struct {
	db *sql.DB
}

// NewIdeaStore creates a new IdeaStore backed by the given database.
func NewIdeaStore(db *sql.DB) *IdeaStore {
	return &IdeaStore{db: db}
}

// scanIdea scans a single ideas row into an Idea.
func scanIdea(scanner interface{ Scan(...any) error }) (*models.Idea, error) {
	var i models.Idea
	err := scanner.Scan(&i.ID, &i.Name, &i.Slug, &i.Description, &i.PostCount, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new idea. Name and slug are both unique; a duplicate
// of either returns a Conflict error.
func (s *IdeaStore) Create(i *models.Idea) (*models.Idea, error) {
	row := s.db.QueryRow(`
		INSERT INTO ideas (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING `+ideaColumns,
		i.Name, i.Slug, i.Description,
	)
	created, err := scanIdea(row)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("an idea with this name already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}
	return created, nil
}

// FindByID retrieves an idea by its UUID. Returns nil if not found.
func (s *IdeaStore) FindByID(id uuid.UUID) (*models.Idea, error) {
	i, err := scanIdea(s.db.QueryRow(`SELECT `+ideaColumns+` FROM ideas WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find idea by id: %w", err)
	}
	return i, nil
}

// FindBySlug retrieves an idea by its slug. Returns nil if not found.
func (s *IdeaStore) FindBySlug(slug string) (*models.Idea, error) {
	i, err := scanIdea(s.db.QueryRow(`SELECT `+ideaColumns+` FROM ideas WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find idea by slug: %w", err)
	}
	return i, nil
}

// List returns all ideas ordered by descending post count.
func (s *IdeaStore) List() ([]models.Idea, error) {
	rows, err := s.db.Query(`SELECT ` + ideaColumns + ` FROM ideas ORDER BY post_count DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.Idea
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, *i)
	}
	return ideas, rows.Err()
}

// Update persists an idea's name and description. The slug never changes.
func (s *IdeaStore) Update(i *models.Idea) error {
	_, err := s.db.Exec(`
		UPDATE ideas SET name = $1, description = $2, updated_at = now() WHERE id = $3
	`, i.Name, i.Description, i.ID)
	if isUniqueViolation(err) {
		return apperr.Conflict("an idea with this name already exists")
	}
	if err != nil {
		return fmt.Errorf("update idea: %w", err)
	}
	return nil
}

// UpdatePostCount sets the denormalized published-post counter.
func (s *IdeaStore) UpdatePostCount(id uuid.UUID, count int) error {
	if _, err := s.db.Exec(`UPDATE ideas SET post_count = $1, updated_at = now() WHERE id = $2`, count, id); err != nil {
		return fmt.Errorf("update idea post count: %w", err)
	}
	return nil
}

// Delete removes an idea. Its post links and relation rows cascade at the
// schema level.
func (s *IdeaStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM ideas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	return nil
}

// SetRelated replaces an idea's outgoing related-idea references.
func (s *IdeaStore) SetRelated(ideaID uuid.UUID, relatedIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set related ideas: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM idea_related WHERE idea_id = $1`, ideaID); err != nil {
		return fmt.Errorf("clear related ideas: %w", err)
	}
	for _, relID := range relatedIDs {
		if relID == ideaID {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO idea_related (idea_id, related_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, ideaID, relID)
		if err != nil {
			return fmt.Errorf("insert related idea: %w", err)
		}
	}
	return tx.Commit()
}

// Related returns the ideas an idea points at, in name order.
func (s *IdeaStore) Related(ideaID uuid.UUID) ([]models.IdeaRef, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.name, i.slug
		FROM idea_related ir
		JOIN ideas i ON i.id = ir.related_id
		WHERE ir.idea_id = $1
		ORDER BY i.name
	`, ideaID)
	if err != nil {
		return nil, fmt.Errorf("related ideas: %w", err)
	}
	defer rows.Close()

	var refs []models.IdeaRef
	for rows.Next() {
		var r models.IdeaRef
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug); err != nil {
			return nil, fmt.Errorf("scan related idea: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// RemoveRelatedReferences deletes every relation row touching the idea,
// in either direction. Used by the idea deletion cascade.
func (s *IdeaStore) RemoveRelatedReferences(ideaID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM idea_related WHERE idea_id = $1 OR related_id = $1`, ideaID)
	if err != nil {
		return fmt.Errorf("remove related references: %w", err)
	}
	return nil
}

// RemoveFromPosts detaches the idea from every post carrying it.
func (s *IdeaStore) RemoveFromPosts(ideaID uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM post_ideas WHERE idea_id = $1`, ideaID); err != nil {
		return fmt.Errorf("remove idea from posts: %w", err)
	}
	return nil
}

// CountPublishedPosts returns the number of published posts carrying the
// idea — the source of truth behind the denormalized post_count.
func (s *IdeaStore) CountPublishedPosts(ideaID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM post_ideas pi
		JOIN posts p ON p.id = pi.post_id
		WHERE pi.idea_id = $1 AND p.status = 'published'
	`, ideaID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published posts for idea: %w", err)
	}
	return count, nil
}

// CountPublishedPostsSharing returns how many published posts carry both
// ideas at once.
func (s *IdeaStore) CountPublishedPostsSharing(a, b uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM post_ideas pa
		JOIN post_ideas pb ON pb.post_id = pa.post_id
		JOIN posts p ON p.id = pa.post_id
		WHERE pa.idea_id = $1 AND pb.idea_id = $2 AND p.status = 'published'
	`, a, b).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count shared posts: %w", err)
	}
	return count, nil
}

// PublishedPostsWithIdea returns published posts carrying the idea,
// newest-published first, without content.
func (s *IdeaStore) PublishedPostsWithIdea(ideaID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postListColumns+`
		FROM posts
		WHERE status = 'published'
		  AND id IN (SELECT post_id FROM post_ideas WHERE idea_id = $1)
		ORDER BY published_at DESC
	`, ideaID)
	if err != nil {
		return nil, fmt.Errorf("published posts with idea: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// PublishedIdeaSlugSets returns, for every published post with at least
// one idea, the slugs of its ideas. Feeds the idea graph edge
// aggregation.
func (s *IdeaStore) PublishedIdeaSlugSets() ([][]string, error) {
	rows, err := s.db.Query(`
		SELECT pi.post_id, i.slug
		FROM post_ideas pi
		JOIN posts p ON p.id = pi.post_id
		JOIN ideas i ON i.id = pi.idea_id
		WHERE p.status = 'published'
		ORDER BY pi.post_id, i.slug
	`)
	if err != nil {
		return nil, fmt.Errorf("published idea slug sets: %w", err)
	}
	defer rows.Close()

	var sets [][]string
	var current []string
	var currentPost uuid.UUID
	for rows.Next() {
		var postID uuid.UUID
		var slug string
		if err := rows.Scan(&postID, &slug); err != nil {
			return nil, fmt.Errorf("scan idea slug set: %w", err)
		}
		if postID != currentPost && current != nil {
			sets = append(sets, current)
			current = nil
		}
		currentPost = postID
		current = append(current, slug)
	}
	if current != nil {
		sets = append(sets, current)
	}
	return sets, rows.Err()
}

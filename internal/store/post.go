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

// postColumns lists all columns for posts SELECTs.
const postColumns = `id, slug, title, subtitle, content, excerpt, status,
	published_at, current_version, word_count, reading_time,
	seo_title, seo_description, og_image, canonical_url, created_at, updated_at`

// postListColumns is postColumns with content replaced by an empty string;
// listings never carry full content.
const postListColumns = `id, slug, title, subtitle, '' AS content, excerpt, status,
	published_at, current_version, word_count, reading_time,
	seo_title, seo_description, og_image, canonical_url, created_at, updated_at`

// PostStore provides access to posts and the post↔idea relation.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore backed by the given database.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanPost scans a single posts row into a Post.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Subtitle, &p.Content, &p.Excerpt, &p.Status,
		&p.PublishedAt, &p.CurrentVersion, &p.WordCount, &p.ReadingTime,
		&p.Metadata.SEOTitle, &p.Metadata.SEODescription, &p.Metadata.OGImage,
		&p.Metadata.CanonicalURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new post and returns it with the generated ID.
// Returns a Conflict error if the slug is already taken.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		INSERT INTO posts (slug, title, subtitle, content, excerpt, status, word_count, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns,
		p.Slug, p.Title, p.Subtitle, p.Content, p.Excerpt, p.Status, p.WordCount, p.ReadingTime,
	)
	created, err := scanPost(row)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("a post with this title already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug regardless of status.
// Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by its slug. Used for
// public post pages. Returns nil if not found.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+` FROM posts WHERE slug = $1 AND status = 'published'
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published post by slug: %w", err)
	}
	return p, nil
}

// IDBySlug resolves a slug to a post ID regardless of status.
func (s *PostStore) IDBySlug(slug string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`SELECT id FROM posts WHERE slug = $1`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("post id by slug: %w", err)
	}
	return id, true, nil
}

// Update persists all mutable fields of a post.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts
		SET title = $1, subtitle = $2, content = $3, excerpt = $4, status = $5,
		    published_at = $6, current_version = $7, word_count = $8, reading_time = $9,
		    seo_title = $10, seo_description = $11, og_image = $12, canonical_url = $13,
		    updated_at = now()
		WHERE id = $14
	`, p.Title, p.Subtitle, p.Content, p.Excerpt, p.Status,
		p.PublishedAt, p.CurrentVersion, p.WordCount, p.ReadingTime,
		p.Metadata.SEOTitle, p.Metadata.SEODescription, p.Metadata.OGImage,
		p.Metadata.CanonicalURL, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post. Versions, references, idea links, and reading
// stats cascade at the schema level.
func (s *PostStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// ListOptions filters and paginates post listings.
type ListOptions struct {
	Status models.PostStatus // empty = any status
	IdeaID uuid.UUID         // filter to posts carrying this idea; zero value = no filter
	Page   int               // 1-based
	Limit  int
	Sort   string // "-publishedAt" (default), "publishedAt", "-createdAt", "createdAt", "-updatedAt", "title"
}

// sortClauses whitelists the ORDER BY expressions for List.
var sortClauses = map[string]string{
	"-publishedAt": "published_at DESC NULLS LAST",
	"publishedAt":  "published_at ASC NULLS LAST",
	"-createdAt":   "created_at DESC",
	"createdAt":    "created_at ASC",
	"-updatedAt":   "updated_at DESC",
	"title":        "title ASC",
}

// List returns posts matching the options, without content, plus the total
// match count for pagination.
func (s *PostStore) List(opts ListOptions) ([]models.Post, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}
	orderBy, ok := sortClauses[opts.Sort]
	if !ok {
		orderBy = sortClauses["-publishedAt"]
	}

	where := `TRUE`
	var args []any
	if opts.Status != "" {
		args = append(args, opts.Status)
		where = fmt.Sprintf(`status = $%d`, len(args))
	}
	if opts.IdeaID != uuid.Nil {
		args = append(args, opts.IdeaID)
		where += fmt.Sprintf(` AND id IN (SELECT post_id FROM post_ideas WHERE idea_id = $%d)`, len(args))
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		postListColumns, where, orderBy, opts.Limit, (opts.Page-1)*opts.Limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// SetIdeas replaces the post's idea set.
func (s *PostStore) SetIdeas(postID uuid.UUID, ideaIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set post ideas: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_ideas WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post ideas: %w", err)
	}
	for _, ideaID := range ideaIDs {
		_, err := tx.Exec(`
			INSERT INTO post_ideas (post_id, idea_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, ideaID)
		if err != nil {
			return fmt.Errorf("insert post idea: %w", err)
		}
	}
	return tx.Commit()
}

// IdeaIDs returns the IDs of the ideas attached to a post.
func (s *PostStore) IdeaIDs(postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(`SELECT idea_id FROM post_ideas WHERE post_id = $1`, postID)
	if err != nil {
		return nil, fmt.Errorf("post idea ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan idea id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IdeaRefs returns name/slug references for the ideas attached to a post.
func (s *PostStore) IdeaRefs(postID uuid.UUID) ([]models.IdeaRef, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.name, i.slug
		FROM post_ideas pi
		JOIN ideas i ON i.id = pi.idea_id
		WHERE pi.post_id = $1
		ORDER BY i.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("post idea refs: %w", err)
	}
	defer rows.Close()

	var refs []models.IdeaRef
	for rows.Next() {
		var r models.IdeaRef
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug); err != nil {
			return nil, fmt.Errorf("scan idea ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// PublishedIDsBySlugs resolves slugs to the IDs of published posts.
// Slugs that don't resolve are simply absent from the result.
func (s *PostStore) PublishedIDsBySlugs(slugs []string) (map[string]uuid.UUID, error) {
	if len(slugs) == 0 {
		return map[string]uuid.UUID{}, nil
	}
	rows, err := s.db.Query(`
		SELECT slug, id FROM posts WHERE slug = ANY($1) AND status = 'published'
	`, slugs)
	if err != nil {
		return nil, fmt.Errorf("published ids by slugs: %w", err)
	}
	defer rows.Close()

	resolved := make(map[string]uuid.UUID)
	for rows.Next() {
		var slug string
		var id uuid.UUID
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, fmt.Errorf("scan slug id: %w", err)
		}
		resolved[slug] = id
	}
	return resolved, rows.Err()
}

// PostContent pairs a post ID with its raw content, for bulk backlink
// rebuilds.
type PostContent struct {
	ID      uuid.UUID
	Content string
}

// ListPublishedContent returns id and content of every published post.
func (s *PostStore) ListPublishedContent() ([]PostContent, error) {
	rows, err := s.db.Query(`SELECT id, content FROM posts WHERE status = 'published'`)
	if err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	defer rows.Close()

	var out []PostContent
	for rows.Next() {
		var pc PostContent
		if err := rows.Scan(&pc.ID, &pc.Content); err != nil {
			return nil, fmt.Errorf("scan post content: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

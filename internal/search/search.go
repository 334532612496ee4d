// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search implements unified search over published posts, ideas,
// and public threads. Posts match against a stored tsvector of title and
// content ranked with ts_rank; ideas and threads match by simple
// substring, which is plenty at their scale.
package search

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// MinQueryLength is the shortest query worth running.
	MinQueryLength = 2

	postLimit   = 10
	ideaLimit   = 5
	threadLimit = 5
)

// Service runs search queries.
type Service struct {
	db *sql.DB
}

// NewService creates a search service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// PostResult is a published post matching the query.
type PostResult struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Slug    string    `json:"slug"`
	Excerpt string    `json:"excerpt"`
	Rank    float64   `json:"-"`
}

// IdeaResult is an idea matching the query.
type IdeaResult struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PostCount int       `json:"postCount"`
}

// ThreadResult is a public thread matching the query.
type ThreadResult struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
}

// Results groups matches by kind.
type Results struct {
	Query   string         `json:"query"`
	Posts   []PostResult   `json:"posts"`
	Ideas   []IdeaResult   `json:"ideas"`
	Threads []ThreadResult `json:"threads"`
}

// Search runs a query across the public surfaces selected by kind:
// "posts", "ideas", "threads", or anything else for all of them.
// Queries shorter than MinQueryLength return empty results rather than
// an error.
func (s *Service) Search(query, kind string) (*Results, error) {
	query = strings.TrimSpace(query)
	results := &Results{
		Query:   query,
		Posts:   []PostResult{},
		Ideas:   []IdeaResult{},
		Threads: []ThreadResult{},
	}
	if len([]rune(query)) < MinQueryLength {
		return results, nil
	}

	all := kind != "posts" && kind != "ideas" && kind != "threads"
	var err error
	if all || kind == "posts" {
		if results.Posts, err = s.searchPosts(query); err != nil {
			return nil, err
		}
	}
	if all || kind == "ideas" {
		if results.Ideas, err = s.searchIdeas(query); err != nil {
			return nil, err
		}
	}
	if all || kind == "threads" {
		if results.Threads, err = s.searchThreads(query); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Service) searchPosts(query string) ([]PostResult, error) {
	rows, err := s.db.Query(`
		SELECT id, title, slug, excerpt, ts_rank(fts, plainto_tsquery('english', $1)) AS rank
		FROM posts
		WHERE status = 'published' AND fts @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC, published_at DESC
		LIMIT $2
	`, query, postLimit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	results := []PostResult{}
	for rows.Next() {
		var r PostResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Slug, &r.Excerpt, &r.Rank); err != nil {
			return nil, fmt.Errorf("scan post result: %w", err)
		}
		r.Title = Highlight(r.Title, query)
		r.Excerpt = Highlight(r.Excerpt, query)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Service) searchIdeas(query string) ([]IdeaResult, error) {
	rows, err := s.db.Query(`
		SELECT id, name, slug, post_count
		FROM ideas
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY post_count DESC, name ASC
		LIMIT $2
	`, likePattern(query), ideaLimit)
	if err != nil {
		return nil, fmt.Errorf("search ideas: %w", err)
	}
	defer rows.Close()

	results := []IdeaResult{}
	for rows.Next() {
		var r IdeaResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.PostCount); err != nil {
			return nil, fmt.Errorf("scan idea result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Service) searchThreads(query string) ([]ThreadResult, error) {
	rows, err := s.db.Query(`
		SELECT id, title, slug, description
		FROM threads
		WHERE visibility = 'public' AND (title ILIKE $1 OR description ILIKE $1)
		ORDER BY updated_at DESC
		LIMIT $2
	`, likePattern(query), threadLimit)
	if err != nil {
		return nil, fmt.Errorf("search threads: %w", err)
	}
	defer rows.Close()

	results := []ThreadResult{}
	for rows.Next() {
		var r ThreadResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Slug, &r.Description); err != nil {
			return nil, fmt.Errorf("scan thread result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// likeEscaper neutralizes LIKE metacharacters in user queries.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// Highlight wraps case-insensitive occurrences of the query inside text
// with <mark> tags, for result snippets.
func Highlight(text, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return text
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(query))
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, "<mark>$0</mark>")
}

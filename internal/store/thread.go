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

// threadColumns lists all columns for threads SELECTs.
const threadColumns = `id, slug, title, description, status, visibility, created_at, updated_at`

// ThreadStore provides access to thought threads and their nodes.
// Node mutations bump the parent thread's updated_at in the same
// transaction, so "recently active" orderings stay honest.
type ThreadStore struct {
	db *sql.DB
}

// NewThreadStore creates a new ThreadStore backed by the given database.
func NewThreadStore(db *sql.DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// scanThread scans a single threads row into a ThoughtThread.
func scanThread(scanner interface{ Scan(...any) error }) (*models.ThoughtThread, error) {
	var t models.ThoughtThread
	err := scanner.Scan(&t.ID, &t.Slug, &t.Title, &t.Description, &t.Status, &t.Visibility, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new thread. Returns a Conflict error on a duplicate
// slug.
func (s *ThreadStore) Create(t *models.ThoughtThread) (*models.ThoughtThread, error) {
	row := s.db.QueryRow(`
		INSERT INTO threads (slug, title, description, status, visibility)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+threadColumns,
		t.Slug, t.Title, t.Description, t.Status, t.Visibility,
	)
	created, err := scanThread(row)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("a thread with this title already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return created, nil
}

// FindByID retrieves a thread without its nodes. Returns nil if not found.
func (s *ThreadStore) FindByID(id uuid.UUID) (*models.ThoughtThread, error) {
	t, err := scanThread(s.db.QueryRow(`SELECT `+threadColumns+` FROM threads WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find thread by id: %w", err)
	}
	return t, nil
}

// FindPublicBySlug retrieves a public thread by slug, without its nodes.
// Returns nil if not found.
func (s *ThreadStore) FindPublicBySlug(slug string) (*models.ThoughtThread, error) {
	t, err := scanThread(s.db.QueryRow(`
		SELECT `+threadColumns+` FROM threads WHERE slug = $1 AND visibility = 'public'
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find public thread by slug: %w", err)
	}
	return t, nil
}

// ListPublic returns all public threads, most recently updated first,
// without nodes.
func (s *ThreadStore) ListPublic() ([]models.ThoughtThread, error) {
	rows, err := s.db.Query(`
		SELECT ` + threadColumns + ` FROM threads WHERE visibility = 'public' ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list public threads: %w", err)
	}
	defer rows.Close()

	var threads []models.ThoughtThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

// ListAll returns every thread regardless of visibility, most recently
// updated first, without nodes. Admin surface only.
func (s *ThreadStore) ListAll() ([]models.ThoughtThread, error) {
	rows, err := s.db.Query(`SELECT ` + threadColumns + ` FROM threads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []models.ThoughtThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

// ListPublicForPost returns the public threads containing a node that
// references the given post.
func (s *ThreadStore) ListPublicForPost(postID uuid.UUID) ([]models.ThoughtThread, error) {
	rows, err := s.db.Query(`
		SELECT `+threadColumns+`
		FROM threads
		WHERE visibility = 'public'
		  AND id IN (SELECT thread_id FROM thread_nodes WHERE post_id = $1)
		ORDER BY updated_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list threads for post: %w", err)
	}
	defer rows.Close()

	var threads []models.ThoughtThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

// Update persists a thread's title, description, status, and visibility.
func (s *ThreadStore) Update(t *models.ThoughtThread) error {
	_, err := s.db.Exec(`
		UPDATE threads
		SET title = $1, description = $2, status = $3, visibility = $4, updated_at = now()
		WHERE id = $5
	`, t.Title, t.Description, t.Status, t.Visibility, t.ID)
	if err != nil {
		return fmt.Errorf("update thread: %w", err)
	}
	return nil
}

// Delete removes a thread and its nodes. Referenced posts are untouched.
func (s *ThreadStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM threads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

// Nodes returns a thread's nodes in ascending order.
func (s *ThreadStore) Nodes(threadID uuid.UUID) ([]models.ThreadNode, error) {
	rows, err := s.db.Query(`
		SELECT post_id, ord, status, annotation, branch_from, created_at
		FROM thread_nodes
		WHERE thread_id = $1
		ORDER BY ord ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list thread nodes: %w", err)
	}
	defer rows.Close()

	var nodes []models.ThreadNode
	for rows.Next() {
		var n models.ThreadNode
		if err := rows.Scan(&n.PostID, &n.Order, &n.Status, &n.Annotation, &n.BranchFrom, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan thread node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// AppendNode inserts a node with order = max(existing)+1, computed and
// inserted in one transaction, and returns the node with its assigned
// order. Orders are never reused after a removal, so gaps accumulate.
func (s *ThreadStore) AppendNode(threadID uuid.UUID, n models.ThreadNode) (*models.ThreadNode, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("append thread node: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO thread_nodes (thread_id, post_id, ord, status, annotation, branch_from)
		SELECT $1, $2, COALESCE(MAX(ord), -1) + 1, $3, $4, $5
		FROM thread_nodes WHERE thread_id = $1
		RETURNING ord, created_at
	`, threadID, n.PostID, n.Status, n.Annotation, n.BranchFrom).Scan(&n.Order, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert thread node: %w", err)
	}

	if _, err := tx.Exec(`UPDATE threads SET updated_at = now() WHERE id = $1`, threadID); err != nil {
		return nil, fmt.Errorf("touch thread: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("append thread node: %w", err)
	}
	return &n, nil
}

// NodeUpdate carries the optional fields of a node update. Nil pointers
// leave the field unchanged; SetBranchFrom with a nil BranchFrom clears
// the branch point.
type NodeUpdate struct {
	Status        *models.NodeStatus
	Annotation    *string
	BranchFrom    *int
	SetBranchFrom bool
}

// UpdateNode applies a partial update to the node with the given order.
// Returns a NotFound error if the thread has no node at that order.
func (s *ThreadStore) UpdateNode(threadID uuid.UUID, order int, upd NodeUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update thread node: %w", err)
	}
	defer tx.Rollback()

	var n models.ThreadNode
	err = tx.QueryRow(`
		SELECT status, annotation, branch_from FROM thread_nodes
		WHERE thread_id = $1 AND ord = $2
	`, threadID, order).Scan(&n.Status, &n.Annotation, &n.BranchFrom)
	if err == sql.ErrNoRows {
		return apperr.NotFound("node not found in thread")
	}
	if err != nil {
		return fmt.Errorf("find thread node: %w", err)
	}

	if upd.Status != nil {
		n.Status = *upd.Status
	}
	if upd.Annotation != nil {
		n.Annotation = *upd.Annotation
	}
	if upd.SetBranchFrom {
		n.BranchFrom = upd.BranchFrom
	}

	_, err = tx.Exec(`
		UPDATE thread_nodes SET status = $1, annotation = $2, branch_from = $3
		WHERE thread_id = $4 AND ord = $5
	`, n.Status, n.Annotation, n.BranchFrom, threadID, order)
	if err != nil {
		return fmt.Errorf("update thread node: %w", err)
	}

	if _, err := tx.Exec(`UPDATE threads SET updated_at = now() WHERE id = $1`, threadID); err != nil {
		return fmt.Errorf("touch thread: %w", err)
	}
	return tx.Commit()
}

// RemoveNode deletes the node with the given order. Remaining nodes keep
// their orders, and branch references at the removed order are left
// dangling. Removing a nonexistent order is a no-op.
func (s *ThreadStore) RemoveNode(threadID uuid.UUID, order int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("remove thread node: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM thread_nodes WHERE thread_id = $1 AND ord = $2`, threadID, order); err != nil {
		return fmt.Errorf("delete thread node: %w", err)
	}
	if _, err := tx.Exec(`UPDATE threads SET updated_at = now() WHERE id = $1`, threadID); err != nil {
		return fmt.Errorf("touch thread: %w", err)
	}
	return tx.Commit()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package posts implements the post lifecycle: drafting, versioned
// editing, publishing, archival, and deletion. Every content-changing
// edit snapshots the outgoing version before applying the new one, so
// history is complete from version 1.
package posts

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"loom/internal/apperr"
	"loom/internal/backlink"
	"loom/internal/markdown"
	"loom/internal/models"
	"loom/internal/slug"
	"loom/internal/store"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// Service implements post operations on top of the stores.
type Service struct {
	posts     *store.PostStore
	versions  *store.VersionStore
	ideas     *store.IdeaStore
	backlinks *backlink.Service
}

// NewService creates a post service.
func NewService(posts *store.PostStore, versions *store.VersionStore, ideas *store.IdeaStore, backlinks *backlink.Service) *Service {
	return &Service{posts: posts, versions: versions, ideas: ideas, backlinks: backlinks}
}

// CreateInput carries the fields for a new draft.
type CreateInput struct {
	Title    string
	Subtitle string
	Content  string
	Excerpt  string // derived from content when empty
	IdeaIDs  []uuid.UUID
}

// Create creates a draft post. The slug is derived from the title and
// must be unique; a collision is a Conflict the caller resolves by
// retitling.
func (s *Service) Create(in CreateInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.InvalidState("title is required")
	}

	excerpt := in.Excerpt
	if excerpt == "" {
		excerpt = markdown.Excerpt(in.Content, markdown.DefaultExcerptLength)
	}

	wordCount := markdown.WordCount(in.Content)
	post := &models.Post{
		Slug:        slug.Generate(title),
		Title:       title,
		Subtitle:    in.Subtitle,
		Content:     in.Content,
		Excerpt:     excerpt,
		Status:      models.PostStatusDraft,
		WordCount:   wordCount,
		ReadingTime: markdown.ReadingTime(wordCount),
	}

	created, err := s.posts.Create(post)
	if err != nil {
		return nil, err
	}

	if len(in.IdeaIDs) > 0 {
		if err := s.posts.SetIdeas(created.ID, in.IdeaIDs); err != nil {
			return nil, err
		}
		s.recountIdeas(in.IdeaIDs)
	}
	created.Ideas, err = s.posts.IdeaRefs(created.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateInput carries a partial edit. Nil pointers leave the field
// unchanged; a nil IdeaIDs slice leaves the idea set unchanged.
type UpdateInput struct {
	Title      *string
	Subtitle   *string
	Content    *string
	Excerpt    *string
	Metadata   *models.PostMetadata
	IdeaIDs    []uuid.UUID
	ChangeNote string
}

// Update applies an edit to a post. The pre-edit title and content are
// snapshotted as the current version first, then the version counter
// advances; concurrent edits of the same version lose with a Conflict.
// The slug never changes, so inbound links stay valid across retitles.
func (s *Service) Update(id uuid.UUID, in UpdateInput) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}

	_, err = s.versions.Create(&models.PostVersion{
		PostID:     post.ID,
		Version:    post.CurrentVersion,
		Title:      post.Title,
		Content:    post.Content,
		ChangeNote: in.ChangeNote,
	})
	if err != nil {
		return nil, err
	}

	contentChanged := false
	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Subtitle != nil {
		post.Subtitle = *in.Subtitle
	}
	if in.Content != nil && *in.Content != post.Content {
		post.Content = *in.Content
		post.WordCount = markdown.WordCount(post.Content)
		post.ReadingTime = markdown.ReadingTime(post.WordCount)
		contentChanged = true
	}
	switch {
	case in.Excerpt != nil:
		post.Excerpt = *in.Excerpt
	case contentChanged:
		post.Excerpt = markdown.Excerpt(post.Content, markdown.DefaultExcerptLength)
	}
	if in.Metadata != nil {
		post.Metadata = *in.Metadata
	}
	post.CurrentVersion++

	if err := s.posts.Update(post); err != nil {
		return nil, err
	}

	if in.IdeaIDs != nil {
		oldIDs, err := s.posts.IdeaIDs(post.ID)
		if err != nil {
			return nil, err
		}
		if err := s.posts.SetIdeas(post.ID, in.IdeaIDs); err != nil {
			return nil, err
		}
		s.recountIdeas(append(oldIDs, in.IdeaIDs...))
	}

	if contentChanged && post.IsPublished() {
		if err := s.backlinks.Rebuild(post.ID, post.Content); err != nil {
			slog.Error("reference rebuild failed after edit", "post_id", post.ID, "error", err)
		}
	}

	post.Ideas, err = s.posts.IdeaRefs(post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Publish makes a post publicly visible, stamps publishedAt, and derives
// any SEO metadata left empty. Publishing a published post is an
// InvalidState; archived posts republish with their original timestamp
// intact.
func (s *Service) Publish(id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}
	if post.IsPublished() {
		return nil, apperr.InvalidState("post is already published")
	}

	post.Status = models.PostStatusPublished
	if post.PublishedAt == nil {
		now := timeNow()
		post.PublishedAt = &now
	}
	if post.Metadata.SEOTitle == "" {
		post.Metadata.SEOTitle = post.Title
	}
	if post.Metadata.SEODescription == "" {
		post.Metadata.SEODescription = post.Excerpt
	}

	if err := s.posts.Update(post); err != nil {
		return nil, err
	}

	if err := s.backlinks.Rebuild(post.ID, post.Content); err != nil {
		slog.Error("reference rebuild failed after publish", "post_id", post.ID, "error", err)
	}

	ideaIDs, err := s.posts.IdeaIDs(post.ID)
	if err != nil {
		return nil, err
	}
	s.recountIdeas(ideaIDs)

	post.Ideas, err = s.posts.IdeaRefs(post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Archive hides a post from public surfaces without touching its
// version history or publishedAt. Drafts archive too, skipping publish
// entirely. References pointing at an archived post stay stored and
// simply stop resolving; a later republish restores them.
func (s *Service) Archive(id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}
	if post.Status == models.PostStatusArchived {
		return nil, apperr.InvalidState("post is already archived")
	}

	post.Status = models.PostStatusArchived
	if err := s.posts.Update(post); err != nil {
		return nil, err
	}

	ideaIDs, err := s.posts.IdeaIDs(post.ID)
	if err != nil {
		return nil, err
	}
	s.recountIdeas(ideaIDs)
	return post, nil
}

// Delete removes a post, its versions, and every reference edge touching
// it, then recounts the ideas it carried. Thread nodes referencing the
// post are left in place.
func (s *Service) Delete(id uuid.UUID) error {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return apperr.NotFound("post not found")
	}

	ideaIDs, err := s.posts.IdeaIDs(post.ID)
	if err != nil {
		return err
	}

	if err := s.versions.DeleteByPost(post.ID); err != nil {
		return err
	}
	if err := s.backlinks.DeleteForPost(post.ID); err != nil {
		return err
	}
	if err := s.posts.Delete(post.ID); err != nil {
		return err
	}

	s.recountIdeas(ideaIDs)
	return nil
}

// GetByIDOrSlug resolves an admin post reference: a parseable UUID looks
// up by ID, anything else by slug, in either case regardless of status.
func (s *Service) GetByIDOrSlug(ref string) (*models.Post, error) {
	var post *models.Post
	var err error
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		post, err = s.posts.FindByID(id)
	} else {
		post, err = s.posts.FindBySlug(ref)
	}
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}
	post.Ideas, err = s.posts.IdeaRefs(post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPublishedBySlug resolves a public post page.
func (s *Service) GetPublishedBySlug(slug string) (*models.Post, error) {
	post, err := s.posts.FindPublishedBySlug(slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}
	post.Ideas, err = s.posts.IdeaRefs(post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns posts matching the options plus the total match count.
func (s *Service) List(opts store.ListOptions) ([]models.Post, int, error) {
	posts, total, err := s.posts.List(opts)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		posts[i].Ideas, err = s.posts.IdeaRefs(posts[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

// Versions returns a post's version history, newest first, without
// content.
func (s *Service) Versions(id uuid.UUID) ([]models.PostVersion, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}
	return s.versions.ListByPost(id)
}

// Version returns one full version snapshot.
func (s *Service) Version(id uuid.UUID, version int) (*models.PostVersion, error) {
	v, err := s.versions.FindByPostAndVersion(id, version)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound("version %d not found", version)
	}
	return v, nil
}

// recountIdeas refreshes the denormalized post counters for the given
// ideas. Failures are logged, not returned: a stale counter self-heals
// on the next recount.
func (s *Service) recountIdeas(ideaIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(ideaIDs))
	for _, ideaID := range ideaIDs {
		if seen[ideaID] {
			continue
		}
		seen[ideaID] = true
		count, err := s.ideas.CountPublishedPosts(ideaID)
		if err != nil {
			slog.Error("idea recount failed", "idea_id", ideaID, "error", err)
			continue
		}
		if err := s.ideas.UpdatePostCount(ideaID, count); err != nil {
			slog.Error("idea recount failed", "idea_id", ideaID, "error", err)
		}
	}
}

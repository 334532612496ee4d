// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"loom/internal/analytics"
	"loom/internal/backlink"
	"loom/internal/cache"
	"loom/internal/ideagraph"
	"loom/internal/models"
	"loom/internal/posts"
	"loom/internal/store"
	"loom/internal/thread"
)

// Admin groups the write-side HTTP handlers and their dependencies.
// Every successful mutation clears the response cache, since a single
// change can surface across posts, listings, the graph, and search.
type Admin struct {
	posts     *posts.Service
	ideas     *ideagraph.Service
	threads   *thread.Service
	backlinks *backlink.Service
	reporter  *analytics.Reporter
	cache     *cache.ResponseCache
}

// NewAdmin creates the admin handler group.
func NewAdmin(postSvc *posts.Service, ideas *ideagraph.Service, threads *thread.Service,
	backlinks *backlink.Service, reporter *analytics.Reporter, respCache *cache.ResponseCache) *Admin {
	return &Admin{
		posts:     postSvc,
		ideas:     ideas,
		threads:   threads,
		backlinks: backlinks,
		reporter:  reporter,
		cache:     respCache,
	}
}

func (a *Admin) invalidate(r *http.Request) {
	a.cache.InvalidateAll(r.Context())
}

// --- Posts ---

// postBody is the JSON request shape shared by post create and update.
type postBody struct {
	Title      *string               `json:"title"`
	Subtitle   *string               `json:"subtitle"`
	Content    *string               `json:"content"`
	Excerpt    *string               `json:"excerpt"`
	Metadata   *models.PostMetadata  `json:"metadata"`
	IdeaIDs    []uuid.UUID           `json:"ideaIds"`
	ChangeNote string                `json:"changeNote"`
}

// ListPosts serves GET /admin/posts — posts in any status with optional
// filter and paging.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := store.ListOptions{
		Status: models.PostStatus(q.Get("status")),
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("sort"),
	}
	if opts.Sort == "" {
		opts.Sort = "-updatedAt"
	}

	list, total, err := a.posts.List(opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": list,
		"total": total,
	})
}

// CreatePost serves POST /admin/posts — creates a draft.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body postBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Title == nil {
		writeBadRequest(w, "Title is required.")
		return
	}
	if msg := validatePostFields(body.Title, body.Content, body.Excerpt); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	in := posts.CreateInput{Title: *body.Title, IdeaIDs: body.IdeaIDs}
	if body.Subtitle != nil {
		in.Subtitle = *body.Subtitle
	}
	if body.Content != nil {
		in.Content = *body.Content
	}
	if body.Excerpt != nil {
		in.Excerpt = *body.Excerpt
	}

	post, err := a.posts.Create(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusCreated, post)
}

// GetPost serves GET /admin/posts/{ref} — by id or slug, any status.
func (a *Admin) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// UpdatePost serves PUT /admin/posts/{ref} — a versioned partial edit.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body postBody
	if !decodeBody(w, r, &body) {
		return
	}
	if msg := validatePostFields(body.Title, body.Content, body.Excerpt); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	updated, err := a.posts.Update(post.ID, posts.UpdateInput{
		Title:      body.Title,
		Subtitle:   body.Subtitle,
		Content:    body.Content,
		Excerpt:    body.Excerpt,
		Metadata:   body.Metadata,
		IdeaIDs:    body.IdeaIDs,
		ChangeNote: body.ChangeNote,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, updated)
}

// DeletePost serves DELETE /admin/posts/{ref}.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.posts.Delete(post.ID); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// PublishPost serves POST /admin/posts/{ref}/publish.
func (a *Admin) PublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	published, err := a.posts.Publish(post.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, published)
}

// ArchivePost serves POST /admin/posts/{ref}/archive.
func (a *Admin) ArchivePost(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	archived, err := a.posts.Archive(post.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, archived)
}

// ListVersions serves GET /admin/posts/{ref}/versions — the history,
// newest first, without content.
func (a *Admin) ListVersions(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	versions, err := a.posts.Versions(post.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if versions == nil {
		versions = []models.PostVersion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// GetVersion serves GET /admin/posts/{ref}/versions/{version} — one full
// snapshot.
func (a *Admin) GetVersion(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil {
		writeBadRequest(w, "version must be a number")
		return
	}
	v, err := a.posts.Version(post.ID, version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// PostStats serves GET /admin/posts/{ref}/stats?days= — the reading
// summary for one post.
func (a *Admin) PostStats(w http.ResponseWriter, r *http.Request) {
	post, err := a.posts.GetByIDOrSlug(chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	report, err := a.reporter.PostStats(post.ID, days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- Ideas ---

// ideaBody is the JSON request shape shared by idea create and update.
type ideaBody struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	RelatedIDs  []uuid.UUID `json:"relatedIds"`
}

// CreateIdea serves POST /admin/ideas.
func (a *Admin) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var body ideaBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Name == nil {
		writeBadRequest(w, "Name is required.")
		return
	}
	if msg := validateIdeaFields(body.Name, body.Description); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	in := ideagraph.CreateInput{Name: *body.Name, RelatedIDs: body.RelatedIDs}
	if body.Description != nil {
		in.Description = *body.Description
	}

	idea, err := a.ideas.Create(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusCreated, idea)
}

// UpdateIdea serves PUT /admin/ideas/{id}.
func (a *Admin) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid idea id")
		return
	}

	var body ideaBody
	if !decodeBody(w, r, &body) {
		return
	}
	if msg := validateIdeaFields(body.Name, body.Description); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	idea, err := a.ideas.Update(id, ideagraph.UpdateInput{
		Name:        body.Name,
		Description: body.Description,
		RelatedIDs:  body.RelatedIDs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, idea)
}

// DeleteIdea serves DELETE /admin/ideas/{id}.
func (a *Admin) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid idea id")
		return
	}
	if err := a.ideas.Delete(id); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// --- Threads ---

// threadBody is the JSON request shape shared by thread create and update.
type threadBody struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.ThreadStatus `json:"status"`
	Visibility  *models.Visibility   `json:"visibility"`
}

// ListThreads serves GET /admin/threads — every thread, private
// included.
func (a *Admin) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := a.threads.ListAll()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if threads == nil {
		threads = []models.ThoughtThread{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

// CreateThread serves POST /admin/threads.
func (a *Admin) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body threadBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Title == nil {
		writeBadRequest(w, "Title is required.")
		return
	}
	if msg := validateThreadFields(body.Title, body.Description); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	in := thread.CreateInput{Title: *body.Title}
	if body.Description != nil {
		in.Description = *body.Description
	}
	if body.Visibility != nil {
		in.Visibility = *body.Visibility
	}

	created, err := a.threads.Create(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusCreated, created)
}

// GetThread serves GET /admin/threads/{id} — any thread with its
// timeline.
func (a *Admin) GetThread(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid thread id")
		return
	}
	page, err := a.threads.ByID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UpdateThread serves PUT /admin/threads/{id}.
func (a *Admin) UpdateThread(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid thread id")
		return
	}

	var body threadBody
	if !decodeBody(w, r, &body) {
		return
	}
	if msg := validateThreadFields(body.Title, body.Description); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	updated, err := a.threads.Update(id, thread.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Visibility:  body.Visibility,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteThread serves DELETE /admin/threads/{id}.
func (a *Admin) DeleteThread(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid thread id")
		return
	}
	if err := a.threads.Delete(id); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// nodeBody is the JSON request shape for adding a node.
type nodeBody struct {
	PostID     uuid.UUID         `json:"postId"`
	Status     models.NodeStatus `json:"status"`
	Annotation string            `json:"annotation"`
	BranchFrom *int              `json:"branchFrom"`
}

// AddNode serves POST /admin/threads/{id}/nodes — appends a post to the
// thread.
func (a *Admin) AddNode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid thread id")
		return
	}

	var body nodeBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.PostID == uuid.Nil {
		writeBadRequest(w, "postId is required")
		return
	}
	if msg := validateAnnotation(body.Annotation); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	node, err := a.threads.AddNode(id, thread.AddNodeInput{
		PostID:     body.PostID,
		Status:     body.Status,
		Annotation: body.Annotation,
		BranchFrom: body.BranchFrom,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusCreated, node)
}

// nodeUpdateBody is the JSON request shape for a partial node update.
// branchFrom distinguishes absent from explicit null via the raw
// presence check in the handler.
type nodeUpdateBody struct {
	Status     *models.NodeStatus `json:"status"`
	Annotation *string            `json:"annotation"`
	BranchFrom *int               `json:"branchFrom"`
	// SetBranchFrom must be true to change the branch point; with a null
	// branchFrom it clears it.
	SetBranchFrom bool `json:"setBranchFrom"`
}

// UpdateNode serves PUT /admin/threads/{id}/nodes/{order}.
func (a *Admin) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid thread id")
		return
	}
	order, err := strconv.Atoi(chi.URLParam(r, "order"))
	if err != nil {
		writeBadRequest(w, "order must be a number")
		return
	}

	var body nodeUpdateBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Annotation != nil {
		if msg := validateAnnotation(*body.Annotation); msg != "" {
			writeBadRequest(w, msg)
			return
		}
	}

	err = a.threads.UpdateNode(id, order, store.NodeUpdate{
		Status:        body.Status,
		Annotation:    body.Annotation,
		BranchFrom:    body.BranchFrom,
		SetBranchFrom: body.SetBranchFrom || body.BranchFrom != nil,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// RemoveNode serves DELETE /admin/threads/{id}/nodes/{order}.
func (a *Admin) RemoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid thread id")
		return
	}
	order, err := strconv.Atoi(chi.URLParam(r, "order"))
	if err != nil {
		writeBadRequest(w, "order must be a number")
		return
	}
	if err := a.threads.RemoveNode(id, order); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// --- Maintenance ---

// RebuildReferences serves POST /admin/references/rebuild — recomputes
// the reference graph from every published post.
func (a *Admin) RebuildReferences(w http.ResponseWriter, r *http.Request) {
	result, err := a.backlinks.RebuildAll()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r)
	writeJSON(w, http.StatusOK, result)
}

// SiteStats serves GET /admin/stats?days= — the site-wide reading
// summary.
func (a *Admin) SiteStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	report, err := a.reporter.SiteStats(days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

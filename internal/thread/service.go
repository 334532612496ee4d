// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package thread implements thought threads: ordered sequences of posts
// tracing how a line of thinking evolved, with optional branches off
// earlier entries. Nodes reference posts loosely so a thread's narrative
// survives post deletion.
package thread

import (
	"strings"

	"github.com/google/uuid"

	"loom/internal/apperr"
	"loom/internal/models"
	"loom/internal/slug"
	"loom/internal/store"
)

// Service implements thread operations.
type Service struct {
	threads *store.ThreadStore
	posts   *store.PostStore
}

// NewService creates a thread service.
func NewService(threads *store.ThreadStore, posts *store.PostStore) *Service {
	return &Service{threads: threads, posts: posts}
}

// CreateInput carries the fields for a new thread.
type CreateInput struct {
	Title       string
	Description string
	Visibility  models.Visibility
}

// Create creates an empty active thread. The slug is derived from the
// title; a collision is a Conflict.
func (s *Service) Create(in CreateInput) (*models.ThoughtThread, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.InvalidState("title is required")
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	return s.threads.Create(&models.ThoughtThread{
		Slug:        slug.Generate(title),
		Title:       title,
		Description: in.Description,
		Status:      models.ThreadStatusActive,
		Visibility:  visibility,
	})
}

// UpdateInput carries a partial thread edit. Nil pointers leave the
// field unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *models.ThreadStatus
	Visibility  *models.Visibility
}

// Update edits a thread's metadata. The slug never changes.
func (s *Service) Update(id uuid.UUID, in UpdateInput) (*models.ThoughtThread, error) {
	thread, err := s.threads.FindByID(id)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperr.NotFound("thread not found")
	}

	if in.Title != nil {
		thread.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		thread.Description = *in.Description
	}
	if in.Status != nil {
		thread.Status = *in.Status
	}
	if in.Visibility != nil {
		thread.Visibility = *in.Visibility
	}

	if err := s.threads.Update(thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// Delete removes a thread and its nodes. The referenced posts are never
// touched.
func (s *Service) Delete(id uuid.UUID) error {
	thread, err := s.threads.FindByID(id)
	if err != nil {
		return err
	}
	if thread == nil {
		return apperr.NotFound("thread not found")
	}
	return s.threads.Delete(id)
}

// AddNodeInput carries the fields for a new node.
type AddNodeInput struct {
	PostID     uuid.UUID
	Status     models.NodeStatus
	Annotation string
	BranchFrom *int
}

// AddNode appends a post to a thread. The post must exist (any status);
// BranchFrom is stored as given and not validated against existing
// orders, since the order it names may legitimately be removed later
// anyway.
func (s *Service) AddNode(threadID uuid.UUID, in AddNodeInput) (*models.ThreadNode, error) {
	thread, err := s.threads.FindByID(threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperr.NotFound("thread not found")
	}

	post, err := s.posts.FindByID(in.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post not found")
	}

	status := in.Status
	if status == "" {
		status = models.NodeStatusActive
	}

	return s.threads.AppendNode(threadID, models.ThreadNode{
		PostID:     in.PostID,
		Status:     status,
		Annotation: in.Annotation,
		BranchFrom: in.BranchFrom,
	})
}

// UpdateNode applies a partial update to the node at the given order.
func (s *Service) UpdateNode(threadID uuid.UUID, order int, upd store.NodeUpdate) error {
	thread, err := s.threads.FindByID(threadID)
	if err != nil {
		return err
	}
	if thread == nil {
		return apperr.NotFound("thread not found")
	}
	return s.threads.UpdateNode(threadID, order, upd)
}

// RemoveNode removes the node at the given order. Surviving nodes keep
// their orders and dangling branch references are left alone.
func (s *Service) RemoveNode(threadID uuid.UUID, order int) error {
	thread, err := s.threads.FindByID(threadID)
	if err != nil {
		return err
	}
	if thread == nil {
		return apperr.NotFound("thread not found")
	}
	return s.threads.RemoveNode(threadID, order)
}

// NodeView is a thread node joined with its post, if the post is still
// published. Post is nil for deleted or unpublished posts; the node's
// annotation still tells the story.
type NodeView struct {
	models.ThreadNode
	Post *models.Post `json:"post"`
}

// Branch is a run of nodes branching off one trunk order.
type Branch struct {
	From  int        `json:"from"`
	Nodes []NodeView `json:"nodes"`
}

// Timeline is a thread's nodes partitioned into the main line and its
// branches.
type Timeline struct {
	Trunk    []NodeView `json:"trunk"`
	Branches []Branch   `json:"branches"`
}

// ThreadPage is the public detail view of a thread.
type ThreadPage struct {
	Thread   *models.ThoughtThread `json:"thread"`
	Timeline Timeline              `json:"timeline"`
}

// BySlug returns a public thread with its timeline. Node posts are
// joined only while published.
func (s *Service) BySlug(threadSlug string) (*ThreadPage, error) {
	thread, err := s.threads.FindPublicBySlug(threadSlug)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperr.NotFound("thread not found")
	}

	views, err := s.nodeViews(thread.ID)
	if err != nil {
		return nil, err
	}
	return &ThreadPage{Thread: thread, Timeline: buildTimeline(views)}, nil
}

// ByID returns any thread with its timeline, for the admin surface.
func (s *Service) ByID(id uuid.UUID) (*ThreadPage, error) {
	thread, err := s.threads.FindByID(id)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperr.NotFound("thread not found")
	}

	views, err := s.nodeViews(thread.ID)
	if err != nil {
		return nil, err
	}
	return &ThreadPage{Thread: thread, Timeline: buildTimeline(views)}, nil
}

// List returns all public threads, most recently active first.
func (s *Service) List() ([]models.ThoughtThread, error) {
	return s.threads.ListPublic()
}

// ListAll returns every thread including private ones, for the admin
// surface.
func (s *Service) ListAll() ([]models.ThoughtThread, error) {
	return s.threads.ListAll()
}

// ForPost returns the public threads a post appears in.
func (s *Service) ForPost(postID uuid.UUID) ([]models.ThoughtThread, error) {
	return s.threads.ListPublicForPost(postID)
}

func (s *Service) nodeViews(threadID uuid.UUID) ([]NodeView, error) {
	nodes, err := s.threads.Nodes(threadID)
	if err != nil {
		return nil, err
	}

	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		view := NodeView{ThreadNode: n}
		post, err := s.posts.FindByID(n.PostID)
		if err != nil {
			return nil, err
		}
		if post != nil && post.IsPublished() {
			post.Content = ""
			view.Post = post
		}
		views = append(views, view)
	}
	return views, nil
}

// buildTimeline partitions nodes into the trunk and branch runs. Nodes
// sharing a BranchFrom form one branch, ordered as stored. Branches off
// orders that no longer exist are kept and appended after the ones with
// live anchors: the thinking they record is still part of the thread.
func buildTimeline(views []NodeView) Timeline {
	timeline := Timeline{Trunk: []NodeView{}}

	trunkOrders := make(map[int]bool)
	byBranch := make(map[int][]NodeView)
	var branchOrder []int
	for _, v := range views {
		if v.BranchFrom == nil {
			timeline.Trunk = append(timeline.Trunk, v)
			trunkOrders[v.Order] = true
			continue
		}
		from := *v.BranchFrom
		if _, seen := byBranch[from]; !seen {
			branchOrder = append(branchOrder, from)
		}
		byBranch[from] = append(byBranch[from], v)
	}

	var anchored, orphaned []Branch
	for _, from := range branchOrder {
		b := Branch{From: from, Nodes: byBranch[from]}
		if trunkOrders[from] {
			anchored = append(anchored, b)
		} else {
			orphaned = append(orphaned, b)
		}
	}
	timeline.Branches = append(anchored, orphaned...)
	return timeline
}

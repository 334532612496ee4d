// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ideagraph manages ideas and the co-occurrence graph built from
// them. An edge exists between two ideas when at least one published post
// carries both; edge weight is the number of such posts.
package ideagraph

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"loom/internal/apperr"
	"loom/internal/models"
	"loom/internal/slug"
	"loom/internal/store"
)

// Service implements idea operations and graph aggregation.
type Service struct {
	ideas *store.IdeaStore
	posts *store.PostStore
}

// NewService creates an idea graph service.
func NewService(ideas *store.IdeaStore, posts *store.PostStore) *Service {
	return &Service{ideas: ideas, posts: posts}
}

// CreateInput carries the fields for a new idea.
type CreateInput struct {
	Name        string
	Description string
	RelatedIDs  []uuid.UUID
}

// Create creates an idea. The slug is derived from the name; names are
// unique, so a duplicate is a Conflict.
func (s *Service) Create(in CreateInput) (*models.Idea, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidState("name is required")
	}

	created, err := s.ideas.Create(&models.Idea{
		Name:        name,
		Slug:        slug.Generate(name),
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}

	if len(in.RelatedIDs) > 0 {
		if err := s.ideas.SetRelated(created.ID, in.RelatedIDs); err != nil {
			return nil, err
		}
	}
	created.RelatedIdeas, err = s.ideas.Related(created.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateInput carries a partial idea edit. Nil pointers leave the field
// unchanged; a nil RelatedIDs slice leaves the relations unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	RelatedIDs  []uuid.UUID
}

// Update edits an idea's name, description, or curated relations. The
// slug never changes, so wiki links keep resolving across renames.
func (s *Service) Update(id uuid.UUID, in UpdateInput) (*models.Idea, error) {
	idea, err := s.ideas.FindByID(id)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperr.NotFound("idea not found")
	}

	if in.Name != nil {
		idea.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		idea.Description = *in.Description
	}
	if err := s.ideas.Update(idea); err != nil {
		return nil, err
	}

	if in.RelatedIDs != nil {
		if err := s.ideas.SetRelated(idea.ID, in.RelatedIDs); err != nil {
			return nil, err
		}
	}
	idea.RelatedIdeas, err = s.ideas.Related(idea.ID)
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// List returns all ideas, most-used first, with curated relations.
func (s *Service) List() ([]models.Idea, error) {
	ideas, err := s.ideas.List()
	if err != nil {
		return nil, err
	}
	for i := range ideas {
		ideas[i].RelatedIdeas, err = s.ideas.Related(ideas[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return ideas, nil
}

// RelatedIdea is a curated relation annotated with how many published
// posts the two ideas share.
type RelatedIdea struct {
	models.IdeaRef
	SharedPosts int `json:"sharedPosts"`
}

// IdeaPage is the public detail view of an idea.
type IdeaPage struct {
	Idea    *models.Idea  `json:"idea"`
	Posts   []models.Post `json:"posts"`
	Related []RelatedIdea `json:"related"`
}

// BySlug returns an idea with its published posts and annotated
// relations.
func (s *Service) BySlug(ideaSlug string) (*IdeaPage, error) {
	idea, err := s.ideas.FindBySlug(ideaSlug)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperr.NotFound("idea not found")
	}

	posts, err := s.ideas.PublishedPostsWithIdea(idea.ID)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Ideas, err = s.posts.IdeaRefs(posts[i].ID)
		if err != nil {
			return nil, err
		}
	}

	refs, err := s.ideas.Related(idea.ID)
	if err != nil {
		return nil, err
	}
	idea.RelatedIdeas = refs

	related := make([]RelatedIdea, 0, len(refs))
	for _, ref := range refs {
		shared, err := s.ideas.CountPublishedPostsSharing(idea.ID, ref.ID)
		if err != nil {
			return nil, err
		}
		related = append(related, RelatedIdea{IdeaRef: ref, SharedPosts: shared})
	}

	return &IdeaPage{Idea: idea, Posts: posts, Related: related}, nil
}

// GraphNode is an idea in the co-occurrence graph.
type GraphNode struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PostCount int       `json:"postCount"`
}

// GraphEdge is an undirected co-occurrence edge. Source and Target are
// idea slugs with Source < Target, so each pair appears exactly once no
// matter the order ideas were attached in.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is the full idea graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Graph builds the co-occurrence graph over all ideas and published
// posts.
func (s *Service) Graph() (*Graph, error) {
	ideas, err := s.ideas.List()
	if err != nil {
		return nil, err
	}
	nodes := make([]GraphNode, 0, len(ideas))
	for _, i := range ideas {
		nodes = append(nodes, GraphNode{ID: i.ID, Name: i.Name, Slug: i.Slug, PostCount: i.PostCount})
	}

	sets, err := s.ideas.PublishedIdeaSlugSets()
	if err != nil {
		return nil, err
	}
	return &Graph{Nodes: nodes, Edges: buildEdges(sets)}, nil
}

// edgeKey canonicalizes an unordered slug pair.
type edgeKey struct {
	a, b string
}

// buildEdges aggregates per-post idea slug sets into weighted edges.
// Deterministic: edges come back sorted by source then target.
func buildEdges(sets [][]string) []GraphEdge {
	weights := make(map[edgeKey]int)
	for _, set := range sets {
		for i := 0; i < len(set); i++ {
			for j := i + 1; j < len(set); j++ {
				a, b := set[i], set[j]
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				weights[edgeKey{a, b}]++
			}
		}
	}

	edges := make([]GraphEdge, 0, len(weights))
	for k, w := range weights {
		edges = append(edges, GraphEdge{Source: k.a, Target: k.b, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// Delete removes an idea, detaching it from posts and severing its
// relations in both directions. Posts themselves are untouched.
func (s *Service) Delete(id uuid.UUID) error {
	idea, err := s.ideas.FindByID(id)
	if err != nil {
		return err
	}
	if idea == nil {
		return apperr.NotFound("idea not found")
	}

	if err := s.ideas.RemoveFromPosts(id); err != nil {
		return err
	}
	if err := s.ideas.RemoveRelatedReferences(id); err != nil {
		return err
	}
	return s.ideas.Delete(id)
}

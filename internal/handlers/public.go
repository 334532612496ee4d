// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"loom/internal/analytics"
	"loom/internal/backlink"
	"loom/internal/cache"
	"loom/internal/ideagraph"
	"loom/internal/markdown"
	"loom/internal/models"
	"loom/internal/posts"
	"loom/internal/search"
	"loom/internal/store"
	"loom/internal/thread"
)

// Public groups the read-side HTTP handlers and their dependencies.
type Public struct {
	posts     *posts.Service
	backlinks *backlink.Service
	ideas     *ideagraph.Service
	ideaStore *store.IdeaStore
	threads   *thread.Service
	search    *search.Service
	tracker   *analytics.Tracker
	cache     *cache.ResponseCache
}

// NewPublic creates the public handler group.
func NewPublic(postSvc *posts.Service, backlinks *backlink.Service, ideas *ideagraph.Service,
	ideaStore *store.IdeaStore, threads *thread.Service, searchSvc *search.Service,
	tracker *analytics.Tracker, respCache *cache.ResponseCache) *Public {
	return &Public{
		posts:     postSvc,
		backlinks: backlinks,
		ideas:     ideas,
		ideaStore: ideaStore,
		threads:   threads,
		search:    searchSvc,
		tracker:   tracker,
		cache:     respCache,
	}
}

// cached serves the response from the cache when possible, otherwise
// loads it, stores the encoded body, and writes it. Load errors bypass
// the cache entirely.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, load func() (any, error)) {
	if body, ok := p.cache.Get(r.Context(), key); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	payload, err := load()
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.cache.Set(r.Context(), key, body, ttl)
	writeRawJSON(w, http.StatusOK, body)
}

// pagination is the paging envelope on list responses.
type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListPosts serves GET /api/posts — published posts, newest first, with
// optional idea filter and paging.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	opts := store.ListOptions{
		Status: models.PostStatusPublished,
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("sort"),
	}
	if ideaSlug := q.Get("idea"); ideaSlug != "" {
		idea, err := p.ideaStore.FindBySlug(ideaSlug)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if idea == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"posts":      []models.Post{},
				"pagination": pagination{Page: page, Limit: limit},
			})
			return
		}
		opts.IdeaID = idea.ID
	}

	key := "posts:list:" + r.URL.RawQuery
	p.cached(w, r, key, cache.PostTTL, func() (any, error) {
		list, total, err := p.posts.List(opts)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []models.Post{}
		}
		totalPages := (total + limit - 1) / limit
		return map[string]any{
			"posts":      list,
			"pagination": pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
		}, nil
	})
}

// GetPost serves GET /api/posts/{slug} — a published post with its
// table of contents, backlinks, outbound links, and the public threads
// it appears in.
func (p *Public) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p.cached(w, r, "posts:"+slug, cache.PostTTL, func() (any, error) {
		post, err := p.posts.GetPublishedBySlug(slug)
		if err != nil {
			return nil, err
		}
		toc := markdown.Headings(post.Content)
		if toc == nil {
			toc = []markdown.Heading{}
		}

		backlinks, err := p.backlinks.Backlinks(post.ID)
		if err != nil {
			return nil, err
		}
		if backlinks == nil {
			backlinks = []store.LinkedPost{}
		}
		outbound, err := p.backlinks.Outbound(post.ID)
		if err != nil {
			return nil, err
		}
		if outbound == nil {
			outbound = []store.LinkedPost{}
		}
		threads, err := p.threads.ForPost(post.ID)
		if err != nil {
			return nil, err
		}
		if threads == nil {
			threads = []models.ThoughtThread{}
		}

		return map[string]any{
			"post":      post,
			"toc":       toc,
			"backlinks": backlinks,
			"outbound":  outbound,
			"threads":   threads,
		}, nil
	})
}

// ListIdeas serves GET /api/ideas — all ideas, most-used first.
func (p *Public) ListIdeas(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, "ideas:list", cache.PostTTL, func() (any, error) {
		ideas, err := p.ideas.List()
		if err != nil {
			return nil, err
		}
		if ideas == nil {
			ideas = []models.Idea{}
		}
		return map[string]any{"ideas": ideas}, nil
	})
}

// GetIdea serves GET /api/ideas/{slug} — an idea with its published
// posts and annotated relations.
func (p *Public) GetIdea(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p.cached(w, r, "ideas:"+slug, cache.PostTTL, func() (any, error) {
		return p.ideas.BySlug(slug)
	})
}

// Graph serves GET /api/ideas/graph — the full co-occurrence graph.
func (p *Public) Graph(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, "graph", cache.GraphTTL, func() (any, error) {
		return p.ideas.Graph()
	})
}

// ListThreads serves GET /api/threads — public threads, most recently
// active first.
func (p *Public) ListThreads(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, "threads:list", cache.PostTTL, func() (any, error) {
		threads, err := p.threads.List()
		if err != nil {
			return nil, err
		}
		if threads == nil {
			threads = []models.ThoughtThread{}
		}
		return map[string]any{"threads": threads}, nil
	})
}

// GetThread serves GET /api/threads/{slug} — a public thread with its
// timeline.
func (p *Public) GetThread(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p.cached(w, r, "threads:"+slug, cache.PostTTL, func() (any, error) {
		return p.threads.BySlug(slug)
	})
}

// Search serves GET /api/search?q=&type= — unified search over posts,
// ideas, and threads, optionally narrowed to one kind.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	kind := r.URL.Query().Get("type")

	p.cached(w, r, "search:"+kind+":"+query, cache.SearchTTL, func() (any, error) {
		return p.search.Search(query, kind)
	})
}

// Track serves POST /api/analytics/events — buffers a reading signal.
// Any well-formed event is accepted with 202; unresolvable slugs are
// dropped later at flush time, never reported to the reader.
func (p *Public) Track(w http.ResponseWriter, r *http.Request) {
	var event analytics.Event
	if !decodeBody(w, r, &event) {
		return
	}
	p.tracker.Track(event)
	w.WriteHeader(http.StatusAccepted)
}

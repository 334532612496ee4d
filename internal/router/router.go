// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes
// are organized into a public read API and an admin write API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"loom/internal/handlers"
	"loom/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(public *handlers.Public, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check.
	r.Get("/health", healthHandler)

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", public.ListPosts)
			r.Get("/{slug}", public.GetPost)
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", public.ListIdeas)
			r.Get("/graph", public.Graph)
			r.Get("/{slug}", public.GetIdea)
		})

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", public.ListThreads)
			r.Get("/{slug}", public.GetThread)
		})

		r.Get("/search", public.Search)
		r.Post("/analytics/events", public.Track)
	})

	// Admin write API. Authentication is expected to terminate at the
	// reverse proxy in front of this service.
	r.Route("/admin", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", admin.ListPosts)
			r.Post("/", admin.CreatePost)
			r.Route("/{ref}", func(r chi.Router) {
				r.Get("/", admin.GetPost)
				r.Put("/", admin.UpdatePost)
				r.Delete("/", admin.DeletePost)
				r.Post("/publish", admin.PublishPost)
				r.Post("/archive", admin.ArchivePost)
				r.Get("/versions", admin.ListVersions)
				r.Get("/versions/{version}", admin.GetVersion)
				r.Get("/stats", admin.PostStats)
			})
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Post("/", admin.CreateIdea)
			r.Put("/{id}", admin.UpdateIdea)
			r.Delete("/{id}", admin.DeleteIdea)
		})

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", admin.ListThreads)
			r.Post("/", admin.CreateThread)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", admin.GetThread)
				r.Put("/", admin.UpdateThread)
				r.Delete("/", admin.DeleteThread)
				r.Post("/nodes", admin.AddNode)
				r.Put("/nodes/{order}", admin.UpdateNode)
				r.Delete("/nodes/{order}", admin.RemoveNode)
			})
		})

		r.Post("/references/rebuild", admin.RebuildReferences)
		r.Get("/stats", admin.SiteStats)
	})

	return r
}

// healthHandler responds to health checks from load balancers and
// container orchestrators.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

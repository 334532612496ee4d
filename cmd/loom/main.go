// Package main is the entry point for the Loom publishing server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loom/internal/analytics"
	"loom/internal/backlink"
	"loom/internal/cache"
	"loom/internal/config"
	"loom/internal/database"
	"loom/internal/handlers"
	"loom/internal/ideagraph"
	"loom/internal/posts"
	"loom/internal/router"
	"loom/internal/search"
	"loom/internal/store"
	"loom/internal/thread"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey. The response cache degrades to pass-through if
	// it is unavailable, so a cache outage never blocks startup in dev.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		if !cfg.IsDev() {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		slog.Warn("valkey unavailable — responses served uncached", "error", err)
		valkeyClient = nil
	}
	if valkeyClient != nil {
		defer valkeyClient.Close()
	}
	respCache := cache.NewResponseCache(valkeyClient)

	// Initialize data stores.
	postStore := store.NewPostStore(db)
	versionStore := store.NewVersionStore(db)
	ideaStore := store.NewIdeaStore(db)
	refStore := store.NewReferenceStore(db)
	threadStore := store.NewThreadStore(db)
	statsStore := store.NewStatsStore(db)

	// Initialize services.
	backlinkSvc := backlink.NewService(postStore, refStore)
	postSvc := posts.NewService(postStore, versionStore, ideaStore, backlinkSvc)
	ideaSvc := ideagraph.NewService(ideaStore, postStore)
	threadSvc := thread.NewService(threadStore, postStore)
	searchSvc := search.NewService(db)
	reporter := analytics.NewReporter(statsStore)

	// Start the analytics tracker; it flushes buffered reading signals
	// on an interval and once more on shutdown.
	tracker := analytics.NewTracker(analytics.NewDBStore(postStore, statsStore))
	trackerCtx, stopTracker := context.WithCancel(context.Background())
	trackerDone := make(chan struct{})
	go func() {
		defer close(trackerDone)
		tracker.Run(trackerCtx, cfg.AnalyticsFlushInterval)
	}()

	// Create handler groups with their dependencies.
	publicHandlers := handlers.NewPublic(postSvc, backlinkSvc, ideaSvc, ideaStore, threadSvc, searchSvc, tracker, respCache)
	adminHandlers := handlers.NewAdmin(postSvc, ideaSvc, threadSvc, backlinkSvc, reporter, respCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(publicHandlers, adminHandlers)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop the tracker last; its final flush persists the current window.
	stopTracker()
	<-trackerDone

	slog.Info("server stopped gracefully")
}

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: one idea and
// one published post tagged with it, so the public site renders something
// on first run. No-op if any posts exist already.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	const content = "Welcome to Loom. Posts link to each other with wiki syntax " +
		"like [[welcome]], collect under ideas, and join thought threads."

	var postID string
	err := db.QueryRow(`
		INSERT INTO posts (slug, title, content, excerpt, status, published_at, word_count, reading_time)
		VALUES ($1, $2, $3, $4, 'published', now(), $5, 1)
		RETURNING id
	`, "welcome", "Welcome", content, "Welcome to Loom.", 20).Scan(&postID)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	var ideaID string
	err = db.QueryRow(`
		INSERT INTO ideas (name, slug, description, post_count)
		VALUES ('Meta', 'meta', 'Posts about this site itself.', 1)
		RETURNING id
	`).Scan(&ideaID)
	if err != nil {
		return fmt.Errorf("seed insert idea: %w", err)
	}

	if _, err := db.Exec(`INSERT INTO post_ideas (post_id, idea_id) VALUES ($1, $2)`, postID, ideaID); err != nil {
		return fmt.Errorf("seed link post idea: %w", err)
	}

	slog.Info("database seeded with welcome post")
	return nil
}

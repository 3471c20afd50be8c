package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS platform_credentials (
		platform VARCHAR(32) PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT FALSE,
		page_id TEXT NOT NULL DEFAULT '',
		business_account_id TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		organization_id TEXT NOT NULL DEFAULT '',
		open_id TEXT NOT NULL DEFAULT '',
		access_token TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		api_key TEXT NOT NULL DEFAULT '',
		app_secret TEXT NOT NULL DEFAULT '',
		token_expires_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS posting_history (
		id BIGSERIAL PRIMARY KEY,
		batch_id VARCHAR(32) NOT NULL,
		platform VARCHAR(32) NOT NULL,
		post_type VARCHAR(16) NOT NULL,
		success BOOLEAN NOT NULL,
		simulated BOOLEAN NOT NULL DEFAULT FALSE,
		state VARCHAR(32) NOT NULL,
		post_id TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS posting_history_created_at_idx ON posting_history (created_at DESC)`,
}

// Migrate creates the tables the repositories rely on.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

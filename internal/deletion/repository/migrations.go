package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

var conversationSchema = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id                   TEXT PRIMARY KEY,
		is_community         BOOLEAN NOT NULL DEFAULT FALSE,
		is_closed_group      BOOLEAN NOT NULL DEFAULT FALSE,
		we_are_admin         BOOLEAN NOT NULL DEFAULT FALSE,
		we_are_moderator     BOOLEAN NOT NULL DEFAULT FALSE,
		our_blinded_id       TEXT NOT NULL DEFAULT '',
		community_server     TEXT NOT NULL DEFAULT '',
		community_room       TEXT NOT NULL DEFAULT '',
		admin_secret_key     BYTEA,
		last_message_id      TEXT NOT NULL DEFAULT '',
		last_message_preview TEXT NOT NULL DEFAULT '',
		last_message_at      BIGINT NOT NULL DEFAULT 0,
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate create tables when missing
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range conversationSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

package db

import (
	"context"

	"mindfuel/internal/types"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS usage_observations (
		app_identifier     TEXT             NOT NULL,
		window_date        DATE             NOT NULL,
		display_name       TEXT             NOT NULL DEFAULT '',
		category           TEXT             NOT NULL,
		wellness_weight    DOUBLE PRECISION NOT NULL,
		time_spent_seconds DOUBLE PRECISION NOT NULL,
		session_count      INTEGER          NOT NULL DEFAULT 0,
		PRIMARY KEY (app_identifier, window_date)
	)`,
	`CREATE INDEX IF NOT EXISTS usage_observations_window_date_idx ON usage_observations (window_date)`,
	`CREATE TABLE IF NOT EXISTS daily_scores (
		date                      DATE             PRIMARY KEY,
		score                     DOUBLE PRECISION NOT NULL,
		total_screen_time_seconds DOUBLE PRECISION NOT NULL,
		contributing_observations INTEGER          NOT NULL,
		updated_at                TIMESTAMPTZ      NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wellness_alerts (
		id                 TEXT             PRIMARY KEY,
		app_identifier     TEXT             NOT NULL,
		app_display_name   TEXT             NOT NULL,
		title              TEXT             NOT NULL,
		description        TEXT             NOT NULL,
		recommendations    JSONB            NOT NULL DEFAULT '[]',
		time_spent_seconds DOUBLE PRECISION NOT NULL,
		severity           TEXT             NOT NULL,
		severity_rank      SMALLINT         NOT NULL,
		profile            TEXT             NOT NULL,
		dismissed          BOOLEAN          NOT NULL DEFAULT false,
		created_at         TIMESTAMPTZ      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS wellness_alerts_created_at_idx ON wellness_alerts (created_at DESC)`,
}

// Migrate creates the tables and indexes if they do not exist.
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to apply schema", err)
		}
	}
	return nil
}

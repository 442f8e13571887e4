package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the DDL applied by Migrate, in dependency order. Every
// statement is idempotent so re-running migration is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_units (
		id         BIGSERIAL PRIMARY KEY,
		topic      TEXT NOT NULL,
		sub_topic  TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		key_points TEXT[] NOT NULL DEFAULT '{}',
		tags       TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS exercises (
		id             BIGSERIAL PRIMARY KEY,
		unit_id        BIGINT NOT NULL REFERENCES knowledge_units(id) ON DELETE CASCADE,
		type           TEXT NOT NULL,
		source         TEXT NOT NULL DEFAULT '',
		question_text  TEXT NOT NULL,
		options        TEXT[] NOT NULL DEFAULT '{}',
		correct_answer TEXT NOT NULL,
		explanation    TEXT NOT NULL DEFAULT '',
		difficulty     TEXT NOT NULL DEFAULT 'medium',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exercises_unit ON exercises (unit_id)`,
	`CREATE TABLE IF NOT EXISTS progress_records (
		id               BIGSERIAL PRIMARY KEY,
		learner_id       BIGINT NOT NULL,
		unit_id          BIGINT NOT NULL REFERENCES knowledge_units(id) ON DELETE CASCADE,
		status           TEXT NOT NULL DEFAULT 'new',
		next_review_at   TIMESTAMPTZ NOT NULL,
		last_review_at   TIMESTAMPTZ,
		interval_days    INTEGER NOT NULL DEFAULT 0,
		ease_factor      DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		repetitions      INTEGER NOT NULL DEFAULT 0,
		incorrect_count  INTEGER NOT NULL DEFAULT 0,
		total_attempts   INTEGER NOT NULL DEFAULT 0,
		correct_attempts INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_progress_learner_unit UNIQUE (learner_id, unit_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_due ON progress_records (learner_id, next_review_at)`,
	`CREATE TABLE IF NOT EXISTS review_logs (
		id          BIGSERIAL PRIMARY KEY,
		learner_id  BIGINT NOT NULL,
		progress_id BIGINT NOT NULL REFERENCES progress_records(id) ON DELETE CASCADE,
		unit_id     BIGINT NOT NULL,
		signal      TEXT NOT NULL,
		correct     BOOLEAN NOT NULL,
		reviewed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_logs_learner_day ON review_logs (learner_id, reviewed_at)`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

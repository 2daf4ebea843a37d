package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/showcaller/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS shows (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		is_custom SMALLINT NOT NULL DEFAULT 0,
		show_id INTEGER REFERENCES shows(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS calls (
		id SERIAL PRIMARY KEY,
		show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		minutes_before INTEGER NOT NULL CHECK (minutes_before BETWEEN 1 AND 180),
		group_ids TEXT NOT NULL DEFAULT '[]',
		send_notification SMALLINT NOT NULL DEFAULT 0
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_calls_show_id ON calls(show_id)`,
	`CREATE INDEX IF NOT EXISTS idx_groups_show_id ON groups(show_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_groups_default_name ON groups(name) WHERE is_custom = 0`,
}

// RunMigrations creates the schema and seeds the default groups.
func RunMigrations(ctx context.Context, db *sql.DB, defaultGroups []string) error {
	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	for _, name := range defaultGroups {
		_, err := db.ExecContext(ctx,
			`INSERT INTO groups (name, is_custom, show_id) VALUES ($1, 0, NULL) ON CONFLICT DO NOTHING`,
			name,
		)
		if err != nil {
			return fmt.Errorf("failed to seed group %q: %w", name, err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

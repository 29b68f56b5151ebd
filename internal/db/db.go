// Package db provides PostgreSQL storage for validation verdicts.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// schema creates the audit tables. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id                 UUID PRIMARY KEY,
	source             TEXT NOT NULL,
	mode               TEXT NOT NULL,
	valid              BOOLEAN NOT NULL,
	error_count        INTEGER NOT NULL,
	warning_count      INTEGER NOT NULL,
	processing_time_ms BIGINT NOT NULL,
	verdict            JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS verdicts_created_at_idx ON verdicts (created_at DESC);

CREATE TABLE IF NOT EXISTS verdict_stages (
	verdict_id    UUID NOT NULL REFERENCES verdicts (id) ON DELETE CASCADE,
	stage         TEXT NOT NULL,
	category      TEXT NOT NULL,
	valid         BOOLEAN NOT NULL,
	error_count   INTEGER NOT NULL,
	warning_count INTEGER NOT NULL,
	PRIMARY KEY (verdict_id, stage)
);
`

// EnsureSchema creates the tables used by this package if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

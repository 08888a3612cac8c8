package kv

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	name:          "postgres",
	gooseDialect:  "pgx",
	migrationsDir: "postgres",
	get:           `SELECT value FROM kv_entries WHERE key = $1`,
	getForUpdate:  `SELECT value FROM kv_entries WHERE key = $1 FOR UPDATE`,
	lock:          `SELECT pg_advisory_xact_lock(hashtext($1))`,
	set: `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
}

// OpenPostgres connects through pgx and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runMigrations(ctx, db, postgresDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStore(db, postgresDialect), nil
}

// NewPostgresStore wraps an already migrated database handle.
func NewPostgresStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, postgresDialect)
}

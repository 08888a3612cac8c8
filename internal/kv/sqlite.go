package kv

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name:          "sqlite",
	gooseDialect:  "sqlite3",
	migrationsDir: "sqlite",
	get:           `SELECT value FROM kv_entries WHERE key = ?`,
	// SQLite locks the whole database for the writing transaction.
	getForUpdate: `SELECT value FROM kv_entries WHERE key = ?`,
	set: `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
}

// OpenSQLite opens (creating if needed) a SQLite database and migrates it.
// The pool is limited to one connection so writers queue instead of
// failing with SQLITE_BUSY.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, sqliteDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStore(db, sqliteDialect), nil
}

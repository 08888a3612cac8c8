package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tripauth/internal/dbx"
	"github.com/dmitrijs2005/tripauth/internal/kv/migrations"
	"github.com/pressly/goose/v3"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name          string
	gooseDialect  string
	migrationsDir string
	get           string
	getForUpdate  string
	set           string
	// lock, when set, is executed before a transactional read so that a
	// key that does not exist yet is serialized too.
	lock string
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, d dialect) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(d.gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, d.migrationsDir); err != nil {
		return fmt.Errorf("%s migrations: %w", d.name, err)
	}
	return nil
}

// SQLStore keeps values in the kv_entries table.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	return sqlGet(ctx, s.db, s.dialect.get, key)
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	return sqlSet(ctx, s.db, s.dialect.set, key, value)
}

// Update runs fn in a database transaction. Reads inside fn lock the rows
// they touch where the engine supports it.
func (s *SQLStore) Update(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &sqlTx{tx: tx, dialect: s.dialect})
	})
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type sqlTx struct {
	tx      dbx.DBTX
	dialect dialect
}

func (t *sqlTx) Get(ctx context.Context, key string) (string, bool, error) {
	if t.dialect.lock != "" {
		if _, err := t.tx.ExecContext(ctx, t.dialect.lock, key); err != nil {
			return "", false, fmt.Errorf("db error: lock %s: %w", key, err)
		}
	}
	return sqlGet(ctx, t.tx, t.dialect.getForUpdate, key)
}

func (t *sqlTx) Set(ctx context.Context, key, value string) error {
	return sqlSet(ctx, t.tx, t.dialect.set, key, value)
}

func sqlGet(ctx context.Context, db dbx.DBTX, query, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db error: get %s: %w", key, err)
	}
	return value, true, nil
}

func sqlSet(ctx context.Context, db dbx.DBTX, query, key, value string) error {
	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("db error: set %s: %w", key, err)
	}
	return nil
}

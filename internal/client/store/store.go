// Package store persists the client session snapshot in a local sqlite file.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Keys of the persisted session snapshot. They are always written and
// cleared together.
const (
	KeyToken  = "token"
	KeyUser   = "user"
	KeyUserID = "userId"
)

// SessionKeys lists every key that makes up one snapshot.
var SessionKeys = []string{KeyToken, KeyUser, KeyUserID}

type Store struct {
	db *sqlx.DB
}

// Open creates the file (and its directory) if needed and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	db.SetMaxOpenConns(1)

	err = migrate(ctx, db.DB)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations directory: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, dir)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	_, err = provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate session store: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns nil, nil when the key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM session_kv WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, nil
}

// SetMany upserts all pairs in a single transaction.
func (s *Store) SetMany(ctx context.Context, values map[string][]byte) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for key, value := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO session_kv (key, value, updated_at)
				VALUES ($1, $2, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				key, value)
			if err != nil {
				return fmt.Errorf("failed to set %q: %w", key, err)
			}
		}
		return nil
	})
}

// DeleteMany removes the keys in a single transaction. Missing keys are ignored.
func (s *Store) DeleteMany(ctx context.Context, keys ...string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, key := range keys {
			_, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key = $1`, key)
			if err != nil {
				return fmt.Errorf("failed to delete %q: %w", key, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

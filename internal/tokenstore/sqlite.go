package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/aiwave/aiwave/internal/tokenstore/migrations"
)

// opTimeout bounds each statement; Store methods are synchronous and take
// no context.
const opTimeout = 5 * time.Second

// SQLiteStore keeps the token as one row of a local metadata table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and applies the
// embedded migrations. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// RunMigrations brings db up to the latest schema. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", Key, err)
	}
	return string(value), nil
}

func (s *SQLiteStore) Set(token string) error {
	if Blank(token) {
		return ErrEmptyToken
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, Key, []byte(token))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", Key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, Key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", Key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

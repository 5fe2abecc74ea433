package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/raffle/internal/shared"
)

// SQLiteStore implements [Store] on the state table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore with the given database connection. Migrations must already be applied.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load retrieves the value saved under key
func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT value FROM state WHERE key = ?`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to load %s: %w", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Save upserts the value under key and bumps its revision
func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO state (key, value, revision, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = state.revision + 1,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%w: failed to save %s: %w", shared.ErrStorage, key, err)
	}
	return nil
}

// Revision returns how many times key has been saved, or 0 if never.
func (s *SQLiteStore) Revision(ctx context.Context, key string) (int, error) {
	var revision int
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM state WHERE key = ?`, key).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read revision of %s: %w", shared.ErrStorage, key, err)
	}
	return revision, nil
}

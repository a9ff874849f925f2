// Package sqlite persists session state in a single-table SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vsinha/fleetdash/pkg/domain/repositories"
	"github.com/vsinha/fleetdash/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

// KeyValueStore is a KeyValueStore backed by SQLite.
type KeyValueStore struct {
	db   *sql.DB
	path string
}

var _ repositories.KeyValueStore = (*KeyValueStore)(nil)

// Open creates or opens the database at path. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, path string) (*KeyValueStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// A private :memory: database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.WrapIO("initialize", path, err)
	}
	return &KeyValueStore{db: db, path: path}, nil
}

// Path returns the database location.
func (s *KeyValueStore) Path() string { return s.path }

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.WrapResource("get", "key", key, err)
	}
	return value, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return errors.WrapResource("set", "key", key, err)
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return errors.WrapResource("remove", "key", key, err)
}

func (s *KeyValueStore) Close() error {
	return s.db.Close()
}

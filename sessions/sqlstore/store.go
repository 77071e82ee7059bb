// Package sqlstore keeps the credential set in an embedded SQLite database.
package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_fields (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

var _ sessions.Store = (*Store)(nil)

// Store runs Set and Clear inside one transaction each, so a reader either
// sees the committed set or the previous one.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, autherrors.Join(autherrors.ErrStoreUnavailable, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	// One connection keeps ":memory:" databases shared and writers serialised.
	db.SetMaxOpenConns(1)

	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle and ensures the schema exists.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, autherrors.Wrapf(err, "failed to create session schema")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := sessions.CheckKey(key); err != nil {
		return "", false, err
	}
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_fields WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if autherrors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	return v, v != "", nil
}

func (s *Store) Snapshot(ctx context.Context) (sessions.Fields, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session_fields`)
	if err != nil {
		return sessions.Fields{}, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	m := make(map[string]string, 4)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return sessions.Fields{}, autherrors.Join(autherrors.ErrStoreCorrupt, err)
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return sessions.Fields{}, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	return sessions.FieldsFromMap(m), nil
}

func (s *Store) Set(ctx context.Context, fields sessions.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_fields`); err != nil {
			return err
		}
		for k, v := range fields.Map() {
			if _, err := tx.ExecContext(ctx, `INSERT INTO session_fields (key, value) VALUES (?, ?)`, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM session_fields`)
		return err
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return autherrors.Wrapf(err, "session transaction failed")
	}
	if err := tx.Commit(); err != nil {
		return autherrors.Wrapf(err, "session commit failed")
	}
	return nil
}

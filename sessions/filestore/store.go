// Package filestore persists the credential set as a single JSON document on
// disk, the way a CLI keeps its token cache between runs.
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

var _ sessions.Store = (*Store)(nil)

// Store keeps the credential set in one file. Every write goes to a sibling
// temp file that is renamed over the target, so readers see either the old
// document or the new one, never a torn write.
type Store struct {
	path string
	mu   sync.Mutex // serialises writers within the process
}

// New returns a store backed by path. The parent directory is created on
// first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := sessions.CheckKey(key); err != nil {
		return "", false, err
	}
	fields, err := s.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := fields.Get(key)
	return v, ok, nil
}

func (s *Store) Snapshot(_ context.Context) (sessions.Fields, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sessions.Fields{}, nil
		}
		return sessions.Fields{}, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}

	var fields sessions.Fields
	if err := json.Unmarshal(b, &fields); err != nil {
		return sessions.Fields{}, autherrors.Join(autherrors.ErrStoreCorrupt, err)
	}
	return fields, nil
}

func (s *Store) Set(_ context.Context, fields sessions.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return autherrors.Wrapf(err, "failed to encode session file")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return autherrors.Wrapf(err, "failed to restrict session file permissions")
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return autherrors.Wrapf(err, "failed to write session file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return autherrors.Wrapf(err, "failed to sync session file")
	}
	if err := tmp.Close(); err != nil {
		return autherrors.Wrapf(err, "failed to close session file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return autherrors.Wrapf(err, "failed to replace session file")
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return autherrors.Wrapf(err, "failed to remove session file")
	}
	return nil
}

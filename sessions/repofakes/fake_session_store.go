package fakesessionstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/sessions"
)

var _ sessions.Store = (*FakeSessionStore)(nil)

// FakeSessionStore keeps the credential set in memory. Nothing survives the
// process; use it for tests and throwaway CLI runs.
type FakeSessionStore struct {
	fields sessions.Fields
	lock   sync.RWMutex

	// Writes counts successful Set and Clear calls
	writes int
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{}
}

// NewFakeSessionStoreWith returns a store pre-populated with fields.
func NewFakeSessionStoreWith(fields sessions.Fields) *FakeSessionStore {
	return &FakeSessionStore{fields: fields}
}

func (s *FakeSessionStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := sessions.CheckKey(key); err != nil {
		return "", false, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.fields.Get(key)
	return v, ok, nil
}

func (s *FakeSessionStore) Set(_ context.Context, fields sessions.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.fields = fields
	s.writes++
	return nil
}

func (s *FakeSessionStore) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.fields = sessions.Fields{}
	s.writes++
	return nil
}

func (s *FakeSessionStore) Snapshot(_ context.Context) (sessions.Fields, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.fields, nil
}

// Writes returns how many Set and Clear calls have completed.
func (s *FakeSessionStore) Writes() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.writes
}

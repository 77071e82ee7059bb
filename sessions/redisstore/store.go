// Package redisstore keeps the credential set in a single Redis hash so that
// several client processes on one host can share a session.
package redisstore

import (
	"context"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Store = (*Store)(nil)

// Store writes the whole set with DEL + HSET inside MULTI/EXEC and reads it
// with a single HGETALL, so partial sets are never observable.
type Store struct {
	redis redis.UniversalClient
	key   string
}

// New returns a store using the hash "<prefix>:session".
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "photomarket"
	}
	return &Store{redis: client, key: prefix + ":session"}
}

// Key returns the Redis key holding the credential hash.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := sessions.CheckKey(key); err != nil {
		return "", false, err
	}
	v, err := s.redis.HGet(ctx, s.key, key).Result()
	if err != nil {
		if autherrors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	return v, v != "", nil
}

func (s *Store) Snapshot(ctx context.Context) (sessions.Fields, error) {
	m, err := s.redis.HGetAll(ctx, s.key).Result()
	if err != nil {
		return sessions.Fields{}, autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	return sessions.FieldsFromMap(m), nil
}

func (s *Store) Set(ctx context.Context, fields sessions.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	values := make(map[string]interface{}, len(sessions.Keys()))
	for k, v := range fields.Map() {
		values[k] = v
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, values)
		return nil
	})
	if err != nil {
		return autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return autherrors.Join(autherrors.ErrStoreUnavailable, err)
	}
	return nil
}

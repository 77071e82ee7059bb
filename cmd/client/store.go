package main

import (
	"context"

	"github.com/jrsteele09/go-auth-client/internal/config"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/sessions/filestore"
	"github.com/jrsteele09/go-auth-client/sessions/redisstore"
	fakesessionstore "github.com/jrsteele09/go-auth-client/sessions/repofakes"
	"github.com/jrsteele09/go-auth-client/sessions/sqlstore"
	"github.com/redis/go-redis/v9"
)

func noopClose() error { return nil }

// openStore returns the configured session backend and a func that releases it.
func openStore(ctx context.Context, cfg config.SessionConfig) (sessions.Store, func() error, error) {
	switch cfg.GetSessionBackend() {
	case config.SessionBackendMemory:
		return fakesessionstore.NewFakeSessionStore(), noopClose, nil

	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, autherrors.Join(autherrors.ErrStoreUnavailable, err)
		}
		return redisstore.New(client, cfg.GetRedisPrefix()), client.Close, nil

	case config.SessionBackendSQLite:
		store, err := sqlstore.Open(cfg.GetSessionDB())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return filestore.New(cfg.GetSessionFile()), noopClose, nil
	}
}

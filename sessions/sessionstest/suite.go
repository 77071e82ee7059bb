// Package sessionstest holds the behaviour every sessions.Store backend must
// share. Backend tests call RunStoreSuite with a constructor for a fresh,
// empty store.
package sessionstest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/stretchr/testify/require"
)

// Fixture returns a complete credential set whose every value ends in tag.
func Fixture(tag string) sessions.Fields {
	return sessions.Fields{
		AccessToken:  "access-" + tag,
		RefreshToken: "refresh-" + tag,
		Role:         "Uploader-" + tag,
		Subject:      "alice-" + tag,
	}
}

// RunStoreSuite runs the shared contract against stores built by newStore.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) sessions.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)
		for _, key := range sessions.Keys() {
			_, ok, err := store.Get(ctx, key)
			require.NoError(t, err)
			require.False(t, ok, key)
		}
		fields, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.True(t, fields.Empty())
	})

	t.Run("set then get", func(t *testing.T) {
		store := newStore(t)
		want := Fixture("1")
		require.NoError(t, store.Set(ctx, want))

		for key, value := range want.Map() {
			got, ok, err := store.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, ok, key)
			require.Equal(t, value, got)
		}
		got, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("set replaces the whole set", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, Fixture("1")))

		next := sessions.Fields{AccessToken: "access-2", Role: "Buyer", Subject: "bob"}
		require.NoError(t, store.Set(ctx, next))

		_, ok, err := store.Get(ctx, sessions.KeyRefreshToken)
		require.NoError(t, err)
		require.False(t, ok, "stale refresh token survived a replacing set")

		got, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, next, got)
	})

	t.Run("set without access token is rejected", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, Fixture("1")))

		err := store.Set(ctx, sessions.Fields{RefreshToken: "r", Role: "Buyer", Subject: "bob"})
		require.ErrorIs(t, err, autherrors.ErrMissingAccess)

		got, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, Fixture("1"), got)
	})

	t.Run("clear removes everything and is idempotent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, Fixture("1")))
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))

		for _, key := range sessions.Keys() {
			_, ok, err := store.Get(ctx, key)
			require.NoError(t, err)
			require.False(t, ok, key)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, Fixture("1")))
		_, ok, err := store.Get(ctx, "theme")
		require.ErrorIs(t, err, autherrors.ErrUnknownKey)
		require.False(t, ok)
	})

	t.Run("concurrent readers never see a mixed set", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, Fixture("a")))

		const rounds = 50
		var wg sync.WaitGroup
		errs := make(chan error, 4*rounds)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				var err error
				switch i % 3 {
				case 0:
					err = store.Set(ctx, Fixture("b"))
				case 1:
					err = store.Clear(ctx)
				default:
					err = store.Set(ctx, Fixture("a"))
				}
				if err != nil {
					errs <- err
				}
			}
		}()

		for r := 0; r < 3; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < rounds; i++ {
					fields, err := store.Snapshot(ctx)
					if err != nil {
						errs <- err
						continue
					}
					if err := consistent(fields); err != nil {
						errs <- err
					}
				}
			}()
		}

		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	})
}

func consistent(f sessions.Fields) error {
	if f.Empty() {
		return nil
	}
	tag := strings.TrimPrefix(f.AccessToken, "access-")
	if f != Fixture(tag) {
		return fmt.Errorf("mixed credential set observed: %+v", f)
	}
	return nil
}

package sessions

import "context"

// Store defines durable client-side persistence of the credential field set.
// Implementations must make Set and Clear atomic: a concurrent Get or
// Snapshot observes either the whole previous set or the whole new one.
type Store interface {
	// Get returns the value stored under key and whether it is present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the whole credential set
	Set(ctx context.Context, fields Fields) error

	// Clear removes the whole credential set. Clearing an empty store is a no-op
	Clear(ctx context.Context) error

	// Snapshot reads the whole credential set in one consistent read
	Snapshot(ctx context.Context) (Fields, error)
}

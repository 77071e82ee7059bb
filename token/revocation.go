package token

import (
	"sync"
	"time"
)

// RevocationList remembers token IDs that must no longer be accepted.
type RevocationList interface {
	Revoke(jti string, exp time.Time)
	IsRevoked(jti string) bool
	Cleanup(now time.Time) // Remove entries whose token has expired anyway
}

// InMemoryRevocationList is a simple in-memory implementation
type InMemoryRevocationList struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

var _ RevocationList = (*InMemoryRevocationList)(nil)

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		revoked: make(map[string]time.Time),
	}
}

func (c *InMemoryRevocationList) Revoke(jti string, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
}

func (c *InMemoryRevocationList) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

func (c *InMemoryRevocationList) Cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}

// Package cache provides the in-memory snapshot cache used by the API client.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached collection stays valid.
const DefaultTTL = 5 * time.Minute

// Collection holds at most one snapshot of a list-valued result.
// A snapshot is valid while now - storedAt < ttl. Expiry is only checked on
// read; there is no background cleanup.
type Collection[T any] struct {
	mu       sync.RWMutex
	value    T
	storedAt time.Time
	present  bool
	ttl      time.Duration
	now      func() time.Time
}

// NewCollection creates an empty collection cache. A nil now uses time.Now.
func NewCollection[T any](ttl time.Duration, now func() time.Time) *Collection[T] {
	if now == nil {
		now = time.Now
	}
	return &Collection[T]{ttl: ttl, now: now}
}

// Get returns the snapshot. Returns false if empty or expired.
func (c *Collection[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || c.now().Sub(c.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set replaces the snapshot and stamps it with the current time.
func (c *Collection[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.storedAt = c.now()
	c.present = true
}

// Clear drops the snapshot.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.storedAt = time.Time{}
	c.present = false
}

// Package memory is an in-process session cache for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/tasks/internal/tasks/session"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is a mutex-guarded map with lazy expiry. Expired entries are dropped
// when next read.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ session.Cache = (*Cache)(nil)

func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", session.ErrMiss
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return "", session.ErrMiss
	}
	return e.value, nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *Cache) Ping(context.Context) error { return nil }
func (c *Cache) Close() error               { return nil }

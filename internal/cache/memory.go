// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is a thread-safe in-memory cache backend.
type MemoryCache struct {
	mu         sync.RWMutex
	data       map[string]memoryEntry
	defaultTTL time.Duration
	maxSize    int // 0 = unlimited
	closed     atomic.Bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a memory cache with the given default TTL and
// maximum entry count (0 = unlimited).
func NewMemoryCache(defaultTTL time.Duration, maxSize int) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &MemoryCache{
		data:       make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}

	// Return a copy to prevent mutation
	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value in the cache with the specified TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.data) >= c.maxSize {
		c.removeExpiredLocked()
	}

	c.data[key] = memoryEntry{value: valueCopy, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	c.data = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Has checks if a key exists in the cache and is not expired.
func (c *MemoryCache) Has(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if err == ErrCacheMiss {
		return false, nil
	}
	return false, err
}

// Close releases the cache. Subsequent operations return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.closed.Store(true)
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) removeExpiredLocked() {
	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			delete(c.data, key)
		}
	}
}

// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching infrastructure: a byte-oriented
// backend interface with memory and Redis implementations, and a typed
// post cache on top.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for cache backends.
// All implementations must be thread-safe.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil and ErrCacheMiss if not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified TTL.
	// If TTL is 0, uses the default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Has checks if a key exists in the cache (and is not expired).
	Has(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the cache.
	Close() error
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Options configures cache backend creation.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is prepended to all keys on the Redis backend.
	Prefix string

	// DefaultTTL is the default expiration for entries.
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for the memory backend
	// (0 = unlimited).
	MaxSize int
}

// NewBackend creates a cache backend from the given options: Redis when a
// URL is configured, in-process memory otherwise.
func NewBackend(opts Options) (Cache, error) {
	if opts.RedisURL != "" {
		return NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}
	return NewMemoryCache(opts.DefaultTTL, opts.MaxSize), nil
}

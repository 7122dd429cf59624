// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
)

// PostCache provides cached by-id access to posts over any Cache backend.
// Entries are invalidated whenever a post is corrected or updated.
type PostCache struct {
	backend Cache
	queries *store.Queries
}

// NewPostCache creates a post cache over the given backend.
func NewPostCache(backend Cache, queries *store.Queries) *PostCache {
	return &PostCache{backend: backend, queries: queries}
}

func postKey(id int64) string {
	return fmt.Sprintf("post:id:%d", id)
}

// GetByID retrieves a post by id, from cache when possible.
func (c *PostCache) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	data, err := c.backend.Get(ctx, postKey(id))
	if err == nil {
		var p model.Post
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		// Corrupt entry: drop it and fall through to the database
		_ = c.backend.Delete(ctx, postKey(id))
	} else if err != ErrCacheMiss {
		return nil, err
	}

	p, err := c.queries.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		_ = c.backend.Set(ctx, postKey(id), data, 0)
	}
	return &p, nil
}

// Invalidate removes any cached representation of the post with this id.
func (c *PostCache) Invalidate(ctx context.Context, id int64) error {
	return c.backend.Delete(ctx, postKey(id))
}

// Close closes the underlying backend.
func (c *PostCache) Close() error {
	return c.backend.Close()
}

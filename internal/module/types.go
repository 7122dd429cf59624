// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"sort"
	"sync"
)

// TypeRegistry is the discovery mechanism through which modules contribute
// content type tags. A module that manages its own types (the calendar
// module's event and location types, for example) registers them at init;
// other modules look them up instead of hard-coding tags they do not own.
// Membership is exact-match and case-sensitive.
type TypeRegistry struct {
	mu   sync.RWMutex
	tags map[string]struct{}
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{tags: make(map[string]struct{})}
}

// Register adds a content type tag. Registering an existing tag is a no-op.
func (r *TypeRegistry) Register(tag string) {
	if tag == "" {
		return
	}
	r.mu.Lock()
	r.tags[tag] = struct{}{}
	r.mu.Unlock()
}

// Has reports whether the tag has been registered.
func (r *TypeRegistry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tags[tag]
	return ok
}

// All returns the registered tags in sorted order.
func (r *TypeRegistry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.tags))
	for tag := range r.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

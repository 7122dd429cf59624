// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
)

// Hook names dispatched by the platform.
const (
	// HookPostBeforeSave runs after input sanitization, before the post is
	// persisted. Data is *SavePayload.
	HookPostBeforeSave = "post.before_save"

	// HookPostAfterSave runs after the post is persisted. Data is *model.Post.
	HookPostAfterSave = "post.after_save"

	// HookPostsAfterLoad runs after a batch of posts is loaded, before any
	// consumer iterates them. Data is *LoadPayload.
	HookPostsAfterLoad = "posts.after_load"
)

// RawInput carries the unsanitized fields of a save request that handlers
// may need to inspect alongside the sanitized draft.
type RawInput struct {
	ID int64 // submitted record id, 0 when absent
}

// SavePayload is the data passed through HookPostBeforeSave. Post is the
// sanitized draft, mutated in place by handlers; the save pipeline persists
// it after the hook chain returns. Autosave is set by the pipeline for
// autosave requests and travels explicitly so handlers never read ambient
// state.
type SavePayload struct {
	Post     *model.Post
	Raw      RawInput
	Autosave bool
}

// LoadPayload is the data passed through HookPostsAfterLoad. Handlers
// mutate the pointed-to posts in place, so every holder of the slice
// observes corrections without re-fetching.
type LoadPayload struct {
	Posts []*model.Post
	Query string // description of the originating query, for diagnostics
}

// HookFunc is a function that can be registered as a hook handler.
// It receives the dispatch context and the hook's data, and returns the
// (possibly modified) data. An error aborts the remaining chain.
type HookFunc func(ctx context.Context, data any) (any, error)

// HookHandler wraps a HookFunc with registration metadata.
type HookHandler struct {
	Name     string   // handler name, for diagnostics
	Module   string   // module that registered the handler
	Priority int      // lower priority runs first
	Fn       HookFunc // the actual handler function
}

// HookRegistry manages hook registration and dispatch. Registration order
// breaks ties between handlers of equal priority.
type HookRegistry struct {
	mu     sync.RWMutex
	hooks  map[string][]HookHandler
	logger *slog.Logger
}

// NewHookRegistry creates a new hook registry.
func NewHookRegistry(logger *slog.Logger) *HookRegistry {
	return &HookRegistry{
		hooks:  make(map[string][]HookHandler),
		logger: logger,
	}
}

// Register adds a handler for the given hook name.
func (h *HookRegistry) Register(hookName string, handler HookHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handlers := append(h.hooks[hookName], handler)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority < handlers[j].Priority
	})
	h.hooks[hookName] = handlers

	h.logger.Debug("hook registered",
		"hook", hookName,
		"handler", handler.Name,
		"module", handler.Module,
		"priority", handler.Priority,
	)
}

// Call executes all handlers for the given hook name in priority order,
// threading data through each. The first handler error stops the chain
// and is returned to the dispatching pipeline untranslated.
func (h *HookRegistry) Call(ctx context.Context, hookName string, data any) (any, error) {
	h.mu.RLock()
	handlers := h.hooks[hookName]
	h.mu.RUnlock()

	if len(handlers) == 0 {
		return data, nil
	}

	current := data
	for _, handler := range handlers {
		result, err := handler.Fn(ctx, current)
		if err != nil {
			h.logger.Error("hook handler error",
				"hook", hookName,
				"handler", handler.Name,
				"module", handler.Module,
				"error", err,
			)
			return nil, fmt.Errorf("hook %s handler %s: %w", hookName, handler.Name, err)
		}
		current = result
	}
	return current, nil
}

// CallNoResult executes hooks without expecting a modified result.
func (h *HookRegistry) CallNoResult(ctx context.Context, hookName string, data any) error {
	_, err := h.Call(ctx, hookName, data)
	return err
}

// HasHandlers returns true if the hook has at least one handler.
func (h *HookRegistry) HasHandlers(hookName string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hooks[hookName]) > 0
}

// HandlerCount returns the number of handlers registered for a hook.
func (h *HookRegistry) HandlerCount(hookName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hooks[hookName])
}

// Handlers returns the registered handlers for a hook in dispatch order.
func (h *HookRegistry) Handlers(hookName string) []HookHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HookHandler, len(h.hooks[hookName]))
	copy(out, h.hooks[hookName])
	return out
}

// Unregister removes all of a module's handlers for a hook.
func (h *HookRegistry) Unregister(hookName, moduleName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.hooks[hookName][:0]
	for _, handler := range h.hooks[hookName] {
		if handler.Module != moduleName {
			kept = append(kept, handler)
		}
	}
	h.hooks[hookName] = kept
}

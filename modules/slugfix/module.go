// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package slugfix repairs content records whose slug was never generated.
// The multilingual duplication flow can persist events with an empty slug
// or with the record id as the slug; when the calendar module later builds
// permalinks from that field, duplicates collide. This module fills the
// slug before the calendar module's own save handler runs, and repairs
// already-persisted records as they are loaded.
package slugfix

import (
	"context"
	"log/slog"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
)

// Hook priorities. The calendar module registers its slug consumers at
// priority 20; running at 0 guarantees the repair happens first on both
// the save and load paths.
const (
	beforeSavePriority = 0
	afterLoadPriority  = 0
)

// postStore is the persistence surface the module needs.
type postStore interface {
	GetPost(ctx context.Context, id int64) (model.Post, error)
	UpdatePostSlug(ctx context.Context, id int64, slug string) error
}

// slugGenerator is the uniqueness service contract. The module decides
// when to generate a slug, never how collisions are disambiguated.
type slugGenerator interface {
	Unique(ctx context.Context, candidate string, id int64, status, postType string, parentID int64) (string, error)
}

// postInvalidator drops cached representations of a repaired record.
type postInvalidator interface {
	Invalidate(ctx context.Context, id int64) error
}

// Module implements the module.Module interface.
type Module struct {
	module.BaseModule

	store  postStore
	slugs  slugGenerator
	cache  postInvalidator
	types  *module.TypeRegistry
	logger *slog.Logger
	debug  bool
}

// New creates a new instance of the slugfix module.
func New() *Module {
	return &Module{
		BaseModule: module.NewBaseModule(
			"slugfix",
			"1.0.0",
			"Repairs empty and self-referential slugs before calendar consumers read them",
		),
	}
}

// Init wires the module to platform services and subscribes its handlers.
func (m *Module) Init(ctx *module.Context) error {
	if err := m.BaseModule.Init(ctx); err != nil {
		return err
	}

	m.store = ctx.Queries
	m.slugs = ctx.Slugs
	m.cache = ctx.Cache
	m.types = ctx.Types
	m.logger = ctx.Logger
	m.debug = ctx.Config.Debug

	ctx.Hooks.Register(module.HookPostBeforeSave, module.HookHandler{
		Name:     "slugfix_before_save",
		Module:   m.Name(),
		Priority: beforeSavePriority,
		Fn:       m.onPostBeforeSave,
	})
	ctx.Hooks.Register(module.HookPostsAfterLoad, module.HookHandler{
		Name:     "slugfix_after_load",
		Module:   m.Name(),
		Priority: afterLoadPriority,
		Fn:       m.onPostsAfterLoad,
	})

	m.logger.Info("slugfix module initialized", "managed_types", m.managedTypes())
	return nil
}

// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package module provides the extension system of the platform. Modules
// register routes, hooks and migrations to integrate with the core save
// and load pipelines.
package module

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/cache"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/config"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/service"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
)

// Context provides access to platform services for modules.
type Context struct {
	DB      *sql.DB
	Queries *store.Queries
	Logger  *slog.Logger
	Config  *config.Config
	Hooks   *HookRegistry
	Cache   *cache.PostCache
	Slugs   *service.SlugService
	Types   *TypeRegistry
}

// Module defines the interface that all modules must implement.
type Module interface {
	// Name returns the module name.
	Name() string
	// Version returns the module version.
	Version() string
	// Description returns the module description.
	Description() string
	// Dependencies returns the list of module dependencies.
	Dependencies() []string

	// Init initializes the module with the given context.
	Init(ctx *Context) error
	// Shutdown performs cleanup when the module is shutting down.
	Shutdown() error

	// RegisterRoutes registers public routes for the module.
	RegisterRoutes(r chi.Router)

	// Migrations returns database migrations for the module.
	Migrations() []Migration
}

// Migration represents a database migration owned by a module.
type Migration struct {
	Version     int64
	Description string
	Up          func(db *sql.DB) error
	Down        func(db *sql.DB) error
}

// BaseModule provides a default implementation of the Module interface.
// Modules embed it to get no-op implementations of what they don't use.
type BaseModule struct {
	name        string
	version     string
	description string
	ctx         *Context
}

// NewBaseModule creates a new BaseModule with the given metadata.
func NewBaseModule(name, version, description string) BaseModule {
	return BaseModule{
		name:        name,
		version:     version,
		description: description,
	}
}

// Name returns the module name.
func (m *BaseModule) Name() string { return m.name }

// Version returns the module version.
func (m *BaseModule) Version() string { return m.version }

// Description returns the module description.
func (m *BaseModule) Description() string { return m.description }

// Dependencies returns the list of module dependencies (empty by default).
func (m *BaseModule) Dependencies() []string { return nil }

// Init initializes the module with the given context.
func (m *BaseModule) Init(ctx *Context) error {
	m.ctx = ctx
	return nil
}

// Shutdown performs cleanup when the module is shutting down.
func (m *BaseModule) Shutdown() error { return nil }

// RegisterRoutes registers public routes (no-op by default).
func (m *BaseModule) RegisterRoutes(_ chi.Router) {}

// Migrations returns module migrations (empty by default).
func (m *BaseModule) Migrations() []Migration { return nil }

// Context returns the module context (for use by embedded modules).
func (m *BaseModule) Context() *Context { return m.ctx }

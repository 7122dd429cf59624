// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Registry manages module registration and lifecycle. Modules initialize
// in registration order, so a module whose types or hooks another module
// depends on must be registered first.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	order   []string
	ctx     *Context
	logger  *slog.Logger
}

// NewRegistry creates a new module registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		modules: make(map[string]Module),
		logger:  logger,
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}

	r.modules[name] = m
	r.order = append(r.order, name)
	r.logger.Info("module registered", "name", name, "version", m.Version())
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// List returns all registered modules in registration order.
func (r *Registry) List() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		modules = append(modules, r.modules[name])
	}
	return modules
}

// InitAll initializes all registered modules in registration order,
// checking declared dependencies first.
func (r *Registry) InitAll(ctx *Context) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	for _, m := range r.List() {
		for _, dep := range m.Dependencies() {
			if _, ok := r.Get(dep); !ok {
				return fmt.Errorf("module %q requires %q which is not registered", m.Name(), dep)
			}
		}
		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("initializing module %q: %w", m.Name(), err)
		}
		r.logger.Info("module initialized", "name", m.Name())
	}
	return nil
}

// MigrateAll runs all pending module migrations in registration order.
// Applied versions are tracked per module in the module_migrations table.
func (r *Registry) MigrateAll(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS module_migrations (
			module TEXT NOT NULL,
			version INTEGER NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (module, version)
		)`)
	if err != nil {
		return fmt.Errorf("creating module_migrations table: %w", err)
	}

	for _, m := range r.List() {
		for _, mig := range m.Migrations() {
			var applied int
			err := db.QueryRow(
				`SELECT COUNT(*) FROM module_migrations WHERE module = ? AND version = ?`,
				m.Name(), mig.Version,
			).Scan(&applied)
			if err != nil {
				return fmt.Errorf("checking migration %s/%d: %w", m.Name(), mig.Version, err)
			}
			if applied > 0 {
				continue
			}

			if err := mig.Up(db); err != nil {
				return fmt.Errorf("applying migration %s/%d: %w", m.Name(), mig.Version, err)
			}
			if _, err := db.Exec(
				`INSERT INTO module_migrations (module, version) VALUES (?, ?)`,
				m.Name(), mig.Version,
			); err != nil {
				return fmt.Errorf("recording migration %s/%d: %w", m.Name(), mig.Version, err)
			}
			r.logger.Info("module migration applied",
				"module", m.Name(), "version", mig.Version, "description", mig.Description)
		}
	}
	return nil
}

// MountRoutes registers every module's public routes on the router.
func (r *Registry) MountRoutes(router chi.Router) {
	for _, m := range r.List() {
		m.RegisterRoutes(router)
	}
}

// ShutdownAll shuts modules down in reverse registration order.
func (r *Registry) ShutdownAll() {
	modules := r.List()
	for i := len(modules) - 1; i >= 0; i-- {
		if err := modules[i].Shutdown(); err != nil {
			r.logger.Error("module shutdown error", "name", modules[i].Name(), "error", err)
		}
	}
}

// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calendar provides event and location content types and serves
// event permalinks. Its save-time consumer reads the record slug, which is
// why the slugfix module must have repaired it by then.
package calendar

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
)

// Content type tags contributed by this module.
const (
	TypeEvent    = "event"
	TypeLocation = "event-location"
)

// consumerPriority places the calendar handlers after any repair handlers
// on the same hooks.
const consumerPriority = 20

// Module implements the module.Module interface.
type Module struct {
	module.BaseModule
	logger *slog.Logger
}

// New creates a new instance of the calendar module.
func New() *Module {
	return &Module{
		BaseModule: module.NewBaseModule(
			"calendar",
			"1.0.0",
			"Event and location content types with slug-based permalinks",
		),
	}
}

// Init registers the calendar content types and hook handlers.
func (m *Module) Init(ctx *module.Context) error {
	if err := m.BaseModule.Init(ctx); err != nil {
		return err
	}
	m.logger = ctx.Logger

	ctx.Types.Register(TypeEvent)
	ctx.Types.Register(TypeLocation)

	ctx.Hooks.Register(module.HookPostAfterSave, module.HookHandler{
		Name:     "calendar_index_event",
		Module:   m.Name(),
		Priority: consumerPriority,
		Fn:       m.onPostAfterSave,
	})

	return nil
}

// RegisterRoutes registers public routes for the module.
func (m *Module) RegisterRoutes(r chi.Router) {
	r.Get("/events/{slug}", m.handleEventBySlug)
}

// Migrations returns database migrations for the module.
func (m *Module) Migrations() []module.Migration {
	return []module.Migration{
		{
			Version:     1,
			Description: "Create event_dates table",
			Up: func(db *sql.DB) error {
				_, err := db.Exec(`
					CREATE TABLE IF NOT EXISTS event_dates (
						post_id INTEGER PRIMARY KEY,
						starts_at DATETIME,
						ends_at DATETIME,
						FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
					)
				`)
				return err
			},
			Down: func(db *sql.DB) error {
				_, err := db.Exec(`DROP TABLE IF EXISTS event_dates`)
				return err
			},
		},
	}
}

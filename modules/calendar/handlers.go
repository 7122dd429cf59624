// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package calendar

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
)

// Permalink returns the public URL path for an event record.
func Permalink(p *model.Post) string {
	return "/events/" + p.Slug
}

// onPostAfterSave indexes saved events under their permalink. It assumes
// the slug is populated; a record arriving here without one would be
// addressed as "/events/", which is the collision this platform's slug
// repair exists to prevent.
func (m *Module) onPostAfterSave(_ context.Context, data any) (any, error) {
	post, ok := data.(*model.Post)
	if !ok || post == nil {
		return data, nil
	}
	if post.Type != TypeEvent && post.Type != TypeLocation && post.Type != model.TypeEventRecurring {
		return data, nil
	}

	if post.Slug == "" {
		m.logger.Warn("calendar: event saved without slug", "id", post.ID, "type", post.Type)
		return data, nil
	}

	m.logger.Debug("calendar: event indexed", "id", post.ID, "permalink", Permalink(post))
	return data, nil
}

// handleEventBySlug serves GET /events/{slug}.
func (m *Module) handleEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := m.Context().Queries.GetPublishedPostBySlug(r.Context(), slug, TypeEvent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		m.logger.Error("calendar: event lookup failed", "slug", slug, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(post)
}

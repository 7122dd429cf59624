// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
)

func newTestService(t *testing.T) (*SlugService, *store.Queries) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	queries := store.New(db)
	return NewSlugService(queries), queries
}

func seedPost(t *testing.T, q *store.Queries, postType, slug string, parentID int64) model.Post {
	t.Helper()
	p, err := q.CreatePost(context.Background(), store.CreatePostParams{
		Type:     postType,
		Title:    slug,
		Slug:     slug,
		Status:   model.PostStatusPublished,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("seeding post: %v", err)
	}
	return p
}

func TestUniqueFreeCandidate(t *testing.T) {
	s, _ := newTestService(t)

	got, err := s.Unique(context.Background(), "summer-fair", 42, model.PostStatusPublished, "event", 0)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "summer-fair" {
		t.Errorf("Unique() = %q, want candidate unchanged", got)
	}
}

func TestUniqueSuffixesOnCollision(t *testing.T) {
	s, q := newTestService(t)

	seedPost(t, q, "event", "summer-fair", 0)

	got, err := s.Unique(context.Background(), "summer-fair", 0, model.PostStatusDraft, "event", 0)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "summer-fair-2" {
		t.Errorf("Unique() = %q, want %q", got, "summer-fair-2")
	}

	seedPost(t, q, "event", "summer-fair-2", 0)

	got, err = s.Unique(context.Background(), "summer-fair", 0, model.PostStatusDraft, "event", 0)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "summer-fair-3" {
		t.Errorf("Unique() = %q, want %q", got, "summer-fair-3")
	}
}

func TestUniqueIgnoresOwnRecord(t *testing.T) {
	s, q := newTestService(t)

	p := seedPost(t, q, "event", "summer-fair", 0)

	// Regenerating the same record's slug must not collide with itself
	got, err := s.Unique(context.Background(), "summer-fair", p.ID, p.Status, p.Type, p.ParentID)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "summer-fair" {
		t.Errorf("Unique() = %q, want own slug kept", got)
	}
}

func TestUniqueScopedByTypeAndParent(t *testing.T) {
	s, q := newTestService(t)

	seedPost(t, q, "event", "fair", 0)

	// A page may reuse an event's slug
	got, err := s.Unique(context.Background(), "fair", 0, model.PostStatusDraft, "page", 0)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "fair" {
		t.Errorf("Unique() across types = %q, want %q", got, "fair")
	}

	// A different parent does not collide either
	got, err = s.Unique(context.Background(), "fair", 0, model.PostStatusDraft, "event", 9)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "fair" {
		t.Errorf("Unique() across parents = %q, want %q", got, "fair")
	}
}

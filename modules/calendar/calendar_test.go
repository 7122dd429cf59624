// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package calendar

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
)

func newTestContext() *module.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &module.Context{
		Logger: logger,
		Hooks:  module.NewHookRegistry(logger),
		Types:  module.NewTypeRegistry(),
	}
}

func TestInitRegistersTypes(t *testing.T) {
	mctx := newTestContext()

	m := New()
	if err := m.Init(mctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if !mctx.Types.Has(TypeEvent) {
		t.Error("event type not registered")
	}
	if !mctx.Types.Has(TypeLocation) {
		t.Error("location type not registered")
	}
	if !mctx.Hooks.HasHandlers(module.HookPostAfterSave) {
		t.Error("after-save consumer not registered")
	}
}

func TestConsumerRunsAfterRepairPriorities(t *testing.T) {
	mctx := newTestContext()

	m := New()
	if err := m.Init(mctx); err != nil {
		t.Fatal(err)
	}

	handlers := mctx.Hooks.Handlers(module.HookPostAfterSave)
	for _, h := range handlers {
		if h.Module == m.Name() && h.Priority <= 0 {
			t.Errorf("calendar consumer priority = %d, must be later than repair handlers", h.Priority)
		}
	}
}

func TestPermalink(t *testing.T) {
	p := &model.Post{ID: 42, Type: TypeEvent, Slug: "summer-fair"}
	if got := Permalink(p); got != "/events/summer-fair" {
		t.Errorf("Permalink() = %q, want %q", got, "/events/summer-fair")
	}
}

func TestAfterSavePassesDataThrough(t *testing.T) {
	mctx := newTestContext()
	m := New()
	if err := m.Init(mctx); err != nil {
		t.Fatal(err)
	}

	post := &model.Post{ID: 1, Type: TypeEvent, Slug: "fair"}
	result, err := m.onPostAfterSave(context.Background(), post)
	if err != nil {
		t.Fatalf("onPostAfterSave() error = %v", err)
	}
	if result != any(post) {
		t.Error("handler must pass the record through unchanged")
	}

	// Non-calendar records and foreign payloads pass through too
	if _, err := m.onPostAfterSave(context.Background(), &model.Post{Type: "page"}); err != nil {
		t.Errorf("page record error = %v", err)
	}
	if _, err := m.onPostAfterSave(context.Background(), "noise"); err != nil {
		t.Errorf("foreign payload error = %v", err)
	}
}

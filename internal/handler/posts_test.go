// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/cache"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/config"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/service"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
	"github.com/iBook140/eventsmanager-wpml-fix/modules/calendar"
	"github.com/iBook140/eventsmanager-wpml-fix/modules/slugfix"
)

// newTestServer wires the full platform with the calendar and slugfix
// modules, exactly as cmd/eventfix does.
func newTestServer(t *testing.T) (*httptest.Server, *store.Queries) {
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
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hooks := module.NewHookRegistry(logger)
	postCache := cache.NewPostCache(cache.NewMemoryCache(time.Minute, 0), queries)

	registry := module.NewRegistry(logger)
	for _, m := range []module.Module{calendar.New(), slugfix.New()} {
		if err := registry.Register(m); err != nil {
			t.Fatal(err)
		}
	}
	if err := registry.MigrateAll(db); err != nil {
		t.Fatalf("module migrations: %v", err)
	}
	if err := registry.InitAll(&module.Context{
		DB:      db,
		Queries: queries,
		Logger:  logger,
		Config:  &config.Config{Debug: true},
		Hooks:   hooks,
		Cache:   postCache,
		Slugs:   service.NewSlugService(queries),
		Types:   module.NewTypeRegistry(),
	}); err != nil {
		t.Fatalf("initializing modules: %v", err)
	}
	t.Cleanup(registry.ShutdownAll)

	r := chi.NewRouter()
	NewPostHandler(queries, postCache, hooks, logger).Routes(r)
	registry.MountRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, queries
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodePost(t *testing.T, resp *http.Response) model.Post {
	t.Helper()
	defer resp.Body.Close()
	var p model.Post
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return p
}

func TestCreateEventFillsSlug(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/posts", map[string]any{
		"type":   "event",
		"title":  "Summer Fair",
		"status": "published",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	created := decodePost(t, resp)
	if created.Slug != "summer-fair" {
		t.Errorf("slug = %q, want %q", created.Slug, "summer-fair")
	}
}

func TestCreateAutosaveKeepsEmptySlug(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/posts", map[string]any{
		"type":     "event",
		"title":    "Summer Fair",
		"autosave": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	created := decodePost(t, resp)
	if created.Slug != "" {
		t.Errorf("autosave slug = %q, want empty", created.Slug)
	}
}

func TestCreateDuplicateTitleGetsSuffix(t *testing.T) {
	srv, _ := newTestServer(t)

	first := decodePost(t, postJSON(t, srv.URL+"/posts", map[string]any{
		"type": "event", "title": "Summer Fair", "status": "published",
	}))
	second := decodePost(t, postJSON(t, srv.URL+"/posts", map[string]any{
		"type": "event", "title": "Summer Fair", "status": "published",
	}))

	if first.Slug != "summer-fair" {
		t.Errorf("first slug = %q", first.Slug)
	}
	if second.Slug != "summer-fair-2" {
		t.Errorf("second slug = %q, want %q", second.Slug, "summer-fair-2")
	}
}

func TestListRepairsPersistedRecords(t *testing.T) {
	srv, queries := newTestServer(t)
	ctx := context.Background()

	// Simulate the duplication plugin persisting a self-referential slug
	// behind the save pipeline's back
	broken, err := queries.CreatePost(ctx, store.CreatePostParams{
		Type: "event", Title: "Autumn Market", Slug: "", Status: model.PostStatusPublished,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := queries.UpdatePostSlug(ctx, broken.ID, "1"); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/posts?type=event")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var posts []model.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Slug != "autumn-market" {
		t.Errorf("listed slug = %q, want %q", posts[0].Slug, "autumn-market")
	}

	// The repair was persisted, not just rendered
	stored, err := queries.GetPost(ctx, broken.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Slug != "autumn-market" {
		t.Errorf("stored slug = %q, want %q", stored.Slug, "autumn-market")
	}
}

func TestEventRouteServesRepairedSlug(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decodePost(t, postJSON(t, srv.URL+"/posts", map[string]any{
		"type": "event", "title": "Summer Fair", "status": "published",
	}))

	resp, err := http.Get(srv.URL + "/events/" + created.Slug)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /events/%s status = %d, want 200", created.Slug, resp.StatusCode)
	}
}

func TestUpdateRepairsSelfReferentialSlug(t *testing.T) {
	srv, queries := newTestServer(t)
	ctx := context.Background()

	p, err := queries.CreatePost(ctx, store.CreatePostParams{
		Type: "event", Title: "Autumn Market", Slug: "", Status: model.PostStatusPublished,
	})
	if err != nil {
		t.Fatal(err)
	}
	// The self-referential shape: slug is the record id rendered as text
	selfRef := strconv.FormatInt(p.ID, 10)
	if err := queries.UpdatePostSlug(ctx, p.ID, selfRef); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]any{
		"title": "Autumn Market", "status": "published", "slug": selfRef,
	})
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/posts/"+selfRef, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}

	updated := decodePost(t, resp)
	if updated.Slug != "autumn-market" {
		t.Errorf("updated slug = %q, want %q", updated.Slug, "autumn-market")
	}
}

func getPost(t *testing.T, url string) model.Post {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("GET %s status = %d, want 200", url, resp.StatusCode)
	}
	return decodePost(t, resp)
}

func TestGetReadsThroughCache(t *testing.T) {
	srv, queries := newTestServer(t)
	ctx := context.Background()

	p, err := queries.CreatePost(ctx, store.CreatePostParams{
		Type: "event", Title: "Summer Fair", Slug: "summer-fair", Status: model.PostStatusPublished,
	})
	if err != nil {
		t.Fatal(err)
	}
	url := srv.URL + "/posts/" + strconv.FormatInt(p.ID, 10)

	if got := getPost(t, url); got.Slug != "summer-fair" {
		t.Fatalf("slug = %q, want %q", got.Slug, "summer-fair")
	}

	// A direct database change is invisible until the entry is invalidated
	if err := queries.UpdatePostSlug(ctx, p.ID, "changed-behind"); err != nil {
		t.Fatal(err)
	}
	if got := getPost(t, url); got.Slug != "summer-fair" {
		t.Errorf("slug = %q, want cached %q", got.Slug, "summer-fair")
	}
}

func TestGetSeesRepairAfterInvalidation(t *testing.T) {
	srv, queries := newTestServer(t)
	ctx := context.Background()

	p, err := queries.CreatePost(ctx, store.CreatePostParams{
		Type: "event", Title: "Autumn Market", Slug: "", Status: model.PostStatusPublished,
	})
	if err != nil {
		t.Fatal(err)
	}
	selfRef := strconv.FormatInt(p.ID, 10)
	if err := queries.UpdatePostSlug(ctx, p.ID, selfRef); err != nil {
		t.Fatal(err)
	}
	url := srv.URL + "/posts/" + selfRef

	// First read caches the record as stored
	if got := getPost(t, url); got.Slug != selfRef {
		t.Fatalf("slug = %q, want %q", got.Slug, selfRef)
	}

	// Listing repairs the record and drops its cache entry
	resp, err := http.Get(srv.URL + "/posts?type=event")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := getPost(t, url); got.Slug != "autumn-market" {
		t.Errorf("slug after repair = %q, want %q", got.Slug, "autumn-market")
	}
}

func TestUpdateKeepsStatusWhenOmitted(t *testing.T) {
	srv, _ := newTestServer(t)

	created := decodePost(t, postJSON(t, srv.URL+"/posts", map[string]any{
		"type": "event", "title": "Summer Fair", "status": "published",
	}))
	id := strconv.FormatInt(created.ID, 10)

	body, _ := json.Marshal(map[string]any{
		"title": "Summer Fair Renamed",
	})
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/posts/"+id, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}

	updated := decodePost(t, resp)
	if updated.Status != model.PostStatusPublished {
		t.Errorf("status = %q, want %q", updated.Status, model.PostStatusPublished)
	}
}

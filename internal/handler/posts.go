// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the platform's HTTP surface. The post
// handlers are the save and load pipelines: they sanitize input, dispatch
// the hook chains, and persist.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/cache"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
)

// PostHandler serves the post CRUD pipeline.
type PostHandler struct {
	queries *store.Queries
	cache   *cache.PostCache
	hooks   *module.HookRegistry
	logger  *slog.Logger
}

// NewPostHandler creates a post handler.
func NewPostHandler(queries *store.Queries, postCache *cache.PostCache, hooks *module.HookRegistry, logger *slog.Logger) *PostHandler {
	return &PostHandler{queries: queries, cache: postCache, hooks: hooks, logger: logger}
}

// Routes registers the post routes.
func (h *PostHandler) Routes(r chi.Router) {
	r.Get("/posts", h.List)
	r.Post("/posts", h.Create)
	r.Get("/posts/{id}", h.Get)
	r.Put("/posts/{id}", h.Update)
}

// postRequest is the JSON body of create and update requests. ID is the
// raw submitted id, carried into the save payload unchanged. Autosave
// marks the request as an editor autosave.
type postRequest struct {
	ID       int64  `json:"id,omitempty"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Body     string `json:"body"`
	Status   string `json:"status"`
	ParentID int64  `json:"parent_id"`
	Autosave bool   `json:"autosave,omitempty"`
}

// sanitize produces the sanitized draft the before-save hooks receive.
func (req *postRequest) sanitize(id int64) *model.Post {
	post := &model.Post{
		ID:       id,
		Type:     strings.TrimSpace(req.Type),
		Title:    strings.TrimSpace(req.Title),
		Slug:     strings.ToLower(strings.TrimSpace(req.Slug)),
		Body:     req.Body,
		Status:   strings.TrimSpace(req.Status),
		ParentID: req.ParentID,
	}
	if post.Type == "" {
		post.Type = model.TypePost
	}
	if post.Status != model.PostStatusPublished {
		post.Status = model.PostStatusDraft
	}
	return post
}

// Create handles POST /posts: sanitize, before-save hooks, insert,
// after-save hooks.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	draft := req.sanitize(0)
	payload := &module.SavePayload{
		Post:     draft,
		Raw:      module.RawInput{ID: req.ID},
		Autosave: req.Autosave,
	}
	if _, err := h.hooks.Call(r.Context(), module.HookPostBeforeSave, payload); err != nil {
		h.logger.Error("before-save hooks failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		Type:     draft.Type,
		Title:    draft.Title,
		Slug:     draft.Slug,
		Body:     draft.Body,
		Status:   draft.Status,
		ParentID: draft.ParentID,
	})
	if err != nil {
		h.logger.Error("creating post", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.hooks.CallNoResult(r.Context(), module.HookPostAfterSave, &post); err != nil {
		h.logger.Error("after-save hooks failed", "id", post.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// Update handles PUT /posts/{id} through the same pipeline as Create.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	existing, err := h.queries.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("loading post", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = existing.Type
	}
	if req.Status == "" {
		req.Status = existing.Status
	}
	if req.ParentID == 0 {
		req.ParentID = existing.ParentID
	}

	draft := req.sanitize(id)
	payload := &module.SavePayload{
		Post:     draft,
		Raw:      module.RawInput{ID: req.ID},
		Autosave: req.Autosave,
	}
	if _, err := h.hooks.Call(r.Context(), module.HookPostBeforeSave, payload); err != nil {
		h.logger.Error("before-save hooks failed", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		ID:     id,
		Title:  draft.Title,
		Slug:   draft.Slug,
		Body:   draft.Body,
		Status: draft.Status,
	}); err != nil {
		h.logger.Error("updating post", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.cache.Invalidate(r.Context(), id); err != nil {
		h.logger.Warn("invalidating post cache", "id", id, "error", err)
	}

	post, err := h.queries.GetPost(r.Context(), id)
	if err != nil {
		h.logger.Error("reloading post", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.hooks.CallNoResult(r.Context(), module.HookPostAfterSave, &post); err != nil {
		h.logger.Error("after-save hooks failed", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// Get handles GET /posts/{id}. Reads go through the record cache, so
// repairs that invalidate an entry show up on the next request.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.cache.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("loading post", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// List handles GET /posts: load the batch, run the after-load hooks, and
// only then encode, so consumers always see corrected records.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	postType := r.URL.Query().Get("type")

	rows, err := h.queries.ListPosts(r.Context(), postType)
	if err != nil {
		h.logger.Error("listing posts", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	posts := make([]*model.Post, len(rows))
	for i := range rows {
		posts[i] = &rows[i]
	}

	payload := &module.LoadPayload{Posts: posts, Query: "list type=" + postType}
	if _, err := h.hooks.Call(r.Context(), module.HookPostsAfterLoad, payload); err != nil {
		h.logger.Error("after-load hooks failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

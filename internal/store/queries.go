// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
)

// DBTX is the subset of *sql.DB / *sql.Tx the query layer needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to the posts table.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const postColumns = `id, type, title, slug, body, status, parent_id, created_at, updated_at`

func scanPost(row interface{ Scan(dest ...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Type, &p.Title, &p.Slug, &p.Body, &p.Status, &p.ParentID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePostParams holds the fields for creating a post.
type CreatePostParams struct {
	Type     string
	Title    string
	Slug     string
	Body     string
	Status   string
	ParentID int64
}

// CreatePost inserts a new post and returns the stored row.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO posts (type, title, slug, body, status, parent_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+postColumns,
		arg.Type, arg.Title, arg.Slug, arg.Body, arg.Status, arg.ParentID,
	)
	return scanPost(row)
}

// GetPost returns a post by id.
func (q *Queries) GetPost(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetSiblingBySlug looks up a post holding the given slug among siblings of
// the same type and parent, excluding excludeID (0 = exclude nothing).
// Returns sql.ErrNoRows when the slug is free.
func (q *Queries) GetSiblingBySlug(ctx context.Context, slug, postType string, parentID, excludeID int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE slug = ? AND type = ? AND parent_id = ? AND id != ?
		LIMIT 1`,
		slug, postType, parentID, excludeID,
	)
	return scanPost(row)
}

// GetPublishedPostBySlug returns a published post of the given type by slug.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, slug, postType string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE slug = ? AND type = ? AND status = ?
		LIMIT 1`,
		slug, postType, model.PostStatusPublished,
	)
	return scanPost(row)
}

// ListPosts returns posts ordered by id, optionally filtered by type.
// Revisions are never included.
func (q *Queries) ListPosts(ctx context.Context, postType string) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE type != ? ORDER BY id`
	args := []any{model.TypeRevision}
	if postType != "" {
		query = `SELECT ` + postColumns + ` FROM posts WHERE type = ? AND type != ? ORDER BY id`
		args = []any{postType, model.TypeRevision}
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePostParams holds the fields for a full post update.
type UpdatePostParams struct {
	ID     int64
	Title  string
	Slug   string
	Body   string
	Status string
}

// UpdatePost updates the editable fields of a post.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, slug = ?, body = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Body, arg.Status, arg.ID,
	)
	return err
}

// UpdatePostSlug writes only the slug column of a post.
func (q *Queries) UpdatePostSlug(ctx context.Context, id int64, slug string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts SET slug = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		slug, id,
	)
	return err
}

// DeletePost removes a post by id.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

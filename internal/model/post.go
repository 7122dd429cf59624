// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Builtin content type tags. Plugin modules may contribute additional
// tags through the type registry at init time.
const (
	TypePage           = "page"
	TypePost           = "post"
	TypeEventRecurring = "event-recurring"
	TypeRevision       = "revision"
)

// Post represents a content record. Events, locations, pages and posts
// all share this shape; Type distinguishes them.
type Post struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	ParentID  int64     `json:"parent_id"` // 0 = no parent
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublished returns true if the post is published.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft returns true if the post is a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// IsRevision returns true if the post is a stored revision of another post.
// Revisions keep ParentID pointing at the revised post.
func (p *Post) IsRevision() bool {
	return p.Type == TypeRevision
}

// HasSelfReferentialSlug returns true if the slug is merely the post's
// numeric id rendered as text. That shape means slug generation never ran
// for this record.
func (p *Post) HasSelfReferentialSlug() bool {
	if p.Slug == "" {
		return false
	}
	n, err := strconv.ParseInt(p.Slug, 10, 64)
	return err == nil && n == p.ID
}

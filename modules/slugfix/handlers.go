// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package slugfix

import (
	"context"
	"fmt"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/module"
	"github.com/iBook140/eventsmanager-wpml-fix/internal/util"
)

// needsFix reports whether a record's slug must be regenerated: it is
// either empty or merely the record id rendered as text, both meaning
// slug generation never ran for this record.
func needsFix(p *model.Post) bool {
	return p.Slug == "" || p.HasSelfReferentialSlug()
}

// onPostBeforeSave runs on post.before_save ahead of the calendar module.
// It fills a missing or self-referential slug on the sanitized draft so
// the save pipeline persists a usable one. The draft is mutated in place;
// nothing is persisted here.
func (m *Module) onPostBeforeSave(ctx context.Context, data any) (any, error) {
	payload, ok := data.(*module.SavePayload)
	if !ok || payload == nil || payload.Post == nil {
		return data, nil
	}
	if payload.Autosave {
		return data, nil
	}
	if m.isRevision(ctx, payload.Raw.ID) {
		return data, nil
	}

	post := payload.Post
	if !m.isManagedType(post.Type) {
		return data, nil
	}
	if !needsFix(post) || post.Title == "" {
		return data, nil
	}

	slug, err := m.generateSlug(ctx, post)
	if err != nil {
		return nil, err
	}
	post.Slug = slug

	if m.debug {
		m.logger.Info("slugfix: filled slug before save",
			"type", post.Type, "id", post.ID, "old", "", "new", slug)
	}
	return payload, nil
}

// onPostsAfterLoad runs on posts.after_load ahead of other consumers.
// It applies the same repair to each loaded record, persists the corrected
// slug, and drops any cached copy of the record. Records are mutated in
// place so every holder of the batch observes the correction.
func (m *Module) onPostsAfterLoad(ctx context.Context, data any) (any, error) {
	payload, ok := data.(*module.LoadPayload)
	if !ok || payload == nil || len(payload.Posts) == 0 {
		return data, nil
	}

	for _, post := range payload.Posts {
		if post == nil || !m.isManagedType(post.Type) {
			continue
		}
		if !needsFix(post) || post.Title == "" {
			continue
		}

		slug, err := m.generateSlug(ctx, post)
		if err != nil {
			return nil, err
		}
		post.Slug = slug

		if err := m.store.UpdatePostSlug(ctx, post.ID, slug); err != nil {
			return nil, err
		}
		if err := m.cache.Invalidate(ctx, post.ID); err != nil {
			return nil, err
		}

		if m.debug {
			m.logger.Info("slugfix: repaired slug on load",
				"type", post.Type, "id", post.ID, "old", "", "new", slug)
		}
	}
	return payload, nil
}

// generateSlug derives a candidate from the title and asks the uniqueness
// service for the final slug. A title that slugifies to nothing falls back
// to "<type>-<id>".
func (m *Module) generateSlug(ctx context.Context, post *model.Post) (string, error) {
	candidate := util.Slugify(post.Title)
	if candidate == "" {
		candidate = fmt.Sprintf("%s-%d", post.Type, post.ID)
	}
	return m.slugs.Unique(ctx, candidate, post.ID, post.Status, post.Type, post.ParentID)
}

// isRevision reports whether id identifies a stored revision record.
// Unknown ids (including 0) are not revisions.
func (m *Module) isRevision(ctx context.Context, id int64) bool {
	if id == 0 {
		return false
	}
	p, err := m.store.GetPost(ctx, id)
	if err != nil {
		return false
	}
	return p.IsRevision()
}

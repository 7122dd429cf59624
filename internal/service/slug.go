// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds platform services shared by the core pipelines
// and modules.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/store"
)

// maxSlugProbes bounds the -2, -3, ... suffix search before falling back
// to a timestamp suffix.
const maxSlugProbes = 100

// SlugService is the sole arbiter of slug uniqueness. Uniqueness is scoped
// to sibling records: posts sharing the same type and parent.
type SlugService struct {
	queries *store.Queries
}

// NewSlugService creates a slug service over the given query layer.
func NewSlugService(queries *store.Queries) *SlugService {
	return &SlugService{queries: queries}
}

// Unique returns candidate if no sibling of (postType, parentID) other
// than id already holds it; otherwise it probes candidate-2, candidate-3
// and so on. Drafts and published posts share one namespace, so status
// does not partition the search. Database errors propagate to the caller.
func (s *SlugService) Unique(ctx context.Context, candidate string, id int64, status, postType string, parentID int64) (string, error) {
	_ = status // part of the contract key; does not partition the namespace

	taken, err := s.taken(ctx, candidate, postType, parentID, id)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	for i := 2; i <= maxSlugProbes; i++ {
		slug := candidate + "-" + strconv.Itoa(i)
		taken, err := s.taken(ctx, slug, postType, parentID, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}

	// Pathological collision count: disambiguate with a timestamp
	return candidate + "-" + strconv.FormatInt(time.Now().UnixNano(), 36), nil
}

func (s *SlugService) taken(ctx context.Context, slug, postType string, parentID, excludeID int64) (bool, error) {
	_, err := s.queries.GetSiblingBySlug(ctx, slug, postType, parentID, excludeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

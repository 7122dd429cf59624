// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

package slugfix

import (
	"sort"

	"github.com/iBook140/eventsmanager-wpml-fix/internal/model"
)

// Type tags the calendar module contributes to the type registry when it
// is installed. Their absence only shrinks the managed set.
const (
	calendarEventType    = "event"
	calendarLocationType = "event-location"
)

// managedSet assembles the set of type tags this module repairs: the
// calendar tags found in the registry, the recurring-event tag, and the
// builtin page and post types, which the duplication flow breaks the same
// way it breaks events.
func (m *Module) managedSet() map[string]struct{} {
	set := make(map[string]struct{}, 5)
	for _, tag := range []string{calendarEventType, calendarLocationType} {
		if m.types.Has(tag) {
			set[tag] = struct{}{}
		}
	}
	set[model.TypeEventRecurring] = struct{}{}
	set[model.TypePage] = struct{}{}
	set[model.TypePost] = struct{}{}
	return set
}

// isManagedType reports whether records of this type are repaired.
// Matching is exact and case-sensitive.
func (m *Module) isManagedType(typeTag string) bool {
	if typeTag == "" {
		return false
	}
	_, ok := m.managedSet()[typeTag]
	return ok
}

// managedTypes returns the managed type tags in sorted order (for logs).
func (m *Module) managedTypes() []string {
	set := m.managedSet()
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

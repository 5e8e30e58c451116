// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exploration

import "slices"

// Type is an exploration mode.
type Type string

const (
	TypeAllServices  Type = "all"
	TypeProfileTypes Type = "profiles"
	TypeLabels       Type = "labels"
	TypeFlameGraph   Type = "flame-graph"
	TypeFavorites    Type = "favorites"
)

// Types lists every exploration type in header order.
var Types = []Type{TypeAllServices, TypeProfileTypes, TypeLabels, TypeFlameGraph, TypeFavorites}

// ParseType returns the named type, or [TypeAllServices] when value is
// not a known type.
func ParseType(value string) (Type, bool) {
	explorationType := Type(value)
	if slices.Contains(Types, explorationType) {
		return explorationType, true
	}
	return TypeAllServices, false
}

// Title is the header label for the type.
func (explorationType Type) Title() string {
	switch explorationType {
	case TypeAllServices:
		return "All services"
	case TypeProfileTypes:
		return "Profile types"
	case TypeLabels:
		return "Labels"
	case TypeFlameGraph:
		return "Flame graph"
	case TypeFavorites:
		return "Favorites"
	}
	return string(explorationType)
}

// keepsFilters reports whether switching to the type preserves filters
// and group-by.
func (explorationType Type) keepsFilters() bool {
	return explorationType == TypeLabels || explorationType == TypeFlameGraph
}

func typeNames() []string {
	names := make([]string, 0, len(Types))
	for _, explorationType := range Types {
		names = append(names, string(explorationType))
	}
	return names
}

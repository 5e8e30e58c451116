// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
)

// VariableLoading is published when a Variable starts fetching its
// options.
type VariableLoading struct {
	Name string
}

// VariableSettled is published when a Variable's fetch completes.
// Error holds the failure message, empty on success.
type VariableSettled struct {
	Name  string
	Error string
}

// VariableChanged is published when a Variable's value changes.
// FromURL is set when the change came from reading URL state, so the
// URL writer does not echo it back.
type VariableChanged struct {
	Name     string
	Value    string
	Previous string
	FromURL  bool
}

// ViewLabels asks the exploration to drill into an item's labels.
type ViewLabels struct {
	Item griditem.Item
}

// ViewFlameGraph asks the exploration to open an item's flame graph.
type ViewFlameGraph struct {
	Item griditem.Item
}

// ViewProfileTypes asks the exploration to list the profile types of
// an item's service.
type ViewProfileTypes struct {
	Item griditem.Item
}

// IncludeLabel narrows the global filters to include the item's label
// value.
type IncludeLabel struct {
	Item griditem.Item
}

// ExcludeLabel narrows the global filters to exclude the item's label
// value.
type ExcludeLabel struct {
	Item griditem.Item
}

// ClearLabel removes the item's label value from the global filters.
type ClearLabel struct {
	Item griditem.Item
}

// SelectLabel sets the group-by label from a label-name item.
type SelectLabel struct {
	Item griditem.Item
}

// ToggleFavorite adds or removes the item from favorites.
type ToggleFavorite struct {
	Item griditem.Item
}

// CompareTarget names one side of a comparison.
type CompareTarget string

const (
	CompareBaseline   CompareTarget = "baseline"
	CompareComparison CompareTarget = "comparison"
)

// Opposite returns the other side.
func (target CompareTarget) Opposite() CompareTarget {
	if target == CompareBaseline {
		return CompareComparison
	}
	return CompareBaseline
}

// SelectForCompare places the item on one side of a comparison.
// Clearing a side is done with Unselect set.
type SelectForCompare struct {
	Target   CompareTarget
	Item     griditem.Item
	Unselect bool
}

// ClearCompare empties both comparison slots.
type ClearCompare struct{}

// Refresh force-refreshes the Variable driving the active grid.
type Refresh struct{}

// DataReceived reports a panel's series fetch outcome. Key is the
// item's [griditem.Item.Key].
type DataReceived struct {
	Key    string
	Result datasource.Result
}

// ExplorationChanged reports that the active view was rebuilt. Type is
// the exploration type name; ActiveItem is meaningful only when
// HasActiveItem is set.
type ExplorationChanged struct {
	Type          string
	ActiveItem    griditem.Item
	HasActiveItem bool
}

// CompareChanged reports the comparison slots after a change. Keys are
// empty for unfilled slots.
type CompareChanged struct {
	BaselineKey   string
	ComparisonKey string
	Enabled       bool
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"errors"
	"net/url"
	"sync"

	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
)

// ErrIncomplete is returned by [Selection.DeepLink] unless both sides
// are selected.
var ErrIncomplete = errors.New("compare: baseline and comparison must both be selected")

// Selection holds the baseline and comparison items. An item occupies
// at most one side. Safe for concurrent use.
type Selection struct {
	mutex      sync.Mutex
	baseline   *griditem.Item
	comparison *griditem.Item
}

// Select places item on target. If the other side holds the same item
// (by [griditem.Item.Key]) that side is emptied.
func (selection *Selection) Select(target events.CompareTarget, item griditem.Item) {
	selection.mutex.Lock()
	defer selection.mutex.Unlock()

	opposite := selection.slot(target.Opposite())
	if *opposite != nil && (*opposite).Key() == item.Key() {
		*opposite = nil
	}
	*selection.slot(target) = &item
}

// Unselect empties target.
func (selection *Selection) Unselect(target events.CompareTarget) {
	selection.mutex.Lock()
	defer selection.mutex.Unlock()
	*selection.slot(target) = nil
}

// Get returns the item on target.
func (selection *Selection) Get(target events.CompareTarget) (griditem.Item, bool) {
	selection.mutex.Lock()
	defer selection.mutex.Unlock()
	item := *selection.slot(target)
	if item == nil {
		return griditem.Item{}, false
	}
	return *item, true
}

// SideOf reports which side, if any, holds an item with key.
func (selection *Selection) SideOf(key string) (events.CompareTarget, bool) {
	selection.mutex.Lock()
	defer selection.mutex.Unlock()
	if selection.baseline != nil && selection.baseline.Key() == key {
		return events.CompareBaseline, true
	}
	if selection.comparison != nil && selection.comparison.Key() == key {
		return events.CompareComparison, true
	}
	return "", false
}

// IsEnabled reports whether both sides are selected.
func (selection *Selection) IsEnabled() bool {
	selection.mutex.Lock()
	defer selection.mutex.Unlock()
	return selection.baseline != nil && selection.comparison != nil
}

// Clear empties both sides.
func (selection *Selection) Clear() {
	selection.mutex.Lock()
	defer selection.mutex.Unlock()
	selection.baseline = nil
	selection.comparison = nil
}

// DeepLink returns the query parameters of the comparison view: the
// shared parameters, explorationType=diff, and one selector per side
// with filters merged in.
func (selection *Selection) DeepLink(shared url.Values, filters []filterset.Entry) (url.Values, error) {
	selection.mutex.Lock()
	baseline, comparison := selection.baseline, selection.comparison
	selection.mutex.Unlock()

	if baseline == nil || comparison == nil {
		return nil, ErrIncomplete
	}

	link := url.Values{}
	for key, values := range shared {
		link[key] = append([]string(nil), values...)
	}
	link.Set("explorationType", "diff")
	link.Set("leftQuery", sideQuery(*baseline, filters))
	link.Set("rightQuery", sideQuery(*comparison, filters))
	return link, nil
}

func sideQuery(item griditem.Item, filters []filterset.Entry) string {
	params := item.QueryParams.Clone()
	if params.GroupBy != nil && len(params.GroupBy.Values) > 0 && len(params.Filters) == 0 {
		params.Filters = []filterset.Entry{item.Filter()}
	}
	request := datasource.Request{Params: params, Filters: filters}
	return request.Selector().String()
}

func (selection *Selection) slot(target events.CompareTarget) **griditem.Item {
	if target == events.CompareComparison {
		return &selection.comparison
	}
	return &selection.baseline
}

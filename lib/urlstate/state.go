// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package urlstate

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
)

// Keys used by the exploration outside of Variable sync.
const (
	KeyExplorationType = "explorationType"
	KeyLayout          = "layout"
	KeyHideNoData      = "hideNoData"
	KeyPanelType       = "panelType"
	KeySearchText      = "searchText"
)

// State is a mutable set of query parameters. Safe for concurrent use.
type State struct {
	mutex  sync.Mutex
	values url.Values
}

// New returns a State holding a copy of values.
func New(values url.Values) *State {
	return &State{values: clone(values)}
}

// Parse reads a query string, with or without a leading "?", or a full
// URL.
func Parse(raw string) (*State, error) {
	query := raw
	if index := strings.IndexByte(raw, '?'); index >= 0 {
		query = raw[index+1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("urlstate: parsing %q: %w", raw, err)
	}
	return New(values), nil
}

// Values returns a copy of the current parameters.
func (state *State) Values() url.Values {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return clone(state.values)
}

// Encode renders the parameters sorted by key.
func (state *State) Encode() string {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.values.Encode()
}

// Get returns the first value for key.
func (state *State) Get(key string) string {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.values.Get(key)
}

// Merge replaces the parameters named in update. A key mapped to no
// values is removed. It reports whether anything changed.
func (state *State) Merge(update url.Values) bool {
	state.mutex.Lock()
	defer state.mutex.Unlock()

	changed := false
	for key, values := range update {
		current, present := state.values[key]
		if len(values) == 0 {
			if present {
				delete(state.values, key)
				changed = true
			}
			continue
		}
		if !present || !slices.Equal(current, values) {
			state.values[key] = slices.Clone(values)
			changed = true
		}
	}
	return changed
}

// Replace swaps every parameter for values. It reports whether
// anything changed.
func (state *State) Replace(values url.Values) bool {
	state.mutex.Lock()
	defer state.mutex.Unlock()

	changed := len(values) != len(state.values)
	for key, list := range values {
		if !slices.Equal(state.values[key], list) {
			changed = true
		}
	}
	state.values = clone(values)
	return changed
}

// String returns values[key] when it is one of allowed (any value when
// allowed is empty), otherwise fallback. valid is false when a present
// value was rejected.
func String(values url.Values, key, fallback string, allowed ...string) (value string, valid bool) {
	raw, present := values[key]
	if !present || len(raw) == 0 {
		return fallback, true
	}
	if len(allowed) > 0 && !slices.Contains(allowed, raw[0]) {
		return fallback, false
	}
	return raw[0], true
}

// Bool reads an "on"/"off" flag.
func Bool(values url.Values, key string, fallback bool) (value bool, valid bool) {
	defaultText := FormatBool(fallback)
	text, valid := String(values, key, defaultText, "on", "off")
	return text == "on", valid
}

// FormatBool renders a flag as "on" or "off".
func FormatBool(value bool) string {
	if value {
		return "on"
	}
	return "off"
}

func clone(values url.Values) url.Values {
	result := make(url.Values, len(values))
	for key, list := range values {
		result[key] = slices.Clone(list)
	}
	return result
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package filterset

import (
	"slices"
	"strings"
)

// Operator is a label matching operator.
type Operator string

const (
	// OperatorEqual matches one exact value.
	OperatorEqual Operator = "="
	// OperatorNotEqual matches anything but one exact value.
	OperatorNotEqual Operator = "!="
	// OperatorRegexMatch matches any of a `|`-joined set of values.
	OperatorRegexMatch Operator = "=~"
	// OperatorRegexNoMatch matches none of a `|`-joined set of values.
	OperatorRegexNoMatch Operator = "!~"
	// OperatorIsEmpty matches series where the label is empty or
	// absent. Entries with this operator carry no value.
	OperatorIsEmpty Operator = "is-empty"
)

// Valid reports whether the operator is one of the known operators.
func (operator Operator) Valid() bool {
	switch operator {
	case OperatorEqual, OperatorNotEqual, OperatorRegexMatch, OperatorRegexNoMatch, OperatorIsEmpty:
		return true
	}
	return false
}

// IsRegex reports whether the operator carries a value set.
func (operator Operator) IsRegex() bool {
	return operator == OperatorRegexMatch || operator == OperatorRegexNoMatch
}

// Entry is one label filter.
type Entry struct {
	Key      string   `json:"key"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
}

// valueSeparator joins the alternatives of a regex entry.
const valueSeparator = "|"

// Values splits a regex value into its alternatives. Empty
// alternatives are dropped.
func Values(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, valueSeparator)
	values := parts[:0]
	for _, part := range parts {
		if part != "" {
			values = append(values, part)
		}
	}
	return values
}

// JoinValues is the inverse of [Values].
func JoinValues(values []string) string {
	return strings.Join(values, valueSeparator)
}

// Include narrows filters so that target.Value is matched for
// target.Key. See the package documentation for the per-operator
// rules.
func Include(filters []Entry, target Entry) []Entry {
	index := indexOfKey(filters, target.Key)
	if index < 0 {
		return appendEntry(filters, Entry{Key: target.Key, Operator: OperatorRegexMatch, Value: target.Value})
	}

	existing := filters[index]
	switch existing.Operator {
	case OperatorEqual:
		if existing.Value == target.Value {
			return clone(filters)
		}
		return replaceEntry(filters, index, Entry{
			Key:      target.Key,
			Operator: OperatorRegexMatch,
			Value:    JoinValues(union(Values(existing.Value), target.Value)),
		})

	case OperatorNotEqual:
		return replaceEntry(filters, index, Entry{
			Key:      target.Key,
			Operator: OperatorRegexMatch,
			Value:    JoinValues(union(Values(existing.Value), target.Value)),
		})

	case OperatorRegexMatch:
		return replaceEntry(filters, index, Entry{
			Key:      existing.Key,
			Operator: OperatorRegexMatch,
			Value:    JoinValues(union(Values(existing.Value), target.Value)),
		})

	case OperatorRegexNoMatch:
		remaining := without(Values(existing.Value), target.Value)
		if len(remaining) == 0 {
			return deleteEntry(filters, index)
		}
		return replaceEntry(filters, index, Entry{
			Key:      existing.Key,
			Operator: OperatorRegexNoMatch,
			Value:    JoinValues(remaining),
		})

	case OperatorIsEmpty:
		return replaceEntry(filters, index, Entry{Key: target.Key, Operator: OperatorRegexMatch, Value: target.Value})
	}

	return clone(filters)
}

// Exclude narrows filters so that target.Value is not matched for
// target.Key. It mirrors [Include] with the regex roles swapped, except
// that excluding from an include set replaces the whole include entry
// with a single negated value.
func Exclude(filters []Entry, target Entry) []Entry {
	index := indexOfKey(filters, target.Key)
	if index < 0 {
		return appendEntry(filters, Entry{Key: target.Key, Operator: OperatorRegexNoMatch, Value: target.Value})
	}

	existing := filters[index]
	switch existing.Operator {
	case OperatorNotEqual:
		if existing.Value == target.Value {
			return clone(filters)
		}
		return replaceEntry(filters, index, Entry{
			Key:      target.Key,
			Operator: OperatorRegexNoMatch,
			Value:    JoinValues(union(Values(existing.Value), target.Value)),
		})

	case OperatorEqual:
		return replaceEntry(filters, index, Entry{
			Key:      target.Key,
			Operator: OperatorRegexNoMatch,
			Value:    JoinValues(union(Values(existing.Value), target.Value)),
		})

	case OperatorRegexNoMatch:
		return replaceEntry(filters, index, Entry{
			Key:      existing.Key,
			Operator: OperatorRegexNoMatch,
			Value:    JoinValues(union(Values(existing.Value), target.Value)),
		})

	case OperatorRegexMatch, OperatorIsEmpty:
		return replaceEntry(filters, index, Entry{Key: target.Key, Operator: OperatorRegexNoMatch, Value: target.Value})
	}

	return clone(filters)
}

// Clear removes target.Value from the regex entry for target.Key. The
// entry is deleted when its value set becomes empty. Entries with a
// non-regex operator are left untouched: clearing only undoes values
// added through [Include] or [Exclude].
func Clear(filters []Entry, target Entry) []Entry {
	index := indexOfKey(filters, target.Key)
	if index < 0 {
		return clone(filters)
	}

	existing := filters[index]
	if !existing.Operator.IsRegex() {
		return clone(filters)
	}

	remaining := without(Values(existing.Value), target.Value)
	if len(remaining) == 0 {
		return deleteEntry(filters, index)
	}
	return replaceEntry(filters, index, Entry{
		Key:      existing.Key,
		Operator: existing.Operator,
		Value:    JoinValues(remaining),
	})
}

// Equal reports whether two filter lists hold the same entries in the
// same order. A nil list equals an empty one.
func Equal(a, b []Entry) bool {
	return slices.Equal(a, b)
}

// Lookup returns the entry for key, if any.
func Lookup(filters []Entry, key string) (Entry, bool) {
	index := indexOfKey(filters, key)
	if index < 0 {
		return Entry{}, false
	}
	return filters[index], true
}

// State describes how a value relates to a filter list, for rendering
// include/exclude toggles on a panel.
type State int

const (
	// StateNone means the value is neither included nor excluded.
	StateNone State = iota
	// StateIncluded means the value is part of an include entry.
	StateIncluded
	// StateExcluded means the value is part of an exclude entry.
	StateExcluded
)

// StateOf reports whether value is currently included, excluded or
// neither for key.
func StateOf(filters []Entry, key, value string) State {
	entry, found := Lookup(filters, key)
	if !found {
		return StateNone
	}
	switch entry.Operator {
	case OperatorEqual:
		if entry.Value == value {
			return StateIncluded
		}
	case OperatorNotEqual:
		if entry.Value == value {
			return StateExcluded
		}
	case OperatorRegexMatch:
		if slices.Contains(Values(entry.Value), value) {
			return StateIncluded
		}
	case OperatorRegexNoMatch:
		if slices.Contains(Values(entry.Value), value) {
			return StateExcluded
		}
	}
	return StateNone
}

func indexOfKey(filters []Entry, key string) int {
	return slices.IndexFunc(filters, func(entry Entry) bool {
		return entry.Key == key
	})
}

func clone(filters []Entry) []Entry {
	if filters == nil {
		return nil
	}
	return slices.Clone(filters)
}

func appendEntry(filters []Entry, entry Entry) []Entry {
	result := make([]Entry, 0, len(filters)+1)
	result = append(result, filters...)
	return append(result, entry)
}

func replaceEntry(filters []Entry, index int, entry Entry) []Entry {
	result := slices.Clone(filters)
	result[index] = entry
	return result
}

func deleteEntry(filters []Entry, index int) []Entry {
	result := make([]Entry, 0, len(filters)-1)
	result = append(result, filters[:index]...)
	return append(result, filters[index+1:]...)
}

func union(values []string, value string) []string {
	if slices.Contains(values, value) {
		return values
	}
	return append(values, value)
}

func without(values []string, value string) []string {
	return slices.DeleteFunc(values, func(candidate string) bool {
		return candidate == value
	})
}

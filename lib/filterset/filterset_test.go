// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package filterset

import (
	"slices"
	"testing"
)

func vehicle(operator Operator, value string) Entry {
	return Entry{Key: "vehicle", Operator: operator, Value: value}
}

func TestInclude(t *testing.T) {
	bike := vehicle(OperatorEqual, "bike")

	tests := []struct {
		name    string
		filters []Entry
		want    []Entry
	}{
		{
			name:    "no entry appends regex entry",
			filters: nil,
			want:    []Entry{vehicle(OperatorRegexMatch, "bike")},
		},
		{
			name:    "regex entry gains the value",
			filters: []Entry{vehicle(OperatorRegexMatch, "car")},
			want:    []Entry{vehicle(OperatorRegexMatch, "car|bike")},
		},
		{
			name:    "regex entry already holding the value is unchanged",
			filters: []Entry{vehicle(OperatorRegexMatch, "car|bike")},
			want:    []Entry{vehicle(OperatorRegexMatch, "car|bike")},
		},
		{
			name:    "equal with same value is unchanged",
			filters: []Entry{vehicle(OperatorEqual, "bike")},
			want:    []Entry{vehicle(OperatorEqual, "bike")},
		},
		{
			name:    "equal with other value becomes regex union",
			filters: []Entry{vehicle(OperatorEqual, "car")},
			want:    []Entry{vehicle(OperatorRegexMatch, "car|bike")},
		},
		{
			name:    "not-equal becomes regex union",
			filters: []Entry{vehicle(OperatorNotEqual, "car")},
			want:    []Entry{vehicle(OperatorRegexMatch, "car|bike")},
		},
		{
			name:    "negated set loses the value",
			filters: []Entry{vehicle(OperatorRegexNoMatch, "car|bike")},
			want:    []Entry{vehicle(OperatorRegexNoMatch, "car")},
		},
		{
			name:    "negated set emptied deletes the entry",
			filters: []Entry{vehicle(OperatorRegexNoMatch, "bike")},
			want:    []Entry{},
		},
		{
			name:    "is-empty entry is replaced",
			filters: []Entry{{Key: "vehicle", Operator: OperatorIsEmpty}},
			want:    []Entry{vehicle(OperatorRegexMatch, "bike")},
		},
		{
			name: "unrelated entries keep their position",
			filters: []Entry{
				{Key: "region", Operator: OperatorEqual, Value: "eu"},
				vehicle(OperatorRegexMatch, "car"),
				{Key: "zone", Operator: OperatorNotEqual, Value: "a"},
			},
			want: []Entry{
				{Key: "region", Operator: OperatorEqual, Value: "eu"},
				vehicle(OperatorRegexMatch, "car|bike"),
				{Key: "zone", Operator: OperatorNotEqual, Value: "a"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			before := slices.Clone(test.filters)
			got := Include(test.filters, bike)
			if !Equal(got, test.want) {
				t.Errorf("Include(%v) = %v, want %v", test.filters, got, test.want)
			}
			if !Equal(test.filters, before) {
				t.Errorf("Include mutated its input: %v, was %v", test.filters, before)
			}
		})
	}
}

func TestExclude(t *testing.T) {
	bike := vehicle(OperatorEqual, "bike")

	tests := []struct {
		name    string
		filters []Entry
		want    []Entry
	}{
		{
			name:    "no entry appends negated entry",
			filters: nil,
			want:    []Entry{vehicle(OperatorRegexNoMatch, "bike")},
		},
		{
			name:    "include set is replaced by the negated value",
			filters: []Entry{vehicle(OperatorRegexMatch, "car|bike")},
			want:    []Entry{vehicle(OperatorRegexNoMatch, "bike")},
		},
		{
			name:    "negated set gains the value",
			filters: []Entry{vehicle(OperatorRegexNoMatch, "car")},
			want:    []Entry{vehicle(OperatorRegexNoMatch, "car|bike")},
		},
		{
			name:    "not-equal with same value is unchanged",
			filters: []Entry{vehicle(OperatorNotEqual, "bike")},
			want:    []Entry{vehicle(OperatorNotEqual, "bike")},
		},
		{
			name:    "equal becomes negated union",
			filters: []Entry{vehicle(OperatorEqual, "car")},
			want:    []Entry{vehicle(OperatorRegexNoMatch, "car|bike")},
		},
		{
			name:    "is-empty entry is replaced",
			filters: []Entry{{Key: "vehicle", Operator: OperatorIsEmpty}},
			want:    []Entry{vehicle(OperatorRegexNoMatch, "bike")},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Exclude(test.filters, bike)
			if !Equal(got, test.want) {
				t.Errorf("Exclude(%v) = %v, want %v", test.filters, got, test.want)
			}
		})
	}
}

func TestClear(t *testing.T) {
	bike := vehicle(OperatorEqual, "bike")

	tests := []struct {
		name    string
		filters []Entry
		want    []Entry
	}{
		{
			name:    "value removed from include set",
			filters: []Entry{vehicle(OperatorRegexMatch, "car|bike")},
			want:    []Entry{vehicle(OperatorRegexMatch, "car")},
		},
		{
			name:    "value removed from negated set",
			filters: []Entry{vehicle(OperatorRegexNoMatch, "car|bike")},
			want:    []Entry{vehicle(OperatorRegexNoMatch, "car")},
		},
		{
			name:    "emptied set deletes the entry",
			filters: []Entry{vehicle(OperatorRegexMatch, "bike")},
			want:    []Entry{},
		},
		{
			name:    "non-regex entries are untouched",
			filters: []Entry{vehicle(OperatorEqual, "bike")},
			want:    []Entry{vehicle(OperatorEqual, "bike")},
		},
		{
			name:    "is-empty entries are untouched",
			filters: []Entry{{Key: "vehicle", Operator: OperatorIsEmpty}},
			want:    []Entry{{Key: "vehicle", Operator: OperatorIsEmpty}},
		},
		{
			name:    "missing key is a no-op",
			filters: []Entry{{Key: "region", Operator: OperatorRegexMatch, Value: "eu"}},
			want:    []Entry{{Key: "region", Operator: OperatorRegexMatch, Value: "eu"}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Clear(test.filters, bike)
			if !Equal(got, test.want) {
				t.Errorf("Clear(%v) = %v, want %v", test.filters, got, test.want)
			}
		})
	}
}

func TestIncludeIsIdempotent(t *testing.T) {
	starts := [][]Entry{
		nil,
		{vehicle(OperatorRegexMatch, "car")},
		{vehicle(OperatorEqual, "car")},
		{vehicle(OperatorRegexNoMatch, "car|bike")},
		{{Key: "region", Operator: OperatorEqual, Value: "eu"}},
	}
	target := vehicle(OperatorEqual, "bike")

	for _, start := range starts {
		once := Include(start, target)
		twice := Include(once, target)
		if !Equal(once, twice) {
			t.Errorf("Include not idempotent from %v: once=%v twice=%v", start, once, twice)
		}
	}
}

func TestClearUndoesInclude(t *testing.T) {
	region := Entry{Key: "region", Operator: OperatorEqual, Value: "eu"}
	target := vehicle(OperatorEqual, "bike")

	starts := [][]Entry{
		nil,
		{region},
		{region, vehicle(OperatorRegexMatch, "car")},
		{vehicle(OperatorRegexMatch, "car|truck"), region},
	}

	for _, start := range starts {
		got := Clear(Include(start, target), target)
		if !Equal(got, start) && !(len(got) == 0 && len(start) == 0) {
			t.Errorf("Clear(Include(%v)) = %v, want the original list", start, got)
		}
	}
}

func TestLabelValueScenarios(t *testing.T) {
	bike := vehicle(OperatorEqual, "bike")

	if got := Include(nil, bike); !Equal(got, []Entry{vehicle(OperatorRegexMatch, "bike")}) {
		t.Errorf("scenario 1: got %v", got)
	}
	if got := Include([]Entry{vehicle(OperatorRegexMatch, "car")}, bike); !Equal(got, []Entry{vehicle(OperatorRegexMatch, "car|bike")}) {
		t.Errorf("scenario 2: got %v", got)
	}
	if got := Exclude([]Entry{vehicle(OperatorRegexMatch, "car|bike")}, bike); !Equal(got, []Entry{vehicle(OperatorRegexNoMatch, "bike")}) {
		t.Errorf("scenario 3: got %v", got)
	}
	if got := Clear([]Entry{vehicle(OperatorRegexMatch, "car|bike")}, bike); !Equal(got, []Entry{vehicle(OperatorRegexMatch, "car")}) {
		t.Errorf("scenario 4: got %v", got)
	}
}

func TestStateOf(t *testing.T) {
	filters := []Entry{
		vehicle(OperatorRegexMatch, "car|bike"),
		{Key: "region", Operator: OperatorRegexNoMatch, Value: "eu"},
	}

	if state := StateOf(filters, "vehicle", "bike"); state != StateIncluded {
		t.Errorf("vehicle=bike state = %v, want included", state)
	}
	if state := StateOf(filters, "region", "eu"); state != StateExcluded {
		t.Errorf("region=eu state = %v, want excluded", state)
	}
	if state := StateOf(filters, "vehicle", "truck"); state != StateNone {
		t.Errorf("vehicle=truck state = %v, want none", state)
	}
	if state := StateOf(filters, "zone", "a"); state != StateNone {
		t.Errorf("zone=a state = %v, want none", state)
	}
}

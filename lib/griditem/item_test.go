// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package griditem

import (
	"testing"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
)

func sampleItem() Item {
	return Item{
		Index: 2,
		Value: "vehicle",
		Label: "vehicle",
		QueryParams: QueryParams{
			ServiceName:     "ride-sharing-app",
			ProfileMetricID: "process_cpu:cpu:nanoseconds:cpu:nanoseconds",
			GroupBy:         &GroupBy{Label: "vehicle", Values: []string{"car", "bike"}},
		},
		PanelType: PanelTimeseries,
	}
}

func TestParsePanelType(t *testing.T) {
	tests := []struct {
		input string
		want  PanelType
		known bool
	}{
		{"timeseries", PanelTimeseries, true},
		{"bargauge", PanelBarGauge, true},
		{"table", PanelTable, true},
		{"histogram", PanelHistogram, true},
		{"", PanelTimeseries, false},
		{"pie", PanelTimeseries, false},
	}
	for _, test := range tests {
		got, known := ParsePanelType(test.input)
		if got != test.want || known != test.known {
			t.Errorf("ParsePanelType(%q) = (%q, %v), want (%q, %v)", test.input, got, known, test.want, test.known)
		}
	}
}

func TestKeyIgnoresIndex(t *testing.T) {
	first := sampleItem()
	second := sampleItem()
	second.Index = 9

	if first.Key() != second.Key() {
		t.Errorf("keys differ by index: %q vs %q", first.Key(), second.Key())
	}
	if first.Equal(second) {
		t.Error("Equal ignored index")
	}
}

func TestKeyDistinguishesParams(t *testing.T) {
	base := sampleItem()

	changedPanel := sampleItem()
	changedPanel.PanelType = PanelTable

	changedGroupBy := sampleItem()
	changedGroupBy.QueryParams.GroupBy.Values = []string{"car"}

	changedFilters := sampleItem()
	changedFilters.QueryParams.Filters = []filterset.Entry{{Key: "region", Operator: filterset.OperatorEqual, Value: "eu"}}

	for name, other := range map[string]Item{
		"panel type": changedPanel,
		"group by":   changedGroupBy,
		"filters":    changedFilters,
	} {
		if base.Key() == other.Key() {
			t.Errorf("%s change did not alter key %q", name, base.Key())
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := sampleItem().QueryParams
	copied := original.Clone()
	copied.GroupBy.Values[0] = "truck"

	if original.GroupBy.Values[0] != "car" {
		t.Errorf("Clone shares group-by values: original now %v", original.GroupBy.Values)
	}
	if original.Equal(copied) {
		t.Error("modified clone still equal to original")
	}
}

func TestFilter(t *testing.T) {
	fromGroupBy := sampleItem()
	want := filterset.Entry{Key: "vehicle", Operator: filterset.OperatorEqual, Value: "car"}
	if got := fromGroupBy.Filter(); got != want {
		t.Errorf("Filter() from group-by = %v, want %v", got, want)
	}

	fromFilters := sampleItem()
	explicit := filterset.Entry{Key: "region", Operator: filterset.OperatorRegexMatch, Value: "eu"}
	fromFilters.QueryParams.Filters = []filterset.Entry{explicit}
	if got := fromFilters.Filter(); got != explicit {
		t.Errorf("Filter() from filters = %v, want %v", got, explicit)
	}
}

func TestFilterPanicsWithoutSource(t *testing.T) {
	item := Item{Label: "orphan", QueryParams: QueryParams{GroupBy: &GroupBy{Label: "vehicle"}}}
	if item.HasFilter() {
		t.Fatal("HasFilter() = true for item without values")
	}

	defer func() {
		if recover() == nil {
			t.Error("Filter() did not panic")
		}
	}()
	item.Filter()
}

func TestListEqual(t *testing.T) {
	a := []Item{sampleItem()}
	b := []Item{sampleItem()}
	if !ListEqual(a, b) {
		t.Error("identical lists reported unequal")
	}
	b[0].Label = "other"
	if ListEqual(a, b) {
		t.Error("differing lists reported equal")
	}
	if !ListEqual(nil, []Item{}) {
		t.Error("nil and empty lists reported unequal")
	}
}

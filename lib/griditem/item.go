// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package griditem

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
)

// PanelType selects the visualization a panel uses.
type PanelType string

const (
	PanelTimeseries PanelType = "timeseries"
	PanelBarGauge   PanelType = "bargauge"
	PanelTable      PanelType = "table"
	PanelHistogram  PanelType = "histogram"
)

// PanelTypes lists every panel type in display order.
var PanelTypes = []PanelType{PanelTimeseries, PanelBarGauge, PanelTable, PanelHistogram}

// Valid reports whether the panel type is known.
func (panelType PanelType) Valid() bool {
	return slices.Contains(PanelTypes, panelType)
}

// ParsePanelType returns the panel type named by value, falling back to
// [PanelTimeseries] for unknown or empty input. The boolean reports
// whether value was recognized.
func ParsePanelType(value string) (PanelType, bool) {
	panelType := PanelType(value)
	if panelType.Valid() {
		return panelType, true
	}
	return PanelTimeseries, false
}

// GroupBy splits a panel's series by one label. Values optionally
// restricts the split to the label's top values.
type GroupBy struct {
	Label  string   `json:"label"`
	Values []string `json:"values,omitempty"`
}

// QueryParams are the parameters a panel queries with. Every field is
// optional; filters here are item-specific and the panel renderer
// merges the global filter set on top.
type QueryParams struct {
	ServiceName     string            `json:"serviceName,omitempty"`
	ProfileMetricID string            `json:"profileMetricId,omitempty"`
	GroupBy         *GroupBy          `json:"groupBy,omitempty"`
	Filters         []filterset.Entry `json:"filters,omitempty"`
}

// Equal reports structural equality.
func (params QueryParams) Equal(other QueryParams) bool {
	if params.ServiceName != other.ServiceName || params.ProfileMetricID != other.ProfileMetricID {
		return false
	}
	if (params.GroupBy == nil) != (other.GroupBy == nil) {
		return false
	}
	if params.GroupBy != nil {
		if params.GroupBy.Label != other.GroupBy.Label || !slices.Equal(params.GroupBy.Values, other.GroupBy.Values) {
			return false
		}
	}
	return filterset.Equal(params.Filters, other.Filters)
}

// Clone returns a deep copy.
func (params QueryParams) Clone() QueryParams {
	result := params
	if params.GroupBy != nil {
		groupBy := *params.GroupBy
		groupBy.Values = slices.Clone(params.GroupBy.Values)
		result.GroupBy = &groupBy
	}
	result.Filters = slices.Clone(params.Filters)
	return result
}

// Item is one grid slot.
type Item struct {
	Index       int         `json:"index"`
	Value       string      `json:"value"`
	Label       string      `json:"label"`
	QueryParams QueryParams `json:"queryParams"`
	PanelType   PanelType   `json:"panelType"`
}

// Key returns a deterministic identity for the item derived from its
// value, panel type and query parameters. Index is not part of the
// identity: the same panel sorted into a different slot keeps its key.
func (item Item) Key() string {
	encoded, err := json.Marshal(item.QueryParams)
	if err != nil {
		// QueryParams holds only strings and slices of strings.
		panic(fmt.Sprintf("griditem: encoding query params: %v", err))
	}
	return item.Value + "|" + string(item.PanelType) + "|" + string(encoded)
}

// Equal reports structural equality, including index.
func (item Item) Equal(other Item) bool {
	return item.Index == other.Index &&
		item.Value == other.Value &&
		item.Label == other.Label &&
		item.PanelType == other.PanelType &&
		item.QueryParams.Equal(other.QueryParams)
}

// Filter returns the label filter that narrows an exploration to this
// item: its first item-specific filter when present, otherwise an
// equality filter on the first group-by value.
//
// Calling Filter on an item with neither is a programming error and
// panics.
func (item Item) Filter() filterset.Entry {
	if len(item.QueryParams.Filters) > 0 {
		return item.QueryParams.Filters[0]
	}
	if groupBy := item.QueryParams.GroupBy; groupBy != nil && len(groupBy.Values) > 0 {
		return filterset.Entry{Key: groupBy.Label, Operator: filterset.OperatorEqual, Value: groupBy.Values[0]}
	}
	panic(fmt.Sprintf("griditem: item %q has neither filters nor group-by values", item.Label))
}

// HasFilter reports whether [Item.Filter] would succeed.
func (item Item) HasFilter() bool {
	if len(item.QueryParams.Filters) > 0 {
		return true
	}
	groupBy := item.QueryParams.GroupBy
	return groupBy != nil && len(groupBy.Values) > 0
}

// ListEqual reports whether two item lists are structurally equal in
// order.
func ListEqual(a, b []Item) bool {
	return slices.EqualFunc(a, b, Item.Equal)
}

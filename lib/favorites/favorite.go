// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package favorites

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// Favorite is a pinned panel.
type Favorite struct {
	Index       int                  `json:"index"`
	QueryParams griditem.QueryParams `json:"queryParams"`
	PanelType   griditem.PanelType   `json:"panelType"`
}

// FromItem projects a grid item to a favorite.
func FromItem(item griditem.Item) Favorite {
	params := item.QueryParams.Clone()
	if params.GroupBy != nil {
		params.GroupBy = &griditem.GroupBy{Label: params.GroupBy.Label}
	}
	panelType := item.PanelType
	if !panelType.Valid() {
		panelType = griditem.PanelTimeseries
	}
	return Favorite{Index: item.Index, QueryParams: params, PanelType: panelType}
}

// Equal compares favorites ignoring Index.
func (favorite Favorite) Equal(other Favorite) bool {
	return favorite.PanelType == other.PanelType && favorite.QueryParams.Equal(other.QueryParams)
}

// Label describes the favorite for display.
func (favorite Favorite) Label() string {
	params := favorite.QueryParams
	parts := []string{params.ServiceName}
	if params.ProfileMetricID != "" {
		parts = append(parts, shortMetric(params.ProfileMetricID))
	}
	label := strings.Join(parts, " · ")
	if params.GroupBy != nil && params.GroupBy.Label != "" {
		label += " by " + params.GroupBy.Label
	}
	if len(params.Filters) > 0 {
		label += " " + filterset.Format(params.Filters)
	}
	return label
}

// shortMetric reduces "process_cpu:cpu:nanoseconds:cpu:nanoseconds" to
// "process_cpu/cpu".
func shortMetric(profileMetricID string) string {
	parts := strings.Split(profileMetricID, ":")
	if len(parts) < 2 {
		return profileMetricID
	}
	return parts[0] + "/" + parts[1]
}

// Item converts the favorite back to a grid item at index.
func (favorite Favorite) Item(index int) griditem.Item {
	return griditem.Item{
		Index:       index,
		Value:       favorite.Label(),
		Label:       favorite.Label(),
		QueryParams: favorite.QueryParams.Clone(),
		PanelType:   favorite.PanelType,
	}
}

// Option encodes the favorite as a Variable option. The value is the
// favorite's JSON encoding so a grid can map it back with
// [FromOption].
func (favorite Favorite) Option() variable.Option {
	favorite.Index = 0
	encoded, err := json.Marshal(favorite)
	if err != nil {
		panic(fmt.Sprintf("favorites: encoding favorite: %v", err))
	}
	return variable.Option{Value: string(encoded), Label: favorite.Label()}
}

// FromOption decodes an option produced by [Favorite.Option].
func FromOption(option variable.Option) (Favorite, error) {
	var favorite Favorite
	if err := json.Unmarshal([]byte(option.Value), &favorite); err != nil {
		return Favorite{}, fmt.Errorf("favorites: decoding option %q: %w", option.Label, err)
	}
	return favorite, nil
}

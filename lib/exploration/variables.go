// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exploration

import (
	"context"
	"fmt"
	"slices"

	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// Variable names.
const (
	VarDataSource      = "dataSource"
	VarServiceName     = "serviceName"
	VarProfileMetricID = "profileMetricId"
	VarGroupBy         = "groupBy"
	VarFilters         = "filters"
	VarLabelValues     = "labelValues"
	VarFavorites       = "favorites"
)

const (
	// DefaultProfileMetricID is selected when the current service offers
	// it, and otherwise the first profile type.
	DefaultProfileMetricID = "process_cpu:cpu:nanoseconds:cpu:nanoseconds"

	// GroupByAll is the group-by value listing every label.
	GroupByAll = "all"

	// emptyFilters is the filters value with no entries.
	emptyFilters = "{}"
)

// Source is a data source: it answers option queries and panel series
// fetches.
type Source interface {
	variable.OptionFetcher
	datasource.DataFetcher
}

// definitions declares the session's Variables. options answers the
// data-source queries; favorites lists the favorites store.
func definitions(sourceNames []string, defaultSource string, options, favorites variable.OptionFetcher) []variable.Definition {
	sourceOptions := make([]variable.Option, 0, len(sourceNames))
	for _, name := range sourceNames {
		sourceOptions = append(sourceOptions, variable.Option{Value: name, Label: name})
	}

	return []variable.Definition{
		{
			Name:             VarDataSource,
			StaticOptions:    sourceOptions,
			Default:          defaultSource,
			URLSyncKey:       "var-dataSource",
			Normalize:        variable.NormalizeOneOf(sourceNames...),
			ValueFromOptions: true,
		},
		{
			Name:             VarServiceName,
			DependsOn:        []string{VarDataSource},
			Query:            "label_values(service_name)",
			Fetcher:          options,
			URLSyncKey:       "var-serviceName",
			ValueFromOptions: true,
		},
		{
			Name:             VarProfileMetricID,
			DependsOn:        []string{VarDataSource, VarServiceName},
			Query:            `profile_types({service_name=${serviceName:quote}})`,
			Fetcher:          options,
			Default:          DefaultProfileMetricID,
			URLSyncKey:       "var-profileMetricId",
			ValueFromOptions: true,
		},
		{
			Name:             VarGroupBy,
			DependsOn:        []string{VarDataSource, VarServiceName, VarProfileMetricID},
			Query:            `label_names($profileMetricId{service_name=${serviceName:quote}})`,
			Fetcher:          options,
			Default:          GroupByAll,
			AllValue:         GroupByAll,
			URLSyncKey:       "var-groupBy",
			ValueFromOptions: true,
		},
		{
			Name:       VarFilters,
			Default:    emptyFilters,
			URLSyncKey: "var-filters",
			Codec:      variable.FiltersCodec{},
			Normalize:  variable.NormalizeFilters,
		},
		{
			Name:      VarLabelValues,
			DependsOn: []string{VarDataSource, VarServiceName, VarProfileMetricID, VarGroupBy, VarFilters},
			Query:     `label_values($groupBy, $profileMetricId{service_name=${serviceName:quote},${filters:matchers}})`,
			Fetcher:   options,
		},
		{
			Name:    VarFavorites,
			Fetcher: favorites,
		},
	}
}

// sourceRouter sends option queries to the data source currently
// selected by the dataSource Variable.
type sourceRouter struct {
	controller *Controller
}

func (router sourceRouter) FetchOptions(ctx context.Context, query string) ([]variable.Option, error) {
	parsed, err := datasource.ParseOptionQuery(query)
	if err == nil && parsed.Function == datasource.FunctionLabelValues && parsed.Label == GroupByAll {
		// labelValues has nothing to list until a label is chosen.
		return nil, nil
	}
	source, err := router.controller.source()
	if err != nil {
		return nil, err
	}
	return source.FetchOptions(ctx, query)
}

// emptyFavorites stands in for a missing favorites store.
var emptyFavorites = variable.FetcherFunc(func(context.Context, string) ([]variable.Option, error) {
	return nil, nil
})

func sortedSourceNames(sources map[string]Source) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func resolveDefaultSource(names []string, requested string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("exploration: at least one data source is required")
	}
	if requested == "" {
		return names[0], nil
	}
	if !slices.Contains(names, requested) {
		return "", fmt.Errorf("exploration: default data source %q is not configured", requested)
	}
	return requested, nil
}

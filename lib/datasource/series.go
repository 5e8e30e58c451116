// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"context"
	"time"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
)

// Point is one sample of a series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a labelled sequence of points.
type Series struct {
	Labels map[string]string `json:"labels"`
	Points []Point           `json:"points"`
}

// Total sums the series' values.
func (series Series) Total() float64 {
	var total float64
	for _, point := range series.Points {
		total += point.Value
	}
	return total
}

// DataState is the lifecycle state of a series fetch.
type DataState string

const (
	StateLoading DataState = "loading"
	StateDone    DataState = "done"
	StateError   DataState = "error"
)

// Result is the outcome of a series fetch.
type Result struct {
	State  DataState
	Series []Series
	// Err is set when State is StateError.
	Err error
}

// Empty reports whether a completed fetch returned no series.
func (result Result) Empty() bool {
	return result.State == StateDone && len(result.Series) == 0
}

// TimeRange bounds a series fetch.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Request describes one panel's series fetch.
type Request struct {
	Params griditem.QueryParams
	// Filters are the global filters, merged with Params.Filters.
	Filters []filterset.Entry
	Range   TimeRange
	// MaxPoints caps the number of points per series. Zero means the
	// implementation's default.
	MaxPoints int
}

// Matchers returns the merged matcher set for the request: the
// service, then global filters, then item-specific filters. Item
// filters replace global filters on the same key.
func (request Request) Matchers() []filterset.Entry {
	var matchers []filterset.Entry
	if request.Params.ServiceName != "" {
		matchers = append(matchers, filterset.Entry{Key: ServiceNameLabel, Operator: filterset.OperatorEqual, Value: request.Params.ServiceName})
	}
	for _, entry := range request.Filters {
		if _, overridden := filterset.Lookup(request.Params.Filters, entry.Key); overridden {
			continue
		}
		if entry.Key == ServiceNameLabel && request.Params.ServiceName != "" {
			continue
		}
		matchers = append(matchers, entry)
	}
	return append(matchers, request.Params.Filters...)
}

// Selector renders the merged request in selector form.
func (request Request) Selector() Selector {
	return Selector{ProfileType: request.Params.ProfileMetricID, Matchers: request.Matchers()}
}

// DataFetcher answers panel series fetches. Implementations honor ctx
// cancellation and report failures through [Result.Err].
type DataFetcher interface {
	FetchSeries(ctx context.Context, request Request) Result
}

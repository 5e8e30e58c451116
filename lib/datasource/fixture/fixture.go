// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// Series is one stored series.
type Series struct {
	ProfileType string            `json:"profileType"`
	Labels      map[string]string `json:"labels"`
	Values      []float64         `json:"values"`
}

// Dataset is the content of a fixture file.
type Dataset struct {
	Series []Series `json:"series"`
}

// Source serves a Dataset. Safe for concurrent use; the dataset is
// never modified after construction.
type Source struct {
	dataset Dataset
	logger  *slog.Logger
}

// New returns a Source over dataset.
func New(dataset Dataset, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{dataset: dataset, logger: logger}
}

// Parse strips JSONC comments and trailing commas from data and decodes
// the dataset.
func Parse(data []byte) (Dataset, error) {
	var dataset Dataset
	if err := json.Unmarshal(jsonc.ToJSON(data), &dataset); err != nil {
		return Dataset{}, fmt.Errorf("fixture: parsing dataset: %w", err)
	}
	for index, series := range dataset.Series {
		if series.Labels[datasource.ServiceNameLabel] == "" {
			return Dataset{}, fmt.Errorf("fixture: series %d has no %s label", index, datasource.ServiceNameLabel)
		}
		if series.ProfileType == "" {
			return Dataset{}, fmt.Errorf("fixture: series %d has no profile type", index)
		}
	}
	return dataset, nil
}

// Load reads and parses a JSONC dataset file.
func Load(path string, logger *slog.Logger) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: reading %s: %w", path, err)
	}
	dataset, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(dataset, logger), nil
}

//go:embed sample.jsonc
var sampleData []byte

// Sample returns a Source over the bundled sample dataset: three
// services with CPU and memory profiles.
func Sample(logger *slog.Logger) *Source {
	dataset, err := Parse(sampleData)
	if err != nil {
		panic(fmt.Sprintf("fixture: bundled sample: %v", err))
	}
	return New(dataset, logger)
}

// FetchOptions answers label_values, label_names and profile_types
// queries.
func (source *Source) FetchOptions(ctx context.Context, query string) ([]variable.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := datasource.ParseOptionQuery(query)
	if err != nil {
		return nil, err
	}
	matches, err := source.match(parsed.Selector)
	if err != nil {
		return nil, err
	}

	switch parsed.Function {
	case datasource.FunctionLabelValues:
		return valueOptions(labelValues(matches, parsed.Label)), nil

	case datasource.FunctionLabelNames:
		var names []string
		for _, series := range matches {
			for name := range series.Labels {
				if name == datasource.ServiceNameLabel || strings.HasPrefix(name, "__") {
					continue
				}
				if !slices.Contains(names, name) {
					names = append(names, name)
				}
			}
		}
		sort.Strings(names)
		options := make([]variable.Option, 0, len(names))
		for _, name := range names {
			options = append(options, variable.Option{Value: name, Label: name, Values: labelValues(matches, name)})
		}
		return options, nil

	case datasource.FunctionProfileTypes:
		var profileTypes []string
		for _, series := range matches {
			if !slices.Contains(profileTypes, series.ProfileType) {
				profileTypes = append(profileTypes, series.ProfileType)
			}
		}
		sort.Strings(profileTypes)
		options := make([]variable.Option, 0, len(profileTypes))
		for _, profileType := range profileTypes {
			options = append(options, variable.Option{Value: profileType, Label: ProfileTypeLabel(profileType)})
		}
		return options, nil
	}
	return nil, fmt.Errorf("fixture: %q: %w", query, datasource.ErrUnsupportedQuery)
}

// FetchSeries sums matching series, grouped by the request's group-by
// label when it has one.
func (source *Source) FetchSeries(ctx context.Context, request datasource.Request) datasource.Result {
	if err := ctx.Err(); err != nil {
		return datasource.Result{State: datasource.StateError, Err: err}
	}
	matches, err := source.match(request.Selector())
	if err != nil {
		return datasource.Result{State: datasource.StateError, Err: err}
	}

	groupLabel := ""
	if request.Params.GroupBy != nil {
		groupLabel = request.Params.GroupBy.Label
	}

	groups := make(map[string][]float64)
	var order []string
	for _, series := range matches {
		key := request.Params.ServiceName
		if groupLabel != "" {
			value, present := series.Labels[groupLabel]
			if !present {
				continue
			}
			key = value
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = addValues(groups[key], series.Values)
	}
	sort.Strings(order)

	result := datasource.Result{State: datasource.StateDone}
	for _, key := range order {
		labels := map[string]string{}
		if groupLabel != "" {
			labels[groupLabel] = key
		} else if key != "" {
			labels[datasource.ServiceNameLabel] = key
		}
		result.Series = append(result.Series, datasource.Series{
			Labels: labels,
			Points: spread(groups[key], request.Range, request.MaxPoints),
		})
	}
	source.logger.Debug("fixture series fetch",
		"selector", request.Selector().String(),
		"matches", len(matches),
		"series", len(result.Series),
	)
	return result
}

// ProfileTypeLabel shortens "process_cpu:cpu:nanoseconds:cpu:nanoseconds"
// to "process_cpu · cpu".
func ProfileTypeLabel(profileType string) string {
	parts := strings.Split(profileType, ":")
	if len(parts) < 2 {
		return profileType
	}
	return parts[0] + " · " + parts[1]
}

func (source *Source) match(selector datasource.Selector) ([]Series, error) {
	matchers, err := compileMatchers(selector.Matchers)
	if err != nil {
		return nil, err
	}
	var matches []Series
	for _, series := range source.dataset.Series {
		if selector.ProfileType != "" && series.ProfileType != selector.ProfileType {
			continue
		}
		if matchesAll(matchers, series.Labels) {
			matches = append(matches, series)
		}
	}
	return matches, nil
}

type matcher struct {
	entry   filterset.Entry
	pattern *regexp.Regexp
}

func compileMatchers(entries []filterset.Entry) ([]matcher, error) {
	matchers := make([]matcher, 0, len(entries))
	for _, entry := range entries {
		compiled := matcher{entry: entry}
		if entry.Operator.IsRegex() {
			pattern, err := regexp.Compile("^(?:" + entry.Value + ")$")
			if err != nil {
				return nil, fmt.Errorf("fixture: matcher %s%s%q: %w", entry.Key, entry.Operator, entry.Value, err)
			}
			compiled.pattern = pattern
		}
		matchers = append(matchers, compiled)
	}
	return matchers, nil
}

func matchesAll(matchers []matcher, labels map[string]string) bool {
	for _, matcher := range matchers {
		value := labels[matcher.entry.Key]
		var matched bool
		switch matcher.entry.Operator {
		case filterset.OperatorEqual:
			matched = value == matcher.entry.Value
		case filterset.OperatorNotEqual:
			matched = value != matcher.entry.Value
		case filterset.OperatorRegexMatch:
			matched = matcher.pattern.MatchString(value)
		case filterset.OperatorRegexNoMatch:
			matched = !matcher.pattern.MatchString(value)
		case filterset.OperatorIsEmpty:
			matched = value == ""
		}
		if !matched {
			return false
		}
	}
	return true
}

func labelValues(matches []Series, label string) []string {
	var values []string
	for _, series := range matches {
		value, present := series.Labels[label]
		if present && value != "" && !slices.Contains(values, value) {
			values = append(values, value)
		}
	}
	sort.Strings(values)
	return values
}

func valueOptions(values []string) []variable.Option {
	options := make([]variable.Option, 0, len(values))
	for _, value := range values {
		options = append(options, variable.Option{Value: value, Label: value})
	}
	return options
}

func addValues(total, values []float64) []float64 {
	for len(total) < len(values) {
		total = append(total, 0)
	}
	for index, value := range values {
		total[index] += value
	}
	return total
}

// spread assigns timestamps to values evenly across the time range,
// keeping the most recent maxPoints values when maxPoints is set. A
// zero range places points one second apart from the Unix epoch.
func spread(values []float64, timeRange datasource.TimeRange, maxPoints int) []datasource.Point {
	if maxPoints > 0 && len(values) > maxPoints {
		values = values[len(values)-maxPoints:]
	}
	step := time.Second
	start := time.Unix(0, 0).UTC()
	if !timeRange.From.IsZero() && timeRange.To.After(timeRange.From) && len(values) > 1 {
		step = timeRange.To.Sub(timeRange.From) / time.Duration(len(values)-1)
		start = timeRange.From
	}
	points := make([]datasource.Point, 0, len(values))
	for index, value := range values {
		points = append(points, datasource.Point{Timestamp: start.Add(step * time.Duration(index)), Value: value})
	}
	return points
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
)

const cpuProfile = "process_cpu:cpu:nanoseconds:cpu:nanoseconds"

func TestParseOptionQuery(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		function QueryFunction
		label    string
		profile  string
		matchers []filterset.Entry
	}{
		{
			name:     "label values without selector",
			source:   "label_values(service_name)",
			function: FunctionLabelValues,
			label:    "service_name",
		},
		{
			name:     "label values with selector",
			source:   `label_values(vehicle, ` + cpuProfile + `{service_name="ride-sharing-app",region=~"eu|us",})`,
			function: FunctionLabelValues,
			label:    "vehicle",
			profile:  cpuProfile,
			matchers: []filterset.Entry{
				{Key: "service_name", Operator: filterset.OperatorEqual, Value: "ride-sharing-app"},
				{Key: "region", Operator: filterset.OperatorRegexMatch, Value: "eu|us"},
			},
		},
		{
			name:     "not a function call",
			source:   cpuProfile + `{service_name="api"}`,
			function: "",
		},
		{
			name:     "profile types only matchers",
			source:   `profile_types({service_name="api"})`,
			function: FunctionProfileTypes,
			matchers: []filterset.Entry{{Key: "service_name", Operator: filterset.OperatorEqual, Value: "api"}},
		},
		{
			name:     "label names with profile type",
			source:   ` label_names( ` + cpuProfile + `{service_name="api"} ) `,
			function: FunctionLabelNames,
			profile:  cpuProfile,
			matchers: []filterset.Entry{{Key: "service_name", Operator: filterset.OperatorEqual, Value: "api"}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			query, err := ParseOptionQuery(test.source)
			if test.function == "" {
				if !errors.Is(err, ErrUnsupportedQuery) {
					t.Fatalf("ParseOptionQuery(%q) error = %v, want ErrUnsupportedQuery", test.source, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOptionQuery(%q): %v", test.source, err)
			}
			if query.Function != test.function {
				t.Errorf("Function = %q, want %q", query.Function, test.function)
			}
			if query.Label != test.label {
				t.Errorf("Label = %q, want %q", query.Label, test.label)
			}
			if query.Selector.ProfileType != test.profile {
				t.Errorf("ProfileType = %q, want %q", query.Selector.ProfileType, test.profile)
			}
			if !filterset.Equal(query.Selector.Matchers, test.matchers) {
				t.Errorf("Matchers = %v, want %v", query.Selector.Matchers, test.matchers)
			}
		})
	}
}

func TestParseOptionQueryRejects(t *testing.T) {
	for _, source := range []string{
		"",
		"series(service_name)",
		"label_values()",
		"label_values(service_name",
	} {
		if _, err := ParseOptionQuery(source); !errors.Is(err, ErrUnsupportedQuery) {
			t.Errorf("ParseOptionQuery(%q) error = %v, want ErrUnsupportedQuery", source, err)
		}
	}

	_, err := ParseOptionQuery(`label_names({service_name=api})`)
	if !errors.Is(err, filterset.ErrMalformed) {
		t.Errorf("malformed selector error = %v, want filterset.ErrMalformed", err)
	}
}

func TestOptionQueryStringRoundTrip(t *testing.T) {
	for _, source := range []string{
		"label_values(service_name)",
		`label_values(vehicle, ` + cpuProfile + `{service_name="api"})`,
		`profile_types({service_name="api"})`,
		`label_names(` + cpuProfile + `{service_name="api"})`,
	} {
		query, err := ParseOptionQuery(source)
		if err != nil {
			t.Fatalf("ParseOptionQuery(%q): %v", source, err)
		}
		if got := query.String(); got != source {
			t.Errorf("String() = %q, want %q", got, source)
		}
	}
}

func TestRequestMatchers(t *testing.T) {
	request := Request{
		Params: griditem.QueryParams{
			ServiceName:     "api",
			ProfileMetricID: cpuProfile,
			Filters:         []filterset.Entry{{Key: "vehicle", Operator: filterset.OperatorEqual, Value: "car"}},
		},
		Filters: []filterset.Entry{
			{Key: "vehicle", Operator: filterset.OperatorRegexMatch, Value: "car|bike"},
			{Key: "region", Operator: filterset.OperatorNotEqual, Value: "eu"},
		},
	}

	want := `process_cpu:cpu:nanoseconds:cpu:nanoseconds{service_name="api",region!="eu",vehicle="car"}`
	if got := request.Selector().String(); got != want {
		t.Errorf("Selector() = %s, want %s", got, want)
	}
}

func TestResultEmpty(t *testing.T) {
	if !(Result{State: StateDone}).Empty() {
		t.Error("done result without series is not empty")
	}
	if (Result{State: StateLoading}).Empty() {
		t.Error("loading result reported empty")
	}
	if (Result{State: StateDone, Series: []Series{{}}}).Empty() {
		t.Error("result with a series reported empty")
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package filterset

import (
	"errors"
	"slices"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		filters []Entry
		want    string
	}{
		{name: "empty", filters: nil, want: "{}"},
		{
			name:    "single equal",
			filters: []Entry{{Key: "service_name", Operator: OperatorEqual, Value: "api"}},
			want:    `{service_name="api"}`,
		},
		{
			name: "mixed operators",
			filters: []Entry{
				{Key: "vehicle", Operator: OperatorRegexMatch, Value: "car|bike"},
				{Key: "region", Operator: OperatorRegexNoMatch, Value: "eu"},
				{Key: "zone", Operator: OperatorIsEmpty},
			},
			want: `{vehicle=~"car|bike",region!~"eu",zone=""}`,
		},
		{
			name:    "quotes are escaped",
			filters: []Entry{{Key: "path", Operator: OperatorNotEqual, Value: `a"b`}},
			want:    `{path!="a\"b"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Format(test.filters); got != test.want {
				t.Errorf("Format() = %s, want %s", got, test.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       []Entry
	}{
		{name: "empty string", expression: "", want: nil},
		{name: "empty braces", expression: "{}", want: nil},
		{
			name:       "without braces",
			expression: `service_name="api"`,
			want:       []Entry{{Key: "service_name", Operator: OperatorEqual, Value: "api"}},
		},
		{
			name:       "whitespace between parts",
			expression: `{ vehicle =~ "car|bike" , region != "eu" }`,
			want: []Entry{
				{Key: "vehicle", Operator: OperatorRegexMatch, Value: "car|bike"},
				{Key: "region", Operator: OperatorNotEqual, Value: "eu"},
			},
		},
		{
			name:       "empty value is is-empty",
			expression: `{zone=""}`,
			want:       []Entry{{Key: "zone", Operator: OperatorIsEmpty}},
		},
		{
			name:       "dotted label name",
			expression: `{k8s.pod="web-1"}`,
			want:       []Entry{{Key: "k8s.pod", Operator: OperatorEqual, Value: "web-1"}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(test.expression)
			if err != nil {
				t.Fatalf("Parse(%q): %v", test.expression, err)
			}
			if !Equal(got, test.want) {
				t.Errorf("Parse(%q) = %v, want %v", test.expression, got, test.want)
			}
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	inputs := []string{
		`{service_name="api"`,
		`{="api"}`,
		`{service_name "api"}`,
		`{service_name=api}`,
		`{service_name="api" region="eu"}`,
		`{1abc="x"}`,
	}
	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error %v does not wrap ErrMalformed", input, err)
		}
	}
}

func TestMustParsePanicsOnMalformed(t *testing.T) {
	defer func() {
		recovered := recover()
		err, ok := recovered.(error)
		if !ok || !errors.Is(err, ErrMalformed) {
			t.Errorf("recovered %v, want an error wrapping ErrMalformed", recovered)
		}
	}()
	MustParse(`{service_name=api}`)
	t.Error("MustParse returned for a malformed expression")
}

func TestFormatParseRoundTrip(t *testing.T) {
	filters := []Entry{
		{Key: "service_name", Operator: OperatorEqual, Value: "ride-sharing-app"},
		{Key: "vehicle", Operator: OperatorRegexMatch, Value: "car|bike"},
		{Key: "region", Operator: OperatorRegexNoMatch, Value: `eu\west`},
		{Key: "zone", Operator: OperatorIsEmpty},
	}

	parsed, err := Parse(Format(filters))
	if err != nil {
		t.Fatalf("Parse(Format()): %v", err)
	}
	if !Equal(parsed, filters) {
		t.Errorf("round trip = %v, want %v", parsed, filters)
	}
}

func TestEncodeURL(t *testing.T) {
	filters := []Entry{
		{Key: "vehicle", Operator: OperatorRegexMatch, Value: "car|bike"},
		{Key: "zone", Operator: OperatorIsEmpty},
	}
	want := []string{"vehicle|=~|car__gfp__bike", "zone|is-empty|"}

	if got := EncodeURL(filters); !slices.Equal(got, want) {
		t.Errorf("EncodeURL() = %v, want %v", got, want)
	}

	decoded, err := DecodeURL(want)
	if err != nil {
		t.Fatalf("DecodeURL: %v", err)
	}
	if !Equal(decoded, filters) {
		t.Errorf("DecodeURL() = %v, want %v", decoded, filters)
	}
}

func TestDecodeURLSkipsMalformedSegments(t *testing.T) {
	segments := []string{
		"vehicle|=|car",
		"garbage",
		"region|~~|eu",
		"",
		"zone|!=|a",
	}

	filters, err := DecodeURL(segments)
	if err == nil {
		t.Fatal("DecodeURL returned nil error for malformed segments")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodeURL error %v does not wrap ErrMalformed", err)
	}

	want := []Entry{
		{Key: "vehicle", Operator: OperatorEqual, Value: "car"},
		{Key: "zone", Operator: OperatorNotEqual, Value: "a"},
	}
	if !Equal(filters, want) {
		t.Errorf("DecodeURL() = %v, want %v", filters, want)
	}
}

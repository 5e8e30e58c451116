// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
)

// ErrUnsupportedQuery is returned for option queries outside the
// supported grammar.
var ErrUnsupportedQuery = errors.New("unsupported option query")

// QueryFunction names an option query function.
type QueryFunction string

const (
	FunctionLabelValues  QueryFunction = "label_values"
	FunctionLabelNames   QueryFunction = "label_names"
	FunctionProfileTypes QueryFunction = "profile_types"
)

// Selector restricts an option query to one profile type and a set of
// label matchers. Both parts are optional.
type Selector struct {
	ProfileType string
	Matchers    []filterset.Entry
}

// String renders the selector in query form.
func (selector Selector) String() string {
	if len(selector.Matchers) == 0 && selector.ProfileType != "" {
		return selector.ProfileType
	}
	return selector.ProfileType + filterset.Format(selector.Matchers)
}

// ServiceName returns the value of an equality matcher on service_name,
// if the selector has one.
func (selector Selector) ServiceName() string {
	entry, found := filterset.Lookup(selector.Matchers, ServiceNameLabel)
	if !found || entry.Operator != filterset.OperatorEqual {
		return ""
	}
	return entry.Value
}

// ServiceNameLabel is the label carrying a series' service.
const ServiceNameLabel = "service_name"

// OptionQuery is a parsed option query.
type OptionQuery struct {
	Function QueryFunction
	// Label is set for label_values only.
	Label    string
	Selector Selector
}

// String renders the query in the grammar accepted by
// [ParseOptionQuery].
func (query OptionQuery) String() string {
	selector := query.Selector.String()
	if query.Function == FunctionLabelValues {
		if selector == "{}" {
			return fmt.Sprintf("%s(%s)", query.Function, query.Label)
		}
		return fmt.Sprintf("%s(%s, %s)", query.Function, query.Label, selector)
	}
	return fmt.Sprintf("%s(%s)", query.Function, selector)
}

// ParseOptionQuery parses the option query grammar described in the
// package documentation.
func ParseOptionQuery(source string) (OptionQuery, error) {
	trimmed := strings.TrimSpace(source)
	open := strings.IndexByte(trimmed, '(')
	if open <= 0 || !strings.HasSuffix(trimmed, ")") {
		return OptionQuery{}, fmt.Errorf("datasource: %q: expected function(arguments): %w", source, ErrUnsupportedQuery)
	}

	function := QueryFunction(strings.TrimSpace(trimmed[:open]))
	arguments := strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])

	query := OptionQuery{Function: function}
	var selectorSource string
	switch function {
	case FunctionLabelValues:
		label, rest, _ := strings.Cut(arguments, ",")
		query.Label = strings.TrimSpace(label)
		if query.Label == "" {
			return OptionQuery{}, fmt.Errorf("datasource: %q: label_values requires a label: %w", source, ErrUnsupportedQuery)
		}
		selectorSource = rest
	case FunctionLabelNames, FunctionProfileTypes:
		selectorSource = arguments
	default:
		return OptionQuery{}, fmt.Errorf("datasource: %q: unknown function %q: %w", source, function, ErrUnsupportedQuery)
	}

	selector, err := ParseSelector(selectorSource)
	if err != nil {
		return OptionQuery{}, fmt.Errorf("datasource: %q: %w", source, err)
	}
	query.Selector = selector
	return query, nil
}

// ParseSelector reads `[<profileType>]{matchers}`.
func ParseSelector(source string) (Selector, error) {
	trimmed := strings.TrimSpace(source)
	open := strings.IndexByte(trimmed, '{')
	if open < 0 {
		return Selector{ProfileType: trimmed}, nil
	}
	matchers, err := filterset.Parse(trimmed[open:])
	if err != nil {
		return Selector{}, err
	}
	return Selector{
		ProfileType: strings.TrimSpace(trimmed[:open]),
		Matchers:    matchers,
	}, nil
}

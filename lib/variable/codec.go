// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variable

import (
	"fmt"
	"slices"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
)

// Codec maps a Variable value to and from URL parameter values.
type Codec interface {
	Encode(value string) []string
	// Decode returns the value for the parameter values. A non-nil
	// error alongside a value reports parts that were dropped.
	Decode(values []string) (string, error)
}

// SingleCodec stores the value as one parameter value.
type SingleCodec struct{}

func (SingleCodec) Encode(value string) []string { return []string{value} }

func (SingleCodec) Decode(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

// FiltersCodec stores a filter expression as one key|operator|value
// parameter value per entry.
type FiltersCodec struct{}

func (FiltersCodec) Encode(value string) []string {
	filters, err := filterset.Parse(value)
	if err != nil {
		return nil
	}
	return filterset.EncodeURL(filters)
}

func (FiltersCodec) Decode(values []string) (string, error) {
	filters, err := filterset.DecodeURL(values)
	return filterset.Format(filters), err
}

// NormalizeFilters canonicalizes a filter expression.
func NormalizeFilters(value string) (string, error) {
	filters, err := filterset.Parse(value)
	if err != nil {
		return "", err
	}
	return filterset.Format(filters), nil
}

// NormalizeOneOf returns a Normalize hook accepting only allowed values.
func NormalizeOneOf(allowed ...string) func(string) (string, error) {
	return func(value string) (string, error) {
		if !slices.Contains(allowed, value) {
			return "", fmt.Errorf("variable: %q is not one of %v", value, allowed)
		}
		return value, nil
	}
}

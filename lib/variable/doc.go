// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package variable implements the named, query-driven values an
// exploration is parameterized by (data source, service, profile
// metric, group-by label, filters) and the scheduler that keeps them
// consistent.
//
// A [Variable] holds a string value and a list of [Option]s fetched
// from an [OptionFetcher]. [Variable.Update] runs at most one fetch at
// a time: a non-forced update while a fetch is in flight is ignored,
// and a forced update cancels the in-flight fetch and discards its
// result when it eventually returns.
//
// A [Set] owns a group of Variables and their declared dependencies.
// Dependencies are explicit (Definition.DependsOn) and must form an
// acyclic graph over known names. When a value changes, every
// transitive dependent is marked stale; a stale Variable refreshes once
// each of its dependencies has settled. Queries reference dependency
// values with $name or ${name}; ${name:matchers} strips the braces
// from a filter expression so it can be spliced into a selector, and
// ${name:quote} writes the value as a quoted matcher value.
//
// The Set publishes events.VariableLoading, events.VariableSettled and
// events.VariableChanged on its bus, always outside its own locks.
//
// URL sync maps each Variable to a query parameter: single-valued by
// default, or the repeated key|operator|value form for filter sets
// ([FiltersCodec]). Values read from a URL pass through the
// Definition's Normalize hook; invalid values fall back to the default
// and are logged, never propagated as errors.
package variable

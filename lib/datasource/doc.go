// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package datasource defines the contracts between the exploration
// layer and a profiling backend.
//
// Two capabilities are consumed. Option queries populate Variables and
// use a small function-call grammar:
//
//	label_values(<label>[, <selector>])
//	label_names(<selector>)
//	profile_types(<selector>)
//
// where a selector is an optional profile type followed by a matcher
// set, `process_cpu:cpu:nanoseconds:cpu:nanoseconds{service_name="api"}`.
// [ParseOptionQuery] reads this grammar for implementations.
//
// Series fetches back a single panel: a [Request] names the panel's
// query parameters, the global filters and a time range, and the
// [DataFetcher] answers with a [Result] whose state is loading, done or
// error. Fetch failures are reported through the result, never as a
// Go error, so they can be rendered inside the panel.
//
// Reference implementations live in the fixture and pyroscope
// subpackages.
package datasource

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package urlstate holds the exploration's query-string state.
//
// A [State] is the single writer of the URL: components read values
// through the typed helpers, which fall back to a default (and say so)
// when a value is missing or not one of the allowed values, and write
// through [State.Merge] so one change produces one URL update.
package urlstate

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package filterset implements ordered label filter lists and the
// include/exclude/clear algebra used when a user narrows an
// exploration from a grid panel.
//
// An [Entry] is a (key, operator, value) triple. Regex operators
// (=~, !~) carry a `|`-joined set of literal alternatives; the algebra
// keeps at most one include-style entry per key by folding additional
// values into that set instead of appending duplicate entries.
//
// [Include], [Exclude] and [Clear] never mutate their input; they
// return a fresh slice so callers can compare old and new filter lists
// structurally.
//
// Two textual forms are supported:
//
//   - selector expressions, `{service_name="api",vehicle=~"car|bike"}`,
//     via [Parse] and [Format]. An is-empty entry is written `key=""`.
//   - URL segments, `vehicle|=~|car__gfp__bike`, via [EncodeURL] and
//     [DecodeURL]. A `|` inside a value is escaped as `__gfp__`.
package filterset

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package repeater implements the grid that renders one panel per
// option of a driving Variable.
//
// A [Grid] recomputes when its source Variable loads or settles and
// when one of its controls changes (quick filter, layout, hide-empty,
// panel type, or the global filters while hide-empty is on). A
// recompute maps options to items, drops rejected options, applies the
// quick filter, sorts, and compares the result with what was last
// rendered; an unchanged frame is not rendered again.
//
// The quick filter splits its text on commas and compiles each trimmed
// segment with a (?i) prefix, so matching ignores case. Segments that
// fail to compile are dropped. An item is kept when its label matches
// any remaining segment; when no segment compiles, every item is kept.
//
// Every item listens for events.DataReceived carrying its own key, and
// the grid records which items last fetched no series. The record
// survives settles and hide-empty toggles and is cleared when the
// global filters change. With hide-empty on, recorded items are not
// rendered, and a grid with nothing left shows the empty placeholder.
//
// Renderer calls are made without the grid lock held, one at a time
// and in the order their frames were computed.
package repeater

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package exploration is the top-level controller of a profiles
// exploration session.
//
// A [Controller] owns the session's Variable set, the active
// exploration [Type] and the view composed for it, the URL state and
// navigation history, the comparison selection, and the favorites
// store. It reacts to the navigation and filter messages that panels
// publish on the event bus.
//
// Switching types from the header ([Controller.SwitchTo]) checkpoints
// history and resets filters and group-by, except when the target is
// the labels or flame graph view, which keep them. Switching from a
// panel (events.ViewLabels and friends) seeds the Variables from the
// panel's query parameters instead.
//
// Views are a closed set of variants tagged by Type. Each exposes the
// Variables and grid controls its header shows and, except for the
// flame graph, the repeater grid it renders.
//
// Variable changes are written back to the URL unless they came from
// the URL. An unknown explorationType in the URL activates
// [TypeAllServices].
package exploration

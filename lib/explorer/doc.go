// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package explorer is the terminal front end of a profiles exploration
// session: a bubbletea model over an [exploration.Controller].
//
// The controller's grids render through a [Renderer], which records
// the latest frame and wakes the bubbletea program. Grid callbacks run
// on the controller's goroutines, so the renderer never blocks on the
// program's event loop: it stores the frame and delivers a wake-up
// message from a separate goroutine. The model reads the frame when it
// draws.
//
// Panel series are fetched lazily through [exploration.Controller.FetchPanel]
// for every panel on screen and cached by item key until the global
// filters change or the user refreshes.
//
// Background log records at warn or above are shown in the status
// line through [StatusLogHandler].
package explorer

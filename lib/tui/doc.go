// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal rendering components of the
// profiles explorer. Built on lipgloss and bubbletea, these components
// draw panel boxes, braille timeseries plots and the other panel
// visualizations, option pickers floated over the grid, and
// scrollbars.
//
// Everything here is pure rendering: functions take plain data and a
// [Theme] and return strings. The program model in cmd/explore-profiles
// owns state, input handling and data fetching.
package tui

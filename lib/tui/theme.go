// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette of the explorer. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	ErrorText  lipgloss.Color

	// Selected row or panel.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	FocusBorderColor lipgloss.Color
	HelpText         lipgloss.Color

	// Comparison slots, used for panel badges.
	BaselineColor   lipgloss.Color
	ComparisonColor lipgloss.Color

	// Filter state badges on label value panels.
	IncludedColor lipgloss.Color
	ExcludedColor lipgloss.Color

	// Bars in bar gauge and histogram panels.
	BarColor lipgloss.Color

	// Floating pickers.
	PickerForeground lipgloss.Color
	PickerBackground lipgloss.Color

	// DarkBackground selects plot line colors that read on a dark
	// terminal.
	DarkBackground bool
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	ErrorText:  lipgloss.Color("196"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	FocusBorderColor: lipgloss.Color("220"),
	HelpText:         lipgloss.Color("241"),

	BaselineColor:   lipgloss.Color("75"),  // blue
	ComparisonColor: lipgloss.Color("208"), // orange

	IncludedColor: lipgloss.Color("114"), // green
	ExcludedColor: lipgloss.Color("196"), // red

	BarColor: lipgloss.Color("141"), // light purple

	PickerForeground: lipgloss.Color("252"),
	PickerBackground: lipgloss.Color("237"),

	DarkBackground: true,
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar produces a one-column scrollbar of height rows for a
// list of total rows of which visible start at offset. The thumb fills
// the track when everything fits.
func RenderScrollbar(theme Theme, height, total, visible, offset int) string {
	if height <= 0 {
		return ""
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(theme.FocusBorderColor).Render("┃")

	start, size := thumbSpan(height, total, visible, offset)
	lines := make([]string, height)
	for index := range lines {
		if index >= start && index < start+size {
			lines[index] = thumb
		} else {
			lines[index] = track
		}
	}
	return strings.Join(lines, "\n")
}

// thumbSpan returns the first row and length of the scrollbar thumb.
func thumbSpan(height, total, visible, offset int) (start, size int) {
	if total <= visible || total <= 0 {
		return 0, height
	}
	size = max(1, height*visible/total)
	scrollable := total - visible
	room := height - size
	if room > 0 && scrollable > 0 {
		start = min(offset, scrollable) * room / scrollable
	}
	return min(start, height-size), size
}

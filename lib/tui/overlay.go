// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay draws box over view with its top-left corner at
// (column, row). Lines of box falling outside view are dropped. Escape
// sequences in view survive on both sides of the box.
func SpliceOverlay(view string, box []string, column, row int) string {
	if len(box) == 0 {
		return view
	}

	lines := strings.Split(view, "\n")
	for offset, boxLine := range box {
		target := row + offset
		if target < 0 || target >= len(lines) {
			continue
		}
		lines[target] = spliceLine(lines[target], boxLine, column)
	}
	return strings.Join(lines, "\n")
}

// spliceLine replaces the columns of line under insert. A line shorter
// than column is padded with spaces first.
func spliceLine(line, insert string, column int) string {
	lineWidth := ansi.StringWidth(line)
	var builder strings.Builder

	if column > 0 {
		builder.WriteString(ansi.Truncate(line, column, ""))
		if lineWidth < column {
			builder.WriteString(strings.Repeat(" ", column-lineWidth))
		}
	}
	const reset = "\x1b[0m"
	builder.WriteString(reset)
	builder.WriteString(insert)
	builder.WriteString(reset)

	if end := column + ansi.StringWidth(insert); end < lineWidth {
		builder.WriteString(ansi.TruncateLeft(line, end, ""))
	}
	return builder.String()
}

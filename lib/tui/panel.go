// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Badge is a short colored tag in a panel's title row.
type Badge struct {
	Text  string
	Color lipgloss.Color
}

// PanelView is what a grid slot draws.
type PanelView struct {
	Title  string
	Badges []Badge
	// Body is pre-rendered content, clipped to the panel interior.
	Body string
	// Footer is shown faint on the last interior row, typically the
	// panel's action keys.
	Footer string
	// Width and Height are the outer size including the border.
	Width   int
	Height  int
	Focused bool
}

// MinPanelWidth and MinPanelHeight are the smallest outer sizes a
// panel renders at; smaller requests are raised to them.
const (
	MinPanelWidth  = 12
	MinPanelHeight = 4
)

// RenderPanel draws a bordered panel. The title is truncated so the
// badges stay visible.
func RenderPanel(theme Theme, panel PanelView) string {
	width := max(panel.Width, MinPanelWidth)
	height := max(panel.Height, MinPanelHeight)
	innerWidth := width - 2
	innerHeight := height - 2

	borderColor := theme.BorderColor
	if panel.Focused {
		borderColor = theme.FocusBorderColor
	}

	rows := []string{titleRow(theme, panel, innerWidth)}
	bodyRows := innerHeight - 1
	footer := ""
	if panel.Footer != "" && bodyRows > 1 {
		bodyRows--
		footer = lipgloss.NewStyle().Foreground(theme.HelpText).Render(ansi.Truncate(panel.Footer, innerWidth, "…"))
	}
	rows = append(rows, clipLines(panel.Body, innerWidth, bodyRows)...)
	if footer != "" {
		rows = append(rows, footer)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(innerWidth).
		Height(innerHeight).
		MaxHeight(height).
		Render(strings.Join(rows, "\n"))
}

func titleRow(theme Theme, panel PanelView, width int) string {
	var badges []string
	badgeWidth := 0
	for _, badge := range panel.Badges {
		rendered := lipgloss.NewStyle().Foreground(badge.Color).Bold(true).Render("[" + badge.Text + "]")
		badges = append(badges, rendered)
		badgeWidth += ansi.StringWidth(rendered) + 1
	}

	titleStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(panel.Focused)
	title := ansi.Truncate(panel.Title, max(width-badgeWidth, 1), "…")
	row := titleStyle.Render(title)
	if len(badges) > 0 {
		row += " " + strings.Join(badges, " ")
	}
	return ansi.Truncate(row, width, "")
}

// clipLines returns exactly rows lines of text, each truncated to
// width.
func clipLines(text string, width, rows int) []string {
	if rows <= 0 {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	clipped := make([]string, rows)
	for index := range clipped {
		if index < len(lines) {
			clipped[index] = ansi.Truncate(lines[index], width, "")
		}
	}
	return clipped
}

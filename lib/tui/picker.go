// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PickerOption is one selectable entry of a [Picker].
type PickerOption struct {
	Label string // Display text.
	Value string // Value applied on selection.
}

// DefaultPickerHeight is the number of options a picker shows at once
// when MaxVisible is unset.
const DefaultPickerHeight = 10

// Picker is a floating, type-to-filter option menu. Typed text narrows
// the options to those whose label contains it, ignoring case. The
// program model owns the picker and routes keys to it while open.
type Picker struct {
	Title   string
	Options []PickerOption
	// MaxVisible bounds the rendered option rows.
	MaxVisible int

	query   string
	matches []int
	cursor  int
	offset  int
}

// NewPicker returns a picker with the cursor on the option whose value
// is current, if any.
func NewPicker(title string, options []PickerOption, current string) *Picker {
	picker := &Picker{Title: title, Options: options}
	picker.refilter()
	for position, index := range picker.matches {
		if options[index].Value == current {
			picker.cursor = position
		}
	}
	picker.scrollToCursor()
	return picker
}

// Query returns the filter text.
func (picker *Picker) Query() string { return picker.query }

// SetQuery replaces the filter text and moves the cursor to the first
// match.
func (picker *Picker) SetQuery(query string) {
	picker.query = query
	picker.refilter()
	picker.cursor = 0
	picker.offset = 0
}

// Type appends text to the filter.
func (picker *Picker) Type(text string) { picker.SetQuery(picker.query + text) }

// Backspace removes the last character of the filter.
func (picker *Picker) Backspace() {
	if picker.query == "" {
		return
	}
	runes := []rune(picker.query)
	picker.SetQuery(string(runes[:len(runes)-1]))
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (picker *Picker) MoveUp() {
	if len(picker.matches) == 0 {
		return
	}
	picker.cursor--
	if picker.cursor < 0 {
		picker.cursor = len(picker.matches) - 1
	}
	picker.scrollToCursor()
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (picker *Picker) MoveDown() {
	if len(picker.matches) == 0 {
		return
	}
	picker.cursor++
	if picker.cursor >= len(picker.matches) {
		picker.cursor = 0
	}
	picker.scrollToCursor()
}

// Selected returns the highlighted option. It reports false when no
// option matches the filter.
func (picker *Picker) Selected() (PickerOption, bool) {
	if len(picker.matches) == 0 {
		return PickerOption{}, false
	}
	return picker.Options[picker.matches[picker.cursor]], true
}

// Matches returns the options passing the filter.
func (picker *Picker) Matches() []PickerOption {
	matched := make([]PickerOption, 0, len(picker.matches))
	for _, index := range picker.matches {
		matched = append(matched, picker.Options[index])
	}
	return matched
}

func (picker *Picker) height() int {
	if picker.MaxVisible > 0 {
		return picker.MaxVisible
	}
	return DefaultPickerHeight
}

func (picker *Picker) refilter() {
	picker.matches = picker.matches[:0]
	needle := strings.ToLower(picker.query)
	for index, option := range picker.Options {
		if needle == "" || strings.Contains(strings.ToLower(option.Label), needle) {
			picker.matches = append(picker.matches, index)
		}
	}
}

func (picker *Picker) scrollToCursor() {
	height := picker.height()
	if picker.cursor < picker.offset {
		picker.offset = picker.cursor
	}
	if picker.cursor >= picker.offset+height {
		picker.offset = picker.cursor - height + 1
	}
}

// Width returns the rendered width in columns.
func (picker *Picker) Width() int {
	widest := ansi.StringWidth(picker.titleLine())
	for _, option := range picker.Options {
		widest = max(widest, ansi.StringWidth(option.Label)+2)
	}
	// One column of padding on each side.
	return widest + 2
}

func (picker *Picker) titleLine() string {
	if picker.query == "" {
		return picker.Title
	}
	return picker.Title + ": " + picker.query
}

// Render produces the picker lines for [SpliceOverlay]. Every line has
// the same visible width.
func (picker *Picker) Render(theme Theme) []string {
	width := picker.Width()
	inner := width - 2
	base := lipgloss.NewStyle().
		Background(theme.PickerBackground).
		Foreground(theme.PickerForeground)
	title := base.Bold(true).Foreground(theme.HeaderForeground)
	selected := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)
	faint := base.Foreground(theme.FaintText)

	pad := func(style lipgloss.Style, content string) string {
		content = ansi.Truncate(content, inner, "…")
		fill := inner - ansi.StringWidth(content)
		return style.Render(" " + content + strings.Repeat(" ", max(fill, 0)) + " ")
	}

	lines := []string{pad(title, picker.titleLine())}
	if len(picker.matches) == 0 {
		return append(lines, pad(faint, "no matches"))
	}
	end := min(picker.offset+picker.height(), len(picker.matches))
	for position := picker.offset; position < end; position++ {
		option := picker.Options[picker.matches[position]]
		if position == picker.cursor {
			lines = append(lines, pad(selected, "> "+option.Label))
		} else {
			lines = append(lines, pad(base, "  "+option.Label))
		}
	}
	return lines
}

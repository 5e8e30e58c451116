// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the explorer's key bindings.
type KeyMap struct {
	// Panel focus.
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Exploration types, in header order.
	AllServices  key.Binding
	ProfileTypes key.Binding
	Labels       key.Binding
	FlameGraph   key.Binding
	Favorites    key.Binding

	Actions    key.Binding // Open the focused panel's action menu.
	Variable   key.Binding // Pick a Variable, then its value.
	Search     key.Binding // Edit the quick filter.
	Layout     key.Binding // Cycle grid, rows, single.
	HideNoData key.Binding // Toggle hiding panels without data.
	PanelType  key.Binding // Cycle visualizations.

	Back    key.Binding
	Forward key.Binding
	Refresh key.Binding
	Compare key.Binding // Copy the comparison link.
	Share   key.Binding // Copy the current URL state.

	// Overlay and input handling.
	Confirm key.Binding
	Dismiss key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑", "up")),
	Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓", "down")),
	Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
	Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),

	AllServices:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "services")),
	ProfileTypes: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "profiles")),
	Labels:       key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "labels")),
	FlameGraph:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "flame graph")),
	Favorites:    key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "favorites")),

	Actions:    key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("⏎", "actions")),
	Variable:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "variable")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Layout:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "layout")),
	HideNoData: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide empty")),
	PanelType:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "panel type")),

	Back:    key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "back")),
	Forward: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forward")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Compare: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare link")),
	Share:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy URL")),

	Confirm: key.NewBinding(key.WithKeys("enter")),
	Dismiss: key.NewBinding(key.WithKeys("esc")),

	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpBindings is the status line's help, in display order.
func (keys KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		keys.AllServices, keys.ProfileTypes, keys.Labels, keys.FlameGraph, keys.Favorites,
		keys.Actions, keys.Variable, keys.Search, keys.Layout, keys.HideNoData, keys.PanelType,
		keys.Back, keys.Forward, keys.Refresh, keys.Compare, keys.Quit,
	}
}

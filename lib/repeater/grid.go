// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repeater

import (
	"cmp"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/eventbus"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// Layout arranges a grid's panels.
type Layout string

const (
	LayoutGrid   Layout = "grid"
	LayoutRows   Layout = "rows"
	LayoutSingle Layout = "single"
)

// Layouts lists every layout in display order.
var Layouts = []Layout{LayoutGrid, LayoutRows, LayoutSingle}

// ParseLayout returns the named layout, or [LayoutGrid] when unknown.
func ParseLayout(value string) (Layout, bool) {
	layout := Layout(value)
	if slices.Contains(Layouts, layout) {
		return layout, true
	}
	return LayoutGrid, false
}

// Action is a panel header control.
type Action struct {
	Label string
	Run   func()
}

// Panel is one rendered slot.
type Panel struct {
	Item    griditem.Item
	Actions []Action
}

// Renderer draws a grid. Calls are made without the grid's lock held
// and may publish on the bus.
type Renderer interface {
	RenderLoading()
	RenderEmpty()
	// RenderError shows a source failure. Previously rendered panels
	// stay where they are.
	RenderError(message string)
	RenderItems(panels []Panel, layout Layout)
}

// Config configures a [Grid].
type Config struct {
	Source *variable.Variable
	// MapOptionToItem builds the item for an option, or rejects it.
	MapOptionToItem func(option variable.Option, index int) (griditem.Item, bool)
	// Compare orders items. Nil sorts by label.
	Compare       func(a, b griditem.Item) int
	HeaderActions func(item griditem.Item) []Action
	Renderer      Renderer
	Bus           *eventbus.Bus
	Logger        *slog.Logger

	// Initial control values. The zero Layout and PanelType select
	// LayoutGrid and timeseries.
	QuickFilter string
	Layout      Layout
	HideNoData  bool
	PanelType   griditem.PanelType
	Filters     []filterset.Entry
}

// FavoritesFirst orders favorites before everything else, then by
// label.
func FavoritesFirst(isFavorite func(griditem.Item) bool) func(a, b griditem.Item) int {
	return func(a, b griditem.Item) int {
		aFavorite, bFavorite := isFavorite(a), isFavorite(b)
		if aFavorite != bFavorite {
			if aFavorite {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	}
}

func byLabel(a, b griditem.Item) int {
	return cmp.Compare(a.Label, b.Label)
}

type displayMode int

const (
	modeNone displayMode = iota
	modeLoading
	modeError
	modeEmpty
	modeItems
)

// frame is what a render shows. Two equal frames render identically.
type frame struct {
	mode       displayMode
	message    string
	layout     Layout
	hideNoData bool
	items      []griditem.Item
}

func (current frame) equal(other frame) bool {
	return current.mode == other.mode &&
		current.message == other.message &&
		current.layout == other.layout &&
		current.hideNoData == other.hideNoData &&
		griditem.ListEqual(current.items, other.items)
}

// Grid renders a Variable's options as panels. Safe for concurrent use.
type Grid struct {
	config Config
	logger *slog.Logger

	mutex       sync.Mutex
	quickFilter string
	layout      Layout
	hideNoData  bool
	panelType   griditem.PanelType
	filters     []filterset.Entry

	items []griditem.Item
	// empty records the item keys whose latest fetch returned no
	// series. It is kept while hide-empty is off so turning it on hides
	// panels that already loaded.
	empty    map[string]bool
	rendered frame
	renders  int

	// pending is the newest frame not yet handed to the renderer;
	// delivering is set while one goroutine drains it.
	pending    *delivery
	delivering bool

	panelSubscriptions map[string]func()
	detach             []func()
}

// delivery is a frame ready for the renderer.
type delivery struct {
	mode    displayMode
	message string
	panels  []Panel
	layout  Layout
}

// New creates a grid. Call [Grid.Attach] to follow the source.
func New(config Config) *Grid {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.Compare == nil {
		config.Compare = byLabel
	}
	if config.Bus == nil {
		config.Bus = eventbus.New(logger)
	}
	layout := config.Layout
	if layout == "" {
		layout = LayoutGrid
	}
	panelType := config.PanelType
	if panelType == "" {
		panelType = griditem.PanelTimeseries
	}
	return &Grid{
		config:      config,
		logger:      logger.With("grid", config.Source.Name()),
		quickFilter: config.QuickFilter,
		layout:      layout,
		hideNoData:  config.HideNoData,
		panelType:   panelType,
		filters:     slices.Clone(config.Filters),
		empty:       make(map[string]bool),

		panelSubscriptions: make(map[string]func()),
	}
}

// Attach subscribes the grid to its source's load and settle events
// and renders the current state. The returned function detaches.
func (grid *Grid) Attach() (detach func()) {
	name := grid.config.Source.Name()
	unsubscribeLoading := eventbus.Subscribe(grid.config.Bus, func(message events.VariableLoading) {
		if message.Name == name {
			grid.Recompute()
		}
	})
	unsubscribeSettled := eventbus.Subscribe(grid.config.Bus, func(message events.VariableSettled) {
		if message.Name == name {
			grid.Recompute()
		}
	})

	grid.mutex.Lock()
	grid.detach = append(grid.detach, unsubscribeLoading, unsubscribeSettled)
	grid.mutex.Unlock()

	grid.Recompute()
	return grid.Detach
}

// Detach drops every subscription the grid holds.
func (grid *Grid) Detach() {
	grid.mutex.Lock()
	unsubscribers := grid.detach
	for key, unsubscribe := range grid.panelSubscriptions {
		unsubscribers = append(unsubscribers, unsubscribe)
		delete(grid.panelSubscriptions, key)
	}
	grid.detach = nil
	grid.mutex.Unlock()

	for _, unsubscribe := range unsubscribers {
		unsubscribe()
	}
}

// SetQuickFilter sets the quick filter text.
func (grid *Grid) SetQuickFilter(text string) {
	grid.mutex.Lock()
	grid.quickFilter = text
	grid.mutex.Unlock()
	grid.Recompute()
}

// SetLayout sets the panel arrangement.
func (grid *Grid) SetLayout(layout Layout) {
	grid.mutex.Lock()
	grid.layout = layout
	grid.mutex.Unlock()
	grid.Recompute()
}

// SetHideNoData turns hide-empty on or off. Panels already known to
// be empty are hidden as soon as it turns on.
func (grid *Grid) SetHideNoData(hide bool) {
	grid.mutex.Lock()
	grid.hideNoData = hide
	grid.mutex.Unlock()
	grid.Recompute()
}

// SetPanelType sets the panel type given to items that do not carry
// their own.
func (grid *Grid) SetPanelType(panelType griditem.PanelType) {
	grid.mutex.Lock()
	grid.panelType = panelType
	grid.mutex.Unlock()
	grid.Recompute()
}

// SetFilters records the global filters. New filters change what panel
// fetches return, so the empty-panel record is dropped and hidden
// panels come back until they report again.
func (grid *Grid) SetFilters(filters []filterset.Entry) {
	grid.mutex.Lock()
	changed := !filterset.Equal(grid.filters, filters)
	grid.filters = slices.Clone(filters)
	if changed {
		clear(grid.empty)
	}
	recompute := changed && grid.hideNoData
	grid.mutex.Unlock()

	if recompute {
		grid.Recompute()
	}
}

// Items returns the visible items of the last recompute.
func (grid *Grid) Items() []griditem.Item {
	grid.mutex.Lock()
	defer grid.mutex.Unlock()
	return slices.Clone(grid.visibleLocked())
}

// QuickFilter returns the quick filter text.
func (grid *Grid) QuickFilter() string {
	grid.mutex.Lock()
	defer grid.mutex.Unlock()
	return grid.quickFilter
}

// Layout returns the panel arrangement.
func (grid *Grid) Layout() Layout {
	grid.mutex.Lock()
	defer grid.mutex.Unlock()
	return grid.layout
}

// HideNoData reports whether hide-empty is on.
func (grid *Grid) HideNoData() bool {
	grid.mutex.Lock()
	defer grid.mutex.Unlock()
	return grid.hideNoData
}

// PanelType returns the default panel type.
func (grid *Grid) PanelType() griditem.PanelType {
	grid.mutex.Lock()
	defer grid.mutex.Unlock()
	return grid.panelType
}

// Renders returns how many frames have been rendered.
func (grid *Grid) Renders() int {
	grid.mutex.Lock()
	defer grid.mutex.Unlock()
	return grid.renders
}

// Invalidate forgets the last rendered frame and recomputes, so the
// next frame renders even when unchanged. Used when header actions
// depend on state outside the grid.
func (grid *Grid) Invalidate() {
	grid.mutex.Lock()
	grid.rendered = frame{}
	grid.mutex.Unlock()
	grid.Recompute()
}

// Recompute re-derives items from the source and renders if the result
// differs from the last rendered frame.
//
// The source is read with grid.mutex held. A source changes state
// before it publishes, so of two overlapping recomputes the one that
// locks last sees the newest state and its frame is delivered last.
func (grid *Grid) Recompute() {
	source := grid.config.Source

	grid.mutex.Lock()
	loading := source.Loading()
	err := source.Err()
	var next frame
	switch {
	case loading:
		next = frame{mode: modeLoading}
	case err != nil:
		next = frame{mode: modeError, message: err.Error()}
	default:
		grid.items = grid.deriveLocked(source.Options())
		next = grid.itemsFrameLocked()
	}
	stale := grid.subscribeItemsLocked()
	grid.renderLocked(next)

	for _, unsubscribe := range stale {
		unsubscribe()
	}
}

// subscribeItemsLocked follows DataReceived for every derived item,
// hidden ones included, and returns the subscriptions of items that
// are gone. Records for those items are dropped too.
func (grid *Grid) subscribeItemsLocked() []func() {
	current := make(map[string]bool, len(grid.items))
	for _, item := range grid.items {
		key := item.Key()
		current[key] = true
		if _, subscribed := grid.panelSubscriptions[key]; !subscribed {
			grid.panelSubscriptions[key] = grid.subscribePanel(key)
		}
	}
	var stale []func()
	for key, unsubscribe := range grid.panelSubscriptions {
		if !current[key] {
			stale = append(stale, unsubscribe)
			delete(grid.panelSubscriptions, key)
			delete(grid.empty, key)
		}
	}
	return stale
}

// deriveLocked maps, filters and sorts options. The caller holds
// grid.mutex.
func (grid *Grid) deriveLocked(options []variable.Option) []griditem.Item {
	patterns := compileQuickFilter(grid.quickFilter, grid.logger)

	items := make([]griditem.Item, 0, len(options))
	for index, option := range options {
		item, keep := grid.config.MapOptionToItem(option, index)
		if !keep {
			continue
		}
		if item.PanelType == "" {
			item.PanelType = grid.panelType
		}
		if !matchesQuickFilter(patterns, item.Label) {
			continue
		}
		items = append(items, item)
	}

	slices.SortStableFunc(items, grid.config.Compare)
	for index := range items {
		items[index].Index = index
	}
	return items
}

func (grid *Grid) visibleLocked() []griditem.Item {
	if !grid.hideNoData || len(grid.empty) == 0 {
		return grid.items
	}
	visible := make([]griditem.Item, 0, len(grid.items))
	for _, item := range grid.items {
		if !grid.empty[item.Key()] {
			visible = append(visible, item)
		}
	}
	return visible
}

func (grid *Grid) itemsFrameLocked() frame {
	visible := slices.Clone(grid.visibleLocked())
	next := frame{mode: modeItems, layout: grid.layout, hideNoData: grid.hideNoData, items: visible}
	if len(visible) == 0 {
		next = frame{mode: modeEmpty, hideNoData: grid.hideNoData}
	}
	return next
}

// renderLocked renders next unless it equals the last frame. It is
// called with grid.mutex held and releases it.
func (grid *Grid) renderLocked(next frame) {
	if next.equal(grid.rendered) {
		grid.mutex.Unlock()
		grid.logger.Debug("grid unchanged, skipping render")
		return
	}

	if next.mode == modeError {
		// The error replaces the placeholder, not the panels: keep the
		// last rendered items so the next settle diffs against them.
		next.items = grid.rendered.items
		next.layout = grid.rendered.layout
		next.hideNoData = grid.rendered.hideNoData
	}
	grid.rendered = next
	grid.renders++

	pending := &delivery{mode: next.mode, message: next.message, layout: next.layout}
	if next.mode == modeItems {
		pending.panels = make([]Panel, 0, len(next.items))
		for _, item := range next.items {
			panel := Panel{Item: item}
			if grid.config.HeaderActions != nil {
				panel.Actions = grid.config.HeaderActions(item)
			}
			pending.panels = append(pending.panels, panel)
		}
	}
	grid.pending = pending
	grid.deliverLocked()
}

// deliverLocked hands pending frames to the renderer in the order they
// were rendered. Only one goroutine delivers at a time; frames rendered
// meanwhile, including from inside a renderer call, are picked up by
// that goroutine and only the newest is shown. It is called with
// grid.mutex held and releases it.
func (grid *Grid) deliverLocked() {
	if grid.delivering {
		grid.mutex.Unlock()
		return
	}
	grid.delivering = true
	for grid.pending != nil {
		current := grid.pending
		grid.pending = nil
		grid.mutex.Unlock()

		renderer := grid.config.Renderer
		switch current.mode {
		case modeLoading:
			renderer.RenderLoading()
		case modeError:
			renderer.RenderError(current.message)
		case modeEmpty:
			renderer.RenderEmpty()
		case modeItems:
			renderer.RenderItems(current.panels, current.layout)
		}

		grid.mutex.Lock()
	}
	grid.delivering = false
	grid.mutex.Unlock()
}

func (grid *Grid) subscribePanel(key string) func() {
	return eventbus.Subscribe(grid.config.Bus, func(message events.DataReceived) {
		if message.Key == key {
			grid.panelData(key, message)
		}
	})
}

// panelData records whether a panel's fetch came back empty and, with
// hide-empty on, re-renders the visible items.
func (grid *Grid) panelData(key string, message events.DataReceived) {
	if message.Result.State == datasource.StateLoading {
		return
	}
	empty := message.Result.Empty()

	grid.mutex.Lock()
	if grid.empty[key] == empty {
		grid.mutex.Unlock()
		return
	}
	if empty {
		grid.empty[key] = true
	} else {
		delete(grid.empty, key)
	}
	showingItems := grid.rendered.mode == modeItems || grid.rendered.mode == modeEmpty
	if !grid.hideNoData || !showingItems {
		grid.mutex.Unlock()
		return
	}
	grid.logger.Debug("panel data changed visibility", "key", key, "empty", empty)
	grid.renderLocked(grid.itemsFrameLocked())
}

func compileQuickFilter(text string, logger *slog.Logger) []*regexp.Regexp {
	var patterns []*regexp.Regexp
	for _, segment := range strings.Split(text, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		pattern, err := regexp.Compile("(?i)" + segment)
		if err != nil {
			logger.Debug("ignoring invalid quick filter segment", "segment", segment, "error", err)
			continue
		}
		patterns = append(patterns, pattern)
	}
	return patterns
}

func matchesQuickFilter(patterns []*regexp.Regexp, label string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if pattern.MatchString(label) {
			return true
		}
	}
	return false
}

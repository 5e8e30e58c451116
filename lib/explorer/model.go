// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/exploration"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
	"github.com/bureau-foundation/explore-profiles/lib/repeater"
	"github.com/bureau-foundation/explore-profiles/lib/tui"
)

// noticeFadeDelay is how long action feedback stays in the status
// line.
const noticeFadeDelay = 3 * time.Second

// headerRows is the chrome above the content: type tabs, Variables
// and grid controls.
const headerRows = 3

// footerRows is the status line below the content.
const footerRows = 1

// pickerPurpose is what a selection in the open picker does.
type pickerPurpose int

const (
	pickActions pickerPurpose = iota
	pickVariable
	pickValue
)

// clearFiltersValue is the variable picker entry that resets filters.
const clearFiltersValue = "\x00clear-filters"

// panelResult is a cached panel fetch.
type panelResult struct {
	// scope is the data source and filter expression the fetch used.
	scope   string
	loading bool
	result  datasource.Result
}

// panelResultMsg delivers a panel fetch outcome.
type panelResultMsg struct {
	key    string
	scope  string
	result datasource.Result
}

// actionDoneMsg reports a panel action that ran off the event loop.
type actionDoneMsg struct {
	label string
}

// noticeFadeMsg clears the notice it names.
type noticeFadeMsg struct {
	text string
}

// Model is the bubbletea model of the explorer.
type Model struct {
	ctx        context.Context
	controller *exploration.Controller
	renderer   *Renderer
	theme      tui.Theme
	keys       KeyMap

	width  int
	height int
	ready  bool

	frame     Frame
	focus     int
	rowOffset int
	results   map[string]*panelResult

	picker         *tui.Picker
	pickerPurpose  pickerPurpose
	pickerVariable string
	pickerActions  []repeater.Action

	searching bool

	notice      string
	noticeError bool
}

// NewModel returns a model over an activated controller whose grids
// render through renderer. Panel fetches run under ctx.
func NewModel(ctx context.Context, controller *exploration.Controller, renderer *Renderer) Model {
	return Model{
		ctx:        ctx,
		controller: controller,
		renderer:   renderer,
		theme:      tui.DefaultTheme,
		keys:       DefaultKeyMap,
		results:    make(map[string]*panelResult),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	generation := model.renderer.Frame().Generation
	return tea.Batch(
		tea.SetWindowTitle("explore-profiles"),
		func() tea.Msg { return frameMsg{generation: generation} },
	)
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		command := model.fetchVisible()
		return model, command

	case frameMsg:
		command := model.sync()
		return model, command

	case panelResultMsg:
		cached, found := model.results[message.key]
		if found && cached.scope == message.scope {
			cached.loading = false
			cached.result = message.result
		}

	case logRecordMsg:
		if message.level < slog.LevelWarn {
			return model, nil
		}
		command := model.showNotice(message.summary, message.level >= slog.LevelError)
		return model, command

	case actionDoneMsg:
		// Switching to the flame graph renders no grid frame.
		command := tea.Batch(model.sync(), model.showNotice(message.label, false))
		return model, command

	case noticeFadeMsg:
		if model.notice == message.text {
			model.notice = ""
		}

	case tea.KeyMsg:
		if model.picker != nil {
			return model.handlePickerKeys(message)
		}
		if model.searching {
			return model.handleSearchKeys(message)
		}
		return model.handleKeys(message)
	}
	return model, nil
}

func (model *Model) showNotice(text string, isError bool) tea.Cmd {
	model.notice = text
	model.noticeError = isError
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg { return noticeFadeMsg{text: text} })
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	controls := model.controls()
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.AllServices):
		return model.switchTo(exploration.TypeAllServices)
	case key.Matches(message, model.keys.ProfileTypes):
		return model.switchTo(exploration.TypeProfileTypes)
	case key.Matches(message, model.keys.Labels):
		return model.switchTo(exploration.TypeLabels)
	case key.Matches(message, model.keys.FlameGraph):
		return model.switchTo(exploration.TypeFlameGraph)
	case key.Matches(message, model.keys.Favorites):
		return model.switchTo(exploration.TypeFavorites)

	case key.Matches(message, model.keys.Up):
		model.moveFocus(-1, 0)
	case key.Matches(message, model.keys.Down):
		model.moveFocus(1, 0)
	case key.Matches(message, model.keys.Left):
		model.moveFocus(0, -1)
	case key.Matches(message, model.keys.Right):
		model.moveFocus(0, 1)

	case key.Matches(message, model.keys.Actions):
		model.openActions()

	case key.Matches(message, model.keys.Variable):
		model.openVariables()

	case key.Matches(message, model.keys.Search):
		if !controls.QuickFilter {
			command := model.showNotice("search is not available in this view", false)
			return model, command
		}
		model.searching = true

	case key.Matches(message, model.keys.Layout):
		if !controls.Layout {
			command := model.showNotice("layout is not available in this view", false)
			return model, command
		}
		model.controller.SetLayout(next(repeater.Layouts, model.controller.Layout()))
		command := model.sync()
		return model, command

	case key.Matches(message, model.keys.HideNoData):
		if !controls.HideNoData {
			command := model.showNotice("hiding empty panels is not available in this view", false)
			return model, command
		}
		model.controller.SetHideNoData(!model.controller.HideNoData())
		command := model.sync()
		return model, command

	case key.Matches(message, model.keys.PanelType):
		if !controls.PanelType {
			command := model.showNotice("panel type is not available in this view", false)
			return model, command
		}
		model.controller.SetPanelType(next(griditem.PanelTypes, model.controller.PanelType()))
		command := model.sync()
		return model, command

	case key.Matches(message, model.keys.Back):
		if !model.controller.Back() {
			command := model.showNotice("no earlier view", false)
			return model, command
		}
		model.focus, model.rowOffset = 0, 0
		command := model.sync()
		return model, command

	case key.Matches(message, model.keys.Forward):
		if !model.controller.Forward() {
			command := model.showNotice("no later view", false)
			return model, command
		}
		model.focus, model.rowOffset = 0, 0
		command := model.sync()
		return model, command

	case key.Matches(message, model.keys.Refresh):
		clear(model.results)
		if err := model.controller.Refresh(); err != nil {
			command := model.showNotice(err.Error(), true)
			return model, command
		}
		command := model.sync()
		return model, command

	case key.Matches(message, model.keys.Compare):
		link, err := model.controller.CompareLink()
		if err != nil {
			command := model.showNotice(err.Error(), true)
			return model, command
		}
		command := tea.Batch(copyToClipboard(link.Encode()), model.showNotice("comparison link copied", false))
		return model, command

	case key.Matches(message, model.keys.Share):
		command := tea.Batch(copyToClipboard(model.controller.Encode()), model.showNotice("URL state copied", false))
		return model, command
	}
	return model, nil
}

func (model Model) switchTo(kind exploration.Type) (tea.Model, tea.Cmd) {
	if model.controller.Type() == kind {
		return model, nil
	}
	model.controller.SwitchTo(kind)
	model.focus, model.rowOffset = 0, 0
	command := model.sync()
	return model, command
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	text := model.controller.QuickFilter()
	switch {
	case key.Matches(message, model.keys.Dismiss):
		model.searching = false
		text = ""
	case key.Matches(message, model.keys.Confirm):
		model.searching = false
		return model, nil
	case message.Type == tea.KeyBackspace:
		if text == "" {
			return model, nil
		}
		runes := []rune(text)
		text = string(runes[:len(runes)-1])
	case message.Type == tea.KeySpace:
		text += " "
	case message.Type == tea.KeyRunes:
		text += string(message.Runes)
	default:
		return model, nil
	}
	model.controller.SetQuickFilter(text)
	model.focus, model.rowOffset = 0, 0
	command := model.sync()
	return model, command
}

func (model Model) handlePickerKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Dismiss):
		model.picker = nil
	case key.Matches(message, model.keys.Confirm):
		option, selected := model.picker.Selected()
		model.picker = nil
		if !selected {
			return model, nil
		}
		return model.pick(option)
	case message.Type == tea.KeyUp:
		model.picker.MoveUp()
	case message.Type == tea.KeyDown:
		model.picker.MoveDown()
	case message.Type == tea.KeyBackspace:
		model.picker.Backspace()
	case message.Type == tea.KeyRunes:
		model.picker.Type(string(message.Runes))
	}
	return model, nil
}

// pick applies a picker selection.
func (model Model) pick(option tui.PickerOption) (tea.Model, tea.Cmd) {
	switch model.pickerPurpose {
	case pickActions:
		var action repeater.Action
		for _, candidate := range model.pickerActions {
			if candidate.Label == option.Value {
				action = candidate
			}
		}
		model.pickerActions = nil
		if action.Run == nil {
			return model, nil
		}
		// Actions may touch the favorites store.
		return model, func() tea.Msg {
			action.Run()
			return actionDoneMsg{label: action.Label}
		}

	case pickVariable:
		if option.Value == clearFiltersValue {
			if err := model.controller.ChangeVariable(exploration.VarFilters, "{}"); err != nil {
				command := model.showNotice(err.Error(), true)
				return model, command
			}
			command := model.sync()
			return model, command
		}
		model.openValues(option.Value)
		return model, nil

	case pickValue:
		if err := model.controller.ChangeVariable(model.pickerVariable, option.Value); err != nil {
			command := model.showNotice(err.Error(), true)
			return model, command
		}
		model.focus, model.rowOffset = 0, 0
		command := model.sync()
		return model, command
	}
	return model, nil
}

func (model *Model) openActions() {
	panel, found := model.focusedPanel()
	if !found || len(panel.Actions) == 0 {
		return
	}
	options := make([]tui.PickerOption, 0, len(panel.Actions))
	for _, action := range panel.Actions {
		options = append(options, tui.PickerOption{Label: action.Label, Value: action.Label})
	}
	model.picker = tui.NewPicker(panel.Item.Label, options, "")
	model.pickerPurpose = pickActions
	model.pickerActions = slices.Clone(panel.Actions)
}

func (model *Model) openVariables() {
	var options []tui.PickerOption
	for _, name := range model.controls().Variables {
		if name == exploration.VarFilters {
			if model.filterExpression() != "{}" {
				options = append(options, tui.PickerOption{Label: "clear filters", Value: clearFiltersValue})
			}
			continue
		}
		options = append(options, tui.PickerOption{
			Label: name + ": " + model.controller.Variables().Value(name),
			Value: name,
		})
	}
	if len(options) == 0 {
		return
	}
	model.picker = tui.NewPicker("Variables", options, "")
	model.pickerPurpose = pickVariable
}

func (model *Model) openValues(name string) {
	variable, found := model.controller.Variables().Get(name)
	if !found {
		return
	}
	var options []tui.PickerOption
	for _, option := range variable.Options() {
		options = append(options, tui.PickerOption{Label: option.DisplayLabel(), Value: option.Value})
	}
	model.picker = tui.NewPicker(name, options, variable.Value())
	model.pickerPurpose = pickValue
	model.pickerVariable = name
}

func (model *Model) moveFocus(rows, columns int) {
	layout := model.geometry()
	model.focus = layout.move(model.focus, len(model.frame.Panels), rows, columns)
	model.rowOffset = layout.scroll(model.focus, model.rowOffset)
}

func (model Model) focusedPanel() (repeater.Panel, bool) {
	if model.hasGrid() && model.focus < len(model.frame.Panels) {
		return model.frame.Panels[model.focus], true
	}
	return repeater.Panel{}, false
}

func (model Model) controls() exploration.Controls {
	view := model.controller.View()
	if view == nil {
		return exploration.Controls{}
	}
	return view.VariablesAndGridControls()
}

func (model Model) hasGrid() bool {
	view := model.controller.View()
	return view != nil && view.Grid() != nil
}

func (model Model) filterExpression() string {
	return model.controller.Variables().Value(exploration.VarFilters)
}

// fetchScope identifies what a panel fetch depends on besides the item
// itself. A cached result from another scope is stale.
func (model Model) fetchScope() string {
	return model.controller.Variables().Value(exploration.VarDataSource) + "\x00" + model.filterExpression()
}

// cachedResult returns the fetched result for item in the current
// scope, or false while it is missing, loading or stale.
func (model Model) cachedResult(item griditem.Item) (datasource.Result, bool) {
	cached, found := model.results[item.Key()]
	if !found || cached.loading || cached.scope != model.fetchScope() {
		return datasource.Result{}, false
	}
	return cached.result, true
}

// sync reads the latest frame, keeps focus in range and fetches the
// panels now on screen.
func (model *Model) sync() tea.Cmd {
	model.frame = model.renderer.Frame()
	if model.focus >= len(model.frame.Panels) {
		model.focus = max(len(model.frame.Panels)-1, 0)
	}
	model.rowOffset = model.geometry().scroll(model.focus, model.rowOffset)
	return model.fetchVisible()
}

func (model *Model) geometry() geometry {
	layout := model.frame.Layout
	if layout == "" {
		layout = repeater.LayoutGrid
	}
	// One column for the scrollbar.
	return arrange(layout, len(model.frame.Panels), model.width-1, model.contentHeight())
}

func (model Model) contentHeight() int {
	return max(model.height-headerRows-footerRows, 1)
}

// fetchVisible starts fetches for on-screen panels with no cached
// result for the current data source and filters.
func (model *Model) fetchVisible() tea.Cmd {
	if !model.ready {
		return nil
	}
	var items []griditem.Item
	if model.hasGrid() {
		start, end := model.geometry().window(model.rowOffset, len(model.frame.Panels))
		for _, panel := range model.frame.Panels[start:end] {
			items = append(items, panel.Item)
		}
	} else if item, found := model.flameGraphItem(); found {
		items = append(items, item)
	}

	scope := model.fetchScope()
	var commands []tea.Cmd
	for _, item := range items {
		panelKey := item.Key()
		if cached, found := model.results[panelKey]; found && cached.scope == scope {
			continue
		}
		model.results[panelKey] = &panelResult{scope: scope, loading: true}
		controller, ctx := model.controller, model.ctx
		commands = append(commands, func() tea.Msg {
			return panelResultMsg{key: panelKey, scope: scope, result: controller.FetchPanel(ctx, item)}
		})
	}
	return tea.Batch(commands...)
}

// flameGraphItem is the panel shown by the flame graph view: the item
// it was opened from, or the current service and profile type.
func (model Model) flameGraphItem() (griditem.Item, bool) {
	view := model.controller.View()
	if view == nil || view.Type() != exploration.TypeFlameGraph {
		return griditem.Item{}, false
	}
	if item, found := view.ActiveItem(); found {
		return item, true
	}
	variables := model.controller.Variables()
	serviceName := variables.Value(exploration.VarServiceName)
	if serviceName == "" {
		return griditem.Item{}, false
	}
	return griditem.Item{
		Value: serviceName,
		Label: serviceName,
		QueryParams: griditem.QueryParams{
			ServiceName:     serviceName,
			ProfileMetricID: variables.Value(exploration.VarProfileMetricID),
		},
		PanelType: griditem.PanelTimeseries,
	}, true
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}
	sections := []string{model.renderTabs(), model.renderVariables(), model.renderControls()}
	sections = append(sections, model.renderContent())
	sections = append(sections, model.renderStatus())
	output := strings.Join(sections, "\n")

	if model.picker != nil {
		lines := model.picker.Render(model.theme)
		column := max((model.width-model.picker.Width())/2, 0)
		output = tui.SpliceOverlay(output, lines, column, headerRows)
	}
	return output
}

func (model Model) renderTabs() string {
	active := model.controller.Type()
	selected := lipgloss.NewStyle().Bold(true).
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground)
	normal := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var tabs []string
	for index, kind := range exploration.Types {
		label := fmt.Sprintf(" %d %s ", index+1, kind.Title())
		if kind == active {
			tabs = append(tabs, selected.Render(label))
		} else {
			tabs = append(tabs, normal.Render(label))
		}
	}
	return ansi.Truncate(strings.Join(tabs, " "), model.width, "")
}

func (model Model) renderVariables() string {
	variables := model.controller.Variables()
	name := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	value := lipgloss.NewStyle().Foreground(model.theme.NormalText)

	var parts []string
	for _, variableName := range model.controls().Variables {
		current := variables.Value(variableName)
		if variable, found := variables.Get(variableName); found && variable.Loading() {
			current += "…"
		}
		if variableName == exploration.VarFilters {
			current = model.filterExpression()
		}
		parts = append(parts, name.Render(variableName+":")+" "+value.Render(current))
	}
	return ansi.Truncate(strings.Join(parts, "  "), model.width, "…")
}

func (model Model) renderControls() string {
	controls := model.controls()
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	var parts []string
	if controls.Layout {
		parts = append(parts, "layout "+string(model.controller.Layout()))
	}
	if controls.PanelType {
		parts = append(parts, "panel "+string(model.controller.PanelType()))
	}
	if controls.HideNoData {
		state := "off"
		if model.controller.HideNoData() {
			state = "on"
		}
		parts = append(parts, "hide empty "+state)
	}
	line := faint.Render(strings.Join(parts, " · "))
	if controls.QuickFilter {
		search := model.controller.QuickFilter()
		if model.searching {
			search += "█"
		}
		if search != "" || model.searching {
			line += "  " + lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Render("/"+search)
		}
	}
	return ansi.Truncate(line, model.width, "")
}

func (model Model) renderContent() string {
	height := model.contentHeight()
	var body string
	if model.hasGrid() {
		body = model.renderGrid(height)
	} else {
		body = model.renderFlameGraph(height)
	}
	return lipgloss.NewStyle().Width(model.width).Height(height).MaxHeight(height).Render(body)
}

func (model Model) renderGrid(height int) string {
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	errorStyle := lipgloss.NewStyle().Foreground(model.theme.ErrorText)

	var banner string
	switch model.frame.Mode {
	case FrameNone, FrameLoading:
		if len(model.frame.Panels) == 0 {
			return faint.Render("Loading…")
		}
	case FrameEmpty:
		return faint.Render("No results")
	case FrameError:
		banner = errorStyle.Render(ansi.Truncate("Error: "+model.frame.Message, model.width, "…"))
		height--
	}

	panels := model.frame.Panels
	layout := model.geometry()
	start, end := layout.window(model.rowOffset, len(panels))
	filters, _ := filterset.Parse(model.filterExpression())

	var rows []string
	for rowStart := start; rowStart < end; rowStart += layout.columns {
		var cells []string
		for index := rowStart; index < min(rowStart+layout.columns, end); index++ {
			cells = append(cells, model.renderPanel(panels[index], filters, index == model.focus, layout.panelWidth, layout.panelHeight))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := strings.Join(rows, "\n")
	if layout.rows > layout.visibleRows {
		scrollbar := tui.RenderScrollbar(model.theme, min(height, layout.visibleRows*layout.panelHeight), layout.rows, layout.visibleRows, model.rowOffset)
		grid = lipgloss.JoinHorizontal(lipgloss.Top, grid, scrollbar)
	}
	if banner != "" {
		return banner + "\n" + grid
	}
	return grid
}

func (model Model) renderPanel(panel repeater.Panel, filters []filterset.Entry, focused bool, width, height int) string {
	item := panel.Item
	var badges []tui.Badge
	if side, selected := model.controller.CompareSide(item.Key()); selected {
		color := model.theme.BaselineColor
		if side == events.CompareComparison {
			color = model.theme.ComparisonColor
		}
		badges = append(badges, tui.Badge{Text: string(side), Color: color})
	}
	if item.HasFilter() {
		filter := item.Filter()
		switch filterset.StateOf(filters, filter.Key, filter.Value) {
		case filterset.StateIncluded:
			badges = append(badges, tui.Badge{Text: "included", Color: model.theme.IncludedColor})
		case filterset.StateExcluded:
			badges = append(badges, tui.Badge{Text: "excluded", Color: model.theme.ExcludedColor})
		}
	}
	for _, action := range panel.Actions {
		if action.Label == "Unfavorite" {
			badges = append(badges, tui.Badge{Text: "★", Color: model.theme.FocusBorderColor})
		}
	}

	var footer string
	if focused && len(panel.Actions) > 0 {
		labels := make([]string, 0, len(panel.Actions))
		for _, action := range panel.Actions {
			labels = append(labels, action.Label)
		}
		footer = "⏎ " + strings.Join(labels, " · ")
	}

	// Border, title and footer rows.
	bodyHeight := max(height-4, 1)
	return tui.RenderPanel(model.theme, tui.PanelView{
		Title:   item.Label,
		Badges:  badges,
		Body:    model.renderPanelBody(item, width-2, bodyHeight),
		Footer:  footer,
		Width:   width,
		Height:  height,
		Focused: focused,
	})
}

func (model Model) renderPanelBody(item griditem.Item, width, height int) string {
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	result, found := model.cachedResult(item)
	if !found {
		return faint.Render("Loading…")
	}
	if result.State == datasource.StateError {
		message := "fetch failed"
		if result.Err != nil {
			message = result.Err.Error()
		}
		return lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render(message)
	}
	return tui.RenderVisualization(model.theme, string(item.PanelType), plotSeries(item, result.Series), width, height)
}

func (model Model) renderFlameGraph(height int) string {
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	item, found := model.flameGraphItem()
	if !found {
		return faint.Render("Select a service to open its flame graph.")
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).
		Render(ansi.Truncate(item.Label+" · "+item.QueryParams.ProfileMetricID, model.width, "…"))

	result, known := model.cachedResult(item)
	if !known {
		return title + "\n" + faint.Render("Loading…")
	}
	if result.State == datasource.StateError {
		return title + "\n" + model.renderPanelBody(item, model.width, 1)
	}
	series := plotSeries(item, result.Series)
	plotHeight := max((height-1)*2/3, 1)
	tableHeight := max(height-1-plotHeight, 1)
	return strings.Join([]string{
		title,
		tui.RenderTimeseries(model.theme, series, model.width, plotHeight),
		tui.RenderTable(model.theme, series, model.width, tableHeight),
	}, "\n")
}

func (model Model) renderStatus() string {
	if model.notice != "" {
		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if model.noticeError {
			style = style.Foreground(model.theme.ErrorText)
		}
		return style.Render(ansi.Truncate(model.notice, model.width, "…"))
	}
	if model.searching {
		return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("type to filter panels · ⏎ done · esc clear")
	}
	var parts []string
	for _, binding := range model.keys.helpBindings() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(ansi.Truncate(strings.Join(parts, "  "), model.width, "…"))
}

// plotSeries converts fetched series to plottable ones, labelled by
// their label values or by the item.
func plotSeries(item griditem.Item, fetched []datasource.Series) []tui.Series {
	series := make([]tui.Series, 0, len(fetched))
	for _, entry := range fetched {
		values := make([]float64, 0, len(entry.Points))
		for _, point := range entry.Points {
			values = append(values, point.Value)
		}
		series = append(series, tui.Series{Label: seriesLabel(item, entry.Labels), Values: values})
	}
	return series
}

func seriesLabel(item griditem.Item, labels map[string]string) string {
	if len(labels) == 0 {
		return item.Label
	}
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	slices.Sort(names)
	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, labels[name])
	}
	return strings.Join(values, ",")
}

// next returns the element after current, wrapping around.
func next[T comparable](values []T, current T) T {
	index := slices.Index(values, current)
	return values[(index+1)%len(values)]
}

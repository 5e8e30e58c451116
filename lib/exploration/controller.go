// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exploration

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/bureau-foundation/explore-profiles/lib/clock"
	"github.com/bureau-foundation/explore-profiles/lib/compare"
	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/eventbus"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/favorites"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
	"github.com/bureau-foundation/explore-profiles/lib/repeater"
	"github.com/bureau-foundation/explore-profiles/lib/urlstate"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// DefaultTimeRange is the panel fetch window when Config leaves it
// unset.
const DefaultTimeRange = time.Hour

// maxHistory bounds the back stack.
const maxHistory = 64

// Config configures a [Controller].
type Config struct {
	// Sources maps data source names to implementations. At least one
	// is required.
	Sources map[string]Source
	// DefaultSource is selected when the URL names none. Defaults to
	// the first name in sorted order.
	DefaultSource string

	// Favorites backs the favorites view and panel favorite toggles.
	// Nil disables both.
	Favorites *favorites.Store

	// Renderer draws every grid the controller builds. Required.
	Renderer repeater.Renderer

	// Bus carries panel messages. A private bus is created when nil.
	Bus *eventbus.Bus

	// Clock anchors panel time ranges. Defaults to clock.Real().
	Clock clock.Clock

	// TimeRange is the panel fetch window ending now. Defaults to
	// DefaultTimeRange.
	TimeRange time.Duration

	// MaxPoints caps points per series in panel fetches.
	MaxPoints int

	Logger *slog.Logger
}

type checkpoint struct {
	values     url.Values
	activeItem *griditem.Item
}

// Controller runs one exploration session. Safe for concurrent use.
type Controller struct {
	config    Config
	logger    *slog.Logger
	bus       *eventbus.Bus
	clock     clock.Clock
	variables *variable.Set
	url       *urlstate.State
	compare   compare.Selection

	mutex           sync.Mutex
	ctx             context.Context
	explorationType Type
	view            *View
	quickFilter     string
	layout          repeater.Layout
	hideNoData      bool
	panelType       griditem.PanelType
	back            []checkpoint
	forward         []checkpoint
	unsubscribers   []func()
}

// New validates config and declares the session's Variables. Nothing
// is fetched until [Controller.Activate].
func New(config Config) (*Controller, error) {
	if config.Renderer == nil {
		return nil, fmt.Errorf("exploration: a renderer is required")
	}
	names := sortedSourceNames(config.Sources)
	defaultSource, err := resolveDefaultSource(names, config.DefaultSource)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	bus := config.Bus
	if bus == nil {
		bus = eventbus.New(logger)
	}
	timeSource := config.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	if config.TimeRange <= 0 {
		config.TimeRange = DefaultTimeRange
	}

	controller := &Controller{
		config:          config,
		logger:          logger,
		bus:             bus,
		clock:           timeSource,
		url:             urlstate.New(nil),
		ctx:             context.Background(),
		explorationType: TypeAllServices,
		layout:          repeater.LayoutGrid,
		panelType:       griditem.PanelTimeseries,
	}

	var favoritesFetcher variable.OptionFetcher = emptyFavorites
	if config.Favorites != nil {
		favoritesFetcher = config.Favorites.Fetcher()
	}
	set, err := variable.NewSet(definitions(names, defaultSource, sourceRouter{controller: controller}, favoritesFetcher), bus, logger)
	if err != nil {
		return nil, fmt.Errorf("exploration: %w", err)
	}
	controller.variables = set
	return controller, nil
}

// Activate restores state from URL parameters, starts the Variables
// under ctx and builds the initial view. Call it once.
func (controller *Controller) Activate(ctx context.Context, values url.Values) {
	controller.mutex.Lock()
	controller.ctx = ctx
	controller.mutex.Unlock()

	controller.subscribe()
	kind := controller.applyURL(values)
	controller.variables.Start(ctx)
	controller.rebuild(kind, nil)
	controller.syncURL()
	controller.logger.Info("exploration activated", "type", kind, "query", controller.url.Encode())
}

// Close stops refreshes and drops every subscription.
func (controller *Controller) Close() {
	controller.mutex.Lock()
	unsubscribers := controller.unsubscribers
	controller.unsubscribers = nil
	view := controller.view
	controller.mutex.Unlock()

	for _, unsubscribe := range unsubscribers {
		unsubscribe()
	}
	if view != nil && view.grid != nil {
		view.grid.Detach()
	}
	controller.variables.Close()
}

// Type returns the active exploration type.
func (controller *Controller) Type() Type {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.explorationType
}

// View returns the active view. Nil before Activate.
func (controller *Controller) View() *View {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.view
}

// Variables returns the session's Variable set.
func (controller *Controller) Variables() *variable.Set { return controller.variables }

// Bus returns the bus panels publish on.
func (controller *Controller) Bus() *eventbus.Bus { return controller.bus }

// Idle returns a channel closed once no Variable refresh is running.
func (controller *Controller) Idle() <-chan struct{} { return controller.variables.Idle() }

// URL returns a copy of the current URL parameters.
func (controller *Controller) URL() url.Values { return controller.url.Values() }

// Encode renders the current URL query string.
func (controller *Controller) Encode() string { return controller.url.Encode() }

// QuickFilter returns the quick filter text.
func (controller *Controller) QuickFilter() string {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.quickFilter
}

// Layout returns the grid layout.
func (controller *Controller) Layout() repeater.Layout {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.layout
}

// HideNoData reports whether panels without data are hidden.
func (controller *Controller) HideNoData() bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.hideNoData
}

// PanelType returns the default panel type.
func (controller *Controller) PanelType() griditem.PanelType {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.panelType
}

// SwitchTo changes the exploration type from the header. Filters and
// group-by return to their defaults unless kind is labels or flame
// graph.
func (controller *Controller) SwitchTo(kind Type) {
	controller.checkpoint()
	if !kind.keepsFilters() {
		controller.changeValues(map[string]string{VarFilters: emptyFilters, VarGroupBy: GroupByAll})
	}
	controller.rebuild(kind, nil)
	controller.syncURL()
}

// openFromItem switches to kind for a panel, seeding the Variables
// from the panel's query parameters.
func (controller *Controller) openFromItem(kind Type, item griditem.Item) {
	controller.checkpoint()

	params := item.QueryParams
	values := make(map[string]string)
	if params.ServiceName != "" {
		values[VarServiceName] = params.ServiceName
	}
	if params.ProfileMetricID != "" {
		values[VarProfileMetricID] = params.ProfileMetricID
	}
	if len(params.Filters) > 0 {
		values[VarFilters] = filterset.Format(params.Filters)
	}
	if kind == TypeLabels {
		groupBy := GroupByAll
		if params.GroupBy != nil && params.GroupBy.Label != "" {
			groupBy = params.GroupBy.Label
		}
		values[VarGroupBy] = groupBy
	}
	controller.changeValues(values)
	controller.rebuild(kind, &item)
	controller.syncURL()
}

// Back restores the previous history checkpoint. It reports false when
// there is none.
func (controller *Controller) Back() bool {
	current := controller.snapshot()

	controller.mutex.Lock()
	if len(controller.back) == 0 {
		controller.mutex.Unlock()
		return false
	}
	target := controller.back[len(controller.back)-1]
	controller.back = controller.back[:len(controller.back)-1]
	controller.forward = append(controller.forward, current)
	controller.mutex.Unlock()

	controller.restore(target)
	return true
}

// Forward re-applies a checkpoint undone by [Controller.Back].
func (controller *Controller) Forward() bool {
	current := controller.snapshot()

	controller.mutex.Lock()
	if len(controller.forward) == 0 {
		controller.mutex.Unlock()
		return false
	}
	target := controller.forward[len(controller.forward)-1]
	controller.forward = controller.forward[:len(controller.forward)-1]
	controller.back = append(controller.back, current)
	controller.mutex.Unlock()

	controller.restore(target)
	return true
}

// SetQuickFilter sets the quick filter text of every grid.
func (controller *Controller) SetQuickFilter(text string) {
	grid := controller.updateSettings(func() { controller.quickFilter = text })
	if grid != nil {
		grid.SetQuickFilter(text)
	}
	controller.syncURL()
}

// SetLayout sets the grid layout.
func (controller *Controller) SetLayout(layout repeater.Layout) {
	grid := controller.updateSettings(func() { controller.layout = layout })
	if grid != nil {
		grid.SetLayout(layout)
	}
	controller.syncURL()
}

// SetHideNoData turns hiding of panels without data on or off.
func (controller *Controller) SetHideNoData(hide bool) {
	grid := controller.updateSettings(func() { controller.hideNoData = hide })
	if grid != nil {
		grid.SetHideNoData(hide)
	}
	controller.syncURL()
}

// SetPanelType sets the default panel type.
func (controller *Controller) SetPanelType(panelType griditem.PanelType) {
	grid := controller.updateSettings(func() { controller.panelType = panelType })
	if grid != nil {
		grid.SetPanelType(panelType)
	}
	controller.syncURL()
}

// ChangeVariable sets a Variable's value from a header picker.
func (controller *Controller) ChangeVariable(name, value string) error {
	return controller.variables.ChangeValueTo(name, value)
}

// Refresh force-refreshes the Variable driving the active grid.
func (controller *Controller) Refresh() error {
	view := controller.View()
	if view == nil || view.source == "" {
		return nil
	}
	return controller.variables.Refresh(view.source)
}

// CompareSide reports which comparison slot holds the item with key.
func (controller *Controller) CompareSide(key string) (events.CompareTarget, bool) {
	return controller.compare.SideOf(key)
}

// CompareLink returns the URL parameters of the comparison view for
// the selected baseline and comparison panels.
func (controller *Controller) CompareLink() (url.Values, error) {
	return controller.compare.DeepLink(controller.variables.URLState(), controller.filters())
}

// FetchPanel fetches an item's series from the active data source and
// publishes the outcome as events.DataReceived.
func (controller *Controller) FetchPanel(ctx context.Context, item griditem.Item) datasource.Result {
	var result datasource.Result
	source, err := controller.source()
	if err != nil {
		result = datasource.Result{State: datasource.StateError, Err: err}
	} else {
		now := controller.clock.Now()
		result = source.FetchSeries(ctx, datasource.Request{
			Params:    item.QueryParams.Clone(),
			Filters:   controller.filters(),
			Range:     datasource.TimeRange{From: now.Add(-controller.config.TimeRange), To: now},
			MaxPoints: controller.config.MaxPoints,
		})
	}
	if result.State == datasource.StateError {
		controller.logger.Warn("panel fetch failed", "panel", item.Label, "error", result.Err)
	}
	eventbus.Publish(controller.bus, events.DataReceived{Key: item.Key(), Result: result})
	return result
}

func (controller *Controller) source() (Source, error) {
	name := controller.variables.Value(VarDataSource)
	source, found := controller.config.Sources[name]
	if !found {
		return nil, fmt.Errorf("exploration: unknown data source %q", name)
	}
	return source, nil
}

// filters returns the parsed value of the filters Variable.
func (controller *Controller) filters() []filterset.Entry {
	filters, err := filterset.Parse(controller.variables.Value(VarFilters))
	if err != nil {
		controller.logger.Warn("ignoring unparseable filters", "error", err)
		return nil
	}
	return filters
}

func (controller *Controller) context() context.Context {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.ctx
}

func (controller *Controller) changeValues(values map[string]string) {
	if err := controller.variables.ChangeValues(values); err != nil {
		panic(fmt.Sprintf("exploration: changing declared variables: %v", err))
	}
}

// updateSettings applies change under the lock and returns the active
// grid, if any.
func (controller *Controller) updateSettings(change func()) *repeater.Grid {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	change()
	if controller.view == nil {
		return nil
	}
	return controller.view.grid
}

// applyURL loads controller settings and Variable values from URL
// parameters, correcting invalid values to defaults. It returns the
// exploration type to show.
func (controller *Controller) applyURL(values url.Values) Type {
	invalid := func(key string) {
		controller.logger.Warn("invalid URL value, using default", "key", key, "value", values.Get(key))
	}

	typeName, valid := urlstate.String(values, urlstate.KeyExplorationType, string(TypeAllServices), typeNames()...)
	if !valid {
		invalid(urlstate.KeyExplorationType)
	}
	kind, _ := ParseType(typeName)

	layoutNames := make([]string, 0, len(repeater.Layouts))
	for _, layout := range repeater.Layouts {
		layoutNames = append(layoutNames, string(layout))
	}
	layoutName, valid := urlstate.String(values, urlstate.KeyLayout, string(repeater.LayoutGrid), layoutNames...)
	if !valid {
		invalid(urlstate.KeyLayout)
	}
	layout, _ := repeater.ParseLayout(layoutName)

	hideNoData, valid := urlstate.Bool(values, urlstate.KeyHideNoData, false)
	if !valid {
		invalid(urlstate.KeyHideNoData)
	}

	panelTypeNames := make([]string, 0, len(griditem.PanelTypes))
	for _, panelType := range griditem.PanelTypes {
		panelTypeNames = append(panelTypeNames, string(panelType))
	}
	panelTypeName, valid := urlstate.String(values, urlstate.KeyPanelType, string(griditem.PanelTimeseries), panelTypeNames...)
	if !valid {
		invalid(urlstate.KeyPanelType)
	}
	panelType, _ := griditem.ParsePanelType(panelTypeName)

	controller.mutex.Lock()
	controller.layout = layout
	controller.hideNoData = hideNoData
	controller.panelType = panelType
	controller.quickFilter = values.Get(urlstate.KeySearchText)
	controller.mutex.Unlock()

	controller.url.Replace(values)
	controller.variables.UpdateFromURL(values)
	return kind
}

// syncURL writes controller settings and Variable values to the URL.
func (controller *Controller) syncURL() {
	update := controller.variables.URLState()

	controller.mutex.Lock()
	update.Set(urlstate.KeyExplorationType, string(controller.explorationType))
	update.Set(urlstate.KeyLayout, string(controller.layout))
	update.Set(urlstate.KeyHideNoData, urlstate.FormatBool(controller.hideNoData))
	update.Set(urlstate.KeyPanelType, string(controller.panelType))
	if controller.quickFilter == "" {
		update[urlstate.KeySearchText] = nil
	} else {
		update.Set(urlstate.KeySearchText, controller.quickFilter)
	}
	controller.mutex.Unlock()

	if controller.url.Merge(update) {
		controller.logger.Debug("URL state updated", "query", controller.url.Encode())
	}
}

// snapshot captures the current state as a checkpoint. Synced
// Variables are recorded even when their URL form is empty so that
// restoring clears them.
func (controller *Controller) snapshot() checkpoint {
	controller.syncURL()
	values := controller.url.Values()
	for key, list := range controller.variables.URLState() {
		values[key] = list
	}
	var activeItem *griditem.Item
	if view := controller.View(); view != nil {
		activeItem = view.activeItem
	}
	return checkpoint{values: values, activeItem: activeItem}
}

func (controller *Controller) checkpoint() {
	current := controller.snapshot()
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.back = append(controller.back, current)
	if len(controller.back) > maxHistory {
		controller.back = controller.back[len(controller.back)-maxHistory:]
	}
	controller.forward = nil
}

func (controller *Controller) restore(target checkpoint) {
	kind := controller.applyURL(target.values)
	controller.rebuild(kind, target.activeItem)
	controller.syncURL()
}

// rebuild replaces the active view with a fresh one for kind.
func (controller *Controller) rebuild(kind Type, activeItem *griditem.Item) {
	var active *griditem.Item
	if activeItem != nil {
		copied := *activeItem
		copied.QueryParams = activeItem.QueryParams.Clone()
		active = &copied
	}

	controller.mutex.Lock()
	previous := controller.view
	controller.explorationType = kind
	settings := gridSettings{
		quickFilter: controller.quickFilter,
		layout:      controller.layout,
		hideNoData:  controller.hideNoData,
		panelType:   controller.panelType,
	}
	controller.mutex.Unlock()
	settings.filters = controller.filters()

	if previous != nil && previous.grid != nil {
		previous.grid.Detach()
	}
	view := controller.buildView(kind, active, settings)

	controller.mutex.Lock()
	controller.view = view
	controller.mutex.Unlock()

	controller.logger.Debug("view rebuilt", "type", kind, "source", view.source)
	if view.grid != nil {
		view.grid.Attach()
	}

	message := events.ExplorationChanged{Type: string(kind)}
	if active != nil {
		message.ActiveItem = *active
		message.HasActiveItem = true
	}
	eventbus.Publish(controller.bus, message)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exploration

import (
	"github.com/bureau-foundation/explore-profiles/lib/eventbus"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/favorites"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
	"github.com/bureau-foundation/explore-profiles/lib/repeater"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

// Controls lists what a view's header shows.
type Controls struct {
	// Variables names the Variables with a picker, in display order.
	Variables   []string
	QuickFilter bool
	Layout      bool
	HideNoData  bool
	PanelType   bool
}

// View is the composed content of one exploration type.
type View struct {
	kind       Type
	controls   Controls
	source     string
	grid       *repeater.Grid
	activeItem *griditem.Item
}

// Type returns the view's exploration type.
func (view *View) Type() Type { return view.kind }

// VariablesAndGridControls returns what the header shows for this view.
func (view *View) VariablesAndGridControls() Controls {
	controls := view.controls
	controls.Variables = append([]string(nil), controls.Variables...)
	return controls
}

// Grid returns the view's grid, or nil for the flame graph view.
func (view *View) Grid() *repeater.Grid { return view.grid }

// Source returns the name of the Variable driving the grid, or "" when
// the view has no grid.
func (view *View) Source() string { return view.source }

// ActiveItem returns the panel the view was opened from, if any.
func (view *View) ActiveItem() (griditem.Item, bool) {
	if view.activeItem == nil {
		return griditem.Item{}, false
	}
	return *view.activeItem, true
}

// gridSettings are the grid controls a view starts with.
type gridSettings struct {
	quickFilter string
	layout      repeater.Layout
	hideNoData  bool
	panelType   griditem.PanelType
	filters     []filterset.Entry
}

// buildView composes the view for kind. The labels view lists label
// names while group-by is "all" and the chosen label's values
// otherwise.
func (controller *Controller) buildView(kind Type, activeItem *griditem.Item, settings gridSettings) *View {
	view := &View{kind: kind, activeItem: activeItem}
	allControls := func(variables ...string) Controls {
		return Controls{Variables: variables, QuickFilter: true, Layout: true, HideNoData: true, PanelType: true}
	}

	var mapOption func(variable.Option, int) (griditem.Item, bool)
	var headerActions func(griditem.Item) []repeater.Action
	compare := repeater.FavoritesFirst(controller.isFavorite)

	switch kind {
	case TypeAllServices:
		view.controls = allControls(VarDataSource, VarProfileMetricID)
		view.source = VarServiceName
		mapOption = controller.serviceItem
		headerActions = controller.navigationActions(true)

	case TypeProfileTypes:
		view.controls = allControls(VarDataSource, VarServiceName)
		view.source = VarProfileMetricID
		mapOption = controller.profileTypeItem
		headerActions = controller.navigationActions(false)

	case TypeLabels:
		view.controls = allControls(VarDataSource, VarServiceName, VarProfileMetricID, VarGroupBy, VarFilters)
		if controller.variables.Value(VarGroupBy) == GroupByAll {
			view.source = VarGroupBy
			mapOption = controller.labelNameItem
			headerActions = controller.labelNameActions
		} else {
			view.source = VarLabelValues
			mapOption = controller.labelValueItem
			headerActions = controller.labelValueActions
		}

	case TypeFlameGraph:
		view.controls = Controls{Variables: []string{VarDataSource, VarServiceName, VarProfileMetricID, VarFilters}}
		return view

	case TypeFavorites:
		view.controls = Controls{Variables: []string{VarDataSource}, QuickFilter: true, Layout: true, HideNoData: true}
		view.source = VarFavorites
		mapOption = controller.favoriteItem
		headerActions = controller.favoriteActions
		compare = nil
	}

	source, _ := controller.variables.Get(view.source)
	grid := repeater.New(repeater.Config{
		Source:          source,
		MapOptionToItem: mapOption,
		Compare:         compare,
		HeaderActions:   headerActions,
		Renderer:        controller.config.Renderer,
		Bus:             controller.bus,
		Logger:          controller.logger,
		QuickFilter:     settings.quickFilter,
		Layout:          settings.layout,
		HideNoData:      settings.hideNoData,
		PanelType:       settings.panelType,
		Filters:         settings.filters,
	})
	view.grid = grid
	return view
}

func (controller *Controller) serviceItem(option variable.Option, index int) (griditem.Item, bool) {
	return griditem.Item{
		Index: index,
		Value: option.Value,
		Label: option.DisplayLabel(),
		QueryParams: griditem.QueryParams{
			ServiceName:     option.Value,
			ProfileMetricID: controller.variables.Value(VarProfileMetricID),
		},
	}, true
}

func (controller *Controller) profileTypeItem(option variable.Option, index int) (griditem.Item, bool) {
	return griditem.Item{
		Index: index,
		Value: option.Value,
		Label: option.DisplayLabel(),
		QueryParams: griditem.QueryParams{
			ServiceName:     controller.variables.Value(VarServiceName),
			ProfileMetricID: option.Value,
		},
	}, true
}

func (controller *Controller) labelNameItem(option variable.Option, index int) (griditem.Item, bool) {
	if option.Value == GroupByAll {
		return griditem.Item{}, false
	}
	return griditem.Item{
		Index: index,
		Value: option.Value,
		Label: option.DisplayLabel(),
		QueryParams: griditem.QueryParams{
			ServiceName:     controller.variables.Value(VarServiceName),
			ProfileMetricID: controller.variables.Value(VarProfileMetricID),
			GroupBy:         &griditem.GroupBy{Label: option.Value, Values: append([]string(nil), option.Values...)},
		},
	}, true
}

func (controller *Controller) labelValueItem(option variable.Option, index int) (griditem.Item, bool) {
	label := controller.variables.Value(VarGroupBy)
	return griditem.Item{
		Index: index,
		Value: option.Value,
		Label: option.DisplayLabel(),
		QueryParams: griditem.QueryParams{
			ServiceName:     controller.variables.Value(VarServiceName),
			ProfileMetricID: controller.variables.Value(VarProfileMetricID),
			GroupBy:         &griditem.GroupBy{Label: label, Values: []string{option.Value}},
			Filters:         []filterset.Entry{{Key: label, Operator: filterset.OperatorEqual, Value: option.Value}},
		},
	}, true
}

func (controller *Controller) favoriteItem(option variable.Option, index int) (griditem.Item, bool) {
	favorite, err := favorites.FromOption(option)
	if err != nil {
		controller.logger.Warn("skipping unreadable favorite", "error", err)
		return griditem.Item{}, false
	}
	return favorite.Item(index), true
}

func (controller *Controller) navigationActions(profileTypes bool) func(griditem.Item) []repeater.Action {
	return func(item griditem.Item) []repeater.Action {
		var actions []repeater.Action
		if profileTypes {
			actions = append(actions, publishAction(controller.bus, "Profile types", events.ViewProfileTypes{Item: item}))
		}
		return append(actions,
			publishAction(controller.bus, "Labels", events.ViewLabels{Item: item}),
			publishAction(controller.bus, "Flame graph", events.ViewFlameGraph{Item: item}),
			controller.favoriteAction(item),
		)
	}
}

func (controller *Controller) labelNameActions(item griditem.Item) []repeater.Action {
	return []repeater.Action{
		publishAction(controller.bus, "Select", events.SelectLabel{Item: item}),
		controller.favoriteAction(item),
	}
}

func (controller *Controller) labelValueActions(item griditem.Item) []repeater.Action {
	filter := item.Filter()
	actions := []repeater.Action{
		publishAction(controller.bus, "Include", events.IncludeLabel{Item: item}),
		publishAction(controller.bus, "Exclude", events.ExcludeLabel{Item: item}),
	}
	if filterset.StateOf(controller.filters(), filter.Key, filter.Value) != filterset.StateNone {
		actions = append(actions, publishAction(controller.bus, "Clear", events.ClearLabel{Item: item}))
	}

	side, selected := controller.compare.SideOf(item.Key())
	for _, target := range []events.CompareTarget{events.CompareBaseline, events.CompareComparison} {
		label := "Baseline"
		if target == events.CompareComparison {
			label = "Comparison"
		}
		unselect := selected && side == target
		if unselect {
			label = "Unselect " + label
		}
		actions = append(actions, publishAction(controller.bus, label, events.SelectForCompare{
			Target:   target,
			Item:     item,
			Unselect: unselect,
		}))
	}
	return actions
}

func (controller *Controller) favoriteActions(item griditem.Item) []repeater.Action {
	return []repeater.Action{
		publishAction(controller.bus, "Labels", events.ViewLabels{Item: item}),
		publishAction(controller.bus, "Flame graph", events.ViewFlameGraph{Item: item}),
		controller.favoriteAction(item),
	}
}

func (controller *Controller) favoriteAction(item griditem.Item) repeater.Action {
	label := "Favorite"
	if controller.isFavorite(item) {
		label = "Unfavorite"
	}
	return publishAction(controller.bus, label, events.ToggleFavorite{Item: item})
}

func (controller *Controller) isFavorite(item griditem.Item) bool {
	if controller.config.Favorites == nil {
		return false
	}
	return controller.config.Favorites.Exists(favorites.FromItem(item))
}

func publishAction[T any](bus *eventbus.Bus, label string, message T) repeater.Action {
	return repeater.Action{Label: label, Run: func() { eventbus.Publish(bus, message) }}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exploration

import (
	"github.com/bureau-foundation/explore-profiles/lib/eventbus"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/favorites"
	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/griditem"
)

// subscribe registers the controller's bus handlers. Handlers run on
// the publisher's goroutine and never hold the controller lock while
// calling into the Variable set or a grid.
func (controller *Controller) subscribe() {
	bus := controller.bus
	unsubscribers := []func(){
		eventbus.Subscribe(bus, controller.onVariableChanged),
		eventbus.Subscribe(bus, func(message events.ViewLabels) {
			controller.openFromItem(TypeLabels, message.Item)
		}),
		eventbus.Subscribe(bus, func(message events.ViewFlameGraph) {
			controller.openFromItem(TypeFlameGraph, message.Item)
		}),
		eventbus.Subscribe(bus, func(message events.ViewProfileTypes) {
			controller.openFromItem(TypeProfileTypes, message.Item)
		}),
		eventbus.Subscribe(bus, func(message events.IncludeLabel) {
			controller.applyFilter(message.Item, filterset.Include)
		}),
		eventbus.Subscribe(bus, func(message events.ExcludeLabel) {
			controller.applyFilter(message.Item, filterset.Exclude)
		}),
		eventbus.Subscribe(bus, func(message events.ClearLabel) {
			controller.applyFilter(message.Item, filterset.Clear)
		}),
		eventbus.Subscribe(bus, controller.onSelectLabel),
		eventbus.Subscribe(bus, controller.onToggleFavorite),
		eventbus.Subscribe(bus, controller.onSelectForCompare),
		eventbus.Subscribe(bus, func(events.ClearCompare) {
			controller.compare.Clear()
			controller.compareChanged()
		}),
		eventbus.Subscribe(bus, func(events.Refresh) {
			if err := controller.Refresh(); err != nil {
				controller.logger.Warn("refresh failed", "error", err)
			}
		}),
	}

	controller.mutex.Lock()
	controller.unsubscribers = append(controller.unsubscribers, unsubscribers...)
	controller.mutex.Unlock()
}

func (controller *Controller) onVariableChanged(message events.VariableChanged) {
	if !message.FromURL {
		controller.syncURL()
	}

	view := controller.View()
	if view == nil || view.grid == nil {
		return
	}
	switch {
	case message.Name == VarGroupBy && view.kind == TypeLabels:
		if (message.Value == GroupByAll) != (view.source == VarGroupBy) {
			controller.rebuild(TypeLabels, view.activeItem)
			return
		}
	case message.Name == VarFilters:
		view.grid.SetFilters(controller.filters())
		return
	}
	if message.Name != view.source {
		// Items embed the values of other Variables.
		view.grid.Recompute()
	}
}

// applyFilter rewrites the global filters with operation applied to
// the item's filter.
func (controller *Controller) applyFilter(item griditem.Item, operation func([]filterset.Entry, filterset.Entry) []filterset.Entry) {
	if !item.HasFilter() {
		controller.logger.Warn("ignoring filter action on item without a label value", "item", item.Label)
		return
	}
	current := controller.filters()
	updated := operation(current, item.Filter())
	if filterset.Equal(current, updated) {
		return
	}
	controller.logger.Debug("filters updated", "filters", filterset.Format(updated))
	if err := controller.variables.ChangeValueTo(VarFilters, filterset.Format(updated)); err != nil {
		controller.logger.Error("updating filters failed", "error", err)
	}
}

func (controller *Controller) onSelectLabel(message events.SelectLabel) {
	label := message.Item.Value
	if groupBy := message.Item.QueryParams.GroupBy; groupBy != nil && groupBy.Label != "" {
		label = groupBy.Label
	}
	controller.checkpoint()
	if err := controller.variables.ChangeValueTo(VarGroupBy, label); err != nil {
		controller.logger.Error("selecting label failed", "error", err)
	}
}

func (controller *Controller) onToggleFavorite(message events.ToggleFavorite) {
	store := controller.config.Favorites
	if store == nil {
		controller.logger.Warn("favorites are disabled")
		return
	}
	added, err := store.Toggle(controller.context(), favorites.FromItem(message.Item))
	if err != nil {
		controller.logger.Error("toggling favorite failed", "item", message.Item.Label, "error", err)
		return
	}
	controller.logger.Info("favorite toggled", "item", message.Item.Label, "favorite", added)

	if err := controller.variables.Refresh(VarFavorites); err != nil {
		controller.logger.Error("refreshing favorites failed", "error", err)
	}
	if view := controller.View(); view != nil && view.grid != nil && view.source != VarFavorites {
		view.grid.Invalidate()
	}
}

func (controller *Controller) onSelectForCompare(message events.SelectForCompare) {
	if message.Unselect {
		controller.compare.Unselect(message.Target)
	} else {
		controller.compare.Select(message.Target, message.Item)
	}
	controller.compareChanged()
}

func (controller *Controller) compareChanged() {
	var message events.CompareChanged
	if baseline, selected := controller.compare.Get(events.CompareBaseline); selected {
		message.BaselineKey = baseline.Key()
	}
	if comparison, selected := controller.compare.Get(events.CompareComparison); selected {
		message.ComparisonKey = comparison.Key()
	}
	message.Enabled = controller.compare.IsEnabled()
	eventbus.Publish(controller.bus, message)

	if view := controller.View(); view != nil && view.grid != nil {
		view.grid.Invalidate()
	}
}

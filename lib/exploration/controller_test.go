// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exploration

import (
	"context"
	"net/url"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/explore-profiles/lib/clock"
	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/datasource/fixture"
	"github.com/bureau-foundation/explore-profiles/lib/eventbus"
	"github.com/bureau-foundation/explore-profiles/lib/events"
	"github.com/bureau-foundation/explore-profiles/lib/favorites"
	"github.com/bureau-foundation/explore-profiles/lib/repeater"
	"github.com/bureau-foundation/explore-profiles/lib/testutil"
)

const cpuProfile = "process_cpu:cpu:nanoseconds:cpu:nanoseconds"

type recordingRenderer struct {
	mutex  sync.Mutex
	calls  []string
	panels []repeater.Panel
	layout repeater.Layout
}

func (renderer *recordingRenderer) RenderLoading() { renderer.record("loading") }
func (renderer *recordingRenderer) RenderEmpty()   { renderer.record("empty") }

func (renderer *recordingRenderer) RenderError(message string) { renderer.record("error") }

func (renderer *recordingRenderer) RenderItems(panels []repeater.Panel, layout repeater.Layout) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	renderer.calls = append(renderer.calls, "items")
	renderer.panels = panels
	renderer.layout = layout
}

func (renderer *recordingRenderer) record(call string) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	renderer.calls = append(renderer.calls, call)
	renderer.panels = nil
}

func (renderer *recordingRenderer) labels() []string {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	labels := make([]string, 0, len(renderer.panels))
	for _, panel := range renderer.panels {
		labels = append(labels, panel.Item.Label)
	}
	return labels
}

func (renderer *recordingRenderer) panel(t *testing.T, label string) repeater.Panel {
	t.Helper()
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	for _, panel := range renderer.panels {
		if panel.Item.Label == label {
			return panel
		}
	}
	t.Fatalf("no rendered panel %q", label)
	return repeater.Panel{}
}

// runAction runs a header action of a rendered panel.
func (renderer *recordingRenderer) runAction(t *testing.T, panelLabel, actionLabel string) {
	t.Helper()
	panel := renderer.panel(t, panelLabel)
	for _, action := range panel.Actions {
		if action.Label == actionLabel {
			action.Run()
			return
		}
	}
	t.Fatalf("panel %q has no action %q (actions: %v)", panelLabel, actionLabel, actionLabels(panel))
}

func actionLabels(panel repeater.Panel) []string {
	labels := make([]string, 0, len(panel.Actions))
	for _, action := range panel.Actions {
		labels = append(labels, action.Label)
	}
	return labels
}

func newTestController(t *testing.T, store *favorites.Store) (*Controller, *recordingRenderer) {
	t.Helper()
	source := fixture.Sample(nil)
	renderer := &recordingRenderer{}
	controller, err := New(Config{
		Sources:   map[string]Source{"fixture": source},
		Favorites: store,
		Renderer:  renderer,
		Clock:     clock.Fixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(controller.Close)
	return controller, renderer
}

func waitIdle(t *testing.T, controller *Controller) {
	t.Helper()
	testutil.RequireClosed(t, controller.Idle(), testutil.DefaultTimeout, "variables to settle")
}

func activate(t *testing.T, controller *Controller, values url.Values) {
	t.Helper()
	controller.Activate(context.Background(), values)
	waitIdle(t, controller)
}

func TestNewRequiresRendererAndSources(t *testing.T) {
	if _, err := New(Config{Sources: map[string]Source{"fixture": nil}}); err == nil {
		t.Error("New without a renderer succeeded")
	}
	if _, err := New(Config{Renderer: &recordingRenderer{}}); err == nil {
		t.Error("New without sources succeeded")
	}
}

func TestUnknownExplorationTypeFallsBackToAllServices(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, url.Values{"explorationType": {"unknown-value"}})

	if got := controller.Type(); got != TypeAllServices {
		t.Errorf("Type() = %q, want %q", got, TypeAllServices)
	}
	if got := controller.URL().Get("explorationType"); got != string(TypeAllServices) {
		t.Errorf("explorationType parameter = %q, want %q", got, TypeAllServices)
	}
	want := []string{"api", "ride-sharing-app", "web"}
	if got := renderer.labels(); !slices.Equal(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
}

func TestActivateRestoresURLState(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, url.Values{
		"explorationType": {"labels"},
		"var-serviceName": {"ride-sharing-app"},
		"var-groupBy":     {"vehicle"},
		"layout":          {"rows"},
		"searchText":      {"c"},
	})

	view := controller.View()
	if view.Type() != TypeLabels || view.Source() != VarLabelValues {
		t.Fatalf("view = %q over %q, want labels over %q", view.Type(), view.Source(), VarLabelValues)
	}
	if got, want := renderer.labels(), []string{"car", "scooter"}; !slices.Equal(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
	renderer.mutex.Lock()
	layout := renderer.layout
	renderer.mutex.Unlock()
	if layout != repeater.LayoutRows {
		t.Errorf("layout = %q, want rows", layout)
	}

	values := controller.URL()
	for key, want := range map[string]string{
		"var-serviceName":     "ride-sharing-app",
		"var-groupBy":         "vehicle",
		"var-profileMetricId": cpuProfile,
		"layout":              "rows",
		"searchText":          "c",
		"hideNoData":          "off",
	} {
		if got := values.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestServiceNameWithQuotesReachesLabelValues(t *testing.T) {
	service := `say "hi" \o/`
	source := fixture.New(fixture.Dataset{Series: []fixture.Series{
		{ProfileType: cpuProfile, Labels: map[string]string{"service_name": service, "vehicle": "car"}, Values: []float64{1}},
		{ProfileType: cpuProfile, Labels: map[string]string{"service_name": "other", "vehicle": "bike"}, Values: []float64{1}},
	}}, nil)
	renderer := &recordingRenderer{}
	controller, err := New(Config{
		Sources:  map[string]Source{"fixture": source},
		Renderer: renderer,
		Clock:    clock.Fixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(controller.Close)

	activate(t, controller, url.Values{
		"explorationType": {"labels"},
		"var-serviceName": {service},
		"var-groupBy":     {"vehicle"},
	})

	if got := controller.URL().Get("var-profileMetricId"); got != cpuProfile {
		t.Errorf("var-profileMetricId = %q, want %q", got, cpuProfile)
	}
	if got, want := renderer.labels(), []string{"car"}; !slices.Equal(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
}

func TestInvalidURLValuesUseDefaults(t *testing.T) {
	controller, _ := newTestController(t, nil)
	activate(t, controller, url.Values{
		"layout":         {"mosaic"},
		"hideNoData":     {"maybe"},
		"panelType":      {"pie"},
		"var-dataSource": {"missing"},
	})

	if controller.Layout() != repeater.LayoutGrid {
		t.Errorf("Layout() = %q, want grid", controller.Layout())
	}
	if controller.HideNoData() {
		t.Error("HideNoData() = true, want false")
	}
	if got := controller.PanelType(); got != "timeseries" {
		t.Errorf("PanelType() = %q, want timeseries", got)
	}
	if got := controller.Variables().Value(VarDataSource); got != "fixture" {
		t.Errorf("dataSource = %q, want fixture", got)
	}
}

func TestSwitchToResetsFiltersExceptForLabels(t *testing.T) {
	controller, _ := newTestController(t, nil)
	activate(t, controller, url.Values{"var-serviceName": {"ride-sharing-app"}})

	if err := controller.ChangeVariable(VarFilters, `{region="eu-north"}`); err != nil {
		t.Fatalf("ChangeVariable: %v", err)
	}
	if err := controller.ChangeVariable(VarGroupBy, "vehicle"); err != nil {
		t.Fatalf("ChangeVariable: %v", err)
	}
	waitIdle(t, controller)

	controller.SwitchTo(TypeLabels)
	waitIdle(t, controller)
	variables := controller.Variables()
	if got := variables.Value(VarFilters); got != `{region="eu-north"}` {
		t.Errorf("filters after switching to labels = %q, want preserved", got)
	}
	if got := variables.Value(VarGroupBy); got != "vehicle" {
		t.Errorf("groupBy after switching to labels = %q, want preserved", got)
	}

	controller.SwitchTo(TypeProfileTypes)
	waitIdle(t, controller)
	if got := variables.Value(VarFilters); got != "{}" {
		t.Errorf("filters after switching to profile types = %q, want {}", got)
	}
	if got := variables.Value(VarGroupBy); got != GroupByAll {
		t.Errorf("groupBy after switching to profile types = %q, want %q", got, GroupByAll)
	}
	if got := controller.URL().Get("explorationType"); got != string(TypeProfileTypes) {
		t.Errorf("explorationType parameter = %q, want %q", got, TypeProfileTypes)
	}
}

func TestLabelValueActionsEditFilters(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, url.Values{
		"explorationType": {"labels"},
		"var-serviceName": {"ride-sharing-app"},
		"var-groupBy":     {"vehicle"},
	})
	if got, want := renderer.labels(), []string{"bike", "car", "scooter"}; !slices.Equal(got, want) {
		t.Fatalf("rendered %v, want %v", got, want)
	}
	if labels := actionLabels(renderer.panel(t, "car")); slices.Contains(labels, "Clear") {
		t.Errorf("unfiltered panel offers Clear: %v", labels)
	}

	renderer.runAction(t, "car", "Include")
	waitIdle(t, controller)
	if got, want := controller.Variables().Value(VarFilters), `{vehicle=~"car"}`; got != want {
		t.Errorf("filters after include = %q, want %q", got, want)
	}
	if got, want := renderer.labels(), []string{"car"}; !slices.Equal(got, want) {
		t.Errorf("rendered after include %v, want %v", got, want)
	}
	if labels := actionLabels(renderer.panel(t, "car")); !slices.Contains(labels, "Clear") {
		t.Errorf("filtered panel does not offer Clear: %v", labels)
	}

	renderer.runAction(t, "car", "Exclude")
	waitIdle(t, controller)
	if got, want := controller.Variables().Value(VarFilters), `{vehicle!~"car"}`; got != want {
		t.Errorf("filters after exclude = %q, want %q", got, want)
	}
	if got, want := renderer.labels(), []string{"bike", "scooter"}; !slices.Equal(got, want) {
		t.Errorf("rendered after exclude %v, want %v", got, want)
	}

	segments := controller.URL()["var-filters"]
	if want := []string{"vehicle|!~|car"}; !slices.Equal(segments, want) {
		t.Errorf("var-filters = %v, want %v", segments, want)
	}
}

func TestSelectLabelSwitchesToValues(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, url.Values{
		"explorationType": {"labels"},
		"var-serviceName": {"ride-sharing-app"},
	})
	if got, want := renderer.labels(), []string{"region", "vehicle"}; !slices.Equal(got, want) {
		t.Fatalf("rendered %v, want %v", got, want)
	}

	renderer.runAction(t, "vehicle", "Select")
	waitIdle(t, controller)
	if got := controller.View().Source(); got != VarLabelValues {
		t.Errorf("view source = %q, want %q", got, VarLabelValues)
	}
	if got, want := renderer.labels(), []string{"bike", "car", "scooter"}; !slices.Equal(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}

	if !controller.Back() {
		t.Fatal("Back() = false after selecting a label")
	}
	waitIdle(t, controller)
	if got := controller.Variables().Value(VarGroupBy); got != GroupByAll {
		t.Errorf("groupBy after Back = %q, want %q", got, GroupByAll)
	}
	if got := controller.View().Source(); got != VarGroupBy {
		t.Errorf("view source after Back = %q, want %q", got, VarGroupBy)
	}
}

func TestFlameGraphFromPanelAndHistory(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	changes := make(chan events.ExplorationChanged, 8)
	eventbus.Subscribe(controller.Bus(), func(message events.ExplorationChanged) { changes <- message })
	activate(t, controller, nil)
	testutil.RequireReceive(t, changes, testutil.DefaultTimeout, "initial view")

	renderer.runAction(t, "ride-sharing-app", "Flame graph")
	waitIdle(t, controller)

	changed := testutil.RequireReceive(t, changes, testutil.DefaultTimeout, "flame graph view")
	if changed.Type != string(TypeFlameGraph) || !changed.HasActiveItem || changed.ActiveItem.Value != "ride-sharing-app" {
		t.Errorf("ExplorationChanged = %+v, want flame graph for ride-sharing-app", changed)
	}
	view := controller.View()
	if view.Grid() != nil {
		t.Error("flame graph view has a grid")
	}
	if item, active := view.ActiveItem(); !active || item.Value != "ride-sharing-app" {
		t.Errorf("ActiveItem() = %+v, %v", item, active)
	}
	if got := controller.Variables().Value(VarServiceName); got != "ride-sharing-app" {
		t.Errorf("serviceName = %q, want ride-sharing-app", got)
	}

	if !controller.Back() {
		t.Fatal("Back() = false")
	}
	waitIdle(t, controller)
	if controller.Type() != TypeAllServices {
		t.Errorf("Type() after Back = %q", controller.Type())
	}
	if got := controller.Variables().Value(VarServiceName); got != "api" {
		t.Errorf("serviceName after Back = %q, want api", got)
	}

	if !controller.Forward() {
		t.Fatal("Forward() = false")
	}
	waitIdle(t, controller)
	if controller.Type() != TypeFlameGraph {
		t.Errorf("Type() after Forward = %q", controller.Type())
	}
	if item, active := controller.View().ActiveItem(); !active || item.Value != "ride-sharing-app" {
		t.Errorf("ActiveItem() after Forward = %+v, %v", item, active)
	}
	if controller.Forward() {
		t.Error("Forward() = true with nothing to redo")
	}
}

func TestFavoriteToggleAndFavoritesView(t *testing.T) {
	store, err := favorites.Open(context.Background(), favorites.NewMemoryBackend(), "alice", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	controller, renderer := newTestController(t, store)
	activate(t, controller, nil)

	renderer.runAction(t, "web", "Favorite")
	waitIdle(t, controller)
	if len(store.List()) != 1 {
		t.Fatalf("store holds %d favorites, want 1", len(store.List()))
	}
	if got, want := renderer.labels(), []string{"web", "api", "ride-sharing-app"}; !slices.Equal(got, want) {
		t.Errorf("rendered %v, want favorites first %v", got, want)
	}
	if labels := actionLabels(renderer.panel(t, "web")); !slices.Contains(labels, "Unfavorite") {
		t.Errorf("favorite panel actions %v lack Unfavorite", labels)
	}

	controller.SwitchTo(TypeFavorites)
	waitIdle(t, controller)
	if got, want := renderer.labels(), []string{"web · process_cpu/cpu"}; !slices.Equal(got, want) {
		t.Errorf("favorites view rendered %v, want %v", got, want)
	}

	renderer.runAction(t, "web · process_cpu/cpu", "Unfavorite")
	waitIdle(t, controller)
	if len(store.List()) != 0 {
		t.Errorf("store holds %d favorites after unfavorite", len(store.List()))
	}
	renderer.mutex.Lock()
	last := renderer.calls[len(renderer.calls)-1]
	renderer.mutex.Unlock()
	if last != "empty" {
		t.Errorf("last render = %q, want empty", last)
	}
}

func TestCompareSelection(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, url.Values{
		"explorationType": {"labels"},
		"var-serviceName": {"ride-sharing-app"},
		"var-groupBy":     {"vehicle"},
	})
	changes := make(chan events.CompareChanged, 8)
	eventbus.Subscribe(controller.Bus(), func(message events.CompareChanged) { changes <- message })

	if _, err := controller.CompareLink(); err == nil {
		t.Error("CompareLink with no selection succeeded")
	}

	renderer.runAction(t, "car", "Baseline")
	first := testutil.RequireReceive(t, changes, testutil.DefaultTimeout, "baseline selection")
	if first.BaselineKey == "" || first.Enabled {
		t.Errorf("after baseline: %+v", first)
	}
	if labels := actionLabels(renderer.panel(t, "car")); !slices.Contains(labels, "Unselect Baseline") {
		t.Errorf("selected panel actions %v lack Unselect Baseline", labels)
	}

	renderer.runAction(t, "bike", "Comparison")
	second := testutil.RequireReceive(t, changes, testutil.DefaultTimeout, "comparison selection")
	if !second.Enabled {
		t.Errorf("after comparison: %+v", second)
	}

	link, err := controller.CompareLink()
	if err != nil {
		t.Fatalf("CompareLink: %v", err)
	}
	if got := link.Get("explorationType"); got != "diff" {
		t.Errorf("explorationType = %q, want diff", got)
	}
	if got, want := link.Get("leftQuery"), cpuProfile+`{service_name="ride-sharing-app",vehicle="car"}`; got != want {
		t.Errorf("leftQuery = %q, want %q", got, want)
	}
	if got, want := link.Get("rightQuery"), cpuProfile+`{service_name="ride-sharing-app",vehicle="bike"}`; got != want {
		t.Errorf("rightQuery = %q, want %q", got, want)
	}

	eventbus.Publish(controller.Bus(), events.ClearCompare{})
	cleared := testutil.RequireReceive(t, changes, testutil.DefaultTimeout, "cleared selection")
	if cleared.BaselineKey != "" || cleared.ComparisonKey != "" || cleared.Enabled {
		t.Errorf("after clear: %+v", cleared)
	}
}

func TestFetchPanelAppliesGlobalFilters(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, nil)
	if err := controller.ChangeVariable(VarFilters, `{region="us-east"}`); err != nil {
		t.Fatalf("ChangeVariable: %v", err)
	}
	waitIdle(t, controller)

	item := renderer.panel(t, "ride-sharing-app").Item
	received := make(chan events.DataReceived, 1)
	eventbus.Subscribe(controller.Bus(), func(message events.DataReceived) { received <- message })

	result := controller.FetchPanel(context.Background(), item)
	if result.State != datasource.StateDone || len(result.Series) != 1 {
		t.Fatalf("FetchPanel = %+v, want one series", result)
	}
	if got := result.Series[0].Total(); got != 22 {
		t.Errorf("total = %v, want 22 (scooter in us-east)", got)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if first := result.Series[0].Points[0].Timestamp; !first.Equal(now.Add(-DefaultTimeRange)) {
		t.Errorf("first point at %v, want %v", first, now.Add(-DefaultTimeRange))
	}
	message := testutil.RequireReceive(t, received, testutil.DefaultTimeout, "data received")
	if message.Key != item.Key() {
		t.Errorf("DataReceived key = %q, want %q", message.Key, item.Key())
	}
}

func TestHideNoDataDropsEmptyPanels(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, nil)
	controller.SetHideNoData(true)
	if got := controller.URL().Get("hideNoData"); got != "on" {
		t.Errorf("hideNoData parameter = %q, want on", got)
	}

	for _, label := range []string{"api", "ride-sharing-app", "web"} {
		controller.FetchPanel(context.Background(), renderer.panel(t, label).Item)
	}
	if got, want := renderer.labels(), []string{"api", "ride-sharing-app"}; !slices.Equal(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
}

func TestQuickFilterSyncsToURL(t *testing.T) {
	controller, renderer := newTestController(t, nil)
	activate(t, controller, nil)

	controller.SetQuickFilter("ride,WEB")
	if got, want := renderer.labels(), []string{"ride-sharing-app", "web"}; !slices.Equal(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
	if got := controller.URL().Get("searchText"); got != "ride,WEB" {
		t.Errorf("searchText = %q", got)
	}

	controller.SetQuickFilter("")
	if _, present := controller.URL()["searchText"]; present {
		t.Error("searchText still present after clearing the quick filter")
	}
}

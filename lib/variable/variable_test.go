// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variable

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/explore-profiles/lib/filterset"
	"github.com/bureau-foundation/explore-profiles/lib/testutil"
)

// gatedFetcher blocks each fetch until release is closed or the fetch
// context is cancelled.
type gatedFetcher struct {
	started chan string
	release chan struct{}
	calls   atomic.Int32
	options []Option
}

func newGatedFetcher(options ...Option) *gatedFetcher {
	return &gatedFetcher{
		started: make(chan string, 16),
		release: make(chan struct{}),
		options: options,
	}
}

func (fetcher *gatedFetcher) FetchOptions(ctx context.Context, query string) ([]Option, error) {
	fetcher.calls.Add(1)
	fetcher.started <- query
	select {
	case <-fetcher.release:
		return fetcher.options, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recordingFetcher answers immediately and records every query.
type recordingFetcher struct {
	mutex   sync.Mutex
	queries []string
	options []Option
	err     error
}

func (fetcher *recordingFetcher) FetchOptions(ctx context.Context, query string) ([]Option, error) {
	fetcher.mutex.Lock()
	defer fetcher.mutex.Unlock()
	fetcher.queries = append(fetcher.queries, query)
	if fetcher.err != nil {
		return nil, fetcher.err
	}
	return slices.Clone(fetcher.options), nil
}

func (fetcher *recordingFetcher) Queries() []string {
	fetcher.mutex.Lock()
	defer fetcher.mutex.Unlock()
	return slices.Clone(fetcher.queries)
}

func options(values ...string) []Option {
	result := make([]Option, 0, len(values))
	for _, value := range values {
		result = append(result, Option{Value: value, Label: value})
	}
	return result
}

func TestUpdateAtMostOneInFlight(t *testing.T) {
	fetcher := newGatedFetcher(options("api", "web")...)
	variable := New(Definition{Name: "serviceName", Query: "label_values(service_name)", Fetcher: fetcher}, nil)

	done := make(chan struct{})
	go func() {
		variable.Update(context.Background(), false)
		close(done)
	}()
	testutil.RequireReceive(t, fetcher.started, testutil.DefaultTimeout, "first fetch")

	if !variable.Loading() {
		t.Fatal("Loading() = false during fetch")
	}

	// Returns immediately: a fetch is already in flight.
	variable.Update(context.Background(), false)

	close(fetcher.release)
	testutil.RequireClosed(t, done, testutil.DefaultTimeout, "first update")

	if calls := fetcher.calls.Load(); calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
	if got := variable.Options(); len(got) != 2 {
		t.Errorf("Options() = %v, want 2 options", got)
	}
	if variable.Loading() {
		t.Error("Loading() = true after settle")
	}
}

func TestForcedUpdateSupersedes(t *testing.T) {
	first := newGatedFetcher(options("stale")...)
	var current atomic.Pointer[gatedFetcher]
	current.Store(first)

	fetcher := FetcherFunc(func(ctx context.Context, query string) ([]Option, error) {
		return current.Load().FetchOptions(ctx, query)
	})
	variable := New(Definition{Name: "serviceName", Fetcher: fetcher}, nil)

	firstDone := make(chan struct{})
	go func() {
		variable.Update(context.Background(), false)
		close(firstDone)
	}()
	testutil.RequireReceive(t, first.started, testutil.DefaultTimeout, "first fetch")

	second := newGatedFetcher(options("fresh")...)
	close(second.release)
	current.Store(second)

	variable.Update(context.Background(), true)
	// The superseded fetch was cancelled and must not overwrite.
	testutil.RequireClosed(t, firstDone, testutil.DefaultTimeout, "superseded update")

	got := variable.Options()
	if len(got) != 1 || got[0].Value != "fresh" {
		t.Errorf("Options() = %v, want [fresh]", got)
	}
	if err := variable.Err(); err != nil {
		t.Errorf("Err() = %v, want nil (cancellation of superseded fetch must be discarded)", err)
	}
	if variable.Loading() {
		t.Error("Loading() = true after settle")
	}
}

func TestUpdateStoresError(t *testing.T) {
	failure := errors.New("backend unavailable")
	variable := New(Definition{Name: "serviceName", Fetcher: &recordingFetcher{err: failure}}, nil)

	variable.Update(context.Background(), false)

	if !errors.Is(variable.Err(), failure) {
		t.Errorf("Err() = %v, want %v", variable.Err(), failure)
	}
	if variable.Options() != nil {
		t.Errorf("Options() = %v, want nil after failure", variable.Options())
	}
	if variable.Loading() {
		t.Error("Loading() = true after failure")
	}
}

func TestValueFromOptions(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback string
		options  []Option
		want     string
	}{
		{name: "current value kept", value: "web", fallback: "api", options: options("api", "web"), want: "web"},
		{name: "default when present", value: "gone", fallback: "web", options: options("api", "web"), want: "web"},
		{name: "first option otherwise", value: "gone", fallback: "missing", options: options("api", "web"), want: "api"},
		{name: "no options keeps value", value: "gone", fallback: "api", options: nil, want: "gone"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			variable := New(Definition{
				Name:             "serviceName",
				Default:          test.fallback,
				ValueFromOptions: true,
				StaticOptions:    test.options,
			}, nil)
			variable.ChangeValueTo(test.value)
			variable.Update(context.Background(), false)
			if got := variable.Value(); got != test.want {
				t.Errorf("Value() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestAllValuePrepended(t *testing.T) {
	variable := New(Definition{
		Name:             "groupBy",
		Default:          "all",
		AllValue:         "all",
		ValueFromOptions: true,
		Fetcher:          &recordingFetcher{options: options("region", "vehicle")},
	}, nil)
	variable.Update(context.Background(), false)

	var values []string
	for _, option := range variable.Options() {
		values = append(values, option.Value)
	}
	if want := []string{"all", "region", "vehicle"}; !slices.Equal(values, want) {
		t.Errorf("option values = %v, want %v", values, want)
	}
	if variable.Value() != "all" {
		t.Errorf("Value() = %q, want all", variable.Value())
	}
}

func TestURLStateSingle(t *testing.T) {
	variable := New(Definition{
		Name:       "layout",
		Default:    "grid",
		URLSyncKey: "layout",
		Normalize:  NormalizeOneOf("grid", "rows", "single"),
	}, nil)

	if changed := variable.UpdateFromURL(url.Values{"layout": {"rows"}}); !changed {
		t.Error("UpdateFromURL(rows) reported no change")
	}
	if variable.Value() != "rows" {
		t.Errorf("Value() = %q, want rows", variable.Value())
	}

	variable.UpdateFromURL(url.Values{"layout": {"mosaic"}})
	if variable.Value() != "grid" {
		t.Errorf("Value() after invalid = %q, want default grid", variable.Value())
	}

	if variable.UpdateFromURL(url.Values{"other": {"x"}}) {
		t.Error("missing parameter reported a change")
	}

	if got := variable.URLState().Get("layout"); got != "grid" {
		t.Errorf("URLState() layout = %q, want grid", got)
	}
}

func TestURLStateFilters(t *testing.T) {
	variable := New(Definition{
		Name:       "filters",
		Default:    "{}",
		URLSyncKey: "var-filters",
		Codec:      FiltersCodec{},
		Normalize:  NormalizeFilters,
	}, nil)

	variable.UpdateFromURL(url.Values{"var-filters": {"vehicle|=~|car__gfp__bike", "bogus", "region|!=|eu"}})

	want := `{vehicle=~"car|bike",region!="eu"}`
	if variable.Value() != want {
		t.Errorf("Value() = %s, want %s", variable.Value(), want)
	}

	encoded := variable.URLState()["var-filters"]
	if wantEncoded := []string{"vehicle|=~|car__gfp__bike", "region|!=|eu"}; !slices.Equal(encoded, wantEncoded) {
		t.Errorf("URLState() = %v, want %v", encoded, wantEncoded)
	}
}

func TestQuotedValueSurvivesSelectorParse(t *testing.T) {
	values := map[string]string{"serviceName": `web "edge", v2`}
	selector := Interpolate(`{service_name=${serviceName:quote},region="eu"}`, values)
	entries, err := filterset.Parse(selector)
	if err != nil {
		t.Fatalf("Parse(%q): %v", selector, err)
	}
	if len(entries) != 2 || entries[0].Value != values["serviceName"] {
		t.Errorf("Parse(%q) = %+v, want service_name value %q", selector, entries, values["serviceName"])
	}
}

func TestInterpolate(t *testing.T) {
	values := map[string]string{
		"serviceName":     "api",
		"profileMetricId": "process_cpu:cpu:nanoseconds:cpu:nanoseconds",
		"filters":         `{vehicle="car"}`,
		"empty":           "{}",
		"odd":             `say "hi" \o/`,
	}
	tests := []struct {
		template string
		want     string
	}{
		{"label_values(service_name)", "label_values(service_name)"},
		{`profile_types({service_name="$serviceName"})`, `profile_types({service_name="api"})`},
		{`label_names($profileMetricId{service_name="${serviceName}"})`, `label_names(process_cpu:cpu:nanoseconds:cpu:nanoseconds{service_name="api"})`},
		{`{service_name="$serviceName",${filters:matchers}}`, `{service_name="api",vehicle="car"}`},
		{`{a="b",${empty:matchers}}`, `{a="b",}`},
		{"cost is $5 and $unknown", "cost is $5 and $unknown"},
		{"trailing $", "trailing $"},
		{"unterminated ${serviceName", "unterminated ${serviceName"},
		{`{service_name=${serviceName:quote}}`, `{service_name="api"}`},
		{`{service_name=${odd:quote}}`, `{service_name="say \"hi\" \\o/"}`},
	}
	for _, test := range tests {
		if got := Interpolate(test.template, values); got != test.want {
			t.Errorf("Interpolate(%q) = %q, want %q", test.template, got, test.want)
		}
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/exploration"
	"github.com/bureau-foundation/explore-profiles/lib/repeater"
	"github.com/bureau-foundation/explore-profiles/lib/tui"
)

// settleTimeout bounds how long plain mode waits for the grid to leave
// the loading state.
const settleTimeout = 30 * time.Second

// plainRenderer keeps the most recent grid state for printView. It
// starts out loading until the grid first renders.
type plainRenderer struct {
	mutex   sync.Mutex
	loading bool
	message string
	panels  []repeater.Panel
	changed chan struct{}
}

func newPlainRenderer() *plainRenderer {
	return &plainRenderer{loading: true, changed: make(chan struct{}, 1)}
}

func (renderer *plainRenderer) RenderLoading() {
	renderer.set(true, "", nil)
}

func (renderer *plainRenderer) RenderEmpty() {
	renderer.set(false, "", nil)
}

func (renderer *plainRenderer) RenderError(message string) {
	renderer.mutex.Lock()
	panels := renderer.panels
	renderer.mutex.Unlock()
	renderer.set(false, message, panels)
}

func (renderer *plainRenderer) RenderItems(panels []repeater.Panel, layout repeater.Layout) {
	renderer.set(false, "", append([]repeater.Panel(nil), panels...))
}

func (renderer *plainRenderer) set(loading bool, message string, panels []repeater.Panel) {
	renderer.mutex.Lock()
	renderer.loading = loading
	renderer.message = message
	renderer.panels = panels
	changed := renderer.changed
	renderer.mutex.Unlock()

	select {
	case changed <- struct{}{}:
	default:
	}
}

func (renderer *plainRenderer) snapshot() (loading bool, message string, panels []repeater.Panel, changed <-chan struct{}) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	return renderer.loading, renderer.message, renderer.panels, renderer.changed
}

// printView waits for the controller to settle and writes the current
// view as a table of panel labels and totals.
func printView(ctx context.Context, output io.Writer, controller *exploration.Controller, renderer *plainRenderer) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	select {
	case <-controller.Idle():
	case <-ctx.Done():
		return fmt.Errorf("waiting for variables: %w", ctx.Err())
	}

	view := controller.View()
	fmt.Fprintf(output, "%s\n", view.Type().Title())

	if view.Grid() == nil {
		item, ok := view.ActiveItem()
		if !ok {
			return nil
		}
		return printPanels(ctx, output, controller, []repeater.Panel{{Item: item}})
	}

	for {
		loading, message, panels, changed := renderer.snapshot()
		if !loading {
			if message != "" {
				fmt.Fprintf(output, "error: %s\n", message)
			}
			if len(panels) == 0 && message == "" {
				fmt.Fprintln(output, "no results")
				return nil
			}
			return printPanels(ctx, output, controller, panels)
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("waiting for grid: %w", ctx.Err())
		}
	}
}

func printPanels(ctx context.Context, output io.Writer, controller *exploration.Controller, panels []repeater.Panel) error {
	writer := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
	for _, panel := range panels {
		result := controller.FetchPanel(ctx, panel.Item)
		fmt.Fprintf(writer, "%s\t%s\n", panel.Item.Label, resultSummary(result))
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("fetching panels: %w", ctx.Err())
	}
	return nil
}

// resultSummary renders a fetched panel as its total across series.
func resultSummary(result datasource.Result) string {
	switch {
	case result.State == datasource.StateError:
		if result.Err != nil {
			return "error: " + result.Err.Error()
		}
		return "error"
	case result.Empty():
		return "no data"
	}
	var total float64
	for _, series := range result.Series {
		total += series.Total()
	}
	return tui.FormatValue(total)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package explorer

import "github.com/bureau-foundation/explore-profiles/lib/repeater"

const (
	// gridPanelWidth is the narrowest panel the grid layout packs
	// columns down to.
	gridPanelWidth = 36
	gridMaxColumns = 4

	gridPanelHeight = 10
	rowsPanelHeight = 8
)

// geometry is how a layout places panels in the content area.
type geometry struct {
	columns     int
	panelWidth  int
	panelHeight int
	// rows is the number of panel rows the whole list needs.
	rows int
	// visibleRows is how many panel rows fit on screen.
	visibleRows int
}

// arrange computes the geometry for count panels in a width by height
// content area. The single layout shows one panel filling the area.
func arrange(layout repeater.Layout, count, width, height int) geometry {
	result := geometry{columns: 1, panelWidth: max(width, 1), panelHeight: rowsPanelHeight}
	switch layout {
	case repeater.LayoutGrid:
		result.columns = min(max(width/gridPanelWidth, 1), gridMaxColumns)
		result.panelWidth = max(width/result.columns, 1)
		result.panelHeight = gridPanelHeight
	case repeater.LayoutSingle:
		result.panelHeight = max(height, 1)
	}
	result.rows = (count + result.columns - 1) / result.columns
	result.visibleRows = max(height/result.panelHeight, 1)
	if layout == repeater.LayoutSingle {
		result.visibleRows = 1
	}
	return result
}

// scroll returns the first visible row that keeps the row holding
// focus on screen, starting from offset.
func (layout geometry) scroll(focus, offset int) int {
	row := focus / layout.columns
	if row < offset {
		return row
	}
	if row >= offset+layout.visibleRows {
		return row - layout.visibleRows + 1
	}
	return max(min(offset, max(layout.rows-layout.visibleRows, 0)), 0)
}

// window returns the panel index range shown from row offset.
func (layout geometry) window(offset, count int) (start, end int) {
	start = min(offset*layout.columns, count)
	end = min((offset+layout.visibleRows)*layout.columns, count)
	return start, end
}

// move returns the focus after moving by rows and columns, clamped to
// the panel list.
func (layout geometry) move(focus, count, rows, columns int) int {
	if count == 0 {
		return 0
	}
	row, column := focus/layout.columns, focus%layout.columns
	row = min(max(row+rows, 0), (count-1)/layout.columns)
	column = min(max(column+columns, 0), layout.columns-1)
	next := row*layout.columns + column
	return min(max(next, 0), count-1)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	plot "github.com/chriskim06/drawille-go"
	"github.com/dustin/go-humanize"
)

// Series is one labelled sequence of values to visualize.
type Series struct {
	Label  string
	Values []float64
}

// Total sums the series' values.
func (series Series) Total() float64 {
	var total float64
	for _, value := range series.Values {
		total += value
	}
	return total
}

// FormatValue renders value with an SI suffix and one decimal.
func FormatValue(value float64) string {
	return strings.TrimSpace(humanize.SIWithDigits(value, 1, ""))
}

// Visualization names, matching the panel types of the grid.
const (
	VisualTimeseries = "timeseries"
	VisualBarGauge   = "bargauge"
	VisualTable      = "table"
	VisualHistogram  = "histogram"
)

// RenderVisualization draws series as kind within width columns and
// height rows. Unknown kinds draw as a timeseries.
func RenderVisualization(theme Theme, kind string, series []Series, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(series) == 0 {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render("No data")
	}
	switch kind {
	case VisualBarGauge:
		return RenderBarGauge(theme, series, width, height)
	case VisualTable:
		return RenderTable(theme, series, width, height)
	case VisualHistogram:
		return RenderHistogram(theme, series, width, height)
	}
	return RenderTimeseries(theme, series, width, height)
}

// RenderTimeseries plots series as braille lines. The first series is
// highlighted.
func RenderTimeseries(theme Theme, series []Series, width, height int) string {
	data := make([][]float64, 0, len(series))
	longest := 0
	for _, entry := range series {
		data = append(data, entry.Values)
		longest = max(longest, len(entry.Values))
	}
	if longest == 0 {
		return ""
	}

	highlight, dim := plot.Red, plot.DimGray
	if !theme.DarkBackground {
		highlight, dim = plot.Black, plot.LightGray
	}
	colors := make([]plot.Color, len(data))
	for index := range colors {
		colors[index] = dim
	}
	colors[0] = highlight

	// One row for the scale legend.
	canvas := plot.NewCanvas(width, max(height-1, 1))
	canvas.NumDataPoints = longest
	canvas.ShowAxis = false
	canvas.LineColors = colors
	canvas.Fill(data)

	minimum, maximum := valueRange(series)
	legend := lipgloss.NewStyle().Foreground(theme.FaintText).Render(
		ansi.Truncate(fmt.Sprintf("%s … %s", FormatValue(minimum), FormatValue(maximum)), width, ""),
	)
	return canvas.String() + "\n" + legend
}

// RenderBarGauge draws one horizontal bar per series, scaled to the
// largest total.
func RenderBarGauge(theme Theme, series []Series, width, height int) string {
	labelWidth, valueWidth := columnWidths(series, width)
	barWidth := width - labelWidth - valueWidth - 2
	largest := 0.0
	for _, entry := range series {
		largest = math.Max(largest, entry.Total())
	}

	bar := lipgloss.NewStyle().Foreground(theme.BarColor)
	var rows []string
	for _, entry := range limit(series, height) {
		filled := 0
		if largest > 0 && barWidth > 0 {
			filled = int(math.Round(entry.Total() / largest * float64(barWidth)))
		}
		rows = append(rows, fmt.Sprintf("%s %s %s",
			padRight(entry.Label, labelWidth),
			bar.Render(strings.Repeat("█", filled))+strings.Repeat(" ", max(barWidth-filled, 0)),
			padLeft(FormatValue(entry.Total()), valueWidth),
		))
	}
	return strings.Join(rows, "\n")
}

// RenderTable lists each series' total and last value.
func RenderTable(theme Theme, series []Series, width, height int) string {
	labelWidth, valueWidth := columnWidths(series, width-8)
	header := lipgloss.NewStyle().Foreground(theme.FaintText).Render(
		padRight("series", labelWidth) + " " + padLeft("total", valueWidth) + " " + padLeft("last", valueWidth),
	)
	rows := []string{header}
	for _, entry := range limit(series, height-1) {
		last := 0.0
		if len(entry.Values) > 0 {
			last = entry.Values[len(entry.Values)-1]
		}
		rows = append(rows, padRight(entry.Label, labelWidth)+" "+
			padLeft(FormatValue(entry.Total()), valueWidth)+" "+
			padLeft(FormatValue(last), valueWidth))
	}
	return strings.Join(rows, "\n")
}

var histogramBlocks = []rune(" ▁▂▃▄▅▆▇█")

// RenderHistogram buckets every value of every series into width
// columns and draws the counts as block bars height rows tall.
func RenderHistogram(theme Theme, series []Series, width, height int) string {
	minimum, maximum := valueRange(series)
	buckets := HistogramCounts(series, width)
	largest := 0
	for _, count := range buckets {
		largest = max(largest, count)
	}
	barRows := max(height-1, 1)

	style := lipgloss.NewStyle().Foreground(theme.BarColor)
	rows := make([]string, barRows)
	for row := range rows {
		// Row 0 is the top.
		floor := float64(barRows-row-1) / float64(barRows)
		var builder strings.Builder
		for _, count := range buckets {
			level := 0.0
			if largest > 0 {
				level = float64(count) / float64(largest)
			}
			fraction := (level - floor) * float64(barRows)
			index := int(math.Round(math.Min(math.Max(fraction, 0), 1) * float64(len(histogramBlocks)-1)))
			builder.WriteRune(histogramBlocks[index])
		}
		rows[row] = style.Render(builder.String())
	}
	legend := lipgloss.NewStyle().Foreground(theme.FaintText).Render(
		ansi.Truncate(fmt.Sprintf("%s … %s", FormatValue(minimum), FormatValue(maximum)), width, ""),
	)
	return strings.Join(append(rows, legend), "\n")
}

// HistogramCounts distributes every value into buckets equal-width
// ranges between the smallest and largest value.
func HistogramCounts(series []Series, buckets int) []int {
	if buckets <= 0 {
		return nil
	}
	counts := make([]int, buckets)
	minimum, maximum := valueRange(series)
	span := maximum - minimum
	for _, entry := range series {
		for _, value := range entry.Values {
			index := 0
			if span > 0 {
				index = int((value - minimum) / span * float64(buckets))
			}
			counts[min(index, buckets-1)]++
		}
	}
	return counts
}

func valueRange(series []Series) (minimum, maximum float64) {
	first := true
	for _, entry := range series {
		for _, value := range entry.Values {
			if first {
				minimum, maximum = value, value
				first = false
				continue
			}
			minimum = math.Min(minimum, value)
			maximum = math.Max(maximum, value)
		}
	}
	return minimum, maximum
}

// columnWidths sizes the label and value columns of a row layout to
// fit width.
func columnWidths(series []Series, width int) (labelWidth, valueWidth int) {
	valueWidth = 6
	for _, entry := range series {
		labelWidth = max(labelWidth, ansi.StringWidth(entry.Label))
		valueWidth = max(valueWidth, len(FormatValue(entry.Total())))
	}
	return min(labelWidth, max(width/3, 1)), valueWidth
}

func limit(series []Series, rows int) []Series {
	if rows > 0 && len(series) > rows {
		return series[:rows]
	}
	return series
}

func padRight(text string, width int) string {
	text = ansi.Truncate(text, width, "…")
	return text + strings.Repeat(" ", max(width-ansi.StringWidth(text), 0))
}

func padLeft(text string, width int) string {
	text = ansi.Truncate(text, width, "…")
	return strings.Repeat(" ", max(width-ansi.StringWidth(text), 0)) + text
}

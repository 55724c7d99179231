// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/usage"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
)

// Terminal palette indices per provider. They approximate the hex colors used
// by the SVG renderer so the TUI and exported charts read the same.
var providerPalette = map[string]uint8{
	"s3":     214,
	"aws":    214,
	"azure":  33,
	"gcs":    35,
	"google": 35,
	"b2":     196,
	"local":  99,
	"nas":    99,
	"wasabi": 41,
	"minio":  205,
	"sftp":   44,
}

const (
	defaultPaletteIndex uint8 = 244
	totalPaletteIndex   uint8 = 250
)

func paletteIndex(provider string) uint8 {
	if idx, ok := providerPalette[strings.ToLower(strings.TrimSpace(provider))]; ok {
		return idx
	}
	return defaultPaletteIndex
}

// ProviderColor returns the terminal color for a provider.
func ProviderColor(provider string) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(int(paletteIndex(provider))))
}

// TotalColor is the color of the combined total line.
var TotalColor = lipgloss.Color(strconv.Itoa(int(totalPaletteIndex)))

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// scaleFor picks a binary unit so the chart axis stays readable.
func scaleFor(maxValue float64) (float64, string) {
	divisor := 1.0
	unit := 0
	for maxValue/divisor >= 1024 && unit < len(byteUnits)-1 {
		divisor *= 1024
		unit++
	}
	return divisor, byteUnits[unit]
}

// RenderUsageChart plots one line per provider plus the total. Values are
// shown in the largest binary unit that keeps the axis under 1024.
func RenderUsageChart(series *usage.Series, width, height int) string {
	if series == nil || series.Len() == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	width = max(width, 20)
	height = max(height, 3)

	divisor, unit := scaleFor(series.MaxValue)
	scale := func(values []float64) []float64 {
		return lo.Map(values, func(v float64, _ int) float64 { return v / divisor })
	}

	data := make([][]float64, 0, len(series.Providers)+1)
	colors := make([]asciigraph.AnsiColor, 0, len(series.Providers)+1)
	for _, name := range series.Providers {
		data = append(data, scale(series.Values[name]))
		colors = append(colors, asciigraph.AnsiColor(paletteIndex(name)))
	}
	if len(series.Providers) > 1 {
		data = append(data, scale(series.Totals))
		colors = append(colors, asciigraph.AnsiColor(totalPaletteIndex))
	}

	// A single point draws nothing useful; repeat it so the line is visible.
	if series.Len() == 1 {
		for i := range data {
			data[i] = []float64{data[i][0], data[i][0]}
		}
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("Storage (%s)", unit)),
	)
}

// RenderDateAxis labels the first and last timestamps under a chart.
func RenderDateAxis(series *usage.Series, width int) string {
	if series == nil || series.Len() == 0 {
		return ""
	}
	first := usage.FormatDateLabel(series.Timestamps[0])
	last := usage.FormatDateLabel(series.Timestamps[series.Len()-1])
	if series.Len() == 1 {
		return styles.HelpStyle.Render(first)
	}
	gap := max(width-len(first)-len(last), 1)
	return styles.HelpStyle.Render(first + strings.Repeat(" ", gap) + last)
}

// SeriesLegend builds legend entries for every provider in the series.
func SeriesLegend(series *usage.Series) []LegendItem {
	if series == nil {
		return nil
	}
	items := lo.Map(series.Providers, func(name string, _ int) LegendItem {
		return LegendItem{Label: name, Color: ProviderColor(name)}
	})
	if len(series.Providers) > 1 {
		items = append(items, LegendItem{Label: "total", Color: TotalColor})
	}
	return items
}

// RenderBarChart creates a horizontal bar chart of byte counts.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := lo.Max(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, len(l))
	}

	// Leave room for label and value
	barWidth := max(width-maxLabelLen-14, 10)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := lipgloss.NewStyle().Foreground(ProviderColor(label)).Render(strings.Repeat("█", barLen))

		line := fmt.Sprintf("%*s │%s %s", maxLabelLen, label, bar, usage.FormatBytes(v))
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := lo.Max(values)
	if maxVal <= 0 || math.IsNaN(maxVal) {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

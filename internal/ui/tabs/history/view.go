package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/ui/components"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

// View renders the history tab.
func (m *Model) View() string {
	h := m.state.GetUsage()
	errMsg := m.state.GetError(app.ResourceUsage)
	loading := m.state.IsLoading(app.ResourceUsage) || m.state.IsInitialLoading()

	switch {
	case h == nil && errMsg != "":
		return components.RenderError("Usage history unavailable", errMsg, m.width, m.height)
	case h == nil && loading:
		return components.RenderEmpty(fmt.Sprintf("Loading %s of usage history...", m.timeRange), m.width, m.height)
	case h == nil:
		return components.RenderEmpty("No usage history loaded. Press r to refresh.", m.width, m.height)
	}

	series, ok := usage.Aggregate(h.Points)

	sections := []string{m.renderHeader(h, series, errMsg, loading)}
	if ok {
		sections = append(sections, m.renderChart(series), m.renderProviders(series))
	} else {
		sections = append(sections, styles.CardStyle.Width(m.cardWidth()).Render(
			styles.HelpStyle.Render(usage.NoDataText)))
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return styles.CardWidth(m.width, 40, 0)
}

func (m *Model) renderRangeSelector() string {
	ranges := []models.TimeRange{models.TimeRange7Days, models.TimeRange30Days, models.TimeRange90Days}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		label := fmt.Sprintf("%dd", r.Days())
		if r == m.timeRange {
			parts = append(parts, styles.FocusedStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, styles.HelpStyle.Render(" "+label+" "))
		}
	}
	return styles.HelpStyle.Render("[t] ") + strings.Join(parts, " ")
}

func (m *Model) renderHeader(h *models.UsageHistory, series *usage.Series, errMsg string, loading bool) string {
	title := styles.TitleStyle.Render("Usage History: " + m.profileName())
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", m.renderRangeSelector())

	lines := []string{header}

	if series != nil && series.Len() > 0 {
		first := usage.FormatDateLabel(series.Timestamps[0])
		last := usage.FormatDateLabel(series.Timestamps[series.Len()-1])
		lines = append(lines, styles.HelpStyle.Render(
			fmt.Sprintf("Data: %s → %s (%d points, %d days requested)", first, last, series.Len(), h.Days)))
	}

	if h.FromCache {
		lines = append(lines, styles.WarningTextStyle.Render("◌ Showing cached history; the API could not be reached"))
	}
	if h.DroppedPoints > 0 || h.DroppedSamples > 0 {
		lines = append(lines, styles.WarningTextStyle.Render(fmt.Sprintf(
			"⚠ Ignored %d malformed points and %d provider samples", h.DroppedPoints, h.DroppedSamples)))
	}
	if errMsg != "" {
		lines = append(lines, styles.ErrorTextStyle.Render("✗ "+errMsg+" (press r to retry)"))
	}
	if loading {
		lines = append(lines, styles.InfoTextStyle.Render(fmt.Sprintf("Loading %s...", m.timeRange)))
	}
	if m.lastExport != "" {
		lines = append(lines, styles.SuccessTextStyle.Render("✓ Exported "+m.lastExport))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append(lines, "")...)
}

func (m *Model) renderChart(series *usage.Series) string {
	cardWidth := m.cardWidth()
	// Room for the y axis labels
	chartWidth := max(cardWidth-20, 30)
	chartHeight := max(min(m.height/3, 14), 6)

	rows := []string{
		fmt.Sprintf("%s %s",
			lipgloss.NewStyle().Foreground(styles.Primary).Render("◈"),
			styles.CardTitleStyle.Render("Storage by Provider")),
		"",
	}

	for line := range strings.SplitSeq(components.RenderUsageChart(series, chartWidth, chartHeight), "\n") {
		rows = append(rows, "  "+line)
	}
	rows = append(rows,
		"  "+components.RenderDateAxis(series, chartWidth+10),
		"",
		"  "+components.RenderLegend(components.SeriesLegend(series)),
	)

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderProviders(series *usage.Series) string {
	last := series.Len() - 1

	labelWidth := 10
	for _, name := range series.Providers {
		labelWidth = max(labelWidth, len(name)+2)
	}

	row := func(name string, values []float64, color lipgloss.Color) string {
		change := values[last] - values[0]
		sign := "+"
		if change < 0 {
			sign = "-"
		}
		changeStr := "no change"
		if change != 0 {
			changeStr = sign + usage.FormatBytes(abs(change))
		}
		return fmt.Sprintf("%s %s  %s  %s",
			lipgloss.NewStyle().Foreground(color).Width(labelWidth).Render(name),
			styles.ValueStyle.Width(12).Render(usage.FormatBytes(values[last])),
			lipgloss.NewStyle().Foreground(color).Render(components.RenderSparkline(values, 24)),
			styles.HelpStyle.Render(changeStr),
		)
	}

	rows := []string{
		fmt.Sprintf("%s %s",
			lipgloss.NewStyle().Foreground(styles.Primary).Render("▤"),
			styles.CardTitleStyle.Render("Latest")),
		"",
	}
	for _, name := range series.Providers {
		rows = append(rows, row(name, series.Values[name], components.ProviderColor(name)))
	}
	rows = append(rows, row("total", series.Totals, components.TotalColor))

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

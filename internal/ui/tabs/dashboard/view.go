package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/services/projection"
	"github.com/breeze-rmm/breeze-console/internal/ui/components"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

const maxJobRows = 8

// View renders the dashboard component.
func (m *Model) View() string {
	d := m.state.GetDashboard()
	if d == nil {
		return m.renderPlaceholder()
	}

	cardWidth := styles.CardWidth(m.width, 40, 0)
	sections := []string{
		m.renderTitle(d),
		m.renderStorageCard(d, cardWidth),
		m.renderTotalsCard(d, cardWidth),
	}
	if len(d.Providers) > 0 {
		sections = append(sections, m.renderProvidersCard(d, cardWidth))
	}
	sections = append(sections, m.renderJobsCard(cardWidth))

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderPlaceholder covers the states where no dashboard is available yet.
func (m *Model) renderPlaceholder() string {
	switch {
	case m.state.GetError(app.ResourceDashboard) != "":
		return components.RenderError("Backup dashboard unavailable",
			m.state.GetError(app.ResourceDashboard), m.width, m.height)
	case m.state.IsInitialLoading() || m.state.IsLoading(app.ResourceDashboard):
		return components.RenderLoading(m.spinner, m.width, m.height)
	case m.state.GetActiveProfile() == nil:
		return components.RenderEmpty(
			"No Breeze profile configured. Add one to profiles.json or set BREEZE_API_URL.",
			m.width, m.height)
	default:
		return components.RenderEmpty("No dashboard data yet. Press r to refresh.", m.width, m.height)
	}
}

func (m *Model) renderTitle(d *models.BackupDashboard) string {
	name := "Backups"
	if p := m.state.GetActiveProfile(); p != nil {
		name = p.DisplayName()
	}
	title := styles.TitleStyle.Render(name)
	subtitle := styles.HelpStyle.Render("Updated " + usage.FormatRelative(d.LastUpdated, m.now()))

	lines := []string{title, subtitle}
	if msg := m.state.GetError(app.ResourceDashboard); msg != "" {
		lines = append(lines, styles.WarningTextStyle.Render("⚠ Refresh failed: "+msg+" (press r to retry)"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(lines, "")...)
}

func cardHeader(icon, title string) string {
	return fmt.Sprintf("%s %s",
		lipgloss.NewStyle().Foreground(styles.Primary).Render(icon),
		styles.CardTitleStyle.Render(title))
}

func (m *Model) renderStorageCard(d *models.BackupDashboard, width int) string {
	used := d.Storage.UsedBytes
	total := d.Storage.TotalBytes

	rows := []string{cardHeader("◈", "Storage"), ""}

	if total > 0 {
		percent := usage.UsagePercent(used, total)
		rows = append(rows,
			m.usageBar.View(m.displayPercent(percent), "Used", width-6),
			styles.HelpStyle.Render(fmt.Sprintf("%s used of %s", usage.FormatBytes(used), usage.FormatBytes(total))),
		)
	} else {
		rows = append(rows, fmt.Sprintf("%s used %s",
			styles.ValueStyle.Bold(true).Render(usage.FormatBytes(used)),
			styles.HelpStyle.Render("(no storage limit reported)")))
	}

	rows = append(rows, "", m.renderProjection())

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderProjection() string {
	p := m.state.GetProjection()
	if p == nil {
		if m.state.IsLoading(app.ResourceUsage) {
			return components.LoadingBar(30, m.animationFrame)
		}
		return styles.HelpStyle.Render("Projection: waiting for usage history")
	}

	badge := styles.GetProjectionStyle(p.Status).Render(string(p.Status))
	parts := []string{
		"Projection " + badge,
		"Growth " + styles.ValueStyle.Render(projection.FormatGrowth(p.GrowthPerDay)),
		"Full in " + styles.ValueStyle.Render(projection.FormatTimeToFull(p)),
	}
	if p.Status == models.ProjectionUnknown {
		parts = parts[:1]
		parts = append(parts, styles.HelpStyle.Render(fmt.Sprintf("%d data points", p.DataPoints)))
	} else if p.Confidence != "" {
		parts = append(parts, styles.HelpStyle.Render(p.Confidence+" confidence"))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderTotalsCard(d *models.BackupDashboard, width int) string {
	t := d.Totals
	failed := fmt.Sprintf("%d", t.FailedLast24h)
	if t.FailedLast24h > 0 {
		failed = styles.ErrorTextStyle.Bold(true).Render(failed)
	}

	row := func(label, value string) string {
		return styles.LabelStyle.Render(label) + styles.ValueStyle.Render(value)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		row("Devices", humanize.Comma(int64(t.Devices))),
		row("Policies", humanize.Comma(int64(t.Policies))),
		row("Configs", humanize.Comma(int64(t.Configs))),
		row("Snapshots", humanize.Comma(int64(t.Snapshots))),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		row("Jobs (24h)", humanize.Comma(int64(t.JobsLast24h))),
		styles.LabelStyle.Render("Failed (24h)")+failed,
		row("Running", humanize.Comma(int64(t.RunningJobs))),
		row("Protected", usage.FormatBytes(t.ProtectedBytes)),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, cardHeader("◆", "Totals"), "", body))
}

func (m *Model) renderProvidersCard(d *models.BackupDashboard, width int) string {
	providers := lo.Filter(d.Providers, func(p models.ProviderSummary, _ int) bool { return p.Provider != "" })
	values := lo.Map(providers, func(p models.ProviderSummary, _ int) float64 { return p.UsedBytes })
	labels := lo.Map(providers, func(p models.ProviderSummary, _ int) string { return p.Provider })

	rows := []string{cardHeader("▤", "Providers"), "", components.RenderBarChart(values, labels, width-6)}

	counts := lo.Map(providers, func(p models.ProviderSummary, _ int) string {
		return fmt.Sprintf("%s: %d snapshots, %d configs", p.Provider, p.SnapshotCount, p.ConfigCount)
	})
	rows = append(rows, "", styles.HelpStyle.Render(strings.Join(counts, " · ")))

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// jobs returns the most recent jobs, preferring the jobs endpoint over the
// dashboard's embedded list.
func (m *Model) jobs() []models.BackupJob {
	jobs := m.state.GetJobs()
	if len(jobs) == 0 {
		if d := m.state.GetDashboard(); d != nil {
			jobs = d.RecentJobs
		}
	}
	if len(jobs) > maxJobRows {
		jobs = jobs[:maxJobRows]
	}
	return jobs
}

func (m *Model) renderJobsCard(width int) string {
	rows := []string{cardHeader("◷", "Recent Jobs"), ""}

	if msg := m.state.GetError(app.ResourceJobs); msg != "" {
		rows = append(rows, styles.WarningTextStyle.Render("⚠ Jobs unavailable: "+msg+" (press r to retry)"))
	}

	jobs := m.jobs()
	if len(jobs) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No backup jobs yet"))
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	for i := range jobs {
		rows = append(rows, m.renderJobRow(&jobs[i], i == m.selectedJob, width-6))
	}

	if m.selectedJob < len(jobs) {
		if j := jobs[m.selectedJob]; j.Error != "" {
			rows = append(rows, "", styles.ErrorTextStyle.Render("  "+j.Error))
		}
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderJobRow(j *models.BackupJob, selected bool, width int) string {
	prefix := "  "
	if selected {
		prefix = styles.FocusedStyle.Render("▸ ")
	}

	name := lo.CoalesceOrEmpty(j.PolicyName, j.DeviceName, j.ID)
	status := styles.GetJobStatusStyle(j.Status).Width(10).Render(j.Status)

	when := "pending"
	if !j.StartedAt.IsZero() {
		when = usage.FormatRelative(j.StartedAt, m.now())
	}

	detail := styles.HelpStyle.Render(fmt.Sprintf("%s  %s", when, usage.FormatBytes(j.BytesBackedUp)))
	if d := j.Duration(); d > 0 {
		detail += styles.HelpStyle.Render("  " + d.Round(time.Second).String())
	}

	nameWidth := max(width-lipgloss.Width(detail)-14, 12)
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-1]) + "…"
	}

	return prefix + status + lipgloss.NewStyle().Width(nameWidth).Render(name) + "  " + detail
}

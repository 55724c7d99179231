package integrations

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/ui/components"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
	"github.com/breeze-rmm/breeze-console/internal/usage"
	integrationsvc "github.com/breeze-rmm/breeze-console/internal/services/integrations"
)

const maxDeliveryRows = 6

// View renders the integrations tab.
func (m *Model) View() string {
	switch {
	case m.svc == nil:
		return components.RenderEmpty("Integrations are not available in this session.", m.width, m.height)
	case m.data == nil && m.loadErr != nil:
		return components.RenderError("Integrations unavailable", m.loadErr.Error(), m.width, m.height)
	case m.data == nil:
		return components.RenderEmpty("Loading integrations...", m.width, m.height)
	}

	cardWidth := styles.CardWidth(m.width, 40, 0)
	sections := []string{
		m.renderHeader(),
		m.renderMonitors(cardWidth),
		m.renderWebhooks(cardWidth),
		m.renderSettings(cardWidth),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader() string {
	lines := []string{styles.TitleStyle.Render("Integrations")}

	status := "Loaded " + usage.FormatRelative(m.data.LoadedAt, time.Now())
	if m.loading {
		status = "Reloading..."
	}
	lines = append(lines, styles.HelpStyle.Render(status))

	if m.busy != "" {
		lines = append(lines, styles.InfoTextStyle.Render("◌ "+m.busy+"..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(lines, "")...)
}

func (m *Model) cardHeader(s section, title string, count int) string {
	icon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	titleStyle := styles.SubTitleStyle
	if m.focus == s {
		icon = lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
		titleStyle = styles.CardTitleStyle
	}
	return fmt.Sprintf("%s %s %s", icon, titleStyle.Render(title), styles.HelpStyle.Render(fmt.Sprintf("(%d)", count)))
}

func (m *Model) card(s section, width int, rows []string) string {
	style := styles.CardStyle.Width(width)
	if m.focus == s {
		style = style.BorderForeground(styles.Primary)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func sectionError(err error) string {
	return styles.ErrorTextStyle.Render("  ✗ " + err.Error() + " (press r to retry)")
}

func (m *Model) rowPrefix(s section, i int) string {
	if m.focus == s && m.cursors[s] == i {
		return styles.FocusedStyle.Render("▸ ")
	}
	return "  "
}

func monitorStatus(mon *models.Monitor) string {
	switch {
	case !mon.Enabled:
		return lipgloss.NewStyle().Foreground(styles.Subtle).Render("◌ paused")
	case mon.IsDown():
		return styles.ErrorTextStyle.Bold(true).Render("● " + mon.Status)
	case mon.Status == "":
		return lipgloss.NewStyle().Foreground(styles.Subtle).Render("○ unknown")
	default:
		return styles.SuccessTextStyle.Render("● " + mon.Status)
	}
}

func (m *Model) renderMonitors(width int) string {
	monitors := m.data.Monitors
	rows := []string{m.cardHeader(sectionMonitors, "Monitors", len(monitors)), ""}

	if err := m.data.Err(integrationsvc.SectionMonitors); err != nil {
		rows = append(rows, sectionError(err))
	}
	if len(monitors) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No monitors configured"))
	}

	now := time.Now()
	for i := range monitors {
		mon := &monitors[i]
		checked := usage.FormatRelative(mon.LastCheckedAt, now)
		line := fmt.Sprintf("%s%s %s %s",
			m.rowPrefix(sectionMonitors, i),
			lipgloss.NewStyle().Width(12).Render(monitorStatus(mon)),
			lipgloss.NewStyle().Bold(true).Width(24).Render(mon.Name),
			styles.HelpStyle.Render(fmt.Sprintf("%s %s · %.0f ms · checked %s", mon.Type, mon.Target, mon.LastResponseMs, checked)),
		)
		rows = append(rows, line)
		if mon.LastError != "" && m.focus == sectionMonitors && m.cursors[sectionMonitors] == i {
			rows = append(rows, styles.ErrorTextStyle.Render("    "+mon.LastError))
		}
	}

	return m.card(sectionMonitors, width, rows)
}

func webhookStatus(hook *models.Webhook) string {
	switch {
	case !hook.Enabled:
		return lipgloss.NewStyle().Foreground(styles.Subtle).Render("◌ disabled")
	case hook.FailureCount > 0:
		return styles.WarningTextStyle.Render(fmt.Sprintf("▲ %d failing", hook.FailureCount))
	default:
		return styles.SuccessTextStyle.Render("● active")
	}
}

func (m *Model) renderWebhooks(width int) string {
	hooks := m.data.Webhooks
	rows := []string{m.cardHeader(sectionWebhooks, "Webhooks", len(hooks)), ""}

	if err := m.data.Err(integrationsvc.SectionWebhooks); err != nil {
		rows = append(rows, sectionError(err))
	}
	if len(hooks) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No webhooks configured"))
	}

	for i := range hooks {
		hook := &hooks[i]
		events := strings.Join(hook.Events, ", ")
		if events == "" {
			events = "no events"
		}
		line := fmt.Sprintf("%s%s %s %s",
			m.rowPrefix(sectionWebhooks, i),
			lipgloss.NewStyle().Width(14).Render(webhookStatus(hook)),
			lipgloss.NewStyle().Bold(true).Width(24).Render(hook.Name),
			styles.HelpStyle.Render(hook.URL+" · "+events),
		)
		rows = append(rows, line)

		if hook.ID == m.deliveryOf {
			rows = append(rows, m.renderDeliveries()...)
		}
	}

	return m.card(sectionWebhooks, width, rows)
}

func (m *Model) renderDeliveries() []string {
	if m.deliveryErr != nil {
		return []string{styles.ErrorTextStyle.Render("    deliveries: " + m.deliveryErr.Error())}
	}
	if len(m.deliveries) == 0 {
		return []string{styles.HelpStyle.Render("    No deliveries yet")}
	}

	now := time.Now()
	shown := m.deliveries[:min(len(m.deliveries), maxDeliveryRows)]
	lines := make([]string, 0, len(shown)+1)
	for i := range shown {
		d := &shown[i]
		code := styles.SuccessTextStyle.Render(fmt.Sprintf("%d", d.ResponseCode))
		if !d.Succeeded() {
			code = styles.ErrorTextStyle.Render(fmt.Sprintf("%d", d.ResponseCode))
		}
		detail := fmt.Sprintf("%s · %d ms · %s", d.Event, d.DurationMs, usage.FormatRelative(d.DeliveredAt, now))
		if d.Error != "" {
			detail += " · " + d.Error
		}
		lines = append(lines, "    "+code+" "+styles.HelpStyle.Render(detail))
	}
	if rest := len(m.deliveries) - len(shown); rest > 0 {
		lines = append(lines, styles.HelpStyle.Render(fmt.Sprintf("    … %d more", rest)))
	}
	return lines
}

func (m *Model) renderSettings(width int) string {
	summaries := m.data.Summaries()
	rows := []string{m.cardHeader(sectionSettings, "Integrations", len(summaries)), ""}

	for _, name := range []string{integrationsvc.SectionPSA, integrationsvc.SectionMonitoring, integrationsvc.SectionTicketing} {
		if err := m.data.Err(name); err != nil {
			rows = append(rows, sectionError(fmt.Errorf("%s: %w", name, err)))
		}
	}
	for _, kind := range models.ChatKinds {
		if err := m.data.Err(kind); err != nil {
			rows = append(rows, sectionError(fmt.Errorf("%s: %w", kind, err)))
		}
	}

	for i, s := range summaries {
		var status string
		switch {
		case !s.Configured:
			status = lipgloss.NewStyle().Foreground(styles.Subtle).Render("○ not configured")
		case s.Enabled:
			status = styles.SuccessTextStyle.Render("● enabled")
		default:
			status = styles.WarningTextStyle.Render("◌ disabled")
		}

		provider := s.Provider
		if provider == "" {
			provider = "-"
		}
		extra := ""
		if s.Testable {
			extra = styles.HelpStyle.Render("  [t] test")
		}

		rows = append(rows, fmt.Sprintf("%s%s %s %s%s",
			m.rowPrefix(sectionSettings, i),
			lipgloss.NewStyle().Bold(true).Width(18).Render(s.Name),
			lipgloss.NewStyle().Width(18).Render(status),
			styles.HelpStyle.Render(provider),
			extra,
		))
	}

	return m.card(sectionSettings, width, rows)
}

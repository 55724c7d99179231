package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
	"github.com/breeze-rmm/breeze-console/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderProfilesCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, profiles and version")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return styles.CardWidth(m.width, 50, 90)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if c := m.config; c != nil {
		rows = append(rows,
			renderRow("API URL", orNone(c.APIURL)),
			renderRow("API Token", m.token(c.APIToken)),
			renderRow("Profiles File", c.ProfilesPath),
			renderRow("Database", c.DatabasePath),
			renderRow("Refresh", c.RefreshInterval.String()),
			renderRow("History Window", fmt.Sprintf("%d days", c.UsageHistoryDays)),
			renderRow("Listen Address", c.ListenAddr),
			renderRow("Log Level", orNone(c.LogLevel)),
			renderRow("Log File", orNone(c.LogFile)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderProfilesCard() string {
	profiles := m.state.GetProfiles()
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Profiles (%d)", len(profiles))), ""}

	if len(profiles) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No profiles. Set BREEZE_API_URL and BREEZE_API_TOKEN or add one to the profiles file."))
	}

	activeKey := ""
	if p := m.state.GetActiveProfile(); p != nil {
		activeKey = p.Key()
	}

	for i := range profiles {
		p := &profiles[i]
		marker := "  "
		name := p.DisplayName()
		if p.Key() == activeKey {
			marker = styles.SuccessTextStyle.Render("● ")
			name = lipgloss.NewStyle().Bold(true).Render(name)
		}
		detail := p.APIURL + "  " + m.token(p.Token)
		if !p.Valid() {
			detail += "  " + styles.WarningTextStyle.Render("(incomplete)")
		}
		rows = append(rows, marker+lipgloss.NewStyle().Width(20).Render(name)+" "+styles.HelpStyle.Render(detail))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Breeze Console"),
		"",
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows,
			"",
			fmt.Sprintf("Cached points: %s  Job events: %s",
				styles.InfoTextStyle.Render(humanize.Comma(int64(stats.CachedPoints))),
				styles.InfoTextStyle.Render(humanize.Comma(int64(stats.JobEvents)))),
		)
	}
	if t := m.state.GetLastUpdated(); !t.IsZero() {
		rows = append(rows, styles.HelpStyle.Render("Last refresh "+humanize.Time(t)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// token masks all but the last four characters unless tokens are shown.
func (m *Model) token(t string) string {
	switch {
	case t == "":
		return "(none)"
	case m.showTokens:
		return t
	case len(t) <= 4:
		return strings.Repeat("•", len(t))
	default:
		return strings.Repeat("•", 8) + t[len(t)-4:]
	}
}

func renderRow(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

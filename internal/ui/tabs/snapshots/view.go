package snapshots

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/ui/components"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

// View renders the snapshots tab.
func (m *Model) View() string {
	if m.svc == nil {
		return components.RenderEmpty("Snapshots are not available in this session.", m.width, m.height)
	}
	if m.openID != "" {
		return m.viewTree()
	}
	return m.viewList()
}

func (m *Model) viewList() string {
	switch {
	case len(m.snapshots) == 0 && m.listErr != nil:
		return components.RenderError("Snapshots unavailable", m.listErr.Error(), m.width, m.height)
	case len(m.snapshots) == 0 && (m.listLoading || !m.loadedOnce):
		return components.RenderEmpty("Loading snapshots...", m.width, m.height)
	case len(m.snapshots) == 0:
		return components.RenderEmpty("No snapshots yet.", m.width, m.height)
	}

	cardWidth := styles.CardWidth(m.width, 40, 0)
	lines := []string{
		styles.TitleStyle.Render(fmt.Sprintf("Snapshots (%d)", len(m.snapshots))),
	}
	if m.listErr != nil {
		lines = append(lines, styles.ErrorTextStyle.Render("✗ "+m.listErr.Error()+" (press r to retry)"))
	}
	lines = append(lines, m.footer()...)
	lines = append(lines, "")

	header := fmt.Sprintf("  %-20s %-20s %-10s %10s  %s", "TAKEN", "DEVICE", "PROVIDER", "SIZE", "ID")
	rows := []string{styles.TableHeaderStyle.Render(header)}

	// Keep the cursor row on screen.
	visible := max(m.height-len(lines)-6, 3)
	start := max(0, m.cursor-visible+1)
	end := min(len(m.snapshots), start+visible)

	now := m.now()
	for i := start; i < end; i++ {
		s := &m.snapshots[i]
		row := fmt.Sprintf("  %-20s %-20s %-10s %10s  %s",
			usage.FormatRelative(s.Timestamp, now),
			lo.Ellipsis(lo.CoalesceOrEmpty(s.DeviceName, "-"), 20),
			lo.CoalesceOrEmpty(s.Provider, "-"),
			humanize.IBytes(uint64(max(s.Size, 0))),
			s.ID,
		)
		if i == m.cursor {
			row = styles.SelectedRowStyle.Render(row)
		}
		rows = append(rows, row)
	}
	if end < len(m.snapshots) {
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … %d more", len(m.snapshots)-end)))
	}

	card := styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append(lines, card)...))
}

func (m *Model) viewTree() string {
	switch {
	case m.detail == nil && m.detailErr != nil:
		return components.RenderError("Snapshot "+m.openID+" unavailable", m.detailErr.Error(), m.width, m.height)
	case m.detail == nil:
		return components.RenderEmpty("Loading snapshot "+m.openID+"...", m.width, m.height)
	}

	s := m.detail
	title := styles.TitleStyle.Render("Snapshot " + s.ID)
	meta := styles.HelpStyle.Render(fmt.Sprintf("%s · %s · %s · %d files · %s",
		lo.CoalesceOrEmpty(s.DeviceName, "unknown device"),
		lo.CoalesceOrEmpty(s.Provider, "unknown provider"),
		s.Timestamp.Local().Format("2006-01-02 15:04"),
		len(s.Files),
		humanize.IBytes(uint64(max(s.Size, 0))),
	))

	lines := []string{title, meta}
	if m.detailErr != nil {
		lines = append(lines, styles.ErrorTextStyle.Render("✗ "+m.detailErr.Error()+" (press r to retry)"))
	}
	lines = append(lines, m.footer()...)
	lines = append(lines, "")

	cardWidth := styles.CardWidth(m.width, 40, 0)
	treeHeight := max(m.height-len(lines)-4, 3)
	card := styles.CardStyle.Width(cardWidth).Render(m.tree.View(cardWidth-4, treeHeight))

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append(lines, card)...))
}

func (m *Model) footer() []string {
	switch {
	case m.pending != nil:
		return []string{styles.WarningTextStyle.Render(
			fmt.Sprintf("Restore %s? press y to confirm, n to cancel", m.pending.label()))}
	case m.restoring:
		return []string{styles.InfoTextStyle.Render("◌ Requesting restore...")}
	case m.listLoading && m.openID == "":
		return []string{styles.InfoTextStyle.Render("Reloading...")}
	}
	return nil
}

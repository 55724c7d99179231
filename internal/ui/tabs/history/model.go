// Package history provides the usage-history tab.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Export      key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export SVG"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state     *app.State
	now       func() time.Time
	exportDir string
	keys      keyMap
	viewport  viewport.Model
	width     int
	height    int

	timeRange  models.TimeRange
	lastExport string
}

// New creates a history tab starting at the window closest to days. Exports
// are written to exportDir, or the working directory when it is empty.
func New(state *app.State, days int, exportDir string) *Model {
	return &Model{
		state:     state,
		now:       time.Now,
		exportDir: exportDir,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRangeForDays(days),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataUpdatedMsg:
		if msg.Resource == app.ResourceUsage {
			if h := m.state.GetUsage(); h != nil && h.Days > 0 {
				m.timeRange = models.TimeRangeForDays(h.Days)
			}
		}

	case app.ExportResultMsg:
		if msg.Error == nil {
			m.lastExport = msg.Path
		}

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		days := m.timeRange.Days()
		return func() tea.Msg { return app.SetHistoryDaysMsg{Days: days} }

	case key.Matches(msg, m.keys.Export):
		h := m.state.GetUsage()
		if !h.HasData() {
			return app.Notify(app.NotificationWarning, "No usage history to export")
		}
		return exportCmd(h, m.exportPath(h), m.chartTitle(h))

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func (m *Model) profileName() string {
	if p := m.state.GetActiveProfile(); p != nil {
		return p.DisplayName()
	}
	return "breeze"
}

func (m *Model) chartTitle(h *models.UsageHistory) string {
	return fmt.Sprintf("%s storage usage, last %d days", m.profileName(), h.Days)
}

func (m *Model) exportPath(h *models.UsageHistory) string {
	name := fmt.Sprintf("breeze-usage-%s-%dd-%s.svg",
		slug(m.profileName()), h.Days, m.now().Format("20060102-150405"))
	return filepath.Join(m.exportDir, name)
}

// slug lowercases s and collapses everything but letters and digits to dashes.
func slug(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, s)
	parts := strings.FieldsFunc(mapped, func(r rune) bool { return r == '-' })
	if len(parts) == 0 {
		return "profile"
	}
	return strings.Join(parts, "-")
}

// exportCmd renders the history to an SVG file.
func exportCmd(h *models.UsageHistory, path, title string) tea.Cmd {
	points := h.Points
	return func() tea.Msg {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return app.ExportResultMsg{Error: fmt.Errorf("create export dir: %w", err)}
			}
		}

		f, err := os.Create(path)
		if err != nil {
			return app.ExportResultMsg{Error: fmt.Errorf("create %s: %w", path, err)}
		}

		if err := usage.RenderSVG(f, points, usage.SVGOptions{Title: title}); err != nil {
			_ = f.Close()
			return app.ExportResultMsg{Error: fmt.Errorf("render chart: %w", err)}
		}
		if err := f.Close(); err != nil {
			return app.ExportResultMsg{Error: fmt.Errorf("write %s: %w", path, err)}
		}

		logger.Info("Exported usage chart", "path", path, "points", len(points))
		return app.ExportResultMsg{Path: path}
	}
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange, m.keys.Export, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Export, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}

// Package integrations provides the tab for monitors, webhooks and
// third-party integration settings.
package integrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/models"
	integrationsvc "github.com/breeze-rmm/breeze-console/internal/services/integrations"
)

const actionTimeout = 30 * time.Second

// Service is the part of the integrations service the tab drives.
type Service interface {
	State() *integrationsvc.State
	Load(ctx context.Context) (*integrationsvc.State, error)
	Deliveries(ctx context.Context, webhookID string) ([]models.WebhookDelivery, error)
	CheckMonitor(ctx context.Context, id string) (*models.MonitorCheck, error)
	TestWebhook(ctx context.Context, id string) (*models.TestResult, error)
	SetWebhookEnabled(ctx context.Context, id string, enabled bool) (*models.Webhook, error)
	TestMonitoring(ctx context.Context) (*models.TestResult, error)
	TestTicketing(ctx context.Context) (*models.TestResult, error)
	SetChatEnabled(ctx context.Context, kind string, enabled bool) (*models.ChatIntegration, error)
}

// section is one focusable list in the tab.
type section int

const (
	sectionMonitors section = iota
	sectionWebhooks
	sectionSettings
	sectionCount
)

func (s section) String() string {
	switch s {
	case sectionMonitors:
		return "Monitors"
	case sectionWebhooks:
		return "Webhooks"
	default:
		return "Integrations"
	}
}

type keyMap struct {
	NextSection key.Binding
	PrevSection key.Binding
	Up          key.Binding
	Down        key.Binding
	Deliveries  key.Binding
	Test        key.Binding
	Toggle      key.Binding
	Refresh     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextSection: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next section"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev section"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Deliveries: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "webhook deliveries"),
		),
		Test: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "run test"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "enable/disable"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

type loadedMsg struct {
	state   *integrationsvc.State
	err     error
	profile string
}

type deliveriesMsg struct {
	err        error
	webhookID  string
	deliveries []models.WebhookDelivery
}

// actionResultMsg reports a test or toggle. The service has already folded
// any state change into its cached State.
type actionResultMsg struct {
	err     error
	message string
	failed  bool
}

// Model represents the integrations tab state.
type Model struct {
	state    *app.State
	svc      Service
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	data          *integrationsvc.State
	loadErr       error
	loadedProfile string
	loading       bool
	busy          string

	focus       section
	cursors     [sectionCount]int
	deliveries  []models.WebhookDelivery
	deliveryOf  string
	deliveryErr error
}

// New creates the integrations tab. A nil service renders a placeholder.
func New(state *app.State, svc Service) *Model {
	return &Model{
		state:    state,
		svc:      svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init does nothing; the tab loads when it is first shown.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) activeProfileKey() string {
	if p := m.state.GetActiveProfile(); p != nil {
		return p.Key()
	}
	return ""
}

func (m *Model) needsLoad() bool {
	if m.loading || m.svc == nil {
		return false
	}
	return (m.data == nil && m.loadErr == nil) || m.loadedProfile != m.activeProfileKey()
}

func (m *Model) load() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	m.loading = true
	svc := m.svc
	profile := m.activeProfileKey()
	return func() tea.Msg {
		state, err := svc.Load(context.Background())
		return loadedMsg{state: state, err: err, profile: profile}
	}
}

// Update handles messages for the integrations tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		if msg.Tab == app.TabIntegrations && m.needsLoad() {
			return m, m.load()
		}

	case app.DataUpdatedMsg:
		if msg.Resource == app.ResourceProfiles && m.needsLoad() {
			return m, m.load()
		}

	case loadedMsg:
		m.loading = false
		m.loadedProfile = msg.profile
		m.loadErr = msg.err
		m.data = msg.state
		m.clampCursors()
		if msg.err != nil {
			return m, app.Notify(app.NotificationError, "Integrations: "+msg.err.Error())
		}

	case deliveriesMsg:
		m.busy = ""
		m.deliveryOf = msg.webhookID
		m.deliveries = msg.deliveries
		m.deliveryErr = msg.err

	case actionResultMsg:
		m.busy = ""
		if m.svc != nil {
			m.data = m.svc.State()
		}
		switch {
		case msg.err != nil:
			return m, app.Notify(app.NotificationError, msg.err.Error())
		case msg.failed:
			return m, app.Notify(app.NotificationWarning, msg.message)
		default:
			return m, app.Notify(app.NotificationSuccess, msg.message)
		}

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return nil
		}
		return m.load()
	case key.Matches(msg, m.keys.NextSection):
		m.focus = (m.focus + 1) % sectionCount
	case key.Matches(msg, m.keys.PrevSection):
		m.focus = (m.focus + sectionCount - 1) % sectionCount
	case key.Matches(msg, m.keys.Down):
		if n := m.rowCount(m.focus); n > 0 {
			m.cursors[m.focus] = (m.cursors[m.focus] + 1) % n
		}
	case key.Matches(msg, m.keys.Up):
		if n := m.rowCount(m.focus); n > 0 {
			m.cursors[m.focus] = (m.cursors[m.focus] - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Deliveries):
		return m.loadDeliveries()
	case key.Matches(msg, m.keys.Test):
		return m.runTest()
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleEnabled()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) rowCount(s section) int {
	if m.data == nil {
		return 0
	}
	switch s {
	case sectionMonitors:
		return len(m.data.Monitors)
	case sectionWebhooks:
		return len(m.data.Webhooks)
	default:
		return len(m.data.Summaries())
	}
}

func (m *Model) clampCursors() {
	for s := range sectionCount {
		m.cursors[s] = min(m.cursors[s], max(m.rowCount(s)-1, 0))
	}
}

func (m *Model) selectedMonitor() *models.Monitor {
	if m.data == nil || m.cursors[sectionMonitors] >= len(m.data.Monitors) {
		return nil
	}
	return &m.data.Monitors[m.cursors[sectionMonitors]]
}

func (m *Model) selectedWebhook() *models.Webhook {
	if m.data == nil || m.cursors[sectionWebhooks] >= len(m.data.Webhooks) {
		return nil
	}
	return &m.data.Webhooks[m.cursors[sectionWebhooks]]
}

func (m *Model) selectedSummary() *models.IntegrationSummary {
	rows := m.data.Summaries()
	if m.cursors[sectionSettings] >= len(rows) {
		return nil
	}
	return &rows[m.cursors[sectionSettings]]
}

// action wraps a service call in a timeout and turns its outcome into an
// actionResultMsg.
func (m *Model) action(busy string, fn func(ctx context.Context) (string, bool, error)) tea.Cmd {
	if m.busy != "" {
		return nil
	}
	m.busy = busy
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		message, failed, err := fn(ctx)
		return actionResultMsg{message: message, failed: failed, err: err}
	}
}

func describeTest(subject string, r *models.TestResult) (string, bool) {
	if r == nil {
		return subject + ": no result", true
	}
	detail := r.Message
	if detail == "" && r.StatusCode != 0 {
		detail = fmt.Sprintf("HTTP %d", r.StatusCode)
	}
	if r.LatencyMs > 0 {
		detail = fmt.Sprintf("%s (%.0f ms)", detail, r.LatencyMs)
	}
	if r.Success {
		return fmt.Sprintf("%s test passed %s", subject, detail), false
	}
	return fmt.Sprintf("%s test failed %s", subject, detail), true
}

func (m *Model) runTest() tea.Cmd {
	if m.svc == nil || m.data == nil {
		return nil
	}
	svc := m.svc

	switch m.focus {
	case sectionMonitors:
		mon := m.selectedMonitor()
		if mon == nil {
			return nil
		}
		id, name := mon.ID, mon.Name
		return m.action("Checking "+name, func(ctx context.Context) (string, bool, error) {
			check, err := svc.CheckMonitor(ctx, id)
			if err != nil {
				return "", false, err
			}
			if check.Error != "" {
				return fmt.Sprintf("%s is %s: %s", name, check.Status, check.Error), true, nil
			}
			return fmt.Sprintf("%s is %s (%.0f ms)", name, check.Status, check.ResponseMs), false, nil
		})

	case sectionWebhooks:
		hook := m.selectedWebhook()
		if hook == nil {
			return nil
		}
		id, name := hook.ID, hook.Name
		return m.action("Testing "+name, func(ctx context.Context) (string, bool, error) {
			res, err := svc.TestWebhook(ctx, id)
			if err != nil {
				return "", false, err
			}
			msg, failed := describeTest(name, res)
			return msg, failed, nil
		})

	default:
		row := m.selectedSummary()
		if row == nil {
			return nil
		}
		if !row.Testable {
			return app.Notify(app.NotificationInfo, row.Name+" has no test action")
		}
		test := svc.TestMonitoring
		if row.Name == "Ticketing" {
			test = svc.TestTicketing
		}
		name := row.Name
		return m.action("Testing "+name, func(ctx context.Context) (string, bool, error) {
			res, err := test(ctx)
			if errors.Is(err, integrationsvc.ErrNotConfigured) {
				return name + " is not configured", true, nil
			}
			if err != nil {
				return "", false, err
			}
			msg, failed := describeTest(name, res)
			return msg, failed, nil
		})
	}
}

func (m *Model) toggleEnabled() tea.Cmd {
	if m.svc == nil || m.data == nil {
		return nil
	}
	svc := m.svc

	switch m.focus {
	case sectionWebhooks:
		hook := m.selectedWebhook()
		if hook == nil {
			return nil
		}
		id, name, enable := hook.ID, hook.Name, !hook.Enabled
		return m.action("Updating "+name, func(ctx context.Context) (string, bool, error) {
			if _, err := svc.SetWebhookEnabled(ctx, id, enable); err != nil {
				return "", false, err
			}
			return fmt.Sprintf("%s %s", name, enabledWord(enable)), false, nil
		})

	case sectionSettings:
		row := m.selectedSummary()
		if row == nil || !isChatKind(row.Provider) {
			return app.Notify(app.NotificationInfo, "Only webhooks and chat integrations can be toggled here")
		}
		kind, name, enable := row.Provider, row.Name, !row.Enabled
		return m.action("Updating "+name, func(ctx context.Context) (string, bool, error) {
			_, err := svc.SetChatEnabled(ctx, kind, enable)
			if errors.Is(err, integrationsvc.ErrNotConfigured) {
				return name + " has no webhook URL configured", true, nil
			}
			if err != nil {
				return "", false, err
			}
			return fmt.Sprintf("%s %s", name, enabledWord(enable)), false, nil
		})
	}
	return nil
}

func isChatKind(kind string) bool {
	return lo.Contains(models.ChatKinds, kind)
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func (m *Model) loadDeliveries() tea.Cmd {
	if m.focus != sectionWebhooks || m.svc == nil || m.busy != "" {
		return nil
	}
	hook := m.selectedWebhook()
	if hook == nil {
		return nil
	}
	svc, id := m.svc, hook.ID
	m.busy = "Loading deliveries for " + hook.Name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		deliveries, err := svc.Deliveries(ctx, id)
		return deliveriesMsg{webhookID: id, deliveries: deliveries, err: err}
	}
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.NextSection, m.keys.Test, m.keys.Toggle, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextSection, m.keys.PrevSection, m.keys.Up, m.keys.Down},
		{m.keys.Deliveries, m.keys.Test, m.keys.Toggle},
		{m.keys.Refresh},
	}
}

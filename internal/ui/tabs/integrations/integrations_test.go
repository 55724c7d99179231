package integrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/models"
	integrationsvc "github.com/breeze-rmm/breeze-console/internal/services/integrations"
)

type fakeService struct {
	state   *integrationsvc.State
	loadErr error
	loads   int

	deliveries []models.WebhookDelivery
	testResult *models.TestResult
	testErr    error

	checked       string
	testedWebhook string
	webhookToggle map[string]bool
	chatToggle    map[string]bool
}

func (f *fakeService) State() *integrationsvc.State { return f.state }

func (f *fakeService) Load(context.Context) (*integrationsvc.State, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.state, nil
}

func (f *fakeService) Deliveries(context.Context, string) ([]models.WebhookDelivery, error) {
	return f.deliveries, nil
}

func (f *fakeService) CheckMonitor(_ context.Context, id string) (*models.MonitorCheck, error) {
	f.checked = id
	return &models.MonitorCheck{MonitorID: id, Status: "up", ResponseMs: 12}, nil
}

func (f *fakeService) TestWebhook(_ context.Context, id string) (*models.TestResult, error) {
	f.testedWebhook = id
	return f.testResult, f.testErr
}

func (f *fakeService) SetWebhookEnabled(_ context.Context, id string, enabled bool) (*models.Webhook, error) {
	if f.webhookToggle == nil {
		f.webhookToggle = map[string]bool{}
	}
	f.webhookToggle[id] = enabled
	return &models.Webhook{ID: id, Enabled: enabled}, nil
}

func (f *fakeService) TestMonitoring(context.Context) (*models.TestResult, error) {
	return nil, integrationsvc.ErrNotConfigured
}

func (f *fakeService) TestTicketing(context.Context) (*models.TestResult, error) {
	return f.testResult, f.testErr
}

func (f *fakeService) SetChatEnabled(_ context.Context, kind string, enabled bool) (*models.ChatIntegration, error) {
	if f.chatToggle == nil {
		f.chatToggle = map[string]bool{}
	}
	f.chatToggle[kind] = enabled
	return &models.ChatIntegration{Kind: kind, Enabled: enabled, WebhookURL: "https://hooks.example.com"}, nil
}

func sampleState() *integrationsvc.State {
	return &integrationsvc.State{
		Errors: map[string]error{integrationsvc.SectionPSA: errors.New("HTTP 500")},
		Monitors: []models.Monitor{
			{ID: "m1", Name: "Gateway", Type: "ping", Target: "10.0.0.1", Status: "up", Enabled: true},
			{ID: "m2", Name: "Mail", Type: "tcp", Target: "mail:25", Status: "down", LastError: "connection refused", Enabled: true},
		},
		Webhooks: []models.Webhook{
			{ID: "w1", Name: "Ops", URL: "https://ops.example.com/hook", Events: []string{"alert.created"}, Enabled: true},
		},
		Ticketing: &models.TicketingIntegration{Provider: "jira", URL: "https://jira.example.com", Enabled: true},
		Chat: map[string]*models.ChatIntegration{
			models.ChatSlack: {Kind: models.ChatSlack, WebhookURL: "https://hooks.slack.com/x", Enabled: true},
		},
	}
}

func newTestModel(t *testing.T, svc *fakeService) *Model {
	t.Helper()
	state := app.NewState()
	profiles := []models.Profile{{ID: "p1", Name: "Acme", APIURL: "https://acme.example.com", Token: "x"}}
	state.SetProfiles(profiles, &profiles[0])

	m := New(state, svc)
	m.SetSize(120, 80)
	return m
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds msg to the model and then feeds back whatever the returned
// command produces, once.
func run(t *testing.T, m *Model, msg tea.Msg) tea.Msg {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	out := cmd()
	_, follow := m.Update(out)
	if follow != nil {
		return follow()
	}
	return out
}

func TestLoadsOnTabSwitch(t *testing.T) {
	svc := &fakeService{state: sampleState()}
	m := newTestModel(t, svc)

	if cmd := m.Init(); cmd != nil {
		t.Error("Init should not load")
	}

	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})
	if svc.loads != 1 {
		t.Fatalf("loads = %d, want 1", svc.loads)
	}
	if m.data == nil {
		t.Fatal("data should be set after load")
	}

	// Already loaded for this profile.
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabIntegrations}); cmd != nil {
		t.Error("second switch should not reload")
	}
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabDashboard}); cmd != nil {
		t.Error("switching to another tab should not load")
	}
}

func TestReloadsOnProfileChange(t *testing.T) {
	svc := &fakeService{state: sampleState()}
	m := newTestModel(t, svc)
	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})

	profiles := []models.Profile{
		{ID: "p1", Name: "Acme", APIURL: "https://acme.example.com", Token: "x"},
		{ID: "p2", Name: "Beta", APIURL: "https://beta.example.com", Token: "y"},
	}
	m.state.SetProfiles(profiles, &profiles[1])

	run(t, m, app.DataUpdatedMsg{Resource: app.ResourceProfiles})
	if svc.loads != 2 {
		t.Errorf("loads = %d, want 2", svc.loads)
	}
}

func TestLoadError(t *testing.T) {
	svc := &fakeService{loadErr: errors.New("no route to host")}
	m := newTestModel(t, svc)

	out := run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})
	note, ok := out.(app.AddNotificationMsg)
	if !ok || note.Type != app.NotificationError {
		t.Fatalf("got %#v, want error notification", out)
	}

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Integrations unavailable") || !strings.Contains(view, "no route to host") {
		t.Errorf("view = %q", view)
	}
}

func TestView(t *testing.T) {
	svc := &fakeService{state: sampleState()}
	m := newTestModel(t, svc)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "Loading integrations") {
		t.Errorf("view before load = %q", view)
	}

	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})
	view := ansi.Strip(m.View())
	for _, want := range []string{
		"Monitors",
		"Gateway",
		"● down",
		"Webhooks",
		"https://ops.example.com/hook · alert.created",
		"Ticketing",
		"Slack",
		"○ not configured",
		"psa: HTTP 500 (press r to retry)",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSectionNavigation(t *testing.T) {
	m := newTestModel(t, &fakeService{state: sampleState()})
	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})

	m.Update(keyPress("j"))
	m.Update(keyPress("j"))
	if m.cursors[sectionMonitors] != 0 {
		t.Errorf("cursor should wrap, got %d", m.cursors[sectionMonitors])
	}

	m.Update(keyPress("l"))
	if m.focus != sectionWebhooks {
		t.Errorf("focus = %v, want Webhooks", m.focus)
	}
	m.Update(keyPress("h"))
	m.Update(keyPress("h"))
	if m.focus != sectionSettings {
		t.Errorf("focus = %v, want Integrations", m.focus)
	}
}

func TestMonitorCheck(t *testing.T) {
	svc := &fakeService{state: sampleState()}
	m := newTestModel(t, svc)
	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})

	m.Update(keyPress("j"))
	out := run(t, m, keyPress("t"))
	if svc.checked != "m2" {
		t.Errorf("checked = %q, want m2", svc.checked)
	}
	note, ok := out.(app.AddNotificationMsg)
	if !ok || note.Type != app.NotificationSuccess || !strings.Contains(note.Message, "Mail is up") {
		t.Errorf("got %#v", out)
	}
	if m.busy != "" {
		t.Error("busy should clear after the result")
	}
}

func TestWebhookTestAndToggle(t *testing.T) {
	svc := &fakeService{
		state:      sampleState(),
		testResult: &models.TestResult{Success: false, StatusCode: 502},
	}
	m := newTestModel(t, svc)
	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})
	m.Update(keyPress("l"))

	out := run(t, m, keyPress("t"))
	note, ok := out.(app.AddNotificationMsg)
	if !ok || note.Type != app.NotificationWarning || !strings.Contains(note.Message, "Ops test failed HTTP 502") {
		t.Errorf("got %#v", out)
	}
	if svc.testedWebhook != "w1" {
		t.Errorf("tested = %q", svc.testedWebhook)
	}

	run(t, m, keyPress("x"))
	if enabled, ok := svc.webhookToggle["w1"]; !ok || enabled {
		t.Errorf("webhook toggle = %v, %v; want disabled", enabled, ok)
	}
}

func TestSettingsActions(t *testing.T) {
	svc := &fakeService{state: sampleState(), testResult: &models.TestResult{Success: true, Message: "ok"}}
	m := newTestModel(t, svc)
	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})
	m.Update(keyPress("h")) // wrap to settings

	// Row 0 is PSA: no test action.
	out := run(t, m, keyPress("t"))
	if note, ok := out.(app.AddNotificationMsg); !ok || !strings.Contains(note.Message, "has no test action") {
		t.Errorf("PSA test: got %#v", out)
	}
	if out := run(t, m, keyPress("x")); out == nil {
		t.Error("toggling PSA should explain why it cannot")
	}

	// Row 1 is Monitoring, which the fake reports as not configured.
	m.Update(keyPress("j"))
	out = run(t, m, keyPress("t"))
	note, ok := out.(app.AddNotificationMsg)
	if !ok || note.Type != app.NotificationWarning || note.Message != "Monitoring is not configured" {
		t.Errorf("monitoring test: got %#v", out)
	}

	// Row 2 is Ticketing.
	m.Update(keyPress("j"))
	out = run(t, m, keyPress("t"))
	if note, ok := out.(app.AddNotificationMsg); !ok || note.Type != app.NotificationSuccess {
		t.Errorf("ticketing test: got %#v", out)
	}

	// Row 3 is Slack.
	m.Update(keyPress("j"))
	run(t, m, keyPress("x"))
	if enabled, ok := svc.chatToggle[models.ChatSlack]; !ok || enabled {
		t.Errorf("slack toggle = %v, %v; want disabled", enabled, ok)
	}
}

func TestDeliveries(t *testing.T) {
	svc := &fakeService{
		state: sampleState(),
		deliveries: []models.WebhookDelivery{
			{ID: "d1", Event: "alert.created", ResponseCode: 200, DurationMs: 40},
			{ID: "d2", Event: "alert.resolved", ResponseCode: 500, Error: "upstream timeout"},
		},
	}
	m := newTestModel(t, svc)
	run(t, m, app.TabSwitchMsg{Tab: app.TabIntegrations})

	// Deliveries are only listed from the webhooks section.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter outside webhooks should do nothing")
	}

	m.Update(keyPress("l"))
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.deliveryOf != "w1" || len(m.deliveries) != 2 {
		t.Fatalf("deliveryOf = %q, deliveries = %d", m.deliveryOf, len(m.deliveries))
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"200 alert.created · 40 ms", "500 alert.resolved", "upstream timeout"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNilService(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 20)
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabIntegrations}); cmd != nil {
		t.Error("nil service should not load")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "not available") {
		t.Errorf("view = %q", view)
	}
}

func TestHelp(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	if len(m.ShortHelp()) != 4 {
		t.Errorf("ShortHelp len = %d", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 3 {
		t.Errorf("FullHelp len = %d", len(m.FullHelp()))
	}
}

// Package integrations loads monitors, webhooks and third-party integration
// settings on demand and runs their test actions.
package integrations

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/api"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
)

// Section names used as keys in State.Errors.
const (
	SectionMonitors   = "monitors"
	SectionWebhooks   = "webhooks"
	SectionPSA        = "psa"
	SectionMonitoring = "monitoring"
	SectionTicketing  = "ticketing"
)

// ProfileProvider supplies the profile to talk to.
type ProfileProvider interface {
	GetActiveProfile() *models.Profile
}

// API is the subset of the REST client the service uses.
type API interface {
	ListMonitors(ctx context.Context) ([]models.Monitor, error)
	CheckMonitor(ctx context.Context, id string) (*models.MonitorCheck, error)
	ListWebhooks(ctx context.Context) ([]models.Webhook, error)
	UpdateWebhook(ctx context.Context, id string, in models.WebhookInput) (*models.Webhook, error)
	TestWebhook(ctx context.Context, id string) (*models.TestResult, error)
	ListWebhookDeliveries(ctx context.Context, id string) ([]models.WebhookDelivery, error)
	GetPSA(ctx context.Context) (*models.PSAIntegration, error)
	GetMonitoring(ctx context.Context) (*models.MonitoringIntegration, error)
	TestMonitoring(ctx context.Context, in *models.MonitoringIntegration) (*models.TestResult, error)
	GetTicketing(ctx context.Context) (*models.TicketingIntegration, error)
	TestTicketing(ctx context.Context, in *models.TicketingIntegration) (*models.TestResult, error)
	GetChatIntegration(ctx context.Context, kind string) (*models.ChatIntegration, error)
	SaveChatIntegration(ctx context.Context, kind string, in models.ChatIntegration) (*models.ChatIntegration, error)
}

// ClientFactory builds an API client for a profile.
type ClientFactory func(p *models.Profile) (API, error)

// State is everything the integrations screen shows. Each section fails
// independently; failures are keyed by section name (or chat kind) in Errors.
type State struct {
	LoadedAt   time.Time
	Errors     map[string]error
	PSA        *models.PSAIntegration
	Monitoring *models.MonitoringIntegration
	Ticketing  *models.TicketingIntegration
	Chat       map[string]*models.ChatIntegration
	Monitors   []models.Monitor
	Webhooks   []models.Webhook
}

// Err returns the error recorded for section, if any.
func (s *State) Err(section string) error {
	if s == nil {
		return nil
	}
	return s.Errors[section]
}

// Summaries flattens the integration settings into display rows.
func (s *State) Summaries() []models.IntegrationSummary {
	if s == nil {
		return nil
	}
	rows := []models.IntegrationSummary{
		{Name: "PSA", Provider: lo.FromPtr(s.PSA).Provider, Enabled: lo.FromPtr(s.PSA).Enabled, Configured: s.PSA != nil && s.PSA.BaseURL != ""},
		{Name: "Monitoring", Provider: lo.FromPtr(s.Monitoring).Provider, Enabled: lo.FromPtr(s.Monitoring).Enabled, Configured: s.Monitoring != nil && s.Monitoring.Endpoint != "", Testable: true},
		{Name: "Ticketing", Provider: lo.FromPtr(s.Ticketing).Provider, Enabled: lo.FromPtr(s.Ticketing).Enabled, Configured: s.Ticketing != nil && s.Ticketing.URL != "", Testable: true},
	}
	for _, kind := range models.ChatKinds {
		chat := s.Chat[kind]
		rows = append(rows, models.IntegrationSummary{
			Name:       chatLabel(kind),
			Provider:   kind,
			Enabled:    chat != nil && chat.Enabled,
			Configured: chat.Configured(),
		})
	}
	return rows
}

func chatLabel(kind string) string {
	switch kind {
	case models.ChatSlack:
		return "Slack"
	case models.ChatTeams:
		return "Microsoft Teams"
	case models.ChatDiscord:
		return "Discord"
	default:
		return kind
	}
}

// Service loads integration state for the active profile.
type Service struct {
	profiles  ProfileProvider
	newClient ClientFactory
	state     *State
	timeout   time.Duration
	mu        sync.RWMutex
}

// New creates an integrations service. A non-positive timeout means 30s.
func New(profiles ProfileProvider, factory ClientFactory, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{profiles: profiles, newClient: factory, timeout: timeout}
}

// State returns the last loaded state, or nil before the first Load.
func (s *Service) State() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) client() (API, error) {
	p := s.profiles.GetActiveProfile()
	if p == nil || !p.Valid() {
		return nil, api.ErrNoProfile
	}
	return s.newClient(p)
}

// Load fetches every section concurrently. It only returns an error when no
// client could be built; per-section failures are recorded in State.Errors.
func (s *Service) Load(ctx context.Context) (*State, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	state := &State{
		Errors: make(map[string]error),
		Chat:   make(map[string]*models.ChatIntegration, len(models.ChatKinds)),
	}
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(section string, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(); err != nil {
				// A missing integration is not configured yet, not broken.
				if api.IsStatus(err, 404) {
					return
				}
				logger.Warn("failed to load integration section", "section", section, "error", err)
				mu.Lock()
				state.Errors[section] = err
				mu.Unlock()
			}
		}()
	}

	run(SectionMonitors, func() error {
		monitors, err := c.ListMonitors(ctx)
		mu.Lock()
		state.Monitors = monitors
		mu.Unlock()
		return err
	})
	run(SectionWebhooks, func() error {
		webhooks, err := c.ListWebhooks(ctx)
		mu.Lock()
		state.Webhooks = webhooks
		mu.Unlock()
		return err
	})
	run(SectionPSA, func() error {
		psa, err := c.GetPSA(ctx)
		mu.Lock()
		state.PSA = psa
		mu.Unlock()
		return err
	})
	run(SectionMonitoring, func() error {
		mon, err := c.GetMonitoring(ctx)
		mu.Lock()
		state.Monitoring = mon
		mu.Unlock()
		return err
	})
	run(SectionTicketing, func() error {
		t, err := c.GetTicketing(ctx)
		mu.Lock()
		state.Ticketing = t
		mu.Unlock()
		return err
	})
	for _, kind := range models.ChatKinds {
		run(kind, func() error {
			chat, err := c.GetChatIntegration(ctx, kind)
			mu.Lock()
			if chat != nil {
				state.Chat[kind] = chat
			}
			mu.Unlock()
			return err
		})
	}

	wg.Wait()
	state.LoadedAt = time.Now()

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	return state, nil
}

// update replaces the cached state with a modified copy, so callers holding
// the previous *State never see it change.
func (s *Service) update(fn func(next *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return
	}
	next := *s.state
	fn(&next)
	s.state = &next
}

// Deliveries fetches the delivery log of a webhook.
func (s *Service) Deliveries(ctx context.Context, webhookID string) ([]models.WebhookDelivery, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c.ListWebhookDeliveries(ctx, webhookID)
}

// CheckMonitor runs a monitor check and records the result in the cached state.
func (s *Service) CheckMonitor(ctx context.Context, id string) (*models.MonitorCheck, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	check, err := c.CheckMonitor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check monitor %s: %w", id, err)
	}

	s.update(func(next *State) {
		next.Monitors = slices.Clone(next.Monitors)
		if _, idx, ok := lo.FindIndexOf(next.Monitors, func(m models.Monitor) bool { return m.ID == id }); ok {
			m := &next.Monitors[idx]
			m.Status = check.Status
			m.LastError = check.Error
			m.LastResponseMs = check.ResponseMs
			m.LastCheckedAt = check.CheckedAt
		}
	})

	return check, nil
}

// TestWebhook sends a test delivery.
func (s *Service) TestWebhook(ctx context.Context, id string) (*models.TestResult, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c.TestWebhook(ctx, id)
}

// SetWebhookEnabled toggles a webhook.
func (s *Service) SetWebhookEnabled(ctx context.Context, id string, enabled bool) (*models.Webhook, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	hook, err := c.UpdateWebhook(ctx, id, models.WebhookInput{Enabled: lo.ToPtr(enabled)})
	if err != nil {
		return nil, err
	}

	s.update(func(next *State) {
		next.Webhooks = slices.Clone(next.Webhooks)
		if _, idx, ok := lo.FindIndexOf(next.Webhooks, func(w models.Webhook) bool { return w.ID == id }); ok {
			next.Webhooks[idx] = *hook
		}
	})

	return hook, nil
}

// ErrNotConfigured is returned by test actions for unconfigured integrations.
var ErrNotConfigured = errors.New("integration is not configured")

// TestMonitoring tests the saved monitoring integration.
func (s *Service) TestMonitoring(ctx context.Context) (*models.TestResult, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	state := s.State()
	if state == nil || state.Monitoring == nil {
		return nil, ErrNotConfigured
	}
	return c.TestMonitoring(ctx, state.Monitoring)
}

// TestTicketing tests the saved ticketing integration.
func (s *Service) TestTicketing(ctx context.Context) (*models.TestResult, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	state := s.State()
	if state == nil || state.Ticketing == nil {
		return nil, ErrNotConfigured
	}
	return c.TestTicketing(ctx, state.Ticketing)
}

// SetChatEnabled toggles a chat integration, keeping its other settings.
func (s *Service) SetChatEnabled(ctx context.Context, kind string, enabled bool) (*models.ChatIntegration, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	var current models.ChatIntegration
	if state := s.State(); state != nil && state.Chat[kind] != nil {
		current = *state.Chat[kind]
	}
	if current.WebhookURL == "" {
		return nil, ErrNotConfigured
	}
	current.Kind = kind
	current.Enabled = enabled

	saved, err := c.SaveChatIntegration(ctx, kind, current)
	if err != nil {
		return nil, err
	}

	s.update(func(next *State) {
		next.Chat = maps.Clone(next.Chat)
		next.Chat[kind] = saved
	})

	return saved, nil
}

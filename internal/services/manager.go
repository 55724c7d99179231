// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/breeze-rmm/breeze-console/internal/api"
	"github.com/breeze-rmm/breeze-console/internal/config"
	"github.com/breeze-rmm/breeze-console/internal/db"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/services/backup"
	"github.com/breeze-rmm/breeze-console/internal/services/integrations"
	"github.com/breeze-rmm/breeze-console/internal/services/profiles"
	"github.com/breeze-rmm/breeze-console/internal/services/projection"
	"github.com/breeze-rmm/breeze-console/internal/usage"
	"github.com/breeze-rmm/breeze-console/internal/version"
)

const (
	storageAlertPercent = 90.0
	cacheRetention      = 400 * 24 * time.Hour
	envProfileID        = "env"
)

type (
	// ProfilesChangedEvent is emitted when the profile list or selection changes.
	ProfilesChangedEvent struct {
		ActiveProfile *models.Profile
		Profiles      []models.Profile
	}

	// RefreshingEvent is emitted when a backup refresh starts.
	RefreshingEvent struct {
		Profile string
	}

	// DashboardUpdatedEvent is emitted when a new backup dashboard is available.
	DashboardUpdatedEvent struct {
		Dashboard *models.BackupDashboard
		Profile   string
	}

	// UsageUpdatedEvent is emitted when the usage history changes.
	UsageUpdatedEvent struct {
		History *models.UsageHistory
		Profile string
	}

	// JobsUpdatedEvent is emitted when the recent job list changes.
	JobsUpdatedEvent struct {
		Profile string
		Jobs    []models.BackupJob
	}

	// JobFailedEvent is emitted once per newly failed backup job.
	JobFailedEvent struct {
		Job     *models.BackupJob
		Profile string
	}

	// ProjectionUpdatedEvent is emitted when the storage projection is recomputed.
	ProjectionUpdatedEvent struct {
		Projection *models.StorageProjection
		Profile    string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error    error
		Service  string
		Profile  string
		Resource string
	}

	// StatsEvent summarizes the local cache.
	StatsEvent struct {
		ProfileCount int
		CachedPoints int
		JobEvents    int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ProfilesChangedEvent) isServiceEvent()   {}
func (RefreshingEvent) isServiceEvent()        {}
func (DashboardUpdatedEvent) isServiceEvent()  {}
func (UsageUpdatedEvent) isServiceEvent()      {}
func (JobsUpdatedEvent) isServiceEvent()       {}
func (JobFailedEvent) isServiceEvent()         {}
func (ProjectionUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()             {}
func (StatsEvent) isServiceEvent()             {}

// Manager orchestrates services and event routing.
type Manager struct {
	profiles        *profiles.Service
	backup          *backup.Service
	projection      *projection.Service
	integrations    *integrations.Service
	database        *db.DB
	notify          func(title, body string) error
	eventChan       chan ServiceEvent
	stopChan        chan struct{}
	subscribers     []chan ServiceEvent
	previousPercent map[string]float64
	mu              sync.RWMutex
	closeOnce       sync.Once
}

// NewAPIClient builds a REST client for a profile.
func NewAPIClient(p *models.Profile) (*api.Client, error) {
	if p == nil {
		return nil, api.ErrNoProfile
	}
	return api.New(p.APIURL, p.Token, api.WithUserAgent("breeze-console/"+version.GetVersion()))
}

// EnvProfile returns the profile described by BREEZE_API_URL and
// BREEZE_API_TOKEN, or nil when they are not both set.
func EnvProfile(cfg *config.Config) *models.Profile {
	if !cfg.HasDirectCredentials() {
		return nil
	}
	return &models.Profile{ID: envProfileID, Name: "Environment", APIURL: cfg.APIURL, Token: cfg.APIToken}
}

// NewManager creates a new service manager. Polling starts with Start.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan:       make(chan ServiceEvent, 100),
		stopChan:        make(chan struct{}),
		previousPercent: make(map[string]float64),
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}

	var err error
	m.profiles, err = profiles.New(cfg.ProfilesPath, EnvProfile(cfg))
	if err != nil {
		return nil, err
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		m.profiles.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if n, err := m.database.PruneUsageHistory(cacheRetention); err != nil {
		logger.Warn("failed to prune usage cache", "error", err)
	} else if n > 0 {
		logger.Info("pruned usage cache", "points", n)
	}

	m.projection = projection.New(m.database)

	backupConfig := backup.DefaultConfig()
	backupConfig.PollInterval = cfg.RefreshInterval
	backupConfig.HistoryDays = cfg.UsageHistoryDays
	m.backup = backup.New(m.profiles, func(p *models.Profile) (backup.API, error) {
		c, err := NewAPIClient(p)
		if err != nil {
			return nil, err
		}
		return c, nil
	}, m.database, backupConfig)

	m.integrations = integrations.New(m.profiles, func(p *models.Profile) (integrations.API, error) {
		c, err := NewAPIClient(p)
		if err != nil {
			return nil, err
		}
		return c, nil
	}, backupConfig.RequestTimeout)

	go m.routeEvents()

	return m, nil
}

// Start begins background polling.
func (m *Manager) Start() {
	m.backup.Start()
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.profiles.Events():
			m.handleProfileEvent(event)

		case event := <-m.backup.Events():
			m.handleBackupEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleProfileEvent converts and broadcasts profile events.
func (m *Manager) handleProfileEvent(event profiles.Event) {
	switch event.Type {
	case profiles.EventProfilesLoaded, profiles.EventProfilesChanged,
		profiles.EventProfileAdded, profiles.EventProfileUpdated,
		profiles.EventProfileDeleted, profiles.EventActiveProfileChanged:

		m.broadcast(ProfilesChangedEvent{
			Profiles:      m.profiles.GetProfiles(),
			ActiveProfile: m.profiles.GetActiveProfile(),
		})

		if event.Type == profiles.EventProfileDeleted && event.Profile != nil {
			m.projection.Forget(event.Profile.Key())
		}
		if event.Type == profiles.EventActiveProfileChanged {
			go m.refreshLogged()
		}

	case profiles.EventError:
		m.broadcast(ErrorEvent{
			Service: "profiles",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleBackupEvent(event backup.Event) {
	switch event.Type {
	case backup.EventRefreshing:
		m.broadcast(RefreshingEvent{Profile: event.Profile})

	case backup.EventDashboardUpdated:
		m.broadcast(DashboardUpdatedEvent{Profile: event.Profile, Dashboard: event.Dashboard})
		if event.Dashboard != nil {
			m.checkStorageNotification(event.Profile, event.Dashboard)
		}
		go m.updateProjection(event.Profile)

	case backup.EventUsageUpdated:
		m.broadcast(UsageUpdatedEvent{Profile: event.Profile, History: event.Usage})
		go m.updateProjection(event.Profile)

	case backup.EventJobsUpdated:
		m.broadcast(JobsUpdatedEvent{Profile: event.Profile, Jobs: event.Jobs})

	case backup.EventJobFailed:
		m.broadcast(JobFailedEvent{Profile: event.Profile, Job: event.Job})
		m.notifyJobFailed(event.Job)

	case backup.EventError:
		m.broadcast(ErrorEvent{
			Service:  "backup",
			Profile:  event.Profile,
			Resource: event.Resource,
			Error:    event.Error,
		})
	}
}

func (m *Manager) notifyJobFailed(job *models.BackupJob) {
	if job == nil {
		return
	}
	name := job.PolicyName
	if name == "" {
		name = job.ID
	}
	if job.DeviceName != "" {
		name += " on " + job.DeviceName
	}
	body := job.Error
	if body == "" {
		body = "The backup job did not complete."
	}
	if err := m.notify(fmt.Sprintf("Backup failed: %s", name), body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// checkStorageNotification notifies when storage use crosses the alert
// threshold upwards. The first observation for a profile only records it.
func (m *Manager) checkStorageNotification(profile string, d *models.BackupDashboard) {
	percent := usage.UsagePercent(d.Storage.UsedBytes, d.Storage.TotalBytes)

	m.mu.Lock()
	old, exists := m.previousPercent[profile]
	m.previousPercent[profile] = percent
	m.mu.Unlock()

	if !exists {
		return
	}

	if percent >= storageAlertPercent && old < storageAlertPercent {
		title := "Backup storage almost full"
		body := fmt.Sprintf("%s of %s used (%.1f%%)",
			usage.FormatBytes(d.Storage.UsedBytes),
			usage.FormatBytes(d.Storage.TotalBytes),
			percent)
		if err := m.notify(title, body); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
}

func (m *Manager) updateProjection(profile string) {
	active := m.profiles.GetActiveProfile()
	if active == nil || active.Key() != profile {
		return
	}

	var storage models.StorageSummary
	if d := m.backup.GetDashboard(); d != nil {
		storage = d.Storage
	}
	proj := m.projection.Calculate(profile, m.backup.GetUsageHistory(), storage)
	m.broadcast(ProjectionUpdatedEvent{Profile: profile, Projection: proj})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Refresh forces a backup refresh of the active profile.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.backup.Refresh(ctx)
}

func (m *Manager) refreshLogged() {
	if err := m.Refresh(context.Background()); err != nil && !errors.Is(err, api.ErrNoProfile) {
		logger.Warn("refresh after profile change failed", "error", err)
	}
}

// SetHistoryDays changes the usage-history window.
func (m *Manager) SetHistoryDays(ctx context.Context, days int) error {
	return m.backup.SetHistoryDays(ctx, days)
}

// GetProfilesWithStatus returns every profile, with the dashboard attached
// to the active one.
func (m *Manager) GetProfilesWithStatus() []models.ProfileWithStatus {
	profs := m.profiles.GetProfiles()
	active := m.profiles.GetActiveProfile()
	dashboard := m.backup.GetDashboard()

	result := make([]models.ProfileWithStatus, len(profs))
	for i, p := range profs {
		isActive := active != nil && p.Key() == active.Key()
		result[i] = models.ProfileWithStatus{Profile: p, IsActive: isActive}
		if isActive {
			result[i].Dashboard = dashboard
		}
	}
	return result
}

// GetStats returns local cache statistics.
func (m *Manager) GetStats() StatsEvent {
	stats := StatsEvent{ProfileCount: m.profiles.Count()}
	cache, err := m.database.GetCacheStats()
	if err != nil {
		logger.Warn("failed to read cache stats", "error", err)
		return stats
	}
	stats.CachedPoints = cache.Points
	stats.JobEvents = cache.JobEvents
	return stats
}

// Profiles returns the profiles service.
func (m *Manager) Profiles() *profiles.Service {
	return m.profiles
}

// Backup returns the backup service.
func (m *Manager) Backup() *backup.Service {
	return m.backup
}

// Projection returns the projection service.
func (m *Manager) Projection() *projection.Service {
	return m.projection
}

// Integrations returns the integrations service.
func (m *Manager) Integrations() *integrations.Service {
	return m.integrations
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.backup.Close(); err != nil {
			errs = append(errs, err)
		}

		if err := m.profiles.Close(); err != nil {
			errs = append(errs, err)
		}

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// InitialState returns the initial state of all services for TUI initialization.
func (m *Manager) InitialState() ([]models.ProfileWithStatus, StatsEvent) {
	return m.GetProfilesWithStatus(), m.GetStats()
}

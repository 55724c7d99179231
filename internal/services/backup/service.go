// Package backup polls the Breeze backup endpoints for the active profile
// and caches the results locally.
package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/api"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
)

// ProfileProvider supplies the profile to poll.
type ProfileProvider interface {
	GetActiveProfile() *models.Profile
}

// API is the subset of the REST client the service uses.
type API interface {
	Dashboard(ctx context.Context) (*models.BackupDashboard, error)
	UsageHistory(ctx context.Context, days int) (*models.UsageHistory, error)
	ListJobs(ctx context.Context, filter api.JobFilter) ([]models.BackupJob, error)
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	Restore(ctx context.Context, req models.RestoreRequest) (*models.RestoreResult, error)
}

// ClientFactory builds an API client for a profile.
type ClientFactory func(p *models.Profile) (API, error)

// Store is the local cache used as an offline fallback.
type Store interface {
	SaveUsageHistory(profile string, points []models.UsagePoint) error
	GetUsageHistory(profile string, days int) ([]models.UsagePoint, error)
	SaveDashboard(profile string, d *models.BackupDashboard) error
	GetDashboard(profile string) (*models.BackupDashboard, error)
	RecordJobStatus(profile string, job models.BackupJob) (bool, error)
}

// Event represents a backup service event.
type Event struct {
	Error      error
	Dashboard  *models.BackupDashboard
	Usage      *models.UsageHistory
	Job        *models.BackupJob
	Jobs       []models.BackupJob
	Profile    string
	Resource   string // Set on EventError: which fetch failed
	Type       EventType
	Generation uint64
}

// EventType defines the type of backup event.
type EventType int

const (
	// EventRefreshing indicates that a refresh has started.
	EventRefreshing EventType = iota
	// EventDashboardUpdated carries a new dashboard.
	EventDashboardUpdated
	// EventUsageUpdated carries a new usage history (possibly from cache).
	EventUsageUpdated
	// EventJobsUpdated carries the recent job list.
	EventJobsUpdated
	// EventJobFailed is sent once per newly failed job.
	EventJobFailed
	// EventError indicates that a fetch failed.
	EventError
)

// Config holds configuration for the backup service.
type Config struct {
	PollInterval    time.Duration
	RequestTimeout  time.Duration
	FailedJobMaxAge time.Duration
	HistoryDays     int
	JobLimit        int
	MaxConcurrent   int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:    60 * time.Second,
		RequestTimeout:  30 * time.Second,
		FailedJobMaxAge: 24 * time.Hour,
		HistoryDays:     30,
		JobLimit:        50,
		MaxConcurrent:   3,
	}
}

// Resource names carried by EventError.
const (
	ResourceDashboard = "dashboard"
	ResourceUsage     = "usage"
	ResourceJobs      = "jobs"
)

type fetchKind int

const (
	kindDashboard fetchKind = iota
	kindUsage
	kindJobs
)

type appliedKey struct {
	profile string
	kind    fetchKind
}

// Service polls and caches backup state for the active profile.
type Service struct {
	profiles   ProfileProvider
	newClient  ClientFactory
	store      Store
	dashboard  map[string]*models.BackupDashboard
	usage      map[string]*models.UsageHistory
	jobs       map[string][]models.BackupJob
	applied    map[appliedKey]uint64
	seenJobs   map[string]bool
	eventChan  chan Event
	stopChan   chan struct{}
	sem        chan struct{}
	config     Config
	generation atomic.Uint64
	days       atomic.Int64
	mu         sync.RWMutex
	startOnce  sync.Once
	closeOnce  sync.Once
}

// New creates a backup service. Polling starts with Start.
func New(profiles ProfileProvider, factory ClientFactory, store Store, config Config) *Service {
	defaults := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.FailedJobMaxAge <= 0 {
		config.FailedJobMaxAge = defaults.FailedJobMaxAge
	}
	if config.HistoryDays <= 0 {
		config.HistoryDays = defaults.HistoryDays
	}
	if config.JobLimit <= 0 {
		config.JobLimit = defaults.JobLimit
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}

	s := &Service{
		profiles:  profiles,
		newClient: factory,
		store:     store,
		dashboard: make(map[string]*models.BackupDashboard),
		usage:     make(map[string]*models.UsageHistory),
		jobs:      make(map[string][]models.BackupJob),
		applied:   make(map[appliedKey]uint64),
		seenJobs:  make(map[string]bool),
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		sem:       make(chan struct{}, config.MaxConcurrent),
		config:    config,
	}
	s.days.Store(int64(config.HistoryDays))
	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Start begins background polling. Calling it more than once has no effect.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		go s.poll()
	})
}

// HistoryDays returns the usage-history window in days.
func (s *Service) HistoryDays() int {
	return int(s.days.Load())
}

// SetHistoryDays changes the usage-history window and refetches the history.
func (s *Service) SetHistoryDays(ctx context.Context, days int) error {
	if days <= 0 {
		return fmt.Errorf("invalid history window: %d days", days)
	}
	s.days.Store(int64(days))
	return s.RefreshUsage(ctx)
}

// GetDashboard returns the cached dashboard of the active profile.
func (s *Service) GetDashboard() *models.BackupDashboard {
	p := s.profiles.GetActiveProfile()
	if p == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dashboard[p.Key()]
}

// GetUsageHistory returns the cached usage history of the active profile.
func (s *Service) GetUsageHistory() *models.UsageHistory {
	p := s.profiles.GetActiveProfile()
	if p == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[p.Key()]
}

// GetJobs returns the cached recent jobs of the active profile.
func (s *Service) GetJobs() []models.BackupJob {
	p := s.profiles.GetActiveProfile()
	if p == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[p.Key()]
}

// client resolves the active profile and builds a client for it.
func (s *Service) client() (*models.Profile, API, error) {
	p := s.profiles.GetActiveProfile()
	if p == nil || !p.Valid() {
		return nil, nil, api.ErrNoProfile
	}
	c, err := s.newClient(p)
	if err != nil {
		return nil, nil, err
	}
	return p, c, nil
}

// Refresh fetches the dashboard, usage history and jobs concurrently.
// It returns the first error encountered.
func (s *Service) Refresh(ctx context.Context) error {
	gen := s.generation.Add(1)
	profile, c, err := s.client()
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err, Generation: gen})
		return err
	}
	key := profile.Key()
	s.sendEvent(Event{Type: EventRefreshing, Profile: key, Generation: gen})

	fetches := []func(context.Context) error{
		func(ctx context.Context) error { return s.fetchDashboard(ctx, c, key, gen) },
		func(ctx context.Context) error { return s.fetchUsage(ctx, c, key, gen, s.HistoryDays()) },
		func(ctx context.Context) error { return s.fetchJobs(ctx, c, key, gen) },
	}

	errs := make([]error, len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func(i int, fetch func(context.Context) error) {
			defer wg.Done()

			// Acquire semaphore
			select {
			case s.sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-s.sem }()

			reqCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
			defer cancel()
			errs[i] = fetch(reqCtx)
		}(i, fetch)
	}
	wg.Wait()

	return errors.Join(lo.Compact(errs)...)
}

// RefreshUsage refetches only the usage history.
func (s *Service) RefreshUsage(ctx context.Context) error {
	gen := s.generation.Add(1)
	profile, c, err := s.client()
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err, Generation: gen})
		return err
	}
	reqCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()
	return s.fetchUsage(reqCtx, c, profile.Key(), gen, s.HistoryDays())
}

// accept records gen as the latest applied result for (profile, kind).
// It returns false when a newer fetch has already been applied.
// Must hold s.mu.
func (s *Service) accept(profile string, kind fetchKind, gen uint64) bool {
	k := appliedKey{profile: profile, kind: kind}
	if gen < s.applied[k] {
		return false
	}
	s.applied[k] = gen
	return true
}

func (s *Service) fetchDashboard(ctx context.Context, c API, profile string, gen uint64) error {
	d, err := c.Dashboard(ctx)
	if err != nil {
		err = fmt.Errorf("dashboard: %w", err)
		if cached := s.cachedDashboard(profile); cached != nil {
			s.applyDashboard(profile, cached, gen)
		}
		s.sendEvent(Event{Type: EventError, Profile: profile, Resource: ResourceDashboard, Error: err, Generation: gen})
		return err
	}

	if !s.applyDashboard(profile, d, gen) {
		return nil
	}
	if s.store != nil {
		if err := s.store.SaveDashboard(profile, d); err != nil {
			logger.Warn("failed to cache dashboard", "profile", profile, "error", err)
		}
	}
	return nil
}

func (s *Service) cachedDashboard(profile string) *models.BackupDashboard {
	if s.store == nil {
		return nil
	}
	d, err := s.store.GetDashboard(profile)
	if err != nil {
		logger.Warn("failed to read cached dashboard", "profile", profile, "error", err)
		return nil
	}
	return d
}

func (s *Service) applyDashboard(profile string, d *models.BackupDashboard, gen uint64) bool {
	s.mu.Lock()
	if !s.accept(profile, kindDashboard, gen) {
		s.mu.Unlock()
		logger.Debug("discarding stale dashboard", "profile", profile, "generation", gen)
		return false
	}
	s.dashboard[profile] = d
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventDashboardUpdated, Profile: profile, Dashboard: d, Generation: gen})
	return true
}

func (s *Service) fetchUsage(ctx context.Context, c API, profile string, gen uint64, days int) error {
	h, err := c.UsageHistory(ctx, days)
	if err != nil {
		err = fmt.Errorf("usage history: %w", err)
		if cached := s.cachedUsage(profile, days); cached != nil {
			s.applyUsage(profile, cached, gen)
		}
		s.sendEvent(Event{Type: EventError, Profile: profile, Resource: ResourceUsage, Error: err, Generation: gen})
		return err
	}

	h.Profile = profile
	if h.DroppedPoints > 0 || h.DroppedSamples > 0 {
		logger.Warn("usage history contained malformed entries",
			"profile", profile, "droppedPoints", h.DroppedPoints, "droppedSamples", h.DroppedSamples)
	}

	if !s.applyUsage(profile, h, gen) {
		return nil
	}
	if s.store != nil {
		if err := s.store.SaveUsageHistory(profile, h.Points); err != nil {
			logger.Warn("failed to cache usage history", "profile", profile, "error", err)
		}
	}
	return nil
}

func (s *Service) cachedUsage(profile string, days int) *models.UsageHistory {
	if s.store == nil {
		return nil
	}
	points, err := s.store.GetUsageHistory(profile, days)
	if err != nil {
		logger.Warn("failed to read cached usage history", "profile", profile, "error", err)
		return nil
	}
	if len(points) == 0 {
		return nil
	}
	return &models.UsageHistory{Profile: profile, Days: days, Points: points, FromCache: true}
}

func (s *Service) applyUsage(profile string, h *models.UsageHistory, gen uint64) bool {
	s.mu.Lock()
	if !s.accept(profile, kindUsage, gen) {
		s.mu.Unlock()
		logger.Debug("discarding stale usage history", "profile", profile, "generation", gen)
		return false
	}
	s.usage[profile] = h
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventUsageUpdated, Profile: profile, Usage: h, Generation: gen})
	return true
}

func (s *Service) fetchJobs(ctx context.Context, c API, profile string, gen uint64) error {
	jobs, err := c.ListJobs(ctx, api.JobFilter{Limit: s.config.JobLimit})
	if err != nil {
		err = fmt.Errorf("jobs: %w", err)
		s.sendEvent(Event{Type: EventError, Profile: profile, Resource: ResourceJobs, Error: err, Generation: gen})
		return err
	}

	s.mu.Lock()
	if !s.accept(profile, kindJobs, gen) {
		s.mu.Unlock()
		return nil
	}
	s.jobs[profile] = jobs
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventJobsUpdated, Profile: profile, Jobs: jobs, Generation: gen})

	for i := range jobs {
		job := &jobs[i]
		if job.Failed() && s.isNewFailure(profile, job) {
			s.sendEvent(Event{Type: EventJobFailed, Profile: profile, Job: job, Generation: gen})
		}
	}
	return nil
}

// isNewFailure reports whether job failed recently and has not been
// reported before.
func (s *Service) isNewFailure(profile string, job *models.BackupJob) bool {
	ended := job.CompletedAt
	if ended.IsZero() {
		ended = job.StartedAt
	}
	if !ended.IsZero() && time.Since(ended) > s.config.FailedJobMaxAge {
		return false
	}

	if s.store != nil {
		isNew, err := s.store.RecordJobStatus(profile, *job)
		if err == nil {
			return isNew
		}
		logger.Warn("failed to record job status", "profile", profile, "job", job.ID, "error", err)
	}

	key := profile + "/" + job.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seenJobs[key] {
		return false
	}
	s.seenJobs[key] = true
	return true
}

// FetchUsageHistory fetches the active profile's usage history once, outside
// the polling loop. The polled state is left alone. When the API fails and
// the cache holds points for the profile, the cached history is returned.
func (s *Service) FetchUsageHistory(ctx context.Context, days int) (*models.UsageHistory, error) {
	p, c, err := s.client()
	if err != nil {
		return nil, err
	}
	profile := p.Key()

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	h, err := c.UsageHistory(ctx, days)
	if err != nil {
		if cached := s.cachedUsage(profile, days); cached != nil {
			logger.Warn("serving cached usage history", "profile", profile, "error", err)
			return cached, nil
		}
		return nil, fmt.Errorf("usage history: %w", err)
	}

	h.Profile = profile
	if s.store != nil {
		if err := s.store.SaveUsageHistory(profile, h.Points); err != nil {
			logger.Warn("failed to cache usage history", "profile", profile, "error", err)
		}
	}
	return h, nil
}

// ListSnapshots fetches the snapshot list of the active profile.
func (s *Service) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	_, c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c.ListSnapshots(ctx)
}

// GetSnapshot fetches one snapshot with its files.
func (s *Service) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	_, c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c.GetSnapshot(ctx, id)
}

// Restore requests a restore of a snapshot.
func (s *Service) Restore(ctx context.Context, req models.RestoreRequest) (*models.RestoreResult, error) {
	_, c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c.Restore(ctx, req)
}

// poll runs the background polling goroutine.
func (s *Service) poll() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	s.refreshLogged(ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshLogged(ctx)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) refreshLogged(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, api.ErrNoProfile) {
		logger.Error("backup refresh failed", "error", err)
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the service.
func (s *Service) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	return nil
}

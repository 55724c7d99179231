// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for loading notifications.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

// Resource names used for loading and error tracking.
const (
	ResourceInitial   = "initial"
	ResourceDashboard = "dashboard"
	ResourceUsage     = "usage"
	ResourceJobs      = "jobs"
)

// Resources that only appear in DataUpdatedMsg.
const (
	ResourceProfiles   = "profiles"
	ResourceProjection = "projection"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for the backup resources.
type LoadingState struct {
	Initial   bool
	Dashboard bool
	Usage     bool
	Jobs      bool
}

// State is shared between the root model and the tabs. Services update it
// through messages; tabs read it when rendering.
type State struct {
	LastUpdated   time.Time
	ActiveProfile *models.Profile
	Dashboard     *models.BackupDashboard
	Usage         *models.UsageHistory
	Projection    *models.StorageProjection
	Stats         *services.StatsEvent
	errors        map[string]string
	Profiles      []models.Profile
	Jobs          []models.BackupJob
	notifications []Notification
	Loading       LoadingState

	notificationSeq int
	mu              sync.RWMutex
}

// NewState returns a State that is waiting for its first data.
func NewState() *State {
	return &State{
		Profiles:      make([]models.Profile, 0),
		errors:        make(map[string]string),
		notifications: make([]Notification, 0),
		Loading:       LoadingState{Initial: true},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLoadingLocked(resource, loading)
}

func (s *State) setLoadingLocked(resource string, loading bool) {
	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceDashboard:
		s.Loading.Dashboard = loading
	case ResourceUsage:
		s.Loading.Usage = loading
	case ResourceJobs:
		s.Loading.Jobs = loading
	}
}

// IsLoading reports whether a single resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case ResourceInitial:
		return s.Loading.Initial
	case ResourceDashboard:
		return s.Loading.Dashboard
	case ResourceUsage:
		return s.Loading.Usage
	case ResourceJobs:
		return s.Loading.Jobs
	}
	return false
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Dashboard ||
		s.Loading.Usage ||
		s.Loading.Jobs
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Dashboard {
		resources = append(resources, ResourceDashboard)
	}
	if s.Loading.Usage {
		resources = append(resources, ResourceUsage)
	}
	if s.Loading.Jobs {
		resources = append(resources, ResourceJobs)
	}
	return resources
}

// SetRefreshing marks every backup resource as loading.
func (s *State) SetRefreshing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Loading.Dashboard = true
	s.Loading.Usage = true
	s.Loading.Jobs = true
}

// SetError records a failure for a resource and stops its loading state.
// An empty message clears the error.
func (s *State) SetError(resource, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLoadingLocked(resource, false)
	if message == "" {
		delete(s.errors, resource)
		return
	}
	s.errors[resource] = message
}

// GetError returns the last error for a resource, or "".
func (s *State) GetError(resource string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[resource]
}

// SetProfiles replaces the profile list and active profile.
func (s *State) SetProfiles(profiles []models.Profile, active *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := !sameProfile(s.ActiveProfile, active)
	s.Profiles = slices.Clone(profiles)
	s.ActiveProfile = active
	if changed {
		s.Dashboard = nil
		s.Usage = nil
		s.Jobs = nil
		s.Projection = nil
		clear(s.errors)
	}
}

func sameProfile(a, b *models.Profile) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// GetProfiles returns a copy of the profile list.
func (s *State) GetProfiles() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Profiles)
}

// GetProfileCount returns the number of configured profiles.
func (s *State) GetProfileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Profiles)
}

// GetActiveProfile returns the active profile, or nil.
func (s *State) GetActiveProfile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ActiveProfile
}

// isActive reports whether key belongs to the active profile. Events for
// other profiles arrive late after a switch and are ignored.
func (s *State) isActive(key string) bool {
	return s.ActiveProfile == nil || key == "" || s.ActiveProfile.Key() == key
}

// SetDashboard stores the dashboard for profile.
func (s *State) SetDashboard(profile string, d *models.BackupDashboard) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive(profile) {
		return false
	}
	s.Dashboard = d
	s.Loading.Dashboard = false
	s.Loading.Initial = false
	delete(s.errors, ResourceDashboard)
	s.LastUpdated = time.Now()
	return true
}

// GetDashboard returns the current dashboard, or nil.
func (s *State) GetDashboard() *models.BackupDashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dashboard
}

// SetUsage stores the usage history for profile.
func (s *State) SetUsage(profile string, h *models.UsageHistory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive(profile) {
		return false
	}
	s.Usage = h
	s.Loading.Usage = false
	delete(s.errors, ResourceUsage)
	s.LastUpdated = time.Now()
	return true
}

// GetUsage returns the current usage history, or nil.
func (s *State) GetUsage() *models.UsageHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Usage
}

// SetJobs stores the recent jobs for profile.
func (s *State) SetJobs(profile string, jobs []models.BackupJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive(profile) {
		return false
	}
	s.Jobs = slices.Clone(jobs)
	s.Loading.Jobs = false
	delete(s.errors, ResourceJobs)
	s.LastUpdated = time.Now()
	return true
}

// GetJobs returns a copy of the recent jobs.
func (s *State) GetJobs() []models.BackupJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Jobs)
}

// SetProjection stores the storage projection for profile.
func (s *State) SetProjection(profile string, p *models.StorageProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isActive(profile) {
		s.Projection = p
	}
}

// GetProjection returns the storage projection, or nil.
func (s *State) GetProjection() *models.StorageProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Projection
}

// SetStats updates the cache statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current cache statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.ID == id
	})
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.IsExpired()
	})
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time backup data arrived.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}

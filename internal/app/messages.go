package app

import (
	"time"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// ProfilesLoadedMsg contains the profile list and cache statistics.
type ProfilesLoadedMsg struct {
	Profiles []models.ProfileWithStatus
	Stats    services.StatsEvent
}

// StatsLoadedMsg contains loaded cache statistics.
type StatsLoadedMsg struct {
	Stats services.StatsEvent
}

// RefreshMsg requests a refresh of the backup data.
type RefreshMsg struct {
	Resource string // "all" or "usage"
}

// RefreshResultMsg reports the outcome of a refresh.
type RefreshResultMsg struct {
	Error error
}

// SwitchProfileMsg requests switching to a different active profile.
type SwitchProfileMsg struct {
	ID string
}

// SwitchProfileResultMsg contains the result of a profile switch.
type SwitchProfileResultMsg struct {
	Error   error
	ID      string
	Success bool
}

// SetHistoryDaysMsg requests a new usage-history window.
type SetHistoryDaysMsg struct {
	Days int
}

// DataUpdatedMsg tells tabs that a backup resource changed in State.
type DataUpdatedMsg struct {
	Resource string
}

// JobFailedMsg is forwarded to tabs when a backup job newly fails.
type JobFailedMsg struct {
	Job *models.BackupJob
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab. The newly active tab
// receives it too, so it can load lazily.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Error error
	Path  string
}

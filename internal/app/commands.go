package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/breeze-rmm/breeze-console/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// refreshTimeout bounds a user-triggered refresh of all resources.
	refreshTimeout = 90 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadProfilesCmd returns a command that loads profiles and cache stats.
func loadProfilesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		profiles, stats := mgr.InitialState()
		return ProfilesLoadedMsg{Profiles: profiles, Stats: stats}
	}
}

// loadStatsCmd returns a command that loads cache statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return StatsLoadedMsg{Stats: mgr.GetStats()}
	}
}

// refreshCmd refetches every backup resource of the active profile. Results
// arrive as service events; the returned message only carries the error.
func refreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return RefreshResultMsg{Error: mgr.Refresh(ctx)}
	}
}

// setHistoryDaysCmd changes the usage-history window and refetches it.
func setHistoryDaysCmd(mgr *services.Manager, days int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return RefreshResultMsg{Error: mgr.SetHistoryDays(ctx, days)}
	}
}

// switchProfileCmd returns a command that switches the active profile.
func switchProfileCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Profiles().SetActiveProfile(id)
		return SwitchProfileResultMsg{
			ID:      id,
			Success: err == nil,
			Error:   err,
		}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Notify returns a command that adds a notification; tabs use it to report
// results of their own actions.
func Notify(t NotificationType, message string) tea.Cmd {
	d := DefaultNotificationDuration
	if t == NotificationError {
		d = LongNotificationDuration
	}
	return notifyCmd(t, message, d)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// LoadProfiles returns a command that loads profiles.
func (c *Commands) LoadProfiles() tea.Cmd {
	return loadProfilesCmd(c.manager)
}

// LoadStats returns a command that loads cache statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// Refresh returns a command that refreshes all backup data.
func (c *Commands) Refresh() tea.Cmd {
	return refreshCmd(c.manager)
}

// SetHistoryDays returns a command that changes the usage-history window.
func (c *Commands) SetHistoryDays(days int) tea.Cmd {
	return setHistoryDaysCmd(c.manager, days)
}

// SwitchProfile returns a command that switches the active profile.
func (c *Commands) SwitchProfile(id string) tea.Cmd {
	return switchProfileCmd(c.manager, id)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

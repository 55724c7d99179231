package app

import (
	"testing"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/services"
)

func testProfiles() []models.Profile {
	return []models.Profile{
		{ID: "p1", Name: "Prod", APIURL: "https://prod.example.com", Token: "a"},
		{ID: "p2", Name: "Lab", APIURL: "https://lab.example.com", Token: "b"},
	}
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if len(s.Profiles) != 0 {
		t.Error("Profiles should be empty")
	}
	if !s.Loading.Initial {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading(ResourceDashboard, true)
	if !s.IsLoading(ResourceDashboard) {
		t.Error("Dashboard loading should be true")
	}

	s.SetLoading(ResourceDashboard, false)
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading(ResourceInitial, false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}
	if resources := s.GetLoadingResources(); len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetRefreshing()
	resources := s.GetLoadingResources()
	if len(resources) != 3 {
		t.Errorf("GetLoadingResources = %v, want dashboard, usage and jobs", resources)
	}
}

func TestState_Errors(t *testing.T) {
	s := NewState()
	s.SetLoading(ResourceUsage, true)

	s.SetError(ResourceUsage, "boom")
	if got := s.GetError(ResourceUsage); got != "boom" {
		t.Errorf("GetError = %q, want boom", got)
	}
	if s.IsLoading(ResourceUsage) {
		t.Error("SetError should stop loading")
	}

	// New data clears the error.
	s.SetUsage("", &models.UsageHistory{Days: 30})
	if got := s.GetError(ResourceUsage); got != "" {
		t.Errorf("error not cleared: %q", got)
	}

	s.SetError(ResourceJobs, "x")
	s.SetError(ResourceJobs, "")
	if got := s.GetError(ResourceJobs); got != "" {
		t.Errorf("empty message should clear, got %q", got)
	}
}

func TestState_Profiles(t *testing.T) {
	s := NewState()
	profiles := testProfiles()

	s.SetProfiles(profiles, &profiles[1])

	if s.GetProfileCount() != 2 {
		t.Errorf("GetProfileCount = %d, want 2", s.GetProfileCount())
	}
	active := s.GetActiveProfile()
	if active == nil || active.Name != "Lab" {
		t.Fatalf("GetActiveProfile = %+v, want Lab", active)
	}

	// Returned slice is a copy.
	got := s.GetProfiles()
	got[0].Name = "changed"
	if s.GetProfiles()[0].Name != "Prod" {
		t.Error("GetProfiles should return a copy")
	}
}

func TestState_SwitchingProfileClearsData(t *testing.T) {
	s := NewState()
	profiles := testProfiles()
	s.SetProfiles(profiles, &profiles[0])

	key := profiles[0].Key()
	s.SetDashboard(key, &models.BackupDashboard{})
	s.SetJobs(key, []models.BackupJob{{ID: "j1"}})
	s.SetError(ResourceUsage, "boom")

	// Same profile again keeps data.
	s.SetProfiles(profiles, &profiles[0])
	if s.GetDashboard() == nil {
		t.Fatal("dashboard cleared without a profile change")
	}

	s.SetProfiles(profiles, &profiles[1])
	if s.GetDashboard() != nil || len(s.GetJobs()) != 0 {
		t.Error("data should be cleared after switching profile")
	}
	if s.GetError(ResourceUsage) != "" {
		t.Error("errors should be cleared after switching profile")
	}
}

func TestState_IgnoresOtherProfiles(t *testing.T) {
	s := NewState()
	profiles := testProfiles()
	s.SetProfiles(profiles, &profiles[0])

	if s.SetDashboard(profiles[1].Key(), &models.BackupDashboard{}) {
		t.Error("SetDashboard accepted data for an inactive profile")
	}
	if s.GetDashboard() != nil {
		t.Error("dashboard should still be nil")
	}

	if !s.SetDashboard(profiles[0].Key(), &models.BackupDashboard{}) {
		t.Error("SetDashboard rejected the active profile")
	}
	if s.IsInitialLoading() {
		t.Error("first dashboard should end initial loading")
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}

	s.SetProjection(profiles[1].Key(), &models.StorageProjection{})
	if s.GetProjection() != nil {
		t.Error("projection for inactive profile should be ignored")
	}
	s.SetProjection(profiles[0].Key(), &models.StorageProjection{Status: models.ProjectionSafe})
	if p := s.GetProjection(); p == nil || p.Status != models.ProjectionSafe {
		t.Errorf("GetProjection = %+v", p)
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()
	if s.GetStats() != nil {
		t.Error("stats should start nil")
	}
	s.SetStats(services.StatsEvent{ProfileCount: 2, CachedPoints: 10})
	if got := s.GetStats(); got == nil || got.CachedPoints != 10 {
		t.Errorf("GetStats = %+v", got)
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationIDsAreUnique(t *testing.T) {
	s := NewState()
	seen := map[string]bool{}
	for range 5 {
		id := s.AddNotification(NotificationInfo, "x", time.Minute)
		if seen[id] {
			t.Fatalf("duplicate notification ID %s", id)
		}
		seen[id] = true
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState()
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "x", time.Minute)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("kept %d notifications, want %d", got, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	s.notifications = append(s.notifications,
		Notification{ID: "expired", CreatedAt: time.Now().Add(-2 * time.Minute), Duration: time.Minute},
		Notification{ID: "active", CreatedAt: time.Now(), Duration: time.Minute},
	)

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 || notifs[0].ID != "active" {
		t.Errorf("notifications = %+v, want only active", notifs)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Refreshing...")

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "Refreshing..." || notifs[0].Type != NotificationLoading {
		t.Errorf("notification = %+v", notifs[0])
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

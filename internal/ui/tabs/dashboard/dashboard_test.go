package dashboard

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/models"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (*Model, *app.State, string) {
	t.Helper()
	state := app.NewState()
	profiles := []models.Profile{{ID: "p1", Name: "Prod", APIURL: "https://prod.example.com", Token: "x"}}
	state.SetProfiles(profiles, &profiles[0])

	m := New(state)
	m.now = func() time.Time { return fixedNow }
	m.SetSize(120, 80)
	return m, state, profiles[0].Key()
}

func sampleDashboard() *models.BackupDashboard {
	return &models.BackupDashboard{
		LastUpdated: fixedNow.Add(-2 * time.Hour),
		Storage:     models.StorageSummary{UsedBytes: 42 << 30, TotalBytes: 100 << 30},
		Totals: models.DashboardTotals{
			Devices: 1200, Policies: 4, Configs: 2, Snapshots: 80,
			JobsLast24h: 30, FailedLast24h: 2, RunningJobs: 1, ProtectedBytes: 5 << 40,
		},
		Providers: []models.ProviderSummary{
			{Provider: "s3", UsedBytes: 40 << 30, SnapshotCount: 70, ConfigCount: 1},
			{Provider: "local", UsedBytes: 2 << 30, SnapshotCount: 10, ConfigCount: 1},
		},
		RecentJobs: []models.BackupJob{
			{ID: "j1", PolicyName: "Nightly", Status: models.JobStatusCompleted, StartedAt: fixedNow.Add(-time.Hour)},
			{ID: "j2", PolicyName: "Weekly", Status: models.JobStatusFailed, Error: "disk full"},
		},
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Init(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_ViewPlaceholders(t *testing.T) {
	m, state, _ := newTestModel(t)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "Loading backup dashboard") {
		t.Errorf("initial view should show the spinner, got %q", view)
	}

	state.SetError(app.ResourceDashboard, "connection refused")
	view := ansi.Strip(m.View())
	for _, want := range []string{"Backup dashboard unavailable", "connection refused", "press r to retry"} {
		if !strings.Contains(view, want) {
			t.Errorf("error view missing %q", want)
		}
	}
}

func TestModel_ViewNoProfile(t *testing.T) {
	state := app.NewState()
	state.SetLoading(app.ResourceInitial, false)
	m := New(state)
	m.SetSize(100, 20)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "No Breeze profile configured") {
		t.Errorf("view = %q", view)
	}
}

func TestModel_ViewDashboard(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())
	state.SetProjection(profile, &models.StorageProjection{
		Status: models.ProjectionWarning, GrowthPerDay: 1 << 30, LimitBytes: 100 << 30,
		DaysUntilFull: 20, Confidence: "high", DataPoints: 30,
	})
	m.Update(app.DataUpdatedMsg{Resource: app.ResourceDashboard})

	view := ansi.Strip(m.View())
	for _, want := range []string{
		"Prod",
		"Updated 2 hours ago",
		"42 GiB used of 100 GiB",
		"WARNING",
		"+1.0 GiB/day",
		"20 days",
		"high confidence",
		"1,200",
		"5.0 TiB",
		"s3: 70 snapshots, 1 configs",
		"Nightly",
		"Weekly",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ViewPartialErrors(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())
	state.SetError(app.ResourceJobs, "timeout")
	state.SetError(app.ResourceDashboard, "HTTP 502")

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Jobs unavailable: timeout") {
		t.Error("jobs error should be shown inline")
	}
	if !strings.Contains(view, "Refresh failed: HTTP 502") {
		t.Error("stale dashboard should show the refresh error")
	}
	if !strings.Contains(view, "42 GiB used") {
		t.Error("stale dashboard data should still render")
	}
}

func TestModel_ViewNoLimit(t *testing.T) {
	m, state, profile := newTestModel(t)
	d := sampleDashboard()
	d.Storage.TotalBytes = 0
	state.SetDashboard(profile, d)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "no storage limit reported") {
		t.Error("missing no-limit hint")
	}
	if !strings.Contains(view, "waiting for usage history") {
		t.Error("missing projection placeholder")
	}
}

func TestModel_JobSelection(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())

	m.Update(keyPress("j"))
	if m.selectedJob != 1 {
		t.Fatalf("selectedJob = %d, want 1", m.selectedJob)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "disk full") {
		t.Error("selected failed job should show its error")
	}

	m.Update(keyPress("j"))
	if m.selectedJob != 0 {
		t.Errorf("selection should wrap, got %d", m.selectedJob)
	}
	m.Update(keyPress("k"))
	if m.selectedJob != 1 {
		t.Errorf("prev should wrap, got %d", m.selectedJob)
	}
	m.Update(keyPress("g"))
	if m.selectedJob != 0 {
		t.Errorf("first = %d", m.selectedJob)
	}
	m.Update(keyPress("G"))
	if m.selectedJob != 1 {
		t.Errorf("last = %d", m.selectedJob)
	}
}

func TestModel_JobsEndpointPreferred(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())
	state.SetJobs(profile, []models.BackupJob{{ID: "j9", PolicyName: "Hourly", Status: models.JobStatusRunning}})

	jobs := m.jobs()
	if len(jobs) != 1 || jobs[0].ID != "j9" {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestModel_SelectionClampedOnUpdate(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())
	m.selectedJob = 1

	state.SetJobs(profile, []models.BackupJob{{ID: "only"}})
	m.Update(app.DataUpdatedMsg{Resource: app.ResourceJobs})
	if m.selectedJob != 0 {
		t.Errorf("selectedJob = %d, want 0", m.selectedJob)
	}
}

func TestAnimation(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())

	start := fixedNow
	if !m.syncAnimationTargets(start) {
		t.Fatal("new target should start an animation")
	}

	anim := m.animations[storageAnimKey]
	target := anim.TargetPercent
	if math.Abs(target-42) > 1e-9 {
		t.Fatalf("target = %v, want 42", target)
	}

	m.stepAnimations(start.Add(750 * time.Millisecond))
	if mid := anim.CurrentPercent; mid <= 0 || mid >= target {
		t.Errorf("mid-animation percent = %v, want between 0 and %v", mid, target)
	}

	m.stepAnimations(start.Add(2 * time.Second))
	if anim.CurrentPercent != target {
		t.Errorf("final percent = %v, want %v", anim.CurrentPercent, target)
	}
	if m.syncAnimationTargets(start.Add(2 * time.Second)) {
		t.Error("animation should be settled")
	}
	if got := m.displayPercent(target); got != target {
		t.Errorf("displayPercent = %v", got)
	}
}

func TestAnimationTickStops(t *testing.T) {
	m, state, profile := newTestModel(t)
	state.SetDashboard(profile, sampleDashboard())
	state.SetLoading(app.ResourceInitial, false)

	m.syncAnimationTargets(fixedNow)
	m.stepAnimations(fixedNow.Add(time.Minute))

	if cmd := m.handleAnimationTick(animationTickMsg(fixedNow.Add(time.Minute))); cmd != nil {
		t.Error("settled animation with nothing loading should stop ticking")
	}
}

func TestHelp(t *testing.T) {
	m, _, _ := newTestModel(t)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings should not be empty")
	}
}

package projection

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/db"
	"github.com/breeze-rmm/breeze-console/internal/models"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database), database
}

var baseTime = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

// linearSamples returns n daily samples starting at start and growing by step.
func linearSamples(n int, start, step float64) []sample {
	samples := make([]sample, n)
	for i := range samples {
		samples[i] = sample{at: baseTime.AddDate(0, 0, i), bytes: start + step*float64(i)}
	}
	return samples
}

func linearHistory(n int, start, step float64) *models.UsageHistory {
	h := &models.UsageHistory{}
	for _, s := range linearSamples(n, start, step) {
		h.Points = append(h.Points, models.UsagePoint{
			Timestamp:  s.at.Format(time.RFC3339),
			TotalBytes: s.bytes,
		})
	}
	return h
}

func TestNew(t *testing.T) {
	svc, _ := newTestService(t)
	if svc == nil {
		t.Fatal("Expected non-nil service")
	}
	if New(nil) == nil {
		t.Fatal("Expected non-nil service without a database")
	}
}

func TestGrowthPerDay(t *testing.T) {
	slope, ok := growthPerDay(linearSamples(10, 1000, 100))
	if !ok {
		t.Fatal("Expected a slope")
	}
	if math.Abs(slope-100) > 1e-9 {
		t.Errorf("Expected 100 bytes/day, got %f", slope)
	}

	// Same timestamp twice: no spread on x.
	flat := []sample{{at: baseTime, bytes: 1}, {at: baseTime, bytes: 5}}
	if _, ok := growthPerDay(flat); ok {
		t.Error("Expected no slope for identical timestamps")
	}
}

func TestProjectionStatus(t *testing.T) {
	now := baseTime.AddDate(0, 0, 9)

	tests := []struct {
		name       string
		samples    []sample
		storage    models.StorageSummary
		wantStatus models.ProjectionStatus
		wantDays   float64
	}{
		{
			name:       "Safe",
			samples:    linearSamples(10, 1000, 100),
			storage:    models.StorageSummary{UsedBytes: 1900, TotalBytes: 10000},
			wantStatus: models.ProjectionSafe,
			wantDays:   81,
		},
		{
			name:       "Warning",
			samples:    linearSamples(10, 1000, 100),
			storage:    models.StorageSummary{UsedBytes: 1900, TotalBytes: 3000},
			wantStatus: models.ProjectionWarning,
			wantDays:   11,
		},
		{
			name:       "Critical",
			samples:    linearSamples(10, 1000, 100),
			storage:    models.StorageSummary{UsedBytes: 1900, TotalBytes: 2400},
			wantStatus: models.ProjectionCritical,
			wantDays:   5,
		},
		{
			name:       "HighUsageNoGrowth",
			samples:    linearSamples(10, 920, 0),
			storage:    models.StorageSummary{UsedBytes: 920, TotalBytes: 1000},
			wantStatus: models.ProjectionWarning,
			wantDays:   -1,
		},
		{
			name:       "NearlyFull",
			samples:    linearSamples(10, 990, 0),
			storage:    models.StorageSummary{UsedBytes: 990, TotalBytes: 1000},
			wantStatus: models.ProjectionCritical,
			wantDays:   -1,
		},
		{
			name:       "Shrinking",
			samples:    linearSamples(10, 2000, -50),
			storage:    models.StorageSummary{UsedBytes: 1550, TotalBytes: 10000},
			wantStatus: models.ProjectionSafe,
			wantDays:   -1,
		},
		{
			name:       "NoLimit",
			samples:    linearSamples(10, 1000, 100),
			storage:    models.StorageSummary{UsedBytes: 1900},
			wantStatus: models.ProjectionUnknown,
			wantDays:   -1,
		},
		{
			name:       "SinglePoint",
			samples:    linearSamples(1, 1000, 0),
			storage:    models.StorageSummary{UsedBytes: 1000, TotalBytes: 10000},
			wantStatus: models.ProjectionUnknown,
			wantDays:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj := project(tt.samples, tt.storage, now)
			if proj.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", proj.Status, tt.wantStatus)
			}
			if math.Abs(proj.DaysUntilFull-tt.wantDays) > 1e-6 {
				t.Errorf("DaysUntilFull = %f, want %f", proj.DaysUntilFull, tt.wantDays)
			}
			if tt.wantDays > 0 {
				want := now.Add(time.Duration(tt.wantDays * float64(24*time.Hour)))
				if proj.FullAt.Sub(want).Abs() > time.Second {
					t.Errorf("FullAt = %v, want %v", proj.FullAt, want)
				}
			} else if !proj.FullAt.IsZero() {
				t.Errorf("FullAt should be zero, got %v", proj.FullAt)
			}
		})
	}
}

func TestProject_UsedBytesFromHistory(t *testing.T) {
	proj := project(linearSamples(3, 100, 50), models.StorageSummary{TotalBytes: 1000}, baseTime)
	if proj.UsedBytes != 200 {
		t.Errorf("Expected latest total 200, got %f", proj.UsedBytes)
	}
	if proj.UsedPercent != 20 {
		t.Errorf("Expected 20%%, got %f", proj.UsedPercent)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{0, "low"},
		{6, "low"},
		{7, "medium"},
		{29, "medium"},
		{30, "high"},
	}
	for _, tt := range tests {
		if got := confidence(tt.points); got != tt.want {
			t.Errorf("confidence(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}
}

func TestCalculate_FromHistory(t *testing.T) {
	svc, _ := newTestService(t)

	history := linearHistory(10, 1000, 100)
	// Points with bad timestamps are ignored.
	history.Points = append(history.Points, models.UsagePoint{Timestamp: "yesterday", TotalBytes: 1})

	proj := svc.Calculate("p1", history, models.StorageSummary{UsedBytes: 1900, TotalBytes: 10000})
	if proj.Profile != "p1" {
		t.Errorf("Profile = %q, want p1", proj.Profile)
	}
	if proj.DataPoints != 10 {
		t.Errorf("DataPoints = %d, want 10", proj.DataPoints)
	}
	if math.Abs(proj.GrowthPerDay-100) > 1e-6 {
		t.Errorf("GrowthPerDay = %f, want 100", proj.GrowthPerDay)
	}
	if proj.Confidence != "medium" {
		t.Errorf("Confidence = %s, want medium", proj.Confidence)
	}
}

func TestCalculate_FallsBackToDailyTotals(t *testing.T) {
	svc, database := newTestService(t)

	now := time.Now().UTC().Truncate(24 * time.Hour)
	var points []models.UsagePoint
	for i := 5; i >= 1; i-- {
		points = append(points, models.UsagePoint{
			Timestamp:  now.AddDate(0, 0, -i).Add(time.Hour).Format(time.RFC3339),
			TotalBytes: float64(1000 - i*100),
		})
	}
	if err := database.SaveUsageHistory("p1", points); err != nil {
		t.Fatalf("SaveUsageHistory() error = %v", err)
	}

	proj := svc.Calculate("p1", nil, models.StorageSummary{UsedBytes: 900, TotalBytes: 2000})
	if proj.DataPoints != 5 {
		t.Fatalf("DataPoints = %d, want 5", proj.DataPoints)
	}
	if math.Abs(proj.GrowthPerDay-100) > 1e-6 {
		t.Errorf("GrowthPerDay = %f, want 100", proj.GrowthPerDay)
	}
	if math.Abs(proj.DaysUntilFull-11) > 1e-6 {
		t.Errorf("DaysUntilFull = %f, want 11", proj.DaysUntilFull)
	}
	if proj.Status != models.ProjectionWarning {
		t.Errorf("Status = %s, want WARNING", proj.Status)
	}
}

func TestCachedProjection(t *testing.T) {
	svc := New(nil)

	if svc.GetCachedProjection("p1") != nil {
		t.Error("Expected no cached projection")
	}

	svc.Calculate("p1", linearHistory(3, 10, 1), models.StorageSummary{TotalBytes: 100})
	svc.Calculate("p2", nil, models.StorageSummary{})

	if svc.GetCachedProjection("p1") == nil {
		t.Error("Expected cached projection for p1")
	}
	if all := svc.GetAllProjections(); len(all) != 2 {
		t.Errorf("Expected 2 projections, got %d", len(all))
	}

	svc.Forget("p1")
	if svc.GetCachedProjection("p1") != nil {
		t.Error("Expected p1 to be forgotten")
	}
}

func TestFormatTimeToFull(t *testing.T) {
	tests := []struct {
		proj *models.StorageProjection
		want string
	}{
		{nil, "No limit"},
		{&models.StorageProjection{DaysUntilFull: 3}, "No limit"},
		{&models.StorageProjection{LimitBytes: 1, DaysUntilFull: -1}, "Not growing"},
		{&models.StorageProjection{LimitBytes: 1, DaysUntilFull: 0.5}, "< 1 day"},
		{&models.StorageProjection{LimitBytes: 1, DaysUntilFull: 12.4}, "12 days"},
		{&models.StorageProjection{LimitBytes: 1, DaysUntilFull: 90}, "3.0 months"},
	}
	for _, tt := range tests {
		if got := FormatTimeToFull(tt.proj); got != tt.want {
			t.Errorf("FormatTimeToFull(%+v) = %q, want %q", tt.proj, got, tt.want)
		}
	}
}

func TestFormatGrowth(t *testing.T) {
	if got := FormatGrowth(0); got != "No growth" {
		t.Errorf("FormatGrowth(0) = %q", got)
	}
	if got := FormatGrowth(100); got != "+100 B/day" {
		t.Errorf("FormatGrowth(100) = %q", got)
	}
	if got := FormatGrowth(-100); got != "-100 B/day" {
		t.Errorf("FormatGrowth(-100) = %q", got)
	}
}

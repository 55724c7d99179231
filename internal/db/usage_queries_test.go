package db

import (
	"reflect"
	"testing"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Truncate(time.Hour).Format(time.RFC3339)
}

func TestSaveAndGetUsageHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	points := []models.UsagePoint{
		{Timestamp: daysAgo(3), TotalBytes: 1000, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 700}, {Provider: "local", Bytes: 300}}},
		{Timestamp: daysAgo(2), TotalBytes: 2000, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 1300}, {Provider: "local", Bytes: 700}}},
		{Timestamp: daysAgo(1), TotalBytes: 0, Providers: []models.ProviderSample{}},
	}

	if err := db.SaveUsageHistory("prod", points); err != nil {
		t.Fatalf("SaveUsageHistory: %v", err)
	}

	got, err := db.GetUsageHistory("prod", 30)
	if err != nil {
		t.Fatalf("GetUsageHistory: %v", err)
	}
	if !reflect.DeepEqual(got, points) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, points)
	}

	other, err := db.GetUsageHistory("staging", 30)
	if err != nil {
		t.Fatal(err)
	}
	if other == nil || len(other) != 0 {
		t.Errorf("other profile = %#v, want empty slice", other)
	}
}

func TestSaveUsageHistory_ReplacesRange(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	old := []models.UsagePoint{
		{Timestamp: daysAgo(10), TotalBytes: 10, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 10}}},
		{Timestamp: daysAgo(5), TotalBytes: 50, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 50}}},
		{Timestamp: daysAgo(4), TotalBytes: 40, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 40}}},
	}
	if err := db.SaveUsageHistory("prod", old); err != nil {
		t.Fatal(err)
	}

	fresh := []models.UsagePoint{
		{Timestamp: daysAgo(6), TotalBytes: 60, Providers: []models.ProviderSample{{Provider: "b2", Bytes: 60}}},
		{Timestamp: daysAgo(3), TotalBytes: 30, Providers: []models.ProviderSample{{Provider: "b2", Bytes: 30}}},
	}
	if err := db.SaveUsageHistory("prod", fresh); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetUsageHistory("prod", 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (one old point outside range + 2 fresh): %+v", len(got), got)
	}
	if got[0].TotalBytes != 10 || got[1].TotalBytes != 60 || got[2].TotalBytes != 30 {
		t.Errorf("totals = %v, %v, %v", got[0].TotalBytes, got[1].TotalBytes, got[2].TotalBytes)
	}
	if got[1].Providers[0].Provider != "b2" {
		t.Errorf("samples not replaced: %+v", got[1].Providers)
	}

	stats, err := db.GetCacheStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Points != 3 || stats.Samples != 3 || stats.Profiles != 1 {
		t.Errorf("stats = %+v; orphaned samples should cascade", stats)
	}
}

func TestGetUsageHistory_Window(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	points := []models.UsagePoint{
		{Timestamp: daysAgo(40), TotalBytes: 1, Providers: []models.ProviderSample{}},
		{Timestamp: daysAgo(2), TotalBytes: 2, Providers: []models.ProviderSample{}},
		{Timestamp: "week 12", TotalBytes: 3, Providers: []models.ProviderSample{}},
	}
	if err := db.SaveUsageHistory("prod", points); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetUsageHistory("prod", 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	for _, p := range got {
		if p.TotalBytes == 1 {
			t.Error("point outside the window was returned")
		}
	}
}

func TestPruneUsageHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	points := []models.UsagePoint{
		{Timestamp: daysAgo(100), TotalBytes: 1, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 1}}},
		{Timestamp: daysAgo(1), TotalBytes: 2, Providers: []models.ProviderSample{{Provider: "s3", Bytes: 2}}},
	}
	if err := db.SaveUsageHistory("prod", points); err != nil {
		t.Fatal(err)
	}

	n, err := db.PruneUsageHistory(90 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneUsageHistory: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	stats, _ := db.GetCacheStats()
	if stats.Points != 1 || stats.Samples != 1 {
		t.Errorf("stats after prune = %+v", stats)
	}
}

func TestSaveUsageHistory_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.SaveUsageHistory("prod", nil); err != nil {
		t.Errorf("empty save: %v", err)
	}
}

func TestGetDailyTotals(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	day := time.Now().UTC().AddDate(0, 0, -2).Truncate(24 * time.Hour)
	points := []models.UsagePoint{
		{Timestamp: day.Add(1 * time.Hour).Format(time.RFC3339), TotalBytes: 100, Providers: []models.ProviderSample{}},
		{Timestamp: day.Add(5 * time.Hour).Format(time.RFC3339), TotalBytes: 150, Providers: []models.ProviderSample{}},
		{Timestamp: day.AddDate(0, 0, 1).Add(time.Hour).Format(time.RFC3339), TotalBytes: 200, Providers: []models.ProviderSample{}},
		{Timestamp: "not a date", TotalBytes: 999, Providers: []models.ProviderSample{}},
	}
	if err := db.SaveUsageHistory("prod", points); err != nil {
		t.Fatal(err)
	}

	totals, err := db.GetDailyTotals("prod", 30)
	if err != nil {
		t.Fatalf("GetDailyTotals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(totals), totals)
	}
	if totals[0].TotalBytes != 150 || totals[1].TotalBytes != 200 {
		t.Errorf("totals = %+v", totals)
	}
	if !totals[0].Day.Equal(day) {
		t.Errorf("day = %v, want %v", totals[0].Day, day)
	}
}

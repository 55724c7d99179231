package db

import (
	"testing"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

func TestRecordJobStatus(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	job := models.BackupJob{ID: "job-1", Status: models.JobStatusFailed, Error: "disk full"}

	isNew, err := db.RecordJobStatus("prod", job)
	if err != nil {
		t.Fatalf("RecordJobStatus: %v", err)
	}
	if !isNew {
		t.Error("first record should be new")
	}

	isNew, err = db.RecordJobStatus("prod", job)
	if err != nil {
		t.Fatal(err)
	}
	if isNew {
		t.Error("repeat record should not be new")
	}

	isNew, _ = db.RecordJobStatus("staging", job)
	if !isNew {
		t.Error("same job on another profile should be new")
	}

	job.Status = models.JobStatusCompleted
	isNew, _ = db.RecordJobStatus("prod", job)
	if !isNew {
		t.Error("status change should be new")
	}

	if _, err := db.RecordJobStatus("prod", models.BackupJob{}); err == nil {
		t.Error("expected error for empty job id")
	}
}

func TestDashboardCache(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	got, err := db.GetDashboard("prod")
	if err != nil || got != nil {
		t.Fatalf("GetDashboard on empty cache = %v, %v", got, err)
	}

	d := &models.BackupDashboard{
		Storage: models.StorageSummary{UsedBytes: 10, TotalBytes: 100},
		Totals:  models.DashboardTotals{Configs: 3},
	}
	if err := db.SaveDashboard("prod", d); err != nil {
		t.Fatalf("SaveDashboard: %v", err)
	}
	d.Totals.Configs = 4
	if err := db.SaveDashboard("prod", d); err != nil {
		t.Fatalf("SaveDashboard overwrite: %v", err)
	}

	got, err = db.GetDashboard("prod")
	if err != nil {
		t.Fatal(err)
	}
	if got.Storage.TotalBytes != 100 || got.Totals.Configs != 4 {
		t.Errorf("cached dashboard = %+v", got)
	}
	if got.LastUpdated.IsZero() {
		t.Error("LastUpdated should come from the cache row")
	}
}

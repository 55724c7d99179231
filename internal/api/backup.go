package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

// Dashboard fetches GET /backup/dashboard.
func (c *Client) Dashboard(ctx context.Context) (*models.BackupDashboard, error) {
	d, err := get[models.BackupDashboard](ctx, c, "/backup/dashboard", nil, "dashboard")
	if err != nil {
		return nil, err
	}
	d.LastUpdated = time.Now()
	return &d, nil
}

// UsageHistoryRaw returns the undecoded body of GET /backup/usage-history.
func (c *Client) UsageHistoryRaw(ctx context.Context, days int) ([]byte, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	return c.do(ctx, http.MethodGet, "/backup/usage-history", q, nil)
}

// UsageHistory fetches and normalizes the provider usage history.
func (c *Client) UsageHistory(ctx context.Context, days int) (*models.UsageHistory, error) {
	raw, err := c.UsageHistoryRaw(ctx, days)
	if err != nil {
		return nil, err
	}
	points, report, err := usage.NormalizeJSON(raw)
	if err != nil {
		return nil, err
	}
	return &models.UsageHistory{
		Days:           days,
		Points:         points,
		DroppedPoints:  report.DroppedPoints,
		DroppedSamples: report.DroppedSamples,
	}, nil
}

// ListConfigs fetches GET /backup/configs.
func (c *Client) ListConfigs(ctx context.Context) ([]models.BackupConfig, error) {
	return list[models.BackupConfig](ctx, c, "/backup/configs", nil, "configs")
}

// CreateConfig creates a storage destination.
func (c *Client) CreateConfig(ctx context.Context, in models.BackupConfigInput) (*models.BackupConfig, error) {
	cfg, err := send[models.BackupConfig](ctx, c, http.MethodPost, "/backup/configs", in, "config")
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig patches a storage destination.
func (c *Client) UpdateConfig(ctx context.Context, id string, in models.BackupConfigInput) (*models.BackupConfig, error) {
	cfg, err := send[models.BackupConfig](ctx, c, http.MethodPatch, "/backup/configs/"+url.PathEscape(id), in, "config")
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeleteConfig removes a storage destination.
func (c *Client) DeleteConfig(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/backup/configs/"+url.PathEscape(id), nil, nil)
	return err
}

// ListPolicies fetches GET /backup/policies.
func (c *Client) ListPolicies(ctx context.Context) ([]models.BackupPolicy, error) {
	return list[models.BackupPolicy](ctx, c, "/backup/policies", nil, "policies")
}

// CreatePolicy creates a backup policy.
func (c *Client) CreatePolicy(ctx context.Context, in models.BackupPolicyInput) (*models.BackupPolicy, error) {
	p, err := send[models.BackupPolicy](ctx, c, http.MethodPost, "/backup/policies", in, "policy")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePolicy patches a backup policy.
func (c *Client) UpdatePolicy(ctx context.Context, id string, in models.BackupPolicyInput) (*models.BackupPolicy, error) {
	p, err := send[models.BackupPolicy](ctx, c, http.MethodPatch, "/backup/policies/"+url.PathEscape(id), in, "policy")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePolicy removes a backup policy.
func (c *Client) DeletePolicy(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/backup/policies/"+url.PathEscape(id), nil, nil)
	return err
}

// JobFilter narrows GET /backup/jobs.
type JobFilter struct {
	Status string
	Limit  int
}

func (f JobFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// ListJobs fetches GET /backup/jobs.
func (c *Client) ListJobs(ctx context.Context, filter JobFilter) ([]models.BackupJob, error) {
	return list[models.BackupJob](ctx, c, "/backup/jobs", filter.query(), "jobs")
}

// ListSnapshots fetches GET /backup/snapshots.
func (c *Client) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	return list[models.Snapshot](ctx, c, "/backup/snapshots", nil, "snapshots")
}

// GetSnapshot fetches one snapshot including its file list.
func (c *Client) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	s, err := get[models.Snapshot](ctx, c, "/backup/snapshots/"+url.PathEscape(id), nil, "snapshot")
	if err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, fmt.Errorf("snapshot %s: empty response", id)
	}
	return &s, nil
}

// Restore starts a restore through POST /backup/restore.
func (c *Client) Restore(ctx context.Context, req models.RestoreRequest) (*models.RestoreResult, error) {
	if req.SnapshotID == "" {
		return nil, fmt.Errorf("restore: snapshot id is required")
	}
	r, err := send[models.RestoreResult](ctx, c, http.MethodPost, "/backup/restore", req, "restore")
	if err != nil {
		return nil, err
	}
	return &r, nil
}

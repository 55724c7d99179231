package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// ListMonitors fetches GET /monitors.
func (c *Client) ListMonitors(ctx context.Context) ([]models.Monitor, error) {
	return list[models.Monitor](ctx, c, "/monitors", nil, "monitors")
}

// CreateMonitor creates a network monitor.
func (c *Client) CreateMonitor(ctx context.Context, in models.MonitorInput) (*models.Monitor, error) {
	m, err := send[models.Monitor](ctx, c, http.MethodPost, "/monitors", in, "monitor")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMonitor patches a network monitor.
func (c *Client) UpdateMonitor(ctx context.Context, id string, in models.MonitorInput) (*models.Monitor, error) {
	m, err := send[models.Monitor](ctx, c, http.MethodPatch, "/monitors/"+url.PathEscape(id), in, "monitor")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMonitor removes a network monitor.
func (c *Client) DeleteMonitor(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/monitors/"+url.PathEscape(id), nil, nil)
	return err
}

// CheckMonitor runs an immediate check.
func (c *Client) CheckMonitor(ctx context.Context, id string) (*models.MonitorCheck, error) {
	r, err := send[models.MonitorCheck](ctx, c, http.MethodPost, "/monitors/"+url.PathEscape(id)+"/check", nil, "result")
	if err != nil {
		return nil, err
	}
	if r.MonitorID == "" {
		r.MonitorID = id
	}
	return &r, nil
}

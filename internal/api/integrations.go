package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// GetPSA fetches the PSA integration settings.
func (c *Client) GetPSA(ctx context.Context) (*models.PSAIntegration, error) {
	p, err := get[models.PSAIntegration](ctx, c, "/integrations/psa", nil, "integration")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePSA stores the PSA integration settings.
func (c *Client) SavePSA(ctx context.Context, in models.PSAIntegration) (*models.PSAIntegration, error) {
	p, err := send[models.PSAIntegration](ctx, c, http.MethodPut, "/integrations/psa", in, "integration")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMonitoring fetches the external monitoring integration settings.
func (c *Client) GetMonitoring(ctx context.Context) (*models.MonitoringIntegration, error) {
	m, err := get[models.MonitoringIntegration](ctx, c, "/integrations/monitoring", nil, "integration")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMonitoring stores the external monitoring integration settings.
func (c *Client) SaveMonitoring(ctx context.Context, in models.MonitoringIntegration) (*models.MonitoringIntegration, error) {
	m, err := send[models.MonitoringIntegration](ctx, c, http.MethodPut, "/integrations/monitoring", in, "integration")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// TestMonitoring tests the monitoring integration connection.
func (c *Client) TestMonitoring(ctx context.Context, in *models.MonitoringIntegration) (*models.TestResult, error) {
	r, err := send[models.TestResult](ctx, c, http.MethodPost, "/integrations/monitoring/test", in, "result")
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetTicketing fetches the ticketing integration settings.
func (c *Client) GetTicketing(ctx context.Context) (*models.TicketingIntegration, error) {
	t, err := get[models.TicketingIntegration](ctx, c, "/integrations/ticketing", nil, "integration")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveTicketing stores the ticketing integration settings.
func (c *Client) SaveTicketing(ctx context.Context, in models.TicketingIntegration) (*models.TicketingIntegration, error) {
	t, err := send[models.TicketingIntegration](ctx, c, http.MethodPut, "/integrations/ticketing", in, "integration")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TestTicketing tests the ticketing integration connection.
func (c *Client) TestTicketing(ctx context.Context, in *models.TicketingIntegration) (*models.TestResult, error) {
	r, err := send[models.TestResult](ctx, c, http.MethodPost, "/integrations/ticketing/test", in, "result")
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func chatPath(kind string) (string, error) {
	if !lo.Contains(models.ChatKinds, kind) {
		return "", fmt.Errorf("unsupported chat integration %q", kind)
	}
	return "/api/integrations/" + kind, nil
}

// GetChatIntegration fetches the slack, teams or discord integration.
func (c *Client) GetChatIntegration(ctx context.Context, kind string) (*models.ChatIntegration, error) {
	path, err := chatPath(kind)
	if err != nil {
		return nil, err
	}
	ci, err := get[models.ChatIntegration](ctx, c, path, nil, "integration")
	if err != nil {
		return nil, err
	}
	ci.Kind = kind
	return &ci, nil
}

// SaveChatIntegration stores the slack, teams or discord integration.
func (c *Client) SaveChatIntegration(ctx context.Context, kind string, in models.ChatIntegration) (*models.ChatIntegration, error) {
	path, err := chatPath(kind)
	if err != nil {
		return nil, err
	}
	in.Kind = kind
	ci, err := send[models.ChatIntegration](ctx, c, http.MethodPut, path, in, "integration")
	if err != nil {
		return nil, err
	}
	ci.Kind = kind
	return &ci, nil
}

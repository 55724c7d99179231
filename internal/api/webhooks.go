package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// ListWebhooks fetches GET /webhooks.
func (c *Client) ListWebhooks(ctx context.Context) ([]models.Webhook, error) {
	return list[models.Webhook](ctx, c, "/webhooks", nil, "webhooks")
}

// CreateWebhook creates an outbound webhook.
func (c *Client) CreateWebhook(ctx context.Context, in models.WebhookInput) (*models.Webhook, error) {
	w, err := send[models.Webhook](ctx, c, http.MethodPost, "/webhooks", in, "webhook")
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateWebhook patches an outbound webhook.
func (c *Client) UpdateWebhook(ctx context.Context, id string, in models.WebhookInput) (*models.Webhook, error) {
	w, err := send[models.Webhook](ctx, c, http.MethodPatch, "/webhooks/"+url.PathEscape(id), in, "webhook")
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWebhook removes an outbound webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/webhooks/"+url.PathEscape(id), nil, nil)
	return err
}

// TestWebhook sends a test event to the webhook target.
func (c *Client) TestWebhook(ctx context.Context, id string) (*models.TestResult, error) {
	r, err := send[models.TestResult](ctx, c, http.MethodPost, "/webhooks/"+url.PathEscape(id)+"/test", nil, "result")
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListWebhookDeliveries fetches the delivery log of one webhook.
func (c *Client) ListWebhookDeliveries(ctx context.Context, id string) ([]models.WebhookDelivery, error) {
	return list[models.WebhookDelivery](ctx, c, "/webhooks/"+url.PathEscape(id)+"/deliveries", nil, "deliveries")
}

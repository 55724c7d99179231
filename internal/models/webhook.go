package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookHeader is one custom header sent with webhook deliveries.
type WebhookHeader struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewWebhookHeader returns a header with a fresh identifier.
func NewWebhookHeader(key, value string) WebhookHeader {
	return WebhookHeader{ID: uuid.NewString(), Key: key, Value: value}
}

// Webhook is an outbound event subscription (/webhooks).
type Webhook struct {
	CreatedAt      time.Time       `json:"createdAt"`
	LastDeliveryAt time.Time       `json:"lastDeliveryAt"`
	Events         []string        `json:"events"`
	Headers        []WebhookHeader `json:"headers,omitempty"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	URL            string          `json:"url"`
	Secret         string          `json:"secret,omitempty"`
	LastStatus     string          `json:"lastStatus,omitempty"`
	FailureCount   int             `json:"failureCount"`
	Enabled        bool            `json:"enabled"`
}

// WebhookInput is the body for creating or updating a webhook.
type WebhookInput struct {
	Enabled *bool           `json:"enabled,omitempty"`
	Events  []string        `json:"events,omitempty"`
	Headers []WebhookHeader `json:"headers,omitempty"`
	Name    string          `json:"name,omitempty"`
	URL     string          `json:"url,omitempty"`
	Secret  string          `json:"secret,omitempty"`
}

// WebhookDelivery is one attempt to deliver an event (/webhooks/:id/deliveries).
type WebhookDelivery struct {
	DeliveredAt  time.Time `json:"deliveredAt"`
	ID           string    `json:"id"`
	Event        string    `json:"event"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	ResponseCode int       `json:"responseCode"`
	DurationMs   int64     `json:"durationMs"`
}

// Succeeded reports whether the receiver answered with a 2xx status.
func (d *WebhookDelivery) Succeeded() bool {
	return d.ResponseCode >= 200 && d.ResponseCode < 300
}

// TestResult is the common shape of the "test connection" endpoints.
type TestResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message,omitempty"`
	StatusCode int     `json:"statusCode,omitempty"`
	LatencyMs  float64 `json:"latencyMs,omitempty"`
}

package models

// Chat integration kinds served under /api/integrations/.
const (
	ChatSlack   = "slack"
	ChatTeams   = "teams"
	ChatDiscord = "discord"
)

// ChatKinds lists the supported chat integrations in display order.
var ChatKinds = []string{ChatSlack, ChatTeams, ChatDiscord}

// PSAIntegration holds PSA (professional services automation) settings.
type PSAIntegration struct {
	Settings    map[string]string `json:"settings,omitempty"`
	Provider    string            `json:"provider"`
	BaseURL     string            `json:"baseUrl"`
	CompanyID   string            `json:"companyId,omitempty"`
	Username    string            `json:"username,omitempty"`
	APIKey      string            `json:"apiKey,omitempty"`
	SyncTickets bool              `json:"syncTickets"`
	Enabled     bool              `json:"enabled"`
}

// MonitoringIntegration holds external monitoring settings.
type MonitoringIntegration struct {
	Provider string `json:"provider"`
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"apiKey,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// TicketingIntegration holds ticketing system settings.
type TicketingIntegration struct {
	Provider        string `json:"provider"`
	URL             string `json:"url"`
	Email           string `json:"email,omitempty"`
	APIKey          string `json:"apiKey,omitempty"`
	DefaultPriority string `json:"defaultPriority,omitempty"`
	Enabled         bool   `json:"enabled"`
}

// ChatIntegration holds a Slack, Teams or Discord webhook target.
type ChatIntegration struct {
	Events     []string `json:"events,omitempty"`
	Kind       string   `json:"kind"`
	WebhookURL string   `json:"webhookUrl"`
	Channel    string   `json:"channel,omitempty"`
	Enabled    bool     `json:"enabled"`
}

// Configured reports whether a webhook URL has been set.
func (c *ChatIntegration) Configured() bool {
	return c != nil && c.WebhookURL != ""
}

// IntegrationSummary is the flattened status row shown in the integrations tab.
type IntegrationSummary struct {
	Name       string
	Provider   string
	Enabled    bool
	Configured bool
	Testable   bool
}

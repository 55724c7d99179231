package models

import "time"

// Monitor is a network monitor widget definition (/monitors).
type Monitor struct {
	LastCheckedAt  time.Time `json:"lastCheckedAt"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Target         string    `json:"target"`
	Status         string    `json:"status"`
	LastError      string    `json:"lastError,omitempty"`
	IntervalSec    int       `json:"intervalSeconds"`
	TimeoutSec     int       `json:"timeoutSeconds"`
	LastResponseMs float64   `json:"lastResponseMs"`
	Enabled        bool      `json:"enabled"`
}

// IsDown reports whether the last check failed.
func (m *Monitor) IsDown() bool {
	return m.Status == "down" || m.Status == "offline"
}

// MonitorInput is the body for creating or updating a monitor.
type MonitorInput struct {
	Enabled     *bool  `json:"enabled,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Target      string `json:"target,omitempty"`
	IntervalSec int    `json:"intervalSeconds,omitempty"`
	TimeoutSec  int    `json:"timeoutSeconds,omitempty"`
}

// MonitorCheck is the result of POST /monitors/:id/check.
type MonitorCheck struct {
	CheckedAt  time.Time `json:"checkedAt"`
	MonitorID  string    `json:"monitorId"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ResponseMs float64   `json:"responseMs"`
}

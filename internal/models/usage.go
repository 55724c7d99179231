package models

// ProviderSample is the byte count one storage provider reported at a point.
// Provider is trimmed and non-empty; Bytes is finite and non-negative.
type ProviderSample struct {
	Provider string  `json:"provider"`
	Bytes    float64 `json:"bytes"`
}

// UsagePoint is one timestamped sample of total and per-provider storage use.
// TotalBytes equals the sum of Providers when the source carried no total.
type UsagePoint struct {
	Timestamp  string           `json:"timestamp"`
	TotalBytes float64          `json:"totalBytes"`
	Providers  []ProviderSample `json:"providers"`
}

// UsageHistory is a normalized usage-history response for one profile.
type UsageHistory struct {
	Profile        string       `json:"profile"`
	Days           int          `json:"days"`
	Points         []UsagePoint `json:"points"`
	DroppedPoints  int          `json:"droppedPoints"`
	DroppedSamples int          `json:"droppedSamples"`
	FromCache      bool         `json:"fromCache"`
}

// HasData reports whether the history holds at least one point.
func (h *UsageHistory) HasData() bool {
	return h != nil && len(h.Points) > 0
}

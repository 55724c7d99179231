// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Profile is one configured Breeze API endpoint and the token used against it.
type Profile struct {
	AddedAt  time.Time `json:"addedAt"`
	LastUsed time.Time `json:"lastUsed"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	APIURL   string    `json:"apiUrl"`
	Token    string    `json:"token"`
	OrgID    string    `json:"orgId,omitempty"`
}

// Key returns the identifier used for caching and selection: the ID when set,
// otherwise the name.
func (p *Profile) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

// DisplayName returns a human readable label for the profile.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.APIURL != "" {
		return p.APIURL
	}
	return p.ID
}

// Valid reports whether the profile can be used to talk to the API.
func (p *Profile) Valid() bool {
	return strings.TrimSpace(p.APIURL) != "" && strings.TrimSpace(p.Token) != ""
}

// Clone returns a copy of the profile.
func (p *Profile) Clone() Profile {
	return *p
}

// ProfileWithStatus combines a profile with its latest dashboard state.
type ProfileWithStatus struct {
	Dashboard *BackupDashboard `json:"dashboard,omitempty"`
	Error     string           `json:"error,omitempty"`
	Profile
	IsActive bool `json:"isActive"`
}

// RawProfileData is the on-disk shape of a profile. Timestamps may be ISO
// strings or unix numbers, depending on which tool wrote the file.
type RawProfileData struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	APIURL   string          `json:"apiUrl"`
	Token    string          `json:"token"`
	OrgID    string          `json:"orgId,omitempty"`
	AddedAt  json.RawMessage `json:"addedAt,omitempty"`
	LastUsed json.RawMessage `json:"lastUsed,omitempty"`
}

// RawProfilesFile represents the top-level structure of the profiles JSON file.
type RawProfilesFile struct {
	Profiles      []RawProfileData `json:"profiles"`
	ActiveProfile string           `json:"activeProfile,omitempty"`
	Version       int              `json:"version"`
}

// ToProfile converts RawProfileData to Profile, parsing date fields.
func (r *RawProfileData) ToProfile() Profile {
	p := Profile{
		ID:     r.ID,
		Name:   r.Name,
		APIURL: strings.TrimRight(r.APIURL, "/"),
		Token:  r.Token,
		OrgID:  r.OrgID,
	}

	if len(r.AddedAt) > 0 {
		p.AddedAt = ParseTimeField(r.AddedAt)
	}
	if len(r.LastUsed) > 0 {
		p.LastUsed = ParseTimeField(r.LastUsed)
	}

	return p
}

// ParseTimeField attempts to parse a JSON time value as either ISO string or Unix timestamp.
func ParseTimeField(data json.RawMessage) time.Time {
	// Try as string first (ISO 8601)
	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		return ParseTimestamp(strVal)
	}

	// Try as number (Unix timestamp in milliseconds or seconds)
	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		if numVal > 1e12 {
			return time.UnixMilli(int64(numVal))
		}
		return time.Unix(int64(numVal), 0)
	}

	return time.Time{}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the Breeze API emits. It returns
// the zero time when none match.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Package profiles manages configured Breeze API profiles with file watching
// and persistence.
package profiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
)

// Event represents a profile service event.
type Event struct {
	Error   error
	Profile *models.Profile
	Type    EventType
}

// EventType defines the type of profile event.
type EventType int

const (
	EventProfilesLoaded EventType = iota
	EventProfilesChanged
	EventProfileAdded
	EventProfileUpdated
	EventProfileDeleted
	EventActiveProfileChanged
	EventError
)

const debounceInterval = 100 * time.Millisecond

// Service manages profiles with file watching and change notifications.
type Service struct {
	watcher       *fsnotify.Watcher
	fallback      *models.Profile
	onChange      func()
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	filePath      string
	activeProfile string
	profiles      []models.Profile
	mu            sync.RWMutex
	timerMu       sync.Mutex
	closeOnce     sync.Once
}

// New creates a profile service backed by filePath and starts watching it.
// fallback, when non-nil, is used while the file holds no profiles; it is
// never written to disk.
func New(filePath string, fallback *models.Profile) (*Service, error) {
	if filePath == "" {
		return nil, fmt.Errorf("profiles path is empty")
	}

	s := &Service{
		profiles:  make([]models.Profile, 0),
		filePath:  filePath,
		fallback:  fallback,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create profiles file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventProfilesLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to profile changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// OnChange registers a callback run after the file changes on disk.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// GetProfiles returns a copy of all profiles, including the fallback when
// the file is empty.
func (s *Service) GetProfiles() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.profiles) == 0 && s.fallback != nil {
		return []models.Profile{s.fallback.Clone()}
	}
	return lo.Map(s.profiles, func(p models.Profile, _ int) models.Profile { return p.Clone() })
}

// GetActiveProfile returns the active profile, the first profile when none
// is selected, or the fallback. It returns nil when nothing is configured.
func (s *Service) GetActiveProfile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := lo.Find(s.profiles, func(p models.Profile) bool { return s.matches(p, s.activeProfile) }); ok {
		return &p
	}
	if len(s.profiles) > 0 {
		p := s.profiles[0]
		return &p
	}
	if s.fallback != nil {
		p := s.fallback.Clone()
		return &p
	}
	return nil
}

// GetActiveProfileID returns the key of the active profile.
func (s *Service) GetActiveProfileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProfile
}

func (s *Service) matches(p models.Profile, idOrName string) bool {
	return idOrName != "" && (p.ID == idOrName || p.Name == idOrName)
}

// SetActiveProfile selects a profile by ID or name.
func (s *Service) SetActiveProfile(idOrName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(s.profiles, func(p models.Profile) bool { return s.matches(p, idOrName) })
	if !ok {
		return fmt.Errorf("profile not found: %s", idOrName)
	}

	s.activeProfile = s.profiles[idx].Key()
	s.profiles[idx].LastUsed = time.Now()

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	p := s.profiles[idx]
	s.sendEvent(Event{Type: EventActiveProfileChanged, Profile: &p})
	return nil
}

// AddProfile adds a new profile. The first profile becomes active.
func (s *Service) AddProfile(profile models.Profile) (*models.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.APIURL = strings.TrimRight(strings.TrimSpace(profile.APIURL), "/")
	if !profile.Valid() {
		return nil, fmt.Errorf("profile needs an API URL and a token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.Name != "" && lo.ContainsBy(s.profiles, func(p models.Profile) bool { return p.Name == profile.Name }) {
		return nil, fmt.Errorf("profile %s already exists", profile.Name)
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.AddedAt.IsZero() {
		profile.AddedAt = time.Now()
	}

	s.profiles = append(s.profiles, profile)
	if len(s.profiles) == 1 {
		s.activeProfile = profile.ID
	}

	if err := s.saveLocked(); err != nil {
		s.profiles = s.profiles[:len(s.profiles)-1]
		return nil, fmt.Errorf("failed to save profiles: %w", err)
	}

	s.sendEvent(Event{Type: EventProfileAdded, Profile: &profile})
	return &profile, nil
}

// UpdateProfile replaces an existing profile matched by ID.
func (s *Service) UpdateProfile(profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.profiles {
		if s.profiles[i].ID == profile.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("profile not found: %s", profile.ID)
	}

	if profile.AddedAt.IsZero() {
		profile.AddedAt = s.profiles[idx].AddedAt
	}
	profile.APIURL = strings.TrimRight(profile.APIURL, "/")
	s.profiles[idx] = profile

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	s.sendEvent(Event{Type: EventProfileUpdated, Profile: &profile})
	return nil
}

// DeleteProfile removes a profile by ID or name.
func (s *Service) DeleteProfile(idOrName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.profiles {
		if s.matches(s.profiles[i], idOrName) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("profile not found: %s", idOrName)
	}

	deleted := s.profiles[idx]
	s.profiles = append(s.profiles[:idx], s.profiles[idx+1:]...)

	if s.matches(deleted, s.activeProfile) {
		s.activeProfile = ""
		if len(s.profiles) > 0 {
			s.activeProfile = s.profiles[0].Key()
		}
	}

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	s.sendEvent(Event{Type: EventProfileDeleted, Profile: &deleted})
	return nil
}

// Count returns the number of stored profiles.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// parseProfiles accepts the versioned file format or a bare array.
func parseProfiles(data []byte) ([]models.Profile, string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Profile{}, "", nil
	}

	var file models.RawProfilesFile
	if err := json.Unmarshal(data, &file); err == nil {
		profiles := lo.Map(file.Profiles, func(r models.RawProfileData, _ int) models.Profile { return r.ToProfile() })
		return profiles, resolveActive(profiles, file.ActiveProfile), nil
	}

	var raw []models.RawProfileData
	if err := json.Unmarshal(data, &raw); err == nil {
		profiles := lo.Map(raw, func(r models.RawProfileData, _ int) models.Profile { return r.ToProfile() })
		return profiles, resolveActive(profiles, ""), nil
	}

	return nil, "", fmt.Errorf("failed to parse profiles file: invalid format")
}

// resolveActive returns active when it names a profile, else the first
// profile's key.
func resolveActive(profiles []models.Profile, active string) string {
	if active != "" && lo.ContainsBy(profiles, func(p models.Profile) bool { return p.ID == active || p.Name == active }) {
		return active
	}
	if len(profiles) > 0 {
		return profiles[0].Key()
	}
	return ""
}

// load reads the profiles file. Callers must not hold the lock.
func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	profiles, active, err := parseProfiles(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.profiles = profiles
	s.activeProfile = active
	s.mu.Unlock()
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the profiles file atomically (must hold lock).
func (s *Service) saveLocked() error {
	file := struct {
		Profiles      []models.Profile `json:"profiles"`
		ActiveProfile string           `json:"activeProfile,omitempty"`
		Version       int              `json:"version"`
	}{
		Profiles:      s.profiles,
		ActiveProfile: s.activeProfile,
		Version:       1,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher watches the directory so atomic renames are seen.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.timerMu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.timerMu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads profiles after an external change.
func (s *Service) handleFileChange() {
	if err := s.load(); err != nil {
		logger.Warn("failed to reload profiles", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.sendEvent(Event{Type: EventProfilesChanged})

	s.mu.RLock()
	onChange := s.onChange
	s.mu.RUnlock()

	if onChange != nil {
		onChange()
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.timerMu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.timerMu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

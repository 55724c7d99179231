// Package projection extrapolates storage growth from the usage history.
package projection

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/db"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

const (
	lowConfThreshold  = 7
	medConfThreshold  = 30
	criticalDays      = 7.0
	warningDays       = 30.0
	criticalPercent   = 95.0
	warningPercent    = 90.0
	minSamples        = 2
	historyWindowDays = 90
)

// Service computes and caches a storage projection per profile.
type Service struct {
	mu sync.RWMutex
	db *db.DB

	projectionCache map[string]*models.StorageProjection
	now             func() time.Time
}

// New creates a projection service. database may be nil, in which case only
// the history passed to Calculate is used.
func New(database *db.DB) *Service {
	return &Service{
		db:              database,
		projectionCache: make(map[string]*models.StorageProjection),
		now:             time.Now,
	}
}

type sample struct {
	at    time.Time
	bytes float64
}

// Calculate projects when storage fills up for profile, from the fetched
// history and the dashboard storage summary. When the history has fewer
// than two dated points the cached daily totals are used instead.
func (s *Service) Calculate(profile string, history *models.UsageHistory, storage models.StorageSummary) *models.StorageProjection {
	samples := samplesFromHistory(history)
	if len(samples) < minSamples && s.db != nil {
		cached, err := s.db.GetDailyTotals(profile, historyWindowDays)
		if err != nil {
			logger.Error("failed to get daily totals", "profile", profile, "error", err)
		} else if len(cached) > len(samples) {
			samples = samplesFromDaily(cached)
		}
	}

	proj := project(samples, storage, s.now())
	proj.Profile = profile

	s.mu.Lock()
	s.projectionCache[profile] = proj
	s.mu.Unlock()

	return proj
}

func samplesFromHistory(history *models.UsageHistory) []sample {
	if !history.HasData() {
		return nil
	}
	samples := make([]sample, 0, len(history.Points))
	for _, p := range history.Points {
		t := models.ParseTimestamp(p.Timestamp)
		if t.IsZero() || math.IsNaN(p.TotalBytes) || math.IsInf(p.TotalBytes, 0) {
			continue
		}
		samples = append(samples, sample{at: t, bytes: p.TotalBytes})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].at.Before(samples[j].at) })
	return samples
}

func samplesFromDaily(totals []db.DailyTotal) []sample {
	samples := make([]sample, len(totals))
	for i, d := range totals {
		samples[i] = sample{at: d.Day, bytes: d.TotalBytes}
	}
	return samples
}

func project(samples []sample, storage models.StorageSummary, now time.Time) *models.StorageProjection {
	proj := &models.StorageProjection{
		LastUpdated:   now,
		Status:        models.ProjectionUnknown,
		Confidence:    confidence(len(samples)),
		LimitBytes:    storage.TotalBytes,
		UsedBytes:     storage.UsedBytes,
		DaysUntilFull: -1,
		DataPoints:    len(samples),
	}

	if proj.UsedBytes <= 0 && len(samples) > 0 {
		proj.UsedBytes = samples[len(samples)-1].bytes
	}
	proj.UsedPercent = usage.UsagePercent(proj.UsedBytes, proj.LimitBytes)

	if len(samples) >= minSamples {
		slope, ok := growthPerDay(samples)
		if ok {
			proj.GrowthPerDay = slope
		}
	}

	if proj.LimitBytes <= 0 {
		return proj
	}

	if proj.GrowthPerDay > 0 {
		remaining := math.Max(0, proj.LimitBytes-proj.UsedBytes)
		proj.DaysUntilFull = remaining / proj.GrowthPerDay
		proj.FullAt = now.Add(time.Duration(proj.DaysUntilFull * float64(24*time.Hour)))
	}

	proj.Status = status(proj)
	return proj
}

// growthPerDay is the least-squares slope of bytes against days.
func growthPerDay(samples []sample) (float64, bool) {
	origin := samples[0].at
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.at.Sub(origin).Hours() / 24
		sumX += x
		sumY += s.bytes
		sumXY += x * s.bytes
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}

func confidence(points int) string {
	switch {
	case points < lowConfThreshold:
		return "low"
	case points < medConfThreshold:
		return "medium"
	default:
		return "high"
	}
}

func status(p *models.StorageProjection) models.ProjectionStatus {
	switch {
	case p.UsedPercent >= criticalPercent:
		return models.ProjectionCritical
	case p.DaysUntilFull >= 0 && p.DaysUntilFull < criticalDays:
		return models.ProjectionCritical
	case p.UsedPercent >= warningPercent:
		return models.ProjectionWarning
	case p.DaysUntilFull >= 0 && p.DaysUntilFull < warningDays:
		return models.ProjectionWarning
	case p.DataPoints < minSamples:
		return models.ProjectionUnknown
	default:
		return models.ProjectionSafe
	}
}

// FormatGrowth renders a growth rate for display.
func FormatGrowth(bytesPerDay float64) string {
	if bytesPerDay == 0 || math.IsNaN(bytesPerDay) {
		return "No growth"
	}
	sign := "+"
	if bytesPerDay < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s/day", sign, usage.FormatBytes(math.Abs(bytesPerDay)))
}

// FormatTimeToFull renders DaysUntilFull for display.
func FormatTimeToFull(p *models.StorageProjection) string {
	switch {
	case p == nil || p.LimitBytes <= 0:
		return "No limit"
	case p.DaysUntilFull < 0:
		return "Not growing"
	case p.DaysUntilFull < 1:
		return "< 1 day"
	case p.DaysUntilFull < 60:
		return fmt.Sprintf("%.0f days", p.DaysUntilFull)
	default:
		return fmt.Sprintf("%.1f months", p.DaysUntilFull/30)
	}
}

// GetCachedProjection returns the last projection for profile.
func (s *Service) GetCachedProjection(profile string) *models.StorageProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectionCache[profile]
}

// GetAllProjections returns a copy of every cached projection.
func (s *Service) GetAllProjections() map[string]*models.StorageProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]*models.StorageProjection, len(s.projectionCache))
	for k, v := range s.projectionCache {
		result[k] = v
	}
	return result
}

// Forget drops the cached projection of a deleted profile.
func (s *Service) Forget(profile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projectionCache, profile)
}

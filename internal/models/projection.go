package models

import "time"

// ProjectionStatus indicates urgency level for storage exhaustion.
type ProjectionStatus string

const (
	ProjectionSafe     ProjectionStatus = "SAFE"
	ProjectionWarning  ProjectionStatus = "WARNING"
	ProjectionCritical ProjectionStatus = "CRITICAL"
	ProjectionUnknown  ProjectionStatus = "UNKNOWN"
)

// StorageProjection extrapolates storage growth from the usage history.
type StorageProjection struct {
	LastUpdated   time.Time
	FullAt        time.Time // Zero when storage is not growing
	Profile       string
	Status        ProjectionStatus
	Confidence    string  // "low", "medium", "high"
	UsedBytes     float64 // Latest total
	LimitBytes    float64 // Zero when the dashboard reports no limit
	GrowthPerDay  float64 // Least-squares slope in bytes/day
	DaysUntilFull float64 // -1 when not applicable
	UsedPercent   float64
	DataPoints    int
}

// WillFillWithin reports whether storage is projected to fill within d.
func (p *StorageProjection) WillFillWithin(d time.Duration) bool {
	if p == nil || p.DaysUntilFull < 0 {
		return false
	}
	return time.Duration(p.DaysUntilFull*float64(24*time.Hour)) <= d
}

package models

// TimeRange represents the selected usage-history window.
type TimeRange int

const (
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days TimeRange = iota
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRange90Days shows data from the last 90 days.
	TimeRange90Days
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRange90Days:
		return "90 Days"
	default:
		return "Unknown"
	}
}

// Days returns the number of days requested from the usage-history endpoint.
func (t TimeRange) Days() int {
	switch t {
	case TimeRange7Days:
		return 7
	case TimeRange90Days:
		return 90
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 3
}

// TimeRangeForDays picks the closest range for a configured day count.
func TimeRangeForDays(days int) TimeRange {
	switch {
	case days <= 7:
		return TimeRange7Days
	case days <= 30:
		return TimeRange30Days
	default:
		return TimeRange90Days
	}
}

package usage

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// FormatBytes renders a byte count with binary units ("1.5 GiB").
// Negative and non-finite values render as "0 B".
func FormatBytes(b float64) string {
	if !(b > 0) || math.IsInf(b, 0) {
		return "0 B"
	}
	return humanize.IBytes(uint64(b))
}

// UsagePercent returns used/total as a percentage clamped to [0,100].
// A zero or negative total yields 0.
func UsagePercent(used, total float64) float64 {
	if !(total > 0) || math.IsNaN(used) {
		return 0
	}
	return clamp(used/total*100, 0, 100)
}

// FormatRelative describes t relative to now ("3 hours ago"). The zero time
// renders as "never".
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if d := now.Sub(t); d >= 0 && d < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDateLabel shortens an API timestamp to "Jan 2". Unparseable input is
// returned unchanged.
func FormatDateLabel(timestamp string) string {
	t := models.ParseTimestamp(timestamp)
	if t.IsZero() {
		return timestamp
	}
	return t.UTC().Format("Jan 2")
}

package usage

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Series is the aggregated, render-ready form of a usage history.
// Providers is frozen in first-seen order; Values holds one slice per
// provider, aligned with Timestamps and Totals.
type Series struct {
	Values     map[string][]float64
	Providers  []string
	Timestamps []string
	Totals     []float64
	MaxValue   float64
}

// Len returns the number of points in the series.
func (s *Series) Len() int {
	return len(s.Timestamps)
}

// Aggregate builds a Series from normalized points. It returns false when
// there are no points or no providers, in which case nothing should be drawn.
func Aggregate(points []UsagePoint) (*Series, bool) {
	if len(points) == 0 {
		return nil, false
	}

	providers := lo.Uniq(lo.FlatMap(points, func(p UsagePoint, _ int) []string {
		return lo.Map(p.Providers, func(s ProviderSample, _ int) string { return s.Provider })
	}))
	if len(providers) == 0 {
		return nil, false
	}

	s := &Series{
		Values:     make(map[string][]float64, len(providers)),
		Providers:  providers,
		Timestamps: make([]string, len(points)),
		Totals:     make([]float64, len(points)),
		MaxValue:   1,
	}
	for _, name := range providers {
		s.Values[name] = make([]float64, len(points))
	}

	for i, p := range points {
		lookup := make(map[string]float64, len(p.Providers))
		for _, sample := range p.Providers {
			lookup[sample.Provider] += sample.Bytes
		}

		total := p.TotalBytes
		if math.IsNaN(total) || math.IsInf(total, 0) {
			total = 0
			for _, name := range providers {
				total += lookup[name]
			}
		}

		s.Timestamps[i] = p.Timestamp
		s.Totals[i] = total
		s.MaxValue = math.Max(s.MaxValue, total)
		for _, name := range providers {
			v := lookup[name]
			s.Values[name][i] = v
			s.MaxValue = math.Max(s.MaxValue, v)
		}
	}

	return s, true
}

// Polyline maps values onto a 100x100 viewport and returns space separated
// "x,y" pairs. A single value sits at x=50. y is clamped to [0,100].
func Polyline(values []float64, maxValue float64) string {
	n := len(values)
	if n == 0 {
		return ""
	}
	if !(maxValue > 0) || math.IsInf(maxValue, 0) {
		maxValue = 1
	}

	pairs := make([]string, n)
	for i, v := range values {
		x := 50.0
		if n > 1 {
			x = float64(i) / float64(n-1) * 100
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		y := clamp(100-(v/maxValue)*100, 0, 100)
		pairs[i] = formatCoord(x) + "," + formatCoord(y)
	}
	return strings.Join(pairs, " ")
}

func clamp(v, low, high float64) float64 {
	return math.Min(high, math.Max(low, v))
}

// formatCoord renders a coordinate with at most two decimals and no
// trailing zeros.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

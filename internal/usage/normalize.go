// Package usage turns loosely typed usage-history payloads into render-ready
// series: normalization, aggregation, polyline geometry and SVG output.
package usage

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// UsagePoint and ProviderSample are the normalized pipeline types.
type (
	UsagePoint     = models.UsagePoint
	ProviderSample = models.ProviderSample
)

// Report counts what normalization discarded.
type Report struct {
	DroppedPoints  int `json:"droppedPoints"`
	DroppedSamples int `json:"droppedSamples"`
}

// Clean reports whether nothing was dropped.
func (r Report) Clean() bool {
	return r.DroppedPoints == 0 && r.DroppedSamples == 0
}

// Normalize extracts usage points from a decoded JSON value. Malformed
// points and provider samples are skipped. The result is never nil.
func Normalize(payload any) []UsagePoint {
	points, _ := NormalizeWithReport(payload)
	return points
}

// NormalizeJSON decodes raw JSON and normalizes it. Only a syntax error is
// returned as an error; any well-formed document yields a (possibly empty)
// slice.
func NormalizeJSON(data []byte) ([]UsagePoint, Report, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return []UsagePoint{}, Report{}, fmt.Errorf("failed to decode usage history: %w", err)
	}
	points, report := NormalizeWithReport(payload)
	return points, report, nil
}

// NormalizeWithReport is Normalize plus a count of discarded entries.
func NormalizeWithReport(payload any) ([]UsagePoint, Report) {
	var report Report
	out := []UsagePoint{}

	candidates, ok := locatePoints(payload)
	if !ok {
		return out, report
	}

	for _, candidate := range candidates {
		obj, ok := candidate.(map[string]any)
		if !ok {
			report.DroppedPoints++
			continue
		}

		samples, dropped := normalizeProviders(obj["providers"])
		report.DroppedSamples += dropped

		timestamp := jsString(coalesce(obj, "timestamp", "date"))
		if timestamp == "" {
			report.DroppedPoints++
			continue
		}

		total, ok := finiteTotal(obj)
		if !ok {
			total = 0
			for _, s := range samples {
				total += s.Bytes
			}
		}

		out = append(out, UsagePoint{
			Timestamp:  timestamp,
			TotalBytes: math.Max(0, total),
			Providers:  samples,
		})
	}

	return out, report
}

// locatePoints returns data.points when it is an array, else top-level points.
func locatePoints(payload any) ([]any, bool) {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	if data, ok := root["data"].(map[string]any); ok {
		if points, ok := data["points"].([]any); ok {
			return points, true
		}
	}
	points, ok := root["points"].([]any)
	return points, ok
}

func normalizeProviders(raw any) ([]ProviderSample, int) {
	samples := []ProviderSample{}
	entries, ok := raw.([]any)
	if !ok {
		return samples, 0
	}

	dropped := 0
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		name := strings.TrimSpace(jsString(coalesce(obj, "provider", "name")))
		bytes := jsNumber(coalesce(obj, "bytes", "usedBytes", "value"))
		if name == "" || math.IsNaN(bytes) || math.IsInf(bytes, 0) {
			dropped++
			continue
		}
		samples = append(samples, ProviderSample{Provider: name, Bytes: math.Max(0, bytes)})
	}
	return samples, dropped
}

// finiteTotal returns the point's own totalBytes when it is present and
// coerces to a finite number.
func finiteTotal(obj map[string]any) (float64, bool) {
	raw, ok := obj["totalBytes"]
	if !ok || raw == nil {
		return 0, false
	}
	n := jsNumber(raw)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// coalesce returns the first non-null value among keys, or nil.
func coalesce(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// jsNumber converts a decoded JSON value to a number the way JavaScript's
// Number() does: null and "" are 0, booleans are 0/1, numeric strings parse,
// objects are NaN.
func jsNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case json.Number:
		return parseNumericString(string(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return parseNumericString(x)
	case []any:
		return parseNumericString(jsString(x))
	default:
		return math.NaN()
	}
}

func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		return parseRadix(s[2:], baseFor(lower[1]))
	}
	// ParseFloat accepts forms Number() rejects.
	if strings.ContainsAny(lower, "_xpin") {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// parseRadix parses unsigned digits of any length, rounding to the nearest
// float64 the way Number("0x...") does. Values past MaxFloat64 become +Inf.
func parseRadix(digits string, base int) float64 {
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return math.NaN()
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

func baseFor(prefix byte) int {
	switch prefix {
	case 'x':
		return 16
	case 'o':
		return 8
	default:
		return 2
	}
}

// jsString converts a decoded JSON value to a string the way String() does.
func jsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatJSNumber(x)
	case json.Number:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = jsString(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprint(x)
	}
}

func formatJSNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package usage

import "strings"

// DefaultProviderColor is used for providers missing from the color table.
const DefaultProviderColor = "#64748b"

// TotalColor is the stroke of the dashed total line.
const TotalColor = "#94a3b8"

var providerColors = map[string]string{
	"s3":     "#f59e0b",
	"aws":    "#f59e0b",
	"azure":  "#3b82f6",
	"gcs":    "#10b981",
	"google": "#10b981",
	"b2":     "#ef4444",
	"local":  "#8b5cf6",
	"nas":    "#8b5cf6",
	"wasabi": "#22c55e",
	"minio":  "#ec4899",
	"sftp":   "#06b6d4",
}

// ProviderColor returns the hex color for a provider name, case-insensitively.
func ProviderColor(name string) string {
	if c, ok := providerColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return DefaultProviderColor
}

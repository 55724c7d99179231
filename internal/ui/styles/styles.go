// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// Color definitions for the Breeze theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("44")  // Teal
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary)

// FocusedStyle is used for the selected row of a list.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// SelectedRowStyle highlights the selected row of a table.
var SelectedRowStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// LabelStyle styles the key of a key/value row.
var LabelStyle = lipgloss.NewStyle().
	Width(18).
	Foreground(TextMuted)

// ValueStyle styles the value of a key/value row.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

var (
	// ErrorTextStyle for error messages.
	ErrorTextStyle = lipgloss.NewStyle().Foreground(Error)
	// SuccessTextStyle for success messages.
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	// WarningTextStyle for warning messages.
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	// InfoTextStyle for info messages.
	InfoTextStyle = lipgloss.NewStyle().Foreground(Info)
)

var (
	UsageLowStyle      = lipgloss.NewStyle().Foreground(Success)
	UsageMediumStyle   = lipgloss.NewStyle().Foreground(Warning)
	UsageHighStyle     = lipgloss.NewStyle().Foreground(Error).Bold(true)
	JobRunningStyle    = lipgloss.NewStyle().Foreground(Info)
	JobPendingStyle    = lipgloss.NewStyle().Foreground(TextSecondary)
	JobSkippedStyle    = lipgloss.NewStyle().Foreground(Subtle)
	JobCompletedStyle  = SuccessTextStyle
	JobFailedStyle     = lipgloss.NewStyle().Foreground(Error).Bold(true)
	ProjectionSafe     = lipgloss.NewStyle().Foreground(Success)
	ProjectionWarning  = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	ProjectionCritical = lipgloss.NewStyle().Foreground(Error).Bold(true)
	ProjectionUnknown  = lipgloss.NewStyle().Foreground(Subtle)
)

// GetUsageStyle returns the style for a storage usage percentage; fuller is
// worse.
func GetUsageStyle(usedPercent float64) lipgloss.Style {
	switch {
	case usedPercent >= 90:
		return UsageHighStyle
	case usedPercent >= 75:
		return UsageMediumStyle
	default:
		return UsageLowStyle
	}
}

// GetJobStatusStyle returns the style for a backup job status.
func GetJobStatusStyle(status string) lipgloss.Style {
	switch status {
	case models.JobStatusCompleted:
		return JobCompletedStyle
	case models.JobStatusFailed:
		return JobFailedStyle
	case models.JobStatusRunning:
		return JobRunningStyle
	case models.JobStatusSkipped:
		return JobSkippedStyle
	default:
		return JobPendingStyle
	}
}

// GetProjectionStyle returns the style for a projection status badge.
func GetProjectionStyle(status models.ProjectionStatus) lipgloss.Style {
	switch status {
	case models.ProjectionCritical:
		return ProjectionCritical
	case models.ProjectionWarning:
		return ProjectionWarning
	case models.ProjectionSafe:
		return ProjectionSafe
	default:
		return ProjectionUnknown
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}

// CardWidth clamps a card to the available width.
func CardWidth(available, minWidth, maxWidth int) int {
	w := available - 6
	if maxWidth > 0 {
		w = min(w, maxWidth)
	}
	return max(w, minWidth)
}

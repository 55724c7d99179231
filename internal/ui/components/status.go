package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
)

// LoadingSpinner wraps a bubble spinner with a label.
type LoadingSpinner struct {
	spinner spinner.Model
	label   string
	style   lipgloss.Style
}

// NewSpinner creates a loading spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner: s,
		label:   label,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Tick starts the spinner animation.
func (l LoadingSpinner) Tick() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its own tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner followed by its label.
func (l LoadingSpinner) View() string {
	return l.spinner.View() + " " + l.style.Render(l.label)
}

// SetLabel updates the spinner's label.
func (l *LoadingSpinner) SetLabel(label string) {
	l.label = label
}

// Label returns the current label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// RenderLoading centers the spinner in the given area.
func RenderLoading(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.View(), width, height)
}

// RenderError renders a failed load with a retry hint, centered in the area.
func RenderError(title, message string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.ErrorTextStyle.Bold(true).Render("✗ "+title),
		"",
		styles.ErrorTextStyle.Render(message),
		"",
		styles.HelpStyle.Render("press r to retry"),
	)
	return styles.CenterBoth(content, width, height)
}

// RenderEmpty renders a muted placeholder, centered in the area.
func RenderEmpty(message string, width, height int) string {
	return styles.CenterBoth(styles.HelpStyle.Render(message), width, height)
}

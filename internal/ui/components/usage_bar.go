package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
)

// Gradient endpoints for storage bars: empty is green, full is red.
const (
	barEmptyColor = "#51cf66"
	barFullColor  = "#ff6b6b"
)

// UsageBar renders storage consumption as a labelled progress bar.
type UsageBar struct {
	progress progress.Model
}

// NewUsageBar creates a usage bar with a green to red gradient.
func NewUsageBar() UsageBar {
	return UsageBar{
		progress: progress.New(
			progress.WithScaledGradient(barEmptyColor, barFullColor),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders the bar with a label and the colored percentage.
func (u UsageBar) View(percent float64, label string, width int) string {
	// Reserve space for label and percentage
	u.progress.Width = max(width-24, 10)
	bar := u.progress.ViewAs(clampPercent(percent) / 100)

	percentStr := styles.GetUsageStyle(percent).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(16).
		Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewCompact renders the bar and percentage without a label.
func (u UsageBar) ViewCompact(percent float64, width int) string {
	u.progress.Width = max(width-8, 5)
	bar := u.progress.ViewAs(clampPercent(percent) / 100)
	percentStr := styles.GetUsageStyle(percent).Render(fmt.Sprintf("%.0f%%", percent))
	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

func clampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}

// RenderGradientBar renders just the bar characters with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*percent/100), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(barEmptyColor, barFullColor, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// SimpleUsageBar renders "label [bar] pct" sized to width.
func SimpleUsageBar(percent float64, label string, width int) string {
	const percentWidth = 6
	barWidth := max(width-len(label)-1-percentWidth-4, 5)

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	percentStr := styles.GetUsageStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(percent, barWidth), percentStr)
}

// LoadingBar renders a shimmering placeholder bar; frame drives the shimmer.
func LoadingBar(width, frame int) string {
	const cycle = 120
	barWidth := max(width-10, 10)

	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := lipgloss.NewStyle().Foreground(styles.Primary).Render(dots[(frame/2)%len(dots)])

	return b.String() + " " + dot
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}

// Package dashboard provides the backup overview tab.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/usage"
	"github.com/breeze-rmm/breeze-console/internal/ui/components"
)

const storageAnimKey = "storage"

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	NextJob  key.Binding
	PrevJob  key.Binding
	FirstJob key.Binding
	LastJob  key.Binding
	Refresh  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextJob: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next job"),
		),
		PrevJob: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev job"),
		),
		FirstJob: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first job"),
		),
		LastJob: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last job"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AnimationState eases a bar from StartPercent to TargetPercent.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state          *app.State
	animations     map[string]*AnimationState
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	usageBar       components.UsageBar
	now            func() time.Time
	width          int
	height         int
	selectedJob    int
	animationFrame int
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:      state,
		spinner:    components.NewSpinner("Loading backup dashboard..."),
		usageBar:   components.NewUsageBar(),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		animations: make(map[string]*AnimationState),
		now:        time.Now,
	}
}

// Init starts the spinner and the bar animation.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.DataUpdatedMsg:
		m.clampSelection()
		if m.syncAnimationTargets(m.now()) {
			cmds = append(cmds, animationTickCmd())
		}

	case app.RefreshMsg, app.TabSwitchMsg:
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	animating := m.syncAnimationTargets(now)
	m.stepAnimations(now)

	if animating || m.state.AnyLoading() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := len(m.jobs())

	switch {
	case key.Matches(msg, m.keys.NextJob):
		if count > 0 {
			m.selectedJob = (m.selectedJob + 1) % count
		}
	case key.Matches(msg, m.keys.PrevJob):
		if count > 0 {
			m.selectedJob = (m.selectedJob - 1 + count) % count
		}
	case key.Matches(msg, m.keys.FirstJob):
		m.selectedJob = 0
	case key.Matches(msg, m.keys.LastJob):
		m.selectedJob = max(count-1, 0)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) clampSelection() {
	m.selectedJob = min(m.selectedJob, max(len(m.jobs())-1, 0))
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// syncAnimationTargets points the storage bar at the latest used percentage.
// It reports whether the bar still has to move.
func (m *Model) syncAnimationTargets(now time.Time) bool {
	d := m.state.GetDashboard()
	if d == nil {
		return false
	}
	target := usage.UsagePercent(d.Storage.UsedBytes, d.Storage.TotalBytes)
	return m.updateAnimationState(storageAnimKey, target, now)
}

func (m *Model) updateAnimationState(animKey string, target float64, now time.Time) bool {
	state, exists := m.animations[animKey]
	if !exists {
		state = &AnimationState{StartTime: now}
		m.animations[animKey] = state
	}

	if target != state.TargetPercent {
		state.StartPercent = state.CurrentPercent
		state.TargetPercent = target
		state.StartTime = now
	}

	return state.CurrentPercent != state.TargetPercent
}

func (m *Model) stepAnimations(now time.Time) {
	const duration = 1.5

	for _, state := range m.animations {
		if state.CurrentPercent == state.TargetPercent {
			continue
		}
		elapsed := now.Sub(state.StartTime).Seconds()
		if elapsed >= duration {
			state.CurrentPercent = state.TargetPercent
			continue
		}
		progress := elapsed / duration
		ease := 1.0 - (1.0-progress)*(1.0-progress)
		state.CurrentPercent = state.StartPercent + (state.TargetPercent-state.StartPercent)*ease
	}
}

// displayPercent is the animated storage percentage, or the target when the
// animation has not started.
func (m *Model) displayPercent(target float64) float64 {
	if a, ok := m.animations[storageAnimKey]; ok && a.TargetPercent == target {
		return a.CurrentPercent
	}
	return target
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.NextJob, m.keys.PrevJob, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextJob, m.keys.PrevJob},
		{m.keys.FirstJob, m.keys.LastJob},
		{m.keys.Refresh},
	}
}

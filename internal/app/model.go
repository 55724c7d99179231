package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/breeze-rmm/breeze-console/internal/api"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/services"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabHistory is the ID for the usage history tab.
	TabHistory
	// TabIntegrations is the ID for the integrations tab.
	TabIntegrations
	// TabSnapshots is the ID for the snapshots tab.
	TabSnapshots
	// TabInfo is the ID for the info tab.
	TabInfo
)

var tabNames = []string{"Dashboard", "History", "Integrations", "Snapshots", "Info"}

// String returns the string representation of the TabID.
func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1        key.Binding
	Tab2        key.Binding
	Tab3        key.Binding
	Tab4        key.Binding
	Tab5        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	NextProfile key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
	Escape      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:        key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		Tab2:        key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
		Tab3:        key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "integrations")),
		Tab4:        key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "snapshots")),
		Tab5:        key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "info")),
		NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		NextProfile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next profile")),
		Refresh:     key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.NextTab, k.PrevTab, k.NextProfile},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Profile     lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#0E7C86", Dark: "#3FC1C9"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.Profile = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	state        *State
	services     *services.Manager
	commands     *Commands
	eventChannel chan services.ServiceEvent
	tabs         []Tab
	styles       Styles
	keymap       KeyMap
	spinner      spinner.Model
	activeTab    TabID
	width        int
	height       int
	showHelp     bool
	ready        bool
}

// NewModel initializes a new application model. mgr may be nil in tests.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabDashboard,
		tabs:      make([]Tab, len(tabNames)),
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model, in TabID order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services), loadProfilesCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case ProfilesLoadedMsg:
		m.handleProfilesLoaded(msg)
	case StatsLoadedMsg:
		m.state.SetStats(msg.Stats)
	case RefreshMsg:
		cmds = append(cmds, m.startRefresh(msg.Resource))
	case RefreshResultMsg:
		cmds = append(cmds, m.handleRefreshResult(msg)...)
	case SetHistoryDaysMsg:
		if m.services != nil {
			m.state.SetLoading(ResourceUsage, true)
			cmds = append(cmds, setHistoryDaysCmd(m.services, msg.Days))
		}
	case SwitchProfileMsg:
		if m.services != nil {
			cmds = append(cmds, switchProfileCmd(m.services, msg.ID))
		}
	case SwitchProfileResultMsg:
		if msg.Success {
			cmds = append(cmds, notifySuccessCmd(fmt.Sprintf("Switched to %s", msg.ID)))
		} else {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Failed to switch profile: %v", msg.Error)))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Refreshing...")
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("%s: %v", msg.Context, msg.Error)))
	case ExportResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Export failed: %v", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Chart written to "+msg.Path))
		}
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleProfilesLoaded(msg ProfilesLoadedMsg) {
	profiles := make([]models.Profile, len(msg.Profiles))
	var active *models.Profile
	for i, p := range msg.Profiles {
		profiles[i] = p.Profile
		if p.IsActive {
			active = &profiles[i]
		}
	}
	m.state.SetProfiles(profiles, active)
	m.state.SetStats(msg.Stats)

	if active == nil {
		m.state.SetLoading(ResourceInitial, false)
		m.state.ClearLoadingNotification()
		return
	}
	for _, p := range msg.Profiles {
		if p.IsActive && p.Dashboard != nil {
			m.state.SetDashboard(active.Key(), p.Dashboard)
		}
	}
	if !m.state.IsInitialLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) startRefresh(resource string) tea.Cmd {
	if m.services == nil {
		return nil
	}
	if m.state.GetActiveProfile() == nil {
		return notifyWarningCmd("No Breeze profile configured")
	}
	m.state.SetLoadingNotification("Refreshing...")
	if resource == ResourceUsage {
		m.state.SetLoading(ResourceUsage, true)
		return setHistoryDaysCmd(m.services, m.services.Backup().HistoryDays())
	}
	m.state.SetRefreshing()
	return refreshCmd(m.services)
}

func (m *Model) handleRefreshResult(msg RefreshResultMsg) []tea.Cmd {
	// Stale results are discarded by the backup service and never produce an
	// update event, so loading flags are settled here.
	for _, r := range []string{ResourceDashboard, ResourceUsage, ResourceJobs} {
		m.state.SetLoading(r, false)
	}
	m.state.ClearLoadingNotification()

	var cmds []tea.Cmd
	if m.services != nil {
		cmds = append(cmds, loadStatsCmd(m.services))
	}
	switch {
	case msg.Error == nil:
		cmds = append(cmds, notifyInfoCmd("Backup data refreshed"))
	case errors.Is(msg.Error, api.ErrNoProfile):
		m.state.SetLoading(ResourceInitial, false)
		cmds = append(cmds, notifyWarningCmd("No Breeze profile configured"))
	}
	return cmds
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(id TabID) tea.Cmd {
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

// handleKeyMsg handles global keys. handled is true when the key must not
// reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Escape) {
			m.showHelp = false
		} else if key.Matches(msg, m.keymap.Quit) {
			return tea.Quit, true
		}
		return nil, true
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return nil, true
	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabDashboard), true
	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabHistory), true
	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabIntegrations), true
	case key.Matches(msg, m.keymap.Tab4):
		return m.switchTab(TabSnapshots), true
	case key.Matches(msg, m.keymap.Tab5):
		return m.switchTab(TabInfo), true
	case key.Matches(msg, m.keymap.NextTab):
		return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true
	case key.Matches(msg, m.keymap.PrevTab):
		return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true
	case key.Matches(msg, m.keymap.NextProfile):
		return m.nextProfile(), true
	case key.Matches(msg, m.keymap.Refresh):
		// The active tab sees the key too and reloads its own data.
		return m.startRefresh("all"), false
	}
	return nil, false
}

func (m *Model) nextProfile() tea.Cmd {
	profiles := m.state.GetProfiles()
	if len(profiles) < 2 {
		return notifyInfoCmd("Only one profile configured")
	}
	idx := 0
	if active := m.state.GetActiveProfile(); active != nil {
		for i, p := range profiles {
			if p.Key() == active.Key() {
				idx = (i + 1) % len(profiles)
				break
			}
		}
	}
	next := profiles[idx]
	id := next.ID
	if id == "" {
		id = next.Name
	}
	return func() tea.Msg { return SwitchProfileMsg{ID: id} }
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.ProfilesChangedEvent:
		m.state.SetProfiles(e.Profiles, e.ActiveProfile)
		if e.ActiveProfile == nil {
			m.state.SetLoading(ResourceInitial, false)
			m.state.ClearLoadingNotification()
		}
		return dataUpdated(ResourceProfiles)

	case services.RefreshingEvent:
		if active := m.state.GetActiveProfile(); active != nil && active.Key() == e.Profile {
			m.state.SetRefreshing()
		}

	case services.DashboardUpdatedEvent:
		if m.state.SetDashboard(e.Profile, e.Dashboard) {
			m.state.ClearLoadingNotification()
			return dataUpdated(ResourceDashboard)
		}

	case services.UsageUpdatedEvent:
		if m.state.SetUsage(e.Profile, e.History) {
			cmds := []tea.Cmd{dataUpdated(ResourceUsage)}
			if e.History != nil && e.History.FromCache {
				cmds = append(cmds, notifyWarningCmd("Showing cached usage history"))
			}
			return tea.Batch(cmds...)
		}

	case services.JobsUpdatedEvent:
		if m.state.SetJobs(e.Profile, e.Jobs) {
			return dataUpdated(ResourceJobs)
		}

	case services.JobFailedEvent:
		if e.Job == nil {
			return nil
		}
		name := e.Job.PolicyName
		if name == "" {
			name = e.Job.ID
		}
		job := e.Job
		return tea.Batch(
			notifyErrorCmd("Backup failed: "+name),
			func() tea.Msg { return JobFailedMsg{Job: job} },
		)

	case services.ProjectionUpdatedEvent:
		m.state.SetProjection(e.Profile, e.Projection)
		return dataUpdated(ResourceProjection)

	case services.ErrorEvent:
		return m.handleErrorEvent(e)

	case services.StatsEvent:
		m.state.SetStats(e)
	}

	return nil
}

func (m *Model) handleErrorEvent(e services.ErrorEvent) tea.Cmd {
	if errors.Is(e.Error, api.ErrNoProfile) {
		m.state.SetLoading(ResourceInitial, false)
		m.state.ClearLoadingNotification()
		return nil
	}
	if e.Resource != "" {
		if active := m.state.GetActiveProfile(); active != nil && active.Key() != e.Profile {
			return nil
		}
		m.state.SetError(e.Resource, e.Error.Error())
		m.state.SetLoading(ResourceInitial, false)
		m.state.ClearLoadingNotification()
	}
	return tea.Batch(
		notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error)),
		dataUpdated(e.Resource),
	)
}

func dataUpdated(resource string) tea.Cmd {
	return func() tea.Msg { return DataUpdatedMsg{Resource: resource} }
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	y := max((m.height-len(overlayLines))/2, 0)
	overlayWidth := lipgloss.Width(overlay)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	profile := "no profile"
	if active := m.state.GetActiveProfile(); active != nil {
		profile = active.DisplayName()
	}
	profileLabel := m.styles.Profile.Render("◈ " + profile)

	gap := m.width - lipgloss.Width(tabBar) - lipgloss.Width(profileLabel) - 2
	if gap > 0 {
		tabBar = tabBar + strings.Repeat(" ", gap) + profileLabel
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-5        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"  p          Next profile",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Refresh data",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.activeTab)))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.activeTab,
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}

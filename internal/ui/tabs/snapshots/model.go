// Package snapshots provides the tab that lists backup snapshots and browses
// their file trees.
package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/breeze-rmm/breeze-console/internal/app"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/ui/components"
)

const requestTimeout = 30 * time.Second

// Service is the part of the backup service the tab uses.
type Service interface {
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	Restore(ctx context.Context, req models.RestoreRequest) (*models.RestoreResult, error)
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Back     key.Binding
	Collapse key.Binding
	Restore  key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Refresh  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", " ", "l", "right"),
			key.WithHelp("enter", "open/expand"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back to list"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "collapse"),
		),
		Restore: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "restore"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

type listLoadedMsg struct {
	err       error
	profile   string
	snapshots []models.Snapshot
}

type detailLoadedMsg struct {
	err      error
	snapshot *models.Snapshot
	id       string
}

type restoreResultMsg struct {
	err    error
	result *models.RestoreResult
	target string
}

// restoreTarget is a restore awaiting confirmation. An empty path restores
// the whole snapshot.
type restoreTarget struct {
	snapshotID string
	path       string
}

func (r restoreTarget) label() string {
	if r.path == "" {
		return "entire snapshot " + r.snapshotID
	}
	return r.path
}

// Model represents the snapshots tab state.
type Model struct {
	state  *app.State
	svc    Service
	keys   keyMap
	now    func() time.Time
	width  int
	height int

	snapshots     []models.Snapshot
	listErr       error
	listLoading   bool
	loadedProfile string
	loadedOnce    bool
	cursor        int

	// Detail view; non-empty openID means the tree is shown.
	openID        string
	detail        *models.Snapshot
	detailErr     error
	detailLoading bool
	tree          components.FileTree

	pending   *restoreTarget
	restoring bool
}

// New creates the snapshots tab. A nil service renders a placeholder.
func New(state *app.State, svc Service) *Model {
	return &Model{
		state: state,
		svc:   svc,
		keys:  defaultKeyMap(),
		now:   time.Now,
		tree:  components.NewFileTree(nil),
	}
}

// Init does nothing; the list loads when the tab is first shown.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) activeProfileKey() string {
	if p := m.state.GetActiveProfile(); p != nil {
		return p.Key()
	}
	return ""
}

func (m *Model) needsLoad() bool {
	if m.svc == nil || m.listLoading {
		return false
	}
	return !m.loadedOnce || m.loadedProfile != m.activeProfileKey()
}

func (m *Model) loadList() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	m.listLoading = true
	svc, profile := m.svc, m.activeProfileKey()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		snaps, err := svc.ListSnapshots(ctx)
		return listLoadedMsg{snapshots: snaps, err: err, profile: profile}
	}
}

func (m *Model) loadDetail(id string) tea.Cmd {
	if id != m.openID {
		m.detail = nil
	}
	m.openID = id
	m.detailErr = nil
	m.detailLoading = true
	m.pending = nil
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		snap, err := svc.GetSnapshot(ctx, id)
		return detailLoadedMsg{id: id, snapshot: snap, err: err}
	}
}

func (m *Model) closeDetail() {
	m.openID = ""
	m.detail = nil
	m.detailErr = nil
	m.detailLoading = false
	m.pending = nil
	m.tree = components.NewFileTree(nil)
}

// Update handles messages for the snapshots tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		if msg.Tab == app.TabSnapshots && m.needsLoad() {
			return m, m.loadList()
		}

	case app.DataUpdatedMsg:
		if msg.Resource == app.ResourceProfiles && m.loadedOnce && m.needsLoad() {
			m.closeDetail()
			return m, m.loadList()
		}

	case listLoadedMsg:
		m.listLoading = false
		m.loadedOnce = true
		m.loadedProfile = msg.profile
		m.listErr = msg.err
		if msg.err == nil {
			m.snapshots = msg.snapshots
		}
		m.cursor = min(m.cursor, max(len(m.snapshots)-1, 0))

	case detailLoadedMsg:
		// A late reply for a snapshot that is no longer open.
		if msg.id != m.openID {
			return m, nil
		}
		m.detailLoading = false
		m.detailErr = msg.err
		if msg.snapshot != nil {
			m.detail = msg.snapshot
			m.tree = components.NewFileTree(models.BuildFileTree(msg.snapshot.Files))
		}

	case restoreResultMsg:
		m.restoring = false
		if msg.err != nil {
			logger.Error("Restore request failed", "target", msg.target, "error", msg.err)
			return m, app.Notify(app.NotificationError, "Restore failed: "+msg.err.Error())
		}
		return m, app.Notify(app.NotificationSuccess, describeRestore(msg.target, msg.result))

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func describeRestore(target string, r *models.RestoreResult) string {
	if r == nil {
		return "Restore of " + target + " requested"
	}
	msg := fmt.Sprintf("Restore of %s %s", target, r.Status)
	if r.FileCount > 0 {
		msg += fmt.Sprintf(" (%d files)", r.FileCount)
	}
	if r.Message != "" {
		msg += ": " + r.Message
	}
	return msg
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.pending != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.restore()
		case key.Matches(msg, m.keys.Cancel):
			m.pending = nil
		}
		return nil
	}

	if key.Matches(msg, m.keys.Refresh) {
		if m.openID != "" {
			return m.loadDetail(m.openID)
		}
		if m.listLoading {
			return nil
		}
		return m.loadList()
	}

	if m.openID != "" {
		return m.handleTreeKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snapshots)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Open):
		if snap := m.selectedSnapshot(); snap != nil && m.svc != nil {
			return m.loadDetail(snap.ID)
		}
	case key.Matches(msg, m.keys.Restore):
		if snap := m.selectedSnapshot(); snap != nil {
			m.pending = &restoreTarget{snapshotID: snap.ID}
		}
	}
	return nil
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeDetail()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Open):
		m.tree.Toggle()
	case key.Matches(msg, m.keys.Collapse):
		m.tree.Collapse()
	case key.Matches(msg, m.keys.Restore):
		if n := m.tree.Selected(); n != nil {
			m.pending = &restoreTarget{snapshotID: m.openID, path: lo.CoalesceOrEmpty(n.SourcePath, n.Path)}
		}
	}
	return nil
}

func (m *Model) selectedSnapshot() *models.Snapshot {
	if m.cursor >= len(m.snapshots) {
		return nil
	}
	return &m.snapshots[m.cursor]
}

func (m *Model) restore() tea.Cmd {
	target := *m.pending
	m.pending = nil
	if m.svc == nil || m.restoring {
		return nil
	}
	m.restoring = true

	req := models.RestoreRequest{SnapshotID: target.snapshotID}
	if target.path != "" {
		req.Paths = []string{target.path}
	}
	svc, label := m.svc, target.label()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := svc.Restore(ctx, req)
		if err == nil {
			logger.Info("Restore requested", "snapshot", req.SnapshotID, "paths", req.Paths)
		}
		return restoreResultMsg{result: res, err: err, target: label}
	}
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.openID != "" {
		return []key.Binding{m.keys.Open, m.keys.Back, m.keys.Restore}
	}
	return []key.Binding{m.keys.Open, m.keys.Restore, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Open, m.keys.Collapse, m.keys.Back},
		{m.keys.Restore, m.keys.Confirm, m.keys.Cancel, m.keys.Refresh},
	}
}

package analyze

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/diskord/internal/clean"
	"github.com/lakshaymaurya-felt/diskord/internal/config"
	"github.com/lakshaymaurya-felt/diskord/internal/core"
	"github.com/lakshaymaurya-felt/diskord/internal/status"
	"github.com/lakshaymaurya-felt/diskord/internal/trash"
)

// ─── Tabs ────────────────────────────────────────────────────────────────────

// Tab identifies one of the dashboard sections.
type Tab int

const (
	TabSystem Tab = iota
	TabScanner
	TabTrash
)

// TabNames is the display label for each tab.
var TabNames = []string{"System Junk", "Deep Scanner", "Session Trash"}

// ─── Messages ────────────────────────────────────────────────────────────────

type measuredMsg struct {
	measurements []clean.Measurement
}

type cleanedMsg struct {
	result clean.Result
}

// ─── Model ───────────────────────────────────────────────────────────────────

// Deps wires the dashboard to its collaborators.
type Deps struct {
	Session *Session
	Gate    *Gate
	Store   *trash.Store
	Scanner *Scanner
	Cleaner *clean.Cleaner
	Targets []config.CleanTarget
	Mounts  []string
	Logger  *zap.Logger
}

// AnalyzeModel is the bubbletea Model for the dashboard. The session, gate
// and store are only touched from Update, so they need no locking.
type AnalyzeModel struct {
	ctx     context.Context
	session *Session
	gate    *Gate
	store   *trash.Store
	scanner *Scanner
	cleaner *clean.Cleaner
	log     *zap.Logger

	tab         Tab
	trashCursor int
	sysCursor   int
	targets     []config.CleanTarget
	sizes       []int64
	measuring   bool
	cleaning    bool
	mounts      []string
	disks       []status.DiskUsage

	notice   string
	noticeOK bool

	keys     keyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

// NewAnalyzeModel creates the dashboard on the Deep Scanner tab.
func NewAnalyzeModel(ctx context.Context, deps Deps) AnalyzeModel {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mounts := deps.Mounts
	if len(mounts) == 0 {
		mounts = status.DefaultMounts
	}
	m := AnalyzeModel{
		ctx:     ctx,
		session: deps.Session,
		gate:    deps.Gate,
		store:   deps.Store,
		scanner: deps.Scanner,
		cleaner: deps.Cleaner,
		log:     logger,
		tab:     TabScanner,
		targets: deps.Targets,
		sizes:   make([]int64, len(deps.Targets)),
		mounts:  mounts,
		keys:    newKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
	m.keys.setMode(m.tab, false)
	return m
}

func (m AnalyzeModel) Init() tea.Cmd {
	return tea.Batch(status.Collect(m.mounts), m.measureTargets())
}

func (m *AnalyzeModel) measureTargets() tea.Cmd {
	if m.cleaner == nil || len(m.targets) == 0 {
		return nil
	}
	m.measuring = true
	cleaner, targets, ctx := m.cleaner, m.targets, m.ctx
	return func() tea.Msg {
		return measuredMsg{measurements: cleaner.MeasureAll(ctx, targets)}
	}
}

func (m AnalyzeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case status.DisksMsg:
		if msg.Err != nil {
			m.log.Warn("disk usage unavailable", zap.Error(msg.Err))
			return m, nil
		}
		m.disks = msg.Disks
		return m, nil

	case measuredMsg:
		m.measuring = false
		for i, ms := range msg.measurements {
			if i < len(m.sizes) {
				m.sizes[i] = ms.Size
			}
		}
		return m, nil

	case cleanedMsg:
		m.cleaning = false
		r := msg.result
		if r.Err != nil {
			m.setNotice(false, "%s: %v", r.Target, r.Err)
		} else {
			m.setNotice(true, "%s: freed %s", r.Target, core.FormatSize(r.Freed()))
		}
		m.session.MarkStale()
		return m, tea.Batch(m.measureTargets(), status.Collect(m.mounts))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m AnalyzeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gate.State() == GateAwaitingConfirmation {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.commit()
		case key.Matches(msg, m.keys.Cancel):
			m.gate.Cancel()
			m.keys.setMode(m.tab, false)
			m.setNotice(true, "Cancelled; selection kept")
		case msg.String() == "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab((m.tab + 1) % Tab(len(TabNames)))

	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab((m.tab + Tab(len(TabNames)) - 1) % Tab(len(TabNames)))

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Toggle):
		m.session.ToggleCurrent()

	case key.Matches(msg, m.keys.Open):
		m.session.DrillDown()

	case key.Matches(msg, m.keys.Back):
		m.session.DrillUp()

	case key.Matches(msg, m.keys.Commit):
		return m.commit()

	case key.Matches(msg, m.keys.Erase):
		m.eraseSelected()

	case key.Matches(msg, m.keys.Undo):
		return m.restore()

	case key.Matches(msg, m.keys.Clean):
		return m.cleanSelected()

	case key.Matches(msg, m.keys.Rescan):
		if m.tab == TabSystem {
			return m, m.measureTargets()
		}
		m.session.Refresh()
		m.setNotice(true, "Rescanned %s", m.session.Root())
	}

	return m, nil
}

// switchTab changes tab, re-aggregating the scanner view if the tree changed
// while it was hidden.
func (m *AnalyzeModel) switchTab(t Tab) {
	m.tab = t
	m.keys.setMode(t, false)
	if t == TabScanner && m.session.Stale() {
		m.session.Refresh()
	}
}

func (m *AnalyzeModel) moveCursor(delta int) {
	switch m.tab {
	case TabScanner:
		m.session.MoveCursor(delta)
	case TabTrash:
		m.trashCursor = wrap(m.trashCursor+delta, m.store.Len())
	case TabSystem:
		m.sysCursor = wrap(m.sysCursor+delta, len(m.targets))
	}
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// commit hands the marked paths to the gate and reports the outcome.
func (m AnalyzeModel) commit() (tea.Model, tea.Cmd) {
	outcome, results := m.session.Commit(m.ctx, m.gate)

	switch outcome {
	case CommitNothing:
		m.setNotice(false, "Nothing selected")
		m.keys.setMode(m.tab, false)
		return m, nil

	case CommitConfirmationRequired:
		m.keys.setMode(m.tab, true)
		return m, nil
	}

	m.keys.setMode(m.tab, false)
	var trashed, removed, failed int
	var firstErr error
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			m.log.Warn("delete failed", zap.String("path", r.Path), zap.Error(r.Err))
		case r.Item.IsRoot:
			removed++
		default:
			trashed++
		}
	}

	switch {
	case failed > 0:
		m.setNotice(false, "%d moved to trash, %d deleted, %d failed: %v", trashed, removed, failed, firstErr)
	case removed > 0:
		m.setNotice(true, "%d moved to trash, %d deleted permanently", trashed, removed)
	default:
		m.setNotice(true, "%d moved to trash (u to undo)", trashed)
	}
	return m, status.Collect(m.mounts)
}

// restore undoes the highlighted trash item, or the latest one when used
// from the scanner.
func (m AnalyzeModel) restore() (tea.Model, tea.Cmd) {
	var item trash.Item
	var ok bool
	if m.tab == TabTrash {
		item, ok = m.selectedTrashItem()
	} else {
		item, ok = m.store.Last()
	}
	if !ok {
		m.setNotice(false, "Session trash is empty")
		return m, nil
	}

	if !item.Restorable() {
		m.setNotice(false, "%s was deleted permanently and cannot be restored", item.OriginalPath)
		return m, nil
	}
	if err := m.store.Restore(item); err != nil {
		m.setNotice(false, "Restore failed: %v", err)
		return m, nil
	}

	m.trashCursor = wrap(m.trashCursor, m.store.Len())
	m.setNotice(true, "Restored %s", item.OriginalPath)
	if m.tab == TabScanner {
		m.session.Refresh()
	} else {
		m.session.MarkStale()
	}
	return m, status.Collect(m.mounts)
}

func (m *AnalyzeModel) eraseSelected() {
	item, ok := m.selectedTrashItem()
	if !ok {
		return
	}
	if err := m.store.Erase(item); err != nil {
		m.setNotice(false, "Delete failed: %v", err)
		return
	}
	m.trashCursor = wrap(m.trashCursor, m.store.Len())
	m.setNotice(true, "Deleted %s permanently", item.OriginalPath)
}

func (m AnalyzeModel) cleanSelected() (tea.Model, tea.Cmd) {
	if m.cleaning || m.cleaner == nil || m.sysCursor >= len(m.targets) {
		return m, nil
	}
	m.cleaning = true
	target := m.targets[m.sysCursor]
	m.setNotice(true, "Cleaning %s…", target.Description)
	cleaner, ctx := m.cleaner, m.ctx
	return m, func() tea.Msg {
		return cleanedMsg{result: cleaner.Clean(ctx, target, false)}
	}
}

func (m AnalyzeModel) selectedTrashItem() (trash.Item, bool) {
	items := m.store.Items()
	if m.trashCursor < 0 || m.trashCursor >= len(items) {
		return trash.Item{}, false
	}
	return items[m.trashCursor], true
}

func (m *AnalyzeModel) setNotice(ok bool, format string, args ...any) {
	m.notice = fmt.Sprintf(format, args...)
	m.noticeOK = ok
}

// View delegates to view.go renderView.
func (m AnalyzeModel) View() string {
	return m.renderView()
}

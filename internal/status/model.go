package status

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const collectTimeout = 5 * time.Second

type tickMsg time.Time

// DisksMsg carries a disk usage reading.
type DisksMsg struct {
	Disks []DiskUsage
	Err   error

	manual bool
}

// StatusModel is the bubbletea Model for the live disk monitor.
type StatusModel struct {
	Disks           []DiskUsage
	Width           int
	Height          int
	Err             error
	mounts          []string
	refreshInterval time.Duration
	quitting        bool
}

// NewStatusModel creates a StatusModel watching mounts at the given cadence.
func NewStatusModel(mounts []string, refreshInterval time.Duration) StatusModel {
	if refreshInterval <= 0 {
		refreshInterval = 2 * time.Second
	}
	if len(mounts) == 0 {
		mounts = DefaultMounts
	}
	return StatusModel{
		Width:           80,
		Height:          24,
		mounts:          mounts,
		refreshInterval: refreshInterval,
	}
}

func (m StatusModel) doTick() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Collect returns a command that reads disk usage for mounts and replies
// with a DisksMsg.
func Collect(mounts []string) tea.Cmd {
	return collect(mounts, false)
}

func collect(mounts []string, manual bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
		defer cancel()
		disks, err := CollectDisks(ctx, mounts)
		return DisksMsg{Disks: disks, Err: err, manual: manual}
	}
}

func (m StatusModel) Init() tea.Cmd {
	// The first reading starts the tick loop, keeping collection and
	// display strictly sequential.
	return Collect(m.mounts)
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, collect(m.mounts, true)
		}
		return m, nil

	case tickMsg:
		return m, Collect(m.mounts)

	case DisksMsg:
		m.Err = msg.Err
		if msg.Err == nil {
			m.Disks = msg.Disks
		}
		if msg.manual {
			// The tick loop is already running.
			return m, nil
		}
		return m, m.doTick()
	}

	return m, nil
}

func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}
	return m.renderView()
}

package analyze

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/diskord/internal/core"
	"github.com/lakshaymaurya-felt/diskord/internal/status"
	"github.com/lakshaymaurya-felt/diskord/internal/trash"
	"github.com/lakshaymaurya-felt/diskord/internal/ui"
)

// ─── Color tokens ────────────────────────────────────────────────────────────

var (
	clrDim    = ui.ColorMuted
	clrDir    = ui.ColorCoral
	clrFile   = ui.ColorText
	clrLarge  = ui.ColorWarning
	clrCursor = ui.ColorPrimary
	clrMarked = ui.ColorSuccess
)

// ─── Top-level view ──────────────────────────────────────────────────────────

func (m AnalyzeModel) renderView() string {
	if m.quitting {
		return ""
	}
	w := m.width
	if w < 40 {
		w = 40
	}

	var s strings.Builder
	s.WriteString(m.renderHeader(w))
	s.WriteString("\n")
	s.WriteString(m.renderTabs(w))
	s.WriteString("\n")

	if m.gate.State() == GateAwaitingConfirmation {
		s.WriteString(m.renderConfirm(w))
	} else {
		switch m.tab {
		case TabSystem:
			s.WriteString(m.renderSystem(w))
		case TabScanner:
			s.WriteString(m.renderScanner(w))
		case TabTrash:
			s.WriteString(m.renderTrash(w))
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter(w))
	return s.String()
}

// ─── Header ──────────────────────────────────────────────────────────────────

func (m AnalyzeModel) renderHeader(w int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorCoral).
		Render("  " + ui.IconDiamond + " diskord")

	var gauges string
	if m.disks != nil {
		gauges = status.RenderGauges(m.disks, w)
	} else {
		gauges = lipgloss.NewStyle().Foreground(ui.ColorMuted).Italic(true).
			Render("  Reading disk usage…")
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, title, gauges)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorCoral).
		Width(w - 2).
		Render(inner)
}

// ─── Tab bar ─────────────────────────────────────────────────────────────────

func (m AnalyzeModel) renderTabs(w int) string {
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ui.ColorPrimary).
		Padding(0, 2)

	inactive := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Padding(0, 2)

	var tabs []string
	for i, name := range TabNames {
		label := name
		if Tab(i) == TabTrash && m.store.Len() > 0 {
			label = fmt.Sprintf("%s (%d)", name, m.store.Len())
		}
		if Tab(i) == m.tab {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, inactive.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	divider := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Render(strings.Repeat("─", w))

	return bar + "\n" + divider
}

// ─── System junk ─────────────────────────────────────────────────────────────

func (m AnalyzeModel) renderSystem(w int) string {
	if len(m.targets) == 0 {
		return emptyLine("(no clean targets)")
	}

	var lines []string
	for i, t := range m.targets {
		size := core.FormatSize(m.sizes[i])
		if m.measuring && m.sizes[i] == 0 {
			size = "…"
		}
		admin := "      "
		if t.RequiresAdmin {
			admin = ui.TagWarningStyle().Render(" root ")
		}
		line := fmt.Sprintf("  %-32s %10s  %s  %s",
			t.Description, size, admin,
			lipgloss.NewStyle().Foreground(clrDim).Render(t.Category))
		if i == m.sysCursor {
			line = cursorLine(line)
		}
		lines = append(lines, line)
	}
	if m.cleaning {
		lines = append(lines, "", emptyLine("cleaning…"))
	}
	return strings.Join(lines, "\n")
}

// ─── Deep scanner ────────────────────────────────────────────────────────────

func (m AnalyzeModel) renderScanner(w int) string {
	total := m.session.Total()
	pathLine := lipgloss.NewStyle().
		Foreground(ui.ColorTextDim).
		Render(fmt.Sprintf("  %s    %s", m.session.Root(), core.FormatSize(total)))
	if m.scanner != nil {
		pathLine += lipgloss.NewStyle().Foreground(clrDim).
			Render(fmt.Sprintf("  %d scanned", m.scanner.ScannedCount()))
		if m.scanner.Partial() {
			pathLine += "  " + ui.TagWarningStyle().Render(" partial ")
		}
	}
	if n := m.session.MarkCount(); n > 0 {
		pathLine += lipgloss.NewStyle().Foreground(clrMarked).
			Render(fmt.Sprintf("  %d selected", n))
	}

	entries := m.session.Entries()
	if len(entries) == 0 {
		return pathLine + "\n" + emptyLine("(empty directory)")
	}

	vh := m.viewportHeight()
	barWidth := 20
	if w > 110 {
		barWidth = 30
	} else if w > 90 {
		barWidth = 25
	}

	cursor := m.session.Cursor()
	start := windowStart(cursor, len(entries), vh)
	lines := []string{pathLine}
	for i := start; i < len(entries) && i < start+vh; i++ {
		lines = append(lines, m.renderEntry(entries[i], total, barWidth, i == cursor))
	}

	if len(entries) > vh {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render(fmt.Sprintf("  ── %d/%d items ──", min(start+vh, len(entries)), len(entries))))
	}
	return strings.Join(lines, "\n")
}

func (m AnalyzeModel) renderEntry(entry ScanEntry, total int64, barWidth int, selected bool) string {
	pct := entry.Percentage(total)
	bar := ui.GradientBar(pct, barWidth)

	check := ui.IconUnchecked
	if m.session.IsMarked(entry.Path) {
		check = lipgloss.NewStyle().Foreground(clrMarked).Render(ui.IconChecked)
	}

	icon := ui.IconBullet + " "
	nameColor := clrFile
	if entry.IsDir {
		icon = ui.IconFolder
		nameColor = clrDir
	} else if entry.Size >= 100*(1<<20) {
		nameColor = clrLarge
	}

	maxName := m.width - barWidth - 36
	if maxName < 12 {
		maxName = 12
	}
	name := truncate(entry.Name, maxName)
	nameStr := lipgloss.NewStyle().Foreground(nameColor).Bold(entry.IsDir).Render(name)
	pctStr := lipgloss.NewStyle().Foreground(ui.ColorTextDim).Render(fmt.Sprintf("%5.1f%%", pct))

	line := fmt.Sprintf("  %s %s  %s  %9s  %s %s",
		check, bar, pctStr, core.FormatSize(entry.Size), icon, nameStr)
	if selected {
		line = cursorLine(line)
	}
	return line
}

// ─── Session trash ───────────────────────────────────────────────────────────

func (m AnalyzeModel) renderTrash(w int) string {
	items := m.store.Items()
	if len(items) == 0 {
		return emptyLine("Nothing deleted this session")
	}

	vh := m.viewportHeight()
	start := windowStart(m.trashCursor, len(items), vh)
	var lines []string
	for i := start; i < len(items) && i < start+vh; i++ {
		lines = append(lines, renderTrashItem(items[i], w, i == m.trashCursor))
	}
	return strings.Join(lines, "\n")
}

func renderTrashItem(item trash.Item, w int, selected bool) string {
	when := item.DeletedAt.Format("15:04:05")
	path := truncate(item.OriginalPath, w-30)

	var line string
	if !item.Restorable() {
		style := lipgloss.NewStyle().Foreground(ui.ColorError).Strikethrough(true)
		line = fmt.Sprintf("  %s  %s  %s", when,
			ui.TagErrorStyle().Render(" gone "), style.Render(path))
	} else {
		line = fmt.Sprintf("  %s  %s  %s", when,
			lipgloss.NewStyle().Foreground(ui.ColorSuccess).Render(" trash"),
			lipgloss.NewStyle().Foreground(clrFile).Render(path))
	}
	if selected {
		line = cursorLine(line)
	}
	return line
}

// ─── Confirmation ────────────────────────────────────────────────────────────

func (m AnalyzeModel) renderConfirm(w int) string {
	irr := m.session.Irreversible(m.gate)

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorError).
		Render(ui.IconWarning + "  Permanent deletion")
	body := []string{
		title,
		"",
		fmt.Sprintf("%d selected path(s) lie outside %s and cannot be moved", len(irr), m.store.Home()),
		"to the trash. They will be removed with elevated privileges:",
		"",
	}
	const maxShown = 10
	for i, p := range irr {
		if i == maxShown {
			body = append(body, fmt.Sprintf("  … and %d more", len(irr)-maxShown))
			break
		}
		body = append(body, "  "+ui.IconError+" "+truncate(p, w-16))
	}
	body = append(body, "",
		lipgloss.NewStyle().Bold(true).Render("Enter")+" delete permanently   "+
			lipgloss.NewStyle().Bold(true).Render("Esc")+" cancel")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ui.ColorError).
		Padding(1, 2).
		Width(w - 4).
		Render(strings.Join(body, "\n"))
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m AnalyzeModel) renderFooter(w int) string {
	var parts []string
	if m.notice != "" {
		if m.noticeOK {
			parts = append(parts, lipgloss.NewStyle().Foreground(ui.ColorSuccess).
				Render("  "+ui.IconSuccess+" "+m.notice))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(ui.ColorError).
				Render("  "+ui.IconError+" "+m.notice))
		}
	}
	parts = append(parts, "  "+m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (m AnalyzeModel) viewportHeight() int {
	h := m.height - 12 // header (5) + tabs (2) + path (1) + footer (3) + padding
	if h < 1 {
		h = 1
	}
	return h
}

// windowStart returns the first visible row that keeps cursor on screen.
func windowStart(cursor, n, vh int) int {
	if n <= vh || cursor < vh {
		return 0
	}
	return cursor - vh + 1
}

func cursorLine(line string) string {
	c := lipgloss.NewStyle().Foreground(clrCursor).Bold(true).Render(ui.IconBlock)
	return " " + c + line[2:]
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func emptyLine(text string) string {
	return lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Italic(true).
		Render("  " + text)
}

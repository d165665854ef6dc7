package status

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/diskord/internal/core"
	"github.com/lakshaymaurya-felt/diskord/internal/ui"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	clrGreen  = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	clrYellow = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	clrOrange = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fb923c"}
	clrRed    = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// ─── Top-level renderer ─────────────────────────────────────────────────────

func (m StatusModel) renderView() string {
	w := m.Width
	if w < 50 {
		w = 50
	}

	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Render("  " + ui.IconDiamond + " Disk Usage"))
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(strings.Repeat("─", w)))
	s.WriteString("\n\n")

	if m.Disks == nil && m.Err == nil {
		s.WriteString(lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render("  Collecting disk usage…"))
	} else {
		s.WriteString(RenderGauges(m.Disks, w))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderStatusFooter())
	return s.String()
}

// RenderGauges renders one usage bar per disk, sized to fit width.
func RenderGauges(disks []DiskUsage, width int) string {
	if len(disks) == 0 {
		return lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render("  (no matching mounts)")
	}

	barW := 24
	switch {
	case width > 110:
		barW = 48
	case width > 90:
		barW = 36
	}

	lines := make([]string, 0, len(disks))
	for _, d := range disks {
		lines = append(lines, fmt.Sprintf("  %-6s %s  %5.1f%%  %s / %s  %s free",
			d.MountPoint, colorBar(d.UsedPercent, barW), d.UsedPercent,
			core.FormatSize(int64(d.Used)),
			core.FormatSize(int64(d.Total)),
			core.FormatSize(int64(d.Available))))
	}
	return strings.Join(lines, "\n")
}

// PrintTable writes a plain-text usage table for non-interactive output.
func PrintTable(w io.Writer, disks []DiskUsage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MOUNT\tDEVICE\tTYPE\tSIZE\tUSED\tAVAIL\tUSE%")
	for _, d := range disks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.1f%%\n",
			d.MountPoint, d.Name, d.FSType,
			core.FormatSize(int64(d.Total)),
			core.FormatSize(int64(d.Used)),
			core.FormatSize(int64(d.Available)),
			d.UsedPercent)
	}
	return tw.Flush()
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m StatusModel) renderStatusFooter() string {
	hints := "  r refresh  " + ui.IconPipe + "  q quit"
	footer := ui.HintBarStyle().Render(hints)

	if m.Err != nil {
		errStr := lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Render("  " + ui.IconError + " " + m.Err.Error())
		return errStr + "\n" + footer
	}
	return footer
}

// ─── Drawing primitives ─────────────────────────────────────────────────────

// colorBar renders a ████░░░░ bar colored by severity.
func colorBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}

	barColor := clrGreen
	switch {
	case pct >= 90:
		barColor = clrRed
	case pct >= 75:
		barColor = clrOrange
	case pct >= 50:
		barColor = clrYellow
	}

	fStr := lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled))
	eStr := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(strings.Repeat("░", width-filled))
	return fStr + eStr
}

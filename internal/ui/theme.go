// Package ui holds the shared palette, glyphs and small rendering helpers
// used by every dashboard view.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}
	ColorCoral     = lipgloss.AdaptiveColor{Light: "#e11d48", Dark: "#fb7185"}
	ColorText      = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	ColorTextDim   = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// ─── Glyphs ──────────────────────────────────────────────────────────────────

const (
	IconDiamond   = "◆"
	IconChevron   = "›"
	IconFolder    = "▸ "
	IconBullet    = "•"
	IconBlock     = "▌"
	IconWarning   = "⚠"
	IconError     = "✗"
	IconSuccess   = "✓"
	IconPipe      = "│"
	IconChecked   = "[x]"
	IconUnchecked = "[ ]"
)

// GradientBar renders a ████░░░░ bar whose fill color moves from primary to
// coral as pct grows.
func GradientBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
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

	fill := ColorPrimary
	switch {
	case pct >= 50:
		fill = ColorCoral
	case pct >= 20:
		fill = ColorWarning
	}

	return lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("░", width-filled))
}

// HintBarStyle is used for key-binding hints in footers.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
}

// TagWarningStyle renders small inverse warning tags.
func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(ColorWarning).
		Bold(true)
}

// TagErrorStyle renders small inverse error tags.
func TagErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(ColorError).
		Bold(true)
}

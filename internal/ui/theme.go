package ui

import (
	"github.com/bamsammich/crcsum/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// Report palette; overridable from the [theme] config section.
var (
	ColorChanged   = lipgloss.Color("#f38ba8")
	ColorUnchanged = lipgloss.Color("#a6e3a1")
	ColorWarning   = lipgloss.Color("#f9e2af")
	ColorMuted     = lipgloss.Color("#5a6278")
)

var (
	styleChanged   lipgloss.Style
	styleUnchanged lipgloss.Style
	styleWarning   lipgloss.Style
	styleMuted     lipgloss.Style
	stylePath      lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	styleChanged = lipgloss.NewStyle().Foreground(ColorChanged).Bold(true)
	styleUnchanged = lipgloss.NewStyle().Foreground(ColorUnchanged)
	styleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	stylePath = lipgloss.NewStyle()
}

// ApplyTheme overrides colors from the config and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	if tc.Changed != nil {
		ColorChanged = lipgloss.Color(*tc.Changed)
	}
	if tc.Unchanged != nil {
		ColorUnchanged = lipgloss.Color(*tc.Unchanged)
	}
	if tc.Warning != nil {
		ColorWarning = lipgloss.Color(*tc.Warning)
	}
	if tc.Muted != nil {
		ColorMuted = lipgloss.Color(*tc.Muted)
	}
	rebuildStyles()
}

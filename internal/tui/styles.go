package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibdev/internal/ui"
)

// Styles are rebuilt from the ui theme by initTUIStyles.
var (
	panelStyle     lipgloss.Style
	titleStyle     lipgloss.Style
	dimStyle       lipgloss.Style
	indexStyle     lipgloss.Style
	digitsStyle    lipgloss.Style
	labelStyle     lipgloss.Style
	valueStyle     lipgloss.Style
	warnStyle      lipgloss.Style
	errorStyle     lipgloss.Style
	sparklineStyle lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds the styles from the current ui theme. Run calls it
// again after the theme has been initialized from the configuration.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(t.Dim)
	indexStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	digitsStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	labelStyle = lipgloss.NewStyle().Foreground(t.Dim)
	valueStyle = lipgloss.NewStyle().Foreground(t.Accent)
	warnStyle = lipgloss.NewStyle().Foreground(t.Warning)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	sparklineStyle = lipgloss.NewStyle().Foreground(t.Accent)
}

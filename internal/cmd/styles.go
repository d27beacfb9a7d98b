package cmd

import "github.com/charmbracelet/lipgloss"

// Output styles shared by the launch and status commands.
var (
	nameStyle    = lipgloss.NewStyle().Bold(true)
	commandStyle = lipgloss.NewStyle().Faint(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	deadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

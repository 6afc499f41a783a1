package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/style"
)

var (
	filePendingStyle = lipgloss.NewStyle().
				Foreground(style.Ash)

	fileRunningStyle = lipgloss.NewStyle().
				Foreground(style.Ember).
				Bold(true)

	fileDoneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	fileErrorStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Ember).
			Bold(true)

	stageStyle = lipgloss.NewStyle().
			Foreground(style.Clay).
			Faint(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Ember).
			Foreground(lipgloss.Color("#FFFFFF"))

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(lipgloss.Color("#FFFFFF"))

	listStyle = lipgloss.NewStyle().
			PaddingRight(2)

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Ash).
			PaddingLeft(1)
)

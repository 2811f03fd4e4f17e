package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1423")).
			Background(lipgloss.Color("#b786e0")).
			Padding(0, 1)

	stepCountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a7f9c")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b786e0"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#d0342c", Dark: "#ff6b61"}).
			Render

	completeMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#56FF4E")).
				Render

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

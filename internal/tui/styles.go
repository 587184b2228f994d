package tui

import "github.com/charmbracelet/lipgloss"

// Color palette. Values are ANSI-256 codes.
var (
	colorPrimary   = lipgloss.Color("170")
	colorSecondary = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("82")
	colorWarning   = lipgloss.Color("214")
	colorDanger    = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")
	colorSubtle    = lipgloss.Color("236")
	colorText      = lipgloss.Color("252")
)

var (
	headerBarStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorText).
		Background(colorSubtle).
		Padding(0, 1).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSecondary)

	dimStyle = lipgloss.NewStyle().
		Foreground(colorDim)

	okStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errStyle  = lipgloss.NewStyle().Foreground(colorDanger)

	tabStyle       = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorPrimary).Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
		Foreground(colorDim).
		MarginTop(1)
)

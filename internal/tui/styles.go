// Package tui provides the bubbletea + lipgloss terminal UI for the tarot
// reading flow: spread selection, shuffle, card table, the reading modal
// with streaming interpretation and chat, and the history overlay.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette. Accent-dependent styles live on Theme and are computed
// from the configured accent color at creation.
var (
	colorWhite  = lipgloss.Color("#FAFAFA")
	colorGray   = lipgloss.Color("#888888")
	colorGold   = lipgloss.Color("#E8C547")
	colorGreen  = lipgloss.Color("#6BCB77")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorOrchid = lipgloss.Color("#C77DFF")
)

var (
	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	reversedStyle = lipgloss.NewStyle().
			Foreground(colorOrchid)

	uprightStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	keywordStyle = lipgloss.NewStyle().
			Foreground(colorGold)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorGold).
			Italic(true)
)

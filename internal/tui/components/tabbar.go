package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

// TabBar is a stateless tab bar component that renders a row of labelled
// tabs. The active tab is highlighted with the accent color and bold text.
type TabBar struct {
	tabs   []string
	active int
	accent lipgloss.Color
}

// NewTabBar creates a TabBar with the given tab titles. The first tab is
// active.
func NewTabBar(accent lipgloss.Color, tabs ...string) TabBar {
	return TabBar{tabs: tabs, accent: accent}
}

// Active returns the index of the currently active tab.
func (t TabBar) Active() int {
	return t.active
}

// Select returns a TabBar with the tab at index i active. Out-of-range
// indexes are ignored.
func (t TabBar) Select(i int) TabBar {
	if i >= 0 && i < len(t.tabs) {
		t.active = i
	}
	return t
}

// Next returns a TabBar with the next tab active (wraps around).
func (t TabBar) Next() TabBar {
	if len(t.tabs) == 0 {
		return t
	}
	t.active = (t.active + 1) % len(t.tabs)
	return t
}

// Prev returns a TabBar with the previous tab active (wraps around).
func (t TabBar) Prev() TabBar {
	if len(t.tabs) == 0 {
		return t
	}
	t.active = (t.active + len(t.tabs) - 1) % len(t.tabs)
	return t
}

// View renders the tab bar as a single line. Active tab: bold + accent
// color. Inactive tabs: dimmed. Tabs are separated by " │ ".
func (t TabBar) View() string {
	if len(t.tabs) == 0 {
		return ""
	}

	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(t.accent)
	parts := make([]string, len(t.tabs))
	for i, label := range t.tabs {
		if i == t.active {
			parts[i] = activeStyle.Render(label)
		} else {
			parts[i] = tabInactiveStyle.Render(label)
		}
	}
	return strings.Join(parts, "  │  ")
}

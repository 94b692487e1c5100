package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mystictarot/mystic/internal/config"
)

// Theme holds accent-color-derived styles. Non-accent styles are
// package-level in styles.go.
type Theme struct {
	accent          lipgloss.Color
	headerStyle     lipgloss.Style // header bar background
	titleStyle      lipgloss.Style // spread names, card names
	cursorStyle     lipgloss.Style // selection cursor rows
	borderFocused   lipgloss.Style // active card / focused overlay border
	borderUnfocused lipgloss.Style // plain card border
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#9D6BF4").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := config.DefaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accent: c,
		headerStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		titleStyle: lipgloss.NewStyle().
			Foreground(c).
			Bold(true),
		cursorStyle: lipgloss.NewStyle().
			Foreground(c).
			Bold(true),
		borderFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
		borderUnfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray),
	}
}

// Accent returns the raw accent color for components that style themselves.
func (t Theme) Accent() lipgloss.Color { return t.accent }

// HeaderStyle returns the style for the header bar.
func (t Theme) HeaderStyle() lipgloss.Style { return t.headerStyle }

// TitleStyle returns the accent-colored bold style for prominent names.
func (t Theme) TitleStyle() lipgloss.Style { return t.titleStyle }

// CursorStyle returns the style for the selected row in menus.
func (t Theme) CursorStyle() lipgloss.Style { return t.cursorStyle }

// CardBorderStyle returns the border style for a card cell; the card under
// the cursor gets the accent border.
func (t Theme) CardBorderStyle(focused bool) lipgloss.Style {
	if focused {
		return t.borderFocused
	}
	return t.borderUnfocused
}

// OverlayStyle returns the bordered box style for modal overlays.
func (t Theme) OverlayStyle() lipgloss.Style { return t.borderFocused }

// Package components provides reusable TUI components for the reading
// modal and overlays.
package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StreamView is a scrollable prose panel that wraps bubbles/viewport. It
// holds one text document that grows as deltas stream in; in follow mode
// (default) each update scrolls to the bottom so the newest text stays
// visible. Scrolling away from the bottom leaves follow mode until the
// user scrolls back or toggles it.
type StreamView struct {
	vp     viewport.Model
	text   string
	follow bool
	width  int
	height int
}

// NewStreamView creates a StreamView with the given dimensions, initially
// in follow mode.
func NewStreamView(w, h int) StreamView {
	vp := viewport.New(w, h)
	return StreamView{
		vp:     vp,
		follow: true,
		width:  w,
		height: h,
	}
}

// SetText replaces the document, re-wrapping it to the current width.
// Follow mode scrolls to the bottom.
func (v StreamView) SetText(text string) StreamView {
	v.text = text
	v.vp.SetContent(v.wrap())
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Text returns the unwrapped document.
func (v StreamView) Text() string { return v.text }

// ToggleFollow switches follow mode on or off. When turned on, scrolls
// immediately to the bottom.
func (v StreamView) ToggleFollow() StreamView {
	v.follow = !v.follow
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Following reports whether follow mode is currently active.
func (v StreamView) Following() bool { return v.follow }

// SetSize resizes the view and re-wraps the document.
func (v StreamView) SetSize(w, h int) StreamView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	v.vp.SetContent(v.wrap())
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Update handles bubbletea messages (scroll keys, mouse events).
func (v StreamView) Update(msg tea.Msg) (StreamView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	// If the user scrolled away from the bottom, exit follow mode.
	// Only on explicit scroll messages, not on resize.
	if v.follow && !v.vp.AtBottom() {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			v.follow = false
		}
	}
	return v, cmd
}

// View renders the visible window of the document.
func (v StreamView) View() string {
	return v.vp.View()
}

func (v StreamView) wrap() string {
	if v.width < 1 {
		return v.text
	}
	return lipgloss.NewStyle().Width(v.width).Render(v.text)
}

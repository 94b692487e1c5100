// Package panels provides the composite panels of the tarot TUI.
package panels

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mystictarot/mystic/internal/history"
	"github.com/mystictarot/mystic/internal/oracle"
	"github.com/mystictarot/mystic/internal/spread"
)

// HistorySelectedMsg is emitted when the user picks a past reading to
// restore. Defined here (not in the parent tui package) to avoid circular
// imports.
type HistorySelectedMsg struct{ Item history.Item }

// historyItem implements list.Item for one stored reading.
type historyItem struct {
	item history.Item
}

func (h historyItem) Title() string {
	name := h.item.SpreadID
	if cfg, ok := spread.ByID(h.item.SpreadID); ok {
		name = cfg.Name
	}
	ts := time.UnixMilli(h.item.Timestamp)
	return fmt.Sprintf("%s  %s", ts.Format("01-02 15:04"), name)
}

func (h historyItem) Description() string {
	names := make([]string, 0, len(h.item.DrawnCards))
	for _, dc := range h.item.DrawnCards {
		label := dc.Card.LocalName
		if dc.Reversed {
			label += "(逆)"
		}
		names = append(names, label)
	}
	desc := strings.Join(names, " · ")
	if q := lastQuestion(h.item.ChatHistory); q != "" {
		desc += "  「" + q + "」"
	}
	return desc
}

// lastQuestion returns the content of the most recent user turn, if any.
func lastQuestion(turns []oracle.Message) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == oracle.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

func (h historyItem) FilterValue() string { return h.Title() }

// historyDelegate renders one reading per two lines: timestamp and spread
// on the first, the drawn cards on the second.
type historyDelegate struct {
	accent lipgloss.Color
}

func (d historyDelegate) Height() int                             { return 2 }
func (d historyDelegate) Spacing() int                            { return 0 }
func (d historyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d historyDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	h, ok := listItem.(historyItem)
	if !ok {
		return
	}
	title, desc := h.Title(), h.Description()
	if index == m.Index() {
		style := lipgloss.NewStyle().Bold(true).Foreground(d.accent)
		fmt.Fprintf(w, "%s\n%s", style.Render("> "+title), style.Render("  "+desc))
		return
	}
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	fmt.Fprintf(w, "  %s\n%s", title, dim.Render("  "+desc))
}

// HistoryPanel displays past readings, newest first.
type HistoryPanel struct {
	list   list.Model
	items  []history.Item
	width  int
	height int
}

// NewHistoryPanel creates a history panel over the given readings.
func NewHistoryPanel(items []history.Item, accent lipgloss.Color, w, h int) HistoryPanel {
	l := list.New(nil, historyDelegate{accent: accent}, w, h)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	p := HistoryPanel{list: l, width: w, height: h}
	return p.SetItems(items)
}

// SetItems replaces the panel's readings.
func (p HistoryPanel) SetItems(items []history.Item) HistoryPanel {
	p.items = items
	li := make([]list.Item, len(items))
	for i, it := range items {
		li[i] = historyItem{item: it}
	}
	p.list.SetItems(li)
	return p
}

// Empty reports whether the panel has no readings.
func (p HistoryPanel) Empty() bool { return len(p.items) == 0 }

// Selected returns the currently selected reading, or nil.
func (p HistoryPanel) Selected() *history.Item {
	if h, ok := p.list.SelectedItem().(historyItem); ok {
		item := h.item
		return &item
	}
	return nil
}

// SetSize resizes the panel.
func (p HistoryPanel) SetSize(w, h int) HistoryPanel {
	p.width = w
	p.height = h
	p.list.SetSize(w, h)
	return p
}

// Update handles key messages for the panel.
func (p HistoryPanel) Update(msg tea.Msg) (HistoryPanel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyDown})
		case "k", "up":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyUp})
		case "enter":
			if sel := p.Selected(); sel != nil {
				item := *sel
				return p, func() tea.Msg { return HistorySelectedMsg{Item: item} }
			}
		default:
			p.list, cmd = p.list.Update(msg)
		}
	default:
		p.list, cmd = p.list.Update(msg)
	}
	return p, cmd
}

// View renders the history panel.
func (p HistoryPanel) View() string {
	if len(p.items) == 0 {
		return lipgloss.NewStyle().
			Width(p.width).Height(p.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color("#888888")).
			Render("还没有占卜记录")
	}
	return p.list.View()
}

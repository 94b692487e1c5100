package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mystictarot/mystic/internal/reading"
	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/tui/panels"
)

// Update handles all incoming bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.ctrl.Session().Phase() != session.PhaseShuffling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case shuffleDealtMsg:
		// Stale tokens (reset while the timer was pending) are ignored
		// inside CompleteShuffle.
		m.ctrl.Session().CompleteShuffle(msg.token)
		m.cardCur = 0
		return m, nil

	case oracleEventMsg:
		m.ctrl.Apply(reading.Event(msg))
		m.stream = m.stream.SetText(m.readingText())
		return m, waitForOracle(m.ctrl.Events())

	case oracleClosedMsg:
		return m, nil

	case panels.HistorySelectedMsg:
		if m.ctrl.Restore(msg.Item) {
			m.modalTabs = m.modalTabs.Select(tabReading)
			m.stream = m.stream.SetText(m.readingText())
			m.cardCur = 0
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	w, h := m.overlayDims()
	m.stream = m.stream.SetSize(w, h-3) // leave room for tab bar and chat input
	m.chatInput.Width = w - 4
	m.historyPanel = m.historyPanel.SetSize(w, h)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ctrl.HistoryOpen() {
		return m.handleHistoryKey(msg)
	}
	if m.ctrl.ModalOpen() {
		return m.handleModalKey(msg)
	}

	switch m.ctrl.Session().Phase() {
	case session.PhaseSelection:
		return m.handleSelectionKey(msg)
	case session.PhaseShuffling:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m.handleTableKey(msg)
	}
}

func (m Model) handleSelectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.catalog)-1 {
			m.cursor++
		}
	case "enter", " ":
		sess := m.ctrl.Session()
		sess.SelectSpread(m.catalog[m.cursor])
		token, ok := sess.BeginShuffle()
		if !ok {
			return m, nil
		}
		return m, tea.Batch(m.spin.Tick, m.dealCmd(token))
	case "h":
		return m.openHistory()
	}
	return m, nil
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := m.ctrl.Session()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left":
		if m.cardCur > 0 {
			m.cardCur--
		}
	case "right":
		if m.cardCur < len(sess.Drawn())-1 {
			m.cardCur++
		}
	case "enter", " ":
		if m.ctrl.RevealCard(m.cardCur) == session.RevealDetail {
			m.modalTabs = m.modalTabs.Select(tabCard)
		}
	case "a":
		sess.RevealAll()
	case "f":
		if sess.AllRevealed() {
			m.ctrl.OpenFullReading(context.Background())
			m.modalTabs = m.modalTabs.Select(tabReading)
			m.stream = m.stream.SetText(m.readingText())
		}
	case "r":
		m.ctrl.Reset()
		m.cursor = 0
		m.cardCur = 0
	case "h":
		return m.openHistory()
	}
	return m, nil
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chatInput.Focused() {
		switch msg.String() {
		case "esc":
			m.chatInput.Blur()
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.chatInput.Value())
			if m.ctrl.SendChat(context.Background(), text) {
				m.chatInput.SetValue("")
				m.stream = m.stream.SetText(m.readingText())
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.ctrl.CloseModal()
		return m, nil
	case "tab", "]":
		m.modalTabs = m.modalTabs.Next()
		return m, nil
	case "shift+tab", "[":
		m.modalTabs = m.modalTabs.Prev()
		return m, nil
	}

	if m.modalTabs.Active() == tabReading {
		switch msg.String() {
		case "i", "/":
			if m.canChat() {
				return m, m.chatInput.Focus()
			}
			return m, nil
		case "R":
			if m.ctrl.Errored() {
				m.ctrl.RetryInterpretation(context.Background())
				m.stream = m.stream.SetText(m.readingText())
			}
			return m, nil
		case "F":
			m.stream = m.stream.ToggleFollow()
			return m, nil
		}
		var cmd tea.Cmd
		m.stream, cmd = m.stream.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "h":
		m.ctrl.CloseHistory()
		return m, nil
	case "C":
		m.store.Clear()
		m.historyPanel = m.historyPanel.SetItems(nil)
		return m, nil
	}
	var cmd tea.Cmd
	m.historyPanel, cmd = m.historyPanel.Update(msg)
	return m, cmd
}

func (m Model) openHistory() (tea.Model, tea.Cmd) {
	m.historyPanel = m.historyPanel.SetItems(m.store.Readings())
	m.ctrl.OpenHistory()
	return m, nil
}

// canChat reports whether the chat input should accept focus: a real
// interpretation exists and nothing is streaming.
func (m Model) canChat() bool {
	return len(m.ctrl.Transcript()) > 0 && !m.ctrl.Generating() && !m.ctrl.Errored()
}

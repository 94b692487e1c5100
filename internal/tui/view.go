package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mystictarot/mystic/internal/oracle"
	"github.com/mystictarot/mystic/internal/session"
)

const (
	minWidth  = 70
	minHeight = 20
)

// View renders the full TUI: header bar, phase-dependent body, footer bar.
func (m Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d).\nPlease resize to at least %dx%d.",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Render(msg)
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyH := m.height - 2

	var body string
	switch {
	case m.ctrl.HistoryOpen():
		body = m.renderHistory()
	case m.ctrl.ModalOpen():
		body = m.renderModal()
	default:
		switch m.ctrl.Session().Phase() {
		case session.PhaseSelection:
			body = m.renderSelection()
		case session.PhaseShuffling:
			body = m.renderShuffling()
		default:
			body = m.renderTable()
		}
	}

	body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	content := fmt.Sprintf("🔮 神秘塔罗  │  %s", m.ctrl.Session().Phase().Label())
	return m.theme.HeaderStyle().Width(m.width).Render(content)
}

func (m Model) renderFooter() string {
	if notice := m.ctrl.Notice(); notice != "" {
		return noticeStyle.Width(m.width).Render(notice)
	}

	var hints string
	switch {
	case m.ctrl.HistoryOpen():
		hints = "↑/↓ 选择  enter 查看  C 清空  esc 返回"
	case m.ctrl.ModalOpen():
		if m.chatInput.Focused() {
			hints = "enter 发送  esc 离开输入框"
		} else {
			hints = "tab 切换标签  ↑/↓ 滚动  i 提问  esc 关闭"
			if m.ctrl.Errored() {
				hints = "R 重试  " + hints
			}
		}
	default:
		switch m.ctrl.Session().Phase() {
		case session.PhaseSelection:
			hints = "↑/↓ 选择牌阵  enter 开始  h 历史  q 退出"
		case session.PhaseShuffling:
			hints = "洗牌中…"
		case session.PhaseDrawing:
			hints = "←/→ 移动  enter 翻牌  a 全部翻开  h 历史  q 退出"
		default:
			hints = "enter 看牌  f 完整解读  r 重新占卜  h 历史  q 退出"
		}
	}
	return footerStyle.Width(m.width).Render(hints)
}

func (m Model) renderSelection() string {
	var b strings.Builder
	b.WriteString(m.theme.TitleStyle().Render("选择你的牌阵"))
	b.WriteString("\n\n")
	for i, cfg := range m.catalog {
		line := fmt.Sprintf("%s — %s（%d 张）", cfg.Name, cfg.Description, cfg.Size())
		if i == m.cursor {
			b.WriteString(m.theme.CursorStyle().Render("❯ " + line))
		} else {
			b.WriteString(dimStyle.Render("  " + line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) renderShuffling() string {
	return fmt.Sprintf("%s  洗牌中，请集中你的意念…", m.spin.View())
}

// renderTable lays the drawn cards out in rows of up to five bordered
// cells, face-down until revealed.
func (m Model) renderTable() string {
	drawn := m.ctrl.Session().Drawn()
	positions := m.ctrl.Session().Spread().Positions

	const perRow = 5
	var rows []string
	for start := 0; start < len(drawn); start += perRow {
		end := start + perRow
		if end > len(drawn) {
			end = len(drawn)
		}
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCardCell(i, drawn[i], positions[i].Name))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	table := lipgloss.JoinVertical(lipgloss.Center, rows...)
	title := m.theme.TitleStyle().Render(m.ctrl.Session().Spread().Name)
	return lipgloss.JoinVertical(lipgloss.Center, title, "", table)
}

func (m Model) renderCardCell(i int, dc session.DrawnCard, position string) string {
	const cellW = 14

	var body string
	if !dc.Revealed {
		body = lipgloss.JoinVertical(lipgloss.Center,
			dimStyle.Render(position),
			"",
			"🂠",
			"",
			dimStyle.Render("未翻开"),
		)
	} else {
		orientation := uprightStyle.Render("正位")
		if dc.Reversed {
			orientation = reversedStyle.Render("逆位")
		}
		body = lipgloss.JoinVertical(lipgloss.Center,
			dimStyle.Render(position),
			"",
			m.theme.TitleStyle().Render(dc.Card.LocalName),
			infoStyle.Render(dc.Card.Name),
			orientation,
		)
	}

	return m.theme.CardBorderStyle(i == m.cardCur).
		Width(cellW).
		Align(lipgloss.Center).
		Render(body)
}

func (m Model) renderModal() string {
	w, h := m.overlayDims()

	var content string
	if m.modalTabs.Active() == tabCard {
		content = m.renderCardDetail(w, h)
	} else {
		content = m.renderReadingTab()
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, m.modalTabs.View(), "", content)
	return m.theme.OverlayStyle().Width(w + 2).Padding(0, 1).Render(inner)
}

func (m Model) renderCardDetail(w, h int) string {
	idx := m.ctrl.Session().ActiveCard()
	drawn := m.ctrl.Session().Drawn()
	if idx < 0 || idx >= len(drawn) {
		return dimStyle.Render("先在牌桌上选择一张已翻开的牌。")
	}
	dc := drawn[idx]
	pos := m.ctrl.Session().Spread().Positions[idx]

	orientation := uprightStyle.Render("正位 (Upright)")
	if dc.Reversed {
		orientation = reversedStyle.Render("逆位 (Reversed)")
	}

	lines := []string{
		m.theme.TitleStyle().Render(fmt.Sprintf("%s  %s", dc.Card.LocalName, dc.Card.Name)),
		"",
		fmt.Sprintf("%s  ·  %s", pos.Name, pos.Description),
		orientation,
		"",
		keywordStyle.Render("关键词: " + strings.Join(dc.Card.Keywords, " / ")),
	}
	if dc.Card.Description != "" {
		lines = append(lines, "", infoStyle.Render(dc.Card.Description))
	}
	lines = append(lines, "", dimStyle.Render(dc.Card.ImageURL))

	return lipgloss.NewStyle().Width(w).Render(strings.Join(lines, "\n"))
}

func (m Model) renderReadingTab() string {
	parts := []string{m.stream.View()}
	if m.ctrl.Errored() {
		parts = append(parts, errorStyle.Render("解读失败，按 R 重试。"))
	} else if m.canChat() || m.ctrl.Chatting() {
		parts = append(parts, m.chatInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// readingText builds the document shown in the reading tab: the streamed
// interpretation followed by the chat turns, with a block cursor while
// text is still arriving.
func (m Model) readingText() string {
	var b strings.Builder
	b.WriteString(m.ctrl.Analysis())
	if m.ctrl.Generating() {
		b.WriteString("▌")
	}

	turns := m.ctrl.ChatTurns()
	for i, turn := range turns {
		b.WriteString("\n\n")
		switch turn.Role {
		case oracle.RoleUser:
			b.WriteString("你：" + turn.Content)
		case oracle.RoleAssistant:
			b.WriteString("塔罗师：" + turn.Content)
			if m.ctrl.Chatting() && i == len(turns)-1 {
				b.WriteString("▌")
			}
		}
	}
	return b.String()
}

func (m Model) renderHistory() string {
	title := m.theme.TitleStyle().Render("占卜历史")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", m.historyPanel.View())
}

// overlayDims returns the content dimensions for modal overlays.
func (m Model) overlayDims() (w, h int) {
	w = m.width - 8
	if w > 80 {
		w = 80
	}
	if w < 40 {
		w = 40
	}
	h = m.height - 8
	if h < 8 {
		h = 8
	}
	return w, h
}

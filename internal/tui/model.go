package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mystictarot/mystic/internal/history"
	"github.com/mystictarot/mystic/internal/reading"
	"github.com/mystictarot/mystic/internal/spread"
	"github.com/mystictarot/mystic/internal/tui/components"
	"github.com/mystictarot/mystic/internal/tui/panels"
)

// Modal tabs.
const (
	tabCard    = 0
	tabReading = 1
)

// Model is the root bubbletea model. All reading state lives in the
// controller and session; the model holds presentation state only:
// cursors, component models, and terminal geometry.
type Model struct {
	ctrl  *reading.Controller
	store *history.Store

	theme        Theme
	shuffleDelay time.Duration

	catalog []spread.Config
	cursor  int // spread selection index
	cardCur int // card table index

	spin         spinner.Model
	stream       components.StreamView
	modalTabs    components.TabBar
	chatInput    textinput.Model
	historyPanel panels.HistoryPanel

	width  int
	height int
}

// New creates the TUI model. shuffleDelay is how long the shuffle
// animation runs before the cards are dealt.
func New(ctrl *reading.Controller, store *history.Store, accentColor string, shuffleDelay time.Duration) Model {
	th := NewTheme(accentColor)

	sp := spinner.New()
	sp.Spinner = spinner.Moon
	sp.Style = th.TitleStyle()

	input := textinput.New()
	input.Placeholder = "向塔罗师提问…"
	input.CharLimit = 400

	return Model{
		ctrl:         ctrl,
		store:        store,
		theme:        th,
		shuffleDelay: shuffleDelay,
		catalog:      spread.Catalog(),
		spin:         sp,
		stream:       components.NewStreamView(72, 16),
		modalTabs:    components.NewTabBar(th.Accent(), "牌面", "解读"),
		chatInput:    input,
		historyPanel: panels.NewHistoryPanel(nil, th.Accent(), 72, 16),
		width:        80,
		height:       24,
	}
}

// Init starts the oracle event pump.
func (m Model) Init() tea.Cmd {
	return waitForOracle(m.ctrl.Events())
}

// waitForOracle blocks on the controller's event channel and returns the
// next message.
func waitForOracle(ch <-chan reading.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return oracleClosedMsg{}
		}
		return oracleEventMsg(ev)
	}
}

// dealCmd schedules the deal after the shuffle delay, carrying the shuffle
// token so a reset in between voids it.
func (m Model) dealCmd(token int) tea.Cmd {
	return tea.Tick(m.shuffleDelay, func(time.Time) tea.Msg {
		return shuffleDealtMsg{token: token}
	})
}

// Package reading implements the orchestrator that bridges the session
// state machine, the interpretation client, and the history store. All
// mutating methods are called from the UI loop; network streaming runs in
// goroutines that only communicate through the event channel.
package reading

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mystictarot/mystic/internal/history"
	"github.com/mystictarot/mystic/internal/oracle"
	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/spread"
)

// InterpretClient is the slice of the oracle client the controller needs.
// Tests substitute a scripted fake.
type InterpretClient interface {
	Interpret(ctx context.Context, sp spread.Config, cards []session.DrawnCard, onDelta func(string)) (string, error)
	Chat(ctx context.Context, transcript []oracle.Message, onDelta func(string)) (string, error)
}

var _ InterpretClient = (*oracle.Client)(nil)

// Controller coordinates one reading session end to end: it triggers the
// interpretation fetch, accumulates streamed text, manages chat turns, and
// persists the reading under a stable id.
type Controller struct {
	sess   *session.Session
	store  *history.Store
	client InterpretClient
	logger *slog.Logger
	events chan Event

	readingID  string
	prompt     string // system context captured at fetch time
	transcript []oracle.Message
	analysis   string
	notice     string // transient chat-failure notice

	generating bool // interpretation fetch in flight
	chatting   bool // chat reply in flight
	errored    bool // last interpretation returned fallback text
	activeReq  string

	restored *history.Item // non-nil when the session was loaded from history

	modalOpen   bool
	historyOpen bool
}

// NewController wires the orchestrator. The event channel is pumped by the
// UI loop and fed by network goroutines.
func NewController(sess *session.Session, store *history.Store, client InterpretClient, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		sess:   sess,
		store:  store,
		client: client,
		logger: logger,
		events: make(chan Event, 64),
	}
}

// Session returns the underlying session state machine.
func (c *Controller) Session() *session.Session { return c.sess }

// Events returns the stream of network events for the UI loop to pump.
// Each received event must be handed back through Apply.
func (c *Controller) Events() <-chan Event { return c.events }

// Analysis returns the interpretation text accumulated so far (or the
// fallback text after a failed fetch).
func (c *Controller) Analysis() string { return c.analysis }

// Transcript returns a copy of the conversation transcript.
func (c *Controller) Transcript() []oracle.Message {
	out := make([]oracle.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// ChatTurns returns the conversation after the initial system+assistant
// pair: the user questions and streamed replies shown in the chat pane.
func (c *Controller) ChatTurns() []oracle.Message {
	if len(c.transcript) <= 2 {
		return nil
	}
	out := make([]oracle.Message, len(c.transcript)-2)
	copy(out, c.transcript[2:])
	return out
}

// Generating reports whether an interpretation fetch is in flight.
func (c *Controller) Generating() bool { return c.generating }

// Chatting reports whether a chat reply is in flight.
func (c *Controller) Chatting() bool { return c.chatting }

// Errored reports whether the last interpretation attempt failed, leaving
// fallback text in Analysis.
func (c *Controller) Errored() bool { return c.errored }

// Notice returns the transient chat-failure notice, if any.
func (c *Controller) Notice() string { return c.notice }

// ReadingID returns the id the session is persisted under ("" before the
// first interpretation request).
func (c *Controller) ReadingID() string { return c.readingID }

// Restored reports whether the current session was loaded from history.
func (c *Controller) Restored() bool { return c.restored != nil }

// ModalOpen reports whether the reading modal is open.
func (c *Controller) ModalOpen() bool { return c.modalOpen }

// HistoryOpen reports whether the history overlay is open.
func (c *Controller) HistoryOpen() bool { return c.historyOpen }

// RevealCard forwards a card click to the session. A click on an
// already-revealed card opens the detail modal instead of mutating state.
func (c *Controller) RevealCard(i int) session.RevealOutcome {
	out := c.sess.Reveal(i)
	if out == session.RevealDetail {
		c.modalOpen = true
	}
	return out
}

// OpenFullReading opens the modal in full-reading mode and, for a fresh
// session, starts the interpretation fetch. A session restored from history
// with an identical drawn sequence is already interpreted and fetches
// nothing; so does a session whose fetch is done or still in flight.
func (c *Controller) OpenFullReading(ctx context.Context) {
	if !c.sess.AllRevealed() {
		return
	}
	c.sess.ClearActiveCard()
	c.modalOpen = true

	if c.generating || len(c.transcript) > 0 {
		return
	}
	if c.restored != nil && session.DrawnEqual(c.sess.Drawn(), c.restored.DrawnCards) {
		// Stored transcript already loaded by Restore; nothing to fetch.
		return
	}
	c.startInterpretation(ctx)
}

// RetryInterpretation clears a failed fetch and requests a fresh one.
func (c *Controller) RetryInterpretation(ctx context.Context) {
	if c.generating || !c.errored {
		return
	}
	c.errored = false
	c.analysis = ""
	c.startInterpretation(ctx)
}

func (c *Controller) startInterpretation(ctx context.Context) {
	if c.readingID == "" {
		c.readingID = uuid.NewString()
	}
	sp := c.sess.Spread()
	cards := c.sess.Drawn()
	c.prompt = oracle.BuildPrompt(sp, cards)
	c.analysis = ""
	c.errored = false
	c.generating = true

	reqID := uuid.NewString()
	c.activeReq = reqID

	go func() {
		full, err := c.client.Interpret(ctx, sp, cards, func(delta string) {
			c.events <- Event{Kind: EventDelta, RequestID: reqID, Delta: delta}
		})
		c.events <- Event{Kind: EventInterpretDone, RequestID: reqID, Text: full, Err: err}
	}()
}

// SendChat appends a user turn and streams the assistant's reply into a
// placeholder turn. Submissions are rejected while any request is in
// flight or before an interpretation exists.
func (c *Controller) SendChat(ctx context.Context, text string) bool {
	if text == "" || c.generating || c.chatting || len(c.transcript) == 0 || c.errored {
		return false
	}

	c.notice = ""
	c.transcript = append(c.transcript,
		oracle.Message{Role: oracle.RoleUser, Content: text},
		oracle.Message{Role: oracle.RoleAssistant, Content: ""},
	)
	c.chatting = true

	reqID := uuid.NewString()
	c.activeReq = reqID

	// Send everything up to, but not including, the placeholder.
	sent := make([]oracle.Message, len(c.transcript)-1)
	copy(sent, c.transcript[:len(c.transcript)-1])

	go func() {
		full, err := c.client.Chat(ctx, sent, func(delta string) {
			c.events <- Event{Kind: EventChatDelta, RequestID: reqID, Delta: delta}
		})
		c.events <- Event{Kind: EventChatDone, RequestID: reqID, Text: full, Err: err}
	}()
	return true
}

// Apply folds a network event into controller state. Events from requests
// that are no longer active (reset, newer request) are dropped so a stale
// stream can never corrupt a newer session.
func (c *Controller) Apply(ev Event) {
	if ev.RequestID != c.activeReq {
		return
	}

	switch ev.Kind {
	case EventDelta:
		c.analysis += ev.Delta

	case EventInterpretDone:
		c.generating = false
		c.activeReq = ""
		c.analysis = ev.Text
		if ev.Err != nil {
			c.errored = true
			c.logger.Warn("reading: interpretation failed", "error", ev.Err)
			return
		}
		c.transcript = []oracle.Message{
			{Role: oracle.RoleSystem, Content: c.prompt},
			{Role: oracle.RoleAssistant, Content: ev.Text},
		}
		c.persist()

	case EventChatDelta:
		last := len(c.transcript) - 1
		if last >= 0 && c.transcript[last].Role == oracle.RoleAssistant {
			c.transcript[last].Content += ev.Delta
		}

	case EventChatDone:
		c.chatting = false
		c.activeReq = ""
		if ev.Err != nil {
			// Roll back the user turn and the placeholder rather than
			// persisting an empty assistant reply.
			if n := len(c.transcript); n >= 2 {
				c.transcript = c.transcript[:n-2]
			}
			c.notice = ev.Text
			c.logger.Warn("reading: chat failed", "error", ev.Err)
			return
		}
		last := len(c.transcript) - 1
		if last >= 0 && c.transcript[last].Role == oracle.RoleAssistant {
			c.transcript[last].Content = ev.Text
		}
		c.persist()
	}
}

// persist snapshots the session into the history store under the reading
// id. Best-effort: the store logs and swallows write failures.
func (c *Controller) persist() {
	c.store.Save(history.Item{
		ID:          c.readingID,
		Timestamp:   time.Now().UnixMilli(),
		SpreadID:    c.sess.Spread().ID,
		DrawnCards:  c.sess.Drawn(),
		ChatHistory: c.Transcript(),
	})
}

// Restore loads a past reading: the session is rebuilt from the stored
// snapshot and the transcript is loaded in place of a fresh fetch. A
// history item referencing an unknown spread is a no-op and leaves all
// state untouched.
func (c *Controller) Restore(item history.Item) bool {
	cfg, ok := spread.ByID(item.SpreadID)
	if !ok {
		c.logger.Warn("reading: cannot restore unknown spread", "spreadId", item.SpreadID)
		return false
	}

	c.sess.Restore(cfg, item.DrawnCards)

	stored := item // keep our own copy, never the caller's slice headers
	stored.DrawnCards = append([]session.DrawnCard(nil), item.DrawnCards...)
	stored.ChatHistory = append([]oracle.Message(nil), item.ChatHistory...)
	c.restored = &stored

	c.readingID = item.ID
	c.transcript = append([]oracle.Message(nil), item.ChatHistory...)
	c.analysis = firstAssistant(c.transcript)
	c.prompt = firstSystem(c.transcript)
	c.errored = false
	c.notice = ""
	c.generating = false
	c.chatting = false
	c.activeReq = ""

	c.historyOpen = false
	c.modalOpen = true
	return true
}

// Reset returns everything to spread selection. In-flight requests are not
// cancelled; their events are dropped by the stale-request guard.
func (c *Controller) Reset() {
	c.sess.Reset()
	c.readingID = ""
	c.prompt = ""
	c.transcript = nil
	c.analysis = ""
	c.notice = ""
	c.generating = false
	c.chatting = false
	c.errored = false
	c.activeReq = ""
	c.restored = nil
	c.modalOpen = false
	c.historyOpen = false
}

// CloseModal hides the reading modal. An in-flight stream keeps running
// and keeps accumulating; reopening the modal shows the progress.
func (c *Controller) CloseModal() {
	c.modalOpen = false
	c.sess.ClearActiveCard()
}

// OpenHistory shows the history overlay.
func (c *Controller) OpenHistory() { c.historyOpen = true }

// CloseHistory hides the history overlay.
func (c *Controller) CloseHistory() { c.historyOpen = false }

func firstAssistant(ms []oracle.Message) string {
	for _, m := range ms {
		if m.Role == oracle.RoleAssistant {
			return m.Content
		}
	}
	return ""
}

func firstSystem(ms []oracle.Message) string {
	for _, m := range ms {
		if m.Role == oracle.RoleSystem {
			return m.Content
		}
	}
	return ""
}

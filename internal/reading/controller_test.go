package reading_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mystictarot/mystic/internal/deck"
	"github.com/mystictarot/mystic/internal/history"
	"github.com/mystictarot/mystic/internal/oracle"
	"github.com/mystictarot/mystic/internal/reading"
	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/spread"
)

// fakeClient is a scripted InterpretClient. Calls run on the controller's
// network goroutine, so counters are mutex-guarded.
type fakeClient struct {
	mu sync.Mutex

	deltas   []string
	err      error
	fallback string

	chatDeltas []string
	chatErr    error

	interpretCalls int
	chatCalls      int
	lastTranscript []oracle.Message
}

func (f *fakeClient) Interpret(_ context.Context, _ spread.Config, _ []session.DrawnCard, onDelta func(string)) (string, error) {
	f.mu.Lock()
	f.interpretCalls++
	deltas, err, fallback := f.deltas, f.err, f.fallback
	f.mu.Unlock()

	if err != nil {
		return fallback, err
	}
	var full strings.Builder
	for _, d := range deltas {
		full.WriteString(d)
		onDelta(d)
	}
	return full.String(), nil
}

func (f *fakeClient) Chat(_ context.Context, transcript []oracle.Message, onDelta func(string)) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.lastTranscript = append([]oracle.Message(nil), transcript...)
	deltas, err := f.chatDeltas, f.chatErr
	f.mu.Unlock()

	if err != nil {
		return "The spirits are silent. (HTTP Error: 500)", err
	}
	var full strings.Builder
	for _, d := range deltas {
		full.WriteString(d)
		onDelta(d)
	}
	return full.String(), nil
}

func (f *fakeClient) counts() (interpret, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interpretCalls, f.chatCalls
}

type rng struct{ state uint64 }

func (r *rng) Intn(n int) int {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return int((r.state >> 33) % uint64(n))
}

func newController(t *testing.T, fc reading.InterpretClient) (*reading.Controller, *history.Store) {
	t.Helper()
	cfg, _ := spread.ByID("timeflow")
	sess := session.New(deck.NewProvider(), &rng{state: 1}, cfg)
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), nil)
	return reading.NewController(sess, store, fc, nil), store
}

// drawAndReveal brings the session to the Reading phase.
func drawAndReveal(t *testing.T, c *reading.Controller) {
	t.Helper()
	sess := c.Session()
	token, ok := sess.BeginShuffle()
	if !ok {
		t.Fatal("BeginShuffle refused")
	}
	if !sess.CompleteShuffle(token) {
		t.Fatal("CompleteShuffle refused")
	}
	if !sess.RevealAll() {
		t.Fatal("RevealAll refused")
	}
}

// pumpUntil applies events from the controller's channel until one of the
// given kind has been applied.
func pumpUntil(t *testing.T, c *reading.Controller, kind reading.EventKind) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			c.Apply(ev)
			if ev.Kind == kind {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestFullReadingScenario(t *testing.T) {
	fc := &fakeClient{deltas: []string{"命运", "之轮", "在转动。"}}
	c, store := newController(t, fc)

	sess := c.Session()
	token, _ := sess.BeginShuffle()
	sess.CompleteShuffle(token)

	// Reveal positions 0, 1, 2 in order; phase flips exactly on the third.
	for i := 0; i < 3; i++ {
		if sess.Phase() == session.PhaseReading {
			t.Fatalf("phase Reading before reveal %d", i)
		}
		c.RevealCard(i)
	}
	if sess.Phase() != session.PhaseReading {
		t.Fatal("phase not Reading after final reveal")
	}

	c.OpenFullReading(context.Background())
	if !c.Generating() {
		t.Error("expected Generating after OpenFullReading")
	}
	pumpUntil(t, c, reading.EventInterpretDone)

	if interpret, _ := fc.counts(); interpret != 1 {
		t.Errorf("expected exactly 1 interpretation request, got %d", interpret)
	}
	if c.Analysis() != "命运之轮在转动。" {
		t.Errorf("unexpected analysis %q", c.Analysis())
	}

	transcript := c.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 transcript turns, got %d", len(transcript))
	}
	if transcript[0].Role != oracle.RoleSystem || !strings.Contains(transcript[0].Content, "Tarot Reader") {
		t.Errorf("first turn should hold the prompt context: %+v", transcript[0])
	}
	if transcript[1].Role != oracle.RoleAssistant || transcript[1].Content != c.Analysis() {
		t.Errorf("second turn should hold the full reading: %+v", transcript[1])
	}

	items := store.Readings()
	if len(items) != 1 {
		t.Fatalf("expected 1 persisted reading, got %d", len(items))
	}
	if items[0].ID != c.ReadingID() || c.ReadingID() == "" {
		t.Errorf("persisted id %q != reading id %q", items[0].ID, c.ReadingID())
	}
	if !session.DrawnEqual(items[0].DrawnCards, sess.Drawn()) {
		t.Error("persisted snapshot differs from session cards")
	}
}

func TestOpenFullReadingWhileInFlight(t *testing.T) {
	fc := &fakeClient{deltas: []string{"text"}}
	c, _ := newController(t, fc)
	drawAndReveal(t, c)

	ctx := context.Background()
	c.OpenFullReading(ctx)
	c.OpenFullReading(ctx) // duplicate while generating
	pumpUntil(t, c, reading.EventInterpretDone)
	c.OpenFullReading(ctx) // already interpreted

	if interpret, _ := fc.counts(); interpret != 1 {
		t.Errorf("expected 1 interpretation request, got %d", interpret)
	}
}

func TestInterpretationFailure(t *testing.T) {
	fc := &fakeClient{err: oracle.ErrUnavailable, fallback: "The spirits are silent. (HTTP Error: 500)"}
	c, store := newController(t, fc)
	drawAndReveal(t, c)

	c.OpenFullReading(context.Background())
	pumpUntil(t, c, reading.EventInterpretDone)

	if !c.Errored() {
		t.Error("expected Errored after failed fetch")
	}
	if c.Analysis() == "" {
		t.Error("expected non-empty fallback text")
	}
	if len(c.Transcript()) != 0 {
		t.Error("fallback text must not enter the transcript")
	}
	if items := store.Readings(); len(items) != 0 {
		t.Errorf("failed interpretation persisted %d items", len(items))
	}

	// Chat is unavailable until a real interpretation exists.
	if c.SendChat(context.Background(), "hello?") {
		t.Error("SendChat accepted without an interpretation")
	}
}

func TestRetryAfterFailure(t *testing.T) {
	fc := &fakeClient{err: oracle.ErrUnavailable, fallback: "The spirits are silent. (HTTP Error: 500)"}
	c, _ := newController(t, fc)
	drawAndReveal(t, c)

	c.OpenFullReading(context.Background())
	pumpUntil(t, c, reading.EventInterpretDone)

	fc.mu.Lock()
	fc.err = nil
	fc.deltas = []string{"recovered"}
	fc.mu.Unlock()

	c.RetryInterpretation(context.Background())
	pumpUntil(t, c, reading.EventInterpretDone)

	if c.Errored() {
		t.Error("still errored after successful retry")
	}
	if c.Analysis() != "recovered" {
		t.Errorf("unexpected analysis %q", c.Analysis())
	}
}

func TestChatFlow(t *testing.T) {
	fc := &fakeClient{deltas: []string{"reading"}, chatDeltas: []string{"the ", "answer"}}
	c, store := newController(t, fc)
	drawAndReveal(t, c)

	ctx := context.Background()
	c.OpenFullReading(ctx)
	pumpUntil(t, c, reading.EventInterpretDone)

	if !c.SendChat(ctx, "what about my career?") {
		t.Fatal("SendChat rejected")
	}
	if c.SendChat(ctx, "impatient follow-up") {
		t.Error("duplicate SendChat accepted while in flight")
	}
	pumpUntil(t, c, reading.EventChatDone)

	transcript := c.Transcript()
	if len(transcript) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(transcript))
	}
	if transcript[2].Role != oracle.RoleUser || transcript[2].Content != "what about my career?" {
		t.Errorf("unexpected user turn: %+v", transcript[2])
	}
	if transcript[3].Role != oracle.RoleAssistant || transcript[3].Content != "the answer" {
		t.Errorf("unexpected assistant turn: %+v", transcript[3])
	}

	// The placeholder is excluded from the request payload.
	fc.mu.Lock()
	sent := fc.lastTranscript
	fc.mu.Unlock()
	if len(sent) != 3 {
		t.Fatalf("expected 3 sent messages, got %d", len(sent))
	}
	if sent[2].Role != oracle.RoleUser {
		t.Errorf("last sent message should be the user turn, got %+v", sent[2])
	}

	// Persisted under the same id, updated in place.
	items := store.Readings()
	if len(items) != 1 {
		t.Fatalf("expected 1 persisted reading, got %d", len(items))
	}
	if len(items[0].ChatHistory) != 4 {
		t.Errorf("expected 4 persisted turns, got %d", len(items[0].ChatHistory))
	}

	if turns := c.ChatTurns(); len(turns) != 2 {
		t.Errorf("expected 2 chat turns, got %d", len(turns))
	}
}

func TestChatFailureRollsBack(t *testing.T) {
	fc := &fakeClient{deltas: []string{"reading"}, chatErr: oracle.ErrUnavailable}
	c, store := newController(t, fc)
	drawAndReveal(t, c)

	ctx := context.Background()
	c.OpenFullReading(ctx)
	pumpUntil(t, c, reading.EventInterpretDone)

	c.SendChat(ctx, "doomed question")
	pumpUntil(t, c, reading.EventChatDone)

	if len(c.Transcript()) != 2 {
		t.Errorf("expected rollback to 2 turns, got %d", len(c.Transcript()))
	}
	if c.Notice() == "" {
		t.Error("expected a failure notice")
	}
	if items := store.Readings(); len(items) != 1 || len(items[0].ChatHistory) != 2 {
		t.Error("failed chat turn leaked into persisted history")
	}
}

func TestRestore(t *testing.T) {
	fc := &fakeClient{deltas: []string{"original reading"}}
	c, store := newController(t, fc)
	drawAndReveal(t, c)
	c.OpenFullReading(context.Background())
	pumpUntil(t, c, reading.EventInterpretDone)

	item := store.Readings()[0]

	fc2 := &fakeClient{deltas: []string{"should never be fetched"}}
	c2, _ := newController(t, fc2)

	if !c2.Restore(item) {
		t.Fatal("Restore refused a valid item")
	}
	if c2.Session().Phase() != session.PhaseReading {
		t.Error("restored session not in Reading phase")
	}
	if !session.DrawnEqual(c2.Session().Drawn(), item.DrawnCards) {
		t.Error("restored cards differ from stored snapshot")
	}
	if c2.Analysis() != "original reading" {
		t.Errorf("unexpected restored analysis %q", c2.Analysis())
	}
	if !c2.ModalOpen() || c2.HistoryOpen() {
		t.Error("restore should open the reading modal and close history")
	}

	c2.OpenFullReading(context.Background())
	if interpret, _ := fc2.counts(); interpret != 0 {
		t.Errorf("restored session triggered %d interpretation requests", interpret)
	}
}

func TestRestoreUnknownSpreadIsNoOp(t *testing.T) {
	fc := &fakeClient{}
	c, _ := newController(t, fc)

	item := history.Item{ID: "x", SpreadID: "no-such-spread"}
	if c.Restore(item) {
		t.Fatal("Restore accepted an unknown spread")
	}
	if c.Session().Phase() != session.PhaseSelection {
		t.Error("failed restore changed the phase")
	}
	if c.ModalOpen() {
		t.Error("failed restore opened the modal")
	}
}

func TestResetDropsStaleStream(t *testing.T) {
	block := make(chan struct{})
	fc := &blockingClient{release: block, deltas: []string{"stale ", "delta"}}
	c, store := newController(t, fc)
	drawAndReveal(t, c)

	c.OpenFullReading(context.Background())
	c.Reset()
	close(block)

	// Drain whatever the stale goroutine produced; none of it may apply.
	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case ev := <-c.Events():
			c.Apply(ev)
			if ev.Kind == reading.EventInterpretDone {
				done = true
			}
		case <-deadline:
			t.Fatal("timed out draining stale events")
		}
	}

	if c.Analysis() != "" {
		t.Errorf("stale delta applied after reset: %q", c.Analysis())
	}
	if len(c.Transcript()) != 0 {
		t.Error("stale completion built a transcript after reset")
	}
	if items := store.Readings(); len(items) != 0 {
		t.Error("stale completion persisted a reading after reset")
	}
	if c.Session().Phase() != session.PhaseSelection {
		t.Error("reset did not return to Selection")
	}
}

// blockingClient waits for release before streaming, letting tests reset
// the controller while a request is in flight.
type blockingClient struct {
	release <-chan struct{}
	deltas  []string
}

func (b *blockingClient) Interpret(_ context.Context, _ spread.Config, _ []session.DrawnCard, onDelta func(string)) (string, error) {
	<-b.release
	var full strings.Builder
	for _, d := range b.deltas {
		full.WriteString(d)
		onDelta(d)
	}
	return full.String(), nil
}

func (b *blockingClient) Chat(_ context.Context, _ []oracle.Message, _ func(string)) (string, error) {
	<-b.release
	return "", nil
}

package session_test

import (
	"math/rand/v2"
	"testing"

	"github.com/mystictarot/mystic/internal/deck"
	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/spread"
)

// seededRNG is a deterministic RNG for reproducible draws.
type seededRNG struct{ r *rand.Rand }

func newRNG(seed uint64) *seededRNG {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Intn(n int) int { return s.r.IntN(n) }

func newSession(t *testing.T, spreadID string, seed uint64) *session.Session {
	t.Helper()
	cfg, ok := spread.ByID(spreadID)
	if !ok {
		t.Fatalf("unknown spread %q", spreadID)
	}
	return session.New(deck.NewProvider(), newRNG(seed), cfg)
}

// drawCards shuffles and completes the draw, returning the session in
// the Drawing phase.
func drawCards(t *testing.T, s *session.Session) {
	t.Helper()
	token, ok := s.BeginShuffle()
	if !ok {
		t.Fatal("BeginShuffle refused")
	}
	if !s.CompleteShuffle(token) {
		t.Fatal("CompleteShuffle refused")
	}
}

func TestDrawSizeAndDistinctness(t *testing.T) {
	for _, cfg := range spread.Catalog() {
		for seed := uint64(0); seed < 20; seed++ {
			s := session.New(deck.NewProvider(), newRNG(seed), cfg)
			drawCards(t, s)

			drawn := s.Drawn()
			if len(drawn) != cfg.Size() {
				t.Fatalf("%s seed %d: expected %d cards, got %d", cfg.ID, seed, cfg.Size(), len(drawn))
			}
			seen := make(map[int]bool)
			for _, d := range drawn {
				if seen[d.Card.ID] {
					t.Fatalf("%s seed %d: duplicate card id %d", cfg.ID, seed, d.Card.ID)
				}
				seen[d.Card.ID] = true
				if d.Revealed {
					t.Errorf("%s seed %d: card drawn already revealed", cfg.ID, seed)
				}
			}
		}
	}
}

func TestReversalDistribution(t *testing.T) {
	const n = 10000
	rng := newRNG(42)
	cfg, _ := spread.ByID("daily")
	provider := deck.NewProvider()

	reversed := 0
	for i := 0; i < n; i++ {
		s := session.New(provider, rng, cfg)
		drawCards(t, s)
		if s.Drawn()[0].Reversed {
			reversed++
		}
	}

	frac := float64(reversed) / n
	if frac < 0.17 || frac > 0.23 {
		t.Errorf("reversal fraction %.4f outside [0.17, 0.23]", frac)
	}
}

func TestRevealMonotonicity(t *testing.T) {
	s := newSession(t, "timeflow", 1)
	drawCards(t, s)

	if out := s.Reveal(1); out != session.RevealFlipped {
		t.Fatalf("first reveal: expected RevealFlipped, got %v", out)
	}
	// A second reveal of the same card becomes a detail request and must
	// not clear the flag.
	if out := s.Reveal(1); out != session.RevealDetail {
		t.Fatalf("second reveal: expected RevealDetail, got %v", out)
	}
	if !s.Drawn()[1].Revealed {
		t.Error("card 1 lost its revealed flag")
	}
	if s.ActiveCard() != 1 {
		t.Errorf("expected active card 1, got %d", s.ActiveCard())
	}
}

func TestPhaseAdvancesOnLastReveal(t *testing.T) {
	s := newSession(t, "timeflow", 7)
	drawCards(t, s)

	for i, want := range []session.RevealOutcome{session.RevealFlipped, session.RevealFlipped, session.RevealCompleted} {
		if s.Phase() == session.PhaseReading {
			t.Fatalf("phase Reading before reveal %d", i)
		}
		if out := s.Reveal(i); out != want {
			t.Fatalf("reveal %d: expected %v, got %v", i, want, out)
		}
	}
	if s.Phase() != session.PhaseReading {
		t.Errorf("expected Reading after last reveal, got %s", s.Phase().Label())
	}
}

func TestRevealAll(t *testing.T) {
	s := newSession(t, "celtic", 3)

	if s.RevealAll() {
		t.Error("RevealAll with no cards should refuse")
	}

	drawCards(t, s)
	if !s.RevealAll() {
		t.Fatal("RevealAll refused")
	}
	if !s.AllRevealed() {
		t.Error("not all cards revealed after RevealAll")
	}
	if s.Phase() != session.PhaseReading {
		t.Errorf("expected Reading, got %s", s.Phase().Label())
	}

	// A reveal after reveal-all is a detail request, never a flip.
	if out := s.Reveal(0); out != session.RevealDetail {
		t.Errorf("reveal after RevealAll: expected RevealDetail, got %v", out)
	}
	if s.Phase() != session.PhaseReading {
		t.Error("phase changed by reveal after RevealAll")
	}
}

func TestStaleShuffleTokenAfterReset(t *testing.T) {
	s := newSession(t, "timeflow", 5)
	token, ok := s.BeginShuffle()
	if !ok {
		t.Fatal("BeginShuffle refused")
	}

	s.Reset()
	if s.CompleteShuffle(token) {
		t.Error("stale shuffle completed after reset")
	}
	if len(s.Drawn()) != 0 {
		t.Error("stale draw landed after reset")
	}
	if s.Phase() != session.PhaseSelection {
		t.Errorf("expected Selection after reset, got %s", s.Phase().Label())
	}
}

func TestCompleteShuffleTwice(t *testing.T) {
	s := newSession(t, "daily", 9)
	token, _ := s.BeginShuffle()
	if !s.CompleteShuffle(token) {
		t.Fatal("first CompleteShuffle refused")
	}
	if s.CompleteShuffle(token) {
		t.Error("second CompleteShuffle should be a no-op")
	}
}

func TestSelectSpreadResetsDraw(t *testing.T) {
	s := newSession(t, "daily", 2)
	drawCards(t, s)
	s.Reset()

	celtic, _ := spread.ByID("celtic")
	if !s.SelectSpread(celtic) {
		t.Fatal("SelectSpread refused in Selection")
	}
	if s.Spread().ID != "celtic" {
		t.Errorf("expected celtic, got %s", s.Spread().ID)
	}
	if len(s.Drawn()) != 0 {
		t.Error("drawn cards survived spread selection")
	}

	// Selection is only valid before the shuffle starts.
	s.BeginShuffle()
	if s.SelectSpread(celtic) {
		t.Error("SelectSpread allowed while shuffling")
	}
}

func TestRestoreDeepCopies(t *testing.T) {
	s := newSession(t, "timeflow", 11)
	drawCards(t, s)
	s.RevealAll()
	snapshot := s.Drawn()

	restored := newSession(t, "daily", 12)
	cfg, _ := spread.ByID("timeflow")
	restored.Restore(cfg, snapshot)

	if restored.Phase() != session.PhaseReading {
		t.Errorf("expected Reading after restore, got %s", restored.Phase().Label())
	}
	if !session.DrawnEqual(restored.Drawn(), snapshot) {
		t.Error("restored cards differ from snapshot")
	}

	// Mutating the snapshot must not reach the restored session.
	snapshot[0].Revealed = false
	if !restored.Drawn()[0].Revealed {
		t.Error("restore aliased the snapshot")
	}
}

func TestDrawnEqual(t *testing.T) {
	s := newSession(t, "timeflow", 21)
	drawCards(t, s)
	a := s.Drawn()
	b := s.Drawn()

	if !session.DrawnEqual(a, b) {
		t.Error("identical sequences not equal")
	}

	b[2].Revealed = true
	if session.DrawnEqual(a, b) {
		t.Error("sequences equal despite reveal flag difference")
	}

	b[2].Revealed = false
	b[0].Reversed = !b[0].Reversed
	if session.DrawnEqual(a, b) {
		t.Error("sequences equal despite reversal difference")
	}

	if session.DrawnEqual(a, a[:2]) {
		t.Error("sequences of different length equal")
	}
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from, to session.Phase
		want     bool
	}{
		{session.PhaseSelection, session.PhaseShuffling, true},
		{session.PhaseSelection, session.PhaseReading, false},
		{session.PhaseShuffling, session.PhaseDrawing, true},
		{session.PhaseShuffling, session.PhaseReading, false},
		{session.PhaseDrawing, session.PhaseReading, true},
		{session.PhaseReading, session.PhaseDrawing, false},
		// Reset to Selection is allowed from anywhere.
		{session.PhaseShuffling, session.PhaseSelection, true},
		{session.PhaseReading, session.PhaseSelection, true},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from.Label(), tt.to.Label(), tt.want, got)
		}
	}
}

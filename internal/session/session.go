// Package session implements the reading session state machine: spread
// selection, shuffle, draw, per-card reveal, and phase transitions. All
// methods are meant to be called from a single UI loop; the package does
// no locking of its own.
package session

import (
	"math/rand/v2"

	"github.com/mystictarot/mystic/internal/deck"
	"github.com/mystictarot/mystic/internal/spread"
)

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// SystemRNG returns an RNG backed by the shared math/rand/v2 source.
func SystemRNG() RNG { return systemRNG{} }

type systemRNG struct{}

func (systemRNG) Intn(n int) int { return rand.IntN(n) }

// DrawnCard binds a card to a spread position with its orientation and
// reveal state. Reversed is fixed at draw time; Revealed only ever moves
// false to true. JSON field names match the persisted history format.
type DrawnCard struct {
	Card     deck.Card `json:"card"`
	Reversed bool      `json:"isReversed"`
	Revealed bool      `json:"isRevealed"`
}

// RevealOutcome describes the effect of a reveal request on one card.
type RevealOutcome int

const (
	RevealIgnored   RevealOutcome = iota // No cards, bad index, or wrong phase
	RevealFlipped                        // Card turned face-up, more remain hidden
	RevealCompleted                      // Card turned face-up and it was the last one
	RevealDetail                         // Card was already face-up: open its detail view
)

// Session owns the state of one reading: the selected spread, drawn cards,
// current phase, and the active card for the detail view. The generation
// counter invalidates scheduled shuffle completions and in-flight stream
// events after a reset.
type Session struct {
	provider *deck.Provider
	rng      RNG

	phase      Phase
	spread     spread.Config
	drawn      []DrawnCard
	activeCard int // index into drawn; -1 when no card detail is active
	gen        int
}

// New creates a session in the Selection phase with the given spread
// pre-selected.
func New(provider *deck.Provider, rng RNG, initial spread.Config) *Session {
	return &Session{
		provider:   provider,
		rng:        rng,
		phase:      PhaseSelection,
		spread:     initial,
		activeCard: -1,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Spread returns the selected spread configuration.
func (s *Session) Spread() spread.Config { return s.spread }

// Drawn returns a copy of the drawn card sequence.
func (s *Session) Drawn() []DrawnCard {
	out := make([]DrawnCard, len(s.drawn))
	copy(out, s.drawn)
	return out
}

// ActiveCard returns the index of the card whose detail view is open, or -1.
func (s *Session) ActiveCard() int { return s.activeCard }

// Generation returns the current generation token. Scheduled work captures
// it and is discarded when the tokens no longer match.
func (s *Session) Generation() int { return s.gen }

// SelectSpread changes the selected spread. Only valid during Selection;
// any previously drawn cards are discarded.
func (s *Session) SelectSpread(cfg spread.Config) bool {
	if s.phase != PhaseSelection {
		return false
	}
	s.spread = cfg
	s.drawn = nil
	s.activeCard = -1
	return true
}

// BeginShuffle moves Selection to Shuffling and returns a token for the
// scheduled completion. The draw itself happens in CompleteShuffle, after
// the UI's shuffle delay elapses.
func (s *Session) BeginShuffle() (token int, ok bool) {
	if !s.phase.CanTransitionTo(PhaseShuffling) {
		return 0, false
	}
	s.phase = PhaseShuffling
	s.gen++
	return s.gen, true
}

// CompleteShuffle performs the draw and moves to Drawing. It is a no-op
// when the token is stale (the session was reset while the shuffle timer
// was pending) or the session is not shuffling.
func (s *Session) CompleteShuffle(token int) bool {
	if token != s.gen || s.phase != PhaseShuffling {
		return false
	}
	s.draw()
	s.phase = PhaseDrawing
	return true
}

// draw samples len(spread.Positions) distinct cards uniformly without
// replacement via a partial Fisher-Yates shuffle, assigning each a 1-in-5
// chance of being reversed.
func (s *Session) draw() {
	cards := s.provider.Cards()
	for i := len(cards) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}

	k := s.spread.Size()
	s.drawn = make([]DrawnCard, k)
	for i := 0; i < k; i++ {
		s.drawn[i] = DrawnCard{
			Card:     cards[i],
			Reversed: s.rng.Intn(5) == 0,
		}
	}
}

// Reveal flips the card at index i face-up. Revealing the last hidden card
// advances the phase to Reading. Requesting a reveal on an already-revealed
// card is reinterpreted as a detail-view request and mutates nothing.
func (s *Session) Reveal(i int) RevealOutcome {
	if s.phase != PhaseDrawing && s.phase != PhaseReading {
		return RevealIgnored
	}
	if i < 0 || i >= len(s.drawn) {
		return RevealIgnored
	}

	if s.drawn[i].Revealed {
		s.activeCard = i
		return RevealDetail
	}

	s.drawn[i].Revealed = true
	if s.AllRevealed() {
		if s.phase.CanTransitionTo(PhaseReading) {
			s.phase = PhaseReading
		}
		return RevealCompleted
	}
	return RevealFlipped
}

// RevealAll flips every drawn card face-up in one update and forces the
// phase to Reading. Valid only once cards exist.
func (s *Session) RevealAll() bool {
	if len(s.drawn) == 0 {
		return false
	}
	for i := range s.drawn {
		s.drawn[i].Revealed = true
	}
	s.phase = PhaseReading
	return true
}

// AllRevealed reports whether every drawn card is face-up. False when no
// cards have been drawn.
func (s *Session) AllRevealed() bool {
	if len(s.drawn) == 0 {
		return false
	}
	for _, d := range s.drawn {
		if !d.Revealed {
			return false
		}
	}
	return true
}

// ClearActiveCard closes the card detail view.
func (s *Session) ClearActiveCard() { s.activeCard = -1 }

// Reset returns the session to Selection, discarding drawn cards and the
// active card, and bumps the generation so pending shuffle timers and
// stream deltas become no-ops.
func (s *Session) Reset() {
	s.phase = PhaseSelection
	s.drawn = nil
	s.activeCard = -1
	s.gen++
}

// Restore loads a past reading: the given spread and a deep copy of its
// drawn cards, placed directly in the Reading phase. The stored snapshot
// is never aliased.
func (s *Session) Restore(cfg spread.Config, cards []DrawnCard) {
	s.spread = cfg
	s.drawn = make([]DrawnCard, len(cards))
	copy(s.drawn, cards)
	s.activeCard = -1
	s.phase = PhaseReading
	s.gen++
}

// DrawnEqual reports deep value equality of two drawn sequences: same
// length, and per index the same card id, reversal, and reveal flag.
func DrawnEqual(a, b []DrawnCard) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Card.ID != b[i].Card.ID || a[i].Reversed != b[i].Reversed || a[i].Revealed != b[i].Revealed {
			return false
		}
	}
	return true
}

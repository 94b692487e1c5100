// Package deck provides the static 78-card Rider-Waite-Smith catalog.
// The deck is generated once and handed out as defensive copies; nothing
// in this package mutates after construction.
package deck

import "fmt"

// Arcana classifies a card as Major or Minor.
type Arcana string

const (
	Major Arcana = "Major"
	Minor Arcana = "Minor"
)

// Suit identifies the Minor Arcana suit. Major Arcana cards carry SuitNone.
type Suit string

const (
	Wands     Suit = "Wands"
	Cups      Suit = "Cups"
	Swords    Suit = "Swords"
	Pentacles Suit = "Pentacles"
	SuitNone  Suit = "None"
)

// Card is a single immutable tarot card record. JSON field names match the
// persisted history format.
type Card struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	LocalName   string   `json:"name_cn"`
	Arcana      Arcana   `json:"arcana"`
	Suit        Suit     `json:"suit"`
	Number      int      `json:"number"` // 0-21 for Major, 1-14 for Minor
	ImageURL    string   `json:"imgUrl"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description,omitempty"`
}

// Size is the number of cards in a complete deck.
const Size = 78

// Provider hands out copies of the card catalog. It is constructed once in
// wiring and injected into the session, never reached as a package global.
type Provider struct {
	cards []Card
}

// NewProvider builds the full 78-card catalog.
func NewProvider() *Provider {
	return &Provider{cards: generate()}
}

// Cards returns a fresh copy of the catalog. Callers may shuffle it freely.
func (p *Provider) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// Size returns the number of cards in the catalog.
func (p *Provider) Size() int { return len(p.cards) }

// Verify checks the deck invariants: 78 cards total, 22 Major (numbers 0-21,
// suit None), 14 cards in each of the four suits, all ids unique.
func (p *Provider) Verify() error {
	if len(p.cards) != Size {
		return fmt.Errorf("deck: expected %d cards, got %d", Size, len(p.cards))
	}

	seen := make(map[int]bool, Size)
	counts := make(map[Suit]int)
	majors := 0
	for _, c := range p.cards {
		if seen[c.ID] {
			return fmt.Errorf("deck: duplicate card id %d", c.ID)
		}
		seen[c.ID] = true

		switch c.Arcana {
		case Major:
			majors++
			if c.Suit != SuitNone {
				return fmt.Errorf("deck: major arcana %q has suit %s", c.Name, c.Suit)
			}
			if c.Number < 0 || c.Number > 21 {
				return fmt.Errorf("deck: major arcana %q has number %d", c.Name, c.Number)
			}
		case Minor:
			counts[c.Suit]++
			if c.Number < 1 || c.Number > 14 {
				return fmt.Errorf("deck: minor arcana %q has number %d", c.Name, c.Number)
			}
		default:
			return fmt.Errorf("deck: card %q has unknown arcana %q", c.Name, c.Arcana)
		}
	}

	if majors != 22 {
		return fmt.Errorf("deck: expected 22 major arcana, got %d", majors)
	}
	for _, suit := range []Suit{Wands, Cups, Swords, Pentacles} {
		if counts[suit] != 14 {
			return fmt.Errorf("deck: expected 14 %s, got %d", suit, counts[suit])
		}
	}
	return nil
}

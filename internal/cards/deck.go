package cards

import (
	"errors"
	"fmt"
)

// StandardDeckSize is the legal deck size for constructed play.
const StandardDeckSize = 60

// ErrEmptyDeck is returned when a deck contains no entries.
var ErrEmptyDeck = errors.New("deck has no cards")

// DeckEntry pairs a card reference with its quantity in the deck.
type DeckEntry struct {
	Card     *CardFace `json:"card"`
	Quantity int       `json:"quantity"`
}

// Deck is an ordered list of entries. Total quantity is expected to equal
// StandardDeckSize, but the engine tolerates other sizes.
type Deck struct {
	Name    string      `json:"name,omitempty"`
	Entries []DeckEntry `json:"entries"`
}

// TotalCards returns the total quantity across all entries.
func (d *Deck) TotalCards() int {
	total := 0
	for _, e := range d.Entries {
		total += e.Quantity
	}
	return total
}

// CardIDs returns the distinct card ids in entry order.
func (d *Deck) CardIDs() []string {
	ids := make([]string, 0, len(d.Entries))
	seen := make(map[string]bool, len(d.Entries))
	for _, e := range d.Entries {
		if e.Card == nil || seen[e.Card.ID] {
			continue
		}
		seen[e.Card.ID] = true
		ids = append(ids, e.Card.ID)
	}
	return ids
}

// CountWhere sums quantities of entries whose card matches the predicate.
func (d *Deck) CountWhere(pred func(*CardFace) bool) int {
	total := 0
	for _, e := range d.Entries {
		if e.Card != nil && pred(e.Card) {
			total += e.Quantity
		}
	}
	return total
}

// CountByName returns the quantity of cards with the given name.
func (d *Deck) CountByName(name string) int {
	total := 0
	for _, e := range d.Entries {
		if e.Card != nil && e.Card.Name == name {
			total += e.Quantity
		}
	}
	return total
}

// HasCardNamed reports whether a card with the given name is in the deck.
func (d *Deck) HasCardNamed(name string) bool {
	return d.CountByName(name) > 0
}

// ValidationError describes malformed deck input rejected before analysis.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid deck: %s: %s", e.Field, e.Reason)
}

// Validate checks structural validity of the deck input. Legality (deck size,
// copy limits) is not checked here; those produce warnings during analysis
// rather than rejections.
func (d *Deck) Validate() error {
	if d == nil || len(d.Entries) == 0 {
		return ErrEmptyDeck
	}
	for i, e := range d.Entries {
		if e.Card == nil {
			return &ValidationError{
				Field:  fmt.Sprintf("entries[%d].card", i),
				Reason: "missing card reference",
			}
		}
		if e.Card.ID == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("entries[%d].card.id", i),
				Reason: "empty card id",
			}
		}
		if e.Quantity <= 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("entries[%d].quantity", i),
				Reason: fmt.Sprintf("must be positive, got %d", e.Quantity),
			}
		}
	}
	return nil
}

// Normalize merges duplicate entries for the same card id, preserving the
// order of first appearance. The receiver is not modified.
func (d *Deck) Normalize() *Deck {
	out := &Deck{Name: d.Name}
	index := make(map[string]int)
	for _, e := range d.Entries {
		if e.Card == nil {
			continue
		}
		if i, ok := index[e.Card.ID]; ok {
			out.Entries[i].Quantity += e.Quantity
			continue
		}
		index[e.Card.ID] = len(out.Entries)
		out.Entries = append(out.Entries, e)
	}
	return out
}

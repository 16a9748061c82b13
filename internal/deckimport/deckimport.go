// Package deckimport parses text deck lists in the common export format and
// resolves them against the card catalog.
package deckimport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// Line is one parsed deck-list row.
type Line struct {
	Quantity int
	Name     string
	SetCode  string
	Number   string
}

// CardSource resolves parsed lines to card faces. *catalog.DB satisfies it.
type CardSource interface {
	FindBySetNumber(ctx context.Context, setCode, number string) (*cards.CardFace, error)
	FindByName(ctx context.Context, name string) ([]*cards.CardFace, error)
}

// lineRe matches "4 Charmander MEW 4", "4x Charmander" and "4 Charmander".
var lineRe = regexp.MustCompile(`^(\d+)x?\s+(.+?)(?:\s+([A-Z][A-Z0-9-]{1,5})\s+(\w+))?$`)

// sectionRe matches section headers like "Pokémon: 18" or "Trainer - 30".
var sectionRe = regexp.MustCompile(`^(?i)(pok[ée]mon|trainer|energy)\s*[:\-]?\s*\d*$`)

// Parse reads a deck list into lines. Section headers and blank lines are
// skipped; anything else malformed is an error naming the offending line.
func Parse(r io.Reader) ([]Line, error) {
	var out []Line
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") || sectionRe.MatchString(text) {
			continue
		}

		m := lineRe.FindStringSubmatch(text)
		if m == nil {
			return nil, fmt.Errorf("line %d: cannot parse %q", lineNo, text)
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("line %d: bad quantity in %q", lineNo, text)
		}
		out = append(out, Line{
			Quantity: qty,
			Name:     strings.TrimSpace(m[2]),
			SetCode:  m[3],
			Number:   m[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading deck list: %w", err)
	}
	return out, nil
}

// Result is a resolved deck plus the lines that could not be resolved.
type Result struct {
	Deck       *cards.Deck
	Unresolved []Line
}

// Resolve builds a deck from parsed lines using the card source. Lines whose
// cards are not in the catalog are reported, not fatal: the analyzer degrades
// gracefully on partial decks.
func Resolve(ctx context.Context, src CardSource, name string, lines []Line) (*Result, error) {
	res := &Result{Deck: &cards.Deck{Name: name}}
	for _, l := range lines {
		card, err := resolveLine(ctx, src, l)
		if err != nil {
			return nil, err
		}
		if card == nil {
			res.Unresolved = append(res.Unresolved, l)
			continue
		}
		res.Deck.Entries = append(res.Deck.Entries, cards.DeckEntry{Card: card, Quantity: l.Quantity})
	}
	res.Deck = res.Deck.Normalize()
	return res, nil
}

func resolveLine(ctx context.Context, src CardSource, l Line) (*cards.CardFace, error) {
	if l.SetCode != "" && l.Number != "" {
		card, err := src.FindBySetNumber(ctx, strings.ToLower(l.SetCode), l.Number)
		if err == nil {
			return card, nil
		}
		// Fall through to name lookup; set codes in exports don't always
		// match catalog codes.
	}

	matches, err := src.FindByName(ctx, l.Name)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", l.Name, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// Import is the convenience path: parse then resolve.
func Import(ctx context.Context, src CardSource, name string, r io.Reader) (*Result, error) {
	lines, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, src, name, lines)
}

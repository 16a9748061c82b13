// Package evolution reconstructs Basic→Stage 1→Stage 2 lines from a deck
// and scores how reliably each line can actually be fielded.
package evolution

import (
	"fmt"
	"sort"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/prob"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// MissingSuffix marks a line whose pre-evolution is absent from the deck.
const MissingSuffix = " (MISSING)"

// Line is a reconstructed evolution line.
type Line struct {
	BasicName    string   `json:"basic_name"`
	Stage1       []string `json:"stage1,omitempty"`
	Stage2       []string `json:"stage2,omitempty"`
	BasicCount   int      `json:"basic_count"`
	Stage1Count  int      `json:"stage1_count"`
	Stage2Count  int      `json:"stage2_count"`
	Completeness float64  `json:"completeness"` // 0-100
	Consistency  float64  `json:"consistency"`  // 0-100

	// Turn-N probability of having drawn at least one Basic of the line.
	BasicByTurn1 float64 `json:"basic_by_turn1"`
	BasicByTurn2 float64 `json:"basic_by_turn2"`
	BasicByTurn3 float64 `json:"basic_by_turn3"`
}

// Result aggregates all evolution lines in a deck.
type Result struct {
	Lines              []Line  `json:"lines"`
	AverageConsistency float64 `json:"average_consistency"` // 0-100
	IncompleteLines    int     `json:"incomplete_lines"`
}

type pokemonEntry struct {
	card *cards.CardFace
	qty  int
}

// Analyze groups the deck's Pokémon into evolution lines by walking
// evolvesFrom references. An evolution whose pre-evolution is absent is
// flagged incomplete: completeness 0 and the basic name suffixed with
// MissingSuffix.
func Analyze(deck *cards.Deck) *Result {
	byName := make(map[string]*pokemonEntry)
	var order []string
	for _, e := range deck.Entries {
		if e.Card == nil || e.Card.Supertype != cards.SupertypePokemon {
			continue
		}
		if existing, ok := byName[e.Card.Name]; ok {
			existing.qty += e.Quantity
			continue
		}
		byName[e.Card.Name] = &pokemonEntry{card: e.Card, qty: e.Quantity}
		order = append(order, e.Card.Name)
	}

	// rootOf follows evolvesFrom down to the earliest ancestor present in
	// the deck; absent ancestors terminate the walk.
	rootOf := func(name string) (string, bool) {
		cur := byName[name]
		for cur.card.EvolvesFrom != "" {
			prev, ok := byName[cur.card.EvolvesFrom]
			if !ok {
				return cur.card.EvolvesFrom, false
			}
			cur = prev
		}
		return cur.card.Name, true
	}

	type lineAccum struct {
		line     Line
		complete bool
	}
	lines := make(map[string]*lineAccum)
	var lineOrder []string

	for _, name := range order {
		entry := byName[name]
		root, complete := rootOf(name)

		acc, ok := lines[root]
		if !ok {
			acc = &lineAccum{complete: true}
			acc.line.BasicName = root
			lines[root] = acc
			lineOrder = append(lineOrder, root)
		}
		if !complete {
			acc.complete = false
		}

		switch stageWithin(entry.card, byName) {
		case 0:
			acc.line.BasicCount += entry.qty
		case 1:
			acc.line.Stage1 = appendUnique(acc.line.Stage1, name)
			acc.line.Stage1Count += entry.qty
		default:
			acc.line.Stage2 = appendUnique(acc.line.Stage2, name)
			acc.line.Stage2Count += entry.qty
		}
	}

	deckSize := deck.TotalCards()
	result := &Result{}
	for _, root := range lineOrder {
		acc := lines[root]
		line := acc.line

		if !acc.complete || line.BasicCount == 0 {
			line.BasicName = root + MissingSuffix
			line.Completeness = 0
			line.Consistency = 0
			result.IncompleteLines++
		} else {
			line.Completeness = completeness(&line)
			line.Consistency = consistency(&line)
			line.BasicByTurn1 = prob.ByTurn(line.BasicCount, deckSize, 1)
			line.BasicByTurn2 = prob.ByTurn(line.BasicCount, deckSize, 2)
			line.BasicByTurn3 = prob.ByTurn(line.BasicCount, deckSize, 3)
		}
		result.Lines = append(result.Lines, line)
	}

	// Stable output: longest lines first, ties by name.
	sort.SliceStable(result.Lines, func(i, j int) bool {
		ti := result.Lines[i].BasicCount + result.Lines[i].Stage1Count + result.Lines[i].Stage2Count
		tj := result.Lines[j].BasicCount + result.Lines[j].Stage1Count + result.Lines[j].Stage2Count
		if ti != tj {
			return ti > tj
		}
		return result.Lines[i].BasicName < result.Lines[j].BasicName
	})

	if len(result.Lines) > 0 {
		sum := 0.0
		for _, l := range result.Lines {
			sum += l.Consistency
		}
		result.AverageConsistency = sum / float64(len(result.Lines))
	}
	return result
}

// stageWithin computes the card's position in its in-deck line by walking
// evolvesFrom. A card whose ancestor chain is absent counts by its printed
// stage.
func stageWithin(card *cards.CardFace, byName map[string]*pokemonEntry) int {
	// Walk what is actually present; fall back to printed stage when the
	// chain is broken.
	depth := 0
	cur := card
	for cur.EvolvesFrom != "" {
		prev, ok := byName[cur.EvolvesFrom]
		if !ok {
			return card.Stage()
		}
		depth++
		cur = prev.card
	}
	return depth
}

// Ideal stage ratios: 4-3-2 for three-stage lines, 4-3 for two-stage.
// Smaller lines scale down proportionally.
func idealRatios(line *Line, total int) []float64 {
	threeStage := line.Stage2Count > 0 || len(line.Stage2) > 0
	scale := 1.0
	if total <= 2 {
		scale = 0.5
	}
	if threeStage {
		return []float64{4 * scale, 3 * scale, 2 * scale}
	}
	return []float64{4 * scale, 3 * scale}
}

// completeness measures whether every stage of the line is represented.
func completeness(line *Line) float64 {
	hasStage1 := line.Stage1Count > 0
	hasStage2 := line.Stage2Count > 0

	switch {
	case hasStage2 && hasStage1:
		return 100
	case hasStage2 && !hasStage1:
		// Stage 2 playable only via special means; structurally gapped.
		return 50
	default:
		return 100
	}
}

// consistency compares actual counts per stage against the idealized ratios,
// penalizing lines where a stage outnumbers its predecessor.
func consistency(line *Line) float64 {
	counts := []int{line.BasicCount, line.Stage1Count, line.Stage2Count}
	if counts[1] == 0 && counts[2] == 0 {
		// Standalone basic: consistency tracks copy count toward 4.
		v := float64(counts[0]) / 4.0 * 100
		if v > 100 {
			v = 100
		}
		return v
	}

	total := counts[0] + counts[1] + counts[2]
	ideals := idealRatios(line, total)

	score := 0.0
	considered := 0
	for i, ideal := range ideals {
		if ideal <= 0 {
			continue
		}
		ratio := float64(counts[i]) / ideal
		if ratio > 1 {
			ratio = 1
		}
		score += ratio
		considered++
	}
	if considered == 0 {
		return 0
	}
	result := score / float64(considered) * 100

	// A stage outnumbering its predecessor cannot be fully fielded.
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			result *= 0.7
		}
	}
	if result > 100 {
		result = 100
	}
	return result
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// Describe renders a short human-readable summary of a line, e.g.
// "Charmander 4-3-2".
func Describe(line Line) string {
	if line.Stage2Count > 0 {
		return fmt.Sprintf("%s %d-%d-%d", line.BasicName, line.BasicCount, line.Stage1Count, line.Stage2Count)
	}
	if line.Stage1Count > 0 {
		return fmt.Sprintf("%s %d-%d", line.BasicName, line.BasicCount, line.Stage1Count)
	}
	return fmt.Sprintf("%s x%d", line.BasicName, line.BasicCount)
}

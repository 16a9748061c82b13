// Package advisor turns analysis output into actionable warnings and
// add/cut recommendations.
package advisor

import (
	"fmt"
	"sort"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/archetype"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/evolution"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/scoring"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/synergy"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// Severity ranks a warning.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// WarnCategory places a warning in the analysis dimension it concerns.
type WarnCategory string

const (
	WarnLegality     WarnCategory = "legality"
	WarnConsistency  WarnCategory = "consistency"
	WarnPower        WarnCategory = "power"
	WarnSpeed        WarnCategory = "speed"
	WarnMeta         WarnCategory = "meta"
	WarnOptimization WarnCategory = "optimization"
)

// Warning is one actionable problem with the deck. Suggestions is never
// empty.
type Warning struct {
	Severity      Severity     `json:"severity"`
	Category      WarnCategory `json:"category"`
	Message       string       `json:"message"`
	WinRateImpact float64      `json:"win_rate_impact"` // estimated percentage points
	Suggestions   []string     `json:"suggestions"`
}

// Recommendation is a concrete add or cut. Priority 1 is the most urgent;
// ScoreDelta estimates the overall-score points the change is worth. Reasons
// is never empty.
type Recommendation struct {
	Action     string   `json:"action"` // "add" or "cut"
	CardName   string   `json:"card_name"`
	Quantity   int      `json:"quantity"`
	Reasons    []string `json:"reasons"`
	Priority   int      `json:"priority"`
	ScoreDelta float64  `json:"score_delta"`
}

// Advice bundles everything the advisor produces.
type Advice struct {
	Warnings        []Warning        `json:"warnings"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Input carries the upstream results the advisor reads.
type Input struct {
	Deck            *cards.Deck
	Classifications map[string]*classify.CardClassification
	Evolution       *evolution.Result
	Synergy         *synergy.Graph
	Scores          *scoring.Result
	Archetype       *archetype.Evaluation
}

// Advise produces warnings and recommendations. Warnings come back sorted by
// severity, critical first.
func Advise(in Input) *Advice {
	a := &Advice{}
	if in.Deck == nil {
		a.Warnings = append(a.Warnings, Warning{
			Severity:      SeverityCritical,
			Category:      WarnLegality,
			Message:       "no deck to analyze",
			WinRateImpact: 50,
			Suggestions:   []string{"provide a deck list"},
		})
		return a
	}

	counts := countDeck(in)

	a.checkLegality(in, counts)
	a.checkConsistency(in, counts)
	a.checkPower(in, counts)
	a.checkSpeed(in, counts)
	a.checkMeta(in)
	a.checkOptimization(in)

	sort.SliceStable(a.Warnings, func(i, j int) bool {
		return severityRank[a.Warnings[i].Severity] < severityRank[a.Warnings[j].Severity]
	})

	a.recommend(in, counts)
	return a
}

type deckCounts struct {
	total         int
	basics        int
	drawTrainers  int
	switchCards   int
	energy        int
	mainAttackers int
}

func countDeck(in Input) deckCounts {
	var dc deckCounts
	dc.total = in.Deck.TotalCards()
	for _, e := range in.Deck.Entries {
		if e.Card == nil {
			continue
		}
		c := in.Classifications[e.Card.ID]
		if c == nil {
			continue
		}
		switch c.Category {
		case classify.CategoryPokemon:
			if e.Card.IsBasic() {
				dc.basics += e.Quantity
			}
			if c.Role == classify.RoleMainAttacker {
				dc.mainAttackers += e.Quantity
			}
		case classify.CategoryTrainer:
			switch c.TrainerType {
			case classify.TrainerDraw:
				dc.drawTrainers += e.Quantity
			case classify.TrainerSwitch:
				dc.switchCards += e.Quantity
			}
		case classify.CategoryEnergy:
			dc.energy += e.Quantity
		}
	}
	return dc
}

func (a *Advice) warn(w Warning) {
	if len(w.Suggestions) == 0 {
		w.Suggestions = []string{"review the deck list"}
	}
	a.Warnings = append(a.Warnings, w)
}

func (a *Advice) checkLegality(in Input, dc deckCounts) {
	if dc.total != cards.StandardDeckSize {
		verb, n := "add", cards.StandardDeckSize-dc.total
		if n < 0 {
			verb, n = "cut", -n
		}
		a.warn(Warning{
			Severity:      SeverityCritical,
			Category:      WarnLegality,
			Message:       fmt.Sprintf("deck has %d cards, must be exactly %d", dc.total, cards.StandardDeckSize),
			WinRateImpact: 50,
			Suggestions:   []string{fmt.Sprintf("%s %d cards", verb, n)},
		})
	}

	for _, e := range in.Deck.Normalize().Entries {
		if e.Card == nil || e.Quantity <= 4 {
			continue
		}
		c := in.Classifications[e.Card.ID]
		// Basic energy is exempt from the four-copy rule.
		if c != nil && c.Category == classify.CategoryEnergy && !c.SpecialEnergy {
			continue
		}
		a.warn(Warning{
			Severity:      SeverityCritical,
			Category:      WarnLegality,
			Message:       fmt.Sprintf("%d copies of %s exceed the limit of 4", e.Quantity, e.Card.Name),
			WinRateImpact: 50,
			Suggestions:   []string{fmt.Sprintf("cut %d copies of %s", e.Quantity-4, e.Card.Name)},
		})
	}
}

func (a *Advice) checkConsistency(in Input, dc deckCounts) {
	if dc.basics < 8 {
		a.warn(Warning{
			Severity:      SeverityHigh,
			Category:      WarnConsistency,
			Message:       fmt.Sprintf("only %d Basic Pokémon raises the mulligan rate sharply", dc.basics),
			WinRateImpact: 8,
			Suggestions:   []string{"add more Basic Pokémon", "add Nest Ball or Buddy-Buddy Poffin to find them"},
		})
	}
	if dc.drawTrainers < 8 {
		a.warn(Warning{
			Severity:      SeverityMedium,
			Category:      WarnConsistency,
			Message:       fmt.Sprintf("%d draw trainers is below the consistency baseline of 8", dc.drawTrainers),
			WinRateImpact: 5,
			Suggestions:   []string{"add draw supporters such as Professor's Research or Iono"},
		})
	}
	if in.Evolution != nil && in.Evolution.IncompleteLines > 0 {
		for _, line := range in.Evolution.Lines {
			if line.Completeness > 0 || line.BasicCount > 0 {
				continue
			}
			a.warn(Warning{
				Severity:      SeverityHigh,
				Category:      WarnConsistency,
				Message:       fmt.Sprintf("evolution line %q is missing its earlier stage", line.BasicName),
				WinRateImpact: 7,
				Suggestions:   []string{"add the missing pre-evolution or cut the orphaned evolutions"},
			})
		}
	}
}

func (a *Advice) checkPower(in Input, dc deckCounts) {
	if dc.mainAttackers == 0 {
		a.warn(Warning{
			Severity:      SeverityHigh,
			Category:      WarnPower,
			Message:       "no main attacker identified; the deck has no clear win condition",
			WinRateImpact: 10,
			Suggestions:   []string{"add a primary attacker that can take knockouts"},
		})
	}
	if dc.energy == 0 && dc.mainAttackers > 0 {
		a.warn(Warning{
			Severity:      SeverityHigh,
			Category:      WarnPower,
			Message:       "attackers with no energy cards to power them",
			WinRateImpact: 10,
			Suggestions:   []string{"add energy matching the attackers' costs"},
		})
	}
}

func (a *Advice) checkSpeed(in Input, dc deckCounts) {
	if dc.switchCards == 0 {
		a.warn(Warning{
			Severity:      SeverityLow,
			Category:      WarnSpeed,
			Message:       "no switching cards; a stranded active Pokémon ends games",
			WinRateImpact: 3,
			Suggestions:   []string{"add Switch or Escape Rope"},
		})
	}
	if in.Scores != nil {
		if v, ok := in.Scores.Categories[scoring.CategorySpeed]; ok && v < 40 {
			a.warn(Warning{
				Severity:      SeverityMedium,
				Category:      WarnSpeed,
				Message:       "setup is slow for the format",
				WinRateImpact: 5,
				Suggestions:   []string{"add energy acceleration or cheaper attackers"},
			})
		}
	}
}

func (a *Advice) checkMeta(in Input) {
	if in.Archetype == nil {
		return
	}
	if in.Archetype.MetaFit < 40 {
		a.warn(Warning{
			Severity:      SeverityLow,
			Category:      WarnMeta,
			Message:       fmt.Sprintf("weak position against the current field (meta fit %.0f/100)", in.Archetype.MetaFit),
			WinRateImpact: 4,
			Suggestions:   []string{"add tech cards against the worst matchups"},
		})
	}
	for _, m := range in.Archetype.Matchups {
		if m.Tier == 1 && m.WinRate <= 30 {
			a.warn(Warning{
				Severity:      SeverityInfo,
				Category:      WarnMeta,
				Message:       fmt.Sprintf("unfavorable matchup against %s (%.0f%%)", m.Opponent, m.WinRate),
				WinRateImpact: 2,
				Suggestions:   []string{fmt.Sprintf("consider a tech card for the %s matchup", m.Opponent)},
			})
		}
	}
}

func (a *Advice) checkOptimization(in Input) {
	if in.Synergy == nil {
		return
	}
	for _, e := range in.Synergy.Edges {
		if e.Relation != synergy.RelationAntiSynergy {
			continue
		}
		a.warn(Warning{
			Severity:      SeverityMedium,
			Category:      WarnOptimization,
			Message:       e.Description,
			WinRateImpact: 4,
			Suggestions:   []string{"replace one side of the conflicting pair"},
		})
		// One warning per conflict source is enough.
		break
	}
}

// recommend proposes adds for the measured shortfalls, then cuts for the
// weakest redundant cards when the adds would push the deck over the size
// limit.
func (a *Advice) recommend(in Input, dc deckCounts) {
	if dc.basics < 8 {
		a.Recommendations = append(a.Recommendations, Recommendation{
			Action:     "add",
			CardName:   "Nest Ball",
			Quantity:   min(8-dc.basics, 4),
			Reasons:    []string{"find Basic Pokémon more reliably", "cut the mulligan rate"},
			Priority:   1,
			ScoreDelta: 6,
		})
	}
	if dc.drawTrainers < 8 {
		a.Recommendations = append(a.Recommendations, Recommendation{
			Action:     "add",
			CardName:   "Professor's Research",
			Quantity:   min(8-dc.drawTrainers, 4),
			Reasons:    []string{"raise draw support to the consistency baseline"},
			Priority:   2,
			ScoreDelta: 5,
		})
	}
	if dc.switchCards == 0 {
		a.Recommendations = append(a.Recommendations, Recommendation{
			Action:     "add",
			CardName:   "Switch",
			Quantity:   2,
			Reasons:    []string{"avoid losing to a stranded active Pokémon"},
			Priority:   3,
			ScoreDelta: 2,
		})
	}

	// Cuts only make sense when the additions would not fit: a deck below
	// the size limit just takes the adds.
	added := 0
	for _, r := range a.Recommendations {
		if r.Action == "add" {
			added += r.Quantity
		}
	}
	overflow := dc.total + added - cards.StandardDeckSize
	if overflow <= 0 {
		return
	}

	// Cut candidates: lowest power first, redundant copies first.
	type cutCandidate struct {
		name  string
		qty   int
		power int
	}
	var cuts []cutCandidate
	for _, e := range in.Deck.Normalize().Entries {
		if e.Card == nil {
			continue
		}
		c := in.Classifications[e.Card.ID]
		if c == nil || c.Category == classify.CategoryEnergy {
			continue
		}
		if c.Role == classify.RoleMainAttacker || c.HasTag("tech") || c.HasTag("evolution-seed") {
			continue
		}
		if c.PowerLevel <= 3 || c.Degraded {
			cuts = append(cuts, cutCandidate{name: e.Card.Name, qty: e.Quantity, power: c.PowerLevel})
		}
	}
	sort.SliceStable(cuts, func(i, j int) bool {
		if cuts[i].power != cuts[j].power {
			return cuts[i].power < cuts[j].power
		}
		if cuts[i].qty != cuts[j].qty {
			return cuts[i].qty > cuts[j].qty
		}
		return cuts[i].name < cuts[j].name
	})
	if overflow > 3 {
		overflow = 3
	}
	for i, c := range cuts {
		if i >= overflow {
			break
		}
		a.Recommendations = append(a.Recommendations, Recommendation{
			Action:   "cut",
			CardName: c.name,
			Quantity: 1,
			Reasons: []string{
				fmt.Sprintf("lowest-impact card in the list (power %d/10)", c.power),
				"make room for the recommended additions",
			},
			Priority:   4 + i,
			ScoreDelta: 1,
		})
	}
}

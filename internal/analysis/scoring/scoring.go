// Package scoring condenses the upstream analyses into weighted factor
// scores, five category scores and a single overall deck score.
package scoring

import (
	"sort"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/evolution"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/synergy"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
	"github.com/deckforge/ptcg-analyzer/internal/meta"
)

// Category groups scoring factors.
type Category string

const (
	CategoryConsistency Category = "consistency"
	CategoryPower       Category = "power"
	CategorySpeed       Category = "speed"
	CategoryVersatility Category = "versatility"
	CategoryMeta        Category = "meta"
)

// categoryOrder fixes iteration order for deterministic output.
var categoryOrder = []Category{
	CategoryConsistency, CategoryPower, CategorySpeed, CategoryVersatility, CategoryMeta,
}

// CategoryOrder returns the categories in display order.
func CategoryOrder() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Factor is one scored aspect of the deck. Score is 0-100; Weight is the
// factor's share within its category; Confidence is 0-1.
type Factor struct {
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Score      float64  `json:"score"`
	Weight     float64  `json:"weight"`
	Confidence float64  `json:"confidence"`
	Details    []string `json:"details,omitempty"`
}

// Result is the full scoring breakdown for a deck.
type Result struct {
	Factors    []Factor             `json:"factors"`
	Categories map[Category]float64 `json:"categories"`

	// Profile names the category weight set applied: balanced, aggro or
	// control. Selection is a pure function of the category scores.
	Profile      string  `json:"profile"`
	OverallScore float64 `json:"overall_score"`
	Confidence   float64 `json:"confidence"`

	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Input bundles the upstream analyses the scorer consumes. Meta may be nil;
// meta factors then score at a low-confidence neutral.
type Input struct {
	Deck            *cards.Deck
	Classifications map[string]*classify.CardClassification
	Evolution       *evolution.Result
	Synergy         *synergy.Graph
	Meta            *meta.Snapshot
}

// Category weight profiles. Each sums to 1.
var profiles = map[string]map[Category]float64{
	"balanced": {
		CategoryConsistency: 0.25,
		CategoryPower:       0.20,
		CategorySpeed:       0.20,
		CategoryVersatility: 0.15,
		CategoryMeta:        0.20,
	},
	"aggro": {
		CategoryConsistency: 0.20,
		CategoryPower:       0.30,
		CategorySpeed:       0.25,
		CategoryVersatility: 0.10,
		CategoryMeta:        0.15,
	},
	"control": {
		CategoryConsistency: 0.30,
		CategoryPower:       0.15,
		CategorySpeed:       0.15,
		CategoryVersatility: 0.25,
		CategoryMeta:        0.15,
	},
}

// profileFor picks the weight profile from the raw category scores. Decks
// that are both powerful and fast weight like aggro; decks built on
// consistency and flexible answers weight like control.
func profileFor(cat map[Category]float64) string {
	switch {
	case cat[CategoryPower] >= 80 && cat[CategorySpeed] >= 80:
		return "aggro"
	case cat[CategoryConsistency] >= 80 && cat[CategoryVersatility] >= 70:
		return "control"
	default:
		return "balanced"
	}
}

// Score computes all factors and aggregates them into a Result.
func Score(in Input) *Result {
	factors := buildFactors(in)

	categories := make(map[Category]float64, len(categoryOrder))
	for _, cat := range categoryOrder {
		categories[cat] = categoryScore(factors, cat)
	}

	profile := profileFor(categories)
	weights := profiles[profile]

	overall := 0.0
	for _, cat := range categoryOrder {
		overall += categories[cat] * weights[cat]
	}

	res := &Result{
		Factors:      factors,
		Categories:   categories,
		Profile:      profile,
		OverallScore: clamp(overall, 0, 100),
		Confidence:   meanConfidence(factors),
	}
	res.Strengths, res.Weaknesses = strengthsAndWeaknesses(factors)
	return res
}

// categoryScore is the weight-normalized mean of the category's factors.
func categoryScore(factors []Factor, cat Category) float64 {
	sum, wsum := 0.0, 0.0
	for _, f := range factors {
		if f.Category != cat {
			continue
		}
		sum += f.Score * f.Weight
		wsum += f.Weight
	}
	if wsum == 0 {
		return 0
	}
	return clamp(sum/wsum, 0, 100)
}

func meanConfidence(factors []Factor) float64 {
	if len(factors) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range factors {
		sum += f.Confidence
	}
	return sum / float64(len(factors))
}

// strengthsAndWeaknesses extracts the top factors at or above 70 and the
// bottom factors below 60, up to three each. Neither list is left empty.
func strengthsAndWeaknesses(factors []Factor) (strengths, weaknesses []string) {
	sorted := make([]Factor, len(factors))
	copy(sorted, factors)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Name < sorted[j].Name
	})

	for _, f := range sorted {
		if f.Score >= 70 && len(strengths) < 3 {
			strengths = append(strengths, f.Name)
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Score < 60 && len(weaknesses) < 3 {
			weaknesses = append(weaknesses, sorted[i].Name)
		}
	}

	if len(strengths) == 0 {
		strengths = []string{"no standout strengths"}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"no significant weaknesses"}
	}
	return strengths, weaknesses
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

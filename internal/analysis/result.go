// Package analysis runs the full deck analysis pipeline and aggregates the
// stage results. Analyze never fails: stages are isolated, a crashed stage
// degrades its slice of the result, and in the worst case the caller gets a
// marked emergency result.
package analysis

import (
	"github.com/deckforge/ptcg-analyzer/internal/analysis/advisor"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/archetype"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/evolution"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/scoring"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/synergy"
)

// ResultVersion identifies the result schema, including emergency results.
const ResultVersion = "1.0"

// KeyCardOdds is the turn-by-turn draw probability for one important card.
type KeyCardOdds struct {
	Name    string  `json:"name"`
	Copies  int     `json:"copies"`
	ByTurn1 float64 `json:"by_turn1"`
	ByTurn2 float64 `json:"by_turn2"`
	ByTurn3 float64 `json:"by_turn3"`
}

// DrawProbabilities is the probability stage's output.
type DrawProbabilities struct {
	MulliganRate float64       `json:"mulligan_rate"`
	BasicByTurn1 float64       `json:"basic_by_turn1"`
	KeyCards     []KeyCardOdds `json:"key_cards,omitempty"`
}

// Result is the aggregated analysis of one deck. It is a pure function of
// the deck and the meta snapshot: analyzing the same deck twice against the
// same snapshot yields identical results, byte for byte once serialized.
// Every section below is always present; a failed stage leaves its section
// at a neutral value, never nil.
type Result struct {
	Version   string `json:"version"`
	DeckName  string `json:"deck_name"`
	CardCount int    `json:"card_count"`

	// Emergency marks a minimal fallback result produced when the pipeline
	// itself failed.
	Emergency bool `json:"emergency,omitempty"`
	// DegradedStages lists pipeline stages that crashed; their slices of
	// the result hold defaults.
	DegradedStages []string `json:"degraded_stages,omitempty"`

	Validation      []string                                `json:"validation,omitempty"`
	Probabilities   *DrawProbabilities                      `json:"probabilities"`
	Classifications map[string]*classify.CardClassification `json:"classifications"`
	Evolution       *evolution.Result                       `json:"evolution"`
	Synergy         *synergy.Graph                          `json:"synergy"`
	Scores          *scoring.Result                         `json:"scores"`
	Archetype       *archetype.Evaluation                   `json:"archetype"`
	Advice          *advisor.Advice                         `json:"advice"`
}

// OverallScore returns the deck score, 50 when scoring did not run.
func (r *Result) OverallScore() float64 {
	if r.Scores == nil {
		return 50
	}
	return r.Scores.OverallScore
}

// IsDegraded reports whether any stage failed or the result is an emergency
// fallback.
func (r *Result) IsDegraded() bool {
	return r.Emergency || len(r.DegradedStages) > 0
}

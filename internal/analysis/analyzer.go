package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/advisor"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/archetype"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/evolution"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/prob"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/scoring"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/synergy"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
	"github.com/deckforge/ptcg-analyzer/internal/meta"
	"github.com/deckforge/ptcg-analyzer/internal/metrics"
)

// Analyzer runs the analysis pipeline. Safe for concurrent use.
type Analyzer struct {
	classifier *classify.Classifier
	meta       *meta.Provider
	metrics    *metrics.AnalysisMetrics
	logger     *slog.Logger
}

// Options configures an Analyzer. Zero values fall back to defaults.
type Options struct {
	Tables  *classify.KnowledgeTables
	Meta    *meta.Provider
	Metrics *metrics.AnalysisMetrics
	Logger  *slog.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Meta == nil {
		opts.Meta = meta.NewProvider(opts.Logger)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewAnalysisMetrics()
	}
	return &Analyzer{
		classifier: classify.NewClassifier(opts.Tables, opts.Logger),
		meta:       opts.Meta,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

// Metrics exposes the collector, for status endpoints and tests.
func (a *Analyzer) Metrics() *metrics.AnalysisMetrics {
	return a.metrics
}

// Analyze runs every stage against the deck and aggregates the results. It
// never panics and never returns nil: stage failures degrade the result, and
// a failure in the aggregation itself yields an emergency result.
func (a *Analyzer) Analyze(deck *cards.Deck) (result *Result) {
	start := time.Now()
	defer func() {
		a.metrics.RecordTotalDuration(time.Since(start))
		if r := recover(); r != nil {
			a.logger.Error("analysis pipeline panicked, returning emergency result", "panic", r)
			a.metrics.EmergencyResults.Add(1)
			result = a.emergencyResult(deck)
		}
	}()

	if deck == nil || len(deck.Entries) == 0 {
		a.metrics.EmergencyResults.Add(1)
		return a.emergencyResult(deck)
	}

	result = &Result{
		Version:   ResultVersion,
		DeckName:  deck.Name,
		CardCount: deck.TotalCards(),
	}

	a.runStage(result, metrics.StageValidation, func() {
		if err := deck.Validate(); err != nil {
			result.Validation = append(result.Validation, err.Error())
		}
	})

	a.runStage(result, metrics.StageClassification, func() {
		hits, misses := a.classifier.CacheStats()
		result.Classifications = a.classifier.ClassifyDeck(deck)
		newHits, newMisses := a.classifier.CacheStats()
		a.metrics.CacheHits.Add(newHits - hits)
		a.metrics.CacheMisses.Add(newMisses - misses)
	})

	a.runStage(result, metrics.StageProbability, func() {
		result.Probabilities = a.probabilities(deck, result.Classifications)
	})

	a.runStage(result, metrics.StageEvolution, func() {
		result.Evolution = evolution.Analyze(deck)
	})

	a.runStage(result, metrics.StageSynergy, func() {
		result.Synergy = synergy.Build(deck, result.Classifications)
	})

	snapshot := a.meta.Current()

	a.runStage(result, metrics.StageScoring, func() {
		result.Scores = scoring.Score(scoring.Input{
			Deck:            deck,
			Classifications: result.Classifications,
			Evolution:       result.Evolution,
			Synergy:         result.Synergy,
			Meta:            snapshot,
		})
	})

	a.runStage(result, metrics.StageArchetype, func() {
		result.Archetype = archetype.Evaluate(deck, result.Classifications, snapshot)
	})

	a.runStage(result, metrics.StageAdvisor, func() {
		result.Advice = advisor.Advise(advisor.Input{
			Deck:            deck,
			Classifications: result.Classifications,
			Evolution:       result.Evolution,
			Synergy:         result.Synergy,
			Scores:          result.Scores,
			Archetype:       result.Archetype,
		})
	})

	fillDefaults(result)

	a.metrics.AnalysesCompleted.Add(1)
	if result.IsDegraded() {
		a.metrics.AnalysesDegraded.Add(1)
	}
	a.logger.Info("deck analysis complete",
		"deck", deck.Name,
		"cards", result.CardCount,
		"score", fmt.Sprintf("%.1f", result.OverallScore()),
		"degraded_stages", len(result.DegradedStages),
		"duration", time.Since(start).Round(time.Millisecond))
	return result
}

// runStage executes one pipeline stage with panic isolation and timing. A
// crashed stage leaves its result slice at the default and is recorded in
// DegradedStages.
func (a *Analyzer) runStage(result *Result, name string, fn func()) {
	start := time.Now()
	defer func() {
		a.metrics.RecordStageDuration(name, time.Since(start))
		if r := recover(); r != nil {
			a.logger.Error("analysis stage failed", "stage", name, "panic", r)
			a.metrics.StageFailures.Add(1)
			result.DegradedStages = append(result.DegradedStages, name)
		}
	}()
	fn()
}

// probabilities computes the deck-level draw odds and the turn-by-turn odds
// for the cards that matter: main attackers and draw supporters.
func (a *Analyzer) probabilities(deck *cards.Deck, classifications map[string]*classify.CardClassification) *DrawProbabilities {
	total := deck.TotalCards()
	basics := 0
	for _, e := range deck.Entries {
		if e.Card != nil && e.Card.Supertype == cards.SupertypePokemon && e.Card.IsBasic() {
			basics += e.Quantity
		}
	}

	p := &DrawProbabilities{
		MulliganRate: prob.MulliganProbability(basics, total, prob.HandSize),
		BasicByTurn1: prob.ByTurn(basics, total, 1),
	}

	for _, e := range deck.Normalize().Entries {
		if e.Card == nil {
			continue
		}
		c := classifications[e.Card.ID]
		if c == nil {
			continue
		}
		key := c.Role == classify.RoleMainAttacker || c.TrainerType == classify.TrainerDraw
		if !key {
			continue
		}
		p.KeyCards = append(p.KeyCards, KeyCardOdds{
			Name:    e.Card.Name,
			Copies:  e.Quantity,
			ByTurn1: prob.ByTurn(e.Quantity, total, 1),
			ByTurn2: prob.ByTurn(e.Quantity, total, 2),
			ByTurn3: prob.ByTurn(e.Quantity, total, 3),
		})
	}
	sort.SliceStable(p.KeyCards, func(i, j int) bool {
		if p.KeyCards[i].Copies != p.KeyCards[j].Copies {
			return p.KeyCards[i].Copies > p.KeyCards[j].Copies
		}
		return p.KeyCards[i].Name < p.KeyCards[j].Name
	})
	return p
}

// emergencyResult is the minimal well-formed result returned when the deck
// cannot be analyzed at all. Every section is present at its neutral value.
func (a *Analyzer) emergencyResult(deck *cards.Deck) *Result {
	r := &Result{
		Version:   ResultVersion,
		Emergency: true,
	}
	if deck != nil {
		r.DeckName = deck.Name
		r.CardCount = deck.TotalCards()
	}
	r.Advice = &advisor.Advice{
		Warnings: []advisor.Warning{{
			Severity:      advisor.SeverityCritical,
			Category:      advisor.WarnLegality,
			Message:       "deck could not be analyzed",
			WinRateImpact: 50,
			Suggestions:   []string{"check the deck list for malformed cards"},
		}},
	}
	fillDefaults(r)
	return r
}

// fillDefaults replaces any section a failed stage left nil with its neutral
// value, so serialized results never carry nulls.
func fillDefaults(r *Result) {
	if r.Probabilities == nil {
		r.Probabilities = &DrawProbabilities{}
	}
	if r.Classifications == nil {
		r.Classifications = map[string]*classify.CardClassification{}
	}
	if r.Evolution == nil {
		r.Evolution = &evolution.Result{}
	}
	if r.Evolution.Lines == nil {
		r.Evolution.Lines = []evolution.Line{}
	}
	if r.Synergy == nil {
		r.Synergy = &synergy.Graph{}
	}
	if r.Synergy.Nodes == nil {
		r.Synergy.Nodes = []string{}
	}
	if r.Synergy.Edges == nil {
		r.Synergy.Edges = []synergy.Edge{}
	}
	if r.Synergy.Clusters == nil {
		r.Synergy.Clusters = []synergy.Cluster{}
	}
	if r.Scores == nil {
		r.Scores = &scoring.Result{Profile: "balanced"}
	}
	if r.Scores.Factors == nil {
		r.Scores.Factors = []scoring.Factor{}
	}
	if r.Scores.Categories == nil {
		r.Scores.Categories = map[scoring.Category]float64{}
		for _, cat := range scoring.CategoryOrder() {
			r.Scores.Categories[cat] = 0
		}
	}
	if r.Scores.Strengths == nil {
		r.Scores.Strengths = []string{}
	}
	if r.Scores.Weaknesses == nil {
		r.Scores.Weaknesses = []string{}
	}
	if r.Archetype == nil {
		r.Archetype = &archetype.Evaluation{
			Match:           archetype.Match{Name: "Unknown", Style: meta.StyleMidrange, Structural: true},
			WeightedWinRate: 50,
			MetaFit:         50,
		}
	}
	if r.Archetype.Matchups == nil {
		r.Archetype.Matchups = []archetype.Matchup{}
	}
	if r.Advice == nil {
		r.Advice = &advisor.Advice{}
	}
	if r.Advice.Warnings == nil {
		r.Advice.Warnings = []advisor.Warning{}
	}
	if r.Advice.Recommendations == nil {
		r.Advice.Recommendations = []advisor.Recommendation{}
	}
}

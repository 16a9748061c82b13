package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deckforge/ptcg-analyzer/internal/analysis"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/advisor"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/scoring"
)

// NarratorConfig configures the deck review generator.
type NarratorConfig struct {
	// UseLLM enables model-generated reviews when Ollama is available.
	UseLLM bool

	// Temperature controls creativity in model responses.
	Temperature float64

	// CacheTTL is how long generated reviews stay cached.
	CacheTTL time.Duration

	// FallbackToTemplate uses templated text when the model is unavailable.
	FallbackToTemplate bool
}

// DefaultNarratorConfig returns sensible defaults.
func DefaultNarratorConfig() *NarratorConfig {
	return &NarratorConfig{
		UseLLM:             true,
		Temperature:        0.7,
		CacheTTL:           time.Hour,
		FallbackToTemplate: true,
	}
}

// Narrative is a readable deck review derived from an analysis result.
type Narrative struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"` // "llm", "template" or "cached"
	Confidence float64 `json:"confidence"`
}

type cachedNarrative struct {
	text      string
	createdAt time.Time
}

// Narrator generates deck reviews.
type Narrator struct {
	config *NarratorConfig
	client *Client

	cacheMu sync.RWMutex
	cache   map[string]cachedNarrative
}

// NewNarrator creates a narrator. client may be nil; reviews then always come
// from templates.
func NewNarrator(client *Client, config *NarratorConfig) *Narrator {
	if config == nil {
		config = DefaultNarratorConfig()
	}
	return &Narrator{
		config: config,
		client: client,
		cache:  make(map[string]cachedNarrative),
	}
}

const reviewSystemPrompt = `You are a Pokemon TCG deck building coach.
Review decks concisely using the structured analysis you are given.
Focus on consistency, matchups and the most impactful fixes.
Keep reviews under 200 words. Don't use markdown formatting.`

// Review produces a narrative review of the analysis result.
func (n *Narrator) Review(ctx context.Context, result *analysis.Result) (*Narrative, error) {
	if result == nil {
		return nil, fmt.Errorf("analysis result required")
	}

	key := n.cacheKey(result)
	if text, ok := n.fromCache(key); ok {
		return &Narrative{Text: text, Source: "cached", Confidence: 0.9}, nil
	}

	if n.config.UseLLM && n.client != nil && n.client.IsAvailable() {
		text, err := n.client.Generate(ctx, reviewSystemPrompt, buildReviewPrompt(result), &GenerateOptions{
			Temperature: n.config.Temperature,
			NumPredict:  400,
		})
		if err == nil && text != "" {
			n.toCache(key, text)
			return &Narrative{Text: text, Source: "llm", Confidence: 0.9}, nil
		}
		// Model failed mid-session; fall through to the template.
	}

	if n.config.FallbackToTemplate {
		return &Narrative{Text: templateReview(result), Source: "template", Confidence: 0.7}, nil
	}
	return nil, fmt.Errorf("no review method available")
}

// buildReviewPrompt flattens the analysis into a prompt the model can work
// from without hallucinating numbers.
func buildReviewPrompt(result *analysis.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review this %d-card deck", result.CardCount)
	if result.DeckName != "" {
		fmt.Fprintf(&b, " named %q", result.DeckName)
	}
	b.WriteString(".\n\n")

	fmt.Fprintf(&b, "Overall score: %.0f/100\n", result.OverallScore())
	if result.Scores != nil {
		fmt.Fprintf(&b, "Profile: %s\n", result.Scores.Profile)
		for _, cat := range scoring.CategoryOrder() {
			fmt.Fprintf(&b, "%s: %.0f\n", cat, result.Scores.Categories[cat])
		}
		if len(result.Scores.Strengths) > 0 {
			fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(result.Scores.Strengths, "; "))
		}
		if len(result.Scores.Weaknesses) > 0 {
			fmt.Fprintf(&b, "Weaknesses: %s\n", strings.Join(result.Scores.Weaknesses, "; "))
		}
	}
	if result.Probabilities != nil {
		fmt.Fprintf(&b, "Mulligan rate: %.1f%%\n", result.Probabilities.MulliganRate*100)
	}
	if result.Archetype != nil {
		fmt.Fprintf(&b, "Archetype: %s (%.0f%% match)\n", result.Archetype.Match.Name, result.Archetype.Match.MatchPercent)
		fmt.Fprintf(&b, "Weighted win rate vs meta: %.0f%%, meta fit %.0f/100\n",
			result.Archetype.WeightedWinRate, result.Archetype.MetaFit)
	}
	if result.Advice != nil {
		for _, w := range result.Advice.Warnings {
			fmt.Fprintf(&b, "Warning [%s]: %s\n", w.Severity, w.Message)
		}
		for _, r := range result.Advice.Recommendations {
			fmt.Fprintf(&b, "Suggestion: %s %dx %s (%s)\n", r.Action, r.Quantity, r.CardName, strings.Join(r.Reasons, "; "))
		}
	}

	b.WriteString("\nWrite the review.")
	return b.String()
}

// templateReview assembles a deterministic review from the same inputs the
// model would see.
func templateReview(result *analysis.Result) string {
	var parts []string

	name := result.DeckName
	if name == "" {
		name = "This deck"
	}
	parts = append(parts, fmt.Sprintf("%s scores %.0f/100 overall.", name, result.OverallScore()))

	if result.Scores != nil {
		parts = append(parts, fmt.Sprintf("It plays as a %s deck.", result.Scores.Profile))
		if len(result.Scores.Strengths) > 0 {
			parts = append(parts, "Strengths: "+strings.Join(result.Scores.Strengths, "; ")+".")
		}
		if len(result.Scores.Weaknesses) > 0 {
			parts = append(parts, "Weaknesses: "+strings.Join(result.Scores.Weaknesses, "; ")+".")
		}
	}

	if result.Probabilities != nil {
		parts = append(parts, fmt.Sprintf("Expected mulligan rate is %.1f%%.", result.Probabilities.MulliganRate*100))
	}

	if result.Archetype != nil {
		parts = append(parts, fmt.Sprintf("It lines up with %s (%.0f%% match) and projects a %.0f%% weighted win rate against the current field.",
			result.Archetype.Match.Name, result.Archetype.Match.MatchPercent, result.Archetype.WeightedWinRate))
	}

	if result.Advice != nil {
		if critical := worstWarning(result.Advice.Warnings); critical != "" {
			parts = append(parts, "Biggest issue: "+critical)
		}
		if len(result.Advice.Recommendations) > 0 {
			r := result.Advice.Recommendations[0]
			parts = append(parts, fmt.Sprintf("First fix: %s %dx %s.", r.Action, r.Quantity, r.CardName))
		}
	}

	if result.IsDegraded() {
		parts = append(parts, "Parts of the analysis were unavailable, so treat the numbers as approximate.")
	}

	return strings.Join(parts, " ")
}

// worstWarning returns the message of the most severe warning. Warnings
// arrive sorted by severity, so the first one wins.
func worstWarning(warnings []advisor.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	return warnings[0].Message
}

func (n *Narrator) cacheKey(result *analysis.Result) string {
	arch := ""
	if result.Archetype != nil {
		arch = result.Archetype.Match.Name
	}
	return fmt.Sprintf("%s|%d|%.0f|%s", result.DeckName, result.CardCount, result.OverallScore(), arch)
}

func (n *Narrator) fromCache(key string) (string, bool) {
	n.cacheMu.RLock()
	defer n.cacheMu.RUnlock()
	entry, ok := n.cache[key]
	if !ok || time.Since(entry.createdAt) > n.config.CacheTTL {
		return "", false
	}
	return entry.text, true
}

func (n *Narrator) toCache(key, text string) {
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	n.cache[key] = cachedNarrative{text: text, createdAt: time.Now()}
}

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/deckforge/ptcg-analyzer/internal/analysis"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/scoring"
	"github.com/deckforge/ptcg-analyzer/internal/meta"
	"github.com/deckforge/ptcg-analyzer/internal/pricing"
)

// deckDisplayName derives a deck name from its file path.
func deckDisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

// scoreBar renders a 0-100 score as a fixed-width bar.
func scoreBar(score float64) string {
	const width = 20
	filled := int(score / 100 * width)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}

// printResult writes the human-readable analysis summary.
func printResult(w io.Writer, result *analysis.Result) {
	title := result.DeckName
	if title == "" {
		title = "Deck Analysis"
	}
	header(w, title)
	fmt.Fprintf(w, "Cards: %d    Overall: %.0f/100\n", result.CardCount, result.OverallScore())

	if result.Emergency {
		fmt.Fprintln(w, "\nANALYSIS FAILED - partial results only")
	}
	if len(result.DegradedStages) > 0 {
		fmt.Fprintf(w, "Degraded stages: %s\n", strings.Join(result.DegradedStages, ", "))
	}
	for _, v := range result.Validation {
		fmt.Fprintf(w, "Validation: %s\n", v)
	}

	if result.Probabilities != nil {
		header(w, "Opening Hand")
		fmt.Fprintf(w, "Mulligan rate:     %5.1f%%\n", result.Probabilities.MulliganRate*100)
		fmt.Fprintf(w, "Basic by turn 1:   %5.1f%%\n", result.Probabilities.BasicByTurn1*100)
		if len(result.Probabilities.KeyCards) > 0 {
			fmt.Fprintln(w, "\nKey card odds (turn 1 / 2 / 3):")
			for _, kc := range result.Probabilities.KeyCards {
				fmt.Fprintf(w, "  %-28s %4.0f%% / %4.0f%% / %4.0f%%\n",
					fmt.Sprintf("%s x%d", kc.Name, kc.Copies),
					kc.ByTurn1*100, kc.ByTurn2*100, kc.ByTurn3*100)
			}
		}
	}

	if result.Scores != nil {
		header(w, "Scores")
		fmt.Fprintf(w, "Profile: %s\n\n", result.Scores.Profile)
		for _, cat := range scoring.CategoryOrder() {
			score := result.Scores.Categories[cat]
			fmt.Fprintf(w, "  %-12s %s %5.1f\n", cat, scoreBar(score), score)
		}
		if len(result.Scores.Strengths) > 0 {
			fmt.Fprintf(w, "\nStrengths:  %s\n", strings.Join(result.Scores.Strengths, "; "))
		}
		if len(result.Scores.Weaknesses) > 0 {
			fmt.Fprintf(w, "Weaknesses: %s\n", strings.Join(result.Scores.Weaknesses, "; "))
		}
	}

	if result.Archetype != nil {
		header(w, "Meta Position")
		match := result.Archetype.Match
		if match.Structural {
			fmt.Fprintf(w, "Archetype: %s (structural read)\n", match.Name)
		} else {
			fmt.Fprintf(w, "Archetype: %s (%.0f%% match)\n", match.Name, match.MatchPercent)
		}
		fmt.Fprintf(w, "Weighted win rate: %.0f%%    Meta fit: %.0f/100    Snapshot: %s\n",
			result.Archetype.WeightedWinRate, result.Archetype.MetaFit, result.Archetype.SnapshotVersion)
		if len(result.Archetype.Matchups) > 0 {
			fmt.Fprintln(w, "\nMatchups:")
			for _, m := range result.Archetype.Matchups {
				notes := ""
				if len(m.Notes) > 0 {
					notes = "  (" + strings.Join(m.Notes, ", ") + ")"
				}
				fmt.Fprintf(w, "  %-24s T%d %4.1f%% share  %3.0f%% to win%s\n",
					m.Opponent, m.Tier, m.Share, m.WinRate, notes)
			}
		}
	}

	if result.Advice != nil && (len(result.Advice.Warnings) > 0 || len(result.Advice.Recommendations) > 0) {
		header(w, "Advice")
		for _, warn := range result.Advice.Warnings {
			fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(warn.Severity)), warn.Message)
			for _, s := range warn.Suggestions {
				fmt.Fprintf(w, "    - %s\n", s)
			}
		}
		if len(result.Advice.Recommendations) > 0 {
			fmt.Fprintln(w, "\nRecommended changes:")
			for _, rec := range result.Advice.Recommendations {
				fmt.Fprintf(w, "  %s %dx %-28s %s\n", rec.Action, rec.Quantity, rec.CardName, strings.Join(rec.Reasons, "; "))
			}
		}
	}
}

// printPrice writes the deck price estimate.
func printPrice(w io.Writer, dp *pricing.DeckPrice) {
	header(w, "Price Estimate")
	fmt.Fprintf(w, "Total: %.2f %s\n\n", dp.Total, dp.Currency)
	for _, line := range dp.Lines {
		fmt.Fprintf(w, "  %dx %-28s %8.2f\n", line.Quantity, line.CardName, line.Total)
	}
	if len(dp.Missing) > 0 {
		fmt.Fprintf(w, "\nNo price data: %s\n", strings.Join(dp.Missing, ", "))
	}
}

// printSnapshot writes the meta snapshot summary.
func printSnapshot(w io.Writer, snap *meta.Snapshot) {
	header(w, fmt.Sprintf("Meta Snapshot %s (%s)", snap.Version, snap.Format))
	for _, arch := range snap.Archetypes {
		fmt.Fprintf(w, "  T%d  %-24s %4.1f%% share  %s\n", arch.Tier, arch.Name, arch.Share, arch.Style)
	}
	if len(snap.MetaCards) > 0 {
		fmt.Fprintf(w, "\nStaples: %s\n", strings.Join(snap.MetaCards, ", "))
	}
}

// Package archetype places a deck in the current metagame: which known
// archetype it is, how well it fits the format, and its expected matchups
// against the reference field.
package archetype

import (
	"fmt"
	"sort"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
	"github.com/deckforge/ptcg-analyzer/internal/meta"
)

// acceptThreshold is the minimum key-card match percentage to identify the
// deck as a known archetype.
const acceptThreshold = 60

// Match is the archetype identification for a deck.
type Match struct {
	Name         string     `json:"name"`
	Style        meta.Style `json:"style"`
	MatchPercent float64    `json:"match_percent"` // 0-100 against key cards

	// Structural is set when no known archetype cleared the threshold and
	// the name was derived from the deck's composition instead.
	Structural bool `json:"structural,omitempty"`
}

// Matchup is the expected result against one reference archetype.
type Matchup struct {
	Opponent string   `json:"opponent"`
	Tier     int      `json:"tier"`
	Share    float64  `json:"share"`
	WinRate  float64  `json:"win_rate"` // percent, clamped 20-80
	Notes    []string `json:"notes,omitempty"`
}

// Evaluation is the full metagame placement of a deck.
type Evaluation struct {
	Match    Match     `json:"match"`
	Matchups []Matchup `json:"matchups"`

	// WeightedWinRate is the meta-share weighted expected win rate.
	WeightedWinRate float64 `json:"weighted_win_rate"`
	// MetaFit maps the weighted win rate onto 0-100.
	MetaFit float64 `json:"meta_fit"`

	SnapshotVersion string `json:"snapshot_version"`
}

// Evaluate identifies the deck and computes its matchup spread against every
// archetype in the snapshot.
func Evaluate(deck *cards.Deck, classifications map[string]*classify.CardClassification, snap *meta.Snapshot) *Evaluation {
	ev := &Evaluation{}
	if snap == nil || deck == nil {
		ev.Match = Match{Name: "Unknown", Style: meta.StyleMidrange, Structural: true}
		ev.MetaFit = 50
		ev.WeightedWinRate = 50
		return ev
	}
	ev.SnapshotVersion = snap.Version

	profile := profileDeck(deck, classifications)
	ev.Match = identify(profile, snap)

	shareSum, weighted := 0.0, 0.0
	for i := range snap.Archetypes {
		opp := &snap.Archetypes[i]
		m := evaluateMatchup(profile, ev.Match, opp)
		ev.Matchups = append(ev.Matchups, m)
		if opp.Share > 0 {
			shareSum += opp.Share
			weighted += m.WinRate * opp.Share
		}
	}
	sort.SliceStable(ev.Matchups, func(i, j int) bool {
		if ev.Matchups[i].Share != ev.Matchups[j].Share {
			return ev.Matchups[i].Share > ev.Matchups[j].Share
		}
		return ev.Matchups[i].Opponent < ev.Matchups[j].Opponent
	})

	if shareSum > 0 {
		ev.WeightedWinRate = weighted / shareSum
	} else {
		ev.WeightedWinRate = 50
	}
	// Map the clamped 20-80 win-rate band onto 0-100.
	ev.MetaFit = clamp((ev.WeightedWinRate-winRateFloor)/(winRateCeil-winRateFloor)*100, 0, 100)
	return ev
}

// identify matches the deck's card names against each archetype's key cards
// and falls back to a structural read when nothing clears the threshold.
func identify(p *deckProfile, snap *meta.Snapshot) Match {
	best := Match{MatchPercent: -1}
	for _, a := range snap.Archetypes {
		hits := 0
		for _, key := range a.KeyCards {
			if p.names[key] {
				hits++
			}
		}
		pct := float64(hits) / float64(len(a.KeyCards)) * 100
		if pct > best.MatchPercent {
			best = Match{Name: a.Name, Style: a.Style, MatchPercent: pct}
		}
	}

	if best.MatchPercent >= acceptThreshold {
		return best
	}
	return structuralMatch(p, best.MatchPercent)
}

// structuralMatch derives an archetype label from deck composition when no
// known list matches.
func structuralMatch(p *deckProfile, bestPct float64) Match {
	m := Match{Structural: true, MatchPercent: bestPct}
	if m.MatchPercent < 0 {
		m.MatchPercent = 0
	}
	switch {
	case p.disruption >= 8:
		m.Name = "Rogue Control"
		m.Style = meta.StyleControl
	case p.mainAttackerCopies >= 4:
		m.Name = "Rogue Aggro"
		m.Style = meta.StyleAggro
	default:
		m.Name = "Rogue Midrange"
		m.Style = meta.StyleMidrange
	}
	return m
}

// deckProfile is the composition summary the matchup math runs on.
type deckProfile struct {
	names              map[string]bool
	attackTypes        map[string]bool
	disruption         int
	mainAttackerCopies int
	setupTurns         float64
	avgPrizeLiability  float64
}

func profileDeck(deck *cards.Deck, classifications map[string]*classify.CardClassification) *deckProfile {
	p := &deckProfile{
		names:       make(map[string]bool),
		attackTypes: make(map[string]bool),
	}

	type attacker struct {
		speed classify.SetupSpeed
		prize int
		qty   int
	}
	var attackers []attacker

	for _, e := range deck.Normalize().Entries {
		if e.Card == nil {
			continue
		}
		p.names[e.Card.Name] = true

		c, ok := classifications[e.Card.ID]
		if !ok || c == nil {
			continue
		}
		if c.TrainerType == classify.TrainerDisruption {
			p.disruption += e.Quantity
		}
		if c.Role == classify.RoleMainAttacker {
			p.mainAttackerCopies += e.Quantity
			for _, t := range e.Card.Types {
				p.attackTypes[t] = true
			}
			attackers = append(attackers, attacker{
				speed: c.SetupSpeed,
				prize: e.Card.PrizeValue(),
				qty:   e.Quantity,
			})
		}
	}

	turns := map[classify.SetupSpeed]float64{
		classify.SpeedTurbo:  1,
		classify.SpeedFast:   2,
		classify.SpeedMedium: 2.5,
		classify.SpeedSlow:   3.5,
	}
	sumTurns, sumPrize, copies := 0.0, 0.0, 0
	for _, a := range attackers {
		sumTurns += turns[a.speed] * float64(a.qty)
		sumPrize += float64(a.prize) * float64(a.qty)
		copies += a.qty
	}
	if copies > 0 {
		p.setupTurns = sumTurns / float64(copies)
		p.avgPrizeLiability = sumPrize / float64(copies)
	} else {
		p.setupTurns = 3
		p.avgPrizeLiability = 1
	}
	return p
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

// Describe renders a short human-readable summary of the identification.
func (m Match) Describe() string {
	if m.Structural {
		return fmt.Sprintf("%s (no known archetype above %d%% match)", m.Name, acceptThreshold)
	}
	return fmt.Sprintf("%s (%.0f%% key-card match)", m.Name, m.MatchPercent)
}

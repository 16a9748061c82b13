package archetype

import (
	"fmt"

	"github.com/deckforge/ptcg-analyzer/internal/meta"
)

// Win rates stay inside this band: no matchup is ever hopeless or free.
const (
	winRateFloor = 20.0
	winRateCeil  = 80.0
)

// typeBeats maps an attacking energy type to the defending types it commonly
// hits for weakness.
var typeBeats = map[string][]string{
	"Fire":      {"Grass", "Metal"},
	"Water":     {"Fire"},
	"Lightning": {"Water", "Colorless"},
	"Fighting":  {"Lightning", "Darkness"},
	"Psychic":   {"Fighting"},
	"Darkness":  {"Psychic"},
	"Grass":     {"Water"},
	"Metal":     {"Fairy"},
	"Dragon":    {},
	"Colorless": {},
}

// styleBeats encodes the archetype wheel: aggro races combo, combo goes over
// control, control starves aggro. Turbo counts as aggro.
var styleBeats = map[meta.Style][]meta.Style{
	meta.StyleAggro:   {meta.StyleCombo},
	meta.StyleTurbo:   {meta.StyleCombo},
	meta.StyleCombo:   {meta.StyleControl},
	meta.StyleControl: {meta.StyleAggro, meta.StyleTurbo},
}

// evaluateMatchup estimates the win rate against one reference archetype.
// Every adjustment is bounded and the total is clamped into the 20-80 band.
func evaluateMatchup(p *deckProfile, own Match, opp *meta.Archetype) Matchup {
	m := Matchup{
		Opponent: opp.Name,
		Tier:     opp.Tier,
		Share:    opp.Share,
	}
	rate := 50.0

	// Type advantage, both directions.
	if adv := typeAdvantage(p.attackTypes, opp.Types); adv != 0 {
		rate += adv
		if adv > 0 {
			m.Notes = append(m.Notes, "type advantage against "+opp.Name)
		} else {
			m.Notes = append(m.Notes, "type disadvantage against "+opp.Name)
		}
	}

	// Speed: each full turn of setup lead is worth about 10 points.
	if diff := opp.SetupTurns - p.setupTurns; diff != 0 {
		delta := clamp(diff*10, -15, 15)
		rate += delta
		if delta >= 5 {
			m.Notes = append(m.Notes, fmt.Sprintf("sets up %.1f turns faster", diff))
		} else if delta <= -5 {
			m.Notes = append(m.Notes, fmt.Sprintf("sets up %.1f turns slower", -diff))
		}
	}

	// Dedicated counter cards.
	counters := 0
	for _, c := range opp.CounterCards {
		if p.names[c] {
			counters++
		}
	}
	if counters > 0 {
		rate += clamp(float64(counters)*6, 0, 12)
		m.Notes = append(m.Notes, fmt.Sprintf("plays %d counter cards", counters))
	}

	// Archetype wheel.
	if styleWins(own.Style, opp.Style) {
		rate += 5
		m.Notes = append(m.Notes, string(own.Style)+" is favored against "+string(opp.Style))
	} else if styleWins(opp.Style, own.Style) {
		rate -= 5
		m.Notes = append(m.Notes, string(opp.Style)+" is favored against "+string(own.Style))
	}

	// Prize trade: giving up fewer prizes per KO than the opponent concedes
	// wins long games.
	if diff := opp.AvgPrizesPerKO - p.avgPrizeLiability; diff != 0 {
		rate += clamp(diff*5, -10, 10)
		if diff >= 0.8 {
			m.Notes = append(m.Notes, "favorable prize trade")
		} else if diff <= -0.8 {
			m.Notes = append(m.Notes, "unfavorable prize trade")
		}
	}

	m.WinRate = clamp(rate, winRateFloor, winRateCeil)
	return m
}

// typeAdvantage returns +8 when any of ours hits any of theirs for weakness,
// -8 for the reverse, 0 when both or neither apply.
func typeAdvantage(ours map[string]bool, theirs []string) float64 {
	hitThem, hitUs := false, false
	for t := range ours {
		for _, beaten := range typeBeats[t] {
			for _, opp := range theirs {
				if opp == beaten {
					hitThem = true
				}
			}
		}
	}
	for _, t := range theirs {
		for _, beaten := range typeBeats[t] {
			if ours[beaten] {
				hitUs = true
			}
		}
	}
	switch {
	case hitThem && !hitUs:
		return 8
	case hitUs && !hitThem:
		return -8
	default:
		return 0
	}
}

func styleWins(a, b meta.Style) bool {
	for _, beaten := range styleBeats[a] {
		if beaten == b {
			return true
		}
	}
	return false
}

package scoring

import (
	"fmt"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/prob"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// deckCounts caches the per-deck aggregates most factors share.
type deckCounts struct {
	total         int
	basics        int
	energy        int
	drawTrainers  int
	searchTrainer int
	accelTrainers int
	switchCards   int
	recoveryCards int
	techCards     int
	degraded      int

	mainAttackers   []scoredEntry
	abilitySupports []scoredEntry
	attackers       []scoredEntry // any Pokémon with a damaging attack
}

type scoredEntry struct {
	card  *cards.CardFace
	qty   int
	class *classify.CardClassification
}

func gather(in Input) *deckCounts {
	dc := &deckCounts{}
	if in.Deck == nil {
		return dc
	}
	dc.total = in.Deck.TotalCards()

	class := func(id string) *classify.CardClassification {
		if c, ok := in.Classifications[id]; ok && c != nil {
			return c
		}
		return &classify.CardClassification{Category: classify.CategoryUnknown, PowerLevel: 1, Degraded: true}
	}

	for _, e := range in.Deck.Entries {
		if e.Card == nil {
			continue
		}
		c := class(e.Card.ID)
		if c.Degraded {
			dc.degraded += e.Quantity
		}
		if c.HasTag("tech") {
			dc.techCards += e.Quantity
		}

		switch c.Category {
		case classify.CategoryPokemon:
			if e.Card.IsBasic() {
				dc.basics += e.Quantity
			}
			se := scoredEntry{card: e.Card, qty: e.Quantity, class: c}
			if e.Card.MaxDamage() > 0 {
				dc.attackers = append(dc.attackers, se)
			}
			switch c.Role {
			case classify.RoleMainAttacker:
				dc.mainAttackers = append(dc.mainAttackers, se)
			case classify.RoleAbilitySupport:
				dc.abilitySupports = append(dc.abilitySupports, se)
			}
		case classify.CategoryTrainer:
			switch c.TrainerType {
			case classify.TrainerDraw:
				dc.drawTrainers += e.Quantity
			case classify.TrainerSearch:
				dc.searchTrainer += e.Quantity
			case classify.TrainerEnergyAccel:
				dc.accelTrainers += e.Quantity
			case classify.TrainerSwitch:
				dc.switchCards += e.Quantity
			case classify.TrainerRecovery:
				dc.recoveryCards += e.Quantity
			}
		case classify.CategoryEnergy:
			dc.energy += e.Quantity
		}
	}
	return dc
}

// buildFactors produces the full factor list in a fixed order.
func buildFactors(in Input) []Factor {
	dc := gather(in)

	factors := []Factor{
		mulliganFactor(dc),
		drawSupportFactor(dc),
		searchSupportFactor(dc),
		evolutionFactor(in),
		energyRatioFactor(dc),

		attackerQualityFactor(dc),
		damageCeilingFactor(dc),
		prizeTradeFactor(dc),
		benchSupportFactor(dc),

		setupSpeedFactor(dc),
		accelerationFactor(dc),
		openerFactor(dc),
		firstAttackFactor(dc, in),

		costFlexibilityFactor(dc),
		typeCoverageFactor(dc),
		mobilityFactor(dc),
		recoveryFactor(dc),
		techFactor(dc),

		synergyFactor(in),
		metaStaplesFactor(in),
		counterCoverageFactor(in),
		speedVsMetaFactor(dc, in),
	}

	// Cards the classifier could not recognize lower confidence everywhere.
	if dc.total > 0 && dc.degraded > 0 {
		penalty := 1 - float64(dc.degraded)/float64(dc.total)
		for i := range factors {
			factors[i].Confidence *= penalty
		}
	}
	return factors
}

// Consistency factors.

func mulliganFactor(dc *deckCounts) Factor {
	p := prob.MulliganProbability(dc.basics, dc.total, prob.HandSize)
	score := clamp(100-p*200, 0, 100)
	return Factor{
		Name:       "mulligan rate",
		Category:   CategoryConsistency,
		Score:      score,
		Weight:     0.30,
		Confidence: 0.95,
		Details: []string{
			fmt.Sprintf("%d Basic Pokémon, %.1f%% chance of a no-basic opening hand", dc.basics, p*100),
		},
	}
}

func drawSupportFactor(dc *deckCounts) Factor {
	// 8+ dedicated draw cards is the consistency baseline; 12 is excellent.
	score := clamp(float64(dc.drawTrainers)/12*100, 0, 100)
	return Factor{
		Name:       "draw support",
		Category:   CategoryConsistency,
		Score:      score,
		Weight:     0.25,
		Confidence: 0.9,
		Details:    []string{fmt.Sprintf("%d draw trainers", dc.drawTrainers)},
	}
}

func searchSupportFactor(dc *deckCounts) Factor {
	score := clamp(float64(dc.searchTrainer)/10*100, 0, 100)
	return Factor{
		Name:       "search support",
		Category:   CategoryConsistency,
		Score:      score,
		Weight:     0.15,
		Confidence: 0.9,
		Details:    []string{fmt.Sprintf("%d search trainers", dc.searchTrainer)},
	}
}

func evolutionFactor(in Input) Factor {
	f := Factor{
		Name:       "evolution lines",
		Category:   CategoryConsistency,
		Weight:     0.20,
		Confidence: 0.85,
	}
	if in.Evolution == nil || len(in.Evolution.Lines) == 0 {
		// All-basic decks skip evolution risk entirely.
		f.Score = 85
		f.Details = []string{"no evolution lines to disrupt"}
		return f
	}
	f.Score = clamp(in.Evolution.AverageConsistency, 0, 100)
	f.Details = []string{fmt.Sprintf("%d lines, average consistency %.0f",
		len(in.Evolution.Lines), in.Evolution.AverageConsistency)}
	if in.Evolution.IncompleteLines > 0 {
		f.Confidence = 0.7
		f.Details = append(f.Details,
			fmt.Sprintf("%d incomplete lines", in.Evolution.IncompleteLines))
	}
	return f
}

func energyRatioFactor(dc *deckCounts) Factor {
	f := Factor{
		Name:       "energy count",
		Category:   CategoryConsistency,
		Weight:     0.10,
		Confidence: 0.8,
	}
	// Ideal energy count scales with the attackers' costs: roughly 4 cards
	// per point of the heaviest common attack cost, floor 8.
	ideal := 8.0
	if cost := maxMinAttackCost(dc); cost > 2 {
		ideal = float64(cost) * 4
	}
	ratio := float64(dc.energy) / ideal
	switch {
	case ratio >= 0.8 && ratio <= 1.5:
		f.Score = 90
	case ratio >= 0.5:
		f.Score = 65
	case dc.energy == 0 && len(dc.attackers) == 0:
		f.Score = 80 // trainer-lock shells run no attackers
	default:
		f.Score = 35
	}
	f.Details = []string{fmt.Sprintf("%d energy, ideal around %.0f", dc.energy, ideal)}
	return f
}

func maxMinAttackCost(dc *deckCounts) int {
	max := 0
	for _, a := range dc.mainAttackers {
		if c := a.card.MinAttackCost(); c > max {
			max = c
		}
	}
	return max
}

// Power factors.

func attackerQualityFactor(dc *deckCounts) Factor {
	f := Factor{
		Name:       "attacker quality",
		Category:   CategoryPower,
		Weight:     0.35,
		Confidence: 0.85,
	}
	if len(dc.mainAttackers) == 0 {
		f.Score = 10
		f.Details = []string{"no main attackers identified"}
		return f
	}
	sum := 0.0
	for _, a := range dc.mainAttackers {
		sum += float64(a.class.PowerLevel)
	}
	f.Score = clamp(sum/float64(len(dc.mainAttackers))*10, 0, 100)
	f.Details = []string{fmt.Sprintf("%d main attackers, average power %.1f/10",
		len(dc.mainAttackers), sum/float64(len(dc.mainAttackers)))}
	return f
}

func damageCeilingFactor(dc *deckCounts) Factor {
	best := 0
	name := ""
	for _, a := range dc.attackers {
		if d := a.card.MaxDamage(); d > best {
			best = d
			name = a.card.Name
		}
	}
	// 280 one-shots a VSTAR; that is the ceiling that matters.
	score := clamp(float64(best)/280*100, 0, 100)
	f := Factor{
		Name:       "damage ceiling",
		Category:   CategoryPower,
		Score:      score,
		Weight:     0.30,
		Confidence: 0.9,
	}
	if best > 0 {
		f.Details = []string{fmt.Sprintf("%s hits for up to %d", name, best)}
	} else {
		f.Details = []string{"no damaging attacks"}
	}
	return f
}

func prizeTradeFactor(dc *deckCounts) Factor {
	f := Factor{
		Name:       "prize trade",
		Category:   CategoryPower,
		Weight:     0.20,
		Confidence: 0.8,
	}
	if len(dc.attackers) == 0 {
		f.Score = 50
		f.Details = []string{"no attackers to trade with"}
		return f
	}
	// Single-prize attackers trade up; multi-prize bodies concede ground.
	copies, singles := 0, 0
	for _, a := range dc.attackers {
		copies += a.qty
		if a.card.PrizeValue() == 1 {
			singles += a.qty
		}
	}
	share := float64(singles) / float64(copies)
	f.Score = clamp(40+share*60, 0, 100)
	f.Details = []string{fmt.Sprintf("%.0f%% of attacker copies give up a single prize", share*100)}
	return f
}

func benchSupportFactor(dc *deckCounts) Factor {
	f := Factor{
		Name:       "ability support",
		Category:   CategoryPower,
		Weight:     0.15,
		Confidence: 0.85,
	}
	if len(dc.abilitySupports) == 0 {
		f.Score = 30
		f.Details = []string{"no ability-based support Pokémon"}
		return f
	}
	sum, copies := 0.0, 0
	for _, a := range dc.abilitySupports {
		sum += float64(a.class.PowerLevel) * float64(a.qty)
		copies += a.qty
	}
	f.Score = clamp(sum/float64(copies)*10, 0, 100)
	f.Details = []string{fmt.Sprintf("%d ability support copies", copies)}
	return f
}

// Speed factors.

var speedValue = map[classify.SetupSpeed]float64{
	classify.SpeedTurbo:  100,
	classify.SpeedFast:   75,
	classify.SpeedMedium: 50,
	classify.SpeedSlow:   25,
}

func setupSpeedFactor(dc *deckCounts) Factor {
	f := Factor{
		Name:       "setup speed",
		Category:   CategorySpeed,
		Weight:     0.35,
		Confidence: 0.85,
	}
	if len(dc.mainAttackers) == 0 {
		f.Score = 30
		f.Details = []string{"no main attackers to bring online"}
		return f
	}
	sum, copies := 0.0, 0
	for _, a := range dc.mainAttackers {
		sum += speedValue[a.class.SetupSpeed] * float64(a.qty)
		copies += a.qty
	}
	f.Score = clamp(sum/float64(copies), 0, 100)
	f.Details = []string{fmt.Sprintf("weighted attacker setup speed across %d copies", copies)}
	return f
}

func accelerationFactor(dc *deckCounts) Factor {
	accel := dc.accelTrainers
	for _, a := range dc.abilitySupports {
		if a.class.HasTag("energy-accel") {
			accel += a.qty
		}
	}
	score := clamp(float64(accel)/6*100, 0, 100)
	return Factor{
		Name:       "energy acceleration",
		Category:   CategorySpeed,
		Score:      score,
		Weight:     0.30,
		Confidence: 0.85,
		Details:    []string{fmt.Sprintf("%d acceleration sources", accel)},
	}
}

func openerFactor(dc *deckCounts) Factor {
	p := prob.ByTurn(dc.basics, dc.total, 1)
	return Factor{
		Name:       "opening basics",
		Category:   CategorySpeed,
		Score:      clamp(p*100, 0, 100),
		Weight:     0.20,
		Confidence: 0.95,
		Details:    []string{fmt.Sprintf("%.0f%% chance of a turn-1 Basic", p*100)},
	}
}

func firstAttackFactor(dc *deckCounts, in Input) Factor {
	f := Factor{
		Name:       "attack cost curve",
		Category:   CategorySpeed,
		Weight:     0.15,
		Confidence: 0.8,
	}
	if len(dc.attackers) == 0 {
		f.Score = 30
		f.Details = []string{"no attacks to cost"}
		return f
	}
	sum, copies := 0.0, 0
	for _, a := range dc.attackers {
		sum += float64(a.card.MinAttackCost()) * float64(a.qty)
		copies += a.qty
	}
	avg := sum / float64(copies)
	baseline := 2.2
	if in.Meta != nil && in.Meta.AvgAttackCost > 0 {
		baseline = in.Meta.AvgAttackCost
	}
	// One full energy cheaper than the format baseline is worth 30 points.
	f.Score = clamp(70+(baseline-avg)*30, 0, 100)
	f.Details = []string{fmt.Sprintf("average minimum attack cost %.1f vs format %.1f", avg, baseline)}
	return f
}

// Versatility factors.

func costFlexibilityFactor(dc *deckCounts) Factor {
	f := Factor{
		Name:       "attack cost flexibility",
		Category:   CategoryVersatility,
		Weight:     0.25,
		Confidence: 0.8,
	}
	total, colorless := 0, 0
	for _, a := range dc.attackers {
		for _, atk := range a.card.Attacks {
			for _, c := range atk.Cost {
				total++
				if c == "Colorless" {
					colorless++
				}
			}
		}
	}
	if total == 0 {
		f.Score = 30
		f.Details = []string{"no attack costs to flex"}
		return f
	}
	share := float64(colorless) / float64(total)
	f.Score = clamp(30+share*70, 0, 100)
	f.Details = []string{fmt.Sprintf("%.0f%% of attack cost pips are Colorless", share*100)}
	return f
}

func typeCoverageFactor(dc *deckCounts) Factor {
	types := make(map[string]bool)
	for _, a := range dc.attackers {
		for _, t := range a.card.Types {
			types[t] = true
		}
	}
	score := 30.0
	switch len(types) {
	case 0:
		score = 20
	case 1:
		score = 50
	case 2:
		score = 80
	default:
		score = 95
	}
	return Factor{
		Name:       "type coverage",
		Category:   CategoryVersatility,
		Score:      score,
		Weight:     0.20,
		Confidence: 0.85,
		Details:    []string{fmt.Sprintf("attackers span %d energy types", len(types))},
	}
}

func mobilityFactor(dc *deckCounts) Factor {
	score := clamp(float64(dc.switchCards)/4*100, 0, 100)
	return Factor{
		Name:       "switching",
		Category:   CategoryVersatility,
		Score:      score,
		Weight:     0.20,
		Confidence: 0.9,
		Details:    []string{fmt.Sprintf("%d switching cards", dc.switchCards)},
	}
}

func recoveryFactor(dc *deckCounts) Factor {
	score := clamp(float64(dc.recoveryCards)/3*100, 0, 100)
	return Factor{
		Name:       "recovery",
		Category:   CategoryVersatility,
		Score:      score,
		Weight:     0.15,
		Confidence: 0.9,
		Details:    []string{fmt.Sprintf("%d recovery cards", dc.recoveryCards)},
	}
}

func techFactor(dc *deckCounts) Factor {
	score := clamp(30+float64(dc.techCards)*15, 0, 100)
	return Factor{
		Name:       "tech cards",
		Category:   CategoryVersatility,
		Score:      score,
		Weight:     0.20,
		Confidence: 0.75,
		Details:    []string{fmt.Sprintf("%d tech card copies", dc.techCards)},
	}
}

// Meta factors.

func synergyFactor(in Input) Factor {
	f := Factor{
		Name:       "internal synergy",
		Category:   CategoryMeta,
		Weight:     0.25,
		Confidence: 0.8,
	}
	if in.Synergy == nil {
		f.Score = 50
		f.Confidence = 0.4
		f.Details = []string{"synergy graph unavailable"}
		return f
	}
	f.Score = clamp(in.Synergy.OverallScore, 0, 100)
	f.Details = []string{fmt.Sprintf("synergy graph score %.0f, %d clusters",
		in.Synergy.OverallScore, len(in.Synergy.Clusters))}
	return f
}

func metaStaplesFactor(in Input) Factor {
	f := Factor{
		Name:       "meta staples",
		Category:   CategoryMeta,
		Weight:     0.30,
		Confidence: 0.85,
	}
	if in.Meta == nil || in.Deck == nil {
		f.Score = 50
		f.Confidence = 0.4
		f.Details = []string{"no metagame snapshot available"}
		return f
	}
	staples := 0
	for _, e := range in.Deck.Normalize().Entries {
		if e.Card != nil && in.Meta.IsMetaCard(e.Card.Name) {
			staples++
		}
	}
	f.Score = clamp(float64(staples)/6*100, 0, 100)
	f.Details = []string{fmt.Sprintf("%d distinct format staples", staples)}
	return f
}

func counterCoverageFactor(in Input) Factor {
	f := Factor{
		Name:       "counter coverage",
		Category:   CategoryMeta,
		Weight:     0.25,
		Confidence: 0.75,
	}
	if in.Meta == nil || in.Deck == nil {
		f.Score = 50
		f.Confidence = 0.4
		f.Details = []string{"no metagame snapshot available"}
		return f
	}
	covered := 0
	top := 0
	for _, a := range in.Meta.Archetypes {
		if a.Tier > 2 {
			continue
		}
		top++
		for _, counter := range a.CounterCards {
			if in.Deck.HasCardNamed(counter) {
				covered++
				break
			}
		}
	}
	if top == 0 {
		f.Score = 50
		return f
	}
	f.Score = clamp(float64(covered)/float64(top)*100, 0, 100)
	f.Details = []string{fmt.Sprintf("answers for %d of %d tier 1-2 archetypes", covered, top)}
	return f
}

func speedVsMetaFactor(dc *deckCounts, in Input) Factor {
	f := Factor{
		Name:       "pace versus format",
		Category:   CategoryMeta,
		Weight:     0.20,
		Confidence: 0.7,
	}
	if in.Meta == nil || len(dc.mainAttackers) == 0 {
		f.Score = 50
		f.Confidence = 0.4
		f.Details = []string{"insufficient data to compare pace"}
		return f
	}
	// Fastest tier-1 archetype sets the tempo the deck must live with.
	fastest := 99.0
	for _, a := range in.Meta.Archetypes {
		if a.Tier == 1 && a.SetupTurns < fastest {
			fastest = a.SetupTurns
		}
	}
	if fastest == 99 {
		f.Score = 50
		return f
	}
	own := ownSetupTurns(dc)
	f.Score = clamp(70+(fastest-own)*25, 0, 100)
	f.Details = []string{fmt.Sprintf("estimated setup %.1f turns vs fastest tier 1 at %.1f", own, fastest)}
	return f
}

// ownSetupTurns estimates the deck's turns-to-first-attack from its main
// attackers' speed buckets.
func ownSetupTurns(dc *deckCounts) float64 {
	turns := map[classify.SetupSpeed]float64{
		classify.SpeedTurbo:  1,
		classify.SpeedFast:   2,
		classify.SpeedMedium: 2.5,
		classify.SpeedSlow:   3.5,
	}
	sum, copies := 0.0, 0
	for _, a := range dc.mainAttackers {
		sum += turns[a.class.SetupSpeed] * float64(a.qty)
		copies += a.qty
	}
	if copies == 0 {
		return 3
	}
	return sum / float64(copies)
}

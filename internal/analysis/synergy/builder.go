package synergy

import (
	"fmt"
	"sort"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// Edges below this strength do not bind cards into clusters.
const clusterEdgeThreshold = 60

// Clusters whose summed member impact falls below this are not counted as
// win conditions.
const clusterImpactThreshold = 40

// Build constructs the synergy graph for a deck. classifications must cover
// the deck's cards; missing entries are classified as degraded on the fly.
func Build(deck *cards.Deck, classifications map[string]*classify.CardClassification) *Graph {
	g := &Graph{Nodes: deck.CardIDs()}
	if len(g.Nodes) == 0 {
		g.OverallScore = 0
		return g
	}

	entries := normalizedEntries(deck)
	byID := make(map[string]cards.DeckEntry, len(entries))
	for _, e := range entries {
		byID[e.Card.ID] = e
	}

	addEdge := func(e Edge) {
		// Endpoints must be deck members.
		if _, ok := byID[e.Source]; !ok {
			return
		}
		if _, ok := byID[e.Target]; !ok {
			return
		}
		if e.Source == e.Target {
			return
		}
		for _, existing := range g.Edges {
			if existing.Source == e.Source && existing.Target == e.Target && existing.Relation == e.Relation {
				return
			}
		}
		g.Edges = append(g.Edges, e)
	}

	class := func(id string) *classify.CardClassification {
		if c, ok := classifications[id]; ok && c != nil {
			return c
		}
		return &classify.CardClassification{Category: classify.CategoryUnknown, PowerLevel: 1, Degraded: true}
	}

	buildNamedCombos(entries, addEdge)
	buildEvolutionEdges(entries, addEdge)
	buildTrainerEdges(entries, class, addEdge)
	buildEnergyEdges(entries, class, addEdge)
	buildTagEdges(entries, class, addEdge)
	buildAntiSynergies(entries, class, addEdge)

	g.Clusters = findClusters(g, byID, class)
	g.OverallScore = overallScore(g, len(entries))
	return g
}

func normalizedEntries(deck *cards.Deck) []cards.DeckEntry {
	n := deck.Normalize()
	out := make([]cards.DeckEntry, 0, len(n.Entries))
	for _, e := range n.Entries {
		if e.Card != nil {
			out = append(out, e)
		}
	}
	return out
}

// buildNamedCombos matches the curated combo list by card name.
func buildNamedCombos(entries []cards.DeckEntry, addEdge func(Edge)) {
	byName := make(map[string]string, len(entries)) // name -> id
	for _, e := range entries {
		if _, ok := byName[e.Card.Name]; !ok {
			byName[e.Card.Name] = e.Card.ID
		}
	}
	for _, combo := range knownCombos {
		idA, okA := byName[combo.a]
		idB, okB := byName[combo.b]
		if !okA || !okB {
			continue
		}
		addEdge(Edge{
			Source:      idA,
			Target:      idB,
			Strength:    combo.strength,
			Relation:    combo.relation,
			Description: combo.description,
		})
	}
}

// buildEvolutionEdges links pre-evolutions to the evolutions they enable.
func buildEvolutionEdges(entries []cards.DeckEntry, addEdge func(Edge)) {
	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Card.Supertype == cards.SupertypePokemon {
			byName[e.Card.Name] = e.Card.ID
		}
	}
	for _, e := range entries {
		if e.Card.EvolvesFrom == "" {
			continue
		}
		prevID, ok := byName[e.Card.EvolvesFrom]
		if !ok {
			continue
		}
		addEdge(Edge{
			Source:      prevID,
			Target:      e.Card.ID,
			Strength:    70,
			Relation:    RelationCombosWith,
			Description: fmt.Sprintf("%s evolves into %s", e.Card.EvolvesFrom, e.Card.Name),
		})
	}
}

// buildTrainerEdges links search and acceleration trainers to the Pokémon
// they serve.
func buildTrainerEdges(entries []cards.DeckEntry, class func(string) *classify.CardClassification, addEdge func(Edge)) {
	for _, t := range entries {
		tc := class(t.Card.ID)
		if tc.Category != classify.CategoryTrainer {
			continue
		}
		switch tc.TrainerType {
		case classify.TrainerSearch:
			for _, p := range entries {
				pc := class(p.Card.ID)
				if pc.Category != classify.CategoryPokemon {
					continue
				}
				if pc.Role != classify.RoleMainAttacker && pc.Role != classify.RoleAbilitySupport {
					continue
				}
				addEdge(Edge{
					Source:      t.Card.ID,
					Target:      p.Card.ID,
					Strength:    50,
					Relation:    RelationSearches,
					Description: fmt.Sprintf("%s finds %s", t.Card.Name, p.Card.Name),
				})
			}
		case classify.TrainerEnergyAccel:
			for _, p := range entries {
				pc := class(p.Card.ID)
				if pc.Category != classify.CategoryPokemon || p.Card.MinAttackCost() < 2 {
					continue
				}
				addEdge(Edge{
					Source:      t.Card.ID,
					Target:      p.Card.ID,
					Strength:    60,
					Relation:    RelationAccelerates,
					Description: fmt.Sprintf("%s powers up %s", t.Card.Name, p.Card.Name),
				})
			}
		}
	}
}

// buildEnergyEdges links energy cards to attackers whose costs they pay.
func buildEnergyEdges(entries []cards.DeckEntry, class func(string) *classify.CardClassification, addEdge func(Edge)) {
	for _, en := range entries {
		ec := class(en.Card.ID)
		if ec.Category != classify.CategoryEnergy {
			continue
		}
		provides := make(map[string]bool, len(ec.EnergyProvides))
		for _, t := range ec.EnergyProvides {
			provides[t] = true
		}
		multi := len(ec.EnergyProvides) > 1

		for _, p := range entries {
			pc := class(p.Card.ID)
			if pc.Category != classify.CategoryPokemon || pc.Role != classify.RoleMainAttacker {
				continue
			}
			if !energyMatches(p.Card, provides, multi) {
				continue
			}
			strength := 30.0
			if multi {
				strength = 55
			}
			addEdge(Edge{
				Source:      en.Card.ID,
				Target:      p.Card.ID,
				Strength:    strength,
				Relation:    RelationAccelerates,
				Description: fmt.Sprintf("%s pays for %s's attacks", en.Card.Name, p.Card.Name),
			})
		}
	}
}

func energyMatches(attacker *cards.CardFace, provides map[string]bool, multiUnit bool) bool {
	for _, a := range attacker.Attacks {
		for _, c := range a.Cost {
			if c == "Colorless" && (multiUnit || len(provides) > 0) {
				return true
			}
			if provides[c] {
				return true
			}
		}
	}
	return false
}

// buildTagEdges applies the generic heuristics: discard enablers pair with
// discard payoffs, Lost Zone feeders pair with Lost Zone payoffs, and draw
// engines support attackers.
func buildTagEdges(entries []cards.DeckEntry, class func(string) *classify.CardClassification, addEdge func(Edge)) {
	for _, a := range entries {
		ac := class(a.Card.ID)
		for _, b := range entries {
			if a.Card.ID == b.Card.ID {
				continue
			}
			bc := class(b.Card.ID)

			if ac.HasTag("discard-cost") && bc.HasTag("discard-payoff") {
				addEdge(Edge{
					Source:      a.Card.ID,
					Target:      b.Card.ID,
					Strength:    55,
					Relation:    RelationCombosWith,
					Description: fmt.Sprintf("%s fills the discard pile for %s", a.Card.Name, b.Card.Name),
				})
			}
			if ac.HasTag("lost-zone") && bc.HasTag("lost-zone") && a.Card.ID < b.Card.ID {
				addEdge(Edge{
					Source:      a.Card.ID,
					Target:      b.Card.ID,
					Strength:    65,
					Relation:    RelationCombosWith,
					Description: fmt.Sprintf("%s and %s build the Lost Zone together", a.Card.Name, b.Card.Name),
				})
			}
			if ac.Role == classify.RoleAbilitySupport && ac.HasTag("draw") && bc.Role == classify.RoleMainAttacker {
				addEdge(Edge{
					Source:      a.Card.ID,
					Target:      b.Card.ID,
					Strength:    45,
					Relation:    RelationCombosWith,
					Description: fmt.Sprintf("%s keeps cards flowing for %s", a.Card.Name, b.Card.Name),
				})
			}
		}
	}
}

// buildAntiSynergies flags cards that actively work against deckmates.
func buildAntiSynergies(entries []cards.DeckEntry, class func(string) *classify.CardClassification, addEdge func(Edge)) {
	for _, s := range entries {
		for _, conflict := range stadiumConflicts {
			if s.Card.Name != conflict.stadium {
				continue
			}
			for _, v := range entries {
				vc := class(v.Card.ID)
				hit := false
				if conflict.hitsRuleBox {
					hit = v.Card.Supertype == cards.SupertypePokemon &&
						v.Card.HasRuleBox() && len(v.Card.Abilities) > 0
				} else {
					hit = vc.SpecialEnergy
				}
				if !hit {
					continue
				}
				addEdge(Edge{
					Source:      s.Card.ID,
					Target:      v.Card.ID,
					Strength:    60,
					Relation:    RelationAntiSynergy,
					Description: conflict.description,
				})
			}
		}
	}
}

// findClusters groups cards connected by strong supportive edges and keeps
// groups whose summed impact clears the win-condition threshold. Impact is
// power level weighted by copy count.
func findClusters(g *Graph, byID map[string]cards.DeckEntry, class func(string) *classify.CardClassification) []Cluster {
	parent := make(map[string]string, len(g.Nodes))
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for _, n := range g.Nodes {
		parent[n] = n
	}
	for _, e := range g.Edges {
		if e.Relation == RelationAntiSynergy || e.Strength < clusterEdgeThreshold {
			continue
		}
		ra, rb := find(e.Source), find(e.Target)
		if ra != rb {
			parent[ra] = rb
		}
	}

	groups := make(map[string][]string)
	for _, n := range g.Nodes {
		root := find(n)
		groups[root] = append(groups[root], n)
	}

	var clusters []Cluster
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		impact := 0.0
		for _, id := range members {
			qty := byID[id].Quantity
			impact += float64(class(id).PowerLevel) * float64(qty)
		}
		if impact < clusterImpactThreshold {
			continue
		}
		sort.Strings(members)
		clusters = append(clusters, Cluster{CardIDs: members, Impact: impact})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Impact != clusters[j].Impact {
			return clusters[i].Impact > clusters[j].Impact
		}
		return clusters[i].CardIDs[0] < clusters[j].CardIDs[0]
	})
	return clusters
}

// overallScore normalizes edge density, mean strength and cluster count into
// a 0-100 cohesion score. Anti-synergy edges subtract.
func overallScore(g *Graph, distinctCards int) float64 {
	if distinctCards < 2 {
		return 0
	}
	maxPairs := float64(distinctCards * (distinctCards - 1) / 2)
	density := float64(g.EdgeCount()) / maxPairs
	if density > 1 {
		density = 1
	}

	score := 20.0
	score += density * 35
	score += g.MeanStrength() * 0.3
	score += float64(len(g.Clusters)) * 8
	score -= float64(g.AntiSynergyCount()) * 5

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

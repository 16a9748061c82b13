// Package synergy builds a weighted graph of supportive and antagonistic
// relationships between the cards of a deck and scores its overall cohesion.
package synergy

// Relation is the kind of relationship an edge expresses.
type Relation string

const (
	RelationSearches    Relation = "searches"
	RelationAccelerates Relation = "accelerates"
	RelationCombosWith  Relation = "combos-with"
	RelationCounters    Relation = "counters"
	RelationAntiSynergy Relation = "anti-synergy"
)

// Edge is a directed relationship between two cards in the deck. Strength is
// 0-100.
type Edge struct {
	Source      string   `json:"source"` // card id
	Target      string   `json:"target"` // card id
	Strength    float64  `json:"strength"`
	Relation    Relation `json:"relation"`
	Description string   `json:"description"`
}

// Cluster is a connected group of strongly linked cards; each cluster is a
// candidate win condition.
type Cluster struct {
	CardIDs []string `json:"card_ids"`
	Impact  float64  `json:"impact"`
}

// Graph is the synergy graph for one deck, rebuilt fresh per call.
type Graph struct {
	Nodes        []string  `json:"nodes"` // distinct card ids in deck order
	Edges        []Edge    `json:"edges"`
	Clusters     []Cluster `json:"clusters"`
	OverallScore float64   `json:"overall_score"` // 0-100
}

// EdgeCount returns the number of supportive (non-antagonistic) edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, e := range g.Edges {
		if e.Relation != RelationAntiSynergy {
			n++
		}
	}
	return n
}

// AntiSynergyCount returns the number of antagonistic edges.
func (g *Graph) AntiSynergyCount() int {
	return len(g.Edges) - g.EdgeCount()
}

// MeanStrength returns the average strength of supportive edges, 0 when
// there are none.
func (g *Graph) MeanStrength() float64 {
	sum, n := 0.0, 0
	for _, e := range g.Edges {
		if e.Relation == RelationAntiSynergy {
			continue
		}
		sum += e.Strength
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

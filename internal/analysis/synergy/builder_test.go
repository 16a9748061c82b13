package synergy

import (
	"testing"

	"github.com/deckforge/ptcg-analyzer/internal/analysis/classify"
	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

func classifyDeck(t *testing.T, deck *cards.Deck) map[string]*classify.CardClassification {
	t.Helper()
	return classify.NewClassifier(nil, nil).ClassifyDeck(deck)
}

func charizardDeck() *cards.Deck {
	return &cards.Deck{Entries: []cards.DeckEntry{
		{Card: &cards.CardFace{
			ID: "sv3-26", Name: "Charmander", Supertype: cards.SupertypePokemon,
			Subtypes: []string{"Basic"}, HP: 70,
		}, Quantity: 4},
		{Card: &cards.CardFace{
			ID: "sv3-27", Name: "Charmeleon", Supertype: cards.SupertypePokemon,
			Subtypes: []string{"Stage 1"}, EvolvesFrom: "Charmander", HP: 100,
		}, Quantity: 1},
		{Card: &cards.CardFace{
			ID: "sv3-125", Name: "Charizard ex", Supertype: cards.SupertypePokemon,
			Subtypes: []string{"Stage 2", "ex"}, EvolvesFrom: "Charmeleon", HP: 330,
			Attacks:   []cards.AttackSpec{{Name: "Burning Darkness", Cost: []string{"Fire", "Fire"}, Damage: "180+"}},
			Abilities: []cards.AbilitySpec{{Name: "Infernal Reign", Text: "Attach up to 3 Basic Fire Energy from your deck."}},
		}, Quantity: 3},
		{Card: &cards.CardFace{
			ID: "sv3-164", Name: "Pidgeot ex", Supertype: cards.SupertypePokemon,
			Subtypes: []string{"Stage 2", "ex"}, EvolvesFrom: "Pidgeotto", HP: 280,
			Abilities: []cards.AbilitySpec{{Name: "Quick Search", Text: "Once during your turn, you may search your deck for a card and put it into your hand."}},
		}, Quantity: 2},
		{Card: &cards.CardFace{
			ID: "svi-191", Name: "Rare Candy", Supertype: cards.SupertypeTrainer,
			Subtypes: []string{"Item"},
			Rules:    []string{"Choose 1 of your Basic Pokémon in play. Put a Stage 2 card that evolves from it onto that Pokémon."},
		}, Quantity: 4},
		{Card: &cards.CardFace{
			ID: "svi-196", Name: "Ultra Ball", Supertype: cards.SupertypeTrainer,
			Subtypes: []string{"Item"},
		}, Quantity: 4},
		{Card: &cards.CardFace{
			ID: "sve-2", Name: "Basic Fire Energy", Supertype: cards.SupertypeEnergy,
			Subtypes: []string{"Basic"},
		}, Quantity: 10},
	}}
}

func TestBuild_EdgeEndpointsInDeck(t *testing.T) {
	deck := charizardDeck()
	g := Build(deck, classifyDeck(t, deck))

	inDeck := make(map[string]bool)
	for _, id := range deck.CardIDs() {
		inDeck[id] = true
	}
	for _, e := range g.Edges {
		if !inDeck[e.Source] || !inDeck[e.Target] {
			t.Errorf("edge %s -> %s references card not in deck", e.Source, e.Target)
		}
		if e.Strength < 0 || e.Strength > 100 {
			t.Errorf("edge strength out of range: %v", e.Strength)
		}
		if e.Source == e.Target {
			t.Errorf("self edge on %s", e.Source)
		}
	}
}

func TestBuild_KnownCombosAndEvolution(t *testing.T) {
	deck := charizardDeck()
	g := Build(deck, classifyDeck(t, deck))

	hasEdge := func(src, dst string, rel Relation) bool {
		for _, e := range g.Edges {
			if e.Source == src && e.Target == dst && e.Relation == rel {
				return true
			}
		}
		return false
	}

	// Curated combo: Charizard ex + Pidgeot ex.
	if !hasEdge("sv3-125", "sv3-164", RelationCombosWith) {
		t.Error("missing Charizard ex / Pidgeot ex combo edge")
	}
	// Curated combo: Charizard ex + Rare Candy.
	if !hasEdge("sv3-125", "svi-191", RelationAccelerates) {
		t.Error("missing Charizard ex / Rare Candy acceleration edge")
	}
	// Evolution edges.
	if !hasEdge("sv3-26", "sv3-27", RelationCombosWith) {
		t.Error("missing Charmander -> Charmeleon evolution edge")
	}
	// Search trainer reaches the main attacker.
	if !hasEdge("svi-196", "sv3-125", RelationSearches) {
		t.Error("missing Ultra Ball -> Charizard ex search edge")
	}
}

func TestBuild_AntiSynergy(t *testing.T) {
	deck := charizardDeck()
	deck.Entries = append(deck.Entries, cards.DeckEntry{
		Card: &cards.CardFace{
			ID: "cre-148", Name: "Path to the Peak", Supertype: cards.SupertypeTrainer,
			Subtypes: []string{"Stadium"},
		},
		Quantity: 2,
	})

	g := Build(deck, classifyDeck(t, deck))
	found := false
	for _, e := range g.Edges {
		if e.Relation == RelationAntiSynergy && e.Source == "cre-148" {
			found = true
		}
	}
	if !found {
		t.Error("Path to the Peak should anti-synergize with own rule-box ability Pokémon")
	}
	if g.AntiSynergyCount() == 0 {
		t.Error("AntiSynergyCount() = 0, want > 0")
	}
}

func TestBuild_ClustersFormWinConditions(t *testing.T) {
	deck := charizardDeck()
	g := Build(deck, classifyDeck(t, deck))

	if len(g.Clusters) == 0 {
		t.Fatal("expected at least one cluster in a synergistic deck")
	}
	// The Charizard line should sit in the top cluster.
	top := g.Clusters[0]
	hasCharizard := false
	for _, id := range top.CardIDs {
		if id == "sv3-125" {
			hasCharizard = true
		}
	}
	if !hasCharizard {
		t.Errorf("top cluster %v does not contain Charizard ex", top.CardIDs)
	}
	if top.Impact < clusterImpactThreshold {
		t.Errorf("top cluster impact %v below threshold", top.Impact)
	}
}

func TestBuild_ScoreBounds(t *testing.T) {
	deck := charizardDeck()
	g := Build(deck, classifyDeck(t, deck))
	if g.OverallScore < 0 || g.OverallScore > 100 {
		t.Errorf("overall score out of range: %v", g.OverallScore)
	}

	// A pile of unrelated cards should score below the synergistic deck.
	pile := &cards.Deck{Entries: []cards.DeckEntry{
		{Card: &cards.CardFace{ID: "a", Name: "Zigzagoon", Supertype: cards.SupertypePokemon, Subtypes: []string{"Basic"}, HP: 60}, Quantity: 1},
		{Card: &cards.CardFace{ID: "b", Name: "Skwovet", Supertype: cards.SupertypePokemon, Subtypes: []string{"Basic"}, HP: 60}, Quantity: 1},
		{Card: &cards.CardFace{ID: "c", Name: "Strange Gadget", Supertype: cards.SupertypeTrainer, Subtypes: []string{"Item"}}, Quantity: 1},
	}}
	pg := Build(pile, classifyDeck(t, pile))
	if pg.OverallScore >= g.OverallScore {
		t.Errorf("unrelated pile (%v) should score below synergistic deck (%v)", pg.OverallScore, g.OverallScore)
	}
}

func TestBuild_EmptyDeck(t *testing.T) {
	g := Build(&cards.Deck{}, nil)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Error("empty deck should produce an empty graph")
	}
	if g.OverallScore != 0 {
		t.Errorf("empty deck score = %v, want 0", g.OverallScore)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	deck := charizardDeck()
	cls := classifyDeck(t, deck)
	a := Build(deck, cls)
	b := Build(deck, cls)

	if len(a.Edges) != len(b.Edges) || a.OverallScore != b.OverallScore {
		t.Fatalf("graph not deterministic: %d/%v vs %d/%v",
			len(a.Edges), a.OverallScore, len(b.Edges), b.OverallScore)
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			t.Errorf("edge %d differs between runs", i)
		}
	}
}

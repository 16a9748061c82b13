package evolution

import (
	"strings"
	"testing"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

func basic(id, name string, hp int) *cards.CardFace {
	return &cards.CardFace{
		ID: id, Name: name, Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Basic"}, HP: hp,
	}
}

func stage1(id, name, from string) *cards.CardFace {
	return &cards.CardFace{
		ID: id, Name: name, Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Stage 1"}, EvolvesFrom: from, HP: 120,
	}
}

func stage2(id, name, from string) *cards.CardFace {
	return &cards.CardFace{
		ID: id, Name: name, Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Stage 2"}, EvolvesFrom: from, HP: 330,
	}
}

func fillerEnergy(qty int) cards.DeckEntry {
	return cards.DeckEntry{
		Card: &cards.CardFace{
			ID: "energy-1", Name: "Basic Fire Energy",
			Supertype: cards.SupertypeEnergy, Subtypes: []string{"Basic"},
		},
		Quantity: qty,
	}
}

func TestAnalyze_ThreeStageLine(t *testing.T) {
	deck := &cards.Deck{Entries: []cards.DeckEntry{
		{Card: basic("c1", "Charmander", 70), Quantity: 4},
		{Card: stage1("c2", "Charmeleon", "Charmander"), Quantity: 3},
		{Card: stage2("c3", "Charizard ex", "Charmeleon"), Quantity: 2},
		fillerEnergy(51),
	}}

	result := Analyze(deck)
	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}

	line := result.Lines[0]
	if line.BasicName != "Charmander" {
		t.Errorf("basic name = %q", line.BasicName)
	}
	if line.BasicCount != 4 || line.Stage1Count != 3 || line.Stage2Count != 2 {
		t.Errorf("counts = %d-%d-%d, want 4-3-2", line.BasicCount, line.Stage1Count, line.Stage2Count)
	}
	if line.Completeness != 100 {
		t.Errorf("completeness = %v, want 100", line.Completeness)
	}
	// 4-3-2 is the idealized ratio, so consistency should be perfect.
	if line.Consistency != 100 {
		t.Errorf("consistency = %v, want 100", line.Consistency)
	}
	if line.BasicByTurn1 <= 0 || line.BasicByTurn1 >= 1 {
		t.Errorf("turn-1 probability out of range: %v", line.BasicByTurn1)
	}
	if line.BasicByTurn2 < line.BasicByTurn1 {
		t.Error("turn-2 probability should not decrease")
	}
}

func TestAnalyze_MissingBasic(t *testing.T) {
	deck := &cards.Deck{Entries: []cards.DeckEntry{
		{Card: stage1("k1", "Kirlia", "Ralts"), Quantity: 4},
		fillerEnergy(56),
	}}

	result := Analyze(deck)
	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}

	line := result.Lines[0]
	if !strings.HasSuffix(line.BasicName, MissingSuffix) {
		t.Errorf("basic name = %q, want %q suffix", line.BasicName, MissingSuffix)
	}
	if !strings.HasPrefix(line.BasicName, "Ralts") {
		t.Errorf("basic name = %q, want Ralts prefix", line.BasicName)
	}
	if line.Completeness != 0 {
		t.Errorf("completeness = %v, want 0", line.Completeness)
	}
	if result.IncompleteLines != 1 {
		t.Errorf("incomplete lines = %d, want 1", result.IncompleteLines)
	}
}

func TestAnalyze_InvertedCountsPenalized(t *testing.T) {
	balanced := &cards.Deck{Entries: []cards.DeckEntry{
		{Card: basic("b1", "Bidoof", 70), Quantity: 4},
		{Card: stage1("b2", "Bibarel", "Bidoof"), Quantity: 3},
		fillerEnergy(53),
	}}
	inverted := &cards.Deck{Entries: []cards.DeckEntry{
		{Card: basic("b1", "Bidoof", 70), Quantity: 2},
		{Card: stage1("b2", "Bibarel", "Bidoof"), Quantity: 4},
		fillerEnergy(54),
	}}

	balancedScore := Analyze(balanced).Lines[0].Consistency
	invertedScore := Analyze(inverted).Lines[0].Consistency
	if invertedScore >= balancedScore {
		t.Errorf("inverted line (%.1f) should score below balanced line (%.1f)",
			invertedScore, balancedScore)
	}
}

func TestAnalyze_StandaloneBasics(t *testing.T) {
	deck := &cards.Deck{Entries: []cards.DeckEntry{
		{Card: basic("m1", "Mew", 60), Quantity: 1},
		{Card: basic("l1", "Lumineon V", 170), Quantity: 4},
		fillerEnergy(55),
	}}

	result := Analyze(deck)
	if len(result.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(result.Lines))
	}
	for _, line := range result.Lines {
		if line.Completeness != 100 {
			t.Errorf("standalone basic %q completeness = %v, want 100", line.BasicName, line.Completeness)
		}
	}
	// Four copies beat one copy on consistency.
	var mew, lumineon Line
	for _, l := range result.Lines {
		switch l.BasicName {
		case "Mew":
			mew = l
		case "Lumineon V":
			lumineon = l
		}
	}
	if mew.Consistency >= lumineon.Consistency {
		t.Errorf("1-of (%v) should score below 4-of (%v)", mew.Consistency, lumineon.Consistency)
	}
}

func TestAnalyze_EmptyDeck(t *testing.T) {
	result := Analyze(&cards.Deck{})
	if len(result.Lines) != 0 {
		t.Errorf("lines = %d, want 0", len(result.Lines))
	}
	if result.AverageConsistency != 0 {
		t.Errorf("average consistency = %v, want 0", result.AverageConsistency)
	}
}

func TestDescribe(t *testing.T) {
	line := Line{BasicName: "Charmander", BasicCount: 4, Stage1Count: 3, Stage2Count: 2}
	if got := Describe(line); got != "Charmander 4-3-2" {
		t.Errorf("Describe() = %q", got)
	}
	solo := Line{BasicName: "Mew", BasicCount: 2}
	if got := Describe(solo); got != "Mew x2" {
		t.Errorf("Describe() = %q", got)
	}
}

package deckimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

const sampleList = `Pokémon: 10
4 Charmander MEW 4
3 Charizard ex OBF 125
3x Pidgey OBF 162

Trainer: 4
4 Ultra Ball SVI 196

Energy: 10
10 Basic Fire Energy
`

func TestParse(t *testing.T) {
	lines, err := Parse(strings.NewReader(sampleList))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}

	first := lines[0]
	if first.Quantity != 4 || first.Name != "Charmander" || first.SetCode != "MEW" || first.Number != "4" {
		t.Errorf("first line = %+v", first)
	}
	// "3x" form without set code.
	if lines[2].Quantity != 3 || lines[2].Name != "Pidgey" || lines[2].SetCode != "OBF" {
		t.Errorf("third line = %+v", lines[2])
	}
	// Plain name line keeps everything in Name.
	last := lines[4]
	if last.Name != "Basic Fire Energy" || last.SetCode != "" {
		t.Errorf("energy line = %+v", last)
	}
}

func TestParse_MalformedLine(t *testing.T) {
	if _, err := Parse(strings.NewReader("four Charmander")); err == nil {
		t.Error("non-numeric quantity should be an error")
	}
	if _, err := Parse(strings.NewReader("0 Charmander")); err == nil {
		t.Error("zero quantity should be an error")
	}
}

func TestParse_SkipsCommentsAndHeaders(t *testing.T) {
	list := "// my deck\nPokemon - 4\n4 Charmander\n"
	lines, err := Parse(strings.NewReader(list))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("got %d lines, want 1", len(lines))
	}
}

// fakeSource resolves a fixed set of cards by name.
type fakeSource struct {
	byName map[string]*cards.CardFace
	bySet  map[string]*cards.CardFace
}

func (f *fakeSource) FindBySetNumber(_ context.Context, setCode, number string) (*cards.CardFace, error) {
	if c, ok := f.bySet[setCode+"/"+number]; ok {
		return c, nil
	}
	return nil, errNotFound
}

func (f *fakeSource) FindByName(_ context.Context, name string) ([]*cards.CardFace, error) {
	if c, ok := f.byName[name]; ok {
		return []*cards.CardFace{c}, nil
	}
	return nil, nil
}

var errNotFound = errors.New("not found")

func TestImport(t *testing.T) {
	charmander := &cards.CardFace{ID: "mew-4", Name: "Charmander", Supertype: cards.SupertypePokemon}
	fire := &cards.CardFace{ID: "sve-2", Name: "Basic Fire Energy", Supertype: cards.SupertypeEnergy}
	src := &fakeSource{
		byName: map[string]*cards.CardFace{
			"Charmander":        charmander,
			"Basic Fire Energy": fire,
		},
		bySet: map[string]*cards.CardFace{
			"mew/4": charmander,
		},
	}

	list := "4 Charmander MEW 4\n10 Basic Fire Energy\n2 Mystery Card\n"
	res, err := Import(context.Background(), src, "test", list2reader(list))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if res.Deck.TotalCards() != 14 {
		t.Errorf("resolved deck has %d cards, want 14", res.Deck.TotalCards())
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0].Name != "Mystery Card" {
		t.Errorf("unresolved = %+v, want Mystery Card", res.Unresolved)
	}
}

func list2reader(s string) *strings.Reader {
	return strings.NewReader(s)
}

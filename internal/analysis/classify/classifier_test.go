package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

func newTestClassifier() *Classifier {
	return NewClassifier(nil, nil)
}

func TestClassifier_PokemonRoles(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		card *cards.CardFace
		want Role
	}{
		{
			name: "180 base damage on a multi-prize body is not a main attacker",
			card: &cards.CardFace{
				ID: "p1", Name: "Charizard ex", Supertype: cards.SupertypePokemon,
				Subtypes: []string{"Stage 2", "ex"}, HP: 330,
				Attacks: []cards.AttackSpec{{Name: "Burning Darkness", Cost: []string{"Fire", "Fire"}, Damage: "180+"}},
			},
			want: RoleSupportAttacker, // 180 base, multi-prize
		},
		{
			name: "200 damage qualifies regardless of prizes",
			card: &cards.CardFace{
				ID: "p2", Name: "Giratina VSTAR", Supertype: cards.SupertypePokemon,
				Subtypes: []string{"VSTAR"}, HP: 280,
				Attacks: []cards.AttackSpec{{Name: "Lost Impact", Cost: []string{"Grass", "Psychic", "Colorless"}, Damage: "280"}},
			},
			want: RoleMainAttacker,
		},
		{
			name: "120 damage single prize qualifies",
			card: &cards.CardFace{
				ID: "p3", Name: "Kangaskhan", Supertype: cards.SupertypePokemon,
				Subtypes: []string{"Basic"}, HP: 120,
				Attacks: []cards.AttackSpec{{Name: "Power Slap", Cost: []string{"Colorless", "Colorless"}, Damage: "130"}},
			},
			want: RoleMainAttacker,
		},
		{
			name: "draw ability is ability support",
			card: &cards.CardFace{
				ID: "p4", Name: "Bibarel", Supertype: cards.SupertypePokemon,
				Subtypes: []string{"Stage 1"}, HP: 120, EvolvesFrom: "Bidoof",
				Abilities: []cards.AbilitySpec{{Name: "Industrious Incisors", Text: "Once during your turn, you may draw cards until you have 5 cards in your hand."}},
			},
			want: RoleAbilitySupport,
		},
		{
			name: "damage prevention is a wall",
			card: &cards.CardFace{
				ID: "p5", Name: "Mimikyu", Supertype: cards.SupertypePokemon,
				Subtypes: []string{"Basic"}, HP: 70,
				Abilities: []cards.AbilitySpec{{Name: "Safeguard", Text: "Prevent all damage done to this Pokémon by attacks from your opponent's Pokémon ex and Pokémon V."}},
			},
			want: RoleWall,
		},
		{
			name: "small basic with no abilities is a starter",
			card: &cards.CardFace{
				ID: "p6", Name: "Lumineon", Supertype: cards.SupertypePokemon,
				Subtypes: []string{"Basic"}, HP: 70,
				Attacks: []cards.AttackSpec{{Name: "Aqua Shower", Cost: []string{"Water"}, Damage: "20"}},
			},
			want: RoleStarter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.card)
			if got.Role != tt.want {
				t.Errorf("Classify() role = %q, want %q", got.Role, tt.want)
			}
			if got.Category != CategoryPokemon {
				t.Errorf("Classify() category = %q, want pokemon", got.Category)
			}
			if got.PowerLevel < 1 || got.PowerLevel > 10 {
				t.Errorf("power level out of range: %d", got.PowerLevel)
			}
		})
	}
}

func TestClassifier_SetupSpeed(t *testing.T) {
	c := newTestClassifier()

	turbo := &cards.CardFace{
		ID: "s1", Name: "Comfey", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Basic"}, HP: 70,
		Attacks: []cards.AttackSpec{{Name: "Spin Strike", Cost: []string{"Psychic"}, Damage: "30"}},
	}
	if got := c.Classify(turbo); got.SetupSpeed != SpeedTurbo {
		t.Errorf("one-energy basic = %q, want turbo", got.SetupSpeed)
	}

	slow := &cards.CardFace{
		ID: "s2", Name: "Copperajah", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Stage 2"}, HP: 190, EvolvesFrom: "Cufant",
		Attacks: []cards.AttackSpec{{Name: "Heavy Stomp", Cost: []string{"Metal", "Metal", "Colorless", "Colorless"}, Damage: "180"}},
	}
	if got := c.Classify(slow); got.SetupSpeed != SpeedSlow {
		t.Errorf("four-energy stage 2 = %q, want slow", got.SetupSpeed)
	}
}

func TestClassifier_Trainers(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name      string
		card      *cards.CardFace
		wantType  TrainerType
		wantPower int
	}{
		{
			name:      "curated draw supporter",
			card:      &cards.CardFace{ID: "t1", Name: "Professor's Research", Supertype: cards.SupertypeTrainer, Subtypes: []string{"Supporter"}},
			wantType:  TrainerDraw,
			wantPower: 9,
		},
		{
			name:      "curated search item",
			card:      &cards.CardFace{ID: "t2", Name: "Ultra Ball", Supertype: cards.SupertypeTrainer, Subtypes: []string{"Item"}},
			wantType:  TrainerSearch,
			wantPower: 8,
		},
		{
			name: "unmatched name falls back to text scan",
			card: &cards.CardFace{
				ID: "t3", Name: "Mystery Scholar", Supertype: cards.SupertypeTrainer,
				Subtypes: []string{"Supporter"},
				Rules:    []string{"Draw cards until you have 6 cards in your hand."},
			},
			wantType:  TrainerDraw,
			wantPower: 5,
		},
		{
			name:      "totally unknown trainer defaults to utility at neutral power",
			card:      &cards.CardFace{ID: "t4", Name: "Strange Gadget", Supertype: cards.SupertypeTrainer, Subtypes: []string{"Item"}},
			wantType:  TrainerUtility,
			wantPower: 5,
		},
		{
			name:      "stadium by subtype",
			card:      &cards.CardFace{ID: "t5", Name: "Unknown Arena", Supertype: cards.SupertypeTrainer, Subtypes: []string{"Stadium"}},
			wantType:  TrainerStadium,
			wantPower: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.card)
			if got.TrainerType != tt.wantType {
				t.Errorf("trainer type = %q, want %q", got.TrainerType, tt.wantType)
			}
			if got.PowerLevel != tt.wantPower {
				t.Errorf("power = %d, want %d", got.PowerLevel, tt.wantPower)
			}
		})
	}
}

func TestClassifier_Energy(t *testing.T) {
	c := newTestClassifier()

	basic := &cards.CardFace{
		ID: "e1", Name: "Basic Fire Energy", Supertype: cards.SupertypeEnergy,
		Subtypes: []string{"Basic"},
	}
	got := c.Classify(basic)
	if got.SpecialEnergy {
		t.Error("basic fire energy classified as special")
	}
	if len(got.EnergyProvides) != 1 || got.EnergyProvides[0] != "Fire" {
		t.Errorf("provides = %v, want [Fire]", got.EnergyProvides)
	}

	double := &cards.CardFace{
		ID: "e2", Name: "Double Turbo Energy", Supertype: cards.SupertypeEnergy,
		Subtypes: []string{"Special"},
		Rules:    []string{"This card provides 2 Colorless Energy."},
	}
	got = c.Classify(double)
	if !got.SpecialEnergy {
		t.Error("double turbo energy not classified as special")
	}
	if len(got.EnergyProvides) != 2 || got.EnergyProvides[0] != "Colorless" {
		t.Errorf("provides = %v, want two Colorless", got.EnergyProvides)
	}
}

func TestClassifier_UnknownSupertypeDegrades(t *testing.T) {
	c := newTestClassifier()

	got := c.Classify(&cards.CardFace{ID: "x1", Name: "Glitch", Supertype: "Artifact"})
	if !got.Degraded {
		t.Error("unknown supertype should degrade, not fail")
	}
	if got.Category != CategoryUnknown {
		t.Errorf("category = %q, want unknown", got.Category)
	}

	if got := c.Classify(nil); !got.Degraded {
		t.Error("nil card should degrade")
	}
}

func TestClassifier_CacheIsStable(t *testing.T) {
	c := newTestClassifier()
	card := &cards.CardFace{
		ID: "p1", Name: "Pikachu", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Basic"}, HP: 60,
	}

	first := c.Classify(card)
	second := c.Classify(card)
	if first != second {
		t.Error("expected cached classification for repeated card id")
	}
}

func TestClassifier_CacheStats(t *testing.T) {
	c := newTestClassifier()
	card := &cards.CardFace{
		ID: "p1", Name: "Pikachu", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Basic"}, HP: 60,
	}

	c.Classify(card)
	c.Classify(card)
	c.Classify(card)

	hits, misses := c.CacheStats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

func TestClassifier_EvolutionSeedTag(t *testing.T) {
	c := newTestClassifier()

	seed := c.Classify(&cards.CardFace{
		ID: "p1", Name: "Charmander", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Basic"}, HP: 70,
	})
	if !seed.HasTag("evolution-seed") {
		t.Error("Charmander should be tagged as an evolution seed")
	}

	standalone := c.Classify(&cards.CardFace{
		ID: "p2", Name: "Pikachu", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Basic"}, HP: 60,
	})
	if standalone.HasTag("evolution-seed") {
		t.Error("Pikachu is not in the evolution-potential table")
	}

	// The tag marks Basics only; the evolutions themselves carry the
	// generic evolution tag instead.
	stage1 := c.Classify(&cards.CardFace{
		ID: "p3", Name: "Charmeleon", Supertype: cards.SupertypePokemon,
		Subtypes: []string{"Stage 1"}, EvolvesFrom: "Charmander", HP: 100,
	})
	if stage1.HasTag("evolution-seed") {
		t.Error("Stage 1 Pokémon should not be tagged as an evolution seed")
	}
}

func TestLoadTables_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.toml")
	content := "draw_supporters = [\"Test Supporter\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tables: %v", err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	if !containsName(tables.DrawSupporters, "Test Supporter") {
		t.Error("override not applied")
	}
	// Untouched fields keep defaults.
	if !containsName(tables.SearchTrainers, "Ultra Ball") {
		t.Error("default search trainers lost after merge")
	}
}

package cards

import "testing"

func TestAttackSpec_DamageValue(t *testing.T) {
	tests := []struct {
		name   string
		damage string
		want   int
	}{
		{name: "plain number", damage: "120", want: 120},
		{name: "plus damage", damage: "50+", want: 50},
		{name: "multiplier", damage: "30x", want: 30},
		{name: "no damage", damage: "", want: 0},
		{name: "text only", damage: "x", want: 0},
		{name: "whitespace", damage: " 90 ", want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AttackSpec{Damage: tt.damage}
			if got := a.DamageValue(); got != tt.want {
				t.Errorf("DamageValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCardFace_Stage(t *testing.T) {
	tests := []struct {
		name     string
		subtypes []string
		want     int
	}{
		{name: "basic", subtypes: []string{"Basic"}, want: 0},
		{name: "stage 1", subtypes: []string{"Stage 1"}, want: 1},
		{name: "stage 2", subtypes: []string{"Stage 2"}, want: 2},
		{name: "vmax counts as one evolution", subtypes: []string{"VMAX"}, want: 1},
		{name: "no subtype defaults to basic", subtypes: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CardFace{Supertype: SupertypePokemon, Subtypes: tt.subtypes}
			if got := c.Stage(); got != tt.want {
				t.Errorf("Stage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCardFace_PrizeValue(t *testing.T) {
	tests := []struct {
		name     string
		subtypes []string
		want     int
	}{
		{name: "single prize", subtypes: []string{"Basic"}, want: 1},
		{name: "ex gives two", subtypes: []string{"Basic", "ex"}, want: 2},
		{name: "v gives two", subtypes: []string{"Basic", "V"}, want: 2},
		{name: "vmax gives three", subtypes: []string{"VMAX"}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CardFace{Supertype: SupertypePokemon, Subtypes: tt.subtypes}
			if got := c.PrizeValue(); got != tt.want {
				t.Errorf("PrizeValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCardFace_MinAttackCost(t *testing.T) {
	c := &CardFace{
		Supertype: SupertypePokemon,
		Attacks: []AttackSpec{
			{Name: "Call for Family", Cost: []string{"Colorless"}, Damage: ""},
			{Name: "Flare", Cost: []string{"Fire", "Fire"}, Damage: "50"},
			{Name: "Burn Down", Cost: []string{"Fire", "Fire", "Colorless"}, Damage: "180"},
		},
	}

	// Zero-damage attacks are not counted toward attack cost.
	if got := c.MinAttackCost(); got != 2 {
		t.Errorf("MinAttackCost() = %d, want 2", got)
	}

	none := &CardFace{Supertype: SupertypePokemon}
	if got := none.MinAttackCost(); got != 0 {
		t.Errorf("MinAttackCost() with no attacks = %d, want 0", got)
	}
}

func TestDeck_Validate(t *testing.T) {
	pikachu := &CardFace{ID: "sv1-25", Name: "Pikachu", Supertype: SupertypePokemon, Subtypes: []string{"Basic"}}

	tests := []struct {
		name    string
		deck    *Deck
		wantErr bool
	}{
		{
			name:    "empty deck",
			deck:    &Deck{},
			wantErr: true,
		},
		{
			name: "valid entry",
			deck: &Deck{Entries: []DeckEntry{{Card: pikachu, Quantity: 4}}},
		},
		{
			name:    "zero quantity",
			deck:    &Deck{Entries: []DeckEntry{{Card: pikachu, Quantity: 0}}},
			wantErr: true,
		},
		{
			name:    "negative quantity",
			deck:    &Deck{Entries: []DeckEntry{{Card: pikachu, Quantity: -2}}},
			wantErr: true,
		},
		{
			name:    "nil card",
			deck:    &Deck{Entries: []DeckEntry{{Card: nil, Quantity: 1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.deck.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeck_Normalize(t *testing.T) {
	pikachu := &CardFace{ID: "sv1-25", Name: "Pikachu", Supertype: SupertypePokemon}
	raichu := &CardFace{ID: "sv1-26", Name: "Raichu", Supertype: SupertypePokemon}

	d := &Deck{Entries: []DeckEntry{
		{Card: pikachu, Quantity: 2},
		{Card: raichu, Quantity: 3},
		{Card: pikachu, Quantity: 2},
	}}

	n := d.Normalize()
	if len(n.Entries) != 2 {
		t.Fatalf("Normalize() entries = %d, want 2", len(n.Entries))
	}
	if n.Entries[0].Card.ID != "sv1-25" || n.Entries[0].Quantity != 4 {
		t.Errorf("first entry = %s x%d, want sv1-25 x4", n.Entries[0].Card.ID, n.Entries[0].Quantity)
	}
	if n.TotalCards() != 7 {
		t.Errorf("TotalCards() = %d, want 7", n.TotalCards())
	}
	if d.TotalCards() != 7 {
		t.Errorf("original deck modified: TotalCards() = %d", d.TotalCards())
	}
}

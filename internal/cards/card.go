// Package cards defines the immutable card and deck model shared by the
// catalog and the analysis engine.
package cards

import (
	"strconv"
	"strings"
)

// Supertype is the top-level card classification.
type Supertype string

const (
	SupertypePokemon Supertype = "Pokemon"
	SupertypeTrainer Supertype = "Trainer"
	SupertypeEnergy  Supertype = "Energy"
)

// AttackSpec describes a single attack printed on a Pokémon card.
type AttackSpec struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost"`   // Energy types, e.g. ["Fire", "Colorless"]
	Damage string   `json:"damage"` // Raw printed damage, e.g. "120", "50+", "30x"
	Text   string   `json:"text,omitempty"`
}

// AbilitySpec describes an ability printed on a card.
type AbilitySpec struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// CardFace is the immutable reference record for a single card. It is owned
// by the external catalog; the analysis engine only reads it.
type CardFace struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Supertype   Supertype     `json:"supertype"`
	Subtypes    []string      `json:"subtypes,omitempty"` // "Basic", "Stage 1", "V", "ex", "Item", "Supporter", ...
	Types       []string      `json:"types,omitempty"`    // Energy types for Pokémon, e.g. ["Fire"]
	HP          int           `json:"hp,omitempty"`
	EvolvesFrom string        `json:"evolves_from,omitempty"`
	Attacks     []AttackSpec  `json:"attacks,omitempty"`
	Abilities   []AbilitySpec `json:"abilities,omitempty"`
	RetreatCost []string      `json:"retreat_cost,omitempty"`
	Rules       []string      `json:"rules,omitempty"` // Rule box text (Trainer effect, V/ex rules)
	SetCode     string        `json:"set,omitempty"`
	Number      string        `json:"number,omitempty"`
	Rarity      string        `json:"rarity,omitempty"`
}

// DamageValue parses the numeric portion of an attack's printed damage.
// Variable damage like "50+" or "30x" yields its base value; attacks with no
// damage yield 0.
func (a AttackSpec) DamageValue() int {
	s := strings.TrimSpace(a.Damage)
	if s == "" {
		return 0
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// EnergyCost returns the number of energy symbols in the attack cost. "Free"
// placeholder symbols are not counted.
func (a AttackSpec) EnergyCost() int {
	n := 0
	for _, c := range a.Cost {
		if !strings.EqualFold(c, "Free") {
			n++
		}
	}
	return n
}

// IsBasic reports whether the card is a Basic Pokémon.
func (c *CardFace) IsBasic() bool {
	if c.Supertype != SupertypePokemon {
		return false
	}
	return c.HasSubtype("Basic")
}

// Stage returns the evolution stage of a Pokémon: 0 for Basic, 1 for
// Stage 1, 2 for Stage 2. V-evolutions (VMAX, VSTAR) count as stage 1.
func (c *CardFace) Stage() int {
	switch {
	case c.HasSubtype("Stage 2"):
		return 2
	case c.HasSubtype("Stage 1"), c.HasSubtype("VMAX"), c.HasSubtype("VSTAR"):
		return 1
	default:
		return 0
	}
}

// HasSubtype reports whether the card carries the given subtype
// (case-insensitive).
func (c *CardFace) HasSubtype(sub string) bool {
	for _, s := range c.Subtypes {
		if strings.EqualFold(s, sub) {
			return true
		}
	}
	return false
}

// HasRuleBox reports whether the card gives up more than one prize when
// knocked out (V, VMAX, VSTAR, ex, GX style rule boxes).
func (c *CardFace) HasRuleBox() bool {
	multiPrize := []string{"V", "VMAX", "VSTAR", "ex", "EX", "GX", "Tera"}
	for _, sub := range multiPrize {
		if c.HasSubtype(sub) {
			return true
		}
	}
	for _, r := range c.Rules {
		lower := strings.ToLower(r)
		if strings.Contains(lower, "your opponent takes 2 prize") ||
			strings.Contains(lower, "your opponent takes 3 prize") {
			return true
		}
	}
	return false
}

// PrizeValue returns how many prizes an opponent takes for knocking the card
// out. Single-prize attackers return 1.
func (c *CardFace) PrizeValue() int {
	if c.HasSubtype("VMAX") || c.HasSubtype("Tera") {
		return 3
	}
	if c.HasRuleBox() {
		return 2
	}
	return 1
}

// MaxDamage returns the highest base damage across the card's attacks.
func (c *CardFace) MaxDamage() int {
	best := 0
	for _, a := range c.Attacks {
		if v := a.DamageValue(); v > best {
			best = v
		}
	}
	return best
}

// MinAttackCost returns the smallest energy cost among attacks that deal
// damage. Cards with no damaging attacks return 0.
func (c *CardFace) MinAttackCost() int {
	best := -1
	for _, a := range c.Attacks {
		if a.DamageValue() == 0 {
			continue
		}
		cost := a.EnergyCost()
		if best < 0 || cost < best {
			best = cost
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// CombinedText joins ability text, attack text and rule text for keyword
// scanning.
func (c *CardFace) CombinedText() string {
	var b strings.Builder
	for _, ab := range c.Abilities {
		b.WriteString(ab.Text)
		b.WriteString("\n")
	}
	for _, at := range c.Attacks {
		if at.Text != "" {
			b.WriteString(at.Text)
			b.WriteString("\n")
		}
	}
	for _, r := range c.Rules {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return b.String()
}

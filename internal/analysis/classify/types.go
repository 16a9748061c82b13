// Package classify assigns each card a semantic role, power level and
// synergy tags from its static attributes and curated knowledge tables.
// Classification is a pure function of the card face, so results are cached
// by card id.
package classify

// Category is the coarse functional category of a card.
type Category string

const (
	CategoryPokemon Category = "pokemon"
	CategoryTrainer Category = "trainer"
	CategoryEnergy  Category = "energy"
	CategoryUnknown Category = "unknown"
)

// Role describes what a Pokémon does for the deck.
type Role string

const (
	RoleMainAttacker    Role = "main_attacker"
	RoleSupportAttacker Role = "support_attacker"
	RoleAbilitySupport  Role = "ability_support"
	RoleWall            Role = "wall"
	RoleStarter         Role = "starter"
	RoleNone            Role = ""
)

// TrainerType is the functional bucket for Trainer cards.
type TrainerType string

const (
	TrainerDraw        TrainerType = "draw"
	TrainerSearch      TrainerType = "search"
	TrainerEnergyAccel TrainerType = "energy_accel"
	TrainerDisruption  TrainerType = "disruption"
	TrainerStadium     TrainerType = "stadium"
	TrainerRecovery    TrainerType = "recovery"
	TrainerSwitch      TrainerType = "switch"
	TrainerTool        TrainerType = "tool"
	TrainerUtility     TrainerType = "utility"
)

// SetupSpeed buckets how quickly a Pokémon comes online.
type SetupSpeed string

const (
	SpeedTurbo  SetupSpeed = "turbo"
	SpeedFast   SetupSpeed = "fast"
	SpeedMedium SetupSpeed = "medium"
	SpeedSlow   SetupSpeed = "slow"
)

// CardClassification is the derived per-card classification. PowerLevel is a
// 1-10 heuristic estimate; neutral is 5.
type CardClassification struct {
	CardID      string      `json:"card_id"`
	CardName    string      `json:"card_name"`
	Category    Category    `json:"category"`
	Role        Role        `json:"role,omitempty"`
	TrainerType TrainerType `json:"trainer_type,omitempty"`
	SetupSpeed  SetupSpeed  `json:"setup_speed,omitempty"`
	PowerLevel  int         `json:"power_level"`
	SynergyTags []string    `json:"synergy_tags,omitempty"`

	// EnergyProvides lists the energy types a card of CategoryEnergy
	// provides per attachment. Multi-unit energy repeats the type.
	EnergyProvides []string `json:"energy_provides,omitempty"`
	SpecialEnergy  bool     `json:"special_energy,omitempty"`

	// Degraded marks a minimal classification produced for a card the
	// classifier did not recognize.
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// HasTag reports whether the classification carries a synergy tag.
func (c *CardClassification) HasTag(tag string) bool {
	for _, t := range c.SynergyTags {
		if t == tag {
			return true
		}
	}
	return false
}

const neutralPower = 5

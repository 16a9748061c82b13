package classify

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// KnowledgeTables hold the curated card knowledge the classifier matches
// against. They are loaded once at startup and treated as read-only; meta
// updates ship as data, not code.
//
// The name lists and power scores are curated from tournament results, not
// derived; treat individual values as reviewable data.
type KnowledgeTables struct {
	// Trainer name tables, matched before any text scanning.
	DrawSupporters []string `toml:"draw_supporters"`
	SearchTrainers []string `toml:"search_trainers"`
	EnergyAccel    []string `toml:"energy_accel"`
	Disruption     []string `toml:"disruption"`
	Stadiums       []string `toml:"stadiums"`
	Recovery       []string `toml:"recovery"`
	SwitchCards    []string `toml:"switch_cards"`
	Tools          []string `toml:"tools"`

	// TrainerPower overrides the neutral 5/10 power level per card name.
	TrainerPower map[string]int `toml:"trainer_power"`

	// TechCards are low-count inclusions aimed at specific matchups.
	TechCards []string `toml:"tech_cards"`

	// EvolutionPotential names Basics that are usually played for their
	// evolutions rather than on their own merits.
	EvolutionPotential []string `toml:"evolution_potential"`
}

// DefaultTables returns the built-in knowledge tables.
func DefaultTables() *KnowledgeTables {
	return &KnowledgeTables{
		DrawSupporters: []string{
			"Professor's Research", "Iono", "Judge", "Colress's Experiment",
			"Cynthia", "Marnie", "Hop", "Arven", "N", "Professor Sycamore",
			"Roxanne", "Professor Oak's Setup",
		},
		SearchTrainers: []string{
			"Ultra Ball", "Quick Ball", "Nest Ball", "Level Ball",
			"Evolution Incense", "Great Ball", "Battle VIP Pass",
			"Buddy-Buddy Poffin", "Capturing Aroma", "Timer Ball",
			"Trekking Shoes", "Communication", "Pokémon Communication",
		},
		EnergyAccel: []string{
			"Dark Patch", "Mirage Gate", "Melony", "Welder", "Elesa's Sparkle",
			"Baxcalibur", "Archeops", "Metal Saucer", "Twin Energy",
			"Superior Energy Retrieval",
		},
		Disruption: []string{
			"Boss's Orders", "Crushing Hammer", "Enhanced Hammer",
			"Team Yell Grunt", "Fan Rotom", "Avery", "Eri", "Iono", "Judge",
			"Roxanne", "Counter Catcher", "Cross Switcher",
		},
		Stadiums: []string{
			"Path to the Peak", "Temple of Sinnoh", "Lost City",
			"Collapsed Stadium", "Artazon", "Mesagoza", "Beach Court",
			"Pokéstop", "Training Court",
		},
		Recovery: []string{
			"Ordinary Rod", "Super Rod", "Rescue Carrier", "Klara",
			"Energy Retrieval", "Night Stretcher", "Lost Vacuum",
		},
		SwitchCards: []string{
			"Switch", "Escape Rope", "Bird Keeper", "Switch Cart",
			"Prime Catcher", "Jet Energy",
		},
		Tools: []string{
			"Forest Seal Stone", "Choice Belt", "Defiance Band",
			"Bravery Charm", "Tool Jammer", "Air Balloon", "Float Stone",
			"Hero's Cape", "Technical Machine: Evolution",
		},
		TrainerPower: map[string]int{
			"Professor's Research": 9,
			"Iono":                 9,
			"Boss's Orders":        9,
			"Ultra Ball":           8,
			"Battle VIP Pass":      8,
			"Buddy-Buddy Poffin":   8,
			"Nest Ball":            7,
			"Quick Ball":           7,
			"Arven":                7,
			"Judge":                6,
			"Path to the Peak":     7,
			"Counter Catcher":      7,
			"Switch":               6,
			"Crushing Hammer":      4,
			"Hop":                  3,
		},
		TechCards: []string{
			"Spiritomb", "Klefki", "Manaphy", "Jirachi", "Drapion V",
			"Radiant Alakazam", "Lost Vacuum", "Temple of Sinnoh",
			"Enhanced Hammer", "Tool Jammer", "Canceling Cologne",
		},
		EvolutionPotential: []string{
			"Charmander", "Charmeleon", "Sprigatito", "Floragato",
			"Frigibax", "Arctibax", "Ralts", "Kirlia", "Pidgey", "Pidgeotto",
			"Rowlet", "Dartrix", "Dreepy", "Drakloak", "Duskull", "Dusclops",
		},
	}
}

// LoadTables reads knowledge-table overrides from a TOML file and merges
// them over the defaults. Empty fields in the file keep their defaults.
func LoadTables(path string) (*KnowledgeTables, error) {
	tables := DefaultTables()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge tables: %w", err)
	}
	var override KnowledgeTables
	if err := toml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse knowledge tables: %w", err)
	}
	mergeTables(tables, &override)
	return tables, nil
}

func mergeTables(base, override *KnowledgeTables) {
	if len(override.DrawSupporters) > 0 {
		base.DrawSupporters = override.DrawSupporters
	}
	if len(override.SearchTrainers) > 0 {
		base.SearchTrainers = override.SearchTrainers
	}
	if len(override.EnergyAccel) > 0 {
		base.EnergyAccel = override.EnergyAccel
	}
	if len(override.Disruption) > 0 {
		base.Disruption = override.Disruption
	}
	if len(override.Stadiums) > 0 {
		base.Stadiums = override.Stadiums
	}
	if len(override.Recovery) > 0 {
		base.Recovery = override.Recovery
	}
	if len(override.SwitchCards) > 0 {
		base.SwitchCards = override.SwitchCards
	}
	if len(override.Tools) > 0 {
		base.Tools = override.Tools
	}
	if len(override.TrainerPower) > 0 {
		base.TrainerPower = override.TrainerPower
	}
	if len(override.TechCards) > 0 {
		base.TechCards = override.TechCards
	}
	if len(override.EvolutionPotential) > 0 {
		base.EvolutionPotential = override.EvolutionPotential
	}
}

// containsName reports whether a curated name list contains the card name.
func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// IsTechCard reports whether the card name is in the curated tech-card list.
func (t *KnowledgeTables) IsTechCard(name string) bool {
	return containsName(t.TechCards, name)
}

// IsEvolutionPotential reports whether a Basic is usually played for its
// evolutions.
func (t *KnowledgeTables) IsEvolutionPotential(name string) bool {
	return containsName(t.EvolutionPotential, name)
}

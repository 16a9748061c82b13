// Package meta supplies the versioned reference metagame snapshot consumed
// by the archetype and matchup evaluators. The snapshot is data, not code:
// metagame updates ship as a TOML file.
package meta

import (
	"fmt"
	"time"
)

// Style is an archetype's broad game plan.
type Style string

const (
	StyleAggro    Style = "aggro"
	StyleControl  Style = "control"
	StyleMidrange Style = "midrange"
	StyleCombo    Style = "combo"
	StyleTurbo    Style = "turbo"
)

// Archetype describes one reference deck in the current metagame.
type Archetype struct {
	Name           string   `toml:"name" json:"name"`
	Tier           int      `toml:"tier" json:"tier"`   // 1 strongest
	Share          float64  `toml:"share" json:"share"` // meta share percent
	Style          Style    `toml:"style" json:"style"`
	Types          []string `toml:"types" json:"types"` // dominant energy types
	KeyCards       []string `toml:"key_cards" json:"key_cards"`
	CounterCards   []string `toml:"counter_cards" json:"counter_cards"` // cards that beat it
	SetupTurns     float64  `toml:"setup_turns" json:"setup_turns"`     // avg turns before attacking
	AvgPrizesPerKO float64  `toml:"avg_prizes_per_ko" json:"avg_prizes_per_ko"`
}

// Snapshot is one versioned, timestamped view of the competitive metagame.
type Snapshot struct {
	Version    string      `toml:"version" json:"version"`
	Format     string      `toml:"format" json:"format"`
	Date       time.Time   `toml:"date" json:"date"`
	Archetypes []Archetype `toml:"archetypes" json:"archetypes"`

	// MetaCards are staples of the current format, used for meta-fit
	// scoring.
	MetaCards []string `toml:"meta_cards" json:"meta_cards"`

	// AvgAttackCost is the format's average energy cost per main attack,
	// the baseline for speed comparison.
	AvgAttackCost float64 `toml:"avg_attack_cost" json:"avg_attack_cost"`
}

// Validate checks structural sanity of a snapshot.
func (s *Snapshot) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("snapshot missing version")
	}
	if len(s.Archetypes) == 0 {
		return fmt.Errorf("snapshot has no archetypes")
	}
	for i, a := range s.Archetypes {
		if a.Name == "" {
			return fmt.Errorf("archetype %d missing name", i)
		}
		if len(a.KeyCards) == 0 {
			return fmt.Errorf("archetype %q has no key cards", a.Name)
		}
		if a.Tier < 1 || a.Tier > 4 {
			return fmt.Errorf("archetype %q tier %d out of range", a.Name, a.Tier)
		}
	}
	if s.AvgAttackCost <= 0 {
		return fmt.Errorf("snapshot avg_attack_cost must be positive")
	}
	return nil
}

// ArchetypeByName returns the named archetype, or nil.
func (s *Snapshot) ArchetypeByName(name string) *Archetype {
	for i := range s.Archetypes {
		if s.Archetypes[i].Name == name {
			return &s.Archetypes[i]
		}
	}
	return nil
}

// IsMetaCard reports whether the card name is a format staple.
func (s *Snapshot) IsMetaCard(name string) bool {
	for _, c := range s.MetaCards {
		if c == name {
			return true
		}
	}
	return false
}

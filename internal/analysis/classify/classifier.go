package classify

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/deckforge/ptcg-analyzer/internal/cards"
)

// Classifier classifies cards against a set of knowledge tables. It caches
// classifications by card id; classification is a pure function of the card
// face and the tables.
type Classifier struct {
	tables *KnowledgeTables
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*CardClassification

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
}

// NewClassifier creates a classifier. A nil tables argument uses the
// built-in defaults.
func NewClassifier(tables *KnowledgeTables, logger *slog.Logger) *Classifier {
	if tables == nil {
		tables = DefaultTables()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		tables: tables,
		logger: logger,
		cache:  make(map[string]*CardClassification),
	}
}

// Tables returns the knowledge tables the classifier matches against.
func (c *Classifier) Tables() *KnowledgeTables {
	return c.tables
}

// CacheStats returns how many classifications were served from the cache and
// how many had to be computed.
func (c *Classifier) CacheStats() (hits, misses uint64) {
	return c.cacheHits.Load(), c.cacheMisses.Load()
}

// Classify returns the classification for a card. Unknown shapes degrade to
// a minimal classification rather than failing; the batch never aborts.
func (c *Classifier) Classify(card *cards.CardFace) *CardClassification {
	if card == nil {
		return &CardClassification{
			Category:   CategoryUnknown,
			PowerLevel: 1,
			Degraded:   true,
			Reason:     "nil card reference",
		}
	}

	c.mu.RLock()
	if cached, ok := c.cache[card.ID]; ok {
		c.mu.RUnlock()
		c.cacheHits.Add(1)
		return cached
	}
	c.mu.RUnlock()
	c.cacheMisses.Add(1)

	var result *CardClassification
	switch card.Supertype {
	case cards.SupertypePokemon:
		result = c.classifyPokemon(card)
	case cards.SupertypeTrainer:
		result = c.classifyTrainer(card)
	case cards.SupertypeEnergy:
		result = c.classifyEnergy(card)
	default:
		c.logger.Warn("unknown card supertype, degrading classification",
			"card", card.Name, "supertype", string(card.Supertype))
		result = &CardClassification{
			CardID:     card.ID,
			CardName:   card.Name,
			Category:   CategoryUnknown,
			PowerLevel: 1,
			Degraded:   true,
			Reason:     "unrecognized supertype " + string(card.Supertype),
		}
	}

	if c.tables.IsTechCard(card.Name) {
		result.SynergyTags = appendTag(result.SynergyTags, "tech")
	}

	c.mu.Lock()
	c.cache[card.ID] = result
	c.mu.Unlock()
	return result
}

// ClassifyDeck classifies every distinct card in the deck.
func (c *Classifier) ClassifyDeck(deck *cards.Deck) map[string]*CardClassification {
	out := make(map[string]*CardClassification, len(deck.Entries))
	for _, e := range deck.Entries {
		if e.Card == nil {
			continue
		}
		out[e.Card.ID] = c.Classify(e.Card)
	}
	return out
}

// Keyword groups for ability classification.
var (
	drawKeywords   = []string{"draw a card", "draw cards", "draw 2", "draw 3", "draw until"}
	searchKeywords = []string{"search your deck", "look at the top", "put it into your hand"}
	attachKeywords = []string{"attach a", "attach an", "attach up to", "from your discard pile to"}
	wallKeywords   = []string{
		"prevent all damage", "takes 30 less damage", "takes 20 less damage",
		"reduce", "prevents all effects", "can't be damaged",
	}
)

func (c *Classifier) classifyPokemon(card *cards.CardFace) *CardClassification {
	result := &CardClassification{
		CardID:   card.ID,
		CardName: card.Name,
		Category: CategoryPokemon,
	}

	abilityText := strings.ToLower(abilitiesText(card))
	maxDamage := card.MaxDamage()
	singlePrize := card.PrizeValue() == 1

	switch {
	case maxDamage >= 200 || (maxDamage >= 120 && singlePrize):
		result.Role = RoleMainAttacker
	case abilityText != "" && matchesAny(abilityText, drawKeywords):
		result.Role = RoleAbilitySupport
		result.SynergyTags = appendTag(result.SynergyTags, "draw")
	case abilityText != "" && matchesAny(abilityText, searchKeywords):
		result.Role = RoleAbilitySupport
		result.SynergyTags = appendTag(result.SynergyTags, "search")
	case abilityText != "" && matchesAny(abilityText, attachKeywords):
		result.Role = RoleAbilitySupport
		result.SynergyTags = appendTag(result.SynergyTags, "energy-accel")
	case abilityText != "" && matchesAny(abilityText, wallKeywords):
		result.Role = RoleWall
	case card.IsBasic() && card.HP <= 70 && len(card.Abilities) == 0:
		result.Role = RoleStarter
	default:
		result.Role = RoleSupportAttacker
	}

	result.SetupSpeed = setupSpeed(card)
	result.PowerLevel = pokemonPower(card, result.Role)
	result.SynergyTags = append(result.SynergyTags, pokemonTags(card)...)
	if singlePrize {
		result.SynergyTags = appendTag(result.SynergyTags, "single-prize")
	}
	// Basics played for their evolutions are not cuttable filler even when
	// their own stats say otherwise.
	if card.IsBasic() && c.tables.IsEvolutionPotential(card.Name) {
		result.SynergyTags = appendTag(result.SynergyTags, "evolution-seed")
	}
	return result
}

// setupSpeed buckets a Pokémon by minimum damaging attack cost and stage.
// Evolving costs roughly a turn per stage.
func setupSpeed(card *cards.CardFace) SetupSpeed {
	effort := card.MinAttackCost() + card.Stage()
	switch {
	case effort <= 1:
		return SpeedTurbo
	case effort == 2:
		return SpeedFast
	case effort == 3:
		return SpeedMedium
	default:
		return SpeedSlow
	}
}

func pokemonPower(card *cards.CardFace, role Role) int {
	power := neutralPower
	maxDamage := card.MaxDamage()

	switch {
	case maxDamage >= 300:
		power = 9
	case maxDamage >= 200:
		power = 8
	case maxDamage >= 120:
		power = 7
	case maxDamage >= 60:
		power = 5
	case maxDamage > 0:
		power = 4
	default:
		power = 3
	}

	if role == RoleAbilitySupport {
		power += 2
	}
	if card.HP >= 300 {
		power++
	}
	// Multi-prize bodies must justify the prize liability.
	if card.PrizeValue() >= 2 && maxDamage < 180 {
		power--
	}
	return clampPower(power)
}

func pokemonTags(card *cards.CardFace) []string {
	var tags []string
	text := strings.ToLower(card.CombinedText())

	if strings.Contains(text, "discard") && strings.Contains(text, "energy") {
		tags = append(tags, "discard-cost")
	}
	if strings.Contains(text, "from your discard pile") {
		tags = append(tags, "discard-payoff")
	}
	if strings.Contains(text, "lost zone") {
		tags = append(tags, "lost-zone")
	}
	if strings.Contains(text, "to 1 of your opponent's benched") ||
		strings.Contains(text, "damage to each of your opponent's") {
		tags = append(tags, "bench-damage")
	}
	if strings.Contains(text, "heal") {
		tags = append(tags, "heal")
	}
	for _, typ := range card.Types {
		tags = append(tags, "type:"+strings.ToLower(typ))
	}
	if card.EvolvesFrom != "" {
		tags = append(tags, "evolution")
	}
	return tags
}

func (c *Classifier) classifyTrainer(card *cards.CardFace) *CardClassification {
	result := &CardClassification{
		CardID:   card.ID,
		CardName: card.Name,
		Category: CategoryTrainer,
	}

	t := c.tables
	switch {
	case containsName(t.DrawSupporters, card.Name):
		result.TrainerType = TrainerDraw
		result.SynergyTags = appendTag(result.SynergyTags, "draw")
	case containsName(t.SearchTrainers, card.Name):
		result.TrainerType = TrainerSearch
		result.SynergyTags = appendTag(result.SynergyTags, "search")
	case containsName(t.EnergyAccel, card.Name):
		result.TrainerType = TrainerEnergyAccel
		result.SynergyTags = appendTag(result.SynergyTags, "energy-accel")
	case containsName(t.Disruption, card.Name):
		result.TrainerType = TrainerDisruption
		result.SynergyTags = appendTag(result.SynergyTags, "disruption")
	case containsName(t.Stadiums, card.Name) || card.HasSubtype("Stadium"):
		result.TrainerType = TrainerStadium
	case containsName(t.Recovery, card.Name):
		result.TrainerType = TrainerRecovery
		result.SynergyTags = appendTag(result.SynergyTags, "recovery")
	case containsName(t.SwitchCards, card.Name):
		result.TrainerType = TrainerSwitch
	case containsName(t.Tools, card.Name) || card.HasSubtype("Pokémon Tool") || card.HasSubtype("Pokemon Tool"):
		result.TrainerType = TrainerTool
	default:
		result.TrainerType = trainerTypeFromText(card)
	}

	if result.TrainerType == TrainerDraw || result.TrainerType == TrainerSearch {
		// Consistency trainers thin the deck.
		result.SynergyTags = appendTag(result.SynergyTags, "consistency")
	}
	text := strings.ToLower(card.CombinedText())
	if strings.Contains(text, "discard") {
		result.SynergyTags = appendTag(result.SynergyTags, "discard-cost")
	}

	if p, ok := c.tables.TrainerPower[card.Name]; ok {
		result.PowerLevel = clampPower(p)
	} else {
		result.PowerLevel = neutralPower
	}
	return result
}

// trainerTypeFromText is the fallback for trainers not in the curated name
// tables.
func trainerTypeFromText(card *cards.CardFace) TrainerType {
	text := strings.ToLower(card.CombinedText())
	switch {
	case matchesAny(text, drawKeywords):
		return TrainerDraw
	case strings.Contains(text, "search your deck"):
		return TrainerSearch
	case strings.Contains(text, "attach") && strings.Contains(text, "energy"):
		return TrainerEnergyAccel
	case strings.Contains(text, "your opponent"):
		return TrainerDisruption
	case strings.Contains(text, "switch") || strings.Contains(text, "retreat"):
		return TrainerSwitch
	case strings.Contains(text, "from your discard pile"):
		return TrainerRecovery
	case card.HasSubtype("Stadium"):
		return TrainerStadium
	default:
		return TrainerUtility
	}
}

func (c *Classifier) classifyEnergy(card *cards.CardFace) *CardClassification {
	result := &CardClassification{
		CardID:     card.ID,
		CardName:   card.Name,
		Category:   CategoryEnergy,
		PowerLevel: neutralPower,
	}

	result.SpecialEnergy = isSpecialEnergy(card)
	result.EnergyProvides = energyProvides(card)
	if result.SpecialEnergy {
		result.SynergyTags = appendTag(result.SynergyTags, "special-energy")
		result.PowerLevel = 6
	}
	return result
}

// isSpecialEnergy distinguishes basic from special energy. Basic energy is
// named "<Type> Energy" (optionally prefixed "Basic") and carries no rules.
func isSpecialEnergy(card *cards.CardFace) bool {
	if card.HasSubtype("Special") {
		return true
	}
	if card.HasSubtype("Basic") {
		return false
	}
	name := strings.TrimPrefix(card.Name, "Basic ")
	for _, t := range energyTypeNames {
		if name == t+" Energy" && len(card.Rules) == 0 {
			return false
		}
	}
	return true
}

var energyTypeNames = []string{
	"Grass", "Fire", "Water", "Lightning", "Psychic",
	"Fighting", "Darkness", "Metal", "Fairy", "Dragon", "Colorless",
}

// energyProvides derives the provided energy types from name tokens. Double,
// Twin and Triple prefixes provide that many colorless units.
func energyProvides(card *cards.CardFace) []string {
	name := card.Name
	units := 1
	switch {
	case strings.Contains(name, "Triple"):
		units = 3
	case strings.Contains(name, "Double") || strings.Contains(name, "Twin"):
		units = 2
	}

	var typ string
	for _, t := range energyTypeNames {
		if strings.Contains(name, t) {
			typ = t
			break
		}
	}
	if typ == "" {
		// Fall back to text patterns ("provides 2 Colorless Energy").
		text := strings.ToLower(card.CombinedText())
		for _, t := range energyTypeNames {
			if strings.Contains(text, strings.ToLower(t)+" energy") {
				typ = t
				break
			}
		}
	}
	if typ == "" || units > 1 {
		typ = "Colorless"
	}

	provides := make([]string, units)
	for i := range provides {
		provides[i] = typ
	}
	return provides
}

func abilitiesText(card *cards.CardFace) string {
	var b strings.Builder
	for _, ab := range card.Abilities {
		b.WriteString(ab.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func appendTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

func clampPower(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

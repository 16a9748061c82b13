package synergy

// namedCombo is a curated pairwise relation between two card names.
type namedCombo struct {
	a, b        string
	relation    Relation
	strength    float64
	description string
}

// knownCombos lists curated card pairings seen in competitive lists. Matched
// by exact card name in either direction.
var knownCombos = []namedCombo{
	{"Charizard ex", "Pidgeot ex", RelationCombosWith, 90, "Quick Search finds the pieces Charizard ex needs every turn"},
	{"Charizard ex", "Rare Candy", RelationAccelerates, 85, "Rare Candy skips Charmeleon to field Charizard ex a turn early"},
	{"Gardevoir ex", "Kirlia", RelationCombosWith, 85, "Refinement digs while setting up Psychic Embrace"},
	{"Gardevoir ex", "Zacian V", RelationAccelerates, 75, "Psychic Embrace powers Zacian V in one turn"},
	{"Comfey", "Colress's Experiment", RelationCombosWith, 85, "Both feed the Lost Zone count"},
	{"Comfey", "Sableye", RelationCombosWith, 80, "Flower Selecting fuels Lost Mine"},
	{"Comfey", "Mirage Gate", RelationCombosWith, 85, "Flower Selecting reaches the 7-card Lost Zone threshold"},
	{"Giratina VSTAR", "Comfey", RelationCombosWith, 85, "Comfey builds the Lost Zone Giratina needs"},
	{"Miraidon ex", "Electric Generator", RelationAccelerates, 85, "Tandem Unit benches the targets Generator fuels"},
	{"Lugia VSTAR", "Archeops", RelationAccelerates, 95, "Summoning Star puts Archeops into play for Primal Turbo"},
	{"Baxcalibur", "Chien-Pao ex", RelationAccelerates, 90, "Super Cold powers Hail Blade every turn"},
	{"Bibarel", "Bidoof", RelationCombosWith, 70, "Evolution line for Industrious Incisors draw"},
	{"Pidgeot ex", "Rare Candy", RelationAccelerates, 75, "Rare Candy fields Pidgeot ex without Pidgeotto"},
	{"Arceus VSTAR", "Double Turbo Energy", RelationAccelerates, 80, "Trinity Nova accepts Double Turbo and pays it forward"},
	{"Snorlax", "Rotom V", RelationCombosWith, 60, "Instant Charge refills while Snorlax stalls"},
}

// stadiumConflicts lists stadiums that work against the deck's own cards.
var stadiumConflicts = []struct {
	stadium     string
	hitsRuleBox bool // true: shuts off rule-box abilities; false: special energy
	description string
}{
	{"Path to the Peak", true, "Path to the Peak shuts off your own Rule Box abilities"},
	{"Temple of Sinnoh", false, "Temple of Sinnoh blanks your own special energy"},
}

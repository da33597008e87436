// Package narrative turns free-form generated text into typed game events.
//
// The generator is treated as an untrusted, semi-structured data source: every
// extraction here is best-effort with a defined fallback, and none of it ever
// fails on malformed input. Absence of a pattern is the common case, not an
// error.
package narrative

// PurchaseOffer is a parsed, not-yet-applied proposal to exchange gold for an
// item. It is transient: the trade resolver consumes it immediately.
type PurchaseOffer struct {
	// Item is the offered item's name.
	Item string
	// Price in gold. The parser passes through whatever integer it found;
	// economic validation (negative or unaffordable prices) belongs to the
	// trade resolver.
	Price int
	// Category is the normalized item category.
	Category string
	// Stats is the raw free-text stats field the offer was extracted from.
	Stats string

	// At most one of Damage, ArmorBonus, Heal is non-zero, inferred from the
	// stats text. All zero means a cosmetic item.
	Damage     int
	ArmorBonus int
	Heal       int
}

// Encounter is a parsed signal that combat should begin.
type Encounter struct {
	// Explicit is true when the text carried the enemy marker token, false
	// when the lexical fallback matched. The distinction is informational;
	// both start a battle.
	Explicit bool
}

// ParsedEvent is the result of interpreting one generated narration. The
// narrative text is always present; the other fields are optional events.
type ParsedEvent struct {
	// Text is the raw narration, kept verbatim as scene memory.
	Text string
	// Purchase is non-nil when a well-formed purchase line was found.
	Purchase *PurchaseOffer
	// Encounter is non-nil when the text signals an enemy encounter.
	Encounter *Encounter
}

// EnemyStats is a generator-suggested enemy stat block extracted from a JSON
// blob in generated text. Reward fields are never taken from the generator;
// the combat package derives them from character level.
type EnemyStats struct {
	Name        string `json:"name"`
	HP          int    `json:"hp"`
	Armor       int    `json:"armor"`
	Damage      int    `json:"damage"`
	Description string `json:"description"`
}

// DamageJudgement is the generator's structured assessment of a combat
// action, extracted from a JSON blob in generated text.
type DamageJudgement struct {
	Damage      int    `json:"damage"`
	Critical    bool   `json:"critical"`
	Description string `json:"description"`
}

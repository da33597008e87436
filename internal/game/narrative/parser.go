package narrative

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/dkessler/fableforge/internal/game/character"
)

// Marker tokens the generator is prompted to emit. The parser also applies a
// lexical fallback for encounters because the generator frequently drops the
// marker.
const (
	enemyMarker    = "ENEMY:"
	purchaseMarker = "PURCHASE:"
)

// aggressionVerbs trigger the encounter fallback when they co-occur with the
// word "enemy".
var aggressionVerbs = []string{"attacks", "pounces", "lunges", "jumps out"}

// purchaseRe matches a pipe-delimited purchase line:
//
//	PURCHASE: <item name> | <price> | <category> | <free-text stats>
//
// The sign on the price is accepted here so that the trade resolver, not the
// parser, gets to reject a nonsense negative price.
var purchaseRe = regexp.MustCompile(`(?im)^\s*PURCHASE:\s*([^|\n]+)\|\s*(-?\d+)\s*\|\s*(\w+)\s*\|\s*(\S[^\n]*)$`)

var firstIntRe = regexp.MustCompile(`\d+`)

// jsonBlobRe finds the first brace-delimited blob in generated text. The
// generator is asked for "ONLY JSON" but routinely wraps it in prose.
var jsonBlobRe = regexp.MustCompile(`\{[^{}]+\}`)

// Parse extracts typed events from one generated narration.
//
// Postcondition: Never fails; returns the raw text plus whichever optional
// events could be confidently extracted. Malformed sections degrade to "no
// event".
func Parse(raw string) ParsedEvent {
	ev := ParsedEvent{Text: raw}
	ev.Purchase = parsePurchase(raw)
	ev.Encounter = parseEncounter(raw)
	return ev
}

// parsePurchase extracts a purchase offer, or nil when no well-formed
// purchase line is present.
func parsePurchase(raw string) *PurchaseOffer {
	m := purchaseRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	price, err := strconv.Atoi(m[2])
	if err != nil {
		// Digits beyond int range. Treat as malformed.
		return nil
	}

	offer := &PurchaseOffer{
		Item:     strings.TrimSpace(m[1]),
		Price:    price,
		Category: character.NormalizeCategory(strings.ToLower(strings.TrimSpace(m[3]))),
		Stats:    strings.TrimSpace(m[4]),
	}
	if offer.Item == "" {
		return nil
	}

	offer.Damage, offer.ArmorBonus, offer.Heal = inferStats(offer.Stats)
	return offer
}

// inferStats classifies a free-text stats field into at most one of damage,
// armor bonus, or heal, testing keyword families in that priority order. The
// magnitude is the first integer in the text; no keyword means all zeros and
// the item behaves as cosmetic.
func inferStats(stats string) (damage, armorBonus, heal int) {
	lower := strings.ToLower(stats)
	n := firstInt(lower)
	if n == 0 {
		return 0, 0, 0
	}

	switch {
	case containsAny(lower, "damage", "dmg"):
		return n, 0, 0
	case containsAny(lower, "armor", "armour", "protection"):
		return 0, n, 0
	case containsAny(lower, "heal", "hp", "restore"):
		return 0, 0, n
	default:
		return 0, 0, 0
	}
}

// parseEncounter detects an enemy encounter: the explicit marker, or the word
// "enemy" alongside an aggression verb.
func parseEncounter(raw string) *Encounter {
	if strings.Contains(raw, enemyMarker) {
		return &Encounter{Explicit: true}
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "enemy") && containsAny(lower, aggressionVerbs...) {
		return &Encounter{Explicit: false}
	}
	return nil
}

// ExtractEnemyStats pulls a generator-suggested enemy stat block out of raw
// text containing a JSON blob.
//
// Postcondition: ok is true only when the blob parsed and carries a positive
// HP and damage; otherwise the caller must fall back to deterministic
// generation.
func ExtractEnemyStats(raw string) (EnemyStats, bool) {
	blob := jsonBlobRe.FindString(raw)
	if blob == "" {
		return EnemyStats{}, false
	}

	var stats EnemyStats
	if err := json.Unmarshal([]byte(blob), &stats); err != nil {
		return EnemyStats{}, false
	}
	if stats.HP <= 0 || stats.Damage <= 0 {
		return EnemyStats{}, false
	}
	if stats.Armor < 0 {
		stats.Armor = 0
	}
	return stats, true
}

// ExtractJudgement pulls a damage judgement out of raw text containing a JSON
// blob.
//
// Postcondition: ok is true only when the blob parsed and carries a positive
// damage; otherwise the caller must use the deterministic fallback formula.
func ExtractJudgement(raw string) (DamageJudgement, bool) {
	blob := jsonBlobRe.FindString(raw)
	if blob == "" {
		return DamageJudgement{}, false
	}

	var j DamageJudgement
	if err := json.Unmarshal([]byte(blob), &j); err != nil {
		return DamageJudgement{}, false
	}
	if j.Damage < 1 {
		return DamageJudgement{}, false
	}
	return j, true
}

func firstInt(s string) int {
	m := firstIntRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package combat

import (
	"math"
	"strings"
)

// Judgement is a structured assessment of one combat action: how much damage
// it deals, whether it was a critical hit, and a one-line description.
// Normally the narrative generator supplies it; Fallback produces one
// deterministically when the generator is unavailable or returns garbage.
type Judgement struct {
	Damage      int
	Critical    bool
	Description string
}

// criticalKeywords are matched verbatim (case-insensitive) against the action
// text by the fallback path.
var criticalKeywords = []string{"crit", "precisely"}

// Fallback computes a deterministic damage judgement from character stats and
// the defender's armor:
//
//	damage = max(1, round(floor(strength + agility/2) * mult - armor*0.3))
//
// where mult is 1.5 on a critical and 1.0 otherwise, and a critical is
// inferred from keyword matches in the action text. This is the system's only
// generator-independent combat behavior and must stay exact.
//
// Postcondition: Damage >= 1.
func Fallback(action string, strength, agility, enemyArmor int) Judgement {
	critical := isCritical(action)

	base := float64(strength + agility/2)
	mult := 1.0
	if critical {
		mult = 1.5
	}

	damage := int(math.Round(base*mult - float64(enemyArmor)*0.3))
	if damage < 1 {
		damage = 1
	}

	return Judgement{
		Damage:      damage,
		Critical:    critical,
		Description: "The blow finds its mark.",
	}
}

func isCritical(action string) bool {
	lower := strings.ToLower(action)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

package combat

import (
	"github.com/dkessler/fableforge/internal/game/character"
)

// Outcome classifies how an attack turn left the battle.
type Outcome int

const (
	// BattleContinues: the enemy survived and counterattacked without
	// dropping the character.
	BattleContinues Outcome = iota
	// Victory: the enemy's hit points reached zero; the battle is over and
	// rewards were granted.
	Victory
	// Defeat: the counterattack dropped the character; the battle is over
	// and the defeat penalty was applied.
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case BattleContinues:
		return "battle continues"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Rewards holds the progression granted for a victory.
type Rewards struct {
	Experience int
	Gold       int
}

// AttackResult reports one fully resolved attack turn.
type AttackResult struct {
	Outcome Outcome

	// Damage dealt to the enemy this turn, with Critical and Description
	// taken from the judgement.
	Damage      int
	Critical    bool
	Description string

	// EnemyHP is the enemy's hit points after the attack (zero-floored for
	// display).
	EnemyHP int
	// EnemyDamage is the counterattack damage taken; zero unless the battle
	// continued or ended in defeat.
	EnemyDamage int

	// LeveledUp is true when the victory pushed the character over the
	// experience threshold. Only ever true with Outcome == Victory.
	LeveledUp bool
	// Rewards is non-nil only with Outcome == Victory.
	Rewards *Rewards
}

// Defeat penalty and level-up constants.
const (
	defeatGoldPenalty = 20

	levelUpMaxHPGain    = 20
	levelUpStrengthGain = 2
	levelUpAgilityGain  = 2
)

// ResolveAttack applies one attack turn to the character and enemy in place
// and reports the outcome. The caller persists both according to the outcome
// (battle cleared on Victory and Defeat, saved on BattleContinues).
//
//   - The judgement damage is applied to the enemy; at zero or below the
//     character wins, gains the enemy's reward fields, and levels up exactly
//     once if experience reaches level * 100.
//   - Otherwise the enemy counterattacks for max(1, enemy damage - character
//     armor); if that drops the character, the defeat penalty applies: hit
//     points reset to half of max, gold loses up to 20, never below zero.
//
// Precondition: char and enemy must be non-nil; j.Damage >= 1.
// Postcondition: char satisfies all model invariants; the result's Outcome
// tells the caller whether the battle record is live.
func ResolveAttack(char *character.Character, enemy *Enemy, j Judgement) AttackResult {
	enemy.HP -= j.Damage

	res := AttackResult{
		Damage:      j.Damage,
		Critical:    j.Critical,
		Description: j.Description,
		EnemyHP:     enemy.HP,
	}
	if res.EnemyHP < 0 {
		res.EnemyHP = 0
	}

	if enemy.HP <= 0 {
		res.Outcome = Victory
		char.Experience += enemy.ExperienceReward
		char.AddGold(enemy.GoldReward)
		res.Rewards = &Rewards{Experience: enemy.ExperienceReward, Gold: enemy.GoldReward}

		// Exactly one level per resolution; a multi-level experience jump
		// waits for the next victory.
		if char.Experience >= char.ExperienceToLevel() {
			char.Level++
			char.MaxHP += levelUpMaxHPGain
			char.HP = char.MaxHP
			char.Strength += levelUpStrengthGain
			char.Agility += levelUpAgilityGain
			res.LeveledUp = true
		}
		return res
	}

	counter := enemy.Damage - char.Armor
	if counter < 1 {
		counter = 1
	}
	char.ApplyDamage(counter)
	res.EnemyDamage = counter

	if char.HP <= 0 {
		res.Outcome = Defeat
		char.HP = char.MaxHP / 2
		char.AddGold(-defeatGoldPenalty)
		return res
	}

	res.Outcome = BattleContinues
	return res
}

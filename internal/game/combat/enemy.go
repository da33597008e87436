// Package combat implements the battle state machine: enemy generation,
// damage judgement, and deterministic turn resolution.
package combat

// Reward pacing constants. Rewards derive from character level alone so that
// progression stays independent of generator variance.
const (
	experienceRewardPerLevel = 20
	goldRewardPerLevel       = 10
)

// Enemy is an ephemeral combat opponent. It exists only while a character has
// an active battle; at most one per character.
type Enemy struct {
	Name             string
	HP               int
	MaxHP            int
	Armor            int
	Damage           int
	ExperienceReward int
	GoldReward       int
}

// NewEnemy builds an Enemy from a stat suggestion, deriving reward fields
// from the character's level.
//
// Precondition: level >= 1; hp and damage must be positive, armor >= 0.
// Postcondition: Returns an Enemy at full HP with level-derived rewards.
func NewEnemy(name string, hp, armor, damage, level int) *Enemy {
	return &Enemy{
		Name:             name,
		HP:               hp,
		MaxHP:            hp,
		Armor:            armor,
		Damage:           damage,
		ExperienceReward: experienceRewardPerLevel * level,
		GoldReward:       goldRewardPerLevel * level,
	}
}

// DefaultEnemy is the deterministic backstop used when the generator fails to
// suggest a usable stat block. Stats scale linearly and monotonically with
// level.
//
// Precondition: level >= 1.
// Postcondition: Returns an Enemy whose HP, armor, and damage are
// non-decreasing in level, with level-derived rewards.
func DefaultEnemy(level int) *Enemy {
	return NewEnemy("Feral Wolf", 50+level*20, level*3, 5+level*3, level)
}

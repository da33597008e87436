// Package character defines the player character and item domain model.
package character

import "time"

// Item categories. Free-form category tokens from the narrative parser are
// normalized to one of these; anything unrecognized becomes CategoryMisc.
const (
	CategoryWeapon = "weapon"
	CategoryArmor  = "armor"
	CategoryPotion = "potion"
	CategoryMisc   = "misc"
)

// NormalizeCategory maps an arbitrary category token to a known category.
//
// Postcondition: Returns one of the Category constants.
func NormalizeCategory(token string) string {
	switch token {
	case CategoryWeapon, CategoryArmor, CategoryPotion:
		return token
	default:
		return CategoryMisc
	}
}

// Item is a single inventory entry. Items are immutable once created and are
// owned by exactly one character.
type Item struct {
	// ID is assigned by the persistence layer (uuid); empty for unsaved items.
	ID          string `yaml:"-"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Damage      int    `yaml:"damage"`
	ArmorBonus  int    `yaml:"armor_bonus"`
	Heal        int    `yaml:"heal"`
	Description string `yaml:"description"`
}

// Character represents a player's persistent progression state.
// PlayerID is the unique key; one character per player.
type Character struct {
	PlayerID string
	Name     string

	Level        int
	HP           int
	MaxHP        int
	Armor        int
	Strength     int
	Agility      int
	Intelligence int
	Experience   int
	Gold         int

	// Location is the current location name.
	Location string
	// SceneState is the last narrative text shown for this location, carried
	// forward as conversation memory for the next prompt.
	SceneState string

	EquippedWeapon string
	EquippedArmor  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a character with default starting stats.
//
// Precondition: playerID and name must be non-empty; location is the starting
// location name.
// Postcondition: Returns a level-1 character satisfying all model invariants.
func New(playerID, name, location string) *Character {
	return &Character{
		PlayerID:     playerID,
		Name:         name,
		Level:        1,
		HP:           100,
		MaxHP:        100,
		Armor:        5,
		Strength:     10,
		Agility:      10,
		Intelligence: 10,
		Experience:   0,
		Gold:         50,
		Location:     location,
	}
}

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount must be >= 0.
// Postcondition: 0 <= HP <= MaxHP.
func (c *Character) ApplyDamage(amount int) {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal raises HP by amount, capping at MaxHP.
//
// Precondition: amount must be >= 0.
// Postcondition: 0 <= HP <= MaxHP.
func (c *Character) Heal(amount int) {
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// SpendGold deducts amount from Gold if affordable.
//
// Postcondition: Returns true and deducts iff Gold >= amount; Gold never goes
// negative.
func (c *Character) SpendGold(amount int) bool {
	if amount < 0 || c.Gold < amount {
		return false
	}
	c.Gold -= amount
	return true
}

// AddGold credits amount to Gold, flooring the result at zero so a negative
// adjustment (a penalty) cannot drive the balance below empty.
//
// Postcondition: Gold >= 0.
func (c *Character) AddGold(amount int) {
	c.Gold += amount
	if c.Gold < 0 {
		c.Gold = 0
	}
}

// ExperienceToLevel returns the experience threshold for the next level.
//
// Postcondition: Returns Level * 100.
func (c *Character) ExperienceToLevel() int {
	return c.Level * 100
}

// Valid reports whether the character satisfies the model invariants.
//
// Postcondition: Returns true iff 0 <= HP <= MaxHP, Gold >= 0, Level >= 1.
func (c *Character) Valid() bool {
	return c.HP >= 0 && c.HP <= c.MaxHP && c.Gold >= 0 && c.Level >= 1
}

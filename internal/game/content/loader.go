// Package content loads static game content from YAML files: the starting
// location and the starter item grants for new characters.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dkessler/fableforge/internal/game/character"
)

// Starter holds the content granted to every newly created character.
type Starter struct {
	// Location is the name of the starting location.
	Location string `yaml:"location"`
	// Items are granted once at character creation.
	Items []character.Item `yaml:"items"`
}

// yamlStarterFile is the top-level YAML structure for the starter file.
type yamlStarterFile struct {
	Starter Starter `yaml:"starter"`
}

// LoadStarterFromFile reads and validates the starter content YAML file.
//
// Precondition: path must point to a valid YAML starter file.
// Postcondition: Returns validated Starter content or a non-nil error.
func LoadStarterFromFile(path string) (*Starter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading starter file %s: %w", path, err)
	}
	return LoadStarterFromBytes(data)
}

// LoadStarterFromBytes parses and validates starter content from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the starter schema.
// Postcondition: Returns validated Starter content or a non-nil error.
func LoadStarterFromBytes(data []byte) (*Starter, error) {
	var file yamlStarterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing starter YAML: %w", err)
	}

	s := file.Starter
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating starter content: %w", err)
	}
	return &s, nil
}

// Validate checks the starter content invariants.
//
// Postcondition: Returns nil iff the location is set and every item has a name
// and a recognized category.
func (s Starter) Validate() error {
	if s.Location == "" {
		return fmt.Errorf("starter.location must not be empty")
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("starter.items must not be empty")
	}
	for i, item := range s.Items {
		if item.Name == "" {
			return fmt.Errorf("starter.items[%d].name must not be empty", i)
		}
		if character.NormalizeCategory(item.Category) != item.Category {
			return fmt.Errorf("starter.items[%d].category %q is not a known category", i, item.Category)
		}
	}
	return nil
}

// DefaultStarter returns the built-in starter content used when no content
// file is configured: a basic weapon, basic armor, and a healing potion.
//
// Postcondition: Returns content that passes Validate.
func DefaultStarter() *Starter {
	return &Starter{
		Location: "Hollowmere Village",
		Items: []character.Item{
			{Name: "Rusty Sword", Category: character.CategoryWeapon, Damage: 5, Description: "An old, pitted blade"},
			{Name: "Leather Jerkin", Category: character.CategoryArmor, ArmorBonus: 3, Description: "Simple boiled leather"},
			{Name: "Healing Draught", Category: character.CategoryPotion, Heal: 30, Description: "Restores 30 HP"},
		},
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkessler/fableforge/internal/game/character"
)

// CharacterRepository provides character persistence keyed by player ID.
// One character per player.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// GetCharacter retrieves the character for the given player.
//
// Precondition: playerID must be non-empty.
// Postcondition: Returns the character, or (nil, nil) when the player has none.
func (r *CharacterRepository) GetCharacter(ctx context.Context, playerID string) (*character.Character, error) {
	var c character.Character
	err := r.db.QueryRow(ctx, `
		SELECT player_id, name, level, hp, max_hp, armor,
		       strength, agility, intelligence, experience, gold,
		       location, scene_state, equipped_weapon, equipped_armor,
		       created_at, updated_at
		FROM characters WHERE player_id = $1`,
		playerID,
	).Scan(
		&c.PlayerID, &c.Name, &c.Level, &c.HP, &c.MaxHP, &c.Armor,
		&c.Strength, &c.Agility, &c.Intelligence, &c.Experience, &c.Gold,
		&c.Location, &c.SceneState, &c.EquippedWeapon, &c.EquippedArmor,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return &c, nil
}

// SaveCharacter upserts the full character row.
//
// Precondition: c must satisfy the character model invariants.
// Postcondition: A subsequent GetCharacter returns the saved state.
func (r *CharacterRepository) SaveCharacter(ctx context.Context, c *character.Character) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO characters
			(player_id, name, level, hp, max_hp, armor,
			 strength, agility, intelligence, experience, gold,
			 location, scene_state, equipped_weapon, equipped_armor)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (player_id) DO UPDATE SET
			name = EXCLUDED.name,
			level = EXCLUDED.level,
			hp = EXCLUDED.hp,
			max_hp = EXCLUDED.max_hp,
			armor = EXCLUDED.armor,
			strength = EXCLUDED.strength,
			agility = EXCLUDED.agility,
			intelligence = EXCLUDED.intelligence,
			experience = EXCLUDED.experience,
			gold = EXCLUDED.gold,
			location = EXCLUDED.location,
			scene_state = EXCLUDED.scene_state,
			equipped_weapon = EXCLUDED.equipped_weapon,
			equipped_armor = EXCLUDED.equipped_armor,
			updated_at = NOW()`,
		c.PlayerID, c.Name, c.Level, c.HP, c.MaxHP, c.Armor,
		c.Strength, c.Agility, c.Intelligence, c.Experience, c.Gold,
		c.Location, c.SceneState, c.EquippedWeapon, c.EquippedArmor,
	)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

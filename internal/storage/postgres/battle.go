package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkessler/fableforge/internal/game/combat"
)

// BattleRepository persists the at-most-one active battle per player, so a
// fight survives disconnects and restarts.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// SaveBattle upserts the player's active battle.
//
// Precondition: playerID must reference an existing character.
// Postcondition: A subsequent GetBattle returns the saved enemy state.
func (r *BattleRepository) SaveBattle(ctx context.Context, playerID string, enemy *combat.Enemy) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO active_battles
			(player_id, enemy_name, enemy_hp, enemy_max_hp, enemy_armor,
			 enemy_damage, experience_reward, gold_reward)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (player_id) DO UPDATE SET
			enemy_name = EXCLUDED.enemy_name,
			enemy_hp = EXCLUDED.enemy_hp,
			enemy_max_hp = EXCLUDED.enemy_max_hp,
			enemy_armor = EXCLUDED.enemy_armor,
			enemy_damage = EXCLUDED.enemy_damage,
			experience_reward = EXCLUDED.experience_reward,
			gold_reward = EXCLUDED.gold_reward,
			updated_at = NOW()`,
		playerID, enemy.Name, enemy.HP, enemy.MaxHP, enemy.Armor,
		enemy.Damage, enemy.ExperienceReward, enemy.GoldReward,
	)
	if err != nil {
		return fmt.Errorf("saving battle: %w", err)
	}
	return nil
}

// GetBattle retrieves the player's active battle.
//
// Postcondition: Returns the enemy, or (nil, nil) when no battle is active.
func (r *BattleRepository) GetBattle(ctx context.Context, playerID string) (*combat.Enemy, error) {
	var e combat.Enemy
	err := r.db.QueryRow(ctx, `
		SELECT enemy_name, enemy_hp, enemy_max_hp, enemy_armor,
		       enemy_damage, experience_reward, gold_reward
		FROM active_battles WHERE player_id = $1`,
		playerID,
	).Scan(
		&e.Name, &e.HP, &e.MaxHP, &e.Armor,
		&e.Damage, &e.ExperienceReward, &e.GoldReward,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying battle: %w", err)
	}
	return &e, nil
}

// ClearBattle removes the player's active battle. Clearing an absent battle
// is a no-op.
func (r *BattleRepository) ClearBattle(ctx context.Context, playerID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM active_battles WHERE player_id = $1`, playerID)
	if err != nil {
		return fmt.Errorf("clearing battle: %w", err)
	}
	return nil
}

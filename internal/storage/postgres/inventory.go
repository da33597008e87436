package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkessler/fableforge/internal/game/character"
)

// InventoryRepository provides insert-only item persistence per player.
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates an InventoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AddItem inserts an item into the player's inventory, assigning its ID.
//
// Precondition: playerID must reference an existing character; item.Name must
// be non-empty.
// Postcondition: item.ID is set to the assigned uuid.
func (r *InventoryRepository) AddItem(ctx context.Context, playerID string, item *character.Item) error {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory
			(id, player_id, name, category, damage, armor_bonus, heal, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, playerID, item.Name, item.Category,
		item.Damage, item.ArmorBonus, item.Heal, item.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting inventory item: %w", err)
	}
	item.ID = id
	return nil
}

// Inventory returns all of the player's items in acquisition order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *InventoryRepository) Inventory(ctx context.Context, playerID string) ([]character.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, category, damage, armor_bonus, heal, description
		FROM inventory WHERE player_id = $1 ORDER BY created_at ASC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	items := make([]character.Item, 0)
	for rows.Next() {
		var item character.Item
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Category,
			&item.Damage, &item.ArmorBonus, &item.Heal, &item.Description,
		); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

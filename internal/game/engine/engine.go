// Package engine orchestrates the game loop: it builds prompts, interprets
// generated narration, routes events to the combat and trade resolvers, and
// persists the results.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dkessler/fableforge/internal/game/character"
	"github.com/dkessler/fableforge/internal/game/combat"
	"github.com/dkessler/fableforge/internal/game/content"
	"github.com/dkessler/fableforge/internal/game/narrative"
	"github.com/dkessler/fableforge/internal/game/trade"
)

// ErrCharacterNotFound is returned when no character exists for a player.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterExists is returned when creating a character for a player who
// already has one.
var ErrCharacterExists = errors.New("character already exists")

// ErrNoActiveBattle is returned when an attack is attempted outside a battle.
var ErrNoActiveBattle = errors.New("no active battle")

// ErrNoActiveScene is returned when an action is attempted before any scene
// has been explored.
var ErrNoActiveScene = errors.New("no active scene")

// fallbackNarrative stands in for generated text when the generation service
// is unavailable. State is never mutated on that path.
const fallbackNarrative = "The threads of the story tangle for a moment. Nothing happens. Try again shortly."

// CharacterStore persists character records keyed by player identifier.
// Save is an idempotent upsert. Get returns (nil, nil) when absent.
type CharacterStore interface {
	GetCharacter(ctx context.Context, playerID string) (*character.Character, error)
	SaveCharacter(ctx context.Context, c *character.Character) error
}

// InventoryStore persists the insert-only item inventory.
type InventoryStore interface {
	AddItem(ctx context.Context, playerID string, item *character.Item) error
	Inventory(ctx context.Context, playerID string) ([]character.Item, error)
}

// BattleStore persists the at-most-one active battle per player.
// Save is an idempotent upsert. Get returns (nil, nil) when absent.
type BattleStore interface {
	SaveBattle(ctx context.Context, playerID string, enemy *combat.Enemy) error
	GetBattle(ctx context.Context, playerID string) (*combat.Enemy, error)
	ClearBattle(ctx context.Context, playerID string) error
}

// Generator produces narrative text for a prompt. Failures are recoverable;
// the engine degrades to a fallback narrative without mutating state.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ExploreResult is the payload for explore and act requests.
type ExploreResult struct {
	// Narrative is the text to show the player (raw generated text, the
	// resumed scene, or the fallback narrative).
	Narrative string
	// Resumed is true when an existing scene was returned without a
	// generation call.
	Resumed bool
	// Degraded is true when generation failed and the fallback narrative was
	// substituted. No state changed.
	Degraded bool
	// EncounterStarted is true when this request started a battle; Enemy is
	// then non-nil.
	EncounterStarted bool
	Enemy            *combat.Enemy
	// Purchase is non-nil when a purchase offer was resolved (either way).
	Purchase *trade.PurchaseOutcome
}

// AttackPayload is the payload for attack requests.
type AttackPayload struct {
	Result combat.AttackResult
	// Enemy is the post-attack enemy snapshot (its HP may be zero or below
	// on victory).
	Enemy *combat.Enemy
	// Character is the post-attack character snapshot.
	Character *character.Character
}

// Engine composes the parser and resolvers per player request. All mutating
// operations on one player are serialized; different players proceed in
// parallel.
type Engine struct {
	chars   CharacterStore
	inv     InventoryStore
	battles BattleStore
	gen     Generator
	starter *content.Starter
	logger  *zap.Logger

	// Token budgets for narration vs small JSON stat calls.
	sceneTokens int
	statTokens  int

	locks playerLocks
}

// New creates an Engine with the given collaborators.
//
// Precondition: all collaborators must be non-nil; starter must validate;
// sceneTokens and statTokens must be >= 1.
func New(chars CharacterStore, inv InventoryStore, battles BattleStore, gen Generator,
	starter *content.Starter, sceneTokens, statTokens int, logger *zap.Logger) *Engine {
	return &Engine{
		chars:       chars,
		inv:         inv,
		battles:     battles,
		gen:         gen,
		starter:     starter,
		logger:      logger,
		sceneTokens: sceneTokens,
		statTokens:  statTokens,
	}
}

// CreateCharacter allocates a new character with default stats and the
// starter item grants, and persists it.
//
// Precondition: playerID and name must be non-empty.
// Postcondition: Returns the created character, or ErrCharacterExists.
func (e *Engine) CreateCharacter(ctx context.Context, playerID, name string) (*character.Character, error) {
	defer e.locks.acquire(playerID)()

	existing, err := e.chars.GetCharacter(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading character: %w", err)
	}
	if existing != nil {
		return nil, ErrCharacterExists
	}

	char := character.New(playerID, name, e.starter.Location)
	if err := e.chars.SaveCharacter(ctx, char); err != nil {
		return nil, fmt.Errorf("saving character: %w", err)
	}
	for i := range e.starter.Items {
		item := e.starter.Items[i]
		if err := e.inv.AddItem(ctx, playerID, &item); err != nil {
			return nil, fmt.Errorf("granting starter item %q: %w", item.Name, err)
		}
	}

	e.logger.Info("character created",
		zap.String("player_id", playerID),
		zap.String("name", name),
	)
	return char, nil
}

// Character returns the player's character.
//
// Postcondition: Returns the character or ErrCharacterNotFound.
func (e *Engine) Character(ctx context.Context, playerID string) (*character.Character, error) {
	char, err := e.chars.GetCharacter(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading character: %w", err)
	}
	if char == nil {
		return nil, ErrCharacterNotFound
	}
	return char, nil
}

// Inventory returns the player's items.
func (e *Engine) Inventory(ctx context.Context, playerID string) ([]character.Item, error) {
	return e.inv.Inventory(ctx, playerID)
}

// ActiveBattle returns the player's active battle, or nil when there is none.
func (e *Engine) ActiveBattle(ctx context.Context, playerID string) (*combat.Enemy, error) {
	return e.battles.GetBattle(ctx, playerID)
}

// Explore narrates the player's current location. With fresh == false an
// existing scene is resumed without a generation call; with fresh == true the
// scene memory is discarded and a new scene generated.
//
// Postcondition: On successful generation the new scene is persisted as scene
// memory and any encounter starts a battle. On generation failure a degraded
// result is returned and no state changes.
func (e *Engine) Explore(ctx context.Context, playerID string, fresh bool) (*ExploreResult, error) {
	defer e.locks.acquire(playerID)()

	char, err := e.Character(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !fresh && char.SceneState != "" {
		return &ExploreResult{Narrative: char.SceneState, Resumed: true}, nil
	}

	text, err := e.gen.Generate(ctx, narrative.ScenePrompt(char.Location, char.Level), e.sceneTokens)
	if err != nil {
		e.logger.Warn("scene generation degraded",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return &ExploreResult{Narrative: fallbackNarrative, Degraded: true}, nil
	}

	char.SceneState = text
	if err := e.chars.SaveCharacter(ctx, char); err != nil {
		return nil, fmt.Errorf("saving scene state: %w", err)
	}

	res := &ExploreResult{Narrative: text}
	ev := narrative.Parse(text)
	if ev.Encounter != nil {
		if err := e.maybeStartBattle(ctx, char, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Act resolves a free-text exploration action: it narrates the outcome,
// applies any purchase offer, persists the new scene memory, and starts a
// battle on an encounter.
//
// Precondition: A scene must be active (ErrNoActiveScene otherwise).
// Postcondition: On successful generation the narration is persisted as scene
// memory unconditionally. On generation failure nothing changes.
func (e *Engine) Act(ctx context.Context, playerID, action string) (*ExploreResult, error) {
	defer e.locks.acquire(playerID)()

	char, err := e.Character(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if char.SceneState == "" {
		return nil, ErrNoActiveScene
	}

	prompt := narrative.ActionPrompt(char.Location, char.SceneState, action, char.Gold)
	text, err := e.gen.Generate(ctx, prompt, e.sceneTokens)
	if err != nil {
		e.logger.Warn("action generation degraded",
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return &ExploreResult{Narrative: fallbackNarrative, Degraded: true}, nil
	}

	res := &ExploreResult{Narrative: text}
	ev := narrative.Parse(text)

	if ev.Purchase != nil {
		outcome, item := trade.Resolve(char, ev.Purchase)
		res.Purchase = &outcome
		if item != nil {
			if err := e.inv.AddItem(ctx, playerID, item); err != nil {
				return nil, fmt.Errorf("adding purchased item: %w", err)
			}
		}
	}

	// Scene memory advances regardless of what the text contained, so the
	// next prompt has continuity.
	char.SceneState = text
	if err := e.chars.SaveCharacter(ctx, char); err != nil {
		return nil, fmt.Errorf("saving scene state: %w", err)
	}

	if ev.Encounter != nil {
		if err := e.maybeStartBattle(ctx, char, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Attack resolves one combat turn for the player's active battle.
//
// Postcondition: Returns ErrNoActiveBattle without mutation when no battle is
// active. Otherwise the turn is resolved (generator judgement with
// deterministic fallback) and character and battle state persisted per the
// outcome.
func (e *Engine) Attack(ctx context.Context, playerID, action string) (*AttackPayload, error) {
	defer e.locks.acquire(playerID)()

	char, err := e.Character(ctx, playerID)
	if err != nil {
		return nil, err
	}
	enemy, err := e.battles.GetBattle(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading battle: %w", err)
	}
	if enemy == nil {
		return nil, ErrNoActiveBattle
	}

	j := e.judge(ctx, char, enemy, action)
	result := combat.ResolveAttack(char, enemy, j)

	if err := e.chars.SaveCharacter(ctx, char); err != nil {
		return nil, fmt.Errorf("saving character: %w", err)
	}
	switch result.Outcome {
	case combat.BattleContinues:
		if err := e.battles.SaveBattle(ctx, playerID, enemy); err != nil {
			return nil, fmt.Errorf("saving battle: %w", err)
		}
	default:
		if err := e.battles.ClearBattle(ctx, playerID); err != nil {
			return nil, fmt.Errorf("clearing battle: %w", err)
		}
	}

	e.logger.Debug("attack resolved",
		zap.String("player_id", playerID),
		zap.String("outcome", result.Outcome.String()),
		zap.Int("damage", result.Damage),
	)
	return &AttackPayload{Result: result, Enemy: enemy, Character: char}, nil
}

// judge obtains a damage judgement from the generator, falling back to the
// deterministic formula when the generator fails or returns garbage.
func (e *Engine) judge(ctx context.Context, char *character.Character, enemy *combat.Enemy, action string) combat.Judgement {
	prompt := narrative.JudgementPrompt(action, enemy.Name, char.Strength, char.Agility, enemy.Armor)
	text, err := e.gen.Generate(ctx, prompt, e.statTokens)
	if err == nil {
		if dj, ok := narrative.ExtractJudgement(text); ok {
			if dj.Damage > narrative.JudgementDamageMax {
				dj.Damage = narrative.JudgementDamageMax
			}
			return combat.Judgement{Damage: dj.Damage, Critical: dj.Critical, Description: dj.Description}
		}
	}
	return combat.Fallback(action, char.Strength, char.Agility, enemy.Armor)
}

// maybeStartBattle starts a battle for the parsed encounter unless one is
// already active, in which case the encounter is ignored and the existing
// battle kept.
func (e *Engine) maybeStartBattle(ctx context.Context, char *character.Character, res *ExploreResult) error {
	existing, err := e.battles.GetBattle(ctx, char.PlayerID)
	if err != nil {
		return fmt.Errorf("loading battle: %w", err)
	}
	if existing != nil {
		e.logger.Warn("encounter ignored, battle already active",
			zap.String("player_id", char.PlayerID),
			zap.String("enemy", existing.Name),
		)
		return nil
	}

	enemy := e.spawnEnemy(ctx, char)
	if err := e.battles.SaveBattle(ctx, char.PlayerID, enemy); err != nil {
		return fmt.Errorf("saving battle: %w", err)
	}

	res.EncounterStarted = true
	res.Enemy = enemy
	e.logger.Info("battle started",
		zap.String("player_id", char.PlayerID),
		zap.String("enemy", enemy.Name),
		zap.Int("enemy_hp", enemy.MaxHP),
	)
	return nil
}

// spawnEnemy asks the generator for a level-appropriate stat block, falling
// back to the deterministic enemy when the suggestion is unusable.
func (e *Engine) spawnEnemy(ctx context.Context, char *character.Character) *combat.Enemy {
	text, err := e.gen.Generate(ctx, narrative.EnemyPrompt(char.Level, char.Location), e.statTokens)
	if err == nil {
		if stats, ok := narrative.ExtractEnemyStats(text); ok {
			return combat.NewEnemy(stats.Name, stats.HP, stats.Armor, stats.Damage, char.Level)
		}
	}
	return combat.DefaultEnemy(char.Level)
}

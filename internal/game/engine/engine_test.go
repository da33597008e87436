package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkessler/fableforge/internal/game/character"
	"github.com/dkessler/fableforge/internal/game/combat"
	"github.com/dkessler/fableforge/internal/game/content"
)

type memStore struct {
	chars   map[string]*character.Character
	items   map[string][]character.Item
	battles map[string]*combat.Enemy
}

func newMemStore() *memStore {
	return &memStore{
		chars:   make(map[string]*character.Character),
		items:   make(map[string][]character.Item),
		battles: make(map[string]*combat.Enemy),
	}
}

func (m *memStore) GetCharacter(_ context.Context, playerID string) (*character.Character, error) {
	c, ok := m.chars[playerID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) SaveCharacter(_ context.Context, c *character.Character) error {
	cp := *c
	m.chars[c.PlayerID] = &cp
	return nil
}

func (m *memStore) AddItem(_ context.Context, playerID string, item *character.Item) error {
	m.items[playerID] = append(m.items[playerID], *item)
	return nil
}

func (m *memStore) Inventory(_ context.Context, playerID string) ([]character.Item, error) {
	return m.items[playerID], nil
}

func (m *memStore) SaveBattle(_ context.Context, playerID string, enemy *combat.Enemy) error {
	cp := *enemy
	m.battles[playerID] = &cp
	return nil
}

func (m *memStore) GetBattle(_ context.Context, playerID string) (*combat.Enemy, error) {
	e, ok := m.battles[playerID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) ClearBattle(_ context.Context, playerID string) error {
	delete(m.battles, playerID)
	return nil
}

// scriptedGenerator returns canned responses in order, or err for every call
// when err is set.
type scriptedGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next, nil
}

func newTestEngine(t *testing.T, gen Generator) (*Engine, *memStore) {
	t.Helper()
	store := newMemStore()
	eng := New(store, store, store, gen, content.DefaultStarter(), 500, 200, zap.NewNop())
	return eng, store
}

func TestCreateCharacterGrantsStarterKit(t *testing.T) {
	eng, store := newTestEngine(t, &scriptedGenerator{})

	char, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	assert.Equal(t, "Yrsa", char.Name)
	assert.Equal(t, 1, char.Level)
	assert.Equal(t, 50, char.Gold)
	assert.Equal(t, content.DefaultStarter().Location, char.Location)

	items, err := eng.Inventory(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, items, len(content.DefaultStarter().Items))

	_, ok := store.chars["p1"]
	assert.True(t, ok)
}

func TestCreateCharacterRejectsDuplicate(t *testing.T) {
	eng, _ := newTestEngine(t, &scriptedGenerator{})

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	_, err = eng.CreateCharacter(context.Background(), "p1", "Yrsa Again")
	assert.ErrorIs(t, err, ErrCharacterExists)
}

func TestCharacterNotFound(t *testing.T) {
	eng, _ := newTestEngine(t, &scriptedGenerator{})

	_, err := eng.Character(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestExploreGeneratesAndPersistsScene(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"A quiet square under rain.\nACTIONS: look, leave"}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	res, err := eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.False(t, res.Resumed)
	assert.Contains(t, res.Narrative, "quiet square")
	assert.Equal(t, res.Narrative, store.chars["p1"].SceneState)
}

func TestExploreResumesExistingScene(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"First scene."}}
	eng, _ := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	first, err := eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)

	second, err := eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)
	assert.True(t, second.Resumed)
	assert.Equal(t, first.Narrative, second.Narrative)
	assert.Len(t, gen.prompts, 1, "no second generation call expected")
}

func TestExploreFreshDiscardsScene(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"First scene.", "Second scene."}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	_, err = eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)

	res, err := eng.Explore(context.Background(), "p1", true)
	require.NoError(t, err)
	assert.Equal(t, "Second scene.", res.Narrative)
	assert.Equal(t, "Second scene.", store.chars["p1"].SceneState)
}

func TestExploreDegradesWithoutMutation(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("upstream down")}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	res, err := eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.NotEmpty(t, res.Narrative)
	assert.Empty(t, store.chars["p1"].SceneState)
	assert.Empty(t, store.battles)
}

func TestExploreStartsEncounterBattle(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"ENEMY: A gaunt shape drops from the rafters and attacks!",
		`{"name": "Rafter Ghoul", "hp": 70, "armor": 3, "damage": 8, "description": "pale and quick"}`,
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	res, err := eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)
	require.True(t, res.EncounterStarted)
	require.NotNil(t, res.Enemy)
	assert.Equal(t, "Rafter Ghoul", res.Enemy.Name)
	assert.Equal(t, 70, res.Enemy.HP)
	assert.NotNil(t, store.battles["p1"])
}

func TestEncounterFallsBackToDefaultEnemy(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"ENEMY: Something attacks from the dark.",
		"no json here",
	}}
	eng, _ := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	res, err := eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)
	require.True(t, res.EncounterStarted)
	assert.Equal(t, combat.DefaultEnemy(1).Name, res.Enemy.Name)
	assert.Equal(t, combat.DefaultEnemy(1).MaxHP, res.Enemy.MaxHP)
}

func TestActRequiresActiveScene(t *testing.T) {
	eng, _ := newTestEngine(t, &scriptedGenerator{})

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	_, err = eng.Act(context.Background(), "p1", "look around")
	assert.ErrorIs(t, err, ErrNoActiveScene)
}

func TestActResolvesPurchase(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"A market stall.",
		"RESULT: The smith slides a blade across the counter.\nPURCHASE: Iron Sword | 30 | weapon | damage 8",
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	_, err = eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)

	res, err := eng.Act(context.Background(), "p1", "buy the sword")
	require.NoError(t, err)
	require.NotNil(t, res.Purchase)
	assert.True(t, res.Purchase.Accepted)
	assert.Equal(t, 20, res.Purchase.GoldLeft)
	assert.Equal(t, 20, store.chars["p1"].Gold)

	items, err := eng.Inventory(context.Background(), "p1")
	require.NoError(t, err)
	starterCount := len(content.DefaultStarter().Items)
	require.Len(t, items, starterCount+1)
	bought := items[starterCount]
	assert.Equal(t, "Iron Sword", bought.Name)
	assert.Equal(t, 8, bought.Damage)
}

func TestActRejectsUnaffordablePurchase(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"A market stall.",
		"PURCHASE: Runed Greatsword | 900 | weapon | damage 40",
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	_, err = eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)

	res, err := eng.Act(context.Background(), "p1", "buy the greatsword")
	require.NoError(t, err)
	require.NotNil(t, res.Purchase)
	assert.False(t, res.Purchase.Accepted)
	assert.Equal(t, 850, res.Purchase.GoldNeeded)
	assert.Equal(t, 50, store.chars["p1"].Gold)

	items, err := eng.Inventory(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, items, len(content.DefaultStarter().Items))
}

func TestActAdvancesSceneMemory(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"The market.",
		"RESULT: You slip down an alley.",
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	_, err = eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)

	_, err = eng.Act(context.Background(), "p1", "slip away")
	require.NoError(t, err)
	assert.Contains(t, store.chars["p1"].SceneState, "alley")
	// The prior scene fed the action prompt.
	assert.Contains(t, gen.prompts[1], "The market.")
}

func TestActIgnoresEncounterDuringBattle(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"The market.",
		"RESULT: A cutpurse lunges at you! ENEMY: cutpurse",
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	_, err = eng.Explore(context.Background(), "p1", false)
	require.NoError(t, err)

	active := combat.DefaultEnemy(1)
	require.NoError(t, store.SaveBattle(context.Background(), "p1", active))

	res, err := eng.Act(context.Background(), "p1", "walk on")
	require.NoError(t, err)
	assert.False(t, res.EncounterStarted)
	assert.Equal(t, active.Name, store.battles["p1"].Name)
}

func TestAttackWithoutBattle(t *testing.T) {
	eng, _ := newTestEngine(t, &scriptedGenerator{})

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)

	_, err = eng.Attack(context.Background(), "p1", "swing")
	assert.ErrorIs(t, err, ErrNoActiveBattle)
}

func TestAttackContinuesAndPersists(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"damage": 12, "critical": false, "description": "A clean cut."}`,
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	require.NoError(t, store.SaveBattle(context.Background(), "p1", combat.NewEnemy("Bog Troll", 60, 2, 9, 1)))

	payload, err := eng.Attack(context.Background(), "p1", "swing low")
	require.NoError(t, err)
	assert.Equal(t, combat.BattleContinues, payload.Result.Outcome)
	assert.Equal(t, 12, payload.Result.Damage)
	assert.Equal(t, 48, store.battles["p1"].HP)
	assert.Equal(t, 100-(9-5), store.chars["p1"].HP)
}

func TestAttackVictoryClearsBattle(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"damage": 50, "critical": true, "description": "A perfect strike."}`,
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	require.NoError(t, store.SaveBattle(context.Background(), "p1", combat.NewEnemy("Bog Troll", 40, 2, 9, 1)))

	payload, err := eng.Attack(context.Background(), "p1", "finish it")
	require.NoError(t, err)
	assert.Equal(t, combat.Victory, payload.Result.Outcome)
	require.NotNil(t, payload.Result.Rewards)
	assert.Empty(t, store.battles)
	assert.Equal(t, 50+10, store.chars["p1"].Gold)
	assert.Equal(t, 20, store.chars["p1"].Experience)
}

func TestAttackDefeatClearsBattle(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"damage": 1, "critical": false, "description": "A glancing blow."}`,
	}}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	char := store.chars["p1"]
	char.HP = 3
	require.NoError(t, store.SaveCharacter(context.Background(), char))
	require.NoError(t, store.SaveBattle(context.Background(), "p1", combat.NewEnemy("Bog Troll", 200, 0, 30, 3)))

	payload, err := eng.Attack(context.Background(), "p1", "swing wildly")
	require.NoError(t, err)
	assert.Equal(t, combat.Defeat, payload.Result.Outcome)
	assert.Empty(t, store.battles)
	assert.Equal(t, 50, store.chars["p1"].HP, "revived at half max HP")
	assert.Equal(t, 30, store.chars["p1"].Gold, "defeat penalty applied")
}

func TestAttackClampsExcessiveJudgement(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"damage": 9000, "critical": true, "description": "Impossible."}`,
	}}
	eng, _ := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	store := eng.battles.(*memStore)
	require.NoError(t, store.SaveBattle(context.Background(), "p1", combat.NewEnemy("Bog Troll", 500, 2, 9, 1)))

	payload, err := eng.Attack(context.Background(), "p1", "ultimate strike")
	require.NoError(t, err)
	assert.Equal(t, 50, payload.Result.Damage)
}

func TestAttackFallsBackOnGenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("upstream down")}
	eng, store := newTestEngine(t, gen)

	_, err := eng.CreateCharacter(context.Background(), "p1", "Yrsa")
	require.NoError(t, err)
	require.NoError(t, store.SaveBattle(context.Background(), "p1", combat.NewEnemy("Bog Troll", 60, 4, 9, 1)))

	payload, err := eng.Attack(context.Background(), "p1", "swing")
	require.NoError(t, err)
	// strength 10, agility 10, enemy armor 4: round((10+5)*1.0 - 1.2) = 14.
	assert.Equal(t, 14, payload.Result.Damage)
	assert.True(t, strings.Contains(payload.Result.Description, "mark"))
}

func TestPlayerLocksIndependentPlayers(t *testing.T) {
	var locks playerLocks

	unlock1 := locks.acquire("p1")
	unlock2 := locks.acquire("p2")
	unlock1()
	unlock2()

	// Re-acquiring after release must not deadlock.
	locks.acquire("p1")()
}

package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNewDefaults(t *testing.T) {
	c := New("p1", "Wren", "Hollowmere Village")
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 100, c.HP)
	assert.Equal(t, 100, c.MaxHP)
	assert.Equal(t, 5, c.Armor)
	assert.Equal(t, 10, c.Strength)
	assert.Equal(t, 10, c.Agility)
	assert.Equal(t, 10, c.Intelligence)
	assert.Equal(t, 50, c.Gold)
	assert.Equal(t, "Hollowmere Village", c.Location)
	assert.True(t, c.Valid())
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	c := New("p1", "Wren", "start")
	c.ApplyDamage(250)
	assert.Equal(t, 0, c.HP)
	assert.True(t, c.Valid())
}

func TestHealCapsAtMax(t *testing.T) {
	c := New("p1", "Wren", "start")
	c.HP = 40
	c.Heal(500)
	assert.Equal(t, c.MaxHP, c.HP)
}

func TestSpendGold(t *testing.T) {
	c := New("p1", "Wren", "start")

	assert.True(t, c.SpendGold(30))
	assert.Equal(t, 20, c.Gold)

	assert.False(t, c.SpendGold(21), "overdraft must be rejected")
	assert.Equal(t, 20, c.Gold)

	assert.False(t, c.SpendGold(-5), "negative spend must be rejected")
	assert.Equal(t, 20, c.Gold)
}

func TestAddGoldFloorsAtZero(t *testing.T) {
	c := New("p1", "Wren", "start")
	c.Gold = 10
	c.AddGold(-20)
	assert.Equal(t, 0, c.Gold)
}

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]string{
		"weapon":   CategoryWeapon,
		"armor":    CategoryArmor,
		"potion":   CategoryPotion,
		"misc":     CategoryMisc,
		"trinket":  CategoryMisc,
		"":         CategoryMisc,
		"WEAPON":   CategoryMisc, // tokens are matched exactly; parser lowercases
		"artifact": CategoryMisc,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCategory(in), "token %q", in)
	}
}

func TestPropertyDamageHealPreserveInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New("p1", "Wren", "start")
		c.MaxHP = rapid.IntRange(1, 500).Draw(t, "max_hp")
		c.HP = rapid.IntRange(0, c.MaxHP).Draw(t, "hp")

		for _, amount := range rapid.SliceOfN(rapid.IntRange(0, 200), 0, 10).Draw(t, "amounts") {
			if rapid.Bool().Draw(t, "heal") {
				c.Heal(amount)
			} else {
				c.ApplyDamage(amount)
			}
			if c.HP < 0 || c.HP > c.MaxHP {
				t.Fatalf("hp invariant violated: hp=%d max=%d", c.HP, c.MaxHP)
			}
		}
	})
}

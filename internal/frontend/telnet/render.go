package telnet

import (
	"fmt"
	"strings"

	"github.com/dkessler/fableforge/internal/game/character"
	"github.com/dkessler/fableforge/internal/game/combat"
	"github.com/dkessler/fableforge/internal/game/engine"
)

// displayHP floors a hit point value at zero for display.
func displayHP(hp int) int {
	if hp < 0 {
		return 0
	}
	return hp
}

func (s *Session) writeCharacter(conn *Conn, c *character.Character) {
	_ = conn.WriteLine("")
	_ = conn.WriteLine(Colorf(Bold, "%s  (level %d)", c.Name, c.Level))
	_ = conn.WriteLine(fmt.Sprintf("  HP %d/%d   Armor %d   Gold %d",
		c.HP, c.MaxHP, c.Armor, c.Gold))
	_ = conn.WriteLine(fmt.Sprintf("  STR %d   AGI %d   INT %d",
		c.Strength, c.Agility, c.Intelligence))
	_ = conn.WriteLine(fmt.Sprintf("  Experience %d/%d   Location: %s",
		c.Experience, c.ExperienceToLevel(), c.Location))
}

func (s *Session) writeInventory(conn *Conn, items []character.Item) {
	_ = conn.WriteLine("")
	if len(items) == 0 {
		_ = conn.WriteLine("Your pack is empty.")
		return
	}
	_ = conn.WriteLine(Colorize(Bold, "You carry:"))
	for _, item := range items {
		_ = conn.WriteLine("  " + describeItem(item))
	}
}

// describeItem renders one inventory line, e.g.
// "Iron Sword [weapon] (damage 8)".
func describeItem(item character.Item) string {
	var b strings.Builder
	b.WriteString(item.Name)
	b.WriteString(" [" + item.Category + "]")
	switch {
	case item.Damage > 0:
		fmt.Fprintf(&b, " (damage %d)", item.Damage)
	case item.ArmorBonus > 0:
		fmt.Fprintf(&b, " (armor %d)", item.ArmorBonus)
	case item.Heal > 0:
		fmt.Fprintf(&b, " (heals %d)", item.Heal)
	}
	return b.String()
}

func (s *Session) writeExplore(conn *Conn, res *engine.ExploreResult) {
	_ = conn.WriteLine("")
	if res.Degraded {
		_ = conn.WriteLine(Colorize(Dim, res.Narrative))
		return
	}
	_ = conn.WriteLine(res.Narrative)

	if res.Purchase != nil {
		p := res.Purchase
		if p.Accepted {
			_ = conn.WriteLine(Colorf(BrightGreen, "You bought %s for %d gold. %d gold remains.",
				p.Item, p.Price, p.GoldLeft))
		} else if p.GoldNeeded > 0 {
			_ = conn.WriteLine(Colorf(Yellow, "You cannot afford that. You are %d gold short.",
				p.GoldNeeded))
		} else {
			_ = conn.WriteLine(Colorize(Yellow, "The deal falls through."))
		}
	}

	if res.EncounterStarted && res.Enemy != nil {
		_ = conn.WriteLine(Colorf(BrightRed, "%s bars your way! (%d HP, armor %d)",
			res.Enemy.Name, res.Enemy.MaxHP, res.Enemy.Armor))
		_ = conn.WriteLine(Colorize(Dim, "Describe your attack."))
	}
}

func (s *Session) writeAttack(conn *Conn, payload *engine.AttackPayload) {
	r := payload.Result
	enemy := payload.Enemy
	char := payload.Character

	_ = conn.WriteLine("")
	if r.Critical {
		_ = conn.WriteLine(Colorf(BrightYellow, "CRITICAL! %s", r.Description))
	} else {
		_ = conn.WriteLine(r.Description)
	}
	_ = conn.WriteLine(Colorf(BrightGreen, "You deal %d damage.", r.Damage))

	switch r.Outcome {
	case combat.Victory:
		_ = conn.WriteLine(Colorf(BrightGreen, "%s falls!", enemy.Name))
		if r.Rewards != nil {
			_ = conn.WriteLine(fmt.Sprintf("You gain %d experience and %d gold.",
				r.Rewards.Experience, r.Rewards.Gold))
		}
		if r.LeveledUp {
			_ = conn.WriteLine(Colorf(BrightCyan, "You reach level %d! You feel whole again.",
				char.Level))
		}
	case combat.Defeat:
		_ = conn.WriteLine(Colorf(Red, "%s strikes you down for %d damage.",
			enemy.Name, r.EnemyDamage))
		_ = conn.WriteLine(fmt.Sprintf(
			"You wake later, bruised and lighter of purse. HP %d/%d, %d gold.",
			char.HP, char.MaxHP, char.Gold))
	default:
		_ = conn.WriteLine(Colorf(Red, "%s hits back for %d damage.",
			enemy.Name, r.EnemyDamage))
		_ = conn.WriteLine(fmt.Sprintf("%s: %d/%d HP   You: %d/%d HP",
			enemy.Name, r.EnemyHP, enemy.MaxHP, char.HP, char.MaxHP))
	}
}

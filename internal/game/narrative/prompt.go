package narrative

import (
	"fmt"
	"strings"
)

// scenePromptTmpl asks the generator to narrate a fresh location scene. The
// labeled-sections convention (RESULT/ENEMY/ACTIONS) is what Parse expects,
// though the output is never guaranteed well-formed.
const scenePromptTmpl = `You are the game master of a text adventure. Describe the location "%s" for a level %d player.
Include:
- An atmospheric description (2-3 sentences)
- What the character sees
- 2-3 suggested actions
- Occasionally (about 30%% of the time) a hostile creature may appear

If a creature appears, begin a line with "ENEMY:" and describe its appearance.

Response format:
RESULT: [description]
ENEMY: [only if present - the creature and how it appears]
ACTIONS:
1. [action 1]
2. [action 2]
3. [action 3]`

// actionPromptTmpl asks the generator to resolve a free-text player action
// within the current scene.
const actionPromptTmpl = `The player is in the location "%s".
Previous situation:
%s

Player action: %s

Player gold: %d

Describe the outcome of the action (2-3 sentences) and suggest 2-3 new actions.
Occasionally (about 30%% of the time) a hostile creature may appear.

IMPORTANT: If the player buys an item, begin a line with "PURCHASE:" in exactly this form:
PURCHASE: item name | price | category (weapon/armor/potion/misc) | stats

If the action leads to combat, begin a line with "ENEMY:" and describe the creature.

Format:
RESULT: [what happened]
PURCHASE: [only if present - name | price | category | damage or armor or heal]
ENEMY: [only if present - the creature]
ACTIONS:
1. [action 1]
2. [action 2]`

// enemyPromptTmpl asks the generator for an enemy stat block as JSON. The
// suggested ranges scale with level; ExtractEnemyStats validates the result
// and the combat package supplies a deterministic backstop.
const enemyPromptTmpl = `Create an enemy for a level %d player in the location "%s".
Return ONLY JSON in this form:
{
    "name": "name",
    "hp": number,
    "armor": number,
    "damage": number,
    "description": "one short sentence"
}

HP: %d-%d
Armor: %d-%d
Damage: %d-%d`

// judgementPromptTmpl asks the generator to judge a combat action. The
// bounded damage range keeps one creative sentence from one-shotting an
// enemy; ExtractJudgement enforces it and the deterministic formula backs it
// up.
const judgementPromptTmpl = `A player (Strength: %d, Agility: %d) attacks an enemy:
Enemy: %s (Armor: %d)

Player action: "%s"

Judge the attack and return ONLY JSON:
{
    "damage": damage_number (%d-%d),
    "critical": true/false,
    "description": "one sentence describing the result"
}

Weigh the creativity and precision of the action against the character stats.`

// JudgementDamageMin and JudgementDamageMax bound the damage a generator
// judgement may award.
const (
	JudgementDamageMin = 5
	JudgementDamageMax = 50
)

// ScenePrompt builds the prompt for narrating a fresh location scene.
func ScenePrompt(location string, level int) string {
	return fmt.Sprintf(scenePromptTmpl, location, level)
}

// ActionPrompt builds the prompt for resolving a player action, embedding the
// prior scene text as conversation memory.
func ActionPrompt(location, sceneState, action string, gold int) string {
	memory := sceneState
	if strings.TrimSpace(memory) == "" {
		memory = "(the scene has just begun)"
	}
	return fmt.Sprintf(actionPromptTmpl, location, memory, action, gold)
}

// EnemyPrompt builds the prompt requesting an enemy stat block for the given
// level and location.
func EnemyPrompt(level int, location string) string {
	return fmt.Sprintf(enemyPromptTmpl, level, location,
		50+level*20, 100+level*30,
		level*2, level*5,
		5+level*3, 10+level*5,
	)
}

// JudgementPrompt builds the prompt requesting a damage judgement for a
// free-text combat action.
func JudgementPrompt(action, enemyName string, strength, agility, enemyArmor int) string {
	return fmt.Sprintf(judgementPromptTmpl, strength, agility, enemyName, enemyArmor, action,
		JudgementDamageMin, JudgementDamageMax)
}

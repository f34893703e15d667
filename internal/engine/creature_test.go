package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatureResolvesSkillsToGoverningAttribute(t *testing.T) {
	attrs := Attributes{Dexterity: 4, Wisdom: 2}
	c := NewCreature("Scout", 3, 1, attrs, map[string]int{"stealth": 10}, 5, 5, 5, 5, 16, 20, 25)

	assert.Equal(t, 10, c.Skills["stealth"], "explicit skill modifier overrides the governing attribute")
	assert.Equal(t, 2, c.Skills["survival"], "unset skill falls back to its governing attribute")
}

func TestTakeDamageVitalityIgnoredForNonUndead(t *testing.T) {
	target := newTestCreature("Goblin", 2, 20, 12)
	target.CurrentHitPoints = 20

	target.TakeDamage(50, "vitality")

	assert.Equal(t, 20, target.CurrentHitPoints, "vitality damage must be silently dropped against a non-undead target")
	assert.False(t, target.IsDead)
}

func TestTakeDamageVitalityAppliesToUndead(t *testing.T) {
	target := newTestCreature("Zombie", 2, 20, 12)
	target.Traits = []string{"undead"}
	target.CurrentHitPoints = 20

	target.TakeDamage(8, "vitality")

	assert.Equal(t, 12, target.CurrentHitPoints)
}

func TestTakeDamageImmunityBlocksEntirely(t *testing.T) {
	target := newTestCreature("Golem", 2, 30, 18)
	target.Immunities["fire"] = true
	// The immunity branch writes a log line, so the target needs a live
	// Simulation + Encounter.
	newTestPair(newTestCreature("Fighter", 1, 20, 15), target)
	target.CurrentHitPoints = 30

	target.TakeDamage(20, "fire")

	assert.Equal(t, 30, target.CurrentHitPoints)
}

func TestTakeDamageWeaknessAddsAndResistanceSubtractsFloorsAtOne(t *testing.T) {
	weak := newTestCreature("Troll", 2, 30, 14)
	weak.Weaknesses["fire"] = 5
	weak.CurrentHitPoints = 30
	weak.TakeDamage(10, "fire")
	assert.Equal(t, 15, weak.CurrentHitPoints) // 30 - (10+5)

	resistant := newTestCreature("Ooze", 2, 30, 10)
	resistant.Resistances["slashing"] = 20
	resistant.CurrentHitPoints = 30
	resistant.TakeDamage(5, "slashing")
	assert.Equal(t, 29, resistant.CurrentHitPoints, "resisted damage floors at 1, never healing")
}

func TestTakeDamageAllDamageResistanceAppliesToAnyType(t *testing.T) {
	resistant := newTestCreature("Stone Golem", 2, 40, 16)
	resistant.Resistances["all-damage"] = 10
	resistant.CurrentHitPoints = 40
	resistant.TakeDamage(15, "cold")
	assert.Equal(t, 35, resistant.CurrentHitPoints)
}

func TestTakeDamageFloorsAtZeroAndKills(t *testing.T) {
	target := newTestCreature("Goblin", 2, 10, 12)
	sim := NewSimulation(1, true)
	sim.encounter = NewEncounter(nil, []*Creature{target}, sim)
	target.CurrentHitPoints = 10

	target.TakeDamage(25, "slashing")

	assert.Equal(t, 0, target.CurrentHitPoints)
	assert.True(t, target.IsDead)
	assert.NotContains(t, sim.encounter.Enemies, target, "a dead creature is removed from its encounter")
}

func TestNoResurrectionHealDoesNotReviveOrExceedMax(t *testing.T) {
	c := newTestCreature("Fighter", 1, 20, 15)
	c.CurrentHitPoints = 20
	c.Heal(50)
	assert.Equal(t, 20, c.CurrentHitPoints, "healing never exceeds max hit points")
}

func TestBasicSaveUnknownTypePanics(t *testing.T) {
	c := newTestCreature("Fighter", 1, 20, 15)
	enemy := newTestCreature("Goblin", 2, 10, 12)
	newTestPair(c, enemy)

	assert.Panics(t, func() { c.BasicSave(SaveNone, 15) })
}

func TestDistanceToRoundsToNearestFive(t *testing.T) {
	a := &Creature{X: 0, Y: 0}
	b := &Creature{X: 1, Y: 1}
	// sqrt(2) * 5 = 7.07, rounds to 5
	assert.Equal(t, 5.0, a.distanceTo(b))
}

func TestMoveToStopsAtActionRange(t *testing.T) {
	mover := newTestCreature("Fighter", 1, 20, 15)
	target := newTestCreature("Goblin", 2, 10, 12)
	mover.Speed = 25
	mover.NumActions = 3
	mover.X, mover.Y = 0, 0
	target.X, target.Y = 0, 4 // 20ft away, within one Stride's 25ft speed

	mover.MoveTo(target, 5)

	assert.LessOrEqual(t, mover.distanceTo(target), 5.0)
	assert.Less(t, mover.NumActions, 3, "movement consumes at least one action")
}

func TestMoveToTerminatesWhenAlreadyInRange(t *testing.T) {
	mover := newTestCreature("Fighter", 1, 20, 15)
	target := newTestCreature("Goblin", 2, 10, 12)
	mover.NumActions = 3
	mover.X, mover.Y = 0, 0
	target.X, target.Y = 0, 1 // 5ft away

	mover.MoveTo(target, 5)

	assert.Equal(t, 3, mover.NumActions, "no movement needed when already in range")
}

func TestPickTargetPrefersInRangeOpponents(t *testing.T) {
	attacker := newTestCreature("Fighter", 1, 20, 15)
	near := newTestCreature("Near Goblin", 2, 20, 12)
	far := newTestCreature("Far Goblin", 2, 20, 12)
	sim := NewSimulation(1, true)
	sim.encounter = NewEncounter([]*Creature{attacker}, []*Creature{near, far}, sim)

	attacker.X, attacker.Y = 0, 0
	near.X, near.Y = 0, 1   // 5ft
	far.X, far.Y = 0, 20    // 100ft
	near.CurrentHitPoints = 10
	far.CurrentHitPoints = 1 // far is more hurt but out of range

	strike := NewStrike("Dagger", 5, DamageExpr{Dice: 1, Sides: 4}, "piercing", 5, nil)
	target := attacker.PickTarget(strike)

	require.NotNil(t, target)
	assert.Equal(t, near, target, "an in-range opponent is always preferred over an out-of-range one")
}

func TestPickTargetVitalityExcludesNonUndead(t *testing.T) {
	attacker := newTestCreature("Cleric", 1, 20, 15)
	living := newTestCreature("Goblin", 2, 20, 12)
	sim := NewSimulation(1, true)
	sim.encounter = NewEncounter([]*Creature{attacker}, []*Creature{living}, sim)
	attacker.X, attacker.Y, living.X, living.Y = 0, 0, 0, 0

	spell := NewSpell("Harm", 1, 1, DamageExpr{Dice: 1, Sides: 8}, "vitality", 30, nil, SaveNone, 1, 2, 6)
	target := attacker.PickTarget(spell)

	assert.Nil(t, target, "vitality damage can never validly target a non-undead creature")
}

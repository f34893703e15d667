package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncounterInitiativeTiebreakFavorsEnemies(t *testing.T) {
	player := newTestCreature("Fighter", 1, 20, 15)
	enemy := newTestCreature("Goblin", 2, 10, 12)
	// Force identical initiative rolls by giving both the same perception
	// and feeding a fixed-seed rng; rather than depend on roll luck, set
	// Initiative directly after construction to test the sort rule alone.
	sim := NewSimulation(1, true)
	enc := NewEncounter([]*Creature{player}, []*Creature{enemy}, sim)
	player.Initiative = 15
	enemy.Initiative = 15

	resort(enc)

	require.Len(t, enc.Creatures, 2)
	assert.Equal(t, enemy, enc.Creatures[0], "a tied initiative roll goes to the enemy side")
}

func resort(enc *Encounter) {
	// re-run the same stable sort NewEncounter uses, for tests that mutate
	// Initiative after construction.
	for i := 1; i < len(enc.Creatures); i++ {
		j := i
		for j > 0 && less(enc.Creatures[j], enc.Creatures[j-1]) {
			enc.Creatures[j], enc.Creatures[j-1] = enc.Creatures[j-1], enc.Creatures[j]
			j--
		}
	}
}

func less(a, b *Creature) bool {
	if a.Initiative != b.Initiative {
		return a.Initiative > b.Initiative
	}
	return a.Team > b.Team
}

func TestCheckWinner(t *testing.T) {
	t.Run("enemies win when party is wiped", func(t *testing.T) {
		enc := &Encounter{Players: nil, Enemies: []*Creature{newTestCreature("Goblin", 2, 10, 12)}}
		assert.Equal(t, "enemies", enc.CheckWinner())
	})

	t.Run("players win when enemies are wiped", func(t *testing.T) {
		enc := &Encounter{Players: []*Creature{newTestCreature("Fighter", 1, 20, 15)}, Enemies: nil}
		assert.Equal(t, "players", enc.CheckWinner())
	})

	t.Run("no winner while both sides have combatants", func(t *testing.T) {
		enc := &Encounter{
			Players: []*Creature{newTestCreature("Fighter", 1, 20, 15)},
			Enemies: []*Creature{newTestCreature("Goblin", 2, 10, 12)},
		}
		assert.Equal(t, "", enc.CheckWinner())
	})
}

func TestRunEncounterStopsAtMaxRoundsWithDraw(t *testing.T) {
	// Two creatures with no actions at all can never reduce each other to
	// zero hit points, so the encounter must hit the round cap.
	player := newTestCreature("Fighter", 1, 1000, 30)
	enemy := newTestCreature("Goblin", 2, 1000, 30)
	sim := NewSimulation(1, true)
	enc := NewEncounter([]*Creature{player}, []*Creature{enemy}, sim)
	enc.MaxRounds = 5 // shrink the cap so the test runs fast

	winner := enc.RunEncounter()

	assert.Equal(t, "draw", winner)
	assert.Equal(t, 5, enc.Round)
}

func TestRunEncounterRemovesDeadMidRound(t *testing.T) {
	player := newTestCreature("Fighter", 1, 20, 15)
	weakEnemy := newTestCreature("Weak Goblin", 2, 1, 5)
	sim := NewSimulation(7, true)
	enc := NewEncounter([]*Creature{player}, []*Creature{weakEnemy}, sim)
	player.X, player.Y, weakEnemy.X, weakEnemy.Y = 0, 0, 0, 0

	strike := NewStrike("Dagger", 20, DamageExpr{Dice: 4, Sides: 6, Bonus: 4}, "piercing", 5, nil)
	player.Actions = []Action{strike}

	winner := enc.RunEncounter()

	assert.Equal(t, "players", winner)
	assert.True(t, weakEnemy.IsDead)
}

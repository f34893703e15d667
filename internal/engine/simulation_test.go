package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimulationIsolatesPRNGAcrossInstances(t *testing.T) {
	a := NewSimulation(1, true)
	b := NewSimulation(1, true)

	// Same seed produces the same sequence, but advancing one must never
	// perturb the other (spec §5: no shared mutable PRNG state).
	firstA := a.Rng.RollDie(20)
	firstB := b.Rng.RollDie(20)
	assert.Equal(t, firstA, firstB, "identically-seeded independent RNGs produce identical sequences")

	secondA := a.Rng.RollDie(20)
	secondBAfterA := b.Rng.RollDie(20)
	assert.Equal(t, secondA, secondBAfterA, "advancing a's RNG must not advance b's")
}

func TestSimulationRunRecordsTotalsAndWinner(t *testing.T) {
	player := newTestCreature("Fighter", 1, 30, 18)
	enemy := newTestCreature("Goblin", 2, 1, 1)
	player.X, player.Y, enemy.X, enemy.Y = 0, 0, 0, 0
	strike := NewStrike("Dagger", 20, DamageExpr{Dice: 2, Sides: 6, Bonus: 4}, "piercing", 5, nil)
	player.Actions = []Action{strike}

	sim := NewSimulation(3, true)
	winner := sim.Run([]*Creature{player}, []*Creature{enemy})

	assert.Equal(t, "players", winner)
	assert.Equal(t, 1, sim.TotalPlayers)
	assert.GreaterOrEqual(t, sim.Rounds, 1)
	assert.NotEmpty(t, sim.Log)
}

func TestSimulationToResultMirrorsFields(t *testing.T) {
	sim := NewSimulation(1, true)
	sim.Winner = "players"
	sim.Rounds = 4
	sim.PlayersKilled = 1
	sim.TotalPlayers = 3
	sim.Log = []string{"line one", "line two"}

	result := sim.ToResult(7)

	require.Equal(t, 7, result.SimNum)
	assert.Equal(t, "players", result.Winner)
	assert.Equal(t, 4, result.Rounds)
	assert.Equal(t, 1, result.PlayersKilled)
	assert.Equal(t, 3, result.TotalPlayers)
	assert.Equal(t, []string{"line one", "line two"}, result.Log)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLopsidedRoster() (players, enemies []*Creature) {
	player := newTestCreature("Fighter", 1, 30, 18)
	player.X, player.Y = 0, 0
	strike := NewStrike("Longsword", 20, DamageExpr{Dice: 2, Sides: 8, Bonus: 6}, "slashing", 5, nil)
	player.Actions = []Action{strike}

	enemy := newTestCreature("Goblin", 2, 1, 1)
	enemy.X, enemy.Y = 0, 0

	return []*Creature{player}, []*Creature{enemy}
}

func TestDriverRunsExactlyHundredSimulationsByDefault(t *testing.T) {
	driver := NewDriver(buildLopsidedRoster)
	result := driver.Run()

	require.Equal(t, DefaultSimulationCount, result.TotalSims)
	assert.Len(t, result.SimData, DefaultSimulationCount)
}

func TestDriverAggregatesWinsRoundsAndDeaths(t *testing.T) {
	driver := NewDriver(buildLopsidedRoster)
	driver.SimulationCount = 20
	result := driver.Run()

	assert.Equal(t, 20, result.TotalSims)
	assert.Equal(t, 20, result.Wins, "an overwhelmingly favorable matchup should win every run")
	assert.InDelta(t, 100.0, result.WinsRatio, 0.01)
	assert.GreaterOrEqual(t, result.AverageRounds, 0.0)
	assert.Equal(t, 0.0, result.AverageDeaths, "the favored party should never lose a member in this matchup")
}

func TestDriverBuildsFreshCreaturesEachRun(t *testing.T) {
	callCount := 0
	driver := NewDriver(func() ([]*Creature, []*Creature) {
		callCount++
		return buildLopsidedRoster()
	})
	driver.SimulationCount = 5
	driver.Run()

	assert.Equal(t, 5, callCount, "the Driver must call Build once per simulation so no object graph is shared")
}

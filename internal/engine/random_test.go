package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollDieRange(t *testing.T) {
	rng := NewSeededRandom(42)
	for i := 0; i < 200; i++ {
		roll := rng.RollDie(20)
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, 20)
	}
}

func TestSampleIndicesReturnsAllWhenKExceedsN(t *testing.T) {
	rng := NewSeededRandom(1)
	idx := rng.SampleIndices(3, 10)
	assert.ElementsMatch(t, []int{0, 1, 2}, idx)
}

func TestSampleIndicesReturnsDistinctSubset(t *testing.T) {
	rng := NewSeededRandom(1)
	idx := rng.SampleIndices(10, 4)
	assert.Len(t, idx, 4)

	seen := map[int]bool{}
	for _, i := range idx {
		assert.False(t, seen[i], "SampleIndices must not repeat an index")
		seen[i] = true
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 10)
	}
}

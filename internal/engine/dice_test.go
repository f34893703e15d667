package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDamageExpr(t *testing.T) {
	t.Run("dice plus bonus", func(t *testing.T) {
		expr, err := ParseDamageExpr("2d6+3")
		require.NoError(t, err)
		assert.Equal(t, DamageExpr{Dice: 2, Sides: 6, Bonus: 3}, expr)
	})

	t.Run("dice minus bonus", func(t *testing.T) {
		expr, err := ParseDamageExpr("1d8-2")
		require.NoError(t, err)
		assert.Equal(t, DamageExpr{Dice: 1, Sides: 8, Bonus: -2}, expr)
	})

	t.Run("bare dice", func(t *testing.T) {
		expr, err := ParseDamageExpr("4d10")
		require.NoError(t, err)
		assert.Equal(t, DamageExpr{Dice: 4, Sides: 10, Bonus: 0}, expr)
	})

	t.Run("malformed expression is a construction error", func(t *testing.T) {
		_, err := ParseDamageExpr("not-dice")
		assert.Error(t, err)
	})
}

func TestDamageExprRoll(t *testing.T) {
	rng := NewSeededRandom(1)
	expr := DamageExpr{Dice: 3, Sides: 6, Bonus: 4}

	for i := 0; i < 50; i++ {
		total := expr.Roll(rng)
		assert.GreaterOrEqual(t, total, 3+4)
		assert.LessOrEqual(t, total, 18+4)
	}
}

func TestDegreeOfSuccess(t *testing.T) {
	tests := []struct {
		name          string
		roll, total   int
		dc            int
		want          Degree
	}{
		{"critical success by ten", 10, 25, 15, CriticalSuccess},
		{"success", 10, 16, 15, Success},
		{"failure", 10, 10, 15, Failure},
		{"critical failure by ten", 1, 4, 15, CriticalFailure},
		{"nat 20 steps failure up to success", 20, 14, 15, Success},
		{"nat 20 cannot exceed critical success", 20, 30, 15, CriticalSuccess},
		{"nat 1 steps success down to failure", 1, 16, 15, Failure},
		{"nat 1 cannot go below critical failure", 1, 2, 15, CriticalFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DegreeOfSuccess(tc.roll, tc.total, tc.dc)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDegreeOfSuccessMonotonic(t *testing.T) {
	dc := 18
	var prev Degree = -1
	for total := 0; total <= 40; total++ {
		d := DegreeOfSuccess(10, total, dc)
		assert.GreaterOrEqual(t, d, prev, "degree of success must be monotonic in total")
		prev = d
	}
}

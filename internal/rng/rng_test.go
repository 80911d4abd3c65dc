package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResetReproducesSequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64Range(-1000, 1000).Draw(t, "seed")
		draws := rapid.IntRange(1, 50).Draw(t, "draws")

		r := New(seed)
		first := make([]float64, draws)
		for i := range first {
			first[i] = r.Float()
		}

		r.Reset(seed)
		second := make([]float64, draws)
		for i := range second {
			second[i] = r.Float()
		}

		assert.Equal(t, first, second)
	})
}

func TestFloatInUnitRange(t *testing.T) {
	r := New(12345)
	for i := 0; i < 1000; i++ {
		v := r.Float()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestZeroSeedDoesNotStick(t *testing.T) {
	r := New(0)
	assert.NotEqual(t, 0, r.state)
	v := r.Float()
	assert.Greater(t, v, 0.0)
}

func TestIntRangeBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 500; i++ {
		v := r.IntRange(3, 9)
		require.GreaterOrEqual(t, v, 3)
		require.Less(t, v, 9)
	}
}

package citygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGenerateIsDeterministicForSameSeed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.Uint32Range(6, 20).Draw(t, "size")
		seed := rapid.Int64Range(1, 1<<30).Draw(t, "seed")

		a, err := Generate(size, seed)
		require.NoError(t, err)
		b, err := Generate(size, seed)
		require.NoError(t, err)

		assert.Equal(t, len(a.Patches), len(b.Patches))
		assert.InDelta(t, a.CityRadius, b.CityRadius, 1e-6)
		assert.Equal(t, len(a.Wall.Gates), len(b.Wall.Gates))
	})
}

func TestGeneratePatchCountMatchesSize(t *testing.T) {
	m, err := Generate(16, 42)
	require.NoError(t, err)
	assert.Equal(t, 16, len(m.Patches))
}

func TestGenerateSmallSizeClampedToMinimum(t *testing.T) {
	m, err := Generate(1, 7)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(m.Patches), 6)
}

func TestGenerateEveryPatchHasAWard(t *testing.T) {
	m, err := Generate(20, 11)
	require.NoError(t, err)
	for _, p := range m.Patches {
		assert.NotEqual(t, "", string(p.Ward))
	}
}

func TestGenerateWallGatesWithinConfiguredMax(t *testing.T) {
	m, err := Generate(20, 99, GenerateOptions{MaxGates: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(m.Wall.Gates), 2)
}

func TestGenerateCitadelIsConvex(t *testing.T) {
	m, err := Generate(16, 123)
	require.NoError(t, err)
	assert.True(t, m.Citadel.IsConvex())
}

func TestGenerateEveryGateStartsAStreet(t *testing.T) {
	m, err := Generate(16, 321)
	require.NoError(t, err)
	require.Len(t, m.Streets, len(m.Gates))
	for i, s := range m.Streets {
		require.NotEmpty(t, s)
		assert.Equal(t, m.Gates[i], s[0])
	}
}

func TestGenerateZeroOrNegativeSeedStillProducesAModel(t *testing.T) {
	m, err := Generate(10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, m.Patches)
}

func TestWardForFindsOwningWard(t *testing.T) {
	m, err := Generate(12, 5)
	require.NoError(t, err)
	p := m.Patches[0]
	w := m.WardFor(p)
	require.NotNil(t, w)
	assert.Contains(t, w.Patches, p)
}

func TestPatchAtFindsContainingPatch(t *testing.T) {
	m, err := Generate(14, 6)
	require.NoError(t, err)
	center := m.Patches[0].Shape.Center()
	p := m.PatchAt(center)
	assert.NotNil(t, p)
}

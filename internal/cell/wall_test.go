package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/rng"
	"github.com/mossport/citygen/internal/voronoi"
)

func buildPatches(t *testing.T, n, seed int) []*mesh.Patch {
	t.Helper()
	r := rng.New(int64(seed))
	centers := voronoi.SpiralCloud(n, r)
	d := voronoi.Build(*geom.NewPoint(-500, -500), *geom.NewPoint(500, 500), centers, 1e-6)
	patches, err := mesh.Build(d, n)
	require.NoError(t, err)
	return patches
}

func TestFindCircumferenceOfAllPatchesIsClosed(t *testing.T) {
	patches := buildPatches(t, 16, 5)
	shape, err := FindCircumference(patches)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(shape.Points), 3)
}

func TestFindCircumferenceEmptySetErrors(t *testing.T) {
	_, err := FindCircumference(nil)
	assert.ErrorIs(t, err, ErrBadWalledArea)
}

func TestPlaceGatesRespectsMax(t *testing.T) {
	patches := buildPatches(t, 20, 9)
	shape, err := FindCircumference(patches)
	require.NoError(t, err)
	r := rng.New(9)
	gates := PlaceGates(&patches, patches, shape, 3, nil, r)
	assert.LessOrEqual(t, len(gates), 3)
}

func TestBuildProducesConsistentSegments(t *testing.T) {
	patches := buildPatches(t, 20, 21)
	r := rng.New(21)
	wall, err := Build(&patches, patches, 2, 20, 0.3, nil, r)
	require.NoError(t, err)
	assert.Len(t, wall.Segments, len(wall.Shape.Points))
}

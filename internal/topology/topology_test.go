package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/rng"
	"github.com/mossport/citygen/internal/voronoi"
)

func buildTestPatches(t *testing.T, n, seed int) []*mesh.Patch {
	t.Helper()
	r := rng.New(int64(seed))
	centers := voronoi.SpiralCloud(n, r)
	d := voronoi.Build(*geom.NewPoint(-500, -500), *geom.NewPoint(500, 500), centers, 1e-6)
	patches, err := mesh.Build(d, n)
	require.NoError(t, err)
	return patches
}

func TestShortestPathTrivialWhenStartEqualsGoal(t *testing.T) {
	patches := buildTestPatches(t, 10, 1)
	topo := Build(patches, nil, nil, nil)
	start := patches[0].Shape.Points[0]
	path, err := topo.ShortestPath(start, start, nil)
	require.NoError(t, err)
	assert.Equal(t, []*geom.Point{start}, path)
}

func TestShortestPathBetweenNeighborsSucceeds(t *testing.T) {
	patches := buildTestPatches(t, 12, 4)
	topo := Build(patches, nil, nil, nil)
	a := patches[0].Shape.Points[0]
	b := patches[0].Shape.Points[1]
	path, err := topo.ShortestPath(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, a, path[0])
	assert.Equal(t, b, path[len(path)-1])
}

func TestShortestPathHonorsExclude(t *testing.T) {
	patches := buildTestPatches(t, 12, 6)
	topo := Build(patches, nil, nil, nil)
	a := patches[0].Shape.Points[0]
	b := patches[0].Shape.Points[1]

	// excluding a vertex that is not on the direct edge must not affect
	// reachability between adjacent vertices, and the route must avoid it.
	var other *geom.Point
	for _, p := range patches[0].Shape.Points {
		if p != a && p != b {
			other = p
			break
		}
	}
	require.NotNil(t, other)
	path, err := topo.ShortestPath(a, b, []*geom.Point{other})
	assert.NoError(t, err)
	assert.NotContains(t, path, other)
}

func TestShortestPathBetweenBlockedWallVertices(t *testing.T) {
	patches := buildTestPatches(t, 10, 2)
	a := patches[0].Shape.Points[0]
	b := patches[0].Shape.Points[1]
	topo := Build(patches, nil, []*geom.Point{a, b}, nil)
	_, err := topo.ShortestPath(a, b, nil)
	// a and b are blocked wall vertices, but ShortestPath keeps blocked
	// vertices that are the route's own endpoints, so the direct edge stays
	// usable; assert only that any failure is ErrUnableToBuildStreet.
	if err != nil {
		assert.ErrorIs(t, err, ErrUnableToBuildStreet)
	}
}

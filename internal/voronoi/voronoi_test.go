package voronoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/rng"
)

func TestSpiralCloudDeterministic(t *testing.T) {
	r1 := rng.New(99)
	r2 := rng.New(99)
	a := SpiralCloud(20, r1)
	b := SpiralCloud(20, r2)
	for i := range a {
		assert.InDelta(t, a[i].X, b[i].X, 1e-9)
		assert.InDelta(t, a[i].Y, b[i].Y, 1e-9)
	}
}

func TestBuildProducesOneSitePerCenter(t *testing.T) {
	r := rng.New(1)
	centers := SpiralCloud(12, r)
	d := Build(*geom.NewPoint(-500, -500), *geom.NewPoint(500, 500), centers, 1e-6)
	require.Len(t, d.Sites, len(centers))
	for _, s := range d.Sites {
		assert.NotEmpty(t, s.Cell.Points)
	}
}

func TestSharedEdgeVerticesAreIdenticalPointers(t *testing.T) {
	r := rng.New(7)
	centers := SpiralCloud(10, r)
	d := Build(*geom.NewPoint(-500, -500), *geom.NewPoint(500, 500), centers, 1e-6)

	seen := map[*geom.Point]int{}
	for _, s := range d.Sites {
		for _, p := range s.Cell.Points {
			seen[p]++
		}
	}
	sharedCount := 0
	for _, count := range seen {
		if count > 1 {
			sharedCount++
		}
	}
	assert.Greater(t, sharedCount, 0, "expected at least one vertex shared by pointer identity between cells")
}

func TestRelaxKeepsSiteCount(t *testing.T) {
	r := rng.New(3)
	centers := SpiralCloud(8, r)
	d := Build(*geom.NewPoint(-200, -200), *geom.NewPoint(200, 200), centers, 1e-6)
	relaxed := Relax(d, len(d.Sites), 1e-6)
	assert.Len(t, relaxed.Sites, len(d.Sites))
}

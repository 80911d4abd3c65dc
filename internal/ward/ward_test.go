package ward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/rng"
	"github.com/mossport/citygen/internal/voronoi"
)

func TestTemplateHasThirtySixEntries(t *testing.T) {
	// spec.md labels its §4.7 template the "N=40 exemplar", but the
	// enumerated list it gives totals 36 entries; this is a transcription
	// of that literal list, not a count matching the label (see DESIGN.md).
	assert.Len(t, Template(), 36)
}

func TestWeakShuffleIsDeterministic(t *testing.T) {
	a := Template()
	b := Template()
	WeakShuffle(a, rng.New(5))
	WeakShuffle(b, rng.New(5))
	assert.Equal(t, a, b)
}

func TestWeakShuffleKeepsMultiset(t *testing.T) {
	orig := Template()
	shuffled := append([]Kind{}, orig...)
	WeakShuffle(shuffled, rng.New(1))

	counts := func(ks []Kind) map[Kind]int {
		m := map[Kind]int{}
		for _, k := range ks {
			m[k]++
		}
		return m
	}
	assert.Equal(t, counts(orig), counts(shuffled))
}

func TestAssignGivesEveryPatchAWard(t *testing.T) {
	r := rng.New(3)
	centers := voronoi.SpiralCloud(20, r)
	d := voronoi.Build(*geom.NewPoint(-500, -500), *geom.NewPoint(500, 500), centers, 1e-6)
	patches, err := mesh.Build(d, 15)
	require.NoError(t, err)

	center := geom.NewPoint(0, 0)
	within := map[*mesh.Patch]bool{}
	for _, p := range patches {
		p.WithinCity = true
		within[p] = true
	}
	Assign(patches, patches, center, within, nil, nil, nil, r)

	for _, p := range patches {
		assert.NotEqual(t, mesh.Unassigned, p.Ward)
	}

	radius := CityRadius(patches, center)
	assert.Greater(t, radius, 0.0)
}

func TestForbiddenRatingExcludesFarmWithinWalls(t *testing.T) {
	f := farm{}
	score := f.Rate(Context{WithinWalls: true})
	assert.True(t, score > 1e300)
}

package building

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/rng"
	"github.com/mossport/citygen/internal/ward"
)

func bigSquare(side float64) *geom.Polygon {
	return geom.NewPolygon([]*geom.Point{
		geom.NewPoint(0, 0),
		geom.NewPoint(side, 0),
		geom.NewPoint(side, side),
		geom.NewPoint(0, side),
	})
}

func TestGenerateCommonWardProducesFootprints(t *testing.T) {
	r := rng.New(1)
	shape := bigSquare(40)
	out := Generate(shape, ward.Craftsmen, r)
	assert.NotEmpty(t, out)
	for _, f := range out {
		assert.GreaterOrEqual(t, math.Abs(f.Area()), 0.0)
	}
}

func TestGenerateParkProducesRadialWedges(t *testing.T) {
	r := rng.New(1)
	shape := bigSquare(40)
	out := Generate(shape, ward.Park, r)
	assert.NotEmpty(t, out)
}

func TestGenerateCastleProducesFootprints(t *testing.T) {
	r := rng.New(2)
	shape := bigSquare(50)
	out := Generate(shape, ward.Castle, r)
	assert.NotEmpty(t, out)
}

func TestCreateAlleysTerminatesAndProducesFootprints(t *testing.T) {
	r := rng.New(9)
	shape := bigSquare(100)
	var out []*geom.Polygon
	createAlleys(shape, Params{MinSq: 50, GridChaos: 0.1, SizeChaos: 0.1, EmptyProb: 0}, true, r, 0, &out)
	assert.NotEmpty(t, out)
}

func TestFilterOutskirtsNeverGrowsTheSet(t *testing.T) {
	r := rng.New(4)
	center := geom.NewPoint(0, 0)
	var footprints []*geom.Polygon
	for i := 0; i < 20; i++ {
		footprints = append(footprints, bigSquare(float64(i+1)))
	}
	out := FilterOutskirts(footprints, center, 100, r)
	assert.LessOrEqual(t, len(out), len(footprints))
}

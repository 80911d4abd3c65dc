package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func square(side float64) *Polygon {
	return NewPolygon([]*Point{
		NewPoint(0, 0),
		NewPoint(side, 0),
		NewPoint(side, side),
		NewPoint(0, side),
	})
}

func TestSquareAreaAndPerimeter(t *testing.T) {
	sq := square(10)
	assert.InDelta(t, 100, sq.Area(), 1e-9)
	assert.InDelta(t, 40, sq.Perimeter(), 1e-9)
}

func TestSquareIsConvex(t *testing.T) {
	assert.True(t, square(5).IsConvex())
}

func TestCompactnessOfSquareBelowOne(t *testing.T) {
	c := square(10).Compactness()
	assert.Greater(t, c, 0.0)
	assert.Less(t, c, 1.0)
}

func TestShrinkZeroIsIdentity(t *testing.T) {
	sq := square(10)
	shrunk := sq.Shrink(0)
	for i := range sq.Points {
		assert.InDelta(t, sq.Points[i].X, shrunk.Points[i].X, 1e-6)
		assert.InDelta(t, sq.Points[i].Y, shrunk.Points[i].Y, 1e-6)
	}
}

func TestShrinkReducesArea(t *testing.T) {
	sq := square(10)
	shrunk := sq.Shrink(1)
	require.Less(t, shrunk.Area(), sq.Area())
	assert.InDelta(t, 64, shrunk.Area(), 1e-6)
}

func TestCenterOfSquareIsMidpoint(t *testing.T) {
	c := square(10).Center()
	assert.InDelta(t, 5, c.X, 1e-9)
	assert.InDelta(t, 5, c.Y, 1e-9)
}

func TestSplitConservesArea(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		side := rapid.Float64Range(2, 50).Draw(t, "side")
		sq := square(side)
		left, right := sq.Split(0, 2)
		total := math.Abs(left.Area()) + math.Abs(right.Area())
		assert.InDelta(t, math.Abs(sq.Area()), total, side*side*1e-6+1e-6)
	})
}

func TestSmoothVertexEqStable(t *testing.T) {
	sq := square(10)
	sq.SmoothVertexEq(0)
	assert.InDelta(t, 0, sq.Points[0].X, 1e-9)
}

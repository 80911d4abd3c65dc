// Package geom implements the point and polygon algebra the generator's
// geometric stages share: Voronoi cell construction, wall circumference
// extraction, street smoothing, and building-footprint subdivision all
// operate on the same Point and Polygon types defined here.
package geom

import "math"

// Point is a vertex in the city mesh. Patches that share a boundary
// vertex hold the same *Point, not merely an equal one: identity, not
// value equality, is how adjacency is expressed throughout this module.
type Point struct {
	X, Y float64
}

// NewPoint allocates a fresh, uniquely-identified vertex.
func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

// Sub returns p-q as a vector.
func (p *Point) Sub(q *Point) (float64, float64) {
	return p.X - q.X, p.Y - q.Y
}

// Dist returns the euclidean distance between p and q.
func (p *Point) Dist(q *Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Hypot(dx, dy)
}

// Lerp returns the point a fraction t of the way from p to q.
func Lerp(p, q *Point, t float64) *Point {
	return NewPoint(p.X+(q.X-p.X)*t, p.Y+(q.Y-p.Y)*t)
}

// Angle returns the angle of q as seen from p, in radians.
func (p *Point) Angle(q *Point) float64 {
	return math.Atan2(q.Y-p.Y, q.X-p.X)
}

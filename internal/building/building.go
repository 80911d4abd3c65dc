// Package building turns a ward's patch footprint into building
// geometry: an inset for street frontage, then recursive polygon
// subdivision (the "alleys" algorithm) or a ward-family-specific builder
// for the handful of ward kinds that don't subdivide like an ordinary
// block.
package building

import (
	"math"
	"sort"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/rng"
	"github.com/mossport/citygen/internal/ward"
)

// Street half-widths (spec.md §4.8), used as inset/gap distances: a full
// per-edge MAIN/REGULAR/ALLEY classification (wall-facing vs. artery-
// facing vs. ordinary) is not implemented — insetForStreet applies
// mainStreet uniformly to every patch's frontage inset instead, and
// alleyStreet is used directly wherever spec.md calls for the ALLEY gap
// (see DESIGN.md).
const (
	mainStreet    = 2.0
	regularStreet = 1.0
	alleyStreet   = 0.6
)

// Params tunes the createAlleys recursion for one ward kind.
type Params struct {
	MinSq     float64 // stop subdividing once a cell's area falls below this
	GridChaos float64 // how far off-center and off-perpendicular the bisecting cut may land
	SizeChaos float64 // relative jitter applied to each leaf's accept threshold
	EmptyProb float64 // chance a leaf cell is left as open ground, no building
}

// paramsFor returns the createAlleys parameters for a ward kind, drawing
// the one random float spec.md's per-kind formulas each depend on. area
// is the block's own area, needed only for Military's area-relative
// MinSq.
func paramsFor(k ward.Kind, area float64, r *rng.Rng) Params {
	rr := r.Float()
	switch k {
	case ward.Craftsmen:
		return Params{MinSq: 10 + 80*rr*rr, GridChaos: 0.5 + 0.2*rr, SizeChaos: 0.6, EmptyProb: 0.04}
	case ward.Slum:
		return Params{MinSq: 10 + 30*rr*rr, GridChaos: 0.6 + 0.4*rr, SizeChaos: 0.8, EmptyProb: 0.03}
	case ward.Merchant:
		return Params{MinSq: 50 + 60*rr*rr, GridChaos: 0.5 + 0.3*rr, SizeChaos: 0.7, EmptyProb: 0.15}
	case ward.GateWard:
		return Params{MinSq: 10 + 50*rr*rr, GridChaos: 0.5 + 0.3*rr, SizeChaos: 0.7, EmptyProb: 0.04}
	case ward.Administration:
		return Params{MinSq: 80 + 30*rr*rr, GridChaos: 0.1 + 0.3*rr, SizeChaos: 0.3, EmptyProb: 0.04}
	case ward.Patriciate:
		return Params{MinSq: 80 + 30*rr*rr, GridChaos: 0.5 + 0.3*rr, SizeChaos: 0.8, EmptyProb: 0.2}
	case ward.Military:
		return Params{MinSq: math.Sqrt(math.Abs(area)) * (1 + rr), GridChaos: 0.1 + 0.3*rr, SizeChaos: 0.3, EmptyProb: 0.25}
	default:
		return Params{MinSq: 10 + 50*rr*rr, GridChaos: 0.5 + 0.3*rr, SizeChaos: 0.6, EmptyProb: 0.1}
	}
}

// Generate builds the set of building footprints for a patch's ward,
// insetting for street frontage and then dispatching to either the
// recursive "common ward" subdivision or a ward-specific builder.
func Generate(shape *geom.Polygon, k ward.Kind, r *rng.Rng) []*geom.Polygon {
	inset := insetForStreet(shape)
	if inset == nil || len(inset.Points) < 3 {
		return nil
	}

	switch k {
	case ward.Park:
		return buildPark(inset)
	case ward.Farm:
		return buildFarm(inset, r)
	case ward.Market:
		return buildMarket(inset, r)
	case ward.Cathedral:
		return buildCathedral(inset, r)
	case ward.Castle:
		return buildCastle(inset, r)
	case ward.Common:
		return nil
	default:
		params := paramsFor(k, math.Abs(inset.Area()), r)
		var out []*geom.Polygon
		createAlleys(inset, params, true, r, 0, &out)
		return out
	}
}

// insetForStreet pulls the footprint in by the main street half-width,
// using the convex Shrink when possible and falling back to the general
// Buffer.
func insetForStreet(shape *geom.Polygon) *geom.Polygon {
	if shape.IsConvex() {
		return shape.Shrink(mainStreet)
	}
	return shape.Buffer(mainStreet)
}

const maxAlleyDepth = 14

// createAlleys recursively bisects a cell, per spec.md §4.8's pseudocode:
// cut the longest edge at a jittered ratio and angle, then for each half
// either emit it as a building footprint (with probability 1-EmptyProb,
// once its area falls below a jittered threshold) or recurse, cutting the
// next alley-width gap only while the half is comfortably larger than
// MinSq (smaller halves are still bisected, but with no gap).
func createAlleys(shape *geom.Polygon, p Params, splitAllowed bool, r *rng.Rng, depth int, out *[]*geom.Polygon) {
	if len(shape.Points) < 3 || depth >= maxAlleyDepth {
		return
	}

	i := longestEdge(shape)
	spread := 0.8 * p.GridChaos
	ratio := (1-spread)/2 + r.Float()*spread
	area := math.Abs(shape.Area())
	angleSpread := 0.0
	if area >= 4*p.MinSq {
		angleSpread = (math.Pi / 6) * p.GridChaos
	}
	angle := (r.Float() - 0.5) * angleSpread
	gap := 0.0
	if splitAllowed {
		gap = alleyStreet
	}

	left, right := bisect(shape, i, ratio, angle, gap)
	for _, h := range [2]*geom.Polygon{left, right} {
		if h == nil || len(h.Points) < 3 {
			continue
		}
		hArea := math.Abs(h.Area())
		threshold := p.MinSq * math.Pow(2, 4*p.SizeChaos*(r.Float()-0.5))
		if hArea < threshold {
			if !r.Bool(p.EmptyProb) {
				*out = append(*out, h)
			}
			continue
		}
		denom := r.Float() * r.Float()
		again := true
		if denom > 0 {
			again = hArea > p.MinSq/denom
		}
		createAlleys(h, p, again, r, depth+1, out)
	}
}

// longestEdge returns the index of shape's longest edge.
func longestEdge(shape *geom.Polygon) int {
	n := len(shape.Points)
	best, bestLen := 0, -1.0
	for i := 0; i < n; i++ {
		l := shape.Points[i].Dist(shape.Points[(i+1)%n])
		if l > bestLen {
			best, bestLen = i, l
		}
	}
	return best
}

// bisect is spec.md §4.8's cutter primitive: split along the line through
// a point a fraction `ratio` along edge i, perpendicular to that edge but
// rotated by `angle`, with corridor width gap.
func bisect(shape *geom.Polygon, i int, ratio, angle, gap float64) (*geom.Polygon, *geom.Polygon) {
	n := len(shape.Points)
	v0, v1 := shape.Points[i], shape.Points[(i+1)%n]
	point := geom.Lerp(v0, v1, ratio)

	ex, ey := v1.X-v0.X, v1.Y-v0.Y
	px, py := -ey, ex // perpendicular to the edge
	cos, sin := math.Cos(angle), math.Sin(angle)
	dx, dy := px*cos-py*sin, px*sin+py*cos

	return shape.CutLine(point, dx, dy, gap)
}

// radial cuts poly into one triangular wedge per boundary edge, each
// meeting at center, narrowing the two center-incident edges of each
// wedge by gap/2 so neighboring wedges don't touch.
func radial(poly *geom.Polygon, center *geom.Point, gap float64) []*geom.Polygon {
	n := len(poly.Points)
	var out []*geom.Polygon
	for i := 0; i < n; i++ {
		v0, v1 := poly.Points[i], poly.Points[(i+1)%n]
		if v0 == center || v1 == center {
			continue
		}
		out = append(out, wedge(center, v0, v1, gap))
	}
	return out
}

// semiRadial is radial around a boundary vertex instead of the centroid:
// the two wedges incident to that vertex degenerate to zero area and are
// skipped.
func semiRadial(poly *geom.Polygon, gap float64) []*geom.Polygon {
	n := len(poly.Points)
	if n == 0 {
		return nil
	}
	center := closestVertex(poly, poly.Center())
	return radial(poly, center, gap)
}

// wedge builds the triangle (center, v0, v1), shrinking the two
// center-incident edges inward by gap/2 (approximating the full
// edge-offset-and-reintersect treatment Shrink gives a closed polygon,
// adapted to a single shared vertex — see DESIGN.md).
func wedge(center, v0, v1 *geom.Point, gap float64) *geom.Polygon {
	if gap <= 0 {
		return geom.NewPolygon([]*geom.Point{center, v0, v1})
	}
	d0x, d0y := v0.X-center.X, v0.Y-center.Y
	len0 := math.Hypot(d0x, d0y)
	d1x, d1y := v1.X-center.X, v1.Y-center.Y
	len1 := math.Hypot(d1x, d1y)
	if len0 == 0 || len1 == 0 {
		return geom.NewPolygon([]*geom.Point{center, v0, v1})
	}
	p0x, p0y := -d0y/len0, d0x/len0
	if p0x*d1x+p0y*d1y < 0 {
		p0x, p0y = -p0x, -p0y
	}
	p1x, p1y := -d1y/len1, d1x/len1
	if p1x*d0x+p1y*d0y < 0 {
		p1x, p1y = -p1x, -p1y
	}
	nv0 := geom.NewPoint(v0.X+p0x*gap/2, v0.Y+p0y*gap/2)
	nv1 := geom.NewPoint(v1.X+p1x*gap/2, v1.Y+p1y*gap/2)
	return geom.NewPolygon([]*geom.Point{center, nv0, nv1})
}

// ring peels successive onion-skin shells off poly's boundary: sorted
// shortest edge first, offset that edge inward by thickness and cut the
// remaining core along the offset line, keeping the larger piece as the
// new core and collecting the smaller as a shell slice.
func ring(poly *geom.Polygon, thickness float64) (shells []*geom.Polygon, core *geom.Polygon) {
	n := len(poly.Points)
	type edgeInfo struct {
		i      int
		length float64
	}
	edges := make([]edgeInfo, n)
	for i := 0; i < n; i++ {
		a, b := poly.Points[i], poly.Points[(i+1)%n]
		edges[i] = edgeInfo{i, a.Dist(b)}
	}
	sort.Slice(edges, func(a, b int) bool { return edges[a].length < edges[b].length })

	core = poly
	for _, e := range edges {
		if core == nil || len(core.Points) < 3 {
			break
		}
		a, b := poly.Points[e.i], poly.Points[(e.i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length, dx/length
		point := geom.NewPoint(a.X+nx*thickness, a.Y+ny*thickness)
		h1, h2 := core.CutLine(point, dx, dy, 0)
		if h1 == nil || h2 == nil {
			continue
		}
		a1, a2 := math.Abs(h1.Area()), math.Abs(h2.Area())
		var shell, next *geom.Polygon
		if a1 < a2 {
			shell, next = h1, h2
		} else {
			shell, next = h2, h1
		}
		shells = append(shells, shell)
		core = next
	}
	return shells, core
}

// createOrthoBuilding recursively bisects poly at a jittered ratio,
// accepting leaves whose area is below 2*minBlockSq (a fixed threshold,
// not jittered) with probability fill and recursing otherwise, so a ward's block produces a cluster of building footprints
// rather than a single inset rectangle; the whole attempt restarts, up to
// a few times, if it happens to emit nothing.
func createOrthoBuilding(poly *geom.Polygon, minBlockSq, fill float64, r *rng.Rng) []*geom.Polygon {
	for attempt := 0; attempt < 5; attempt++ {
		var out []*geom.Polygon
		orthoRecurse(poly, minBlockSq, fill, r, 0, &out)
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func orthoRecurse(poly *geom.Polygon, minBlockSq, fill float64, r *rng.Rng, depth int, out *[]*geom.Polygon) {
	if len(poly.Points) < 3 || depth >= maxAlleyDepth {
		return
	}
	area := math.Abs(poly.Area())
	if area < minBlockSq*2 {
		if r.Bool(fill) {
			*out = append(*out, poly)
		}
		return
	}

	i := longestEdge(poly)
	ratio := r.FloatRange(0.4, 0.6)
	left, right := bisect(poly, i, ratio, 0, 0)
	for _, h := range [2]*geom.Polygon{left, right} {
		if h != nil && len(h.Points) >= 3 {
			orthoRecurse(h, minBlockSq, fill, r, depth+1, out)
		}
	}
}

func buildPark(shape *geom.Polygon) []*geom.Polygon {
	if shape.Compactness() >= 0.7 {
		return radial(shape, shape.Center(), alleyStreet)
	}
	return semiRadial(shape, alleyStreet)
}

func buildFarm(shape *geom.Polygon, r *rng.Rng) []*geom.Polygon {
	if len(shape.Points) == 0 {
		return nil
	}
	anchor := shape.Points[r.Int(len(shape.Points))]
	t := 0.3 + 0.4*r.Float()
	base := geom.Lerp(anchor, shape.Center(), t)
	angle := r.FloatRange(0, 2*math.Pi)
	rect := rotatedRect(base, 2, 2, angle)
	return createOrthoBuilding(rect, 8, 0.5, r)
}

// statueSize is the half-extent of a market statue's base rectangle;
// spec.md gives Market's rectangle-vs-circle choice and offset formula
// but not an explicit size, so this is chosen to read as a small plaza
// fixture relative to ordinary building footprints.
const statueSize = 2.0

func buildMarket(shape *geom.Polygon, r *rng.Rng) []*geom.Polygon {
	i := longestEdge(shape)
	v0, v1 := shape.Points[i], shape.Points[(i+1)%len(shape.Points)]
	mid := geom.Lerp(v0, v1, 0.5)
	centroid := shape.Center()

	statue := r.Bool(0.6)
	var base *geom.Point
	if statue || r.Bool(0.3) {
		t := 0.2 + 0.4*r.Float()
		base = geom.Lerp(centroid, mid, t)
	} else {
		base = centroid
	}

	if statue {
		angle := math.Atan2(v1.Y-v0.Y, v1.X-v0.X)
		return []*geom.Polygon{rotatedRect(base, statueSize, statueSize, angle)}
	}
	return []*geom.Polygon{circlePolygon(base, statueSize, 16)}
}

func buildCathedral(shape *geom.Polygon, r *rng.Rng) []*geom.Polygon {
	if r.Bool(0.4) {
		thickness := 2 + 4*r.Float()
		shells, core := ring(shape, thickness)
		out := append([]*geom.Polygon{}, shells...)
		if core != nil && len(core.Points) >= 3 {
			out = append(out, core)
		}
		return out
	}
	return createOrthoBuilding(shape, 50, 0.8, r)
}

func buildCastle(shape *geom.Polygon, r *rng.Rng) []*geom.Polygon {
	var keep *geom.Polygon
	if shape.IsConvex() {
		keep = shape.Shrink(mainStreet * 2)
	} else {
		keep = shape.Buffer(mainStreet * 2)
	}
	if keep == nil || len(keep.Points) < 3 {
		return nil
	}
	area := math.Abs(keep.Area())
	return createOrthoBuilding(keep, 4*math.Sqrt(area), 0.6, r)
}

// rotatedRect returns a (2*halfW)×(2*halfH) rectangle centered on center,
// rotated by angle.
func rotatedRect(center *geom.Point, halfW, halfH, angle float64) *geom.Polygon {
	cos, sin := math.Cos(angle), math.Sin(angle)
	corners := [4][2]float64{{-halfW, -halfH}, {halfW, -halfH}, {halfW, halfH}, {-halfW, halfH}}
	pts := make([]*geom.Point, 4)
	for i, c := range corners {
		x, y := c[0], c[1]
		pts[i] = geom.NewPoint(center.X+x*cos-y*sin, center.Y+x*sin+y*cos)
	}
	return geom.NewPolygon(pts)
}

// circlePolygon approximates a circle of the given radius with an
// n-sided regular polygon.
func circlePolygon(center *geom.Point, radius float64, n int) *geom.Polygon {
	pts := make([]*geom.Point, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.NewPoint(center.X+radius*math.Cos(a), center.Y+radius*math.Sin(a))
	}
	return geom.NewPolygon(pts)
}

// closestVertex returns whichever vertex of poly is nearest to pt.
func closestVertex(poly *geom.Polygon, pt *geom.Point) *geom.Point {
	var best *geom.Point
	bestDist := -1.0
	for _, v := range poly.Points {
		d := v.Dist(pt)
		if best == nil || d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

// FilterOutskirts drops a fraction of candidate footprints the farther
// they sit from the city center, following the original generator's
// rand()*rand() product-of-uniforms density falloff (preserved over the
// alternative fuzzy(1) formulation; see DESIGN.md Open Questions).
func FilterOutskirts(footprints []*geom.Polygon, center *geom.Point, cityRadius float64, r *rng.Rng) []*geom.Polygon {
	if cityRadius <= 0 {
		return footprints
	}
	var out []*geom.Polygon
	for _, f := range footprints {
		d := f.Center().Dist(center) / cityRadius
		density := 1 - d
		if density < 0 {
			density = 0
		}
		if r.Float()*r.Float() < density {
			out = append(out, f)
		}
	}
	return out
}

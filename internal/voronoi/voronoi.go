// Package voronoi builds the Voronoi tessellation the city mesh is cut
// from: a spiral cloud of sites, half-plane-intersected into cells, with
// near-duplicate cell-boundary coordinates merged into a single shared
// *geom.Point so neighboring cells reference identical vertex objects.
package voronoi

import (
	"math"
	"sort"

	"github.com/unixpickle/model3d/model2d"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/rng"
)

// Site is one Voronoi cell: its generating point and the polygon of
// shared-identity vertices bounding it.
type Site struct {
	ID     int
	Center *geom.Point
	Cell   *geom.Polygon
}

// Diagram is the full tessellation: every site plus the bounding box it
// was computed within.
type Diagram struct {
	Sites []*Site
	Min   geom.Point
	Max   geom.Point
}

// SpiralCloud generates n site centers on the Archimedean spiral the
// original generator seeds its mesh from: angle a = a0 + 5*sqrt(i),
// radius r = 10 + i*(2+rand), each jittered slightly so the mesh is not
// perfectly regular.
func SpiralCloud(n int, r *rng.Rng) []*geom.Point {
	pts := make([]*geom.Point, n)
	a0 := r.FloatRange(0, 2*math.Pi)
	for i := 0; i < n; i++ {
		a := a0 + 5*math.Sqrt(float64(i))
		radius := 10 + float64(i)*(2+r.Float())
		pts[i] = geom.NewPoint(radius*math.Cos(a), radius*math.Sin(a))
	}
	return pts
}

type edge struct{ a, b model2d.Coord }

// Build computes the Voronoi diagram for centers within [min,max],
// merging boundary coordinates within epsilon of one another so shared
// edges resolve to the same *geom.Point on both sides.
func Build(min, max geom.Point, centers []*geom.Point, epsilon float64) *Diagram {
	coords := make([]model2d.Coord, len(centers))
	for i, c := range centers {
		coords[i] = model2d.Coord{X: c.X, Y: c.Y}
	}
	mn := model2d.Coord{X: min.X, Y: min.Y}
	mx := model2d.Coord{X: max.X, Y: max.Y}

	cellEdges := make([][]edge, len(coords))
	for i, c := range coords {
		constraints := model2d.NewConvexPolytopeRect(mn, mx)
		for j, c1 := range coords {
			if i == j {
				continue
			}
			mp := c.Mid(c1)
			normal := c1.Sub(c).Normalize()
			constraints = append(constraints, &model2d.LinearConstraint{
				Normal: normal,
				Max:    normal.Dot(mp),
			})
		}
		segs := constraints.Mesh().SegmentSlice()
		edges := make([]edge, len(segs))
		for k, s := range segs {
			edges[k] = edge{s[0], s[1]}
		}
		cellEdges[i] = edges
	}

	canonical := mergeCoords(cellEdges, epsilon)

	sites := make([]*Site, len(coords))
	for i, c := range coords {
		ring := buildRing(cellEdges[i], canonical)
		sites[i] = &Site{
			ID:     i,
			Center: geom.NewPoint(c.X, c.Y),
			Cell:   geom.NewPolygon(ring),
		}
	}

	return &Diagram{Sites: sites, Min: min, Max: max}
}

// mergeCoords collapses coordinates within epsilon of one another to a
// single shared *geom.Point, the adaptation of the teacher's Repair pass
// from an in-place coordinate rewrite to an identity map callers use to
// allocate shared vertices.
func mergeCoords(cells [][]edge, epsilon float64) map[model2d.Coord]*geom.Point {
	seen := map[model2d.Coord]bool{}
	var all []model2d.Coord
	for _, edges := range cells {
		for _, e := range edges {
			for _, p := range [2]model2d.Coord{e.a, e.b} {
				if !seen[p] {
					seen[p] = true
					all = append(all, p)
				}
			}
		}
	}
	tree := model2d.NewCoordTree(all)
	canonical := map[model2d.Coord]*geom.Point{}
	assigned := map[model2d.Coord]bool{}
	for _, c := range all {
		if assigned[c] {
			continue
		}
		pt := geom.NewPoint(c.X, c.Y)
		for _, n := range neighborsWithin(tree, c, epsilon) {
			if !assigned[n] {
				assigned[n] = true
				canonical[n] = pt
			}
		}
		assigned[c] = true
		canonical[c] = pt
	}
	return canonical
}

// buildRing chains a cell's (possibly out-of-order, possibly
// near-duplicate) edge list into a single ordered vertex loop.
func buildRing(edges []edge, canonical map[model2d.Coord]*geom.Point) []*geom.Point {
	type pedge struct{ a, b *geom.Point }
	var live []pedge
	starts := map[*geom.Point]pedge{}
	for _, e := range edges {
		a, b := canonical[e.a], canonical[e.b]
		if a == b {
			continue
		}
		pe := pedge{a, b}
		live = append(live, pe)
		starts[a] = pe
	}
	if len(live) == 0 {
		return nil
	}
	ring := make([]*geom.Point, 0, len(live))
	cur := live[0]
	ring = append(ring, cur.a)
	for i := 0; i < len(live); i++ {
		next, ok := starts[cur.b]
		if !ok || next.a == live[0].a {
			break
		}
		ring = append(ring, next.a)
		cur = next
	}
	return ring
}

func neighborsWithin(tree *model2d.CoordTree, c model2d.Coord, epsilon float64) []model2d.Coord {
	for k := 2; ; k++ {
		neighbors := tree.KNN(k, c)
		if len(neighbors) < k {
			return neighbors
		}
		if neighbors[len(neighbors)-1].Dist(c) > epsilon {
			return neighbors[:len(neighbors)-1]
		}
		if k > 64 {
			return neighbors
		}
	}
}

// Relax recomputes only the five site centers at indices {0, 1, 2, 3, n}
// as their cells' centroids and rebuilds the diagram from the updated
// center set (spec.md §4.3). This is a narrow touch-up of the spiral's
// near-origin points, not full Lloyd relaxation over the whole site set
// — every other center is carried through unchanged.
func Relax(d *Diagram, n int, epsilon float64) *Diagram {
	centers := make([]*geom.Point, len(d.Sites))
	for i, s := range d.Sites {
		centers[i] = s.Center
	}
	for _, idx := range [5]int{0, 1, 2, 3, n} {
		if idx >= 0 && idx < len(d.Sites) {
			centers[idx] = d.Sites[idx].Cell.Center()
		}
	}
	return Build(d.Min, d.Max, centers, epsilon)
}

// SortByDistance orders centers by distance from origin, ascending, the
// way the pipeline selects the first N spiral sites as patch seeds.
func SortByDistance(pts []*geom.Point, origin *geom.Point) []*geom.Point {
	out := append([]*geom.Point{}, pts...)
	sort.Slice(out, func(i, j int) bool {
		return origin.Dist(out[i]) < origin.Dist(out[j])
	})
	return out
}

// Package cell extracts a curtain wall from a set of walled patches: the
// circumference of the set via directed-edge deletion, smoothed, with
// gates cut into it and towers placed along it.
package cell

import (
	"errors"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/rng"
)

// ErrBadWalledArea is returned when the walled patch set does not yield a
// single connected circumference, or when Build can place no gate on it.
var ErrBadWalledArea = errors.New("cell: walled area does not form a single connected wall")

// Wall is a fortified boundary: its shape (the ordered ring of vertices
// forming the circumference), the subset of vertices that are gates, the
// subset that carry towers, and a per-edge flag recording which edges of
// Shape are actual wall (as opposed to a gate gap).
type Wall struct {
	Shape    *geom.Polygon
	Gates    []*geom.Point
	Towers   []*geom.Point
	Segments []bool
}

type directedEdge struct{ a, b *geom.Point }

// FindCircumference returns the external boundary of the set of inside
// patches: an edge survives iff no patch in the inside set owns its
// reverse. This is the vector analogue of the deletion method: an edge
// (a,b) owned by patch P is internal if some other inside patch owns the
// reversed edge (b,a); what remains, walked into a ring, is the
// circumference.
func FindCircumference(inside []*mesh.Patch) (*geom.Polygon, error) {
	owned := map[directedEdge]bool{}
	for _, p := range inside {
		n := len(p.Shape.Points)
		for i := 0; i < n; i++ {
			a, b := p.Shape.Points[i], p.Shape.Points[(i+1)%n]
			owned[directedEdge{a, b}] = true
		}
	}

	var boundary []directedEdge
	for e := range owned {
		if !owned[directedEdge{e.b, e.a}] {
			boundary = append(boundary, e)
		}
	}
	if len(boundary) == 0 {
		return nil, ErrBadWalledArea
	}

	ring, err := walkRing(boundary)
	if err != nil {
		return nil, err
	}
	return geom.NewPolygon(ring), nil
}

func walkRing(edges []directedEdge) ([]*geom.Point, error) {
	starts := map[*geom.Point]directedEdge{}
	for _, e := range edges {
		starts[e.a] = e
	}
	ring := []*geom.Point{edges[0].a}
	cur := edges[0]
	for i := 0; i < len(edges); i++ {
		next, ok := starts[cur.b]
		if !ok {
			return nil, ErrBadWalledArea
		}
		if next.a == ring[0] {
			break
		}
		ring = append(ring, next.a)
		cur = next
	}
	if len(ring) < 3 {
		return nil, ErrBadWalledArea
	}
	return ring, nil
}

// Smooth rounds off the wall's corners by the given fraction, preserving
// any vertex listed in reserved (Build passes the gates plus its own
// reserved vertices) untouched.
func Smooth(shape *geom.Polygon, t float64, reserved map[*geom.Point]bool) {
	n := len(shape.Points)
	orig := append([]*geom.Point{}, shape.Points...)
	for i := 0; i < n; i++ {
		if reserved[orig[i]] {
			continue
		}
		prev := orig[(i-1+n)%n]
		next := orig[(i+1)%n]
		mid := geom.Lerp(prev, next, 0.5)
		shape.Points[i] = geom.Lerp(orig[i], mid, t)
	}
}

// junctionCount returns, for each vertex among shape's points, how many
// patches in all own it — a vertex shared by 2+ patches is a junction.
func junctionCount(all []*mesh.Patch, shape *geom.Polygon) map[*geom.Point]int {
	counts := map[*geom.Point]int{}
	for _, v := range shape.Points {
		counts[v] = 0
	}
	for _, p := range all {
		for _, v := range p.Shape.Points {
			if _, ok := counts[v]; ok {
				counts[v]++
			}
		}
	}
	return counts
}

// findExteriorPatch returns the single patch in all that owns vertex v but
// is not in inside, if exactly one such patch exists.
func findExteriorPatch(all, inside []*mesh.Patch, v *geom.Point) *mesh.Patch {
	insideSet := map[*mesh.Patch]bool{}
	for _, p := range inside {
		insideSet[p] = true
	}
	var found *mesh.Patch
	for _, p := range all {
		if insideSet[p] {
			continue
		}
		for _, pv := range p.Shape.Points {
			if pv == v {
				if found != nil && found != p {
					return nil
				}
				found = p
				break
			}
		}
	}
	return found
}

// splitOuterPatch cuts the exterior patch owning gate along the chord from
// gate to the patch's own vertex farthest outward from it (the vertex with
// the largest projection onto the gate's direction away from the patch
// center), and splices the two halves into *patches* in place of the
// original. Used when a gate opens onto a single exterior patch with more
// than 3 vertices, per spec.md §4.5.
func splitOuterPatch(patches *[]*mesh.Patch, outer *mesh.Patch, gate *geom.Point) {
	if len(outer.Shape.Points) <= 3 {
		return
	}
	center := outer.Shape.Center()
	dir := geom.NewPoint(gate.X-center.X, gate.Y-center.Y)
	var gi int
	for i, v := range outer.Shape.Points {
		if v == gate {
			gi = i
			break
		}
	}
	best := -1
	bestProj := -1e300
	for i, v := range outer.Shape.Points {
		if v == gate {
			continue
		}
		proj := (v.X-gate.X)*dir.X + (v.Y-gate.Y)*dir.Y
		if proj > bestProj {
			bestProj = proj
			best = i
		}
	}
	if best < 0 {
		return
	}

	left, right := outer.Shape.Cut(gi, best, 0)
	if len(left.Points) < 3 || len(right.Points) < 3 {
		return
	}

	out := make([]*mesh.Patch, 0, len(*patches)+1)
	maxID := outer.ID
	for _, p := range *patches {
		if p == outer {
			continue
		}
		if p.ID > maxID {
			maxID = p.ID
		}
		out = append(out, p)
	}
	halfA := &mesh.Patch{ID: outer.ID, Shape: left, Ward: outer.Ward, WithinCity: outer.WithinCity, WithinWalls: outer.WithinWalls}
	halfB := &mesh.Patch{ID: maxID + 1, Shape: right, Ward: outer.Ward, WithinCity: outer.WithinCity, WithinWalls: outer.WithinWalls}
	out = append(out, halfA, halfB)
	*patches = out
}

// PlaceGates chooses up to maxGates border vertices as gates. A candidate
// is a border vertex shared by 2+ patches (a junction) that is not
// reserved; one is drawn at random each round rather than scored, per
// spec.md §4.5. When the gate opens onto a single exterior patch with
// more than 3 vertices, that patch is split along the gate-to-farthest-
// vertex chord and its halves spliced into *patches so later stages see
// the finer mesh. The chosen candidate and its two ring neighbors are
// then removed from the candidate pool (wrapping at the ends), and
// selection continues while at least 3 candidates remain.
func PlaceGates(patches *[]*mesh.Patch, inside []*mesh.Patch, shape *geom.Polygon, maxGates int, reserved map[*geom.Point]bool, r *rng.Rng) []*geom.Point {
	n := len(shape.Points)
	if n == 0 || maxGates <= 0 {
		return nil
	}
	counts := junctionCount(*patches, shape)

	var candidates []int
	for i, v := range shape.Points {
		if counts[v] >= 2 && !reserved[v] {
			candidates = append(candidates, i)
		}
	}

	var gates []*geom.Point
	for len(gates) < maxGates && len(candidates) >= 3 {
		ci := r.Int(len(candidates))
		idx := candidates[ci]
		gate := shape.Points[idx]

		if outer := findExteriorPatch(*patches, inside, gate); outer != nil {
			splitOuterPatch(patches, outer, gate)
		}

		gates = append(gates, gate)

		remove := map[int]bool{ci: true}
		remove[(ci-1+len(candidates))%len(candidates)] = true
		remove[(ci+1)%len(candidates)] = true
		var kept []int
		for i, c := range candidates {
			if !remove[i] {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}
	return gates
}

// PlaceTowers places a tower at every vertex of shape that is not a gate
// and is at least minDist from the previously placed tower, walking the
// ring in order. The spacing restarts after each gate: the first vertex
// past a gate always gets a tower.
func PlaceTowers(shape *geom.Polygon, gates []*geom.Point, minDist float64) []*geom.Point {
	gateSet := map[*geom.Point]bool{}
	for _, g := range gates {
		gateSet[g] = true
	}
	var towers []*geom.Point
	var last *geom.Point
	for _, v := range shape.Points {
		if gateSet[v] {
			last = nil
			continue
		}
		if last == nil || last.Dist(v) >= minDist {
			towers = append(towers, v)
			last = v
		}
	}
	return towers
}

// Build assembles a Wall from a set of inside patches. allPatches is the
// full mesh, mutated in place when a gate's sole exterior patch is split
// (spec.md §4.5); reserved marks vertices — such as a citadel's own hull
// vertices — that must never become gates or be smoothed away.
func Build(allPatches *[]*mesh.Patch, inside []*mesh.Patch, maxGates int, minTowerDist, smoothing float64, reserved map[*geom.Point]bool, r *rng.Rng) (*Wall, error) {
	shape, err := FindCircumference(inside)
	if err != nil {
		return nil, err
	}
	if reserved == nil {
		reserved = map[*geom.Point]bool{}
	}
	gates := PlaceGates(allPatches, inside, shape, maxGates, reserved, r)
	if len(gates) == 0 {
		return nil, ErrBadWalledArea
	}
	gateReserved := map[*geom.Point]bool{}
	for v := range reserved {
		gateReserved[v] = true
	}
	for _, g := range gates {
		gateReserved[g] = true
	}
	Smooth(shape, smoothing, gateReserved)
	towers := PlaceTowers(shape, gates, minTowerDist)

	n := len(shape.Points)
	segments := make([]bool, n)
	gateSet := map[*geom.Point]bool{}
	for _, g := range gates {
		gateSet[g] = true
	}
	for i := 0; i < n; i++ {
		segments[i] = !gateSet[shape.Points[i]] && !gateSet[shape.Points[(i+1)%n]]
	}

	return &Wall{Shape: shape, Gates: gates, Towers: towers, Segments: segments}, nil
}

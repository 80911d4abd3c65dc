// Package citygen generates a complete in-memory medieval city layout:
// a Voronoi-derived patch mesh, a curtain wall with gates and towers, a
// street/road/artery network, ward assignment, and per-ward building
// footprints. It performs no I/O, no rendering, and no serialization —
// Generate returns a pure data structure for its caller to do any of
// that with.
package citygen

import (
	"fmt"
	"math"
	"time"

	"github.com/mossport/citygen/internal/building"
	"github.com/mossport/citygen/internal/cell"
	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/rng"
	"github.com/mossport/citygen/internal/topology"
	"github.com/mossport/citygen/internal/voronoi"
	"github.com/mossport/citygen/internal/ward"
)

const voronoiEpsilon = 1e-6

// Generate builds a Model from a size (typically 6..40, the rough patch
// count of the city) and a seed. A seed <= 0 draws a fresh seed from the
// clock. Generation is retried, with a full Rng reset each time, up to
// opts.MaxAttempts times if a stage hits one of the four retryable
// errors; exhausting the retry budget is fatal, and no partial Model is
// ever returned.
func Generate(size uint32, seed int64, opts ...GenerateOptions) (*Model, error) {
	var o GenerateOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	o = o.withDefaults()

	actualSeed := seed
	if actualSeed <= 0 {
		actualSeed = time.Now().UnixNano()
	}

	var lastErr error
	for attempt := 0; attempt < o.MaxAttempts; attempt++ {
		r := rng.New(actualSeed + int64(attempt))
		m, err := build(size, actualSeed, r, o)
		if err == nil {
			return m, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("citygen: exhausted %d attempts: %w", o.MaxAttempts, lastErr)
}

func build(size uint32, seed int64, r *rng.Rng, o GenerateOptions) (*Model, error) {
	n := int(size)
	if n < 6 {
		n = 6
	}

	origin := geom.NewPoint(0, 0)
	centers := voronoi.SpiralCloud(8*n, r)
	bound := 40.0 * float64(n)
	min, max := *geom.NewPoint(-bound, -bound), *geom.NewPoint(bound, bound)

	diagram := voronoi.Build(min, max, centers, voronoiEpsilon)
	for i := 0; i < 3; i++ {
		diagram = voronoi.Relax(diagram, n, voronoiEpsilon)
	}
	reorderByDistance(diagram, origin)

	patches, err := mesh.Build(diagram, n)
	if err != nil {
		return nil, err
	}
	for _, p := range patches {
		p.WithinCity = true
	}

	border, err := cell.FindCircumference(patches)
	if err != nil {
		return nil, ErrBadWalledArea
	}

	innerCount := n / 2
	if innerCount < 3 {
		innerCount = minInt(3, n)
	}
	inner := closestPatches(patches, origin, innerCount)

	// Junction optimization is scoped to the patches that will actually
	// form the walled city (spec.md §4.4), so it must know that subset
	// before it runs — this is why it happens here rather than inside
	// mesh.Build.
	if err := mesh.OptimizeJunctions(patches, inner, mesh.MinEdgeLength); err != nil {
		return nil, err
	}

	citadelPatch := closestPatches(inner, origin, 1)
	if len(citadelPatch) == 0 {
		return nil, ErrBadCitadelShape
	}
	citadel := citadelPatch[0].Shape
	if len(citadel.Points) < 3 || !citadel.IsConvex() {
		return nil, ErrBadCitadelShape
	}
	citadelPatch[0].Ward = mesh.WardTag(ward.Castle)

	reserved := map[*geom.Point]bool{}
	for _, v := range citadel.Points {
		reserved[v] = true
	}

	wall, err := cell.Build(&patches, inner, o.MaxGates, o.MinTowerDistance, o.WallSmoothing, reserved, r)
	if err != nil {
		return nil, err
	}
	withinWalls := map[*mesh.Patch]bool{}
	for _, p := range inner {
		p.WithinWalls = true
		withinWalls[p] = true
	}

	topo := topology.Build(patches, citadel.Points, wall.Shape.Points, wall.Gates)
	innerExclude := keysOf(topo.Inner)
	outerExclude := keysOf(topo.Outer)

	plazaPatch := choosePlaza(inner, citadelPatch[0], origin)
	var plaza *geom.Polygon
	if plazaPatch != nil {
		plaza = plazaPatch.Shape
	}

	centerVertex := nearestVertex(patches, origin)
	var streets, roads, arteries []Path
	for _, gate := range wall.Gates {
		end := centerVertex
		if plaza != nil {
			end = closestVertexAmong(plaza.Points, gate)
		}
		path, err := topo.ShortestPath(gate, end, outerExclude)
		if err != nil {
			return nil, err
		}
		streets = append(streets, path)

		far := scaleFromOrigin(gate, 1000)
		start := nearestVertex(patches, far)
		road, err := topo.ShortestPath(start, gate, innerExclude)
		if err != nil {
			return nil, err
		}
		roads = append(roads, road)
	}
	for i := 0; i+1 < len(wall.Gates); i++ {
		path, err := topo.ShortestPath(wall.Gates[i], wall.Gates[i+1], nil)
		if err == nil {
			arteries = append(arteries, path)
		}
	}

	assignWards(n, patches, inner, plazaPatch, citadelPatch[0], wall, withinWalls, origin, r)

	cityRadius := ward.CityRadius(patches, origin)

	wards := buildWards(patches, origin, cityRadius, r)

	return &Model{
		NPatches:   n,
		Seed:       seed,
		Patches:    patches,
		Inner:      inner,
		Center:     origin,
		Border:     border,
		Plaza:      plaza,
		Citadel:    citadel,
		Wall:       wall,
		Gates:      wall.Gates,
		Topology:   topo,
		Streets:    streets,
		Roads:      roads,
		Arteries:   arteries,
		Wards:      wards,
		CityRadius: cityRadius,
	}, nil
}

// choosePlaza picks the inner patch (excluding the citadel) closest to
// center as the city's plaza. spec.md leaves whether a plaza is wanted at
// all as an open question for city layouts that don't explicitly reserve
// one; this generator always attempts one when inner holds a non-citadel
// patch, recorded as an Open Question in DESIGN.md.
func choosePlaza(inner []*mesh.Patch, citadelPatch *mesh.Patch, center *geom.Point) *mesh.Patch {
	var best *mesh.Patch
	bestDist := math.Inf(1)
	for _, p := range inner {
		if p == citadelPatch {
			continue
		}
		d := p.Shape.Center().Dist(center)
		if d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// assignWards runs spec.md §4.7's ward placement sequence: Market for the
// plaza (the citadel already holds Castle, set by build), per-gate
// GateWard probability, the
// template-rated pass over the remaining inner patches, the Outskirts
// GateWard spread, and the Countryside Farm/inert split for whatever is
// left unassigned.
func assignWards(n int, all, inner []*mesh.Patch, plaza, citadel *mesh.Patch, wall *cell.Wall, withinWalls map[*mesh.Patch]bool, center *geom.Point, r *rng.Rng) {
	if plaza != nil {
		plaza.Ward = mesh.WardTag(ward.Market)
	}

	gateProb := 0.2
	if wall != nil && len(wall.Gates) > 0 {
		gateProb = 0.5
	}
	for _, gate := range wall.Gates {
		for _, p := range patchesTouchingVertex(all, gate) {
			if p.Ward != mesh.Unassigned {
				continue
			}
			if r.Bool(gateProb) {
				p.Ward = mesh.WardTag(ward.GateWard)
			}
		}
	}

	var subset []*mesh.Patch
	for _, p := range inner {
		if p.Ward == mesh.Unassigned {
			subset = append(subset, p)
		}
	}
	var plazaShape, citadelShape, wallShape *geom.Polygon
	if plaza != nil {
		plazaShape = plaza.Shape
	}
	if citadel != nil {
		citadelShape = citadel.Shape
	}
	if wall != nil {
		wallShape = wall.Shape
	}
	ward.Assign(subset, all, center, withinWalls, plazaShape, citadelShape, wallShape, r)

	// Outskirts: patches outside the walls but touching a gate join the
	// city as GateWard with high probability.
	outskirtsProb := 1 - 1/float64(n-5)
	if n <= 5 {
		outskirtsProb = 1
	}
	for _, gate := range wall.Gates {
		for _, p := range patchesTouchingVertex(all, gate) {
			if withinWalls[p] || p.Ward != mesh.Unassigned {
				continue
			}
			if r.Bool(outskirtsProb) {
				p.Ward = mesh.WardTag(ward.GateWard)
				p.WithinCity = true
			}
		}
	}

	// Countryside: whatever remains becomes Farm, with probability 0.2
	// when compact enough to lay a field out in, else an inert ward with
	// no generated geometry.
	for _, p := range all {
		if p.Ward != mesh.Unassigned {
			continue
		}
		if p.Shape.Compactness() >= 0.7 && r.Bool(0.2) {
			p.Ward = mesh.WardTag(ward.Farm)
		} else {
			p.Ward = mesh.WardTag(ward.Common)
			p.WithinCity = false
		}
	}
}

func buildWards(patches []*mesh.Patch, center *geom.Point, cityRadius float64, r *rng.Rng) []*Ward {
	byKind := map[ward.Kind]*Ward{}
	var order []ward.Kind
	for _, p := range patches {
		k := ward.Kind(p.Ward)
		w, ok := byKind[k]
		if !ok {
			w = &Ward{Kind: k}
			byKind[k] = w
			order = append(order, k)
		}
		w.Patches = append(w.Patches, p)

		footprints := building.Generate(p.Shape, k, r)
		if !p.WithinWalls {
			footprints = building.FilterOutskirts(footprints, center, cityRadius, r)
		}
		w.Buildings = append(w.Buildings, footprints...)
	}
	out := make([]*Ward, len(order))
	for i, k := range order {
		out[i] = byKind[k]
	}
	return out
}

func reorderByDistance(d *voronoi.Diagram, origin *geom.Point) {
	sites := d.Sites
	for i := 1; i < len(sites); i++ {
		j := i
		for j > 0 && sites[j-1].Center.Dist(origin) > sites[j].Center.Dist(origin) {
			sites[j-1], sites[j] = sites[j], sites[j-1]
			j--
		}
	}
}

func closestPatches(patches []*mesh.Patch, origin *geom.Point, k int) []*mesh.Patch {
	ordered := append([]*mesh.Patch{}, patches...)
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && ordered[j-1].Shape.Center().Dist(origin) > ordered[j].Shape.Center().Dist(origin) {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
			j--
		}
	}
	if k > len(ordered) {
		k = len(ordered)
	}
	return ordered[:k]
}

func nearestVertex(patches []*mesh.Patch, pt *geom.Point) *geom.Point {
	var best *geom.Point
	bestDist := -1.0
	for _, p := range patches {
		for _, v := range p.Shape.Points {
			d := v.Dist(pt)
			if best == nil || d < bestDist {
				best, bestDist = v, d
			}
		}
	}
	return best
}

// closestVertexAmong returns whichever point in pts sits closest to pt.
func closestVertexAmong(pts []*geom.Point, pt *geom.Point) *geom.Point {
	var best *geom.Point
	bestDist := -1.0
	for _, v := range pts {
		d := v.Dist(pt)
		if best == nil || d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

// touchesVertex reports whether p owns v by pointer identity.
func touchesVertex(p *mesh.Patch, v *geom.Point) bool {
	for _, pv := range p.Shape.Points {
		if pv == v {
			return true
		}
	}
	return false
}

// patchesTouchingVertex returns every patch in patches that owns v.
func patchesTouchingVertex(patches []*mesh.Patch, v *geom.Point) []*mesh.Patch {
	var out []*mesh.Patch
	for _, p := range patches {
		if touchesVertex(p, v) {
			out = append(out, p)
		}
	}
	return out
}

// scaleFromOrigin returns the point lying along the ray from the origin
// through p, at the given distance from the origin — spec.md §4.6's
// `gate·(1000/|gate|)` road-start construction.
func scaleFromOrigin(p *geom.Point, dist float64) *geom.Point {
	mag := math.Hypot(p.X, p.Y)
	if mag == 0 {
		return geom.NewPoint(0, 0)
	}
	scale := dist / mag
	return geom.NewPoint(p.X*scale, p.Y*scale)
}

func keysOf(m map[*geom.Point]bool) []*geom.Point {
	out := make([]*geom.Point, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

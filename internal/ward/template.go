package ward

import (
	"math"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/rng"
)

// Template is the fixed ward-kind multiset spec.md §4.7 transcribes for
// its "N=40 exemplar" city. The exemplar's own enumerated list totals 36
// entries, not 40 — a labeling inconsistency in spec.md itself, not a
// defect here (see DESIGN.md); it is transcribed literally, order and
// all, rather than padded out to match the label. Common, Farm, and
// GateWard are assigned by other mechanisms (steps 2/5/6 of Assign's
// caller) and never appear in the template itself.
func Template() []Kind {
	return []Kind{
		Craftsmen, Craftsmen, Merchant, Craftsmen, Craftsmen, Cathedral,
		Craftsmen, Craftsmen, Craftsmen, Craftsmen, Craftsmen, Craftsmen, Craftsmen, Craftsmen,
		Administration, Craftsmen, Slum, Craftsmen, Slum, Patriciate, Market,
		Slum, Craftsmen, Craftsmen, Craftsmen, Slum, Craftsmen, Craftsmen, Craftsmen,
		Military, Slum, Craftsmen, Park, Patriciate, Market, Merchant,
	}
}

// WeakShuffle performs the original generator's intentionally weak
// shuffle: it swaps len(list)/10 randomly chosen adjacent pairs, rather
// than a full Fisher-Yates permutation. This leaves the template mostly
// in its declared order, which is preserved here for fidelity rather than
// replaced with a stronger shuffle (see DESIGN.md Open Questions).
func WeakShuffle(list []Kind, r *rng.Rng) {
	n := len(list)
	if n < 2 {
		return
	}
	swaps := n / 10
	for i := 0; i < swaps; i++ {
		idx := r.Int(n - 1)
		list[idx], list[idx+1] = list[idx+1], list[idx]
	}
}

// CityRadius is spec.md §4.7 step 7: the farthest any vertex of a
// withinCity patch sits from center. It is computed over vertices, not
// patch centers, and only once ward/withinCity assignment is finalized —
// unlike a patch-center estimate taken up front, it reflects the city's
// actual settled footprint.
func CityRadius(patches []*mesh.Patch, center *geom.Point) float64 {
	max := 0.0
	for _, p := range patches {
		if !p.WithinCity {
			continue
		}
		for _, v := range p.Shape.Points {
			if d := v.Dist(center); d > max {
				max = d
			}
		}
	}
	return max
}

// sharesVertex reports whether patch p and shape share at least one
// vertex by pointer identity.
func sharesVertex(p *mesh.Patch, shape *geom.Polygon) bool {
	if shape == nil {
		return false
	}
	set := map[*geom.Point]bool{}
	for _, v := range shape.Points {
		set[v] = true
	}
	for _, v := range p.Shape.Points {
		if set[v] {
			return true
		}
	}
	return false
}

// Assign hands every patch in subset a ward kind, draining a shuffled
// Template kind-first (spec.md §4.7 step 4): pop the next kind, and if it
// implements LocationRater assign it to whichever unassigned patch in
// subset minimizes Rate; otherwise (Craftsmen and Park carry no rating
// formula) assign it to a random unassigned patch. The template is
// replenished with Slum once exhausted, so every patch in subset ends up
// assigned. all is the full patch set, used to compute each candidate's
// neighbor context.
func Assign(subset, all []*mesh.Patch, center *geom.Point, withinWalls map[*mesh.Patch]bool, plaza, citadel, wallShape *geom.Polygon, r *rng.Rng) {
	unassigned := append([]*mesh.Patch{}, subset...)

	pool := Template()
	WeakShuffle(pool, r)
	poolIdx := 0
	nextKind := func() Kind {
		if poolIdx >= len(pool) {
			return Slum
		}
		k := pool[poolIdx]
		poolIdx++
		return k
	}

	for len(unassigned) > 0 {
		k := nextKind()
		w := ByKind(k)
		rater, ok := w.(LocationRater)
		if !ok {
			idx := r.Int(len(unassigned))
			unassigned[idx].Ward = mesh.WardTag(k)
			unassigned = append(unassigned[:idx], unassigned[idx+1:]...)
			continue
		}

		best := -1
		bestScore := math.Inf(1)
		for i, p := range unassigned {
			ctx := Context{
				Patch:             p,
				Center:            center,
				WithinWalls:       withinWalls[p],
				Neighbors:         mesh.Neighbors(all, p),
				Plaza:             plaza,
				AdjacentToPlaza:   sharesVertex(p, plaza),
				HasCitadel:        citadel != nil,
				AdjacentToCitadel: sharesVertex(p, citadel),
				HasWall:           wallShape != nil,
				AdjacentToWall:    sharesVertex(p, wallShape),
			}
			score := rater.Rate(ctx)
			if score < bestScore {
				best, bestScore = i, score
			}
		}
		if best == -1 {
			continue
		}
		unassigned[best].Ward = mesh.WardTag(k)
		unassigned = append(unassigned[:best], unassigned[best+1:]...)
	}
}

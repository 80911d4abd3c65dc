// Package mesh turns a raw Voronoi tessellation into the patch mesh the
// rest of the pipeline builds on: each site becomes a Patch, and vertices
// that ended up closer together than the minimum edge length are merged
// so no patch is left with a degenerate sliver edge.
package mesh

import (
	"errors"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/voronoi"
)

// MinEdgeLength is the shortest edge a patch may keep after junction
// optimization; shorter edges are collapsed by merging their endpoints.
const MinEdgeLength = 8.0

// ErrDegeneratePatch is returned when junction optimization collapses a
// patch down to fewer than 3 vertices.
var ErrDegeneratePatch = errors.New("mesh: patch degenerated during junction optimization")

// WardTag names the ward kind a patch has been assigned, if any. It is a
// plain string so this package need not import the ward package; the
// ward package defines the canonical set of tag values.
type WardTag string

// Unassigned marks a patch with no ward yet.
const Unassigned WardTag = ""

// Patch is one cell of the city mesh.
type Patch struct {
	ID          int
	Shape       *geom.Polygon
	Ward        WardTag
	WithinCity  bool
	WithinWalls bool
}

// Build converts a Voronoi diagram's first n sites, in the order the
// diagram holds them, into a patch mesh; it does not sort them, so a
// caller that wants the closest sites orders d.Sites first. It performs no
// junction optimization itself: that stage needs to know which patches
// are inner (spec.md §4.4 scopes the merge scan to inner/citadel patches
// only), which isn't decided until the caller has picked its walled
// area, so callers run OptimizeJunctions explicitly once they know that
// subset.
func Build(d *voronoi.Diagram, n int) ([]*Patch, error) {
	if n > len(d.Sites) {
		n = len(d.Sites)
	}
	patches := make([]*Patch, n)
	for i := 0; i < n; i++ {
		patches[i] = &Patch{ID: i, Shape: d.Sites[i].Cell}
	}
	return patches, nil
}

// OptimizeJunctions merges short edges of scan's own patches (spec.md
// §4.4: inner patches, plus the citadel if present) in place. For each
// patch in scan, consecutive vertex pairs (v0,v1) shorter than minLen are
// merged by writing their midpoint into v0 and replacing every other
// patch's reference to v1 with v0, then dropping v1 from the current
// patch. Only scan's own edges drive a merge — two vertices that happen
// to sit close together across unrelated patches are never fused, unlike
// a global nearest-neighbor pass over every mesh vertex. Patches left
// with fewer than 3 distinct vertices report ErrDegeneratePatch.
func OptimizeJunctions(all, scan []*Patch, minLen float64) error {
	affected := map[*Patch]bool{}
	for _, p := range scan {
		affected[p] = true
	}
	for _, p := range scan {
		i := 0
		for i < len(p.Shape.Points) {
			n := len(p.Shape.Points)
			if n < 2 {
				break
			}
			v0 := p.Shape.Points[i]
			v1 := p.Shape.Points[(i+1)%n]
			if v0 == v1 || v0.Dist(v1) >= minLen {
				i++
				continue
			}

			mid := geom.Lerp(v0, v1, 0.5)
			v0.X, v0.Y = mid.X, mid.Y

			for _, other := range all {
				for k, v := range other.Shape.Points {
					if v == v1 {
						other.Shape.Points[k] = v0
						affected[other] = true
					}
				}
			}
			p.Shape.Points = append(p.Shape.Points[:(i+1)%n], p.Shape.Points[(i+1)%n+1:]...)
		}
	}

	for p := range affected {
		dedupe(p.Shape)
		if len(p.Shape.Points) < 3 {
			return ErrDegeneratePatch
		}
	}
	return nil
}

// dedupe collapses consecutive identical (by pointer identity) vertices
// left behind when OptimizeJunctions rewrites a shared vertex across
// several patches at once.
func dedupe(poly *geom.Polygon) {
	var out []*geom.Point
	for _, v := range poly.Points {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	poly.Points = out
}

// Neighbors returns every patch that shares at least one vertex with p,
// excluding p itself.
func Neighbors(patches []*Patch, p *Patch) []*Patch {
	pset := map[*geom.Point]bool{}
	for _, v := range p.Shape.Points {
		pset[v] = true
	}
	var out []*Patch
	for _, other := range patches {
		if other == p {
			continue
		}
		for _, v := range other.Shape.Points {
			if pset[v] {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

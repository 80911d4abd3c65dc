package citygen

import (
	"github.com/mossport/citygen/internal/cell"
	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/topology"
	"github.com/mossport/citygen/internal/ward"
)

// Patch is a public read-only view of one cell of the city mesh.
type Patch = mesh.Patch

// Ward aggregates the geometry of every patch assigned a given kind into
// one public record, the way the generator's consumers want to draw or
// inspect a whole district at once rather than patch by patch.
type Ward struct {
	Kind      ward.Kind
	Patches   []*Patch
	Buildings []*geom.Polygon
}

// Model is the generator's aggregate output: the whole patch mesh, the
// derived wall and street network, and the per-ward building geometry,
// all seeded from a single (size, seed) pair.
type Model struct {
	NPatches int
	Seed     int64

	Patches []*Patch
	Inner   []*Patch

	Center *geom.Point
	Border *geom.Polygon

	Plaza   *geom.Polygon
	Citadel *geom.Polygon

	Wall  *cell.Wall
	Gates []*geom.Point

	Topology *topology.Topology

	Streets []Path
	Roads   []Path
	Arteries []Path

	Wards []*Ward

	CityRadius float64
}

// Path is an ordered sequence of mesh vertices forming one street, road,
// or artery segment.
type Path []*geom.Point

// PatchAt returns the patch containing pt, or nil if pt falls outside
// every patch in the model.
func (m *Model) PatchAt(pt *geom.Point) *Patch {
	for _, p := range m.Patches {
		if p.Shape.Contains(pt) {
			return p
		}
	}
	return nil
}

// WardFor returns the Ward record a patch belongs to, or nil.
func (m *Model) WardFor(p *Patch) *Ward {
	for _, w := range m.Wards {
		for _, wp := range w.Patches {
			if wp == p {
				return w
			}
		}
	}
	return nil
}

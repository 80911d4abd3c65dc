// Package ward implements the ward sum type, per-kind rating functions,
// and the rated-assignment algorithm that hands each patch in the city
// the ward kind that best fits its position.
package ward

import (
	"math"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
)

// Kind names a ward variant. Patches carry their assigned Kind as a
// mesh.WardTag (a plain string) so the mesh package need not depend on
// this one; the string values below are exactly those tags.
type Kind string

const (
	Craftsmen      Kind = "craftsmen"
	Merchant       Kind = "merchant"
	Slum           Kind = "slum"
	Market         Kind = "market"
	Cathedral      Kind = "cathedral"
	Administration Kind = "administration"
	Military       Kind = "military"
	Patriciate     Kind = "patriciate"
	Park           Kind = "park"
	Farm           Kind = "farm"
	GateWard       Kind = "gate_ward"
	Common         Kind = "common"
	Castle         Kind = "castle"
)

// Context carries the positional information a Rate function needs: the
// patch's distance to the plaza (or city center), its relationship to
// the citadel and wall, and its mesh neighbors (so a rating function can
// penalize, e.g., a slum next to a patriciate ward).
type Context struct {
	Patch             *mesh.Patch
	Center            *geom.Point
	WithinWalls       bool
	Neighbors         []*mesh.Patch
	Plaza             *geom.Polygon
	AdjacentToPlaza   bool
	HasCitadel        bool
	AdjacentToCitadel bool
	HasWall           bool
	AdjacentToWall    bool
}

// distanceToPlazaOrCenter is the distance every positional Rate formula
// in spec.md §4.7 measures from: the plaza's center when a plaza exists,
// the city center otherwise.
func (c Context) distanceToPlazaOrCenter() float64 {
	if c.Plaza != nil {
		return c.Patch.Shape.Center().Dist(c.Plaza.Center())
	}
	return c.Patch.Shape.Center().Dist(c.Center)
}

func (c Context) neighborKinds() map[mesh.WardTag]int {
	counts := map[mesh.WardTag]int{}
	for _, n := range c.Neighbors {
		counts[n.Ward]++
	}
	return counts
}

// Ward is the sum type over ward kinds; BuildGeometry is delegated to
// the building package at the generation stage.
type Ward interface {
	Kind() Kind
}

// LocationRater is implemented by the ward kinds spec.md §4.7 gives a
// rating formula: Rate scores a candidate patch (lower is better; +Inf
// forbids the assignment). Craftsmen and Park carry no formula and so do
// not implement this — Assign falls back to a random unassigned patch
// for them, per spec.md §4.7 step 4 and §9's note that both are optional
// "filler" wards.
type LocationRater interface {
	Ward
	Rate(ctx Context) float64
}

func forbid() float64 { return math.Inf(1) }

type craftsmen struct{}

func (craftsmen) Kind() Kind { return Craftsmen }

type merchant struct{}

func (merchant) Kind() Kind { return Merchant }
func (merchant) Rate(ctx Context) float64 {
	return ctx.distanceToPlazaOrCenter()
}

type slum struct{}

func (slum) Kind() Kind { return Slum }
func (slum) Rate(ctx Context) float64 {
	return -ctx.distanceToPlazaOrCenter()
}

type market struct{}

func (market) Kind() Kind { return Market }
func (market) Rate(ctx Context) float64 {
	if ctx.neighborKinds()[mesh.WardTag(Market)] > 0 {
		return forbid()
	}
	if ctx.Plaza != nil {
		return ctx.Patch.Shape.Area() / ctx.Plaza.Area()
	}
	return ctx.distanceToPlazaOrCenter()
}

type cathedral struct{}

func (cathedral) Kind() Kind { return Cathedral }
func (cathedral) Rate(ctx Context) float64 {
	area := ctx.Patch.Shape.Area()
	if ctx.AdjacentToPlaza {
		return -1 / area
	}
	return ctx.distanceToPlazaOrCenter() * area
}

type administration struct{}

func (administration) Kind() Kind { return Administration }
func (administration) Rate(ctx Context) float64 {
	if ctx.AdjacentToPlaza {
		return 0
	}
	return ctx.distanceToPlazaOrCenter()
}

type military struct{}

func (military) Kind() Kind { return Military }
func (military) Rate(ctx Context) float64 {
	if ctx.AdjacentToCitadel {
		return 0
	}
	if ctx.AdjacentToWall {
		return 1
	}
	if ctx.HasCitadel || ctx.HasWall {
		return forbid()
	}
	return 0
}

type patriciate struct{}

func (patriciate) Kind() Kind { return Patriciate }
func (patriciate) Rate(ctx Context) float64 {
	score := 0.0
	for _, n := range ctx.Neighbors {
		switch Kind(n.Ward) {
		case Slum:
			score++
		case Park:
			score--
		}
	}
	return score
}

type park struct{}

func (park) Kind() Kind { return Park }

type farm struct{}

func (farm) Kind() Kind { return Farm }
func (farm) Rate(ctx Context) float64 {
	if ctx.WithinWalls {
		return forbid()
	}
	return -ctx.distanceToPlazaOrCenter()
}

type gateWard struct{}

func (gateWard) Kind() Kind { return GateWard }

type common struct{}

func (common) Kind() Kind { return Common }

type castle struct{}

func (castle) Kind() Kind { return Castle }

// All returns every ward variant this module implements.
func All() []Ward {
	return []Ward{
		craftsmen{}, merchant{}, slum{}, market{}, cathedral{},
		administration{}, military{}, patriciate{}, park{}, farm{},
		gateWard{}, common{}, castle{},
	}
}

// ByKind returns the Ward implementation for a kind, or nil.
func ByKind(k Kind) Ward {
	for _, w := range All() {
		if w.Kind() == k {
			return w
		}
	}
	return nil
}

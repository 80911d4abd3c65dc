// Package topology builds the street-planning graph over the patch
// mesh's shared vertices and plans routes across it with uniform-cost
// search (Dijkstra, since the spec's A* carries no heuristic term, the
// two coincide).
package topology

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"

	"github.com/mossport/citygen/internal/geom"
	"github.com/mossport/citygen/internal/mesh"
)

// ErrUnableToBuildStreet is returned when no path exists between two
// points once blocked vertices have been excluded.
var ErrUnableToBuildStreet = errors.New("topology: unable to route a street between the requested points")

// Topology is the routable graph of mesh vertices: every patch edge
// becomes a weighted graph edge, and wall vertices other than gates are
// marked blocked so routes are forced through a gate.
type Topology struct {
	graph    *core.Graph
	ptToNode map[*geom.Point]string
	nodeToPt map[string]*geom.Point
	Inner    map[*geom.Point]bool
	Outer    map[*geom.Point]bool
	blocked  map[*geom.Point]bool
}

// Build constructs a Topology from a patch mesh. Vertices lying on
// citadelVertices or wallVertices, other than gates, are blocked: a
// vertex is a node in the routing graph either way, but ShortestPath
// never routes through a blocked one except as an endpoint. Every
// non-blocked vertex then joins Inner, if any patch owning it has
// WithinCity set, or Outer otherwise; a vertex shared between a
// within-city patch and a non-within-city one counts as Inner (spec.md
// §4.6).
func Build(patches []*mesh.Patch, citadelVertices, wallVertices []*geom.Point, gates []*geom.Point) *Topology {
	g := core.NewGraph(core.WithWeighted())
	t := &Topology{
		graph:    g,
		ptToNode: map[*geom.Point]string{},
		nodeToPt: map[string]*geom.Point{},
		Inner:    map[*geom.Point]bool{},
		Outer:    map[*geom.Point]bool{},
		blocked:  map[*geom.Point]bool{},
	}

	gateSet := map[*geom.Point]bool{}
	for _, gt := range gates {
		gateSet[gt] = true
	}
	for _, v := range citadelVertices {
		if !gateSet[v] {
			t.blocked[v] = true
		}
	}
	for _, v := range wallVertices {
		if !gateSet[v] {
			t.blocked[v] = true
		}
	}

	nextID := 0
	nodeID := func(p *geom.Point) string {
		if id, ok := t.ptToNode[p]; ok {
			return id
		}
		nextID++
		id := fmt.Sprintf("n%d", nextID)
		t.ptToNode[p] = id
		t.nodeToPt[id] = p
		_ = g.AddVertex(id)
		return id
	}

	for _, p := range patches {
		n := len(p.Shape.Points)
		for i := 0; i < n; i++ {
			a, b := p.Shape.Points[i], p.Shape.Points[(i+1)%n]
			aid, bid := nodeID(a), nodeID(b)
			dist := int64(a.Dist(b)*1000) + 1
			if _, err := g.AddEdge(aid, bid, dist); err != nil {
				continue
			}
		}
	}

	withinCity := map[*geom.Point]bool{}
	for _, p := range patches {
		if !p.WithinCity {
			continue
		}
		for _, v := range p.Shape.Points {
			withinCity[v] = true
		}
	}
	for v := range t.ptToNode {
		if t.blocked[v] {
			continue
		}
		if withinCity[v] {
			t.Inner[v] = true
		} else {
			t.Outer[v] = true
		}
	}

	return t
}

// NodeFor returns the graph node ID for a mesh vertex, if it is part of
// the topology.
func (t *Topology) NodeFor(p *geom.Point) (string, bool) {
	id, ok := t.ptToNode[p]
	return id, ok
}

// ShortestPath finds a uniform-cost route from `from` to `to`, never
// passing through any point in exclude (in addition to wall vertices that
// are not gates, which are always excluded).
func (t *Topology) ShortestPath(from, to *geom.Point, exclude []*geom.Point) ([]*geom.Point, error) {
	fromID, ok := t.ptToNode[from]
	if !ok {
		return nil, ErrUnableToBuildStreet
	}
	toID, ok := t.ptToNode[to]
	if !ok {
		return nil, ErrUnableToBuildStreet
	}

	excludeSet := map[*geom.Point]bool{}
	for _, e := range exclude {
		excludeSet[e] = true
	}

	keep := map[string]bool{}
	for p, id := range t.ptToNode {
		if t.blocked[p] && p != from && p != to {
			continue
		}
		if excludeSet[p] && p != from && p != to {
			continue
		}
		keep[id] = true
	}
	sub := core.InducedSubgraph(t.graph, keep)

	dist, prev, err := dijkstra.Dijkstra(sub, dijkstra.Source(fromID), dijkstra.WithReturnPath())
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	if _, ok := dist[toID]; !ok {
		return nil, ErrUnableToBuildStreet
	}
	if dist[toID] == math.MaxInt64 {
		return nil, ErrUnableToBuildStreet
	}

	var path []string
	cur := toID
	for cur != "" {
		path = append([]string{cur}, path...)
		if cur == fromID {
			break
		}
		cur = prev[cur]
	}
	if len(path) == 0 || path[0] != fromID {
		return nil, ErrUnableToBuildStreet
	}

	out := make([]*geom.Point, len(path))
	for i, id := range path {
		out[i] = t.nodeToPt[id]
	}
	return out, nil
}

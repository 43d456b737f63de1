package navigation

import (
	"math"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
	"github.com/lixenwraith/dungeon-nav/parameter"
)

// Portal is a crossing between two adjacent clusters, placed at the
// midpoint of a contiguous walkable run along the shared border
type Portal struct {
	A, B core.Point // border cells, A in the lower cluster
}

// ClusterGraph partitions the grid into square clusters and records
// portals along their borders. Long routes are first solved over the
// portal graph, then refined cluster by cluster with grid searches.
// Rebuilt lazily on topology version mismatch
type ClusterGraph struct {
	oracle grid.Oracle
	size   int
	width  int
	height int
	cw, ch int

	portals []Portal
	// adj lists portal indices touching each cluster
	adj     [][]int32
	version uint64
	valid   bool
}

// NewClusterGraph creates a graph with parameter.NavClusterSize cells
// per cluster edge
func NewClusterGraph(o grid.Oracle) *ClusterGraph {
	w, h := o.Size()
	size := parameter.NavClusterSize
	return &ClusterGraph{
		oracle: o,
		size:   size,
		width:  w,
		height: h,
		cw:     (w + size - 1) / size,
		ch:     (h + size - 1) / size,
	}
}

func (g *ClusterGraph) clusterOf(p core.Point) int32 {
	return int32((p.Y/g.size)*g.cw + p.X/g.size)
}

func (g *ClusterGraph) ensure() {
	if g.valid && g.version == g.oracle.Version() {
		return
	}
	g.rebuild()
}

// rebuild scans every internal cluster border for walkable runs.
// One portal per run, at its midpoint
func (g *ClusterGraph) rebuild() {
	g.portals = g.portals[:0]
	g.adj = make([][]int32, g.cw*g.ch)

	// vertical borders between horizontally adjacent clusters
	for cx := 1; cx < g.cw; cx++ {
		x := cx * g.size
		if x >= g.width {
			continue
		}
		runStart := -1
		for y := 0; y <= g.height; y++ {
			open := y < g.height && g.oracle.Walkable(x-1, y) && g.oracle.Walkable(x, y)
			// runs split at cluster corners so every cluster pair
			// along the border gets its own portal
			if runStart >= 0 && (!open || y%g.size == 0) {
				mid := runStart + (y-runStart)/2
				g.addPortal(core.Point{X: x - 1, Y: mid}, core.Point{X: x, Y: mid})
				runStart = -1
			}
			if open && runStart < 0 {
				runStart = y
			}
		}
	}

	// horizontal borders between vertically adjacent clusters
	for cy := 1; cy < g.ch; cy++ {
		y := cy * g.size
		if y >= g.height {
			continue
		}
		runStart := -1
		for x := 0; x <= g.width; x++ {
			open := x < g.width && g.oracle.Walkable(x, y-1) && g.oracle.Walkable(x, y)
			if runStart >= 0 && (!open || x%g.size == 0) {
				mid := runStart + (x-runStart)/2
				g.addPortal(core.Point{X: mid, Y: y - 1}, core.Point{X: mid, Y: y})
				runStart = -1
			}
			if open && runStart < 0 {
				runStart = x
			}
		}
	}

	g.version = g.oracle.Version()
	g.valid = true
}

func (g *ClusterGraph) addPortal(a, b core.Point) {
	idx := int32(len(g.portals))
	g.portals = append(g.portals, Portal{A: a, B: b})
	ca, cb := g.clusterOf(a), g.clusterOf(b)
	g.adj[ca] = append(g.adj[ca], idx)
	g.adj[cb] = append(g.adj[cb], idx)
}

// Portals returns the current portal set, rebuilding if stale
func (g *ClusterGraph) Portals() []Portal {
	g.ensure()
	return g.portals
}

// CoarseRoute returns waypoint cells from start to goal through the
// portal graph: start, a border cell pair per crossing, goal. Returns
// nil when the portal graph offers no route. The route is a guide for
// segment refinement, not a walkable path by itself
func (g *ClusterGraph) CoarseRoute(start, goal core.Point) []core.Point {
	g.ensure()
	cs, cg := g.clusterOf(start), g.clusterOf(goal)
	if cs == cg {
		return []core.Point{start, goal}
	}

	// Dijkstra over portals with straight-line weights between
	// crossing midpoints
	n := len(g.portals)
	dist := make([]float64, n)
	prev := make([]int32, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}

	var open nodeHeap
	for _, pi := range g.adj[cs] {
		d := pointDist(start, g.portals[pi].A)
		if d < dist[pi] {
			dist[pi] = d
			open.push(heapNode{idx: pi, f: d, g: d})
		}
	}

	bestEnd := int32(-1)
	bestCost := math.Inf(1)
	for len(open) > 0 {
		node := open.pop()
		if settled[node.idx] {
			continue
		}
		settled[node.idx] = true
		p := g.portals[node.idx]

		ca, cb := g.clusterOf(p.A), g.clusterOf(p.B)
		if ca == cg || cb == cg {
			if total := node.g + pointDist(p.B, goal); total < bestCost {
				bestCost = total
				bestEnd = node.idx
			}
			continue
		}
		for _, cluster := range [2]int32{ca, cb} {
			for _, ni := range g.adj[cluster] {
				if settled[ni] {
					continue
				}
				d := node.g + pointDist(p.B, g.portals[ni].A)
				if d < dist[ni] {
					dist[ni] = d
					prev[ni] = node.idx
					open.push(heapNode{idx: ni, f: d, g: d})
				}
			}
		}
	}
	if bestEnd < 0 {
		return nil
	}

	n = 0
	for i := bestEnd; i >= 0; i = prev[i] {
		n++
	}
	route := make([]core.Point, 1, 2*n+2)
	route[0] = start
	crossings := make([]int32, n)
	for i := bestEnd; i >= 0; i = prev[i] {
		n--
		crossings[n] = i
	}
	for _, pi := range crossings {
		route = append(route, g.portals[pi].A, g.portals[pi].B)
	}
	return append(route, goal)
}

func pointDist(a, b core.Point) float64 {
	dx, dy := float64(a.X-b.X), float64(a.Y-b.Y)
	return math.Hypot(dx, dy)
}

package navigation

import (
	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

// RegionMap labels connected components of walkable cells so that
// reachability queries answer in constant time. Labels are recomputed
// lazily, a topology version mismatch invalidates the whole map
type RegionMap struct {
	oracle  grid.Oracle
	conn    Connectivity
	labels  []int32
	width   int
	height  int
	count   int32
	version uint64
	valid   bool

	queue []int32 // reused flood fill frontier
}

// NewRegionMap creates a region map over the oracle.
// The connectivity must match the one searches use, otherwise a
// diagonal-only connection would disagree with the pathfinder
func NewRegionMap(o grid.Oracle, conn Connectivity) *RegionMap {
	w, h := o.Size()
	return &RegionMap{
		oracle: o,
		conn:   conn,
		labels: make([]int32, w*h),
		width:  w,
		height: h,
	}
}

// ensure recomputes labels when the topology has changed
func (r *RegionMap) ensure() {
	if r.valid && r.version == r.oracle.Version() {
		return
	}
	r.recompute()
}

// recompute relabels the whole grid with iterative flood fills
func (r *RegionMap) recompute() {
	for i := range r.labels {
		r.labels[i] = -1
	}
	r.count = 0

	for start := range r.labels {
		if r.labels[start] >= 0 {
			continue
		}
		x, y := start%r.width, start/r.width
		if !r.oracle.Walkable(x, y) {
			continue
		}
		label := r.count
		r.count++

		r.queue = r.queue[:0]
		r.queue = append(r.queue, int32(start))
		r.labels[start] = label
		for len(r.queue) > 0 {
			idx := r.queue[len(r.queue)-1]
			r.queue = r.queue[:len(r.queue)-1]
			cx, cy := int(idx)%r.width, int(idx)/r.width

			for _, d := range r.conn.dirs() {
				nx, ny := cx+DirVectors[d][0], cy+DirVectors[d][1]
				if nx < 0 || nx >= r.width || ny < 0 || ny >= r.height {
					continue
				}
				nidx := int32(ny*r.width + nx)
				if r.labels[nidx] >= 0 || !r.oracle.Walkable(nx, ny) {
					continue
				}
				if d&1 == 1 && cutsCorner(r.oracle, cx, cy, d) {
					continue
				}
				r.labels[nidx] = label
				r.queue = append(r.queue, nidx)
			}
		}
	}

	r.version = r.oracle.Version()
	r.valid = true
}

// Label returns the region id of a cell, -1 for non-walkable or
// out-of-bounds cells
func (r *RegionMap) Label(x, y int) int32 {
	r.ensure()
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return -1
	}
	return r.labels[y*r.width+x]
}

// Reachable reports whether two cells share a region.
// Either endpoint being non-walkable makes the answer false
func (r *RegionMap) Reachable(a, b core.Point) bool {
	la := r.Label(a.X, a.Y)
	if la < 0 {
		return false
	}
	return la == r.Label(b.X, b.Y)
}

// Count returns the number of distinct regions
func (r *RegionMap) Count() int {
	r.ensure()
	return int(r.count)
}

// cutsCorner reports whether a diagonal step from (x, y) in direction
// d squeezes past a blocked orthogonal cell. Either flanking cardinal
// being blocked disallows the step
func cutsCorner(o grid.Oracle, x, y, d int) bool {
	dx, dy := DirVectors[d][0], DirVectors[d][1]
	return !o.Walkable(x+dx, y) || !o.Walkable(x, y+dy)
}

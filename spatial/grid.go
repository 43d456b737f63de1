// Package spatial maintains a cell-bucketed index of agent positions
// for constant-time occupancy queries during movement updates.
package spatial

import (
	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/parameter"
)

// cell holds agent IDs at one grid position.
// Sized to fill two cache lines: 15*8 + 4 + 4 = 128 bytes
type cell struct {
	agents [parameter.SpatialMaxAgentsPerCell]uint64
	count  int32
	_      int32
}

// Grid is a dense spatial index over the world grid.
// Not safe for concurrent mutation, callers serialize on the frame loop
type Grid struct {
	cells  []cell
	width  int
	height int
}

// NewGrid creates an index covering width x height cells
func NewGrid(width, height int) *Grid {
	return &Grid{
		cells:  make([]cell, width*height),
		width:  width,
		height: height,
	}
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Insert registers an agent at a cell.
// Returns false if out of bounds or the cell is at capacity, the
// caller treats a full cell as a soft obstruction
func (g *Grid) Insert(id uint64, x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	c := &g.cells[y*g.width+x]
	if c.count >= parameter.SpatialMaxAgentsPerCell {
		return false
	}
	c.agents[c.count] = id
	c.count++
	return true
}

// Remove unregisters an agent from a cell, swap-removing to keep the
// bucket dense. Missing entries are ignored
func (g *Grid) Remove(id uint64, x, y int) {
	if !g.inBounds(x, y) {
		return
	}
	c := &g.cells[y*g.width+x]
	for i := int32(0); i < c.count; i++ {
		if c.agents[i] == id {
			c.count--
			c.agents[i] = c.agents[c.count]
			return
		}
	}
}

// Move relocates an agent between cells.
// Returns false and leaves the agent at the old cell when the
// destination rejects the insert
func (g *Grid) Move(id uint64, fromX, fromY, toX, toY int) bool {
	if fromX == toX && fromY == toY {
		return true
	}
	if !g.inBounds(toX, toY) {
		return false
	}
	dst := &g.cells[toY*g.width+toX]
	if dst.count >= parameter.SpatialMaxAgentsPerCell {
		return false
	}
	g.Remove(id, fromX, fromY)
	dst.agents[dst.count] = id
	dst.count++
	return true
}

// At returns a view of agent IDs at the cell.
// The slice aliases internal storage and is invalidated by mutation
func (g *Grid) At(x, y int) []uint64 {
	if !g.inBounds(x, y) {
		return nil
	}
	c := &g.cells[y*g.width+x]
	return c.agents[:c.count]
}

// CountAt returns the occupancy of a cell
func (g *Grid) CountAt(x, y int) int {
	if !g.inBounds(x, y) {
		return 0
	}
	return int(g.cells[y*g.width+x].count)
}

// Full reports whether a cell is at capacity
func (g *Grid) Full(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	return g.cells[y*g.width+x].count >= parameter.SpatialMaxAgentsPerCell
}

// QueryArea appends all agent IDs inside the area to buf and returns it.
// The area is clamped to grid bounds
func (g *Grid) QueryArea(a core.Area, buf []uint64) []uint64 {
	x0, y0 := a.X, a.Y
	x1, y1 := a.X+a.Width, a.Y+a.Height
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > g.width {
		x1 = g.width
	}
	if y1 > g.height {
		y1 = g.height
	}
	for y := y0; y < y1; y++ {
		row := y * g.width
		for x := x0; x < x1; x++ {
			c := &g.cells[row+x]
			buf = append(buf, c.agents[:c.count]...)
		}
	}
	return buf
}

// Clear empties every cell without releasing storage
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i].count = 0
	}
}

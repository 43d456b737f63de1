// Package navigation implements grid pathfinding for the dungeon:
// reachability regions, budgeted A*, corridor extraction, a cluster
// graph for long routes, and a version-checked path cache, tied
// together by the Planner.
package navigation

import "math"

// Connectivity selects the neighbor model for searches
type Connectivity uint8

const (
	// Conn4 uses cardinal neighbors only
	Conn4 Connectivity = iota
	// Conn8 adds diagonals, with corner cutting disallowed
	Conn8
)

// Direction indices, clockwise from north
const (
	DirN = iota
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
	DirCount
)

// DirVectors maps direction index to cell offset
var DirVectors = [DirCount][2]int{
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
}

// dirScale is the distance multiplier per direction
var dirScale = [DirCount]float64{
	1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2,
}

// dirs returns the neighbor direction set for the model.
// Cardinal directions occupy the even indices
func (c Connectivity) dirs() []int {
	if c == Conn4 {
		return cardinalDirs
	}
	return allDirs
}

var (
	cardinalDirs = []int{DirN, DirE, DirS, DirW}
	allDirs      = []int{DirN, DirNE, DirE, DirSE, DirS, DirSW, DirW, DirNW}
)

// heuristic returns an admissible distance estimate for the model:
// Manhattan for 4-connected, octile for 8-connected
func (c Connectivity) heuristic(x0, y0, x1, y1 int) float64 {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	if c == Conn4 {
		return float64(dx + dy)
	}
	lo, hi := dx, dy
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(hi) + (math.Sqrt2-1)*float64(lo)
}

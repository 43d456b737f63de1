package navigation

import (
	"math"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

// traverseLine visits every cell a segment between two world points
// passes through, in order. Returns false if visit aborted
func traverseLine(from, to core.Vec2, visit func(x, y int) bool) bool {
	x, y := int(math.Floor(from.X)), int(math.Floor(from.Y))
	endX, endY := int(math.Floor(to.X)), int(math.Floor(to.Y))
	dx, dy := to.X-from.X, to.Y-from.Y

	stepX, stepY := 0, 0
	tMaxX, tMaxY := math.Inf(1), math.Inf(1)
	tDeltaX, tDeltaY := math.Inf(1), math.Inf(1)
	if dx > 0 {
		stepX = 1
		tMaxX = (float64(x+1) - from.X) / dx
		tDeltaX = 1 / dx
	} else if dx < 0 {
		stepX = -1
		tMaxX = (from.X - float64(x)) / -dx
		tDeltaX = 1 / -dx
	}
	if dy > 0 {
		stepY = 1
		tMaxY = (float64(y+1) - from.Y) / dy
		tDeltaY = 1 / dy
	} else if dy < 0 {
		stepY = -1
		tMaxY = (from.Y - float64(y)) / -dy
		tDeltaY = 1 / -dy
	}

	// step bound guards against float drift at the segment end
	steps := abs(endX-x) + abs(endY-y)
	for {
		if !visit(x, y) {
			return false
		}
		if x == endX && y == endY {
			return true
		}
		if steps--; steps < 0 {
			return true
		}
		switch {
		case tMaxX < tMaxY:
			x += stepX
			tMaxX += tDeltaX
		case tMaxY < tMaxX:
			y += stepY
			tMaxY += tDeltaY
		default:
			// exact corner crossing, advance both axes
			x += stepX
			y += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
			steps--
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// LineWalkable reports whether the straight segment between two world
// points crosses only walkable cells. A segment that threads exactly
// through a corner additionally requires both flanking cells open
func LineWalkable(o grid.Oracle, from, to core.Vec2) bool {
	prevX, prevY := int(math.Floor(from.X)), int(math.Floor(from.Y))
	return traverseLine(from, to, func(x, y int) bool {
		if !o.Walkable(x, y) {
			return false
		}
		if x != prevX && y != prevY {
			// diagonal corner hop, both flanks must be open
			if !o.Walkable(x, prevY) || !o.Walkable(prevX, y) {
				return false
			}
		}
		prevX, prevY = x, y
		return true
	})
}

// StringPull collapses a cell path into the minimal waypoint chain
// with clear line of sight between consecutive waypoints. The first
// and last waypoints are the centers of the first and last cells
func StringPull(o grid.Oracle, cells []core.Point) []core.Vec2 {
	if len(cells) == 0 {
		return nil
	}
	pts := make([]core.Vec2, len(cells))
	for i, c := range cells {
		pts[i] = c.Center()
	}
	if len(pts) == 1 {
		return pts[:1]
	}

	out := make([]core.Vec2, 0, 4)
	out = append(out, pts[0])
	anchor := 0
	for anchor < len(pts)-1 {
		// farthest point still visible from the anchor
		next := anchor + 1
		for j := len(pts) - 1; j > next; j-- {
			if LineWalkable(o, pts[anchor], pts[j]) {
				next = j
				break
			}
		}
		out = append(out, pts[next])
		anchor = next
	}
	return out
}

package core

import "math"

// Point is an integer grid cell coordinate
type Point struct {
	X, Y int
}

// Center returns the continuous world position of the cell center
// World units equal tiles: cell (x, y) spans [x, x+1) × [y, y+1)
func (p Point) Center() Vec2 {
	return Vec2{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5}
}

// Manhattan returns the L1 distance to q
func (p Point) Manhattan(q Point) int {
	dx := p.X - q.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - q.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Vec2 is a continuous position in world units
type Vec2 struct {
	X, Y float64
}

// CellOf returns the grid cell containing the world position
func CellOf(v Vec2) Point {
	return Point{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Len returns the Euclidean magnitude
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance to o
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Scaled returns v scaled by s
func (v Vec2) Scaled(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Normalized returns the unit vector, or zero if v is zero
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

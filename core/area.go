package core

// Area is an axis-aligned rectangular block of cells
type Area struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the cell lies inside the area
func (a Area) Contains(p Point) bool {
	return p.X >= a.X && p.X < a.X+a.Width &&
		p.Y >= a.Y && p.Y < a.Y+a.Height
}

// Overlaps reports whether the two areas share at least one cell
func (a Area) Overlaps(b Area) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// Center returns the cell nearest the middle of the area
func (a Area) Center() Point {
	return Point{X: a.X + a.Width/2, Y: a.Y + a.Height/2}
}

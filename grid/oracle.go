package grid

// Oracle is the navigation core's read-only view of world topology.
// Implementations must report a Version that changes whenever any
// answer Walkable or Cost would give has changed, so that consumers
// can invalidate derived structures.
type Oracle interface {
	// Size returns the grid dimensions in cells
	Size() (w, h int)

	// InBounds reports whether the cell lies inside the grid
	InBounds(x, y int) bool

	// Walkable reports whether an agent may occupy the cell.
	// Out-of-bounds cells are never walkable
	Walkable(x, y int) bool

	// Cost returns the traversal cost multiplier for entering the
	// cell, always positive for walkable cells
	Cost(x, y int) float64

	// Version is a monotonic counter bumped on topology change
	Version() uint64
}

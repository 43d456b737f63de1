package navigation

import "errors"

var (
	// ErrInvalidCell reports a search endpoint outside the grid or on
	// a non-walkable tile
	ErrInvalidCell = errors.New("navigation: invalid cell")

	// ErrNoPathFound reports that no route exists between the
	// endpoints, or that the request was abandoned after exhausting
	// its frame budget
	ErrNoPathFound = errors.New("navigation: no path found")
)

package navigation

import (
	"math"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

// PathResult is the outcome of a grid search
type PathResult struct {
	// Cells is the start-to-end cell sequence, consecutive cells are
	// grid neighbors. For a partial result the last cell is the best
	// frontier candidate, not the goal
	Cells []core.Point

	// Cost is the summed traversal cost of the returned cells
	Cost float64

	// Partial marks a budget-exhausted result that stops short of the
	// goal. The owning Search can be resumed to extend it
	Partial bool

	// Expanded counts node expansions consumed so far
	Expanded int
}

// Search is a resumable A* over the oracle grid.
// State survives across Run calls so a search can be sliced over
// frames, each call consuming a bounded expansion budget
type Search struct {
	oracle grid.Oracle
	conn   Connectivity
	start  core.Point
	goal   core.Point
	width  int
	height int

	open     nodeHeap
	gScore   []float64
	cameFrom []int32
	closed   []bool

	// best frontier candidate for partial paths, nearest the goal
	// by heuristic with cheaper g breaking ties
	bestIdx int32
	bestH   float64
	bestG   float64

	expanded int
	done     bool
	result   PathResult
	failed   bool
}

// NewSearch validates the endpoints and prepares a search.
// Both endpoints must be in bounds and walkable
func NewSearch(o grid.Oracle, conn Connectivity, start, goal core.Point) (*Search, error) {
	w, h := o.Size()
	if !o.InBounds(start.X, start.Y) || !o.InBounds(goal.X, goal.Y) {
		return nil, ErrInvalidCell
	}
	if !o.Walkable(start.X, start.Y) || !o.Walkable(goal.X, goal.Y) {
		return nil, ErrInvalidCell
	}

	s := &Search{
		oracle:   o,
		conn:     conn,
		start:    start,
		goal:     goal,
		width:    w,
		height:   h,
		gScore:   make([]float64, w*h),
		cameFrom: make([]int32, w*h),
		closed:   make([]bool, w*h),
	}
	for i := range s.gScore {
		s.gScore[i] = math.Inf(1)
		s.cameFrom[i] = -1
	}

	startIdx := int32(start.Y*w + start.X)
	s.gScore[startIdx] = 0
	h0 := conn.heuristic(start.X, start.Y, goal.X, goal.Y)
	s.open.push(heapNode{idx: startIdx, f: h0, g: 0})
	s.bestIdx = startIdx
	s.bestH = h0
	return s, nil
}

// Run expands up to budget nodes and returns the current result.
// A complete path sets Partial false and ends the search. An empty
// frontier returns ErrNoPathFound. Budget exhaustion returns the best
// partial path, call Run again to continue
func (s *Search) Run(budget int) (PathResult, error) {
	if s.done {
		if s.failed {
			return PathResult{Expanded: s.expanded}, ErrNoPathFound
		}
		return s.result, nil
	}

	goalIdx := int32(s.goal.Y*s.width + s.goal.X)
	for spent := 0; spent < budget; {
		if len(s.open) == 0 {
			s.done = true
			s.failed = true
			return PathResult{Expanded: s.expanded}, ErrNoPathFound
		}
		node := s.open.pop()
		if s.closed[node.idx] {
			continue // stale duplicate entry
		}
		s.closed[node.idx] = true
		s.expanded++
		spent++

		if node.idx == goalIdx {
			s.done = true
			s.result = PathResult{
				Cells:    s.reconstruct(goalIdx),
				Cost:     node.g,
				Expanded: s.expanded,
			}
			return s.result, nil
		}

		x, y := int(node.idx)%s.width, int(node.idx)/s.width
		for _, d := range s.conn.dirs() {
			nx, ny := x+DirVectors[d][0], y+DirVectors[d][1]
			if nx < 0 || nx >= s.width || ny < 0 || ny >= s.height {
				continue
			}
			if !s.oracle.Walkable(nx, ny) {
				continue
			}
			if d&1 == 1 && cutsCorner(s.oracle, x, y, d) {
				continue
			}
			nidx := int32(ny*s.width + nx)
			if s.closed[nidx] {
				continue
			}
			g := node.g + s.oracle.Cost(nx, ny)*dirScale[d]
			if g >= s.gScore[nidx] {
				continue
			}
			s.gScore[nidx] = g
			s.cameFrom[nidx] = node.idx
			hn := s.conn.heuristic(nx, ny, s.goal.X, s.goal.Y)
			s.open.push(heapNode{idx: nidx, f: g + hn, g: g})

			if hn < s.bestH || (hn == s.bestH && g < s.bestG) {
				s.bestH = hn
				s.bestG = g
				s.bestIdx = nidx
			}
		}
	}

	return PathResult{
		Cells:    s.reconstruct(s.bestIdx),
		Cost:     s.bestG,
		Partial:  true,
		Expanded: s.expanded,
	}, nil
}

// reconstruct walks the parent chain back to the start
func (s *Search) reconstruct(idx int32) []core.Point {
	n := 0
	for i := idx; i >= 0; i = s.cameFrom[i] {
		n++
	}
	cells := make([]core.Point, n)
	for i := idx; i >= 0; i = s.cameFrom[i] {
		n--
		cells[n] = core.Point{X: int(i) % s.width, Y: int(i) / s.width}
	}
	return cells
}

// FindPath runs a one-shot search to completion within budget.
// Budget exhaustion yields the partial result with a nil error
func FindPath(o grid.Oracle, conn Connectivity, start, goal core.Point, budget int) (PathResult, error) {
	s, err := NewSearch(o, conn, start, goal)
	if err != nil {
		return PathResult{}, err
	}
	return s.Run(budget)
}

package navigation

import (
	"math"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

// half is one front of a bidirectional search
type half struct {
	open   nodeHeap
	g      []float64
	came   []int32
	closed []bool
}

func newHalf(size int, seed int32) *half {
	h := &half{
		g:      make([]float64, size),
		came:   make([]int32, size),
		closed: make([]bool, size),
	}
	for i := range h.g {
		h.g[i] = math.Inf(1)
		h.came[i] = -1
	}
	h.g[seed] = 0
	h.open.push(heapNode{idx: seed})
	return h
}

// minKey returns the cheapest unsettled cost on the frontier
func (h *half) minKey() float64 {
	for len(h.open) > 0 && h.closed[h.open[0].idx] {
		h.open.pop()
	}
	if len(h.open) == 0 {
		return math.Inf(1)
	}
	return h.open[0].g
}

// BidirSearch grows Dijkstra fronts from both endpoints and stitches
// the route at the cheapest meeting cell. Used for long routes where
// a single A* front would expand most of the map. Resumable the same
// way Search is
type BidirSearch struct {
	oracle grid.Oracle
	conn   Connectivity
	start  core.Point
	goal   core.Point
	width  int
	height int

	fwd *half
	bwd *half

	meetIdx  int32
	bestMeet float64

	expanded int
	done     bool
	failed   bool
	result   PathResult
}

// NewBidirSearch validates endpoints and seeds both fronts
func NewBidirSearch(o grid.Oracle, conn Connectivity, start, goal core.Point) (*BidirSearch, error) {
	w, h := o.Size()
	if !o.InBounds(start.X, start.Y) || !o.InBounds(goal.X, goal.Y) {
		return nil, ErrInvalidCell
	}
	if !o.Walkable(start.X, start.Y) || !o.Walkable(goal.X, goal.Y) {
		return nil, ErrInvalidCell
	}
	return &BidirSearch{
		oracle:   o,
		conn:     conn,
		start:    start,
		goal:     goal,
		width:    w,
		height:   h,
		fwd:      newHalf(w*h, int32(start.Y*w+start.X)),
		bwd:      newHalf(w*h, int32(goal.Y*w+goal.X)),
		meetIdx:  -1,
		bestMeet: math.Inf(1),
	}, nil
}

// Run expands up to budget nodes split across both fronts.
// Completion returns the stitched optimal path. Budget exhaustion
// returns a partial result with no cells, long-range callers fall
// back to the hierarchical route rather than follow half a front
func (s *BidirSearch) Run(budget int) (PathResult, error) {
	if s.done {
		if s.failed {
			return PathResult{Expanded: s.expanded}, ErrNoPathFound
		}
		return s.result, nil
	}

	for spent := 0; spent < budget; spent++ {
		fKey, bKey := s.fwd.minKey(), s.bwd.minKey()
		if fKey+bKey >= s.bestMeet {
			if s.meetIdx < 0 {
				s.done = true
				s.failed = true
				return PathResult{Expanded: s.expanded}, ErrNoPathFound
			}
			s.done = true
			s.result = PathResult{
				Cells:    s.stitch(),
				Cost:     s.bestMeet,
				Expanded: s.expanded,
			}
			return s.result, nil
		}

		// expand the cheaper front, forward edges pay the cost of the
		// cell entered, backward edges the cost of the cell left
		if fKey <= bKey {
			s.settle(s.fwd, s.bwd, true)
		} else {
			s.settle(s.bwd, s.fwd, false)
		}
	}

	return PathResult{Partial: true, Expanded: s.expanded}, nil
}

func (s *BidirSearch) settle(own, other *half, forward bool) {
	node := own.open.pop()
	if own.closed[node.idx] {
		return
	}
	own.closed[node.idx] = true
	s.expanded++

	if !math.IsInf(other.g[node.idx], 1) {
		if total := node.g + other.g[node.idx]; total < s.bestMeet {
			s.bestMeet = total
			s.meetIdx = node.idx
		}
	}

	x, y := int(node.idx)%s.width, int(node.idx)/s.width
	ownCost := s.oracle.Cost(x, y)
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
		if own.closed[nidx] {
			continue
		}
		w := ownCost
		if forward {
			w = s.oracle.Cost(nx, ny)
		}
		g := node.g + w*dirScale[d]
		if g >= own.g[nidx] {
			continue
		}
		own.g[nidx] = g
		own.came[nidx] = node.idx
		own.open.push(heapNode{idx: nidx, f: g, g: g})
	}
}

// stitch joins the forward chain to the meet cell with the backward
// chain from the meet cell to the goal
func (s *BidirSearch) stitch() []core.Point {
	n := 0
	for i := s.meetIdx; i >= 0; i = s.fwd.came[i] {
		n++
	}
	cells := make([]core.Point, n)
	for i := s.meetIdx; i >= 0; i = s.fwd.came[i] {
		n--
		cells[n] = core.Point{X: int(i) % s.width, Y: int(i) / s.width}
	}
	for i := s.bwd.came[s.meetIdx]; i >= 0; i = s.bwd.came[i] {
		cells = append(cells, core.Point{X: int(i) % s.width, Y: int(i) / s.width})
	}
	return cells
}

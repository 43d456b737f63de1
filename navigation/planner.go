package navigation

import (
	"log"
	"sync/atomic"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
	"github.com/lixenwraith/dungeon-nav/parameter"
	"github.com/lixenwraith/dungeon-nav/status"
)

// Strategy selects the search algorithm for a request
type Strategy uint8

const (
	// StrategyAuto lets the planner dispatch on distance
	StrategyAuto Strategy = iota
	// StrategyGrid runs a single budgeted A* front
	StrategyGrid
	// StrategyBidirectional grows fronts from both endpoints
	StrategyBidirectional
	// StrategyHierarchical routes through the cluster portal graph
	// and refines segment by segment
	StrategyHierarchical
)

// ChooseStrategy dispatches on straight-line distance in cells and
// agent class. Short requests stay on the single A* front, long ones
// start bidirectional. Creatures wander locally and never warrant the
// second front, they stay on grid search at any distance. Hierarchical
// is only entered as a fallback when a bidirectional search exhausts
// its frame allowance
func ChooseStrategy(distance float64, class AgentClass) Strategy {
	if class == ClassCreature {
		return StrategyGrid
	}
	if distance < parameter.NavLongRangeDistance {
		return StrategyGrid
	}
	return StrategyBidirectional
}

// Request describes one path computation
type Request struct {
	Start, Goal core.Point
	Class       AgentClass
	// Hint overrides automatic strategy dispatch when not StrategyAuto
	Hint Strategy
}

// Path is a finished corridor ready for an agent to follow
type Path struct {
	// Waypoints are world positions with clear line of sight between
	// consecutive entries, ending at the goal cell center unless the
	// path is partial
	Waypoints []core.Vec2
	Cost      float64
	Partial   bool
}

// Job is an in-flight path computation resumable across frames
type Job struct {
	req      Request
	strategy Strategy
	version  uint64
	frames   int

	search *Search
	bidir  *BidirSearch

	// hierarchical refinement state
	route    []core.Point
	segment  int
	segStart core.Point
	acc      []core.Point
}

// Planner is the facade over regions, searches, the cluster graph and
// the path cache. Not safe for concurrent use, callers serialize on
// the frame loop
type Planner struct {
	oracle   grid.Oracle
	conn     Connectivity
	regions  *RegionMap
	clusters *ClusterGraph
	cache    *PathCache

	statSearches      *atomic.Int64
	statCacheHits     *atomic.Int64
	statCacheMisses   *atomic.Int64
	statUnreachable   *atomic.Int64
	statInconsistency *atomic.Int64
	statExpansions    *atomic.Int64
}

// NewPlanner wires the planner over an oracle.
// Metrics register under the nav_ prefix
func NewPlanner(o grid.Oracle, conn Connectivity, st *status.Registry) *Planner {
	return &Planner{
		oracle:   o,
		conn:     conn,
		regions:  NewRegionMap(o, conn),
		clusters: NewClusterGraph(o),
		cache:    NewPathCache(parameter.NavCacheCapacity),

		statSearches:      st.Ints.Get("nav_searches"),
		statCacheHits:     st.Ints.Get("nav_cache_hits"),
		statCacheMisses:   st.Ints.Get("nav_cache_misses"),
		statUnreachable:   st.Ints.Get("nav_unreachable"),
		statInconsistency: st.Ints.Get("nav_inconsistencies"),
		statExpansions:    st.Ints.Get("nav_expansions"),
	}
}

// Regions exposes the reachability map for overlays and gameplay
// queries
func (p *Planner) Regions() *RegionMap { return p.regions }

// Reachable answers whether a path can exist, without searching
func (p *Planner) Reachable(a, b core.Point) bool {
	return p.regions.Reachable(a, b)
}

// Start validates a request and either answers it from the cache or
// returns a Job to be stepped. Exactly one of path and job is
// non-nil on success
func (p *Planner) Start(req Request) (*Job, *Path, error) {
	o := p.oracle
	if !o.InBounds(req.Start.X, req.Start.Y) || !o.InBounds(req.Goal.X, req.Goal.Y) {
		return nil, nil, ErrInvalidCell
	}
	if !o.Walkable(req.Start.X, req.Start.Y) || !o.Walkable(req.Goal.X, req.Goal.Y) {
		return nil, nil, ErrInvalidCell
	}

	// reachability gate, rejects sealed goals without spending any
	// search budget
	if !p.regions.Reachable(req.Start, req.Goal) {
		p.statUnreachable.Add(1)
		return nil, nil, ErrNoPathFound
	}

	version := o.Version()
	if wp, cost, ok := p.cache.Get(req.Start, req.Goal, req.Class, version); ok {
		p.statCacheHits.Add(1)
		return nil, &Path{Waypoints: wp, Cost: cost}, nil
	}
	p.statCacheMisses.Add(1)
	p.statSearches.Add(1)

	j := &Job{req: req, version: version}
	if err := p.arm(j); err != nil {
		return nil, nil, err
	}
	return j, nil, nil
}

// arm creates the underlying search for the job's strategy
func (p *Planner) arm(j *Job) error {
	strategy := j.req.Hint
	if strategy == StrategyAuto {
		d := j.req.Start.Center().Dist(j.req.Goal.Center())
		strategy = ChooseStrategy(d, j.req.Class)
	}
	j.strategy = strategy

	var err error
	switch strategy {
	case StrategyBidirectional:
		j.bidir, err = NewBidirSearch(p.oracle, p.conn, j.req.Start, j.req.Goal)
	case StrategyHierarchical:
		j.route = p.clusters.CoarseRoute(j.req.Start, j.req.Goal)
		if j.route == nil {
			return p.fail(j.req)
		}
		j.segment = 0
		j.segStart = j.req.Start
		j.acc = j.acc[:0]
	default:
		j.search, err = NewSearch(p.oracle, p.conn, j.req.Start, j.req.Goal)
	}
	return err
}

// Step advances the job by one frame slice.
// Returns a non-nil path when the job completes. A nil path with nil
// error means the job needs another Step
func (p *Planner) Step(j *Job) (*Path, error) {
	// topology changed under the search, derived state is stale
	if v := p.oracle.Version(); v != j.version {
		j.version = v
		if !p.regions.Reachable(j.req.Start, j.req.Goal) {
			p.statUnreachable.Add(1)
			return nil, ErrNoPathFound
		}
		if err := p.arm(j); err != nil {
			return nil, err
		}
	}
	j.frames++

	switch j.strategy {
	case StrategyBidirectional:
		return p.stepBidir(j)
	case StrategyHierarchical:
		return p.stepHierarchical(j)
	default:
		return p.stepGrid(j)
	}
}

func (p *Planner) stepGrid(j *Job) (*Path, error) {
	res, err := j.search.Run(parameter.NavFrameBudget)
	if err != nil {
		return nil, p.fail(j.req)
	}
	if !res.Partial {
		p.statExpansions.Add(int64(res.Expanded))
		return p.finish(j, res.Cells, res.Cost, false), nil
	}
	if j.frames >= parameter.NavRequestFrameLimit {
		// out of frames, hand over the best partial corridor
		p.statExpansions.Add(int64(res.Expanded))
		return p.finish(j, res.Cells, res.Cost, true), nil
	}
	return nil, nil
}

func (p *Planner) stepBidir(j *Job) (*Path, error) {
	res, err := j.bidir.Run(parameter.NavFrameBudget)
	if err != nil {
		return nil, p.fail(j.req)
	}
	if !res.Partial {
		p.statExpansions.Add(int64(res.Expanded))
		return p.finish(j, res.Cells, res.Cost, false), nil
	}
	if j.frames >= parameter.NavRequestFrameLimit/2 {
		// the fronts are not converging in time, fall back to the
		// portal graph
		p.statExpansions.Add(int64(res.Expanded))
		j.strategy = StrategyHierarchical
		j.req.Hint = StrategyHierarchical
		return nil, p.armHierarchical(j)
	}
	return nil, nil
}

func (p *Planner) armHierarchical(j *Job) error {
	j.route = p.clusters.CoarseRoute(j.req.Start, j.req.Goal)
	if j.route == nil {
		return p.fail(j.req)
	}
	j.segment = 0
	j.segStart = j.req.Start
	j.acc = j.acc[:0]
	j.bidir = nil
	return nil
}

// stepHierarchical refines one coarse segment per frame, chaining
// budgeted grid results. A partial segment result restarts the next
// segment from wherever it stopped
func (p *Planner) stepHierarchical(j *Job) (*Path, error) {
	if j.segment >= len(j.route)-1 {
		// degenerate route, finish with what accumulated
		return p.finish(j, j.acc, pathCost(p.oracle, j.acc), false), nil
	}

	target := j.route[j.segment+1]
	res, err := FindPath(p.oracle, p.conn, j.segStart, target, parameter.NavExpandBudget)
	if err != nil {
		return nil, p.fail(j.req)
	}
	p.statExpansions.Add(int64(res.Expanded))

	cells := res.Cells
	if len(j.acc) > 0 && len(cells) > 0 {
		cells = cells[1:] // segment start duplicates the chain end
	}
	j.acc = append(j.acc, cells...)

	if res.Partial {
		// resume toward the same target from the stopping point
		j.segStart = j.acc[len(j.acc)-1]
	} else {
		j.segment++
		j.segStart = target
	}

	if j.segment >= len(j.route)-1 && !res.Partial {
		return p.finish(j, j.acc, pathCost(p.oracle, j.acc), false), nil
	}
	if j.frames >= 2*parameter.NavRequestFrameLimit {
		return p.finish(j, j.acc, pathCost(p.oracle, j.acc), true), nil
	}
	return nil, nil
}

// finish extracts the corridor and caches complete paths
func (p *Planner) finish(j *Job, cells []core.Point, cost float64, partial bool) *Path {
	wp := StringPull(p.oracle, cells)
	if !partial {
		p.cache.Put(j.req.Start, j.req.Goal, j.req.Class, j.version, wp, cost)
	}
	return &Path{Waypoints: wp, Cost: cost, Partial: partial}
}

// fail records a search failure. A failure while the region map still
// claims the endpoints connected means reachability and search
// disagree, which is logged as a consistency violation
func (p *Planner) fail(req Request) error {
	if p.regions.Reachable(req.Start, req.Goal) {
		p.statInconsistency.Add(1)
		log.Printf("navigation: reachability claims %v->%v connected but search failed", req.Start, req.Goal)
	}
	return ErrNoPathFound
}

// pathCost sums entry costs along a cell chain
func pathCost(o grid.Oracle, cells []core.Point) float64 {
	total := 0.0
	for i := 1; i < len(cells); i++ {
		scale := 1.0
		if cells[i].X != cells[i-1].X && cells[i].Y != cells[i-1].Y {
			scale = dirScale[DirNE]
		}
		total += o.Cost(cells[i].X, cells[i].Y) * scale
	}
	return total
}

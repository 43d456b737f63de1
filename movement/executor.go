package movement

import (
	"errors"
	"sort"
	"sync/atomic"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/event"
	"github.com/lixenwraith/dungeon-nav/grid"
	"github.com/lixenwraith/dungeon-nav/navigation"
	"github.com/lixenwraith/dungeon-nav/parameter"
	"github.com/lixenwraith/dungeon-nav/spatial"
	"github.com/lixenwraith/dungeon-nav/status"
)

var (
	// ErrUnknownAgent reports an ID with no spawned agent
	ErrUnknownAgent = errors.New("movement: unknown agent")

	// ErrCellOccupied reports a spawn into a full cell
	ErrCellOccupied = errors.New("movement: cell at capacity")
)

// Executor owns all agents and advances them once per frame.
// Agents update in ascending ID order so a frame is reproducible
// regardless of insertion order. Not safe for concurrent use
type Executor struct {
	oracle  grid.Oracle
	planner *navigation.Planner
	index   *spatial.Grid
	queue   *event.Queue

	agents map[uint64]*Agent
	order  []uint64
	dirty  bool
	tick   uint64

	statAgents  *atomic.Int64
	statMoving  *atomic.Int64
	statBlocked *atomic.Int64
	statReplans *atomic.Int64
}

// NewExecutor wires the executor over the shared oracle and planner
func NewExecutor(o grid.Oracle, p *navigation.Planner, idx *spatial.Grid, q *event.Queue, st *status.Registry) *Executor {
	return &Executor{
		oracle:  o,
		planner: p,
		index:   idx,
		queue:   q,
		agents:  make(map[uint64]*Agent),

		statAgents:  st.Ints.Get("move_agents"),
		statMoving:  st.Ints.Get("move_active"),
		statBlocked: st.Ints.Get("move_blocked"),
		statReplans: st.Ints.Get("move_replans"),
	}
}

// Spawn registers an agent at a walkable cell position
func (e *Executor) Spawn(id uint64, pos core.Vec2, speed float64, class navigation.AgentClass) (*Agent, error) {
	cell := core.CellOf(pos)
	if !e.oracle.Walkable(cell.X, cell.Y) {
		return nil, navigation.ErrInvalidCell
	}
	if !e.index.Insert(id, cell.X, cell.Y) {
		return nil, ErrCellOccupied
	}
	if speed <= 0 {
		speed = parameter.MoveDefaultSpeed
	}
	a := &Agent{ID: id, Pos: pos, Speed: speed, Class: class}
	e.agents[id] = a
	e.dirty = true
	e.statAgents.Add(1)
	return a, nil
}

// Remove unregisters an agent
func (e *Executor) Remove(id uint64) {
	a, ok := e.agents[id]
	if !ok {
		return
	}
	cell := a.Cell()
	e.index.Remove(id, cell.X, cell.Y)
	delete(e.agents, id)
	e.dirty = true
	e.statAgents.Add(-1)
}

// Agent returns the agent for id, nil if unknown
func (e *Executor) Agent(id uint64) *Agent {
	return e.agents[id]
}

// IsMoving reports whether the agent is actively pursuing a goal
func (e *Executor) IsMoving(id uint64) bool {
	a, ok := e.agents[id]
	if !ok {
		return false
	}
	switch a.state {
	case StatePathRequested, StateFollowing, StateBlocked:
		return true
	}
	return false
}

// MoveTo sets a movement goal. speed <= 0 keeps the agent's current
// speed, tolerance <= 0 uses the default arrival radius. In continuous
// mode callers refresh the goal by calling MoveTo again, a small drift
// only adjusts the final waypoint while a large one replans
func (e *Executor) MoveTo(id uint64, target core.Vec2, speed, tolerance float64, mode Mode) error {
	a, ok := e.agents[id]
	if !ok {
		return ErrUnknownAgent
	}
	goal := core.CellOf(target)
	if !e.oracle.InBounds(goal.X, goal.Y) {
		return navigation.ErrInvalidCell
	}
	if speed > 0 {
		a.Speed = speed
	}
	if tolerance <= 0 {
		tolerance = parameter.MoveDefaultTolerance
	}

	// cheap retarget while already tracking in continuous mode.
	// Drift is measured against the planned goal, not the previous
	// refresh, so a slowly fleeing target still accumulates into a
	// replan
	if mode == ModeContinuous && a.mode == ModeContinuous &&
		(a.state == StateFollowing || a.state == StatePathRequested) {
		if a.goalCell.Center().Dist(target) < parameter.MoveRetargetDistance {
			a.target = target
			a.tolerance = tolerance
			if a.state == StateFollowing && core.CellOf(target) == a.goalCell && len(a.waypoints) > 0 && !a.partial {
				a.waypoints[len(a.waypoints)-1] = target
			}
			return nil
		}
	}

	a.mode = mode
	a.target = target
	a.goalCell = goal
	a.tolerance = tolerance
	a.replans = 0
	a.job = nil
	a.waypoints = nil
	a.wpIndex = 0

	if a.Pos.Dist(target) <= tolerance {
		a.state = StateArrived
		e.emit(event.Arrived, a, event.ReasonNone)
		return nil
	}
	a.state = StatePathRequested
	return nil
}

// Cancel stops any movement and returns the agent to idle.
// No event is emitted
func (e *Executor) Cancel(id uint64) {
	a, ok := e.agents[id]
	if !ok {
		return
	}
	a.state = StateIdle
	a.job = nil
	a.waypoints = nil
	a.wpIndex = 0
	a.replans = 0
}

// Update advances every agent by dt seconds
func (e *Executor) Update(dt float64) {
	e.tick++
	if e.dirty {
		e.order = e.order[:0]
		for id := range e.agents {
			e.order = append(e.order, id)
		}
		sort.Slice(e.order, func(i, j int) bool { return e.order[i] < e.order[j] })
		e.dirty = false
	}

	moving, blocked := int64(0), int64(0)
	for _, id := range e.order {
		a, ok := e.agents[id]
		if !ok {
			continue
		}
		switch a.state {
		case StateArrived:
			a.state = StateIdle
		case StatePathRequested:
			e.updateRequested(a)
		case StateFollowing:
			e.updateFollowing(a, dt)
		case StateBlocked:
			e.updateBlocked(a)
		}
		switch a.state {
		case StatePathRequested, StateFollowing:
			moving++
		case StateBlocked:
			blocked++
		}
	}
	e.statMoving.Store(moving)
	e.statBlocked.Store(blocked)
}

// updateRequested steps the pending path job
func (e *Executor) updateRequested(a *Agent) {
	if a.job == nil {
		job, path, err := e.planner.Start(navigation.Request{
			Start: a.Cell(),
			Goal:  a.goalCell,
			Class: a.Class,
		})
		if err != nil {
			e.giveUp(a, event.ReasonUnreachable)
			return
		}
		if path != nil {
			e.adoptPath(a, path)
			return
		}
		a.job = job
		return
	}

	path, err := e.planner.Step(a.job)
	if err != nil {
		a.job = nil
		e.giveUp(a, event.ReasonUnreachable)
		return
	}
	if path != nil {
		a.job = nil
		e.adoptPath(a, path)
	}
}

// adoptPath installs a corridor and starts following it
func (e *Executor) adoptPath(a *Agent, p *navigation.Path) {
	if len(p.Waypoints) == 0 {
		e.giveUp(a, event.ReasonUnreachable)
		return
	}
	a.waypoints = p.Waypoints
	a.wpIndex = 0
	a.partial = p.Partial
	a.pathVersion = e.oracle.Version()
	if !p.Partial && core.CellOf(a.target) == a.goalCell {
		// end the corridor at the requested point, not the cell center
		a.waypoints[len(a.waypoints)-1] = a.target
	}
	a.state = StateFollowing
	a.replans = 0
	e.emit(event.PathReady, a, event.ReasonNone)
}

// updateFollowing walks the corridor, watching for obstruction
func (e *Executor) updateFollowing(a *Agent, dt float64) {
	// corridor cells may have changed under the agent
	if v := e.oracle.Version(); v != a.pathVersion {
		for i := a.wpIndex; i < len(a.waypoints); i++ {
			c := core.CellOf(a.waypoints[i])
			if !e.oracle.Walkable(c.X, c.Y) {
				e.block(a)
				return
			}
		}
		a.pathVersion = v
	}

	remaining := a.Speed * dt
	for remaining > 0 && a.wpIndex < len(a.waypoints) {
		wp := a.waypoints[a.wpIndex]
		delta := wp.Sub(a.Pos)
		d := delta.Len()
		if d <= parameter.MoveWaypointEpsilon {
			a.wpIndex++
			continue
		}

		step := remaining
		if step > d {
			step = d
		}
		next := a.Pos.Add(delta.Normalized().Scaled(step))
		if !e.advance(a, next) {
			e.block(a)
			return
		}
		remaining -= step
	}

	if a.wpIndex >= len(a.waypoints) {
		if a.partial {
			// corridor ended short of the goal, ask for the rest
			a.state = StatePathRequested
			a.job = nil
			return
		}
		if a.Pos.Dist(a.target) <= a.tolerance {
			a.state = StateArrived
			e.emit(event.Arrived, a, event.ReasonNone)
			return
		}
		// corridor endpoint drifted outside tolerance, replan
		// toward wherever the target sits now
		a.goalCell = core.CellOf(a.target)
		a.state = StatePathRequested
		a.job = nil
	}
}

// advance moves the agent, keeping the spatial index in sync across
// cell crossings. Returns false when the destination cell rejects
// the agent
func (e *Executor) advance(a *Agent, next core.Vec2) bool {
	from := a.Cell()
	to := core.CellOf(next)
	if from != to {
		if !e.oracle.Walkable(to.X, to.Y) {
			return false
		}
		// a full cell is a soft dynamic obstruction
		if !e.index.Move(a.ID, from.X, from.Y, to.X, to.Y) {
			return false
		}
	}
	a.Pos = next
	return true
}

// updateBlocked retries planning from the current position.
// Consecutive failures beyond the retry allowance idle the agent
func (e *Executor) updateBlocked(a *Agent) {
	if a.job == nil {
		if a.replans >= parameter.MoveReplanAttempts {
			e.giveUp(a, event.ReasonRetriesExhausted)
			return
		}
		a.replans++
		e.statReplans.Add(1)

		job, path, err := e.planner.Start(navigation.Request{
			Start: a.Cell(),
			Goal:  a.goalCell,
			Class: a.Class,
		})
		if err != nil {
			// stay blocked, next frame consumes another attempt
			return
		}
		if path != nil {
			e.adoptPath(a, path)
			return
		}
		a.job = job
		return
	}

	path, err := e.planner.Step(a.job)
	if err != nil {
		a.job = nil
		return
	}
	if path != nil {
		a.job = nil
		e.adoptPath(a, path)
	}
}

func (e *Executor) block(a *Agent) {
	a.state = StateBlocked
	a.job = nil
	e.emit(event.Blocked, a, event.ReasonObstructed)
}

func (e *Executor) giveUp(a *Agent, why event.Reason) {
	a.state = StateIdle
	a.job = nil
	a.waypoints = nil
	a.wpIndex = 0
	e.emit(event.PathFailed, a, why)
}

func (e *Executor) emit(t event.Type, a *Agent, why event.Reason) {
	e.queue.Push(event.Event{
		Type:   t,
		Agent:  a.ID,
		Cell:   a.Cell(),
		Reason: why,
		Tick:   e.tick,
	})
}

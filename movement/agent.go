// Package movement drives agents along planned corridors with a
// small per-agent state machine, updated once per frame in
// deterministic agent ID order.
package movement

import (
	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/navigation"
)

// State is the movement lifecycle of an agent
type State uint8

const (
	// StateIdle means no active movement goal
	StateIdle State = iota
	// StatePathRequested means a path computation is pending
	StatePathRequested
	// StateFollowing means the agent is walking its corridor
	StateFollowing
	// StateBlocked means the corridor became obstructed and a replan
	// is being attempted
	StateBlocked
	// StateArrived is held for one frame after reaching the goal,
	// then decays to StateIdle
	StateArrived
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePathRequested:
		return "path_requested"
	case StateFollowing:
		return "following"
	case StateBlocked:
		return "blocked"
	case StateArrived:
		return "arrived"
	}
	return "unknown"
}

// Mode selects how a movement goal is interpreted
type Mode uint8

const (
	// ModeOneShot walks to a fixed point and stops
	ModeOneShot Mode = iota
	// ModeContinuous tracks a moving target, the caller refreshes the
	// target each frame and the agent replans once it drifts far
	// enough from the planned goal
	ModeContinuous
)

// Agent is one moving entity. Position is continuous, the occupied
// cell derives from it. Fields beyond the identity block are owned by
// the Executor
type Agent struct {
	ID    uint64
	Pos   core.Vec2
	Speed float64 // world units per second
	Class navigation.AgentClass

	state     State
	mode      Mode
	target    core.Vec2
	goalCell  core.Point
	tolerance float64

	waypoints   []core.Vec2
	wpIndex     int
	partial     bool
	pathVersion uint64

	job     *navigation.Job
	replans int
}

// State returns the current movement state
func (a *Agent) State() State { return a.state }

// Cell returns the grid cell the agent currently occupies
func (a *Agent) Cell() core.Point { return core.CellOf(a.Pos) }

// Target returns the active movement goal, valid while moving
func (a *Agent) Target() core.Vec2 { return a.target }

// Waypoints returns the remaining corridor, for overlays.
// The slice aliases executor state
func (a *Agent) Waypoints() []core.Vec2 {
	if a.wpIndex >= len(a.waypoints) {
		return nil
	}
	return a.waypoints[a.wpIndex:]
}

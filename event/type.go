package event

import "github.com/lixenwraith/dungeon-nav/core"

// Type identifies a navigation lifecycle event
type Type uint8

const (
	// None is the zero value, never published
	None Type = iota

	// PathReady fires when a pending request resolves to a corridor.
	// Trigger: planner completes a search for an agent
	// Consumer: gameplay layers reacting to route availability
	PathReady

	// Arrived fires when an agent reaches its goal within tolerance.
	// Trigger: movement update detects arrival
	// Consumer: task systems waiting on the move
	Arrived

	// Blocked fires on the transition into the blocked state.
	// Trigger: movement update finds the next waypoint obstructed
	// Consumer: diagnostics overlay, task systems
	Blocked

	// PathFailed fires when a request or replan gives up.
	// Trigger: unreachable goal, abandoned search, or replan retries
	// exhausted
	// Consumer: task systems that must reassign the agent
	PathFailed

	// TopologyChanged fires once per committed tile mutation batch.
	// Trigger: TileMap batch commit
	// Consumer: diagnostics overlay
	TopologyChanged
)

func (t Type) String() string {
	switch t {
	case PathReady:
		return "path_ready"
	case Arrived:
		return "arrived"
	case Blocked:
		return "blocked"
	case PathFailed:
		return "path_failed"
	case TopologyChanged:
		return "topology_changed"
	}
	return "none"
}

// Reason qualifies Blocked and PathFailed events
type Reason uint8

const (
	ReasonNone Reason = iota
	// ReasonObstructed marks a corridor cell turned non-walkable or a
	// destination cell at agent capacity
	ReasonObstructed
	// ReasonUnreachable marks a goal in a different region
	ReasonUnreachable
	// ReasonRetriesExhausted marks replan attempts running out
	ReasonRetriesExhausted
)

func (r Reason) String() string {
	switch r {
	case ReasonObstructed:
		return "obstructed"
	case ReasonUnreachable:
		return "unreachable"
	case ReasonRetriesExhausted:
		return "retries_exhausted"
	}
	return "none"
}

// Event is a fixed-size notification record
type Event struct {
	Type   Type
	Agent  uint64
	Cell   core.Point
	Reason Reason
	Tick   uint64
}

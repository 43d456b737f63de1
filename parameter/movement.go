package parameter

// Movement execution
const (
	// MoveWaypointEpsilon is the distance at which an intermediate
	// waypoint counts as reached, in world units
	MoveWaypointEpsilon = 0.05

	// MoveDefaultTolerance is the arrival radius used when a request
	// does not specify one, in world units
	MoveDefaultTolerance = 0.25

	// MoveDefaultSpeed is the fallback agent speed in world units per second
	MoveDefaultSpeed = 4.0

	// MoveReplanAttempts is how many consecutive failed replans a
	// blocked agent tolerates before giving up
	MoveReplanAttempts = 3

	// MoveRetargetDistance re-requests a path in continuous mode once
	// the tracked target has drifted this far from the planned goal
	MoveRetargetDistance = 2.0
)

package parameter

// Pathfinding
const (
	// NavExpandBudget caps node expansions per grid search call
	NavExpandBudget = 2048

	// NavFrameBudget caps node expansions granted to one in-flight
	// request per frame when a search is resumed across frames
	NavFrameBudget = 512

	// NavRequestFrameLimit abandons a request that has not completed
	// after this many resumed frames
	NavRequestFrameLimit = 8

	// NavLongRangeDistance switches the planner from plain grid search
	// to bidirectional search, in world units
	NavLongRangeDistance = 24.0

	// NavClusterSize is the edge length of a hierarchical cluster in cells
	NavClusterSize = 16

	// NavCacheCapacity bounds the path cache entry count
	NavCacheCapacity = 256
)

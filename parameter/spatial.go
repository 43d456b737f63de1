package parameter

// Spatial index
const (
	// SpatialMaxAgentsPerCell bounds occupancy tracked per cell,
	// inserts beyond the cap are rejected
	SpatialMaxAgentsPerCell = 15
)

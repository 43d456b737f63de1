package parameter

// Event queue
const (
	// EventQueueSize is the ring buffer capacity, must be a power of two
	EventQueueSize = 1024

	// EventQueueMask wraps ring indices
	EventQueueMask = EventQueueSize - 1
)

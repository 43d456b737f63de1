package event

import (
	"sync/atomic"

	"github.com/lixenwraith/dungeon-nav/parameter"
)

type slot struct {
	ev        Event
	published atomic.Bool
}

// Queue is a fixed-size multi-producer single-consumer ring.
// Producers never block. When the ring wraps before the consumer
// drains, the oldest events are overwritten and counted as dropped.
// Drain must only be called from one goroutine
type Queue struct {
	slots   [parameter.EventQueueSize]slot
	write   atomic.Uint64
	read    uint64
	dropped atomic.Uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push publishes an event, claiming the next slot with a single
// atomic increment
func (q *Queue) Push(ev Event) {
	seq := q.write.Add(1) - 1
	s := &q.slots[seq&parameter.EventQueueMask]
	s.published.Store(false)
	s.ev = ev
	s.published.Store(true)
}

// Drain consumes all published events in order, invoking fn for each.
// Returns the number delivered
func (q *Queue) Drain(fn func(Event)) int {
	w := q.write.Load()
	if w-q.read > parameter.EventQueueSize {
		skipped := w - q.read - parameter.EventQueueSize
		q.dropped.Add(skipped)
		q.read = w - parameter.EventQueueSize
	}
	n := 0
	for q.read < w {
		s := &q.slots[q.read&parameter.EventQueueMask]
		if !s.published.Load() {
			// producer claimed the slot but has not finished writing
			break
		}
		fn(s.ev)
		q.read++
		n++
	}
	return n
}

// Dropped returns the cumulative count of overwritten events
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

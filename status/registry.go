// Package status exposes a lock-light metrics registry.
// Systems resolve metric pointers once at construction and write to
// the atomics directly from their update loops.
package status

import "sync/atomic"

// Registry is the central metrics facade
type Registry struct {
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// Count returns the total number of registered metrics
func (r *Registry) Count() int {
	return r.Ints.Count() + r.Floats.Count()
}

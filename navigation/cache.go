package navigation

import (
	"github.com/lixenwraith/dungeon-nav/core"
)

// AgentClass groups agents that share traversal rules, cached paths
// are only shared within a class
type AgentClass uint8

const (
	ClassWorker AgentClass = iota
	ClassEngineer
	ClassCreature
	ClassHero
)

func (c AgentClass) String() string {
	switch c {
	case ClassWorker:
		return "worker"
	case ClassEngineer:
		return "engineer"
	case ClassCreature:
		return "creature"
	case ClassHero:
		return "hero"
	}
	return "unknown"
}

type cacheKey struct {
	start core.Point
	goal  core.Point
	class AgentClass
}

type cacheEntry struct {
	waypoints []core.Vec2
	cost      float64
	version   uint64
	lastUsed  uint64
}

// PathCache memoizes extracted corridors keyed by endpoints and agent
// class. Entries carry the topology version they were computed at, a
// stale entry is never returned. Eviction drops the least recently
// used entry once capacity is exceeded
type PathCache struct {
	entries  map[cacheKey]*cacheEntry
	capacity int
	clock    uint64
}

// NewPathCache creates a cache bounded to capacity entries
func NewPathCache(capacity int) *PathCache {
	return &PathCache{
		entries:  make(map[cacheKey]*cacheEntry, capacity),
		capacity: capacity,
	}
}

// Get returns a copy of the cached corridor if present and computed
// at the given topology version. Stale entries are deleted on lookup
func (c *PathCache) Get(start, goal core.Point, class AgentClass, version uint64) ([]core.Vec2, float64, bool) {
	key := cacheKey{start: start, goal: goal, class: class}
	e, ok := c.entries[key]
	if !ok {
		return nil, 0, false
	}
	if e.version != version {
		delete(c.entries, key)
		return nil, 0, false
	}
	c.clock++
	e.lastUsed = c.clock

	// callers mutate their corridor while following it
	wp := make([]core.Vec2, len(e.waypoints))
	copy(wp, e.waypoints)
	return wp, e.cost, true
}

// Put stores a corridor, evicting the least recently used entry when
// over capacity
func (c *PathCache) Put(start, goal core.Point, class AgentClass, version uint64, waypoints []core.Vec2, cost float64) {
	key := cacheKey{start: start, goal: goal, class: class}
	c.clock++
	wp := make([]core.Vec2, len(waypoints))
	copy(wp, waypoints)
	c.entries[key] = &cacheEntry{
		waypoints: wp,
		cost:      cost,
		version:   version,
		lastUsed:  c.clock,
	}
	if len(c.entries) > c.capacity {
		c.evict()
	}
}

func (c *PathCache) evict() {
	var oldest cacheKey
	var oldestUsed uint64
	first := true
	for k, e := range c.entries {
		if first || e.lastUsed < oldestUsed {
			oldest = k
			oldestUsed = e.lastUsed
			first = false
		}
	}
	if !first {
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached corridors
func (c *PathCache) Len() int {
	return len(c.entries)
}

package navigation

import (
	"fmt"
	"testing"

	"github.com/lixenwraith/dungeon-nav/core"
)

func TestCacheHit(t *testing.T) {
	c := NewPathCache(8)
	start := core.Point{X: 0, Y: 0}
	goal := core.Point{X: 5, Y: 5}
	wp := []core.Vec2{start.Center(), goal.Center()}

	c.Put(start, goal, ClassWorker, 1, wp, 7.5)
	got, cost, ok := c.Get(start, goal, ClassWorker, 1)
	if !ok {
		t.Fatal("miss on fresh entry")
	}
	if cost != 7.5 || len(got) != 2 {
		t.Errorf("entry = %v cost %v", got, cost)
	}

	// returned corridor is a copy, mutating it must not poison the cache
	got[0] = core.Vec2{X: 99, Y: 99}
	again, _, _ := c.Get(start, goal, ClassWorker, 1)
	if again[0] != start.Center() {
		t.Error("cache entry mutated through returned slice")
	}
}

func TestCacheVersionMismatch(t *testing.T) {
	c := NewPathCache(8)
	start := core.Point{X: 0, Y: 0}
	goal := core.Point{X: 5, Y: 5}
	c.Put(start, goal, ClassWorker, 1, []core.Vec2{start.Center()}, 1)

	if _, _, ok := c.Get(start, goal, ClassWorker, 2); ok {
		t.Error("stale entry returned after topology change")
	}
	// stale entries are dropped on lookup
	if c.Len() != 0 {
		t.Errorf("stale entry retained, len = %d", c.Len())
	}
}

func TestCacheClassIsolation(t *testing.T) {
	c := NewPathCache(8)
	start := core.Point{X: 0, Y: 0}
	goal := core.Point{X: 5, Y: 5}
	c.Put(start, goal, ClassWorker, 1, []core.Vec2{start.Center()}, 1)

	if _, _, ok := c.Get(start, goal, ClassCreature, 1); ok {
		t.Error("entry shared across agent classes")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewPathCache(3)
	goals := make([]core.Point, 4)
	for i := range goals {
		goals[i] = core.Point{X: i, Y: 0}
	}
	start := core.Point{X: 9, Y: 9}

	for i := 0; i < 3; i++ {
		c.Put(start, goals[i], ClassWorker, 1, []core.Vec2{goals[i].Center()}, float64(i))
	}
	// touch the oldest so the middle entry becomes eviction candidate
	if _, _, ok := c.Get(start, goals[0], ClassWorker, 1); !ok {
		t.Fatal("warm entry missing")
	}
	c.Put(start, goals[3], ClassWorker, 1, []core.Vec2{goals[3].Center()}, 3)

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if _, _, ok := c.Get(start, goals[1], ClassWorker, 1); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, i := range []int{0, 2, 3} {
		if _, _, ok := c.Get(start, goals[i], ClassWorker, 1); !ok {
			t.Errorf("entry %d evicted out of order", i)
		}
	}
}

func TestCacheCapacityStress(t *testing.T) {
	c := NewPathCache(16)
	for i := 0; i < 200; i++ {
		goal := core.Point{X: i, Y: i}
		c.Put(core.Point{}, goal, ClassWorker, 1, []core.Vec2{goal.Center()}, float64(i))
		if c.Len() > 16 {
			t.Fatalf("len = %d exceeds capacity at insert %d", c.Len(), i)
		}
	}
}

func TestAgentClassNames(t *testing.T) {
	for _, c := range []AgentClass{ClassWorker, ClassEngineer, ClassCreature, ClassHero} {
		if c.String() == "unknown" {
			t.Errorf("class %d has no name", c)
		}
	}
	if fmt.Sprint(AgentClass(200)) != "unknown" {
		t.Error("out-of-range class not unknown")
	}
}

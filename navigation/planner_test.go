package navigation

import (
	"errors"
	"testing"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
	"github.com/lixenwraith/dungeon-nav/status"
)

func newTestPlanner(m *grid.TileMap, conn Connectivity) (*Planner, *status.Registry) {
	st := status.NewRegistry()
	return NewPlanner(m, conn, st), st
}

// runJob steps a job to completion
func runJob(t *testing.T, p *Planner, j *Job) *Path {
	t.Helper()
	for i := 0; i < 10000; i++ {
		path, err := p.Step(j)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if path != nil {
			return path
		}
	}
	t.Fatal("job never completed")
	return nil
}

func TestChooseStrategy(t *testing.T) {
	cases := []struct {
		distance float64
		class    AgentClass
		want     Strategy
	}{
		{0, ClassWorker, StrategyGrid},
		{5, ClassWorker, StrategyGrid},
		{23.9, ClassWorker, StrategyGrid},
		{24, ClassWorker, StrategyBidirectional},
		{100, ClassHero, StrategyBidirectional},
		{100, ClassCreature, StrategyGrid},
	}
	for _, c := range cases {
		if got := ChooseStrategy(c.distance, c.class); got != c.want {
			t.Errorf("ChooseStrategy(%v, %v) = %v, want %v", c.distance, c.class, got, c.want)
		}
	}
}

func TestStartRejectsInvalidCells(t *testing.T) {
	m := tileMapFrom(
		"...",
		".#.",
	)
	p, _ := newTestPlanner(m, Conn4)

	_, _, err := p.Start(Request{Start: core.Point{X: -1, Y: 0}, Goal: core.Point{X: 2, Y: 0}})
	if !errors.Is(err, ErrInvalidCell) {
		t.Errorf("out of bounds: err = %v", err)
	}
	_, _, err = p.Start(Request{Start: core.Point{X: 0, Y: 0}, Goal: core.Point{X: 1, Y: 1}})
	if !errors.Is(err, ErrInvalidCell) {
		t.Errorf("rock goal: err = %v", err)
	}
}

func TestStartRejectsSealedGoalWithoutSearching(t *testing.T) {
	m := tileMapFrom(
		"..#..",
		"..#..",
		"..#..",
	)
	p, st := newTestPlanner(m, Conn4)

	_, _, err := p.Start(Request{Start: core.Point{X: 0, Y: 1}, Goal: core.Point{X: 4, Y: 1}})
	if !errors.Is(err, ErrNoPathFound) {
		t.Fatalf("err = %v, want ErrNoPathFound", err)
	}
	if n := st.Ints.Get("nav_searches").Load(); n != 0 {
		t.Errorf("sealed goal started %d searches, want 0", n)
	}
	if n := st.Ints.Get("nav_unreachable").Load(); n != 1 {
		t.Errorf("nav_unreachable = %d, want 1", n)
	}
}

func TestPlanShortPathAndCache(t *testing.T) {
	m := tileMapFrom(
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		".....",
	)
	p, st := newTestPlanner(m, Conn4)
	req := Request{Start: core.Point{X: 0, Y: 2}, Goal: core.Point{X: 4, Y: 2}}

	job, path, err := p.Start(req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if path != nil {
		t.Fatal("cold request answered from cache")
	}
	path = runJob(t, p, job)
	if path.Partial {
		t.Error("short request returned partial path")
	}
	if got := path.Waypoints[len(path.Waypoints)-1]; got != req.Goal.Center() {
		t.Errorf("corridor ends at %v, want goal center", got)
	}
	if path.Cost != 8 {
		t.Errorf("cost = %v, want 8", path.Cost)
	}

	// identical request must be a cache hit
	job, cached, err := p.Start(req)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if job != nil || cached == nil {
		t.Fatal("repeat request not served from cache")
	}
	if st.Ints.Get("nav_cache_hits").Load() != 1 {
		t.Errorf("nav_cache_hits = %d, want 1", st.Ints.Get("nav_cache_hits").Load())
	}
	if cached.Cost != path.Cost {
		t.Errorf("cached cost %v, computed %v", cached.Cost, path.Cost)
	}
}

func TestTopologyChangeInvalidatesCache(t *testing.T) {
	m := tileMapFrom(
		".....",
		".....",
	)
	p, _ := newTestPlanner(m, Conn4)
	req := Request{Start: core.Point{X: 0, Y: 0}, Goal: core.Point{X: 4, Y: 0}}

	job, _, err := p.Start(req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	runJob(t, p, job)

	b := m.Batch()
	b.Build(2, 1)
	b.Commit()

	job, cached, err := p.Start(req)
	if err != nil {
		t.Fatalf("Start after change: %v", err)
	}
	if cached != nil {
		t.Error("stale corridor served after topology change")
	}
	if job == nil {
		t.Fatal("no job for cold request")
	}
}

func TestTopologyChangeMidJob(t *testing.T) {
	m := tileMapFrom(
		"....................",
		".################...",
		"....................",
	)
	p, _ := newTestPlanner(m, Conn4)
	req := Request{Start: core.Point{X: 0, Y: 0}, Goal: core.Point{X: 19, Y: 2}}

	job, _, err := p.Start(req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// seal every gap in the dividing wall while the job is in flight
	b := m.Batch()
	b.Build(0, 1)
	b.Build(17, 1)
	b.Build(18, 1)
	b.Build(19, 1)
	b.Commit()

	if _, err := p.Step(job); !errors.Is(err, ErrNoPathFound) {
		t.Fatalf("err = %v, want ErrNoPathFound", err)
	}
}

func TestHierarchicalHint(t *testing.T) {
	m := grid.NewTileMap(40, 40, grid.Ground)
	b := m.Batch()
	for y := 0; y < 39; y++ {
		b.Set(20, y, grid.Rock)
	}
	b.Commit()

	p, _ := newTestPlanner(m, Conn8)
	req := Request{
		Start: core.Point{X: 2, Y: 2},
		Goal:  core.Point{X: 37, Y: 2},
		Hint:  StrategyHierarchical,
	}
	job, _, err := p.Start(req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	path := runJob(t, p, job)
	if len(path.Waypoints) == 0 {
		t.Fatal("empty corridor")
	}
	if got := path.Waypoints[len(path.Waypoints)-1]; !path.Partial && got != req.Goal.Center() {
		t.Errorf("corridor ends at %v, want goal center", got)
	}
}

func TestLongRangeCompletes(t *testing.T) {
	m := grid.NewTileMap(64, 64, grid.Ground)
	p, _ := newTestPlanner(m, Conn8)
	req := Request{Start: core.Point{X: 1, Y: 1}, Goal: core.Point{X: 62, Y: 62}}

	job, _, err := p.Start(req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.strategy != StrategyBidirectional {
		t.Errorf("strategy = %v, want bidirectional", job.strategy)
	}
	path := runJob(t, p, job)
	if len(path.Waypoints) < 2 {
		t.Fatalf("corridor = %v", path.Waypoints)
	}
	if got := path.Waypoints[len(path.Waypoints)-1]; !path.Partial && got != req.Goal.Center() {
		t.Errorf("corridor ends at %v", got)
	}
}

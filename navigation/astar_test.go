package navigation

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

// tileMapFrom builds a map from rows of '.' floor and '#' rock
func tileMapFrom(rows ...string) *grid.TileMap {
	m := grid.NewTileMap(len(rows[0]), len(rows), grid.Ground)
	b := m.Batch()
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				b.Set(x, y, grid.Rock)
			}
		}
	}
	b.Commit()
	return m
}

// dijkstraCost is a brute-force reference for optimality checks
func dijkstraCost(o grid.Oracle, conn Connectivity, start, goal core.Point) float64 {
	w, h := o.Size()
	dist := make([]float64, w*h)
	done := make([]bool, w*h)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[start.Y*w+start.X] = 0

	for {
		best := -1
		for i := range dist {
			if !done[i] && !math.IsInf(dist[i], 1) && (best < 0 || dist[i] < dist[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		done[best] = true
		x, y := best%w, best/w
		for _, d := range conn.dirs() {
			nx, ny := x+DirVectors[d][0], y+DirVectors[d][1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h || !o.Walkable(nx, ny) {
				continue
			}
			if d&1 == 1 && cutsCorner(o, x, y, d) {
				continue
			}
			if g := dist[best] + o.Cost(nx, ny)*dirScale[d]; g < dist[ny*w+nx] {
				dist[ny*w+nx] = g
			}
		}
	}
	return dist[goal.Y*w+goal.X]
}

func checkPathValid(t *testing.T, o grid.Oracle, cells []core.Point, start, goal core.Point, partial bool) {
	t.Helper()
	if len(cells) == 0 {
		t.Fatal("empty path")
	}
	if cells[0] != start {
		t.Errorf("path starts at %v, want %v", cells[0], start)
	}
	if !partial && cells[len(cells)-1] != goal {
		t.Errorf("path ends at %v, want %v", cells[len(cells)-1], goal)
	}
	for i, c := range cells {
		if !o.Walkable(c.X, c.Y) {
			t.Errorf("path cell %v not walkable", c)
		}
		if i == 0 {
			continue
		}
		dx, dy := c.X-cells[i-1].X, c.Y-cells[i-1].Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
			t.Errorf("cells %v -> %v are not neighbors", cells[i-1], c)
		}
	}
}

func TestDetourAroundWall(t *testing.T) {
	// wall on column 2 with a gap only at the bottom row
	m := tileMapFrom(
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		".....",
	)
	start := core.Point{X: 0, Y: 2}
	goal := core.Point{X: 4, Y: 2}

	res, err := FindPath(m, Conn4, start, goal, 10000)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if res.Partial {
		t.Fatal("unexpected partial result")
	}
	if res.Cost != 8 {
		t.Errorf("cost = %v, want 8", res.Cost)
	}
	checkPathValid(t, m, res.Cells, start, goal, false)
}

func TestInvalidEndpoints(t *testing.T) {
	m := tileMapFrom(
		"...",
		".#.",
		"...",
	)
	cases := []struct {
		name        string
		start, goal core.Point
	}{
		{"start out of bounds", core.Point{X: -1, Y: 0}, core.Point{X: 2, Y: 2}},
		{"goal out of bounds", core.Point{X: 0, Y: 0}, core.Point{X: 3, Y: 0}},
		{"start on rock", core.Point{X: 1, Y: 1}, core.Point{X: 2, Y: 2}},
		{"goal on rock", core.Point{X: 0, Y: 0}, core.Point{X: 1, Y: 1}},
	}
	for _, c := range cases {
		if _, err := FindPath(m, Conn4, c.start, c.goal, 100); !errors.Is(err, ErrInvalidCell) {
			t.Errorf("%s: err = %v, want ErrInvalidCell", c.name, err)
		}
	}
}

func TestNoPathToSealedChamber(t *testing.T) {
	m := tileMapFrom(
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	)
	_, err := FindPath(m, Conn4, core.Point{X: 0, Y: 2}, core.Point{X: 4, Y: 2}, 10000)
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("err = %v, want ErrNoPathFound", err)
	}
}

func TestCornerCutPrevention(t *testing.T) {
	// one flanking cell blocked disallows the diagonal, the route
	// must take two cardinal steps instead
	m := tileMapFrom(
		".#",
		"..",
	)
	res, err := FindPath(m, Conn8, core.Point{X: 0, Y: 0}, core.Point{X: 1, Y: 1}, 100)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if res.Cost != 2 {
		t.Errorf("cost = %v, want 2 (no corner cut)", res.Cost)
	}

	// both flanks blocked seals the diagonal entirely
	m = tileMapFrom(
		".#",
		"#.",
	)
	if _, err := FindPath(m, Conn8, core.Point{X: 0, Y: 0}, core.Point{X: 1, Y: 1}, 100); !errors.Is(err, ErrNoPathFound) {
		t.Errorf("err = %v, want ErrNoPathFound", err)
	}
}

func TestOptimalityMatchesDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		w, h := 12+rng.Intn(8), 12+rng.Intn(8)
		m := grid.NewTileMap(w, h, grid.Ground)
		b := m.Batch()
		for i := 0; i < w*h/4; i++ {
			b.Set(rng.Intn(w), rng.Intn(h), grid.Rock)
		}
		// sprinkle slow floor so cost and distance diverge
		for i := 0; i < w*h/8; i++ {
			x, y := rng.Intn(w), rng.Intn(h)
			if m.At(x, y) == grid.Ground {
				b.Set(x, y, grid.GoldVein)
			}
		}
		b.Commit()

		for _, conn := range []Connectivity{Conn4, Conn8} {
			start := core.Point{X: rng.Intn(w), Y: rng.Intn(h)}
			goal := core.Point{X: rng.Intn(w), Y: rng.Intn(h)}
			if !m.Walkable(start.X, start.Y) || !m.Walkable(goal.X, goal.Y) {
				continue
			}
			want := dijkstraCost(m, conn, start, goal)
			res, err := FindPath(m, conn, start, goal, w*h*8)
			if math.IsInf(want, 1) {
				if !errors.Is(err, ErrNoPathFound) {
					t.Errorf("trial %d: reference unreachable but err = %v", trial, err)
				}
				continue
			}
			if err != nil {
				t.Errorf("trial %d: FindPath: %v", trial, err)
				continue
			}
			if math.Abs(res.Cost-want) > 1e-9 {
				t.Errorf("trial %d conn %d: cost = %v, reference %v", trial, conn, res.Cost, want)
			}
			checkPathValid(t, m, res.Cells, start, goal, false)
		}
	}
}

func TestBudgetedSearchResumes(t *testing.T) {
	m := tileMapFrom(
		"....................",
		".################...",
		"....................",
		"...################.",
		"....................",
	)
	start := core.Point{X: 0, Y: 0}
	goal := core.Point{X: 19, Y: 4}

	full, err := FindPath(m, Conn4, start, goal, 100000)
	if err != nil {
		t.Fatalf("full search: %v", err)
	}

	s, err := NewSearch(m, Conn4, start, goal)
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	res, err := s.Run(5)
	if err != nil {
		t.Fatalf("first slice: %v", err)
	}
	if !res.Partial {
		t.Fatal("tiny budget finished the search, expected partial")
	}
	checkPathValid(t, m, res.Cells, start, goal, true)

	for i := 0; res.Partial; i++ {
		if i > 1000 {
			t.Fatal("search never completed")
		}
		res, err = s.Run(5)
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
	}
	if math.Abs(res.Cost-full.Cost) > 1e-9 {
		t.Errorf("resumed cost = %v, one-shot cost = %v", res.Cost, full.Cost)
	}
	checkPathValid(t, m, res.Cells, start, goal, false)
}

func TestTrivialPath(t *testing.T) {
	m := tileMapFrom("...")
	p := core.Point{X: 1, Y: 0}
	res, err := FindPath(m, Conn4, p, p, 10)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(res.Cells) != 1 || res.Cells[0] != p || res.Cost != 0 {
		t.Errorf("start==goal path = %+v", res)
	}
}

package navigation

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

func runBidir(t *testing.T, s *BidirSearch, slice int) PathResult {
	t.Helper()
	for i := 0; i < 100000; i++ {
		res, err := s.Run(slice)
		if err != nil {
			t.Fatalf("bidir run: %v", err)
		}
		if !res.Partial {
			return res
		}
	}
	t.Fatal("bidirectional search never completed")
	return PathResult{}
}

func TestBidirMatchesAStar(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for trial := 0; trial < 15; trial++ {
		w, h := 16, 16
		m := grid.NewTileMap(w, h, grid.Ground)
		b := m.Batch()
		for i := 0; i < w*h/4; i++ {
			b.Set(rng.Intn(w), rng.Intn(h), grid.Rock)
		}
		b.Commit()

		start := core.Point{X: rng.Intn(w), Y: rng.Intn(h)}
		goal := core.Point{X: rng.Intn(w), Y: rng.Intn(h)}
		if !m.Walkable(start.X, start.Y) || !m.Walkable(goal.X, goal.Y) {
			continue
		}

		ref, refErr := FindPath(m, Conn8, start, goal, w*h*8)

		s, err := NewBidirSearch(m, Conn8, start, goal)
		if err != nil {
			t.Fatalf("trial %d: NewBidirSearch: %v", trial, err)
		}
		if refErr != nil {
			if _, err := s.Run(w * h * 8); !errors.Is(err, ErrNoPathFound) {
				t.Errorf("trial %d: want ErrNoPathFound, got %v", trial, err)
			}
			continue
		}
		res := runBidir(t, s, w*h*8)
		if math.Abs(res.Cost-ref.Cost) > 1e-9 {
			t.Errorf("trial %d: bidir cost %v, astar cost %v", trial, res.Cost, ref.Cost)
		}
		checkPathValid(t, m, res.Cells, start, goal, false)
	}
}

func TestBidirResumesAcrossSlices(t *testing.T) {
	m := tileMapFrom(
		"....................",
		".################...",
		"....................",
		"...################.",
		"....................",
	)
	start := core.Point{X: 0, Y: 0}
	goal := core.Point{X: 19, Y: 4}

	ref, err := FindPath(m, Conn4, start, goal, 100000)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}

	s, err := NewBidirSearch(m, Conn4, start, goal)
	if err != nil {
		t.Fatalf("NewBidirSearch: %v", err)
	}
	first, err := s.Run(3)
	if err != nil {
		t.Fatalf("first slice: %v", err)
	}
	if !first.Partial {
		t.Fatal("tiny slice completed, expected partial")
	}
	res := runBidir(t, s, 3)
	if math.Abs(res.Cost-ref.Cost) > 1e-9 {
		t.Errorf("sliced cost %v, reference %v", res.Cost, ref.Cost)
	}
	checkPathValid(t, m, res.Cells, start, goal, false)
}

func TestBidirSealed(t *testing.T) {
	m := tileMapFrom(
		"..#..",
		"..#..",
		"..#..",
	)
	s, err := NewBidirSearch(m, Conn4, core.Point{X: 0, Y: 1}, core.Point{X: 4, Y: 1})
	if err != nil {
		t.Fatalf("NewBidirSearch: %v", err)
	}
	if _, err := s.Run(10000); !errors.Is(err, ErrNoPathFound) {
		t.Errorf("err = %v, want ErrNoPathFound", err)
	}
}

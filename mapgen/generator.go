// Package mapgen produces deterministic dungeon layouts for sandbox
// runs and tests: rooms carved from rock, corridors linking them, and
// gold veins seeded along the walls.
package mapgen

import (
	"math/rand"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/grid"
)

// Config controls generation, zero values pick workable defaults
type Config struct {
	Width, Height int
	RoomAttempts  int
	RoomMin       int
	RoomMax       int
	VeinCount     int
	Seed          int64
}

// Result is a generated dungeon
type Result struct {
	Map   *grid.TileMap
	Rooms []core.Area
	Start core.Point // center of the first room
}

func (c *Config) defaults() {
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 48
	}
	if c.RoomAttempts <= 0 {
		c.RoomAttempts = 24
	}
	if c.RoomMin <= 0 {
		c.RoomMin = 4
	}
	if c.RoomMax < c.RoomMin {
		c.RoomMax = c.RoomMin + 4
	}
	if c.VeinCount < 0 {
		c.VeinCount = 0
	}
}

// Generate carves a dungeon into solid rock. The same Config always
// yields the same layout. Every room is connected to the first by
// corridors, so all room floor shares one region
func Generate(cfg Config) Result {
	cfg.defaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	m := grid.NewTileMap(cfg.Width, cfg.Height, grid.Rock)
	b := m.Batch()

	var rooms []core.Area
	for i := 0; i < cfg.RoomAttempts; i++ {
		w := cfg.RoomMin + rng.Intn(cfg.RoomMax-cfg.RoomMin+1)
		h := cfg.RoomMin + rng.Intn(cfg.RoomMax-cfg.RoomMin+1)
		if cfg.Width-w-2 <= 0 || cfg.Height-h-2 <= 0 {
			continue
		}
		room := core.Area{
			X:      1 + rng.Intn(cfg.Width-w-2),
			Y:      1 + rng.Intn(cfg.Height-h-2),
			Width:  w,
			Height: h,
		}
		// keep a rock margin between rooms
		grown := core.Area{X: room.X - 1, Y: room.Y - 1, Width: room.Width + 2, Height: room.Height + 2}
		overlaps := false
		for _, r := range rooms {
			if grown.Overlaps(r) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		rooms = append(rooms, room)
		for y := room.Y; y < room.Y+room.Height; y++ {
			for x := room.X; x < room.X+room.Width; x++ {
				b.Set(x, y, grid.Room)
			}
		}
	}

	// L-shaped corridors link each room to the previous one
	for i := 1; i < len(rooms); i++ {
		a, c := rooms[i-1].Center(), rooms[i].Center()
		if rng.Intn(2) == 0 {
			carveH(b, m, a.X, c.X, a.Y)
			carveV(b, m, a.Y, c.Y, c.X)
		} else {
			carveV(b, m, a.Y, c.Y, a.X)
			carveH(b, m, a.X, c.X, c.Y)
		}
	}

	// veins sit in rock adjacent to carved floor so miners can reach
	// them with one dig
	placed := 0
	for try := 0; try < cfg.VeinCount*16 && placed < cfg.VeinCount; try++ {
		x, y := rng.Intn(cfg.Width), rng.Intn(cfg.Height)
		if m.At(x, y) != grid.Rock || !nextToFloor(m, x, y) {
			continue
		}
		b.Set(x, y, grid.GoldVein)
		placed++
	}

	b.Commit()

	start := core.Point{}
	if len(rooms) > 0 {
		start = rooms[0].Center()
	}
	return Result{Map: m, Rooms: rooms, Start: start}
}

func carveH(b *grid.Batch, m *grid.TileMap, x0, x1, y int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		if m.At(x, y) == grid.Rock || m.At(x, y) == grid.GoldVein {
			b.Set(x, y, grid.Ground)
		}
	}
}

func carveV(b *grid.Batch, m *grid.TileMap, y0, y1, x int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		if m.At(x, y) == grid.Rock || m.At(x, y) == grid.GoldVein {
			b.Set(x, y, grid.Ground)
		}
	}
}

func nextToFloor(m *grid.TileMap, x, y int) bool {
	return m.At(x+1, y).Walkable() || m.At(x-1, y).Walkable() ||
		m.At(x, y+1).Walkable() || m.At(x, y-1).Walkable()
}

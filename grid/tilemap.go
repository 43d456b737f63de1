package grid

import (
	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/event"
)

// TileType classifies a cell of the dungeon
type TileType uint8

const (
	Rock     TileType = iota // undug solid stone
	Wall                     // constructed blocking structure
	Ground                   // dug open floor
	Room                     // claimed room floor
	GoldVein                 // exposed vein, walkable for mining access
)

func (t TileType) Walkable() bool {
	switch t {
	case Ground, Room, GoldVein:
		return true
	}
	return false
}

// Cost returns the base traversal multiplier for the type.
// Vein floors are rubble strewn and slightly slower to cross
func (t TileType) Cost() float64 {
	if t == GoldVein {
		return 1.5
	}
	return 1.0
}

func (t TileType) String() string {
	switch t {
	case Rock:
		return "rock"
	case Wall:
		return "wall"
	case Ground:
		return "ground"
	case Room:
		return "room"
	case GoldVein:
		return "vein"
	}
	return "unknown"
}

// ChangeFunc observes committed topology mutations.
// The slice is only valid for the duration of the call
type ChangeFunc func(changed []core.Point)

// TileMap is the mutable world grid backing the Oracle view.
// All mutation goes through Batch so that any number of cell edits
// in one frame bump the version exactly once
type TileMap struct {
	width, height int
	tiles         []TileType
	costs         []float64 // per-cell override, 0 means use type cost
	version       uint64
	listeners     []ChangeFunc
}

// NewTileMap creates a map with every cell set to fill
func NewTileMap(width, height int, fill TileType) *TileMap {
	t := &TileMap{
		width:   width,
		height:  height,
		tiles:   make([]TileType, width*height),
		version: 1,
	}
	if fill != Rock {
		for i := range t.tiles {
			t.tiles[i] = fill
		}
	}
	return t
}

// --- Oracle implementation ---

func (t *TileMap) Size() (int, int) { return t.width, t.height }

func (t *TileMap) InBounds(x, y int) bool {
	return x >= 0 && x < t.width && y >= 0 && y < t.height
}

func (t *TileMap) Walkable(x, y int) bool {
	if !t.InBounds(x, y) {
		return false
	}
	return t.tiles[y*t.width+x].Walkable()
}

func (t *TileMap) Cost(x, y int) float64 {
	if !t.InBounds(x, y) {
		return 0
	}
	idx := y*t.width + x
	if t.costs != nil && t.costs[idx] > 0 {
		return t.costs[idx]
	}
	return t.tiles[idx].Cost()
}

func (t *TileMap) Version() uint64 { return t.version }

// --- inspection ---

// At returns the tile type, Rock for out-of-bounds cells
func (t *TileMap) At(x, y int) TileType {
	if !t.InBounds(x, y) {
		return Rock
	}
	return t.tiles[y*t.width+x]
}

// OnChange registers a listener invoked after each committed batch
func (t *TileMap) OnChange(fn ChangeFunc) {
	t.listeners = append(t.listeners, fn)
}

// AnnounceTopology publishes a TopologyChanged event for every
// committed batch. The event carries the first changed cell
func (t *TileMap) AnnounceTopology(q *event.Queue) {
	t.OnChange(func(changed []core.Point) {
		q.Push(event.Event{Type: event.TopologyChanged, Cell: changed[0]})
	})
}

// --- mutation ---

// Batch collects tile edits and applies them atomically with respect
// to the version counter. A batch that changes nothing does not bump
// the version
type Batch struct {
	m       *TileMap
	changed []core.Point
}

// Batch starts a mutation batch
func (t *TileMap) Batch() *Batch {
	return &Batch{m: t}
}

// Set overwrites the tile type, recording the cell if walkability or
// cost actually changed
func (b *Batch) Set(x, y int, tt TileType) {
	if !b.m.InBounds(x, y) {
		return
	}
	idx := y*b.m.width + x
	if b.m.tiles[idx] == tt {
		return
	}
	b.m.tiles[idx] = tt
	b.changed = append(b.changed, core.Point{X: x, Y: y})
}

// SetCost overrides the per-cell traversal cost, c <= 0 restores the
// type default. Overrides are floored at 1: the search heuristic
// assumes no cell is cheaper than unit distance
func (b *Batch) SetCost(x, y int, c float64) {
	if !b.m.InBounds(x, y) {
		return
	}
	if c < 0 {
		c = 0
	} else if c > 0 && c < 1 {
		c = 1
	}
	if b.m.costs == nil {
		if c == 0 {
			return
		}
		b.m.costs = make([]float64, b.m.width*b.m.height)
	}
	idx := y*b.m.width + x
	if b.m.costs[idx] == c {
		return
	}
	b.m.costs[idx] = c
	b.changed = append(b.changed, core.Point{X: x, Y: y})
}

// Dig opens a Rock or GoldVein cell into floor, returns false for
// any other tile
func (b *Batch) Dig(x, y int) bool {
	switch b.m.At(x, y) {
	case Rock:
		b.Set(x, y, Ground)
	case GoldVein:
		b.Set(x, y, Ground)
	default:
		return false
	}
	return true
}

// Build places a wall on open floor, returns false if the cell is
// not open
func (b *Batch) Build(x, y int) bool {
	if !b.m.At(x, y).Walkable() {
		return false
	}
	b.Set(x, y, Wall)
	return true
}

// Commit bumps the version once if anything changed and notifies
// listeners. The batch must not be reused after Commit
func (b *Batch) Commit() {
	if len(b.changed) == 0 {
		return
	}
	b.m.version++
	for _, fn := range b.m.listeners {
		fn(b.changed)
	}
	b.changed = nil
}

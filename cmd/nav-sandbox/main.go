// nav-sandbox renders a generated dungeon and a handful of agents in
// the terminal. Left click sends every agent to the clicked cell,
// right click digs or builds to change topology while they walk.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/dungeon-nav/core"
	"github.com/lixenwraith/dungeon-nav/event"
	"github.com/lixenwraith/dungeon-nav/grid"
	"github.com/lixenwraith/dungeon-nav/mapgen"
	"github.com/lixenwraith/dungeon-nav/movement"
	"github.com/lixenwraith/dungeon-nav/navigation"
	"github.com/lixenwraith/dungeon-nav/spatial"
	"github.com/lixenwraith/dungeon-nav/status"
)

const frameRate = 30

var (
	styleRock   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleFloor  = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleRoom   = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleVein   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAgent  = tcell.StyleDefault.Foreground(tcell.ColorLime)
	stylePath   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStuck  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type sandbox struct {
	tiles    *grid.TileMap
	planner  *navigation.Planner
	exec     *movement.Executor
	index    *spatial.Grid
	queue    *event.Queue
	registry *status.Registry
	rooms    []core.Area
	rng      *rand.Rand
	nextID   uint64
	lastMsg  string
}

func main() {
	width := flag.Int("width", 72, "dungeon width in cells")
	height := flag.Int("height", 40, "dungeon height in cells")
	agents := flag.Int("agents", 6, "initial agent count")
	seed := flag.Int64("seed", time.Now().UnixNano(), "generation seed")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen init: %v", err)
	}
	screen.EnableMouse()
	defer screen.Fini()

	sb := newSandbox(*width, *height, *seed)
	for i := 0; i < *agents; i++ {
		sb.spawnAgent()
	}
	sb.run(screen)
}

func newSandbox(width, height int, seed int64) *sandbox {
	gen := mapgen.Generate(mapgen.Config{
		Width:     width,
		Height:    height,
		VeinCount: 12,
		Seed:      seed,
	})
	registry := status.NewRegistry()
	index := spatial.NewGrid(width, height)
	queue := event.NewQueue()
	planner := navigation.NewPlanner(gen.Map, navigation.Conn8, registry)
	exec := movement.NewExecutor(gen.Map, planner, index, queue, registry)
	gen.Map.AnnounceTopology(queue)

	return &sandbox{
		tiles:    gen.Map,
		planner:  planner,
		exec:     exec,
		index:    index,
		queue:    queue,
		registry: registry,
		rooms:    gen.Rooms,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (sb *sandbox) spawnAgent() {
	if len(sb.rooms) == 0 {
		return
	}
	room := sb.rooms[sb.rng.Intn(len(sb.rooms))]
	cell := core.Point{
		X: room.X + sb.rng.Intn(room.Width),
		Y: room.Y + sb.rng.Intn(room.Height),
	}
	sb.nextID++
	_, err := sb.exec.Spawn(sb.nextID, cell.Center(), 6, navigation.ClassWorker)
	if err != nil {
		sb.lastMsg = fmt.Sprintf("spawn failed: %v", err)
	}
}

func (sb *sandbox) run(screen tcell.Screen) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !sb.handle(ev, screen) {
				return
			}
		case <-ticker.C:
			sb.exec.Update(1.0 / frameRate)
			sb.drainEvents()
			sb.draw(screen)
		}
	}
}

func (sb *sandbox) handle(ev tcell.Event, screen tcell.Screen) bool {
	switch tev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case tev.Key() == tcell.KeyEscape || tev.Rune() == 'q':
			return false
		case tev.Rune() == 'a':
			sb.spawnAgent()
		}
	case *tcell.EventResize:
		screen.Sync()
	case *tcell.EventMouse:
		x, y := tev.Position()
		switch tev.Buttons() {
		case tcell.Button1:
			sb.sendAll(core.Point{X: x, Y: y})
		case tcell.Button2:
			sb.toggleTile(x, y)
		}
	}
	return true
}

// sendAll orders every agent to the cell
func (sb *sandbox) sendAll(goal core.Point) {
	if !sb.tiles.Walkable(goal.X, goal.Y) {
		sb.lastMsg = fmt.Sprintf("(%d,%d) not walkable", goal.X, goal.Y)
		return
	}
	target := goal.Center()
	for id := uint64(1); id <= sb.nextID; id++ {
		if sb.exec.Agent(id) == nil {
			continue
		}
		if err := sb.exec.MoveTo(id, target, 0, 0, movement.ModeOneShot); err != nil {
			sb.lastMsg = fmt.Sprintf("agent %d: %v", id, err)
		}
	}
}

// toggleTile digs rock or builds a wall on floor
func (sb *sandbox) toggleTile(x, y int) {
	b := sb.tiles.Batch()
	if sb.tiles.Walkable(x, y) {
		b.Build(x, y)
	} else {
		b.Dig(x, y)
	}
	b.Commit()
}

func (sb *sandbox) drainEvents() {
	sb.queue.Drain(func(ev event.Event) {
		switch ev.Type {
		case event.Blocked, event.PathFailed:
			sb.lastMsg = fmt.Sprintf("agent %d %s at (%d,%d)", ev.Agent, ev.Type, ev.Cell.X, ev.Cell.Y)
		case event.TopologyChanged:
			sb.lastMsg = fmt.Sprintf("topology v%d at (%d,%d)", sb.tiles.Version(), ev.Cell.X, ev.Cell.Y)
		}
	})
}

func (sb *sandbox) draw(screen tcell.Screen) {
	screen.Clear()
	w, h := sb.tiles.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ch, style := tileGlyph(sb.tiles.At(x, y))
			screen.SetContent(x, y, ch, nil, style)
		}
	}
	// remaining corridors under the agents
	for id := uint64(1); id <= sb.nextID; id++ {
		a := sb.exec.Agent(id)
		if a == nil || a.State() != movement.StateFollowing {
			continue
		}
		for _, wp := range a.Waypoints() {
			c := core.CellOf(wp)
			screen.SetContent(c.X, c.Y, '*', nil, stylePath)
		}
		goal := core.CellOf(a.Target())
		screen.SetContent(goal.X, goal.Y, '+', nil, stylePath)
	}
	for id := uint64(1); id <= sb.nextID; id++ {
		a := sb.exec.Agent(id)
		if a == nil {
			continue
		}
		cell := a.Cell()
		style := styleAgent
		if a.State() == movement.StateBlocked {
			style = styleStuck
		}
		screen.SetContent(cell.X, cell.Y, '@', nil, style)
	}

	moving := sb.registry.Ints.Get("move_active").Load()
	blocked := sb.registry.Ints.Get("move_blocked").Load()
	hits := sb.registry.Ints.Get("nav_cache_hits").Load()
	line := fmt.Sprintf("agents %d  moving %d  blocked %d  cache hits %d  %s",
		sb.registry.Ints.Get("move_agents").Load(), moving, blocked, hits, sb.lastMsg)
	for i, r := range line {
		screen.SetContent(i, h, r, nil, styleStatus)
	}
	screen.Show()
}

func tileGlyph(t grid.TileType) (rune, tcell.Style) {
	switch t {
	case grid.Rock:
		return '#', styleRock
	case grid.Wall:
		return '█', styleWall
	case grid.Ground:
		return '·', styleFloor
	case grid.Room:
		return '.', styleRoom
	case grid.GoldVein:
		return '$', styleVein
	}
	return '?', styleRock
}

package main

import (
	"math/rand"

	"go.uber.org/zap"
)

// ViewportBuffer widens frame culling so entities slide in instead of popping.
const ViewportBuffer = 100.0

// WorldOptions sizes a world and picks its boundary policy.
type WorldOptions struct {
	Width          float64
	Height         float64
	ViewportWidth  float64
	ViewportHeight float64
	Boundary       Boundary
	// RemoteFood hands food ownership to the server: no local spawning and no
	// death scatter.
	RemoteFood bool
}

// World holds all client-side game state. It is owned by the loop goroutine;
// nothing in here is safe for concurrent use.
type World struct {
	Width, Height float64
	ViewW, ViewH  float64
	Boundary      Boundary
	LocalID       string

	Snakes map[string]*Snake
	Food   *FoodSet
	Grid   *SpatialGrid
	Camera Camera

	Score    int
	GameOver bool
	Tick     int64

	order      []string // snake ids in insertion order
	remoteFood bool
	bots       *BotManager
	rng        *rand.Rand
	log        *zap.SugaredLogger
}

// NewWorld creates an empty world. localID names the snake driven by the keyboard.
func NewWorld(opts WorldOptions, localID string, rng *rand.Rand, log *zap.SugaredLogger) *World {
	w := &World{
		Width:      opts.Width,
		Height:     opts.Height,
		ViewW:      opts.ViewportWidth,
		ViewH:      opts.ViewportHeight,
		Boundary:   opts.Boundary,
		LocalID:    localID,
		Snakes:     make(map[string]*Snake),
		Food:       NewFoodSet(),
		Grid:       NewSpatialGrid(GridCellSize),
		remoteFood: opts.RemoteFood,
		rng:        rng,
		log:        log,
	}
	w.bots = NewBotManager(w)
	return w
}

// Center returns the middle of the map.
func (w *World) Center() Point {
	return Point{X: w.Width / 2, Y: w.Height / 2}
}

// SpawnLocal creates the keyboard-driven snake at the map centre.
func (w *World) SpawnLocal(color string) *Snake {
	s := NewSnake(w.LocalID, ControlLocal, w.Center(), color)
	w.AddSnake(s)
	w.Camera.CenterOn(s.Head(), w.ViewW, w.ViewH)
	return s
}

// SpawnBots adds n AI opponents.
func (w *World) SpawnBots(n int) {
	for i := 0; i < n; i++ {
		w.bots.SpawnBot()
	}
}

// Bots returns the AI manager.
func (w *World) Bots() *BotManager {
	return w.bots
}

// Local returns the keyboard-driven snake, or nil before it exists.
func (w *World) Local() *Snake {
	return w.Snakes[w.LocalID]
}

// AddSnake adds a snake, replacing any snake with the same id.
func (w *World) AddSnake(s *Snake) {
	if _, exists := w.Snakes[s.ID]; !exists {
		w.order = append(w.order, s.ID)
	}
	w.Snakes[s.ID] = s
}

// RemoveSnake removes a snake. Unknown ids are a no-op.
func (w *World) RemoveSnake(id string) bool {
	if _, exists := w.Snakes[id]; !exists {
		return false
	}
	delete(w.Snakes, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// SnakesInOrder returns every snake in insertion order.
func (w *World) SnakesInOrder() []*Snake {
	list := make([]*Snake, 0, len(w.order))
	for _, id := range w.order {
		list = append(list, w.Snakes[id])
	}
	return list
}

// simulated returns the living snakes this client moves itself.
func (w *World) simulated() []*Snake {
	list := make([]*Snake, 0, len(w.order))
	for _, id := range w.order {
		s := w.Snakes[id]
		if s.Control != ControlRemote && !s.Dead {
			list = append(list, s)
		}
	}
	return list
}

// OwnsFood reports whether food is spawned and scattered locally.
func (w *World) OwnsFood() bool {
	return !w.remoteFood
}

// SeedFood spawns n random food items.
func (w *World) SeedFood(n int) {
	for i := 0; i < n; i++ {
		w.Food.Add(NewFood(w.rng, w.Width, w.Height))
	}
}

// SpawnFood adds one random food item unless the cap is reached or food is
// server-owned.
func (w *World) SpawnFood() bool {
	if w.remoteFood || w.Food.Len() >= SoloMaxFood {
		return false
	}
	w.Food.Add(NewFood(w.rng, w.Width, w.Height))
	return true
}

// RebuildGrid rebuilds the spatial grid from current state
func (w *World) RebuildGrid() {
	w.Grid.Clear()
	for _, f := range w.Food.Items() {
		w.Grid.InsertFood(f)
	}
	for _, s := range w.Snakes {
		if !s.Dead {
			w.Grid.InsertSnakeBody(s)
		}
	}
}

// nearWall reports whether p lies within margin of any map edge.
func (w *World) nearWall(p Point, margin float64) bool {
	return p.X < margin || p.X > w.Width-margin || p.Y < margin || p.Y > w.Height-margin
}

// Restart resets local simulation state: snake, score and game over.
func (w *World) Restart() {
	local := w.Local()
	if local == nil {
		return
	}
	local.Reset(w.Center())
	w.Score = 0
	w.GameOver = false
	w.Camera.CenterOn(local.Head(), w.ViewW, w.ViewH)
}

// Frame returns the viewport-culled drawable state.
func (w *World) Frame() FrameMsg {
	w.RebuildGrid()

	minX := w.Camera.X - ViewportBuffer
	minY := w.Camera.Y - ViewportBuffer
	maxX := w.Camera.X + w.ViewW + ViewportBuffer
	maxY := w.Camera.Y + w.ViewH + ViewportBuffer

	snakes := []SnakeView{}
	for _, s := range w.SnakesInOrder() {
		if s.Dead {
			continue
		}
		// Check if ANY segment is in viewport (not just head)
		for _, seg := range s.Segments {
			if seg.X >= minX && seg.X <= maxX && seg.Y >= minY && seg.Y <= maxY {
				snakes = append(snakes, s.View())
				break
			}
		}
	}

	gameOver := 0
	if w.GameOver {
		gameOver = 1
	}
	return FrameMsg{
		Type:     ViewMsgFrame,
		Tick:     w.Tick,
		Camera:   [2]float64{roundTo1(w.Camera.X), roundTo1(w.Camera.Y)},
		Snakes:   snakes,
		Food:     w.Grid.FoodInViewport(w.Food, minX, minY, maxX-minX, maxY-minY),
		Score:    w.Score,
		GameOver: gameOver,
	}
}

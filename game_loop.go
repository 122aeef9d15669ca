package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrPeerClosed is returned by Loop.Run when the server link goes away.
var ErrPeerClosed = errors.New("server connection closed")

// StepResult reports what one simulation step did.
type StepResult struct {
	Stepped   bool     // false when there is no local snake or the game is over
	Eaten     []string // food ids consumed by the local snake
	Deaths    []string // ids of snakes killed this step
	LocalDied bool
}

// Step executes a single simulation update:
// steer → integrate → collisions → deaths → consumption → camera.
func (w *World) Step(in InputState, now time.Time) StepResult {
	var res StepResult
	local := w.Local()
	if local == nil || w.GameOver {
		return res
	}
	res.Stepped = true
	w.Tick++

	// 1. Steering: keys for the local snake, AI decisions for bots.
	if !local.Dead {
		local.Steer(in)
	}
	w.bots.Update(now)

	// 2. Motion integration and trimming.
	for _, s := range w.simulated() {
		s.Integrate(w.Width, w.Height, w.Boundary)
	}

	// 3. Rebuild spatial grid after movement
	w.RebuildGrid()

	// 4. Collision detection, then deaths.
	res.Deaths = w.detectCollisions()
	for _, id := range res.Deaths {
		snake := w.Snakes[id]
		if w.remoteFood {
			snake.Dead = true
		} else {
			dropped := snake.DropFood(w.rng)
			for _, f := range dropped {
				w.Food.Add(f)
			}
		}
		switch snake.Control {
		case ControlAI:
			w.bots.Replace(id)
		case ControlLocal:
			w.GameOver = true
			res.LocalDied = true
		}
		w.log.Debugw("snake died", "id", id, "control", snake.Control.String(), "length", len(snake.Segments))
	}

	// 5. Food consumption.
	res.Eaten = w.collectFood()

	// 6. Camera follows the local head.
	if !local.Dead {
		w.Camera.Follow(local.Head(), w.ViewW, w.ViewH, CameraSmoothing)
	}
	return res
}

// detectCollisions returns the ids of simulated snakes that hit a wall
// (wall boundary only) or another living snake's body this tick.
func (w *World) detectCollisions() []string {
	var deaths []string
	for _, snake := range w.simulated() {
		head := snake.Head()

		if w.Boundary == BoundaryWall && w.nearWall(head, WallMargin) {
			deaths = append(deaths, snake.ID)
			continue
		}

		radius := AIHitRadius
		if snake.Control == ControlLocal {
			radius = PlayerHitRadius
		}
		if w.hitsBody(snake, head, radius) {
			deaths = append(deaths, snake.ID)
		}
	}
	return deaths
}

// hitsBody reports whether head is closer than radius to any collidable
// segment pair of another living snake.
func (w *World) hitsBody(snake *Snake, head Point, radius float64) bool {
	for _, pair := range w.Grid.NearbySnakeBody(head.X, head.Y, radius, snake.ID) {
		if other := w.Snakes[pair.snakeID]; other != nil && !other.Dead {
			return true
		}
	}
	return false
}

// collectFood lets each living simulated snake eat food closer than
// speed + food size to its head. Returns ids eaten by the local snake.
func (w *World) collectFood() []string {
	var eaten []string
	growth := w.Boundary.Growth()
	for _, snake := range w.simulated() {
		head := snake.Head()
		nearFoodIDs := w.Grid.NearbyFood(head.X, head.Y, snake.Speed+w.Grid.MaxFoodSize())
		for _, fid := range nearFoodIDs {
			food, ok := w.Food.Get(fid)
			if !ok {
				continue
			}
			if food.DistanceTo(head) >= snake.Speed+food.Size {
				continue
			}
			w.Food.Remove(fid)
			snake.Grow(growth)
			if snake.Control == ControlLocal {
				w.Score += growth
				eaten = append(eaten, fid)
			}
		}
	}
	return eaten
}

// Renderer is the presentation boundary: it receives one frame per tick.
type Renderer interface {
	Render(frame FrameMsg)
}

// Loop drives the world at a fixed frame rate.
type Loop struct {
	world    *World
	keys     *KeyState
	peer     Peer // nil in solo mode
	renderer Renderer
	metrics  *Metrics
	log      *zap.SugaredLogger

	restart    chan struct{}
	peerClosed bool
}

// NewLoop creates a loop. peer may be nil; the loop owns it and closes it
// when Run returns.
func NewLoop(world *World, keys *KeyState, peer Peer, renderer Renderer, metrics *Metrics, log *zap.SugaredLogger) *Loop {
	return &Loop{
		world:    world,
		keys:     keys,
		peer:     peer,
		renderer: renderer,
		metrics:  metrics,
		log:      log,
		restart:  make(chan struct{}, 1),
	}
}

// RequestRestart asks the loop to reset local state on its next tick.
// Safe to call from any goroutine.
func (l *Loop) RequestRestart() {
	select {
	case l.restart <- struct{}{}:
	default:
	}
}

// Run starts the fixed-timestep loop and blocks until ctx is cancelled or the
// server link closes. Tickers and the peer are released on return.
func (l *Loop) Run(ctx context.Context) (err error) {
	frames := time.NewTicker(time.Second / FrameRate)
	defer frames.Stop()

	var spawnC <-chan time.Time
	if l.world.OwnsFood() {
		spawn := time.NewTicker(FoodSpawnInterval)
		defer spawn.Stop()
		spawnC = spawn.C
	}

	if l.peer != nil {
		defer func() {
			err = multierr.Append(err, l.peer.Close())
		}()
	}

	l.log.Infof("game loop started at %d frames/sec", FrameRate)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("game loop stopped")
			return nil
		case now := <-frames.C:
			l.Tick(now)
			if l.peerClosed {
				if cause := l.peer.Err(); cause != nil {
					return fmt.Errorf("%w: %v", ErrPeerClosed, cause)
				}
				return ErrPeerClosed
			}
		case <-spawnC:
			l.world.SpawnFood()
		}
	}
}

// Tick runs one frame: remote events → restart → input → step → intents → render.
func (l *Loop) Tick(now time.Time) {
	start := time.Now()
	l.drainPeer()
	l.drainRestart()

	w := l.world
	if w.Local() == nil {
		return
	}

	res := w.Step(l.keys.Sample(), now)
	if res.Stepped {
		l.metrics.AddDeaths(len(res.Deaths))
		l.metrics.AddFoodEaten(len(res.Eaten))
		l.sendIntents(res)
		if res.LocalDied {
			l.log.Infow("game over", "score", w.Score, "tick", w.Tick)
		}
	}

	l.renderer.Render(w.Frame())
	l.metrics.IncFrames()
	l.metrics.AddTick(time.Since(start).Nanoseconds())
}

// sendIntents pushes the local snake state and any eaten food to the server.
// Send failures are logged and otherwise absorbed.
func (l *Loop) sendIntents(res StepResult) {
	if l.peer == nil {
		return
	}
	local := l.world.Local()
	if local != nil && !local.Dead {
		if err := l.peer.SendMovement(local.Movement()); err != nil {
			l.metrics.IncSendErrors()
			l.log.Debugw("send movement", "err", err)
		}
	}
	for _, id := range res.Eaten {
		if err := l.peer.SendEatFood(id); err != nil {
			l.metrics.IncSendErrors()
			l.log.Debugw("send eatFood", "food", id, "err", err)
		}
	}
}

// drainPeer applies every remote event queued since the last tick.
func (l *Loop) drainPeer() {
	if l.peer == nil || l.peerClosed {
		return
	}
	events := l.peer.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				l.peerClosed = true
				return
			}
			if l.world.ApplyRemote(ev) {
				l.metrics.IncRemoteApplied()
			} else {
				l.metrics.IncRemoteIgnored()
				l.log.Debugw("ignored server message", "type", ev.Type, "id", ev.ID)
			}
		default:
			return
		}
	}
}

func (l *Loop) drainRestart() {
	select {
	case <-l.restart:
		l.world.Restart()
		l.keys.Clear()
		l.metrics.IncRestarts()
		l.log.Info("restarted")
	default:
	}
}

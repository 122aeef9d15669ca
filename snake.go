package main

import (
	"math"
	"math/rand"
)

// Control selects what drives a snake each tick.
type Control int

const (
	ControlLocal  Control = iota // held keys from the presentation layer
	ControlAI                    // AIController
	ControlRemote                // mirror of a remote player; never simulated
)

func (c Control) String() string {
	switch c {
	case ControlLocal:
		return "local"
	case ControlAI:
		return "ai"
	case ControlRemote:
		return "remote"
	}
	return "unknown"
}

// Boundary is the policy applied when a head reaches the map edge.
type Boundary string

const (
	BoundaryWrap Boundary = "wrap" // teleport to the opposite edge
	BoundaryWall Boundary = "wall" // edges are fatal
)

// Growth returns how much target length one food is worth under the policy.
func (b Boundary) Growth() int {
	if b == BoundaryWrap {
		return GrowthWrap
	}
	return GrowthWall
}

// Snake represents one snake in the world, whoever drives it.
type Snake struct {
	ID           string
	Control      Control
	Segments     []Point // index 0 = head
	Velocity     Point
	Speed        float64
	TargetLength int
	Angle        float64 // radians, direction of movement
	Dead         bool
	BaseColor    string
	TailColor    string

	ai *AIController // set only for ControlAI
}

// NewSnake creates a snake with a single segment at pos.
func NewSnake(id string, control Control, pos Point, color string) *Snake {
	speed := SnakeSpeed
	if control == ControlAI {
		speed = AISnakeSpeed
	}
	return &Snake{
		ID:           id,
		Control:      control,
		Segments:     []Point{pos},
		Speed:        speed,
		TargetLength: SnakeInitLength,
		BaseColor:    color,
		TailColor:    SnakeTailColor,
	}
}

// NewRemoteSnake creates a mirror for a remote player snapshot.
func NewRemoteSnake(p PlayerState) *Snake {
	s := NewSnake(p.ID, ControlRemote, p.Position, p.Color)
	s.ApplySnapshot(p)
	return s
}

// Head returns the head segment of the snake
func (s *Snake) Head() Point {
	return s.Segments[0]
}

// Steer snaps the heading to the held-key direction. No keys keeps the heading.
func (s *Snake) Steer(in InputState) {
	dx, dy := in.Direction()
	if dx != 0 || dy != 0 {
		s.Angle = math.Atan2(dy, dx)
	}
}

// TurnToward turns the heading a fraction rate of the shortest way to angle.
func (s *Snake) TurnToward(angle, rate float64) {
	diff := NormalizeAngle(angle - s.Angle)
	s.Angle = NormalizeAngle(s.Angle + diff*rate)
}

// Integrate advances the snake one tick: eases velocity toward the heading,
// prepends the new head and trims the tail to TargetLength.
// Under BoundaryWrap the head teleports across the edges of the
// width x height map and trailing segments are shifted to stay contiguous.
func (s *Snake) Integrate(width, height float64, policy Boundary) {
	targetVX := math.Cos(s.Angle) * s.Speed
	targetVY := math.Sin(s.Angle) * s.Speed
	s.Velocity.X += (targetVX - s.Velocity.X) * VelocityBlend
	s.Velocity.Y += (targetVY - s.Velocity.Y) * VelocityBlend

	head := s.Head().Add(s.Velocity)
	if policy == BoundaryWrap {
		if head.X < 0 {
			head.X = width
		} else if head.X > width {
			head.X = 0
		}
		if head.Y < 0 {
			head.Y = height
		} else if head.Y > height {
			head.Y = 0
		}
	}

	s.Segments = append(s.Segments, Point{})
	copy(s.Segments[1:], s.Segments)
	s.Segments[0] = head

	if policy == BoundaryWrap {
		s.joinSeam(width, height)
	}
	s.trim()
}

// joinSeam shifts each segment by a full map dimension wherever the gap to the
// previous one exceeds half the map, so the body never spans the seam.
func (s *Snake) joinSeam(width, height float64) {
	for i := 1; i < len(s.Segments); i++ {
		dx := s.Segments[i-1].X - s.Segments[i].X
		dy := s.Segments[i-1].Y - s.Segments[i].Y
		if math.Abs(dx) > width/2 {
			if dx > 0 {
				s.Segments[i].X += width
			} else {
				s.Segments[i].X -= width
			}
		}
		if math.Abs(dy) > height/2 {
			if dy > 0 {
				s.Segments[i].Y += height
			} else {
				s.Segments[i].Y -= height
			}
		}
	}
}

func (s *Snake) trim() {
	limit := s.TargetLength
	if limit < 1 {
		limit = 1
	}
	if len(s.Segments) > limit {
		s.Segments = s.Segments[:limit]
	}
}

// Grow raises the target length; the body catches up one segment per tick.
func (s *Snake) Grow(amount int) {
	s.TargetLength += amount
}

// DropFood marks the snake dead and turns every DeathFoodEvery-th segment into food.
func (s *Snake) DropFood(rng *rand.Rand) []*Food {
	s.Dead = true
	food := make([]*Food, 0, len(s.Segments)/DeathFoodEvery+1)
	for i := 0; i < len(s.Segments); i += DeathFoodEvery {
		food = append(food, NewFoodAt(rng, s.Segments[i]))
	}
	return food
}

// Reset puts the snake back at pos with its initial state (restart action).
func (s *Snake) Reset(pos Point) {
	s.Segments = []Point{pos}
	s.Velocity = Point{}
	s.Angle = 0
	s.Dead = false
	s.TargetLength = SnakeInitLength
}

// ApplySnapshot overwrites the mirror with a full remote snapshot.
func (s *Snake) ApplySnapshot(p PlayerState) {
	s.ApplyMove(p)
	s.Velocity = p.Velocity
	s.Dead = p.IsDead
	if p.Color != "" {
		s.BaseColor = p.Color
	}
}

// ApplyMove overwrites segments, angle and length from a playerMoved update.
// An empty segment list falls back to the snapshot position.
func (s *Snake) ApplyMove(p PlayerState) {
	if len(p.Segments) > 0 {
		s.Segments = append(s.Segments[:0:0], p.Segments...)
	} else {
		s.Segments = []Point{p.Position}
	}
	s.Angle = p.Angle
	if p.Length > 0 {
		s.TargetLength = p.Length
	}
}

// Movement returns the playerMovement payload for this snake.
func (s *Snake) Movement() PlayerMovement {
	segs := make([]Point, len(s.Segments))
	copy(segs, s.Segments)
	return PlayerMovement{
		Position: s.Head(),
		Angle:    s.Angle,
		Segments: segs,
		Length:   s.TargetLength,
	}
}

// View converts the snake to the compact viewer form.
func (s *Snake) View() SnakeView {
	pairs := make([][2]float64, len(s.Segments))
	for i, p := range s.Segments {
		pairs[i] = [2]float64{roundTo1(p.X), roundTo1(p.Y)}
	}
	dead := 0
	if s.Dead {
		dead = 1
	}
	return SnakeView{
		ID:        s.ID,
		Segments:  pairs,
		Angle:     s.Angle,
		BaseColor: s.BaseColor,
		TailColor: s.TailColor,
		Dead:      dead,
	}
}

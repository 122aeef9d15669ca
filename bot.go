package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Behavior is what an AI snake chose to do on its last tick.
type Behavior int

const (
	BehaviorForage Behavior = iota
	BehaviorAttack
	BehaviorWander
	BehaviorAvoidWall
)

func (b Behavior) String() string {
	switch b {
	case BehaviorForage:
		return "forage"
	case BehaviorAttack:
		return "attack"
	case BehaviorWander:
		return "wander"
	case BehaviorAvoidWall:
		return "avoid-wall"
	}
	return "unknown"
}

// AIController is the steering brain embedded in an AI snake.
type AIController struct {
	Predator       bool    // wander instead of forage when not attacking
	Aggressiveness float64 // scales the engagement range, rolled at spawn
	TargetFood     string  // id of the food being foraged, "" = none
	Behavior       Behavior

	wanderPhase float64 // per-snake offset so predators don't wander in lockstep
}

// NewAIController rolls a fresh personality.
func NewAIController(rng *rand.Rand) *AIController {
	return &AIController{
		Predator:       rng.Float64() < AIPredatorChance,
		Aggressiveness: 0.3 + rng.Float64()*0.7,
		wanderPhase:    rng.Float64() * 2 * math.Pi,
	}
}

// Decide picks this tick's steering angle for s. Priorities, first match wins:
// wall avoidance (wall boundary only), attack, wander (predators), forage, wander.
// A small random jitter is added to the result.
func (ai *AIController) Decide(w *World, s *Snake, now time.Time) float64 {
	head := s.Head()
	var angle float64

	switch {
	case w.Boundary == BoundaryWall && w.nearWall(head, AIWallBuffer):
		ai.Behavior = BehaviorAvoidWall
		angle = math.Atan2(w.Height/2-head.Y, w.Width/2-head.X)
	default:
		if rival := ai.pickRival(w, s); rival != nil {
			ai.Behavior = BehaviorAttack
			intercept := rival.Head().Add(Point{
				X: rival.Velocity.X * AILeadTicks,
				Y: rival.Velocity.Y * AILeadTicks,
			})
			angle = math.Atan2(intercept.Y-head.Y, intercept.X-head.X)
			break
		}
		if !ai.Predator {
			if f := ai.forageTarget(w, head); f != nil {
				ai.Behavior = BehaviorForage
				angle = math.Atan2(f.Position.Y-head.Y, f.Position.X-head.X)
				break
			}
		}
		ai.Behavior = BehaviorWander
		angle = ai.wanderAngle(now)
	}

	return angle + (w.rng.Float64()*2-1)*AIJitter
}

// pickRival returns the best rival to attack, or nil. Only rivals no longer
// than s qualify; distance is scaled down for shorter rivals and up for equal
// ones. The pick must sit inside the engagement range scaled by aggressiveness.
func (ai *AIController) pickRival(w *World, s *Snake) *Snake {
	head := s.Head()
	var best *Snake
	bestScore := math.MaxFloat64
	for _, other := range w.SnakesInOrder() {
		if other.ID == s.ID || other.Dead || other.TargetLength > s.TargetLength {
			continue
		}
		score := Distance(head, other.Head())
		if other.TargetLength < s.TargetLength {
			score *= AIShorterBias
		} else {
			score *= AIEqualBias
		}
		if score < bestScore {
			bestScore = score
			best = other
		}
	}
	if best == nil || bestScore > AIEngageRange*ai.Aggressiveness {
		return nil
	}
	return best
}

// forageTarget keeps the current food target until it is gone or within
// AIRetargetDistance, then re-selects the nearest food.
func (ai *AIController) forageTarget(w *World, head Point) *Food {
	if ai.TargetFood != "" {
		if f, ok := w.Food.Get(ai.TargetFood); ok && f.DistanceTo(head) >= AIRetargetDistance {
			return f
		}
	}
	ai.TargetFood = ""

	var best *Food
	bestDist := math.MaxFloat64
	for _, f := range w.Food.Items() {
		if d := f.DistanceTo(head); d < bestDist {
			bestDist = d
			best = f
		}
	}
	if best != nil {
		ai.TargetFood = best.ID
	}
	return best
}

// wanderAngle is a slowly rotating heading driven by wall-clock time.
func (ai *AIController) wanderAngle(now time.Time) float64 {
	secs := float64(now.UnixNano()) / float64(time.Second)
	return NormalizeAngle(ai.wanderPhase + math.Mod(secs*AIWanderRate, 2*math.Pi))
}

// BotManager keeps the active AI snakes of a world.
type BotManager struct {
	world *World
	ids   []string // spawn order, for deterministic updates
}

// NewBotManager creates a BotManager bound to the given world
func NewBotManager(world *World) *BotManager {
	return &BotManager{world: world}
}

// SpawnBot creates a new AI snake away from the walls and registers it in the world.
func (bm *BotManager) SpawnBot() *Snake {
	w := bm.world
	pos := Point{
		X: AIWallBuffer*2 + w.rng.Float64()*math.Max(w.Width-AIWallBuffer*4, 0),
		Y: AIWallBuffer*2 + w.rng.Float64()*math.Max(w.Height-AIWallBuffer*4, 0),
	}
	color := PlayerColors[w.rng.Intn(len(PlayerColors))]

	snake := NewSnake("ai-"+uuid.NewString()[:8], ControlAI, pos, color)
	snake.Angle = w.rng.Float64()*2*math.Pi - math.Pi
	snake.ai = NewAIController(w.rng)

	w.AddSnake(snake)
	bm.ids = append(bm.ids, snake.ID)
	return snake
}

// Update turns every living AI snake toward its chosen heading.
func (bm *BotManager) Update(now time.Time) {
	for _, id := range bm.ids {
		snake, ok := bm.world.Snakes[id]
		if !ok || snake.Dead || snake.ai == nil {
			continue
		}
		snake.TurnToward(snake.ai.Decide(bm.world, snake, now), AITurnSpeed)
	}
}

// Replace removes a dead AI snake and spawns a fresh one in its place.
func (bm *BotManager) Replace(id string) *Snake {
	for i, bid := range bm.ids {
		if bid == id {
			bm.ids = append(bm.ids[:i], bm.ids[i+1:]...)
			break
		}
	}
	bm.world.RemoveSnake(id)
	return bm.SpawnBot()
}

// Count returns the number of active AI snakes.
func (bm *BotManager) Count() int {
	return len(bm.ids)
}

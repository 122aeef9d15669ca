package main

import (
	"testing"
	"time"
)

func TestForageKeepsTargetUntilCloseOrGone(t *testing.T) {
	w := newTestWorld(BoundaryWall, false)
	head := Point{400, 300}
	ai := &AIController{}

	w.Food.Add(&Food{ID: "far", Position: Point{500, 300}})
	w.Food.Add(&Food{ID: "mid", Position: Point{400, 360}})
	if f := ai.forageTarget(w, head); f == nil || f.ID != "mid" {
		t.Fatalf("expected nearest food mid, got %+v", f)
	}

	// A closer item does not steal the target while it is still far away.
	w.Food.Add(&Food{ID: "closer", Position: Point{455, 300}})
	if f := ai.forageTarget(w, head); f.ID != "mid" {
		t.Fatalf("expected target mid to be kept, got %q", f.ID)
	}

	w.Food.Remove("mid")
	if f := ai.forageTarget(w, head); f.ID != "closer" {
		t.Fatalf("expected retarget to closer after mid vanished, got %q", f.ID)
	}

	// Within the retarget distance the nearest item is picked again.
	w.Food.Add(&Food{ID: "adjacent", Position: Point{410, 300}})
	if f := ai.forageTarget(w, Point{430, 300}); f.ID != "adjacent" {
		t.Fatalf("expected retarget within %v px, got %q", AIRetargetDistance, f.ID)
	}
}

func TestForageWithNoFood(t *testing.T) {
	w := newTestWorld(BoundaryWall, false)
	ai := &AIController{TargetFood: "stale"}
	if f := ai.forageTarget(w, Point{}); f != nil {
		t.Fatalf("expected no target, got %+v", f)
	}
	if ai.TargetFood != "" {
		t.Fatalf("expected stale target cleared")
	}
}

func TestPickRivalPrefersShorterAndSkipsLonger(t *testing.T) {
	w := newTestWorld(BoundaryWall, false)
	me := NewSnake("me-ai", ControlAI, Point{400, 300}, "#fff")
	w.AddSnake(me)

	longer := NewSnake("longer", ControlAI, Point{410, 300}, "#fff")
	longer.TargetLength = 50
	shorter := NewSnake("shorter", ControlAI, Point{400, 500}, "#fff")
	shorter.TargetLength = 10
	equal := NewSnake("equal", ControlAI, Point{400, 400}, "#fff")
	w.AddSnake(longer)
	w.AddSnake(shorter)
	w.AddSnake(equal)

	ai := &AIController{Aggressiveness: 1}
	// shorter: 200*0.7 = 140, equal: 100*1.2 = 120.
	if r := ai.pickRival(w, me); r == nil || r.ID != "equal" {
		t.Fatalf("expected equal-length rival, got %+v", r)
	}

	equal.Dead = true
	if r := ai.pickRival(w, me); r == nil || r.ID != "shorter" {
		t.Fatalf("expected shorter rival, got %+v", r)
	}

	timid := &AIController{Aggressiveness: 0.3}
	if r := timid.pickRival(w, me); r != nil {
		t.Fatalf("expected no rival inside %.0f px, got %q", AIEngageRange*0.3, r.ID)
	}
}

func TestDecideAvoidsWalls(t *testing.T) {
	w := newTestWorld(BoundaryWall, false)
	s := NewSnake("ai", ControlAI, Point{20, 300}, "#fff")
	w.AddSnake(s)
	ai := &AIController{}

	angle := ai.Decide(w, s, time.Now())
	if ai.Behavior != BehaviorAvoidWall {
		t.Fatalf("expected avoid-wall, got %s", ai.Behavior)
	}
	// Centre is straight to the right.
	if angle < -AIJitter-1e-9 || angle > AIJitter+1e-9 {
		t.Fatalf("expected heading near 0, got %.3f", angle)
	}
}

func TestDecidePredatorWandersWithoutRivals(t *testing.T) {
	w := newTestWorld(BoundaryWrap, false)
	s := NewSnake("ai", ControlAI, Point{400, 300}, "#fff")
	w.AddSnake(s)
	w.Food.Add(&Food{ID: "f", Position: Point{420, 300}})

	predator := &AIController{Predator: true, Aggressiveness: 1}
	predator.Decide(w, s, time.Now())
	if predator.Behavior != BehaviorWander {
		t.Fatalf("expected predator to wander, got %s", predator.Behavior)
	}

	forager := &AIController{Aggressiveness: 1}
	forager.Decide(w, s, time.Now())
	if forager.Behavior != BehaviorForage || forager.TargetFood != "f" {
		t.Fatalf("expected forager to target f, got %s/%q", forager.Behavior, forager.TargetFood)
	}
}

func TestBotManagerSpawnAndReplace(t *testing.T) {
	w := newTestWorld(BoundaryWall, false)
	w.SpawnBots(3)
	if w.Bots().Count() != 3 || len(w.Snakes) != 3 {
		t.Fatalf("expected 3 bots, got %d (%d snakes)", w.Bots().Count(), len(w.Snakes))
	}
	for _, s := range w.SnakesInOrder() {
		if w.nearWall(s.Head(), AIWallBuffer) {
			t.Fatalf("bot %s spawned too close to a wall at %+v", s.ID, s.Head())
		}
	}

	old := w.SnakesInOrder()[0].ID
	fresh := w.Bots().Replace(old)
	if _, ok := w.Snakes[old]; ok {
		t.Fatalf("expected %s removed", old)
	}
	if fresh.ID == old || w.Bots().Count() != 3 {
		t.Fatalf("expected a fresh bot, count %d", w.Bots().Count())
	}
}

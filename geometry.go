package main

import (
	"math"

	"github.com/joonazan/vec2"
)

// Point is a 2D coordinate in world pixels. Segments and velocities use it too.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (p Point) vec() vec2.Vector {
	return vec2.Vector{X: p.X, Y: p.Y}
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return a.vec().Minus(b.vec()).Length()
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	ab := b.vec().Minus(a.vec())
	ap := p.vec().Minus(a.vec())
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return ap.Length()
	}
	t := clamp((ap.X*ab.X+ap.Y*ab.Y)/lenSq, 0, 1)
	closest := vec2.Vector{X: a.X + ab.X*t, Y: a.Y + ab.Y*t}
	return p.vec().Minus(closest).Length()
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// roundTo1 rounds a float64 to 1 decimal place to save protocol bytes.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

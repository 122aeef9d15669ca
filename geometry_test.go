package main

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistanceToSegment(t *testing.T) {
	cases := []struct {
		name    string
		p, a, b Point
		want    float64
	}{
		{"perpendicular", Point{0, 5}, Point{-10, 0}, Point{10, 0}, 5},
		{"past the end", Point{13, 4}, Point{0, 0}, Point{10, 0}, 5},
		{"before the start", Point{-3, -4}, Point{0, 0}, Point{10, 0}, 5},
		{"on the segment", Point{4, 0}, Point{0, 0}, Point{10, 0}, 0},
		{"degenerate segment", Point{3, 4}, Point{0, 0}, Point{0, 0}, 5},
	}
	for _, tc := range cases {
		if got := DistanceToSegment(tc.p, tc.a, tc.b); !almostEqual(got, tc.want) {
			t.Fatalf("%s: expected %.3f, got %.3f", tc.name, tc.want, got)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[float64]float64{
		0:               0,
		math.Pi:         math.Pi,
		-math.Pi:        math.Pi,
		2*math.Pi + 0.5: 0.5,
		-2*math.Pi - 1:  -1,
	}
	for in, want := range cases {
		if got := NormalizeAngle(in); !almostEqual(got, want) {
			t.Fatalf("NormalizeAngle(%.3f): expected %.3f, got %.3f", in, want, got)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Point{1, 1}, Point{4, 5}); !almostEqual(d, 5) {
		t.Fatalf("expected 5, got %.3f", d)
	}
}

package main

import "testing"

func TestInputDirectionOppositeKeysCancel(t *testing.T) {
	dx, dy := InputState{Up: true, Down: true, Right: true}.Direction()
	if dx != 1 || dy != 0 {
		t.Fatalf("expected (1, 0), got (%v, %v)", dx, dy)
	}
	dx, dy = InputState{Left: true, Right: true}.Direction()
	if dx != 0 || dy != 0 {
		t.Fatalf("expected (0, 0), got (%v, %v)", dx, dy)
	}
}

func TestKeyStatePressRelease(t *testing.T) {
	var keys KeyState
	if !keys.Press("W") {
		t.Fatalf("expected uppercase W to be accepted")
	}
	if keys.Press("q") {
		t.Fatalf("expected unknown key to be ignored")
	}
	keys.Press("d")
	in := keys.Sample()
	if !in.Up || !in.Right || in.Down || in.Left {
		t.Fatalf("unexpected state %+v", in)
	}

	keys.Release("w")
	if keys.Sample().Up {
		t.Fatalf("expected w released")
	}

	keys.Clear()
	if keys.Sample() != (InputState{}) {
		t.Fatalf("expected clear to release every key")
	}
}

package main

import (
	"strings"
	"sync"
)

// InputState is the held-direction snapshot the simulation reads once per tick.
type InputState struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Direction returns the unnormalized input vector. Opposite keys cancel out.
func (in InputState) Direction() (dx, dy float64) {
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	return dx, dy
}

// KeyState collects key-down/key-up events from the presentation layer.
// Writers are event callbacks; the loop takes one Sample per tick.
type KeyState struct {
	mu    sync.Mutex
	state InputState
}

// Press marks key as held. Keys other than w/a/s/d are ignored.
func (k *KeyState) Press(key string) bool {
	return k.set(key, true)
}

// Release marks key as released.
func (k *KeyState) Release(key string) bool {
	return k.set(key, false)
}

func (k *KeyState) set(key string, down bool) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch strings.ToLower(key) {
	case "w":
		k.state.Up = down
	case "s":
		k.state.Down = down
	case "a":
		k.state.Left = down
	case "d":
		k.state.Right = down
	default:
		return false
	}
	return true
}

// Sample returns the current held keys.
func (k *KeyState) Sample() InputState {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// Clear releases every key.
func (k *KeyState) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.state = InputState{}
}

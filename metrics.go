package main

import (
	"sync/atomic"
)

// Metrics counts what the loop did, for /metrics and debugging.
// Written by the loop goroutine, read by HTTP handlers.
type Metrics struct {
	TickCount      int64
	TotalTickNs    int64
	FramesRendered int64
	FoodEaten      int64
	Deaths         int64
	RemoteApplied  int64 // server events that changed the world
	RemoteIgnored  int64 // unknown ids, duplicates, unknown types
	SendErrors     int64
	Restarts       int64
	ViewersDenied  int64
}

// IncFrames counts one rendered frame.
func (m *Metrics) IncFrames() { atomic.AddInt64(&m.FramesRendered, 1) }

// IncRemoteApplied counts a server event that changed the world.
func (m *Metrics) IncRemoteApplied() { atomic.AddInt64(&m.RemoteApplied, 1) }

// IncRemoteIgnored counts a server event that changed nothing.
func (m *Metrics) IncRemoteIgnored() { atomic.AddInt64(&m.RemoteIgnored, 1) }

// IncSendErrors counts a failed intent send.
func (m *Metrics) IncSendErrors() { atomic.AddInt64(&m.SendErrors, 1) }

// IncRestarts counts a restart request handled by the loop.
func (m *Metrics) IncRestarts() { atomic.AddInt64(&m.Restarts, 1) }

// IncViewersDenied counts a viewer refused by the cap or the reconnect limit.
func (m *Metrics) IncViewersDenied() { atomic.AddInt64(&m.ViewersDenied, 1) }

// AddFoodEaten adds n items eaten by the local snake.
func (m *Metrics) AddFoodEaten(n int) { atomic.AddInt64(&m.FoodEaten, int64(n)) }

// AddDeaths adds n snake deaths.
func (m *Metrics) AddDeaths(n int) { atomic.AddInt64(&m.Deaths, int64(n)) }

// AddTick records one tick that took ns nanoseconds.
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"frames_rendered": atomic.LoadInt64(&m.FramesRendered),
		"food_eaten":      atomic.LoadInt64(&m.FoodEaten),
		"deaths":          atomic.LoadInt64(&m.Deaths),
		"remote_applied":  atomic.LoadInt64(&m.RemoteApplied),
		"remote_ignored":  atomic.LoadInt64(&m.RemoteIgnored),
		"send_errors":     atomic.LoadInt64(&m.SendErrors),
		"restarts":        atomic.LoadInt64(&m.Restarts),
		"viewers_denied":  atomic.LoadInt64(&m.ViewersDenied),
		"avg_tick_ms":     avgMs,
	}
}

package main

// Camera is the top-left offset of the viewport in world pixels.
// Presentation state only; nothing in the simulation reads it.
type Camera struct {
	X, Y float64
}

// Follow eases the camera so target drifts toward the viewport centre.
func (c *Camera) Follow(target Point, viewW, viewH, rate float64) {
	c.X += (target.X - viewW/2 - c.X) * rate
	c.Y += (target.Y - viewH/2 - c.Y) * rate
}

// CenterOn jumps straight to target (spawn and restart).
func (c *Camera) CenterOn(target Point, viewW, viewH float64) {
	c.X = target.X - viewW/2
	c.Y = target.Y - viewH/2
}

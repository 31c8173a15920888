// Package loop holds the frame-loop primitives: a Clock that accumulates
// elapsed time only while running, and Hooks, an ordered set of
// self-removing render callbacks. Neither touches the GPU; the driver
// pumps them.
package loop

import (
	"time"

	"github.com/chewxy/math32"
)

// State is the snapshot handed to callbacks. Time and Delta are seconds;
// Time accumulates only while the clock runs.
type State struct {
	Time    float64
	Delta   float64
	Frame   int
	Running bool
	FPS     float32
}

// Callback receives a by-value snapshot on every tick.
type Callback func(State)

// Clock schedules frames against a monotonic time source. The zero value
// is not ready; use NewClock. The driver pumps it through Advance, tests
// and single-frame renders step it through Tick.
type Clock struct {
	now func() float64

	cb      Callback
	time    float64
	delta   float64
	frame   int
	running bool
	fps     float32

	last        float64
	minInterval float64
}

// NewClock returns a stopped clock reading the Go runtime's monotonic
// clock.
func NewClock() *Clock {
	start := time.Now()
	return &Clock{now: func() float64 { return time.Since(start).Seconds() }}
}

// SetNow replaces the time source. The function must be monotonic and
// return seconds; the driver passes glfw.GetTime.
func (c *Clock) SetNow(now func() float64) { c.now = now }

// Start stores the callback and arms the clock. Starting a running clock
// is a no-op. Each Start resets the reference point of the next Advance
// gap to now, so the paused interval never leaks into Time.
func (c *Clock) Start(cb Callback) {
	if c.running {
		return
	}
	c.cb = cb
	c.running = true
	c.last = c.now()
}

// Stop disarms the clock. Time, Delta and Frame are preserved.
func (c *Clock) Stop() { c.running = false }

// Reset stops the clock and zeroes every counter. The callback survives
// so a later Start or Tick picks up where a fresh clock would.
func (c *Clock) Reset() {
	c.running = false
	c.time = 0
	c.delta = 0
	c.frame = 0
	c.fps = 0
	c.last = 0
}

// Tick advances the clock by exactly dt seconds and invokes the callback
// once. It works whether or not the clock is running, which is what makes
// deterministic single-frame rendering possible.
func (c *Clock) Tick(dt float64) {
	c.step(dt)
	if c.cb != nil {
		c.cb(c.State())
	}
}

// Advance performs one scheduled tick if the clock is running and the
// frame cap allows it. It reports whether the callback ran.
func (c *Clock) Advance() bool {
	if !c.running {
		return false
	}
	wall := c.now()
	gap := wall - c.last
	if c.minInterval > 0 && gap < c.minInterval {
		return false
	}
	c.last = wall
	c.step(gap)
	if c.cb != nil {
		c.cb(c.State())
	}
	return true
}

func (c *Clock) step(dt float64) {
	c.time += dt
	c.delta = dt
	c.frame++
	if dt > 0 {
		c.fps = 0.95*c.fps + 0.05*(1/math32.Abs(float32(dt)))
	}
}

// SetTime writes the accumulated time directly, for scrubbing.
func (c *Clock) SetTime(t float64) { c.time = t }

// SetMaxFPS caps scheduled ticks: gaps shorter than 1/n seconds are
// skipped. Zero removes the cap.
func (c *Clock) SetMaxFPS(n int) {
	if n <= 0 {
		c.minInterval = 0
		return
	}
	c.minInterval = 1 / float64(n)
}

// State returns a by-value snapshot.
func (c *Clock) State() State {
	return State{Time: c.time, Delta: c.delta, Frame: c.frame, Running: c.running, FPS: c.fps}
}

package cachebench

import (
	"time"
)

// Clock brackets the timed traversal region. Start and Stop must be called
// in pairs from a single goroutine; Stop returns the elapsed time in the
// clock's unit.
type Clock interface {
	Start()
	Stop() float64
	Unit() string
}

// WallClock measures elapsed wall-clock time in nanoseconds. time.Now
// carries a monotonic reading, so the measurement is immune to clock
// adjustments.
type WallClock struct {
	t0 time.Time
}

// NewWallClock returns the default traversal clock.
func NewWallClock() *WallClock {
	return &WallClock{}
}

// Start records the traversal start time.
func (c *WallClock) Start() {
	c.t0 = time.Now()
}

// Stop returns the nanoseconds elapsed since Start.
func (c *WallClock) Stop() float64 {
	return float64(time.Since(c.t0).Nanoseconds())
}

// Unit returns the unit of Stop's return value.
func (c *WallClock) Unit() string {
	return "ns"
}

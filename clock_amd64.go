//go:build amd64
// +build amd64

package cachebench

import (
	"github.com/dterei/gotsc"
)

// TSCClock measures elapsed cycles with the time stamp counter, with the
// serialized RDTSC call overhead calibrated away. Results are in cycles,
// not nanoseconds, so fixed-delta jump thresholds must be supplied in
// cycles when this clock is selected.
type TSCClock struct {
	overhead uint64
	t0       uint64
}

// NewTSCClock calibrates the counter overhead and returns the clock.
func NewTSCClock() (Clock, error) {
	return &TSCClock{overhead: gotsc.TSCOverhead()}, nil
}

// Start records the traversal start cycle.
func (c *TSCClock) Start() {
	c.t0 = gotsc.BenchStart()
}

// Stop returns the cycles elapsed since Start, net of counter overhead.
func (c *TSCClock) Stop() float64 {
	elapsed := gotsc.BenchEnd() - c.t0
	if elapsed <= c.overhead {
		return 0
	}
	return float64(elapsed - c.overhead)
}

// Unit returns the unit of Stop's return value.
func (c *TSCClock) Unit() string {
	return "cycles"
}

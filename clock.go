package main

import "time"

const (
	TickRate     = 60 // simulation ticks per second
	TickDuration = time.Second / TickRate
)

// SimClock is a fixed-timestep accumulator. Elapsed time is kept in units
// of 1/TickRate ns so one tick is exactly one second's worth of units and
// the number of ticks run depends only on the total time fed in.
type SimClock struct {
	acc   int64
	ticks uint64
}

const unitsPerTick = int64(time.Second)

// Advance adds elapsed time and calls step once per whole tick it covers.
// There is no catch-up cap. Returns the number of ticks run.
func (c *SimClock) Advance(delta time.Duration, step func()) int {
	if delta <= 0 {
		return 0
	}
	c.acc += int64(delta) * TickRate
	n := 0
	for c.acc >= unitsPerTick {
		c.acc -= unitsPerTick
		c.ticks++
		n++
		step()
	}
	return n
}

// Ticks returns the total number of ticks run
func (c *SimClock) Ticks() uint64 {
	return c.ticks
}

// Pending returns the accumulated time not yet consumed by a tick
func (c *SimClock) Pending() time.Duration {
	return time.Duration(c.acc / TickRate)
}

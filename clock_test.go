package main

import (
	"math/rand"
	"testing"
	"time"
)

func TestSimClockWholeSecond(t *testing.T) {
	var c SimClock
	n := 0
	if got := c.Advance(time.Second, func() { n++ }); got != TickRate || n != TickRate {
		t.Errorf("expected %d ticks, got %d (callbacks %d)", TickRate, got, n)
	}
	if c.Pending() != 0 {
		t.Errorf("expected no leftover, got %v", c.Pending())
	}
}

func TestSimClockFragmentationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	total := 3 * time.Second

	var c SimClock
	left := total
	for left > 0 {
		d := time.Duration(rng.Int63n(int64(40 * time.Millisecond)))
		if d > left {
			d = left
		}
		c.Advance(d, func() {})
		left -= d
	}

	var whole SimClock
	whole.Advance(total, func() {})

	if c.Ticks() != whole.Ticks() {
		t.Errorf("fragmented feed ran %d ticks, single feed %d", c.Ticks(), whole.Ticks())
	}
	if c.Ticks() != 3*TickRate {
		t.Errorf("expected %d ticks, got %d", 3*TickRate, c.Ticks())
	}
}

func TestSimClockCarriesRemainder(t *testing.T) {
	var c SimClock
	if n := c.Advance(10*time.Millisecond, func() {}); n != 0 {
		t.Errorf("10ms is less than a tick, ran %d", n)
	}
	if n := c.Advance(10*time.Millisecond, func() {}); n != 1 {
		t.Errorf("20ms total should run one tick, ran %d", n)
	}
	if c.Pending() <= 0 || c.Pending() >= TickDuration {
		t.Errorf("remainder should be under one tick, got %v", c.Pending())
	}
}

func TestSimClockNoCatchUpCap(t *testing.T) {
	var c SimClock
	if n := c.Advance(10*time.Second, func() {}); n != 10*TickRate {
		t.Errorf("long stall should run every tick, got %d", n)
	}
}

func TestSimClockIgnoresNonPositive(t *testing.T) {
	var c SimClock
	if c.Advance(0, func() {}) != 0 || c.Advance(-time.Second, func() {}) != 0 {
		t.Error("non-positive deltas should run nothing")
	}
	if c.Pending() != 0 {
		t.Error("non-positive deltas should not accumulate")
	}
}

package main

import (
	"math"
	"testing"
)

func TestPredictorSnapsAndDamps(t *testing.T) {
	w := testWorld(testLevel(1))
	a := w.Remote
	var p Predictor

	if !p.Update(a, PlayerState{X: 0, Z: 0, HP: 3, Tick: 1}, w) {
		t.Fatal("first update should apply")
	}
	if !a.Present {
		t.Error("remote should be present after a state push")
	}
	p.Update(a, PlayerState{X: 2, Z: 1, HP: 3, Tick: 4}, w)
	if a.X != 2 || a.Z != 1 {
		t.Fatalf("update should snap to (2,1), got (%f,%f)", a.X, a.Z)
	}
	vx, vz := p.Velocity()
	if vx != 2 || vz != 1 {
		t.Errorf("expected velocity (2,1), got (%f,%f)", vx, vz)
	}

	p.Step(a, w)
	if math.Abs(a.X-(2+2*DampingFactor)) > 1e-9 || math.Abs(a.Z-(1+DampingFactor)) > 1e-9 {
		t.Errorf("step should move by velocity x damping, got (%f,%f)", a.X, a.Z)
	}
}

func TestPredictorIgnoresStale(t *testing.T) {
	w := testWorld(testLevel(1))
	a := w.Remote
	var p Predictor
	p.Update(a, PlayerState{X: 5, Tick: 10}, w)
	if p.Update(a, PlayerState{X: 1, Tick: 9}, w) {
		t.Error("older state should be rejected")
	}
	if p.Update(a, PlayerState{X: 1, Tick: 10}, w) {
		t.Error("repeated tick should be rejected")
	}
	if a.X != 5 {
		t.Errorf("stale state must not move the mirror, x=%f", a.X)
	}
}

func TestPredictorKeepsHeightFromTerrain(t *testing.T) {
	lvl := testLevel(1)
	w := NewWorld(lvl, PeerHost, TerrainFunc(func(x, z float64) float64 { return x * 0.5 }), 0, nil)
	a := w.Remote
	var p Predictor
	p.Update(a, PlayerState{X: 0, Y: 99, Tick: 1}, w)
	p.Update(a, PlayerState{X: 4, Y: 99, Tick: 2, Mode: ModeFlying, Lift: 1}, w)
	if a.Y != 2+GlideHeight {
		t.Errorf("height should come from terrain plus lift, got %f", a.Y)
	}
	p.Step(a, w)
	want := a.X*0.5 + GlideHeight
	if math.Abs(a.Y-want) > 1e-9 {
		t.Errorf("height after step should be %f, got %f", want, a.Y)
	}
}

func TestPredictorStopsOnDeadOrReset(t *testing.T) {
	w := testWorld(testLevel(1))
	a := w.Remote
	var p Predictor
	p.Update(a, PlayerState{X: 0, Tick: 1}, w)
	p.Update(a, PlayerState{X: 1, Tick: 2}, w)

	a.Dead = true
	x := a.X
	p.Step(a, w)
	if a.X != x {
		t.Error("dead mirror should not move")
	}

	a.Dead = false
	p.Reset()
	p.Step(a, w)
	if a.X != x {
		t.Error("reset predictor has no velocity to apply")
	}
}

func TestPredictorTurnsTowardFacing(t *testing.T) {
	w := testWorld(testLevel(1))
	a := w.Remote
	var p Predictor
	p.Update(a, PlayerState{R: 0, Tick: 1}, w)
	p.Update(a, PlayerState{R: 1, Tick: 2}, w)
	if a.Facing != 0 {
		t.Fatalf("facing should turn over ticks, not snap, got %f", a.Facing)
	}
	p.Step(a, w)
	if math.Abs(a.Facing-facingLerp) > 1e-9 {
		t.Errorf("expected facing %f after one step, got %f", facingLerp, a.Facing)
	}
	for i := 0; i < 60; i++ {
		p.Step(a, w)
	}
	if math.Abs(a.Facing-1) > 1e-3 {
		t.Errorf("facing should settle on the target, got %f", a.Facing)
	}
}

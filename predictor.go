package main

// DampingFactor scales the last observed velocity applied per tick between
// authoritative updates. Kept small so the mirror undershoots rather than
// overshoots.
const DampingFactor = 0.08

// facingLerp is the share of the remaining turn applied per tick
const facingLerp = 0.3

// Predictor smooths the remote avatar between state updates
type Predictor struct {
	have     bool
	lastTick uint64
	lastX    float64
	lastZ    float64
	vx, vz   float64
	facing   float64
}

// Reset forgets history, used when the level changes
func (p *Predictor) Reset() {
	*p = Predictor{}
}

// Velocity returns the per-update velocity used for prediction
func (p *Predictor) Velocity() (vx, vz float64) {
	return p.vx, p.vz
}

// Update snaps the avatar to an authoritative state. Updates older than the
// last one applied are ignored. Returns false if s was stale.
func (p *Predictor) Update(a *Avatar, s PlayerState, w *World) bool {
	if p.have && s.Tick <= p.lastTick {
		return false
	}
	if p.have {
		p.vx = s.X - p.lastX
		p.vz = s.Z - p.lastZ
	}
	p.have = true
	p.lastTick = s.Tick
	p.lastX, p.lastZ = s.X, s.Z

	if !a.Present {
		a.Facing = s.R
	}
	p.facing = s.R
	a.Present = true
	a.X, a.Z = s.X, s.Z
	a.Mode = s.Mode
	a.ModeProgress = s.Lift
	a.Ammo = s.Ammo
	if !a.Dead {
		a.Health = s.HP
	}
	a.SettleHeight(w.Terrain)
	return true
}

// Step advances the mirror by velocity x DampingFactor. Y is recomputed
// from terrain and the lift state, never extrapolated.
func (p *Predictor) Step(a *Avatar, w *World) {
	if !p.have || !a.Present || a.Dead {
		return
	}
	lvl := &w.Level
	a.X = Clamp(a.X+p.vx*DampingFactor, lvl.MinX+AvatarRadius, lvl.MaxX-AvatarRadius)
	a.Z = Clamp(a.Z+p.vz*DampingFactor, lvl.MinZ+AvatarRadius, lvl.MaxZ-AvatarRadius)
	a.Facing = LerpAngle(a.Facing, p.facing, facingLerp)
	a.SettleHeight(w.Terrain)
}

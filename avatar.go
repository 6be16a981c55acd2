package main

import "math"

const (
	AvatarRadius      = 0.8
	AvatarMaxHealth   = 3
	AvatarSpeed       = 0.12 // units per tick
	AvatarFlySpeedMul = 1.5
	AvatarStartAmmo   = 20
	InvulnerabilityMs = 1000
	FireCooldownTicks = 12

	GlideMaxCharge    = 300 // ticks of flight on a full meter
	GlideMinCharge    = 60  // needed to take off
	GlideRecharge     = 0.5 // charge regained per grounded tick
	GlideTakeoffTicks = 30
	GlideLandingTicks = 30
	GlideHeight       = 3.0
)

// PeerID names the peer that owns an avatar
type PeerID string

const (
	PeerHost   PeerID = "host"
	PeerClient PeerID = "client"
)

// Other returns the partner peer
func (p PeerID) Other() PeerID {
	if p == PeerHost {
		return PeerClient
	}
	return PeerHost
}

// MoveMode is the avatar's lift machine state
type MoveMode int

const (
	ModeGrounded MoveMode = 0
	ModeTakeoff  MoveMode = 1
	ModeFlying   MoveMode = 2
	ModeLanding  MoveMode = 3
)

// AvatarInput is one tick of local control
type AvatarInput struct {
	MoveX       float64 // -1..1
	MoveZ       float64 // -1..1
	Fire        bool
	Glide       bool
	PlaceBomb   bool
	PlaceTurret bool
	UseIce      bool
}

// Avatar is a player character. Each peer owns exactly one; the other is a
// mirror fed by the protocol.
type Avatar struct {
	Owner   PeerID
	Present bool // false until the partner has reported in
	X, Y, Z float64
	Facing  float64

	Health    int
	MaxHealth int
	Dead      bool
	Cause     string

	Ammo       int
	Bombs      int
	IceCharges int
	HasKite    bool

	Mode         MoveMode
	ModeProgress float64 // altitude fraction, 0 grounded .. 1 full height
	GlideCharge  float64

	LastDamageAt int64
	FireCD       int
	NextTurretAt int64

	// edge detection for one-shot inputs
	prevBomb, prevTurret, prevIce bool
}

// NewAvatar creates an avatar standing at (x, z)
func NewAvatar(owner PeerID, x, z float64) *Avatar {
	return &Avatar{
		Owner:        owner,
		X:            x,
		Z:            z,
		Health:       AvatarMaxHealth,
		MaxHealth:    AvatarMaxHealth,
		Ammo:         AvatarStartAmmo,
		GlideCharge:  GlideMaxCharge,
		LastDamageAt: math.MinInt64 / 2,
	}
}

// Airborne reports whether the avatar is high enough to clear hills and
// death zones and to dodge ground waves
func (a *Avatar) Airborne() bool {
	return a.Mode != ModeGrounded && a.ModeProgress >= 0.5
}

// HeightOffset is the altitude above terrain for the current mode
func (a *Avatar) HeightOffset() float64 {
	if a.Mode == ModeGrounded {
		return 0
	}
	return GlideHeight * a.ModeProgress
}

// Step applies one tick of input to position and the lift machine.
// Collision is resolved by the caller against the pre-step position.
func (a *Avatar) Step(w *World, in AvatarInput) {
	if a.Dead {
		return
	}
	a.stepGlide(in.Glide)

	if nx, nz, ok := normalize(in.MoveX, in.MoveZ); ok {
		// Analog sticks below full deflection walk slower
		mag := math.Min(1, math.Sqrt(in.MoveX*in.MoveX+in.MoveZ*in.MoveZ))
		speed := AvatarSpeed * mag
		if a.Mode == ModeFlying {
			speed *= AvatarFlySpeedMul
		}
		a.X += nx * speed
		a.Z += nz * speed
		a.Facing = math.Atan2(nx, nz)
	}

	lvl := &w.Level
	a.X = Clamp(a.X, lvl.MinX+AvatarRadius, lvl.MaxX-AvatarRadius)
	a.Z = Clamp(a.Z, lvl.MinZ+AvatarRadius, lvl.MaxZ-AvatarRadius)

	if a.FireCD > 0 {
		a.FireCD--
	}
}

func (a *Avatar) stepGlide(want bool) {
	switch a.Mode {
	case ModeGrounded:
		if want && a.HasKite && a.GlideCharge >= GlideMinCharge {
			a.Mode = ModeTakeoff
			a.ModeProgress = 0
			return
		}
		a.GlideCharge = math.Min(GlideMaxCharge, a.GlideCharge+GlideRecharge)
	case ModeTakeoff:
		a.ModeProgress += 1.0 / GlideTakeoffTicks
		if a.ModeProgress >= 1 {
			a.ModeProgress = 1
			a.Mode = ModeFlying
		}
	case ModeFlying:
		a.GlideCharge--
		if a.GlideCharge <= 0 || !want {
			a.GlideCharge = math.Max(0, a.GlideCharge)
			a.Mode = ModeLanding
		}
	case ModeLanding:
		a.ModeProgress -= 1.0 / GlideLandingTicks
		if a.ModeProgress <= 0 {
			a.ModeProgress = 0
			a.Mode = ModeGrounded
		}
	}
}

// SettleHeight recomputes Y from terrain and the lift machine
func (a *Avatar) SettleHeight(t Terrain) {
	a.Y = t.Height(a.X, a.Z) + a.HeightOffset()
}

// Invulnerable reports whether a hit at now falls inside the window after
// the last hit
func (a *Avatar) Invulnerable(now int64) bool {
	return now-a.LastDamageAt < InvulnerabilityMs
}

// TakeDamage reduces health and returns true if the avatar died.
// With checkWindow set, hits inside the invulnerability window are ignored.
func (a *Avatar) TakeDamage(dmg int, now int64, checkWindow bool) bool {
	if a.Dead || dmg <= 0 {
		return false
	}
	if checkWindow && a.Invulnerable(now) {
		return false
	}
	a.LastDamageAt = now
	a.Health -= dmg
	if a.Health <= 0 {
		a.Health = 0
		a.Dead = true
		return true
	}
	return false
}

// Kill zeroes health outright
func (a *Avatar) Kill(cause string) bool {
	if a.Dead {
		return false
	}
	a.Health = 0
	a.Dead = true
	a.Cause = cause
	return true
}

// Heal restores health up to the maximum
func (a *Avatar) Heal(n int) {
	if a.Dead {
		return
	}
	a.Health += n
	if a.Health > a.MaxHealth {
		a.Health = a.MaxHealth
	}
}

// CanFire returns true if the avatar can fire a bullet this tick
func (a *Avatar) CanFire() bool {
	return !a.Dead && a.Ammo > 0 && a.FireCD <= 0
}

// Inventory copies what survives a level transition
func (a *Avatar) Inventory() Carryover {
	return Carryover{
		Ammo:       a.Ammo,
		Bombs:      a.Bombs,
		Health:     a.Health,
		IceCharges: a.IceCharges,
		HasKite:    a.HasKite,
	}
}

// RestoreInventory applies a carryover record at level start
func (a *Avatar) RestoreInventory(c Carryover) {
	a.Ammo = c.Ammo
	a.Bombs = c.Bombs
	a.IceCharges = c.IceCharges
	a.HasKite = c.HasKite
	if c.Health > 0 {
		a.Health = c.Health
		if a.Health > a.MaxHealth {
			a.Health = a.MaxHealth
		}
	}
}

// ToState converts to the wire state pushed to the partner
func (a *Avatar) ToState(w *World) PlayerState {
	return PlayerState{
		X:     round2(a.X),
		Y:     round2(a.Y),
		Z:     round2(a.Z),
		R:     round2(a.Facing),
		HP:    a.Health,
		Mode:  a.Mode,
		Lift:  round2(a.ModeProgress),
		Ammo:  a.Ammo,
		Dead:  a.Dead,
		Tick:  w.Tick,
		Level: w.Level.Number,
	}
}

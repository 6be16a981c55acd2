package main

import "math"

const (
	GraceMs = 150 // no obstacle collision this soon after spawn

	BulletSpeed  = 0.6 // units per tick
	BulletRange  = 30.0
	BulletRadius = 0.15
	BulletDamage = 1
	BulletOffset = 1.0 // spawn distance from shooter centre

	BoltRadius = 0.3

	WaveSpeed     = 0.15
	WaveMaxRadius = 9.0
	WaveThickness = 1.2
	WaveDamage    = 1
)

// BoltKind selects an agent projectile
type BoltKind int

const (
	BoltArrow    BoltKind = 0
	BoltFireball BoltKind = 1
)

// BoltKindDef holds the stats for a bolt kind
type BoltKindDef struct {
	Speed  float64
	Range  float64
	Damage int
}

var BoltKinds = [2]BoltKindDef{
	{Speed: 0.45, Range: 26, Damage: 1}, // arrow
	{Speed: 0.3, Range: 22, Damage: 1},  // fireball
}

// GetBoltDef returns the definition for a bolt kind
func GetBoltDef(kind BoltKind) BoltKindDef {
	if kind < 0 || int(kind) >= len(BoltKinds) {
		return BoltKinds[BoltArrow]
	}
	return BoltKinds[kind]
}

// Bullet is fired by an avatar or a turret and damages agents.
// Only a Local bullet reports hits; mirrors of the partner's shots are
// visual and stop at the first agent they touch.
type Bullet struct {
	ID        string
	Owner     PeerID
	Local     bool
	X, Z      float64
	VX, VZ    float64
	Traveled  float64
	Damage    int
	CreatedAt int64
	Alive     bool
}

// NewBullet creates a bullet leaving (x,z) in direction (dx,dz)
func NewBullet(id string, owner PeerID, local bool, x, z, dx, dz float64, now int64) *Bullet {
	nx, nz, ok := normalize(dx, dz)
	if !ok {
		nz = 1
	}
	return &Bullet{
		ID:        id,
		Owner:     owner,
		Local:     local,
		X:         x + nx*BulletOffset,
		Z:         z + nz*BulletOffset,
		VX:        nx * BulletSpeed,
		VZ:        nz * BulletSpeed,
		Damage:    BulletDamage,
		CreatedAt: now,
		Alive:     true,
	}
}

// Step advances the bullet and returns the agent it struck, if any
func (b *Bullet) Step(w *World) *Agent {
	if !b.Alive {
		return nil
	}
	prevX, prevZ := b.X, b.Z
	b.X += b.VX
	b.Z += b.VZ
	b.Traveled += BulletSpeed
	if b.Traveled >= BulletRange || !w.InBounds(b.X, b.Z) {
		b.Alive = false
		return nil
	}
	if w.Now-b.CreatedAt >= GraceMs && w.ProjectileBlocked(b.X, b.Z, BulletRadius) {
		b.Alive = false
		return nil
	}
	for _, a := range w.Agents {
		if !a.Alive {
			continue
		}
		// swept so a bullet cannot step over a small agent
		if segmentCircleIntersect(prevX, prevZ, b.X, b.Z, a.X, a.Z, BulletRadius+GetKindDef(a.Kind).Radius) {
			b.Alive = false
			return a
		}
	}
	return nil
}

// Bolt is fired by an agent. Every peer simulates every bolt, but a bolt
// only damages the avatar owned by the peer simulating it.
type Bolt struct {
	ID         string
	Kind       BoltKind
	AgentIndex int
	X, Z       float64
	VX, VZ     float64
	Traveled   float64
	CreatedAt  int64
	Alive      bool
}

// NewBolt creates a bolt from origin toward target
func NewBolt(id string, kind BoltKind, agentIndex int, ox, oz, tx, tz float64, now int64) *Bolt {
	def := GetBoltDef(kind)
	nx, nz, ok := normalize(tx-ox, tz-oz)
	if !ok {
		nz = 1
	}
	return &Bolt{
		ID:         id,
		Kind:       kind,
		AgentIndex: agentIndex,
		X:          ox,
		Z:          oz,
		VX:         nx * def.Speed,
		VZ:         nz * def.Speed,
		CreatedAt:  now,
		Alive:      true,
	}
}

// Step advances the bolt and returns true if it struck the local avatar
func (b *Bolt) Step(w *World) bool {
	if !b.Alive {
		return false
	}
	def := GetBoltDef(b.Kind)
	b.X += b.VX
	b.Z += b.VZ
	b.Traveled += def.Speed
	if b.Traveled >= def.Range || !w.InBounds(b.X, b.Z) {
		b.Alive = false
		return false
	}
	if w.Now-b.CreatedAt >= GraceMs && w.ProjectileBlocked(b.X, b.Z, BoltRadius) {
		b.Alive = false
		return false
	}
	a := w.Local
	if a.Dead || a.Airborne() {
		return false
	}
	if CirclesOverlap(b.X, b.Z, BoltRadius, a.X, a.Z, AvatarRadius) {
		b.Alive = false
		return true
	}
	return false
}

// Wave is an expanding ground ring from a giant's slam. It hits each
// grounded local avatar at most once.
type Wave struct {
	ID        string
	X, Z      float64
	Radius    float64
	HitLocal  bool
	CreatedAt int64
	Alive     bool
}

// NewWave creates a wave centred at (x,z)
func NewWave(id string, x, z float64, now int64) *Wave {
	return &Wave{ID: id, X: x, Z: z, CreatedAt: now, Alive: true}
}

// Step grows the ring and returns true if it struck the local avatar
func (wv *Wave) Step(w *World) bool {
	if !wv.Alive {
		return false
	}
	wv.Radius += WaveSpeed
	if wv.Radius >= WaveMaxRadius {
		wv.Alive = false
		return false
	}
	a := w.Local
	if wv.HitLocal || a.Dead || a.Airborne() {
		return false
	}
	d := Distance(wv.X, wv.Z, a.X, a.Z)
	if math.Abs(d-wv.Radius) <= WaveThickness/2+AvatarRadius {
		wv.HitLocal = true
		return true
	}
	return false
}

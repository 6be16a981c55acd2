package main

import "math"

const (
	IceRadius = 10.0
	IceMs     = FreezeMs
)

// handlePowers runs the one-shot powers and firing for this tick's input.
// Bomb, turret and ice trigger on the press edge.
func (g *Game) handlePowers(in AvatarInput) {
	w := g.world
	a := w.Local
	if a.Dead {
		return
	}
	if in.Fire && a.CanFire() {
		g.fireBullet(a)
	}
	if in.PlaceBomb && !a.prevBomb && a.Bombs > 0 {
		g.placeBomb(a)
	}
	if in.PlaceTurret && !a.prevTurret && w.Now >= a.NextTurretAt {
		g.placeTurret(a)
	}
	if in.UseIce && !a.prevIce && a.IceCharges > 0 {
		g.useIce(a)
	}
	a.prevBomb = in.PlaceBomb
	a.prevTurret = in.PlaceTurret
	a.prevIce = in.UseIce
}

// facingDir returns the unit ground vector the avatar faces
func facingDir(facing float64) (dx, dz float64) {
	return math.Sin(facing), math.Cos(facing)
}

func (g *Game) fireBullet(a *Avatar) {
	w := g.world
	dx, dz := facingDir(a.Facing)
	b := NewBullet(NewItemID(w.Now), a.Owner, true, a.X, a.Z, dx, dz, w.Now)
	w.Bullets = append(w.Bullets, b)
	a.Ammo--
	a.FireCD = FireCooldownTicks
	g.scene.Add(Visual{Kind: VisualBullet, ID: b.ID, X: b.X, Y: a.Y, Z: b.Z})
	g.audio.Play(CueShot)
	g.emit(EvBulletFired, BulletFiredPayload{
		ID: b.ID, Owner: a.Owner, X: round2(a.X), Z: round2(a.Z), DX: round2(dx), DZ: round2(dz),
	})
}

func (g *Game) placeBomb(a *Avatar) {
	w := g.world
	dx, dz := facingDir(a.Facing)
	b := &Bomb{
		ID:        NewItemID(w.Now),
		Owner:     a.Owner,
		X:         a.X + dx*BombDropDist,
		Z:         a.Z + dz*BombDropDist,
		ExplodeAt: w.Now + BombFuseMs,
	}
	if !w.addBomb(b) {
		return
	}
	a.Bombs--
	g.scene.Add(Visual{Kind: VisualBomb, ID: b.ID, X: b.X, Y: w.Terrain.Height(b.X, b.Z), Z: b.Z})
	g.emit(EvBombPlaced, BombPlacedPayload{
		ID: b.ID, Owner: b.Owner, X: round2(b.X), Z: round2(b.Z), FuseMs: BombFuseMs,
	})
}

func (g *Game) placeTurret(a *Avatar) {
	w := g.world
	t := &Turret{
		ID:         NewItemID(w.Now),
		Owner:      a.Owner,
		X:          a.X,
		Z:          a.Z,
		ExpiresAt:  w.Now + TurretLifetimeMs,
		NextShotAt: w.Now + TurretFireMs,
	}
	if !w.addTurret(t) {
		return
	}
	a.NextTurretAt = w.Now + TurretCooldownMs
	g.scene.Add(Visual{Kind: VisualTurret, ID: t.ID, X: t.X, Y: w.Terrain.Height(t.X, t.Z), Z: t.Z})
	g.emit(EvTurretPlaced, TurretPlacedPayload{
		ID: t.ID, Owner: t.Owner, X: round2(t.X), Z: round2(t.Z), LifetimeMs: TurretLifetimeMs,
	})
}

func (g *Game) useIce(a *Avatar) {
	w := g.world
	a.IceCharges--
	g.freezeAround(a.X, a.Z, IceMs)
	g.emit(EvIcePowerActivated, IcePowerPayload{
		ID: NewItemID(w.Now), X: round2(a.X), Z: round2(a.Z), DurationMs: IceMs,
	})
}

// freezeAround freezes every live agent within IceRadius of (x,z). On the
// host this is authoritative; a client applies it to its mirrors so they
// stop extrapolating until the next snapshot confirms.
func (g *Game) freezeAround(x, z float64, durationMs int64) {
	w := g.world
	for _, ag := range w.Agents {
		if !ag.Alive {
			continue
		}
		if DistanceSq(x, z, ag.X, ag.Z) <= IceRadius*IceRadius {
			ag.ApplyFreeze(w.Now, durationMs)
		}
	}
	g.audio.Play(CueFreeze)
}

// stepPlacedItems runs bomb fuses and turrets. Host only.
func (g *Game) stepPlacedItems() {
	w := g.world

	n := 0
	for _, b := range w.Bombs {
		if w.Now >= b.ExplodeAt {
			g.explodeBomb(b)
			continue
		}
		w.Bombs[n] = b
		n++
	}
	clear(w.Bombs[n:])
	w.Bombs = w.Bombs[:n]

	n = 0
	for _, t := range w.Turrets {
		if w.Now >= t.ExpiresAt {
			g.scene.Remove(Visual{Kind: VisualTurret, ID: t.ID})
			g.emit(EvTurretRemoved, TurretRemovedPayload{ID: t.ID})
			continue
		}
		if w.Now >= t.NextShotAt {
			if target := w.nearestAgent(t.X, t.Z, TurretRange); target != nil {
				g.turretFire(t, target)
			}
			t.NextShotAt = w.Now + TurretFireMs
		}
		w.Turrets[n] = t
		n++
	}
	clear(w.Turrets[n:])
	w.Turrets = w.Turrets[:n]
}

// explodeBomb damages agents in range and announces the explosion once.
// The caller removes the bomb from the registry.
func (g *Game) explodeBomb(b *Bomb) {
	w := g.world
	for _, a := range w.Agents {
		if a.Alive && CirclesOverlap(b.X, b.Z, BombRadius, a.X, a.Z, GetKindDef(a.Kind).Radius) {
			g.damageAgent(a, BombDamage, "")
		}
	}
	g.scene.Remove(Visual{Kind: VisualBomb, ID: b.ID})
	g.scene.Add(Visual{Kind: VisualExplosion, ID: b.ID, X: b.X, Y: w.Terrain.Height(b.X, b.Z), Z: b.Z})
	g.audio.Play(CueExplosion)
	g.emit(EvBombExploded, BombExplodedPayload{ID: b.ID, X: round2(b.X), Z: round2(b.Z)})
}

// turretFire shoots a host-owned bullet at target and mirrors it
func (g *Game) turretFire(t *Turret, target *Agent) {
	w := g.world
	dx, dz := target.X-t.X, target.Z-t.Z
	b := NewBullet(NewItemID(w.Now), t.Owner, true, t.X, t.Z, dx, dz, w.Now)
	w.Bullets = append(w.Bullets, b)
	g.scene.Add(Visual{Kind: VisualBullet, ID: b.ID, X: b.X, Z: b.Z})
	nx, nz, _ := normalize(dx, dz)
	g.emit(EvBulletFired, BulletFiredPayload{
		ID: b.ID, Owner: t.Owner, X: round2(t.X), Z: round2(t.Z), DX: round2(nx), DZ: round2(nz),
	})
}

package main

import "math"

const (
	TornadoRadius    = 1.8
	TornadoMinSpeed  = 0.05
	TornadoMaxSpeed  = 0.12
	TornadoKnockback = 3.0
	TornadoDamage    = 1
)

// Tornado crosses the level in a straight line, knocking avatars aside
type Tornado struct {
	ID     string
	X, Z   float64
	VX, VZ float64
	Alive  bool
}

// NewTornado spawns a tornado at a random level edge heading inward
func NewTornado(w *World) *Tornado {
	lvl := &w.Level
	width := lvl.MaxX - lvl.MinX
	depth := lvl.MaxZ - lvl.MinZ
	t := &Tornado{ID: NewItemID(w.Now), Alive: true}

	speed := TornadoMinSpeed + w.Rand.Float64()*(TornadoMaxSpeed-TornadoMinSpeed)

	// Pick a random edge and aim at a point in the opposite half
	var targetX, targetZ float64
	switch w.Rand.Intn(4) {
	case 0: // west
		t.X = lvl.MinX
		t.Z = lvl.MinZ + w.Rand.Float64()*depth
		targetX = lvl.MinX + width/2 + w.Rand.Float64()*width/2
		targetZ = lvl.MinZ + w.Rand.Float64()*depth
	case 1: // east
		t.X = lvl.MaxX
		t.Z = lvl.MinZ + w.Rand.Float64()*depth
		targetX = lvl.MinX + w.Rand.Float64()*width/2
		targetZ = lvl.MinZ + w.Rand.Float64()*depth
	case 2: // north
		t.X = lvl.MinX + w.Rand.Float64()*width
		t.Z = lvl.MinZ
		targetX = lvl.MinX + w.Rand.Float64()*width
		targetZ = lvl.MinZ + depth/2 + w.Rand.Float64()*depth/2
	default: // south
		t.X = lvl.MinX + w.Rand.Float64()*width
		t.Z = lvl.MaxZ
		targetX = lvl.MinX + w.Rand.Float64()*width
		targetZ = lvl.MinZ + w.Rand.Float64()*depth/2
	}
	angle := math.Atan2(targetZ-t.Z, targetX-t.X)
	t.VX = math.Cos(angle) * speed
	t.VZ = math.Sin(angle) * speed
	return t
}

// Step moves the tornado and kills it once it leaves the level
func (t *Tornado) Step(w *World) {
	if !t.Alive {
		return
	}
	t.X += t.VX
	t.Z += t.VZ
	margin := TornadoRadius * 2
	lvl := &w.Level
	if t.X < lvl.MinX-margin || t.X > lvl.MaxX+margin ||
		t.Z < lvl.MinZ-margin || t.Z > lvl.MaxZ+margin {
		t.Alive = false
	}
}

// knockback returns the displacement pushing (x,z) away from the tornado
func (t *Tornado) knockback(x, z float64) (dx, dz float64) {
	nx, nz, ok := normalize(x-t.X, z-t.Z)
	if !ok {
		nx, nz, _ = normalize(-t.VZ, t.VX)
	}
	return nx * TornadoKnockback, nz * TornadoKnockback
}

func (w *World) findTornado(id string) int {
	for i, t := range w.Tornados {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// stepTornados spawns, moves and resolves tornado hits. Host only.
func (g *Game) stepTornados() {
	w := g.world
	if every := w.Level.TornadoEveryMs; every > 0 && w.Now >= w.NextTornadoAt {
		if w.NextTornadoAt != 0 {
			t := NewTornado(w)
			w.Tornados = append(w.Tornados, t)
			g.scene.Add(Visual{Kind: VisualTornado, ID: t.ID, X: t.X, Z: t.Z})
		}
		w.NextTornadoAt = w.Now + every
	}

	n := 0
	for _, t := range w.Tornados {
		t.Step(w)
		if !t.Alive {
			g.scene.Remove(Visual{Kind: VisualTornado, ID: t.ID})
			continue
		}
		for _, av := range []*Avatar{w.Local, w.Remote} {
			if !av.Present || av.Dead {
				continue
			}
			if !CirclesOverlap(t.X, t.Z, TornadoRadius, av.X, av.Z, AvatarRadius) {
				continue
			}
			dx, dz := t.knockback(av.X, av.Z)
			if av == w.Local {
				g.applyKnockback(dx, dz)
				g.damageAvatar(av, TornadoDamage, CauseTornado)
				continue
			}
			if av.Invulnerable(w.Now) {
				continue
			}
			av.LastDamageAt = w.Now
			g.emit(EvTornadoHit, TornadoHitPayload{
				ID: NewItemID(w.Now), Tornado: t.ID, DX: round2(dx), DZ: round2(dz), Amount: TornadoDamage,
			})
		}
		w.Tornados[n] = t
		n++
	}
	clear(w.Tornados[n:])
	w.Tornados = w.Tornados[:n]
}

// extrapolateTornados moves client mirrors between snapshots
func (g *Game) extrapolateTornados() {
	w := g.world
	for _, t := range w.Tornados {
		t.X += t.VX
		t.Z += t.VZ
	}
}

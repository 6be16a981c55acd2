package main

const (
	BombFuseMs   = 3000
	BombRadius   = 5.0
	BombDamage   = 3
	BombDropDist = 1.2

	TurretCooldownMs = 15000
	TurretLifetimeMs = 20000
	TurretRange      = 15.0
	TurretFireMs     = 700
)

// Bomb is dropped ordnance. Either peer may place one; the host explodes it.
type Bomb struct {
	ID        string
	Owner     PeerID
	X, Z      float64
	ExplodeAt int64
}

// Turret is a placed defence that shoots the nearest agent. Either peer may
// place one; the host runs it.
type Turret struct {
	ID         string
	Owner      PeerID
	X, Z       float64
	ExpiresAt  int64
	NextShotAt int64
}

func (w *World) findBomb(id string) int {
	for i, b := range w.Bombs {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (w *World) findTurret(id string) int {
	for i, t := range w.Turrets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// addBomb registers a bomb unless one with the same id already exists
func (w *World) addBomb(b *Bomb) bool {
	if w.findBomb(b.ID) >= 0 {
		return false
	}
	w.Bombs = append(w.Bombs, b)
	return true
}

// addTurret registers a turret unless one with the same id already exists
func (w *World) addTurret(t *Turret) bool {
	if w.findTurret(t.ID) >= 0 {
		return false
	}
	w.Turrets = append(w.Turrets, t)
	return true
}

// removeBomb removes the bomb with the given id. Unknown ids are a no-op.
func (w *World) removeBomb(id string) *Bomb {
	i := w.findBomb(id)
	if i < 0 {
		return nil
	}
	b := w.Bombs[i]
	w.Bombs = append(w.Bombs[:i], w.Bombs[i+1:]...)
	return b
}

// removeTurret removes the turret with the given id. Unknown ids are a no-op.
func (w *World) removeTurret(id string) *Turret {
	i := w.findTurret(id)
	if i < 0 {
		return nil
	}
	t := w.Turrets[i]
	w.Turrets = append(w.Turrets[:i], w.Turrets[i+1:]...)
	return t
}

// nearestAgent returns the closest live, unfrozen agent within maxDist
func (w *World) nearestAgent(x, z, maxDist float64) *Agent {
	var best *Agent
	bestD := maxDist * maxDist
	for _, a := range w.Agents {
		if !a.Alive || a.IsFrozen(w.Now) {
			continue
		}
		d2 := DistanceSq(x, z, a.X, a.Z)
		if d2 <= bestD {
			bestD = d2
			best = a
		}
	}
	return best
}

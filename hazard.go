package main

const (
	TrailRadius     = 1.2
	TrailLifetimeMs = 6000
	TrailDamage     = 1
	TrapDamage      = 1
)

// LavaTrail is a transient hazard left behind by a giant
type LavaTrail struct {
	ID        string
	X, Z      float64
	Radius    float64
	ExpiresAt int64
}

// NewLavaTrail creates a trail patch at (x,z) that lives for TrailLifetimeMs
func NewLavaTrail(id string, x, z float64, now int64) *LavaTrail {
	return &LavaTrail{
		ID:        id,
		X:         x,
		Z:         z,
		Radius:    TrailRadius,
		ExpiresAt: now + TrailLifetimeMs,
	}
}

// Trap is a level spike trap that is armed for ArmedMs out of every PeriodMs
type Trap struct {
	Index    int
	X, Z     float64
	Radius   float64
	PeriodMs int64
	ArmedMs  int64
}

// ArmedAt computes the trap phase from a timestamp
func (t *Trap) ArmedAt(now int64) bool {
	if t.PeriodMs <= 0 {
		return true
	}
	phase := now % t.PeriodMs
	if phase < 0 {
		phase += t.PeriodMs
	}
	return phase < t.ArmedMs
}

func (w *World) addTrail(t *LavaTrail) bool {
	for _, existing := range w.Trails {
		if existing.ID == t.ID {
			return false
		}
	}
	w.Trails = append(w.Trails, t)
	return true
}

// expireTrails removes trails whose lifetime has passed. Both peers run it
// against their own clock; the creation event carries the remaining TTL.
func (g *Game) expireTrails() {
	w := g.world
	n := 0
	for _, t := range w.Trails {
		if w.Now >= t.ExpiresAt {
			g.scene.Remove(Visual{Kind: VisualTrail, ID: t.ID})
			continue
		}
		w.Trails[n] = t
		n++
	}
	clear(w.Trails[n:])
	w.Trails = w.Trails[:n]
}

// stepHazards runs trail expiry and tornados. Host only. Trap phases are
// derived from the clock where they are tested.
func (g *Game) stepHazards() {
	g.expireTrails()
	g.stepTornados()
}

// dropTrail spawns a lava trail under an agent and mirrors it to the client
func (g *Game) dropTrail(a *Agent) {
	w := g.world
	t := NewLavaTrail(NewItemID(w.Now), a.X, a.Z, w.Now)
	if !w.addTrail(t) {
		return
	}
	g.scene.Add(Visual{Kind: VisualTrail, ID: t.ID, X: t.X, Y: w.Terrain.Height(t.X, t.Z), Z: t.Z})
	g.emit(EvLavaTrailCreate, LavaTrailPayload{
		ID: t.ID, X: round2(t.X), Z: round2(t.Z), Radius: t.Radius, TTLMs: t.ExpiresAt - w.Now,
	})
}

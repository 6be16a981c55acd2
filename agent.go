package main

import "math"

// AgentState is the hostile agent AI state
type AgentState int

const (
	AgentPatrol   AgentState = 0
	AgentChase    AgentState = 1
	AgentCooldown AgentState = 2
)

const (
	// AgentVelocityDecay damps the advisory velocity a client extrapolates
	// with between snapshots.
	AgentVelocityDecay = 0.92
	FreezeMs           = 4000
)

// Agent is a hostile AI-controlled entity. Health and Alive are written by
// the host only; clients mirror them from snapshots and events.
type Agent struct {
	Index     int
	Kind      AgentKind
	X, Y, Z   float64
	VX, VZ    float64 // displacement applied on the last tick
	Facing    float64
	Health    int
	MaxHealth int
	Alive     bool
	State     AgentState

	PatrolMinX float64
	PatrolMaxX float64
	PatrolDir  float64

	NextFireAt    int64
	CooldownUntil int64
	NextTrailAt   int64

	Frozen      bool
	FrozenUntil int64
}

// AgentAction is what an agent asks the pipeline to do after its step
type AgentAction struct {
	Fire    bool
	TargetX float64
	TargetZ float64
	Contact *Avatar // avatar touched while chasing
	Trail   bool    // drop a lava trail at the agent position
}

// NewAgent creates an agent from level configuration
func NewAgent(index int, spawn AgentSpawn, w *World) *Agent {
	def := GetKindDef(spawn.Kind)
	a := &Agent{
		Index:      index,
		Kind:       spawn.Kind,
		X:          spawn.X,
		Z:          spawn.Z,
		Health:     def.MaxHealth,
		MaxHealth:  def.MaxHealth,
		Alive:      true,
		State:      AgentPatrol,
		PatrolMinX: spawn.PatrolMinX,
		PatrolMaxX: spawn.PatrolMaxX,
		PatrolDir:  1,
	}
	a.Y = w.Terrain.Height(a.X, a.Z)
	if def.Attack != AttackNone {
		a.NextFireAt = w.Now + rollFireDelay(w, def)
	}
	return a
}

func rollFireDelay(w *World, def AgentKindDef) int64 {
	span := def.FireMaxMs - def.FireMinMs
	if span <= 0 {
		return def.FireMinMs
	}
	return def.FireMinMs + w.Rand.Int63n(span+1)
}

// IsFrozen reports whether the freeze effect currently suspends the agent
func (a *Agent) IsFrozen(now int64) bool {
	return a.Frozen && now < a.FrozenUntil
}

// Chasing reports whether the agent is engaged with a target
func (a *Agent) Chasing() bool {
	return a.State != AgentPatrol
}

// Step runs the host AI for one tick and returns the requested action
func (a *Agent) Step(w *World) AgentAction {
	var act AgentAction
	if !a.Alive {
		return act
	}
	if a.IsFrozen(w.Now) {
		a.VX, a.VZ = 0, 0
		return act
	}
	if a.Frozen {
		// Natural expiry: resume whatever state we were frozen in
		a.Frozen = false
	}

	def := GetKindDef(a.Kind)
	target, dist := w.NearestTarget(a.X, a.Z)

	switch a.State {
	case AgentPatrol:
		if target != nil && dist <= def.DetectRadius {
			a.State = AgentChase
		}
	case AgentCooldown:
		if w.Now >= a.CooldownUntil {
			a.State = AgentChase
		}
	}
	if a.State == AgentChase && !def.LatchChase && (target == nil || dist > def.LoseRadius) {
		a.State = AgentPatrol
	}

	prevX, prevZ := a.X, a.Z
	switch a.State {
	case AgentPatrol:
		a.patrol(def)
	case AgentChase:
		if target != nil && dist > def.MinDistance {
			if nx, nz, ok := normalize(target.X-a.X, target.Z-a.Z); ok {
				a.X += nx * def.Speed
				a.Z += nz * def.Speed
				a.Facing = math.Atan2(nx, nz)
			}
		}
	}
	if (a.X != prevX || a.Z != prevZ) && w.AgentBlocked(a.X, a.Z, def.Radius) {
		a.X, a.Z = prevX, prevZ
		if a.State == AgentPatrol {
			a.PatrolDir = -a.PatrolDir
		}
	}
	a.VX = a.X - prevX
	a.VZ = a.Z - prevZ
	a.Y = w.Terrain.Height(a.X, a.Z)

	if a.State != AgentChase || target == nil {
		return act
	}

	if def.ContactDamage > 0 && CirclesOverlap(a.X, a.Z, def.Radius, target.X, target.Z, AvatarRadius) {
		act.Contact = target
		a.enterCooldown(w, def)
	}

	if def.Attack != AttackNone && dist <= def.FireRange && w.Now >= a.NextFireAt {
		act.Fire = true
		act.TargetX = target.X
		act.TargetZ = target.Z
		a.Facing = math.Atan2(target.X-a.X, target.Z-a.Z)
		a.NextFireAt = w.Now + rollFireDelay(w, def)
		a.enterCooldown(w, def)
	}

	if def.TrailEveryMs > 0 && w.Now >= a.NextTrailAt && (a.VX != 0 || a.VZ != 0) {
		act.Trail = true
		a.NextTrailAt = w.Now + def.TrailEveryMs
	}
	return act
}

func (a *Agent) enterCooldown(w *World, def AgentKindDef) {
	a.State = AgentCooldown
	a.CooldownUntil = w.Now + def.RecoverMs
}

// patrol moves along the x axis and reverses at the configured bounds
func (a *Agent) patrol(def AgentKindDef) {
	if def.PatrolSpeed == 0 || a.PatrolMaxX <= a.PatrolMinX {
		return
	}
	a.X += a.PatrolDir * def.PatrolSpeed
	if a.X >= a.PatrolMaxX {
		a.X = a.PatrolMaxX
		a.PatrolDir = -1
	} else if a.X <= a.PatrolMinX {
		a.X = a.PatrolMinX
		a.PatrolDir = 1
	}
	if a.PatrolDir > 0 {
		a.Facing = math.Pi / 2
	} else {
		a.Facing = -math.Pi / 2
	}
}

// Extrapolate advances a client-side mirror between snapshots
func (a *Agent) Extrapolate(w *World) {
	if !a.Alive || a.IsFrozen(w.Now) {
		return
	}
	a.X += a.VX
	a.Z += a.VZ
	a.VX *= AgentVelocityDecay
	a.VZ *= AgentVelocityDecay
	a.Y = w.Terrain.Height(a.X, a.Z)
}

// TakeDamage reduces health and returns true if the agent died.
// Death is one-way.
func (a *Agent) TakeDamage(dmg int) bool {
	if !a.Alive || dmg <= 0 {
		return false
	}
	a.Health -= dmg
	if a.Health <= 0 {
		a.Health = 0
		a.Alive = false
		a.VX, a.VZ = 0, 0
		return true
	}
	return false
}

// ApplyFreeze suspends the agent until now+duration. An existing longer
// freeze is kept.
func (a *Agent) ApplyFreeze(now, duration int64) {
	if !a.Alive {
		return
	}
	until := now + duration
	if a.Frozen && a.FrozenUntil > until {
		return
	}
	a.Frozen = true
	a.FrozenUntil = until
	a.VX, a.VZ = 0, 0
}

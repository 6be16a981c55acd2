package main

// Death and damage causes
const (
	CauseLava    = "lava"
	CauseCrevice = "crevice"
	CauseTrap    = "trap"
	CauseTrail   = "lavaTrail"
	CauseTornado = "tornado"
	CauseAgent   = "agent"
	CauseBolt    = "bolt"
	CauseWave    = "wave"
)

// deathEvent maps a cause to the event announcing it
func deathEvent(cause string) string {
	switch cause {
	case CauseLava:
		return EvDeathByLava
	case CauseCrevice:
		return EvDeathByCrevice
	default:
		return EvDeathByHazard
	}
}

// damageAvatar applies locally detected damage to the owned avatar,
// honouring the invulnerability window. Returns true if it died.
func (g *Game) damageAvatar(av *Avatar, dmg int, cause string) bool {
	w := g.world
	if av != w.Local {
		return false
	}
	before := av.Health
	died := av.TakeDamage(dmg, w.Now, true)
	if died {
		g.localDied(cause)
		return true
	}
	if av.Health < before {
		g.audio.Play(CueHurt)
	}
	return false
}

// applyReceivedDamage applies damage the partner detected on our avatar.
// The sender already enforced the window, so it is not checked again.
func (g *Game) applyReceivedDamage(dmg int, cause string) {
	w := g.world
	av := w.Local
	if av.Dead || dmg <= 0 {
		return
	}
	if av.TakeDamage(dmg, w.Now, false) {
		g.localDied(cause)
		return
	}
	g.audio.Play(CueHurt)
}

// hitAvatar routes a hit detected here to the avatar's owner
func (g *Game) hitAvatar(av *Avatar, dmg int, cause string) {
	w := g.world
	if av == w.Local {
		g.damageAvatar(av, dmg, cause)
		return
	}
	if !av.Present || av.Dead || av.Invulnerable(w.Now) {
		return
	}
	// The mirror only tracks the window; its health arrives by state push
	av.LastDamageAt = w.Now
	g.emit(EvPlayerDamage, PlayerDamagePayload{
		ID: NewItemID(w.Now), Target: av.Owner, Amount: dmg, Source: cause,
	})
}

// applyKnockback pushes the owned avatar and re-resolves the move
func (g *Game) applyKnockback(dx, dz float64) {
	w := g.world
	a := w.Local
	if a.Dead {
		return
	}
	prevX, prevZ := a.X, a.Z
	lvl := &w.Level
	a.X = Clamp(a.X+dx, lvl.MinX+AvatarRadius, lvl.MaxX-AvatarRadius)
	a.Z = Clamp(a.Z+dz, lvl.MinZ+AvatarRadius, lvl.MaxZ-AvatarRadius)
	res := ResolveAvatarMovement(w, a, prevX, prevZ)
	a.SettleHeight(w.Terrain)
	g.applyMoveResult(res)
}

// localDied ends the shared life pool and tells the partner why
func (g *Game) localDied(cause string) {
	w := g.world
	a := w.Local
	a.Dead = true
	a.Health = 0
	if a.Cause == "" {
		a.Cause = cause
	}
	g.emit(deathEvent(cause), DeathPayload{
		ID: NewItemID(w.Now), Cause: cause, X: round2(a.X), Z: round2(a.Z),
	})
	g.gameOver(cause)
}

// remoteDied mirrors the partner's death
func (g *Game) remoteDied(cause string) {
	w := g.world
	w.Remote.Kill(cause)
	g.gameOver(cause)
}

func (g *Game) gameOver(cause string) {
	w := g.world
	if w.GameDead {
		return
	}
	w.GameDead = true
	w.DeathCause = cause
	g.audio.Play(CueDeath)
}

// bulletHitAgent handles a hit by a bullet this peer owns. The host applies
// it; a client reports it and waits for the host's verdict.
func (g *Game) bulletHitAgent(b *Bullet, a *Agent) {
	if g.role.Authoritative() {
		g.damageAgent(a, b.Damage, b.ID)
		return
	}
	g.emit(EvAgentHit, AgentHitPayload{ID: b.ID, Agent: a.Index, Damage: b.Damage})
}

// damageAgent applies host-authoritative damage. hitID, when set, is the
// bullet id and is counted once.
func (g *Game) damageAgent(a *Agent, dmg int, hitID string) {
	if hitID != "" && !g.consumed.Add(hitID) {
		return
	}
	if !a.TakeDamage(dmg) {
		return
	}
	g.agentKilled(a)
	g.emit(EvAgentKilled, AgentKilledPayload{ID: NewItemID(g.world.Now), Agent: a.Index})
}

func (g *Game) agentKilled(a *Agent) {
	g.world.Kills++
	g.scene.Remove(Visual{Kind: VisualAgent, ID: agentVisualID(a.Index)})
	g.audio.Play(CueExplosion)
}

package main

// syncOut sends the rate-limited continuous state for this tick
func (g *Game) syncOut() {
	if !g.role.Syncs() {
		return
	}
	w := g.world
	if g.role.Authoritative() {
		if g.tick%g.snapEvery == 0 {
			g.transport.SendSnapshot(g.buildSnapshot())
		}
		return
	}
	if g.tick%g.pushEvery == 0 {
		g.transport.SendPlayerState(w.Local.ToState(w))
	}
}

// buildSnapshot captures the host-owned state the client mirrors
func (g *Game) buildSnapshot() Snapshot {
	w := g.world
	s := Snapshot{
		Tick:     g.tick,
		Level:    w.Level.Number,
		Host:     w.Local.ToState(w),
		Agents:   make([]AgentSnap, 0, len(w.Agents)),
		Tornados: make([]TornadoState, 0, len(w.Tornados)),
		Bridge:   w.BridgeRepaired,
		Kills:    w.Kills,
	}
	for _, a := range w.Agents {
		as := AgentSnap{
			I:     a.Index,
			X:     round2(a.X),
			Z:     round2(a.Z),
			VX:    a.VX,
			VZ:    a.VZ,
			R:     round2(a.Facing),
			HP:    a.Health,
			Alive: a.Alive,
			State: a.State,
		}
		if a.IsFrozen(w.Now) {
			as.Frozen = a.FrozenUntil - w.Now
		}
		s.Agents = append(s.Agents, as)
	}
	for _, t := range w.Tornados {
		s.Tornados = append(s.Tornados, TornadoState{ID: t.ID, X: round2(t.X), Z: round2(t.Z), VX: t.VX, VZ: t.VZ})
	}
	for t := range w.Collectibles {
		for _, c := range w.Collectibles[t] {
			if c.Collected {
				s.Picked = append(s.Picked, PickRef{T: c.Type, I: c.Index})
			}
		}
	}
	return s
}

// HandlePlayerState applies the client's avatar push on the host
func (g *Game) HandlePlayerState(s PlayerState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := g.world
	if s.Level != w.Level.Number {
		return
	}
	if !g.predictor.Update(w.Remote, s, w) {
		return
	}
	if s.Dead && !w.Remote.Dead {
		g.remoteDied(CauseAgent)
	}
}

// PartnerAttached forgets the previous partner's push history so a
// rejoining client, whose tick count restarts, is not treated as stale
func (g *Game) PartnerAttached() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.predictor.Reset()
}

// HandleSnapshot reconciles the client's mirrors with the host. Alive flags
// only ever go from true to false here.
func (g *Game) HandleSnapshot(s Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s.Level > g.world.Level.Number {
		// levelChange was lost
		g.loadLevel(s.Level)
	}
	w := g.world
	if s.Level != w.Level.Number {
		return
	}

	if g.predictor.Update(w.Remote, s.Host, w) && s.Host.Dead && !w.Remote.Dead {
		g.remoteDied(CauseAgent)
	}

	for _, as := range s.Agents {
		a := w.agentByIndex(as.I)
		if a == nil || !a.Alive {
			continue
		}
		if !as.Alive {
			a.TakeDamage(a.Health)
			g.agentKilled(a)
			continue
		}
		a.X, a.Z = as.X, as.Z
		a.VX, a.VZ = as.VX, as.VZ
		a.Facing = as.R
		a.Health = as.HP
		a.State = as.State
		a.Y = w.Terrain.Height(a.X, a.Z)
		if as.Frozen > 0 {
			a.Frozen = true
			a.FrozenUntil = w.Now + as.Frozen
		} else {
			a.Frozen = false
		}
	}

	g.reconcileTornados(s.Tornados)

	for _, p := range s.Picked {
		if w.Collect(p.T, p.I, nil) {
			g.scene.Remove(Visual{Kind: VisualCollectible, ID: collectibleVisualID(p.T, p.I)})
		}
	}
	if s.Bridge && !w.BridgeRepaired && w.Level.Bridge != nil {
		w.BridgeRepaired = true
		g.scene.Add(Visual{Kind: VisualBridge, ID: "bridge", X: w.Level.Bridge.X, Z: w.Level.Bridge.Z})
	}
	if s.Kills > w.Kills {
		w.Kills = s.Kills
	}
}

// reconcileTornados replaces the mirrored tornado list with the host's
func (g *Game) reconcileTornados(states []TornadoState) {
	w := g.world
	keep := make(map[string]bool, len(states))
	for _, ts := range states {
		keep[ts.ID] = true
	}
	n := 0
	for _, t := range w.Tornados {
		if !keep[t.ID] {
			g.scene.Remove(Visual{Kind: VisualTornado, ID: t.ID})
			continue
		}
		w.Tornados[n] = t
		n++
	}
	clear(w.Tornados[n:])
	w.Tornados = w.Tornados[:n]

	for _, ts := range states {
		if i := w.findTornado(ts.ID); i >= 0 {
			t := w.Tornados[i]
			t.X, t.Z, t.VX, t.VZ = ts.X, ts.Z, ts.VX, ts.VZ
			continue
		}
		t := &Tornado{ID: ts.ID, X: ts.X, Z: ts.Z, VX: ts.VX, VZ: ts.VZ, Alive: true}
		w.Tornados = append(w.Tornados, t)
		g.scene.Add(Visual{Kind: VisualTornado, ID: t.ID, X: t.X, Z: t.Z})
	}
}

// HandleWelcome moves a freshly attached client onto the host's level
func (g *Game) HandleWelcome(msg WelcomeMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if msg.Level > g.world.Level.Number {
		g.loadLevel(msg.Level)
	}
}

// Welcome builds the message the host sends to a newly attached partner
func (g *Game) Welcome(sessionID string) WelcomeMsg {
	g.mu.Lock()
	defer g.mu.Unlock()
	return WelcomeMsg{Session: sessionID, Level: g.world.Level.Number}
}

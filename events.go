package main

import (
	"encoding/json"
	"log"
)

// seenSet is a bounded set of ids; the oldest id is forgotten first
type seenSet struct {
	ids  map[string]struct{}
	ring []string
	next int
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		ids:  make(map[string]struct{}, capacity),
		ring: make([]string, capacity),
	}
}

// Add records id and returns false if it was already present
func (s *seenSet) Add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	if old := s.ring[s.next]; old != "" {
		delete(s.ids, old)
	}
	s.ring[s.next] = id
	s.next = (s.next + 1) % len(s.ring)
	s.ids[id] = struct{}{}
	return true
}

// HandleGameEvent applies an event from the partner. Repeats of an id are
// dropped; references to unknown entities are silent no-ops.
func (g *Game) HandleGameEvent(eventType string, data json.RawMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var hdr eventHeader
	if len(data) > 0 {
		if err := json.Unmarshal(data, &hdr); err != nil {
			log.Printf("event %s: %v", eventType, err)
			return
		}
	}
	if hdr.ID != "" && !g.seen.Add(eventType+"/"+hdr.ID) {
		return
	}
	if g.log != nil {
		g.log.LogEvent("in", eventType, data)
	}

	if err := g.applyEvent(eventType, data); err != nil {
		log.Printf("event %s: %v", eventType, err)
	}
}

func (g *Game) applyEvent(eventType string, data json.RawMessage) error {
	w := g.world

	switch eventType {
	case EvPlayerDamage:
		var p PlayerDamagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if p.Target != g.local || w.GameDead {
			return nil
		}
		cause := p.Source
		if cause == "" {
			cause = CauseAgent
		}
		g.applyReceivedDamage(p.Amount, cause)

	case EvTornadoHit:
		var p TornadoHitPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if w.GameDead {
			return nil
		}
		g.applyKnockback(p.DX, p.DZ)
		g.applyReceivedDamage(p.Amount, CauseTornado)

	case EvItemCollected:
		var p ItemCollectedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		t, ok := ParseCollectibleType(p.Type)
		if !ok {
			return nil
		}
		if w.Collect(t, p.Index, nil) {
			g.scene.Remove(Visual{Kind: VisualCollectible, ID: collectibleVisualID(t, p.Index)})
		}

	case EvBombPlaced:
		var p BombPlacedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		b := &Bomb{ID: p.ID, Owner: p.Owner, X: p.X, Z: p.Z, ExplodeAt: w.Now + p.FuseMs}
		if w.addBomb(b) {
			g.scene.Add(Visual{Kind: VisualBomb, ID: b.ID, X: b.X, Y: w.Terrain.Height(b.X, b.Z), Z: b.Z})
		}

	case EvBombExploded:
		var p BombExplodedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if b := w.removeBomb(p.ID); b != nil {
			g.scene.Remove(Visual{Kind: VisualBomb, ID: b.ID})
			g.scene.Add(Visual{Kind: VisualExplosion, ID: b.ID, X: b.X, Y: w.Terrain.Height(b.X, b.Z), Z: b.Z})
			g.audio.Play(CueExplosion)
		}

	case EvTurretPlaced:
		var p TurretPlacedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		t := &Turret{
			ID: p.ID, Owner: p.Owner, X: p.X, Z: p.Z,
			ExpiresAt: w.Now + p.LifetimeMs, NextShotAt: w.Now + TurretFireMs,
		}
		if w.addTurret(t) {
			g.scene.Add(Visual{Kind: VisualTurret, ID: t.ID, X: t.X, Y: w.Terrain.Height(t.X, t.Z), Z: t.Z})
		}

	case EvTurretRemoved:
		var p TurretRemovedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if t := w.removeTurret(p.ID); t != nil {
			g.scene.Remove(Visual{Kind: VisualTurret, ID: t.ID})
		}

	case EvBridgeRepaired:
		if w.BridgeRepaired || w.Level.Bridge == nil {
			return nil
		}
		w.BridgeRepaired = true
		g.scene.Add(Visual{Kind: VisualBridge, ID: "bridge", X: w.Level.Bridge.X, Z: w.Level.Bridge.Z})
		g.audio.Play(CueBridge)

	case EvIcePowerActivated:
		var p IcePowerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		g.freezeAround(p.X, p.Z, p.DurationMs)

	case EvLevelChange:
		var p LevelChangePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if p.Level > w.Level.Number {
			g.loadLevel(p.Level)
		}

	case EvLavaTrailCreate:
		var p LavaTrailPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		t := &LavaTrail{ID: p.ID, X: p.X, Z: p.Z, Radius: p.Radius, ExpiresAt: w.Now + p.TTLMs}
		if w.addTrail(t) {
			g.scene.Add(Visual{Kind: VisualTrail, ID: t.ID, X: t.X, Y: w.Terrain.Height(t.X, t.Z), Z: t.Z})
		}

	case EvDeathByLava, EvDeathByCrevice, EvDeathByHazard:
		var p DeathPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		g.remoteDied(p.Cause)

	case EvAgentHit:
		var p AgentHitPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if !g.role.Authoritative() {
			return nil
		}
		if a := w.agentByIndex(p.Agent); a != nil {
			// A dead agent means the host already settled it
			g.damageAgent(a, p.Damage, p.ID)
		}

	case EvAgentKilled:
		var p AgentKilledPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if a := w.agentByIndex(p.Agent); a != nil && a.Alive {
			a.TakeDamage(a.Health)
			g.agentKilled(a)
		}

	case EvAgentFired:
		var p AgentFiredPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		g.mirrorAgentFire(p)

	case EvBulletFired:
		var p BulletFiredPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		for _, b := range w.Bullets {
			if b.ID == p.ID {
				return nil
			}
		}
		b := NewBullet(p.ID, p.Owner, false, p.X, p.Z, p.DX, p.DZ, w.Now)
		w.Bullets = append(w.Bullets, b)
		g.scene.Add(Visual{Kind: VisualBullet, ID: b.ID, X: b.X, Z: b.Z})

	case EvGameRestart:
		g.reset()
	}
	return nil
}

// mirrorAgentFire spawns a partner-announced agent attack. Every peer
// simulates it against its own avatar.
func (g *Game) mirrorAgentFire(p AgentFiredPayload) {
	w := g.world
	a := w.agentByIndex(p.Agent)
	if a == nil || !a.Alive {
		return
	}
	switch p.Attack {
	case AttackBolt:
		b := NewBolt(p.ID, p.Bolt, p.Agent, p.X, p.Z, p.TX, p.TZ, w.Now)
		w.Bolts = append(w.Bolts, b)
		g.scene.Add(Visual{Kind: VisualBolt, ID: b.ID, X: b.X, Y: a.Y, Z: b.Z})
	case AttackWave:
		wv := NewWave(p.ID, p.X, p.Z, w.Now)
		w.Waves = append(w.Waves, wv)
		g.scene.Add(Visual{Kind: VisualWave, ID: wv.ID, X: wv.X, Y: a.Y, Z: wv.Z})
	}
}

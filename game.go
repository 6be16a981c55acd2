package main

import (
	"math/rand"
	"sync"
	"time"
)

const (
	StatePushRate = 20 // client avatar pushes per second
	SnapshotRate  = 10 // host snapshots per second
	seenEventCap  = 1024
)

// EventLog records protocol traffic outside the simulation
type EventLog interface {
	LogEvent(direction, eventType string, payload interface{})
}

// GameOptions configures a Game. Zero values pick defaults.
type GameOptions struct {
	Local     PeerID
	Level     int
	Transport Transport
	Terrain   Terrain
	Scene     Scene
	Audio     Audio
	Log       EventLog
	// Now returns wall time in ms. Used for cooldown scheduling only.
	Now    func() int64
	Seed   int64
	Levels func(n int) LevelConfig

	StatePushRate int
	SnapshotRate  int
}

// HUD is the read-only counter set a HUD draws each frame
type HUD struct {
	Level      int
	Role       string
	Health     int
	MaxHealth  int
	Ammo       int
	Bombs      int
	IceCharges int
	HasKite    bool
	Collected  int
	Treasure   int
	Wood       int
	AliveCount int
	Kills      int
	GameDead   bool
	DeathCause string
	Victory    bool
}

// Game runs one peer's simulation. Network handlers and the tick share mu,
// so inbound messages always apply between ticks.
type Game struct {
	mu sync.Mutex

	local     PeerID
	world     *World
	clock     SimClock
	tick      uint64
	role      Role
	transport Transport
	terrain   Terrain
	scene     Scene
	audio     Audio
	log       EventLog
	now       func() int64
	rng       *rand.Rand
	levels    func(n int) LevelConfig

	input     AvatarInput
	predictor Predictor
	seen      *seenSet // applied inbound event ids
	consumed  *seenSet // bullet ids already counted against agents
	victory   bool

	pushEvery uint64
	snapEvery uint64
}

// NewGame creates a Game on its first level
func NewGame(opts GameOptions) *Game {
	if opts.Local == "" {
		opts.Local = PeerHost
	}
	if opts.Now == nil {
		opts.Now = func() int64 { return time.Now().UnixMilli() }
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Terrain == nil {
		opts.Terrain = FlatTerrain(0)
	}
	if opts.Scene == nil {
		opts.Scene = nopScene{}
	}
	if opts.Audio == nil {
		opts.Audio = nopAudio{}
	}
	if opts.Levels == nil {
		opts.Levels = DefaultLevel
	}
	if opts.Level < 1 {
		opts.Level = 1
	}
	if opts.StatePushRate <= 0 {
		opts.StatePushRate = StatePushRate
	}
	if opts.SnapshotRate <= 0 {
		opts.SnapshotRate = SnapshotRate
	}

	g := &Game{
		local:     opts.Local,
		transport: opts.Transport,
		terrain:   opts.Terrain,
		scene:     opts.Scene,
		audio:     opts.Audio,
		log:       opts.Log,
		now:       opts.Now,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		levels:    opts.Levels,
		seen:      newSeenSet(seenEventCap),
		consumed:  newSeenSet(seenEventCap),
		pushEvery: everyTicks(opts.StatePushRate),
		snapEvery: everyTicks(opts.SnapshotRate),
	}
	g.role = ResolveRole(g.transport)
	g.world = NewWorld(g.levels(opts.Level), g.local, g.terrain, g.now(), g.rng)
	g.populateScene()
	return g
}

func everyTicks(rate int) uint64 {
	n := TickRate / rate
	if n < 1 {
		n = 1
	}
	return uint64(n)
}

// Advance feeds elapsed frame time to the clock and runs the ticks it
// covers. Returns the number of ticks run.
func (g *Game) Advance(delta time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clock.Advance(delta, g.step)
}

// SetInput replaces the local control state used by subsequent ticks
func (g *Game) SetInput(in AvatarInput) {
	g.mu.Lock()
	g.input = in
	g.mu.Unlock()
}

// Local returns this peer's id
func (g *Game) Local() PeerID {
	return g.local
}

// Role returns the role resolved on the last tick
func (g *Game) Role() Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.role
}

// Level returns the current level number
func (g *Game) Level() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.Level.Number
}

// HUD returns the current counters
func (g *Game) HUD() HUD {
	g.mu.Lock()
	defer g.mu.Unlock()
	w := g.world
	a := w.Local
	return HUD{
		Level:      w.Level.Number,
		Role:       g.role.Name(),
		Health:     a.Health,
		MaxHealth:  a.MaxHealth,
		Ammo:       a.Ammo,
		Bombs:      a.Bombs,
		IceCharges: a.IceCharges,
		HasKite:    a.HasKite,
		Collected:  w.Collected,
		Treasure:   w.Treasure,
		Wood:       w.Wood,
		AliveCount: w.AliveCount(),
		Kills:      w.Kills,
		GameDead:   w.GameDead,
		DeathCause: w.DeathCause,
		Victory:    g.victory,
	}
}

// step runs one tick of the pipeline. Caller holds mu.
func (g *Game) step() {
	g.tick++
	w := g.world
	w.Tick = g.tick
	w.Now = g.now()
	g.role = ResolveRole(g.transport)

	if w.GameDead || g.victory {
		return
	}

	g.stepLocalAvatar()
	if g.world != w || g.victory {
		// portal reached
		return
	}
	g.predictor.Step(w.Remote, w)
	g.stepBullets()
	g.stepBolts()
	g.stepWaves()

	g.role.RunAuthoritativeSteps(g)
	g.role.RunClientPredictionSteps(g)

	g.syncOut()
}

// stepLocalAvatar moves the owned avatar, resolves collisions and
// triggers, then handles powers.
func (g *Game) stepLocalAvatar() {
	w := g.world
	a := w.Local
	if a.Dead {
		return
	}
	prevX, prevZ := a.X, a.Z
	a.Step(w, g.input)
	res := ResolveAvatarMovement(w, a, prevX, prevZ)
	a.SettleHeight(w.Terrain)
	if g.applyMoveResult(res) {
		return
	}
	g.handlePowers(g.input)
}

// applyMoveResult turns resolver output into events and effects. Returns
// true if the tick should not continue for the avatar (death or level end).
func (g *Game) applyMoveResult(res MoveResult) bool {
	w := g.world
	if res.Died {
		g.localDied(res.Cause)
		return true
	}
	for _, ref := range res.Collected {
		g.scene.Remove(Visual{Kind: VisualCollectible, ID: collectibleVisualID(ref.Type, ref.Index)})
		g.audio.Play(CuePickup)
		g.emit(EvItemCollected, ItemCollectedPayload{Type: ref.Type.String(), Index: ref.Index})
	}
	for _, h := range res.Hazards {
		if g.damageAvatar(w.Local, h.Damage, h.Cause) {
			return true
		}
	}
	if res.BridgeRepaired {
		g.scene.Add(Visual{Kind: VisualBridge, ID: "bridge", X: w.Level.Bridge.X, Z: w.Level.Bridge.Z})
		g.audio.Play(CueBridge)
		g.emit(EvBridgeRepaired, BridgeRepairedPayload{ID: NewItemID(w.Now)})
	}
	if res.Portal {
		next := w.Level.Number + 1
		g.emit(EvLevelChange, LevelChangePayload{ID: NewItemID(w.Now), Level: next})
		g.loadLevel(next)
		return true
	}
	return false
}

// stepBullets advances every bullet. Hits by bullets this peer owns are
// applied (host) or reported (client); mirrors only despawn.
func (g *Game) stepBullets() {
	w := g.world
	n := 0
	for _, b := range w.Bullets {
		if hit := b.Step(w); hit != nil && b.Local {
			g.bulletHitAgent(b, hit)
		}
		if !b.Alive {
			g.scene.Remove(Visual{Kind: VisualBullet, ID: b.ID})
			continue
		}
		w.Bullets[n] = b
		n++
	}
	clear(w.Bullets[n:])
	w.Bullets = w.Bullets[:n]
}

func (g *Game) stepBolts() {
	w := g.world
	n := 0
	for _, b := range w.Bolts {
		if b.Step(w) {
			g.damageAvatar(w.Local, GetBoltDef(b.Kind).Damage, CauseBolt)
		}
		if !b.Alive {
			g.scene.Remove(Visual{Kind: VisualBolt, ID: b.ID})
			continue
		}
		w.Bolts[n] = b
		n++
	}
	clear(w.Bolts[n:])
	w.Bolts = w.Bolts[:n]
}

func (g *Game) stepWaves() {
	w := g.world
	n := 0
	for _, wv := range w.Waves {
		if wv.Step(w) {
			g.damageAvatar(w.Local, WaveDamage, CauseWave)
		}
		if !wv.Alive {
			g.scene.Remove(Visual{Kind: VisualWave, ID: wv.ID})
			continue
		}
		w.Waves[n] = wv
		n++
	}
	clear(w.Waves[n:])
	w.Waves = w.Waves[:n]
}

// stepAgents runs the host AI and turns requested actions into effects
func (g *Game) stepAgents() {
	w := g.world
	for _, a := range w.Agents {
		act := a.Step(w)
		def := GetKindDef(a.Kind)
		if act.Contact != nil {
			g.hitAvatar(act.Contact, def.ContactDamage, CauseAgent)
		}
		if act.Fire {
			g.agentFire(a, def, act.TargetX, act.TargetZ)
		}
		if act.Trail {
			g.dropTrail(a)
		}
		if w.GameDead {
			return
		}
	}
}

// agentFire spawns an agent attack locally and mirrors it
func (g *Game) agentFire(a *Agent, def AgentKindDef, tx, tz float64) {
	w := g.world
	id := NewItemID(w.Now)
	switch def.Attack {
	case AttackBolt:
		b := NewBolt(id, def.Bolt, a.Index, a.X, a.Z, tx, tz, w.Now)
		w.Bolts = append(w.Bolts, b)
		g.scene.Add(Visual{Kind: VisualBolt, ID: id, X: a.X, Y: a.Y, Z: a.Z})
	case AttackWave:
		wv := NewWave(id, a.X, a.Z, w.Now)
		w.Waves = append(w.Waves, wv)
		g.scene.Add(Visual{Kind: VisualWave, ID: id, X: a.X, Y: a.Y, Z: a.Z})
	default:
		return
	}
	g.emit(EvAgentFired, AgentFiredPayload{
		ID: id, Agent: a.Index, Attack: def.Attack, Bolt: def.Bolt,
		X: round2(a.X), Z: round2(a.Z), TX: round2(tx), TZ: round2(tz),
	})
}

// emit sends an event to the partner when this peer syncs
func (g *Game) emit(eventType string, payload interface{}) {
	if g.log != nil {
		g.log.LogEvent("out", eventType, payload)
	}
	if !g.role.Syncs() {
		return
	}
	g.transport.SendGameEvent(eventType, payload)
}

// Restart resets to level 1 on both peers
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.emit(EvGameRestart, GameRestartPayload{ID: NewItemID(g.now())})
	g.reset()
}

// reset reloads level 1 with a fresh inventory
func (g *Game) reset() {
	g.clearScene()
	remotePresent := g.world.Remote.Present
	g.victory = false
	g.world = NewWorld(g.levels(1), g.local, g.terrain, g.now(), g.rng)
	g.world.Tick = g.tick
	g.world.Remote.Present = remotePresent
	g.predictor.Reset()
	g.populateScene()
}

// loadLevel switches to level n, carrying the local inventory over. A
// number past the last level ends the run in victory.
func (g *Game) loadLevel(n int) {
	old := g.world
	if n > LevelCount {
		old.LevelDone = true
		g.victory = true
		g.audio.Play(CueLevel)
		return
	}
	carry := old.Local.Inventory()
	g.clearScene()

	w := NewWorld(g.levels(n), g.local, g.terrain, g.now(), g.rng)
	w.Tick = g.tick
	w.Kills = old.Kills
	w.Local.RestoreInventory(carry)
	w.Remote.Present = old.Remote.Present
	g.world = w
	g.predictor.Reset()
	g.populateScene()
	g.audio.Play(CueLevel)
}

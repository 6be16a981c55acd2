package main

import (
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// recordTransport captures everything the game sends
type recordTransport struct {
	mu        sync.Mutex
	host      bool
	connected bool
	events    []sentEvent
	states    []PlayerState
	snapshots []Snapshot
}

type sentEvent struct {
	Type    string
	Payload interface{}
}

func (r *recordTransport) SendGameEvent(eventType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{Type: eventType, Payload: payload})
}

func (r *recordTransport) SendPlayerState(s PlayerState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recordTransport) SendSnapshot(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recordTransport) IsHost() bool      { return r.host }
func (r *recordTransport) IsConnected() bool { return r.connected }

func (r *recordTransport) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// testLevel is an empty flat arena for focused tests
func testLevel(n int) LevelConfig {
	return LevelConfig{
		Number: n,
		MinX:   -50, MinZ: -50, MaxX: 50, MaxZ: 50,
		HostSpawn:   [2]float64{0, 10},
		ClientSpawn: [2]float64{4, 10},
		Portal:      PortalConfig{Zone: Zone{X: 0, Z: -40, Radius: 2}, RequiredTreasure: 1},
	}
}

func testWorld(level LevelConfig) *World {
	return NewWorld(level, PeerHost, nil, 0, rand.New(rand.NewSource(1)))
}

// testClock is a controllable millisecond clock
type testClock struct{ ms int64 }

func (c *testClock) now() int64 { return c.ms }

func newTestGame(local PeerID, tr Transport, clk *testClock, level func(int) LevelConfig) *Game {
	if level == nil {
		level = testLevel
	}
	opts := GameOptions{
		Local:  local,
		Seed:   1,
		Levels: level,
		Now:    clk.now,
	}
	if tr != nil {
		opts.Transport = tr
	}
	return NewGame(opts)
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestGameAdvanceRunsFixedTicks(t *testing.T) {
	g := newTestGame(PeerHost, nil, &testClock{}, nil)
	if n := g.Advance(100 * time.Millisecond); n != 6 {
		t.Errorf("expected 6 ticks, got %d", n)
	}
	if g.tick != 6 {
		t.Errorf("expected tick 6, got %d", g.tick)
	}
}

func TestGameSoloSendsNothing(t *testing.T) {
	tr := &recordTransport{host: true}
	g := newTestGame(PeerHost, tr, &testClock{}, nil)
	g.SetInput(AvatarInput{Fire: true})
	g.Advance(time.Second)

	if g.Role().Name() != "solo" {
		t.Errorf("expected solo role, got %s", g.Role().Name())
	}
	if len(tr.events) != 0 || len(tr.snapshots) != 0 {
		t.Errorf("solo peer should not send, got %d events %d snapshots", len(tr.events), len(tr.snapshots))
	}
	if len(g.world.Bullets) == 0 {
		t.Error("solo peer should still fire locally")
	}
}

func TestGameHostSnapshotRate(t *testing.T) {
	tr := &recordTransport{host: true, connected: true}
	g := newTestGame(PeerHost, tr, &testClock{}, nil)
	g.Advance(time.Second)

	if len(tr.snapshots) != SnapshotRate {
		t.Errorf("expected %d snapshots, got %d", SnapshotRate, len(tr.snapshots))
	}
	if len(tr.states) != 0 {
		t.Error("host should not push player state")
	}
}

func TestGameClientPushRate(t *testing.T) {
	tr := &recordTransport{connected: true}
	g := newTestGame(PeerClient, tr, &testClock{}, nil)
	g.Advance(time.Second)

	if len(tr.states) != StatePushRate {
		t.Errorf("expected %d state pushes, got %d", StatePushRate, len(tr.states))
	}
	if len(tr.snapshots) != 0 {
		t.Error("client should not send snapshots")
	}
	if g.world.Local.Owner != PeerClient {
		t.Errorf("client should own the client avatar, got %s", g.world.Local.Owner)
	}
}

func TestGameRoleDegradesToSolo(t *testing.T) {
	tr := &recordTransport{host: true, connected: true}
	g := newTestGame(PeerHost, tr, &testClock{}, nil)
	g.step()
	if g.Role().Name() != "host" {
		t.Fatalf("expected host, got %s", g.Role().Name())
	}
	tr.connected = false
	g.step()
	if g.Role().Name() != "solo" {
		t.Errorf("expected solo after disconnect, got %s", g.Role().Name())
	}
}

func TestGameLocalMovement(t *testing.T) {
	g := newTestGame(PeerHost, nil, &testClock{}, nil)
	startZ := g.world.Local.Z
	g.SetInput(AvatarInput{MoveZ: -1})
	for i := 0; i < 10; i++ {
		g.step()
	}
	want := startZ - 10*AvatarSpeed
	if d := g.world.Local.Z - want; d > 1e-9 || d < -1e-9 {
		t.Errorf("expected Z %f, got %f", want, g.world.Local.Z)
	}
}

func TestGamePortalAdvancesLevel(t *testing.T) {
	tr := &recordTransport{host: true, connected: true}
	g := newTestGame(PeerHost, tr, &testClock{}, nil)
	w := g.world
	w.Treasure = 1
	w.Kills = 4
	w.Local.Ammo = 7
	w.Local.Bombs = 2
	w.Local.X, w.Local.Z = 0, -39

	g.step()

	if g.Level() != 2 {
		t.Fatalf("expected level 2, got %d", g.Level())
	}
	if tr.count(EvLevelChange) != 1 {
		t.Errorf("expected one levelChange event, got %d", tr.count(EvLevelChange))
	}
	nw := g.world
	if nw.Local.Ammo != 7 || nw.Local.Bombs != 2 {
		t.Errorf("inventory not carried: ammo %d bombs %d", nw.Local.Ammo, nw.Local.Bombs)
	}
	if nw.Kills != 4 {
		t.Errorf("kills should carry over, got %d", nw.Kills)
	}
	if nw.Treasure != 0 {
		t.Errorf("treasure should reset per level, got %d", nw.Treasure)
	}
}

func TestGameVictoryAfterLastLevel(t *testing.T) {
	g := newTestGame(PeerHost, nil, &testClock{}, nil)
	g.loadLevel(LevelCount)
	g.world.Treasure = 1
	g.world.Local.X, g.world.Local.Z = 0, -39
	g.step()

	hud := g.HUD()
	if !hud.Victory {
		t.Error("expected victory after the last portal")
	}
	tick := g.tick
	g.world.Local.X = 20
	g.step()
	if g.world.Local.X != 20 || g.tick != tick+1 {
		t.Error("simulation should idle after victory")
	}
}

func TestGameRestart(t *testing.T) {
	tr := &recordTransport{host: true, connected: true}
	g := newTestGame(PeerHost, tr, &testClock{}, nil)
	g.step()
	g.loadLevel(2)
	g.world.Local.Health = 1
	g.world.GameDead = true

	g.Restart()

	if g.Level() != 1 {
		t.Errorf("expected level 1, got %d", g.Level())
	}
	if g.world.GameDead || g.world.Local.Health != AvatarMaxHealth {
		t.Error("restart should give a fresh world")
	}
	if tr.count(EvGameRestart) != 1 {
		t.Errorf("expected one gameRestart event, got %d", tr.count(EvGameRestart))
	}
}

func TestGameDeadWorldIdles(t *testing.T) {
	g := newTestGame(PeerHost, nil, &testClock{}, nil)
	g.world.GameDead = true
	g.SetInput(AvatarInput{MoveX: 1})
	x := g.world.Local.X
	g.step()
	if g.world.Local.X != x {
		t.Error("avatar should not move once the game is over")
	}
}

func TestGameHUD(t *testing.T) {
	g := newTestGame(PeerHost, nil, &testClock{}, DefaultLevel)
	hud := g.HUD()
	if hud.Level != 1 || hud.Health != AvatarMaxHealth || hud.Ammo != AvatarStartAmmo {
		t.Errorf("unexpected HUD %+v", hud)
	}
	if hud.AliveCount != len(DefaultLevel(1).Agents) {
		t.Errorf("expected %d agents alive, got %d", len(DefaultLevel(1).Agents), hud.AliveCount)
	}
	if hud.Role != "solo" {
		t.Errorf("expected solo role, got %s", hud.Role)
	}
}

func TestDefaultLevelTreasureOpensPortal(t *testing.T) {
	g := newTestGame(PeerHost, nil, &testClock{}, DefaultLevel)
	w := g.world
	if len(w.Collectibles[CollectTreasure]) != 2 {
		t.Fatalf("level 1 should spawn 2 treasures, got %d", len(w.Collectibles[CollectTreasure]))
	}

	for _, c := range w.Collectibles[CollectTreasure] {
		w.Local.X, w.Local.Z = c.X, c.Z+0.5
		g.step()
		if !c.Collected {
			t.Fatalf("treasure %d at (%.0f,%.0f) not collected", c.Index, c.X, c.Z)
		}
	}
	if hud := g.HUD(); hud.Treasure != 2 {
		t.Fatalf("expected 2 treasure, got %d", hud.Treasure)
	}

	p := w.Level.Portal
	w.Local.X, w.Local.Z = p.X, p.Z
	g.step()
	if g.Level() != 2 {
		t.Errorf("portal should open with the treasure in hand, level %d", g.Level())
	}
}

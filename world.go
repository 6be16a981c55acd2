package main

import (
	"math/rand"
	"slices"
)

// World is the entity registry for one level. It is passed by pointer into
// every step function; nothing else holds entity state.
type World struct {
	Level   LevelConfig
	Terrain Terrain
	Grid    *SpatialGrid
	Rand    *rand.Rand
	Now     int64 // ms, set at the start of each tick
	Tick    uint64

	Local  *Avatar
	Remote *Avatar

	Agents       []*Agent
	Bullets      []*Bullet
	Bolts        []*Bolt
	Waves        []*Wave
	Bombs        []*Bomb
	Turrets      []*Turret
	Trails       []*LavaTrail
	Tornados     []*Tornado
	Traps        []*Trap
	Collectibles [collectibleTypeCount][]*Collectible
	pickups      []*Collectible // flat spawn order, indexed by grid refs

	BridgeRepaired bool
	NextTornadoAt  int64

	// HUD counters
	Collected int
	Treasure  int
	Wood      int
	Kills     int

	GameDead   bool
	DeathCause string
	LevelDone  bool

	queryBuf []EntityRef
	candBuf  []int
}

// NewWorld builds a world from static level content. local selects which
// spawn point the locally owned avatar takes.
func NewWorld(level LevelConfig, local PeerID, terrain Terrain, now int64, rng *rand.Rand) *World {
	if terrain == nil {
		terrain = FlatTerrain(0)
	}
	w := &World{
		Level:   level,
		Terrain: terrain,
		Grid:    NewSpatialGrid(level.MinX, level.MinZ, level.MaxX, level.MaxZ),
		Rand:    rng,
		Now:     now,
	}

	hostAv := NewAvatar(PeerHost, level.HostSpawn[0], level.HostSpawn[1])
	clientAv := NewAvatar(PeerClient, level.ClientSpawn[0], level.ClientSpawn[1])
	if local == PeerClient {
		w.Local, w.Remote = clientAv, hostAv
	} else {
		w.Local, w.Remote = hostAv, clientAv
	}
	w.Local.Present = true
	w.Local.SettleHeight(terrain)
	w.Remote.SettleHeight(terrain)

	for i := range level.Obstacles {
		o := &level.Obstacles[i]
		w.Grid.InsertCircle(o.X, o.Z, o.BoundRadius(), EntityRef{Kind: 'o', Idx: i})
	}
	for i, spawn := range level.Agents {
		w.Agents = append(w.Agents, NewAgent(i, spawn, w))
	}
	for _, spawn := range level.Collectibles {
		if spawn.Type < 0 || spawn.Type >= collectibleTypeCount {
			continue
		}
		list := w.Collectibles[spawn.Type]
		c := &Collectible{
			Type:  spawn.Type,
			Index: len(list),
			X:     spawn.X,
			Z:     spawn.Z,
		}
		w.Collectibles[spawn.Type] = append(list, c)
		w.Grid.Insert(c.X, c.Z, EntityRef{Kind: 'c', Idx: len(w.pickups)})
		w.pickups = append(w.pickups, c)
	}
	for i, spawn := range level.Traps {
		w.Traps = append(w.Traps, &Trap{
			Index:    i,
			X:        spawn.X,
			Z:        spawn.Z,
			Radius:   spawn.Radius,
			PeriodMs: spawn.PeriodMs,
			ArmedMs:  spawn.ArmedMs,
		})
	}
	return w
}

// InBounds reports whether (x,z) lies within the level rectangle
func (w *World) InBounds(x, z float64) bool {
	return x >= w.Level.MinX && x <= w.Level.MaxX && z >= w.Level.MinZ && z <= w.Level.MaxZ
}

// InSafeZone reports whether (x,z) lies in a zone agents ignore
func (w *World) InSafeZone(x, z float64) bool {
	for _, s := range w.Level.SafeZones {
		if DistanceSq(x, z, s.X, s.Z) < s.Radius*s.Radius {
			return true
		}
	}
	return false
}

// NearestTarget returns the closest avatar agents may pursue and its distance
func (w *World) NearestTarget(x, z float64) (*Avatar, float64) {
	var best *Avatar
	bestD := 0.0
	for _, av := range []*Avatar{w.Local, w.Remote} {
		if !av.Present || av.Dead || w.InSafeZone(av.X, av.Z) {
			continue
		}
		d := Distance(x, z, av.X, av.Z)
		if best == nil || d < bestD {
			best = av
			bestD = d
		}
	}
	return best, bestD
}

// obstaclesNear returns the sorted, de-duplicated indices of obstacles
// whose grid cells overlap the query circle. The slice is reused.
func (w *World) obstaclesNear(x, z, r float64) []int {
	return w.near('o', x, z, r)
}

// pickupsNear returns indices into w.pickups the same way
func (w *World) pickupsNear(x, z, r float64) []int {
	return w.near('c', x, z, r)
}

func (w *World) near(kind byte, x, z, r float64) []int {
	w.queryBuf = w.Grid.QueryBuf(x, z, r, w.queryBuf[:0])
	w.candBuf = w.candBuf[:0]
	for _, ref := range w.queryBuf {
		if ref.Kind == kind {
			w.candBuf = append(w.candBuf, ref.Idx)
		}
	}
	slices.Sort(w.candBuf)
	w.candBuf = slices.Compact(w.candBuf)
	return w.candBuf
}

// ProjectileBlocked reports whether a projectile circle hits solid geometry.
// Death zones and the river let projectiles pass.
func (w *World) ProjectileBlocked(x, z, r float64) bool {
	for _, i := range w.obstaclesNear(x, z, r) {
		o := &w.Level.Obstacles[i]
		if o.Class.Deadly() || o.Class == ObstacleRiver {
			continue
		}
		if o.Overlaps(x, z, r) {
			return true
		}
	}
	return false
}

// AgentBlocked reports whether an agent circle at (x,z) overlaps anything it
// may not enter. Agents treat death zones as walls.
func (w *World) AgentBlocked(x, z, r float64) bool {
	if !w.InBounds(x, z) {
		return true
	}
	for _, i := range w.obstaclesNear(x, z, r) {
		o := &w.Level.Obstacles[i]
		if o.Class == ObstacleRiver && w.BridgeRepaired {
			continue
		}
		if o.Overlaps(x, z, r) {
			return true
		}
	}
	return false
}

// AliveCount returns the number of live agents
func (w *World) AliveCount() int {
	n := 0
	for _, a := range w.Agents {
		if a.Alive {
			n++
		}
	}
	return n
}

// agentByIndex looks up an agent by its level index
func (w *World) agentByIndex(i int) *Agent {
	if i < 0 || i >= len(w.Agents) {
		return nil
	}
	return w.Agents[i]
}

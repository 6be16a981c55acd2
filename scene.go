package main

import "strconv"

// VisualKind tags the renderer object behind a Visual
type VisualKind int

const (
	VisualAgent VisualKind = iota
	VisualCollectible
	VisualBullet
	VisualBolt
	VisualWave
	VisualBomb
	VisualTurret
	VisualTrail
	VisualTornado
	VisualExplosion
	VisualBridge
)

// Visual identifies a renderer object. The core only announces creation and
// destruction; the renderer reads positions from the World itself.
type Visual struct {
	Kind    VisualKind
	ID      string
	X, Y, Z float64
}

// Scene receives visual lifecycle boundaries
type Scene interface {
	Add(v Visual)
	Remove(v Visual)
}

// Cue is an audio trigger
type Cue int

const (
	CueShot Cue = iota
	CueHurt
	CuePickup
	CueExplosion
	CueFreeze
	CueDeath
	CueLevel
	CueBridge
)

// Audio plays fire-and-forget cues
type Audio interface {
	Play(c Cue)
}

type nopScene struct{}

func (nopScene) Add(Visual)    {}
func (nopScene) Remove(Visual) {}

type nopAudio struct{}

func (nopAudio) Play(Cue) {}

func agentVisualID(index int) string {
	return "agent-" + strconv.Itoa(index)
}

func collectibleVisualID(t CollectibleType, index int) string {
	return t.String() + "-" + strconv.Itoa(index)
}

// populateScene announces every visual of a freshly loaded level
func (g *Game) populateScene() {
	w := g.world
	for _, a := range w.Agents {
		g.scene.Add(Visual{Kind: VisualAgent, ID: agentVisualID(a.Index), X: a.X, Y: a.Y, Z: a.Z})
	}
	for t := range w.Collectibles {
		for _, c := range w.Collectibles[t] {
			g.scene.Add(Visual{
				Kind: VisualCollectible, ID: collectibleVisualID(c.Type, c.Index),
				X: c.X, Y: w.Terrain.Height(c.X, c.Z), Z: c.Z,
			})
		}
	}
}

// clearScene removes every visual still alive in the current world
func (g *Game) clearScene() {
	w := g.world
	for _, a := range w.Agents {
		if a.Alive {
			g.scene.Remove(Visual{Kind: VisualAgent, ID: agentVisualID(a.Index)})
		}
	}
	for t := range w.Collectibles {
		for _, c := range w.Collectibles[t] {
			if !c.Collected {
				g.scene.Remove(Visual{Kind: VisualCollectible, ID: collectibleVisualID(c.Type, c.Index)})
			}
		}
	}
	for _, b := range w.Bullets {
		g.scene.Remove(Visual{Kind: VisualBullet, ID: b.ID})
	}
	for _, b := range w.Bolts {
		g.scene.Remove(Visual{Kind: VisualBolt, ID: b.ID})
	}
	for _, wv := range w.Waves {
		g.scene.Remove(Visual{Kind: VisualWave, ID: wv.ID})
	}
	for _, b := range w.Bombs {
		g.scene.Remove(Visual{Kind: VisualBomb, ID: b.ID})
	}
	for _, t := range w.Turrets {
		g.scene.Remove(Visual{Kind: VisualTurret, ID: t.ID})
	}
	for _, t := range w.Trails {
		g.scene.Remove(Visual{Kind: VisualTrail, ID: t.ID})
	}
	for _, t := range w.Tornados {
		g.scene.Remove(Visual{Kind: VisualTornado, ID: t.ID})
	}
	if w.BridgeRepaired {
		g.scene.Remove(Visual{Kind: VisualBridge, ID: "bridge"})
	}
}

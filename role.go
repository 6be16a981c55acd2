package main

// Role decides which parts of the pipeline run on this peer. The pipeline
// calls both step hooks every tick; each role implements only its own.
type Role interface {
	Name() string
	// Authoritative peers run AI, hazards and placed items and own agent health
	Authoritative() bool
	// Syncs reports whether outgoing events and state are sent
	Syncs() bool
	RunAuthoritativeSteps(g *Game)
	RunClientPredictionSteps(g *Game)
}

type hostRole struct{}

func (hostRole) Name() string        { return "host" }
func (hostRole) Authoritative() bool { return true }
func (hostRole) Syncs() bool         { return true }

func (hostRole) RunAuthoritativeSteps(g *Game) {
	g.stepAgents()
	g.stepHazards()
	g.stepPlacedItems()
}

func (hostRole) RunClientPredictionSteps(*Game) {}

type clientRole struct{}

func (clientRole) Name() string                { return "client" }
func (clientRole) Authoritative() bool         { return false }
func (clientRole) Syncs() bool                 { return true }
func (clientRole) RunAuthoritativeSteps(*Game) {}

func (clientRole) RunClientPredictionSteps(g *Game) {
	w := g.world
	for _, a := range w.Agents {
		a.Extrapolate(w)
	}
	g.extrapolateTornados()
	g.expireTrails()
}

// soloRole is an unconnected peer: host behaviour with nothing sent
type soloRole struct{ hostRole }

func (soloRole) Name() string { return "solo" }
func (soloRole) Syncs() bool  { return false }

var (
	HostRole   Role = hostRole{}
	ClientRole Role = clientRole{}
	SoloRole   Role = soloRole{}
)

// ResolveRole picks the role for a transport. A missing or disconnected
// transport degrades to solo.
func ResolveRole(t Transport) Role {
	if t == nil || !t.IsConnected() {
		return SoloRole
	}
	if t.IsHost() {
		return HostRole
	}
	return ClientRole
}

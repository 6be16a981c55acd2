package main

// AgentKind identifies the hostile agent subtype
type AgentKind int

const (
	KindGoblin   AgentKind = 0 // melee roamer
	KindGuardian AgentKind = 1 // ranged defender, chase latches
	KindWizard   AgentKind = 2 // caster, fires elemental bolts
	KindGiant    AgentKind = 3 // area effect, ground waves and lava trail
)

// AttackKind selects the ranged attack of a subtype
type AttackKind int

const (
	AttackNone AttackKind = iota
	AttackBolt
	AttackWave
)

// AgentKindDef holds the stats for an agent subtype
type AgentKindDef struct {
	Name          string
	MaxHealth     int
	Radius        float64
	Speed         float64 // units per tick while chasing
	PatrolSpeed   float64 // units per tick while patrolling
	DetectRadius  float64
	LoseRadius    float64 // chase abandoned beyond this, unless latched
	MinDistance   float64 // no chase movement closer than this
	ContactDamage int
	LatchChase    bool
	Attack        AttackKind
	Bolt          BoltKind
	FireRange     float64
	FireMinMs     int64
	FireMaxMs     int64
	RecoverMs     int64 // attack cooldown state duration
	TrailEveryMs  int64
}

var AgentKinds = [4]AgentKindDef{
	// Goblin: fast melee, gives up when outrun
	{
		Name: "goblin", MaxHealth: 3, Radius: 0.7, Speed: 0.09, PatrolSpeed: 0.04,
		DetectRadius: 12, LoseRadius: 20, MinDistance: 1.2, ContactDamage: 1,
		RecoverMs: 600,
	},
	// Guardian: stationary until it sees someone, then never lets go
	{
		Name: "guardian", MaxHealth: 6, Radius: 0.9, Speed: 0.05, PatrolSpeed: 0,
		DetectRadius: 25, LoseRadius: 25, MinDistance: 6, ContactDamage: 1,
		LatchChase: true, Attack: AttackBolt, Bolt: BoltArrow,
		FireRange: 22, FireMinMs: 1500, FireMaxMs: 3000, RecoverMs: 400,
	},
	// Wizard: keeps its distance and casts fireballs
	{
		Name: "wizard", MaxHealth: 4, Radius: 0.7, Speed: 0.06, PatrolSpeed: 0.03,
		DetectRadius: 18, LoseRadius: 28, MinDistance: 9, ContactDamage: 0,
		Attack: AttackBolt, Bolt: BoltFireball,
		FireRange: 18, FireMinMs: 2000, FireMaxMs: 4000, RecoverMs: 500,
	},
	// Giant: slow, slams the ground and leaves lava behind
	{
		Name: "giant", MaxHealth: 10, Radius: 1.6, Speed: 0.035, PatrolSpeed: 0.02,
		DetectRadius: 16, LoseRadius: 24, MinDistance: 2.2, ContactDamage: 2,
		Attack: AttackWave, FireRange: 10, FireMinMs: 3500, FireMaxMs: 6000, RecoverMs: 900,
		TrailEveryMs: 1500,
	},
}

// GetKindDef returns the definition for an agent kind
func GetKindDef(kind AgentKind) AgentKindDef {
	if kind < 0 || int(kind) >= len(AgentKinds) {
		return AgentKinds[KindGoblin]
	}
	return AgentKinds[kind]
}

func (k AgentKind) String() string {
	return GetKindDef(k).Name
}

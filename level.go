package main

// ObstacleClass orders static level geometry for the resolver. The order of
// the constants is the order in which classes are tested.
type ObstacleClass int

const (
	ObstacleLava       ObstacleClass = iota // instant death
	ObstacleCrevice                         // instant death
	ObstacleMountain                        // mountains and walls
	ObstacleCliff                           // impassable cliffs
	ObstacleHill                            // restricted hill, flying avatars pass
	ObstacleRock                            // rocks and boulders
	ObstacleCanyonWall                      // canyon wall segments
	ObstacleTree                            // trees
	ObstacleRiver                           // pass-gate, open once the bridge is repaired
	obstacleClassCount
)

var obstacleClassNames = [obstacleClassCount]string{
	"lava", "crevice", "mountain", "cliff", "hill", "rock", "canyon", "tree", "river",
}

func (c ObstacleClass) String() string {
	if c < 0 || c >= obstacleClassCount {
		return "unknown"
	}
	return obstacleClassNames[c]
}

// Deadly reports whether walking into the class kills instead of blocking
func (c ObstacleClass) Deadly() bool {
	return c == ObstacleLava || c == ObstacleCrevice
}

// ObstacleShape selects the predicate used for an obstacle
type ObstacleShape int

const (
	ShapeCircle ObstacleShape = iota
	ShapeRect
)

// Obstacle is static level geometry. Immutable for the session.
type Obstacle struct {
	Class    ObstacleClass
	Shape    ObstacleShape
	X, Z     float64
	Radius   float64 // ShapeCircle
	HalfW    float64 // ShapeRect, local X half extent
	HalfD    float64 // ShapeRect, local Z half extent
	Rotation float64 // ShapeRect, radians around the vertical axis
}

// Overlaps tests a circle against the obstacle
func (o *Obstacle) Overlaps(x, z, r float64) bool {
	if o.Shape == ShapeRect {
		return CircleRotatedRectOverlap(x, z, r, o.X, o.Z, o.HalfW, o.HalfD, o.Rotation)
	}
	return CirclesOverlap(x, z, r, o.X, o.Z, o.Radius)
}

// BoundRadius returns the radius of a circle enclosing the obstacle
func (o *Obstacle) BoundRadius() float64 {
	if o.Shape == ShapeRect {
		return Distance(0, 0, o.HalfW, o.HalfD)
	}
	return o.Radius
}

// AgentSpawn places a hostile agent at level load
type AgentSpawn struct {
	Kind       AgentKind
	X, Z       float64
	PatrolMinX float64
	PatrolMaxX float64
}

// CollectibleSpawn places a pickup at level load
type CollectibleSpawn struct {
	Type CollectibleType
	X, Z float64
}

// TrapSpawn places a spike trap that cycles armed and disarmed
type TrapSpawn struct {
	X, Z     float64
	Radius   float64
	PeriodMs int64
	ArmedMs  int64
}

// Zone is a circular region on the ground plane
type Zone struct {
	X, Z   float64
	Radius float64
}

// PortalConfig is the level exit
type PortalConfig struct {
	Zone
	RequiredTreasure int
}

// BridgeConfig is the broken bridge repaired with collected wood
type BridgeConfig struct {
	Zone
	WoodRequired int
}

// LevelConfig holds the static content of one level
type LevelConfig struct {
	Number       int
	MinX, MinZ   float64
	MaxX, MaxZ   float64
	HostSpawn    [2]float64
	ClientSpawn  [2]float64
	Obstacles    []Obstacle
	Agents       []AgentSpawn
	Collectibles []CollectibleSpawn
	Traps        []TrapSpawn
	SafeZones    []Zone
	Portal       PortalConfig
	Bridge       *BridgeConfig
	// Tornado spawn interval, 0 disables tornados
	TornadoEveryMs int64
}

const LevelCount = 2

// DefaultLevel returns the built-in content for level n (1-based).
// Out-of-range numbers clamp to the nearest level.
func DefaultLevel(n int) LevelConfig {
	switch {
	case n >= 2:
		return LevelConfig{
			Number: 2,
			MinX:   -80, MinZ: -80, MaxX: 80, MaxZ: 80,
			HostSpawn:   [2]float64{-2, 60},
			ClientSpawn: [2]float64{2, 60},
			Obstacles: []Obstacle{
				{Class: ObstacleLava, Shape: ShapeCircle, X: 20, Z: 20, Radius: 6},
				{Class: ObstacleLava, Shape: ShapeCircle, X: -25, Z: -10, Radius: 5},
				{Class: ObstacleCrevice, Shape: ShapeRect, X: 0, Z: 0, HalfW: 12, HalfD: 1.5, Rotation: 0.3},
				{Class: ObstacleMountain, Shape: ShapeCircle, X: -50, Z: 40, Radius: 10},
				{Class: ObstacleCliff, Shape: ShapeRect, X: 60, Z: -20, HalfW: 2, HalfD: 30},
				{Class: ObstacleHill, Shape: ShapeCircle, X: -10, Z: 35, Radius: 4},
				{Class: ObstacleRock, Shape: ShapeCircle, X: 8, Z: 48, Radius: 0.8},
				{Class: ObstacleRock, Shape: ShapeCircle, X: -6, Z: 44, Radius: 1.2},
				{Class: ObstacleCanyonWall, Shape: ShapeRect, X: -30, Z: -40, HalfW: 15, HalfD: 1, Rotation: -0.5},
				{Class: ObstacleTree, Shape: ShapeCircle, X: 30, Z: 50, Radius: 0.6},
				{Class: ObstacleTree, Shape: ShapeCircle, X: 34, Z: 46, Radius: 0.6},
			},
			Agents: []AgentSpawn{
				{Kind: KindGoblin, X: 10, Z: 30, PatrolMinX: 0, PatrolMaxX: 20},
				{Kind: KindGoblin, X: -20, Z: 20, PatrolMinX: -30, PatrolMaxX: -10},
				{Kind: KindGuardian, X: 0, Z: -30, PatrolMinX: 0, PatrolMaxX: 0},
				{Kind: KindWizard, X: 40, Z: -40, PatrolMinX: 35, PatrolMaxX: 45},
				{Kind: KindGiant, X: -40, Z: -60, PatrolMinX: -50, PatrolMaxX: -30},
			},
			Collectibles: []CollectibleSpawn{
				{Type: CollectAmmo, X: 0, Z: 50},
				{Type: CollectHealth, X: -15, Z: 0},
				{Type: CollectBomb, X: 15, Z: -10},
				{Type: CollectIce, X: -35, Z: 30},
				{Type: CollectTreasure, X: 45, Z: 10},
				{Type: CollectTreasure, X: -45, Z: -20},
				{Type: CollectTreasure, X: 0, Z: -55},
			},
			Traps: []TrapSpawn{
				{X: 5, Z: 15, Radius: 1.5, PeriodMs: 2000, ArmedMs: 800},
			},
			SafeZones:      []Zone{{X: 0, Z: 62, Radius: 6}},
			Portal:         PortalConfig{Zone: Zone{X: 0, Z: -70, Radius: 2}, RequiredTreasure: 3},
			TornadoEveryMs: 12000,
		}
	default:
		return LevelConfig{
			Number: 1,
			MinX:   -60, MinZ: -60, MaxX: 60, MaxZ: 60,
			HostSpawn:   [2]float64{-2, 40},
			ClientSpawn: [2]float64{2, 40},
			Obstacles: []Obstacle{
				{Class: ObstacleLava, Shape: ShapeCircle, X: 30, Z: -30, Radius: 4},
				{Class: ObstacleMountain, Shape: ShapeCircle, X: -40, Z: -40, Radius: 12},
				{Class: ObstacleMountain, Shape: ShapeRect, X: 0, Z: 58, HalfW: 60, HalfD: 1},
				{Class: ObstacleHill, Shape: ShapeCircle, X: 25, Z: 25, Radius: 5},
				{Class: ObstacleRock, Shape: ShapeCircle, X: 0, Z: 30, Radius: 0.8},
				{Class: ObstacleRock, Shape: ShapeCircle, X: -12, Z: 10, Radius: 1.5},
				{Class: ObstacleTree, Shape: ShapeCircle, X: 10, Z: 35, Radius: 0.6},
				{Class: ObstacleTree, Shape: ShapeCircle, X: -10, Z: 33, Radius: 0.6},
				{Class: ObstacleTree, Shape: ShapeCircle, X: 15, Z: 5, Radius: 0.6},
				{Class: ObstacleRiver, Shape: ShapeRect, X: 0, Z: -5, HalfW: 60, HalfD: 2},
			},
			Agents: []AgentSpawn{
				{Kind: KindGoblin, X: 0, Z: 15, PatrolMinX: -10, PatrolMaxX: 10},
				{Kind: KindGoblin, X: 20, Z: -20, PatrolMinX: 10, PatrolMaxX: 30},
				{Kind: KindGuardian, X: 0, Z: -40, PatrolMinX: 0, PatrolMaxX: 0},
			},
			Collectibles: []CollectibleSpawn{
				{Type: CollectAmmo, X: 5, Z: 38},
				{Type: CollectAmmo, X: -20, Z: -25},
				{Type: CollectKite, X: -25, Z: 30},
				{Type: CollectWood, X: 20, Z: 20},
				{Type: CollectWood, X: -20, Z: 15},
				{Type: CollectTreasure, X: 35, Z: -45},
				{Type: CollectTreasure, X: -30, Z: -15},
			},
			SafeZones: []Zone{{X: 0, Z: 42, Radius: 6}},
			Portal:    PortalConfig{Zone: Zone{X: 0, Z: -52, Radius: 2}, RequiredTreasure: 2},
			Bridge:    &BridgeConfig{Zone: Zone{X: 0, Z: -1, Radius: 3}, WoodRequired: 2},
		}
	}
}

// Terrain supplies ground height. Implementations must be pure functions
// of static level data.
type Terrain interface {
	Height(x, z float64) float64
}

// TerrainFunc adapts a plain function to Terrain
type TerrainFunc func(x, z float64) float64

func (f TerrainFunc) Height(x, z float64) float64 { return f(x, z) }

// FlatTerrain is ground at a constant height
type FlatTerrain float64

func (t FlatTerrain) Height(x, z float64) float64 { return float64(t) }

// Carryover is the inventory copied across a level transition
type Carryover struct {
	Ammo       int
	Bombs      int
	Health     int
	IceCharges int
	HasKite    bool
}

package main

import "encoding/json"

// Text message types
const (
	MsgEvent   = "ev"      // discrete game event, either direction
	MsgWelcome = "welcome" // host -> client on attach
)

// Binary frame kinds, first byte of every binary message
const (
	FramePlayerState byte = 0x02 // client -> host
	FrameSnapshot    byte = 0x03 // host -> client
)

// Game event catalogue
const (
	EvPlayerDamage      = "playerDamage"
	EvItemCollected     = "itemCollected"
	EvBombPlaced        = "bombPlaced"
	EvBombExploded      = "bombExploded"
	EvTurretPlaced      = "turretPlaced"
	EvTurretRemoved     = "turretRemoved"
	EvBridgeRepaired    = "bridgeRepaired"
	EvIcePowerActivated = "icePowerActivated"
	EvLevelChange       = "levelChange"
	EvTornadoHit        = "tornadoHit"
	EvLavaTrailCreate   = "lavaTrailCreate"
	EvDeathByLava       = "deathByLava"
	EvDeathByCrevice    = "deathByCrevice"
	EvDeathByHazard     = "deathByHazard"
	EvAgentHit          = "agentHit"
	EvAgentKilled       = "agentKilled"
	EvAgentFired        = "agentFired"
	EvBulletFired       = "bulletFired"
	EvGameRestart       = "gameRestart"
)

// Envelope wraps all outgoing text messages
type Envelope struct {
	T    string      `json:"t"`
	E    string      `json:"e,omitempty"` // event type when T is MsgEvent
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	E string          `json:"e,omitempty"`
	D json.RawMessage `json:"d,omitempty"`
}

// WelcomeMsg tells a newly attached client which session and level it joined
type WelcomeMsg struct {
	Session string `json:"sid"`
	Level   int    `json:"lvl"`
}

// eventHeader is decoded first from every event payload for de-duplication
type eventHeader struct {
	ID string `json:"id,omitempty"`
}

// PlayerDamagePayload asks the owner of Target to lose Amount health
type PlayerDamagePayload struct {
	ID     string `json:"id"`
	Target PeerID `json:"target"`
	Amount int    `json:"amount"`
	Source string `json:"source,omitempty"`
}

// ItemCollectedPayload mirrors a pickup. Guarded by the collected flag.
type ItemCollectedPayload struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type BombPlacedPayload struct {
	ID     string  `json:"id"`
	Owner  PeerID  `json:"owner"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	FuseMs int64   `json:"fuse"`
}

type BombExplodedPayload struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Z  float64 `json:"z"`
}

type TurretPlacedPayload struct {
	ID         string  `json:"id"`
	Owner      PeerID  `json:"owner"`
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	LifetimeMs int64   `json:"life"`
}

type TurretRemovedPayload struct {
	ID string `json:"id"`
}

type BridgeRepairedPayload struct {
	ID string `json:"id,omitempty"`
}

// IcePowerPayload freezes agents within IceRadius of (X,Z) for DurationMs
type IcePowerPayload struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	DurationMs int64   `json:"dur"`
}

type LevelChangePayload struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// TornadoHitPayload knocks the receiving peer's avatar by (DX,DZ)
type TornadoHitPayload struct {
	ID      string  `json:"id"`
	Tornado string  `json:"tornado"`
	DX      float64 `json:"dx"`
	DZ      float64 `json:"dz"`
	Amount  int     `json:"amount"`
}

type LavaTrailPayload struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Radius float64 `json:"r"`
	TTLMs  int64   `json:"ttl"`
}

// DeathPayload reports that the sender's avatar died
type DeathPayload struct {
	ID    string  `json:"id"`
	Cause string  `json:"cause"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
}

// AgentHitPayload reports a client bullet striking an agent. ID is the
// bullet id so the host counts each bullet once.
type AgentHitPayload struct {
	ID     string `json:"id"`
	Agent  int    `json:"agent"`
	Damage int    `json:"dmg"`
}

type AgentKilledPayload struct {
	ID    string `json:"id"`
	Agent int    `json:"agent"`
}

// AgentFiredPayload mirrors an agent attack with its origin and aim point
type AgentFiredPayload struct {
	ID     string     `json:"id"`
	Agent  int        `json:"agent"`
	Attack AttackKind `json:"attack"`
	Bolt   BoltKind   `json:"bolt"`
	X      float64    `json:"x"`
	Z      float64    `json:"z"`
	TX     float64    `json:"tx"`
	TZ     float64    `json:"tz"`
}

type BulletFiredPayload struct {
	ID    string  `json:"id"`
	Owner PeerID  `json:"owner"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	DX    float64 `json:"dx"`
	DZ    float64 `json:"dz"`
}

type GameRestartPayload struct {
	ID string `json:"id"`
}

// PlayerState is the continuous avatar push, msgpack-encoded
type PlayerState struct {
	X     float64  `msgpack:"x"`
	Y     float64  `msgpack:"y"`
	Z     float64  `msgpack:"z"`
	R     float64  `msgpack:"r"` // facing radians
	HP    int      `msgpack:"hp"`
	Mode  MoveMode `msgpack:"m"`
	Lift  float64  `msgpack:"l"` // mode progress
	Ammo  int      `msgpack:"am"`
	Dead  bool     `msgpack:"d"`
	Tick  uint64   `msgpack:"t"`
	Level int      `msgpack:"lv"`
}

// AgentSnap is one agent in a snapshot. Velocity is advisory.
type AgentSnap struct {
	I      int        `msgpack:"i"`
	X      float64    `msgpack:"x"`
	Z      float64    `msgpack:"z"`
	VX     float64    `msgpack:"vx"`
	VZ     float64    `msgpack:"vz"`
	R      float64    `msgpack:"r"`
	HP     int        `msgpack:"hp"`
	Alive  bool       `msgpack:"a"`
	State  AgentState `msgpack:"s"`
	Frozen int64      `msgpack:"fz,omitempty"` // remaining freeze ms
}

// TornadoState is one tornado in a snapshot
type TornadoState struct {
	ID string  `msgpack:"id"`
	X  float64 `msgpack:"x"`
	Z  float64 `msgpack:"z"`
	VX float64 `msgpack:"vx"`
	VZ float64 `msgpack:"vz"`
}

// PickRef is a collected pickup in a snapshot
type PickRef struct {
	T CollectibleType `msgpack:"t"`
	I int             `msgpack:"i"`
}

// Snapshot is the periodic host -> client full sync
type Snapshot struct {
	Tick     uint64         `msgpack:"t"`
	Level    int            `msgpack:"lv"`
	Host     PlayerState    `msgpack:"h"`
	Agents   []AgentSnap    `msgpack:"ag"`
	Tornados []TornadoState `msgpack:"tn"`
	Picked   []PickRef      `msgpack:"pk"`
	Bridge   bool           `msgpack:"br"`
	Kills    int            `msgpack:"k"`
}

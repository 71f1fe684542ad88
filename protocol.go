package main

import "encoding/json"

// Game message types, carried as msgpack binary frames between peers
const (
	MsgInput   = "input"
	MsgState   = "state"
	MsgEvent   = "event"
	MsgRestart = "restart"
)

// Relay control message types, carried as JSON text frames
const (
	MsgCreate   = "create"
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgCreated  = "created"
	MsgJoined   = "joined"
	MsgPeerUp   = "peer_up"
	MsgPeerDown = "peer_down"
	MsgError    = "error"
)

// Event kinds
const (
	EvCoin         = "COIN"
	EvPowerUp      = "POWERUP"
	EvStomp        = "STOMP"
	EvHurt         = "HURT"
	EvBlockHit     = "BLOCK_HIT"
	EvBrickBreak   = "BRICK_BREAK"
	EvPowerUpSpawn = "POWERUP_SPAWN"
	EvWin          = "WIN"
	EvGameOver     = "GAME_OVER"
	EvDrawObj      = "DRAW_OBJ"
	EvCratePickup  = "CRATE_PICKUP"
	EvChat         = "CHAT"
	EvProjSpawn    = "PROJ_SPAWN"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t" msgpack:"t"`
	Data interface{} `json:"d,omitempty" msgpack:"d,omitempty"`
}

// InEnvelope is used for incoming control messages so the payload is decoded once, by type
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// InputMsg is relayed every tick in both directions
type InputMsg struct {
	Frame uint64    `msgpack:"frame"`
	Keys  InputKeys `msgpack:"keys"`
}

// PlayerSnapshot is the replicated state of one player
type PlayerSnapshot struct {
	ID        uint32    `msgpack:"id"`
	X         float64   `msgpack:"x"`
	Y         float64   `msgpack:"y"`
	VX        float64   `msgpack:"vx"`
	VY        float64   `msgpack:"vy"`
	State     MoveState `msgpack:"state"`
	Power     PowerTier `msgpack:"power"`
	Facing    int       `msgpack:"facing"`
	OnGround  bool      `msgpack:"onGround"`
	Dead      bool      `msgpack:"dead"`
	Invuln    int       `msgpack:"invuln"`
	Coins     int       `msgpack:"coins"`
	Lives     int       `msgpack:"lives"`
	Score     int       `msgpack:"score"`
	Slot      int       `msgpack:"slot"`
	Inventory []Slot    `msgpack:"inventory"`
	Active    bool      `msgpack:"active"`
}

// EnemySnapshot is the replicated state of one enemy
type EnemySnapshot struct {
	ID          uint32  `msgpack:"id"`
	Kind        string  `msgpack:"type"`
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
	VX          float64 `msgpack:"vx"`
	Dead        bool    `msgpack:"dead"`
	Remove      bool    `msgpack:"remove"`
	Shelled     bool    `msgpack:"shelled"`
	ShellMoving bool    `msgpack:"shellMoving"`
	H           float64 `msgpack:"h"`
	Stage       int     `msgpack:"stage,omitempty"`
}

// CoinSnapshot carries only liveness; coins never move
type CoinSnapshot struct {
	ID   uint32 `msgpack:"id"`
	Dead bool   `msgpack:"dead"`
}

// PowerUpSnapshot covers power-ups and weapon crates
type PowerUpSnapshot struct {
	ID     uint32     `msgpack:"id"`
	X      float64    `msgpack:"x"`
	Y      float64    `msgpack:"y"`
	Dead   bool       `msgpack:"dead"`
	Type   string     `msgpack:"type"`
	Weapon WeaponKind `msgpack:"weapon,omitempty"`
}

// PlatformSnapshot is the replicated position of a moving platform
type PlatformSnapshot struct {
	ID uint32  `msgpack:"id"`
	X  float64 `msgpack:"x"`
	Y  float64 `msgpack:"y"`
}

// StateMsg is the host's periodic full snapshot
type StateMsg struct {
	Frame     uint64             `msgpack:"frame"`
	Level     int                `msgpack:"level"`
	Phase     Phase              `msgpack:"phase"`
	Players   []PlayerSnapshot   `msgpack:"players"`
	Enemies   []EnemySnapshot    `msgpack:"enemies"`
	Coins     []CoinSnapshot     `msgpack:"coins"`
	PowerUps  []PowerUpSnapshot  `msgpack:"powerUps"`
	Platforms []PlatformSnapshot `msgpack:"platforms"`
	Tiles     []TileChange       `msgpack:"tiles"`
}

// ProjSpawn announces a projectile fired by the sender's own player
type ProjSpawn struct {
	ID    uint32         `msgpack:"id"`
	Owner uint32         `msgpack:"owner"`
	Kind  ProjectileKind `msgpack:"kind"`
	X     float64        `msgpack:"x"`
	Y     float64        `msgpack:"y"`
	VX    float64        `msgpack:"vx"`
	VY    float64        `msgpack:"vy"`
	Angle float64        `msgpack:"angle"`
}

// DrawSpawn announces a finished pencil stroke in world coordinates
type DrawSpawn struct {
	ID     uint32  `msgpack:"id"`
	Owner  uint32  `msgpack:"owner"`
	Points []Point `msgpack:"points"`
}

// EventMsg is a one-shot event. Events carry resulting state rather than
// deltas so that applying one twice is harmless; Seq deduplicates per sender.
type EventMsg struct {
	Event     string           `msgpack:"event"`
	Seq       uint32           `msgpack:"seq"`
	Player    uint32           `msgpack:"player,omitempty"`
	Target    uint32           `msgpack:"target,omitempty"` // entity the event is about
	CX        int              `msgpack:"cx,omitempty"`
	CY        int              `msgpack:"cy,omitempty"`
	Tile      TileKind         `msgpack:"tile,omitempty"`
	Points    int              `msgpack:"points,omitempty"`
	Score     int              `msgpack:"score,omitempty"`
	Coins     int              `msgpack:"coins,omitempty"`
	Lives     int              `msgpack:"lives,omitempty"`
	Power     PowerTier        `msgpack:"power,omitempty"`
	Dead      bool             `msgpack:"dead,omitempty"`
	Inventory []Slot           `msgpack:"inventory,omitempty"`
	Slot      int              `msgpack:"slot,omitempty"`
	PowerUp   *PowerUpSnapshot `msgpack:"powerUp,omitempty"`
	Proj      *ProjSpawn       `msgpack:"proj,omitempty"`
	Draw      *DrawSpawn       `msgpack:"draw,omitempty"`
	Name      string           `msgpack:"name,omitempty"`
	Text      string           `msgpack:"text,omitempty"`
	Level     int              `msgpack:"level,omitempty"`
	Frame     uint64           `msgpack:"frame,omitempty"`
	Names     []string         `msgpack:"names,omitempty"`
}

// RestartMsg forces the client to (re)load a level
type RestartMsg struct {
	Level int  `msgpack:"level"`
	Reset bool `msgpack:"reset"` // fresh session profiles
}

// CreateMsg asks the relay for a new room
type CreateMsg struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode,omitempty"`
}

// JoinMsg joins an existing room, either fresh or rejoining with a token
type JoinMsg struct {
	Room     string `json:"room"`
	Name     string `json:"name"`
	Passcode string `json:"passcode,omitempty"`
	Token    string `json:"token,omitempty"`
}

// CreatedMsg answers a create
type CreatedMsg struct {
	Room  string `json:"room"`
	Token string `json:"token"`
}

// JoinedMsg answers a join
type JoinedMsg struct {
	Room  string `json:"room"`
	Token string `json:"token"`
	Role  string `json:"role"`
}

// PeerMsg notifies that the other side of the room came or went
type PeerMsg struct {
	Name string `json:"name,omitempty"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RoomInfo is used in the room list
type RoomInfo struct {
	ID      string `json:"id"`
	Host    string `json:"host"`
	Players int    `json:"players"`
	Locked  bool   `json:"locked"`
}

package protocol

// Command types.
const (
	CmdSpawn           = "SPAWN"
	CmdBuildSilo       = "BUILD_SILO"
	CmdLaunch          = "LAUNCH"
	CmdAllianceRequest = "ALLIANCE_REQUEST"
	CmdAllianceReply   = "ALLIANCE_REPLY"
	CmdAllianceExtend  = "ALLIANCE_EXTEND"
	CmdAllianceRevoke  = "ALLIANCE_REVOKE_EXTENSION"
	CmdAllianceBreak   = "ALLIANCE_BREAK"
	CmdEmbargo         = "EMBARGO"
)

// Weapon kinds accepted by LAUNCH.
const (
	WeaponMissile = "MISSILE"
	WeaponMirv    = "MIRV"
)

type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

type WorldParams struct {
	TickRateHz      int    `json:"tick_rate_hz"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	WrapX           bool   `json:"wrap_x"`
	WrapY           bool   `json:"wrap_y"`
	Seed            int64  `json:"seed"`
	SpawnPhaseTicks uint64 `json:"spawn_phase_ticks"`
}

type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        uint16      `json:"player_id"`
	WorldParams     WorldParams `json:"world_params"`
}

// CommandReq is one validated player intent. Which fields are meaningful
// depends on Type; unused fields stay at their zero values.
type CommandReq struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Tile         [2]int `json:"tile,omitempty"`
	TargetPlayer uint16 `json:"target_player,omitempty"`
	Weapon       string `json:"weapon,omitempty"`
	Accept       bool   `json:"accept,omitempty"`
	Enable       bool   `json:"enable,omitempty"`
}

type CommandMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	PlayerID        uint16       `json:"player_id"`
	Commands        []CommandReq `json:"commands"`
}

// Event is a loosely-typed notification delivered to one player:
// action results, in-world messages, incoming-unit warnings.
type Event map[string]any

type StateMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	PlayerID        uint16  `json:"player_id"`
	Gold            int64   `json:"gold"`
	Tiles           int     `json:"tiles"`
	Events          []Event `json:"events,omitempty"`
}

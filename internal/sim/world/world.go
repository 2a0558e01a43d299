package world

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/tuning"
)

type WorldConfig struct {
	ID   string
	Seed int64
	Map  *grid.Grid
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type CommandEnvelope struct {
	PlayerID PlayerID
	Msg      protocol.CommandMsg
}

type RecordedJoin struct {
	PlayerID PlayerID `json:"player_id"`
	Name     string   `json:"name"`
}

type RecordedCommand struct {
	PlayerID PlayerID            `json:"player_id"`
	Msg      protocol.CommandMsg `json:"msg"`
}

// CommandLogEntry is one tick's worth of replayable input plus the digest
// the engine computed after applying it.
type CommandLogEntry struct {
	Tick     uint64            `json:"tick"`
	Joins    []RecordedJoin    `json:"joins,omitempty"`
	Leaves   []PlayerID        `json:"leaves,omitempty"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

// CommandLogger persists the replay stream. Implemented in
// internal/persistence; may be nil.
type CommandLogger interface {
	WriteTick(entry CommandLogEntry) error
}

// Stats is the telemetry sink. Formatting and persistence are out of
// scope here; implementations must not mutate world state.
type Stats interface {
	RecordDetonation(tick uint64, attacker uint16, tilesDestroyed int)
}

type clientState struct {
	Out chan []byte
}

// World is a single-threaded authoritative simulation. All state must be
// accessed only from the tick loop; everything that happens inside a tick
// is a deterministic sequential pass.
type World struct {
	cfg WorldConfig
	tun tuning.Tuning
	g   *grid.Grid

	tick atomic.Uint64

	owner       []PlayerID
	players     map[PlayerID]*Player
	playerOrder []PlayerID
	clients     map[PlayerID]*clientState

	units map[uint64]*Unit

	alliances []*Alliance
	requests  []*AllianceRequest

	execs []*execRecord

	inbox chan CommandEnvelope
	join  chan JoinRequest
	leave chan PlayerID
	stop  chan struct{}

	nextPlayerNum uint16
	nextUnitNum   uint64

	logger    *log.Logger
	cmdLogger CommandLogger
	stats     Stats
}

func New(cfg WorldConfig, tun tuning.Tuning) (*World, error) {
	if cfg.Map == nil {
		return nil, fmt.Errorf("world: nil map")
	}
	if tun.TickRateHz <= 0 {
		return nil, fmt.Errorf("world: tick rate must be positive")
	}
	w := &World{
		cfg:     cfg,
		tun:     tun,
		g:       cfg.Map,
		owner:   make([]PlayerID, cfg.Map.Size()),
		players: make(map[PlayerID]*Player),
		clients: make(map[PlayerID]*clientState),
		units:   make(map[uint64]*Unit),
		inbox:   make(chan CommandEnvelope, 256),
		join:    make(chan JoinRequest, 16),
		leave:   make(chan PlayerID, 16),
		stop:    make(chan struct{}),
		logger:  log.New(os.Stdout, "[world] ", log.LstdFlags),
	}
	return w, nil
}

func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}

func (w *World) SetCommandLogger(cl CommandLogger) { w.cmdLogger = cl }
func (w *World) SetStats(s Stats)                  { w.stats = s }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- PlayerID        { return w.leave }

// Grid exposes the map for executions and read-only collaborators.
func (w *World) Grid() *grid.Grid { return w.g }

func (w *World) Player(id PlayerID) *Player { return w.players[id] }
func (w *World) HasPlayer(id PlayerID) bool { return w.players[id] != nil }

// AllianceBetween reports the active alliance between two players, if any.
func (w *World) AllianceBetween(x, y PlayerID) (*Alliance, bool) {
	al := w.allianceBetween(x, y)
	return al, al != nil
}

func (w *World) Owner(t grid.TileRef) PlayerID {
	if !w.g.Valid(t) {
		return NoOwner
	}
	return w.owner[t]
}

func (w *World) setOwner(t grid.TileRef, p PlayerID) {
	prev := w.owner[t]
	if prev == p {
		return
	}
	if prev != NoOwner {
		if pp := w.players[prev]; pp != nil {
			pp.Tiles--
		}
	}
	if p != NoOwner {
		if pp := w.players[p]; pp != nil {
			pp.Tiles++
		}
	}
	w.owner[t] = p
}

// Run drives the world at the configured tick rate until the context is
// canceled or Stop is called. Inputs accumulated between ticks are applied
// at the next tick boundary in arrival order.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCommands []CommandEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []PlayerID

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingCommands = append(pendingCommands, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingCommands)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingCommands = pendingCommands[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	if name == "" {
		name = "player"
	}
	w.nextPlayerNum++
	id := PlayerID(w.nextPlayerNum)

	p := newPlayer(id, name, w.tun.StartingGold)
	w.players[id] = p
	w.playerOrder = append(w.playerOrder, id)
	if out != nil {
		w.clients[id] = &clientState{Out: out}
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        uint16(id),
		WorldParams: protocol.WorldParams{
			TickRateHz:      w.tun.TickRateHz,
			Width:           w.g.Width(),
			Height:          w.g.Height(),
			WrapX:           w.g.WrapX(),
			WrapY:           w.g.WrapY(),
			Seed:            w.cfg.Seed,
			SpawnPhaseTicks: w.tun.SpawnPhaseTicks,
		},
	}
	return JoinResponse{Welcome: welcome}
}

func (w *World) step(joins []JoinRequest, leaves []PlayerID, commands []CommandEnvelope) {
	nowTick := w.tick.Load()

	// Leaves and joins apply deterministically at the tick boundary.
	// Leaving detaches the client; the player and their territory remain.
	recordedLeaves := make([]PlayerID, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.clients[id]; ok {
			delete(w.clients, id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{PlayerID: PlayerID(resp.Welcome.PlayerID), Name: req.Name})
	}

	// Commands apply in arrival order; each validated command becomes an
	// execution registered with the scheduler.
	recorded := make([]RecordedCommand, 0, len(commands))
	for _, env := range commands {
		p := w.players[env.PlayerID]
		if p == nil {
			continue
		}
		env.Msg.PlayerID = uint16(env.PlayerID) // trust session identity
		recorded = append(recorded, RecordedCommand{PlayerID: env.PlayerID, Msg: env.Msg})
		w.applyCommandMsg(p, env.Msg, nowTick)
	}

	w.runExecutions(nowTick)
	w.tickDiplomacy(nowTick)

	// Build and send STATE for each connected player.
	for _, id := range w.playerOrder {
		cl := w.clients[id]
		p := w.players[id]
		if cl == nil || p == nil {
			continue
		}
		state := protocol.StateMsg{
			Type:            protocol.TypeState,
			ProtocolVersion: protocol.Version,
			Tick:            nowTick,
			PlayerID:        uint16(id),
			Gold:            p.Gold,
			Tiles:           p.Tiles,
			Events:          p.Events,
		}
		p.Events = nil
		b, err := json.Marshal(state)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	if w.cmdLogger != nil {
		digest := w.stateDigest(nowTick)
		err := w.cmdLogger.WriteTick(CommandLogEntry{
			Tick:     nowTick,
			Joins:    recordedJoins,
			Leaves:   recordedLeaves,
			Commands: recorded,
			Digest:   digest,
		})
		if err != nil {
			w.logger.Printf("command log write failed at tick %d: %v", nowTick, err)
		}
	}

	w.tick.Add(1)
}

// StepOnce advances the world by a single tick using the same ordering
// semantics as the server loop. It is the entry point for deterministic
// replays and tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []PlayerID, commands []CommandEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.step(joins, leaves, commands)
	return tick, w.stateDigest(tick)
}

// sendLatest drops the oldest queued message when the client is slow;
// clients only ever need the newest state.
func sendLatest(out chan []byte, b []byte) {
	for {
		select {
		case out <- b:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}

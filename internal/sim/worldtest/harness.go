// Package worldtest drives worlds through their exported API only, so
// behavior tests exercise the same paths the server loop does.
package worldtest

import (
	"testing"

	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/tuning"
	world "landfall.gg/internal/sim/world"
)

type Harness struct {
	T *testing.T
	W *world.World

	Players map[string]world.PlayerID
}

func NewHarness(t *testing.T, cfg world.WorldConfig, tun tuning.Tuning) *Harness {
	t.Helper()
	w, err := world.New(cfg, tun)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, W: w, Players: map[string]world.PlayerID{}}
}

// Join adds a player at the next tick boundary and returns its id.
func (h *Harness) Join(name string) world.PlayerID {
	h.T.Helper()
	resp := make(chan world.JoinResponse, 1)
	h.W.StepOnce([]world.JoinRequest{{Name: name, Resp: resp}}, nil, nil)
	r := <-resp
	id := world.PlayerID(r.Welcome.PlayerID)
	h.Players[name] = id
	return id
}

// Step advances one tick, delivering the given commands stamped with the
// current tick.
func (h *Harness) Step(cmds ...Command) (tick uint64, digest string) {
	h.T.Helper()
	now := h.W.CurrentTick()
	var envs []world.CommandEnvelope
	for _, c := range cmds {
		envs = append(envs, world.CommandEnvelope{
			PlayerID: c.Player,
			Msg: protocol.CommandMsg{
				Type:            protocol.TypeCommand,
				ProtocolVersion: protocol.Version,
				Tick:            now,
				PlayerID:        uint16(c.Player),
				Commands:        c.Reqs,
			},
		})
	}
	return h.W.StepOnce(nil, nil, envs)
}

func (h *Harness) StepN(n int) {
	for i := 0; i < n; i++ {
		h.Step()
	}
}

type Command struct {
	Player world.PlayerID
	Reqs   []protocol.CommandReq
}

func Cmd(p world.PlayerID, reqs ...protocol.CommandReq) Command {
	return Command{Player: p, Reqs: reqs}
}

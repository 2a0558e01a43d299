package worldtest

import (
	"testing"

	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/tuning"
	world "landfall.gg/internal/sim/world"
)

func TestDiplomacy_EndToEndExtensionNeedsBothSides(t *testing.T) {
	tun := tuning.Default()
	tun.SpawnPhaseTicks = 0
	h := NewHarness(t, world.WorldConfig{ID: "dip", Seed: 7, Map: grid.AllLand(64, 64, false, false)}, tun)
	a := h.Join("alice")
	b := h.Join("bob")

	h.Step(Cmd(a, protocol.CommandReq{ID: "R1", Type: protocol.CmdAllianceRequest, TargetPlayer: uint16(b)}))
	h.Step(Cmd(b, protocol.CommandReq{ID: "R2", Type: protocol.CmdAllianceReply, TargetPlayer: uint16(a), Accept: true}))

	al, ok := h.W.AllianceBetween(a, b)
	if !ok {
		t.Fatalf("alliance not formed")
	}
	base := al.ExpiryTick()

	// One-sided extension, then revoke, then the counterpart's extension:
	// must not finalize because consent was never simultaneous.
	h.Step(Cmd(a, protocol.CommandReq{ID: "E1", Type: protocol.CmdAllianceExtend, TargetPlayer: uint16(b)}))
	h.Step(Cmd(a, protocol.CommandReq{ID: "V1", Type: protocol.CmdAllianceRevoke, TargetPlayer: uint16(b)}))
	h.Step(Cmd(b, protocol.CommandReq{ID: "E2", Type: protocol.CmdAllianceExtend, TargetPlayer: uint16(a)}))
	if al.ExpiryTick() != base {
		t.Fatalf("extension finalized without mutual consent: expiry %d, want %d", al.ExpiryTick(), base)
	}

	// With b's intent still pending, a's renewed intent finalizes.
	h.Step(Cmd(a, protocol.CommandReq{ID: "E3", Type: protocol.CmdAllianceExtend, TargetPlayer: uint16(b)}))
	want := base + tun.Diplomacy.AllianceExtensionTicks
	if al.ExpiryTick() != want {
		t.Fatalf("expiry = %d, want %d", al.ExpiryTick(), want)
	}
	if al.WantsExtension(a) || al.WantsExtension(b) {
		t.Fatalf("intents must clear once the extension finalizes")
	}
}

func TestDiplomacy_StaleCommandsIgnored(t *testing.T) {
	tun := tuning.Default()
	tun.SpawnPhaseTicks = 0
	h := NewHarness(t, world.WorldConfig{ID: "dip", Seed: 7, Map: grid.AllLand(64, 64, false, false)}, tun)
	a := h.Join("alice")
	b := h.Join("bob")
	h.StepN(10)

	// A command stamped far in the past must not register an execution.
	stale := world.CommandEnvelope{
		PlayerID: a,
		Msg: protocol.CommandMsg{
			Type:            protocol.TypeCommand,
			ProtocolVersion: protocol.Version,
			Tick:            1,
			Commands:        []protocol.CommandReq{{ID: "R1", Type: protocol.CmdAllianceRequest, TargetPlayer: uint16(b)}},
		},
	}
	h.W.StepOnce(nil, nil, []world.CommandEnvelope{stale})
	h.StepN(2)

	_, d1 := h.Step()
	// A fresh world driven identically but without the stale command must
	// end at the same digest: the stale command had no effect.
	h2 := NewHarness(t, world.WorldConfig{ID: "dip", Seed: 7, Map: grid.AllLand(64, 64, false, false)}, tun)
	h2.Join("alice")
	h2.Join("bob")
	h2.StepN(13)
	_, d2 := h2.Step()
	if d1 != d2 {
		t.Fatalf("stale command must leave state untouched")
	}
}

package world

import (
	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
)

func (w *World) applyCommandMsg(p *Player, msg protocol.CommandMsg, nowTick uint64) {
	// Staleness check: accept only [now-2, now].
	if msg.Tick+2 < nowTick || msg.Tick > nowTick {
		p.AddEvent(actionResult(nowTick, "COMMAND", false, protocol.ErrStale, "command tick out of range"))
		return
	}
	for _, cmd := range msg.Commands {
		w.applyCommand(p, cmd, nowTick)
	}
}

func (w *World) applyCommand(p *Player, cmd protocol.CommandReq, nowTick uint64) {
	tileOf := func() grid.TileRef {
		return w.g.Ref(cmd.Tile[0], cmd.Tile[1])
	}

	switch cmd.Type {
	case protocol.CmdSpawn:
		w.AddExecution(NewSpawnExecution(p.ID, cmd.ID, tileOf()))

	case protocol.CmdBuildSilo:
		w.AddExecution(NewBuildSiloExecution(p.ID, cmd.ID, tileOf()))

	case protocol.CmdLaunch:
		switch cmd.Weapon {
		case protocol.WeaponMissile:
			w.AddExecution(NewMissileLaunch(p.ID, cmd.ID, tileOf()))
		case protocol.WeaponMirv:
			w.AddExecution(NewMirvLaunch(p.ID, cmd.ID, tileOf()))
		default:
			p.AddEvent(actionResult(nowTick, cmd.ID, false, protocol.ErrBadRequest, "unknown weapon"))
		}

	case protocol.CmdAllianceRequest:
		w.AddExecution(NewAllianceRequestExecution(p.ID, cmd.ID, PlayerID(cmd.TargetPlayer)))

	case protocol.CmdAllianceReply:
		w.AddExecution(NewAllianceReplyExecution(p.ID, cmd.ID, PlayerID(cmd.TargetPlayer), cmd.Accept))

	case protocol.CmdAllianceExtend:
		w.AddExecution(NewAllianceExtensionExecution(p.ID, cmd.ID, PlayerID(cmd.TargetPlayer)))

	case protocol.CmdAllianceRevoke:
		w.AddExecution(NewAllianceRevokeExecution(p.ID, cmd.ID, PlayerID(cmd.TargetPlayer)))

	case protocol.CmdAllianceBreak:
		w.AddExecution(NewAllianceBreakExecution(p.ID, cmd.ID, PlayerID(cmd.TargetPlayer)))

	case protocol.CmdEmbargo:
		w.AddExecution(NewEmbargoExecution(p.ID, cmd.ID, PlayerID(cmd.TargetPlayer), cmd.Enable))

	default:
		p.AddEvent(actionResult(nowTick, cmd.ID, false, protocol.ErrBadRequest, "unknown command"))
	}
}

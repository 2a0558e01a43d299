package world

import (
	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/search"
)

// SpawnExecution claims a spawn tile during the spawn phase and flood
// fills the player's initial territory around it.
type SpawnExecution struct {
	owner  PlayerID
	ref    string
	tile   grid.TileRef
	w      *World
	active bool
}

func NewSpawnExecution(owner PlayerID, ref string, tile grid.TileRef) *SpawnExecution {
	return &SpawnExecution{owner: owner, ref: ref, tile: tile}
}

func (e *SpawnExecution) Owner() PlayerID              { return e.owner }
func (e *SpawnExecution) IsActive() bool               { return e.active }
func (e *SpawnExecution) ActiveDuringSpawnPhase() bool { return true }

func (e *SpawnExecution) Init(w *World, tick uint64) {
	e.w = w
	p := w.players[e.owner]
	if p == nil {
		w.logger.Printf("spawn: unknown player %d", e.owner)
		return
	}
	if tick >= w.tun.SpawnPhaseTicks {
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrBadRequest, "spawn phase is over"))
		return
	}
	if p.Spawned {
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrBadRequest, "already spawned"))
		return
	}
	if !w.g.IsLand(e.tile) || w.owner[e.tile] != NoOwner {
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrInvalidTarget, "spawn tile must be unowned land"))
		return
	}

	// Rejected border tiles consume traversal budget too, hence the slack.
	res := search.BreadthFirst(
		[]grid.TileRef{e.tile},
		w.tun.SpawnTerritory*2,
		func(t grid.TileRef, buf []grid.TileRef) []grid.TileRef {
			return w.g.Neighbors(t, buf)
		},
		func(t grid.TileRef, depth int) search.Visit {
			if !w.g.IsLand(t) || w.owner[t] != NoOwner {
				return search.Reject
			}
			return search.Accept
		},
	)
	territory := res.Accepted
	if len(territory) > w.tun.SpawnTerritory {
		territory = territory[:w.tun.SpawnTerritory]
	}
	for _, t := range territory {
		w.setOwner(t, e.owner)
	}
	p.Spawned = true
	w.spawnUnit(e.owner, UnitSilo, e.tile)
	p.AddEvent(actionResult(tick, e.ref, true, "", "spawned"))
}

func (e *SpawnExecution) Tick(tick uint64) {
	if e.w == nil {
		panic("spawn execution ticked before init")
	}
	// Single-shot: all work happens in Init.
}

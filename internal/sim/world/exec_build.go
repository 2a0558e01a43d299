package world

import (
	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
)

// BuildSiloExecution places a missile silo on owned land.
type BuildSiloExecution struct {
	owner  PlayerID
	ref    string
	tile   grid.TileRef
	w      *World
	done   bool
}

func NewBuildSiloExecution(owner PlayerID, ref string, tile grid.TileRef) *BuildSiloExecution {
	return &BuildSiloExecution{owner: owner, ref: ref, tile: tile}
}

func (e *BuildSiloExecution) Owner() PlayerID              { return e.owner }
func (e *BuildSiloExecution) IsActive() bool               { return !e.done }
func (e *BuildSiloExecution) ActiveDuringSpawnPhase() bool { return false }

func (e *BuildSiloExecution) Init(w *World, tick uint64) {
	e.w = w
	e.done = true
	p := w.players[e.owner]
	if p == nil {
		w.logger.Printf("build silo: unknown player %d", e.owner)
		return
	}
	if !w.g.IsLand(e.tile) || w.Owner(e.tile) != e.owner {
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrInvalidTarget, "silo must be on owned land"))
		return
	}
	if _, ok := w.BuildUnit(e.owner, UnitSilo, e.tile); !ok {
		w.logger.Printf("build silo: build failed for player %d", e.owner)
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrNoResource, "cannot afford silo"))
		return
	}
	p.AddEvent(actionResult(tick, e.ref, true, "", "silo built"))
}

func (e *BuildSiloExecution) Tick(tick uint64) {
	if e.w == nil {
		panic("build execution ticked before init")
	}
}

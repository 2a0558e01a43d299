package world

import (
	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/path"
	"landfall.gg/internal/sim/rng"
)

// LaunchExecution flies one missile or warhead from a launch site to a
// target tile and detonates on arrival. The unit it builds is driven
// exclusively by this execution while in flight.
type LaunchExecution struct {
	owner  PlayerID
	ref    string
	kind   UnitKind
	target grid.TileRef

	// spawnTile overrides launch-site selection when siteSet is true.
	// MIRV separation sets it to the separation point; otherwise the
	// nearest owned silo is used.
	spawnTile grid.TileRef
	siteSet   bool

	// delay is the number of ticks to hold before flight, used to stagger
	// MIRV warheads.
	delay uint64

	// exemptBetrayal marks sub-warheads: their individual blasts never
	// trigger alliance breaking.
	exemptBetrayal bool

	w      *World
	unit   *Unit
	traj   *path.Trajectory
	rs     *rng.Stream
	active bool
}

func NewMissileLaunch(owner PlayerID, ref string, target grid.TileRef) *LaunchExecution {
	return &LaunchExecution{owner: owner, ref: ref, kind: UnitMissile, target: target}
}

func newWarheadLaunch(owner PlayerID, spawnTile, target grid.TileRef, delay uint64) *LaunchExecution {
	return &LaunchExecution{
		owner:          owner,
		ref:            "",
		kind:           UnitWarhead,
		target:         target,
		spawnTile:      spawnTile,
		siteSet:        true,
		delay:          delay,
		exemptBetrayal: true,
	}
}

func (e *LaunchExecution) Owner() PlayerID              { return e.owner }
func (e *LaunchExecution) IsActive() bool               { return e.active }
func (e *LaunchExecution) ActiveDuringSpawnPhase() bool { return false }

func (e *LaunchExecution) fail(p *Player, tick uint64, code, msg string) {
	e.active = false
	if p != nil && e.ref != "" {
		p.AddEvent(actionResult(tick, e.ref, false, code, msg))
	}
}

func (e *LaunchExecution) Init(w *World, tick uint64) {
	e.w = w
	e.active = true

	p := w.players[e.owner]
	if p == nil {
		w.logger.Printf("launch: unknown player %d", e.owner)
		e.active = false
		return
	}
	if !w.g.Valid(e.target) || !w.g.IsLand(e.target) {
		e.fail(p, tick, protocol.ErrInvalidTarget, "target must be land")
		return
	}

	spawn := e.spawnTile
	if !e.siteSet {
		silo := w.nearestSilo(e.owner, e.target)
		if silo == nil {
			e.fail(p, tick, protocol.ErrBadRequest, "no silo to launch from")
			return
		}
		spawn = silo.Tile
	}

	e.rs = rng.ForTick(w.cfg.Seed, tick, uint64(e.owner), uint64(e.target), uint64(e.kind))

	unit, ok := w.BuildUnit(e.owner, e.kind, spawn)
	if !ok {
		w.logger.Printf("launch: build failed for player %d kind %s", e.owner, e.kind)
		e.fail(p, tick, protocol.ErrNoResource, "cannot afford "+e.kind.String())
		return
	}
	e.unit = unit

	speed := w.tun.Weapons.MissileSpeed
	if e.kind == UnitWarhead {
		speed = w.tun.Weapons.WarheadSpeed
	}
	e.traj = path.NewBallistic(w.g, spawn, e.target, speed)

	if victim := w.players[w.Owner(e.target)]; victim != nil && victim.ID != e.owner {
		victim.AddEvent(incomingUnitEvent(tick, e.kind, e.owner))
	}
	if e.ref != "" {
		p.AddEvent(actionResult(tick, e.ref, true, "", e.kind.String()+" launched"))
	}
}

func (e *LaunchExecution) Tick(tick uint64) {
	if e.w == nil {
		panic("launch execution ticked before init")
	}
	if !e.active {
		return
	}
	if e.delay > 0 {
		e.delay--
		return
	}

	if e.w.hostileSiloInRange(e.unit) && e.rs.Chance(e.w.tun.Weapons.InterceptChance) {
		e.w.removeUnit(e.unit.ID)
		if p := e.w.players[e.owner]; p != nil {
			p.AddEvent(messageEvent(tick, "your "+e.kind.String()+" was intercepted"))
		}
		e.active = false
		return
	}

	tile, arrived := e.traj.Advance()
	e.unit.Tile = tile
	if arrived {
		e.detonate(tick)
	}
}

func (e *LaunchExecution) detonate(tick uint64) {
	inner := e.w.tun.Weapons.MissileInner
	outer := e.w.tun.Weapons.MissileOuter
	if e.kind == UnitWarhead {
		inner = e.w.tun.Weapons.WarheadInner
		outer = e.w.tun.Weapons.WarheadOuter
	}
	blast := e.w.computeBlast(e.unit.Tile, inner, outer, e.rs)
	e.w.applyBlast(e.owner, blast, tick, e.exemptBetrayal)
	e.w.removeUnit(e.unit.ID)
	e.active = false
}

package world

import (
	"sort"

	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/path"
	"landfall.gg/internal/sim/rng"
)

// Dispersal retry bounds. When they exhaust, the MIRV proceeds with the
// destinations found so far instead of looping indefinitely.
const (
	mirvAttemptsPerTile = 100
	mirvTotalAttempts   = 1000
)

// MirvExecution flies the carrier toward the primary target and, at the
// configured fraction of the flight, separates into independently
// targeted warheads.
type MirvExecution struct {
	owner   PlayerID
	ref     string
	primary grid.TileRef

	w           *World
	unit        *Unit
	traj        *path.Trajectory
	rs          *rng.Stream
	targetOwner PlayerID
	active      bool
}

func NewMirvLaunch(owner PlayerID, ref string, primary grid.TileRef) *MirvExecution {
	return &MirvExecution{owner: owner, ref: ref, primary: primary}
}

func (e *MirvExecution) Owner() PlayerID              { return e.owner }
func (e *MirvExecution) IsActive() bool               { return e.active }
func (e *MirvExecution) ActiveDuringSpawnPhase() bool { return false }

func (e *MirvExecution) Init(w *World, tick uint64) {
	e.w = w
	e.active = true

	p := w.players[e.owner]
	if p == nil {
		w.logger.Printf("mirv: unknown player %d", e.owner)
		e.active = false
		return
	}
	if !w.g.Valid(e.primary) || !w.g.IsLand(e.primary) {
		e.active = false
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrInvalidTarget, "target must be land"))
		return
	}
	silo := w.nearestSilo(e.owner, e.primary)
	if silo == nil {
		e.active = false
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrBadRequest, "no silo to launch from"))
		return
	}
	if p.Gold < w.tun.Weapons.MirvCost {
		e.active = false
		w.logger.Printf("mirv: build failed for player %d", e.owner)
		p.AddEvent(actionResult(tick, e.ref, false, protocol.ErrNoResource, "cannot afford MIRV"))
		return
	}
	p.Gold -= w.tun.Weapons.MirvCost

	e.targetOwner = w.Owner(e.primary)
	e.rs = rng.ForTick(w.cfg.Seed, tick, uint64(e.owner), uint64(e.primary))
	e.unit = w.spawnUnit(e.owner, UnitMissile, silo.Tile)
	e.traj = path.NewBallistic(w.g, silo.Tile, e.primary, w.tun.Weapons.MissileSpeed)

	if victim := w.players[e.targetOwner]; victim != nil && victim.ID != e.owner {
		victim.AddEvent(incomingUnitEvent(tick, UnitMissile, e.owner))
	}
	p.AddEvent(actionResult(tick, e.ref, true, "", "MIRV launched"))
}

func (e *MirvExecution) Tick(tick uint64) {
	if e.w == nil {
		panic("mirv execution ticked before init")
	}
	if !e.active {
		return
	}

	tile, arrived := e.traj.Advance()
	e.unit.Tile = tile
	if e.traj.Progress() >= e.w.tun.Weapons.MirvSeparation || arrived {
		e.separate(tick)
	}
}

func (e *MirvExecution) separate(tick uint64) {
	w := e.w
	sepTile := e.unit.Tile
	dests := e.selectDispersal()

	// Farthest impacts first: descending distance from the primary, ties
	// broken by tile ref so the order is identical everywhere. Staggered
	// delays spread the impacts over time.
	sort.Slice(dests, func(i, j int) bool {
		di := w.g.DistSq(e.primary, dests[i])
		dj := w.g.DistSq(e.primary, dests[j])
		if di != dj {
			return di > dj
		}
		return dests[i] < dests[j]
	})

	for i, dst := range dests {
		w.AddExecution(newWarheadLaunch(e.owner, sepTile, dst, uint64(i)*w.tun.Weapons.MirvStaggerTicks))
	}

	w.removeUnit(e.unit.ID)
	e.active = false

	if p := w.players[e.owner]; p != nil {
		p.AddEvent(messageEvent(tick, "MIRV separated"))
	}
}

// selectDispersal picks warhead destinations inside the dispersal radius
// around the primary target. Every destination must be owned by the same
// player as the primary and keep the minimum Manhattan spread from every
// other destination; the primary itself is exempt from the spread rule.
// Selection is bounded: when retries exhaust, fewer warheads launch.
func (e *MirvExecution) selectDispersal() []grid.TileRef {
	w := e.w
	wp := w.tun.Weapons
	chosen := []grid.TileRef{e.primary}
	px, py := w.g.X(e.primary), w.g.Y(e.primary)

	total := 0
	for len(chosen) < wp.MirvWarheads && total < mirvTotalAttempts {
		found := false
		for attempt := 0; attempt < mirvAttemptsPerTile && total < mirvTotalAttempts; attempt++ {
			total++
			dx := e.rs.Intn(2*wp.MirvRadius+1) - wp.MirvRadius
			dy := e.rs.Intn(2*wp.MirvRadius+1) - wp.MirvRadius
			if dx*dx+dy*dy > wp.MirvRadius*wp.MirvRadius {
				continue
			}
			t := w.g.Ref(px+dx, py+dy)
			if t == grid.Invalid || t == e.primary || !w.g.IsLand(t) {
				continue
			}
			if w.Owner(t) != e.targetOwner {
				continue
			}
			ok := true
			for _, c := range chosen[1:] {
				if w.g.Manhattan(t, c) < wp.MirvMinSpread {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			chosen = append(chosen, t)
			found = true
			break
		}
		if !found {
			break
		}
	}
	return chosen
}

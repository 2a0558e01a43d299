package world

import (
	"sort"

	"landfall.gg/internal/sim/grid"
)

type UnitKind uint8

const (
	UnitSilo UnitKind = iota + 1
	UnitMissile
	UnitWarhead
)

func (k UnitKind) String() string {
	switch k {
	case UnitSilo:
		return "SILO"
	case UnitMissile:
		return "MISSILE"
	case UnitWarhead:
		return "WARHEAD"
	default:
		return "UNKNOWN"
	}
}

// Unit is a mobile or static game object owned by exactly one player.
// In-flight units are driven exclusively by the execution that built them.
type Unit struct {
	ID    uint64
	Kind  UnitKind
	Owner PlayerID
	Tile  grid.TileRef
}

func (w *World) unitCost(kind UnitKind) int64 {
	switch kind {
	case UnitSilo:
		return w.tun.Weapons.SiloCost
	case UnitMissile:
		return w.tun.Weapons.MissileCost
	case UnitWarhead:
		// Warheads are spawned by MIRV separation; the MIRV paid up front.
		return 0
	default:
		return 0
	}
}

// BuildUnit attempts to build a unit for owner at tile. It returns
// (nil, false) when the owner is unknown, the tile is invalid, or the
// owner cannot pay; the caller decides how to surface the failure.
func (w *World) BuildUnit(owner PlayerID, kind UnitKind, tile grid.TileRef) (*Unit, bool) {
	p := w.players[owner]
	if p == nil || !w.g.Valid(tile) {
		return nil, false
	}
	cost := w.unitCost(kind)
	if p.Gold < cost {
		return nil, false
	}
	if kind == UnitSilo && w.owner[tile] != owner {
		return nil, false
	}
	p.Gold -= cost

	w.nextUnitNum++
	u := &Unit{ID: w.nextUnitNum, Kind: kind, Owner: owner, Tile: tile}
	w.units[u.ID] = u
	return u, true
}

// spawnUnit places a unit without cost or placement checks. Used for the
// free starting silo granted at spawn.
func (w *World) spawnUnit(owner PlayerID, kind UnitKind, tile grid.TileRef) *Unit {
	w.nextUnitNum++
	u := &Unit{ID: w.nextUnitNum, Kind: kind, Owner: owner, Tile: tile}
	w.units[u.ID] = u
	return u
}

func (w *World) removeUnit(id uint64) {
	delete(w.units, id)
}

// sortedUnitIDs returns unit ids in creation order (ids are monotonic).
func (w *World) sortedUnitIDs() []uint64 {
	ids := make([]uint64, 0, len(w.units))
	for id := range w.units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// nearestSilo picks the launch site: the owner's silo closest to target,
// ties broken by lowest unit id.
func (w *World) nearestSilo(owner PlayerID, target grid.TileRef) *Unit {
	var best *Unit
	bestDist := 0
	for _, id := range w.sortedUnitIDs() {
		u := w.units[id]
		if u.Kind != UnitSilo || u.Owner != owner {
			continue
		}
		d := w.g.DistSq(u.Tile, target)
		if best == nil || d < bestDist {
			best, bestDist = u, d
		}
	}
	return best
}

// hostileSiloInRange reports whether any silo of a non-allied enemy sits
// within intercept range of the unit.
func (w *World) hostileSiloInRange(u *Unit) bool {
	r := w.tun.Weapons.InterceptRange
	for _, id := range w.sortedUnitIDs() {
		s := w.units[id]
		if s.Kind != UnitSilo || s.Owner == u.Owner {
			continue
		}
		if w.isAllied(s.Owner, u.Owner) {
			continue
		}
		if w.g.DistSq(s.Tile, u.Tile) <= r*r {
			return true
		}
	}
	return false
}

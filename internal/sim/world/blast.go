package world

import (
	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/rng"
	"landfall.gg/internal/sim/search"
)

// computeBlast flood-fills the destroyed area around an impact tile.
// Tiles within the inner radius are included unconditionally; tiles
// between inner and outer are included with a fixed probability drawn
// from the caller's tick-seeded stream, which gives every participant the
// same ragged blast edge. Nothing beyond the outer radius is reachable.
func (w *World) computeBlast(impact grid.TileRef, inner, outer int, rs *rng.Stream) []grid.TileRef {
	innerSq := inner * inner
	outerSq := outer * outer

	res := search.BreadthFirst(
		[]grid.TileRef{impact},
		0,
		func(t grid.TileRef, buf []grid.TileRef) []grid.TileRef {
			return w.g.Neighbors(t, buf)
		},
		func(t grid.TileRef, depth int) search.Visit {
			d := w.g.DistSq(impact, t)
			switch {
			case d <= innerSq:
				return search.Accept
			case d <= outerSq:
				if rs.Chance(w.tun.Weapons.RimProbability) {
					return search.Accept
				}
				// Keep expanding so rejected rim tiles do not wall off
				// accepted ones farther out.
				return search.Explore
			default:
				return search.Reject
			}
		},
	)
	return res.Accepted
}

// applyBlast destroys ownership on the blast tiles, removes ground units
// caught in it and applies the betrayal side effect: any player losing
// more than the configured tile threshold in this one blast has an
// existing alliance with the attacker broken. Sub-warheads spawned by a
// MIRV are exempt from the betrayal rule.
func (w *World) applyBlast(attacker PlayerID, tiles []grid.TileRef, now uint64, exemptBetrayal bool) {
	losses := make(map[PlayerID]int)
	hit := make(map[grid.TileRef]struct{}, len(tiles))
	destroyed := 0
	for _, t := range tiles {
		hit[t] = struct{}{}
		if !w.g.IsLand(t) {
			continue
		}
		if own := w.owner[t]; own != NoOwner {
			losses[own]++
		}
		w.setOwner(t, NoOwner)
		destroyed++
	}

	for _, id := range w.sortedUnitIDs() {
		u := w.units[id]
		if u.Kind != UnitSilo {
			continue
		}
		if _, ok := hit[u.Tile]; ok {
			w.removeUnit(id)
			if p := w.players[u.Owner]; p != nil {
				p.AddEvent(messageEvent(now, "a silo was destroyed"))
			}
		}
	}

	if w.stats != nil {
		w.stats.RecordDetonation(now, uint16(attacker), destroyed)
	}
	if exemptBetrayal {
		return
	}
	for _, pid := range w.playerOrder {
		if pid == attacker {
			continue
		}
		if losses[pid] > w.tun.Diplomacy.BetrayalTileThreshold {
			w.betray(attacker, pid, now)
		}
	}
}

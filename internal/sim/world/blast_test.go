package world

import (
	"testing"

	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/rng"
)

func TestComputeBlast_RadiusBounds(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(64, 64, true, true), testTuning())
	impact := w.g.Ref(32, 32)
	inner, outer := 4, 7

	for seedTick := uint64(0); seedTick < 20; seedTick++ {
		rs := rng.ForTick(w.cfg.Seed, seedTick, 1)
		blast := w.computeBlast(impact, inner, outer, rs)

		got := make(map[grid.TileRef]struct{}, len(blast))
		for _, tile := range blast {
			got[tile] = struct{}{}
			if w.g.DistSq(impact, tile) > outer*outer {
				t.Fatalf("tick seed %d: tile beyond outer radius included", seedTick)
			}
		}
		// Every tile within the inner radius is always destroyed.
		for dy := -inner; dy <= inner; dy++ {
			for dx := -inner; dx <= inner; dx++ {
				if dx*dx+dy*dy > inner*inner {
					continue
				}
				tile := w.g.Ref(32+dx, 32+dy)
				if _, ok := got[tile]; !ok {
					t.Fatalf("tick seed %d: inner tile (%d,%d) missing", seedTick, dx, dy)
				}
			}
		}
	}
}

func TestComputeBlast_Reproducible(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(64, 64, false, false), testTuning())
	impact := w.g.Ref(20, 20)

	a := w.computeBlast(impact, 5, 9, rng.ForTick(7, 33, 9))
	b := w.computeBlast(impact, 5, 9, rng.ForTick(7, 33, 9))
	if len(a) != len(b) {
		t.Fatalf("blast sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("blast order diverged at %d", i)
		}
	}
}

func TestApplyBlast_BetrayalBreaksAllianceAndPenalizes(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(64, 64, false, false), testTuning())
	attacker := joinTestPlayer(w, "alice")
	victim := joinTestPlayer(w, "bob")
	w.addAlliance(attacker.ID, victim.ID, 100_000)

	// 120 owned tiles destroyed in one blast: over the 100-tile threshold.
	var tiles []grid.TileRef
	for i := 0; i < 120; i++ {
		tile := w.g.Ref(i%16, 10+i/16)
		w.setOwner(tile, victim.ID)
		tiles = append(tiles, tile)
	}

	w.applyBlast(attacker.ID, tiles, 50, false)

	if w.allianceBetween(attacker.ID, victim.ID) != nil {
		t.Fatalf("alliance must be broken by the betrayal")
	}
	if got := victim.RelationWith(attacker.ID); got != -100 {
		t.Fatalf("victim relation toward attacker = %d, want -100", got)
	}
	if victim.Tiles != 0 {
		t.Fatalf("victim should have lost all %d tiles, %d remain", 120, victim.Tiles)
	}
}

func TestApplyBlast_UnderThresholdKeepsAlliance(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(64, 64, false, false), testTuning())
	attacker := joinTestPlayer(w, "alice")
	victim := joinTestPlayer(w, "bob")
	w.addAlliance(attacker.ID, victim.ID, 100_000)

	var tiles []grid.TileRef
	for i := 0; i < 100; i++ { // exactly at threshold: not over it
		tile := w.g.Ref(i%16, 10+i/16)
		w.setOwner(tile, victim.ID)
		tiles = append(tiles, tile)
	}
	w.applyBlast(attacker.ID, tiles, 50, false)

	if w.allianceBetween(attacker.ID, victim.ID) == nil {
		t.Fatalf("losses at the threshold must not break the alliance")
	}
	if got := victim.RelationWith(attacker.ID); got != 0 {
		t.Fatalf("no betrayal penalty expected, got %d", got)
	}
}

func TestApplyBlast_SubWarheadExemption(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(64, 64, false, false), testTuning())
	attacker := joinTestPlayer(w, "alice")
	victim := joinTestPlayer(w, "bob")
	w.addAlliance(attacker.ID, victim.ID, 100_000)

	var tiles []grid.TileRef
	for i := 0; i < 200; i++ {
		tile := w.g.Ref(i%16, 10+i/16)
		w.setOwner(tile, victim.ID)
		tiles = append(tiles, tile)
	}
	w.applyBlast(attacker.ID, tiles, 50, true)

	if w.allianceBetween(attacker.ID, victim.ID) == nil {
		t.Fatalf("sub-warhead blasts must not trigger alliance breaking")
	}
}

func TestApplyBlast_DestroysSilos(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(64, 64, false, false), testTuning())
	attacker := joinTestPlayer(w, "alice")
	victim := joinTestPlayer(w, "bob")
	grantTerritory(w, victim, 30, 30, 3)
	silo := w.spawnUnit(victim.ID, UnitSilo, w.g.Ref(30, 30))

	w.applyBlast(attacker.ID, []grid.TileRef{w.g.Ref(30, 30)}, 10, false)

	if w.units[silo.ID] != nil {
		t.Fatalf("silo on a blast tile must be destroyed")
	}
}

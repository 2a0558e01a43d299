package world

import (
	"testing"

	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/tuning"
)

func mirvTuning() tuning.Tuning {
	tun := testTuning()
	tun.Weapons.MirvWarheads = 50
	tun.Weapons.MirvRadius = 20
	tun.Weapons.MirvMinSpread = 8
	return tun
}

// runUntilSeparation drives the world until warhead executions appear.
func runUntilSeparation(t *testing.T, w *World) []*LaunchExecution {
	t.Helper()
	for i := 0; i < 200; i++ {
		stepN(w, 1)
		var warheads []*LaunchExecution
		for _, rec := range w.execs {
			if le, ok := rec.exec.(*LaunchExecution); ok && le.kind == UnitWarhead {
				warheads = append(warheads, le)
			}
		}
		if len(warheads) > 0 {
			return warheads
		}
	}
	t.Fatalf("MIRV never separated")
	return nil
}

func setupMirv(t *testing.T, tun tuning.Tuning, victimHalf int) (*World, *Player, *Player, grid.TileRef) {
	t.Helper()
	w := newTestWorld(t, grid.AllLand(160, 160, false, false), tun)
	attacker := joinTestPlayer(w, "alice")
	victim := joinTestPlayer(w, "bob")

	grantTerritory(w, attacker, 10, 10, 2)
	w.spawnUnit(attacker.ID, UnitSilo, w.g.Ref(10, 10))
	grantTerritory(w, victim, 100, 100, victimHalf)

	primary := w.g.Ref(100, 100)
	w.AddExecution(NewMirvLaunch(attacker.ID, "C1", primary))
	return w, attacker, victim, primary
}

func TestMirv_SeparationConstraints(t *testing.T) {
	w, _, victim, primary := setupMirv(t, mirvTuning(), 30)
	warheads := runUntilSeparation(t, w)

	if len(warheads) < 3 {
		t.Fatalf("expected several warheads in a large target area, got %d", len(warheads))
	}

	spread := w.tun.Weapons.MirvMinSpread
	radius := w.tun.Weapons.MirvRadius
	seenPrimary := false
	for i, wh := range warheads {
		if wh.target == primary {
			seenPrimary = true
		} else if w.Owner(wh.target) != victim.ID {
			t.Fatalf("dispersal tile must be owned by the primary's owner")
		}
		if w.g.DistSq(primary, wh.target) > radius*radius {
			t.Fatalf("dispersal tile outside the dispersal radius")
		}
		if !wh.exemptBetrayal {
			t.Fatalf("sub-warheads must carry the betrayal exemption")
		}
		for j := i + 1; j < len(warheads); j++ {
			a, b := wh.target, warheads[j].target
			if a == primary || b == primary {
				continue // the primary is exempt from the spread rule
			}
			if d := w.g.Manhattan(a, b); d < spread {
				t.Fatalf("warheads %d and %d are %d apart, want >= %d", i, j, d, spread)
			}
		}
	}
	if !seenPrimary {
		t.Fatalf("the primary target must receive a warhead")
	}
}

func TestMirv_FarthestImpactsFirst(t *testing.T) {
	w, _, _, primary := setupMirv(t, mirvTuning(), 30)
	warheads := runUntilSeparation(t, w)

	stagger := w.tun.Weapons.MirvStaggerTicks
	prevDist := int(^uint(0) >> 1)
	for i, wh := range warheads {
		d := w.g.DistSq(primary, wh.target)
		if d > prevDist {
			t.Fatalf("warhead %d is farther than its predecessor; launch order must be farthest-first", i)
		}
		prevDist = d
		if wh.delay != uint64(i)*stagger {
			t.Fatalf("warhead %d delay = %d, want %d", i, wh.delay, uint64(i)*stagger)
		}
	}
}

func TestMirv_RetryExhaustionLaunchesFewer(t *testing.T) {
	// The victim owns only a 9x9 patch; with a minimum spread of 8 only a
	// handful of non-overlapping destinations exist. Selection must finish
	// with fewer warheads instead of hanging.
	w, _, _, _ := setupMirv(t, mirvTuning(), 4)
	warheads := runUntilSeparation(t, w)

	if len(warheads) < 1 || len(warheads) > 10 {
		t.Fatalf("expected a small bounded warhead count, got %d", len(warheads))
	}

	// All of them eventually detonate and the match keeps running.
	for i := 0; i < 300 && w.ActiveExecutions() > 0; i++ {
		stepN(w, 1)
	}
	if w.ActiveExecutions() != 0 {
		t.Fatalf("warheads never finished")
	}
}

func TestMirv_EdgeSeparationLaunchesFromSeparationPoint(t *testing.T) {
	// The carrier's arc bulges past the southern edge of a non-wrapping map
	// on the way to a far target. Separation must still happen on the map,
	// and the warheads must launch from the separation point, not fall back
	// to the home silo.
	w := newTestWorld(t, grid.AllLand(400, 200, false, false), mirvTuning())
	attacker := joinTestPlayer(w, "alice")
	victim := joinTestPlayer(w, "bob")

	grantTerritory(w, attacker, 10, 180, 2)
	silo := w.g.Ref(10, 180)
	w.spawnUnit(attacker.ID, UnitSilo, silo)
	grantTerritory(w, victim, 390, 180, 15)

	w.AddExecution(NewMirvLaunch(attacker.ID, "C1", w.g.Ref(390, 180)))
	warheads := runUntilSeparation(t, w)

	sep := warheads[0].spawnTile
	if !w.g.Valid(sep) {
		t.Fatalf("separation tile is off the map")
	}
	if w.g.Manhattan(sep, silo) < 200 {
		t.Fatalf("warheads launched from (%d,%d), want the separation point near the target",
			w.g.X(sep), w.g.Y(sep))
	}
	for i, wh := range warheads {
		if !wh.siteSet || wh.spawnTile != sep {
			t.Fatalf("warhead %d launch site = %d, want separation tile %d", i, wh.spawnTile, sep)
		}
	}
}

func TestMirv_SubWarheadsDoNotBreakAlliance(t *testing.T) {
	w, attacker, victim, _ := setupMirv(t, mirvTuning(), 30)
	w.addAlliance(attacker.ID, victim.ID, 1_000_000)

	runUntilSeparation(t, w)
	for i := 0; i < 500 && w.ActiveExecutions() > 0; i++ {
		stepN(w, 1)
	}

	if w.allianceBetween(attacker.ID, victim.ID) == nil {
		t.Fatalf("MIRV warhead blasts are exempt from alliance breaking")
	}
}

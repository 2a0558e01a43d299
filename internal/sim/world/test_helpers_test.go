package world

import (
	"testing"

	"landfall.gg/internal/sim/grid"
	"landfall.gg/internal/sim/tuning"
)

// testTuning disables the spawn phase so executions run immediately;
// tests that exercise the spawn phase override SpawnPhaseTicks.
func testTuning() tuning.Tuning {
	tun := tuning.Default()
	tun.SpawnPhaseTicks = 0
	return tun
}

func newTestWorld(t *testing.T, g *grid.Grid, tun tuning.Tuning) *World {
	t.Helper()
	w, err := New(WorldConfig{ID: "test", Seed: 42, Map: g}, tun)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func joinTestPlayer(w *World, name string) *Player {
	resp := w.joinPlayer(name, nil)
	return w.players[PlayerID(resp.Welcome.PlayerID)]
}

// grantTerritory hands a square block of tiles to the player, bypassing
// the spawn execution, and marks them spawned.
func grantTerritory(w *World, p *Player, cx, cy, half int) {
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if t := w.g.Ref(x, y); t != grid.Invalid && w.g.IsLand(t) {
				w.setOwner(t, p.ID)
			}
		}
	}
	p.Spawned = true
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.StepOnce(nil, nil, nil)
	}
}

func countEvents(p *Player, evType string) int {
	n := 0
	for _, e := range p.Events {
		if e["type"] == evType {
			n++
		}
	}
	return n
}

func lastResult(p *Player) (ok bool, code string, found bool) {
	for i := len(p.Events) - 1; i >= 0; i-- {
		e := p.Events[i]
		if e["type"] != "ACTION_RESULT" {
			continue
		}
		okv, _ := e["ok"].(bool)
		codev, _ := e["code"].(string)
		return okv, codev, true
	}
	return false, "", false
}

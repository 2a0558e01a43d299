package world

import (
	"io"
	"log"
	"testing"

	"landfall.gg/internal/sim/grid"
)

// probeExecution records the ticks it was driven on and runs an optional
// callback, so tests can observe scheduler behavior.
type probeExecution struct {
	owner      PlayerID
	spawnPhase bool
	ticksLeft  int

	initTicks []uint64
	tickTicks []uint64
	onInit    func(w *World, tick uint64)
	onTick    func(tick uint64)
}

func (e *probeExecution) Owner() PlayerID              { return e.owner }
func (e *probeExecution) IsActive() bool               { return e.ticksLeft > 0 }
func (e *probeExecution) ActiveDuringSpawnPhase() bool { return e.spawnPhase }

func (e *probeExecution) Init(w *World, tick uint64) {
	e.initTicks = append(e.initTicks, tick)
	if e.onInit != nil {
		e.onInit(w, tick)
	}
}

func (e *probeExecution) Tick(tick uint64) {
	e.tickTicks = append(e.tickTicks, tick)
	e.ticksLeft--
	if e.onTick != nil {
		e.onTick(tick)
	}
}

func TestScheduler_InitOnceThenTick(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(16, 16, false, false), testTuning())
	e := &probeExecution{ticksLeft: 3}
	w.AddExecution(e)

	stepN(w, 5)

	if len(e.initTicks) != 1 || e.initTicks[0] != 0 {
		t.Fatalf("init ticks = %v, want exactly [0]", e.initTicks)
	}
	if len(e.tickTicks) != 3 {
		t.Fatalf("tick count = %d, want 3 (stops when inactive)", len(e.tickTicks))
	}
	if e.tickTicks[0] != 1 {
		t.Fatalf("first Tick ran at %d, want the tick after Init", e.tickTicks[0])
	}
	if w.ActiveExecutions() != 0 {
		t.Fatalf("inactive execution must be discarded, %d remain", w.ActiveExecutions())
	}
}

func TestScheduler_MutationVisibleToLaterExecution(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(16, 16, false, false), testTuning())
	p := joinTestPlayer(w, "a")
	tile := w.g.Ref(5, 5)

	var seen PlayerID
	first := &probeExecution{ticksLeft: 1, onInit: func(w *World, tick uint64) {
		w.setOwner(tile, p.ID)
	}}
	second := &probeExecution{ticksLeft: 1, onInit: func(w *World, tick uint64) {
		seen = w.Owner(tile)
	}}
	w.AddExecution(first, second)

	stepN(w, 1)

	if seen != p.ID {
		t.Fatalf("execution i+1 must see execution i's mutation in the same tick, saw owner %d", seen)
	}
}

func TestScheduler_PanicIsContained(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(16, 16, false, false), testTuning())
	w.SetLogger(log.New(io.Discard, "", 0))

	bad := &probeExecution{ticksLeft: 10, onTick: func(tick uint64) {
		panic("boom")
	}}
	after := &probeExecution{ticksLeft: 10}
	w.AddExecution(bad, after)

	stepN(w, 3)

	if len(after.tickTicks) != 2 {
		t.Fatalf("execution after the panicking one must keep running, got %d ticks", len(after.tickTicks))
	}
	// The panicking execution is deactivated after its first failing tick.
	if len(bad.tickTicks) != 1 {
		t.Fatalf("panicking execution must be dropped, ran %d ticks", len(bad.tickTicks))
	}
}

func TestScheduler_SpawnPhaseGate(t *testing.T) {
	tun := testTuning()
	tun.SpawnPhaseTicks = 3
	w := newTestWorld(t, grid.AllLand(16, 16, false, false), tun)

	gated := &probeExecution{ticksLeft: 1}
	ungated := &probeExecution{ticksLeft: 1, spawnPhase: true}
	w.AddExecution(gated, ungated)

	stepN(w, 2)
	if len(gated.initTicks) != 0 {
		t.Fatalf("gated execution must not be driven during the spawn phase")
	}
	if len(ungated.initTicks) != 1 {
		t.Fatalf("spawn-phase execution must be driven during the spawn phase")
	}

	stepN(w, 2)
	if len(gated.initTicks) != 1 || gated.initTicks[0] != 3 {
		t.Fatalf("gated execution init ticks = %v, want [3]", gated.initTicks)
	}
}

func TestScheduler_MidTickRegistrationRunsSameTick(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(16, 16, false, false), testTuning())

	child := &probeExecution{ticksLeft: 1}
	parent := &probeExecution{ticksLeft: 1, onInit: func(w *World, tick uint64) {
		w.AddExecution(child)
	}}
	w.AddExecution(parent)

	stepN(w, 1)

	if len(child.initTicks) != 1 || child.initTicks[0] != 0 {
		t.Fatalf("mid-tick registration must be driven later in the same tick, init ticks = %v", child.initTicks)
	}
}

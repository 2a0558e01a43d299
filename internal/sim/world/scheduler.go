package world

// Execution is the uniform lifecycle of one in-progress player action.
// The scheduler calls Init exactly once, then Tick once per subsequent
// simulation step while IsActive reports true. ActiveDuringSpawnPhase
// gates whether the execution is driven before the match's active phase
// begins. Implementations must panic from Tick when called before Init;
// that signals a scheduler contract breach, not a runtime condition.
type Execution interface {
	Init(w *World, tick uint64)
	Tick(tick uint64)
	IsActive() bool
	ActiveDuringSpawnPhase() bool
	Owner() PlayerID
}

type execRecord struct {
	exec   Execution
	inited bool
	failed bool
}

// AddExecution registers executions with the scheduler. Within one tick,
// executions run strictly in registration order; an execution registered
// mid-tick is driven later in the same tick, after all previously
// registered ones.
func (w *World) AddExecution(execs ...Execution) {
	for _, e := range execs {
		w.execs = append(w.execs, &execRecord{exec: e})
	}
}

// ActiveExecutions reports how many executions are currently registered.
func (w *World) ActiveExecutions() int { return len(w.execs) }

func (w *World) runExecutions(now uint64) {
	spawnPhase := now < w.tun.SpawnPhaseTicks

	// Index loop on purpose: executions appended during the pass are
	// reached in the same pass, preserving total registration order.
	for i := 0; i < len(w.execs); i++ {
		rec := w.execs[i]
		if rec.failed || (rec.inited && !rec.exec.IsActive()) {
			continue
		}
		if spawnPhase && !rec.exec.ActiveDuringSpawnPhase() {
			continue
		}
		w.driveExecution(rec, now)
	}

	active := w.execs[:0]
	for _, rec := range w.execs {
		if rec.failed {
			continue
		}
		if rec.inited && !rec.exec.IsActive() {
			continue
		}
		active = append(active, rec)
	}
	// Clear trailing pointers so dropped executions can be collected.
	for i := len(active); i < len(w.execs); i++ {
		w.execs[i] = nil
	}
	w.execs = active
}

// driveExecution isolates one execution per tick. A panic inside Init or
// Tick is logged and deactivates that execution only; it must never abort
// the scheduler loop or skip other executions, since any divergence here
// is fatal to cross-client consistency.
func (w *World) driveExecution(rec *execRecord, now uint64) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Printf("execution %T owner=%d failed at tick %d: %v", rec.exec, rec.exec.Owner(), now, r)
			rec.failed = true
		}
	}()
	if !rec.inited {
		rec.inited = true
		rec.exec.Init(w, now)
		return
	}
	rec.exec.Tick(now)
}

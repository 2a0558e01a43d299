package world

import (
	"testing"

	"landfall.gg/internal/sim/grid"
)

func setupAlliance(t *testing.T) (*World, *Player, *Player) {
	t.Helper()
	w := newTestWorld(t, grid.AllLand(32, 32, false, false), testTuning())
	a := joinTestPlayer(w, "alice")
	b := joinTestPlayer(w, "bob")
	w.addAlliance(a.ID, b.ID, 10_000)
	return w, a, b
}

func TestExtension_MutualConsentFinalizes(t *testing.T) {
	w, a, b := setupAlliance(t)
	al := w.allianceBetween(a.ID, b.ID)
	before := al.ExpiryTick()

	if w.requestExtension(al, a.ID, 5) {
		t.Fatalf("single intent must not finalize")
	}
	if al.ExpiryTick() != before {
		t.Fatalf("expiry moved on single intent")
	}
	if !al.WantsExtension(a.ID) || al.WantsExtension(b.ID) {
		t.Fatalf("only the requester's intent must be set")
	}

	if !w.requestExtension(al, b.ID, 6) {
		t.Fatalf("second intent must finalize the extension")
	}
	if got, want := al.ExpiryTick(), before+w.tun.Diplomacy.AllianceExtensionTicks; got != want {
		t.Fatalf("expiry = %d, want %d", got, want)
	}
	if al.WantsExtension(a.ID) || al.WantsExtension(b.ID) {
		t.Fatalf("intents must be cleared after finalization")
	}
	if countEvents(a, "MESSAGE") == 0 || countEvents(b, "MESSAGE") == 0 {
		t.Fatalf("both members must be notified of the extension")
	}
}

func TestExtension_RevokeBeforeCounterpartPreventsFinalization(t *testing.T) {
	w, a, b := setupAlliance(t)
	al := w.allianceBetween(a.ID, b.ID)
	before := al.ExpiryTick()

	w.requestExtension(al, a.ID, 5)
	w.revokeExtension(al, a.ID, 6)
	if w.requestExtension(al, b.ID, 7) {
		t.Fatalf("extension finalized although the first intent was revoked")
	}
	if al.ExpiryTick() != before {
		t.Fatalf("expiry moved without mutual consent")
	}
}

func TestExtension_RevokeIsIdempotent(t *testing.T) {
	w, a, b := setupAlliance(t)
	al := w.allianceBetween(a.ID, b.ID)

	a.Events = nil
	b.Events = nil
	digestBefore := w.stateDigest(0)

	w.revokeExtension(al, a.ID, 5)

	if len(a.Events) != 0 || len(b.Events) != 0 {
		t.Fatalf("revoke with nothing pending must produce zero notifications")
	}
	if got := w.stateDigest(0); got != digestBefore {
		t.Fatalf("revoke with nothing pending must not change state")
	}
}

func TestBreak_PenaltiesAndBystanders(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(32, 32, false, false), testTuning())
	a := joinTestPlayer(w, "alice")
	b := joinTestPlayer(w, "bob")
	bystander := joinTestPlayer(w, "carol")
	allyOfB := joinTestPlayer(w, "dave")

	al := w.addAlliance(a.ID, b.ID, 10_000)
	w.addAlliance(b.ID, allyOfB.ID, 10_000)

	w.breakAlliance(al, a.ID, 5)

	if w.allianceBetween(a.ID, b.ID) != nil {
		t.Fatalf("alliance must be terminated")
	}
	if got := b.RelationWith(a.ID); got != -w.tun.Diplomacy.BreakPenalty {
		t.Fatalf("counterpart relation = %d, want %d", got, -w.tun.Diplomacy.BreakPenalty)
	}
	if got := bystander.RelationWith(a.ID); got != -w.tun.Diplomacy.BystanderPenalty {
		t.Fatalf("bystander relation = %d, want %d", got, -w.tun.Diplomacy.BystanderPenalty)
	}
	// Players allied with either side are not bystanders.
	if got := allyOfB.RelationWith(a.ID); got != 0 {
		t.Fatalf("ally of counterpart must not take the bystander penalty, got %d", got)
	}
}

func TestDiplomacySweep_ExpiryIsNotABreak(t *testing.T) {
	w, a, b := setupAlliance(t)
	al := w.allianceBetween(a.ID, b.ID)
	al.expiryTick = 3

	w.tickDiplomacy(3)

	if w.allianceBetween(a.ID, b.ID) != nil {
		t.Fatalf("expired alliance must be removed")
	}
	if a.RelationWith(b.ID) != 0 || b.RelationWith(a.ID) != 0 {
		t.Fatalf("expiry must not apply penalties")
	}
}

func TestAllianceRequestReplyFlow(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(32, 32, false, false), testTuning())
	a := joinTestPlayer(w, "alice")
	b := joinTestPlayer(w, "bob")

	w.AddExecution(NewAllianceRequestExecution(a.ID, "C1", b.ID))
	stepN(w, 1)
	if w.pendingRequest(a.ID, b.ID) == nil {
		t.Fatalf("request must be pending after the request execution ran")
	}

	w.AddExecution(NewAllianceReplyExecution(b.ID, "C2", a.ID, true))
	stepN(w, 1)

	al := w.allianceBetween(a.ID, b.ID)
	if al == nil {
		t.Fatalf("accepting must create the alliance")
	}
	if w.pendingRequest(a.ID, b.ID) != nil {
		t.Fatalf("pending request must be consumed")
	}
	if a.RelationWith(b.ID) != w.tun.Diplomacy.AcceptBonus || b.RelationWith(a.ID) != w.tun.Diplomacy.AcceptBonus {
		t.Fatalf("accept bonus not applied")
	}
}

func TestAllianceRequest_ExpiresSilently(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(32, 32, false, false), testTuning())
	a := joinTestPlayer(w, "alice")
	b := joinTestPlayer(w, "bob")

	w.requests = append(w.requests, &AllianceRequest{From: a.ID, To: b.ID, ExpiryTick: 2})
	w.tickDiplomacy(2)

	if w.pendingRequest(a.ID, b.ID) != nil {
		t.Fatalf("expired request must lapse")
	}
	if w.allianceBetween(a.ID, b.ID) != nil {
		t.Fatalf("lapsed request must not create an alliance")
	}
}

func TestDiplomacy_MissingEntityDeactivatesWithoutPropagation(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(32, 32, false, false), testTuning())
	a := joinTestPlayer(w, "alice")

	w.AddExecution(NewAllianceBreakExecution(a.ID, "C1", PlayerID(99)))
	stepN(w, 1)

	ok, code, found := lastResult(a)
	if !found || ok || code != "E_INVALID_TARGET" {
		t.Fatalf("unknown counterpart must yield E_INVALID_TARGET, got ok=%v code=%q found=%v", ok, code, found)
	}
	if w.ActiveExecutions() != 0 {
		t.Fatalf("failed diplomacy execution must be discarded")
	}
}

func TestEmbargo_ToggleAndRelationMalus(t *testing.T) {
	w := newTestWorld(t, grid.AllLand(32, 32, false, false), testTuning())
	a := joinTestPlayer(w, "alice")
	b := joinTestPlayer(w, "bob")

	w.AddExecution(NewEmbargoExecution(a.ID, "C1", b.ID, true))
	stepN(w, 1)

	if !a.Embargoes[b.ID] {
		t.Fatalf("embargo flag must be set after enabling")
	}
	want := -w.tun.Diplomacy.EmbargoMalus
	if got := b.RelationWith(a.ID); got != want {
		t.Fatalf("counterpart relation = %d, want %d", got, want)
	}
	if countEvents(b, "MESSAGE") != 1 {
		t.Fatalf("counterpart must be notified once")
	}

	// Re-enabling must not stack another malus or notice.
	w.AddExecution(NewEmbargoExecution(a.ID, "C2", b.ID, true))
	stepN(w, 1)
	if got := b.RelationWith(a.ID); got != want {
		t.Fatalf("re-enable applied another malus, relation = %d", got)
	}
	if countEvents(b, "MESSAGE") != 1 {
		t.Fatalf("re-enable must not notify again")
	}

	w.AddExecution(NewEmbargoExecution(a.ID, "C3", b.ID, false))
	stepN(w, 1)
	if a.Embargoes[b.ID] {
		t.Fatalf("embargo flag must be cleared after disabling")
	}
	if ok, _, found := lastResult(a); !found || !ok {
		t.Fatalf("embargo update must report success")
	}
}

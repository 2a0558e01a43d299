package world

import (
	"fmt"

	"landfall.gg/internal/protocol"
)

// diplomacyShot is the shared shape of the single-shot diplomacy
// executions: all work happens in Init, after which the execution is
// dropped by the scheduler.
type diplomacyShot struct {
	owner PlayerID
	ref   string
	w     *World
	done  bool
}

func (s *diplomacyShot) Owner() PlayerID              { return s.owner }
func (s *diplomacyShot) IsActive() bool               { return !s.done }
func (s *diplomacyShot) ActiveDuringSpawnPhase() bool { return false }

func (s *diplomacyShot) Tick(tick uint64) {
	if s.w == nil {
		panic("diplomacy execution ticked before init")
	}
}

// begin validates the two parties and returns them, finishing the
// execution with a missing-entity result when either is unknown.
func (s *diplomacyShot) begin(w *World, tick uint64, other PlayerID) (*Player, *Player, bool) {
	s.w = w
	s.done = true
	me := w.players[s.owner]
	if me == nil {
		w.logger.Printf("diplomacy: unknown player %d", s.owner)
		return nil, nil, false
	}
	them := w.players[other]
	if them == nil || other == s.owner {
		me.AddEvent(actionResult(tick, s.ref, false, protocol.ErrInvalidTarget, "unknown player"))
		return nil, nil, false
	}
	return me, them, true
}

// AllianceRequestExecution creates a pending alliance proposal with a TTL.
type AllianceRequestExecution struct {
	diplomacyShot
	target PlayerID
}

func NewAllianceRequestExecution(owner PlayerID, ref string, target PlayerID) *AllianceRequestExecution {
	return &AllianceRequestExecution{diplomacyShot: diplomacyShot{owner: owner, ref: ref}, target: target}
}

func (e *AllianceRequestExecution) Init(w *World, tick uint64) {
	me, them, ok := e.begin(w, tick, e.target)
	if !ok {
		return
	}
	if w.isAllied(e.owner, e.target) {
		me.AddEvent(actionResult(tick, e.ref, false, protocol.ErrBadRequest, "already allied"))
		return
	}
	if w.pendingRequest(e.owner, e.target) != nil {
		me.AddEvent(actionResult(tick, e.ref, false, protocol.ErrBadRequest, "request already pending"))
		return
	}
	w.requests = append(w.requests, &AllianceRequest{
		From:       e.owner,
		To:         e.target,
		ExpiryTick: tick + w.tun.Diplomacy.RequestTTLTicks,
	})
	them.AddEvent(messageEvent(tick, fmt.Sprintf("%s proposes an alliance", me.Name)))
	me.AddEvent(actionResult(tick, e.ref, true, "", "alliance requested"))
}

// AllianceReplyExecution answers a pending proposal. Accepting creates an
// Active alliance; rejecting costs the rejecter a small relation malus
// from the requester's side.
type AllianceReplyExecution struct {
	diplomacyShot
	requester PlayerID
	accept    bool
}

func NewAllianceReplyExecution(owner PlayerID, ref string, requester PlayerID, accept bool) *AllianceReplyExecution {
	return &AllianceReplyExecution{diplomacyShot: diplomacyShot{owner: owner, ref: ref}, requester: requester, accept: accept}
}

func (e *AllianceReplyExecution) Init(w *World, tick uint64) {
	me, them, ok := e.begin(w, tick, e.requester)
	if !ok {
		return
	}
	req := w.pendingRequest(e.requester, e.owner)
	if req == nil {
		me.AddEvent(actionResult(tick, e.ref, false, protocol.ErrInvalidTarget, "no pending request"))
		return
	}
	w.removeRequest(req)

	if !e.accept {
		them.AdjustRelation(e.owner, -w.tun.Diplomacy.RejectMalus)
		them.AddEvent(messageEvent(tick, fmt.Sprintf("%s declined your alliance request", me.Name)))
		me.AddEvent(actionResult(tick, e.ref, true, "", "alliance declined"))
		return
	}

	w.addAlliance(e.owner, e.requester, tick+w.tun.Diplomacy.AllianceDurationTicks)
	me.AdjustRelation(e.requester, w.tun.Diplomacy.AcceptBonus)
	them.AdjustRelation(e.owner, w.tun.Diplomacy.AcceptBonus)
	them.AddEvent(messageEvent(tick, fmt.Sprintf("%s accepted your alliance request", me.Name)))
	me.AddEvent(actionResult(tick, e.ref, true, "", "alliance formed"))
}

// AllianceExtensionExecution marks the requester's extension intent; when
// the counterpart's intent is already present the extension finalizes.
type AllianceExtensionExecution struct {
	diplomacyShot
	other PlayerID
}

func NewAllianceExtensionExecution(owner PlayerID, ref string, other PlayerID) *AllianceExtensionExecution {
	return &AllianceExtensionExecution{diplomacyShot: diplomacyShot{owner: owner, ref: ref}, other: other}
}

func (e *AllianceExtensionExecution) Init(w *World, tick uint64) {
	me, _, ok := e.begin(w, tick, e.other)
	if !ok {
		return
	}
	al := w.allianceBetween(e.owner, e.other)
	if al == nil {
		me.AddEvent(actionResult(tick, e.ref, false, protocol.ErrNotAllied, "no alliance to extend"))
		return
	}
	if w.requestExtension(al, e.owner, tick) {
		me.AddEvent(actionResult(tick, e.ref, true, "", "alliance extended"))
	} else {
		me.AddEvent(actionResult(tick, e.ref, true, "", "extension requested"))
	}
}

// AllianceRevokeExecution clears the requester's own extension intent.
// Revoking with nothing pending is a silent no-op.
type AllianceRevokeExecution struct {
	diplomacyShot
	other PlayerID
}

func NewAllianceRevokeExecution(owner PlayerID, ref string, other PlayerID) *AllianceRevokeExecution {
	return &AllianceRevokeExecution{diplomacyShot: diplomacyShot{owner: owner, ref: ref}, other: other}
}

func (e *AllianceRevokeExecution) Init(w *World, tick uint64) {
	me, _, ok := e.begin(w, tick, e.other)
	if !ok {
		return
	}
	al := w.allianceBetween(e.owner, e.other)
	if al == nil {
		me.AddEvent(actionResult(tick, e.ref, false, protocol.ErrNotAllied, "no alliance"))
		return
	}
	w.revokeExtension(al, e.owner, tick)
	me.AddEvent(actionResult(tick, e.ref, true, "", "extension revoked"))
}

// AllianceBreakExecution breaks an alliance unilaterally and immediately.
type AllianceBreakExecution struct {
	diplomacyShot
	other PlayerID
}

func NewAllianceBreakExecution(owner PlayerID, ref string, other PlayerID) *AllianceBreakExecution {
	return &AllianceBreakExecution{diplomacyShot: diplomacyShot{owner: owner, ref: ref}, other: other}
}

func (e *AllianceBreakExecution) Init(w *World, tick uint64) {
	me, _, ok := e.begin(w, tick, e.other)
	if !ok {
		return
	}
	al := w.allianceBetween(e.owner, e.other)
	if al == nil {
		me.AddEvent(actionResult(tick, e.ref, false, protocol.ErrNotAllied, "no alliance to break"))
		return
	}
	w.breakAlliance(al, e.owner, tick)
	me.AddEvent(actionResult(tick, e.ref, true, "", "alliance broken"))
}

// EmbargoExecution toggles a trade embargo against another player.
type EmbargoExecution struct {
	diplomacyShot
	other  PlayerID
	enable bool
}

func NewEmbargoExecution(owner PlayerID, ref string, other PlayerID, enable bool) *EmbargoExecution {
	return &EmbargoExecution{diplomacyShot: diplomacyShot{owner: owner, ref: ref}, other: other, enable: enable}
}

func (e *EmbargoExecution) Init(w *World, tick uint64) {
	me, them, ok := e.begin(w, tick, e.other)
	if !ok {
		return
	}
	if e.enable {
		if !me.Embargoes[e.other] {
			me.Embargoes[e.other] = true
			them.AdjustRelation(e.owner, -w.tun.Diplomacy.EmbargoMalus)
			them.AddEvent(messageEvent(tick, fmt.Sprintf("%s placed an embargo on you", me.Name)))
		}
	} else {
		delete(me.Embargoes, e.other)
	}
	me.AddEvent(actionResult(tick, e.ref, true, "", "embargo updated"))
}

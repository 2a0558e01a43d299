package world

import "fmt"

// Alliance binds exactly two players. It is Active while not yet expired
// or broken; extension finalizes only when both members' intents are
// present simultaneously.
type Alliance struct {
	a, b       PlayerID // a < b
	expiryTick uint64

	// wantsExtension[side(p)] is p's pending extension intent.
	wantsExtension [2]bool
}

func orderPair(x, y PlayerID) (PlayerID, PlayerID) {
	if x < y {
		return x, y
	}
	return y, x
}

func (al *Alliance) side(p PlayerID) int {
	switch p {
	case al.a:
		return 0
	case al.b:
		return 1
	default:
		return -1
	}
}

func (al *Alliance) Members() (PlayerID, PlayerID) { return al.a, al.b }

func (al *Alliance) Other(p PlayerID) PlayerID {
	if p == al.a {
		return al.b
	}
	return al.a
}

func (al *Alliance) ExpiryTick() uint64 { return al.expiryTick }

func (al *Alliance) WantsExtension(p PlayerID) bool {
	s := al.side(p)
	return s >= 0 && al.wantsExtension[s]
}

// AllianceRequest is a pending proposal awaiting the target's reply.
type AllianceRequest struct {
	From       PlayerID
	To         PlayerID
	ExpiryTick uint64
}

func (w *World) isAllied(x, y PlayerID) bool {
	return w.allianceBetween(x, y) != nil
}

func (w *World) allianceBetween(x, y PlayerID) *Alliance {
	a, b := orderPair(x, y)
	for _, al := range w.alliances {
		if al.a == a && al.b == b {
			return al
		}
	}
	return nil
}

func (w *World) addAlliance(x, y PlayerID, expiry uint64) *Alliance {
	a, b := orderPair(x, y)
	al := &Alliance{a: a, b: b, expiryTick: expiry}
	w.alliances = append(w.alliances, al)
	return al
}

func (w *World) removeAlliance(al *Alliance) {
	for i, cur := range w.alliances {
		if cur == al {
			w.alliances = append(w.alliances[:i], w.alliances[i+1:]...)
			return
		}
	}
}

func (w *World) pendingRequest(from, to PlayerID) *AllianceRequest {
	for _, r := range w.requests {
		if r.From == from && r.To == to {
			return r
		}
	}
	return nil
}

func (w *World) removeRequest(req *AllianceRequest) {
	for i, cur := range w.requests {
		if cur == req {
			w.requests = append(w.requests[:i], w.requests[i+1:]...)
			return
		}
	}
}

// requestExtension marks p's intent on the alliance. When the counterpart's
// intent is already present the extension finalizes atomically: expiry is
// pushed forward, both intents are cleared, both members are notified.
// Returns true when finalized.
func (w *World) requestExtension(al *Alliance, p PlayerID, now uint64) bool {
	s := al.side(p)
	if s < 0 {
		return false
	}
	al.wantsExtension[s] = true
	if !(al.wantsExtension[0] && al.wantsExtension[1]) {
		if other := w.players[al.Other(p)]; other != nil {
			other.AddEvent(messageEvent(now, fmt.Sprintf("%s proposes extending your alliance", w.playerName(p))))
		}
		return false
	}

	al.expiryTick += w.tun.Diplomacy.AllianceExtensionTicks
	al.wantsExtension[0] = false
	al.wantsExtension[1] = false
	for _, id := range []PlayerID{al.a, al.b} {
		if m := w.players[id]; m != nil {
			m.AddEvent(messageEvent(now, fmt.Sprintf("alliance with %s extended", w.playerName(al.Other(id)))))
		}
	}
	return true
}

// revokeExtension clears only p's own intent. Calling it with nothing
// pending is a silent no-op: zero notifications, zero state change.
func (w *World) revokeExtension(al *Alliance, p PlayerID, now uint64) {
	s := al.side(p)
	if s < 0 || !al.wantsExtension[s] {
		return
	}
	al.wantsExtension[s] = false
	if other := w.players[al.Other(p)]; other != nil {
		other.AddEvent(messageEvent(now, fmt.Sprintf("%s withdrew their extension proposal", w.playerName(p))))
	}
}

// breakAlliance terminates the alliance immediately. The counterpart's
// relation toward the breaker takes the full break penalty; every third
// party allied with neither side takes the smaller bystander penalty,
// independent of initiator.
func (w *World) breakAlliance(al *Alliance, breaker PlayerID, now uint64) {
	counterpart := al.Other(breaker)
	w.removeAlliance(al)

	if cp := w.players[counterpart]; cp != nil {
		cp.AdjustRelation(breaker, -w.tun.Diplomacy.BreakPenalty)
		cp.AddEvent(messageEvent(now, fmt.Sprintf("%s broke your alliance", w.playerName(breaker))))
	}
	for _, pid := range w.playerOrder {
		if pid == breaker || pid == counterpart {
			continue
		}
		if w.isAllied(pid, breaker) || w.isAllied(pid, counterpart) {
			continue
		}
		if p := w.players[pid]; p != nil {
			p.AdjustRelation(breaker, -w.tun.Diplomacy.BystanderPenalty)
		}
	}
	if b := w.players[breaker]; b != nil {
		b.AddEvent(messageEvent(now, fmt.Sprintf("you broke your alliance with %s", w.playerName(counterpart))))
	}
}

// betray handles the blast side effect: an attack that costs an ally more
// than the configured tile threshold breaks the alliance and penalizes the
// victim's relation toward the attacker.
func (w *World) betray(attacker, victim PlayerID, now uint64) {
	al := w.allianceBetween(attacker, victim)
	if al == nil {
		return
	}
	w.removeAlliance(al)
	if v := w.players[victim]; v != nil {
		v.AdjustRelation(attacker, -w.tun.Diplomacy.BetrayalPenalty)
		v.AddEvent(messageEvent(now, fmt.Sprintf("%s attacked you; your alliance is broken", w.playerName(attacker))))
	}
	if a := w.players[attacker]; a != nil {
		a.AddEvent(messageEvent(now, fmt.Sprintf("your attack broke the alliance with %s", w.playerName(victim))))
	}
}

// tickDiplomacy expires alliances and pending requests whose time has
// passed. Expiry is not a break: no penalties apply.
func (w *World) tickDiplomacy(now uint64) {
	remaining := w.alliances[:0]
	for _, al := range w.alliances {
		if al.expiryTick > now {
			remaining = append(remaining, al)
			continue
		}
		for _, id := range []PlayerID{al.a, al.b} {
			if m := w.players[id]; m != nil {
				m.AddEvent(messageEvent(now, fmt.Sprintf("alliance with %s expired", w.playerName(al.Other(id)))))
			}
		}
	}
	for i := len(remaining); i < len(w.alliances); i++ {
		w.alliances[i] = nil
	}
	w.alliances = remaining

	reqs := w.requests[:0]
	for _, req := range w.requests {
		if req.ExpiryTick > now {
			reqs = append(reqs, req)
			continue
		}
		if from := w.players[req.From]; from != nil {
			from.AddEvent(messageEvent(now, fmt.Sprintf("%s did not answer your alliance request", w.playerName(req.To))))
		}
	}
	for i := len(reqs); i < len(w.requests); i++ {
		w.requests[i] = nil
	}
	w.requests = reqs
}

func (w *World) playerName(id PlayerID) string {
	if p := w.players[id]; p != nil {
		return p.Name
	}
	return fmt.Sprintf("player %d", id)
}

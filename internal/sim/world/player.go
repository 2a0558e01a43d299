package world

import (
	"sort"

	"landfall.gg/internal/protocol"
)

// PlayerID identifies a player within one match. 0 is reserved for
// unowned territory.
type PlayerID uint16

const NoOwner PlayerID = 0

type Player struct {
	ID      PlayerID
	Name    string
	Gold    int64
	Tiles   int
	Spawned bool

	// Relations holds this player's attitude toward others. Mutated only
	// from the tick loop; iterated in sorted key order wherever the order
	// can affect state.
	Relations map[PlayerID]int

	// Embargoes marks players this player refuses to trade with.
	Embargoes map[PlayerID]bool

	// Events queued for delivery in the next STATE message. Drained every
	// tick; not part of the state digest.
	Events []protocol.Event
}

func newPlayer(id PlayerID, name string, gold int64) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Gold:      gold,
		Relations: make(map[PlayerID]int),
		Embargoes: make(map[PlayerID]bool),
	}
}

func (p *Player) AddEvent(e protocol.Event) {
	p.Events = append(p.Events, e)
	if len(p.Events) > 256 {
		p.Events = p.Events[len(p.Events)-256:]
	}
}

func (p *Player) AdjustRelation(toward PlayerID, delta int) {
	p.Relations[toward] += delta
}

func (p *Player) RelationWith(toward PlayerID) int {
	return p.Relations[toward]
}

// sortedRelationKeys returns the relation partners in stable order for
// digesting and deterministic sweeps.
func (p *Player) sortedRelationKeys() []PlayerID {
	keys := make([]PlayerID, 0, len(p.Relations))
	for id := range p.Relations {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (p *Player) sortedEmbargoKeys() []PlayerID {
	keys := make([]PlayerID, 0, len(p.Embargoes))
	for id := range p.Embargoes {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func actionResult(tick uint64, ref string, ok bool, code, msg string) protocol.Event {
	e := protocol.Event{
		"t":    tick,
		"type": "ACTION_RESULT",
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		e["code"] = code
	}
	if msg != "" {
		e["msg"] = msg
	}
	return e
}

func messageEvent(tick uint64, text string) protocol.Event {
	return protocol.Event{"t": tick, "type": "MESSAGE", "text": text}
}

func incomingUnitEvent(tick uint64, kind UnitKind, from PlayerID) protocol.Event {
	return protocol.Event{"t": tick, "type": "INCOMING_UNIT", "kind": kind.String(), "from": from}
}

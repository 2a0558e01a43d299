package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// stateDigest hashes every piece of simulation state that must match
// across participants. Transient per-client data (event queues, outbound
// channels) is excluded on purpose.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	writeU64(h, &tmp, nowTick)
	writeU64(h, &tmp, uint64(w.cfg.Seed))
	writeU64(h, &tmp, uint64(w.g.Width()))
	writeU64(h, &tmp, uint64(w.g.Height()))
	h.Write([]byte{boolByte(w.g.WrapX()), boolByte(w.g.WrapY())})

	for _, o := range w.owner {
		binary.LittleEndian.PutUint16(tmp[:2], uint16(o))
		h.Write(tmp[:2])
	}

	writeU64(h, &tmp, uint64(len(w.playerOrder)))
	for _, id := range w.playerOrder {
		p := w.players[id]
		writeU64(h, &tmp, uint64(id))
		h.Write([]byte(p.Name))
		writeU64(h, &tmp, uint64(p.Gold))
		writeU64(h, &tmp, uint64(p.Tiles))
		h.Write([]byte{boolByte(p.Spawned)})

		rel := p.sortedRelationKeys()
		writeU64(h, &tmp, uint64(len(rel)))
		for _, other := range rel {
			writeU64(h, &tmp, uint64(other))
			writeU64(h, &tmp, uint64(int64(p.Relations[other])))
		}
		emb := p.sortedEmbargoKeys()
		writeU64(h, &tmp, uint64(len(emb)))
		for _, other := range emb {
			writeU64(h, &tmp, uint64(other))
		}
	}

	writeU64(h, &tmp, uint64(len(w.alliances)))
	for _, al := range w.alliances {
		writeU64(h, &tmp, uint64(al.a))
		writeU64(h, &tmp, uint64(al.b))
		writeU64(h, &tmp, al.expiryTick)
		h.Write([]byte{boolByte(al.wantsExtension[0]), boolByte(al.wantsExtension[1])})
	}

	writeU64(h, &tmp, uint64(len(w.requests)))
	for _, req := range w.requests {
		writeU64(h, &tmp, uint64(req.From))
		writeU64(h, &tmp, uint64(req.To))
		writeU64(h, &tmp, req.ExpiryTick)
	}

	ids := w.sortedUnitIDs()
	writeU64(h, &tmp, uint64(len(ids)))
	for _, id := range ids {
		u := w.units[id]
		writeU64(h, &tmp, u.ID)
		writeU64(h, &tmp, uint64(u.Kind))
		writeU64(h, &tmp, uint64(u.Owner))
		writeU64(h, &tmp, uint64(int64(u.Tile)))
	}

	writeU64(h, &tmp, uint64(len(w.execs)))

	return hex.EncodeToString(h.Sum(nil))
}

func writeU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

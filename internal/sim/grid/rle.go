package grid

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeLand encodes a land bitmap as base64(varint pairs). The pairs are
// (bit, run_len) repeated. Map files ship terrain in this form.
func EncodeLand(land []bool) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(land) {
		b := land[i]
		run := 1
		for j := i + 1; j < len(land) && land[j] == b; j++ {
			run++
		}

		var bit uint64
		if b {
			bit = 1
		}
		n := binary.PutUvarint(tmp[:], bit)
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeLand(b64 string) ([]bool, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []bool
	for i := 0; i < len(raw); {
		bit, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if bit > 1 {
			return nil, fmt.Errorf("bad land bit: %d", bit)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, bit == 1)
		}
	}
	return out, nil
}

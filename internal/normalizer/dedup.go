package normalizer

import (
	"encoding/binary"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"

	"tablenorm/internal/table"
)

// Deduplicate drops rows identical to an earlier row across all columns and
// returns the survivors in their original order with the number removed.
// Missing values compare equal to each other.
func Deduplicate(t *table.Table) (*table.Table, int) {
	seen := make(map[[blake2b.Size256]byte]struct{}, t.NumRows())
	h, _ := blake2b.New256(nil)

	out := t.Filter(func(row []table.Value) bool {
		key := fingerprint(h, row)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return out, t.NumRows() - out.NumRows()
}

// fingerprint hashes an unambiguous encoding of a row: every value is written
// as its kind followed by a length-prefixed payload.
func fingerprint(h hash.Hash, row []table.Value) [blake2b.Size256]byte {
	h.Reset()
	var buf, num [8]byte
	writeBytes := func(b []byte) {
		binary.BigEndian.PutUint64(buf[:], uint64(len(b)))
		h.Write(buf[:])
		h.Write(b)
	}
	for _, v := range row {
		h.Write([]byte{byte(v.Kind())})
		switch v.Kind() {
		case table.KindString:
			s, _ := v.Str()
			writeBytes([]byte(s))
		case table.KindInteger:
			i, _ := v.Int()
			binary.BigEndian.PutUint64(num[:], uint64(i))
			writeBytes(num[:])
		case table.KindNumber:
			f, _ := v.Float()
			if f == 0 {
				f = 0 // fold -0 into +0
			}
			binary.BigEndian.PutUint64(num[:], math.Float64bits(f))
			writeBytes(num[:])
		case table.KindDate:
			d, _ := v.Time()
			writeBytes([]byte(d.Format(table.DateLayout)))
		}
	}
	var sum [blake2b.Size256]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

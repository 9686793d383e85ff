package edgecol

import "math/bits"

// Tombstones is the bitmap paired with an edge block. Bit i (byte i/8,
// bit i%8, least significant first) is set iff slot i is soft-deleted.
//
// Like append, SetTombstoned may modify the receiver's backing array;
// callers holding bytes they do not own should Clone first.
type Tombstones []byte

// ClearTombstones returns an all-clear bitmap sized for count slots.
func ClearTombstones(count int) Tombstones {
	if count <= 0 {
		return nil
	}
	return make(Tombstones, (count+7)/8)
}

// IsTombstoned reports whether slot i is soft-deleted. Indices beyond the
// bitmap are live.
func (t Tombstones) IsTombstoned(i uint32) bool {
	byteIdx := int(i / 8)
	if byteIdx >= len(t) {
		return false
	}
	return t[byteIdx]&(1<<(i%8)) != 0
}

// SetTombstoned marks slot i and returns the (possibly grown) bitmap.
// Marking an already tombstoned slot is a no-op.
func (t Tombstones) SetTombstoned(i uint32) Tombstones {
	byteIdx := int(i / 8)
	if byteIdx >= len(t) {
		var off int
		off, t = grow(t, byteIdx+1-len(t))
		clear(t[off:])
	}
	t[byteIdx] |= 1 << (i % 8)
	return t
}

func (t Tombstones) Clone() Tombstones {
	if t == nil {
		return nil
	}
	return append(Tombstones(nil), t...)
}

// Count returns the number of tombstoned slots.
func (t Tombstones) Count() int {
	var n int
	for _, b := range t {
		n += bits.OnesCount8(b)
	}
	return n
}

// IsClear reports whether no slot is tombstoned.
func (t Tombstones) IsClear() bool {
	for _, b := range t {
		if b != 0 {
			return false
		}
	}
	return true
}

// validate checks that no set bit refers to a slot at or beyond count.
func (t Tombstones) validate(count int) error {
	for byteIdx, b := range t {
		if b == 0 {
			continue
		}
		hi := byteIdx*8 + 7 - bits.LeadingZeros8(b)
		if hi >= count {
			return blockErrf(t, byteIdx, nil, "tombstone bit %d set beyond slot count %d", hi, count)
		}
	}
	return nil
}

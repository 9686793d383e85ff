package edgecol

import (
	"errors"
	"testing"
)

func TestTombstones_SetAndTest(t *testing.T) {
	var ts Tombstones
	if ts.IsTombstoned(0) || ts.IsTombstoned(100) {
		t.Fatalf("empty bitmap reports tombstones")
	}
	ts = ts.SetTombstoned(0)
	ts = ts.SetTombstoned(9)
	ts = ts.SetTombstoned(9)
	deepEqual(t, []byte(ts), x("01 02"))
	deepEqual(t, ts.Count(), 2)
	for i := uint32(0); i < 16; i++ {
		want := i == 0 || i == 9
		if got := ts.IsTombstoned(i); got != want {
			t.Errorf("IsTombstoned(%d) = %v, wanted %v", i, got, want)
		}
	}
}

func TestTombstones_GrowClearsSpareCapacity(t *testing.T) {
	backing := []byte{0, 0xFF, 0xFF, 0xFF}
	ts := Tombstones(backing[:1])
	ts = ts.SetTombstoned(17)
	deepEqual(t, []byte(ts), x("00 00 02"))
}

func TestTombstones_CloneAndClear(t *testing.T) {
	ts := ClearTombstones(9)
	deepEqual(t, len(ts), 2)
	if !ts.IsClear() {
		t.Fatalf("ClearTombstones(9) is not clear")
	}
	if ClearTombstones(0) != nil {
		t.Fatalf("ClearTombstones(0) != nil")
	}

	orig := Tombstones{0x01}
	cl := orig.Clone()
	cl = cl.SetTombstoned(1)
	deepEqual(t, []byte(orig), x("01"))
	deepEqual(t, []byte(cl), x("03"))
	if Tombstones(nil).Clone() != nil {
		t.Fatalf("nil.Clone() != nil")
	}
}

func TestTombstones_Validate(t *testing.T) {
	ts := Tombstones{0x00, 0x04}
	if err := ts.validate(11); err != nil {
		t.Fatalf("validate(11) = %v", err)
	}
	if err := ts.validate(10); !errors.Is(err, ErrCorruptBlock) {
		t.Fatalf("validate(10) = %v, wanted ErrCorruptBlock", err)
	}
	if err := (Tombstones{0, 0, 0}).validate(0); err != nil {
		t.Fatalf("zero padding must validate, got %v", err)
	}
}

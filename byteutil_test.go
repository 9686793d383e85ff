package edgecol

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	_, _ = bb.Write([]byte{9, 8})
	_ = bb.WriteByte(7)
	if !reflect.DeepEqual(bb.Buf, []byte{9, 8, 7}) {
		t.Fatalf("bb.Buf = %x, wanted 090807", bb.Buf)
	}
}

func TestByteUtil_AppendHelpers(t *testing.T) {
	src := []byte{0xAA, 0xBB, 0xCC}
	buf := appendRaw(nil, src)
	if !reflect.DeepEqual(buf, src) {
		t.Fatalf("appendRaw = %x, wanted %x", buf, src)
	}

	buf = appendUint8(nil, 1)
	buf = appendUint32(buf, 0x02030405)
	buf = appendUint64(buf, 0x060708090a0b0c0d)
	deepEqual(t, buf, x("01 02030405 060708090a0b0c0d"))

	buf = appendVarbytes(nil, []byte("hi"))
	deepEqual(t, buf, x("02 6869"))

	buf = appendUvarint(nil, 300)
	deepEqual(t, buf, x("ac02"))
}

func TestEnsureCapacity_KeepsContents(t *testing.T) {
	buf := []byte{1, 2, 3}
	grown := ensureCapacity(buf, 100)
	if cap(grown) < 100 {
		t.Fatalf("cap = %d, wanted >= 100", cap(grown))
	}
	deepEqual(t, grown, []byte{1, 2, 3})

	off, grown := grow(grown, 2)
	if off != 3 || len(grown) != 5 {
		t.Fatalf("grow = (%d, len %d), wanted (3, len 5)", off, len(grown))
	}
}

func TestByteDecoder_Reads(t *testing.T) {
	data := x("05 0102030405 00000007 0000000000000008 ac02 02 6869")
	d := makeByteDecoder(data)
	b, err := d.Byte()
	if err != nil || b != 5 {
		t.Fatalf("Byte = (%d, %v)", b, err)
	}
	raw, err := d.Raw(5)
	if err != nil || !reflect.DeepEqual(raw, x("0102030405")) {
		t.Fatalf("Raw = (%x, %v)", raw, err)
	}
	u32, err := d.Uint32()
	if err != nil || u32 != 7 {
		t.Fatalf("Uint32 = (%d, %v)", u32, err)
	}
	u64, err := d.Uint64()
	if err != nil || u64 != 8 {
		t.Fatalf("Uint64 = (%d, %v)", u64, err)
	}
	n, err := d.Uvarinti()
	if err != nil || n != 300 {
		t.Fatalf("Uvarinti = (%d, %v)", n, err)
	}
	vb, err := d.VarBytes()
	if err != nil || string(vb) != "hi" {
		t.Fatalf("VarBytes = (%q, %v)", vb, err)
	}
	if d.Remaining() != 0 || d.Off() != len(data) {
		t.Fatalf("Remaining = %d, Off = %d", d.Remaining(), d.Off())
	}
}

func TestByteDecoder_Errors(t *testing.T) {
	d := makeByteDecoder([]byte{1, 2})
	if _, err := d.Uint32(); !errors.Is(err, ErrCorruptBlock) {
		t.Fatalf("Uint32 err = %v, wanted ErrCorruptBlock", err)
	}

	d = makeByteDecoder([]byte{0x80})
	if _, err := d.Uvarint(); !errors.Is(err, ErrCorruptBlock) {
		t.Fatalf("Uvarint err = %v, wanted ErrCorruptBlock", err)
	}

	big := binary.AppendUvarint(nil, 1<<40)
	d = makeByteDecoder(big)
	if _, err := d.Uvarinti(); !errors.Is(err, ErrCorruptBlock) {
		t.Fatalf("Uvarinti err = %v, wanted ErrCorruptBlock", err)
	}

	d = makeByteDecoder(x("05 6869"))
	if _, err := d.VarBytes(); !errors.Is(err, ErrCorruptBlock) {
		t.Fatalf("VarBytes err = %v, wanted ErrCorruptBlock", err)
	}
	var be *BlockError
	if _, err := d.Raw(10); !errors.As(err, &be) || be.Off != 1 {
		t.Fatalf("Raw err = %v, wanted BlockError at offset 1", err)
	}
}

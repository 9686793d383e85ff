package edgecol

import (
	"encoding/binary"
	"fmt"
)

type valueFlags uint64

const (
	vfVerBit0 = valueFlags(1 << iota)
	vfVerBit1
	vfVerBit2
	vfVerBit3

	vfVerMask       = (vfVerBit0 | vfVerBit1 | vfVerBit2 | vfVerBit3)
	vfVer1          = vfVerBit0
	vfSupportedMask = vfVer1
	vfDefault       = vfVer1

	minValueSize       = 3
	maxValueHeaderSize = binary.MaxVarintLen64 * 3
)

// vertexValue is the stored form of a vertex record: a uvarint header
// (flags, mod count, data size) followed by the msgpack property map.
//
// ModCount increases with every mutation of the vertex's edge columns and
// serves as the optimistic concurrency token for conditional operations.
type vertexValue struct {
	Flags    valueFlags
	ModCount uint64
	Data     []byte
}

func (vle *vertexValue) encode(buf []byte) []byte {
	buf = ensureCapacity(buf, len(buf)+maxValueHeaderSize+len(vle.Data))
	buf = appendUvarint(buf, uint64(vle.Flags))
	buf = appendUvarint(buf, vle.ModCount)
	buf = appendUvarint(buf, uint64(len(vle.Data)))
	return appendRaw(buf, vle.Data)
}

func (vle *vertexValue) decode(data []byte) error {
	if len(data) < minValueSize {
		return fmt.Errorf("invalid vertex record: at least %d bytes required, got %x", minValueSize, data)
	}
	d := makeByteDecoder(data)
	v, err := d.Uvarint()
	if err != nil {
		return fmt.Errorf("invalid vertex record: bad flags: %w", err)
	}
	if (v &^ uint64(vfSupportedMask)) != 0 {
		return fmt.Errorf("invalid vertex record: unsupported flags %x", v)
	}
	vle.Flags = valueFlags(v)

	vle.ModCount, err = d.Uvarint()
	if err != nil {
		return fmt.Errorf("invalid vertex record: bad mod count: %w", err)
	}

	vle.Data, err = d.VarBytes()
	if err != nil {
		return fmt.Errorf("invalid vertex record: bad data: %w", err)
	}
	if d.Remaining() != 0 {
		return fmt.Errorf("invalid vertex record: %d trailing bytes", d.Remaining())
	}
	return nil
}

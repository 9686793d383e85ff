package edgecol

import (
	"encoding/binary"
	"math"
	"strings"
)

const (
	blockFormatVer1      = 1
	blockFormatVerLatest = blockFormatVer1

	blockHeaderSize = 1 + 4 + 4 // version, schema fingerprint, slot count
	minSlotSize     = 1 + 8 + 1 // payload size, target, index
	maxSlotCount    = math.MaxUint32

	countOffset = 1 + 4
)

// Slot is one edge record of an edge block. Attrs holds one value per
// schema attribute, in schema order; nil is null. Value types are int32,
// int64, float64, bool and string.
type Slot struct {
	Index  uint32
	Target VertexID
	Attrs  []any
}

// EncodeEdgeBlock serializes slots into a new edge block. Slot indices are
// assigned from slot positions; Slot.Index of the input is ignored.
func EncodeEdgeBlock(schema *EdgeSchema, slots []Slot) ([]byte, error) {
	for i := range slots {
		if err := schema.ValidateValues(slots[i].Attrs); err != nil {
			return nil, err
		}
	}
	buf := appendBlockHeader(nil, schema, len(slots))
	for i := range slots {
		buf = appendSlot(buf, schema, uint32(i), slots[i].Target, slots[i].Attrs)
	}
	return buf, nil
}

func appendBlockHeader(buf []byte, schema *EdgeSchema, count int) []byte {
	buf = appendUint8(buf, blockFormatVerLatest)
	buf = appendUint32(buf, schema.Fingerprint())
	buf = appendUint32(buf, uint32(count))
	return buf
}

// appendSlot expects attrs to be validated already.
func appendSlot(buf []byte, schema *EdgeSchema, index uint32, target VertexID, attrs []any) []byte {
	buf = appendUvarint(buf, uint64(slotPayloadSize(schema, index, attrs)))
	start := len(buf)
	buf = appendUint64(buf, uint64(target))
	buf = appendUvarint(buf, uint64(index))
	for i, a := range schema.Attrs {
		v := attrs[i]
		if v == nil {
			buf = appendUint8(buf, 0)
			continue
		}
		buf = appendUint8(buf, 1)
		switch a.Type {
		case AttrInt32:
			buf = appendUint32(buf, uint32(v.(int32)))
		case AttrInt64:
			buf = appendUint64(buf, uint64(v.(int64)))
		case AttrDouble:
			buf = appendUint64(buf, math.Float64bits(v.(float64)))
		case AttrBool:
			if v.(bool) {
				buf = appendUint8(buf, 1)
			} else {
				buf = appendUint8(buf, 0)
			}
		case AttrString:
			var off int
			off, buf = grow(buf, a.Size)
			n := copy(buf[off:], v.(string))
			clear(buf[off+n:])
		case AttrVarchar:
			buf = appendVarbytes(buf, []byte(v.(string)))
		default:
			panic("unreachable")
		}
	}
	if len(buf)-start != slotPayloadSize(schema, index, attrs) {
		panic("internal error: slot size mismatch")
	}
	return buf
}

func slotPayloadSize(schema *EdgeSchema, index uint32, attrs []any) int {
	n := 8 + uvarintLen(uint64(index))
	for i, a := range schema.Attrs {
		n++
		v := attrs[i]
		if v == nil {
			continue
		}
		switch a.Type {
		case AttrInt32:
			n += 4
		case AttrInt64, AttrDouble:
			n += 8
		case AttrBool:
			n += 1
		case AttrString:
			n += a.Size
		case AttrVarchar:
			s := v.(string)
			n += uvarintLen(uint64(len(s))) + len(s)
		}
	}
	return n
}

func uvarintLen(v uint64) int {
	var tmp [binary.MaxVarintLen64]byte
	return binary.PutUvarint(tmp[:], v)
}

// readBlockHeader validates the header of a non-empty block and returns its
// slot count, leaving d positioned at the first slot. An empty block has
// zero slots.
func readBlockHeader(schema *EdgeSchema, d *byteDecoder) (int, error) {
	if d.Remaining() == 0 {
		return 0, nil
	}
	if d.Remaining() < blockHeaderSize {
		return 0, blockErrf(d.Orig, d.Off(), nil, "truncated edge block header")
	}
	ver, _ := d.Byte()
	if ver != blockFormatVer1 {
		return 0, blockErrf(d.Orig, 0, nil, "unsupported edge block version %d", ver)
	}
	fp, _ := d.Uint32()
	if fp != schema.Fingerprint() {
		return 0, schemaErrf(schema, "", "block was encoded for schema %08x, decoding with %08x", fp, schema.Fingerprint())
	}
	count, _ := d.Uint32()
	if int64(count)*minSlotSize > int64(d.Remaining()) {
		return 0, blockErrf(d.Orig, countOffset, nil, "slot count %d does not fit into %d payload bytes", count, d.Remaining())
	}
	return int(count), nil
}

// SlotCount returns the number of slots (live and tombstoned) recorded in
// the block header. It is also the next slot index an append will use.
func SlotCount(schema *EdgeSchema, block []byte) (int, error) {
	d := makeByteDecoder(block)
	return readBlockHeader(schema, &d)
}

// DecodeEdgeBlock decodes every slot of the block, including tombstoned
// ones.
func DecodeEdgeBlock(schema *EdgeSchema, block []byte) ([]Slot, error) {
	var slots []Slot
	err := scanSlots(schema, block, nil, true, func(s *Slot) error {
		slots = append(slots, *s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// DecodeLiveSlots decodes the slots that are not tombstoned. This is the
// accessor read paths use, so soft-deleted edges never become visible.
func DecodeLiveSlots(schema *EdgeSchema, block []byte, tombstones Tombstones) ([]Slot, error) {
	var slots []Slot
	err := scanSlots(schema, block, tombstones, false, func(s *Slot) error {
		slots = append(slots, *s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// scanSlots walks the block calling f for each slot. Unless all is set,
// tombstoned slots are skipped by their size prefix without being parsed.
func scanSlots(schema *EdgeSchema, block []byte, tombstones Tombstones, all bool, f func(s *Slot) error) error {
	d := makeByteDecoder(block)
	count, err := readBlockHeader(schema, &d)
	if err != nil {
		return err
	}
	if !all {
		if err := tombstones.validate(count); err != nil {
			return err
		}
	}
	for i := 0; i < count; i++ {
		slotOff := d.Off()
		size, err := d.Uvarinti()
		if err != nil {
			return err
		}
		if size > d.Remaining() {
			return blockErrf(block, slotOff, nil, "slot %d of %d declares %d bytes, only %d remain", i, count, size, d.Remaining())
		}
		if !all && tombstones.IsTombstoned(uint32(i)) {
			_, _ = d.Raw(size)
			continue
		}
		start := d.Off()
		slot, err := decodeSlot(schema, &d)
		if err != nil {
			return err
		}
		if d.Off()-start != size {
			return blockErrf(block, slotOff, nil, "slot %d declares %d bytes, decoded %d", i, size, d.Off()-start)
		}
		if slot.Index != uint32(i) {
			return blockErrf(block, slotOff, nil, "slot at position %d carries index %d", i, slot.Index)
		}
		if err := f(&slot); err != nil {
			return err
		}
	}
	if d.Remaining() != 0 {
		return blockErrf(block, d.Off(), nil, "%d trailing bytes after %d slots", d.Remaining(), count)
	}
	return nil
}

func decodeSlot(schema *EdgeSchema, d *byteDecoder) (Slot, error) {
	var slot Slot
	target, err := d.Uint64()
	if err != nil {
		return slot, err
	}
	slot.Target = VertexID(target)
	idxOff := d.Off()
	idx, err := d.Uvarint()
	if err != nil {
		return slot, err
	}
	if idx > maxSlotCount {
		return slot, blockErrf(d.Orig, idxOff, nil, "slot index %d out of range", idx)
	}
	slot.Index = uint32(idx)

	slot.Attrs = make([]any, len(schema.Attrs))
	for i, a := range schema.Attrs {
		off := d.Off()
		presence, err := d.Byte()
		if err != nil {
			return slot, err
		}
		switch presence {
		case 0:
			continue
		case 1:
		default:
			return slot, blockErrf(d.Orig, off, nil, "invalid presence flag %d for %s", presence, a)
		}
		v, err := decodeAttrValue(a, d)
		if err != nil {
			return slot, err
		}
		slot.Attrs[i] = v
	}
	return slot, nil
}

func decodeAttrValue(a Attr, d *byteDecoder) (any, error) {
	off := d.Off()
	switch a.Type {
	case AttrInt32:
		v, err := d.Uint32()
		return int32(v), err
	case AttrInt64:
		v, err := d.Uint64()
		return int64(v), err
	case AttrDouble:
		v, err := d.Uint64()
		return math.Float64frombits(v), err
	case AttrBool:
		b, err := d.Byte()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, blockErrf(d.Orig, off, nil, "invalid bool %d for %s", b, a)
		}
		return b == 1, nil
	case AttrString:
		b, err := d.Raw(a.Size)
		if err != nil {
			return nil, err
		}
		return strings.TrimRight(string(b), "\x00"), nil
	case AttrVarchar:
		b, err := d.VarBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return nil, blockErrf(d.Orig, off, nil, "cannot decode %s", a)
	}
}

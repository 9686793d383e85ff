package edgecol

import (
	"encoding/binary"
	"fmt"
)

// EdgeColumn is one record's edge block for one edge type together with
// its tombstone bitmap. A zero EdgeColumn is an empty block.
//
// The functions below never modify the byte slices they are given and
// must be serialized per column by the caller: CompactEdgeBlock renumbers
// slots, so an append or delete racing with it would target stale indices.
type EdgeColumn struct {
	Block      []byte
	Tombstones Tombstones
}

func (col EdgeColumn) IsEmpty() bool {
	return len(col.Block) == 0
}

// EdgeValues are the values of an edge being appended.
type EdgeValues struct {
	Target VertexID
	Attrs  []any
}

// AppendEdge encodes a new live slot at the end of the block and returns
// the updated column and the slot's index. On error, col is returned
// unchanged.
func AppendEdge(schema *EdgeSchema, col EdgeColumn, edge EdgeValues) (EdgeColumn, uint32, error) {
	if err := schema.ValidateValues(edge.Attrs); err != nil {
		return col, 0, err
	}
	count, err := SlotCount(schema, col.Block)
	if err != nil {
		return col, 0, err
	}
	if int64(count) >= maxSlotCount {
		return col, 0, fmt.Errorf("edge block of %s is full (%d slots)", schema.Name, count)
	}
	index := uint32(count)

	size := len(col.Block)
	if size == 0 {
		size = blockHeaderSize
	}
	buf := make([]byte, 0, size+binary.MaxVarintLen64+slotPayloadSize(schema, index, edge.Attrs))
	if len(col.Block) == 0 {
		buf = appendBlockHeader(buf, schema, 0)
	} else {
		buf = appendRaw(buf, col.Block)
	}
	buf = appendSlot(buf, schema, index, edge.Target, edge.Attrs)
	binary.BigEndian.PutUint32(buf[countOffset:], index+1)

	return EdgeColumn{Block: buf, Tombstones: col.Tombstones}, index, nil
}

// SoftDeleteEdges tombstones every live slot matching pred and returns the
// updated column along with the number of slots it tombstoned. Zero
// matches is not an error; the column is returned as is.
func SoftDeleteEdges(schema *EdgeSchema, col EdgeColumn, pred Predicate) (EdgeColumn, int, error) {
	var matched []uint32
	err := scanSlots(schema, col.Block, col.Tombstones, false, func(s *Slot) error {
		if pred.Match(schema, s) {
			matched = append(matched, s.Index)
		}
		return nil
	})
	if err != nil {
		return col, 0, err
	}
	if len(matched) == 0 {
		return col, 0, nil
	}
	tombstones := col.Tombstones.Clone()
	for _, i := range matched {
		tombstones = tombstones.SetTombstoned(i)
	}
	return EdgeColumn{Block: col.Block, Tombstones: tombstones}, len(matched), nil
}

// CompactEdgeBlock rewrites the block without its tombstoned slots,
// renumbering the survivors from 0, and resets the bitmap. Slot indices
// captured before compaction are invalid afterwards. A block with no live
// slots compacts to the empty column.
func CompactEdgeBlock(schema *EdgeSchema, col EdgeColumn) (EdgeColumn, error) {
	live, err := DecodeLiveSlots(schema, col.Block, col.Tombstones)
	if err != nil {
		return col, err
	}
	if len(live) == 0 {
		return EdgeColumn{}, nil
	}
	block, err := EncodeEdgeBlock(schema, live)
	if err != nil {
		return col, err
	}
	return EdgeColumn{Block: block, Tombstones: ClearTombstones(len(live))}, nil
}

// SlotCounts returns the number of live and tombstoned slots in col.
func (col EdgeColumn) SlotCounts(schema *EdgeSchema) (live, tombstoned int, err error) {
	total, err := SlotCount(schema, col.Block)
	if err != nil {
		return 0, 0, err
	}
	if err := col.Tombstones.validate(total); err != nil {
		return 0, 0, err
	}
	tombstoned = col.Tombstones.Count()
	return total - tombstoned, tombstoned, nil
}

package edgecol

import (
	"bytes"
	"errors"
	"testing"
)

func appendAll(t testing.TB, schema *EdgeSchema, col EdgeColumn, slots ...Slot) EdgeColumn {
	t.Helper()
	for _, s := range slots {
		var err error
		col, _, err = AppendEdge(schema, col, EdgeValues{Target: s.Target, Attrs: s.Attrs})
		if err != nil {
			t.Fatalf("AppendEdge(%v) = %v", s, err)
		}
	}
	return col
}

func targets(slots []Slot) []VertexID {
	var out []VertexID
	for _, s := range slots {
		out = append(out, s.Target)
	}
	return out
}

func TestAppendEdge_AssignsIndices(t *testing.T) {
	var col EdgeColumn
	for i := 0; i < 3; i++ {
		var idx uint32
		var err error
		col, idx, err = AppendEdge(knowsSchema, col, EdgeValues{Target: VertexID(10 + i), Attrs: []any{int32(i), nil, nil, nil}})
		if err != nil {
			t.Fatal(err)
		}
		deepEqual(t, idx, uint32(i))
	}
	slots := must(DecodeEdgeBlock(knowsSchema, col.Block))
	deepEqual(t, targets(slots), []VertexID{10, 11, 12})

	// Same bytes as encoding the list in one go.
	deepEqual(t, col.Block, must(EncodeEdgeBlock(knowsSchema, slots)))
}

func TestAppendEdge_DoesNotModifyInput(t *testing.T) {
	col := appendAll(t, knowsSchema, EdgeColumn{}, knowsSlot(1, 2010, "may", 1, true))
	before := bytes.Clone(col.Block)
	shared := make([]byte, len(col.Block), len(col.Block)+256)
	copy(shared, col.Block)
	col.Block = shared

	_, _, err := AppendEdge(knowsSchema, col, EdgeValues{Target: 2, Attrs: []any{int32(1), nil, nil, nil}})
	if err != nil {
		t.Fatal(err)
	}
	deepEqual(t, col.Block, before)
	deepEqual(t, shared[:cap(shared)][len(before):], make([]byte, 256))
}

// Appending with too few values fails and leaves the block untouched.
func TestAppendEdge_ArityMismatchLeavesBlock(t *testing.T) {
	schema := MustEdgeSchema("e",
		Attr{Name: "a", Type: AttrInt32},
		Attr{Name: "b", Type: AttrInt32},
		Attr{Name: "c", Type: AttrInt32},
	)
	col := appendAll(t, schema, EdgeColumn{}, Slot{Target: 1, Attrs: []any{int32(1), int32(2), int32(3)}})
	before := must(DecodeEdgeBlock(schema, col.Block))
	beforeBytes := bytes.Clone(col.Block)

	after, _, err := AppendEdge(schema, col, EdgeValues{Target: 2, Attrs: []any{int32(1), int32(2)}})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, wanted ErrSchemaMismatch", err)
	}
	deepEqual(t, after.Block, beforeBytes)
	deepEqual(t, must(DecodeEdgeBlock(schema, after.Block)), before)
}

func TestSoftDeleteEdges(t *testing.T) {
	col := appendAll(t, knowsSchema, EdgeColumn{},
		knowsSlot(1, 2010, "may", 1, true),
		knowsSlot(2, 2011, "june", 2, false),
		knowsSlot(1, 2012, "july", 3, true),
	)
	blockBefore := bytes.Clone(col.Block)

	col2, n, err := SoftDeleteEdges(knowsSchema, col, TargetIs(1))
	if err != nil {
		t.Fatal(err)
	}
	deepEqual(t, n, 2)
	deepEqual(t, col2.Block, blockBefore)
	if col.Tombstones != nil {
		t.Fatalf("input tombstones modified: %x", col.Tombstones)
	}
	deepEqual(t, targets(must(DecodeLiveSlots(knowsSchema, col2.Block, col2.Tombstones))), []VertexID{2})

	// Raw decoding still sees tombstoned slots until compaction.
	raw := must(DecodeEdgeBlock(knowsSchema, col2.Block))
	deepEqual(t, targets(raw), []VertexID{1, 2, 1})
	deepEqual(t, []uint32{raw[0].Index, raw[2].Index}, []uint32{0, 2})
	deepEqual(t, raw[2].Attrs, []any{int32(2012), "july", float64(3), true})
	if !col2.Tombstones.IsTombstoned(0) || col2.Tombstones.IsTombstoned(1) || !col2.Tombstones.IsTombstoned(2) {
		t.Fatalf("tombstones = %08b, wanted slots 0 and 2", []byte(col2.Tombstones))
	}

	// Deleting again is a no-op.
	col3, n, err := SoftDeleteEdges(knowsSchema, col2, TargetIs(1))
	if err != nil {
		t.Fatal(err)
	}
	deepEqual(t, n, 0)
	deepEqual(t, col3, col2)

	// Tombstoned slots keep their indices; appends continue after them.
	col4, idx, err := AppendEdge(knowsSchema, col3, EdgeValues{Target: 5, Attrs: []any{nil, nil, nil, nil}})
	if err != nil {
		t.Fatal(err)
	}
	deepEqual(t, idx, uint32(3))
	live := must(DecodeLiveSlots(knowsSchema, col4.Block, col4.Tombstones))
	deepEqual(t, targets(live), []VertexID{2, 5})
}

func TestSoftDeleteEdges_Predicates(t *testing.T) {
	col := appendAll(t, knowsSchema, EdgeColumn{},
		knowsSlot(1, 2010, "may", 1, true),
		knowsSlot(2, 2010, "june", 2, false),
		Slot{Target: 3, Attrs: []any{nil, nil, nil, nil}},
	)
	count := func(p Predicate) int {
		t.Helper()
		_, n, err := SoftDeleteEdges(knowsSchema, col, p)
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	deepEqual(t, count(AttrIs("year", int32(2010))), 2)
	deepEqual(t, count(AttrIs("year", 2010)), 0)
	deepEqual(t, count(AttrIs("year", nil)), 1)
	deepEqual(t, count(AttrIs("nope", nil)), 0)
	deepEqual(t, count(AllOf(AttrIs("year", int32(2010)), AttrIs("together", false))), 1)
	deepEqual(t, count(AnyEdge()), 3)

	deepEqual(t, AllOf(TargetIs(1), AttrIs("year", int32(2010))).String(), "target=1 && year=2010")
}

func TestCompactEdgeBlock(t *testing.T) {
	col := appendAll(t, knowsSchema, EdgeColumn{},
		knowsSlot(1, 2010, "may", 1, true),
		knowsSlot(2, 2011, "june", 2, false),
		knowsSlot(3, 2012, "july", 3, true),
		knowsSlot(4, 2013, "august", 4, false),
	)
	col, _, err := SoftDeleteEdges(knowsSchema, col, targetsIn(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	liveBefore := must(DecodeLiveSlots(knowsSchema, col.Block, col.Tombstones))

	compacted := must(CompactEdgeBlock(knowsSchema, col))
	if !compacted.Tombstones.IsClear() {
		t.Fatalf("tombstones after compaction = %x", compacted.Tombstones)
	}
	deepEqual(t, must(SlotCount(knowsSchema, compacted.Block)), 2)
	liveAfter := must(DecodeLiveSlots(knowsSchema, compacted.Block, compacted.Tombstones))
	deepEqual(t, targets(liveAfter), targets(liveBefore))
	for i, s := range liveAfter {
		deepEqual(t, s.Index, uint32(i))
		deepEqual(t, s.Attrs, liveBefore[i].Attrs)
	}
	if len(compacted.Block) >= len(col.Block) {
		t.Fatalf("compacted block is %d bytes, original %d", len(compacted.Block), len(col.Block))
	}

	// Nothing to reclaim: same live slots, same bytes.
	again := must(CompactEdgeBlock(knowsSchema, compacted))
	deepEqual(t, again.Block, compacted.Block)
}

func TestCompactEdgeBlock_AllDead(t *testing.T) {
	col := appendAll(t, knowsSchema, EdgeColumn{}, knowsSlot(1, 2010, "may", 1, true))
	col, _, err := SoftDeleteEdges(knowsSchema, col, AnyEdge())
	if err != nil {
		t.Fatal(err)
	}
	compacted := must(CompactEdgeBlock(knowsSchema, col))
	if !compacted.IsEmpty() || compacted.Tombstones != nil {
		t.Fatalf("compacted = %+v, wanted empty column", compacted)
	}
	deepEqual(t, must(CompactEdgeBlock(knowsSchema, EdgeColumn{})), EdgeColumn{})
}

func TestEdgeColumn_SlotCounts(t *testing.T) {
	col := appendAll(t, knowsSchema, EdgeColumn{},
		knowsSlot(1, 2010, "may", 1, true),
		knowsSlot(2, 2011, "june", 2, false),
		knowsSlot(3, 2012, "july", 3, true),
	)
	col, _, _ = SoftDeleteEdges(knowsSchema, col, TargetIs(2))
	live, dead, err := col.SlotCounts(knowsSchema)
	if err != nil || live != 2 || dead != 1 {
		t.Fatalf("SlotCounts = (%d, %d, %v), wanted (2, 1, nil)", live, dead, err)
	}
}

type targetsInPred []VertexID

func targetsIn(ids ...VertexID) Predicate {
	return targetsInPred(ids)
}

func (p targetsInPred) Match(schema *EdgeSchema, s *Slot) bool {
	for _, id := range p {
		if s.Target == id {
			return true
		}
	}
	return false
}

func (p targetsInPred) String() string { return "targets" }

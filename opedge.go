package edgecol

import "fmt"

// EdgeColumn returns the edge block and tombstones stored for one vertex
// and concrete edge type. The returned slices are only valid until the
// transaction ends and must not be modified.
func (tx *Tx) EdgeColumn(collection string, id VertexID, edgeType string) (EdgeColumn, error) {
	if _, err := tx.db.cat.EdgeSchema(collection, edgeType); err != nil {
		return EdgeColumn{}, err
	}
	blocks, tombstones := tx.edgeBuckets(collection, edgeType)
	key := vertexKey(id)
	return EdgeColumn{
		Block:      blocks.Get(key),
		Tombstones: Tombstones(tombstones.Get(key)),
	}, nil
}

func (tx *Tx) putEdgeColumn(collection string, id VertexID, edgeType string, col EdgeColumn, blockChanged, tombstonesChanged bool) error {
	blocks, tombstones := tx.edgeBuckets(collection, edgeType)
	key := vertexKey(id)
	if col.IsEmpty() {
		if err := blocks.Delete(key); err != nil {
			return err
		}
		return tombstones.Delete(key)
	}
	if blockChanged {
		tx.addValueBuf(col.Block)
		if err := blocks.Put(key, col.Block); err != nil {
			return err
		}
	}
	if !tombstonesChanged {
		return nil
	}
	if col.Tombstones.IsClear() {
		return tombstones.Delete(key)
	}
	tx.addValueBuf(col.Tombstones)
	return tombstones.Put(key, col.Tombstones)
}

func (tx *Tx) vertexEdgeSchema(id VertexID, edgeType string) (string, *EdgeSchema, error) {
	coll, ok, err := tx.VertexCollection(id)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	schema, err := tx.db.cat.EdgeSchema(coll, edgeType)
	if err != nil {
		return "", nil, err
	}
	return coll, schema, nil
}

// InsertEdge appends an edge from one vertex to another and returns the
// slot index it was stored at. Attribute values follow the edge type's
// schema order; nil stands for null.
func (tx *Tx) InsertEdge(from VertexID, edgeType string, to VertexID, attrs ...any) (uint32, error) {
	tx.requireWritable()
	coll, schema, err := tx.vertexEdgeSchema(from, edgeType)
	if err != nil {
		return 0, err
	}
	if _, ok, err := tx.VertexCollection(to); err != nil {
		return 0, err
	} else if !ok {
		return 0, fmt.Errorf("%w: edge target %d", ErrUnknownVertex, to)
	}

	col, err := tx.EdgeColumn(coll, from, edgeType)
	if err != nil {
		return 0, err
	}
	col, slot, err := AppendEdge(schema, col, EdgeValues{Target: to, Attrs: attrs})
	if err != nil {
		return 0, columnErrf(coll, from, edgeType, err, "")
	}
	if err := tx.putEdgeColumn(coll, from, edgeType, col, true, false); err != nil {
		return 0, err
	}
	if _, err := tx.touchVertex(coll, from); err != nil {
		return 0, err
	}
	tx.markWritten()

	metricEdgesAppended.WithLabelValues(coll, edgeType).Inc()
	if tx.db.verbose {
		tx.db.logf("edgecol: APPEND %s/%d.%s => slot %d", coll, from, edgeType, slot)
	}
	tx.notify(&Change{op: OpAppendEdge, collection: coll, vertex: from, edgeType: edgeType, slot: slot})
	return slot, nil
}

// DeleteEdges tombstones the live edges of a vertex matching pred and
// returns how many it tombstoned.
func (tx *Tx) DeleteEdges(from VertexID, edgeType string, pred Predicate) (int, error) {
	tx.requireWritable()
	coll, schema, err := tx.vertexEdgeSchema(from, edgeType)
	if err != nil {
		return 0, err
	}
	col, err := tx.EdgeColumn(coll, from, edgeType)
	if err != nil {
		return 0, err
	}
	col, n, err := SoftDeleteEdges(schema, col, pred)
	if err != nil {
		return 0, columnErrf(coll, from, edgeType, err, "")
	}
	if n == 0 {
		if tx.db.verbose {
			tx.db.logf("edgecol: DELETE_EDGES.NOOP %s/%d.%s %v", coll, from, edgeType, pred)
		}
		return 0, nil
	}
	if err := tx.putEdgeColumn(coll, from, edgeType, col, false, true); err != nil {
		return 0, err
	}
	if _, err := tx.touchVertex(coll, from); err != nil {
		return 0, err
	}
	tx.markWritten()

	metricEdgesTombstoned.WithLabelValues(coll, edgeType).Add(float64(n))
	if tx.db.verbose {
		tx.db.logf("edgecol: DELETE_EDGES %s/%d.%s %v => %d", coll, from, edgeType, pred, n)
	}
	tx.notify(&Change{op: OpDeleteEdges, collection: coll, vertex: from, edgeType: edgeType, count: n})
	return n, nil
}

// LiveEdges returns the live edge slots of a vertex in slot order.
func (tx *Tx) LiveEdges(from VertexID, edgeType string) ([]Slot, error) {
	coll, schema, err := tx.vertexEdgeSchema(from, edgeType)
	if err != nil {
		return nil, err
	}
	col, err := tx.EdgeColumn(coll, from, edgeType)
	if err != nil {
		return nil, err
	}
	slots, err := DecodeLiveSlots(schema, col.Block, col.Tombstones)
	if err != nil {
		return nil, columnErrf(coll, from, edgeType, err, "")
	}
	return slots, nil
}

// CompactEdges drops the tombstoned slots of a vertex's edge block and
// returns how many were reclaimed. Live slots are renumbered from 0.
func (tx *Tx) CompactEdges(from VertexID, edgeType string) (int, error) {
	tx.requireWritable()
	coll, schema, err := tx.vertexEdgeSchema(from, edgeType)
	if err != nil {
		return 0, err
	}
	return tx.compactColumn(coll, schema, from)
}

// CompactEdgesIf is CompactEdges conditioned on the vertex's mod count
// still being modCount, as read earlier through Vertex. It fails with
// ErrConflict otherwise.
func (tx *Tx) CompactEdgesIf(from VertexID, edgeType string, modCount uint64) (int, error) {
	tx.requireWritable()
	coll, schema, err := tx.vertexEdgeSchema(from, edgeType)
	if err != nil {
		return 0, err
	}
	vle, err := tx.getVertexValue(coll, from)
	if err != nil {
		return 0, err
	}
	if vle.ModCount != modCount {
		return 0, columnErrf(coll, from, edgeType, ErrConflict, "mod count is %d, expected %d", vle.ModCount, modCount)
	}
	return tx.compactColumn(coll, schema, from)
}

func (tx *Tx) compactColumn(coll string, schema *EdgeSchema, id VertexID) (int, error) {
	col, err := tx.EdgeColumn(coll, id, schema.Name)
	if err != nil {
		return 0, err
	}
	_, dead, err := col.SlotCounts(schema)
	if err != nil {
		return 0, columnErrf(coll, id, schema.Name, err, "")
	}
	if dead == 0 {
		return 0, nil
	}
	col, err = CompactEdgeBlock(schema, col)
	if err != nil {
		return 0, columnErrf(coll, id, schema.Name, err, "")
	}
	if err := tx.putEdgeColumn(coll, id, schema.Name, col, true, true); err != nil {
		return 0, err
	}
	if _, err := tx.touchVertex(coll, id); err != nil {
		return 0, err
	}
	tx.markWritten()

	metricSlotsReclaimed.WithLabelValues(coll, schema.Name).Add(float64(dead))
	if tx.db.verbose {
		tx.db.logf("edgecol: COMPACT %s/%d.%s => reclaimed %d", coll, id, schema.Name, dead)
	}
	tx.notify(&Change{op: OpCompact, collection: coll, vertex: id, edgeType: schema.Name, count: dead})
	return dead, nil
}

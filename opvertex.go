package edgecol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Vertex is a stored vertex record.
type Vertex struct {
	ID         VertexID
	Collection string
	Props      map[string]any
	ModCount   uint64
}

var nextVertexIDKey = []byte("nextid")

var errStopScan = errors.New("stop scan")

func (tx *Tx) allocVertexID() (VertexID, error) {
	meta := tx.metaBucket()
	var next uint64
	if raw := meta.Get(nextVertexIDKey); raw != nil {
		if len(raw) != 8 {
			return 0, fmt.Errorf("edgecol: invalid vertex id counter %x", raw)
		}
		next = binary.BigEndian.Uint64(raw)
	}
	buf := appendUint64(make([]byte, 0, 8), next+1)
	tx.addValueBuf(buf)
	if err := meta.Put(nextVertexIDKey, buf); err != nil {
		return 0, err
	}
	return VertexID(next), nil
}

// CreateVertex stores a new vertex of the given collection and returns its
// id. Ids are unique across all collections.
func (tx *Tx) CreateVertex(collection string, props map[string]any) (VertexID, error) {
	tx.requireWritable()
	if tx.db.cat.Collection(collection) == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	id, err := tx.allocVertexID()
	if err != nil {
		return 0, err
	}

	vle := vertexValue{
		Flags: vfDefault,
		Data:  appendMsgpack(nil, props),
	}
	if err := tx.putVertexValue(collection, id, &vle); err != nil {
		return 0, err
	}
	if err := tx.verticesBucket().Put(vertexKey(id), []byte(collection)); err != nil {
		return 0, err
	}
	tx.markWritten()
	if tx.db.verbose {
		tx.db.logf("edgecol: CREATE %s/%d", collection, id)
	}
	tx.notify(&Change{op: OpCreateVertex, collection: collection, vertex: id})
	return id, nil
}

// VertexCollection returns the collection a vertex belongs to.
func (tx *Tx) VertexCollection(id VertexID) (string, bool, error) {
	raw := tx.verticesBucket().Get(vertexKey(id))
	if raw == nil {
		return "", false, nil
	}
	return string(raw), true, nil
}

// Vertex returns the vertex with the given id, or nil if there is none.
func (tx *Tx) Vertex(id VertexID) (*Vertex, error) {
	coll, ok, err := tx.VertexCollection(id)
	if err != nil || !ok {
		return nil, err
	}
	vle, err := tx.getVertexValue(coll, id)
	if err != nil {
		return nil, err
	}
	v := &Vertex{ID: id, Collection: coll, ModCount: vle.ModCount}
	if err := decodeMsgpack(vle.Data, &v.Props); err != nil {
		return nil, columnErrf(coll, id, "", err, "")
	}
	return v, nil
}

// DeleteVertex removes a vertex together with its edge columns. It fails
// with ErrVertexHasEdges while any live edge starts or ends at the vertex.
// Tombstoned edges do not count.
func (tx *Tx) DeleteVertex(id VertexID) error {
	tx.requireWritable()
	coll, ok, err := tx.VertexCollection(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	key := vertexKey(id)
	for _, schema := range tx.db.cat.Collection(coll).EdgeTypes() {
		col, err := tx.EdgeColumn(coll, id, schema.Name)
		if err != nil {
			return err
		}
		live, _, err := col.SlotCounts(schema)
		if err != nil {
			return columnErrf(coll, id, schema.Name, err, "")
		}
		if live > 0 {
			return columnErrf(coll, id, schema.Name, ErrVertexHasEdges, "%d live edges", live)
		}
	}
	if err := tx.checkNoIncomingEdges(id); err != nil {
		return err
	}
	for _, schema := range tx.db.cat.Collection(coll).EdgeTypes() {
		blocks, tombstones := tx.edgeBuckets(coll, schema.Name)
		ensure(blocks.Delete(key))
		ensure(tombstones.Delete(key))
	}
	ensure(tx.rowsBucket(coll).Delete(key))
	ensure(tx.verticesBucket().Delete(key))
	tx.markWritten()
	if tx.db.verbose {
		tx.db.logf("edgecol: DELETE %s/%d", coll, id)
	}
	tx.notify(&Change{op: OpDeleteVertex, collection: coll, vertex: id})
	return nil
}

// checkNoIncomingEdges scans the edge columns of every collection for a live
// edge targeting id. Edge targets are untyped, so no edge type can be skipped.
func (tx *Tx) checkNoIncomingEdges(id VertexID) error {
	for _, coll := range tx.db.cat.Collections() {
		for _, schema := range coll.EdgeTypes() {
			blocks, tombstones := tx.edgeBuckets(coll.Name, schema.Name)
			c := blocks.Cursor()
			for k, block := c.First(); k != nil; k, block = c.Next() {
				from, ok := decodeVertexKey(k)
				if !ok {
					return fmt.Errorf("edgecol: invalid key %x in %s.%s", k, coll.Name, schema.Name)
				}
				if from == id {
					continue
				}
				var slot uint32
				found := false
				err := scanSlots(schema, block, Tombstones(tombstones.Get(k)), false, func(s *Slot) error {
					if s.Target == id {
						slot, found = s.Index, true
						return errStopScan
					}
					return nil
				})
				if err != nil && err != errStopScan {
					return columnErrf(coll.Name, from, schema.Name, err, "")
				}
				if found {
					return columnErrf(coll.Name, from, schema.Name, ErrVertexHasEdges, "live edge #%d targets %d", slot, id)
				}
			}
		}
	}
	return nil
}

func (tx *Tx) getVertexValue(coll string, id VertexID) (vertexValue, error) {
	var vle vertexValue
	raw := tx.rowsBucket(coll).Get(vertexKey(id))
	if raw == nil {
		err := fmt.Errorf("%w: %s/%d is listed in %s but has no record", ErrUnknownVertex, coll, id, verticesBucket)
		if tx.db.strict {
			panic(fmt.Errorf("data error: %w", err))
		}
		return vle, err
	}
	if err := vle.decode(raw); err != nil {
		return vle, columnErrf(coll, id, "", err, "")
	}
	return vle, nil
}

func (tx *Tx) putVertexValue(coll string, id VertexID, vle *vertexValue) error {
	buf := vle.encode(tx.valueBuf())
	tx.addValueBuf(buf)
	return tx.rowsBucket(coll).Put(vertexKey(id), buf)
}

// touchVertex bumps the mod count of a vertex whose edge columns changed.
func (tx *Tx) touchVertex(coll string, id VertexID) (uint64, error) {
	vle, err := tx.getVertexValue(coll, id)
	if err != nil {
		return 0, err
	}
	vle.ModCount++
	if err := tx.putVertexValue(coll, id, &vle); err != nil {
		return 0, err
	}
	return vle.ModCount, nil
}

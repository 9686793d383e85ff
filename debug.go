package edgecol

import (
	"encoding/json"
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpCollectionHeaders = DumpFlags(1 << iota)
	DumpVertices
	DumpStats
	DumpEdges
	DumpTombstoned

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the store's contents for debugging and tests.
func (tx *Tx) Dump(f DumpFlags) string {
	var buf strings.Builder
	for _, coll := range tx.db.cat.Collections() {
		tx.dumpCollection(&buf, f, coll)
	}
	return buf.String()
}

func (tx *Tx) dumpCollection(w *strings.Builder, f DumpFlags, coll *Collection) {
	rows := tx.rowsBucket(coll.Name)
	if f.Contains(DumpCollectionHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d vertices)\n", coll.Name, rows.KeyCount())
	}
	if f.Contains(DumpStats) {
		for _, schema := range coll.EdgeTypes() {
			s, err := tx.ColumnStats(coll.Name, schema.Name)
			if err != nil {
				fmt.Fprintf(w, "%s.%s.stats: ** ERROR: %v\n", coll.Name, schema.Name, err)
				continue
			}
			fmt.Fprintf(w, "%s.%s.stats: columns = %d, live = %d, tombstoned = %d, block_bytes = %d, tombstone_bytes = %d\n", coll.Name, schema.Name, s.Columns, s.LiveSlots, s.TombstonedSlots, s.BlockBytes, s.TombstoneBytes)
		}
	}
	if !f.Contains(DumpVertices) {
		return
	}
	if f.Contains(DumpStats) {
		fmt.Fprintln(w, dumpSep2)
	}
	c := rows.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		id, _ := decodeVertexKey(k)
		tx.dumpVertex(w, f, coll, id, v)
	}
}

func (tx *Tx) dumpVertex(w *strings.Builder, f DumpFlags, coll *Collection, id VertexID, raw []byte) {
	prefix := fmt.Sprintf("%s/%d", coll.Name, id)
	var vle vertexValue
	var props map[string]any
	err := vle.decode(raw)
	if err == nil {
		err = decodeMsgpack(vle.Data, &props)
	}
	if err != nil {
		fmt.Fprintf(w, "%s = ** ERROR: %v\n", prefix, err)
		return
	}
	fmt.Fprintf(w, "%s = (m%d) %s\n", prefix, vle.ModCount, must(json.Marshal(props)))

	if !f.Contains(DumpEdges) {
		return
	}
	for _, schema := range coll.EdgeTypes() {
		col, err := tx.EdgeColumn(coll.Name, id, schema.Name)
		if err != nil {
			fmt.Fprintf(w, "%s.%s ** ERROR: %v\n", prefix, schema.Name, err)
			continue
		}
		if col.IsEmpty() {
			continue
		}
		err = scanSlots(schema, col.Block, col.Tombstones, true, func(s *Slot) error {
			dead := col.Tombstones.IsTombstoned(s.Index)
			if dead && !f.Contains(DumpTombstoned) {
				return nil
			}
			mark := ""
			if dead {
				mark = " DEAD"
			}
			fmt.Fprintf(w, "%s.%s#%d -> %d %s%s\n", prefix, schema.Name, s.Index, s.Target, formatAttrs(schema, s.Attrs), mark)
			return nil
		})
		if err != nil {
			fmt.Fprintf(w, "%s.%s ** ERROR: %v\n", prefix, schema.Name, err)
		}
	}
}

func formatAttrs(schema *EdgeSchema, values []any) string {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, a := range schema.Attrs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(a.Name)
		buf.WriteByte('=')
		if values[i] == nil {
			buf.WriteString("null")
		} else {
			fmt.Fprint(&buf, values[i])
		}
	}
	buf.WriteByte('}')
	return buf.String()
}

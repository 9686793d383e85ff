package edgecol

import (
	"fmt"
	"time"
)

type CompactStats struct {
	Columns   int // columns with tombstones examined
	Compacted int
	Reclaimed int // slots dropped
}

// CompactAll compacts every edge column of the given collection and edge
// type whose share of tombstoned slots is at least minRatio. A minRatio of
// 0 compacts every column that has any tombstones.
func (tx *Tx) CompactAll(collection, edgeType string, minRatio float64) (CompactStats, error) {
	tx.requireWritable()
	var stats CompactStats
	schema, err := tx.db.cat.EdgeSchema(collection, edgeType)
	if err != nil {
		return stats, err
	}
	start := time.Now()

	// Compaction rewrites the tombstone bucket, so ids are collected first.
	var ids []VertexID
	_, tombstones := tx.edgeBuckets(collection, edgeType)
	c := tombstones.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		id, ok := decodeVertexKey(k)
		if !ok {
			return stats, fmt.Errorf("edgecol: invalid key %x in %s.%s tombstones", k, collection, edgeType)
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		col, err := tx.EdgeColumn(collection, id, edgeType)
		if err != nil {
			return stats, err
		}
		live, dead, err := col.SlotCounts(schema)
		if err != nil {
			return stats, columnErrf(collection, id, edgeType, err, "")
		}
		stats.Columns++
		if dead == 0 || float64(dead)/float64(live+dead) < minRatio {
			continue
		}
		n, err := tx.compactColumn(collection, schema, id)
		if err != nil {
			return stats, err
		}
		stats.Compacted++
		stats.Reclaimed += n
	}

	if stats.Compacted > 0 {
		tx.db.logf("edgecol: compacted %d of %d columns of %s.%s, reclaimed %d slots in %d ms", stats.Compacted, stats.Columns, collection, edgeType, stats.Reclaimed, time.Since(start).Milliseconds())
	}
	return stats, nil
}

package edgecol

import "fmt"

// EdgeTypeStats summarizes the edge columns of one collection edge type.
type EdgeTypeStats struct {
	Columns         int
	LiveSlots       int
	TombstonedSlots int
	BlockBytes      int
	TombstoneBytes  int
}

func (s *EdgeTypeStats) TotalSlots() int {
	return s.LiveSlots + s.TombstonedSlots
}

// TombstoneRatio is the share of slots that compaction would reclaim.
func (s *EdgeTypeStats) TombstoneRatio() float64 {
	if n := s.TotalSlots(); n > 0 {
		return float64(s.TombstonedSlots) / float64(n)
	}
	return 0
}

func (tx *Tx) ColumnStats(collection, edgeType string) (EdgeTypeStats, error) {
	var stats EdgeTypeStats
	schema, err := tx.db.cat.EdgeSchema(collection, edgeType)
	if err != nil {
		return stats, err
	}
	blocks, tombstones := tx.edgeBuckets(collection, edgeType)
	c := blocks.Cursor()
	for k, block := c.First(); k != nil; k, block = c.Next() {
		id, ok := decodeVertexKey(k)
		if !ok {
			return stats, fmt.Errorf("edgecol: invalid key %x in %s.%s", k, collection, edgeType)
		}
		col := EdgeColumn{Block: block, Tombstones: Tombstones(tombstones.Get(k))}
		live, dead, err := col.SlotCounts(schema)
		if err != nil {
			return stats, columnErrf(collection, id, edgeType, err, "")
		}
		stats.Columns++
		stats.LiveSlots += live
		stats.TombstonedSlots += dead
		stats.BlockBytes += len(col.Block)
		stats.TombstoneBytes += len(col.Tombstones)
	}
	return stats, nil
}

/*
Package edgecol stores graph edges as compact columnar blocks inside the
records of an ordinary record store, and answers multi-hop path queries
over them.

Each vertex record owns, per declared edge type, one edge block: a byte
sequence holding the vertex's outgoing edges as indexed slots. Deleting an
edge only sets a bit in the paired tombstone bitmap; compaction later
rewrites the block without the dead slots.

We implement:

1. The edge block codec and its copy-on-write mutations (AppendEdge,
SoftDeleteEdges, CompactEdgeBlock). These work on plain byte slices and
know nothing about storage.

2. A catalog of collections, their edge types, and views that union
several collections. ResolveEdgeSource turns a reference such as
"people.knows" into the concrete edge types to traverse.

3. Breadth-first path enumeration with hop bounds (BFSPaths) over any
BlockSource, and DecodePathMessage to label the results.

4. A Bolt-backed host store (DB, Tx) that keeps vertex records, edge
blocks and tombstones in buckets, so that one transaction gives one
snapshot for traversal.

# Technical Details

**Buckets.**
_meta holds the catalog state and the vertex id counter. _vertices maps
every vertex id to its collection. Each collection has a root bucket
"c.<name>" with sub-buckets "rows" (vertex records), "e.<edge type>" (edge
blocks) and "t.<edge type>" (tombstone bitmaps). All of them are keyed by
the vertex id as 8 big-endian bytes.

**Catalog state.**
The fingerprint and signature of every edge type ever declared is kept in
_meta. Opening a store with a different schema for an existing edge type
fails with ErrSchemaMismatch.

## Binary encoding

**Edge block header** (9 bytes):
1. Format version (1 byte, currently 1).
2. Schema fingerprint (uint32 big-endian).
3. Slot count (uint32 big-endian).

**Slot**: payload size (uvarint), then target vertex id (uint64
big-endian), slot index (uvarint), and per attribute a presence byte
followed by the value when present. The size prefix lets readers skip
tombstoned slots without decoding them.

**Tombstones**: bit i of the bitmap lives in byte i/8 at bit i%8, least
significant bit first. Missing trailing bytes read as zero.

**Vertex record**: flags (uvarint), mod count (uvarint), data size
(uvarint), then msgpack of the property map.
*/
package edgecol

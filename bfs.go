package edgecol

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// BlockSource is what traversal reads from the host record store. Reads
// must observe a consistent snapshot for the duration of one BFSPaths call.
type BlockSource interface {
	// VertexCollection returns the collection owning a vertex, or ok=false
	// if no such vertex exists.
	VertexCollection(id VertexID) (collection string, ok bool, err error)

	// EdgeColumn returns a vertex's edge block and tombstones for one
	// concrete edge type. A vertex with no such edges has an empty column.
	EdgeColumn(collection string, id VertexID, edgeType string) (EdgeColumn, error)
}

// CyclePolicy decides which extensions of a path are pruned.
type CyclePolicy int

const (
	// DistinctEdges never uses the same edge slot twice within one path.
	DistinctEdges CyclePolicy = iota

	// DistinctVertices only produces simple paths.
	DistinctVertices

	// AllWalks prunes nothing and therefore needs a finite upper bound.
	AllWalks

	// FirstVisit reaches every vertex at most once, via the first path
	// (in breadth-first order) that gets there.
	FirstVisit
)

func (p CyclePolicy) String() string {
	switch p {
	case DistinctEdges:
		return "distinct-edges"
	case DistinctVertices:
		return "distinct-vertices"
	case AllWalks:
		return "all-walks"
	case FirstVisit:
		return "first-visit"
	default:
		return fmt.Sprintf("invalid policy %d", int(p))
	}
}

// Unbounded is the Hi value of a query without an upper hop bound.
const Unbounded = -1

type PathQuery struct {
	Start  VertexID
	Lo     int
	Hi     int // Unbounded for no limit
	Policy CyclePolicy
}

func (q PathQuery) validate() error {
	switch {
	case q.Lo < 0:
		return fmt.Errorf("%w: lower bound %d is negative", ErrInvalidBounds, q.Lo)
	case q.Hi < Unbounded:
		return fmt.Errorf("%w: upper bound %d", ErrInvalidBounds, q.Hi)
	case q.Hi >= 0 && q.Lo > q.Hi:
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidBounds, q.Lo, q.Hi)
	case q.Hi == Unbounded && q.Policy == AllWalks:
		return fmt.Errorf("%w: %v needs a finite upper bound", ErrInvalidBounds, q.Policy)
	case q.Policy < DistinctEdges || q.Policy > FirstVisit:
		return fmt.Errorf("%w: %v", ErrInvalidBounds, q.Policy)
	}
	return nil
}

func (q PathQuery) inBounds(level int) bool {
	return level >= q.Lo && (q.Hi == Unbounded || level <= q.Hi)
}

// Hop is one traversed edge: the slot Slot of From's edge block described
// by Source.
type Hop struct {
	Source         *EdgeSource
	From           VertexID
	FromCollection string
	Slot           uint32
	To             VertexID
	ToCollection   string // empty if the target vertex does not exist
	Attrs          []any  // concrete values in Source.Schema order
}

// RawPath is a path from Start through Hops. Slot indices in it are only
// meaningful until the blocks they refer to are compacted.
type RawPath struct {
	Start           VertexID
	StartCollection string
	Hops            []Hop
}

func (p *RawPath) Len() int {
	return len(p.Hops)
}

// End returns the reached vertex and its collection.
func (p *RawPath) End() (VertexID, string) {
	if n := len(p.Hops); n > 0 {
		return p.Hops[n-1].To, p.Hops[n-1].ToCollection
	}
	return p.Start, p.StartCollection
}

func (p *RawPath) extend(hop Hop) RawPath {
	hops := make([]Hop, len(p.Hops)+1)
	copy(hops, p.Hops)
	hops[len(p.Hops)] = hop
	return RawPath{p.Start, p.StartCollection, hops}
}

func (p *RawPath) usesSlot(hop *Hop) bool {
	for i := range p.Hops {
		h := &p.Hops[i]
		if h.Slot == hop.Slot && h.From == hop.From && h.Source == hop.Source {
			return true
		}
	}
	return false
}

func (p *RawPath) visits(id VertexID) bool {
	if p.Start == id {
		return true
	}
	for i := range p.Hops {
		if p.Hops[i].To == id {
			return true
		}
	}
	return false
}

// PathSet is the result of BFSPaths, in breadth-first order.
type PathSet struct {
	Paths   []RawPath
	Levels  int // number of levels expanded
	reached *roaring64.Bitmap
}

// Reached returns the distinct end vertices of the emitted paths.
func (ps *PathSet) Reached() *roaring64.Bitmap {
	return ps.reached
}

func (ps *PathSet) Len() int {
	return len(ps.Paths)
}

// BFSPaths enumerates paths from q.Start along the edge types of et by
// level-synchronous breadth-first expansion, emitting every path whose hop
// count lies within [q.Lo, q.Hi]. Tombstoned edges are never followed.
func BFSPaths(src BlockSource, et *ResolvedEdgeType, q PathQuery) (*PathSet, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	startColl, ok, err := src.VertexCollection(q.Start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStartVertex, q.Start)
	}

	result := &PathSet{reached: roaring64.New()}
	var visited *roaring64.Bitmap
	if q.Policy == FirstVisit {
		visited = roaring64.New()
		visited.Add(uint64(q.Start))
	}

	frontier := []RawPath{{Start: q.Start, StartCollection: startColl}}
	for level := 0; len(frontier) > 0; level++ {
		result.Levels = level + 1
		if q.inBounds(level) {
			for i := range frontier {
				end, _ := frontier[i].End()
				result.Paths = append(result.Paths, frontier[i])
				result.reached.Add(uint64(end))
			}
		}
		if q.Hi != Unbounded && level >= q.Hi {
			break
		}

		var next []RawPath
		for i := range frontier {
			p := &frontier[i]
			from, fromColl := p.End()
			if fromColl == "" {
				continue
			}
			for _, es := range et.SourcesFor(fromColl) {
				col, err := src.EdgeColumn(fromColl, from, es.EdgeType)
				if err != nil {
					return nil, columnErrf(fromColl, from, es.EdgeType, err, "")
				}
				err = scanSlots(es.Schema, col.Block, col.Tombstones, false, func(s *Slot) error {
					hop := Hop{
						Source:         es,
						From:           from,
						FromCollection: fromColl,
						Slot:           s.Index,
						To:             s.Target,
						Attrs:          s.Attrs,
					}
					switch q.Policy {
					case DistinctEdges:
						if p.usesSlot(&hop) {
							return nil
						}
					case DistinctVertices:
						if p.visits(hop.To) {
							return nil
						}
					case FirstVisit:
						if !visited.CheckedAdd(uint64(hop.To)) {
							return nil
						}
					}
					toColl, ok, err := src.VertexCollection(hop.To)
					if err != nil {
						return err
					}
					if ok {
						hop.ToCollection = toColl
					}
					next = append(next, p.extend(hop))
					return nil
				})
				if err != nil {
					return nil, columnErrf(fromColl, from, es.EdgeType, err, "")
				}
			}
		}
		frontier = next
	}
	return result, nil
}

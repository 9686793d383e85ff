package edgecol

import "fmt"

type (
	// Change describes one mutation made by a transaction. Handlers
	// registered with Tx.OnChange receive it right after the mutation is
	// written.
	Change struct {
		op         Op
		collection string
		vertex     VertexID
		edgeType   string
		slot       uint32
		count      int
	}

	Op int
)

const (
	OpNone Op = iota
	OpCreateVertex
	OpDeleteVertex
	OpAppendEdge
	OpDeleteEdges
	OpCompact
)

func (chg *Change) Op() Op {
	return chg.op
}
func (chg *Change) Collection() string {
	return chg.collection
}
func (chg *Change) Vertex() VertexID {
	return chg.vertex
}

// EdgeType is empty for vertex operations.
func (chg *Change) EdgeType() string {
	return chg.edgeType
}

// Slot is the index assigned by OpAppendEdge.
func (chg *Change) Slot() uint32 {
	return chg.slot
}

// Count is the number of slots tombstoned by OpDeleteEdges, or reclaimed
// by OpCompact.
func (chg *Change) Count() int {
	return chg.count
}

func (chg *Change) String() string {
	switch chg.op {
	case OpCreateVertex, OpDeleteVertex:
		return fmt.Sprintf("%v %s/%d", chg.op, chg.collection, chg.vertex)
	case OpAppendEdge:
		return fmt.Sprintf("%v %s/%d.%s#%d", chg.op, chg.collection, chg.vertex, chg.edgeType, chg.slot)
	default:
		return fmt.Sprintf("%v %s/%d.%s (%d)", chg.op, chg.collection, chg.vertex, chg.edgeType, chg.count)
	}
}

func (v Op) String() string {
	switch v {
	case OpNone:
		return "none"
	case OpCreateVertex:
		return "create-vertex"
	case OpDeleteVertex:
		return "delete-vertex"
	case OpAppendEdge:
		return "append-edge"
	case OpDeleteEdges:
		return "delete-edges"
	case OpCompact:
		return "compact"
	default:
		return fmt.Sprintf("invalid op %d", int(v))
	}
}

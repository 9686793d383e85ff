package edgecol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaMismatch     = errors.New("schema mismatch")
	ErrCorruptBlock       = errors.New("corrupt edge block")
	ErrUnresolvedEdgeType = errors.New("unresolved edge type")
	ErrUnknownStartVertex = errors.New("unknown start vertex")
	ErrInvalidBounds      = errors.New("invalid bounds")

	// ErrConflict is returned by conditional host operations when the vertex
	// was modified since the caller captured its mod count.
	ErrConflict = errors.New("concurrent modification")

	ErrUnknownVertex     = errors.New("unknown vertex")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrVertexHasEdges    = errors.New("vertex still has live edges")
)

// BlockError describes an edge block or tombstone bitmap that cannot be
// decoded. It matches ErrCorruptBlock.
type BlockError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func blockErrf(data []byte, off int, err error, format string, args ...any) error {
	return &BlockError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

func (e *BlockError) Is(target error) bool {
	return target == ErrCorruptBlock
}

func (e *BlockError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s at offset %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s at offset %d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s at offset %d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s at offset %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

// SchemaError reports values that do not fit an edge type's declared
// attributes. It matches ErrSchemaMismatch.
type SchemaError struct {
	EdgeType string
	Attr     string
	Msg      string
}

func schemaErrf(schema *EdgeSchema, attr string, format string, args ...any) error {
	var name string
	if schema != nil {
		name = schema.Name
	}
	return &SchemaError{name, attr, fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString(ErrSchemaMismatch.Error())
	if e.EdgeType != "" {
		buf.WriteString(": ")
		buf.WriteString(e.EdgeType)
		if e.Attr != "" {
			buf.WriteByte('.')
			buf.WriteString(e.Attr)
		}
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

// ColumnError attaches the identity of an edge column (collection, vertex
// and edge type) to an error raised while operating on it.
type ColumnError struct {
	Collection string
	Vertex     VertexID
	EdgeType   string
	Msg        string
	Err        error
}

func columnErrf(coll string, id VertexID, edgeType string, err error, format string, args ...any) error {
	return &ColumnError{coll, id, edgeType, fmt.Sprintf(format, args...), err}
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

func (e *ColumnError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Collection)
	fmt.Fprintf(&buf, "/%d", e.Vertex)
	if e.EdgeType != "" {
		buf.WriteByte('.')
		buf.WriteString(e.EdgeType)
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
		if e.Err != nil {
			buf.WriteString(": ")
			buf.WriteString(e.Err.Error())
		}
	} else if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

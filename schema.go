package edgecol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// VertexID is a global vertex identifier. It is the record key of a vertex
// and the target reference of every edge pointing at it, across all
// collections.
type VertexID uint64

type AttrType int

const (
	AttrInvalid AttrType = iota
	AttrInt32
	AttrInt64
	AttrDouble
	AttrBool
	AttrString  // fixed width, zero padded to Attr.Size bytes
	AttrVarchar // length-prefixed
)

func (t AttrType) String() string {
	switch t {
	case AttrInt32:
		return "int32"
	case AttrInt64:
		return "int64"
	case AttrDouble:
		return "double"
	case AttrBool:
		return "bool"
	case AttrString:
		return "string"
	case AttrVarchar:
		return "varchar"
	default:
		return fmt.Sprintf("invalid attr type %d", int(t))
	}
}

func ParseAttrType(s string) (AttrType, error) {
	switch strings.ToLower(s) {
	case "int32", "int":
		return AttrInt32, nil
	case "int64", "bigint":
		return AttrInt64, nil
	case "double", "float64":
		return AttrDouble, nil
	case "bool", "boolean":
		return AttrBool, nil
	case "string", "char":
		return AttrString, nil
	case "varchar", "text":
		return AttrVarchar, nil
	default:
		return AttrInvalid, fmt.Errorf("unknown attribute type %q", s)
	}
}

// MaxStringSize is the largest width of an AttrString attribute.
const MaxStringSize = 64 * 1024

// Attr is one declared edge attribute. Size is only meaningful for
// AttrString.
type Attr struct {
	Name string
	Type AttrType
	Size int
}

func (a Attr) String() string {
	if a.Type == AttrString {
		return a.Name + ":" + a.Type.String() + "(" + strconv.Itoa(a.Size) + ")"
	}
	return a.Name + ":" + a.Type.String()
}

// EdgeSchema is the ordered attribute list of one edge type. It is fixed
// when the edge type is declared; attribute order is encoding order.
type EdgeSchema struct {
	Name  string
	Attrs []Attr

	attrsByName map[string]int
	fingerprint uint32
}

func NewEdgeSchema(name string, attrs ...Attr) (*EdgeSchema, error) {
	schema := &EdgeSchema{
		Name:        name,
		Attrs:       attrs,
		attrsByName: make(map[string]int, len(attrs)),
	}
	if name == "" {
		return nil, fmt.Errorf("edge type name is empty")
	}
	for i, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("%s: attribute %d has no name", name, i)
		}
		if _, dup := schema.attrsByName[a.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate attribute %q", name, a.Name)
		}
		switch a.Type {
		case AttrInt32, AttrInt64, AttrDouble, AttrBool, AttrVarchar:
			if a.Size != 0 {
				return nil, fmt.Errorf("%s.%s: size is only allowed for string attributes", name, a.Name)
			}
		case AttrString:
			if a.Size <= 0 {
				return nil, fmt.Errorf("%s.%s: string attribute needs a positive size", name, a.Name)
			}
			if a.Size > MaxStringSize {
				return nil, fmt.Errorf("%s.%s: string size %d exceeds %d", name, a.Name, a.Size, MaxStringSize)
			}
		default:
			return nil, fmt.Errorf("%s.%s: %v", name, a.Name, a.Type)
		}
		schema.attrsByName[a.Name] = i
	}
	schema.fingerprint = uint32(xxhash.Sum64String(schema.signature()))
	return schema, nil
}

func MustEdgeSchema(name string, attrs ...Attr) *EdgeSchema {
	return must(NewEdgeSchema(name, attrs...))
}

func (schema *EdgeSchema) signature() string {
	var buf strings.Builder
	for i, a := range schema.Attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(a.String())
	}
	return buf.String()
}

func (schema *EdgeSchema) String() string {
	return schema.Name + "(" + schema.signature() + ")"
}

// Fingerprint identifies the physical layout of the schema. It is written
// into every edge block header. The edge type name does not participate.
func (schema *EdgeSchema) Fingerprint() uint32 {
	return schema.fingerprint
}

func (schema *EdgeSchema) Arity() int {
	return len(schema.Attrs)
}

// AttrIndex returns the position of the named attribute, or -1.
func (schema *EdgeSchema) AttrIndex(name string) int {
	if i, ok := schema.attrsByName[name]; ok {
		return i
	}
	return -1
}

// ValidateValues checks that values match the schema's arity and attribute
// types. Nil values are nulls and are always allowed.
func (schema *EdgeSchema) ValidateValues(values []any) error {
	if len(values) != len(schema.Attrs) {
		return schemaErrf(schema, "", "got %d attribute values, schema declares %d", len(values), len(schema.Attrs))
	}
	for i, a := range schema.Attrs {
		if err := a.validate(values[i]); err != nil {
			return schemaErrf(schema, a.Name, "%v", err)
		}
	}
	return nil
}

func (a Attr) validate(v any) error {
	if v == nil {
		return nil
	}
	var ok bool
	switch a.Type {
	case AttrInt32:
		_, ok = v.(int32)
	case AttrInt64:
		_, ok = v.(int64)
	case AttrDouble:
		_, ok = v.(float64)
	case AttrBool:
		_, ok = v.(bool)
	case AttrString:
		var s string
		s, ok = v.(string)
		if ok {
			if len(s) > a.Size {
				return fmt.Errorf("%d bytes do not fit into %s", len(s), a)
			}
			if strings.IndexByte(s, 0) >= 0 {
				return fmt.Errorf("NUL byte not allowed in %s", a)
			}
		}
	case AttrVarchar:
		_, ok = v.(string)
	}
	if !ok {
		return fmt.Errorf("%T value for %s", v, a)
	}
	return nil
}

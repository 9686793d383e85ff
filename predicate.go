package edgecol

import (
	"fmt"
	"strings"
)

// Predicate selects edge slots for SoftDeleteEdges. String describes the
// predicate for logs and error messages.
type Predicate interface {
	Match(schema *EdgeSchema, s *Slot) bool
	String() string
}

type targetIs VertexID

// TargetIs matches edges pointing at the given vertex.
func TargetIs(id VertexID) Predicate {
	return targetIs(id)
}

func (p targetIs) Match(schema *EdgeSchema, s *Slot) bool {
	return s.Target == VertexID(p)
}

func (p targetIs) String() string {
	return fmt.Sprintf("target=%d", VertexID(p))
}

type attrIs struct {
	name  string
	value any
}

// AttrIs matches edges whose named attribute equals value. Values compare
// with ==, so the Go type must match the attribute type (int32 for int32,
// and so on); nil matches null. An attribute missing from the schema never
// matches.
func AttrIs(name string, value any) Predicate {
	return attrIs{name, value}
}

func (p attrIs) Match(schema *EdgeSchema, s *Slot) bool {
	i := schema.AttrIndex(p.name)
	if i < 0 {
		return false
	}
	return s.Attrs[i] == p.value
}

func (p attrIs) String() string {
	return fmt.Sprintf("%s=%v", p.name, p.value)
}

type allOf []Predicate

// AllOf matches edges matched by every given predicate.
func AllOf(preds ...Predicate) Predicate {
	return allOf(preds)
}

func (p allOf) Match(schema *EdgeSchema, s *Slot) bool {
	for _, sub := range p {
		if !sub.Match(schema, s) {
			return false
		}
	}
	return true
}

func (p allOf) String() string {
	parts := make([]string, len(p))
	for i, sub := range p {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " && ")
}

type anyEdge struct{}

// AnyEdge matches every live edge.
func AnyEdge() Predicate {
	return anyEdge{}
}

func (anyEdge) Match(schema *EdgeSchema, s *Slot) bool { return true }
func (anyEdge) String() string                         { return "*" }

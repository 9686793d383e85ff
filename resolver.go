package edgecol

import (
	"fmt"
	"strings"
)

// EdgeTypeRef selects an edge type for traversal. Scope names a collection
// (a concrete edge type), a view (a logical edge type), or is empty to
// union the edge types of that name across every collection.
type EdgeTypeRef struct {
	Scope string
	Name  string
}

// ParseEdgeTypeRef parses "scope.name" or a bare "name".
func ParseEdgeTypeRef(s string) EdgeTypeRef {
	if scope, name, ok := strings.Cut(s, "."); ok {
		return EdgeTypeRef{scope, name}
	}
	return EdgeTypeRef{Name: s}
}

func (ref EdgeTypeRef) String() string {
	if ref.Scope == "" {
		return "*." + ref.Name
	}
	return ref.Scope + "." + ref.Name
}

// ResolvedEdgeType is the union of concrete edge types behind an
// EdgeTypeRef, with the logical attribute list they are decoded into.
type ResolvedEdgeType struct {
	Ref     EdgeTypeRef
	Attrs   []string
	Sources []*EdgeSource

	byCollection map[string][]*EdgeSource
}

// EdgeSource is one concrete edge type taking part in a resolved edge type.
type EdgeSource struct {
	Collection string
	EdgeType   string
	Schema     *EdgeSchema

	attrs []string
	proj  []int // logical attr -> concrete attr index, -1 if absent
}

// SourcesFor returns the sources whose edges start at vertices of the given
// collection.
func (r *ResolvedEdgeType) SourcesFor(collection string) []*EdgeSource {
	return r.byCollection[collection]
}

func (src *EdgeSource) String() string {
	return src.Collection + "." + src.EdgeType
}

// LogicalAttrs returns the logical attribute names Project produces values
// for.
func (src *EdgeSource) LogicalAttrs() []string {
	return src.attrs
}

// Project maps concrete attribute values (in src.Schema order) onto the
// logical attribute list. Logical attributes the concrete schema does not
// supply are nil.
func (src *EdgeSource) Project(values []any) []any {
	out := make([]any, len(src.proj))
	for i, ci := range src.proj {
		if ci >= 0 && ci < len(values) {
			out[i] = values[ci]
		}
	}
	return out
}

// ResolveEdgeSource resolves ref into the concrete (collection, edge type,
// schema) triples to union. It fails with ErrUnresolvedEdgeType when ref
// matches no concrete edge type.
func (cat *Catalog) ResolveEdgeSource(ref EdgeTypeRef) (*ResolvedEdgeType, error) {
	if ref.Name == "" {
		return nil, fmt.Errorf("%w: empty edge type name", ErrUnresolvedEdgeType)
	}
	r := &ResolvedEdgeType{
		Ref:          ref,
		byCollection: make(map[string][]*EdgeSource),
	}
	switch {
	case ref.Scope == "":
		var schemas []EdgeTypeSource
		for _, coll := range cat.collections {
			if coll.byName[ref.Name] != nil {
				schemas = append(schemas, EdgeTypeSource{coll.Name, ref.Name})
			}
		}
		if err := r.unifyByName(cat, schemas); err != nil {
			return nil, err
		}
	case cat.collectionsByName[ref.Scope] != nil:
		if err := r.unifyByName(cat, []EdgeTypeSource{{ref.Scope, ref.Name}}); err != nil {
			return nil, err
		}
	case cat.viewsByName[ref.Scope] != nil:
		view := cat.viewsByName[ref.Scope]
		if vet := view.edgeType(ref.Name); vet != nil {
			if err := r.mapDeclared(cat, vet); err != nil {
				return nil, err
			}
		} else {
			var schemas []EdgeTypeSource
			for _, name := range view.Collections {
				if cat.collectionsByName[name].byName[ref.Name] != nil {
					schemas = append(schemas, EdgeTypeSource{name, ref.Name})
				}
			}
			if err := r.unifyByName(cat, schemas); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %v: no collection or view named %q", ErrUnresolvedEdgeType, ref, ref.Scope)
	}
	if len(r.Sources) == 0 {
		return nil, fmt.Errorf("%w: %v matches no edge type", ErrUnresolvedEdgeType, ref)
	}
	return r, nil
}

func (r *ResolvedEdgeType) unifyByName(cat *Catalog, sources []EdgeTypeSource) error {
	seen := make(map[string]bool)
	var resolved []*EdgeSource
	for _, s := range sources {
		schema, err := cat.EdgeSchema(s.Collection, s.EdgeType)
		if err != nil {
			return err
		}
		for _, a := range schema.Attrs {
			if !seen[a.Name] {
				seen[a.Name] = true
				r.Attrs = append(r.Attrs, a.Name)
			}
		}
		resolved = append(resolved, &EdgeSource{Collection: s.Collection, EdgeType: s.EdgeType, Schema: schema})
	}
	for _, src := range resolved {
		src.proj = make([]int, len(r.Attrs))
		for i, name := range r.Attrs {
			src.proj[i] = src.Schema.AttrIndex(name)
		}
		r.add(src)
	}
	return nil
}

func (r *ResolvedEdgeType) mapDeclared(cat *Catalog, vet *ViewEdgeType) error {
	if len(vet.Attrs) == 0 {
		return r.unifyByName(cat, vet.Sources)
	}
	for _, va := range vet.Attrs {
		r.Attrs = append(r.Attrs, va.Name)
	}
	for _, s := range vet.Sources {
		schema, err := cat.EdgeSchema(s.Collection, s.EdgeType)
		if err != nil {
			return fmt.Errorf("%v: %w", r.Ref, err)
		}
		src := &EdgeSource{Collection: s.Collection, EdgeType: s.EdgeType, Schema: schema}
		src.proj = make([]int, len(vet.Attrs))
		for i, va := range vet.Attrs {
			src.proj[i] = -1
			for _, as := range va.Sources {
				if as.Collection == s.Collection {
					src.proj[i] = schema.AttrIndex(as.Attr)
					break
				}
			}
		}
		r.add(src)
	}
	return nil
}

func (r *ResolvedEdgeType) add(src *EdgeSource) {
	src.attrs = r.Attrs
	r.Sources = append(r.Sources, src)
	r.byCollection[src.Collection] = append(r.byCollection[src.Collection], src)
}

// ResolveEdgeSource is Catalog.ResolveEdgeSource.
func ResolveEdgeSource(cat *Catalog, ref EdgeTypeRef) (*ResolvedEdgeType, error) {
	return cat.ResolveEdgeSource(ref)
}

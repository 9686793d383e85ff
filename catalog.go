package edgecol

import (
	"fmt"
	"slices"
)

// Catalog holds the metadata edge traversal needs: collections with their
// declared edge types, and views that union several collections.
type Catalog struct {
	collections       []*Collection
	collectionsByName map[string]*Collection
	views             []*View
	viewsByName       map[string]*View
}

// Collection is an underlying record collection and the edge types
// declared for its records.
type Collection struct {
	Name      string
	edgeTypes []*EdgeSchema
	byName    map[string]*EdgeSchema
}

// View presents several collections as one logical vertex type.
//
// EdgeTypes optionally declares logical edge types. A view edge type that
// is not declared still resolves, by unioning the member collections' edge
// types of the same name and unifying their attributes by name.
type View struct {
	Name        string
	Collections []string
	EdgeTypes   []ViewEdgeType
}

type ViewEdgeType struct {
	Name    string
	Sources []EdgeTypeSource

	// Attrs maps logical attributes onto concrete ones. When empty,
	// attributes are unified by name.
	Attrs []ViewAttr
}

type EdgeTypeSource struct {
	Collection string
	EdgeType   string
}

type ViewAttr struct {
	Name    string
	Sources []AttrSource
}

type AttrSource struct {
	Collection string
	Attr       string
}

func NewCatalog() *Catalog {
	return &Catalog{
		collectionsByName: make(map[string]*Collection),
		viewsByName:       make(map[string]*View),
	}
}

func (cat *Catalog) AddCollection(name string, edgeTypes ...*EdgeSchema) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is empty")
	}
	if cat.collectionsByName[name] != nil || cat.viewsByName[name] != nil {
		return nil, fmt.Errorf("catalog already has a collection or view named %q", name)
	}
	coll := &Collection{
		Name:   name,
		byName: make(map[string]*EdgeSchema, len(edgeTypes)),
	}
	for _, schema := range edgeTypes {
		if coll.byName[schema.Name] != nil {
			return nil, fmt.Errorf("collection %s already has edge type %q", name, schema.Name)
		}
		coll.byName[schema.Name] = schema
		coll.edgeTypes = append(coll.edgeTypes, schema)
	}
	cat.collections = append(cat.collections, coll)
	cat.collectionsByName[name] = coll
	return coll, nil
}

func (cat *Catalog) MustAddCollection(name string, edgeTypes ...*EdgeSchema) *Collection {
	return must(cat.AddCollection(name, edgeTypes...))
}

func (cat *Catalog) AddView(view View) error {
	if view.Name == "" {
		return fmt.Errorf("view name is empty")
	}
	if cat.collectionsByName[view.Name] != nil || cat.viewsByName[view.Name] != nil {
		return fmt.Errorf("catalog already has a collection or view named %q", view.Name)
	}
	if len(view.Collections) == 0 {
		return fmt.Errorf("view %s has no collections", view.Name)
	}
	for _, name := range view.Collections {
		if cat.collectionsByName[name] == nil {
			return fmt.Errorf("view %s: unknown collection %q", view.Name, name)
		}
	}
	seen := make(map[string]bool)
	for _, vet := range view.EdgeTypes {
		if seen[vet.Name] {
			return fmt.Errorf("view %s: duplicate edge type %q", view.Name, vet.Name)
		}
		seen[vet.Name] = true
		for _, src := range vet.Sources {
			if !slices.Contains(view.Collections, src.Collection) {
				return fmt.Errorf("view %s.%s: collection %q is not part of the view", view.Name, vet.Name, src.Collection)
			}
			if _, err := cat.EdgeSchema(src.Collection, src.EdgeType); err != nil {
				return fmt.Errorf("view %s.%s: %w", view.Name, vet.Name, err)
			}
		}
		for _, va := range vet.Attrs {
			for _, as := range va.Sources {
				supplied := false
				for _, src := range vet.Sources {
					if src.Collection != as.Collection {
						continue
					}
					supplied = true
					schema := must(cat.EdgeSchema(src.Collection, src.EdgeType))
					if schema.AttrIndex(as.Attr) < 0 {
						return fmt.Errorf("view %s.%s.%s: %s.%s has no attribute %q", view.Name, vet.Name, va.Name, src.Collection, src.EdgeType, as.Attr)
					}
				}
				if !supplied {
					return fmt.Errorf("view %s.%s.%s: collection %q supplies no edge type", view.Name, vet.Name, va.Name, as.Collection)
				}
			}
		}
	}
	v := view
	cat.views = append(cat.views, &v)
	cat.viewsByName[view.Name] = &v
	return nil
}

func (cat *Catalog) Collections() []*Collection {
	return slices.Clone(cat.collections)
}

func (cat *Catalog) Collection(name string) *Collection {
	return cat.collectionsByName[name]
}

func (cat *Catalog) Views() []*View {
	return slices.Clone(cat.views)
}

func (cat *Catalog) View(name string) *View {
	return cat.viewsByName[name]
}

// EdgeSchema looks up the schema of a concrete edge type.
func (cat *Catalog) EdgeSchema(collection, edgeType string) (*EdgeSchema, error) {
	coll := cat.collectionsByName[collection]
	if coll == nil {
		return nil, fmt.Errorf("%w: unknown collection %q", ErrUnresolvedEdgeType, collection)
	}
	schema := coll.byName[edgeType]
	if schema == nil {
		return nil, fmt.Errorf("%w: collection %s has no edge type %q", ErrUnresolvedEdgeType, collection, edgeType)
	}
	return schema, nil
}

func (coll *Collection) EdgeTypes() []*EdgeSchema {
	return slices.Clone(coll.edgeTypes)
}

func (coll *Collection) EdgeType(name string) *EdgeSchema {
	return coll.byName[name]
}

func (view *View) edgeType(name string) *ViewEdgeType {
	for i := range view.EdgeTypes {
		if view.EdgeTypes[i].Name == name {
			return &view.EdgeTypes[i]
		}
	}
	return nil
}

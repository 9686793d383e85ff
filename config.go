package edgecol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog file format:
//
//	collections:
//	  - name: person
//	    edges:
//	      - name: knows
//	        attrs:
//	          - {name: year, type: int32}
//	          - {name: month, type: string, size: 8}
//	views:
//	  - name: party
//	    collections: [person, org]
//	    edges:
//	      - name: rel
//	        sources: [person.knows, org.partner]
//	        attrs:
//	          - {name: since, from: [person.year, org.since]}
type catalogConfig struct {
	Collections []collectionConfig `yaml:"collections"`
	Views       []viewConfig       `yaml:"views"`
}

type collectionConfig struct {
	Name  string           `yaml:"name"`
	Edges []edgeTypeConfig `yaml:"edges"`
}

type edgeTypeConfig struct {
	Name  string       `yaml:"name"`
	Attrs []attrConfig `yaml:"attrs"`
}

type attrConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Size int    `yaml:"size,omitempty"`
}

type viewConfig struct {
	Name        string           `yaml:"name"`
	Collections []string         `yaml:"collections"`
	Edges       []viewEdgeConfig `yaml:"edges"`
}

type viewEdgeConfig struct {
	Name    string           `yaml:"name"`
	Sources []string         `yaml:"sources"`
	Attrs   []viewAttrConfig `yaml:"attrs"`
}

type viewAttrConfig struct {
	Name string   `yaml:"name"`
	From []string `yaml:"from"`
}

func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCatalogYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var cfg catalogConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cfg.build()
}

func (cfg *catalogConfig) build() (*Catalog, error) {
	cat := NewCatalog()
	for _, cc := range cfg.Collections {
		var schemas []*EdgeSchema
		for _, ec := range cc.Edges {
			attrs := make([]Attr, len(ec.Attrs))
			for i, ac := range ec.Attrs {
				typ, err := ParseAttrType(ac.Type)
				if err != nil {
					return nil, fmt.Errorf("catalog: %s.%s.%s: %w", cc.Name, ec.Name, ac.Name, err)
				}
				attrs[i] = Attr{Name: ac.Name, Type: typ, Size: ac.Size}
			}
			schema, err := NewEdgeSchema(ec.Name, attrs...)
			if err != nil {
				return nil, fmt.Errorf("catalog: %s: %w", cc.Name, err)
			}
			schemas = append(schemas, schema)
		}
		if _, err := cat.AddCollection(cc.Name, schemas...); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	for _, vc := range cfg.Views {
		view := View{Name: vc.Name, Collections: vc.Collections}
		for _, ve := range vc.Edges {
			vet := ViewEdgeType{Name: ve.Name}
			for _, s := range ve.Sources {
				coll, et, ok := strings.Cut(s, ".")
				if !ok {
					return nil, fmt.Errorf("catalog: view %s.%s: source %q is not collection.edge", vc.Name, ve.Name, s)
				}
				vet.Sources = append(vet.Sources, EdgeTypeSource{coll, et})
			}
			for _, va := range ve.Attrs {
				attr := ViewAttr{Name: va.Name}
				for _, f := range va.From {
					coll, name, ok := strings.Cut(f, ".")
					if !ok {
						return nil, fmt.Errorf("catalog: view %s.%s.%s: %q is not collection.attr", vc.Name, ve.Name, va.Name, f)
					}
					attr.Sources = append(attr.Sources, AttrSource{coll, name})
				}
				vet.Attrs = append(vet.Attrs, attr)
			}
			view.EdgeTypes = append(view.EdgeTypes, vet)
		}
		if err := cat.AddView(view); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return cat, nil
}

package edgecol

import (
	"fmt"
	"strconv"
	"strings"
)

type NamedValue struct {
	Name  string
	Value any
}

// HopMessage is the rendered form of one hop. SourceType and TargetType
// are collection names; a path through a view may cross collections.
type HopMessage struct {
	SourceType string
	SourceID   VertexID
	EdgeType   string
	Attrs      []NamedValue
	TargetType string
	TargetID   VertexID
}

type PathMessage struct {
	StartType string
	StartID   VertexID
	Hops      []HopMessage
}

// DecodePathMessage renders a raw path into attribute-labeled hops, using
// the logical attribute names of each hop's edge source.
func DecodePathMessage(p RawPath) (PathMessage, error) {
	msg := PathMessage{
		StartType: p.StartCollection,
		StartID:   p.Start,
		Hops:      make([]HopMessage, 0, len(p.Hops)),
	}
	for i := range p.Hops {
		hop := &p.Hops[i]
		if hop.Source == nil || hop.Source.Schema == nil {
			return PathMessage{}, fmt.Errorf("%w: hop %d of path from %d has no edge source", ErrUnresolvedEdgeType, i, p.Start)
		}
		names := hop.Source.LogicalAttrs()
		values := hop.Source.Project(hop.Attrs)
		attrs := make([]NamedValue, len(names))
		for j, name := range names {
			attrs[j] = NamedValue{name, values[j]}
		}
		msg.Hops = append(msg.Hops, HopMessage{
			SourceType: hop.FromCollection,
			SourceID:   hop.From,
			EdgeType:   hop.Source.EdgeType,
			Attrs:      attrs,
			TargetType: hop.ToCollection,
			TargetID:   hop.To,
		})
	}
	return msg, nil
}

// Attr returns the value of the named attribute and whether the hop has
// such an attribute at all.
func (hm *HopMessage) Attr(name string) (any, bool) {
	for _, nv := range hm.Attrs {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return nil, false
}

// String renders the path as "person:0 -knows{year=2010}-> person:1".
func (msg PathMessage) String() string {
	var buf strings.Builder
	writeVertex(&buf, msg.StartType, msg.StartID)
	for _, hm := range msg.Hops {
		buf.WriteString(" -")
		buf.WriteString(hm.EdgeType)
		buf.WriteByte('{')
		for i, nv := range hm.Attrs {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(nv.Name)
			buf.WriteByte('=')
			if nv.Value == nil {
				buf.WriteString("null")
			} else {
				fmt.Fprint(&buf, nv.Value)
			}
		}
		buf.WriteString("}-> ")
		writeVertex(&buf, hm.TargetType, hm.TargetID)
	}
	return buf.String()
}

func writeVertex(buf *strings.Builder, typ string, id VertexID) {
	if typ == "" {
		typ = "?"
	}
	buf.WriteString(typ)
	buf.WriteByte(':')
	buf.WriteString(strconv.FormatUint(uint64(id), 10))
}

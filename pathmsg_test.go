package edgecol

import (
	"errors"
	"testing"
)

func TestDecodePathMessage(t *testing.T) {
	g := scenarioGraph(t)
	ps := must(BFSPaths(g, knowsRef(t, g.cat), PathQuery{Start: 0, Lo: 2, Hi: 2}))
	deepEqual(t, ps.Len(), 2)

	msg := must(DecodePathMessage(ps.Paths[0]))
	deepEqual(t, msg.StartType, "person")
	deepEqual(t, msg.StartID, VertexID(0))
	deepEqual(t, len(msg.Hops), 2)

	hop := msg.Hops[1]
	deepEqual(t, hop.SourceType, "person")
	deepEqual(t, hop.SourceID, VertexID(1))
	deepEqual(t, hop.EdgeType, "knows")
	deepEqual(t, hop.TargetID, VertexID(2))
	deepEqual(t, hop.Attrs, []NamedValue{
		{"year", int32(2001)},
		{"month", "may"},
		{"time", float64(1)},
		{"together", false},
	})
	v, ok := hop.Attr("year")
	if !ok || v != int32(2001) {
		t.Fatalf("Attr(year) = (%v, %v)", v, ok)
	}
	if _, ok := hop.Attr("nope"); ok {
		t.Fatalf("Attr(nope) found")
	}

	deepEqual(t, msg.String(), "person:0 -knows{year=2000, month=may, time=0, together=true}-> person:1 -knows{year=2001, month=may, time=1, together=false}-> person:2")
}

func TestDecodePathMessage_ViewNulls(t *testing.T) {
	cat := unionCatalog(t)
	g := newMemGraph(cat)
	g.addVertices("left", 1)
	g.addVertices("right", 10)
	g.addEdge(t, 10, "rel", 1, int32(7), true)

	et := must(cat.ResolveEdgeSource(EdgeTypeRef{"both", "rel"}))
	ps := must(BFSPaths(g, et, PathQuery{Start: 10, Lo: 1, Hi: 1}))
	msg := must(DecodePathMessage(ps.Paths[0]))
	hop := msg.Hops[0]
	b, ok := hop.Attr("b")
	if !ok || b != nil {
		t.Fatalf("Attr(b) = (%v, %v), wanted (nil, true)", b, ok)
	}
	deepEqual(t, msg.String(), "right:10 -rel{a=7, b=null, c=true}-> left:1")
}

func TestDecodePathMessage_Errors(t *testing.T) {
	p := RawPath{Start: 1, StartCollection: "person", Hops: []Hop{{From: 1, To: 2}}}
	if _, err := DecodePathMessage(p); !errors.Is(err, ErrUnresolvedEdgeType) {
		t.Fatalf("err = %v, wanted ErrUnresolvedEdgeType", err)
	}

	msg := must(DecodePathMessage(RawPath{Start: 3}))
	deepEqual(t, msg.String(), "?:3")
}

package edgecol

import "encoding/binary"

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func nonNil[T any](v *T) *T {
	if v == nil {
		panic("nil")
	}
	return v
}

// vertexKey is the record key of a vertex: its id as 8 big-endian bytes,
// so that keys sort by id.
func vertexKey(id VertexID) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

func decodeVertexKey(k []byte) (VertexID, bool) {
	if len(k) != 8 {
		return 0, false
	}
	return VertexID(binary.BigEndian.Uint64(k)), true
}

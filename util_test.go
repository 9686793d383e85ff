package edgecol

import "testing"

func TestVertexKey(t *testing.T) {
	k := vertexKey(0x0102030405060708)
	deepEqual(t, k, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	id, ok := decodeVertexKey(k)
	if !ok || id != 0x0102030405060708 {
		t.Fatalf("decodeVertexKey = (%x, %v), wanted (0102030405060708, true)", id, ok)
	}
	if _, ok := decodeVertexKey([]byte{1, 2, 3}); ok {
		t.Fatalf("decodeVertexKey accepted a short key")
	}
}

func TestNonNil(t *testing.T) {
	v := 5
	if nonNil(&v) != &v {
		t.Fatalf("nonNil changed the pointer")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("nonNil(nil) did not panic")
		}
	}()
	nonNil[int](nil)
}

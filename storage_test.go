package edgecol

import (
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"
)

func storageBackends(t *testing.T) map[string]storage {
	bdb, err := bbolt.Open(filepath.Join(t.TempDir(), "storage.db"), 0666, &bbolt.Options{NoSync: true})
	if err != nil {
		t.Fatal(err)
	}
	return map[string]storage{
		"bolt": newBoltStorage(bdb),
		"mem":  newMemStorage(),
	}
}

func TestStorage_BucketsAndCursors(t *testing.T) {
	for name, st := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			tx := must(st.BeginTx(true))
			if tx.Bucket("root", "") != nil {
				t.Fatalf("Bucket before CreateBucket != nil")
			}
			b := must(tx.CreateBucket("root", "sub"))
			if tx.Bucket("root", "") == nil {
				t.Fatalf("CreateBucket did not create the root bucket")
			}
			ensure(b.Put([]byte("b"), []byte("2")))
			ensure(b.Put([]byte("a"), []byte("1")))
			ensure(b.Put([]byte("c"), []byte("3")))
			ensure(tx.Commit())

			tx = must(st.BeginTx(false))
			defer tx.Rollback()
			b = tx.Bucket("root", "sub")
			deepEqual(t, b.KeyCount(), 3)
			deepEqual(t, string(b.Get([]byte("a"))), "1")
			if b.Get([]byte("zz")) != nil {
				t.Fatalf("Get(zz) != nil")
			}

			var keys []string
			c := b.Cursor()
			for k, _ := c.Next(); k != nil; k, _ = c.Next() {
				keys = append(keys, string(k))
			}
			deepEqual(t, keys, []string{"a", "b", "c"})

			k, v := b.Cursor().Seek([]byte("bb"))
			deepEqual(t, string(k), "c")
			deepEqual(t, string(v), "3")
			if k, _ := b.Cursor().Seek([]byte("d")); k != nil {
				t.Fatalf("Seek(d) = %q, wanted nil", k)
			}
		})
	}
}

func TestStorage_RollbackAndSnapshots(t *testing.T) {
	for name, st := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			tx := must(st.BeginTx(true))
			ensure(must(tx.CreateBucket("b", "")).Put([]byte("k"), []byte("v1")))
			ensure(tx.Commit())

			tx = must(st.BeginTx(true))
			ensure(tx.Bucket("b", "").Put([]byte("k"), []byte("v2")))
			ensure(tx.Bucket("b", "").Delete([]byte("missing")))
			ensure(tx.Rollback())
			ensure(tx.Rollback())

			reader := must(st.BeginTx(false))
			defer reader.Rollback()
			deepEqual(t, string(reader.Bucket("b", "").Get([]byte("k"))), "v1")

			if name == "mem" {
				// Writers do not disturb an open reader's snapshot.
				tx = must(st.BeginTx(true))
				ensure(tx.Bucket("b", "").Put([]byte("k"), []byte("v3")))
				ensure(tx.Commit())
				deepEqual(t, string(reader.Bucket("b", "").Get([]byte("k"))), "v1")
			}
		})
	}
}

func TestMemStorage_ReadOnlyTx(t *testing.T) {
	st := newMemStorage()
	defer st.Close()
	tx := must(st.BeginTx(true))
	must(tx.CreateBucket("b", ""))
	ensure(tx.Commit())

	tx = must(st.BeginTx(false))
	defer tx.Rollback()
	if err := tx.Bucket("b", "").Put([]byte("k"), []byte("v")); err == nil {
		t.Fatalf("Put in read-only tx succeeded")
	}
	if _, err := tx.CreateBucket("c", ""); err == nil {
		t.Fatalf("CreateBucket in read-only tx succeeded")
	}
	if err := tx.Commit(); err == nil {
		t.Fatalf("Commit of read-only tx succeeded")
	}
}

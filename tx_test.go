package edgecol

import (
	"errors"
	"strings"
	"testing"
)

func TestTx_MemoCachesValueAndError(t *testing.T) {
	db := setupMemory(t, personCatalog())

	db.Read(func(tx *Tx) {
		calls := 0
		v, err := tx.Memo("k", func() (any, error) {
			calls++
			return 42, nil
		})
		if err != nil || v.(int) != 42 || calls != 1 {
			t.Fatalf("Memo #1 = (%v, %v), calls=%d; wanted (42, nil), calls=1", v, err, calls)
		}
		v, err = tx.Memo("k", func() (any, error) {
			calls++
			return 777, nil
		})
		if err != nil || v.(int) != 42 || calls != 1 {
			t.Fatalf("Memo #2 = (%v, %v), calls=%d; wanted (42, nil), calls=1", v, err, calls)
		}

		wantErr := errors.New("boom")
		n, err := Memo(tx, "e", func() (int, error) {
			return 0, wantErr
		})
		if err != wantErr || n != 0 {
			t.Fatalf("Memo[int] err = (%v, %v), wanted (0, boom)", n, err)
		}
		if _, found := tx.GetMemo("e"); !found {
			t.Fatalf("GetMemo(e) not found")
		}
	})

	db.Read(func(tx *Tx) {
		a := must(tx.ResolveEdgeType(EdgeTypeRef{"person", "knows"}))
		b := must(tx.ResolveEdgeType(EdgeTypeRef{"person", "knows"}))
		if a != b {
			t.Fatalf("ResolveEdgeType is not memoized")
		}
	})
}

func TestTx_BeginUpdateRollsBackOnClose(t *testing.T) {
	forEachBackend(t, personCatalog, func(t *testing.T, db *DB) {
		tx := db.BeginUpdate()
		must(tx.CreateVertex("person", nil))
		tx.Close()
		tx.Close()

		db.Read(func(tx *Tx) {
			isnil(t, must(tx.Vertex(0)))
		})
		deepEqual(t, db.WriterCount.Load(), int64(0))
		deepEqual(t, db.ReaderCount.Load(), int64(0))
	})
}

func TestDBTx_ErrorRollsBack(t *testing.T) {
	forEachBackend(t, personCatalog, func(t *testing.T, db *DB) {
		err := db.Tx(true, func(tx *Tx) error {
			must(tx.CreateVertex("person", nil))
			return errors.New("boom")
		})
		if err == nil || err.Error() != "boom" {
			t.Fatalf("db.Tx err = %v, wanted boom", err)
		}

		ensure(db.Tx(true, func(tx *Tx) error {
			_, err := tx.CreateVertex("person", nil)
			return err
		}))
		ensure(db.ReadErr(func(tx *Tx) error {
			// The failed transaction did not consume an id.
			v, err := tx.Vertex(0)
			if v == nil {
				t.Errorf("vertex 0 missing")
			}
			return err
		}))
	})
}

func TestDBTx_PanicBecomesError(t *testing.T) {
	db := setupMemory(t, personCatalog())

	err := db.Tx(true, func(tx *Tx) error {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "panic: boom") {
		t.Fatalf("db.Tx err = %v, wanted it to include %q", err, "panic: boom")
	}

	err = db.Tx(false, func(tx *Tx) error {
		_, err := tx.CreateVertex("person", nil)
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("mutation in read tx: err = %v", err)
	}

	err = db.Tx(true, func(tx *Tx) error {
		panic(ErrConflict)
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("panicked error does not unwrap: %v", err)
	}
}

func TestDB_Counters(t *testing.T) {
	db := setup(t, personCatalog())
	reads, writes := db.ReadCount.Load(), db.WriteCount.Load()
	db.Read(func(tx *Tx) {
		deepEqual(t, db.ReaderCount.Load(), int64(1))
		if tx.IsWritable() {
			t.Fatalf("read tx is writable")
		}
	})
	db.Write(func(tx *Tx) {
		must(tx.CreateVertex("person", nil))
	})
	deepEqual(t, db.ReadCount.Load(), reads+1)
	deepEqual(t, db.WriteCount.Load(), writes+1)
	if db.Size() <= 0 {
		t.Fatalf("Size() = %d after a write", db.Size())
	}
	if db.Catalog().Collection("person") == nil {
		t.Fatalf("Catalog() lost the person collection")
	}
}

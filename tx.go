package edgecol

import (
	"fmt"
	"runtime/debug"
)

type Tx struct {
	db       *DB
	stx      storageTx
	managed  bool
	writable bool
	closed   bool

	written bool

	memo map[string]any

	valueBufs [][]byte

	changeHandler func(chg *Change)
}

func (db *DB) newTx(stx storageTx, managed bool) *Tx {
	tx := &Tx{
		db:       db,
		stx:      stx,
		managed:  managed,
		writable: stx.Writable(),
	}
	if tx.writable {
		db.WriterCount.Add(1)
		db.WriteCount.Add(1)
	} else {
		db.ReaderCount.Add(1)
		db.ReadCount.Add(1)
	}
	return tx
}

func (tx *Tx) DB() *DB {
	return tx.db
}

func (tx *Tx) Catalog() *Catalog {
	return tx.db.cat
}

// OnChange registers a handler called after every mutation made through
// this transaction. The handler runs before commit.
func (tx *Tx) OnChange(f func(chg *Change)) {
	tx.changeHandler = f
}

func (tx *Tx) notify(chg *Change) {
	if tx.changeHandler != nil {
		tx.changeHandler(chg)
	}
}

// Tx runs f in a transaction. A writable transaction is committed if f
// returns nil; otherwise it is rolled back and f's error is returned.
// Panics inside f are returned as errors.
func (db *DB) Tx(writable bool, f func(tx *Tx) error) error {
	stx, err := db.st.BeginTx(writable)
	if err != nil {
		return err
	}
	tx := db.newTx(stx, true)
	defer tx.Close()

	err = safelyCall(f, tx)
	if err != nil || !writable {
		return err
	}
	return tx.commit()
}

type panicked struct {
	reason any
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func (p panicked) Unwrap() error {
	err, _ := p.reason.(error)
	return err
}

func safelyCall(fn func(*Tx) error, tx *Tx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn(tx)
}

func (db *DB) BeginRead() *Tx {
	stx, err := db.st.BeginTx(false)
	if err != nil {
		panic(fmt.Errorf("failed to start reading: %w", err))
	}
	return db.newTx(stx, false)
}

func (db *DB) Read(f func(tx *Tx)) {
	tx := db.BeginRead()
	defer tx.Close()
	f(tx)
}

func (db *DB) ReadErr(f func(tx *Tx) error) error {
	tx := db.BeginRead()
	defer tx.Close()
	return f(tx)
}

func (db *DB) Write(f func(tx *Tx)) {
	tx := db.BeginUpdate()
	defer tx.Close()
	f(tx)
	err := tx.Commit()
	if err != nil {
		panic(fmt.Errorf("commit: %w", err))
	}
}

func (db *DB) BeginUpdate() *Tx {
	stx, err := db.st.BeginTx(true)
	if err != nil {
		panic(fmt.Errorf("db.BeginTx(true) failed: %w", err))
	}
	return db.newTx(stx, false)
}

func (tx *Tx) IsWritable() bool {
	return tx.writable
}

func (tx *Tx) markWritten() {
	tx.written = true
}

func (tx *Tx) requireWritable() {
	if !tx.writable {
		panic("edgecol: mutation in a read-only transaction")
	}
}

// addValueBuf keeps buf alive until the transaction ends; Bolt requires
// values passed to Put to stay unmodified until commit.
func (tx *Tx) addValueBuf(buf []byte) {
	if tx.valueBufs == nil {
		tx.valueBufs = arrayOfBytesPool.Get().([][]byte)
	}
	tx.valueBufs = append(tx.valueBufs, buf)
}

func (tx *Tx) valueBuf() []byte {
	return valueBytesPool.Get().([]byte)[:0]
}

func (tx *Tx) Commit() error {
	if tx.managed {
		panic("edgecol: Commit called on a managed transaction")
	}
	return tx.commit()
}

func (tx *Tx) commit() error {
	if tx.closed {
		return fmt.Errorf("edgecol: transaction already closed")
	}
	err := tx.stx.Commit()
	if err == nil {
		tx.db.lastSize.Store(tx.stx.Size())
	}
	tx.finish()
	return err
}

// Close rolls back the transaction unless it has been committed. It is
// safe to call more than once.
func (tx *Tx) Close() {
	if tx.closed {
		return
	}
	err := tx.stx.Rollback()
	if err != nil {
		panic(err)
	}
	tx.finish()
}

func (tx *Tx) finish() {
	tx.closed = true
	if tx.writable {
		tx.db.WriterCount.Add(-1)
	} else {
		tx.db.ReaderCount.Add(-1)
	}
	tx.release()
}

func (tx *Tx) release() {
	if tx.valueBufs != nil {
		for i, buf := range tx.valueBufs {
			if cap(buf) <= 64*1024 {
				valueBytesPool.Put(buf[:0])
			}
			tx.valueBufs[i] = nil
		}
		arrayOfBytesPool.Put(tx.valueBufs[:0])
		tx.valueBufs = nil
	}
}

func (tx *Tx) GetMemo(key string) (any, bool) {
	v, found := tx.memo[key]
	return v, found
}

func (tx *Tx) Memo(key string, f func() (any, error)) (any, error) {
	v, found := tx.memo[key]
	if found {
		if e, ok := v.(error); ok {
			return nil, e
		}
		return v, nil
	}

	if tx.memo == nil {
		tx.memo = make(map[string]any)
	}

	v, err := f()
	if err != nil {
		tx.memo[key] = err
	} else {
		tx.memo[key] = v
	}
	return v, err
}

// Memo is the typed form of Tx.Memo.
func Memo[T any](tx *Tx, key string, f func() (T, error)) (T, error) {
	v, err := tx.Memo(key, func() (any, error) {
		return f()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (tx *Tx) metaBucket() storageBucket {
	return nonNilBucket(tx.stx.Bucket(metaBucket, ""), metaBucket)
}

func (tx *Tx) verticesBucket() storageBucket {
	return nonNilBucket(tx.stx.Bucket(verticesBucket, ""), verticesBucket)
}

func (tx *Tx) rowsBucket(coll string) storageBucket {
	return nonNilBucket(tx.stx.Bucket(collectionBucketName(coll), rowsBucket), coll)
}

func (tx *Tx) edgeBuckets(coll, edgeType string) (blocks, tombstones storageBucket) {
	name := collectionBucketName(coll)
	blocks = nonNilBucket(tx.stx.Bucket(name, edgeBucketName(edgeType)), coll+"."+edgeType)
	tombstones = nonNilBucket(tx.stx.Bucket(name, tombstoneBucketName(edgeType)), coll+"."+edgeType)
	return
}

func nonNilBucket(b storageBucket, name string) storageBucket {
	if b == nil {
		panic(fmt.Errorf("edgecol: missing bucket for %s", name))
	}
	return b
}

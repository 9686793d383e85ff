package edgecol

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tidwall/btree"
)

const memBucketSep = "\x00"

// memStorage is a transient in-memory storage. Each bucket is a btree.Map;
// transactions work on O(1) copy-on-write copies of the maps, so readers
// see a snapshot and a rolled back writer leaves no trace.
type memStorage struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buckets map[string]*btree.Map[string, []byte]
	closed  bool
	writer  bool
}

func newMemStorage() storage {
	s := &memStorage{buckets: make(map[string]*btree.Map[string, []byte])}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("storage closed")
	}
	if writable {
		for s.writer && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			return nil, fmt.Errorf("storage closed")
		}
		s.writer = true
	}

	snap := make(map[string]*btree.Map[string, []byte], len(s.buckets))
	for k, b := range s.buckets {
		snap[k] = b.Copy()
	}

	return &memTx{
		writable: writable,
		base:     s,
		buckets:  snap,
	}, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buckets = nil
	if s.cond != nil {
		s.cond.Broadcast()
	}
	return nil
}

type memTx struct {
	base     *memStorage
	writable bool
	buckets  map[string]*btree.Map[string, []byte]
	closed   bool
}

func (tx *memTx) Writable() bool { return tx.writable }

func (tx *memTx) closeLocked() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.writable {
		tx.base.writer = false
		tx.base.cond.Broadcast()
	}
}

func (tx *memTx) Bucket(name, sub string) storageBucket {
	if tx.closed {
		panic("tx is closed")
	}
	m := tx.buckets[memBucketKey(name, sub)]
	if m == nil {
		return nil
	}
	return memBucket{tx: tx, m: m}
}

func (tx *memTx) CreateBucket(name, sub string) (storageBucket, error) {
	if tx.closed {
		panic("tx is closed")
	}
	if !tx.writable {
		return nil, fmt.Errorf("tx not writable")
	}

	// Ensure the root exists for nested buckets (Bolt compatibility).
	rootKey := memBucketKey(name, "")
	if tx.buckets[rootKey] == nil {
		tx.buckets[rootKey] = new(btree.Map[string, []byte])
	}

	key := memBucketKey(name, sub)
	m := tx.buckets[key]
	if m == nil {
		m = new(btree.Map[string, []byte])
		tx.buckets[key] = m
	}
	return memBucket{tx: tx, m: m}, nil
}

func (tx *memTx) Commit() error {
	if tx.closed {
		return nil
	}
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	if tx.base.closed {
		tx.closeLocked()
		return fmt.Errorf("storage closed")
	}
	tx.base.buckets = tx.buckets
	tx.closeLocked()
	return nil
}

func (tx *memTx) Rollback() error {
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	tx.closeLocked()
	return nil
}

func (tx *memTx) Size() int64 { return 0 }

func memBucketKey(name, sub string) string {
	return name + memBucketSep + sub
}

type memBucket struct {
	tx *memTx
	m  *btree.Map[string, []byte]
}

func (b memBucket) Get(key []byte) []byte {
	v, ok := b.m.Get(string(key))
	if !ok {
		return nil
	}
	return v
}

func (b memBucket) Put(key, value []byte) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	v := slices.Clone(value)
	if v == nil {
		v = []byte{}
	}
	b.m.Set(string(key), v)
	return nil
}

func (b memBucket) Delete(key []byte) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	b.m.Delete(string(key))
	return nil
}

func (b memBucket) Cursor() storageCursor {
	return &memCursor{iter: b.m.Iter()}
}

func (b memBucket) KeyCount() int { return b.m.Len() }

type memCursor struct {
	iter    btree.MapIter[string, []byte]
	started bool
}

func (c *memCursor) current(ok bool) ([]byte, []byte) {
	if !ok {
		return nil, nil
	}
	return []byte(c.iter.Key()), c.iter.Value()
}

func (c *memCursor) First() ([]byte, []byte) {
	c.started = true
	return c.current(c.iter.First())
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte) {
	c.started = true
	return c.current(c.iter.Seek(string(seek)))
}

func (c *memCursor) Next() ([]byte, []byte) {
	if !c.started {
		return c.First()
	}
	return c.current(c.iter.Next())
}

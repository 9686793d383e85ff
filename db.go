package edgecol

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"
)

// DB is a record store whose vertices carry columnar edge blocks.
type DB struct {
	st      storage
	cat     *Catalog
	logf    func(format string, args ...any)
	verbose bool
	strict  bool

	lastSize    atomic.Int64
	ReaderCount atomic.Int64
	WriterCount atomic.Int64
	ReadCount   atomic.Uint64
	WriteCount  atomic.Uint64
}

type Options struct {
	Logf      func(format string, args ...any)
	Verbose   bool
	IsTesting bool
	MmapSize  int
}

const (
	metaBucket     = "_meta"
	verticesBucket = "_vertices"
	rowsBucket     = "rows"
)

func collectionBucketName(coll string) string {
	return "c." + coll
}

func edgeBucketName(edgeType string) string {
	return "e." + edgeType
}

func tombstoneBucketName(edgeType string) string {
	return "t." + edgeType
}

// Open opens or creates a Bolt-backed store at path.
func Open(path string, cat *Catalog, opt Options) (*DB, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("edgecol: %w", err)
	}
	db, err := open(newBoltStorage(bdb), cat, opt)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory creates a transient store that lives in memory.
func OpenMemory(cat *Catalog, opt Options) (*DB, error) {
	return open(newMemStorage(), cat, opt)
}

func open(st storage, cat *Catalog, opt Options) (*DB, error) {
	logf := opt.Logf
	if logf == nil {
		logf = func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		}
	}
	db := &DB{
		st:      st,
		cat:     nonNil(cat),
		logf:    logf,
		verbose: opt.Verbose,
		strict:  opt.IsTesting,
	}

	err := db.Tx(true, func(tx *Tx) error {
		if _, err := tx.stx.CreateBucket(metaBucket, ""); err != nil {
			return err
		}
		if _, err := tx.stx.CreateBucket(verticesBucket, ""); err != nil {
			return err
		}
		tx.markWritten()
		return prepareCatalog(tx, cat, time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("edgecol: %w", err)
	}
	return db, nil
}

func (db *DB) Catalog() *Catalog {
	return db.cat
}

// Size returns the size of the data file as of the last finished
// transaction. It is always zero for in-memory stores.
func (db *DB) Size() int64 {
	return db.lastSize.Load()
}

func (db *DB) Close() {
	err := db.st.Close()
	if err != nil {
		panic(fmt.Errorf("edgecol: closing: %w", err))
	}
}

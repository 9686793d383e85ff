package edgecol

import (
	"fmt"
	"time"
)

// catalogState is what a store remembers about the catalog it was opened
// with. Edge blocks outlive the process that wrote them, so the schema of
// an edge type that already has a state entry may never change.
type catalogState struct {
	Collections map[string]*collectionState `msgpack:"c"`
}

type collectionState struct {
	EdgeTypes map[string]*edgeTypeState `msgpack:"e"`
}

type edgeTypeState struct {
	Fingerprint uint32    `msgpack:"f"`
	Signature   string    `msgpack:"s"`
	LastSeen    time.Time `msgpack:"t"`
}

var catalogStateKey = []byte("catalog")

func loadCatalogState(tx *Tx) (*catalogState, error) {
	cs := new(catalogState)
	if raw := tx.metaBucket().Get(catalogStateKey); raw != nil {
		if err := decodeMsgpack(raw, cs); err != nil {
			return nil, fmt.Errorf("failed to decode catalog state: %w", err)
		}
	}
	if cs.Collections == nil {
		cs.Collections = make(map[string]*collectionState)
	}
	return cs, nil
}

// prepareCatalog creates the buckets of every collection and edge type and
// checks the declared schemas against the stored state.
func prepareCatalog(tx *Tx, cat *Catalog, now time.Time) error {
	cs, err := loadCatalogState(tx)
	if err != nil {
		return err
	}
	for _, coll := range cat.Collections() {
		if _, err := tx.stx.CreateBucket(collectionBucketName(coll.Name), rowsBucket); err != nil {
			return err
		}
		collState := cs.Collections[coll.Name]
		if collState == nil {
			collState = &collectionState{}
			cs.Collections[coll.Name] = collState
		}
		if collState.EdgeTypes == nil {
			collState.EdgeTypes = make(map[string]*edgeTypeState)
		}

		for _, schema := range coll.EdgeTypes() {
			if _, err := tx.stx.CreateBucket(collectionBucketName(coll.Name), edgeBucketName(schema.Name)); err != nil {
				return err
			}
			if _, err := tx.stx.CreateBucket(collectionBucketName(coll.Name), tombstoneBucketName(schema.Name)); err != nil {
				return err
			}

			ets := collState.EdgeTypes[schema.Name]
			if ets == nil {
				ets = &edgeTypeState{
					Fingerprint: schema.Fingerprint(),
					Signature:   schema.signature(),
				}
				collState.EdgeTypes[schema.Name] = ets
				tx.db.logf("edgecol: new edge type %s.%v", coll.Name, schema)
			} else if ets.Fingerprint != schema.Fingerprint() || ets.Signature != schema.signature() {
				return fmt.Errorf("%w: %s.%s is stored as %s, declared as %s", ErrSchemaMismatch, coll.Name, schema.Name, ets.Signature, schema.signature())
			}
			ets.LastSeen = now
		}

		for name, ets := range collState.EdgeTypes {
			if coll.EdgeType(name) == nil {
				tx.db.logf("edgecol: edge type %s.%s (%s) is no longer declared, its data is kept", coll.Name, name, ets.Signature)
			}
		}
	}
	return tx.metaBucket().Put(catalogStateKey, appendMsgpack(nil, cs))
}

package edgecol

import "time"

// ResolveEdgeType resolves ref against the store's catalog. Results are
// memoized for the lifetime of the transaction.
func (tx *Tx) ResolveEdgeType(ref EdgeTypeRef) (*ResolvedEdgeType, error) {
	return Memo(tx, "resolve:"+ref.String(), func() (*ResolvedEdgeType, error) {
		return tx.db.cat.ResolveEdgeSource(ref)
	})
}

// Paths runs a breadth-first path query inside this transaction's
// snapshot.
func (tx *Tx) Paths(ref EdgeTypeRef, q PathQuery) (*PathSet, error) {
	et, err := tx.ResolveEdgeType(ref)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	ps, err := BFSPaths(tx, et, q)
	if err != nil {
		return nil, err
	}
	metricTraversalDuration.WithLabelValues(q.Policy.String()).Observe(time.Since(start).Seconds())
	metricPathsEmitted.Add(float64(ps.Len()))
	if tx.db.verbose {
		tx.db.logf("edgecol: PATHS %v from %d [%d, %d] %v => %d paths, %d levels in %d ms", ref, q.Start, q.Lo, q.Hi, q.Policy, ps.Len(), ps.Levels, time.Since(start).Milliseconds())
	}
	return ps, nil
}

// PathMessages is Paths with every path decoded into a PathMessage.
func (tx *Tx) PathMessages(ref EdgeTypeRef, q PathQuery) ([]PathMessage, error) {
	ps, err := tx.Paths(ref, q)
	if err != nil {
		return nil, err
	}
	msgs := make([]PathMessage, 0, ps.Len())
	for _, p := range ps.Paths {
		msg, err := DecodePathMessage(p)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

package kv

import (
	"github.com/syndtr/goleveldb/leveldb"

	beaconerrors "github.com/beacon-network/beacon/errors"
)

// Batch accumulates puts/deletes across any subset of columns for a single
// atomic write_batch, per §4.2.
type Batch struct {
	e  *Engine
	lb *leveldb.Batch
}

// NewBatch starts a new atomic batch against this engine.
func (e *Engine) NewBatch() *Batch {
	return &Batch{e: e, lb: new(leveldb.Batch)}
}

// Put stages a put in the named column.
func (b *Batch) Put(col Column, key, value []byte) *Batch {
	b.lb.Put(namespacedKey(col, key), value)
	return b
}

// Delete stages a delete in the named column.
func (b *Batch) Delete(col Column, key []byte) *Batch {
	b.lb.Delete(namespacedKey(col, key))
	return b
}

// raw stages a put against an already-namespaced key, used only by
// Checkpoint to replay a snapshot's raw key space verbatim.
func (b *Batch) raw(key, value []byte) {
	b.lb.Put(key, value)
}

// Write commits every staged operation atomically. It does not evict
// cached entries; see InvalidateState.
func (b *Batch) Write() error {
	if err := b.e.db.Write(b.lb, nil); err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	// The batch's dirtied keys are not individually tracked here; callers
	// that mutate ColumnState through a batch call Engine.InvalidateState
	// afterward with the keys they touched, since leveldb.Batch does not
	// expose its staged keys for cache eviction.
	return nil
}

// InvalidateState evicts the given state keys from the read-through
// cache, used by callers (statestore.ApplyChanges) immediately after a
// batch write that touched ColumnState.
func (e *Engine) InvalidateState(keys [][]byte) {
	for _, k := range keys {
		e.cache.Remove(cacheKey(ColumnState, k))
	}
}

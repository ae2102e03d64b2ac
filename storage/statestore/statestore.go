// Package statestore implements C5: the world-state key-value space, with
// prefix/range scans, atomic batch apply, and typed helpers (JSON, UTF-8
// string, little-endian counter).
package statestore

import (
	"encoding/binary"
	"encoding/json"
	"sort"

	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/kv"
)

type Store struct {
	kv *kv.Engine
}

func New(engine *kv.Engine) *Store { return &Store{kv: engine} }

func stateKey(key string) []byte { return []byte("state:" + key) }

func (s *Store) Get(key string) ([]byte, bool, error) {
	return s.kv.Get(kv.ColumnState, stateKey(key))
}

func (s *Store) Put(key string, value []byte) error {
	return s.kv.Put(kv.ColumnState, stateKey(key), value)
}

func (s *Store) Delete(key string) error {
	return s.kv.Delete(kv.ColumnState, stateKey(key))
}

// Change is one entry of an apply_changes batch: Delete true means remove
// the key, otherwise Value is written.
type Change struct {
	Key    string
	Value  []byte
	Delete bool
}

// ApplyChanges commits every change atomically; partial visibility of the
// batch is forbidden.
func (s *Store) ApplyChanges(changes []Change) error {
	batch := s.kv.NewBatch()
	touched := s.StageChanges(batch, changes)
	if err := batch.Write(); err != nil {
		return err
	}
	s.kv.InvalidateState(touched)
	return nil
}

// StageChanges appends changes to an externally-owned batch without
// writing it, returning the touched (namespaced) keys so the caller can
// invalidate the read-through cache once its batch is durably written. Used
// by the orchestrator's commit protocol to combine state-changes with C3/C4
// writes into one atomic write_batch per §4.10.
func (s *Store) StageChanges(batch *kv.Batch, changes []Change) [][]byte {
	touched := make([][]byte, 0, len(changes))
	for _, c := range changes {
		k := stateKey(c.Key)
		if c.Delete {
			batch.Delete(kv.ColumnState, k)
		} else {
			batch.Put(kv.ColumnState, k, c.Value)
		}
		touched = append(touched, k)
	}
	return touched
}

// InvalidateCache evicts touched (namespaced) keys from the read-through
// cache, called after an externally-written batch from StageChanges.
func (s *Store) InvalidateCache(touched [][]byte) {
	s.kv.InvalidateState(touched)
}

// GetBatch reads several keys at once, in a map keyed by the (unprefixed)
// key name; absent keys are simply omitted.
func (s *Store) GetBatch(keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, found, err := s.Get(k)
		if err != nil {
			return nil, err
		}
		if found {
			out[k] = v
		}
	}
	return out, nil
}

// GetWithPrefix returns every world-state entry whose key starts with
// prefix, as an ordered map (iteration order follows the underlying
// lexicographic scan; callers wanting a stable map iteration order should
// sort the returned keys themselves, exposed via Keys below).
type OrderedEntry struct {
	Key   string
	Value []byte
}

func (s *Store) GetWithPrefix(prefix string) ([]OrderedEntry, error) {
	entries, err := s.kv.ScanPrefix(kv.ColumnState, []byte(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]OrderedEntry, len(entries))
	for i, e := range entries {
		out[i] = OrderedEntry{Key: string(e.Key), Value: e.Value}
	}
	return out, nil
}

// GetRange returns entries in the half-open range [startKey, endKey) after
// stripping the "state:" namespace.
func (s *Store) GetRange(startKey, endKey string) ([]OrderedEntry, error) {
	entries, err := s.kv.ScanRange(kv.ColumnState, []byte(startKey), []byte(endKey))
	if err != nil {
		return nil, err
	}
	out := make([]OrderedEntry, len(entries))
	for i, e := range entries {
		out[i] = OrderedEntry{Key: string(e.Key), Value: e.Value}
	}
	return out, nil
}

// PutJSON marshals v and stores it at key.
func (s *Store) PutJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return beaconerrors.Wrap(beaconerrors.Serialization, err)
	}
	return s.Put(key, b)
}

// GetJSON reads key and unmarshals it into v; found=false leaves v
// untouched.
func (s *Store) GetJSON(key string, v any) (bool, error) {
	raw, found, err := s.Get(key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, beaconerrors.Wrap(beaconerrors.Serialization, err)
	}
	return true, nil
}

func (s *Store) PutString(key, value string) error { return s.Put(key, []byte(value)) }

func (s *Store) GetString(key string) (string, bool, error) {
	raw, found, err := s.Get(key)
	return string(raw), found, err
}

// GetCounter reads the 8-byte little-endian counter at key; a malformed
// (non-8-byte) value is treated as 0, and an absent key also reads as 0.
func (s *Store) GetCounter(key string) (uint64, error) {
	raw, found, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if !found || len(raw) != 8 {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// IncrementCounter adds delta to the counter at key (treating a malformed
// existing value as 0), persists the new value as 8-byte little-endian, and
// returns it. Saturates at MaxUint64 instead of wrapping on overflow.
func (s *Store) IncrementCounter(key string, delta uint64) (uint64, error) {
	cur, err := s.GetCounter(key)
	if err != nil {
		return 0, err
	}
	next := cur + delta
	if next < cur {
		next = ^uint64(0)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], next)
	if err := s.Put(key, buf[:]); err != nil {
		return 0, err
	}
	return next, nil
}

// Keys returns the sorted key list of an OrderedEntry slice, a convenience
// for callers needing deterministic map-like iteration.
func Keys(entries []OrderedEntry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys
}

// Package kv implements C2: a column-organised persistent key-value store.
// A single goleveldb instance backs every column, with columns emulated as
// key-prefixed namespaces (see column.go) so that write_batch spans any
// subset of columns atomically — true multi-handle column families in
// goleveldb could not offer that guarantee.
package kv

import (
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/log"
)

// Config mirrors the storage.* configuration options from spec.md §6.
type Config struct {
	CacheSizeMB      int
	WriteBufferMB    int
	MaxOpenFiles     int
	CompressionOn    bool // "optional LZ4"; see DESIGN.md for the snappy substitution
	StatisticsOn     bool
}

// DefaultConfig matches typical goleveldb defaults scaled to the spec's
// configuration knobs.
var DefaultConfig = Config{
	CacheSizeMB:   64,
	WriteBufferMB: 16,
	MaxOpenFiles:  256,
	CompressionOn: true,
}

// Engine is the open KV engine: one goleveldb handle plus a read-through
// LRU cache for hot "state:" reads. The block-by-hash cache lives in the
// block store, not here.
type Engine struct {
	db    *leveldb.DB
	cache *lru.Cache // hot-key cache holding 4096 entries; Config.CacheSizeMB sizes goleveldb's block cache
	log   log.Logger
	path  string
}

// Open creates the data directory if missing and opens (or creates) the
// goleveldb instance beneath it, per §4.2 "The data directory is created
// on open" and "Column families are created if missing" (trivially true
// here since columns are prefixes, not physical handles).
func Open(dir string, cfg Config) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	opts := &opt.Options{
		OpenFilesCacheCapacity: cfg.MaxOpenFiles,
		BlockCacheCapacity:     cfg.CacheSizeMB * opt.MiB,
		WriteBuffer:            cfg.WriteBufferMB * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
	if !cfg.CompressionOn {
		opts.Compression = opt.NoCompression
	} else {
		opts.Compression = opt.SnappyCompression
	}
	db, err := leveldb.OpenFile(filepath.Clean(dir), opts)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	cache, _ := lru.New(4096)
	return &Engine{db: db, cache: cache, log: log.New("module", "kv"), path: dir}, nil
}

// Close releases the underlying goleveldb handle.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return nil
}

func cacheKey(col Column, key []byte) string {
	return string(col) + "/" + string(key)
}

// Put writes key/value into the named column.
func (e *Engine) Put(col Column, key, value []byte) error {
	if err := e.db.Put(namespacedKey(col, key), value, nil); err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	e.cache.Remove(cacheKey(col, key))
	return nil
}

// Get reads key from the named column. found=false with a nil error means
// the key is absent.
func (e *Engine) Get(col Column, key []byte) (value []byte, found bool, err error) {
	if col == ColumnState {
		if v, ok := e.cache.Get(cacheKey(col, key)); ok {
			return v.([]byte), true, nil
		}
	}
	v, gerr := e.db.Get(namespacedKey(col, key), nil)
	if gerr == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if gerr != nil {
		return nil, false, beaconerrors.Wrap(beaconerrors.Storage, gerr)
	}
	if col == ColumnState {
		e.cache.Add(cacheKey(col, key), v)
	}
	return v, true, nil
}

// Delete removes key from the named column.
func (e *Engine) Delete(col Column, key []byte) error {
	if err := e.db.Delete(namespacedKey(col, key), nil); err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	e.cache.Remove(cacheKey(col, key))
	return nil
}

// Direction controls scan ordering.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// KV is a key/value pair yielded by a scan.
type KV struct {
	Key   []byte
	Value []byte
}

// Scan returns an ordered (lexicographic) slice of entries in the named
// column whose raw key is >= from (Forward) or <= from (Reverse, from=nil
// meaning "end"). This is a materialising scan rather than a streaming
// iterator — acceptable at this store's expected working-set sizes and
// simpler to reason about atomically alongside the LRU cache above.
func (e *Engine) Scan(col Column, from []byte, dir Direction, limit int) ([]KV, error) {
	prefix := append([]byte(col), '/')
	rng := util.BytesPrefix(prefix)
	it := e.db.NewIterator(rng, nil)
	defer it.Release()

	var out []KV
	seek := from
	if dir == Forward {
		if seek != nil {
			it.Seek(namespacedKey(col, seek))
		} else {
			it.First()
		}
		for ; it.Valid(); it.Next() {
			out = append(out, KV{Key: stripPrefix(it.Key(), prefix), Value: cloneBytes(it.Value())})
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	} else {
		if seek != nil {
			target := namespacedKey(col, seek)
			if !it.Seek(target) {
				it.Last()
			} else if string(it.Key()) > string(target) {
				it.Prev()
			}
		} else {
			it.Last()
		}
		for ; it.Valid(); it.Prev() {
			out = append(out, KV{Key: stripPrefix(it.Key(), prefix), Value: cloneBytes(it.Value())})
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	if err := it.Error(); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return out, nil
}

// ScanRange returns entries in [startKey, endKey) within the named column,
// in ascending order, after stripping the column prefix.
func (e *Engine) ScanRange(col Column, startKey, endKey []byte) ([]KV, error) {
	prefix := append([]byte(col), '/')
	r := &util.Range{Start: namespacedKey(col, startKey)}
	if endKey != nil {
		r.Limit = namespacedKey(col, endKey)
	} else {
		r.Limit = util.BytesPrefix(prefix).Limit
	}
	it := e.db.NewIterator(r, nil)
	defer it.Release()

	var out []KV
	for it.Next() {
		out = append(out, KV{Key: stripPrefix(it.Key(), prefix), Value: cloneBytes(it.Value())})
	}
	if err := it.Error(); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return out, nil
}

// ScanPrefix returns every entry in the named column whose key starts
// with prefix, in ascending order, keys stripped of the column prefix
// (but not the caller's prefix).
func (e *Engine) ScanPrefix(col Column, prefix []byte) ([]KV, error) {
	colPrefix := append([]byte(col), '/')
	full := append(append([]byte{}, colPrefix...), prefix...)
	rng := util.BytesPrefix(full)
	it := e.db.NewIterator(rng, nil)
	defer it.Release()

	var out []KV
	for it.Next() {
		out = append(out, KV{Key: stripPrefix(it.Key(), colPrefix), Value: cloneBytes(it.Value())})
	}
	if err := it.Error(); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return out, nil
}

func stripPrefix(key, prefix []byte) []byte {
	out := make([]byte, len(key)-len(prefix))
	copy(out, key[len(prefix):])
	return out
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// CompactRange hints goleveldb to compact the named column's key range.
func (e *Engine) CompactRange(col Column) error {
	prefix := append([]byte(col), '/')
	if err := e.db.CompactRange(*util.BytesPrefix(prefix)); err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return nil
}

// Checkpoint produces a crash-consistent snapshot at path by copying a
// consistent leveldb.Snapshot's contents into a fresh engine rooted there.
func (e *Engine) Checkpoint(path string) error {
	snap, err := e.db.GetSnapshot()
	if err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	defer snap.Release()

	dst, err := Open(path, DefaultConfig)
	if err != nil {
		return err
	}
	defer dst.Close()

	it := snap.NewIterator(nil, nil)
	defer it.Release()
	batch := dst.NewBatch()
	for it.Next() {
		batch.raw(cloneBytes(it.Key()), cloneBytes(it.Value()))
	}
	if err := it.Error(); err != nil {
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return batch.Write()
}

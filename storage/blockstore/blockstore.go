// Package blockstore implements C3: block-by-index, block-by-hash, range
// scans and tip tracking over the KV engine.
package blockstore

import (
	"encoding/binary"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/core"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/kv"
)

const tipMetaKey = "tip"

// Store wraps the KV engine with C3's block operations.
type Store struct {
	kv *kv.Engine
	// hashCache is a secondary, differently-shaped cache (raw byte slabs
	// rather than golang-lru's generic interface{} cache) in front of
	// block-by-hash lookups, exercising VictoriaMetrics/fastcache as a
	// second pack cache dependency distinct from the engine's own LRU.
	hashCache *fastcache.Cache
}

func New(engine *kv.Engine) *Store {
	return &Store{kv: engine, hashCache: fastcache.New(8 * 1024 * 1024)}
}

func blockIndexKey(i common.BlockIndex) []byte {
	return []byte("block:" + kv.Zpad20(uint64(i)))
}

func blockHashKey(h common.Hash) []byte {
	return []byte("block_hash:" + h.Hex())
}

// Store writes both the by-index record and the by-hash->index record in
// one atomic batch, and advances the metadata["tip"] pointer in the same
// batch.
func (s *Store) Store(b *core.Block) error {
	batch := s.kv.NewBatch()
	s.StageBlock(batch, b)
	if err := batch.Write(); err != nil {
		return err
	}
	s.CacheBlock(b)
	return nil
}

// StageBlock appends the block-by-index, block-by-hash and tip-pointer puts
// to an externally-owned batch without writing it, so a caller (the
// orchestrator's commit protocol) can combine them with C4/C5 writes into a
// single atomic write_batch per §4.10. CacheBlock must be called separately
// once the batch is written.
func (s *Store) StageBlock(batch *kv.Batch, b *core.Block) {
	batch.Put(kv.ColumnBlocks, blockIndexKey(b.Header.Index), b.Encode())

	var idxBuf [8]byte
	binary.LittleEndian.PutUint64(idxBuf[:], uint64(b.Header.Index))
	batch.Put(kv.ColumnBlocks, blockHashKey(b.Hash), idxBuf[:])

	batch.Put(kv.ColumnMetadata, []byte(tipMetaKey), idxBuf[:])
}

// CacheBlock populates the by-hash secondary cache after a batch containing
// b has been durably written.
func (s *Store) CacheBlock(b *core.Block) {
	s.hashCache.Set([]byte(b.Hash.Hex()), b.Encode())
}

// GetByIndex returns the block at i, or (nil, nil) if absent.
func (s *Store) GetByIndex(i common.BlockIndex) (*core.Block, error) {
	raw, found, err := s.kv.Get(kv.ColumnBlocks, blockIndexKey(i))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	b, derr := core.DecodeBlock(raw)
	if derr != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, derr)
	}
	return b, nil
}

// GetByHash returns the block with the given hash, or (nil, nil) if absent.
func (s *Store) GetByHash(h common.Hash) (*core.Block, error) {
	if raw := s.hashCache.Get(nil, []byte(h.Hex())); len(raw) > 0 {
		if b, err := core.DecodeBlock(raw); err == nil {
			return b, nil
		}
	}
	raw, found, err := s.kv.Get(kv.ColumnBlocks, blockHashKey(h))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	idx := common.BlockIndex(binary.LittleEndian.Uint64(raw))
	return s.GetByIndex(idx)
}

// Exists reports whether a block at index i has been stored.
func (s *Store) Exists(i common.BlockIndex) (bool, error) {
	_, found, err := s.kv.Get(kv.ColumnBlocks, blockIndexKey(i))
	return found, err
}

// BlockCount returns the number of stored blocks (tip index + 1), or 0 if
// none exist.
func (s *Store) BlockCount() (uint64, error) {
	raw, found, err := s.kv.Get(kv.ColumnMetadata, []byte(tipMetaKey))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(raw) + 1, nil
}

// Latest returns the tip block, tracked via metadata["tip"] rather than a
// reverse prefix scan over "block:" keys — a naive starts_with("block:")
// scan would also match "block_hash:" keys, a collision bug in the
// original reference this store avoids by construction.
func (s *Store) Latest() (*core.Block, error) {
	raw, found, err := s.kv.Get(kv.ColumnMetadata, []byte(tipMetaKey))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	idx := common.BlockIndex(binary.LittleEndian.Uint64(raw))
	return s.GetByIndex(idx)
}

// GetRange returns up to count consecutive blocks starting at start,
// stopping at the first missing index.
func (s *Store) GetRange(start common.BlockIndex, count int) ([]*core.Block, error) {
	out := make([]*core.Block, 0, count)
	for i := 0; i < count; i++ {
		b, err := s.GetByIndex(start + common.BlockIndex(i))
		if err != nil {
			return nil, err
		}
		if b == nil {
			break
		}
		out = append(out, b)
	}
	return out, nil
}

// StoreGenesis constructs and stores the genesis block for networkID.
func (s *Store) StoreGenesis(networkID string, nowMillis int64) (*core.Block, error) {
	b := core.NewGenesisBlock(networkID, nowMillis)
	if err := s.Store(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Initialize is idempotent: if index 0 is absent it creates and stores the
// genesis block; if present it verifies the existing genesis's
// network_id matches, failing fast on mismatch (a safety check the
// original reference's looser re-use of an existing chain's genesis
// lacked).
func (s *Store) Initialize(networkID string, nowMillis int64) (*core.Block, error) {
	existing, err := s.GetByIndex(0)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Header.Metadata["network_id"] != networkID {
			return nil, beaconerrors.Newf(beaconerrors.Config, "genesis network id mismatch: have %q want %q",
				existing.Header.Metadata["network_id"], networkID)
		}
		return existing, nil
	}
	return s.StoreGenesis(networkID, nowMillis)
}

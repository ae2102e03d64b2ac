package blockstore

import (
	"testing"

	"github.com/beacon-network/beacon/core"
	"github.com/beacon-network/beacon/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	e, err := kv.Open(t.TempDir(), kv.DefaultConfig)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return New(e)
}

func TestInitializeCreatesGenesis(t *testing.T) {
	s := newTestStore(t)
	b, err := s.Initialize("testnet", 1700000000000)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if b.Header.Index != 0 {
		t.Fatalf("expected genesis index 0")
	}
	count, err := s.BlockCount()
	if err != nil || count != 1 {
		t.Fatalf("expected block count 1 after genesis, got %d err=%v", count, err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	first, err := s.Initialize("testnet", 1700000000000)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	second, err := s.Initialize("testnet", 1700000099999)
	if err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if first.Hash != second.Hash {
		t.Fatalf("expected re-initialize to return the existing genesis unchanged")
	}
}

func TestInitializeRejectsNetworkIDMismatch(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Initialize("testnet", 1700000000000); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := s.Initialize("other-net", 1700000000001); err == nil {
		t.Fatalf("expected network id mismatch to fail")
	}
}

func TestStoreGetByIndexAndHash(t *testing.T) {
	s := newTestStore(t)
	genesis, err := s.Initialize("testnet", 1700000000000)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	next := &core.Block{
		Header: core.Header{
			Index:        1,
			PreviousHash: genesis.Hash,
			Timestamp:    1700000000001,
			Validator:    "v1",
			Version:      1,
			Metadata:     map[string]string{},
		},
	}
	next.Finalize()
	if err := s.Store(next); err != nil {
		t.Fatalf("store: %v", err)
	}

	byIndex, err := s.GetByIndex(1)
	if err != nil || byIndex == nil || byIndex.Hash != next.Hash {
		t.Fatalf("expected block 1 to round trip by index, got %+v err=%v", byIndex, err)
	}
	byHash, err := s.GetByHash(next.Hash)
	if err != nil || byHash == nil || byHash.Header.Index != 1 {
		t.Fatalf("expected block to round trip by hash, got %+v err=%v", byHash, err)
	}

	latest, err := s.Latest()
	if err != nil || latest == nil || latest.Hash != next.Hash {
		t.Fatalf("expected tip to be block 1, got %+v err=%v", latest, err)
	}
	count, err := s.BlockCount()
	if err != nil || count != 2 {
		t.Fatalf("expected block count 2, got %d err=%v", count, err)
	}
}

func TestGetRangeStopsAtFirstMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Initialize("testnet", 1700000000000); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	blocks, err := s.GetRange(0, 5)
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected range to stop after the genesis block, got %d blocks", len(blocks))
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	if ok, err := s.Exists(0); err != nil || ok {
		t.Fatalf("expected block 0 to not exist yet, ok=%v err=%v", ok, err)
	}
	if _, err := s.Initialize("testnet", 1700000000000); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if ok, err := s.Exists(0); err != nil || !ok {
		t.Fatalf("expected genesis to exist, ok=%v err=%v", ok, err)
	}
}

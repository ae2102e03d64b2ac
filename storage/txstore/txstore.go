// Package txstore implements C4: transaction and result archival with a
// per-block ordering index.
package txstore

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/core"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/kv"
)

const txCountMetaKey = "tx_count"

type Store struct {
	kv *kv.Engine
}

func New(engine *kv.Engine) *Store { return &Store{kv: engine} }

func txKey(id common.TxId) []byte       { return []byte("tx:" + string(id)) }
func txResultKey(id common.TxId) []byte { return []byte("tx:" + string(id) + ":result") }

func txBlockKey(blockIndex common.BlockIndex, txIndex uint64) []byte {
	return []byte("tx_block:" + kv.Zpad20(uint64(blockIndex)) + ":" + kv.Zpad10(txIndex))
}

func (s *Store) readCount() (uint64, error) {
	raw, found, err := s.kv.Get(kv.ColumnMetadata, []byte(txCountMetaKey))
	if err != nil || !found {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// Store archives a transaction on its own (no result/block position yet).
func (s *Store) Store(tx *core.Transaction) error {
	batch := s.kv.NewBatch()
	batch.Put(kv.ColumnTransactions, txKey(tx.Id), tx.Encode())
	count, err := s.readCount()
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], count+1)
	batch.Put(kv.ColumnMetadata, []byte(txCountMetaKey), buf[:])
	return batch.Write()
}

// StoreWithResult performs a single atomic batch writing the transaction
// record, the result record, and the tx_block pointer, per §4.4.
func (s *Store) StoreWithResult(tx *core.Transaction, result *core.TransactionResult, blockIndex common.BlockIndex, txIndex uint64) error {
	batch := s.kv.NewBatch()
	s.StageWithResult(batch, tx, result, blockIndex, txIndex)
	if err := s.StageCount(batch, 1); err != nil {
		return err
	}
	return batch.Write()
}

// StageWithResult appends the tx/result/tx_block puts to an externally-owned
// batch (not the tx-count bump — see StageCount) so the orchestrator's
// commit protocol can combine several transactions' archival writes with
// the block and state-change writes into one atomic write_batch per §4.10.
func (s *Store) StageWithResult(batch *kv.Batch, tx *core.Transaction, result *core.TransactionResult, blockIndex common.BlockIndex, txIndex uint64) {
	batch.Put(kv.ColumnTransactions, txKey(tx.Id), tx.Encode())
	batch.Put(kv.ColumnTransactions, txResultKey(tx.Id), result.Encode())
	batch.Put(kv.ColumnIndices, txBlockKey(blockIndex, txIndex), []byte(tx.Id))
}

// StageCount appends a single tx-count bump of delta to batch, reading the
// current count once. Call this once per batch after all StageWithResult
// calls for that batch, since each call reads the persisted count rather
// than any not-yet-written staged value.
func (s *Store) StageCount(batch *kv.Batch, delta uint64) error {
	count, err := s.readCount()
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], count+delta)
	batch.Put(kv.ColumnMetadata, []byte(txCountMetaKey), buf[:])
	return nil
}

func (s *Store) Get(id common.TxId) (*core.Transaction, error) {
	raw, found, err := s.kv.Get(kv.ColumnTransactions, txKey(id))
	if err != nil || !found {
		return nil, err
	}
	tx, derr := core.DecodeTransaction(raw)
	if derr != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, derr)
	}
	return tx, nil
}

func (s *Store) GetResult(id common.TxId) (*core.TransactionResult, error) {
	raw, found, err := s.kv.Get(kv.ColumnTransactions, txResultKey(id))
	if err != nil || !found {
		return nil, err
	}
	r, derr := core.DecodeTransactionResult(raw)
	if derr != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, derr)
	}
	return r, nil
}

func (s *Store) Exists(id common.TxId) (bool, error) {
	_, found, err := s.kv.Get(kv.ColumnTransactions, txKey(id))
	return found, err
}

// GetInBlock range-scans the tx_block:<zpad20>: prefix in ascending order;
// the suffix's zero-padding guarantees return order equals tx_index order.
func (s *Store) GetInBlock(blockIndex common.BlockIndex) ([]*core.Transaction, error) {
	prefix := []byte("tx_block:" + kv.Zpad20(uint64(blockIndex)) + ":")
	entries, err := s.kv.ScanPrefix(kv.ColumnIndices, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Transaction, 0, len(entries))
	for _, e := range entries {
		tx, err := s.Get(common.TxId(e.Value))
		if err != nil {
			return nil, err
		}
		if tx != nil {
			out = append(out, tx)
		}
	}
	return out, nil
}

// GetBySender linearly scans archived transactions for a matching sender;
// the spec names no dedicated by-sender index, so this mirrors a full
// table scan over the "tx:" namespace, skipping result records.
func (s *Store) GetBySender(addr common.Address) ([]*core.Transaction, error) {
	entries, err := s.kv.ScanPrefix(kv.ColumnTransactions, []byte("tx:"))
	if err != nil {
		return nil, err
	}
	var out []*core.Transaction
	for _, e := range entries {
		if strings.HasSuffix(string(e.Key), ":result") {
			continue
		}
		tx, derr := core.DecodeTransaction(e.Value)
		if derr != nil {
			continue
		}
		if tx.From == addr {
			out = append(out, tx)
		}
	}
	return out, nil
}

// GetRecent reverse-scans tx: keys and ignores those ending in :result,
// returning up to n transactions in descending key (transaction id) order.
// Ids are random UUIDs, so this order is not the order of storage.
func (s *Store) GetRecent(n int) ([]*core.Transaction, error) {
	entries, err := s.kv.Scan(kv.ColumnTransactions, nil, kv.Reverse, 0)
	if err != nil {
		return nil, err
	}
	var out []*core.Transaction
	for _, e := range entries {
		if bytes.HasSuffix(e.Key, []byte(":result")) {
			continue
		}
		tx, derr := core.DecodeTransaction(e.Value)
		if derr != nil {
			continue
		}
		out = append(out, tx)
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

func (s *Store) Count() (uint64, error) { return s.readCount() }

func (s *Store) Delete(id common.TxId) error {
	batch := s.kv.NewBatch()
	batch.Delete(kv.ColumnTransactions, txKey(id))
	batch.Delete(kv.ColumnTransactions, txResultKey(id))
	return batch.Write()
}

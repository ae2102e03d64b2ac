package core

import (
	"fmt"

	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/crypto"
)

// Encode serialises a full Transaction record (including signature and
// hash) for storage/wire use. This is distinct from canonicalFields, which
// deliberately excludes signature/hash because it's the hash preimage.
func (t *Transaction) Encode() []byte {
	enc := crypto.NewEncoder()
	enc.RawBytes(t.canonicalFields())
	enc.RawBytes(t.Signature)
	enc.RawBytes(t.Hash[:])
	return enc.Bytes()
}

// DecodeTransaction reverses Encode.
func DecodeTransaction(b []byte) (*Transaction, error) {
	d := crypto.NewDecoder(b)
	fields := d.RawBytes()
	sig := d.RawBytes()
	hashBytes := d.RawBytes()
	if d.Err() != nil {
		return nil, d.Err()
	}
	t, err := decodeTransactionFields(fields)
	if err != nil {
		return nil, err
	}
	t.Signature = sig
	t.Hash = common.BytesToHash(hashBytes)
	return t, nil
}

func decodeTransactionFields(b []byte) (*Transaction, error) {
	d := crypto.NewDecoder(b)
	t := &Transaction{}
	t.Id = common.TxId(d.String())
	t.Type = TxType(d.Tag())
	t.From = common.Address(d.String())
	hasTo := d.Tag()
	if hasTo == 1 {
		to := common.Address(d.String())
		t.To = &to
	}
	t.Input.ChaincodeId = common.ChaincodeId(d.String())
	t.Input.Function = d.String()
	n := d.ListLen()
	t.Input.Args = make([]string, n)
	for i := 0; i < n; i++ {
		t.Input.Args[i] = d.String()
	}
	t.Input.Metadata = d.StringMap()
	t.Nonce = d.Uint64()
	t.GasLimit = d.Uint64()
	t.GasPrice = d.Uint64()
	t.Timestamp = d.Int64()
	if d.Err() != nil {
		return nil, d.Err()
	}
	return t, nil
}

// Encode serialises a full Block record (header + transactions + results +
// hash).
func (b *Block) Encode() []byte {
	enc := crypto.NewEncoder()
	enc.RawBytes(b.Header.canonicalFields())
	enc.ListLen(len(b.Transactions))
	for _, t := range b.Transactions {
		enc.RawBytes(t.Encode())
	}
	enc.ListLen(len(b.TransactionResults))
	for _, r := range b.TransactionResults {
		enc.RawBytes(r.Encode())
	}
	enc.RawBytes(b.Hash[:])
	return enc.Bytes()
}

// DecodeBlock reverses Encode.
func DecodeBlock(buf []byte) (*Block, error) {
	d := crypto.NewDecoder(buf)
	headerFields := d.RawBytes()
	ntx := d.ListLen()
	txs := make([]*Transaction, ntx)
	for i := 0; i < ntx; i++ {
		raw := d.RawBytes()
		if d.Err() != nil {
			return nil, d.Err()
		}
		t, err := DecodeTransaction(raw)
		if err != nil {
			return nil, err
		}
		txs[i] = t
	}
	nres := d.ListLen()
	results := make([]*TransactionResult, nres)
	for i := 0; i < nres; i++ {
		raw := d.RawBytes()
		if d.Err() != nil {
			return nil, d.Err()
		}
		r, err := DecodeTransactionResult(raw)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	hashBytes := d.RawBytes()
	if d.Err() != nil {
		return nil, d.Err()
	}
	header, err := decodeHeaderFields(headerFields)
	if err != nil {
		return nil, err
	}
	return &Block{Header: *header, Transactions: txs, TransactionResults: results, Hash: common.BytesToHash(hashBytes)}, nil
}

func decodeHeaderFields(b []byte) (*Header, error) {
	d := crypto.NewDecoder(b)
	h := &Header{}
	h.Index = common.BlockIndex(d.Uint64())
	h.PreviousHash = common.BytesToHash(mustN(d, 32))
	h.MerkleRoot = common.BytesToHash(mustN(d, 32))
	h.Timestamp = d.Int64()
	h.Validator = common.ValidatorId(d.String())
	h.Difficulty = d.Uint64()
	h.Nonce = d.Uint64()
	h.Version = d.Uint32()
	h.Metadata = d.StringMap()
	if d.Err() != nil {
		return nil, d.Err()
	}
	return h, nil
}

// mustN reads exactly n raw bytes written via Encoder.RawBytes (which is
// itself length-prefixed); PreviousHash/MerkleRoot were written with
// RawBytes(hash[:]) so they decode the same way.
func mustN(d *crypto.Decoder, n int) []byte {
	b := d.RawBytes()
	if len(b) != n {
		return make([]byte, n)
	}
	return b
}

// Encode serialises a TransactionResult.
func (r *TransactionResult) Encode() []byte {
	enc := crypto.NewEncoder()
	enc.Tag(byte(r.Status))
	enc.Uint64(r.GasUsed)
	enc.RawBytes(r.ReturnValue)
	enc.String(r.Error)
	keys := make([]string, 0, len(r.StateChanges))
	for k := range r.StateChanges {
		keys = append(keys, k)
	}
	enc.ListLen(len(keys))
	for _, k := range keys {
		enc.String(k)
		enc.RawBytes(r.StateChanges[k])
	}
	enc.ListLen(len(r.Events))
	for _, ev := range r.Events {
		enc.String(ev.EventType)
		enc.RawBytes(ev.Data)
		enc.ListLen(len(ev.Topics))
		for _, t := range ev.Topics {
			enc.String(t)
		}
	}
	return enc.Bytes()
}

// DecodeTransactionResult reverses Encode.
func DecodeTransactionResult(b []byte) (*TransactionResult, error) {
	d := crypto.NewDecoder(b)
	r := &TransactionResult{}
	r.Status = Status(d.Tag())
	r.GasUsed = d.Uint64()
	r.ReturnValue = d.RawBytes()
	r.Error = d.String()
	n := d.ListLen()
	r.StateChanges = make(map[string][]byte, n)
	for i := 0; i < n; i++ {
		k := d.String()
		v := d.RawBytes()
		r.StateChanges[k] = v
	}
	nev := d.ListLen()
	r.Events = make([]Event, nev)
	for i := 0; i < nev; i++ {
		r.Events[i].EventType = d.String()
		r.Events[i].Data = d.RawBytes()
		nt := d.ListLen()
		r.Events[i].Topics = make([]string, nt)
		for j := 0; j < nt; j++ {
			r.Events[i].Topics[j] = d.String()
		}
	}
	if d.Err() != nil {
		return nil, fmt.Errorf("core: decode transaction result: %w", d.Err())
	}
	return r, nil
}

package core

import (
	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/crypto"
	beaconerrors "github.com/beacon-network/beacon/errors"
)

// Header is a block's header fields.
type Header struct {
	Index        common.BlockIndex
	PreviousHash common.Hash
	MerkleRoot   common.Hash
	Timestamp    int64
	Validator    common.ValidatorId
	Difficulty   uint64 // always 0, kept for on-disk layout compatibility
	Nonce        uint64 // always 0
	Version      uint32 // always 1
	Metadata     map[string]string
}

// canonicalFields encodes the header fields in declared order.
func (h *Header) canonicalFields() []byte {
	enc := crypto.NewEncoder()
	enc.Uint64(uint64(h.Index))
	enc.RawBytes(h.PreviousHash[:])
	enc.RawBytes(h.MerkleRoot[:])
	enc.Int64(h.Timestamp)
	enc.String(string(h.Validator))
	enc.Uint64(h.Difficulty)
	enc.Uint64(h.Nonce)
	enc.Uint32(h.Version)
	enc.StringMap(mapKeysSorted(h.Metadata), func(k string) string { return h.Metadata[k] })
	return enc.Bytes()
}

// Block is immutable once constructed and persisted.
type Block struct {
	Header              Header
	Transactions        []*Transaction
	TransactionResults  []*TransactionResult
	Hash                common.Hash
}

// ComputeMerkleRoot computes the Merkle root over this block's transaction
// hashes.
func (b *Block) ComputeMerkleRoot() common.Hash {
	hashes := make([]common.Hash, len(b.Transactions))
	for i, t := range b.Transactions {
		hashes[i] = t.Hash
	}
	return crypto.MerkleRoot(hashes)
}

// ComputeHash recomputes the SHA-256 hash over the canonical header field
// encoding.
func (b *Block) ComputeHash() common.Hash {
	return crypto.Hash(b.Header.canonicalFields())
}

// Finalize sets MerkleRoot from the current transaction list then computes
// and sets Hash. Call after building Header/Transactions, before storing.
func (b *Block) Finalize() {
	b.Header.MerkleRoot = b.ComputeMerkleRoot()
	b.Hash = b.ComputeHash()
}

// Validate implements Block.validate: block-hash equals header
// recomputation; merkle_root equals recomputed root; each transaction
// validates; if transaction_results is non-empty its length matches
// transactions.
func (b *Block) Validate(verifyingKey crypto.PublicKey) error {
	if recomputed := b.ComputeHash(); recomputed != b.Hash {
		return beaconerrors.New(beaconerrors.InvalidBlock, "block hash mismatch")
	}
	if recomputed := b.ComputeMerkleRoot(); recomputed != b.Header.MerkleRoot {
		return beaconerrors.New(beaconerrors.InvalidBlock, "merkle root mismatch")
	}
	for _, t := range b.Transactions {
		if err := t.Validate(verifyingKey); err != nil {
			return beaconerrors.Wrap(beaconerrors.InvalidBlock, err)
		}
	}
	if len(b.TransactionResults) > 0 && len(b.TransactionResults) != len(b.Transactions) {
		return beaconerrors.New(beaconerrors.InvalidBlock, "transaction_results length mismatch")
	}
	return nil
}

// NewGenesisBlock builds the genesis block: index 0, previous_hash all
// zeros, validator "genesis", metadata["network_id"] set, hash recomputed
// after metadata insertion.
func NewGenesisBlock(networkID string, timestamp int64) *Block {
	b := &Block{
		Header: Header{
			Index:        0,
			PreviousHash: common.ZeroHash(),
			Timestamp:    timestamp,
			Validator:    "genesis",
			Version:      1,
			Metadata:     map[string]string{"network_id": networkID},
		},
	}
	b.Finalize()
	return b
}

// SortedMetadataKeys is a small helper exposed for callers (e.g. storage
// layer) that need a deterministic metadata key order outside of hashing.
func SortedMetadataKeys(m map[string]string) []string { return mapKeysSorted(m) }

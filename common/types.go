// Package common holds the scalar identifier types shared across the node:
// transaction ids, addresses, hashes and block indices.
package common

import (
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

// HashLength is the length in bytes of a canonical Hash.
const HashLength = 32

// Hash is a 32-byte SHA-256 digest.
type Hash [HashLength]byte

// Hex renders the hash as 64 lowercase hex characters.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether the hash is the all-zero value (used for the
// genesis block's previous_hash).
func (h Hash) IsZero() bool { return h == Hash{} }

// BytesToHash copies b into a Hash right-aligned: a shorter b is left-padded
// with zeros, a longer b keeps only its trailing HashLength bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash decodes a 64-character hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != HashLength {
		return h, errors.New("common: hash must decode to 32 bytes")
	}
	copy(h[:], b)
	return h, nil
}

// ZeroHash is 64 zero hex characters, used as genesis previous_hash.
func ZeroHash() Hash { return Hash{} }

// Address, ChaincodeId, ValidatorId and NodeId are opaque non-empty strings
// per the data model; they're kept as distinct named types so call sites
// read clearly even though they share an underlying representation.
type (
	Address     string
	ChaincodeId string
	ValidatorId string
	NodeId      string
)

// BlockIndex is a 64-bit unsigned block height.
type BlockIndex uint64

// TxId is a 128-bit UUID rendered as its canonical 36-character string.
type TxId string

// NewTxId generates a fresh random transaction id.
func NewTxId() TxId {
	return TxId(uuid.NewString())
}

func (id TxId) String() string { return string(id) }

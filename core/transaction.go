// Package core implements C1's data model: Transaction, Block and
// TransactionResult, their canonical hashing, and their validation rules.
package core

import (
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/crypto"
	beaconerrors "github.com/beacon-network/beacon/errors"
)

// TxType is the transaction kind tag.
type TxType byte

const (
	TxTransfer TxType = iota
	TxDeploy
	TxInvoke
	TxConfig
)

func (t TxType) String() string {
	switch t {
	case TxTransfer:
		return "Transfer"
	case TxDeploy:
		return "Deploy"
	case TxInvoke:
		return "Invoke"
	case TxConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

// Input carries the chaincode invocation payload.
type Input struct {
	ChaincodeId common.ChaincodeId
	Function    string
	Args        []string
	Metadata    map[string]string
}

// Transaction is immutable once constructed; populate its fields, call
// Finalize, then Sign.
type Transaction struct {
	Id        common.TxId
	Type      TxType
	From      common.Address
	To        *common.Address
	Input     Input
	Nonce     uint64
	GasLimit  uint64
	GasPrice  uint64
	Timestamp int64 // milliseconds since epoch
	Signature []byte
	Hash      common.Hash
}

func mapKeysSorted(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonicalFields encodes every field except signature and hash, in
// declared order, per §3/§4.1.
func (t *Transaction) canonicalFields() []byte {
	enc := crypto.NewEncoder()
	enc.String(string(t.Id))
	enc.Tag(byte(t.Type))
	enc.String(string(t.From))
	if t.To != nil {
		enc.Tag(1)
		enc.String(string(*t.To))
	} else {
		enc.Tag(0)
	}
	enc.String(string(t.Input.ChaincodeId))
	enc.String(t.Input.Function)
	enc.ListLen(len(t.Input.Args))
	for _, a := range t.Input.Args {
		enc.String(a)
	}
	enc.StringMap(mapKeysSorted(t.Input.Metadata), func(k string) string { return t.Input.Metadata[k] })
	enc.Uint64(t.Nonce)
	enc.Uint64(t.GasLimit)
	enc.Uint64(t.GasPrice)
	enc.Int64(t.Timestamp)
	return enc.Bytes()
}

// ComputeHash recomputes the SHA-256 hash over the canonical field
// encoding.
func (t *Transaction) ComputeHash() common.Hash {
	return crypto.Hash(t.canonicalFields())
}

// SigningData is hash || nonce_le || timestamp_le, the payload that gets
// Ed25519-signed. This is a plain concatenation, not routed through the
// length-prefixed canonical_serialise scheme canonicalFields() uses for the
// hash preimage: signing_data is its own fixed, narrower layout. The hash
// contributes its hex-encoded form (not the raw 32 bytes), matching the
// original implementation's Hash-as-hex-string convention.
func (t *Transaction) SigningData() []byte {
	hashHex := t.Hash.Hex()
	data := make([]byte, 0, len(hashHex)+16)
	data = append(data, hashHex...)
	var nonceBuf, tsBuf [8]byte
	binary.LittleEndian.PutUint64(nonceBuf[:], t.Nonce)
	binary.LittleEndian.PutUint64(tsBuf[:], uint64(t.Timestamp))
	data = append(data, nonceBuf[:]...)
	data = append(data, tsBuf[:]...)
	return data
}

// Finalize computes and sets Hash from the current fields. Call this after
// populating every field except Signature/Hash and before signing.
func (t *Transaction) Finalize() {
	t.Hash = t.ComputeHash()
}

// Sign computes SigningData and sets Signature.
func (t *Transaction) Sign(priv crypto.PrivateKey) {
	t.Signature = crypto.Sign(priv, t.SigningData())
}

// SignatureHex renders the signature as hex, matching the data model's
// "64-byte Ed25519 ... (hex)" description for serialised form.
func (t *Transaction) SignatureHex() string { return hex.EncodeToString(t.Signature) }

// Validate implements Transaction.validate: empty-field checks,
// invoke/deploy chaincode_id check, hash recomputation, and (if a
// verifying key is supplied) signature verification.
func (t *Transaction) Validate(verifyingKey crypto.PublicKey) error {
	if t.Id == "" {
		return beaconerrors.New(beaconerrors.InvalidTransaction, "empty transaction id")
	}
	if t.From == "" {
		return beaconerrors.New(beaconerrors.InvalidTransaction, "empty sender")
	}
	if len(t.Hash) == 0 || t.Hash.IsZero() {
		return beaconerrors.New(beaconerrors.InvalidTransaction, "empty hash")
	}
	if len(t.Signature) == 0 {
		return beaconerrors.New(beaconerrors.InvalidTransaction, "empty signature")
	}
	if t.Type == TxDeploy || t.Type == TxInvoke {
		if t.Input.ChaincodeId == "" {
			return beaconerrors.New(beaconerrors.InvalidTransaction, "missing chaincode_id for deploy/invoke")
		}
	}
	if recomputed := t.ComputeHash(); recomputed != t.Hash {
		return beaconerrors.New(beaconerrors.InvalidTransaction, "hash mismatch")
	}
	if verifyingKey != nil {
		if !crypto.Verify(verifyingKey, t.SigningData(), t.Signature) {
			return beaconerrors.New(beaconerrors.InvalidTransaction, "signature verification failed")
		}
	}
	return nil
}

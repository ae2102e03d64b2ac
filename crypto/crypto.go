// Package crypto implements C1's cryptographic primitives: SHA-256 hashing,
// Merkle aggregation, Ed25519 keypair generation/signing/verification, and
// the canonical deterministic serialisation used to compute hashes and
// signing data across the node.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/beacon-network/beacon/common"
)

// Key sizes, grounded on the teacher's crypto/ed25519 wrapper
// (crypto/ed25519/ed25519.go), which type-aliases the stdlib constants the
// same way.
const (
	PublicKeySize  = ed25519.PublicKeySize
	PrivateKeySize = ed25519.PrivateKeySize
	SignatureSize  = ed25519.SignatureSize
	SeedSize       = ed25519.SeedSize
)

type (
	PublicKey  = ed25519.PublicKey
	PrivateKey = ed25519.PrivateKey
)

// Hash returns the SHA-256 digest of b.
func Hash(b []byte) common.Hash {
	return sha256.Sum256(b)
}

// GenerateKeypair produces a fresh Ed25519 keypair.
func GenerateKeypair() (PublicKey, PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// PrivateKeyFromSeed derives a private key from a 32-byte seed, used when
// loading a validator key file (32 raw bytes) from disk.
func PrivateKeyFromSeed(seed []byte) PrivateKey {
	return ed25519.NewKeyFromSeed(seed)
}

// Sign produces a 64-byte Ed25519 signature over msg.
func Sign(priv PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify checks a 64-byte Ed25519 signature over msg.
func Verify(pub PublicKey, msg, sig []byte) bool {
	if len(pub) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}

// ConstantTimeEq compares two byte slices in constant time.
func ConstantTimeEq(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// MerkleRoot computes the Merkle root over an ordered list of transaction
// hashes (already-hex-decoded 32-byte hashes): pair adjacent hashes,
// duplicate the last on an odd count, SHA-256 each concatenation, repeat to
// a single root. An empty list hashes the empty input.
func MerkleRoot(hashes []common.Hash) common.Hash {
	if len(hashes) == 0 {
		return Hash(nil)
	}
	level := make([]common.Hash, len(hashes))
	copy(level, hashes)
	if len(level) == 1 {
		level = append(level, level[0])
	}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]common.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			buf := make([]byte, 0, common.HashLength*2)
			buf = append(buf, level[i][:]...)
			buf = append(buf, level[i+1][:]...)
			next = append(next, Hash(buf))
		}
		level = next
	}
	return level[0]
}

// MerkleRootHex is a convenience wrapper taking hex-encoded transaction
// hashes, matching how C1 describes the Merkle root over "transaction
// hashes" rendered as hex strings elsewhere in the data model.
func MerkleRootHex(hexHashes []string) (common.Hash, error) {
	hashes := make([]common.Hash, len(hexHashes))
	for i, h := range hexHashes {
		dh, err := common.HexToHash(h)
		if err != nil {
			return common.Hash{}, err
		}
		hashes[i] = dh
	}
	return MerkleRoot(hashes), nil
}

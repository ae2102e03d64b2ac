package node

import (
	"os"

	"github.com/beacon-network/beacon/crypto"
	beaconerrors "github.com/beacon-network/beacon/errors"
)

// LoadValidatorKey reads a 32 raw byte Ed25519 seed from path and derives
// the corresponding private key, per the on-disk layout's keys/ convention.
func LoadValidatorKey(path string) (crypto.PrivateKey, error) {
	seed, err := os.ReadFile(path)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Config, err)
	}
	if len(seed) != crypto.SeedSize {
		return nil, beaconerrors.Newf(beaconerrors.Config, "validator key file must hold %d raw seed bytes, got %d", crypto.SeedSize, len(seed))
	}
	return crypto.PrivateKeyFromSeed(seed), nil
}

// GenerateValidatorKey creates a fresh keypair and writes the 32-byte seed
// to path, returning the private key. Used by first-run bootstrapping.
func GenerateValidatorKey(path string) (crypto.PrivateKey, error) {
	_, priv, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Crypto, err)
	}
	seed := priv.Seed()
	if err := os.WriteFile(path, seed, 0o600); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Config, err)
	}
	return priv, nil
}

package crypto

import (
	"crypto/rand"

	"github.com/iov-one/tradeweave/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the first account of the IOV coin type.
const DefaultDerivationPath = "m/44'/234'/0'"

// HDSeedSize is the length of seeds created by GenHDSeed.
const HDSeedSize = 64

// GenHDSeed returns a random wallet seed.
func GenHDSeed() ([]byte, error) {
	seed := make([]byte, HDSeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, errors.Wrap(errors.ErrState, err.Error())
	}
	return seed, nil
}

// DerivePrivKeyEd25519 returns the SLIP-0010 key of seed at path. Only
// hardened paths such as "m/44'/234'/0'" exist for ed25519.
func DerivePrivKeyEd25519(seed []byte, path string) (*PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derivation path %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}

package weavetest

import (
	"encoding/hex"
	"testing"

	"github.com/iov-one/tradeweave/crypto"
	"github.com/iov-one/tradeweave/weave"
)

// NewKey returns a fresh ed25519 signer.
func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a fresh key. Its address is unique
// within a test run.
func NewCondition() weave.Condition {
	return NewKey().PublicKey().Condition()
}

// DecodeAddr takes a hex encoded address and fails the test unless it
// decodes to a valid weave address.
func DecodeAddr(t testing.TB, encoded string) weave.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode hex string: %s", err)
	}
	a := weave.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("%q is not a valid address: %s", encoded, err)
	}
	return a
}

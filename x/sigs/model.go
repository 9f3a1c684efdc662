package sigs

import (
	"github.com/iov-one/tradeweave/crypto"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/orm"
	"github.com/iov-one/tradeweave/weave"
)

// BucketName prefixes the nonces of all signers.
const BucketName = "sigs"

// maxSequenceValue is the largest integer a javascript client can
// represent exactly, 2^53 - 1.
const maxSequenceValue = (1 << 53) - 1

var _ orm.CloneableData = (*UserData)(nil)

// Validate requires a public key once the user has signed anything.
func (u *UserData) Validate() error {
	switch {
	case u.Sequence < 0:
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	case u.Sequence > 0 && u.Pubkey == nil:
		return errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey")
	}
	return nil
}

func (u *UserData) Copy() orm.CloneableData {
	cpy := *u
	return &cpy
}

// CheckAndIncrementSequence consumes the nonce expected. It fails if the
// stored nonce differs.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	return u.incrementSequence(1)
}

func (u *UserData) incrementSequence(by int64) error {
	next := u.Sequence + by
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// SetPubkey panics if a key is already set, the key of an account never
// changes.
func (u *UserData) SetPubkey(pubkey *crypto.PublicKey) {
	if u.Pubkey != nil {
		panic("cannot change pubkey of a user")
	}
	u.Pubkey = pubkey
}

// AsUser returns the UserData held by obj, or nil.
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser returns a fresh account object keyed by the address of pubkey.
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	var addr weave.Address
	if pubkey != nil {
		addr = pubkey.Address()
	}
	return orm.NewSimpleObj(addr, &UserData{Pubkey: pubkey})
}

// Bucket stores one UserData per signer address.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewUser(nil))}
}

// GetOrCreate returns a new, unsaved account for an unknown pubkey.
func (b Bucket) GetOrCreate(db weave.KVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	if err == nil && obj == nil {
		obj = NewUser(pubkey)
	}
	return obj, err
}

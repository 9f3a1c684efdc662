package escrow

import (
	"testing"

	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest"
	"github.com/iov-one/tradeweave/weavetest/assert"
)

func newTestEscrow(maker weave.Address, seed uint64) *Escrow {
	return &Escrow{
		Maker:         maker,
		Seed:          seed,
		AssetA:        "AAA",
		AssetB:        "BBB",
		ReceiveAmount: coin.NewCoinp(50, 0, "BBB"),
		Vault:         VaultAddress(maker, seed),
	}
}

func TestEscrowValidate(t *testing.T) {
	maker := weavetest.NewCondition().Address()

	cases := map[string]struct {
		mutate    func(*Escrow)
		wantField map[string]*errors.Error
	}{
		"valid escrow": {
			mutate: func(*Escrow) {},
			wantField: map[string]*errors.Error{
				"Maker":         nil,
				"AssetA":        nil,
				"AssetB":        nil,
				"ReceiveAmount": nil,
				"Vault":         nil,
			},
		},
		"vault not derived from maker and seed": {
			mutate: func(e *Escrow) { e.Vault = VaultAddress(e.Maker, e.Seed+1) },
			wantField: map[string]*errors.Error{
				"Vault": ErrVaultMismatch,
			},
		},
		"receive amount in a wrong currency": {
			mutate: func(e *Escrow) { e.ReceiveAmount = coin.NewCoinp(1, 0, "CCC") },
			wantField: map[string]*errors.Error{
				"ReceiveAmount": errors.ErrCurrency,
			},
		},
		"missing receive amount": {
			mutate: func(e *Escrow) { e.ReceiveAmount = nil },
			wantField: map[string]*errors.Error{
				"ReceiveAmount": ErrInvalidAmount,
			},
		},
		"invalid tickers": {
			mutate: func(e *Escrow) { e.AssetA = "x" },
			wantField: map[string]*errors.Error{
				"AssetA": errors.ErrCurrency,
				"AssetB": nil,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			esc := newTestEscrow(maker, 42)
			tc.mutate(esc)
			err := esc.Validate()
			for field, want := range tc.wantField {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestEscrowCopyIsIndependent(t *testing.T) {
	esc := newTestEscrow(weavetest.NewCondition().Address(), 1)
	cpy := esc.Copy().(*Escrow)
	assert.Equal(t, esc, cpy)

	cpy.ReceiveAmount.Whole = 999
	cpy.Maker[0] ^= 0xFF
	if esc.ReceiveAmount.Whole == 999 || esc.Maker.Equals(cpy.Maker) {
		t.Fatal("copy shares memory with the original")
	}
}

func TestBucketMakerIndex(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()

	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	for _, e := range []*Escrow{newTestEscrow(alice, 1), newTestEscrow(alice, 2), newTestEscrow(bob, 1)} {
		assert.Nil(t, bucket.Put(db, e.ID(), e))
	}

	var found []Escrow
	keys, err := bucket.ByIndex(db, "maker", alice, &found)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(keys))
	for _, e := range found {
		assert.Equal(t, alice, e.Maker)
	}

	var loaded Escrow
	assert.Nil(t, bucket.One(db, RecordAddress(bob, 1), &loaded))
	assert.Equal(t, newTestEscrow(bob, 1), &loaded)
}

func TestBucketVaultIndex(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()

	alice := weavetest.NewCondition().Address()
	esc := newTestEscrow(alice, 3)
	assert.Nil(t, bucket.Put(db, esc.ID(), esc))

	var found []Escrow
	keys, err := bucket.ByIndex(db, "vault", VaultAddress(alice, 3), &found)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(keys))
	assert.Equal(t, esc, &found[0])

	found = nil
	keys, err = bucket.ByIndex(db, "vault", VaultAddress(alice, 4), &found)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))

	assert.Nil(t, bucket.Delete(db, esc.ID()))
	keys, err = bucket.ByIndex(db, "vault", VaultAddress(alice, 3), &found)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))
}

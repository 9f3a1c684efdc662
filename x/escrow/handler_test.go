package escrow

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/iov-one/tradeweave/app"
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/gconf"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest"
	"github.com/iov-one/tradeweave/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/common"
)

var blockTime = time.Date(2019, 4, 1, 12, 0, 0, 0, time.UTC)

// env is a minimal execution environment: every delivered transaction runs
// in its own cache wrap that is written only on success.
type env struct {
	t    testing.TB
	db   weave.CacheableKVStore
	bank cash.BaseController
	auth *weavetest.CtxAuth
	rt   *app.Router
}

func newEnv(t testing.TB) *env {
	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())
	auth := &weavetest.CtxAuth{Key: "auth"}
	rt := app.NewRouter()
	RegisterRoutes(rt, auth, bank)
	return &env{t: t, db: db, bank: bank, auth: auth, rt: rt}
}

func (e *env) ctx(signers ...weave.Condition) weave.Context {
	ctx := weave.WithBlockTime(context.Background(), blockTime)
	return e.auth.SetConditions(ctx, signers...)
}

func (e *env) fund(addr weave.Address, c coin.Coin) {
	require.NoError(e.t, e.bank.CoinMint(e.db, addr, c))
}

// deliver runs check and deliver for given message. Check must agree with
// deliver about the outcome.
func (e *env) deliver(msg weave.Msg, signers ...weave.Condition) (*weave.DeliverResult, error) {
	tx := &weavetest.Tx{Msg: msg}

	check := e.db.CacheWrap()
	_, checkErr := e.rt.Check(e.ctx(signers...), check, tx)
	check.Discard()

	cache := e.db.CacheWrap()
	res, err := e.rt.Deliver(e.ctx(signers...), cache, tx)
	if err != nil {
		cache.Discard()
	} else {
		require.NoError(e.t, cache.Write())
	}

	if (checkErr == nil) != (err == nil) {
		e.t.Fatalf("check and deliver disagree: check %v, deliver %v", checkErr, err)
	}
	return res, err
}

func (e *env) balance(addr weave.Address, ticker string) coin.Coin {
	coins, err := e.bank.Balance(e.db, addr)
	if errors.ErrNotFound.Is(err) {
		return coin.NewCoin(0, 0, ticker)
	}
	require.NoError(e.t, err)
	return coins.Balance(ticker)
}

func (e *env) hasWallet(addr weave.Address) bool {
	_, err := e.bank.Balance(e.db, addr)
	return err == nil
}

func (e *env) isOpen(id []byte) bool {
	return NewBucket().Has(e.db, id) == nil
}

func tagValue(tags []common.KVPair, key string) (string, bool) {
	for _, t := range tags {
		if string(t.Key) == key {
			return string(t.Value), true
		}
	}
	return "", false
}

func TestReferenceScenario(t *testing.T) {
	e := newEnv(t)
	maker := weavetest.NewCondition()
	taker := weavetest.NewCondition()
	late := weavetest.NewCondition()

	e.fund(maker.Address(), coin.NewCoin(100, 0, "AAA"))
	e.fund(taker.Address(), coin.NewCoin(60, 0, "BBB"))
	e.fund(late.Address(), coin.NewCoin(60, 0, "BBB"))

	res, err := e.deliver(&MakeMsg{
		Seed:    123,
		Deposit: coin.NewCoinp(100, 0, "AAA"),
		Receive: coin.NewCoinp(50, 0, "BBB"),
	}, maker)
	require.NoError(t, err)

	id := RecordAddress(maker.Address(), 123)
	vault := VaultAddress(maker.Address(), 123)
	assert.Equal(t, []byte(id), res.Data)
	assert.Equal(t, coin.NewCoin(100, 0, "AAA"), e.balance(vault, "AAA"))
	assert.Equal(t, coin.NewCoin(0, 0, "AAA"), e.balance(maker.Address(), "AAA"))

	action, _ := tagValue(res.Tags, TagAction)
	assert.Equal(t, "make", action)
	amount, _ := tagValue(res.Tags, TagAmount)
	assert.Equal(t, coin.NewCoin(100, 0, "AAA").String(), amount)
	when, _ := tagValue(res.Tags, TagTime)
	assert.Equal(t, strconv.FormatInt(blockTime.Unix(), 10), when)

	res, err = e.deliver(&TakeMsg{EscrowID: id, Vault: vault}, taker)
	require.NoError(t, err)
	action, _ = tagValue(res.Tags, TagAction)
	assert.Equal(t, "take", action)

	assert.Equal(t, coin.NewCoin(50, 0, "BBB"), e.balance(maker.Address(), "BBB"))
	assert.Equal(t, coin.NewCoin(100, 0, "AAA"), e.balance(taker.Address(), "AAA"))
	assert.Equal(t, coin.NewCoin(10, 0, "BBB"), e.balance(taker.Address(), "BBB"))
	assert.False(t, e.isOpen(id))
	assert.False(t, e.hasWallet(vault), "vault must be closed")

	_, err = e.deliver(&TakeMsg{EscrowID: id, Vault: vault}, late)
	assert.True(t, ErrRecordNotOpen.Is(err), "got %+v", err)
	_, err = e.deliver(&RefundMsg{EscrowID: id, Vault: vault}, maker)
	assert.True(t, ErrRecordNotOpen.Is(err), "got %+v", err)

	assert.Equal(t, coin.NewCoin(60, 0, "BBB"), e.balance(late.Address(), "BBB"))
	assert.Equal(t, coin.NewCoin(0, 0, "AAA"), e.balance(late.Address(), "AAA"))
	assert.Equal(t, coin.NewCoin(50, 0, "BBB"), e.balance(maker.Address(), "BBB"))
}

func TestUnderfundedTaker(t *testing.T) {
	e := newEnv(t)
	maker := weavetest.NewCondition()
	taker := weavetest.NewCondition()

	e.fund(maker.Address(), coin.NewCoin(100, 0, "AAA"))
	e.fund(taker.Address(), coin.NewCoin(49, 999999999, "BBB"))

	_, err := e.deliver(&MakeMsg{
		Seed:    123,
		Deposit: coin.NewCoinp(100, 0, "AAA"),
		Receive: coin.NewCoinp(50, 0, "BBB"),
	}, maker)
	require.NoError(t, err)
	id := RecordAddress(maker.Address(), 123)
	vault := VaultAddress(maker.Address(), 123)

	_, err = e.deliver(&TakeMsg{EscrowID: id, Vault: vault}, taker)
	assert.True(t, ErrInsufficientFunds.Is(err), "got %+v", err)

	assert.True(t, e.isOpen(id))
	assert.Equal(t, coin.NewCoin(100, 0, "AAA"), e.balance(vault, "AAA"))
	assert.Equal(t, coin.NewCoin(49, 999999999, "BBB"), e.balance(taker.Address(), "BBB"))
	assert.Equal(t, coin.NewCoin(0, 0, "BBB"), e.balance(maker.Address(), "BBB"))

	res, err := e.deliver(&RefundMsg{EscrowID: id, Vault: vault}, maker)
	require.NoError(t, err)
	action, _ := tagValue(res.Tags, TagAction)
	assert.Equal(t, "refund", action)

	assert.Equal(t, coin.NewCoin(100, 0, "AAA"), e.balance(maker.Address(), "AAA"))
	assert.False(t, e.isOpen(id))
	assert.False(t, e.hasWallet(vault))

	_, err = e.deliver(&TakeMsg{EscrowID: id, Vault: vault}, taker)
	assert.True(t, ErrRecordNotOpen.Is(err), "got %+v", err)
}

func TestTransitionPreconditions(t *testing.T) {
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	openID := RecordAddress(alice.Address(), 1)
	openVault := VaultAddress(alice.Address(), 1)

	cases := map[string]struct {
		signers []weave.Condition
		prepare func(*env)
		msg     weave.Msg
		wantErr *errors.Error
	}{
		"maker must sign": {
			signers: []weave.Condition{bob},
			msg:     &MakeMsg{Maker: alice.Address(), Seed: 2, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")},
			wantErr: ErrUnauthorized,
		},
		"maker cannot default without a signer": {
			msg:     &MakeMsg{Seed: 2, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")},
			wantErr: ErrUnauthorized,
		},
		"maker deposit above balance": {
			signers: []weave.Condition{alice},
			msg:     &MakeMsg{Seed: 2, Deposit: coin.NewCoinp(100, 1, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")},
			wantErr: ErrInsufficientFunds,
		},
		"zero deposit": {
			signers: []weave.Condition{alice},
			msg:     &MakeMsg{Seed: 2, Deposit: coin.NewCoinp(0, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")},
			wantErr: ErrInvalidAmount,
		},
		"negative receive": {
			signers: []weave.Condition{alice},
			msg:     &MakeMsg{Seed: 2, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(0, -1, "BBB")},
			wantErr: ErrInvalidAmount,
		},
		"same asset class is rejected by default": {
			signers: []weave.Condition{alice},
			msg:     &MakeMsg{Seed: 2, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "AAA")},
			wantErr: ErrSameAssetClass,
		},
		"escrow with the same seed is open": {
			signers: []weave.Condition{alice},
			msg:     &MakeMsg{Seed: 1, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")},
			wantErr: errors.ErrDuplicate,
		},
		"vault address already holds funds": {
			signers: []weave.Condition{alice},
			prepare: func(e *env) { e.fund(VaultAddress(alice.Address(), 9), coin.NewCoin(1, 0, "CCC")) },
			msg:     &MakeMsg{Seed: 9, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")},
			wantErr: errors.ErrDuplicate,
		},
		"taker must sign": {
			signers: []weave.Condition{alice},
			msg:     &TakeMsg{EscrowID: openID, Vault: openVault, Taker: bob.Address()},
			wantErr: ErrUnauthorized,
		},
		"take with a vault of another escrow": {
			signers: []weave.Condition{bob},
			msg:     &TakeMsg{EscrowID: openID, Vault: VaultAddress(alice.Address(), 2)},
			wantErr: ErrVaultMismatch,
		},
		"take of an unknown escrow": {
			signers: []weave.Condition{bob},
			msg:     &TakeMsg{EscrowID: RecordAddress(alice.Address(), 2), Vault: VaultAddress(alice.Address(), 2)},
			wantErr: ErrRecordNotOpen,
		},
		"record check comes before authorization": {
			msg:     &TakeMsg{EscrowID: RecordAddress(alice.Address(), 2), Vault: VaultAddress(alice.Address(), 2)},
			wantErr: ErrRecordNotOpen,
		},
		"taker cannot pay": {
			signers: []weave.Condition{bob},
			prepare: func(e *env) {
				// Bob loses the funds he would pay with.
				require.NoError(e.t, e.bank.MoveCoins(e.db, bob.Address(), alice.Address(), coin.NewCoin(10, 0, "BBB")))
			},
			msg:     &TakeMsg{EscrowID: openID, Vault: openVault},
			wantErr: ErrInsufficientFunds,
		},
		"refund by someone else than the maker": {
			signers: []weave.Condition{bob},
			msg:     &RefundMsg{EscrowID: openID, Vault: openVault},
			wantErr: ErrUnauthorized,
		},
		"refund with a wrong vault": {
			signers: []weave.Condition{alice},
			msg:     &RefundMsg{EscrowID: openID, Vault: bob.Address()},
			wantErr: ErrVaultMismatch,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			e.fund(alice.Address(), coin.NewCoin(200, 0, "AAA"))
			e.fund(bob.Address(), coin.NewCoin(10, 0, "BBB"))
			_, err := e.deliver(&MakeMsg{Seed: 1, Deposit: coin.NewCoinp(100, 0, "AAA"), Receive: coin.NewCoinp(10, 0, "BBB")}, alice)
			require.NoError(t, err)
			if tc.prepare != nil {
				tc.prepare(e)
			}

			aliceA := e.balance(alice.Address(), "AAA")
			aliceB := e.balance(alice.Address(), "BBB")
			bobB := e.balance(bob.Address(), "BBB")

			_, err = e.deliver(tc.msg, tc.signers...)
			require.True(t, tc.wantErr.Is(err), "want %v, got %+v", tc.wantErr, err)

			assert.True(t, e.isOpen(openID))
			assert.Equal(t, coin.NewCoin(100, 0, "AAA"), e.balance(openVault, "AAA"))
			assert.Equal(t, aliceA, e.balance(alice.Address(), "AAA"))
			assert.Equal(t, aliceB, e.balance(alice.Address(), "BBB"))
			assert.Equal(t, bobB, e.balance(bob.Address(), "BBB"))
		})
	}
}

func TestSameAssetClassConfiguration(t *testing.T) {
	e := newEnv(t)
	owner := weavetest.NewCondition()
	maker := weavetest.NewCondition()
	e.fund(maker.Address(), coin.NewCoin(10, 0, "AAA"))

	conf := Configuration{Owner: owner.Address()}
	require.NoError(t, gconf.Save(e.db, packageName, &conf))

	sameAsset := &MakeMsg{Seed: 5, Deposit: coin.NewCoinp(5, 0, "AAA"), Receive: coin.NewCoinp(6, 0, "AAA")}
	_, err := e.deliver(sameAsset, maker)
	require.True(t, ErrSameAssetClass.Is(err), "got %+v", err)

	allow := &UpdateConfigurationMsg{Patch: &Configuration{AllowSameAssetClass: true}}
	_, err = e.deliver(allow, maker)
	require.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)
	_, err = e.deliver(allow, owner)
	require.NoError(t, err)

	var stored Configuration
	require.NoError(t, gconf.Load(e.db, packageName, &stored))
	assert.True(t, stored.AllowSameAssetClass)
	assert.Equal(t, owner.Address(), stored.Owner)

	_, err = e.deliver(sameAsset, maker)
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(5, 0, "AAA"), e.balance(VaultAddress(maker.Address(), 5), "AAA"))
}

func TestCheckDoesNotMutate(t *testing.T) {
	e := newEnv(t)
	maker := weavetest.NewCondition()
	e.fund(maker.Address(), coin.NewCoin(10, 0, "AAA"))

	msg := &MakeMsg{Seed: 1, Deposit: coin.NewCoinp(10, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")}
	res, err := e.rt.Check(e.ctx(maker), e.db, &weavetest.Tx{Msg: msg})
	require.NoError(t, err)
	assert.Equal(t, makeEscrowCost, res.GasAllocated)

	assert.False(t, e.isOpen(RecordAddress(maker.Address(), 1)))
	assert.Equal(t, coin.NewCoin(10, 0, "AAA"), e.balance(maker.Address(), "AAA"))
}

func TestRegisterQuery(t *testing.T) {
	e := newEnv(t)
	maker := weavetest.NewCondition()
	e.fund(maker.Address(), coin.NewCoin(10, 0, "AAA"))
	for seed := uint64(1); seed <= 2; seed++ {
		msg := &MakeMsg{Seed: seed, Deposit: coin.NewCoinp(1, 0, "AAA"), Receive: coin.NewCoinp(1, 0, "BBB")}
		_, err := e.deliver(msg, maker)
		require.NoError(t, err)
	}

	qr := weave.NewQueryRouter()
	RegisterQuery(qr)

	res, err := qr.Handler("/escrows").Query(e.db, weave.KeyQueryMod, RecordAddress(maker.Address(), 2))
	require.NoError(t, err)
	require.Len(t, res, 1)
	var esc Escrow
	require.NoError(t, esc.Unmarshal(res[0].Value))
	assert.Equal(t, uint64(2), esc.Seed)
	assert.Equal(t, VaultAddress(maker.Address(), 2), esc.Vault)

	res, err = qr.Handler("/escrows/maker").Query(e.db, weave.KeyQueryMod, maker.Address())
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

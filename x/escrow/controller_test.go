package escrow

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest"
	"github.com/iov-one/tradeweave/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenCloser fails to close wallets, which is the last step of a take
// or refund before the record is deleted.
type brokenCloser struct {
	cash.Controller
}

func (brokenCloser) CloseWallet(weave.KVStore, weave.Address) error {
	return errors.Wrap(errors.ErrDatabase, "broken")
}

func TestControllerDiscardsFailedTransition(t *testing.T) {
	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())
	maker := weavetest.NewCondition()
	taker := weavetest.NewCondition()
	require.NoError(t, bank.CoinMint(db, maker.Address(), coin.NewCoin(100, 0, "AAA")))
	require.NoError(t, bank.CoinMint(db, taker.Address(), coin.NewCoin(50, 0, "BBB")))

	ctx := context.Background()
	auth := &weavetest.Auth{Signers: []weave.Condition{maker, taker}}
	esc, err := NewController(auth, bank).Make(ctx, db, &MakeMsg{
		Maker:   maker.Address(),
		Seed:    123,
		Deposit: coin.NewCoinp(100, 0, "AAA"),
		Receive: coin.NewCoinp(50, 0, "BBB"),
	})
	require.NoError(t, err)

	broken := NewController(&weavetest.Auth{Signer: taker}, brokenCloser{bank})
	_, err = broken.Take(ctx, db, &TakeMsg{EscrowID: esc.ID(), Vault: esc.Vault})
	require.True(t, errors.ErrDatabase.Is(err), "got %+v", err)

	// The payment and the vault release happened before the failure and
	// must be discarded.
	assertCoins(t, bank, db, taker.Address(), coin.NewCoin(50, 0, "BBB"))
	assertCoins(t, bank, db, taker.Address(), coin.NewCoin(0, 0, "AAA"))
	assertCoins(t, bank, db, maker.Address(), coin.NewCoin(0, 0, "BBB"))
	assertCoins(t, bank, db, esc.Vault, coin.NewCoin(100, 0, "AAA"))

	got, err := NewController(auth, bank).Get(db, esc.ID())
	require.NoError(t, err)
	assert.Equal(t, esc, got)
}

func TestControllerRejectsInvalidMessage(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(&weavetest.Auth{}, cash.NewController(cash.NewBucket()))

	_, err := ctrl.Make(context.Background(), db, &MakeMsg{})
	assert.True(t, ErrInvalidAmount.Is(err), "got %+v", err)
	_, err = ctrl.Take(context.Background(), db, &TakeMsg{})
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
	_, err = ctrl.Refund(context.Background(), db, &RefundMsg{})
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}

func TestControllerSerializesCalls(t *testing.T) {
	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())
	maker := weavetest.NewCondition()
	require.NoError(t, bank.CoinMint(db, maker.Address(), coin.NewCoin(100, 0, "AAA")))
	ctrl := NewController(&weavetest.Auth{Signer: maker}, bank)

	const workers = 8
	var (
		wg   sync.WaitGroup
		errs = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ctrl.Make(context.Background(), db, &MakeMsg{
				Seed:    5,
				Deposit: coin.NewCoinp(10, 0, "AAA"),
				Receive: coin.NewCoinp(1, 0, "BBB"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var made int
	for err := range errs {
		if err == nil {
			made++
			continue
		}
		assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)
	}
	assert.Equal(t, 1, made)
	assertCoins(t, bank, db, VaultAddress(maker.Address(), 5), coin.NewCoin(10, 0, "AAA"))
	assertCoins(t, bank, db, maker.Address(), coin.NewCoin(90, 0, "AAA"))
}

// TestConservation runs many random escrows to resolution and checks that
// no funds are created or lost.
func TestConservation(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	db := store.MemStore()
	bank := cash.NewController(cash.NewBucket())

	maker := weavetest.NewCondition()
	taker := weavetest.NewCondition()
	ctrl := NewController(&weavetest.Auth{Signers: []weave.Condition{maker, taker}}, bank)
	ctx := context.Background()

	require.NoError(t, bank.CoinMint(db, maker.Address(), coin.NewCoin(1000000, 0, "AAA")))
	require.NoError(t, bank.CoinMint(db, taker.Address(), coin.NewCoin(1000000, 0, "BBB")))

	for seed := uint64(0); seed < 200; seed++ {
		deposit := coin.NewCoin(rnd.Int63n(1000)+1, rnd.Int63n(coin.FracUnit), "AAA")
		receive := coin.NewCoin(rnd.Int63n(1000), rnd.Int63n(coin.FracUnit-1)+1, "BBB")

		makerA := balanceOf(t, bank, db, maker.Address(), "AAA")
		makerB := balanceOf(t, bank, db, maker.Address(), "BBB")
		takerA := balanceOf(t, bank, db, taker.Address(), "AAA")
		takerB := balanceOf(t, bank, db, taker.Address(), "BBB")

		esc, err := ctrl.Make(ctx, db, &MakeMsg{Maker: maker.Address(), Seed: seed, Deposit: &deposit, Receive: &receive})
		require.NoError(t, err)
		assertCoins(t, bank, db, esc.Vault, deposit)

		if rnd.Intn(2) == 0 {
			_, err := ctrl.Take(ctx, db, &TakeMsg{EscrowID: esc.ID(), Vault: esc.Vault, Taker: taker.Address()})
			require.NoError(t, err)

			assertCoins(t, bank, db, taker.Address(), mustAdd(t, takerA, deposit))
			assertCoins(t, bank, db, maker.Address(), mustAdd(t, makerB, receive))
			assertCoins(t, bank, db, maker.Address(), mustSubtract(t, makerA, deposit))
			assertCoins(t, bank, db, taker.Address(), mustSubtract(t, takerB, receive))
		} else {
			_, err := ctrl.Refund(ctx, db, &RefundMsg{EscrowID: esc.ID(), Vault: esc.Vault})
			require.NoError(t, err)

			assertCoins(t, bank, db, maker.Address(), makerA)
			assertCoins(t, bank, db, maker.Address(), makerB)
			assertCoins(t, bank, db, taker.Address(), takerA)
			assertCoins(t, bank, db, taker.Address(), takerB)
		}

		_, err = ctrl.Refund(ctx, db, &RefundMsg{EscrowID: esc.ID(), Vault: esc.Vault})
		require.True(t, ErrRecordNotOpen.Is(err), "got %+v", err)
		_, err = bank.Balance(db, esc.Vault)
		require.True(t, errors.ErrNotFound.Is(err), "vault must be closed, got %+v", err)
	}
}

func balanceOf(t testing.TB, bank cash.Balancer, db weave.ReadOnlyKVStore, addr weave.Address, ticker string) coin.Coin {
	t.Helper()
	coins, err := bank.Balance(db, addr)
	if errors.ErrNotFound.Is(err) {
		return coin.NewCoin(0, 0, ticker)
	}
	require.NoError(t, err)
	return coins.Balance(ticker)
}

func assertCoins(t testing.TB, bank cash.Balancer, db weave.ReadOnlyKVStore, addr weave.Address, want coin.Coin) {
	t.Helper()
	got := balanceOf(t, bank, db, addr, want.Ticker)
	if !got.Equals(want) {
		t.Fatalf("%s: want %s, got %s", addr, want, got)
	}
}

func mustAdd(t testing.TB, a, b coin.Coin) coin.Coin {
	t.Helper()
	c, err := a.Add(b)
	require.NoError(t, err)
	return c
}

func mustSubtract(t testing.TB, a, b coin.Coin) coin.Coin {
	t.Helper()
	c, err := a.Subtract(b)
	require.NoError(t, err)
	return c
}

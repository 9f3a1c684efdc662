package coin

import (
	"testing"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weavetest/assert"
)

func mustCombineCoins(cs ...Coin) Coins {
	s, err := CombineCoins(cs...)
	if err != nil {
		panic(err)
	}
	return s
}

func TestCombineCoins(t *testing.T) {
	cases := map[string]struct {
		input   []Coin
		want    Coins
		wantErr *errors.Error
	}{
		"nothing": {
			want: Coins{},
		},
		"sorted by ticker": {
			input: []Coin{NewCoin(1, 0, "IOV"), NewCoin(2, 0, "ETH"), NewCoin(3, 0, "BTC")},
			want:  Coins{NewCoinp(3, 0, "BTC"), NewCoinp(2, 0, "ETH"), NewCoinp(1, 0, "IOV")},
		},
		"duplicates merged": {
			input: []Coin{NewCoin(1, 700000000, "ETH"), NewCoin(0, 400000000, "ETH")},
			want:  Coins{NewCoinp(2, 100000000, "ETH")},
		},
		"zero values dropped": {
			input: []Coin{NewCoin(0, 0, "ETH"), NewCoin(5, 0, "IOV"), NewCoin(-5, 0, "IOV")},
			want:  Coins{},
		},
		"invalid ticker": {
			input:   []Coin{NewCoin(1, 0, "eth")},
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := CombineCoins(tc.input...)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			if !got.Equals(tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCoinsHoldings(t *testing.T) {
	wallet := mustCombineCoins(NewCoin(10, 0, "AAA"), NewCoin(0, 5, "BBB"))

	assert.Equal(t, true, wallet.IsPositive())
	assert.Equal(t, true, wallet.Contains(NewCoin(10, 0, "AAA")))
	assert.Equal(t, false, wallet.Contains(NewCoin(10, 1, "AAA")))
	assert.Equal(t, false, wallet.Contains(NewCoin(1, 0, "CCC")))
	assert.Equal(t, true, wallet.Contains(NewCoin(0, 0, "CCC")))

	assert.Equal(t, NewCoin(0, 5, "BBB"), wallet.Balance("BBB"))
	assert.Equal(t, NewCoin(0, 0, "CCC"), wallet.Balance("CCC"))

	// Taking everything out of a ticker removes it from the set.
	drained, err := wallet.Clone().Subtract(NewCoin(0, 5, "BBB"))
	assert.Nil(t, err)
	assert.Equal(t, 1, drained.Count())
	assert.Equal(t, 2, wallet.Count())

	overdrawn, err := wallet.Clone().Subtract(NewCoin(11, 0, "AAA"))
	assert.Nil(t, err)
	assert.Equal(t, false, overdrawn.IsNonNegative())

	joint, err := wallet.Combine(mustCombineCoins(NewCoin(1, 0, "CCC"), NewCoin(1, 0, "AAA")))
	assert.Nil(t, err)
	assert.Equal(t, NewCoin(11, 0, "AAA"), joint.Balance("AAA"))
	assert.Equal(t, 3, joint.Count())
	assert.Equal(t, NewCoin(10, 0, "AAA"), wallet.Balance("AAA"))
}

func TestCoinsValidate(t *testing.T) {
	cases := map[string]struct {
		coins   Coins
		wantErr *errors.Error
	}{
		"empty":      {coins: Coins{}},
		"normalized": {coins: Coins{NewCoinp(1, 0, "AAA"), NewCoinp(1, 0, "BBB")}},
		"unsorted":   {coins: Coins{NewCoinp(1, 0, "BBB"), NewCoinp(1, 0, "AAA")}, wantErr: errors.ErrState},
		"zero coin":  {coins: Coins{NewCoinp(0, 0, "AAA")}, wantErr: errors.ErrState},
		"nil coin":   {coins: Coins{nil}, wantErr: errors.ErrEmpty},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.coins.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

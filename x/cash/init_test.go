package cash

import (
	"testing"

	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitState(t *testing.T) {
	addr := weavetest.DecodeAddr(t, "0102030405060708090021222324252627282930")

	cases := map[string]struct {
		opts    weave.Options
		isError bool
		acct    weave.Address
		wallet  coin.Coins
	}{
		"no prob if no data": {
			opts: weave.Options{},
		},
		"other data ignored": {
			opts: weave.Options{"foo": []byte(`"bar"`)},
		},
		"bad format": {
			opts:    weave.Options{"cash": []byte(`[{"coins": 123}]`)},
			isError: true,
		},
		"bad address": {
			opts:    weave.Options{"cash": []byte(`[{"address": "1234", "coins": ["1 FOO"]}]`)},
			isError: true,
		},
		"human readable coins": {
			opts: weave.Options{"cash": []byte(`[{
				"address": "0102030405060708090021222324252627282930",
				"coins": ["50.001234567 FOO", "7 BAR", "3 FOO"]
			}]`)},
			acct:   addr,
			wallet: mustCombineCoins(coin.NewCoin(53, 1234567, "FOO"), coin.NewCoin(7, 0, "BAR")),
		},
		"struct coins": {
			opts: weave.Options{"cash": []byte(`[{
				"address": "0102030405060708090021222324252627282930",
				"coins": [{"whole": 50, "fractional": 1234567, "ticker": "FOO"}]
			}]`)},
			acct:   addr,
			wallet: mustCombineCoins(coin.NewCoin(50, 1234567, "FOO")),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			err := Initializer{}.FromGenesis(tc.opts, kv)
			if tc.isError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tc.acct != nil {
				w, err := NewBucket().Get(kv, tc.acct)
				require.NoError(t, err)
				require.NotNil(t, w)
				assert.True(t, tc.wallet.Equals(w.Coins()), "%v", w.Coins())
			}
		})
	}
}

// mustCombineCoins has one return value for tests...
func mustCombineCoins(cs ...coin.Coin) coin.Coins {
	s, err := coin.CombineCoins(cs...)
	if err != nil {
		panic(err)
	}
	return s
}

package utils

import (
	"context"
	"testing"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	payment := []byte("cash:maker")
	failure := errors.Wrap(errors.ErrInsufficientAmount, "taker cannot pay")

	cases := map[string]struct {
		savepoint Savepoint
		deliver   bool
		err       error
		wantKept  bool
	}{
		"inactive savepoint keeps partial writes": {
			savepoint: NewSavepoint(),
			err:       failure,
			wantKept:  true,
		},
		"check savepoint reverts check": {
			savepoint: NewSavepoint().OnCheck(),
			err:       failure,
		},
		"check savepoint ignores deliver": {
			savepoint: NewSavepoint().OnCheck(),
			deliver:   true,
			err:       failure,
			wantKept:  true,
		},
		"deliver savepoint reverts deliver": {
			savepoint: NewSavepoint().OnDeliver(),
			deliver:   true,
			err:       failure,
		},
		"both paths can be protected": {
			savepoint: NewSavepoint().OnDeliver().OnCheck(),
			deliver:   true,
			err:       failure,
		},
		"success is written through": {
			savepoint: NewSavepoint().OnCheck().OnDeliver(),
			deliver:   true,
			wantKept:  true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			require.NoError(t, db.Set([]byte("escrow"), []byte("open")))
			handler := &writeHandler{key: payment, value: []byte("50 BBB"), err: tc.err}

			var err error
			if tc.deliver {
				_, err = tc.savepoint.Deliver(context.Background(), db, nil, handler)
			} else {
				_, err = tc.savepoint.Check(context.Background(), db, nil, handler)
			}
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.True(t, errors.ErrInsufficientAmount.Is(err), "got %+v", err)
			}

			has, err := db.Has(payment)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKept, has)

			has, err = db.Has([]byte("escrow"))
			require.NoError(t, err)
			assert.True(t, has, "existing data must never be lost")
		})
	}
}

package utils_test

import (
	"context"
	"testing"

	"github.com/iov-one/tradeweave/app"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest"
	"github.com/iov-one/tradeweave/weavetest/assert"
	"github.com/iov-one/tradeweave/x/utils"
	"github.com/tendermint/tendermint/libs/common"
)

func TestActionTagger(t *testing.T) {
	takeTx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/take"}}
	takeTag := common.KVPair{Key: []byte(utils.ActionKey), Value: []byte("escrow/take")}
	cashTag := common.KVPair{Key: []byte("cash"), Value: []byte("send")}

	cases := map[string]struct {
		handler  *weavetest.Handler
		tx       weave.Tx
		wantErr  *errors.Error
		wantTags []common.KVPair
	}{
		"message path is tagged": {
			handler:  &weavetest.Handler{},
			tx:       takeTx,
			wantTags: []common.KVPair{takeTag},
		},
		"handler tags are kept": {
			handler:  &weavetest.Handler{DeliverResult: weave.DeliverResult{Tags: []common.KVPair{cashTag}}},
			tx:       takeTx,
			wantTags: []common.KVPair{cashTag, takeTag},
		},
		"handler failure is returned": {
			handler: &weavetest.Handler{DeliverErr: errors.ErrHuman},
			tx:      takeTx,
			wantErr: errors.ErrHuman,
		},
		"unreadable message fails before the handler": {
			handler: &weavetest.Handler{},
			tx:      &weavetest.Tx{Err: errors.ErrInput},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			stack := app.ChainDecorators(utils.NewActionTagger()).WithHandler(tc.handler)

			_, err := stack.Check(context.Background(), store.MemStore(), tc.tx)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			}

			res, err := stack.Deliver(context.Background(), store.MemStore(), tc.tx)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTags, res.Tags)
		})
	}
}

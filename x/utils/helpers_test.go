package utils

import (
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest"
	"github.com/tendermint/tendermint/libs/common"
)

// writeHandler writes the key, value pair and returns the configured error.
// A nil value deletes the key.
type writeHandler struct {
	key   []byte
	value []byte
	err   error
}

var _ weave.Handler = (*writeHandler)(nil)

func (h *writeHandler) write(store weave.KVStore) error {
	if h.value == nil {
		return store.Delete(h.key)
	}
	return store.Set(h.key, h.value)
}

func (h *writeHandler) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.write(store); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, h.err
}

func (h *writeHandler) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.write(store); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, h.err
}

// writeDecorator writes the key, value pair either before or after calling
// the handler. The write happens regardless of the handler result.
type writeDecorator struct {
	key   []byte
	value []byte
	after bool
}

var _ weave.Decorator = writeDecorator{}

func (d writeDecorator) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	if !d.after {
		if err := store.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	res, err := next.Check(ctx, store, tx)
	if d.after {
		if err := store.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	return res, err
}

func (d writeDecorator) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	if !d.after {
		if err := store.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	res, err := next.Deliver(ctx, store, tx)
	if d.after {
		if err := store.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	return res, err
}

func newTagHandler(key, value []byte) weave.Handler {
	return &weavetest.Handler{
		DeliverResult: weave.DeliverResult{
			Tags: []common.KVPair{
				{Key: key, Value: value},
			},
		},
	}
}

type panicHandler struct{}

var _ weave.Handler = panicHandler{}

func (p panicHandler) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	panic("check panic")
}

func (p panicHandler) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	panic("deliver panic")
}

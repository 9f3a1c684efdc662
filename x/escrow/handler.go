package escrow

import (
	"strconv"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/gconf"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x"
	"github.com/iov-one/tradeweave/x/cash"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	// pay escrow cost up-front
	makeEscrowCost   int64 = 300
	takeEscrowCost   int64 = 100
	refundEscrowCost int64 = 0
)

// Tag keys attached to the result of every delivered escrow transition.
const (
	TagAction = "escrow.action"
	TagID     = "escrow.id"
	TagMaker  = "escrow.maker"
	TagAmount = "escrow.amount"
	TagTime   = "escrow.time"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry, auth x.Authenticator, bank cash.Controller) {
	m := newMachine(auth, bank)
	r.Handle(pathMakeMsg, MakeHandler{m})
	r.Handle(pathTakeMsg, TakeHandler{m})
	r.Handle(pathRefundMsg, RefundHandler{m})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth))
}

// RegisterQuery will register this bucket as "/escrows" and its maker
// index as "/escrows/maker".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// MakeHandler opens an escrow.
type MakeHandler struct {
	machine machine
}

var _ weave.Handler = MakeHandler{}

// Check verifies all preconditions and returns the cost of executing it.
func (h MakeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg MakeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.machine.prepareMake(ctx, db, &msg); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: makeEscrowCost}, nil
}

// Deliver stores the escrow record and moves the deposit into the vault.
// The escrow ID is returned as the result data.
func (h MakeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg MakeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := h.machine.makeEscrow(ctx, db, &msg)
	if err != nil {
		return nil, err
	}

	tags := escrowTags("make", esc)
	tags = append(tags, common.KVPair{Key: []byte(TagAmount), Value: []byte(msg.Deposit.String())})
	if now, err := weave.BlockTime(ctx); err == nil {
		tags = append(tags, common.KVPair{Key: []byte(TagTime), Value: []byte(strconv.FormatInt(now.Unix(), 10))})
	}

	weave.GetLogger(ctx).Info("escrow made",
		"escrow", weave.Address(esc.ID()), "maker", esc.Maker, "deposit", msg.Deposit.String())
	return &weave.DeliverResult{Data: esc.ID(), Tags: tags}, nil
}

// TakeHandler completes an escrow.
type TakeHandler struct {
	machine machine
}

var _ weave.Handler = TakeHandler{}

// Check verifies all preconditions and returns the cost of executing it.
func (h TakeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg TakeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, _, err := h.machine.prepareTake(ctx, db, &msg); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: takeEscrowCost}, nil
}

// Deliver pays the maker, releases the vault to the taker and deletes the
// escrow.
func (h TakeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg TakeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, taker, err := h.machine.takeEscrow(ctx, db, &msg)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("escrow taken",
		"escrow", weave.Address(msg.EscrowID), "maker", esc.Maker, "taker", taker)
	return &weave.DeliverResult{Tags: escrowTags("take", esc)}, nil
}

// RefundHandler returns the deposit to the maker.
type RefundHandler struct {
	machine machine
}

var _ weave.Handler = RefundHandler{}

// Check verifies all preconditions and returns the cost of executing it.
func (h RefundHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg RefundMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.machine.prepareRefund(ctx, db, &msg); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: refundEscrowCost}, nil
}

// Deliver releases the vault to the maker and deletes the escrow.
func (h RefundHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg RefundMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	esc, err := h.machine.refundEscrow(ctx, db, &msg)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("escrow refunded",
		"escrow", weave.Address(msg.EscrowID), "maker", esc.Maker)
	return &weave.DeliverResult{Tags: escrowTags("refund", esc)}, nil
}

func escrowTags(action string, esc *Escrow) []common.KVPair {
	return []common.KVPair{
		{Key: []byte(TagAction), Value: []byte(action)},
		{Key: []byte(TagID), Value: []byte(weave.Address(esc.ID()).String())},
		{Key: []byte(TagMaker), Value: []byte(esc.Maker.String())},
	}
}

package sigs

import (
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/orm"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x"
)

// RegisterRoutes adds the nonce bumping handler.
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r.Handle(pathBumpSequenceMsg, &bumpHandler{auth: auth, users: NewBucket()})
}

// bumpHandler lets a signer skip nonces, invalidating any transaction
// signed for them.
type bumpHandler struct {
	auth  x.Authenticator
	users Bucket
}

func (h *bumpHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.load(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h *bumpHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	obj, msg, err := h.load(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// The decorator already consumed one nonce for this transaction.
	if extra := int64(msg.Increment) - 1; extra > 0 {
		if err := AsUser(obj).incrementSequence(extra); err != nil {
			return nil, err
		}
		if err := h.users.Save(db, obj); err != nil {
			return nil, errors.Wrap(err, "save user")
		}
	}
	return &weave.DeliverResult{}, nil
}

// load returns the account of the main signer and the message.
func (h *bumpHandler) load(ctx weave.Context, db weave.KVStore, tx weave.Tx) (orm.Object, *BumpSequenceMsg, error) {
	var msg BumpSequenceMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	obj, err := h.users.Get(db, signer.Address())
	switch {
	case err != nil:
		return nil, nil, errors.Wrap(err, "bucket")
	case obj == nil:
		return nil, nil, errors.Wrap(errors.ErrNotFound, "no sequence")
	}
	if AsUser(obj).Sequence+int64(msg.Increment) > maxSequenceValue {
		return nil, nil, errors.Wrap(errors.ErrOverflow, "user sequence")
	}
	return obj, &msg, nil
}

package cash

import (
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins is a transfer from one address to another. Fails with
	// ErrInsufficientAmount if the source does not hold enough coins.
	MoveCoins(weave.KVStore, weave.Address, weave.Address, coin.Coin) error
}

// CoinMinter is an interface to create new coins.
type CoinMinter interface {
	CoinMint(weave.KVStore, weave.Address, coin.Coin) error
}

// Balancer is an interface to query the amount of coins held by an address.
type Balancer interface {
	// Balance returns all coins held by given address. It returns
	// ErrNotFound if the address has no wallet.
	Balance(weave.ReadOnlyKVStore, weave.Address) (coin.Coins, error)
}

// Controller is the functionality needed by cash.Handler and other
// extensions that are handling wallets.
type Controller interface {
	CoinMover
	CoinMinter
	Balancer

	// CloseWallet removes the wallet of given address. Only wallets
	// without funds can be closed.
	CloseWallet(weave.KVStore, weave.Address) error
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsSet
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the coins held by given address.
func (c BaseController) Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error) {
	w, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get wallet")
	}
	if w == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no wallet for %s", addr)
	}
	return w.Coins().Clone(), nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db weave.KVStore, src, dest weave.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive move: %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return errors.Wrap(err, "cannot get sender")
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrInsufficientAmount, "empty account %s", src)
	}
	if !sender.Coins().Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "want %s, have %s", amount, sender.Coins().Balance(amount.Ticker))
	}

	if err := sender.Subtract(amount); err != nil {
		return errors.Wrap(err, "cannot subtract from sender")
	}
	if err := c.bucket.Save(db, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}

	// Load recipient only after the sender was saved so that moving to
	// self is not creating coins.
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot get recipient")
	}
	if err := recipient.Add(amount); err != nil {
		return errors.Wrap(err, "cannot add to recipient")
	}
	if err := c.bucket.Save(db, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// CoinMint attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) CoinMint(db weave.KVStore, dest weave.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	if !recipient.Coins().IsNonNegative() {
		return errors.Wrap(errors.ErrInsufficientAmount, "wallet balance cannot go below zero")
	}
	return c.bucket.Save(db, recipient)
}

// CloseWallet deletes the wallet of given address. The wallet must be empty.
func (c BaseController) CloseWallet(db weave.KVStore, addr weave.Address) error {
	w, err := c.bucket.Get(db, addr)
	if err != nil {
		return errors.Wrap(err, "cannot get wallet")
	}
	if w == nil {
		return errors.Wrapf(errors.ErrNotFound, "no wallet for %s", addr)
	}
	if !w.Coins().IsEmpty() {
		return errors.Wrapf(errors.ErrState, "wallet holds %d currencies", w.Coins().Count())
	}
	return c.bucket.Delete(db, addr)
}

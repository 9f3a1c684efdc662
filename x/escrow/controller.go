package escrow

import (
	"sync"

	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/orm"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x"
	"github.com/iov-one/tradeweave/x/cash"
)

// Controller runs escrow transitions directly against a store, outside of
// the message router. Each call is applied to its own cache wrap of the
// store that is written only if the whole transition succeeds.
//
// A cache wrap does not isolate concurrent writers, so calls made through
// one controller (or its copies) are serialized. Callers that share a store
// between several controllers must serialize access themselves.
type Controller struct {
	machine machine
	mu      *sync.Mutex
}

// NewController returns a controller that authenticates parties using
// given authenticator and moves funds using given cash controller.
func NewController(auth x.Authenticator, bank cash.Controller) Controller {
	return Controller{machine: newMachine(auth, bank), mu: &sync.Mutex{}}
}

// Make opens a new escrow and returns its record.
func (c Controller) Make(ctx weave.Context, db weave.CacheableKVStore, msg *MakeMsg) (*Escrow, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	var esc *Escrow
	err := c.atomically(db, func(kv weave.KVStore) error {
		var err error
		esc, err = c.machine.makeEscrow(ctx, kv, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return esc, nil
}

// Take completes an open escrow and returns the resolved record.
func (c Controller) Take(ctx weave.Context, db weave.CacheableKVStore, msg *TakeMsg) (*Escrow, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	var esc *Escrow
	err := c.atomically(db, func(kv weave.KVStore) error {
		var err error
		esc, _, err = c.machine.takeEscrow(ctx, kv, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return esc, nil
}

// Refund returns the deposit of an open escrow to its maker and returns
// the resolved record.
func (c Controller) Refund(ctx weave.Context, db weave.CacheableKVStore, msg *RefundMsg) (*Escrow, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	var esc *Escrow
	err := c.atomically(db, func(kv weave.KVStore) error {
		var err error
		esc, err = c.machine.refundEscrow(ctx, kv, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return esc, nil
}

// Get returns the open escrow stored under given id.
func (c Controller) Get(db weave.ReadOnlyKVStore, escrowID []byte) (*Escrow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.loadOpen(db, escrowID)
}

// atomically runs fn on a cache wrap of db while holding the controller
// lock. Changes are written only when fn returns no error.
func (c Controller) atomically(db weave.CacheableKVStore, fn func(weave.KVStore) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cache := db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "cannot write escrow changes")
	}
	return nil
}

// machine implements the escrow transitions. It expects the store to be
// isolated by the caller, so that a failed transition can be discarded.
//
// All preconditions are checked by the prepare methods before any
// write happens.
type machine struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

func newMachine(auth x.Authenticator, bank cash.Controller) machine {
	return machine{
		auth:   auth,
		bucket: NewBucket(),
		bank:   bank,
	}
}

func (m machine) prepareMake(ctx weave.Context, db weave.KVStore, msg *MakeMsg) (*Escrow, error) {
	maker, err := m.signerOrDefault(ctx, msg.Maker, "maker")
	if err != nil {
		return nil, err
	}

	if msg.Deposit.Ticker == msg.Receive.Ticker {
		conf, err := loadConf(db)
		if err != nil {
			return nil, err
		}
		if !conf.AllowSameAssetClass {
			return nil, errors.Wrapf(ErrSameAssetClass, "%s for %s", msg.Deposit.Ticker, msg.Receive.Ticker)
		}
	}

	esc := &Escrow{
		Maker:         maker,
		Seed:          msg.Seed,
		AssetA:        msg.Deposit.Ticker,
		AssetB:        msg.Receive.Ticker,
		ReceiveAmount: msg.Receive.Clone(),
		Vault:         VaultAddress(maker, msg.Seed),
	}

	switch err := m.bucket.Has(db, esc.ID()); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "escrow %s is open", weave.Address(esc.ID()))
	case !errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(err, "cannot check escrow")
	}
	funds, err := m.balance(db, esc.Vault)
	if err != nil {
		return nil, err
	}
	if !funds.IsEmpty() {
		return nil, errors.Wrapf(errors.ErrDuplicate, "vault %s holds funds", esc.Vault)
	}

	if err := m.requireFunds(db, maker, *msg.Deposit); err != nil {
		return nil, err
	}
	return esc, nil
}

func (m machine) makeEscrow(ctx weave.Context, db weave.KVStore, msg *MakeMsg) (*Escrow, error) {
	esc, err := m.prepareMake(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	if err := m.bucket.Put(db, esc.ID(), esc); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	if err := m.move(db, esc.Maker, esc.Vault, *msg.Deposit); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return esc, nil
}

func (m machine) prepareTake(ctx weave.Context, db weave.KVStore, msg *TakeMsg) (*Escrow, weave.Address, error) {
	esc, err := m.loadOpen(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	taker, err := m.signerOrDefault(ctx, msg.Taker, "taker")
	if err != nil {
		return nil, nil, err
	}
	if err := verifyVault(msg.EscrowID, msg.Vault, esc); err != nil {
		return nil, nil, err
	}
	if err := m.requireFunds(db, taker, *esc.ReceiveAmount); err != nil {
		return nil, nil, err
	}
	return esc, taker, nil
}

func (m machine) takeEscrow(ctx weave.Context, db weave.KVStore, msg *TakeMsg) (*Escrow, weave.Address, error) {
	esc, taker, err := m.prepareTake(ctx, db, msg)
	if err != nil {
		return nil, nil, err
	}
	if err := m.move(db, taker, esc.Maker, *esc.ReceiveAmount); err != nil {
		return nil, nil, errors.Wrap(err, "payment")
	}
	if err := m.resolve(db, msg.EscrowID, esc, taker); err != nil {
		return nil, nil, err
	}
	return esc, taker, nil
}

func (m machine) prepareRefund(ctx weave.Context, db weave.KVStore, msg *RefundMsg) (*Escrow, error) {
	esc, err := m.loadOpen(db, msg.EscrowID)
	if err != nil {
		return nil, err
	}
	if !m.auth.HasAddress(ctx, esc.Maker) {
		return nil, errors.Wrap(ErrUnauthorized, "maker signature missing")
	}
	if err := verifyVault(msg.EscrowID, msg.Vault, esc); err != nil {
		return nil, err
	}
	return esc, nil
}

func (m machine) refundEscrow(ctx weave.Context, db weave.KVStore, msg *RefundMsg) (*Escrow, error) {
	esc, err := m.prepareRefund(ctx, db, msg)
	if err != nil {
		return nil, err
	}
	if err := m.resolve(db, msg.EscrowID, esc, esc.Maker); err != nil {
		return nil, err
	}
	return esc, nil
}

// resolve moves everything held by the vault to given beneficiary, closes
// the vault and deletes the escrow record.
func (m machine) resolve(db weave.KVStore, escrowID []byte, esc *Escrow, beneficiary weave.Address) error {
	funds, err := m.balance(db, esc.Vault)
	if err != nil {
		return err
	}
	if funds.IsEmpty() {
		return errors.Wrapf(errors.ErrState, "vault %s is empty", esc.Vault)
	}
	for _, c := range funds {
		if err := m.move(db, esc.Vault, beneficiary, *c); err != nil {
			return errors.Wrap(err, "release")
		}
	}
	if err := m.bank.CloseWallet(db, esc.Vault); err != nil {
		return errors.Wrap(err, "cannot close vault")
	}
	if err := m.bucket.Delete(db, escrowID); err != nil {
		return errors.Wrap(err, "cannot delete escrow")
	}
	return nil
}

func (m machine) loadOpen(db weave.ReadOnlyKVStore, escrowID []byte) (*Escrow, error) {
	var esc Escrow
	switch err := m.bucket.One(db, escrowID, &esc); {
	case err == nil:
		return &esc, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrRecordNotOpen, "escrow %s", weave.Address(escrowID))
	default:
		return nil, errors.Wrap(err, "cannot load escrow")
	}
}

// signerOrDefault returns given address if it signed the transaction. A nil
// address defaults to the main signer.
func (m machine) signerOrDefault(ctx weave.Context, addr weave.Address, role string) (weave.Address, error) {
	if addr == nil {
		signer := x.MainSigner(ctx, m.auth)
		if signer == nil {
			return nil, errors.Wrapf(ErrUnauthorized, "%s signature missing", role)
		}
		return signer.Address(), nil
	}
	if !m.auth.HasAddress(ctx, addr) {
		return nil, errors.Wrapf(ErrUnauthorized, "%s signature missing", role)
	}
	return addr, nil
}

// balance returns the funds held by given address. A missing wallet holds
// nothing.
func (m machine) balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error) {
	funds, err := m.bank.Balance(db, addr)
	switch {
	case err == nil:
		return funds, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, errors.Wrap(err, "cannot get balance")
	}
}

func (m machine) requireFunds(db weave.ReadOnlyKVStore, owner weave.Address, amount coin.Coin) error {
	funds, err := m.balance(db, owner)
	if err != nil {
		return err
	}
	if !funds.Contains(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "%s wants %s, has %s", owner, amount, funds.Balance(amount.Ticker))
	}
	return nil
}

func (m machine) move(db weave.KVStore, src, dst weave.Address, amount coin.Coin) error {
	err := m.bank.MoveCoins(db, src, dst, amount)
	if errors.ErrInsufficientAmount.Is(err) {
		return errors.Wrap(ErrInsufficientFunds, err.Error())
	}
	return err
}

// verifyVault re-derives the record and vault addresses from the stored
// maker and seed and compares them with the provided ones.
func verifyVault(escrowID []byte, vault weave.Address, esc *Escrow) error {
	if !RecordAddress(esc.Maker, esc.Seed).Equals(escrowID) {
		return errors.Wrapf(ErrVaultMismatch, "escrow %s not derived from maker and seed", weave.Address(escrowID))
	}
	derived := VaultAddress(esc.Maker, esc.Seed)
	if !derived.Equals(vault) {
		return errors.Wrapf(ErrVaultMismatch, "want %s, got %s", derived, vault)
	}
	if !derived.Equals(esc.Vault) {
		return errors.Wrapf(ErrVaultMismatch, "record vault %s", esc.Vault)
	}
	return nil
}

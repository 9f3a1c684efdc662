package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/orm"
	"github.com/iov-one/tradeweave/weave"
)

// BucketName prefixes all wallets in the store.
const BucketName = "cash"

// Holdings is the persisted content of a wallet, a normalized coin set.
type Holdings struct {
	Coins []*coin.Coin `protobuf:"bytes,1,rep,name=coins,proto3" json:"coins"`
}

var _ orm.CloneableData = (*Holdings)(nil)

func (h *Holdings) Validate() error {
	return coin.Coins(h.Coins).Validate()
}

func (h *Holdings) Copy() orm.CloneableData {
	return &Holdings{Coins: coin.Coins(h.Coins).Clone()}
}

type holdingsWire Holdings

func (m *holdingsWire) Reset()         { *m = holdingsWire{} }
func (m *holdingsWire) String() string { return proto.CompactTextString(m) }
func (*holdingsWire) ProtoMessage()    {}

func (h *Holdings) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*holdingsWire)(h))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal wallet: %s", err)
	}
	return raw, nil
}

func (h *Holdings) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*holdingsWire)(h)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal wallet: %s", err)
	}
	return nil
}

// Wallet binds holdings to the address that owns them. Escrow vaults are
// ordinary wallets owned by a derived address.
type Wallet struct {
	addr     weave.Address
	holdings *Holdings
}

var _ orm.Object = (*Wallet)(nil)

// NewWallet returns an empty wallet.
func NewWallet(addr weave.Address) *Wallet {
	return &Wallet{addr: addr, holdings: new(Holdings)}
}

// WalletWith returns a wallet holding the normalized sum of coins.
func WalletWith(addr weave.Address, coins ...*coin.Coin) (*Wallet, error) {
	w := NewWallet(addr)
	if err := w.Concat(coins); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wallet) Key() []byte {
	return w.addr
}

func (w *Wallet) SetKey(key []byte) {
	w.addr = key
}

func (w *Wallet) Value() weave.Persistent {
	return w.holdings
}

func (w *Wallet) Validate() error {
	if err := w.addr.Validate(); err != nil {
		return errors.Wrap(err, "wallet address")
	}
	return w.holdings.Validate()
}

func (w *Wallet) Clone() orm.Object {
	cpy := &Wallet{holdings: w.holdings.Copy().(*Holdings)}
	if len(w.addr) != 0 {
		cpy.addr = append(weave.Address(nil), w.addr...)
	}
	return cpy
}

// Coins returns the wallet content. Modify it only through the wallet.
func (w *Wallet) Coins() coin.Coins {
	return coin.Coins(w.holdings.Coins)
}

func (w *Wallet) Add(c coin.Coin) error {
	cs, err := w.Coins().Add(c)
	if err != nil {
		return err
	}
	w.holdings.Coins = cs
	return nil
}

func (w *Wallet) Subtract(c coin.Coin) error {
	return w.Add(c.Negative())
}

// Concat adds all coins to the wallet.
func (w *Wallet) Concat(coins coin.Coins) error {
	sum, err := w.Coins().Combine(coins)
	if err != nil {
		return err
	}
	w.holdings.Coins = sum
	return nil
}

// Bucket stores wallets by address.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewWallet(nil))}
}

// Get returns nil without an error if addr has no wallet.
func (b Bucket) Get(db weave.ReadOnlyKVStore, addr weave.Address) (*Wallet, error) {
	obj, err := b.Bucket.Get(db, addr)
	if err != nil || obj == nil {
		return nil, err
	}
	w, ok := obj.(*Wallet)
	if !ok {
		return nil, errors.WithType(errors.ErrType, obj)
	}
	return w, nil
}

func (b Bucket) Save(db weave.KVStore, w *Wallet) error {
	return b.Bucket.Save(db, w)
}

// GetOrCreate returns an empty wallet if addr has none yet. The new
// wallet is not saved.
func (b Bucket) GetOrCreate(db weave.KVStore, addr weave.Address) (*Wallet, error) {
	w, err := b.Get(db, addr)
	if err != nil || w != nil {
		return w, err
	}
	return NewWallet(addr), nil
}

package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/orm"
	"github.com/iov-one/tradeweave/weave"
)

// BucketName is where escrow records are stored.
const BucketName = "escrow"

// Escrow is an open offer to swap the deposit held by the vault for the
// receive amount. It is stored under RecordAddress(Maker, Seed).
type Escrow struct {
	// Maker deposited asset A and will receive asset B.
	Maker weave.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker,omitempty"`
	// Seed is chosen by the maker and only used for address derivation.
	Seed uint64 `protobuf:"varint,2,opt,name=seed,proto3" json:"seed,omitempty"`
	// AssetA is the ticker of the deposited currency.
	AssetA string `protobuf:"bytes,3,opt,name=asset_a,json=assetA,proto3" json:"asset_a,omitempty"`
	// AssetB is the ticker of the requested currency.
	AssetB        string     `protobuf:"bytes,4,opt,name=asset_b,json=assetB,proto3" json:"asset_b,omitempty"`
	ReceiveAmount *coin.Coin `protobuf:"bytes,5,opt,name=receive_amount,json=receiveAmount,proto3" json:"receive_amount,omitempty"`
	// Vault is the address of the wallet holding the deposit.
	Vault weave.Address `protobuf:"bytes,6,opt,name=vault,proto3" json:"vault,omitempty"`
}

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow is valid.
func (e *Escrow) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Maker", e.Maker.Validate())
	if !coin.IsCC(e.AssetA) {
		errs = errors.Append(errs, errors.Field("AssetA", errors.ErrCurrency, "invalid ticker %q", e.AssetA))
	}
	if !coin.IsCC(e.AssetB) {
		errs = errors.Append(errs, errors.Field("AssetB", errors.ErrCurrency, "invalid ticker %q", e.AssetB))
	}
	switch {
	case coin.IsEmpty(e.ReceiveAmount) || !e.ReceiveAmount.IsPositive():
		errs = errors.Append(errs, errors.Field("ReceiveAmount", ErrInvalidAmount, "must be positive"))
	case e.ReceiveAmount.Ticker != e.AssetB:
		errs = errors.Append(errs, errors.Field("ReceiveAmount", errors.ErrCurrency, "want %s, got %s", e.AssetB, e.ReceiveAmount.Ticker))
	default:
		errs = errors.AppendField(errs, "ReceiveAmount", e.ReceiveAmount.Validate())
	}
	if !VaultAddress(e.Maker, e.Seed).Equals(e.Vault) {
		errs = errors.Append(errs, errors.Field("Vault", ErrVaultMismatch, "not derived from maker and seed"))
	}
	return errs
}

// Copy returns a deep copy of this escrow.
func (e *Escrow) Copy() orm.CloneableData {
	return &Escrow{
		Maker:         copyAddress(e.Maker),
		Seed:          e.Seed,
		AssetA:        e.AssetA,
		AssetB:        e.AssetB,
		ReceiveAmount: e.ReceiveAmount.Clone(),
		Vault:         copyAddress(e.Vault),
	}
}

// ID returns the key this escrow is stored under.
func (e *Escrow) ID() []byte {
	return RecordAddress(e.Maker, e.Seed)
}

type escrowWire Escrow

func (m *escrowWire) Reset()         { *m = escrowWire{} }
func (m *escrowWire) String() string { return proto.CompactTextString(m) }
func (*escrowWire) ProtoMessage()    {}

// Marshal serializes the escrow.
func (e *Escrow) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*escrowWire)(e))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal escrow: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized escrow.
func (e *Escrow) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*escrowWire)(e)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal escrow: %s", err)
	}
	return nil
}

func copyAddress(a weave.Address) weave.Address {
	if a == nil {
		return nil
	}
	return append(weave.Address(nil), a...)
}

// NewBucket returns a bucket storing escrow records. Records can be looked
// up by their maker using the "maker" index and by their vault using the
// unique "vault" index.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{},
		orm.WithIndex("maker", idxMaker, false),
		orm.WithIndex("vault", idxVault, true),
	)
}

func idxVault(obj orm.Object) ([]byte, error) {
	esc, err := asEscrow(obj)
	if err != nil {
		return nil, err
	}
	return esc.Vault, nil
}

func idxMaker(obj orm.Object) ([]byte, error) {
	esc, err := asEscrow(obj)
	if err != nil {
		return nil, err
	}
	return esc.Maker, nil
}

func asEscrow(obj orm.Object) (*Escrow, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	esc, ok := obj.Value().(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only take index of Escrow, got %T", obj.Value())
	}
	return esc, nil
}

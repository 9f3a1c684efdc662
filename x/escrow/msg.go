package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

const (
	pathMakeMsg                = "escrow/make"
	pathTakeMsg                = "escrow/take"
	pathRefundMsg              = "escrow/refund"
	pathUpdateConfigurationMsg = "escrow/update_configuration"
)

var (
	_ weave.Msg = (*MakeMsg)(nil)
	_ weave.Msg = (*TakeMsg)(nil)
	_ weave.Msg = (*RefundMsg)(nil)
	_ weave.Msg = (*UpdateConfigurationMsg)(nil)
)

// MakeMsg opens an escrow: the deposit is moved from the maker into a
// vault and the receive amount is what the maker wants in return.
type MakeMsg struct {
	// Maker defaults to the main signer when not set.
	Maker   weave.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker,omitempty"`
	Seed    uint64        `protobuf:"varint,2,opt,name=seed,proto3" json:"seed,omitempty"`
	Deposit *coin.Coin    `protobuf:"bytes,3,opt,name=deposit,proto3" json:"deposit,omitempty"`
	Receive *coin.Coin    `protobuf:"bytes,4,opt,name=receive,proto3" json:"receive,omitempty"`
}

// Path returns the routing path for this message.
func (MakeMsg) Path() string {
	return pathMakeMsg
}

// Validate makes sure that this is sensible.
func (m *MakeMsg) Validate() error {
	var errs error
	if m.Maker != nil {
		errs = errors.AppendField(errs, "Maker", m.Maker.Validate())
	}
	errs = errors.Append(errs, validateAmount("Deposit", m.Deposit))
	errs = errors.Append(errs, validateAmount("Receive", m.Receive))
	return errs
}

func validateAmount(field string, c *coin.Coin) error {
	if coin.IsEmpty(c) || !c.IsPositive() {
		return errors.Field(field, ErrInvalidAmount, "must be positive")
	}
	return errors.Field(field, c.Validate(), "invalid amount")
}

type makeMsgWire MakeMsg

func (m *makeMsgWire) Reset()         { *m = makeMsgWire{} }
func (m *makeMsgWire) String() string { return proto.CompactTextString(m) }
func (*makeMsgWire) ProtoMessage()    {}

// Marshal serializes the message.
func (m *MakeMsg) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*makeMsgWire)(m))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal make: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized message.
func (m *MakeMsg) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*makeMsgWire)(m)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal make: %s", err)
	}
	return nil
}

// TakeMsg completes an open escrow. The taker pays the receive amount to
// the maker and gets everything held by the vault.
type TakeMsg struct {
	EscrowID []byte        `protobuf:"bytes,1,opt,name=escrow_id,json=escrowId,proto3" json:"escrow_id,omitempty"`
	Vault    weave.Address `protobuf:"bytes,2,opt,name=vault,proto3" json:"vault,omitempty"`
	// Taker defaults to the main signer when not set.
	Taker weave.Address `protobuf:"bytes,3,opt,name=taker,proto3" json:"taker,omitempty"`
}

// Path returns the routing path for this message.
func (TakeMsg) Path() string {
	return pathTakeMsg
}

// Validate makes sure that this is sensible.
func (m *TakeMsg) Validate() error {
	errs := validateIDs(m.EscrowID, m.Vault)
	if m.Taker != nil {
		errs = errors.AppendField(errs, "Taker", m.Taker.Validate())
	}
	return errs
}

func validateIDs(escrowID []byte, vault weave.Address) error {
	var errs error
	errs = errors.AppendField(errs, "EscrowID", weave.Address(escrowID).Validate())
	errs = errors.AppendField(errs, "Vault", vault.Validate())
	return errs
}

type takeMsgWire TakeMsg

func (m *takeMsgWire) Reset()         { *m = takeMsgWire{} }
func (m *takeMsgWire) String() string { return proto.CompactTextString(m) }
func (*takeMsgWire) ProtoMessage()    {}

// Marshal serializes the message.
func (m *TakeMsg) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*takeMsgWire)(m))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal take: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized message.
func (m *TakeMsg) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*takeMsgWire)(m)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal take: %s", err)
	}
	return nil
}

// RefundMsg returns the deposit of an open escrow to its maker. It must be
// signed by the maker.
type RefundMsg struct {
	EscrowID []byte        `protobuf:"bytes,1,opt,name=escrow_id,json=escrowId,proto3" json:"escrow_id,omitempty"`
	Vault    weave.Address `protobuf:"bytes,2,opt,name=vault,proto3" json:"vault,omitempty"`
}

// Path returns the routing path for this message.
func (RefundMsg) Path() string {
	return pathRefundMsg
}

// Validate makes sure that this is sensible.
func (m *RefundMsg) Validate() error {
	return validateIDs(m.EscrowID, m.Vault)
}

type refundMsgWire RefundMsg

func (m *refundMsgWire) Reset()         { *m = refundMsgWire{} }
func (m *refundMsgWire) String() string { return proto.CompactTextString(m) }
func (*refundMsgWire) ProtoMessage()    {}

// Marshal serializes the message.
func (m *RefundMsg) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*refundMsgWire)(m))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal refund: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized message.
func (m *RefundMsg) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*refundMsgWire)(m)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal refund: %s", err)
	}
	return nil
}

// UpdateConfigurationMsg patches the escrow configuration. Zero value
// fields of the patch are ignored.
type UpdateConfigurationMsg struct {
	Patch *Configuration `protobuf:"bytes,1,opt,name=patch,proto3" json:"patch,omitempty"`
}

// Path returns the routing path for this message.
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

// Validate makes sure that this is sensible.
func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "required")
	}
	if m.Patch.Owner != nil {
		return errors.Field("Patch.Owner", m.Patch.Owner.Validate(), "invalid owner")
	}
	return nil
}

type updateConfigurationMsgWire UpdateConfigurationMsg

func (m *updateConfigurationMsgWire) Reset()         { *m = updateConfigurationMsgWire{} }
func (m *updateConfigurationMsgWire) String() string { return proto.CompactTextString(m) }
func (*updateConfigurationMsgWire) ProtoMessage()    {}

// Marshal serializes the message.
func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*updateConfigurationMsgWire)(m))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal update configuration: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized message.
func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*updateConfigurationMsgWire)(m)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal update configuration: %s", err)
	}
	return nil
}

package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x/cash"
	"github.com/iov-one/tradeweave/x/escrow"
	"github.com/iov-one/tradeweave/x/sigs"
)

// Tx carries exactly one message together with the signatures that
// authorize it. Every supported message has its own field.
type Tx struct {
	Signatures                   []*sigs.StdSignature           `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`
	SendMsg                      *cash.SendMsg                  `protobuf:"bytes,51,opt,name=send_msg,proto3" json:"send_msg,omitempty"`
	MakeEscrowMsg                *escrow.MakeMsg                `protobuf:"bytes,52,opt,name=make_escrow_msg,proto3" json:"make_escrow_msg,omitempty"`
	TakeEscrowMsg                *escrow.TakeMsg                `protobuf:"bytes,53,opt,name=take_escrow_msg,proto3" json:"take_escrow_msg,omitempty"`
	RefundEscrowMsg              *escrow.RefundMsg              `protobuf:"bytes,54,opt,name=refund_escrow_msg,proto3" json:"refund_escrow_msg,omitempty"`
	UpdateEscrowConfigurationMsg *escrow.UpdateConfigurationMsg `protobuf:"bytes,55,opt,name=update_escrow_configuration_msg,proto3" json:"update_escrow_configuration_msg,omitempty"`
	BumpSequenceMsg              *sigs.BumpSequenceMsg          `protobuf:"bytes,56,opt,name=bump_sequence_msg,proto3" json:"bump_sequence_msg,omitempty"`
}

// make sure tx fulfills all interfaces
var _ weave.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewTx wraps a message into a transaction, putting it in the field of
// its type.
func NewTx(msg weave.Msg) (*Tx, error) {
	var tx Tx
	switch m := msg.(type) {
	case *cash.SendMsg:
		tx.SendMsg = m
	case *escrow.MakeMsg:
		tx.MakeEscrowMsg = m
	case *escrow.TakeMsg:
		tx.TakeEscrowMsg = m
	case *escrow.RefundMsg:
		tx.RefundEscrowMsg = m
	case *escrow.UpdateConfigurationMsg:
		tx.UpdateEscrowConfigurationMsg = m
	case *sigs.BumpSequenceMsg:
		tx.BumpSequenceMsg = m
	default:
		return nil, errors.Wrapf(errors.ErrType, "unsupported message %T", msg)
	}
	return &tx, nil
}

// GetMsg returns the single message carried by the transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	var msgs []weave.Msg
	if tx.SendMsg != nil {
		msgs = append(msgs, tx.SendMsg)
	}
	if tx.MakeEscrowMsg != nil {
		msgs = append(msgs, tx.MakeEscrowMsg)
	}
	if tx.TakeEscrowMsg != nil {
		msgs = append(msgs, tx.TakeEscrowMsg)
	}
	if tx.RefundEscrowMsg != nil {
		msgs = append(msgs, tx.RefundEscrowMsg)
	}
	if tx.UpdateEscrowConfigurationMsg != nil {
		msgs = append(msgs, tx.UpdateEscrowConfigurationMsg)
	}
	if tx.BumpSequenceMsg != nil {
		msgs = append(msgs, tx.BumpSequenceMsg)
	}

	switch len(msgs) {
	case 0:
		return nil, errors.Wrap(errors.ErrInput, "transaction carries no message")
	case 1:
		return msgs[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "transaction carries %d messages", len(msgs))
	}
}

// GetSignatures returns the signatures attached to the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the serialized transaction without signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := *tx
	unsigned.Signatures = nil
	return unsigned.Marshal()
}

type txWire Tx

func (m *txWire) Reset()         { *m = txWire{} }
func (m *txWire) String() string { return proto.CompactTextString(m) }
func (*txWire) ProtoMessage()    {}

// Marshal serializes the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*txWire)(tx))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal tx: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized transaction.
func (tx *Tx) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*txWire)(tx)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal tx: %s", err)
	}
	return nil
}

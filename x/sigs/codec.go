package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/crypto"
	"github.com/iov-one/tradeweave/errors"
)

// UserData is the state stored for every signer. Sequence is the nonce
// that the next signature of this signer must carry.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

// StdSignature represents the signature, the identity of the signer (the
// Pubkey), and a sequence number to prevent replay attacks.
type StdSignature struct {
	Sequence  int64             `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Pubkey    *crypto.PublicKey `protobuf:"bytes,2,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

// BumpSequenceMsg increments the sequence of the main signer by the given
// value. It allows to invalidate transactions signed but not yet submitted.
type BumpSequenceMsg struct {
	Increment uint32 `protobuf:"varint,1,opt,name=increment,proto3" json:"increment,omitempty"`
}

// GetSequence returns the sequence, nil safe.
func (s *StdSignature) GetSequence() int64 {
	if s == nil {
		return 0
	}
	return s.Sequence
}

type (
	userDataWire        UserData
	stdSignatureWire    StdSignature
	bumpSequenceMsgWire BumpSequenceMsg
)

func (m *userDataWire) Reset()         { *m = userDataWire{} }
func (m *userDataWire) String() string { return proto.CompactTextString(m) }
func (*userDataWire) ProtoMessage()    {}

func (m *stdSignatureWire) Reset()         { *m = stdSignatureWire{} }
func (m *stdSignatureWire) String() string { return proto.CompactTextString(m) }
func (*stdSignatureWire) ProtoMessage()    {}

func (m *bumpSequenceMsgWire) Reset()         { *m = bumpSequenceMsgWire{} }
func (m *bumpSequenceMsgWire) String() string { return proto.CompactTextString(m) }
func (*bumpSequenceMsgWire) ProtoMessage()    {}

func (u *UserData) Marshal() ([]byte, error)     { return marshal((*userDataWire)(u)) }
func (u *UserData) Unmarshal(raw []byte) error   { return unmarshal(raw, (*userDataWire)(u)) }
func (s *StdSignature) Marshal() ([]byte, error) { return marshal((*stdSignatureWire)(s)) }
func (s *StdSignature) Unmarshal(raw []byte) error {
	return unmarshal(raw, (*stdSignatureWire)(s))
}
func (m *BumpSequenceMsg) Marshal() ([]byte, error) { return marshal((*bumpSequenceMsgWire)(m)) }
func (m *BumpSequenceMsg) Unmarshal(raw []byte) error {
	return unmarshal(raw, (*bumpSequenceMsgWire)(m))
}

func marshal(m proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal %T: %s", m, err)
	}
	return raw, nil
}

func unmarshal(raw []byte, m proto.Message) error {
	if err := proto.Unmarshal(raw, m); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal %T: %s", m, err)
	}
	return nil
}

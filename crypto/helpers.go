package crypto

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

// ExtensionName is used for the Permissions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() weave.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey holds the raw bytes of a public key. Only ed25519 is supported.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// PrivateKey holds the raw bytes of a private key. Only ed25519 is
// supported.
type PrivateKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// Signature holds the raw bytes of a signature created with a PrivateKey.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// GetEd25519 returns the raw signature bytes, nil safe.
func (s *Signature) GetEd25519() []byte {
	if s == nil {
		return nil
	}
	return s.Ed25519
}

// GetEd25519 returns the raw private key bytes, nil safe.
func (p *PrivateKey) GetEd25519() []byte {
	if p == nil {
		return nil
	}
	return p.Ed25519
}

// Address returns the address of the condition this key signs for.
func (p *PublicKey) Address() weave.Address {
	c := p.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}

// Wire representations. These types carry no methods of the originals so
// that the protobuf library serializes the fields instead of calling back
// into Marshal.
type (
	publicKeyWire  PublicKey
	privateKeyWire PrivateKey
	signatureWire  Signature
)

func (m *publicKeyWire) Reset()         { *m = publicKeyWire{} }
func (m *publicKeyWire) String() string { return proto.CompactTextString(m) }
func (*publicKeyWire) ProtoMessage()    {}

func (m *privateKeyWire) Reset()         { *m = privateKeyWire{} }
func (m *privateKeyWire) String() string { return proto.CompactTextString(m) }
func (*privateKeyWire) ProtoMessage()    {}

func (m *signatureWire) Reset()         { *m = signatureWire{} }
func (m *signatureWire) String() string { return proto.CompactTextString(m) }
func (*signatureWire) ProtoMessage()    {}

// Marshal serializes the public key.
func (p *PublicKey) Marshal() ([]byte, error) {
	return marshal((*publicKeyWire)(p))
}

// Unmarshal deserializes the public key.
func (p *PublicKey) Unmarshal(raw []byte) error {
	return unmarshal(raw, (*publicKeyWire)(p))
}

// Marshal serializes the private key.
func (p *PrivateKey) Marshal() ([]byte, error) {
	return marshal((*privateKeyWire)(p))
}

// Unmarshal deserializes the private key.
func (p *PrivateKey) Unmarshal(raw []byte) error {
	return unmarshal(raw, (*privateKeyWire)(p))
}

// Marshal serializes the signature.
func (s *Signature) Marshal() ([]byte, error) {
	return marshal((*signatureWire)(s))
}

// Unmarshal deserializes the signature.
func (s *Signature) Unmarshal(raw []byte) error {
	return unmarshal(raw, (*signatureWire)(s))
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

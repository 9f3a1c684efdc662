package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/gconf"
	"github.com/iov-one/tradeweave/weave"
)

const packageName = "escrow"

// Configuration holds the escrow policy that can be changed at runtime by
// its owner.
type Configuration struct {
	// Owner is allowed to update the configuration.
	Owner weave.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	// AllowSameAssetClass permits offers that deposit and receive the
	// same currency.
	AllowSameAssetClass bool `protobuf:"varint,2,opt,name=allow_same_asset_class,json=allowSameAssetClass,proto3" json:"allow_same_asset_class,omitempty"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// GetOwner returns the address allowed to update this configuration.
func (c *Configuration) GetOwner() weave.Address {
	if c == nil {
		return nil
	}
	return c.Owner
}

// Validate ensures the configuration is valid.
func (c *Configuration) Validate() error {
	return errors.Field("Owner", c.Owner.Validate(), "invalid owner")
}

type configurationWire Configuration

func (m *configurationWire) Reset()         { *m = configurationWire{} }
func (m *configurationWire) String() string { return proto.CompactTextString(m) }
func (*configurationWire) ProtoMessage()    {}

// Marshal serializes the configuration.
func (c *Configuration) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*configurationWire)(c))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal configuration: %s", err)
	}
	return raw, nil
}

// Unmarshal loads a serialized configuration.
func (c *Configuration) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*configurationWire)(c)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal configuration: %s", err)
	}
	return nil
}

// loadConf returns the current escrow configuration. When none was stored,
// the zero configuration is returned and same asset class offers are
// rejected.
func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{}, nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}

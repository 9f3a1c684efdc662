package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/errors"
)

// counter is a minimal model used to exercise the buckets in tests.
type counter struct {
	Owner []byte `protobuf:"bytes,1,opt,name=owner,proto3"`
	Count int64  `protobuf:"varint,2,opt,name=count,proto3"`
}

var _ Model = (*counter)(nil)

type counterWire counter

func (m *counterWire) Reset()         { *m = counterWire{} }
func (m *counterWire) String() string { return proto.CompactTextString(m) }
func (*counterWire) ProtoMessage()    {}

func (c *counter) Marshal() ([]byte, error) {
	return proto.Marshal((*counterWire)(c))
}

func (c *counter) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*counterWire)(c))
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func (c *counter) Copy() CloneableData {
	return &counter{Owner: c.Owner, Count: c.Count}
}

func ownerIndexer(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return c.Owner, nil
}

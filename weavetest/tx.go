package weavetest

import "github.com/iov-one/tradeweave/weave"

// Tx carries a single message. A non nil Err is returned instead of the
// message.
type Tx struct {
	Msg weave.Msg
	Err error
}

var _ weave.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (weave.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("weavetest.Tx cannot be unmarshaled")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("weavetest.Tx cannot be marshaled")
}

// Msg is routed by RoutePath and serializes to Serialized. Err fails every
// method that can fail.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ weave.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Validate() error {
	return m.Err
}

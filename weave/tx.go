package weave

import (
	"reflect"

	"github.com/iov-one/tradeweave/errors"
)

// Persistent is anything that round trips through bytes. Both methods may
// validate the data and fail.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Msg is a request for a state transition. It carries no authentication,
// that lives in the enclosing Tx.
type Msg interface {
	Persistent

	// Path routes the message to its handler. Several message types may
	// share one path. It must match [0-9A-Za-z_\-/]+.
	Path() string

	// Validate checks the message without looking at any state.
	Validate() error
}

// Tx is what a client submits: one message plus whatever the decorators
// of the application need, signatures for example.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// TxDecoder parses raw transaction bytes.
type TxDecoder func(txBytes []byte) (Tx, error)

const missingPath = "(missing)"

// GetPath is the message path of tx, usable in logs and metrics even for
// broken transactions.
func GetPath(tx Tx) string {
	if tx == nil {
		return missingPath
	}
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return missingPath
}

// LoadMsg stores the validated message of tx into destination, which must
// be a pointer to a matching message type.
//
//	var msg MakeMsg
//	if err := weave.LoadMsg(tx, &msg); err != nil {
//		...
//	}
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrState, "nil message")
	}
	got := reflect.ValueOf(msg)
	if got.Kind() == reflect.Ptr {
		if got.IsNil() {
			return errors.Wrap(errors.ErrState, "nil message")
		}
		got = got.Elem()
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrap(errors.ErrType, "destination must be a non nil pointer")
	}
	if !got.Type().AssignableTo(dest.Elem().Type()) {
		return errors.Wrapf(errors.ErrType, "%T cannot be loaded into %T", msg, destination)
	}
	dest.Elem().Set(got)
	return errors.Wrap(msg.Validate(), "invalid message")
}

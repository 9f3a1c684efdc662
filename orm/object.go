package orm

import (
	"reflect"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

// SimpleObj is the Object used by buckets that need no type safe
// wrapper, such as the nonce bucket.
type SimpleObj struct {
	key   []byte
	value Model
}

var _ Object = (*SimpleObj)(nil)

func NewSimpleObj(key []byte, value Model) *SimpleObj {
	return &SimpleObj{key: key, value: value}
}

func (o SimpleObj) Key() []byte {
	return o.key
}

func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Value returns an untyped nil when no value is set.
func (o SimpleObj) Value() weave.Persistent {
	if o.value == nil {
		return nil
	}
	return o.value
}

func (o SimpleObj) Validate() error {
	switch {
	case len(o.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	case o.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return errors.Field("Value", o.value.Validate(), "invalid value")
}

// Clone returns an object with the same key and a new zero value of the
// same type, ready to be unmarshaled into.
func (o *SimpleObj) Clone() Object {
	zero := reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(Model)
	cpy := &SimpleObj{value: zero}
	if len(o.key) != 0 {
		cpy.key = append([]byte(nil), o.key...)
	}
	return cpy
}

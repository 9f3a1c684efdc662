package orm

import (
	"github.com/iov-one/tradeweave/weave"
)

// Keyed objects know the primary key they are stored under. The bucket
// prefixes it.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable returns an independent copy, also used as an empty template
// to load stored values into.
type Cloneable interface {
	Clone() Object
}

// Object is the unit a Bucket reads and writes.
type Object interface {
	Keyed
	Cloneable
	// Validate is called before every save.
	Validate() error
	Value() weave.Persistent
}

// CloneableData is a persisted value that a SimpleObj can wrap.
type CloneableData interface {
	weave.Persistent
	Validate() error
	Copy() CloneableData
}

// Model names CloneableData where it is the stored entity itself rather
// than the payload of an object.
type Model = CloneableData

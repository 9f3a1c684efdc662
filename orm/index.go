package orm

import (
	"bytes"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

// Index is a secondary index maintained by a bucket.
type Index interface {
	weave.QueryHandler

	// Name returns the name of this index.
	Name() string

	// Update keeps the index in sync with a single object change. A nil
	// prev is an insert, a nil save is a delete.
	Update(db weave.KVStore, prev Object, save Object) error

	// GetAt returns all primary keys that were indexed under given value.
	GetAt(db weave.ReadOnlyKVStore, value []byte) ([][]byte, error)
}

const indexPrefix = "_i."

// Indexer calculates the secondary index key for a given object. A nil key
// leaves the object out of the index.
type Indexer func(Object) ([]byte, error)

// refIndex keeps every indexed value under a single key. A unique index
// stores the primary key directly, other indexes store a MultiRef.
type refIndex struct {
	name    string
	prefix  []byte
	unique  bool
	indexer Indexer
	refKey  func([]byte) []byte
}

var _ Index = refIndex{}

// NewIndex creates an index named name. refKey translates a primary key
// into the database key of the referenced object.
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return refIndex{
		name:    name,
		prefix:  []byte(indexPrefix + name + ":"),
		unique:  unique,
		indexer: indexer,
		refKey:  refKey,
	}
}

func (i refIndex) Name() string {
	return i.name
}

func (i refIndex) dbKey(value []byte) []byte {
	key := make([]byte, 0, len(i.prefix)+len(value))
	key = append(key, i.prefix...)
	return append(key, value...)
}

func (i refIndex) Update(db weave.KVStore, prev Object, save Object) error {
	var before, after []byte
	var pk []byte
	var err error

	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "index update without an object")
	}
	if prev != nil {
		pk = prev.Key()
		if before, err = i.indexer(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if save != nil {
		if pk != nil && !bytes.Equal(pk, save.Key()) {
			return errors.Wrap(errors.ErrImmutable, "primary key cannot change")
		}
		pk = save.Key()
		if after, err = i.indexer(save); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}

	if prev != nil && save != nil && bytes.Equal(before, after) {
		return nil
	}
	if i.unique && len(after) != 0 {
		taken, err := db.Has(i.dbKey(after))
		if err != nil {
			return err
		}
		if taken {
			return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
		}
	}
	if err := i.remove(db, before, pk); err != nil {
		return err
	}
	return i.insert(db, after, pk)
}

func (i refIndex) GetAt(db weave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.dbKey(value))
	if err != nil || raw == nil {
		return nil, err
	}
	return i.refs(raw)
}

func (i refIndex) refs(raw []byte) ([][]byte, error) {
	if i.unique {
		return [][]byte{raw}, nil
	}
	var ref MultiRef
	if err := ref.Unmarshal(raw); err != nil {
		return nil, err
	}
	return ref.Refs, nil
}

// Query loads all objects referenced under the exact value or under
// values starting with the given prefix.
func (i refIndex) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	var pks [][]byte
	switch mod {
	case weave.KeyQueryMod:
		refs, err := i.GetAt(db, data)
		if err != nil {
			return nil, err
		}
		pks = refs
	case weave.PrefixQueryMod:
		entries, err := queryPrefix(db, i.dbKey(data))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			refs, err := i.refs(e.Value)
			if err != nil {
				return nil, err
			}
			pks = append(pks, refs...)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}

	var res []weave.Model
	for _, pk := range pks {
		key := i.refKey(pk)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res = append(res, weave.Pair(key, value))
	}
	return res, nil
}

func (i refIndex) insert(db weave.KVStore, value, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	key := i.dbKey(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if i.unique {
		if raw != nil {
			return errors.Wrapf(errors.ErrDuplicate, "index %s", i.name)
		}
		return db.Set(key, pk)
	}

	var ref MultiRef
	if raw != nil {
		if err := ref.Unmarshal(raw); err != nil {
			return err
		}
	}
	if err := ref.Add(pk); err != nil {
		return err
	}
	return i.store(db, key, &ref)
}

func (i refIndex) remove(db weave.KVStore, value, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	key := i.dbKey(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s has no entry", i.name)
	}
	if i.unique {
		if !bytes.Equal(raw, pk) {
			return errors.Wrapf(errors.ErrNotFound, "index %s points to another object", i.name)
		}
		return db.Delete(key)
	}

	var ref MultiRef
	if err := ref.Unmarshal(raw); err != nil {
		return err
	}
	if err := ref.Remove(pk); err != nil {
		return err
	}
	return i.store(db, key, &ref)
}

func (i refIndex) store(db weave.KVStore, key []byte, ref *MultiRef) error {
	if ref.Size() == 0 {
		return db.Delete(key)
	}
	raw, err := ref.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/tradeweave/errors"
)

// DefaultFreeListSize is the number of released btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable turns any KVStore into a CacheableKVStore by layering an
// in-memory btree on top of it.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a store that lives only in memory.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// ShowOpser exposes the ordered log of write operations.
type ShowOpser interface {
	ShowOps() []Op
}

// LogableStore returns an in-memory store together with a view of every
// write that was executed on it.
func LogableStore() (CacheableKVStore, ShowOpser) {
	var empty EmptyKVStore
	log := NewNonAtomicBatch(empty)
	return NewBTreeCacheWrap(empty, log, nil), log
}

// BTreeCacheWrap keeps pending writes in a btree so that reads see them
// before they are flushed to the parent through the batch.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap builds a cache over kv. All writes are recorded in
// batch, kv is only read from. A nil free list allocates a new one.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap stacks another cache on top sharing the same free list.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes the batch into the parent and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all cached items, returning the nodes to the free list.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(newDeletedItem(key))
	return b.batch.Delete(key)
}

// cached looks the key up in the btree only. ok is false when the cache
// holds no information about the key and the parent must be asked.
func (b BTreeCacheWrap) cached(key []byte) (value []byte, present, ok bool, err error) {
	switch it := b.bt.Get(bkey{key}).(type) {
	case nil:
		return nil, false, false, nil
	case setItem:
		return it.value, true, true, nil
	case deletedItem:
		return nil, false, true, nil
	default:
		return nil, false, true, errors.Wrapf(errors.ErrDatabase, "unexpected cache item %T", it)
	}
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	value, _, ok, err := b.cached(key)
	if !ok {
		return b.back.Get(key)
	}
	return value, err
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	_, present, ok, err := b.cached(key)
	if !ok {
		return b.back.Has(key)
	}
	return present, err
}

func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(collectRange(b.bt, start, end), parent, true), nil
}

func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	items := collectRange(b.bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return newItemIter(items, parent, false), nil
}

// keyer is implemented by everything stored in the btree.
type keyer interface {
	Key() []byte
}

// bkey is both a lookup pivot and the base of stored items.
type bkey struct {
	key []byte
}

func (k bkey) Key() []byte { return k.key }

// Less panics if item does not implement keyer.
func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

// deletedItem shadows a key that exists in the parent store.
type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey: bkey{key}, value: value}
}

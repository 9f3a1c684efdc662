package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/tradeweave/errors"
)

// collectRange returns all btree items with a key in [start, end) in
// ascending order. Nil start or end means no limit on that side.
func collectRange(bt *btree.BTree, start, end []byte) []keyer {
	var items []keyer
	collect := func(item btree.Item) bool {
		items = append(items, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// itemIter merges the cached items with the results of the parent iterator.
// Cached items take precedence over parent entries with the same key and
// deleted items hide them.
type itemIter struct {
	items     []keyer
	idx       int
	ascending bool

	parent     Iterator
	parentDone bool
	// peeked parent entry, valid if hasPeek is true
	peekKey, peekValue []byte
	hasPeek            bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []keyer, parent Iterator, ascending bool) *itemIter {
	return &itemIter{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
}

// Next implements Iterator.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		if err := i.peekParent(); err != nil {
			return nil, nil, err
		}

		hasOwn := i.idx < len(i.items)
		switch {
		case !hasOwn && !i.hasPeek:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache done")
		case !hasOwn:
			return i.takeParent()
		case !i.hasPeek:
			// own item only
		default:
			cmp := bytes.Compare(i.items[i.idx].Key(), i.peekKey)
			if !i.ascending {
				cmp = -cmp
			}
			if cmp > 0 {
				return i.takeParent()
			}
			if cmp == 0 {
				// overwritten or deleted in the cache
				i.hasPeek = false
			}
		}

		item := i.items[i.idx]
		i.idx++
		if set, ok := item.(setItem); ok {
			return set.Key(), set.value, nil
		}
		// deleted item, keep looking
	}
}

func (i *itemIter) takeParent() ([]byte, []byte, error) {
	i.hasPeek = false
	return i.peekKey, i.peekValue, nil
}

// peekParent loads the next parent entry unless one is already loaded.
func (i *itemIter) peekParent() error {
	if i.hasPeek || i.parentDone || i.parent == nil {
		return nil
	}
	key, value, err := i.parent.Next()
	if err != nil {
		if errors.ErrIteratorDone.Is(err) {
			i.parentDone = true
			return nil
		}
		return err
	}
	i.peekKey, i.peekValue, i.hasPeek = key, value, true
	return nil
}

// Release releases the Iterator.
func (i *itemIter) Release() {
	if i.parent != nil {
		i.parent.Release()
	}
	i.items = nil
}

package store

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weavetest/assert"
)

// StoreConstructor returns a fresh base layer and a function releasing its
// resources.
type StoreConstructor func() (base CacheableKVStore, cleanup func())

// RunConformance checks that a cacheable store behaves like every other
// store implementation: writes stay in a cache until flushed, a discarded
// cache leaves no trace and iterators see the merged view.
func RunConformance(t *testing.T, makeBase StoreConstructor) {
	t.Run("cache isolation", func(t *testing.T) {
		base, cleanup := makeBase()
		defer cleanup()
		checkCacheIsolation(t, base)
	})
	t.Run("nested caches", func(t *testing.T) {
		base, cleanup := makeBase()
		defer cleanup()
		checkNestedCaches(t, base)
	})
	t.Run("merged iterator", func(t *testing.T) {
		base, cleanup := makeBase()
		defer cleanup()
		checkMergedIterator(t, base)
	})
}

func checkCacheIsolation(t *testing.T, base CacheableKVStore) {
	maker, vault := []byte("wallet/maker"), []byte("wallet/vault")
	assert.Nil(t, base.Set(maker, []byte("100")))

	cache := base.CacheWrap()
	assert.Nil(t, cache.Delete(maker))
	assert.Nil(t, cache.Set(vault, []byte("100")))
	assertValue(t, cache, maker, nil)
	assertValue(t, cache, vault, []byte("100"))
	assertValue(t, base, maker, []byte("100"))
	assertValue(t, base, vault, nil)

	cache.Discard()
	assertValue(t, base, maker, []byte("100"))
	assertValue(t, base, vault, nil)

	cache = base.CacheWrap()
	assert.Nil(t, cache.Delete(maker))
	assert.Nil(t, cache.Set(vault, []byte("100")))
	assert.Nil(t, cache.Write())
	assertValue(t, base, maker, nil)
	assertValue(t, base, vault, []byte("100"))
}

func checkNestedCaches(t *testing.T, base CacheableKVStore) {
	key := []byte("escrow")
	outer := base.CacheWrap()
	assert.Nil(t, outer.Set(key, []byte("open")))

	inner := outer.CacheWrap()
	assert.Nil(t, inner.Set(key, []byte("taken")))
	assertValue(t, outer, key, []byte("open"))
	inner.Discard()
	assertValue(t, outer, key, []byte("open"))

	inner = outer.CacheWrap()
	assert.Nil(t, inner.Delete(key))
	assert.Nil(t, inner.Write())
	assertValue(t, outer, key, nil)
	assertValue(t, base, key, nil)

	assert.Nil(t, outer.Set(key, []byte("refunded")))
	assert.Nil(t, outer.Write())
	assertValue(t, base, key, []byte("refunded"))
}

func checkMergedIterator(t *testing.T, base CacheableKVStore) {
	for i := 0; i < 6; i++ {
		assert.Nil(t, base.Set(itemKey(i), []byte("base")))
	}

	cache := base.CacheWrap()
	assert.Nil(t, cache.Delete(itemKey(1)))
	assert.Nil(t, cache.Set(itemKey(3), []byte("cache")))
	assert.Nil(t, cache.Set(itemKey(7), []byte("cache")))

	want := []Model{
		Pair(itemKey(2), []byte("base")),
		Pair(itemKey(3), []byte("cache")),
		Pair(itemKey(4), []byte("base")),
		Pair(itemKey(5), []byte("base")),
		Pair(itemKey(7), []byte("cache")),
	}
	it, err := cache.Iterator(itemKey(1), nil)
	assert.Nil(t, err)
	assert.Equal(t, want, drain(t, it))

	it, err = cache.ReverseIterator(itemKey(2), itemKey(5))
	assert.Nil(t, err)
	assert.Equal(t, []Model{want[2], want[1], want[0]}, drain(t, it))

	// The parent does not see unflushed changes.
	it, err = base.Iterator(itemKey(6), nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(drain(t, it)))
}

func itemKey(i int) []byte {
	return []byte(fmt.Sprintf("item/%02d", i))
}

func drain(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Release()

	var res []Model
	for {
		key, value, err := it.Next()
		if err != nil {
			if errors.ErrIteratorDone.Is(err) {
				return res
			}
			t.Fatalf("iterator: %s", err)
		}
		res = append(res, Pair(key, value))
	}
}

func assertValue(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	if !bytes.Equal(want, got) {
		t.Fatalf("%q: want %q, got %q", key, want, got)
	}
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

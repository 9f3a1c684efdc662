package store

import (
	"testing"

	"github.com/iov-one/tradeweave/weavetest/assert"
)

func makeBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestBTreeConformance(t *testing.T) {
	RunConformance(t, makeBase)
}

func TestBTreeCacheDiscard(t *testing.T) {
	base := BTreeCacheable{EmptyKVStore{}}.CacheWrap()
	k, v := []byte("vault"), []byte("balance")

	cache := base.CacheWrap()
	assert.Nil(t, cache.Set(k, v))
	cache.Discard()

	got, err := cache.Get(k)
	assert.Nil(t, err)
	assert.Nil(t, got)
	got, err = base.Get(k)
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestLogableStore(t *testing.T) {
	kv, ops := LogableStore()
	assert.Nil(t, kv.Set([]byte("a"), []byte("1")))
	assert.Nil(t, kv.Delete([]byte("b")))

	got := ops.ShowOps()
	assert.Equal(t, 2, len(got))
	assert.Equal(t, true, got[0].IsSetOp())
	assert.Equal(t, []byte("a"), got[0].Key())
	assert.Equal(t, false, got[1].IsSetOp())
}

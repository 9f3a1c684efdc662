// Package store implements the weave store interfaces: an in-memory
// btree store, cache wraps layered over any store, and a recorder of
// changed keys.
package store

import "github.com/iov-one/tradeweave/weave"

// Aliases of the weave storage types.
type (
	ReadOnlyKVStore  = weave.ReadOnlyKVStore
	SetDeleter       = weave.SetDeleter
	KVStore          = weave.KVStore
	Batch            = weave.Batch
	Iterator         = weave.Iterator
	CacheableKVStore = weave.CacheableKVStore
	KVCacheWrap      = weave.KVCacheWrap
	CommitKVStore    = weave.CommitKVStore
	CommitID         = weave.CommitID
	Model            = weave.Model
)

var Pair = weave.Pair

package orm

import (
	"testing"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/weavetest/assert"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()

	b := NewModelBucket("cnts", &counter{})

	if err := b.Put(db, []byte("c1"), &counter{Count: 1}); err != nil {
		t.Fatalf("cannot save counter instance: %s", err)
	}
	assert.Nil(t, b.Has(db, []byte("c1")))

	var c1 counter
	if err := b.One(db, []byte("c1"), &c1); err != nil {
		t.Fatalf("cannot get c1 counter: %s", err)
	}
	if c1.Count != 1 {
		t.Fatalf("unexpected counter state: %d", c1.Count)
	}

	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete c1 counter: %s", err)
	}
	if err := b.Delete(db, []byte("unknown")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error when deleting unexisting instance: %s", err)
	}
	if err := b.One(db, []byte("c1"), &c1); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error for an unknown model get: %s", err)
	}
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, nil))
}

func TestModelBucketPutInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	assert.IsErr(t, errors.ErrModel, b.Put(db, []byte("a"), &counter{Count: -1}))
	assert.IsErr(t, errors.ErrEmpty, b.Put(db, nil, &counter{Count: 1}))
	assert.IsErr(t, errors.ErrType, b.Put(db, []byte("a"), &MultiRef{Refs: [][]byte{{1}}}))
}

func TestModelBucketByIndex(t *testing.T) {
	cases := map[string]struct {
		IndexName string
		QueryKey  string
		Dest      ModelSlicePtr
		WantErr   *errors.Error
		WantRes   ModelSlicePtr
		WantKeys  [][]byte
	}{
		"find none": {
			IndexName: "owner",
			QueryKey:  "nobody",
			Dest:      &[]counter{},
			WantRes:   &[]counter{},
			WantKeys:  nil,
		},
		"find one": {
			IndexName: "owner",
			QueryKey:  "bob",
			Dest:      &[]counter{},
			WantRes:   &[]counter{{Owner: []byte("bob"), Count: 3}},
			WantKeys:  [][]byte{[]byte("c3")},
		},
		"find two, pointer destination": {
			IndexName: "owner",
			QueryKey:  "alice",
			Dest:      &[]*counter{},
			WantRes: &[]*counter{
				{Owner: []byte("alice"), Count: 1},
				{Owner: []byte("alice"), Count: 2},
			},
			WantKeys: [][]byte{[]byte("c1"), []byte("c2")},
		},
		"unknown index": {
			IndexName: "xyz",
			QueryKey:  "alice",
			Dest:      &[]counter{},
			WantErr:   ErrInvalidIndex,
		},
		"wrong destination type": {
			IndexName: "owner",
			QueryKey:  "alice",
			Dest:      &[]MultiRef{},
			WantErr:   errors.ErrType,
		},
		"destination not a pointer": {
			IndexName: "owner",
			QueryKey:  "alice",
			Dest:      []counter{},
			WantErr:   errors.ErrType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewModelBucket("cnts", &counter{}, WithIndex("owner", ownerIndexer, false))

			assert.Nil(t, b.Put(db, []byte("c1"), &counter{Owner: []byte("alice"), Count: 1}))
			assert.Nil(t, b.Put(db, []byte("c2"), &counter{Owner: []byte("alice"), Count: 2}))
			assert.Nil(t, b.Put(db, []byte("c3"), &counter{Owner: []byte("bob"), Count: 3}))

			keys, err := b.ByIndex(db, tc.IndexName, []byte(tc.QueryKey), tc.Dest)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if tc.WantErr != nil {
				return
			}
			assert.Equal(t, tc.WantKeys, keys)
			assert.Equal(t, tc.WantRes, tc.Dest)
		})
	}
}

func TestModelBucketIndexUpdate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{}, WithIndex("owner", ownerIndexer, true))

	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Owner: []byte("alice"), Count: 1}))
	// unique constraint
	assert.IsErr(t, errors.ErrDuplicate, b.Put(db, []byte("c2"), &counter{Owner: []byte("alice"), Count: 1}))

	// moving the owner must release the old index value
	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Owner: []byte("bob"), Count: 2}))
	assert.Nil(t, b.Put(db, []byte("c2"), &counter{Owner: []byte("alice"), Count: 5}))

	var found []counter
	keys, err := b.ByIndex(db, "owner", []byte("bob"), &found)
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("c1")}, keys)
	assert.Equal(t, int64(2), found[0].Count)

	assert.Nil(t, b.Delete(db, []byte("c1")))
	found = nil
	keys, err = b.ByIndex(db, "owner", []byte("bob"), &found)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{}, WithIndex("owner", ownerIndexer, false))
	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Owner: []byte("alice"), Count: 1}))
	assert.Nil(t, b.Put(db, []byte("c2"), &counter{Owner: []byte("bob"), Count: 2}))

	qr := weave.NewQueryRouter()
	b.Register("counters", qr)

	h := qr.Handler("/counters")
	if h == nil {
		t.Fatal("bucket query handler not registered")
	}
	res, err := h.Query(db, weave.KeyQueryMod, []byte("c2"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, []byte("cnts:c2"), res[0].Key)

	res, err = h.Query(db, weave.PrefixQueryMod, []byte("c"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	res, err = h.Query(db, weave.KeyQueryMod, []byte("missing"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	_, err = h.Query(db, "range", nil)
	assert.IsErr(t, errors.ErrInput, err)

	idx := qr.Handler("/counters/owner")
	if idx == nil {
		t.Fatal("index query handler not registered")
	}
	res, err = idx.Query(db, weave.KeyQueryMod, []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, []byte("cnts:c1"), res[0].Key)

	res, err = idx.Query(db, weave.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))
}

package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weavetest/assert"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// makeBase returns the base layer
func makeBase() (store.CacheableKVStore, func()) {
	commit, close := makeCommitStore()
	return commit.Adapter(), close
}

func makeCommitStore() (CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	close := func() { os.RemoveAll(tmpDir) }
	commit := NewCommitStore(tmpDir, "base")
	return commit, close
}

func TestAdapterConformance(t *testing.T) {
	store.RunConformance(t, makeBase)
}

// TestCommitOverwrite checks that only committed data is returned by the
// commit store and that versions increase with every commit.
func TestCommitOverwrite(t *testing.T) {
	commit := NewCommitStoreFromDB(dbm.NewMemDB())
	k, v, v2 := []byte("escrow"), []byte("open"), []byte("taken")

	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set(k, v))
	assert.Nil(t, cache.Write())

	// written but not committed
	got, err := commit.Get(k)
	assert.Nil(t, err)
	assert.Nil(t, got)

	id, err := commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	got, err = commit.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)

	cache = commit.CacheWrap()
	assert.Nil(t, cache.Set(k, v2))
	assert.Nil(t, cache.Write())
	id2, err := commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id2.Version)
	if string(id.Hash) == string(id2.Hash) {
		t.Fatal("app hash must change with the data")
	}

	latest, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, id2, latest)
}

// TestCommitReload ensures the state survives reopening the database.
func TestCommitReload(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	db := dbm.NewDB("reload", dbm.GoLevelDBBackend, tmpDir)
	commit := NewCommitStoreFromDB(db)
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("vault"), []byte("100")))
	assert.Nil(t, cache.Write())
	id, err := commit.Commit()
	assert.Nil(t, err)
	db.Close()

	db = dbm.NewDB("reload", dbm.GoLevelDBBackend, tmpDir)
	defer db.Close()
	reopened := NewCommitStoreFromDB(db)
	assert.Nil(t, reopened.LoadLatestVersion())
	latest, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, id, latest)
	got, err := reopened.Get([]byte("vault"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("100"), got)
}

package server

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGetBlockArgs(t *testing.T) {
	_, _, err := parseGetBlockArgs(nil)
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)

	path, height, err := parseGetBlockArgs([]string{"data/blockstore.db"})
	require.NoError(t, err)
	assert.Equal(t, "data/blockstore.db", path)
	assert.Equal(t, int64(0), height)

	_, height, err = parseGetBlockArgs([]string{"data/blockstore.db", "-height", "17"})
	require.NoError(t, err)
	assert.Equal(t, int64(17), height)

	_, _, err = parseGetBlockArgs([]string{"data/blockstore.db", "-height", "tall"})
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}

func TestGetBlockCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "tradeweave-blocks")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	decoder := func([]byte) (weave.Tx, error) { return nil, errors.ErrInput }
	var out bytes.Buffer

	err = GetBlockCmd(decoder, &out, []string{filepath.Join(dir, "blockstore")})
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)

	err = GetBlockCmd(decoder, &out, []string{filepath.Join(dir, "blockstore.db")})
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
	assert.Empty(t, out.String())
}

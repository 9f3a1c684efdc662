package server

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

const flagHeight = "height"

var cdc = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(cdc)
}

func parseGetBlockArgs(args []string) (string, int64, error) {
	if len(args) == 0 {
		return "", 0, errors.Wrap(errors.ErrInput, "usage: getblock <path to blockstore.db> [-height=H]")
	}
	var height int64
	getBlockFlags := flag.NewFlagSet("getblock", flag.ContinueOnError)
	getBlockFlags.Int64Var(&height, flagHeight, 0, "height of the block to extract (default latest)")
	if err := getBlockFlags.Parse(args[1:]); err != nil {
		return "", 0, errors.Wrap(errors.ErrInput, err.Error())
	}
	return args[0], height, nil
}

// GetBlockCmd prints a block of the tendermint blockstore.db as json,
// followed by the message path of every transaction it carries. The last
// block is printed unless -height is given.
func GetBlockCmd(decoder weave.TxDecoder, out io.Writer, args []string) error {
	dbPath, height, err := parseGetBlockArgs(args)
	if err != nil {
		return err
	}
	db, err := openBlockStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := blockchain.NewBlockStore(db)
	if height == 0 {
		height = store.Height()
	}
	return printBlock(out, store, height, decoder)
}

// openBlockStore opens the leveldb directory at path, which must be
// named <name>.db.
func openBlockStore(path string) (dbm.DB, error) {
	dir, file := filepath.Split(filepath.Clean(path))
	if !strings.HasSuffix(file, ".db") || file == ".db" {
		return nil, errors.Wrapf(errors.ErrInput, "database directory %q must end with .db", path)
	}
	db, err := dbm.NewGoLevelDB(strings.TrimSuffix(file, ".db"), dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return db, nil
}

func printBlock(out io.Writer, store *blockchain.BlockStore, height int64, decoder weave.TxDecoder) error {
	block := store.LoadBlock(height)
	if block == nil {
		return errors.Wrapf(errors.ErrNotFound, "no block at height %d", height)
	}
	js, err := cdc.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrState, err.Error())
	}
	fmt.Fprintln(out, string(js))

	for i, raw := range block.Data.Txs {
		path := "(undecodable)"
		if tx, err := decoder(raw); err == nil {
			path = weave.GetPath(tx)
		}
		fmt.Fprintf(out, "tx %d: %s %X\n", i, path, raw.Hash())
	}
	return nil
}

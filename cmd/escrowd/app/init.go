package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/commands/server"
	"github.com/iov-one/tradeweave/crypto"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x/cash"
	"github.com/iov-one/tradeweave/x/escrow"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Name is returned in the ABCI info response.
const Name = "escrowd"

// GenInitOptions produces the app state for a development chain. One rich
// account owns the escrow configuration and holds coins of every given
// ticker.
//
// Arguments are an optional hex address followed by tickers. A new key is
// generated and printed when no address is given.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var owner weave.Address
	if len(args) > 0 && !coin.IsCC(args[0]) {
		addr, err := weave.ParseAddress(args[0])
		if err == nil {
			err = addr.Validate()
		}
		if err != nil {
			return nil, errors.Wrap(err, "owner address")
		}
		owner, args = addr, args[1:]
	} else {
		addr, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		fmt.Println(keys)
		owner = addr
	}

	tickers := args
	if len(tickers) == 0 {
		tickers = []string{"IOV", "ETH"}
	}
	coins := make([]*coin.Coin, 0, len(tickers))
	for _, t := range tickers {
		if !coin.IsCC(t) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", t)
		}
		coins = append(coins, coin.NewCoinp(123456789, 0, t))
	}

	state := map[string]interface{}{
		"cash": []cash.GenesisAccount{
			{Address: owner, Coins: coins},
		},
		"conf": map[string]interface{}{
			"escrow": escrow.Configuration{Owner: owner},
		},
		"escrow": []escrow.GenesisEscrow{},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrState, err.Error())
	}
	return raw, nil
}

// Initializers returns all extensions that load the genesis app state.
// Genesis escrows are minted into their vaults by the cash bucket.
func Initializers() weave.Initializer {
	return weave.ChainInitializers{
		cash.Initializer{},
		&escrow.Initializer{Minter: cash.NewController(cash.NewBucket())},
	}
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "escrow.db")
	}

	application, err := Application(Name, Stack(), TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers())
	if options.Logger != nil {
		application.WithLogger(options.Logger)
	}
	return application, nil
}

type output struct {
	Seed   string             `json:"seed"`
	Path   string             `json:"derivation_path"`
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey creates a wallet seed and returns the address of its
// default account, along with a json document holding the seed and keys.
// Fund the address in genesis and import the seed into a client to sign.
func GenerateCoinKey() (weave.Address, string, error) {
	seed, err := crypto.GenHDSeed()
	if err != nil {
		return nil, "", err
	}
	privKey, err := crypto.DerivePrivKeyEd25519(seed, crypto.DefaultDerivationPath)
	if err != nil {
		return nil, "", err
	}
	pubKey := privKey.PublicKey()

	out := output{
		Seed:   hex.EncodeToString(seed),
		Path:   crypto.DefaultDerivationPath,
		Pubkey: pubKey,
		Secret: privKey,
	}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrState, err.Error())
	}
	return pubKey.Address(), string(keys), nil
}

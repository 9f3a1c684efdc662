package escrow

import (
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/gconf"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x/cash"
)

const optKey = "escrow"

// GenesisEscrow is used to parse an escrow opened at genesis. The deposit is
// issued directly into the vault.
type GenesisEscrow struct {
	Maker   weave.Address `json:"maker"`
	Seed    uint64        `json:"seed"`
	Deposit *coin.Coin    `json:"deposit"`
	Receive *coin.Coin    `json:"receive"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct {
	Minter cash.CoinMinter
}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis stores the escrow configuration found under conf.escrow and
// opens all escrows listed under escrow.
func (i *Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, packageName, &conf)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "init config")
	}

	var escrows []GenesisEscrow
	if err := opts.ReadOptions(optKey, &escrows); err != nil {
		return err
	}
	if len(escrows) == 0 {
		return nil
	}
	if i.Minter == nil {
		return errors.Wrap(errors.ErrHuman, "minter required to fund genesis escrows")
	}
	current, err := loadConf(db)
	if err != nil {
		return err
	}

	bucket := NewBucket()
	for j, g := range escrows {
		if g.Maker == nil {
			return errors.Wrapf(errors.ErrEmpty, "escrow %d: maker", j)
		}
		msg := MakeMsg{Maker: g.Maker, Seed: g.Seed, Deposit: g.Deposit, Receive: g.Receive}
		if err := msg.Validate(); err != nil {
			return errors.Wrapf(err, "escrow %d", j)
		}
		if g.Deposit.Ticker == g.Receive.Ticker && !current.AllowSameAssetClass {
			return errors.Wrapf(ErrSameAssetClass, "escrow %d", j)
		}
		esc := &Escrow{
			Maker:         g.Maker,
			Seed:          g.Seed,
			AssetA:        g.Deposit.Ticker,
			AssetB:        g.Receive.Ticker,
			ReceiveAmount: g.Receive,
			Vault:         VaultAddress(g.Maker, g.Seed),
		}
		if err := bucket.Has(db, esc.ID()); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "escrow %d", j)
		}
		if err := bucket.Put(db, esc.ID(), esc); err != nil {
			return errors.Wrapf(err, "escrow %d", j)
		}
		if err := i.Minter.CoinMint(db, esc.Vault, *g.Deposit); err != nil {
			return errors.Wrapf(err, "escrow %d: cannot fund vault", j)
		}
	}
	return nil
}

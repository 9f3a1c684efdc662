package escrow

import (
	"github.com/iov-one/tradeweave/coin"
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x/cash"
)

// VaultGuard is a cash controller that refuses to credit the vault of an
// open escrow. Give it to every route that moves coins on behalf of users,
// so that a vault holds exactly the deposit while its escrow is open. The
// escrow handlers use the unguarded controller.
type VaultGuard struct {
	cash.Controller
}

var _ cash.Controller = VaultGuard{}

// GuardVaults wraps bank.
func GuardVaults(bank cash.Controller) VaultGuard {
	return VaultGuard{Controller: bank}
}

func (g VaultGuard) MoveCoins(db weave.KVStore, src, dst weave.Address, amount coin.Coin) error {
	if err := g.refuseVault(db, dst); err != nil {
		return err
	}
	return g.Controller.MoveCoins(db, src, dst, amount)
}

func (g VaultGuard) CoinMint(db weave.KVStore, dst weave.Address, amount coin.Coin) error {
	if err := g.refuseVault(db, dst); err != nil {
		return err
	}
	return g.Controller.CoinMint(db, dst, amount)
}

func (g VaultGuard) refuseVault(db weave.ReadOnlyKVStore, addr weave.Address) error {
	var open []Escrow
	keys, err := NewBucket().ByIndex(db, "vault", addr, &open)
	if err != nil {
		return errors.Wrap(err, "cannot check escrow vaults")
	}
	if len(keys) != 0 {
		return errors.Wrapf(ErrVaultMismatch, "%s is the vault of open escrow %s", addr, weave.Address(keys[0]))
	}
	return nil
}

package escrow

import (
	"encoding/binary"

	"github.com/iov-one/tradeweave/weave"
)

const (
	conditionExt  = "escrow"
	vaultType     = "vault"
	recordType    = "record"
	seedByteCount = 8
)

// VaultCondition returns the condition owning the vault of the escrow
// identified by given maker and seed. No private key exists for it, so only
// this extension can move funds out of the vault.
func VaultCondition(maker weave.Address, seed uint64) weave.Condition {
	return weave.NewCondition(conditionExt, vaultType, derivationData(maker, seed))
}

// VaultAddress returns the address of the wallet holding the deposit of the
// escrow identified by given maker and seed.
func VaultAddress(maker weave.Address, seed uint64) weave.Address {
	return VaultCondition(maker, seed).Address()
}

// RecordAddress returns the key under which the escrow record identified by
// given maker and seed is stored.
func RecordAddress(maker weave.Address, seed uint64) weave.Address {
	return weave.NewCondition(conditionExt, recordType, derivationData(maker, seed)).Address()
}

func derivationData(maker weave.Address, seed uint64) []byte {
	data := make([]byte, len(maker)+seedByteCount)
	copy(data, maker)
	binary.LittleEndian.PutUint64(data[len(maker):], seed)
	return data
}

package escrow

import (
	"github.com/iov-one/tradeweave/errors"
)

// Escrow extension takes error codes 1000-1019.
var (
	ErrInvalidAmount     = errors.Register(1000, "invalid escrow amount")
	ErrInsufficientFunds = errors.Register(1001, "insufficient funds")
	ErrUnauthorized      = errors.Register(1002, "escrow party unauthorized")
	ErrRecordNotOpen     = errors.Register(1003, "escrow record not open")
	ErrVaultMismatch     = errors.Register(1004, "vault address mismatch")
	ErrSameAssetClass    = errors.Register(1005, "same asset class on both sides")
)

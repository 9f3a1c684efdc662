package x

import (
	"github.com/iov-one/tradeweave/weave"
)

// Authenticator tells handlers which conditions signed the current
// transaction. Handlers receive it in their constructor so that the
// authentication method can be swapped, for example in tests.
type Authenticator interface {
	// GetConditions lists every fulfilled condition.
	GetConditions(weave.Context) []weave.Condition
	// HasAddress is true if any fulfilled condition controls addr.
	HasAddress(weave.Context, weave.Address) bool
}

// MultiAuth merges the results of several authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth{}

func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

// GetConditions returns the conditions of all authenticators in order.
func (m MultiAuth) GetConditions(ctx weave.Context) []weave.Condition {
	var all []weave.Condition
	for _, a := range m {
		all = append(all, a.GetConditions(ctx)...)
	}
	return all
}

func (m MultiAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, a := range m {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first fulfilled condition, or nil. It is the
// default owner of anything a transaction creates.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

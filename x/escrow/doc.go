/*
Package escrow implements an atomic two party asset swap.

A maker deposits an amount of one currency (asset A) into a vault and states
the amount of another currency (asset B) that it wants in return. Any taker
can complete the trade by paying the requested amount of B to the maker, in
the same transaction receiving everything held by the vault. Until a take
succeeds, the maker can refund the deposit at any time.

Both the vault and the escrow record are keyless addresses derived from the
maker address and a maker chosen seed:

	vault  = Condition("escrow", "vault", maker || le64(seed)).Address()
	record = Condition("escrow", "record", maker || le64(seed)).Address()

Take and refund always re-derive the vault address and compare it with the
one provided in the message and the one stored in the record.

An escrow record exists only while the offer is open. Resolution deletes the
record and closes the vault wallet, so at most one take or refund can ever
succeed for a given record.

Resolution pays out every coin held by the vault. To keep that equal to the
deposit, routes that credit user wallets must use a controller wrapped with
GuardVaults, which refuses to credit the vault of an open escrow.
*/
package escrow

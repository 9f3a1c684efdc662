/*
Package errors declares the root errors of the application and the helpers
to wrap, group and inspect them.

Every error returned to a client should wrap one of the registered root
errors. The root decides the ABCI code of the response, the wrapping layers
add context:

	return errors.Wrapf(errors.ErrNotFound, "escrow %X", id)

Packages with their own failure kinds declare them once with Register, for
example the escrow errors use codes starting at 1000.

Test the kind of an error with the Is method of the root:

	if errors.ErrNotFound.Is(err) { ... }

The innermost Wrap or Field attaches a stack trace. Format an error with %+v
to print it.
*/
package errors

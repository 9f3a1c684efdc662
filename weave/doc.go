/*
Package weave holds the interfaces every other package builds on: stores,
transactions, messages, handlers and decorators, and the conversion of
their results into ABCI responses.

Block information travels through context.Context. For every value of type
T kept there, the package offers a pair of functions:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value is already set, so that a handler deep in the
stack cannot replace the height, header or chain id of the block.
*/
package weave

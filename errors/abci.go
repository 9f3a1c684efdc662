package errors

import "fmt"

const (
	// SuccessABCICode is the code of a successful ABCI response.
	SuccessABCICode = 0

	// Errors without a registered root share this code and, outside of
	// debug mode, this log.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log of an ABCI response reporting err.
// Messages of errors without a registered root may leak internals, so
// they are replaced by a generic log unless debug is set.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	if code == internalABCICode && !debug {
		return code, internalABCILog
	}
	return code, err.Error()
}

// ABCIError reverses ABCIInfo on the client side. The registered root of
// code is wrapped so that Is keeps working.
func ABCIError(code uint32, log string) error {
	if root, ok := usedCodes[code]; ok && root != nil {
		return Wrap(root, log)
	}
	return Wrap(&Error{code: code, desc: fmt.Sprintf("unknown error code %d", code)}, log)
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first coder found while unwrapping.
func abciCode(err error) uint32 {
	for !isNilErr(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalABCICode
}

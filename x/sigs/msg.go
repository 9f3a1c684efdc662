package sigs

import (
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

const (
	pathBumpSequenceMsg = "sigs/bump_sequence"

	maxSequenceIncrement = 1000
	minSequenceIncrement = 1
)

var _ weave.Msg = (*BumpSequenceMsg)(nil)

// Validate ensures the increment is within the allowed range.
func (msg *BumpSequenceMsg) Validate() error {
	if msg.Increment < minSequenceIncrement {
		return errors.Field("Increment", errors.ErrMsg, "must be at least %d", minSequenceIncrement)
	}
	if msg.Increment > maxSequenceIncrement {
		return errors.Field("Increment", errors.ErrMsg, "must not be greater than %d", maxSequenceIncrement)
	}
	return nil
}

// Path returns the routing path for this message.
func (BumpSequenceMsg) Path() string {
	return pathBumpSequenceMsg
}

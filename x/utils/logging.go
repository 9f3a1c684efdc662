package utils

import (
	"time"

	"github.com/iov-one/tradeweave/weave"
)

// Logging writes one line per processed transaction with its duration
// in microseconds. Failures are logged as errors. Successful checks are
// debug lines and successful deliveries info lines.
type Logging struct{}

var _ weave.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var msg string
	if res != nil {
		msg = res.Log
	}
	logResult(ctx, start, msg, err, true)
	return res, err
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var msg string
	if res != nil {
		msg = res.Log
	}
	logResult(ctx, start, msg, err, false)
	return res, err
}

// logResult always emits a line, even for an empty message, because the
// context carries the call and path of the transaction.
func logResult(ctx weave.Context, start time.Time, msg string, err error, check bool) {
	logger := weave.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}

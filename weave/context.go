package weave

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/iov-one/tradeweave/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Context carries the block information into handlers.
type Context = context.Context

type contextKey int

const (
	contextKeyHeader contextKey = iota
	contextKeyHeight
	contextKeyChainID
	contextKeyLogger
	contextKeyBlockTime
)

// IsValidChainID reports whether id can be used as a chain id.
var IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString

var nopLogger = log.NewNopLogger()

// setOnce panics if key is already present, block values never change
// during the processing of a block.
func setOnce(ctx Context, key contextKey, what string, value interface{}) Context {
	if ctx.Value(key) != nil {
		panic(what + " already set")
	}
	return context.WithValue(ctx, key, value)
}

// WithHeader panics if a header is already set.
func WithHeader(ctx Context, header abci.Header) Context {
	return setOnce(ctx, contextKeyHeader, "header", header)
}

// GetHeader returns the header of the current block, if any.
func GetHeader(ctx Context) (abci.Header, bool) {
	h, ok := ctx.Value(contextKeyHeader).(abci.Header)
	return h, ok
}

// WithHeight panics if a height is already set.
func WithHeight(ctx Context, height int64) Context {
	return setOnce(ctx, contextKeyHeight, "height", height)
}

func GetHeight(ctx Context) (int64, bool) {
	h, ok := ctx.Value(contextKeyHeight).(int64)
	return h, ok
}

// WithChainID panics if a chain id is already set or id is not valid.
func WithChainID(ctx Context, id string) Context {
	if !IsValidChainID(id) {
		panic(fmt.Sprintf("invalid chain id %q", id))
	}
	return setOnce(ctx, contextKeyChainID, "chain id", id)
}

// GetChainID panics if no chain id was set, which only happens when a
// handler is called outside of the application.
func GetChainID(ctx Context) string {
	id, ok := ctx.Value(contextKeyChainID).(string)
	if !ok {
		panic("chain id not set")
	}
	return id
}

// WithBlockTime stores t in UTC.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyBlockTime, t.UTC())
}

// BlockTime returns the time of the current block. A missing or zero
// time is an error.
func BlockTime(ctx Context) (time.Time, error) {
	t, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	switch {
	case !ok:
		return time.Time{}, errors.Wrap(errors.ErrState, "block time not present in the context")
	case t.IsZero():
		return t, errors.Wrap(errors.ErrState, "zero value block time in the context")
	}
	return t, nil
}

func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger never returns nil, a context without a logger discards
// everything.
func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return l
	}
	return nopLogger
}

// WithLogInfo adds key value pairs to every following log line.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

package utils

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	"github.com/tendermint/tendermint/libs/common"
)

// Tag values of KeyTagger for written and deleted keys.
var (
	recordSet    = []byte("s")
	recordDelete = []byte("d")
)

// KeyTagger tags a delivered transaction with every key it wrote, so
// clients can watch a single wallet or escrow record. Keys are upper
// case hex, as tendermint tag keys cannot be binary.
type KeyTagger struct{}

var _ weave.Decorator = KeyTagger{}

func NewKeyTagger() KeyTagger {
	return KeyTagger{}
}

func (KeyTagger) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (KeyTagger) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	rec := store.NewRecordingStore(db)
	res, err := next.Deliver(ctx, rec, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, changesToTags(rec.(store.Recorder).KVPairs())...)
	return res, nil
}

// changesToTags returns the tags sorted by key.
func changesToTags(changes map[string][]byte) common.KVPairs {
	if len(changes) == 0 {
		return nil
	}
	tags := make(common.KVPairs, 0, len(changes))
	for key, value := range changes {
		op := recordSet
		if value == nil {
			op = recordDelete
		}
		tags = append(tags, common.KVPair{
			Key:   []byte(strings.ToUpper(hex.EncodeToString([]byte(key)))),
			Value: op,
		})
	}
	tags.Sort()
	return tags
}

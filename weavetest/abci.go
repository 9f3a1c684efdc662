package weavetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/store"
	"github.com/iov-one/tradeweave/weave"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Tester is the part of testing.TB used by the runner.
type Tester interface {
	Helper()
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// WeaveApp is what a test sees of the application inside of a block.
// Reads always return the last committed state.
type WeaveApp interface {
	DeliverTx(weave.Tx) error
	CheckTx(weave.Tx) error
	weave.ReadOnlyKVStore
}

// WeaveRunner drives an ABCI application the way tendermint would,
// creating one block per InBlock call with deterministic block times.
// Infrastructure failures end the test, transaction failures are
// returned to the caller.
type WeaveRunner struct {
	abciStore
	t       Tester
	chainID string
	height  int64
	genesis time.Time
}

var _ WeaveApp = (*WeaveRunner)(nil)

func NewWeaveRunner(t Tester, app abci.Application, chainID string) *WeaveRunner {
	return &WeaveRunner{
		abciStore: abciStore{app: app},
		t:         t,
		chainID:   chainID,
		genesis:   time.Now().UTC().Truncate(time.Second),
	}
}

// Height of the last block created.
func (w *WeaveRunner) Height() int64 {
	return w.height
}

// InitChain loads the JSON encoding of genesis in its own block.
func (w *WeaveRunner) InitChain(genesis interface{}) {
	w.t.Helper()
	raw, err := json.Marshal(genesis)
	if err != nil {
		w.t.Fatalf("genesis serialization: %s", err)
	}
	changed := w.InBlock(func(WeaveApp) error {
		w.app.InitChain(abci.RequestInitChain{
			Time:          w.genesis,
			ChainId:       w.chainID,
			AppStateBytes: raw,
		})
		return nil
	})
	if !changed {
		w.t.Fatalf("genesis did not change the state")
	}
}

// InBlock runs fn between BeginBlock and Commit of a new block and
// reports whether the app hash changed.
func (w *WeaveRunner) InBlock(fn func(WeaveApp) error) bool {
	w.t.Helper()
	w.height++
	before := w.app.Info(abci.RequestInfo{}).LastBlockAppHash

	w.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{
			ChainID: w.chainID,
			Height:  w.height,
			Time:    w.genesis.Add(time.Duration(w.height) * time.Second),
		},
	})
	if err := fn(w); err != nil {
		w.t.Fatalf("block %d: %+v", w.height, err)
	}
	w.app.EndBlock(abci.RequestEndBlock{Height: w.height})

	return !bytes.Equal(before, w.app.Commit().Data)
}

// CheckTx returns a non nil error if the application rejects tx. The
// message starts with the ABCI code.
func (w *WeaveRunner) CheckTx(tx weave.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal tx")
	}
	res := w.app.CheckTx(raw)
	return txFailure(res.Code, res.Log)
}

// DeliverTx works like CheckTx, but executes tx.
func (w *WeaveRunner) DeliverTx(tx weave.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal tx")
	}
	res := w.app.DeliverTx(raw)
	return txFailure(res.Code, res.Log)
}

func txFailure(code uint32, log string) error {
	if code == errors.SuccessABCICode {
		return nil
	}
	return fmt.Errorf("%d: %s", code, log)
}

// abciStore reads the committed state through the query interface.
type abciStore struct {
	app abci.Application
}

func (s abciStore) query(path string, data []byte) (abci.ResponseQuery, error) {
	res := s.app.Query(abci.RequestQuery{Path: path, Data: data})
	if res.Code != errors.SuccessABCICode {
		return res, errors.ABCIError(res.Code, res.Log)
	}
	return res, nil
}

func (s abciStore) Get(key []byte) ([]byte, error) {
	res, err := s.query("/", key)
	if err != nil {
		return nil, err
	}
	var values weave.ResultSet
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	if len(values.Results) == 0 {
		return nil, nil
	}
	return values.Results[0], nil
}

func (s abciStore) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	return len(v) > 0, err
}

// Iterator can only list the whole state.
func (s abciStore) Iterator(start, end []byte) (weave.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrHuman, "only full range iteration is supported")
	}
	res, err := s.query("/?prefix", nil)
	if err != nil {
		return nil, err
	}
	var keys, values weave.ResultSet
	if err := keys.Unmarshal(res.Key); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	models, err := weave.JoinResults(&keys, &values)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

func (abciStore) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	return nil, errors.Wrap(errors.ErrHuman, "reverse iteration is not supported")
}

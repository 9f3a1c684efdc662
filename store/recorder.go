package store

// Recorder exposes the writes seen by a store returned from
// NewRecordingStore.
type Recorder interface {
	// KVPairs maps every written key to its last value, nil for deletes.
	KVPairs() map[string][]byte
}

// NewRecordingStore wraps db so that all writes, including those made
// through batches and caches, are recorded. A cacheable db stays
// cacheable so that wrappers like the savepoint decorator keep working.
func NewRecordingStore(db KVStore) KVStore {
	rec := &recordingStore{KVStore: db, changes: make(map[string][]byte)}
	if _, ok := db.(CacheableKVStore); ok {
		return cacheableRecordingStore{rec}
	}
	return rec
}

type recordingStore struct {
	KVStore
	changes map[string][]byte
}

var _ Recorder = (*recordingStore)(nil)

func (r *recordingStore) KVPairs() map[string][]byte {
	return r.changes
}

func (r *recordingStore) Set(key, value []byte) error {
	r.changes[string(key)] = value
	return r.KVStore.Set(key, value)
}

func (r *recordingStore) Delete(key []byte) error {
	r.changes[string(key)] = nil
	return r.KVStore.Delete(key)
}

// NewBatch records the batched operations once they are written.
func (r *recordingStore) NewBatch() Batch {
	return &recorderBatch{changes: r.changes, Batch: r.KVStore.NewBatch()}
}

type cacheableRecordingStore struct {
	*recordingStore
}

var _ CacheableKVStore = cacheableRecordingStore{}

// CacheWrap records cached writes only when the cache is written.
func (r cacheableRecordingStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(r, r.NewBatch(), nil)
}

type recorderBatch struct {
	Batch
	changes map[string][]byte
	pending []Op
}

func (r *recorderBatch) Set(key, value []byte) error {
	r.pending = append(r.pending, SetOp(key, value))
	return r.Batch.Set(key, value)
}

func (r *recorderBatch) Delete(key []byte) error {
	r.pending = append(r.pending, DelOp(key))
	return r.Batch.Delete(key)
}

func (r *recorderBatch) Write() error {
	if err := r.Batch.Write(); err != nil {
		return err
	}
	for _, op := range r.pending {
		r.changes[string(op.Key())] = op.Value()
	}
	r.pending = nil
	return nil
}

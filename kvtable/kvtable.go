package kvtable

import (
	"errors"
	"fmt"

	"github.com/GrinPlusPlus/libmw-core/locked"
	"github.com/datatrails/go-datatrails-common/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/vmihailenco/msgpack/v5"
)

type pendingEntry struct {
	data    []byte
	deleted bool
}

// Table is a leveldb table of msgpack encoded values. Puts and deletes are
// staged in a leveldb batch and are visible to Get straight away, but only
// reach the database on Commit.
//
// Staged and cached values are kept encoded, so every Get decodes a fresh
// value. Mutating a value, or anything it references, after Put or Get does
// not change the table.
type Table[V any] struct {
	locked.DirtyFlag

	log     logger.Logger
	path    string
	opts    Options
	db      *leveldb.DB
	batch   *leveldb.Batch
	pending map[string]pendingEntry
	cache   *lru.Cache[string, []byte]
}

// Open opens or creates the leveldb database at path.
func Open[V any](log logger.Logger, path string, opts ...Option) (*Table[V], error) {
	o := Options{CacheSize: DefaultCacheSize}
	for _, apply := range opts {
		apply(&o)
	}

	cache, err := lru.New[string, []byte](o.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("kvtable: cache: %w", err)
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("kvtable: open %s: %w", path, err)
	}
	log.Infof("opened table %s", path)
	return &Table[V]{
		log:     log,
		path:    path,
		opts:    o,
		db:      db,
		batch:   new(leveldb.Batch),
		pending: make(map[string]pendingEntry),
		cache:   cache,
	}, nil
}

func (t *Table[V]) Put(key []byte, value V) error {
	if t.db == nil {
		return ErrClosed
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvtable: encode %x: %w", key, err)
	}
	t.batch.Put(key, data)
	t.pending[string(key)] = pendingEntry{data: data}
	return nil
}

func (t *Table[V]) Delete(key []byte) error {
	if t.db == nil {
		return ErrClosed
	}
	t.batch.Delete(key)
	t.pending[string(key)] = pendingEntry{deleted: true}
	return nil
}

// Get sees staged changes first, then the cache, then the database.
func (t *Table[V]) Get(key []byte) (V, error) {
	var zero V
	if t.db == nil {
		return zero, ErrClosed
	}
	if p, ok := t.pending[string(key)]; ok {
		if p.deleted {
			return zero, fmt.Errorf("%w: %x", ErrNotFound, key)
		}
		return t.decode(key, p.data)
	}
	if data, ok := t.cache.Get(string(key)); ok {
		return t.decode(key, data)
	}

	data, err := t.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return zero, fmt.Errorf("%w: %x", ErrNotFound, key)
	}
	if err != nil {
		return zero, fmt.Errorf("kvtable: get %x: %w", key, err)
	}
	v, err := t.decode(key, data)
	if err != nil {
		return zero, err
	}
	t.cache.Add(string(key), data)
	return v, nil
}

func (t *Table[V]) decode(key, data []byte) (V, error) {
	var v V
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("kvtable: decode %x: %w", key, err)
	}
	return v, nil
}

func (t *Table[V]) Has(key []byte) (bool, error) {
	_, err := t.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Pending is the number of staged puts and deletes.
func (t *Table[V]) Pending() int { return t.batch.Len() }

// Commit writes the staged batch in one leveldb write.
func (t *Table[V]) Commit() error {
	if t.db == nil {
		return ErrClosed
	}
	if t.batch.Len() == 0 {
		return nil
	}
	if err := t.db.Write(t.batch, &opt.WriteOptions{Sync: t.opts.Sync}); err != nil {
		return fmt.Errorf("kvtable: write %s: %w", t.path, err)
	}
	for k, p := range t.pending {
		if p.deleted {
			t.cache.Remove(k)
			continue
		}
		t.cache.Add(k, p.data)
	}
	t.log.Debugf("committed %d changes to %s", t.batch.Len(), t.path)
	t.reset()
	return nil
}

func (t *Table[V]) Rollback() error {
	t.reset()
	return nil
}

func (t *Table[V]) reset() {
	t.batch.Reset()
	clear(t.pending)
}

// Close drops anything staged and closes the database.
func (t *Table[V]) Close() error {
	if t.db == nil {
		return nil
	}
	t.reset()
	err := t.db.Close()
	t.db = nil
	return err
}

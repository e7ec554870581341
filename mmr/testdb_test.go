package mmr

import (
	"fmt"
	"testing"
)

// testDb is the smallest NodeAppender, used to test AppendLeafHash directly.
type testDb struct {
	t     *testing.T
	store map[Index]Hash
	next  Index
}

func NewTestDb(t *testing.T) *testDb {
	return &testDb{t: t, store: make(map[Index]Hash)}
}

func (db *testDb) GetHash(i Index) (Hash, error) {
	h, ok := db.store[i]
	if !ok {
		return Hash{}, fmt.Errorf("%w: %d", ErrNotFound, i)
	}
	return h, nil
}

func (db *testDb) AddHash(h Hash) error {
	db.store[db.next] = h
	db.next++
	return nil
}

// numberedHash gives each test leaf a distinct, recognisable hash.
func numberedHash(n uint64) Hash {
	var h Hash
	h[0] = byte(n)
	h[1] = byte(n >> 8)
	return h
}

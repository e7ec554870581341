package locked

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// lockSeq orders every Locked ever made. Multi-resource locks acquire in
// ascending sequence so no two callers can wait on each other.
var lockSeq atomic.Uint64

// core is the type independent part of a Locked.
type core struct {
	mu    sync.RWMutex
	seq   uint64
	batch Batchable
	hooks WriteHooks
}

// Locked owns a resource and guards it with a reader/writer lock. The
// resource must not be reached except through the views handed out here.
type Locked[T any] struct {
	core
	res T
}

// New wraps a resource that commits nothing on release. BatchWrite on the
// result fails with ErrNotBatchable.
func New[T any](res T) *Locked[T] {
	l := &Locked[T]{res: res}
	l.seq = lockSeq.Add(1)
	l.hooks, _ = any(res).(WriteHooks)
	return l
}

// NewBatchable wraps a resource whose writers commit on release, and which
// can join a multi-resource transaction.
func NewBatchable[T Batchable](res T) *Locked[T] {
	l := New(res)
	l.batch = res
	return l
}

func (l *Locked[T]) IsBatchable() bool { return l.batch != nil }

// Read blocks until no writer holds the lock.
func (l *Locked[T]) Read() *Reader[T] {
	l.mu.RLock()
	return &Reader[T]{l: l}
}

// Write blocks until the lock is free. Releasing the writer commits the
// resource if it is batchable and dirty, and rolls it back otherwise.
func (l *Locked[T]) Write() *Writer[T] {
	l.mu.Lock()
	l.beginWrite()
	return &Writer[T]{l: l}
}

// BatchWrite is Write for a change the caller commits explicitly, with
// Writer.Commit. Releasing it always rolls back whatever is still pending.
func (l *Locked[T]) BatchWrite() (*Writer[T], error) {
	if l.batch == nil {
		return nil, ErrNotBatchable
	}
	l.mu.Lock()
	l.beginWrite()
	return &Writer[T]{l: l, batched: true}, nil
}

func (c *core) beginWrite() {
	if c.batch != nil {
		c.batch.SetDirty(true)
	}
	if c.hooks != nil {
		c.hooks.OnInitWrite()
	}
}

// endWrite settles the resource and drops the exclusive lock. commit selects
// immediate mode.
func (c *core) endWrite(commit bool) error {
	defer c.mu.Unlock()
	if c.hooks != nil {
		defer c.hooks.OnEndWrite()
	}
	if c.batch == nil {
		return nil
	}
	if commit && c.batch.IsDirty() {
		return c.commit()
	}
	c.batch.SetDirty(false)
	return c.batch.Rollback()
}

// commit commits the resource and clears the dirty flag. A failed commit is
// rolled back so nothing half written stays pending.
func (c *core) commit() error {
	c.batch.SetDirty(false)
	err := c.batch.Commit()
	if err == nil {
		return nil
	}
	if rbErr := c.batch.Rollback(); rbErr != nil {
		return errors.Join(err, fmt.Errorf("rollback after failed commit: %w", rbErr))
	}
	return err
}

// Reader is a shared view. Release it exactly once.
type Reader[T any] struct {
	l        *Locked[T]
	released bool
}

// Get panics after Release.
func (r *Reader[T]) Get() T {
	if r.released {
		panic(fmt.Sprintf("locked: read of resource %d after release", r.l.seq))
	}
	return r.l.res
}

func (r *Reader[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.l.mu.RUnlock()
}

// Writer is an exclusive view. Release it exactly once.
type Writer[T any] struct {
	l        *Locked[T]
	batched  bool
	released bool
}

// Get panics after Release.
func (w *Writer[T]) Get() T {
	if w.released {
		panic(fmt.Sprintf("locked: write of resource %d after release", w.l.seq))
	}
	return w.l.res
}

func (w *Writer[T]) Batched() bool { return w.batched }

// Commit commits the resource now, without releasing the lock.
func (w *Writer[T]) Commit() error {
	if w.released {
		return ErrReleased
	}
	if w.l.batch == nil {
		return ErrNotBatchable
	}
	return w.l.commit()
}

// Rollback discards pending changes now. Release will not commit them.
func (w *Writer[T]) Rollback() error {
	if w.released {
		return ErrReleased
	}
	if w.l.batch == nil {
		return nil
	}
	w.l.batch.SetDirty(false)
	return w.l.batch.Rollback()
}

// Release commits (immediate mode, dirty) or rolls back and then unlocks. The
// lock is dropped even when the commit fails.
func (w *Writer[T]) Release() error {
	if w.released {
		return nil
	}
	w.released = true
	return w.l.endWrite(!w.batched)
}

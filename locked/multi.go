package locked

import (
	"errors"
	"fmt"
	"slices"
)

// Participant is any Locked value, whatever its resource type.
type Participant interface {
	lockCore() *core
}

// Holder is a set of held locks, see Use.
type Holder interface {
	holds(c *core) bool
}

// ordered returns the cores of parts sorted by creation sequence.
func ordered(parts []Participant) ([]*core, error) {
	cores := make([]*core, 0, len(parts))
	for _, p := range parts {
		cores = append(cores, p.lockCore())
	}
	sorted := slices.Clone(cores)
	slices.SortFunc(sorted, func(a, b *core) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, ErrDuplicateParticipant
		}
	}
	return sorted, nil
}

// Tx holds the exclusive locks of several batchable resources. Mutate them
// through Use, then Commit. Release rolls back anything not committed.
//
// The resources do not share a log. Commit is all or nothing with respect to
// other lockers, not with respect to a crash part way through.
type Tx struct {
	order    []*core // caller order, used for commit
	locked   []*core // acquisition order
	released bool
}

// BatchLock takes the exclusive lock of every part, always in the same global
// order, and opens each in batched mode. Every part must be batchable; the
// check happens before any lock is taken.
func BatchLock(parts ...Participant) (*Tx, error) {
	for i, p := range parts {
		if p.lockCore().batch == nil {
			return nil, fmt.Errorf("%w: participant %d", ErrNotBatchable, i)
		}
	}
	sorted, err := ordered(parts)
	if err != nil {
		return nil, err
	}
	tx := &Tx{locked: sorted}
	for _, p := range parts {
		tx.order = append(tx.order, p.lockCore())
	}
	for _, c := range sorted {
		c.mu.Lock()
		c.beginWrite()
	}
	return tx, nil
}

func (tx *Tx) holds(c *core) bool { return !tx.released && slices.Contains(tx.locked, c) }

// Commit commits the resources in the order they were passed to BatchLock.
// On the first failure the remaining resources, including the failed one, are
// rolled back and the commit error is returned. Resources committed before
// the failure stay committed.
func (tx *Tx) Commit() error {
	if tx.released {
		return ErrReleased
	}
	for i, c := range tx.order {
		if err := c.commit(); err != nil {
			var errs []error
			errs = append(errs, err)
			for _, rest := range tx.order[i+1:] {
				rest.batch.SetDirty(false)
				if rbErr := rest.batch.Rollback(); rbErr != nil {
					errs = append(errs, rbErr)
				}
			}
			return errors.Join(errs...)
		}
	}
	return nil
}

// Release rolls back whatever is still pending and unlocks in reverse
// acquisition order.
func (tx *Tx) Release() error {
	if tx.released {
		return nil
	}
	tx.released = true
	var errs []error
	for i := len(tx.locked) - 1; i >= 0; i-- {
		if err := tx.locked[i].endWrite(false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SharedSet holds the shared locks of several resources.
type SharedSet struct {
	locked   []*core
	released bool
}

// LockShared takes the shared lock of every part in the global order. A part
// passed twice is only locked once.
func LockShared(parts ...Participant) *SharedSet {
	cores := make([]*core, 0, len(parts))
	for _, p := range parts {
		if c := p.lockCore(); !slices.Contains(cores, c) {
			cores = append(cores, c)
		}
	}
	shared := make([]Participant, 0, len(cores))
	for _, c := range cores {
		shared = append(shared, c)
	}
	// cores are unique, so ordered cannot fail
	sorted, _ := ordered(shared)
	for _, c := range sorted {
		c.mu.RLock()
	}
	return &SharedSet{locked: sorted}
}

func (c *core) lockCore() *core { return c }

func (s *SharedSet) holds(c *core) bool { return !s.released && slices.Contains(s.locked, c) }

func (s *SharedSet) Release() {
	if s.released {
		return
	}
	s.released = true
	for i := len(s.locked) - 1; i >= 0; i-- {
		s.locked[i].mu.RUnlock()
	}
}

// Use returns the resource of l, which held must hold and not have released.
// Use panics otherwise.
// Resources reached through a SharedSet must only be read.
func Use[T any](held Holder, l *Locked[T]) T {
	if !held.holds(&l.core) {
		panic(fmt.Sprintf("locked: resource %d is not held", l.seq))
	}
	return l.res
}

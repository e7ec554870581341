package leafset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/GrinPlusPlus/libmw-core/locked"
	"github.com/GrinPlusPlus/libmw-core/mmr"
	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/datatrails/go-datatrails-common/logger"
)

const FileName = "leafset.bin"

// LeafSet records which leaves of an output mmr are unspent. Changes are
// staged in current and written on Commit.
type LeafSet struct {
	locked.DirtyFlag

	log       logger.Logger
	path      string
	committed *roaring64.Bitmap
	current   *roaring64.Bitmap
}

// Open loads the leaf set at path, or starts an empty one if there is no
// file yet.
func Open(log logger.Logger, path string) (*LeafSet, error) {
	committed := roaring64.New()
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("leafset: read %s: %w", path, err)
	default:
		if _, err = committed.ReadFrom(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("leafset: decode %s: %w", path, err)
		}
	}
	log.Infof("opened leaf set %s: %d unspent", path, committed.GetCardinality())
	return &LeafSet{
		log:       log,
		path:      path,
		committed: committed,
		current:   committed.Clone(),
	}, nil
}

func (s *LeafSet) Add(idx mmr.LeafIndex) { s.current.Add(idx.Ordinal()) }

func (s *LeafSet) Remove(idx mmr.LeafIndex) { s.current.Remove(idx.Ordinal()) }

func (s *LeafSet) Contains(idx mmr.LeafIndex) bool { return s.current.Contains(idx.Ordinal()) }

// GetSize is the number of unspent leaves.
func (s *LeafSet) GetSize() uint64 { return s.current.GetCardinality() }

// Root hashes the first numLeaves bits of the set. Leaf n is bit 7 - n%8 of
// byte n/8.
func (s *LeafSet) Root(numLeaves uint64) mmr.Hash {
	bitmap := make([]byte, (numLeaves+7)/8)
	it := s.current.Iterator()
	for it.HasNext() {
		n := it.Next()
		if n >= numLeaves {
			break
		}
		bitmap[n/8] |= 0x80 >> (n % 8)
	}
	return mmr.Blake2b(bitmap)
}

// Rewind forgets every leaf from numLeaves on and marks leavesToAdd, the
// leaves the rewound blocks spent, unspent again.
func (s *LeafSet) Rewind(numLeaves uint64, leavesToAdd []mmr.LeafIndex) {
	s.current.RemoveRange(numLeaves, math.MaxUint64)
	for _, idx := range leavesToAdd {
		s.current.Add(idx.Ordinal())
	}
}

// Commit replaces the file with the current set.
func (s *LeafSet) Commit() error {
	if s.current.Equals(s.committed) {
		if _, err := os.Stat(s.path); err == nil {
			return nil
		}
	}
	if err := writeBitmap(s.path, s.current); err != nil {
		return err
	}
	s.committed = s.current.Clone()
	s.log.Debugf("committed leaf set %s: %d unspent", s.path, s.committed.GetCardinality())
	return nil
}

func (s *LeafSet) Rollback() error {
	s.current = s.committed.Clone()
	return nil
}

// Snapshot writes the current set, committed or not, to path.
func (s *LeafSet) Snapshot(path string) error {
	return writeBitmap(path, s.current)
}

// writeBitmap writes to a temporary file in the same directory and renames it
// over path.
func writeBitmap(path string, b *roaring64.Bitmap) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("leafset: create temp for %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err = b.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("leafset: write %s: %w", tmp, err)
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("leafset: sync %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("leafset: close %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("leafset: rename %s: %w", tmp, err)
	}
	return nil
}

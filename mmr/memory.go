package mmr

import (
	"fmt"
	"hash"

	"github.com/GrinPlusPlus/libmw-core/locked"
)

// MemBackend keeps the mmr in memory. Commit and Rollback do nothing, every
// mutation is immediately visible.
type MemBackend struct {
	locked.DirtyFlag

	hasher hash.Hash
	leaves []Leaf
	hashes []Hash
}

func NewMemBackend() *MemBackend {
	return &MemBackend{hasher: NewHasher()}
}

func (b *MemBackend) AddLeaf(leaf Leaf) error {
	next := b.NextLeaf()
	if leaf.LeafIndex() != next {
		return fmt.Errorf("%w: got %v, want %v", ErrLeafOutOfOrder, leaf.LeafIndex(), next)
	}
	b.leaves = append(b.leaves, leaf)
	if _, err := AppendLeafHash(b, b.hasher, leaf.LeafIndex(), leaf.Hash()); err != nil {
		return err
	}
	return nil
}

func (b *MemBackend) AddHash(h Hash) error {
	b.hashes = append(b.hashes, h)
	return nil
}

func (b *MemBackend) Rewind(next LeafIndex) error {
	if next.Ordinal() > uint64(len(b.leaves)) {
		return fmt.Errorf("%w: %v, have %d leaves", ErrRewindPastEnd, next, len(b.leaves))
	}
	b.leaves = b.leaves[:next.Ordinal()]
	b.hashes = b.hashes[:next.Position()]
	return nil
}

func (b *MemBackend) GetNumLeaves() uint64 { return uint64(len(b.leaves)) }

func (b *MemBackend) GetHash(idx Index) (Hash, error) {
	if uint64(idx) >= uint64(len(b.hashes)) {
		return Hash{}, fmt.Errorf("%w: index %d, have %d nodes", ErrNotFound, idx, len(b.hashes))
	}
	return b.hashes[idx], nil
}

func (b *MemBackend) GetLeaf(idx LeafIndex) (Leaf, error) {
	if idx.Ordinal() >= uint64(len(b.leaves)) {
		return Leaf{}, fmt.Errorf("%w: %v, have %d leaves", ErrNotFound, idx, len(b.leaves))
	}
	return b.leaves[idx.Ordinal()], nil
}

func (b *MemBackend) NextLeaf() LeafIndex { return LeafIndexAt(uint64(len(b.leaves))) }

func (b *MemBackend) Commit() error { return nil }

func (b *MemBackend) Rollback() error { return nil }

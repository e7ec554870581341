package mmr

import (
	"fmt"

	"github.com/GrinPlusPlus/libmw-core/locked"
)

// MMR is the accumulator over a Backend. It holds no state of its own beyond
// the dirty flag used by locked.Locked, the leaf and node counts are always
// derived from the backend.
type MMR struct {
	locked.DirtyFlag

	backend Backend
}

func NewMMR(backend Backend) *MMR {
	return &MMR{backend: backend}
}

func (m *MMR) Backend() Backend { return m.backend }

// Add hashes data into a new leaf at the next leaf index.
func (m *MMR) Add(data []byte) (LeafIndex, error) {
	leaf := NewLeaf(m.backend.NextLeaf(), data)
	if err := m.backend.AddLeaf(leaf); err != nil {
		return LeafIndex{}, err
	}
	return leaf.LeafIndex(), nil
}

// AddLeaf adds a leaf built by the caller. It must be at the next leaf index.
func (m *MMR) AddLeaf(leaf Leaf) error {
	if next := m.backend.NextLeaf(); leaf.LeafIndex() != next {
		return fmt.Errorf("%w: got %v, want %v", ErrLeafOutOfOrder, leaf.LeafIndex(), next)
	}
	return m.backend.AddLeaf(leaf)
}

func (m *MMR) Get(idx LeafIndex) (Leaf, error) { return m.backend.GetLeaf(idx) }

func (m *MMR) GetHash(idx Index) (Hash, error) { return m.backend.GetHash(idx) }

func (m *MMR) GetNumLeaves() uint64 { return m.backend.GetNumLeaves() }

func (m *MMR) GetNumNodes() uint64 { return NodeCount(m.backend.GetNumLeaves()) }

// Root bags the peaks of the current mmr. An empty mmr has EmptyRoot.
func (m *MMR) Root() (Hash, error) {
	return GetRoot(m.backend, m.GetNumNodes())
}

// Rewind drops every leaf from numLeaves onward, and the interior nodes that
// commit them. Rewind(0) empties the mmr.
func (m *MMR) Rewind(numLeaves uint64) error {
	if have := m.GetNumLeaves(); numLeaves > have {
		return fmt.Errorf("%w: %d, have %d", ErrRewindPastEnd, numLeaves, have)
	}
	return m.backend.Rewind(LeafIndexAt(numLeaves))
}

// Proof returns the inclusion proof for idx against the current root.
func (m *MMR) Proof(idx LeafIndex) (Proof, error) {
	if idx.Ordinal() >= m.GetNumLeaves() {
		return Proof{}, fmt.Errorf("%w: %v", ErrIndexOutOfRange, idx)
	}
	return InclusionProof(m.backend, m.GetNumNodes(), idx.Index())
}

func (m *MMR) Commit() error { return m.backend.Commit() }

func (m *MMR) Rollback() error { return m.backend.Rollback() }

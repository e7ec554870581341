package mmr

import "fmt"

// LeafIndex identifies a leaf by both its ordinal (how many leaves precede
// it) and its Index in the node sequence.
type LeafIndex struct {
	ordinal uint64
	index   Index
}

// LeafIndexAt returns the LeafIndex for the leaf with the given ordinal. The
// leaf index is 2n - popcount(n), each set bit in n being a completed peak
// whose interior nodes have not yet been paid for.
func LeafIndexAt(ordinal uint64) LeafIndex {
	return LeafIndex{
		ordinal: ordinal,
		index:   Index(2*ordinal - PopCount64(ordinal)),
	}
}

func (l LeafIndex) Ordinal() uint64 { return l.ordinal }

func (l LeafIndex) Index() Index { return l.index }

// Position is the zero based node position of the leaf. For the leaf with
// ordinal n it is also the node count of an mmr holding n leaves.
func (l LeafIndex) Position() uint64 { return uint64(l.index) }

func (l LeafIndex) Next() LeafIndex { return LeafIndexAt(l.ordinal + 1) }

func (l LeafIndex) String() string {
	return fmt.Sprintf("leaf(%d@%d)", l.ordinal, l.index)
}

// NodeCount is the number of nodes in an mmr holding numLeaves leaves.
func NodeCount(numLeaves uint64) uint64 {
	return LeafIndexAt(numLeaves).Position()
}

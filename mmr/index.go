package mmr

import "fmt"

// Index is a zero based position in the post-order flattening of the mmr.
// Leaves and interior nodes share the same sequence.
type Index uint64

// Height of the node at i. Leaves are height 0.
func (i Index) Height() uint64 {
	return IndexHeight(uint64(i))
}

func (i Index) IsLeaf() bool {
	return i.Height() == 0
}

// IsLeftSibling is true when the parent of i is not the next node in the
// sequence.
func (i Index) IsLeftSibling() bool {
	return IndexHeight(uint64(i)+1) <= i.Height()
}

// Parent returns the index of the node that commits to i. It does not
// consider the size of any particular mmr: the parent of a peak is returned
// even though no such node exists yet. Use ParentWithin for a bounded query.
func (i Index) Parent() Index {
	h := i.Height()
	if i.IsLeftSibling() {
		return i + Index(ParentOffset(h))
	}
	return i + 1
}

// Sibling returns the other child of Parent. Like Parent it ignores the mmr
// size, see SiblingWithin.
func (i Index) Sibling() Index {
	h := i.Height()
	if i.IsLeftSibling() {
		return i + Index(SiblingOffset(h))
	}
	return i - Index(SiblingOffset(h))
}

// ParentWithin is Parent for the mmr of mmrSize nodes. It panics when i or
// its parent lies outside that mmr, i being a peak.
func (i Index) ParentWithin(mmrSize uint64) Index {
	p := i.Parent()
	if uint64(i) >= mmrSize || uint64(p) >= mmrSize {
		panic(fmt.Sprintf("mmr: index %d has no parent in an mmr of %d nodes", i, mmrSize))
	}
	return p
}

// SiblingWithin is Sibling for the mmr of mmrSize nodes. It panics when i or
// its sibling lies outside that mmr.
func (i Index) SiblingWithin(mmrSize uint64) Index {
	s := i.Sibling()
	if uint64(i) >= mmrSize || uint64(s) >= mmrSize {
		panic(fmt.Sprintf("mmr: index %d has no sibling in an mmr of %d nodes", i, mmrSize))
	}
	return s
}

// LeftChild panics for leaves.
func (i Index) LeftChild() Index {
	h := i.Height()
	if h == 0 {
		panic(fmt.Sprintf("mmr: leaf index %d has no left child", i))
	}
	return i - (1 << h)
}

// RightChild panics for leaves.
func (i Index) RightChild() Index {
	if i.IsLeaf() {
		panic(fmt.Sprintf("mmr: leaf index %d has no right child", i))
	}
	return i - 1
}

func (i Index) Next() Index { return i + 1 }

func (i Index) Position() uint64 { return uint64(i) }

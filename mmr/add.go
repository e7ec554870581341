package mmr

import (
	"hash"
)

// NodeAppender is the minimum a store needs for AppendLeafHash. Every Backend
// satisfies it.
type NodeAppender interface {
	GetHash(i Index) (Hash, error)
	AddHash(h Hash) error
}

// AppendLeafHash adds the hash of the leaf at leaf to the store and back fills
// any interior nodes 'above and to the left'. The store must currently hold
// exactly leaf.Position() nodes.
//
// Returns the number of nodes after the addition. This is also the index of
// the next leaf.
func AppendLeafHash(store NodeAppender, hasher hash.Hash, leaf LeafIndex, leafHash Hash) (Index, error) {

	if err := store.AddHash(leafHash); err != nil {
		return 0, err
	}

	// For any node we add, if the next node would be higher in the tree, the
	// node just added completes a mountain and its parent can be appended.
	//
	//  0 1 <- we add '1'
	//
	//   2  <- so we get to append '2' as well
	//  / \
	// 0   1
	//
	// The right child of next is always the node appended immediately before
	// it, so the running hash stands in for a read.
	next := leaf.Index() + 1
	height := uint64(0)
	right := leafHash
	for IndexHeight(uint64(next)) > height {

		iLeft := next - Index(ParentOffset(height))

		left, err := store.GetHash(iLeft)
		if err != nil {
			return 0, err
		}

		// Interior nodes commit to their position, see:
		// https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py#L142
		right = HashPosPair64(hasher, uint64(next), left, right)
		if err = store.AddHash(right); err != nil {
			return 0, err
		}
		next++
		height++
	}
	return next, nil
}

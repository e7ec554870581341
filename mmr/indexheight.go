package mmr

// References:
// * https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py#L18
// * https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606
//
// The functions in this file work with *one based* positions (pos). Index and
// LeafIndex are zero based and convert at their boundary. See doc.go for the
// derivation of the height rule.

// JumpLeftPerfect 'jumps left' from pos by the size of the largest perfect
// tree which precedes it, landing on the node at the same height in that
// tree.
//
//	3            15
//	           /    \
//	          /      \
//	         /        \
//	2       7          14
//	      /   \       /   \
//	1    3     6    10     13      18
//	    / \  /  \   / \   /  \    /  \
//	0  1   2 4   5 8   9 11   12 16   17
//
// JumpLeftPerfect(13) is 6, and JumpLeftPerfect(6) is 3, which is all ones.
func JumpLeftPerfect(pos uint64) uint64 {
	mostSignificantBit := uint64(1) << (BitLength64(pos) - 1)
	return pos - (mostSignificantBit - 1)
}

// PosHeight returns the height of the one based position pos. Leaves have
// height 0.
func PosHeight(pos uint64) uint64 {
	for !AllOnes(pos) {
		pos = JumpLeftPerfect(pos)
	}
	return BitLength64(pos) - 1
}

// IndexHeight returns the height of the zero based mmr index i.
func IndexHeight(i uint64) uint64 {
	return PosHeight(i + 1)
}

// JumpRightSibling moves from pos to the next node at the same height. The
// result is only a true sibling when pos is a left child.
func JumpRightSibling(pos uint64) uint64 {
	return pos + (1 << (PosHeight(pos) + 1)) - 1
}

// LeftChildPos returns the one based position of the left child of pos, or
// false when pos is a leaf.
func LeftChildPos(pos uint64) (uint64, bool) {
	height := PosHeight(pos)
	if height == 0 {
		return 0, false
	}
	return pos - (1 << height), true
}

// SiblingOffset is the distance between a left child at height and its right
// sibling.
func SiblingOffset(height uint64) uint64 {
	return (2 << height) - 1
}

// ParentOffset is the distance from a left child at height to its parent.
func ParentOffset(height uint64) uint64 {
	return 2 << height
}

/*
Package mmr implements the Merkle Mountain Range accumulator that commits the
outputs, kernels and rangeproofs of the chain.

# Post order

The mmr is a forest of perfect binary trees flattened in post order: children
first, left to right, then the parent. For 4 leaves

	     6
	   /   \
	  2     5
	 / \   / \
	0   1 3   4

the nodes are stored as [0, 1, 2, 3, 4, 5, 6]. Post order is also the
natural insertion order. When a leaf is added, every parent it completes is
appended straight after it (see AppendLeafHash), so nothing is ever inserted
and the trees only grow to the right.

Index is a zero based post order position. LeafIndex pairs a leaf's ordinal
with its Index, the leaf with ordinal n always being at 2n - popcount(n).

# Heights

Writing the one based positions of a perfect tree in binary, the left most
branch is all 1's and the height of any node is the number of 1's on the left
most branch of its tree, minus 1:

	            1111
	           /    \
	        111      1110
	       /   \     /   \
	     11   110  1010   1101
	    / \   / \  / \    / \
	   1  10 100 101 ...

Subtracting (most significant bit - 1) from a position jumps to the same
height in the perfect tree on the left. Repeating until the position is all
1's gives the height, see PosHeight. Everything else, parent, sibling and
children, is a power of 2 offset from the height.

# Hashing

Leaves are Blake2b-256 of their payload unless the caller supplies the hash.
Interior nodes commit to their own zero based index,

	H(LE64(index) || left || right)

The root bags the peaks from right to left, seeding with the right most peak
and committing each step to the mmr size,

	running = H(LE64(size) || running || peak)

An mmr with a single peak has that peak as its root, and the empty mmr has
H(LE64(0)).

References

  - https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606
  - https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py
  - https://docs.grin.mw/wiki/chain-state/merkle-mountain-range/
*/
package mmr

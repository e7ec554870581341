package mmr

// Backend stores the node hashes and leaf payloads of one mmr. Mutations are
// pending until Commit and are discarded by Rollback.
//
// AddLeaf appends the leaf hash and then every interior node the leaf
// completes, see AppendLeafHash. AddHash appends a single node hash and is
// what AppendLeafHash uses for the back fill.
//
// Rewind truncates to the state just before next was added, so that next is
// the next leaf.
type Backend interface {
	AddLeaf(leaf Leaf) error
	AddHash(hash Hash) error
	Rewind(next LeafIndex) error
	GetNumLeaves() uint64
	GetHash(idx Index) (Hash, error)
	GetLeaf(idx LeafIndex) (Leaf, error)
	NextLeaf() LeafIndex
	Commit() error
	Rollback() error
}

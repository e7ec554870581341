package mmr

// Leaf is an immutable payload at a fixed LeafIndex. The hash is fixed when
// the leaf is made.
type Leaf struct {
	index LeafIndex
	hash  Hash
	data  []byte
}

// NewLeaf hashes data with Blake2b-256. data is copied.
func NewLeaf(index LeafIndex, data []byte) Leaf {
	return Leaf{
		index: index,
		hash:  Blake2b(data),
		data:  append([]byte(nil), data...),
	}
}

// NewLeafWithHash is for leaves whose hash is not the plain digest of their
// payload, such as commitments hashed elsewhere.
func NewLeafWithHash(index LeafIndex, hash Hash, data []byte) Leaf {
	return Leaf{
		index: index,
		hash:  hash,
		data:  append([]byte(nil), data...),
	}
}

func (l Leaf) LeafIndex() LeafIndex { return l.index }

func (l Leaf) Hash() Hash { return l.hash }

// Data returns a copy of the payload.
func (l Leaf) Data() []byte { return append([]byte(nil), l.data...) }

func (l Leaf) Len() int { return len(l.data) }

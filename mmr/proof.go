package mmr

import (
	"fmt"
	"hash"
	"slices"
)

// Proof shows that the node at Index is committed by the root of the mmr of
// MMRSize nodes.
//
// Path holds the siblings from the node up to its local peak. Peaks holds
// every peak hash, highest first, so the verifier can bag them itself.
type Proof struct {
	MMRSize uint64
	Index   Index
	Path    []Hash
	Peaks   []Hash
}

// InclusionProof produces the proof for the node at i in the mmr of mmrSize
// read from store.
func InclusionProof(store HashGetter, mmrSize uint64, i Index) (Proof, error) {
	if uint64(i) >= mmrSize {
		return Proof{}, fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, i, mmrSize)
	}
	peaks, err := PeakHashes(store, mmrSize)
	if err != nil {
		return Proof{}, err
	}

	var path []Hash
	cur := i
	// A node is its own local peak once its parent lies beyond the mmr.
	for uint64(cur.Parent()) < mmrSize {
		h, err := store.GetHash(cur.SiblingWithin(mmrSize))
		if err != nil {
			return Proof{}, err
		}
		path = append(path, h)
		cur = cur.ParentWithin(mmrSize)
	}
	return Proof{MMRSize: mmrSize, Index: i, Path: path, Peaks: peaks}, nil
}

// IncludedRoot climbs from the node at i, whose hash is nodeHash, using the
// sibling path. It returns the index and hash of the local peak reached.
// Interior and leaf nodes are handled identically.
func IncludedRoot(hasher hash.Hash, i Index, nodeHash Hash, path []Hash) (Index, Hash) {

	root := nodeHash
	g := i.Height()

	for _, sibling := range path {

		// If the index after i is higher, it is the parent, and i is the
		// right child
		if IndexHeight(uint64(i)+1) > g {
			i = i + 1
			root = HashPosPair64(hasher, uint64(i), sibling, root)
		} else {
			// The parent of a left child is stored immediately after its
			// right sibling.
			i = i + Index(ParentOffset(g))
			root = HashPosPair64(hasher, uint64(i), root, sibling)
		}
		g++
	}
	return i, root
}

// Verify checks nodeHash is committed at p.Index by root.
func (p Proof) Verify(root Hash, nodeHash Hash) error {
	peakIndex, peakHash := IncludedRoot(NewHasher(), p.Index, nodeHash, p.Path)

	k := slices.Index(Peaks(p.MMRSize), peakIndex)
	if k < 0 || k >= len(p.Peaks) {
		return fmt.Errorf(
			"%w: proven node %d is not a peak of the mmr of size %d", ErrVerifyInclusionFailed, peakIndex, p.MMRSize)
	}
	if p.Peaks[k] != peakHash {
		return fmt.Errorf("%w: proven peak not present in the accumulator", ErrVerifyInclusionFailed)
	}
	if BagPeaks(p.MMRSize, p.Peaks) != root {
		return fmt.Errorf("%w: peaks do not bag to the root", ErrVerifyInclusionFailed)
	}
	return nil
}

package mmr

import "fmt"

// HashGetter reads committed or pending node hashes by index.
type HashGetter interface {
	GetHash(i Index) (Hash, error)
}

// PeakHashes returns the hashes of Peaks(mmrSize), highest peak first.
func PeakHashes(store HashGetter, mmrSize uint64) ([]Hash, error) {
	if mmrSize == 0 {
		return nil, nil
	}
	peaks := Peaks(mmrSize)
	if peaks == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, mmrSize)
	}
	hashes := make([]Hash, 0, len(peaks))
	for _, i := range peaks {
		h, err := store.GetHash(i)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// BagPeaks folds the peaks, listed highest first, into a single root. The
// fold runs right to left, each step committing to the mmr size:
//
//	running = H(LE64(mmrSize) || running || peak)
//
// A single peak is returned unchanged, and no peaks give EmptyRoot.
func BagPeaks(mmrSize uint64, peaks []Hash) Hash {
	if len(peaks) == 0 {
		return EmptyRoot()
	}
	hasher := NewHasher()
	running := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i-- {
		running = HashPosPair64(hasher, mmrSize, running, peaks[i])
	}
	return running
}

// GetRoot bags the peaks of the mmr of mmrSize read from store.
func GetRoot(store HashGetter, mmrSize uint64) (Hash, error) {
	peaks, err := PeakHashes(store, mmrSize)
	if err != nil {
		return Hash{}, err
	}
	return BagPeaks(mmrSize, peaks), nil
}

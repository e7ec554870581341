package mmr

// Peaks returns the indices of the mountain peaks in an mmr of mmrSize nodes.
// This is completely deterministic given a valid mmr size. If the mmr size is
// invalid, or zero, this function returns nil.
//
// The highest peak has the lowest index and is listed first. The 'little'
// peaks can only appear to the 'right' of the first perfect peak, and so on
// recursively.
//
// So given the example below, which has an mmrSize of 18, the peaks are [14, 17]
//
//	3            14
//	           /    \
//	          /      \
//	         /        \
//	2       6          13
//	      /   \       /   \
//	1    2     5     9     12     17
//	    / \   / \   / \   /  \   /  \
//	0  0   1 3   4 7   8 10  11 15  16
func Peaks(mmrSize uint64) []Index {
	if mmrSize == 0 {
		return nil
	}

	// catch invalid range, where siblings exist but no parent exists
	if PosHeight(mmrSize+1) > PosHeight(mmrSize) {
		return nil
	}

	// Work in one based positions, where the top peak always has all
	// binary '1's
	top := uint64(1)
	for (top - 1) <= mmrSize {
		top <<= 1
	}
	top = (top >> 1) - 1
	if top == 0 {
		return nil
	}

	peaks := []Index{Index(top - 1)}
	peak := top
OuterLoop:
	for {
		peak = JumpRightSibling(peak)
		for peak > mmrSize {
			if p, ok := LeftChildPos(peak); ok {
				peak = p
				continue
			}
			break OuterLoop
		}
		peaks = append(peaks, Index(peak-1))
	}
	return peaks
}

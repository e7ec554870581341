package mmr

import "math/bits"

func BitLength64(num uint64) uint64 { return uint64(bits.Len64(num)) }

// PopCount64 counts the set bits in num. For a leaf ordinal this is the number
// of peaks in the mmr that precedes the leaf.
func PopCount64(num uint64) uint64 { return uint64(bits.OnesCount64(num)) }

// Log2Uint64 efficiently computes log base 2 of num
func Log2Uint64(num uint64) uint64 {
	return uint64(bits.Len64(num) - 1)
}

// AllOnes is true when num, read as a one based position, is the root of a
// perfect binary tree.
func AllOnes(num uint64) bool {
	return (1<<bits.OnesCount64(num) - 1) == num
}

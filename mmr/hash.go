package mmr

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

const HashSize = blake2b.Size256

// Hash is a Blake2b-256 digest.
type Hash [HashSize]byte

var zeroHash Hash

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == zeroHash }

// HashFromBytes requires exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: got %d bytes", ErrHashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// NewHasher returns an unkeyed Blake2b-256 hasher.
func NewHasher() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only possible for oversized keys
		panic(err)
	}
	return h
}

// Blake2b hashes the concatenation of parts.
func Blake2b(parts ...[]byte) Hash {
	hasher := NewHasher()
	for _, p := range parts {
		hasher.Write(p)
	}
	return sumHash(hasher)
}

// HashWriteUint64 writes value to the hasher little endian, least
// significant byte first.
func HashWriteUint64(hasher hash.Hash, value uint64) {
	b := [8]byte{}
	binary.LittleEndian.PutUint64(b[:], value)
	hasher.Write(b[:])
}

// HashPosPair64 returns H(LE64(pos) || a || b)
// ** the hasher is reset **
func HashPosPair64(hasher hash.Hash, pos uint64, a Hash, b Hash) Hash {
	hasher.Reset()
	HashWriteUint64(hasher, pos)
	hasher.Write(a[:])
	hasher.Write(b[:])
	return sumHash(hasher)
}

// ParentHash is the hash of the interior node at idx committing to left and
// right.
func ParentHash(idx Index, left Hash, right Hash) Hash {
	return HashPosPair64(NewHasher(), uint64(idx), left, right)
}

// EmptyRoot is the root of an mmr with no nodes.
func EmptyRoot() Hash {
	hasher := NewHasher()
	HashWriteUint64(hasher, 0)
	return sumHash(hasher)
}

func sumHash(hasher hash.Hash) Hash {
	var h Hash
	hasher.Sum(h[:0])
	return h
}

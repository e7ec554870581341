package mmrtesting

import (
	"encoding/binary"
	"math/rand"
	"testing"
)

// LeafGenerator makes the payload of leaf i of a batch starting at base.
type LeafGenerator func(base, i uint64) []byte

type TestGeneratorConfig struct {
	TestLabelPrefix string
	// MaxLeafLength bounds RandomLeaf. Defaults to 64.
	MaxLeafLength int
}

// TestGenerator produces deterministic leaf payloads. The rng is seeded so
// the same seed gives the same data run to run.
type TestGenerator struct {
	T             *testing.T
	Cfg           TestGeneratorConfig
	LeafGenerator LeafGenerator
	rng           *rand.Rand
}

func NewTestGenerator(t *testing.T, seed int64, cfg TestGeneratorConfig, leafGenerator LeafGenerator) TestGenerator {
	if cfg.MaxLeafLength == 0 {
		cfg.MaxLeafLength = 64
	}
	return TestGenerator{
		T:             t,
		Cfg:           cfg,
		LeafGenerator: leafGenerator,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// GenerateLeaves returns count payloads from LeafGenerator.
func (g *TestGenerator) GenerateLeaves(base, count uint64) [][]byte {
	leaves := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		leaves = append(leaves, g.LeafGenerator(base, i))
	}
	return leaves
}

// RandomLeaf returns between 0 and MaxLeafLength random bytes.
func (g *TestGenerator) RandomLeaf() []byte {
	b := make([]byte, g.rng.Intn(g.Cfg.MaxLeafLength+1))
	g.rng.Read(b)
	return b
}

// GenerateNumberedLeaf is the big endian base + i.
func GenerateNumberedLeaf(base, i uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, base+i)
	return b
}

// GenerateVariableLeaf is base + i followed by (base+i)%7 padding bytes, so
// consecutive leaves differ in length.
func GenerateVariableLeaf(base, i uint64) []byte {
	n := base + i
	b := GenerateNumberedLeaf(base, i)
	for j := uint64(0); j < n%7; j++ {
		b = append(b, byte(j))
	}
	return b
}

package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GrinPlusPlus/libmw-core/appendfile"
	"github.com/GrinPlusPlus/libmw-core/locked"
	"github.com/GrinPlusPlus/libmw-core/mmr"
	"github.com/GrinPlusPlus/libmw-core/mmrtesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) mmrtesting.TestContext {
	return mmrtesting.NewTestContext(t, mmrtesting.TestConfig{TestLabelPrefix: "filestore"})
}

func openBackend(t *testing.T, tc mmrtesting.TestContext, dir string, opts ...Option) *Backend {
	b, err := Open(tc.Log, dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func fileSize(t *testing.T, path string) int64 {
	fi, err := os.Stat(path)
	require.NoError(t, err)
	return fi.Size()
}

func TestReopenAfterCommit(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()

	b := openBackend(t, tc, dir)
	m := mmr.NewMMR(b)
	_, err := m.Add([]byte{0x05, 0x03, 0x07})
	require.NoError(t, err)
	require.NoError(t, m.Commit())
	require.NoError(t, b.Close())

	b = openBackend(t, tc, dir)
	m = mmr.NewMMR(b)
	assert.Equal(t, uint64(1), m.GetNumLeaves())
	leaf, err := m.Get(mmr.LeafIndexAt(0))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x03, 0x07}, leaf.Data())
	assert.Equal(t, mmr.Blake2b([]byte{0x05, 0x03, 0x07}), leaf.Hash())
}

func TestRewindAfterCommit(t *testing.T) {
	tc := newTestContext(t)
	g := mmrtesting.NewTestGenerator(t, 1, mmrtesting.TestGeneratorConfig{}, mmrtesting.GenerateVariableLeaf)

	m := mmr.NewMMR(openBackend(t, tc, tc.NewDir()))

	var rootAfter2 mmr.Hash
	for i, leaf := range g.GenerateLeaves(0, 4) {
		_, err := m.Add(leaf)
		require.NoError(t, err)
		if i == 1 {
			rootAfter2, err = m.Root()
			require.NoError(t, err)
		}
	}
	require.NoError(t, m.Commit())

	require.NoError(t, m.Rewind(2))
	require.NoError(t, m.Commit())
	assert.Equal(t, uint64(2), m.GetNumLeaves())
	assert.Equal(t, uint64(3), m.GetNumNodes())

	root, err := m.Root()
	require.NoError(t, err)
	assert.Equal(t, rootAfter2, root)
}

func TestRoundTripPreservesRoot(t *testing.T) {
	for _, fixed := range []bool{false, true} {
		name := "variable"
		opts := []Option{}
		leafGen := mmrtesting.GenerateVariableLeaf
		if fixed {
			name = "fixed"
			opts = append(opts, WithFixedLength(8))
			leafGen = mmrtesting.GenerateNumberedLeaf
		}
		t.Run(name, func(t *testing.T) {
			tc := newTestContext(t)
			g := mmrtesting.NewTestGenerator(t, 2, mmrtesting.TestGeneratorConfig{}, leafGen)
			dir := tc.NewDir()
			leaves := g.GenerateLeaves(100, 21)

			b := openBackend(t, tc, dir, opts...)
			m := mmr.NewMMR(b)
			for _, leaf := range leaves {
				_, err := m.Add(leaf)
				require.NoError(t, err)
			}
			require.NoError(t, m.Commit())
			want, err := m.Root()
			require.NoError(t, err)
			require.NoError(t, b.Close())

			m = mmr.NewMMR(openBackend(t, tc, dir, opts...))
			assert.Equal(t, uint64(21), m.GetNumLeaves())
			got, err := m.Root()
			require.NoError(t, err)
			assert.Equal(t, want, got)
			for i, payload := range leaves {
				leaf, err := m.Get(mmr.LeafIndexAt(uint64(i)))
				require.NoError(t, err)
				assert.Equal(t, payload, leaf.Data())
			}

			// the same leaves in memory give the same root
			mem := mmr.NewMMR(mmr.NewMemBackend())
			for _, leaf := range leaves {
				_, err := mem.Add(leaf)
				require.NoError(t, err)
			}
			memRoot, err := mem.Root()
			require.NoError(t, err)
			assert.Equal(t, want, memRoot)
		})
	}
}

func TestFixedLengthOmitsPositions(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()
	b := openBackend(t, tc, dir, WithFixedLength(8))
	m := mmr.NewMMR(b)

	for i := uint64(0); i < 3; i++ {
		_, err := m.Add(mmrtesting.GenerateNumberedLeaf(0, i))
		require.NoError(t, err)
	}
	require.NoError(t, m.Commit())

	_, err := os.Stat(filepath.Join(dir, PositionFileName))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, int64(24), fileSize(t, filepath.Join(dir, DataFileName)))
	assert.Equal(t, int64(4*mmr.HashSize), fileSize(t, filepath.Join(dir, HashFileName)))

	_, err = m.Add([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrLeafLength)
	assert.Equal(t, uint64(3), m.GetNumLeaves())
}

func TestVariableLengthPositions(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()
	b := openBackend(t, tc, dir)
	m := mmr.NewMMR(b)

	for _, leaf := range [][]byte{{1}, {}, {2, 3, 4}} {
		_, err := m.Add(leaf)
		require.NoError(t, err)
	}
	require.NoError(t, m.Commit())

	raw, err := os.ReadFile(filepath.Join(dir, PositionFileName))
	require.NoError(t, err)
	require.Len(t, raw, 3*positionSize)

	want := []position{{0, 1}, {1, 0}, {1, 3}}
	for i, w := range want {
		p, err := decodePosition(raw[i*positionSize : (i+1)*positionSize])
		require.NoError(t, err)
		assert.Equal(t, w, p)
	}

	leaf, err := m.Get(mmr.LeafIndexAt(1))
	require.NoError(t, err)
	assert.Empty(t, leaf.Data())

	_, err = m.Add(make([]byte, 70000))
	assert.ErrorIs(t, err, ErrLeafLength)
}

func TestRollbackDiscardsUncommitted(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()
	b := openBackend(t, tc, dir)
	m := mmr.NewMMR(b)

	_, err := m.Add([]byte("one"))
	require.NoError(t, err)
	require.NoError(t, m.Commit())
	root, err := m.Root()
	require.NoError(t, err)

	_, err = m.Add([]byte("two"))
	require.NoError(t, err)
	require.NoError(t, m.Rewind(0))
	require.NoError(t, m.Rollback())
	require.NoError(t, m.Rollback())

	assert.Equal(t, uint64(1), m.GetNumLeaves())
	got, err := m.Root()
	require.NoError(t, err)
	assert.Equal(t, root, got)
	assert.Equal(t, int64(mmr.HashSize), fileSize(t, filepath.Join(dir, HashFileName)))
}

func TestReadsBeforeCommit(t *testing.T) {
	tc := newTestContext(t)
	b := openBackend(t, tc, tc.NewDir())
	m := mmr.NewMMR(b)

	_, err := m.Add([]byte("committed"))
	require.NoError(t, err)
	require.NoError(t, m.Commit())
	_, err = m.Add([]byte("pending"))
	require.NoError(t, err)

	leaf, err := m.Get(mmr.LeafIndexAt(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("pending"), leaf.Data())

	_, err = m.Get(mmr.LeafIndexAt(2))
	assert.ErrorIs(t, err, mmr.ErrNotFound)
	_, err = b.GetHash(3)
	assert.ErrorIs(t, err, mmr.ErrNotFound)
}

func TestOutOfOrderLeaf(t *testing.T) {
	tc := newTestContext(t)
	b := openBackend(t, tc, tc.NewDir())

	err := b.AddLeaf(mmr.NewLeaf(mmr.LeafIndexAt(1), []byte("x")))
	assert.ErrorIs(t, err, mmr.ErrLeafOutOfOrder)
	assert.ErrorIs(t, b.Rewind(mmr.LeafIndexAt(1)), mmr.ErrRewindPastEnd)
}

func TestOpenRecoversLeafStreamsAhead(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()

	b := openBackend(t, tc, dir)
	m := mmr.NewMMR(b)
	for i := uint64(0); i < 3; i++ {
		_, err := m.Add(mmrtesting.GenerateVariableLeaf(0, i))
		require.NoError(t, err)
	}
	require.NoError(t, m.Commit())
	want, err := m.Root()
	require.NoError(t, err)

	// simulate a crash after the data and position streams committed a
	// fourth leaf but before the hash stream did
	_, err = m.Add(mmrtesting.GenerateVariableLeaf(0, 3))
	require.NoError(t, err)
	require.NoError(t, b.dataFile.Commit())
	require.NoError(t, b.posFile.Commit())
	require.NoError(t, b.Close())

	b = openBackend(t, tc, dir)
	m = mmr.NewMMR(b)
	assert.Equal(t, uint64(3), m.GetNumLeaves())
	got, err := m.Root()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// and the mmr carries on from there
	_, err = m.Add(mmrtesting.GenerateVariableLeaf(0, 3))
	require.NoError(t, err)
	require.NoError(t, m.Commit())
	assert.Equal(t, uint64(4), m.GetNumLeaves())
}

func TestFailedHashCommitKeepsStreamsInStep(t *testing.T) {
	for _, fixed := range []bool{false, true} {
		name := "variable"
		opts := []Option{}
		leafGen := mmrtesting.GenerateVariableLeaf
		if fixed {
			name = "fixed"
			opts = append(opts, WithFixedLength(8))
			leafGen = mmrtesting.GenerateNumberedLeaf
		}
		t.Run(name, func(t *testing.T) {
			tc := newTestContext(t)
			dir := tc.NewDir()

			b := openBackend(t, tc, dir, opts...)
			m := mmr.NewMMR(b)
			_, err := m.Add(leafGen(0, 0))
			require.NoError(t, err)
			require.NoError(t, m.Commit())
			want, err := m.Root()
			require.NoError(t, err)

			// the leaf streams commit the second leaf, the hash stream fails
			_, err = m.Add(leafGen(0, 1))
			require.NoError(t, err)
			require.NoError(t, b.hashFile.Close())
			require.Error(t, m.Commit())

			assert.Equal(t, uint64(1), m.GetNumLeaves())
			assert.Equal(t, uint64(1), b.numNodes())
			assert.Equal(t, int64(len(leafGen(0, 0))), fileSize(t, filepath.Join(dir, DataFileName)))

			b.hashFile, err = appendfile.Open(filepath.Join(dir, HashFileName))
			require.NoError(t, err)
			got, err := m.Root()
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = m.Add(leafGen(0, 1))
			require.NoError(t, err)
			require.NoError(t, m.Commit())
			assert.Equal(t, uint64(2), m.GetNumLeaves())
			assert.Equal(t, uint64(3), m.GetNumNodes())

			mem := mmr.NewMMR(mmr.NewMemBackend())
			for i := uint64(0); i < 2; i++ {
				_, err = mem.Add(leafGen(0, i))
				require.NoError(t, err)
			}
			memRoot, err := mem.Root()
			require.NoError(t, err)
			got, err = m.Root()
			require.NoError(t, err)
			assert.Equal(t, memRoot, got)
		})
	}
}

func TestOpenRejectsTornHashStream(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, HashFileName), make([]byte, 2*mmr.HashSize), 0o644))

	_, err := Open(tc.Log, dir)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBatchWriteWithoutCommitLeavesDiskUnchanged(t *testing.T) {
	tc := newTestContext(t)
	dir := tc.NewDir()
	b := openBackend(t, tc, dir)
	l := locked.NewBatchable(mmr.NewMMR(b))

	w := l.Write()
	_, err := w.Get().Add([]byte("durable"))
	require.NoError(t, err)
	require.NoError(t, w.Release())

	hashSize := fileSize(t, filepath.Join(dir, HashFileName))
	dataSize := fileSize(t, filepath.Join(dir, DataFileName))

	bw, err := l.BatchWrite()
	require.NoError(t, err)
	_, err = bw.Get().Add([]byte("staged"))
	require.NoError(t, err)
	require.NoError(t, bw.Release())

	assert.Equal(t, hashSize, fileSize(t, filepath.Join(dir, HashFileName)))
	assert.Equal(t, dataSize, fileSize(t, filepath.Join(dir, DataFileName)))

	r := l.Read()
	defer r.Release()
	assert.Equal(t, uint64(1), r.Get().GetNumLeaves())
}

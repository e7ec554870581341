package appendfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*File, string) {
	path := filepath.Join(t.TempDir(), "test.bin")
	af, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = af.Close() })
	return af, path
}

func onDisk(t *testing.T, path string) []byte {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func TestOpenCreates(t *testing.T) {
	af, path := openTemp(t)
	assert.Equal(t, uint64(0), af.Size())
	assert.Equal(t, path, af.Path())
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestAppendCommitReopen(t *testing.T) {
	af, path := openTemp(t)

	af.Append([]byte("hello "))
	af.Append([]byte("world"))
	assert.Equal(t, uint64(11), af.Size())
	assert.Equal(t, uint64(0), af.CommittedSize())
	assert.Empty(t, onDisk(t, path))

	require.NoError(t, af.Commit())
	assert.Equal(t, uint64(11), af.CommittedSize())
	assert.Equal(t, []byte("hello world"), onDisk(t, path))
	require.NoError(t, af.Close())

	af, err := Open(path)
	require.NoError(t, err)
	defer af.Close()
	assert.Equal(t, uint64(11), af.Size())
	got, err := af.Read(6, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)
}

func TestReadCommittedAndBuffered(t *testing.T) {
	af, _ := openTemp(t)
	af.Append([]byte{1, 2, 3, 4})
	require.NoError(t, af.Commit())
	af.Append([]byte{5, 6, 7})

	got, err := af.Read(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	got, err = af.Read(4, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6, 7}, got)

	got, err = af.Read(5, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{6}, got)

	_, err = af.Read(3, 2)
	assert.ErrorIs(t, err, ErrReadSpansBuffer)

	_, err = af.Read(6, 2)
	assert.ErrorIs(t, err, ErrReadPastEnd)

	got, err = af.Read(7, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadReturnsCopy(t *testing.T) {
	af, _ := openTemp(t)
	af.Append([]byte{1, 2})
	require.NoError(t, af.Commit())

	got, err := af.Read(0, 2)
	require.NoError(t, err)
	got[0] = 9

	again, err := af.Read(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, again)
}

func TestRollback(t *testing.T) {
	af, path := openTemp(t)
	af.Append([]byte("keep"))
	require.NoError(t, af.Commit())

	af.Append([]byte("drop"))
	require.NoError(t, af.Rollback())
	assert.Equal(t, uint64(4), af.Size())

	// rolling back twice is harmless
	require.NoError(t, af.Rollback())
	require.NoError(t, af.Commit())
	assert.Equal(t, []byte("keep"), onDisk(t, path))
}

func TestRewindWithinBuffer(t *testing.T) {
	af, path := openTemp(t)
	af.Append([]byte("abc"))
	require.NoError(t, af.Commit())
	af.Append([]byte("defg"))

	require.NoError(t, af.Rewind(5))
	assert.Equal(t, uint64(5), af.Size())
	require.NoError(t, af.Commit())
	assert.Equal(t, []byte("abcde"), onDisk(t, path))
}

func TestRewindIntoCommitted(t *testing.T) {
	af, path := openTemp(t)
	af.Append([]byte("abcdef"))
	require.NoError(t, af.Commit())
	af.Append([]byte("gh"))

	require.NoError(t, af.Rewind(2))
	assert.Equal(t, uint64(2), af.Size())
	// disk is untouched until commit
	assert.Equal(t, []byte("abcdef"), onDisk(t, path))

	af.Append([]byte("XY"))
	got, err := af.Read(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("XY"), got)

	require.NoError(t, af.Commit())
	assert.Equal(t, []byte("abXY"), onDisk(t, path))
	assert.Equal(t, uint64(4), af.CommittedSize())
}

func TestRewindThenRollbackRestores(t *testing.T) {
	af, path := openTemp(t)
	af.Append([]byte("abcdef"))
	require.NoError(t, af.Commit())

	require.NoError(t, af.Rewind(0))
	assert.Equal(t, uint64(0), af.Size())
	require.NoError(t, af.Rollback())
	assert.Equal(t, uint64(6), af.Size())

	got, err := af.Read(0, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)
	assert.Equal(t, []byte("abcdef"), onDisk(t, path))
}

func TestRewindPastEnd(t *testing.T) {
	af, _ := openTemp(t)
	af.Append([]byte("ab"))
	assert.ErrorIs(t, af.Rewind(3), ErrRewindPastEnd)
	require.NoError(t, af.Rewind(2))
}

func TestRewindToEmptyAndCommit(t *testing.T) {
	af, path := openTemp(t)
	af.Append([]byte("abc"))
	require.NoError(t, af.Commit())

	require.NoError(t, af.Rewind(0))
	require.NoError(t, af.Commit())
	assert.Empty(t, onDisk(t, path))
	assert.Equal(t, uint64(0), af.Size())

	af.Append([]byte("z"))
	require.NoError(t, af.Commit())
	assert.Equal(t, []byte("z"), onDisk(t, path))
}

func TestClosed(t *testing.T) {
	af, _ := openTemp(t)
	require.NoError(t, af.Close())
	require.NoError(t, af.Close())

	_, err := af.Read(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, af.Commit(), ErrClosed)
}

package appendfile

import (
	"fmt"
	"io"
	"os"

	"github.com/GrinPlusPlus/libmw-core/locked"
)

// File is an append only file with a pending tail. Bytes before bufferIndex
// are on disk and mapped read only; bytes appended since the last Commit live
// in buffer.
//
// The committed region is [0, fileSize). A Rewind into the committed region
// moves bufferIndex back and the file is truncated on the next Commit.
// bufferIndex == fileSize after Open, Commit and Rollback.
//
// File is not safe for concurrent use, callers guard it with their own lock.
type File struct {
	locked.DirtyFlag

	path        string
	f           *os.File
	mapped      []byte
	fileSize    uint64
	bufferIndex uint64
	buffer      []byte
}

// Open opens path, creating it if missing, and maps its current contents.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("appendfile: open %s: %w", path, err)
	}
	af := &File{path: path, f: f}
	if err = af.load(); err != nil {
		_ = f.Close()
		return nil, err
	}
	af.bufferIndex = af.fileSize
	return af, nil
}

// load records the on disk size and maps it.
func (af *File) load() error {
	fi, err := af.f.Stat()
	if err != nil {
		return fmt.Errorf("appendfile: stat %s: %w", af.path, err)
	}
	af.fileSize = uint64(fi.Size())
	return af.remap()
}

func (af *File) remap() error {
	if af.fileSize == 0 {
		return nil
	}
	b, err := mmap(af.f, int(af.fileSize))
	if err != nil {
		return fmt.Errorf("appendfile: mmap %s: %w", af.path, err)
	}
	af.mapped = b
	return nil
}

func (af *File) unmap() error {
	if af.mapped == nil {
		return nil
	}
	b := af.mapped
	af.mapped = nil
	if err := munmap(b); err != nil {
		return fmt.Errorf("appendfile: munmap %s: %w", af.path, err)
	}
	return nil
}

func (af *File) Path() string { return af.path }

// Size is the logical size, committed bytes plus the pending tail.
func (af *File) Size() uint64 { return af.bufferIndex + uint64(len(af.buffer)) }

// CommittedSize is the size on disk.
func (af *File) CommittedSize() uint64 { return af.fileSize }

func (af *File) Append(data []byte) {
	af.buffer = append(af.buffer, data...)
}

// Read returns a copy of length bytes at offset. The range must lie wholly in
// the committed region or wholly in the pending tail.
func (af *File) Read(offset uint64, length uint64) ([]byte, error) {
	if af.f == nil {
		return nil, ErrClosed
	}
	end := offset + length
	if end < offset || end > af.Size() {
		return nil, fmt.Errorf("%w: %s [%d, %d), size %d", ErrReadPastEnd, af.path, offset, end, af.Size())
	}
	out := make([]byte, length)
	if offset >= af.bufferIndex {
		copy(out, af.buffer[offset-af.bufferIndex:end-af.bufferIndex])
		return out, nil
	}
	if end > af.bufferIndex {
		return nil, fmt.Errorf("%w: %s [%d, %d), boundary %d", ErrReadSpansBuffer, af.path, offset, end, af.bufferIndex)
	}
	if af.mapped != nil {
		copy(out, af.mapped[offset:end])
		return out, nil
	}
	if _, err := af.f.ReadAt(out, int64(offset)); err != nil && err != io.EOF {
		return nil, fmt.Errorf("appendfile: read %s: %w", af.path, err)
	}
	return out, nil
}

// Rewind makes next the logical size. Nothing on disk changes until Commit.
func (af *File) Rewind(next uint64) error {
	if next > af.Size() {
		return fmt.Errorf("%w: %s to %d, size %d", ErrRewindPastEnd, af.path, next, af.Size())
	}
	if next <= af.bufferIndex {
		af.buffer = af.buffer[:0]
		af.bufferIndex = next
		return nil
	}
	af.buffer = af.buffer[:next-af.bufferIndex]
	return nil
}

// Commit truncates the file if a rewind reached into the committed region,
// writes the pending tail and syncs. On failure the pending state is kept so
// the caller can Rollback.
func (af *File) Commit() error {
	if af.f == nil {
		return ErrClosed
	}
	if len(af.buffer) == 0 && af.bufferIndex == af.fileSize {
		return nil
	}
	if err := af.unmap(); err != nil {
		return err
	}
	if err := af.flush(); err != nil {
		// what is on disk is the committed state now, whatever flush managed
		if lerr := af.load(); lerr != nil {
			return fmt.Errorf("%w (reload: %v)", err, lerr)
		}
		return err
	}
	af.fileSize = af.bufferIndex + uint64(len(af.buffer))
	af.bufferIndex = af.fileSize
	af.buffer = nil
	return af.remap()
}

func (af *File) flush() error {
	if af.bufferIndex < af.fileSize {
		if err := af.f.Truncate(int64(af.bufferIndex)); err != nil {
			return fmt.Errorf("appendfile: truncate %s to %d: %w", af.path, af.bufferIndex, err)
		}
	}
	if len(af.buffer) > 0 {
		if _, err := af.f.WriteAt(af.buffer, int64(af.bufferIndex)); err != nil {
			return fmt.Errorf("appendfile: write %s at %d: %w", af.path, af.bufferIndex, err)
		}
	}
	if err := fdatasync(af.f); err != nil {
		return fmt.Errorf("appendfile: sync %s: %w", af.path, err)
	}
	return nil
}

// Rollback drops the pending tail and any uncommitted rewind.
func (af *File) Rollback() error {
	af.buffer = nil
	af.bufferIndex = af.fileSize
	return nil
}

// Close drops anything pending, unmaps and closes the file.
func (af *File) Close() error {
	if af.f == nil {
		return nil
	}
	_ = af.Rollback()
	err := af.unmap()
	if cerr := af.f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("appendfile: close %s: %w", af.path, cerr)
	}
	af.f = nil
	return err
}

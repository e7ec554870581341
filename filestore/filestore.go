package filestore

import (
	"errors"
	"fmt"
	"hash"
	"math"
	"os"
	"path/filepath"

	"github.com/GrinPlusPlus/libmw-core/appendfile"
	"github.com/GrinPlusPlus/libmw-core/locked"
	"github.com/GrinPlusPlus/libmw-core/mmr"
	"github.com/datatrails/go-datatrails-common/logger"
)

const (
	HashFileName     = "pmmr_hash.bin"
	DataFileName     = "pmmr_data.bin"
	PositionFileName = "pmmr_pos.bin"
)

// Backend keeps an mmr in a directory as three append only streams: the node
// hashes, the leaf payloads and, for variable length leaves, the position of
// each payload.
type Backend struct {
	locked.DirtyFlag

	log    logger.Logger
	dir    string
	opts   Options
	hasher hash.Hash

	hashFile *appendfile.File
	dataFile *appendfile.File
	posFile  *appendfile.File // nil for fixed length leaves
}

// Open opens, or creates, the mmr stored in dir.
//
// Commit advances the data stream first and the hash stream last. If a crash
// left the data or position stream ahead of the hash stream, Open rewinds them
// to the last leaf the hashes commit to.
func Open(log logger.Logger, dir string, opts ...Option) (*Backend, error) {
	b := &Backend{
		log:    log,
		dir:    dir,
		hasher: mmr.NewHasher(),
	}
	for _, o := range opts {
		o(&b.opts)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: mkdir %s: %w", dir, err)
	}

	var err error
	if b.hashFile, err = appendfile.Open(filepath.Join(dir, HashFileName)); err != nil {
		return nil, err
	}
	if b.dataFile, err = appendfile.Open(filepath.Join(dir, DataFileName)); err != nil {
		_ = b.Close()
		return nil, err
	}
	if b.opts.FixedLength == 0 {
		if b.posFile, err = appendfile.Open(filepath.Join(dir, PositionFileName)); err != nil {
			_ = b.Close()
			return nil, err
		}
	}
	if err = b.recover(); err != nil {
		_ = b.Close()
		return nil, err
	}

	log.Infof("opened mmr %s: %d leaves, %d nodes", dir, b.GetNumLeaves(), b.numNodes())
	return b, nil
}

// recover checks the streams agree and trims any leaves the hash stream does
// not commit to.
func (b *Backend) recover() error {
	hashBytes := b.hashFile.Size()
	if hashBytes%mmr.HashSize != 0 {
		return fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, HashFileName, hashBytes)
	}
	nodes := hashBytes / mmr.HashSize
	if !mmr.IsValidSize(nodes) {
		return fmt.Errorf("%w: %d nodes is not a complete mmr", ErrCorrupt, nodes)
	}
	if b.posFile != nil && b.posFile.Size()%positionSize != 0 {
		return fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, PositionFileName, b.posFile.Size())
	}
	if b.opts.FixedLength != 0 && b.dataFile.Size()%uint64(b.opts.FixedLength) != 0 {
		return fmt.Errorf("%w: %s is not a multiple of %d", ErrCorrupt, DataFileName, b.opts.FixedLength)
	}

	return b.trimLeafStreams()
}

// trimLeafStreams drops committed leaves the committed hash stream does not
// commit to. Leaf streams behind the hash stream cannot be repaired.
func (b *Backend) trimLeafStreams() error {
	nodes := b.numNodes()
	leaves := mmr.LeafCount(nodes)
	have := b.GetNumLeaves()
	if have == leaves {
		return nil
	}
	if have < leaves {
		return fmt.Errorf("%w: %d leaves for %d nodes", ErrCorrupt, have, nodes)
	}

	b.log.Infof("mmr %s: dropping %d leaves not committed by the hash stream", b.dir, have-leaves)
	if err := b.rewindLeafStreams(mmr.LeafIndexAt(leaves)); err != nil {
		return err
	}
	if err := b.dataFile.Commit(); err != nil {
		return err
	}
	if b.posFile != nil {
		return b.posFile.Commit()
	}
	return nil
}

func (b *Backend) Dir() string { return b.dir }

func (b *Backend) numNodes() uint64 { return b.hashFile.Size() / mmr.HashSize }

func (b *Backend) GetNumLeaves() uint64 {
	if b.posFile == nil {
		return b.dataFile.Size() / uint64(b.opts.FixedLength)
	}
	return b.posFile.Size() / positionSize
}

func (b *Backend) NextLeaf() mmr.LeafIndex { return mmr.LeafIndexAt(b.GetNumLeaves()) }

func (b *Backend) AddLeaf(leaf mmr.Leaf) error {
	if next := b.NextLeaf(); leaf.LeafIndex() != next {
		return fmt.Errorf("%w: got %v, want %v", mmr.ErrLeafOutOfOrder, leaf.LeafIndex(), next)
	}
	data := leaf.Data()
	if b.posFile == nil {
		if len(data) != int(b.opts.FixedLength) {
			return fmt.Errorf("%w: got %d, want %d", ErrLeafLength, len(data), b.opts.FixedLength)
		}
	} else {
		if len(data) > math.MaxUint16 {
			return fmt.Errorf("%w: %d exceeds %d", ErrLeafLength, len(data), math.MaxUint16)
		}
		pos := position{offset: b.dataFile.Size(), length: uint16(len(data))}
		b.posFile.Append(pos.encode())
	}
	b.dataFile.Append(data)

	_, err := mmr.AppendLeafHash(b, b.hasher, leaf.LeafIndex(), leaf.Hash())
	return err
}

func (b *Backend) AddHash(h mmr.Hash) error {
	b.hashFile.Append(h[:])
	return nil
}

func (b *Backend) GetHash(idx mmr.Index) (mmr.Hash, error) {
	if uint64(idx) >= b.numNodes() {
		return mmr.Hash{}, fmt.Errorf("%w: index %d, have %d nodes", mmr.ErrNotFound, idx, b.numNodes())
	}
	data, err := b.hashFile.Read(uint64(idx)*mmr.HashSize, mmr.HashSize)
	if err != nil {
		return mmr.Hash{}, err
	}
	return mmr.HashFromBytes(data)
}

func (b *Backend) GetLeaf(idx mmr.LeafIndex) (mmr.Leaf, error) {
	if idx.Ordinal() >= b.GetNumLeaves() {
		return mmr.Leaf{}, fmt.Errorf("%w: %v, have %d leaves", mmr.ErrNotFound, idx, b.GetNumLeaves())
	}
	pos, err := b.position(idx.Ordinal())
	if err != nil {
		return mmr.Leaf{}, err
	}
	data, err := b.dataFile.Read(pos.offset, uint64(pos.length))
	if err != nil {
		return mmr.Leaf{}, err
	}
	h, err := b.GetHash(idx.Index())
	if err != nil {
		return mmr.Leaf{}, err
	}
	return mmr.NewLeafWithHash(idx, h, data), nil
}

// position of the payload of the leaf with the given ordinal.
func (b *Backend) position(ordinal uint64) (position, error) {
	if b.posFile == nil {
		n := b.opts.FixedLength
		return position{offset: ordinal * uint64(n), length: n}, nil
	}
	raw, err := b.posFile.Read(ordinal*positionSize, positionSize)
	if err != nil {
		return position{}, err
	}
	return decodePosition(raw)
}

// Rewind drops next and every later leaf, along with the nodes that commit to
// them.
func (b *Backend) Rewind(next mmr.LeafIndex) error {
	if have := b.GetNumLeaves(); next.Ordinal() > have {
		return fmt.Errorf("%w: %v, have %d leaves", mmr.ErrRewindPastEnd, next, have)
	}
	if err := b.rewindLeafStreams(next); err != nil {
		return err
	}
	return b.hashFile.Rewind(next.Position() * mmr.HashSize)
}

func (b *Backend) rewindLeafStreams(next mmr.LeafIndex) error {
	// the data boundary is the end of the preceding leaf
	var boundary uint64
	if next.Ordinal() > 0 {
		prev, err := b.position(next.Ordinal() - 1)
		if err != nil {
			return err
		}
		boundary = prev.end()
	}
	if err := b.dataFile.Rewind(boundary); err != nil {
		return err
	}
	if b.posFile != nil {
		return b.posFile.Rewind(next.Ordinal() * positionSize)
	}
	return nil
}

// streams returns the files in commit order.
func (b *Backend) streams() []*appendfile.File {
	if b.posFile == nil {
		return []*appendfile.File{b.dataFile, b.hashFile}
	}
	return []*appendfile.File{b.dataFile, b.posFile, b.hashFile}
}

// Commit commits data, then positions, then hashes. If a stream fails the
// streams not yet committed are rolled back, and leaves already committed
// past the committed hashes are trimmed so the streams agree again.
func (b *Backend) Commit() error {
	streams := b.streams()
	for i, f := range streams {
		if err := f.Commit(); err != nil {
			errs := []error{err}
			for _, rest := range streams[i:] {
				errs = append(errs, rest.Rollback())
			}
			if i > 0 {
				errs = append(errs, b.trimLeafStreams())
			}
			return errors.Join(errs...)
		}
	}
	b.log.Debugf("committed mmr %s: %d leaves", b.dir, b.GetNumLeaves())
	return nil
}

func (b *Backend) Rollback() error {
	var errs []error
	for _, f := range b.streams() {
		errs = append(errs, f.Rollback())
	}
	return errors.Join(errs...)
}

// Close discards anything uncommitted and closes the files.
func (b *Backend) Close() error {
	var errs []error
	for _, f := range []*appendfile.File{b.hashFile, b.dataFile, b.posFile} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}

package filestore

import (
	"encoding/binary"
	"fmt"
)

const positionSize = 10

// position locates a variable length leaf payload in the data stream.
type position struct {
	offset uint64
	length uint16
}

func (p position) end() uint64 { return p.offset + uint64(p.length) }

// encode is big endian offset followed by big endian length.
func (p position) encode() []byte {
	b := make([]byte, positionSize)
	binary.BigEndian.PutUint64(b[0:8], p.offset)
	binary.BigEndian.PutUint16(b[8:10], p.length)
	return b
}

func decodePosition(b []byte) (position, error) {
	if len(b) != positionSize {
		return position{}, fmt.Errorf("%w: position record is %d bytes", ErrCorrupt, len(b))
	}
	return position{
		offset: binary.BigEndian.Uint64(b[0:8]),
		length: binary.BigEndian.Uint16(b[8:10]),
	}, nil
}

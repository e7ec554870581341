package mmr

import "errors"

var (
	ErrNotFound              = errors.New("node not found")
	ErrIndexOutOfRange       = errors.New("index out of range for the mmr size")
	ErrLeafOutOfOrder        = errors.New("leaf index is not the next leaf")
	ErrRewindPastEnd         = errors.New("rewind target is beyond the current leaf count")
	ErrInvalidSize           = errors.New("not a valid mmr size")
	ErrHashLength            = errors.New("hash must be exactly 32 bytes")
	ErrVerifyInclusionFailed = errors.New("verify inclusion failed")
)

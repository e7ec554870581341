package appendfile

import "errors"

var (
	ErrReadPastEnd     = errors.New("read past the end of the file")
	ErrReadSpansBuffer = errors.New("read spans the committed region and the pending buffer")
	ErrRewindPastEnd   = errors.New("rewind past the end of the file")
	ErrClosed          = errors.New("file is closed")
)

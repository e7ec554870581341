package kvtable

import "errors"

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("table is closed")
)

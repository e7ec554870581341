package filestore

import "errors"

var (
	ErrLeafLength = errors.New("leaf payload has the wrong length")
	ErrCorrupt    = errors.New("pmmr files are inconsistent")
)

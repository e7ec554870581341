//go:build !unix

package appendfile

import "os"

// Without mmap the committed region is read with ReadAt.
func mmap(_ *os.File, _ int) ([]byte, error) { return nil, nil }

func munmap(_ []byte) error { return nil }

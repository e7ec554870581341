//go:build !linux

package appendfile

import "os"

func fdatasync(f *os.File) error {
	return f.Sync()
}

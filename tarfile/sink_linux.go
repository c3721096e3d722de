//go:build linux

package tarfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for f without changing its length.
// Filesystems without fallocate support are left alone.
func preallocate(f *os.File, size int64) {
	if size <= 0 {
		return
	}
	_ = unix.Fallocate(int(f.Fd()), unix.FALLOC_FL_KEEP_SIZE, 0, size) //nolint:errcheck // advisory only
}

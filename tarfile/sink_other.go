//go:build !linux

package tarfile

import "os"

// preallocate is a no-op where fallocate is unavailable.
func preallocate(f *os.File, size int64) {}

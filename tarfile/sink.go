package tarfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Sink is the hierarchical store an archive is extracted into. Names are
// slash separated and relative to the root of the sink.
type Sink interface {
	Exists(name string) (bool, error)
	MkdirAll(name string) error
	// Create creates or truncates name for writing. size is a hint of the
	// number of bytes that will be written.
	Create(name string, size int64) (io.WriteCloser, error)
	Remove(name string) error
	Chtimes(name string, mtime time.Time) error
	Open(name string) (io.ReadCloser, error)
}

// DirSink is a Sink backed by a local directory. Names that would resolve
// outside the directory are rejected by the underlying os.Root.
type DirSink struct {
	root *os.Root
}

// OpenDirSink creates dir if needed and returns a sink rooted at it.
func OpenDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", dir, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open destination %s: %w", dir, err)
	}
	return &DirSink{root: root}, nil
}

// Close releases the directory handle.
func (s *DirSink) Close() error {
	return s.root.Close()
}

func (s *DirSink) Exists(name string) (bool, error) {
	_, err := s.root.Lstat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *DirSink) MkdirAll(name string) error {
	return s.root.MkdirAll(name, 0o755)
}

func (s *DirSink) Create(name string, size int64) (io.WriteCloser, error) {
	f, err := s.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	preallocate(f, size)
	return f, nil
}

func (s *DirSink) Remove(name string) error {
	return s.root.Remove(name)
}

func (s *DirSink) Chtimes(name string, mtime time.Time) error {
	return s.root.Chtimes(name, mtime, mtime)
}

func (s *DirSink) Open(name string) (io.ReadCloser, error) {
	return s.root.Open(name)
}

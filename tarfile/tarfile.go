// Package tarfile decodes tar streams, optionally wrapped in a compressed
// envelope, into a directory tree.
//
// The decoder reads the archive strictly in order through a BlockReader,
// one 512-byte header at a time. It validates header checksums, resolves
// GNU long names and USTAR prefixes, and keeps the stream aligned on block
// edges after every header and payload. Directories and regular files are
// materialized; links are reported but not created; other entry types are
// skipped.
//
// Every directory, link and file entry yields a Report through the
// configured Reporter:
//
//	stats := new(tarfile.Stats)
//	err := tarfile.ExtractFile(ctx, "backup.tar.gz", "out",
//	    tarfile.WithReporter(stats.Reporter(nil)),
//	)
package tarfile

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExtractTar extracts the plain tar stream r into the directory dest.
func ExtractTar(ctx context.Context, r io.Reader, dest string, opts ...Option) error {
	return NewExtractor(opts...).ExtractTar(ctx, r, dest)
}

// ExtractCompressed extracts the compressed tar stream r into dest.
func ExtractCompressed(ctx context.Context, r io.Reader, dest string, opts ...Option) error {
	return NewExtractor(opts...).ExtractCompressed(ctx, r, dest)
}

// ExtractFile extracts the archive file name into dest, detecting its
// envelope unless WithCompression says otherwise.
func ExtractFile(ctx context.Context, name, dest string, opts ...Option) error {
	return NewExtractor(opts...).ExtractFile(ctx, name, dest)
}

// List returns the members of the plain tar stream r.
func List(ctx context.Context, r io.Reader, opts ...Option) ([]*TarInfo, error) {
	return NewExtractor(opts...).List(ctx, r)
}

// ExtractTar extracts the plain tar stream r into the directory dest.
func (e *Extractor) ExtractTar(ctx context.Context, r io.Reader, dest string) error {
	sink, err := OpenDirSink(dest)
	if err != nil {
		return err
	}
	defer sink.Close()
	return e.Extract(ctx, r, sink)
}

// ExtractCompressed extracts the compressed tar stream r into dest. With
// the default Auto compression the envelope must be recognizable.
func (e *Extractor) ExtractCompressed(ctx context.Context, r io.Reader, dest string) error {
	dr, err := openEnvelope(r, e.compression, true)
	if err != nil {
		return err
	}
	defer dr.Close()
	return e.ExtractTar(ctx, dr, dest)
}

// ExtractFile extracts the archive file name into dest. A file without a
// known envelope is read as a plain tar stream.
func (e *Extractor) ExtractFile(ctx context.Context, name, dest string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	dr, err := NewDecompressor(f, e.compression)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer dr.Close()

	if err := e.ExtractTar(ctx, dr, dest); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ListFile returns the members of the archive file name.
func (e *Extractor) ListFile(ctx context.Context, name string) ([]*TarInfo, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dr, err := NewDecompressor(f, e.compression)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer dr.Close()
	return e.List(ctx, dr)
}

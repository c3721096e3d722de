package tarfile

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies the envelope around a tar stream.
type Compression int

const (
	Auto Compression = iota // detect from magic bytes
	None
	Gzip
	Bzip2
	Xz
	Zstd
	Lz4
)

var compressionNames = map[Compression]string{
	Auto: "auto", None: "tar", Gzip: "gz", Bzip2: "bz2", Xz: "xz", Zstd: "zst", Lz4: "lz4",
}

func (c Compression) String() string {
	if s, ok := compressionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// ParseCompression maps a compression name, as accepted on the command
// line, to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "auto", "*":
		return Auto, nil
	case "none", "tar":
		return None, nil
	case "gz", "gzip", "tgz":
		return Gzip, nil
	case "bz2", "bzip2":
		return Bzip2, nil
	case "xz":
		return Xz, nil
	case "zst", "zstd":
		return Zstd, nil
	case "lz4":
		return Lz4, nil
	}
	return Auto, NewCompressionError("unknown compression type " + s)
}

var magics = []struct {
	comp  Compression
	magic []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Bzip2, []byte("BZh")},
	{Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{Lz4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

// DetectCompression identifies an envelope from the leading bytes of a
// stream. A head that starts with a valid tar header is plain tar whatever
// its first bytes spell. It returns None when no known magic matches.
func DetectCompression(head []byte) Compression {
	if isTarHeader(head) {
		return None
	}
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.comp
		}
	}
	return None
}

// isTarHeader reports whether head begins with a non-zero block whose
// stored checksum matches its contents.
func isTarHeader(head []byte) bool {
	if len(head) < BLOCKSIZE || isZeroBlock(head[:BLOCKSIZE]) {
		return false
	}
	stored, err := nti(head[offsetChecksum : offsetChecksum+lengthChecksum])
	return err == nil && stored == calcChecksum(head)
}

// NewDecompressor wraps r so that reads yield the plain tar stream. With
// Auto the envelope is detected from r, falling back to None.
func NewDecompressor(r io.Reader, comp Compression) (io.ReadCloser, error) {
	return openEnvelope(r, comp, false)
}

// openEnvelope resolves Auto by peeking at r. When required is set an
// undetectable envelope is an error instead of a plain stream.
func openEnvelope(r io.Reader, comp Compression, required bool) (io.ReadCloser, error) {
	if comp == Auto {
		br := bufio.NewReader(r)
		head, err := br.Peek(BLOCKSIZE)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("detect compression: %w", err)
		}
		comp = DetectCompression(head)
		if comp == None && required {
			return nil, NewCompressionError("no known compression envelope")
		}
		r = br
	}

	switch comp {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, &CompressionError{TarError{msg: "open gzip stream", err: err}}
		}
		return gz, nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case Xz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, &CompressionError{TarError{msg: "open xz stream", err: err}}
		}
		return io.NopCloser(xr), nil
	case Zstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, &CompressionError{TarError{msg: "open zstd stream", err: err}}
		}
		return dec.IOReadCloser(), nil
	case Lz4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, NewCompressionError("unknown compression type " + comp.String())
	}
}

package tarfile

import (
	"bytes"
	"fmt"
)

// testEntry describes one member of a synthetic archive.
type testEntry struct {
	name     string
	typ      byte
	size     int64 // -1 means len(body)
	body     []byte
	mtime    int64
	linkname string
	magic    string // "", "ustar" or "gnu"
	prefix   string
}

func fileEntry(name, body string, mtime int64) testEntry {
	return testEntry{name: name, typ: REGTYPE, size: -1, body: []byte(body), mtime: mtime, magic: "ustar"}
}

func dirEntry(name string, mtime int64) testEntry {
	return testEntry{name: name, typ: DIRTYPE, mtime: mtime, magic: "ustar"}
}

// itn encodes n as a zero-padded octal field terminated by NUL.
func itn(n int64, digits int) []byte {
	return append([]byte(fmt.Sprintf("%0*o", digits-1, n)), NUL)
}

// stn pads s with NULs to length bytes.
func stn(s string, length int) []byte {
	b := []byte(s)
	if len(b) > length {
		b = b[:length]
	}
	return append(b, make([]byte, length-len(b))...)
}

// createHeader builds a 512-byte header block with a valid checksum.
func createHeader(e testEntry) []byte {
	size := e.size
	if size < 0 {
		size = int64(len(e.body))
	}
	buf := make([]byte, 0, BLOCKSIZE)
	buf = append(buf, stn(e.name, LENGTH_NAME)...)
	buf = append(buf, itn(0o644, 8)...)
	buf = append(buf, itn(0, 8)...)
	buf = append(buf, itn(0, 8)...)
	buf = append(buf, itn(size, 12)...)
	buf = append(buf, itn(e.mtime, 12)...)
	buf = append(buf, []byte("        ")...)
	buf = append(buf, e.typ)
	buf = append(buf, stn(e.linkname, LENGTH_LINK)...)
	switch e.magic {
	case "ustar":
		buf = append(buf, "ustar\x0000"...)
	case "gnu":
		buf = append(buf, "ustar  \x00"...)
	default:
		buf = append(buf, make([]byte, 8)...)
	}
	buf = append(buf, make([]byte, 80)...) // uname, gname, devmajor, devminor
	buf = append(buf, stn(e.prefix, LENGTH_PREFIX)...)
	buf = append(buf, make([]byte, BLOCKSIZE-len(buf))...)

	chksum := calcChecksum(buf)
	copy(buf[offsetChecksum:], fmt.Sprintf("%06o\x00 ", chksum))
	return buf
}

// createPayload pads payload up to the next block edge.
func createPayload(payload []byte) []byte {
	out := append([]byte(nil), payload...)
	if rem := len(out) % BLOCKSIZE; rem > 0 {
		out = append(out, make([]byte, BLOCKSIZE-rem)...)
	}
	return out
}

// createGnuLongHeader builds the marker entry carrying a long name.
func createGnuLongHeader(name string) []byte {
	payload := append([]byte(name), NUL)
	header := createHeader(testEntry{
		name:  "././@LongLink",
		typ:   GNUTYPE_LONGNAME,
		size:  int64(len(payload)),
		magic: "gnu",
	})
	return append(header, createPayload(payload)...)
}

type archiveBuilder struct {
	buf bytes.Buffer
}

func (b *archiveBuilder) add(e testEntry) *archiveBuilder {
	b.buf.Write(createHeader(e))
	b.buf.Write(createPayload(e.body))
	return b
}

// addLong writes e behind a long name marker; the entry's own name field
// holds a truncated copy.
func (b *archiveBuilder) addLong(e testEntry) *archiveBuilder {
	b.buf.Write(createGnuLongHeader(e.name))
	e.name = e.name[:min(len(e.name), LENGTH_NAME-1)]
	return b.add(e)
}

func (b *archiveBuilder) raw(p []byte) *archiveBuilder {
	b.buf.Write(p)
	return b
}

// bytes terminates the archive with two zero blocks.
func (b *archiveBuilder) bytes() []byte {
	b.buf.Write(make([]byte, 2*BLOCKSIZE))
	return b.buf.Bytes()
}

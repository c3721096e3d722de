package tarfile

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTarInfo(t *testing.T) {
	t.Parallel()

	data := new(archiveBuilder).add(fileEntry("dir/hello.txt", "hello world", 1700000000)).bytes()
	br := newTestReader(t, data, DefaultBufSize)

	ti, err := readTarInfo(br, false)
	require.NoError(t, err)
	assert.Equal(t, "dir/hello.txt", ti.Name)
	assert.Equal(t, int64(11), ti.Size)
	assert.True(t, ti.Mtime.Equal(time.Unix(1700000000, 0)))
	assert.Equal(t, byte(REGTYPE), ti.Type)
	assert.Equal(t, "ustar", ti.Magic)
	assert.Equal(t, calcChecksum(data[:BLOCKSIZE]), ti.Chksum)
	assert.Equal(t, int64(0), ti.Offset)
	assert.Equal(t, int64(BLOCKSIZE), ti.OffsetData)
	assert.Equal(t, int64(BLOCKSIZE), br.Position())
	assert.True(t, ti.IsReg())
}

func TestReadTarInfo_Prefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		magic string
		want  string
	}{
		{name: "posix", magic: "ustar", want: "some/deep/prefix/file.txt"},
		{name: "gnu", magic: "gnu", want: "some/deep/prefix/file.txt"},
		{name: "v7 ignores prefix", magic: "", want: "file.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := fileEntry("file.txt", "", 0)
			e.magic = tt.magic
			e.prefix = "some/deep/prefix"
			br := newTestReader(t, new(archiveBuilder).add(e).bytes(), DefaultBufSize)

			ti, err := readTarInfo(br, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ti.Name)
		})
	}
}

func TestReadTarInfo_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	data := new(archiveBuilder).add(fileEntry("a.txt", "abc", 1)).bytes()
	data[20] = 'Z'
	br := newTestReader(t, data, DefaultBufSize)

	_, err := readTarInfo(br, false)
	var ie *InvalidHeaderError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, err.Error(), "bad checksum")
	assert.True(t, IsFormatError(err))
}

func TestReadTarInfo_EndOfArchive(t *testing.T) {
	t.Parallel()

	blankName := createHeader(fileEntry("   ", "", 0))
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty stream", data: nil},
		{name: "zero blocks", data: make([]byte, 2*BLOCKSIZE)},
		{name: "whitespace name", data: blankName},
		{name: "short zero tail", data: make([]byte, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := readTarInfo(newTestReader(t, tt.data, DefaultBufSize), false)
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestReadTarInfo_TruncatedHeader(t *testing.T) {
	t.Parallel()

	header := createHeader(fileEntry("a.txt", "", 0))
	_, err := readTarInfo(newTestReader(t, header[:300], DefaultBufSize), false)
	var th *TruncatedHeaderError
	require.ErrorAs(t, err, &th)
}

func TestReadTarInfo_StrictTrailer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantEOF bool
	}{
		{name: "two zero blocks", data: make([]byte, 2*BLOCKSIZE), wantEOF: true},
		{name: "one zero block", data: make([]byte, BLOCKSIZE)},
		{name: "no trailer", data: nil},
		{name: "blank name with metadata", data: append(createHeader(fileEntry("", "", 5)), make([]byte, BLOCKSIZE)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := readTarInfo(newTestReader(t, tt.data, DefaultBufSize), true)
			if tt.wantEOF {
				assert.Equal(t, io.EOF, err)
				return
			}
			var ie *InvalidHeaderError
			require.ErrorAs(t, err, &ie)
		})
	}
}

func TestReadTarInfo_OldStyleDirectory(t *testing.T) {
	t.Parallel()

	e := testEntry{name: "olddir/", typ: AREGTYPE}
	ti, err := readTarInfo(newTestReader(t, new(archiveBuilder).add(e).bytes(), DefaultBufSize), false)
	require.NoError(t, err)
	assert.True(t, ti.IsDir())
}

func TestExtract_OldStyleSlashNameWithPayload(t *testing.T) {
	t.Parallel()

	e := testEntry{name: "v7/", typ: AREGTYPE, size: -1, body: []byte("data")}
	dest := t.TempDir()
	log, err := extractBytes(t, new(archiveBuilder).add(e).bytes(), dest)
	require.NoError(t, err)

	rep := log.byName(t, "v7/")
	assert.Equal(t, byte(AREGTYPE), rep.Type)
	require.NoError(t, rep.Err)
	got, err := os.ReadFile(filepath.Join(dest, "v7"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}

func TestReadTarInfo_Linkname(t *testing.T) {
	t.Parallel()

	e := testEntry{name: "link", typ: SYMTYPE, linkname: "target/file", magic: "ustar"}
	ti, err := readTarInfo(newTestReader(t, new(archiveBuilder).add(e).bytes(), DefaultBufSize), false)
	require.NoError(t, err)
	assert.True(t, ti.IsSym())
	assert.Equal(t, "target/file", ti.Linkname)
	assert.Equal(t, int64(0), ti.payloadSize())
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "file", typeName(AREGTYPE))
	assert.Equal(t, "dir", typeName(DIRTYPE))
	assert.True(t, strings.HasPrefix(typeName('Z'), "unknown"))
}

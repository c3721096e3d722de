package tarfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNti(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   []byte
		want    int64
		wantErr error
	}{
		{name: "mode", field: []byte("0000644\x00"), want: 0o644},
		{name: "space padded zero", field: []byte("      0\x00"), want: 0},
		{name: "all nul", field: make([]byte, 8), want: 0},
		{name: "all blank", field: []byte("        "), want: 0},
		{name: "leading spaces", field: []byte("   755 \x00"), want: 0o755},
		{name: "size", field: []byte("00000001750\x00"), want: 1000},
		{name: "stray space ends number", field: []byte("0012 34\x00"), want: 0o12},
		{name: "nul ends field", field: []byte("017\x00777"), want: 0o17},
		{name: "no terminator", field: []byte("00000000017"), want: 0o17},
		{name: "bad digit", field: []byte("0000089\x00"), wantErr: errBadOctal},
		{name: "letter", field: []byte("00x0000\x00"), wantErr: errBadOctal},
		{name: "base256", field: []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x00}, want: 256},
		{name: "base256 negative", field: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, want: -1},
		{name: "overflow", field: []byte("7777777777777777777777\x00"), wantErr: errNumberOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := nti(tt.field)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", nts([]byte("abc\x00def")))
	assert.Equal(t, "abc", nts([]byte("abc")))
	assert.Equal(t, "", nts(make([]byte, 4)))
}

func TestCalcChecksum(t *testing.T) {
	t.Parallel()

	zero := make([]byte, BLOCKSIZE)
	assert.Equal(t, int64(256), calcChecksum(zero))

	header := createHeader(fileEntry("hello.txt", "hi", 1700000000))
	want, err := nti(header[offsetChecksum : offsetChecksum+lengthChecksum])
	require.NoError(t, err)
	assert.Equal(t, want, calcChecksum(header))

	// The checksum field itself never counts.
	copy(header[offsetChecksum:], "99999999")
	assert.Equal(t, want, calcChecksum(header))
}

func TestBlockPadding(t *testing.T) {
	t.Parallel()

	for offset, want := range map[int64]int64{0: 0, 1: 511, 511: 1, 512: 0, 513: 511, 1024: 0, 1500: 36} {
		assert.Equal(t, want, blockPadding(offset), "offset %d", offset)
	}
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, isBlank(""))
	assert.True(t, isBlank("  \t "))
	assert.False(t, isBlank(" a "))
}

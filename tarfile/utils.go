package tarfile

import (
	"bytes"
	"errors"
	"math"
	"strings"
)

var (
	errBadOctal       = errors.New("invalid octal digit")
	errNumberOverflow = errors.New("number field overflows int64")
)

// nts converts a NUL-terminated field to a string.
func nts(s []byte) string {
	if p := bytes.IndexByte(s, NUL); p != -1 {
		s = s[:p]
	}
	return string(s)
}

// nti converts a numeric header field to an integer.
//
// Octal fields are scanned leniently: leading spaces and zeros are skipped,
// a space after the first significant digit ends the number and a NUL ends
// the field. GNU base-256 fields (high bit of the first byte set) are
// decoded as big-endian two's complement.
func nti(s []byte) (int64, error) {
	if len(s) > 0 && s[0]&0x80 != 0 {
		return parseBase256(s)
	}
	var n int64
	significant := false
	for _, c := range s {
		switch {
		case c == NUL:
			return n, nil
		case c == ' ' && !significant:
			continue
		case c == ' ':
			return n, nil
		case c == '0' && !significant:
			continue
		case c >= '0' && c <= '7':
			if n > math.MaxInt64>>3 {
				return 0, errNumberOverflow
			}
			n = n<<3 | int64(c-'0')
			significant = true
		default:
			return 0, errBadOctal
		}
	}
	return n, nil
}

func parseBase256(s []byte) (int64, error) {
	var inv byte
	if s[0]&0x40 != 0 {
		inv = 0xff
	}
	var n int64
	for i, c := range s {
		c ^= inv
		if i == 0 {
			c &= 0x7f
		}
		if n > math.MaxInt64>>8 {
			return 0, errNumberOverflow
		}
		n = n<<8 | int64(c)
	}
	if inv == 0xff {
		return ^n, nil
	}
	return n, nil
}

// calcChecksum sums an unsigned header block, counting the checksum field
// itself as eight spaces.
func calcChecksum(buf []byte) int64 {
	unsigned := int64(8 * ' ')
	for i, b := range buf[:BLOCKSIZE] {
		if i >= offsetChecksum && i < offsetChecksum+lengthChecksum {
			continue
		}
		unsigned += int64(b)
	}
	return unsigned
}

// blockPadding returns how many bytes pad offset up to the next block edge.
func blockPadding(offset int64) int64 {
	return -offset & (BLOCKSIZE - 1)
}

func isBlank(name string) bool {
	return strings.TrimSpace(name) == ""
}

func isZeroBlock(b []byte) bool {
	for _, c := range b {
		if c != NUL {
			return false
		}
	}
	return true
}

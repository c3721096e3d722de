package tarfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// BlockReader is a buffered cursor over a sequential byte source. It keeps
// the absolute stream position so callers can realign on block edges.
//
// A BlockReader is not safe for concurrent use.
type BlockReader struct {
	ctx    context.Context
	src    io.Reader
	buf    []byte
	filled int   // bytes of buf holding data
	cur    int   // read cursor within buf, never past filled
	pos    int64 // absolute position in the stream
	eof    bool
	chksum int64
}

// NewBlockReader returns a BlockReader with a fill buffer of bufSize bytes.
// bufSize is raised to BLOCKSIZE if smaller, so a header window always fits.
// ctx is checked before every read from src.
func NewBlockReader(ctx context.Context, src io.Reader, bufSize int) *BlockReader {
	if bufSize < BLOCKSIZE {
		bufSize = BLOCKSIZE
	}
	return &BlockReader{
		ctx: ctx,
		src: src,
		buf: make([]byte, bufSize),
	}
}

// Position returns the absolute number of bytes consumed so far.
func (br *BlockReader) Position() int64 {
	return br.pos
}

// fill makes at least want bytes resident if the source can supply them.
// The unread tail is moved to the front of buf and the source is drained
// until buf is full or exhausted. A short result is not an error here;
// callers decide whether missing bytes mean truncation.
func (br *BlockReader) fill(want int) error {
	if br.filled-br.cur >= want || br.eof {
		return nil
	}
	if br.cur > 0 {
		br.filled = copy(br.buf, br.buf[br.cur:br.filled])
		br.cur = 0
	}
	for br.filled < len(br.buf) {
		if err := br.ctx.Err(); err != nil {
			return NewCanceledError(err)
		}
		n, err := br.src.Read(br.buf[br.filled:])
		br.filled += n
		if err == io.EOF || (n == 0 && err == nil) {
			br.eof = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("read source at 0x%X: %w", br.pos+int64(br.filled-br.cur), err)
		}
	}
	return nil
}

func (br *BlockReader) buffered() int {
	return br.filled - br.cur
}

func (br *BlockReader) advance(n int) {
	br.cur += n
	br.pos += int64(n)
}

// Peek returns up to n resident bytes without advancing. The result is
// shorter than n only when the source is exhausted. n must not exceed the
// buffer size.
func (br *BlockReader) Peek(n int) ([]byte, error) {
	if err := br.fill(n); err != nil {
		return nil, err
	}
	return br.buf[br.cur : br.cur+min(n, br.buffered())], nil
}

// ComputeHeaderChecksum sums the BLOCKSIZE-byte header window starting at
// the cursor, counting the checksum field as spaces. The result is kept
// for HeaderChecksum. It does not advance the cursor.
func (br *BlockReader) ComputeHeaderChecksum() (int64, error) {
	window, err := br.Peek(BLOCKSIZE)
	if err != nil {
		return 0, err
	}
	if len(window) < BLOCKSIZE {
		return 0, NewTruncatedHeaderError(br.pos, len(window))
	}
	br.chksum = calcChecksum(window)
	return br.chksum, nil
}

// HeaderChecksum returns the value computed by the most recent
// ComputeHeaderChecksum call.
func (br *BlockReader) HeaderChecksum() int64 {
	return br.chksum
}

// ReadString consumes exactly n bytes and returns the text before the first
// NUL among them.
func (br *BlockReader) ReadString(n int) (string, error) {
	var out []byte
	terminated := false
	for left := n; left > 0; {
		if br.buffered() == 0 {
			if err := br.fill(1); err != nil {
				return "", err
			}
			if br.buffered() == 0 {
				return "", NewTruncatedError(br.pos, int64(n), int64(n-left))
			}
		}
		chunk := br.buf[br.cur : br.cur+min(left, br.buffered())]
		if !terminated {
			if i := bytes.IndexByte(chunk, NUL); i >= 0 {
				out = append(out, chunk[:i]...)
				terminated = true
			} else {
				out = append(out, chunk...)
			}
		}
		br.advance(len(chunk))
		left -= len(chunk)
	}
	return string(out), nil
}

// ReadOctal consumes an n-byte numeric field and returns its value.
// n must not exceed the buffer size.
func (br *BlockReader) ReadOctal(n int) (int64, error) {
	field, err := br.Peek(n)
	if err != nil {
		return 0, err
	}
	if len(field) < n {
		return 0, NewTruncatedError(br.pos, int64(n), int64(len(field)))
	}
	v, err := nti(field)
	if err != nil {
		return 0, NewInvalidHeaderError(br.pos, err.Error())
	}
	br.advance(n)
	return v, nil
}

// ReadByte consumes a single byte.
func (br *BlockReader) ReadByte() (byte, error) {
	field, err := br.Peek(1)
	if err != nil {
		return 0, err
	}
	if len(field) == 0 {
		return 0, NewTruncatedError(br.pos, 1, 0)
	}
	c := field[0]
	br.advance(1)
	return c, nil
}

// skip advances up to n bytes and reports how many were skipped. It stops
// early only when the source is exhausted.
func (br *BlockReader) skip(n int64) (int64, error) {
	var done int64
	for done < n {
		if br.buffered() == 0 {
			if err := br.fill(1); err != nil {
				return done, err
			}
			if br.buffered() == 0 {
				return done, nil
			}
		}
		step := int(min(n-done, int64(br.buffered())))
		br.advance(step)
		done += int64(step)
	}
	return done, nil
}

// Skip advances exactly n bytes, refilling as often as needed.
func (br *BlockReader) Skip(n int64) error {
	start := br.pos
	done, err := br.skip(n)
	if err != nil {
		return err
	}
	if done < n {
		return NewTruncatedError(start, n, done)
	}
	return nil
}

// AlignToBlock advances to the next multiple of BLOCKSIZE. Padding cut off
// by the end of the stream is tolerated; the next header read sees the end.
func (br *BlockReader) AlignToBlock() error {
	_, err := br.skip(blockPadding(br.pos))
	return err
}

// CopyTo streams exactly n bytes to w. Failures of w are returned as
// *WriteError so callers can tell them from source failures.
func (br *BlockReader) CopyTo(w io.Writer, n int64) (int64, error) {
	var written int64
	for written < n {
		if br.buffered() == 0 {
			if err := br.fill(1); err != nil {
				return written, err
			}
			if br.buffered() == 0 {
				return written, NewTruncatedError(br.pos, n, written)
			}
		}
		chunk := br.buf[br.cur : br.cur+int(min(n-written, int64(br.buffered())))]
		m, err := w.Write(chunk)
		br.advance(m)
		written += int64(m)
		if err == nil && m < len(chunk) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return written, &WriteError{err: err}
		}
	}
	return written, nil
}

// WriteError wraps a failure of the destination during CopyTo.
type WriteError struct {
	err error
}

func (e *WriteError) Error() string { return "write destination: " + e.err.Error() }
func (e *WriteError) Unwrap() error { return e.err }

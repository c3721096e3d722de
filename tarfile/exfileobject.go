package tarfile

import "io"

// ExFileObject provides a reader over the payload of a tar member. It
// consumes the shared BlockReader, so it is only valid until the walk
// moves on to the next member.
type ExFileObject struct {
	br        *BlockReader
	ti        *TarInfo
	remaining int64
}

// NewExFileObject creates a new ExFileObject positioned at the payload of ti.
func NewExFileObject(br *BlockReader, ti *TarInfo) *ExFileObject {
	return &ExFileObject{
		br:        br,
		ti:        ti,
		remaining: ti.payloadSize(),
	}
}

// Read reads up to len(p) bytes from the tar member.
func (ef *ExFileObject) Read(p []byte) (int, error) {
	if ef.remaining <= 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	if ef.br.buffered() == 0 {
		if err := ef.br.fill(1); err != nil {
			return 0, err
		}
		if ef.br.buffered() == 0 {
			return 0, NewTruncatedError(ef.br.pos, ef.ti.payloadSize(), ef.ti.payloadSize()-ef.remaining)
		}
	}
	n := int(min(int64(len(p)), ef.remaining, int64(ef.br.buffered())))
	copy(p, ef.br.buf[ef.br.cur:ef.br.cur+n])
	ef.br.advance(n)
	ef.remaining -= int64(n)
	return n, nil
}

// discard skips whatever is left of the payload.
func (ef *ExFileObject) discard() error {
	if ef.remaining <= 0 {
		return nil
	}
	err := ef.br.Skip(ef.remaining)
	ef.remaining = 0
	return err
}

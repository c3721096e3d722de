package tarfile

import (
	"errors"
	"fmt"
)

// TarError is the base of every error produced while walking an archive.
type TarError struct {
	msg string
	err error
}

func (e *TarError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *TarError) Unwrap() error { return e.err }

// HeaderError reports a malformed header. It is fatal for the walk.
type HeaderError struct{ TarError }

func (*HeaderError) formatError() {}

type InvalidHeaderError struct{ HeaderError }
type TruncatedHeaderError struct{ HeaderError }
type SubsequentHeaderError struct{ HeaderError }
type DirectorySizeError struct{ HeaderError }

// TruncatedError reports a source that ran dry while more bytes were due.
type TruncatedError struct{ TarError }

func (*TruncatedError) formatError() {}

// ExtractError reports a failure writing one entry to the sink.
type ExtractError struct{ TarError }

type CompressionError struct{ TarError }

// CanceledError wraps the context error that stopped a walk.
type CanceledError struct{ TarError }

func NewInvalidHeaderError(offset int64, msg string) error {
	return &InvalidHeaderError{HeaderError{TarError{msg: fmt.Sprintf("header at 0x%X: %s", offset, msg)}}}
}

func NewTruncatedHeaderError(offset int64, have int) error {
	return &TruncatedHeaderError{HeaderError{TarError{msg: fmt.Sprintf("header at 0x%X: truncated (%d of %d bytes)", offset, have, BLOCKSIZE)}}}
}

func NewSubsequentHeaderError(offset int64, pending string) error {
	return &SubsequentHeaderError{HeaderError{TarError{msg: fmt.Sprintf("header at 0x%X: long name marker while %q is pending", offset, pending)}}}
}

func NewDirectorySizeError(name string, size int64) error {
	return &DirectorySizeError{HeaderError{TarError{msg: fmt.Sprintf("directory %q has non-zero size %d", name, size)}}}
}

func NewTruncatedError(offset int64, want, have int64) error {
	return &TruncatedError{TarError{msg: fmt.Sprintf("unexpected end of data at 0x%X (%d of %d bytes)", offset, have, want)}}
}

func NewExtractError(name string, err error) error {
	return &ExtractError{TarError{msg: "extract " + name, err: err}}
}

func NewCompressionError(msg string) error {
	return &CompressionError{TarError{msg: msg}}
}

func NewCanceledError(err error) error {
	return &CanceledError{TarError{msg: "walk canceled", err: err}}
}

// IsFormatError reports whether err stems from malformed archive data,
// as opposed to a sink failure or cancellation.
func IsFormatError(err error) bool {
	var fe interface{ formatError() }
	return errors.As(err, &fe)
}

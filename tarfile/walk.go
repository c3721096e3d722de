package tarfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// maxLongNameSize bounds the payload of a GNU long name marker.
const maxLongNameSize = 1 << 20

// longName is the single pending long name slot. ok tells an empty name
// apart from no name at all.
type longName struct {
	name string
	ok   bool
}

// walker produces the entries of one archive in stream order. GNU long
// name markers are consumed internally and renamed onto the entry that
// follows them.
type walker struct {
	br      *BlockReader
	strict  bool
	logger  *slog.Logger
	pending longName
}

func newWalker(ctx context.Context, r io.Reader, e *Extractor) *walker {
	return &walker{
		br:     NewBlockReader(ctx, r, e.bufSize),
		strict: e.strict,
		logger: e.logger,
	}
}

// next returns the following entry, or io.EOF once the archive ends.
func (w *walker) next() (*TarInfo, error) {
	for {
		if err := w.br.ctx.Err(); err != nil {
			return nil, NewCanceledError(err)
		}
		ti, err := readTarInfo(w.br, w.strict)
		if err != nil {
			return nil, err
		}
		w.logger.Debug("header",
			slog.String("name", ti.Name),
			slog.String("type", typeName(ti.Type)),
			slog.Int64("size", ti.Size),
			slog.Int64("offset", ti.Offset))

		if !ti.IsLongName() {
			if w.pending.ok {
				ti.Name = w.pending.name
				w.pending = longName{}
			}
			return ti, nil
		}

		if w.pending.ok {
			return nil, NewSubsequentHeaderError(ti.Offset, w.pending.name)
		}
		if ti.Size > maxLongNameSize {
			return nil, NewInvalidHeaderError(ti.Offset, fmt.Sprintf("long name of %d bytes", ti.Size))
		}
		name, err := w.br.ReadString(int(ti.Size))
		if err != nil {
			return nil, err
		}
		if err := w.br.AlignToBlock(); err != nil {
			return nil, err
		}
		w.pending = longName{name: name, ok: true}
	}
}

// skipPayload discards the data of ti and realigns.
func (w *walker) skipPayload(ti *TarInfo) error {
	if err := w.br.Skip(ti.payloadSize()); err != nil {
		return err
	}
	return w.br.AlignToBlock()
}

// WalkFunc is called for every entry of an archive. body yields the
// entry payload; whatever fn leaves unread is skipped afterwards.
type WalkFunc func(ti *TarInfo, body io.Reader) error

// Walk calls fn for every entry of the plain tar stream r without writing
// anything. Long name markers are resolved and never passed to fn.
func (e *Extractor) Walk(ctx context.Context, r io.Reader, fn WalkFunc) error {
	w := newWalker(ctx, r, e)
	for {
		ti, err := w.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if ti.IsDir() && ti.Size != 0 {
			return NewDirectorySizeError(ti.Name, ti.Size)
		}
		body := NewExFileObject(w.br, ti)
		if err := fn(ti, body); err != nil {
			return err
		}
		if err := body.discard(); err != nil {
			return err
		}
		if err := w.br.AlignToBlock(); err != nil {
			return err
		}
	}
}

// List returns the entries of the plain tar stream r.
func (e *Extractor) List(ctx context.Context, r io.Reader) ([]*TarInfo, error) {
	var members []*TarInfo
	err := e.Walk(ctx, r, func(ti *TarInfo, _ io.Reader) error {
		members = append(members, ti)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

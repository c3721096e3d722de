package tarfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"
)

// Extractor walks tar streams and materializes their entries. An
// Extractor holds only configuration; each call runs an independent walk,
// so one Extractor may serve concurrent walks into disjoint sinks.
type Extractor struct {
	bufSize     int
	logger      *slog.Logger
	reporter    Reporter
	digester    Digester
	strict      bool
	compression Compression
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBufferSize sets the fill buffer of the block reader.
func WithBufferSize(n int) Option {
	return func(e *Extractor) { e.bufSize = n }
}

// WithLogger sets the logger for walk diagnostics. Reports go to the same
// logger unless WithReporter is given.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithReporter sets the receiver of per-entry reports.
func WithReporter(r Reporter) Option {
	return func(e *Extractor) { e.reporter = r }
}

// WithDigester sets how extracted file contents are digested.
func WithDigester(d Digester) Option {
	return func(e *Extractor) { e.digester = d }
}

// WithStrictTrailer requires archives to end with two zero blocks instead
// of accepting any header with a blank name as the end.
func WithStrictTrailer(strict bool) Option {
	return func(e *Extractor) { e.strict = strict }
}

// WithCompression fixes the envelope used by ExtractFile and
// ExtractCompressed instead of detecting it.
func WithCompression(c Compression) Option {
	return func(e *Extractor) { e.compression = c }
}

// NewExtractor returns an Extractor with the given options applied.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		bufSize:     DefaultBufSize,
		logger:      slog.New(slog.DiscardHandler),
		digester:    DefaultDigester,
		compression: Auto,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = LogReporter(e.logger)
	}
	return e
}

type dirTime struct {
	name  string
	mtime time.Time
}

// Extract walks the plain tar stream r and writes its entries to sink.
//
// Malformed headers, truncation and cancellation abort the walk and leave
// sink partially populated. Failures to write a single file are reported
// for that entry only and the walk continues.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, sink Sink) error {
	w := newWalker(ctx, r, e)
	var dirs []dirTime
	for {
		ti, err := w.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch {
		case ti.IsDir():
			name, err := e.extractDir(sink, ti)
			if err != nil {
				return err
			}
			dirs = append(dirs, dirTime{name: name, mtime: ti.Mtime})
		case ti.IsSym() || ti.IsLnk():
			e.reporter(newReport(ti))
		case ti.IsReg():
			if err := e.extractFile(w.br, sink, ti); err != nil {
				return err
			}
		default:
			e.logger.Debug("skipping unsupported entry",
				slog.String("name", ti.Name),
				slog.String("type", typeName(ti.Type)))
			if err := w.skipPayload(ti); err != nil {
				return err
			}
		}
	}
	e.restoreDirTimes(sink, dirs)
	return nil
}

// entryPath maps an entry name to a sink name.
func entryPath(name string) string {
	name = strings.Trim(strings.ReplaceAll(name, `\`, "/"), "/")
	if name == "" {
		return "."
	}
	return name
}

func (e *Extractor) extractDir(sink Sink, ti *TarInfo) (string, error) {
	if ti.Size != 0 {
		return "", NewDirectorySizeError(ti.Name, ti.Size)
	}
	name := entryPath(ti.Name)
	rep := newReport(ti)
	if err := sink.MkdirAll(name); err != nil {
		return "", NewExtractError(name, err)
	}
	if err := sink.Chtimes(name, ti.Mtime); err != nil {
		rep.Err = NewExtractError(name, err)
	}
	e.reporter(rep)
	return name, nil
}

// prepareFile creates the parents of name and replaces any existing file.
func prepareFile(sink Sink, name string, size int64) (io.WriteCloser, error) {
	if dir := path.Dir(name); dir != "." {
		if err := sink.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("create parent: %w", err)
		}
	}
	exists, err := sink.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := sink.Remove(name); err != nil {
			return nil, fmt.Errorf("remove existing: %w", err)
		}
	}
	return sink.Create(name, size)
}

func (e *Extractor) extractFile(br *BlockReader, sink Sink, ti *TarInfo) error {
	rep := newReport(ti)
	name := entryPath(ti.Name)

	if err := e.writeFile(br, sink, name, ti); err != nil {
		var ee *ExtractError
		if !errors.As(err, &ee) {
			return err
		}
		rep.Err = err
	} else if rep.Digest, err = e.digest(sink, name); err != nil {
		rep.Err = NewExtractError(name, err)
	}

	if err := br.AlignToBlock(); err != nil {
		return err
	}
	e.reporter(rep)
	return nil
}

// writeFile copies the payload of ti into name. Sink failures come back as
// *ExtractError with the remaining payload already skipped; anything else
// is fatal for the walk.
func (e *Extractor) writeFile(br *BlockReader, sink Sink, name string, ti *TarInfo) error {
	f, err := prepareFile(sink, name, ti.Size)
	if err != nil {
		if err := br.Skip(ti.Size); err != nil {
			return err
		}
		return NewExtractError(name, err)
	}

	n, err := br.CopyTo(f, ti.Size)
	if err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		var we *WriteError
		if !errors.As(err, &we) {
			return err
		}
		if err := br.Skip(ti.Size - n); err != nil {
			return err
		}
		return NewExtractError(name, we)
	}
	if err := f.Close(); err != nil {
		return NewExtractError(name, err)
	}
	if err := sink.Chtimes(name, ti.Mtime); err != nil {
		return NewExtractError(name, err)
	}
	return nil
}

func (e *Extractor) digest(sink Sink, name string) (string, error) {
	r, err := sink.Open(name)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return e.digester.Digest(r)
}

// restoreDirTimes reapplies directory times, deepest first, since writing
// into a directory moves its mtime.
func (e *Extractor) restoreDirTimes(sink Sink, dirs []dirTime) {
	slices.SortStableFunc(dirs, func(a, b dirTime) int {
		return strings.Count(b.name, "/") - strings.Count(a.name, "/")
	})
	for _, d := range dirs {
		if err := sink.Chtimes(d.name, d.mtime); err != nil {
			e.logger.Warn("restore directory time",
				slog.String("name", d.name),
				slog.Any("error", err))
		}
	}
}

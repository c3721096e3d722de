package tarfile

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Report is emitted for every directory, link and regular file entry.
type Report struct {
	Name     string
	Type     byte
	Checksum int64
	ModTime  time.Time
	Size     int64
	Magic    string
	Linkname string
	Digest   string // set for files written successfully
	Err      error  // per-entry failure, the walk went on
}

func newReport(ti *TarInfo) Report {
	return Report{
		Name:     ti.Name,
		Type:     ti.Type,
		Checksum: ti.Chksum,
		ModTime:  ti.Mtime,
		Size:     ti.Size,
		Magic:    ti.Magic,
		Linkname: ti.Linkname,
	}
}

// Result returns the digest, or the error message if the entry failed.
func (r Report) Result() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Digest
}

// Reporter receives reports in stream order. Reporters shared between
// concurrent walks must be safe for concurrent use.
type Reporter func(Report)

// LogReporter writes one record per report to logger.
func LogReporter(logger *slog.Logger) Reporter {
	return func(r Report) {
		attrs := []slog.Attr{
			slog.String("name", r.Name),
			slog.String("type", typeName(r.Type)),
			slog.Int64("checksum", r.Checksum),
			slog.Time("mtime", r.ModTime),
			slog.Int64("size", r.Size),
			slog.String("magic", r.Magic),
		}
		if r.Linkname != "" {
			attrs = append(attrs, slog.String("link", r.Linkname))
		}
		if r.Err != nil {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "entry failed", append(attrs, slog.Any("error", r.Err))...)
			return
		}
		if r.Digest != "" {
			attrs = append(attrs, slog.String("digest", r.Digest))
		}
		logger.LogAttrs(context.Background(), slog.LevelInfo, "entry", attrs...)
	}
}

// Stats counts reports. It is safe for concurrent use.
type Stats struct {
	Files  atomic.Int64
	Dirs   atomic.Int64
	Links  atomic.Int64
	Errors atomic.Int64
	Bytes  atomic.Int64
}

// Reporter returns a Reporter that counts r and then forwards it to next,
// which may be nil.
func (s *Stats) Reporter(next Reporter) Reporter {
	return func(r Report) {
		switch {
		case r.Err != nil:
			s.Errors.Add(1)
		case r.Type == DIRTYPE:
			s.Dirs.Add(1)
		case r.Type == SYMTYPE || r.Type == LNKTYPE:
			s.Links.Add(1)
		default:
			s.Files.Add(1)
			s.Bytes.Add(r.Size)
		}
		if next != nil {
			next(r)
		}
	}
}

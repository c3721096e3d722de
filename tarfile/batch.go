package tarfile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one archive in ExtractFiles.
type BatchResult struct {
	Archive string
	Dest    string
	Err     error
}

// archiveExts are stripped from archive names to form destination names.
var archiveExts = []string{".tgz", ".tbz2", ".txz", ".tzst", ".gz", ".bz2", ".xz", ".zst", ".lz4", ".tar"}

// archiveStem returns the base name of path without archive extensions.
func archiveStem(path string) string {
	stem := filepath.Base(path)
	for trimmed := true; trimmed; {
		trimmed = false
		for _, ext := range archiveExts {
			if len(stem) > len(ext) && strings.EqualFold(stem[len(stem)-len(ext):], ext) {
				stem = stem[:len(stem)-len(ext)]
				trimmed = true
			}
		}
	}
	return stem
}

// ExtractFiles extracts each archive in paths into its own directory under
// destRoot, running up to jobs walks at once (jobs <= 0 means no limit).
// Destination directories are kept disjoint. Failures are recorded in the
// results; with failFast the first failure cancels the remaining walks.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string, destRoot string, jobs int, failFast bool) []BatchResult {
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	results := make([]BatchResult, len(paths))
	assigned := make(map[string]bool)
	for i, p := range paths {
		stem := archiveStem(p)
		dir := stem
		for n := 1; assigned[dir]; n++ {
			dir = fmt.Sprintf("%s-%d", stem, n)
		}
		assigned[dir] = true
		results[i] = BatchResult{Archive: p, Dest: filepath.Join(destRoot, dir)}

		g.Go(func() error {
			err := e.ExtractFile(gctx, p, results[i].Dest)
			results[i].Err = err
			if err == nil {
				e.logger.Info("archive extracted",
					slog.String("archive", p),
					slog.String("dest", results[i].Dest))
				return nil
			}
			e.logger.Error("archive failed",
				slog.String("archive", p),
				slog.Any("error", err))
			if failFast {
				return err
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // errors are kept per result
	return results
}

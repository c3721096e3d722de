package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gtarstream/tarfile"
)

type options struct {
	compression string
	digest      string
	logFormat   string
	verbose     bool
	strict      bool
	jobs        int
	failFast    bool
}

func main() {
	// Ctrl-C 取消正在进行的解包
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "gtarstream",
		Short:         "Stream tar archives into a directory tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.compression, "compression", "auto", "Archive envelope (auto, tar, gz, bz2, xz, zst, lz4)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every header")
	flags.BoolVar(&opts.strict, "strict", false, "Require two zero blocks at the end of an archive")

	cmd.AddCommand(newExtractCommand(opts), newListCommand(opts))
	return cmd
}

func newExtractCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [OPTIONS] ARCHIVE|DIR DEST",
		Short: "Extract an archive, or every archive in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.digest, "digest", "sha256", "Report digest (sha256, sha384, sha512, sha1-base64)")
	flags.IntVar(&opts.jobs, "jobs", 4, "Archives extracted at once when ARCHIVE is a directory")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "Stop all archives after the first failure")
	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [OPTIONS] ARCHIVE",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}
}

func newLogger(opts *options) (*slog.Logger, error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch opts.logFormat {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.logFormat)
	}
}

func newExtractor(opts *options, logger *slog.Logger, extra ...tarfile.Option) (*tarfile.Extractor, error) {
	comp, err := tarfile.ParseCompression(opts.compression)
	if err != nil {
		return nil, err
	}
	return tarfile.NewExtractor(append([]tarfile.Option{
		tarfile.WithLogger(logger),
		tarfile.WithCompression(comp),
		tarfile.WithStrictTrailer(opts.strict),
	}, extra...)...), nil
}

func runExtract(ctx context.Context, out io.Writer, opts *options, src, dest string) error {
	digester, err := tarfile.ParseDigester(opts.digest)
	if err != nil {
		return err
	}
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	stats := new(tarfile.Stats)
	ext, err := newExtractor(opts, logger,
		tarfile.WithDigester(digester),
		tarfile.WithReporter(stats.Reporter(tarfile.LogReporter(logger))),
	)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		err = ext.ExtractFile(ctx, src, dest)
	} else {
		err = extractDir(ctx, ext, src, dest, opts)
	}

	fmt.Fprintf(out, "%d files (%s), %d directories, %d links, %d errors\n",
		stats.Files.Load(), humanize.Bytes(uint64(stats.Bytes.Load())),
		stats.Dirs.Load(), stats.Links.Load(), stats.Errors.Load())
	return err
}

// extractDir 解包目录中的每个归档文件
func extractDir(ctx context.Context, ext *tarfile.Extractor, dir, dest string, opts *options) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var paths []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no archives in %s", dir)
	}

	var errs []error
	for _, res := range ext.ExtractFiles(ctx, paths, dest, opts.jobs, opts.failFast) {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d archives failed: %w", len(errs), len(paths), errors.Join(errs...))
	}
	return nil
}

func runList(ctx context.Context, out io.Writer, opts *options, src string) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	ext, err := newExtractor(opts, logger)
	if err != nil {
		return err
	}
	members, err := ext.ListFile(ctx, src)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, m := range members {
		fmt.Fprintf(tw, "%c\t%s\t%s\t%s\n",
			typeChar(m.Type), humanize.Bytes(uint64(m.Size)),
			m.Mtime.UTC().Format("2006-01-02 15:04:05"), m.Name)
	}
	return tw.Flush()
}

func typeChar(t byte) rune {
	switch t {
	case tarfile.DIRTYPE:
		return 'd'
	case tarfile.SYMTYPE:
		return 'l'
	case tarfile.LNKTYPE:
		return 'h'
	case tarfile.REGTYPE, tarfile.AREGTYPE:
		return '-'
	default:
		return '?'
	}
}

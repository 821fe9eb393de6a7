package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/sources"
)

const (
	lastImportKey       = "last_import_at"
	lastImportSourceKey = "last_import_source"
)

// Store is the part of *db.Store the importer needs.
type Store interface {
	ImportBookmarks(ctx context.Context, imported *db.ImportedBookmarks, source db.ImportSource) (db.ImportResult, error)
	GetMetadata(ctx context.Context, key string) (string, error)
	SetMetadata(ctx context.Context, key, value string) error
}

// Options configures import behavior
type Options struct {
	Verbose bool      // Show the tree summary of each export
	Silent  bool      // Suppress all output (for TUI and HTTP imports)
	Out     io.Writer // Defaults to stdout
	Logger  logger.Logger
}

// Stats describes one finished import.
type Stats struct {
	Reader   string
	Source   db.ImportSource
	Found    int
	Result   db.ImportResult
	Duration time.Duration
}

func (o *Options) printf(format string, args ...any) {
	if o.Silent {
		return
	}
	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

func (o *Options) log() logger.Logger {
	if o.Logger == nil {
		return logger.NewNop()
	}
	return o.Logger
}

// Import reads one export and merges it into the store. The last import time
// and source are recorded in the store metadata.
func Import(ctx context.Context, store Store, reader sources.Reader, opts Options) (*Stats, error) {
	if !reader.Available() {
		return nil, fmt.Errorf("%s export not found", reader.Name())
	}

	started := time.Now()
	opts.printf("Reading %s export...\n", reader.Name())

	imported, err := reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s export: %w", reader.Name(), err)
	}

	stats := &Stats{
		Reader: reader.Name(),
		Source: reader.Source(),
		Found:  imported.NumberOfBookmarks(),
	}
	if opts.Verbose {
		opts.printf("  Source: %s\n", stats.Source.Name())
		opts.printf("  Bookmarks bar: %d items\n", len(imported.BookmarkBar.Children))
		opts.printf("  Other bookmarks: %d items\n", len(imported.OtherBookmarks.Children))
		if imported.SyncedBookmarks != nil {
			opts.printf("  Synced bookmarks: %d items\n", len(imported.SyncedBookmarks.Children))
		}
	}

	result, err := store.ImportBookmarks(ctx, imported, stats.Source)
	stats.Result = result
	stats.Duration = time.Since(started)
	if err != nil {
		opts.log().Error("import failed",
			logger.String("reader", stats.Reader),
			logger.String("source", stats.Source.String()),
			logger.Error(err))
		return stats, fmt.Errorf("failed to import %s bookmarks: %w", stats.Source.Name(), err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := store.SetMetadata(ctx, lastImportKey, now); err != nil {
		opts.log().Warn("could not record import time", logger.Error(err))
	}
	if err := store.SetMetadata(ctx, lastImportSourceKey, stats.Source.String()); err != nil {
		opts.log().Warn("could not record import source", logger.Error(err))
	}

	opts.log().Info("import finished",
		logger.String("reader", stats.Reader),
		logger.String("source", stats.Source.String()),
		logger.Int("successful", result.Successful),
		logger.Int("duplicates", result.Duplicates),
		logger.Int("failed", result.Failed),
		logger.Duration("took", stats.Duration))
	return stats, nil
}

// ImportAll runs Import for every reader and keeps going when one fails.
func ImportAll(ctx context.Context, store Store, readers []sources.Reader, opts Options) ([]*Stats, error) {
	var all []*Stats
	var failed []string

	for i, r := range readers {
		stats, err := Import(ctx, store, r, opts)
		if err != nil {
			opts.printf("Error importing from %s: %v\n", r.Name(), err)
			failed = append(failed, r.Name())
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			continue
		}
		all = append(all, stats)
		printProgress(&opts, i+1, len(readers), "Importing")
	}
	if len(readers) > 0 {
		opts.printf("\n\n")
	}

	var total db.ImportResult
	for _, s := range all {
		opts.printf("Imported %d %s bookmarks, skipped %d duplicates, %d failed\n",
			s.Result.Successful, s.Source.Name(), s.Result.Duplicates, s.Result.Failed)
		total.Add(s.Result)
	}
	if len(all) > 1 {
		opts.printf("Done! %d bookmarks imported in total\n", total.Successful)
	}

	if len(failed) > 0 {
		return all, fmt.Errorf("import failed for: %s", strings.Join(failed, ", "))
	}
	return all, nil
}

// LastImport reports when and from which source the store last imported.
// The zero time means it never did.
func LastImport(ctx context.Context, store Store) (time.Time, string, error) {
	at, err := store.GetMetadata(ctx, lastImportKey)
	if err != nil || at == "" {
		return time.Time{}, "", err
	}
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid %s value %q: %w", lastImportKey, at, err)
	}
	source, err := store.GetMetadata(ctx, lastImportSourceKey)
	return ts, source, err
}

func printProgress(opts *Options, current, total int, prefix string) {
	if opts.Silent {
		return
	}
	pct := float64(current) / float64(total) * 100
	barWidth := 30
	filled := int(float64(barWidth) * float64(current) / float64(total))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	opts.printf("\r%s [%s] %d/%d (%.0f%%)", prefix, bar, current, total, pct)
}

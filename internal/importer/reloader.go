package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/sources"
)

// ImportFunc runs one import of reader.
type ImportFunc func(ctx context.Context, reader sources.Reader) (*Stats, error)

// Reloader re-imports an export file periodically and on demand. Bookmarks
// already in the store are skipped as duplicates, so only new entries land.
type Reloader struct {
	reader        sources.Reader
	importFn      ImportFunc
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

func NewReloader(
	reader sources.Reader,
	importFn ImportFunc,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Reloader {
	return &Reloader{
		reader:        reader,
		importFn:      importFn,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once, then keeps reloading until Stop or ctx is done.
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.Reload(ctx); err != nil {
		close(r.done)
		return fmt.Errorf("initial bookmark import failed: %w", err)
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.Reload(ctx); err != nil {
					r.logger.Error("failed to reload bookmarks", logger.Error(err))
				}
			case <-r.manualTrigger:
				r.logger.Info("manual bookmark reload triggered")
				if err := r.Reload(ctx); err != nil {
					r.logger.Error("failed to reload bookmarks", logger.Error(err))
				}
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the reload loop and waits for a running reload to finish.
func (r *Reloader) Stop() {
	close(r.stopCh)
	<-r.done
}

func (r *Reloader) Reload(ctx context.Context) error {
	r.logger.Info("reloading bookmarks", logger.String("reader", r.reader.Name()))

	stats, err := r.importFn(ctx, r.reader)
	if err != nil {
		return err
	}
	r.logger.Info("bookmarks reloaded",
		logger.Int("new", stats.Result.Successful),
		logger.Int("duplicates", stats.Result.Duplicates),
		logger.Int("failed", stats.Result.Failed))
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/httpserver"
	"github.com/user/bookmarks/internal/httpserver/deps"
	"github.com/user/bookmarks/internal/importer"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/sources"
)

const shutdownTimeout = 10 * time.Second

var version = "dev"

var (
	serveAddr     string
	serveWatch    string
	serveFormat   string
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bookmarks HTTP API",
	Long:  "Serve the JSON API. With --watch, an export file is re-imported on an interval and via POST /api/import/reload.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if serveAddr != "" {
			a.cfg.Server.Addr = serveAddr
		}

		d := deps.Deps{
			Logger:    a.log,
			StartTime: time.Now(),
			Version:   version,
			Manager:   a.mgr,
			TimeNow:   time.Now,
		}

		if serveWatch != "" {
			reader, err := sources.ForSource(serveFormat, serveWatch)
			if err != nil {
				return err
			}
			d.ReloadTrigger = make(chan struct{})
			importFn := func(ctx context.Context, r sources.Reader) (*importer.Stats, error) {
				return a.mgr.Import(ctx, r, importer.Options{Silent: true})
			}
			reloader := importer.NewReloader(reader, importFn, a.log, serveInterval, d.ReloadTrigger)
			if err := reloader.Start(ctx); err != nil {
				return err
			}
			defer reloader.Stop()
		}

		srv := httpserver.New(a.cfg, a.log, d)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("shutting down", logger.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from config)")
	serveCmd.Flags().StringVarP(&serveWatch, "watch", "w", "", "Export file to re-import periodically")
	serveCmd.Flags().StringVarP(&serveFormat, "format", "f", "auto", "Format of the watched file")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 15*time.Minute, "Re-import interval")
	rootCmd.AddCommand(serveCmd)
}

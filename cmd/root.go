package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/config"
	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/manager"
	"github.com/user/bookmarks/internal/notify"
	"github.com/user/bookmarks/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Local bookmarks manager",
	Long:  "A local bookmarks store with folders, favorites, browser imports and a TUI.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// config.Load reads the data dir from the environment
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			return os.Setenv("BOOKMARKS_DATA_DIR", dir)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return tui.Run(cmd.Context(), a.mgr)
	},
}

// app holds what every command needs: config, logger and the loaded manager.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	notifier notify.Notifier
	store    *db.Store
	mgr      *manager.Manager
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Redis.Addr != "" {
		rn, err := notify.NewRedisNotifier(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel, log)
		if err != nil {
			log.Warn("change notifications disabled", logger.Error(err))
		} else {
			notifier = rn
		}
	}

	store, err := db.NewStore(cfg.DataDir, db.Options{
		Logger:          log,
		Notifier:        notifier,
		DebugAssertions: cfg.DebugAssertions,
		MaxSaveAttempts: cfg.Store.MaxSaveAttempts,
	})
	if err != nil {
		notifier.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	mgr := manager.New(store, log)
	if err := mgr.LoadBookmarks(ctx); err != nil {
		store.Close()
		notifier.Close()
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	return &app{cfg: cfg, log: log, notifier: notifier, store: store, mgr: mgr}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close store", logger.Error(err))
	}
	if err := a.notifier.Close(); err != nil {
		a.log.Warn("failed to close notifier", logger.Error(err))
	}
	_ = a.log.Sync()
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.bookmarks)")
}

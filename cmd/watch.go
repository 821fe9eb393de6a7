package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/bookmarks/internal/config"
	"github.com/user/bookmarks/internal/logger"
	"github.com/user/bookmarks/internal/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print bookmark changes published to Redis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis is not configured (set BOOKMARKS_REDIS_ADDR)")
		}

		log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync()

		n, err := notify.NewRedisNotifier(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel, log)
		if err != nil {
			return err
		}
		defer n.Close()

		sub := n.Subscribe(ctx)
		defer sub.Close()

		fmt.Printf("Watching %s, Ctrl+C to stop\n", cfg.Redis.Channel)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				c, err := notify.Decode(msg.Payload)
				if err != nil {
					log.Warn("bad change payload", logger.Error(err))
					continue
				}
				fmt.Printf("%s  %-8s %s\n", c.At.Local().Format(time.TimeOnly), c.Op, strings.Join(c.UUIDs, ", "))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

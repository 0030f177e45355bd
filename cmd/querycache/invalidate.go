package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/krisalay/querycache/internal/config"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/invalidation"
)

func newRedisBus(cfg *config.Config) *invalidation.RedisBus {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return invalidation.NewRedisBus(client, cfg.Redis.Channel)
}

func invalidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Publish or listen for cross-process invalidations over Redis",
	}
	cmd.AddCommand(invalidatePublishCmd())
	cmd.AddCommand(invalidateListenCmd())
	return cmd
}

func invalidatePublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish KEY...",
		Short: "Announce that keys should be dropped everywhere",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			bus := newRedisBus(cfg)
			defer bus.Close()

			for _, key := range args {
				if err := bus.Publish(cmd.Context(), key); err != nil {
					return fmt.Errorf("publish %s: %w", key, err)
				}
				fmt.Println("PUBLISHED ->", key)
			}
			return nil
		},
	}
}

func invalidateListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Subscribe and drop announced keys from the shared cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, _, err := newSharedManager(cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}

			bus := newRedisBus(cfg)
			defer bus.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				logging.Op().Info("shutdown signal received", "signal", sig.String())
				bus.Close()
			}()

			if err := bus.Listen(cmd.Context(), m); err != nil {
				return fmt.Errorf("listen on %s: %w", bus.Channel(), err)
			}
			return nil
		},
	}
}

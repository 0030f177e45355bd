package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/internal/logging"
)

func benchCmd() *cobra.Command {
	var (
		workers     int
		ops         int
		keySpace    int
		writeRatio  float64
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a concurrent read/write load against the shared cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			m, _, err := newSharedManager(cfg, reg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			m.StartJanitor(ctx, cfg.Cache.CleanupInterval)

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:    metricsAddr,
					Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				}
				go func() {
					logging.Op().Info("metrics endpoint started", "addr", metricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logging.Op().Error("metrics endpoint failed", "error", err)
					}
				}()
				defer srv.Close()
			}

			start := time.Now()
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(seed int64) {
					defer wg.Done()
					r := rand.New(rand.NewSource(seed))
					for i := 0; i < ops; i++ {
						key := cache.GenerateKey("bench", r.Intn(keySpace))
						if r.Float64() < writeRatio {
							m.Set(key, i)
						} else if _, ok := m.Get(key); !ok {
							m.Set(key, i)
						}
					}
				}(int64(w))
			}
			wg.Wait()
			elapsed := time.Since(start)

			total := workers * ops
			fmt.Printf("%d ops in %s (%.0f ops/s)\n", total, elapsed, float64(total)/elapsed.Seconds())
			printStats("shared", m.Stats())
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 8, "Concurrent goroutines")
	cmd.Flags().IntVar(&ops, "ops", 100000, "Operations per goroutine")
	cmd.Flags().IntVar(&keySpace, "keys", 1000, "Distinct keys")
	cmd.Flags().Float64Var(&writeRatio, "write-ratio", 0.1, "Fraction of operations that write")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	return cmd
}

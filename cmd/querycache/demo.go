package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/memo"
	"github.com/krisalay/querycache/preload"
	"github.com/krisalay/querycache/query"
)

type book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

var catalog = map[int]book{
	1: {ID: 1, Title: "Dune", Author: "Frank Herbert"},
	2: {ID: 2, Title: "Solaris", Author: "Stanislaw Lem"},
	3: {ID: 3, Title: "Neuromancer", Author: "William Gibson"},
}

func fetchBook(id int) func(context.Context) (book, error) {
	return func(ctx context.Context) (book, error) {
		fmt.Println("PRODUCER -> fetch book", id)
		b, ok := catalog[id]
		if !ok {
			return book{}, fmt.Errorf("book %d not found", id)
		}
		return b, nil
	}
}

func demoCmd() *cobra.Command {
	var dumpMetrics bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Replay cache, query, memo and preload scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			shared, _, err := newSharedManager(cfg, reg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			fmt.Println("\n==================== 1) CACHED QUERY ====================")
			env := query.NewFocusEmitter()
			q := query.New(cache.GenerateKey("book", 1), fetchBook(1),
				query.WithEnvironment(env),
				query.WithStaleTime(cfg.Query.StaleTime),
				query.WithRefetchOnMount(cfg.Query.RefetchOnMount),
				query.WithRefetchOnWindowFocus(cfg.Query.RefetchOnWindowFocus),
			)
			q.Mount(ctx)
			if b, ok := q.Data(); ok {
				fmt.Println("QUERY  -> data =", b.Title)
			}
			q.Fetch(ctx, false)
			fmt.Println("QUERY  -> second fetch served from cache, stale =", q.IsStale())
			env.Focus()
			q.Refetch(ctx)
			q.Unmount()

			fmt.Println("\n==================== 2) FAILING QUERY ====================")
			missing := query.New(cache.GenerateKey("book", 99), fetchBook(99))
			missing.Fetch(ctx, false)
			fmt.Println("QUERY  -> error =", missing.Err())

			fmt.Println("\n==================== 3) MEMOIZED SEARCH ====================")
			search := memo.New(func(ctx context.Context, params map[string]any) ([]string, error) {
				fmt.Println("PRODUCER -> search", params)
				var out []string
				for _, b := range catalog {
					if b.Author == params["author"] {
						out = append(out, b.Title)
					}
				}
				return out, nil
			}, memo.Config{Prefix: cfg.Memo.Prefix, TTL: cfg.Memo.TTL, MaxSize: cfg.Memo.MaxSize})
			search.Call(ctx, map[string]any{"author": "Stanislaw Lem", "page": 1})
			search.Call(ctx, map[string]any{"page": 1, "author": "Stanislaw Lem"})
			printStats("memo", search.Stats())

			fmt.Println("\n==================== 4) PRELOAD ====================")
			items := []preload.Item{
				{Key: cache.GenerateKey("book", 2), Fetch: func(ctx context.Context) (any, error) { return fetchBook(2)(ctx) }},
				{Key: cache.GenerateKey("book", 3), Fetch: func(ctx context.Context) (any, error) { return fetchBook(3)(ctx) }},
				{Key: cache.GenerateKey("book", 42), Fetch: func(ctx context.Context) (any, error) { return nil, errors.New("catalog offline") }},
			}
			for _, s := range preload.Run(ctx, items, preload.WithConcurrency(cfg.Preload.Concurrency)) {
				fmt.Printf("PRELOAD -> %-8s success=%v err=%v\n", s.Key, s.Success, s.Err)
			}

			fmt.Println("\n==================== 5) EVICTION ====================")
			for i := 0; i < cfg.Cache.MaxSize+5; i++ {
				shared.Set(cache.GenerateKey("filler", i), i)
			}
			_, ok := shared.Get(cache.GenerateKey("book", 1))
			fmt.Println("CACHE  -> book:1 still cached after filling =", ok)

			fmt.Println("\n==================== 6) TTL ====================")
			shortLived := cache.New(cache.Config{MaxSize: 4, TTL: 50 * time.Millisecond}, cache.WithName("short"))
			shortLived.Set("x", "temp-value")
			time.Sleep(80 * time.Millisecond)
			_, ok = shortLived.Get("x")
			fmt.Println("CACHE  -> x after ttl present =", ok)

			fmt.Println("\n==================== STATS ====================")
			printStats("shared", shared.Stats())

			if dumpMetrics {
				fmt.Println("\n==================== METRICS ====================")
				families, err := reg.Gather()
				if err != nil {
					return err
				}
				enc := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
				for _, mf := range families {
					if err := enc.Encode(mf); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "Print Prometheus metrics at the end")
	return cmd
}

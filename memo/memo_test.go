package memo_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/memo"
)

type searchArgs struct {
	Query string
	Page  int
}

func quiet() []cache.Option {
	return []cache.Option{cache.WithLogger(logging.Discard())}
}

func TestWrapCachesByArguments(t *testing.T) {
	var calls atomic.Int32
	search := memo.Wrap(func(ctx context.Context, a searchArgs) ([]string, error) {
		calls.Add(1)
		return []string{a.Query + "-result"}, nil
	}, memo.Config{Prefix: "search", Options: quiet()})

	ctx := context.Background()
	r1, _ := search(ctx, searchArgs{Query: "dune", Page: 1})
	r2, _ := search(ctx, searchArgs{Query: "dune", Page: 1})
	search(ctx, searchArgs{Query: "dune", Page: 2})

	if calls.Load() != 2 {
		t.Fatalf("expected 2 underlying calls, got %d", calls.Load())
	}
	if r1[0] != "dune-result" || r2[0] != "dune-result" {
		t.Fatalf("unexpected results %v %v", r1, r2)
	}
}

func TestMapArgumentsOrderIndependent(t *testing.T) {
	var calls atomic.Int32
	f := memo.New(func(ctx context.Context, a map[string]any) (int, error) {
		calls.Add(1)
		return len(a), nil
	}, memo.Config{Options: quiet()})

	ctx := context.Background()
	f.Call(ctx, map[string]any{"a": 1, "b": 2})
	f.Call(ctx, map[string]any{"b": 2, "a": 1})

	if calls.Load() != 1 {
		t.Fatalf("equal maps must share a cache entry, calls=%d", calls.Load())
	}
	if !strings.HasPrefix(f.Key(map[string]any{"a": 1}), "fn:") {
		t.Fatalf("default prefix should be fn, key=%q", f.Key(map[string]any{"a": 1}))
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	f := memo.New(func(ctx context.Context, id int) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	}, memo.Config{Options: quiet()})

	ctx := context.Background()
	if _, err := f.Call(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := f.Call(ctx, 1)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to succeed, got %q %v", v, err)
	}
}

func TestPrivateManagers(t *testing.T) {
	ctx := context.Background()
	a := memo.New(func(ctx context.Context, id int) (string, error) { return "a", nil }, memo.Config{Prefix: "same", Options: quiet()})
	b := memo.New(func(ctx context.Context, id int) (string, error) { return "b", nil }, memo.Config{Prefix: "same", Options: quiet()})

	va, _ := a.Call(ctx, 1)
	vb, _ := b.Call(ctx, 1)
	if va != "a" || vb != "b" {
		t.Fatalf("memoized functions must not share entries: %q %q", va, vb)
	}
	if a.Name() == b.Name() {
		t.Fatal("each memoized function needs its own manager")
	}
	if cache.Default().Has(a.Key(1)) {
		t.Fatal("memo must not write to the shared manager")
	}
}

func TestTTLAndForget(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	var calls atomic.Int32
	f := memo.New(func(ctx context.Context, id int) (int, error) {
		return int(calls.Add(1)), nil
	}, memo.Config{TTL: time.Second, Options: append(quiet(), cache.WithClock(clock))})

	ctx := context.Background()
	f.Call(ctx, 1)
	now = now.Add(2 * time.Second)
	if v, _ := f.Call(ctx, 1); v != 2 {
		t.Fatalf("expired result should be recomputed, got %d", v)
	}

	f.Forget(1)
	if v, _ := f.Call(ctx, 1); v != 3 {
		t.Fatalf("forgotten result should be recomputed, got %d", v)
	}

	s := f.Stats()
	if s.HitCount != 0 || s.MissCount != 3 {
		t.Fatalf("unexpected stats %+v", s)
	}
	f.Reset()
	if s := f.Stats(); s.Size != 0 || s.MissCount != 0 {
		t.Fatalf("reset should clear everything, got %+v", s)
	}
}

func TestCoalesceSharesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	var calls, entered atomic.Int32
	f := memo.New(func(ctx context.Context, id int) (int, error) {
		calls.Add(1)
		<-release
		return id * 10, nil
	}, memo.Config{Coalesce: true, Options: quiet()})

	const callers = 5
	var wg sync.WaitGroup
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entered.Add(1)
			results[i], _ = f.Call(context.Background(), 7)
		}(i)
	}

	for entered.Load() < callers {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one shared call, got %d", calls.Load())
	}
	for i, r := range results {
		if r != 70 {
			t.Fatalf("caller %d got %d", i, r)
		}
	}
}

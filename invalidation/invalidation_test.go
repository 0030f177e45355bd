package invalidation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	cache "github.com/krisalay/querycache"
	"github.com/krisalay/querycache/internal/logging"
	"github.com/krisalay/querycache/invalidation"
)

type recordingPublisher struct {
	mu    sync.Mutex
	keys  []string
	err   error
	block chan struct{}
}

func (p *recordingPublisher) Publish(ctx context.Context, key string) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func newManager() *cache.Manager {
	return cache.New(cache.Config{}, cache.WithLogger(logging.Discard()))
}

func TestInvalidateDeletesThenPublishes(t *testing.T) {
	m := newManager()
	m.Set("books:1", "dune")
	pub := &recordingPublisher{}

	if err := invalidation.Invalidate(context.Background(), m, pub, "books:1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if m.Has("books:1") {
		t.Fatal("local entry should be deleted")
	}
	if got := pub.published(); len(got) != 1 || got[0] != "books:1" {
		t.Fatalf("expected one announcement, got %v", got)
	}

	if err := invalidation.Invalidate(context.Background(), m, nil, "x"); err != nil {
		t.Fatalf("nil publisher should be allowed: %v", err)
	}
}

func TestDrain(t *testing.T) {
	m := newManager()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	keys := make(chan string, 2)
	keys <- "a"
	keys <- "c"
	close(keys)

	if err := invalidation.Drain(context.Background(), keys, m); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if m.Has("a") || m.Has("c") || !m.Has("b") {
		t.Fatalf("unexpected keys after drain: %v", m.Keys())
	}
}

func TestDrainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		invalidation.Drain(ctx, make(chan string), newManager())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain did not stop on cancel")
	}
}

func TestAsyncPublisherDeliversOnClose(t *testing.T) {
	next := &recordingPublisher{}
	p := invalidation.NewAsyncPublisher(next, 16)

	for _, k := range []string{"a", "b", "c"} {
		if err := p.Publish(context.Background(), k); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	p.Close()

	if got := next.published(); len(got) != 3 {
		t.Fatalf("expected all queued announcements to drain, got %v", got)
	}
	if err := p.Publish(context.Background(), "late"); !errors.Is(err, invalidation.ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
	p.Close()
}

func TestAsyncPublisherDropsWhenFull(t *testing.T) {
	next := &recordingPublisher{block: make(chan struct{})}
	p := invalidation.NewAsyncPublisher(next, 1)

	// the worker holds at most one blocked request and the queue one more
	for i := 0; i < 10; i++ {
		p.Publish(context.Background(), cache.GenerateKey("k", i))
	}

	if p.Dropped() < 8 {
		t.Fatalf("expected at least 8 dropped announcements, got %d", p.Dropped())
	}
	close(next.block)
	p.Close()
}

func TestAsyncPublisherSurvivesErrors(t *testing.T) {
	next := &recordingPublisher{err: errors.New("redis down")}
	p := invalidation.NewAsyncPublisher(next, 4)
	p.Publish(context.Background(), "a")
	p.Publish(context.Background(), "b")
	p.Close()

	if got := next.published(); len(got) != 2 {
		t.Fatalf("worker should keep going after errors, got %v", got)
	}
}

func TestRedisBusClosed(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	bus := invalidation.NewRedisBus(client, "")
	if bus.Channel() != invalidation.DefaultChannel {
		t.Fatalf("unexpected default channel %q", bus.Channel())
	}
	bus.Close()

	if err := bus.Publish(context.Background(), "k"); !errors.Is(err, invalidation.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := bus.Listen(context.Background(), newManager()); !errors.Is(err, invalidation.ErrClosed) {
		t.Fatalf("expected ErrClosed from listen, got %v", err)
	}
}

// newTestRedisClient skips when no Redis is reachable on localhost.
func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisBusRoundTrip(t *testing.T) {
	client := newTestRedisClient(t)
	channel := "querycache:test:" + t.Name()

	m := newManager()
	m.Set("user:1", "alice")
	m.Set("user:2", "bob")

	listener := invalidation.NewRedisBus(client, channel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- listener.Listen(ctx, m) }()

	publisher := invalidation.NewRedisBus(client, channel)
	defer publisher.Close()

	deadline := time.Now().Add(3 * time.Second)
	for m.Has("user:1") && time.Now().Before(deadline) {
		// resend until the subscription is live
		if err := publisher.Publish(context.Background(), "user:1"); err != nil {
			t.Fatalf("publish: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	if m.Has("user:1") {
		t.Fatal("published key should be removed by the listener")
	}
	if !m.Has("user:2") {
		t.Fatal("other keys must survive")
	}

	listener.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("listen returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listen did not stop after Close")
	}
}

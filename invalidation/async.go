package invalidation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/krisalay/querycache/internal/logging"
)

// publishReq represents one pending announcement.
type publishReq struct {
	ctx context.Context
	key string
}

/*
AsyncPublisher queues announcements and sends them from one background worker.

Publish never blocks the caller: if the queue is full the announcement is
dropped and counted. Other processes then fall back to TTL expiry for that key.
*/
type AsyncPublisher struct {
	next   Publisher
	logger *slog.Logger

	ch chan publishReq
	wg sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewAsyncPublisher starts the worker. buffer is the queue length.
func NewAsyncPublisher(next Publisher, buffer int) *AsyncPublisher {
	if buffer < 0 {
		buffer = 0
	}
	p := &AsyncPublisher{
		next:   next,
		logger: logging.Op(),
		ch:     make(chan publishReq, buffer),
	}

	p.wg.Add(1)
	go p.worker()
	return p
}

// Publish enqueues key. The returned error only reports a closed publisher.
func (p *AsyncPublisher) Publish(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	// the context outlives this call, so detach it from cancellation
	req := publishReq{ctx: context.WithoutCancel(ctx), key: key}
	select {
	case p.ch <- req:
	default:
		p.dropped++
		p.logger.Warn("invalidation dropped, queue full", "key", key)
	}
	return nil
}

// Dropped returns how many announcements were discarded under pressure.
func (p *AsyncPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *AsyncPublisher) worker() {
	defer p.wg.Done()

	for req := range p.ch {
		if err := p.next.Publish(req.ctx, req.key); err != nil {
			p.logger.Error("invalidation publish failed", "key", req.key, "error", err)
		}
	}
}

// Close stops accepting announcements and waits for the queue to drain.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	p.wg.Wait()
}

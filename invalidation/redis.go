package invalidation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/krisalay/querycache/internal/logging"
)

// RedisBus publishes and receives invalidation signals over Redis Pub/Sub.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewRedisBus wraps an existing client. An empty channel selects DefaultChannel.
func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		logger:  logging.Op(),
	}
}

// Channel returns the Pub/Sub channel name.
func (b *RedisBus) Channel() string {
	return b.channel
}

// Publish sends key to every listener, including ones in this process.
func (b *RedisBus) Publish(ctx context.Context, key string) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return b.client.Publish(ctx, b.channel, key).Err()
}

/*
Listen subscribes to the channel and deletes every received key from target.
It blocks until ctx is cancelled, Close is called, or the subscription ends.
*/
func (b *RedisBus) Listen(ctx context.Context, target Deleter) error {
	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return ErrClosed
	}
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()

	// Receive once so subscription errors surface instead of a silent channel.
	if _, err := pubsub.Receive(subCtx); err != nil {
		if subCtx.Err() != nil {
			return nil
		}
		return err
	}
	b.logger.Info("invalidation listener subscribed", "channel", b.channel)

	return Drain(subCtx, messages(subCtx, pubsub.Channel()), target)
}

// Close stops a running Listen and rejects further publishes.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.cancel != nil {
		b.cancel()
	}
	return nil
}

func messages(ctx context.Context, ch <-chan *redis.Message) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range ch {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Drain deletes each key received on keys from target until keys closes
// or ctx is cancelled.
func Drain(ctx context.Context, keys <-chan string, target Deleter) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			target.Delete(key)
		}
	}
}

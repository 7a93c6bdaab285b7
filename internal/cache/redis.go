package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultChannel        = "invoices:view-invalidation"
	defaultPublishTimeout = 2 * time.Second
	defaultCloseTimeout   = 5 * time.Second
)

type invalidationMessage struct {
	Path   string `json:"path"`
	Origin string `json:"origin"`
}

// RedisInvalidator broadcasts invalidated paths over Redis Pub/Sub so every
// instance drops its local copy of the view.
type RedisInvalidator struct {
	client         *redis.Client
	ownsClient     bool
	channel        string
	origin         string
	publishTimeout time.Duration
	logger         *zap.Logger

	mu        sync.Mutex
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	isRunning bool
}

type RedisOption func(*RedisInvalidator)

func WithChannel(channel string) RedisOption {
	return func(i *RedisInvalidator) { i.channel = channel }
}

func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(i *RedisInvalidator) { i.logger = logger }
}

// WithPublishTimeout bounds each publish so a slow Redis never holds up a mutation.
func WithPublishTimeout(d time.Duration) RedisOption {
	return func(i *RedisInvalidator) { i.publishTimeout = d }
}

// NewRedisInvalidator connects to addr and verifies the connection.
func NewRedisInvalidator(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisInvalidator, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	i := NewRedisInvalidatorWithClient(client, opts...)
	i.ownsClient = true
	return i, nil
}

// NewRedisInvalidatorWithClient uses an existing client. The caller keeps
// ownership of the client.
func NewRedisInvalidatorWithClient(client *redis.Client, opts ...RedisOption) *RedisInvalidator {
	i := &RedisInvalidator{
		client:         client,
		channel:        DefaultChannel,
		origin:         uuid.NewString(),
		publishTimeout: defaultPublishTimeout,
		logger:         zap.NewNop(),
		doneCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invalidate publishes path to the other instances. Failures are logged and
// swallowed.
func (i *RedisInvalidator) Invalidate(ctx context.Context, path string) {
	if err := i.Publish(ctx, path); err != nil {
		i.logger.Warn("view invalidation not broadcast", zap.String("path", path), zap.Error(err))
	}
}

// Publish sends an invalidation for path on the channel.
func (i *RedisInvalidator) Publish(ctx context.Context, path string) error {
	data, err := json.Marshal(invalidationMessage{Path: path, Origin: i.origin})
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, i.publishTimeout)
	defer cancel()
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}

	i.logger.Debug("published view invalidation", zap.String("path", path), zap.String("channel", i.channel))
	return nil
}

// Subscribe applies invalidations published by other instances to local.
// It blocks until ctx is done or Close is called.
func (i *RedisInvalidator) Subscribe(ctx context.Context, local Invalidator) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return errors.New("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.isRunning = true
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("subscribed to view invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("view invalidation subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("view invalidation channel closed")
				return nil
			}
			var m invalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("invalid invalidation message", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			if m.Origin == i.origin {
				continue
			}
			local.Invalidate(subCtx, m.Path)
		}
	}
}

func (i *RedisInvalidator) markDone() {
	i.doneOnce.Do(func() { close(i.doneCh) })
}

// Close stops the subscription and releases the client if it is owned.
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}

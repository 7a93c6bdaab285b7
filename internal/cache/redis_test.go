package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisInvalidator_UnreachableIsSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	inv := NewRedisInvalidatorWithClient(client, WithRedisLogger(zap.New(core)), WithPublishTimeout(100*time.Millisecond))

	assert.NotPanics(t, func() {
		inv.Invalidate(context.Background(), "/dashboard/invoices")
	})
	assert.Equal(t, 1, logs.FilterMessage("view invalidation not broadcast").Len())
	assert.Error(t, inv.Publish(context.Background(), "/dashboard/invoices"))
}

func TestNewRedisInvalidator_PingFails(t *testing.T) {
	_, err := NewRedisInvalidator(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

// Requires a live Redis. Set REDIS_ADDR to run.
func TestRedisInvalidator_BroadcastBetweenInstances(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	channel := "test:" + t.Name()

	publisher, err := NewRedisInvalidator(ctx, addr, "", 0, WithChannel(channel))
	require.NoError(t, err)
	defer publisher.Close()
	subscriber, err := NewRedisInvalidator(ctx, addr, "", 0, WithChannel(channel))
	require.NoError(t, err)
	defer subscriber.Close()

	remote := NewViewCache(time.Minute)
	set(remote, "/dashboard/invoices/inv-1", page("one"))

	go func() { _ = subscriber.Subscribe(ctx, remote) }()
	require.Eventually(t, func() bool {
		n, err := publisher.client.PubSubNumSub(ctx, channel).Result()
		return err == nil && n[channel] > 0
	}, 2*time.Second, 20*time.Millisecond)

	publisher.Invalidate(ctx, "/dashboard/invoices")

	assert.Eventually(t, func() bool { return !cached(remote, "/dashboard/invoices/inv-1") }, 2*time.Second, 20*time.Millisecond)
}

func TestRedisInvalidator_IgnoresOwnMessages(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	channel := "test:" + t.Name()

	inv, err := NewRedisInvalidator(ctx, addr, "", 0, WithChannel(channel))
	require.NoError(t, err)
	defer inv.Close()

	local := NewViewCache(time.Minute)
	go func() { _ = inv.Subscribe(ctx, local) }()
	require.Eventually(t, func() bool {
		n, err := inv.client.PubSubNumSub(ctx, channel).Result()
		return err == nil && n[channel] > 0
	}, 2*time.Second, 20*time.Millisecond)

	set(local, "/a", page("a"))
	inv.Invalidate(ctx, "/a")
	time.Sleep(100 * time.Millisecond)

	assert.True(t, cached(local, "/a"))
}

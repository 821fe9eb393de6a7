package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/bookmarks/internal/logger"
)

const (
	connectAttempts = 3
	connectBackoff  = 200 * time.Millisecond
)

// RedisNotifier publishes changes on a Redis pub/sub channel so other
// processes can refresh their view of the bookmarks.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

// NewRedisNotifier connects to addr, retrying with exponential backoff.
func NewRedisNotifier(ctx context.Context, addr, password string, db int, channel string, log logger.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	backoff := connectBackoff
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			log.Info("connected to redis",
				logger.String("addr", addr),
				logger.String("channel", channel))
			return &RedisNotifier{client: client, channel: channel, log: log}, nil
		}
		log.Warn("redis not reachable",
			logger.Int("attempt", attempt),
			logger.Error(err))
		if attempt == connectAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		}
		backoff *= 2
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
}

func (n *RedisNotifier) Notify(ctx context.Context, c Change) error {
	payload, err := encode(c)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, payload).Err()
}

// Subscribe returns a subscription to the notifier's channel.
func (n *RedisNotifier) Subscribe(ctx context.Context) *redis.PubSub {
	return n.client.Subscribe(ctx, n.channel)
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisSetKey  = "userdir:deleted"
	DefaultRedisChannel = "userdir.users.deleted"
)

// Redis records deleted ids in a set and publishes each event on a channel.
// Both writes go out in one MULTI/EXEC so subscribers never see an event
// whose id is missing from the set.
type Redis struct {
	client  redis.Cmdable
	setKey  string
	channel string
}

type RedisOption func(*Redis)

func WithSetKey(key string) RedisOption {
	return func(r *Redis) {
		r.setKey = key
	}
}

func WithChannel(channel string) RedisOption {
	return func(r *Redis) {
		r.channel = channel
	}
}

func NewRedis(client redis.Cmdable, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	r := &Redis{
		client:  client,
		setKey:  DefaultRedisSetKey,
		channel: DefaultRedisChannel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, r.setKey, event.ID)
	pipe.Publish(ctx, r.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish %s: %w", event.ID, err)
	}
	return nil
}

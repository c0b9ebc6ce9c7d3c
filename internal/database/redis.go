package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients keeps cache traffic and pub/sub subscriptions on separate connections.
type RedisClients struct {
	Cache  *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cacheClient := redis.NewClient(opt)
	if err := cacheClient.Ping(ctx).Err(); err != nil {
		cacheClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (cache): %w", err)
	}

	pubsubOpt := *opt
	pubsubClient := redis.NewClient(&pubsubOpt)
	if err := pubsubClient.Ping(ctx).Err(); err != nil {
		cacheClient.Close()
		pubsubClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (pubsub): %w", err)
	}

	return &RedisClients{
		Cache:  cacheClient,
		PubSub: pubsubClient,
	}, nil
}

func (r *RedisClients) Close() {
	if r == nil {
		return
	}
	r.Cache.Close()
	r.PubSub.Close()
}

package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

// GenerationNotifier pushes progress updates to a user's open websockets.
type GenerationNotifier interface {
	Publish(ctx context.Context, subject string, msg models.WSMessage)
}

// UpdatesChannel is the pub/sub channel the websocket hub subscribes to per user.
func UpdatesChannel(subject string) string {
	return fmt.Sprintf("user_updates:%s", subject)
}

type RedisNotifier struct {
	redis *redis.Client
}

// NewRedisNotifier returns a notifier that drops messages when redisClient is nil.
func NewRedisNotifier(redisClient *redis.Client) *RedisNotifier {
	return &RedisNotifier{redis: redisClient}
}

// Publish sends a WebSocket update via Redis pub/sub
func (n *RedisNotifier) Publish(ctx context.Context, subject string, msg models.WSMessage) {
	if n.redis == nil || subject == "" {
		return
	}
	data, _ := json.Marshal(msg)
	n.redis.Publish(ctx, UpdatesChannel(subject), string(data))
}

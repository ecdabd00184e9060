package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes notifications on a Redis channel for the delivery
// workers (out of process) to pick up.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

type payload struct {
	RecipientID string    `json:"recipient_id"`
	Channel     string    `json:"channel"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sent_at"`
}

func (n *RedisNotifier) Notify(ctx context.Context, recipientID uuid.UUID, channel, message string) error {
	data, err := json.Marshal(payload{
		RecipientID: recipientID.String(),
		Channel:     channel,
		Message:     message,
		SentAt:      time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher broadcasts events on per-auction pub/sub channels
// (auction:{id}:bids), where the WebSocket/SSE transport layer subscribes.
type RedisPublisher struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisPublisher(client *redis.Client, keyPrefix string) *RedisPublisher {
	return &RedisPublisher{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, auctionID string, payload []byte) error {
	channel := fmt.Sprintf("%sauction:%s:bids", p.keyPrefix, auctionID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// Package events publishes workflow notifications so other services
// (feed, notifications) can react to group and club-book activity.
// Publishing is best-effort: a failed publish is logged and dropped,
// never surfaced to the use-case that triggered it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Envelope is the wire format for one event.
type Envelope struct {
	ID     uuid.UUID      `json:"id"`
	Source string         `json:"source"`
	Type   string         `json:"type"`
	TS     int64          `json:"ts"`
	Data   map[string]any `json:"data"`
}

// New builds an envelope stamped with a fresh ID and the current time.
func New(source, eventType string, data map[string]any) Envelope {
	return Envelope{
		ID:     uuid.New(),
		Source: source,
		Type:   eventType,
		TS:     time.Now().UnixMilli(),
		Data:   data,
	}
}

// Publisher fans an envelope out to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// RedisPublisher sends envelopes as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher connects to redisURL and pings it once so a bad URL
// fails at startup rather than on the first event.
func NewRedisPublisher(ctx context.Context, redisURL, channel string, logger *zap.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher discards everything. Used in tests and when no Redis is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blogapi/internal/logging"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event ActivityEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client redis.Cmdable
	maxLen int64
}

// DefaultStreamMaxLen caps the activity stream with approximate trimming.
const DefaultStreamMaxLen = 100000

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client redis.Cmdable) Publisher {
	return &RedisPublisher{client: client, maxLen: DefaultStreamMaxLen}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ActivityEvent) (string, error) {
	startTime := time.Now()
	log := logging.Component("publisher").WithField("stream", stream).WithField("type", event.Type)

	values, err := event.ToMap()
	if err != nil {
		log.WithError(err).Warn("Publish failed")
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Result()

	if err != nil {
		log.WithError(err).Warn("Publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.WithField("msg_id", messageID).WithField("duration", time.Since(startTime)).Debug("Publish OK")

	return messageID, nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blogapi/internal/logging"
)

const pingTimeout = 5 * time.Second

// Connect creates a client from the given URL and pings it so startup
// fails fast when Redis is unreachable. An empty URL returns a nil client:
// activity events are then disabled.
// URL format: redis://[:password@]host:port[/db]
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		logging.Component("redis").Info("REDIS_URL not set, activity events disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logging.Component("redis").WithField("addr", opts.Addr).Info("Connected to Redis")
	return client, nil
}

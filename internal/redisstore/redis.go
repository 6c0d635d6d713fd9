// Package redisstore holds the Redis-backed state of the API: the month read
// cache and the in-progress import sessions. Neither is authoritative; losing
// Redis costs a cache miss or an unfinished import, never stored prayer times.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key this package writes.
const keyPrefix = "masjid-admin:"

// NewClient creates a Redis client from a redis:// URL and pings it before
// returning.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisstore.NewClient: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore.NewClient: ping: %w", err)
	}
	return client, nil
}

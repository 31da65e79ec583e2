package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is absent from the store
var ErrNotFound = errors.New("key not found")

// ErrExpired is returned when a stored credential has passed its expiry
// and was deleted on read
var ErrExpired = errors.New("credential expired")

// Connect creates and pings a Redis client. Stores are handed the client
// explicitly; there is no package-level singleton.
func Connect(url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

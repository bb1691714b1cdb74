// README: Redis client initialization for the supply registry and fare cache.
package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// NewRedis connects and pings. The caller owns Close.
func NewRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "infra: ping redis %s", addr)
	}
	return client, nil
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions is the subset of connection settings the service exposes.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// pingTimeout caps the startup check independently of the caller's ctx.
const pingTimeout = 5 * time.Second

// OpenRedis returns a client that has answered PING. The client backs
// idempotency keys and revoked sessions.
func OpenRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", o.Addr, err)
	}
	return rdb, nil
}

// Package store provides the persistence layers behind the in-process
// render cache: Redis for shared deployments and a local frame directory
// for single-machine use. Rendered frames survive restarts in either; a
// store outage degrades the cache to re-rendering rather than failing
// requests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/seatlens/seatlens/pkg/errs"
)

// keyPrefix namespaces render entries so the database can be shared.
const keyPrefix = "seatlens:render:"

// Redis stores rendered frames in a Redis instance. It implements
// rendercache.Backing. Safe for concurrent use.
type Redis struct {
	client *redis.Client
	logger *log.Logger
}

// Open connects to the Redis instance at redisURL (redis://host:port/db)
// and verifies it with a ping.
func Open(ctx context.Context, redisURL string, logger *log.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "parse redis url")
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "connect to redis at %s", opts.Addr)
	}

	logger.Debug("connected to redis", "addr", opts.Addr)
	return &Redis{client: client, logger: logger}, nil
}

// NewRedis wraps an existing client. Used by tests with a miniredis or
// mock-backed client.
func NewRedis(client *redis.Client, logger *log.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

// Get fetches the frame stored under fingerprint. The second return is
// false on a clean miss.
func (r *Redis) Get(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "redis get")
	}
	return data, true, nil
}

// Set stores the frame under fingerprint with the given expiry.
// ttl <= 0 stores without expiry.
func (r *Redis) Set(ctx context.Context, fingerprint string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, keyPrefix+fingerprint, data, ttl).Err(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "redis set")
	}
	return nil
}

// Delete removes the frame stored under fingerprint. Deleting a missing
// key is not an error.
func (r *Redis) Delete(ctx context.Context, fingerprint string) error {
	if err := r.client.Del(ctx, keyPrefix+fingerprint).Err(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "redis delete")
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	r.logger.Debug("closing redis connection")
	return r.client.Close()
}

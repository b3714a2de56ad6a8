// Package redis provides a thin wrapper around go-redis/v9 with connection
// pooling, hash bulk load/store used for shared dictionaries, and a
// SET NX based lock for single-writer sections.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/config"
	"github.com/redis/go-redis/v9"
)

// hsetChunk bounds the number of fields written per HSET command.
const hsetChunk = 1000

// ErrLockHeld is returned by TryLock when another holder owns the lock.
var ErrLockHeld = errors.New("redis lock held by another owner")

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HGetAll returns every field of the hash stored at key.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}

// ReplaceHash atomically replaces the hash at key with fields. The new hash
// is written under a staging key and renamed over key so readers never see
// a partially written hash.
func (c *Client) ReplaceHash(ctx context.Context, key string, fields map[string]int) error {
	staging := key + ":staging"
	if err := c.rdb.Del(ctx, staging).Err(); err != nil {
		return fmt.Errorf("clearing staging key %s: %w", staging, err)
	}
	batch := make([]any, 0, hsetChunk*2)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.rdb.HSet(ctx, staging, batch...).Err(); err != nil {
			return fmt.Errorf("writing hash fields: %w", err)
		}
		batch = batch[:0]
		return nil
	}
	for field, value := range fields {
		batch = append(batch, field, value)
		if len(batch) >= hsetChunk*2 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return c.rdb.Del(ctx, key).Err()
	}
	if err := c.rdb.Rename(ctx, staging, key).Err(); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", staging, key, err)
	}
	return nil
}

// TryLock sets key to token if it is absent. The lock expires after ttl so a
// crashed holder cannot block other writers forever.
func (c *Client) TryLock(ctx context.Context, key, token string, ttl time.Duration) error {
	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Unlock releases key only if it is still held with token.
func (c *Client) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, c.rdb, []string{key}, token).Err()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

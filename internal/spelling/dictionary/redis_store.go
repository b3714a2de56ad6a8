package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/redis"
)

// hashClient is the subset of *redis.Client used by RedisStore.
type hashClient interface {
	Exists(ctx context.Context, key string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	ReplaceHash(ctx context.Context, key string, fields map[string]int) error
	TryLock(ctx context.Context, key, token string, ttl time.Duration) error
	Unlock(ctx context.Context, key, token string) error
}

// RedisStore keeps the dictionary as a Redis hash of word -> count so a
// fleet of workers shares one built copy.
type RedisStore struct {
	client  hashClient
	key     string
	lockKey string
	lockTTL time.Duration
}

func NewRedisStore(client *redis.Client, key string, lockTTL time.Duration) *RedisStore {
	return newRedisStore(client, key, lockTTL)
}

func newRedisStore(client hashClient, key string, lockTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		key:     key,
		lockKey: key + ":lock",
		lockTTL: lockTTL,
	}
}

func (s *RedisStore) Name() string {
	return "redis:" + s.key
}

func (s *RedisStore) Load(ctx context.Context) (*Dictionary, error) {
	ok, err := s.client.Exists(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("checking dictionary key %s: %w", s.key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrCacheNotFound, s.Name())
	}
	fields, err := s.client.HGetAll(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary hash %s: %w", s.key, err)
	}
	counts := make(map[string]int, len(fields))
	for word, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("dictionary hash %s: bad count %q for %q", s.key, raw, word)
		}
		counts[word] = n
	}
	return New(counts), nil
}

func (s *RedisStore) Save(ctx context.Context, d *Dictionary) error {
	if err := s.client.ReplaceHash(ctx, s.key, d.Counts()); err != nil {
		return fmt.Errorf("saving dictionary to %s: %w", s.Name(), err)
	}
	return nil
}

// Lock polls SET NX until it wins or ctx ends. The lock carries a TTL so a
// builder that dies mid-build does not wedge the fleet.
func (s *RedisStore) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ticker := time.NewTicker(lockRetryDelay)
	defer ticker.Stop()
	for {
		err := s.client.TryLock(ctx, s.lockKey, token, s.lockTTL)
		if err == nil {
			break
		}
		if !errors.Is(err, redis.ErrLockHeld) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", apperrors.ErrLockTimeout, s.lockKey)
		case <-ticker.C:
		}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.client.Unlock(ctx, s.lockKey, token)
	}, nil
}

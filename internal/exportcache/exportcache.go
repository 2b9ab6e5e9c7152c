// Package exportcache keeps rendered export files in Redis, keyed by job,
// snapshot version and format, so repeated downloads of an unchanged job
// skip re-encoding.
package exportcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	keyPrefix = "fieldview:export"

	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

// errMiss travels through the breaker as a successful outcome.
var errMiss = errors.New("cache miss")

// Cache is a Redis-backed export cache. Calls go through a circuit breaker:
// after consecutive Redis failures it fails fast until the cooldown passes,
// and exports render without the cache meanwhile.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	cb  *gobreaker.CircuitBreaker[[]byte]
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: ttl,
		cb: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "export-cache",
			MaxRequests: 1,
			Timeout:     breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errMiss)
			},
		}),
	}
}

// Key names one rendered file. A new snapshot version yields a new key, so
// stale entries simply expire.
func Key(job string, version uint64, format string) string {
	return fmt.Sprintf("%s:%s:%d:%s", keyPrefix, job, version, format)
}

// Get returns the cached payload and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.cb.Execute(func() ([]byte, error) {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, errMiss
		}
		return data, err
	})
	if errors.Is(err, errMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting %s: %w", key, err)
	}
	return data, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	_, err := c.cb.Execute(func() ([]byte, error) {
		return nil, c.rdb.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// BreakerState reports the circuit breaker state, for logs and tests.
func (c *Cache) BreakerState() string {
	return c.cb.State().String()
}

// Check pings Redis, for the health endpoint.
func (c *Cache) Check(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Open connects to the Redis server at rawURL and verifies it answers.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

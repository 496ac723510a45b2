package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moviestream/identity-system/internal/core/domain"
)

const opTimeout = 3 * time.Second

// Denylist implements the token denylist on Redis. Presence of a key
// means "do not honor this token again"; values carry no meaning.
type Denylist struct {
	client *redis.Client
}

// NewDenylist creates a Denylist wrapping the given Redis client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Exists reports whether key has been denylisted.
func (d *Denylist) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return false, cacheErr("exists", err)
	}
	return n > 0, nil
}

// SetWithTTL plants a marker that expires with the token it marks.
func (d *Denylist) SetWithTTL(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := d.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return cacheErr("set", err)
	}
	return nil
}

// SetIfAbsentWithTTL plants a marker only when none exists, in one
// atomic SETNX. The bool reports whether this call won.
func (d *Denylist) SetIfAbsentWithTTL(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	won, err := d.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, cacheErr("setnx", err)
	}
	return won, nil
}

func (d *Denylist) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := d.client.Del(ctx, key).Err(); err != nil {
		return cacheErr("del", err)
	}
	return nil
}

// cacheErr wraps a driver failure as the transient cache sentinel so a
// Redis outage is never mistaken for a revoked or replayed token.
func cacheErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrCacheUnavailable, op, err)
}

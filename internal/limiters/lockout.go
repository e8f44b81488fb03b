package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the lockout backend is unreachable. Callers
// must fail closed on it: an unknown lockout state never admits a login.
var ErrUnavailable = errors.New("lockout backend unavailable")

// Config holds the automatic lockout thresholds.
type Config struct {
	Threshold int
	Duration  time.Duration
}

// Guard tracks failed login attempts per principal and reports when a
// principal is locked out.
//
// The caller drives the protocol: Check before verifying a credential,
// RecordFailure exactly once per failed attempt, Reset on success.
type Guard interface {
	// Check reports whether the principal is currently locked out.
	Check(ctx context.Context, principalID string) (bool, error)

	// RecordFailure counts one failed attempt and reports whether the
	// principal is now locked out.
	RecordFailure(ctx context.Context, principalID string) (bool, error)

	// Reset clears the failure counter after a successful login.
	Reset(ctx context.Context, principalID string) error
}

// RedisGuard is a [Guard] over a shared redis counter, so lockout state
// is consistent across every process serving the same principal pool.
type RedisGuard struct {
	redis  redis.UniversalClient
	config Config
}

// NewRedisGuard creates a redis-backed lockout guard.
func NewRedisGuard(redisClient redis.UniversalClient, cfg Config) *RedisGuard {
	return &RedisGuard{redis: redisClient, config: cfg}
}

func (g *RedisGuard) key(principalID string) string {
	return "lo:" + principalID
}

// Check implements [Guard].
func (g *RedisGuard) Check(ctx context.Context, principalID string) (bool, error) {
	if principalID == "" {
		return false, nil
	}

	count, err := g.redis.Get(ctx, g.key(principalID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return count >= int64(g.config.Threshold), nil
}

// RecordFailure implements [Guard]. Every failure restarts the counter's
// TTL, so the window runs from the last counted failure: a principal
// failing once per window interval keeps the counter alive indefinitely.
func (g *RedisGuard) RecordFailure(ctx context.Context, principalID string) (bool, error) {
	if principalID == "" {
		return false, nil
	}

	count, err := g.redis.Incr(ctx, g.key(principalID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if g.config.Duration > 0 {
		if err := g.redis.Expire(ctx, g.key(principalID), g.config.Duration).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return count >= int64(g.config.Threshold), nil
}

// Reset implements [Guard].
func (g *RedisGuard) Reset(ctx context.Context, principalID string) error {
	if principalID == "" {
		return nil
	}

	if err := g.redis.Del(ctx, g.key(principalID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

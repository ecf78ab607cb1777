package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// RedisCounter is a Counter shared by every replica. The window starts with
// the first INCR, which also sets the key's TTL.
type RedisCounter struct {
	rdb    redis.UniversalClient
	window time.Duration
}

func NewRedisCounter(rdb redis.UniversalClient, window time.Duration) *RedisCounter {
	if window <= 0 {
		window = defaultWindow
	}
	return &RedisCounter{rdb: rdb, window: window}
}

func (c *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, c.window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return n, nil
}

func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a lease lock taken with SET NX PX. The lease bounds how long
// a crashed holder can block others.
type RedisLocker struct {
	rdb   redis.UniversalClient
	lease time.Duration
	wait  time.Duration
	retry time.Duration
}

type RedisLockerOptions struct {
	Lease time.Duration // how long the lock lives without release
	Wait  time.Duration // how long Lock keeps trying
	Retry time.Duration // pause between attempts
}

func NewRedisLocker(rdb redis.UniversalClient, opts RedisLockerOptions) *RedisLocker {
	if opts.Lease <= 0 {
		opts.Lease = 5 * time.Second
	}
	if opts.Wait <= 0 {
		opts.Wait = 3 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 25 * time.Millisecond
	}
	return &RedisLocker{rdb: rdb, lease: opts.Lease, wait: opts.Wait, retry: opts.Retry}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token, err := cryptox.GenerateToken(16)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ok {
			return func() {
				// Use a fresh context so a cancelled request still releases.
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.rdb, []string{key}, token).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// Ping reports whether redis answers.
func Ping(ctx context.Context, rdb redis.UniversalClient) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

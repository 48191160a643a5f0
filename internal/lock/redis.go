package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/chaolic6505/gavel/internal/domain"
)

// Redis is a distributed AuctionLocker backed by redsync. The lock key is
// derived from the auction id, so bids and sweeps on the same auction are
// mutually exclusive across processes.
type Redis struct {
	rs      *redsync.Redsync
	options redisOptions
}

type redisOptions struct {
	keyPrefix      string
	expiry         time.Duration
	retryDelay     time.Duration
	acquireTimeout time.Duration
}

type RedisOption func(*redisOptions)

// WithRedisKeyPrefix sets the namespace prefix for lock keys.
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.keyPrefix = prefix
	}
}

// WithRedisExpiry sets the lock TTL. It must comfortably exceed the longest
// critical section; an expired lock lets a second writer in.
func WithRedisExpiry(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithRedisAcquireTimeout bounds how long Acquire may wait before failing
// with domain.ErrConflict.
func WithRedisAcquireTimeout(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		if d > 0 {
			o.acquireTimeout = d
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	options := redisOptions{
		expiry:         8 * time.Second,
		retryDelay:     100 * time.Millisecond,
		acquireTimeout: defaultAcquireTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	pool := goredis.NewPool(client)
	return &Redis{
		rs:      redsync.New(pool),
		options: options,
	}
}

func (r *Redis) Acquire(ctx context.Context, auctionID string) (func(), error) {
	tries := int(r.options.acquireTimeout/r.options.retryDelay) + 1
	mutex := r.rs.NewMutex(
		r.options.keyPrefix+"auction:"+auctionID+":lock",
		redsync.WithExpiry(r.options.expiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(r.options.retryDelay),
	)

	lockCtx, cancel := context.WithTimeout(ctx, r.options.acquireTimeout)
	defer cancel()

	if err := mutex.LockContext(lockCtx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("acquire auction lock %s: %w", auctionID, domain.ErrConflict)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Unlock can fail when the TTL already elapsed; nothing to do then.
			_, _ = mutex.Unlock()
		})
	}, nil
}

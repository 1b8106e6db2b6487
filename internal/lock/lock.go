// Package lock provides named mutual exclusion for long-running jobs, either
// within one process or across instances sharing a Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
)

// ErrLocked is returned when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

type Release func(ctx context.Context) error

type Locker interface {
	// Obtain takes the lock without waiting.
	Obtain(ctx context.Context, key string) (Release, error)
}

type Local struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocal() *Local {
	return &Local{held: make(map[string]bool)}
}

func (l *Local) Obtain(_ context.Context, key string) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrLocked
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
		return nil
	}, nil
}

// Redis locks expire after ttl even if the holder dies without releasing.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: redislock.New(client), ttl: ttl}
}

func (r *Redis) Obtain(ctx context.Context, key string) (Release, error) {
	l, err := r.client.Obtain(ctx, "lock:"+key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		err := l.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}
		return err
	}, nil
}

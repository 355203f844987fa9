package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLock extends exclusivity across processes sharing one schedule.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	// Renew extends a held lease. It reports false once the lease is no longer ours.
	Renew(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
	// RenewInterval is how often a running holder calls Renew; zero disables renewal.
	RenewInterval() time.Duration
}

type noopRunLock struct{}

// NewNoopRunLock always grants the lock.
func NewNoopRunLock() RunLock {
	return noopRunLock{}
}

func (noopRunLock) Acquire(ctx context.Context) (bool, error) { return true, nil }

func (noopRunLock) Renew(ctx context.Context) (bool, error) { return true, nil }

func (noopRunLock) Release(ctx context.Context) error { return nil }

func (noopRunLock) RenewInterval() time.Duration { return 0 }

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// redisRunLock is a SET NX lease renewed every ttl/3 while a run is active.
// The TTL bounds how long a crashed holder blocks others.
type redisRunLock struct {
	rdb   *redis.Client
	key   string
	ttl time.Duration

	mu    sync.Mutex
	token string
}

func NewRedisRunLock(rdb *redis.Client, key string, ttl time.Duration) RunLock {
	return &redisRunLock{
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

// Acquire is only called while the local RunState is held, so token is never shared.
func (l *redisRunLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.mu.Lock()
		l.token = token
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *redisRunLock) Renew(ctx context.Context) (bool, error) {
	l.mu.Lock()
	token := l.token
	l.mu.Unlock()
	if token == "" {
		return false, nil
	}
	n, err := renewScript.Run(ctx, l.rdb, []string{l.key}, token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (l *redisRunLock) RenewInterval() time.Duration {
	return l.ttl / 3
}

// Release only deletes the key if this process still owns it.
func (l *redisRunLock) Release(ctx context.Context) error {
	l.mu.Lock()
	token := l.token
	l.token = ""
	l.mu.Unlock()
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
}

// Package lock provides short-lived leases used to elect a single runner for
// periodic jobs across replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned when releasing a lease that expired or was taken over.
var ErrNotHeld = errors.New("lock not held")

// Locker hands out leases. Acquire returns ok=false when another holder owns
// the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
}

// Lease is an acquired lock.
type Lease interface {
	Release(ctx context.Context) error
}

// RedisLocker implements Locker with SET NX PX. A crashed holder's lease
// expires after ttl.
type RedisLocker struct {
	client redis.Cmdable
}

// NewRedisLocker constructs a RedisLocker.
func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{client: client}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Acquire tries to take key for ttl.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{client: l.client, key: key, token: token}, true, nil
}

type redisLease struct {
	client redis.Cmdable
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}

// LocalLocker is an in-process Locker for single-replica deployments and
// tests. Leases still expire after ttl.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localEntry
	clock func() time.Time
}

type localEntry struct {
	token   string
	expires time.Time
}

// NewLocalLocker constructs a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localEntry), clock: time.Now}
}

// Acquire takes key unless a live lease exists.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if entry, ok := l.held[key]; ok && now.Before(entry.expires) {
		return nil, false, nil
	}
	token := uuid.NewString()
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}
	return &localLease{owner: l, key: key, token: token}, true, nil
}

type localLease struct {
	owner *LocalLocker
	key   string
	token string
}

func (l *localLease) Release(context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()
	entry, ok := l.owner.held[l.key]
	if !ok || entry.token != l.token {
		return ErrNotHeld
	}
	delete(l.owner.held, l.key)
	return nil
}
